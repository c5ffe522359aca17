package service

import (
	"testing"

	"qahub_backend/internal/model"
	"qahub_backend/internal/repository"
	"qahub_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationInboxAndReadFlow(t *testing.T) {
	env := newTestEnv(t)
	recipient := env.createUser(t, "recipient")
	sender := env.createUser(t, "sender")

	env.notifications.NotifyVote(recipient.ID, sender.ID, "某个问题", "q-1", nil)
	env.notifications.NotifySystem(recipient.ID, "系统维护", "今晚升级", true)

	count, err := env.notifications.UnreadCount(recipient.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// 重要通知置顶
	inbox, total, err := env.notifications.Inbox(repository.NotificationFilter{
		RecipientID: recipient.ID,
		Limit:       10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.True(t, inbox[0].IsImportant)

	// 标记已读并回查
	require.NoError(t, env.notifications.MarkRead(inbox[0].ID, recipient.ID))
	read, err := env.notifRepo.FindByID(inbox[0].ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)
	assert.NotNil(t, read.ReadAt)

	count, err = env.notifications.UnreadCount(recipient.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// 标记未读清除时间戳
	require.NoError(t, env.notifications.MarkUnread(inbox[0].ID, recipient.ID))
	unread, err := env.notifRepo.FindByID(inbox[0].ID)
	require.NoError(t, err)
	assert.False(t, unread.IsRead)
	assert.Nil(t, unread.ReadAt)
}

func TestNotificationRecipientScoping(t *testing.T) {
	env := newTestEnv(t)
	recipient := env.createUser(t, "recipient")
	intruder := env.createUser(t, "intruder")

	env.notifications.NotifySystem(recipient.ID, "只给收件人", "内容", false)

	inbox, _, err := env.notifications.Inbox(repository.NotificationFilter{
		RecipientID: recipient.ID,
		Limit:       10,
	})
	require.NoError(t, err)
	require.Len(t, inbox, 1)

	// 别人不能动我的通知
	assert.ErrorIs(t, env.notifications.MarkRead(inbox[0].ID, intruder.ID), util.ErrNotFound)
	assert.ErrorIs(t, env.notifications.Delete(inbox[0].ID, intruder.ID), util.ErrNotFound)

	// 别人的收件箱里也看不到
	otherInbox, _, err := env.notifications.Inbox(repository.NotificationFilter{
		RecipientID: intruder.ID,
		Limit:       10,
	})
	require.NoError(t, err)
	assert.Empty(t, otherInbox)
}

func TestMarkAllRead(t *testing.T) {
	env := newTestEnv(t)
	recipient := env.createUser(t, "recipient")

	for i := 0; i < 3; i++ {
		env.notifications.NotifySystem(recipient.ID, "批量通知", "内容", false)
	}

	affected, err := env.notifications.MarkAllRead(recipient.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), affected)

	count, err := env.notifications.UnreadCount(recipient.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	// 幂等：再次执行影响 0 行
	affected, err = env.notifications.MarkAllRead(recipient.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}

func TestNotificationTypeFilter(t *testing.T) {
	env := newTestEnv(t)
	recipient := env.createUser(t, "recipient")
	sender := env.createUser(t, "sender")

	env.notifications.NotifyVote(recipient.ID, sender.ID, "问题A", "q-1", nil)
	env.notifications.NotifyAccept(recipient.ID, sender.ID, "问题B", "q-2", "a-1")

	inbox, total, err := env.notifications.Inbox(repository.NotificationFilter{
		RecipientID: recipient.ID,
		Type:        model.NotificationAccept,
		Limit:       10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, string(model.NotificationAccept), inbox[0].Type)
}

func TestDeletedNotificationLeavesUnreadCount(t *testing.T) {
	env := newTestEnv(t)
	recipient := env.createUser(t, "recipient")

	env.notifications.NotifySystem(recipient.ID, "会被删掉", "内容", false)
	env.notifications.NotifySystem(recipient.ID, "会留下来", "内容", false)

	inbox, _, err := env.notifications.Inbox(repository.NotificationFilter{
		RecipientID: recipient.ID,
		Limit:       10,
	})
	require.NoError(t, err)
	require.Len(t, inbox, 2)

	require.NoError(t, env.notifications.Delete(inbox[0].ID, recipient.ID))

	// 软删通知不再计入未读数
	count, err := env.notifications.UnreadCount(recipient.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestBroadcastSystemNotification(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	// 重复和非法的收件人被剔除
	sent, err := env.notifications.BroadcastSystem(
		[]uint{alice.ID, bob.ID, alice.ID, 0},
		"系统维护公告", "今晚 23:00 停机维护", true)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	for _, id := range []uint{alice.ID, bob.ID} {
		count, err := env.notifications.UnreadCount(id)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	}

	list, _, err := env.notifications.Inbox(repository.NotificationFilter{RecipientID: alice.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "系统维护公告", list[0].Title)
	assert.True(t, list[0].IsImportant)

	// 没有有效收件人
	_, err = env.notifications.BroadcastSystem([]uint{0}, "x", "y", false)
	assert.ErrorIs(t, err, util.ErrValidation)
}
