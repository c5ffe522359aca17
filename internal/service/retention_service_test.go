package service

import (
	"testing"
	"time"

	"qahub_backend/internal/model"
	"qahub_backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backdate 把记录的 updated_at 拨回过去，模拟超过保留期
func backdate(t *testing.T, env *testEnv, m interface{}, id interface{}, d time.Duration) {
	t.Helper()
	err := env.db.Model(m).
		Where("id = ?", id).
		UpdateColumn("updated_at", time.Now().Add(-d)).Error
	require.NoError(t, err)
}

func TestRetentionSweep(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "author")
	answerer := env.createUser(t, "answerer")

	expired := env.createQuestion(t, author.ID, "过了保留期的问题会被清除")
	recent := env.createQuestion(t, author.ID, "刚删的问题还在保留期内")
	keep := env.createQuestion(t, author.ID, "没被删除的问题不受影响")
	answer := env.createAnswer(t, keep.ID, answerer.ID)

	require.NoError(t, env.questions.SoftDelete(expired.ID, author.ID, false))
	require.NoError(t, env.questions.SoftDelete(recent.ID, author.ID, false))
	backdate(t, env, &model.Question{}, expired.ID, 40*24*time.Hour)

	result, err := env.retention.SweepOlderThan(30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Questions)
	assert.Equal(t, int64(1), result.Total)

	// 过期的已物理清除
	_, err = env.questionRepo.FindByIDAny(expired.ID)
	assert.Error(t, err)

	// 保留期内的软删记录还在，可恢复
	stillThere, err := env.questionRepo.FindByIDAny(recent.ID)
	require.NoError(t, err)
	assert.True(t, stillThere.IsDeleted)

	// 活跃记录不受影响
	_, err = env.questionRepo.FindByID(keep.ID)
	require.NoError(t, err)
	_, err = env.answerRepo.FindByID(answer.ID)
	require.NoError(t, err)

	// 幂等：再扫一遍什么都不清
	result, err = env.retention.SweepOlderThan(30)
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Total)
}

func TestRetentionSweepCoversAllEntities(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "author")
	answerer := env.createUser(t, "answerer")
	doomed := env.createUser(t, "doomed")

	question := env.createQuestion(t, author.ID, "覆盖所有实体类型的清理验证")
	answer := env.createAnswer(t, question.ID, answerer.ID)
	env.notifications.NotifySystem(author.ID, "将被清理", "内容", false)

	inbox, _, err := env.notifications.Inbox(repository.NotificationFilter{RecipientID: author.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, inbox, 2) // 系统通知 + 回答通知

	tag, err := env.tags.Create(&TagRequest{Name: "ephemeral"})
	require.NoError(t, err)

	require.NoError(t, env.answers.SoftDelete(answer.ID, answerer.ID, false))
	require.NoError(t, env.questions.SoftDelete(question.ID, author.ID, false))
	require.NoError(t, env.notifications.Delete(inbox[0].ID, author.ID))
	require.NoError(t, env.tags.SoftDelete(tag.ID))
	require.NoError(t, env.users.SoftDelete(doomed.ID))

	backdate(t, env, &model.Answer{}, answer.ID, 40*24*time.Hour)
	backdate(t, env, &model.Question{}, question.ID, 40*24*time.Hour)
	backdate(t, env, &model.Notification{}, inbox[0].ID, 40*24*time.Hour)
	backdate(t, env, &model.Tag{}, tag.ID, 40*24*time.Hour)
	backdate(t, env, &model.User{}, doomed.ID, 40*24*time.Hour)

	result, err := env.retention.SweepOlderThan(30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Answers)
	assert.Equal(t, int64(1), result.Questions)
	assert.Equal(t, int64(1), result.Notifications)
	assert.Equal(t, int64(1), result.Tags)
	assert.Equal(t, int64(1), result.Users)
	assert.Equal(t, int64(5), result.Total)
}

func TestRetentionSweepPurgesReadNotifications(t *testing.T) {
	env := newTestEnv(t)
	recipient := env.createUser(t, "recipient")

	env.notifications.NotifySystem(recipient.ID, "老通知", "早已读过", false)
	env.notifications.NotifySystem(recipient.ID, "新通知", "刚刚读过", false)
	env.notifications.NotifySystem(recipient.ID, "未读通知", "从未读过", false)

	list, _, err := env.notifications.Inbox(repository.NotificationFilter{RecipientID: recipient.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 3)

	// 读掉前两条，把第一条的已读时间拨回保留期之前
	require.NoError(t, env.notifications.MarkRead(list[0].ID, recipient.ID))
	require.NoError(t, env.notifications.MarkRead(list[1].ID, recipient.ID))
	old := time.Now().Add(-40 * 24 * time.Hour)
	require.NoError(t, env.db.Model(&model.Notification{}).
		Where("id = ?", list[0].ID).
		UpdateColumn("read_at", old).Error)

	result, err := env.retention.SweepOlderThan(30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Notifications)
	assert.Equal(t, int64(1), result.Total)

	// 保留期内的已读和未读通知都还在
	remaining, _, err := env.notifications.Inbox(repository.NotificationFilter{RecipientID: recipient.ID, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, remaining, 2)
}
