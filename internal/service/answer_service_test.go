package service

import (
	"testing"
	"time"

	"qahub_backend/internal/model"
	"qahub_backend/internal/repository"
	"qahub_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcceptAnswer(t *testing.T) {
	env := newTestEnv(t)
	asker := env.createUser(t, "asker")
	answerer := env.createUser(t, "answerer")

	question := env.createQuestion(t, asker.ID, "如何正确初始化数据库连接池")
	answer := env.createAnswer(t, question.ID, answerer.ID)

	resp, err := env.answers.Accept(question.ID, answer.ID, asker.ID)
	require.NoError(t, err)
	assert.True(t, resp.IsAccepted)
	require.NotNil(t, resp.AcceptedAt)

	updated, err := env.questionRepo.FindByID(question.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsAnswered)

	// 采纳奖励声望
	author, err := env.userRepo.FindByID(answerer.ID)
	require.NoError(t, err)
	assert.Equal(t, ReputationAnswerAccepted, author.Reputation)

	// 回答者收到采纳通知
	count, err := env.notifRepo.UnreadCount(answerer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestAcceptSwitchesAcceptedAnswer(t *testing.T) {
	env := newTestEnv(t)
	asker := env.createUser(t, "asker")
	first := env.createUser(t, "first")
	second := env.createUser(t, "second")

	question := env.createQuestion(t, asker.ID, "切片扩容策略是怎样实现的")
	answerA := env.createAnswer(t, question.ID, first.ID)
	answerB := env.createAnswer(t, question.ID, second.ID)

	_, err := env.answers.Accept(question.ID, answerA.ID, asker.ID)
	require.NoError(t, err)

	// 换采纳：旧采纳位自动清除
	_, err = env.answers.Accept(question.ID, answerB.ID, asker.ID)
	require.NoError(t, err)

	oldAnswer, err := env.answerRepo.FindByID(answerA.ID)
	require.NoError(t, err)
	assert.False(t, oldAnswer.IsAccepted)
	assert.Nil(t, oldAnswer.AcceptedAt)

	newAnswer, err := env.answerRepo.FindByID(answerB.ID)
	require.NoError(t, err)
	assert.True(t, newAnswer.IsAccepted)

	// 任意时刻同一问题下至多一个采纳位
	var accepted int64
	env.db.Model(&model.Answer{}).
		Where("question_id = ? AND is_accepted = ?", question.ID, true).
		Count(&accepted)
	assert.Equal(t, int64(1), accepted)

	updated, err := env.questionRepo.FindByID(question.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsAnswered)
}

func TestAcceptPermissionAndMismatch(t *testing.T) {
	env := newTestEnv(t)
	asker := env.createUser(t, "asker")
	answerer := env.createUser(t, "answerer")
	other := env.createUser(t, "other")

	question := env.createQuestion(t, asker.ID, "接口类型断言的性能开销")
	otherQuestion := env.createQuestion(t, other.ID, "反射调用方法的正确姿势")
	answer := env.createAnswer(t, question.ID, answerer.ID)

	// 仅提问者可采纳
	_, err := env.answers.Accept(question.ID, answer.ID, answerer.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	// 回答必须属于该问题
	_, err = env.answers.Accept(otherQuestion.ID, answer.ID, other.ID)
	assert.ErrorIs(t, err, util.ErrQuestionMismatch)
}

func TestAcceptOnClosedQuestion(t *testing.T) {
	env := newTestEnv(t)
	asker := env.createUser(t, "asker")
	answerer := env.createUser(t, "answerer")

	question := env.createQuestion(t, asker.ID, "已关闭问题还能采纳回答吗")
	answer := env.createAnswer(t, question.ID, answerer.ID)

	require.NoError(t, env.questions.SetClosed(question.ID, asker.ID, false, true))

	// 关闭只阻止新回答，不阻止采纳已有回答
	resp, err := env.answers.Accept(question.ID, answer.ID, asker.ID)
	require.NoError(t, err)
	assert.True(t, resp.IsAccepted)
}

func TestUnaccept(t *testing.T) {
	env := newTestEnv(t)
	asker := env.createUser(t, "asker")
	answerer := env.createUser(t, "answerer")

	question := env.createQuestion(t, asker.ID, "怎样排查偶发的内存泄漏")
	answer := env.createAnswer(t, question.ID, answerer.ID)

	_, err := env.answers.Accept(question.ID, answer.ID, asker.ID)
	require.NoError(t, err)

	require.NoError(t, env.answers.Unaccept(question.ID, answer.ID, asker.ID))

	updated, err := env.answerRepo.FindByID(answer.ID)
	require.NoError(t, err)
	assert.False(t, updated.IsAccepted)
	assert.Nil(t, updated.AcceptedAt)

	q, err := env.questionRepo.FindByID(question.ID)
	require.NoError(t, err)
	assert.False(t, q.IsAnswered)

	// 采纳奖励回退
	author, err := env.userRepo.FindByID(answerer.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, author.Reputation)

	// 重复撤销是空操作
	require.NoError(t, env.answers.Unaccept(question.ID, answer.ID, asker.ID))
}

func TestSoftDeleteAcceptedAnswerSyncsQuestion(t *testing.T) {
	env := newTestEnv(t)
	asker := env.createUser(t, "asker")
	answerer := env.createUser(t, "answerer")

	question := env.createQuestion(t, asker.ID, "被采纳回答删除后问题状态如何")
	answer := env.createAnswer(t, question.ID, answerer.ID)

	_, err := env.answers.Accept(question.ID, answer.ID, asker.ID)
	require.NoError(t, err)

	require.NoError(t, env.answers.SoftDelete(answer.ID, answerer.ID, false))

	q, err := env.questionRepo.FindByID(question.ID)
	require.NoError(t, err)
	assert.False(t, q.IsAnswered)

	// 恢复后采纳位仍在，问题回到已解决
	require.NoError(t, env.answers.Restore(answer.ID))
	q, err = env.questionRepo.FindByID(question.ID)
	require.NoError(t, err)
	assert.True(t, q.IsAnswered)
}

func TestAnswerVote(t *testing.T) {
	env := newTestEnv(t)
	asker := env.createUser(t, "asker")
	answerer := env.createUser(t, "answerer")
	voter := env.createUser(t, "voter")

	question := env.createQuestion(t, asker.ID, "回答投票的声望规则是什么")
	answer := env.createAnswer(t, question.ID, answerer.ID)

	// 不能给自己的回答投票
	_, err := env.answers.Vote(answer.ID, answerer.ID, true)
	assert.ErrorIs(t, err, util.ErrSelfVote)

	resp, err := env.answers.Vote(answer.ID, voter.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Votes)
	assert.Equal(t, 1, resp.VotesCount)

	author, err := env.userRepo.FindByID(answerer.ID)
	require.NoError(t, err)
	assert.Equal(t, ReputationAnswerUpvote, author.Reputation)

	// 连续反对把净票数拉成负值，展示值取绝对值
	for i := 0; i < 3; i++ {
		resp, err = env.answers.Vote(answer.ID, voter.ID, false)
		require.NoError(t, err)
	}
	assert.Equal(t, -2, resp.Votes)
	assert.Equal(t, 2, resp.VotesCount)
}

func TestCreateAnswerOnClosedQuestion(t *testing.T) {
	env := newTestEnv(t)
	asker := env.createUser(t, "asker")
	answerer := env.createUser(t, "answerer")

	question := env.createQuestion(t, asker.ID, "关闭的问题不能再新增回答")
	require.NoError(t, env.questions.SetClosed(question.ID, asker.ID, false, true))

	_, err := env.answers.Create(question.ID, answerer.ID, &AnswerRequest{
		Content: "这是一条不应该被接受的回答内容。",
	})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestAnswerListOrdering(t *testing.T) {
	env := newTestEnv(t)
	asker := env.createUser(t, "asker")
	a := env.createUser(t, "user-a")
	b := env.createUser(t, "user-b")
	voter := env.createUser(t, "voter")

	question := env.createQuestion(t, asker.ID, "回答列表的排序规则验证")
	low := env.createAnswer(t, question.ID, a.ID)
	high := env.createAnswer(t, question.ID, b.ID)

	_, err := env.answers.Vote(high.ID, voter.ID, true)
	require.NoError(t, err)

	// 采纳低票回答后它应当置顶
	_, err = env.answers.Accept(question.ID, low.ID, asker.ID)
	require.NoError(t, err)

	answers, total, err := env.answers.ListByQuestion(question.ID, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, answers, 2)
	assert.Equal(t, low.ID, answers[0].ID)
	assert.Equal(t, high.ID, answers[1].ID)
}

func TestAnswerEditTracking(t *testing.T) {
	env := newTestEnv(t)
	asker := env.createUser(t, "asker")
	answerer := env.createUser(t, "answerer")

	question := env.createQuestion(t, asker.ID, "编辑回答会留下编辑痕迹吗")
	answer := env.createAnswer(t, question.ID, answerer.ID)
	assert.False(t, answer.IsEdited)

	resp, err := env.answers.Update(answer.ID, answerer.ID, false, &AnswerRequest{
		Content: "这是修订后的回答内容，同样满足长度要求。",
	})
	require.NoError(t, err)
	assert.True(t, resp.IsEdited)
	assert.Equal(t, uint(1), resp.EditCount)

	// 非作者不能编辑
	_, err = env.answers.Update(answer.ID, asker.ID, false, &AnswerRequest{
		Content: "别人不应该能改掉这条回答的内容。",
	})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestAnswerNotificationFanOut(t *testing.T) {
	env := newTestEnv(t)
	asker := env.createUser(t, "asker")
	answerer := env.createUser(t, "answerer")

	question := env.createQuestion(t, asker.ID, "新回答会通知提问者吗")
	env.createAnswer(t, question.ID, answerer.ID)

	notifications, total, err := env.notifications.Inbox(repository.NotificationFilter{
		RecipientID: asker.ID,
		Limit:       10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, string(model.NotificationAnswer), notifications[0].Type)

	// 自答不产生通知
	env.createAnswer(t, question.ID, asker.ID)
	_, total, err = env.notifications.Inbox(repository.NotificationFilter{
		RecipientID: asker.ID,
		Limit:       10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestAcceptedAnswerLookup(t *testing.T) {
	env := newTestEnv(t)
	asker := env.createUser(t, "asker")
	answerer := env.createUser(t, "answerer")

	question := env.createQuestion(t, asker.ID, "如何排查偶发的连接超时问题")

	// 尚无采纳回答
	_, err := env.answers.GetAccepted(question.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)

	answer := env.createAnswer(t, question.ID, answerer.ID)
	_, err = env.answers.Accept(question.ID, answer.ID, asker.ID)
	require.NoError(t, err)

	accepted, err := env.answers.GetAccepted(question.ID)
	require.NoError(t, err)
	assert.Equal(t, answer.ID, accepted.ID)
	assert.True(t, accepted.IsAccepted)
}

func TestHighlyVotedAnswers(t *testing.T) {
	env := newTestEnv(t)
	asker := env.createUser(t, "asker")
	answerer := env.createUser(t, "answerer")

	question := env.createQuestion(t, asker.ID, "有哪些值得推荐的性能调优手段")
	low := env.createAnswer(t, question.ID, answerer.ID)
	high := env.createAnswer(t, question.ID, answerer.ID)

	require.NoError(t, env.answerRepo.AddVotes(low.ID, 5))
	require.NoError(t, env.answerRepo.AddVotes(high.ID, 12))

	top, err := env.answers.ListHighlyVoted(10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, high.ID, top[0].ID)
	assert.Equal(t, 12, top[0].Votes)
}

func TestHideAcceptedAnswerSyncsQuestion(t *testing.T) {
	env := newTestEnv(t)
	asker := env.createUser(t, "asker")
	answerer := env.createUser(t, "answerer")

	question := env.createQuestion(t, asker.ID, "隐藏被采纳的回答后问题状态如何变化")
	answer := env.createAnswer(t, question.ID, answerer.ID)
	_, err := env.answers.Accept(question.ID, answer.ID, asker.ID)
	require.NoError(t, err)

	require.NoError(t, env.answers.SetHidden(answer.ID, true))

	q, err := env.questionRepo.FindByID(question.ID)
	require.NoError(t, err)
	assert.False(t, q.IsAnswered)

	// 列表中不再出现
	list, total, err := env.answers.ListByQuestion(question.ID, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, int64(0), total)

	// 恢复上架后问题回到已解决
	require.NoError(t, env.answers.SetHidden(answer.ID, false))
	q, err = env.questionRepo.FindByID(question.ID)
	require.NoError(t, err)
	assert.True(t, q.IsAnswered)
}

func TestReacceptReassertsSingleAcceptance(t *testing.T) {
	env := newTestEnv(t)
	asker := env.createUser(t, "asker")
	answerer := env.createUser(t, "answerer")

	question := env.createQuestion(t, asker.ID, "重复采纳同一回答会发生什么")
	answer := env.createAnswer(t, question.ID, answerer.ID)
	stray := env.createAnswer(t, question.ID, answerer.ID)

	_, err := env.answers.Accept(question.ID, answer.ID, asker.ID)
	require.NoError(t, err)

	// 直接制造第二个采纳位，模拟历史脏数据
	now := time.Now()
	require.NoError(t, env.db.Model(&model.Answer{}).
		Where("id = ?", stray.ID).
		Updates(map[string]interface{}{"is_accepted": true, "accepted_at": now}).Error)

	resp, err := env.answers.Accept(question.ID, answer.ID, asker.ID)
	require.NoError(t, err)
	assert.True(t, resp.IsAccepted)

	// 重新采纳后多余的采纳位被清掉
	var accepted int64
	require.NoError(t, env.db.Model(&model.Answer{}).
		Where("question_id = ? AND is_accepted = ?", question.ID, true).
		Count(&accepted).Error)
	assert.Equal(t, int64(1), accepted)

	// 重复采纳不重复发奖励、不重复通知
	author, err := env.userRepo.FindByID(answerer.ID)
	require.NoError(t, err)
	assert.Equal(t, ReputationAnswerAccepted, author.Reputation)

	unread, err := env.notifRepo.UnreadCount(answerer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}

func TestUnacceptWithDuplicateAcceptedKeepsAnswered(t *testing.T) {
	env := newTestEnv(t)
	asker := env.createUser(t, "asker")
	answerer := env.createUser(t, "answerer")

	question := env.createQuestion(t, asker.ID, "存在两个采纳位时撤销其中一个")
	first := env.createAnswer(t, question.ID, answerer.ID)
	second := env.createAnswer(t, question.ID, answerer.ID)

	_, err := env.answers.Accept(question.ID, first.ID, asker.ID)
	require.NoError(t, err)

	// 绕过服务层制造第二个采纳位
	now := time.Now()
	require.NoError(t, env.db.Model(&model.Answer{}).
		Where("id = ?", second.ID).
		Updates(map[string]interface{}{"is_accepted": true, "accepted_at": now}).Error)

	require.NoError(t, env.answers.Unaccept(question.ID, first.ID, asker.ID))

	// 另一个采纳位仍在，问题不能误标为未解决
	q, err := env.questionRepo.FindByID(question.ID)
	require.NoError(t, err)
	assert.True(t, q.IsAnswered)

	require.NoError(t, env.answers.Unaccept(question.ID, second.ID, asker.ID))
	q, err = env.questionRepo.FindByID(question.ID)
	require.NoError(t, err)
	assert.False(t, q.IsAnswered)
}
