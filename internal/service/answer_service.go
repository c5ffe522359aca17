package service

import (
	"qahub_backend/internal/model"
	"qahub_backend/internal/repository"
	"qahub_backend/internal/util"
	"time"

	"gorm.io/gorm"
)

// 声望调整值
const (
	ReputationAnswerUpvote   = 10
	ReputationAnswerDownvote = -2
	ReputationAnswerAccepted = 15
)

type AnswerService struct {
	AnswerRepo   *repository.AnswerRepository
	QuestionRepo *repository.QuestionRepository
	UserRepo     *repository.UserRepository
	Notifier     *NotificationService
}

func NewAnswerService(
	answerRepo *repository.AnswerRepository,
	questionRepo *repository.QuestionRepository,
	userRepo *repository.UserRepository,
	notifier *NotificationService,
) *AnswerService {
	return &AnswerService{
		AnswerRepo:   answerRepo,
		QuestionRepo: questionRepo,
		UserRepo:     userRepo,
		Notifier:     notifier,
	}
}

type AnswerRequest struct {
	Content string `json:"content" binding:"required"`
}

type AnswerResponse struct {
	ID         string     `json:"id"`
	QuestionID string     `json:"questionId"`
	Content    string     `json:"content"`
	Author     string     `json:"author"`
	AuthorID   uint       `json:"authorId"`
	Avatar     string     `json:"avatar"`
	Votes      int        `json:"votes"`
	VotesCount int        `json:"votesCount"`
	IsAccepted bool       `json:"isAccepted"`
	AcceptedAt *time.Time `json:"acceptedAt,omitempty"`
	IsEdited   bool       `json:"isEdited"`
	EditCount  uint       `json:"editCount"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func toAnswerResponse(a *model.Answer) *AnswerResponse {
	resp := &AnswerResponse{
		ID:         a.ID,
		QuestionID: a.QuestionID,
		Content:    a.Content,
		AuthorID:   a.AuthorID,
		Votes:      a.Votes,
		VotesCount: a.VotesCount(),
		IsAccepted: a.IsAccepted,
		AcceptedAt: a.AcceptedAt,
		IsEdited:   a.IsEdited,
		EditCount:  a.EditCount,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
	if a.Author.ID != 0 {
		resp.Author = a.Author.Name
		resp.Avatar = a.Author.Avatar
	}
	return resp
}

// Create 回答问题并通知提问者
func (s *AnswerService) Create(questionID string, authorID uint, req *AnswerRequest) (*AnswerResponse, error) {
	question, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		return nil, util.ErrNotFound
	}
	if question.IsClosed {
		return nil, util.ErrPermissionDenied
	}
	if err := util.ValidateContent(req.Content); err != nil {
		return nil, err
	}

	answer := &model.Answer{
		QuestionID: questionID,
		AuthorID:   authorID,
		Content:    req.Content,
	}
	if err := s.AnswerRepo.Create(answer); err != nil {
		return nil, err
	}

	if s.Notifier != nil {
		s.Notifier.NotifyAnswer(question.AuthorID, authorID, question.Title, questionID, answer.ID)
	}

	created, err := s.AnswerRepo.FindByID(answer.ID)
	if err != nil {
		return toAnswerResponse(answer), nil
	}
	return toAnswerResponse(created), nil
}

func (s *AnswerService) ListByQuestion(questionID string, offset, limit int) ([]AnswerResponse, int64, error) {
	answers, total, err := s.AnswerRepo.FindByQuestion(questionID, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]AnswerResponse, 0, len(answers))
	for i := range answers {
		responses = append(responses, *toAnswerResponse(&answers[i]))
	}
	return responses, total, nil
}

// GetAccepted 获取问题当前采纳的回答
func (s *AnswerService) GetAccepted(questionID string) (*AnswerResponse, error) {
	answer, err := s.AnswerRepo.FindAccepted(questionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrNotFound
		}
		return nil, err
	}
	return toAnswerResponse(answer), nil
}

// ListHighlyVoted 高票回答榜单
func (s *AnswerService) ListHighlyVoted(limit int) ([]AnswerResponse, error) {
	answers, err := s.AnswerRepo.FindHighlyVoted(limit)
	if err != nil {
		return nil, err
	}
	responses := make([]AnswerResponse, 0, len(answers))
	for i := range answers {
		responses = append(responses, *toAnswerResponse(&answers[i]))
	}
	return responses, nil
}

// Update 编辑回答，记录编辑痕迹
func (s *AnswerService) Update(id string, userID uint, isModerator bool, req *AnswerRequest) (*AnswerResponse, error) {
	answer, err := s.AnswerRepo.FindByID(id)
	if err != nil {
		return nil, util.ErrNotFound
	}
	if answer.AuthorID != userID && !isModerator {
		return nil, util.ErrPermissionDenied
	}
	if err := util.ValidateContent(req.Content); err != nil {
		return nil, err
	}

	now := time.Now()
	answer.Content = req.Content
	answer.IsEdited = true
	answer.EditCount++
	answer.LastEditedAt = &now
	if err := s.AnswerRepo.Update(answer); err != nil {
		return nil, err
	}
	return toAnswerResponse(answer), nil
}

// Accept 提问者采纳回答。同一问题同时只有一个采纳位，换采纳时旧采纳自动让位。
func (s *AnswerService) Accept(questionID, answerID string, userID uint) (*AnswerResponse, error) {
	question, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		return nil, util.ErrNotFound
	}
	if question.AuthorID != userID {
		return nil, util.ErrPermissionDenied
	}

	answer, err := s.AnswerRepo.FindByID(answerID)
	if err != nil {
		return nil, util.ErrNotFound
	}
	if answer.QuestionID != questionID {
		return nil, util.ErrQuestionMismatch
	}

	// 重复采纳不再发奖励和通知，但事务照走，顺手清掉异常的多采纳位
	alreadyAccepted := answer.IsAccepted

	if err := s.AnswerRepo.Accept(answer); err != nil {
		return nil, err
	}

	if !alreadyAccepted {
		if err := s.UserRepo.AddReputation(answer.AuthorID, ReputationAnswerAccepted); err != nil {
			return nil, err
		}
		if s.Notifier != nil {
			s.Notifier.NotifyAccept(answer.AuthorID, userID, question.Title, questionID, answerID)
		}
	}

	accepted, err := s.AnswerRepo.FindByID(answerID)
	if err != nil {
		return nil, err
	}
	return toAnswerResponse(accepted), nil
}

// Unaccept 撤销采纳，回答者声望同步回退
func (s *AnswerService) Unaccept(questionID, answerID string, userID uint) error {
	question, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		return util.ErrNotFound
	}
	if question.AuthorID != userID {
		return util.ErrPermissionDenied
	}

	answer, err := s.AnswerRepo.FindByID(answerID)
	if err != nil {
		return util.ErrNotFound
	}
	if answer.QuestionID != questionID {
		return util.ErrQuestionMismatch
	}
	if !answer.IsAccepted {
		return nil
	}

	if err := s.AnswerRepo.Unaccept(answer); err != nil {
		return err
	}
	return s.UserRepo.AddReputation(answer.AuthorID, -ReputationAnswerAccepted)
}

// Vote 投票，规则同问题投票
func (s *AnswerService) Vote(id string, voterID uint, up bool) (*AnswerResponse, error) {
	answer, err := s.AnswerRepo.FindByID(id)
	if err != nil {
		return nil, util.ErrNotFound
	}
	if answer.AuthorID == voterID {
		return nil, util.ErrSelfVote
	}

	delta := 1
	repDelta := ReputationAnswerUpvote
	if !up {
		delta = -1
		repDelta = ReputationAnswerDownvote
	}

	if err := s.AnswerRepo.AddVotes(id, delta); err != nil {
		return nil, err
	}
	if err := s.UserRepo.AddReputation(answer.AuthorID, repDelta); err != nil {
		return nil, err
	}

	if up && s.Notifier != nil {
		question, qErr := s.QuestionRepo.FindByID(answer.QuestionID)
		title := ""
		if qErr == nil {
			title = question.Title
		}
		s.Notifier.NotifyVote(answer.AuthorID, voterID, title, answer.QuestionID, &answer.ID)
	}

	updated, err := s.AnswerRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	return toAnswerResponse(updated), nil
}

func (s *AnswerService) SoftDelete(id string, userID uint, isModerator bool) error {
	answer, err := s.AnswerRepo.FindByID(id)
	if err != nil {
		return util.ErrNotFound
	}
	if answer.AuthorID != userID && !isModerator {
		return util.ErrPermissionDenied
	}
	return s.AnswerRepo.SoftDelete(id)
}

// SetHidden 下架/恢复上架，保持采纳状态不变
func (s *AnswerService) SetHidden(id string, hidden bool) error {
	var err error
	if hidden {
		err = s.AnswerRepo.Deactivate(id)
	} else {
		err = s.AnswerRepo.Activate(id)
	}
	if err == gorm.ErrRecordNotFound {
		return util.ErrNotFound
	}
	return err
}

func (s *AnswerService) Restore(id string) error {
	if _, err := s.AnswerRepo.FindByIDAny(id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrNotFound
		}
		return err
	}
	return s.AnswerRepo.Restore(id)
}
