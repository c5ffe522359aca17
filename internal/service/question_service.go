package service

import (
	"context"
	"fmt"
	"qahub_backend/internal/model"
	"qahub_backend/internal/repository"
	"qahub_backend/internal/util"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// 声望调整值
const (
	ReputationQuestionUpvote   = 5
	ReputationQuestionDownvote = -2
)

type QuestionService struct {
	QuestionRepo *repository.QuestionRepository
	AnswerRepo   *repository.AnswerRepository
	TagRepo      *repository.TagRepository
	UserRepo     *repository.UserRepository
	Notifier     *NotificationService
	Redis        *redis.Client
}

func NewQuestionService(
	questionRepo *repository.QuestionRepository,
	answerRepo *repository.AnswerRepository,
	tagRepo *repository.TagRepository,
	userRepo *repository.UserRepository,
	notifier *NotificationService,
	rdb *redis.Client,
) *QuestionService {
	return &QuestionService{
		QuestionRepo: questionRepo,
		AnswerRepo:   answerRepo,
		TagRepo:      tagRepo,
		UserRepo:     userRepo,
		Notifier:     notifier,
		Redis:        rdb,
	}
}

type QuestionRequest struct {
	Title   string   `json:"title" binding:"required"`
	Content string   `json:"content" binding:"required"`
	Tags    []string `json:"tags" binding:"required,min=1,max=5"`
}

type BountyRequest struct {
	Amount uint `json:"amount" binding:"required,min=25,max=500"`
	Days   int  `json:"days" binding:"omitempty,min=1,max=30"`
}

type QuestionResponse struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Content         string     `json:"content"`
	Author          string     `json:"author"`
	AuthorID        uint       `json:"authorId"`
	Avatar          string     `json:"avatar"`
	Tags            []string   `json:"tags"`
	Views           uint       `json:"views"`
	Votes           int        `json:"votes"`
	VotesCount      int        `json:"votesCount"`
	AnswerCount     int64      `json:"answerCount"`
	IsAnswered      bool       `json:"isAnswered"`
	IsClosed        bool       `json:"isClosed"`
	IsFeatured      bool       `json:"isFeatured"`
	BountyAmount    uint       `json:"bountyAmount"`
	BountyExpiresAt *time.Time `json:"bountyExpiresAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func (s *QuestionService) toResponse(q *model.Question) *QuestionResponse {
	tags := make([]string, 0, len(q.Tags))
	for _, t := range q.Tags {
		tags = append(tags, t.Name)
	}
	resp := &QuestionResponse{
		ID:              q.ID,
		Title:           q.Title,
		Content:         q.Content,
		AuthorID:        q.AuthorID,
		Tags:            tags,
		Views:           q.Views,
		Votes:           q.Votes,
		VotesCount:      q.VotesCount(),
		IsAnswered:      q.IsAnswered,
		IsClosed:        q.IsClosed,
		IsFeatured:      q.IsFeatured,
		BountyAmount:    q.BountyAmount,
		BountyExpiresAt: q.BountyExpiresAt,
		CreatedAt:       q.CreatedAt,
		UpdatedAt:       q.UpdatedAt,
	}
	if q.Author.ID != 0 {
		resp.Author = q.Author.Name
		resp.Avatar = q.Author.Avatar
	}
	return resp
}

func (s *QuestionService) List(f repository.QuestionFilter) ([]QuestionResponse, int64, error) {
	questions, total, err := s.QuestionRepo.FindWithPagination(f)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]QuestionResponse, 0, len(questions))
	for i := range questions {
		responses = append(responses, *s.toResponse(&questions[i]))
	}
	return responses, total, nil
}

// GetDetail 查详情并计浏览量，同一用户 10 分钟内重复访问不重复计数（Redis 去重）
func (s *QuestionService) GetDetail(id string, viewerID uint) (*QuestionResponse, error) {
	question, err := s.QuestionRepo.FindByID(id)
	if err != nil {
		return nil, util.ErrNotFound
	}

	countView := true
	if s.Redis != nil && viewerID > 0 {
		viewKey := fmt.Sprintf("question:view:%s:%d", id, viewerID)
		isNewVisit, _ := s.Redis.SetNX(context.Background(), viewKey, "1", 10*time.Minute).Result()
		countView = isNewVisit
	}
	if countView {
		if err := s.QuestionRepo.IncrementViews(id); err == nil {
			question.Views++
		}
	}

	resp := s.toResponse(question)
	_, resp.AnswerCount, err = s.AnswerRepo.FindByQuestion(id, 0, 1)
	if err != nil {
		resp.AnswerCount = 0
	}
	return resp, nil
}

// Create 建问，标签按名称取或建
func (s *QuestionService) Create(authorID uint, req *QuestionRequest) (*QuestionResponse, error) {
	if err := util.ValidateQuestionTitle(req.Title); err != nil {
		return nil, err
	}
	if err := util.ValidateContent(req.Content); err != nil {
		return nil, err
	}

	tags, err := s.resolveTags(req.Tags)
	if err != nil {
		return nil, err
	}

	question := &model.Question{
		Title:    req.Title,
		Content:  req.Content,
		AuthorID: authorID,
		Tags:     tags,
	}
	if err := s.QuestionRepo.Create(question); err != nil {
		return nil, err
	}

	created, err := s.QuestionRepo.FindByID(question.ID)
	if err != nil {
		return s.toResponse(question), nil
	}
	return s.toResponse(created), nil
}

func (s *QuestionService) Update(id string, userID uint, isModerator bool, req *QuestionRequest) (*QuestionResponse, error) {
	question, err := s.QuestionRepo.FindByID(id)
	if err != nil {
		return nil, util.ErrNotFound
	}
	if question.AuthorID != userID && !isModerator {
		return nil, util.ErrPermissionDenied
	}
	if err := util.ValidateQuestionTitle(req.Title); err != nil {
		return nil, err
	}
	if err := util.ValidateContent(req.Content); err != nil {
		return nil, err
	}

	question.Title = req.Title
	question.Content = req.Content
	if err := s.QuestionRepo.Update(question); err != nil {
		return nil, err
	}

	tags, err := s.resolveTags(req.Tags)
	if err != nil {
		return nil, err
	}
	if err := s.QuestionRepo.ReplaceTags(question, tags); err != nil {
		return nil, err
	}

	updated, err := s.QuestionRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(updated), nil
}

// resolveTags 按名称解析标签，同义词自动折叠到主标签
func (s *QuestionService) resolveTags(names []string) ([]model.Tag, error) {
	tags := make([]model.Tag, 0, len(names))
	seen := make(map[uint]bool, len(names))
	for _, name := range names {
		normalized := util.NormalizeTagName(name)
		if err := util.ValidateTagName(normalized); err != nil {
			return nil, err
		}
		var tag *model.Tag
		err := s.TagRepo.DB.Transaction(func(tx *gorm.DB) error {
			var txErr error
			tag, txErr = s.TagRepo.GetOrCreate(tx, normalized)
			return txErr
		})
		if err != nil {
			return nil, err
		}
		if tag.SynonymOfID != nil {
			canonical, err := s.TagRepo.FindByID(*tag.SynonymOfID)
			if err == nil {
				tag = canonical
			}
		}
		if !seen[tag.ID] {
			seen[tag.ID] = true
			tags = append(tags, *tag)
		}
	}
	return tags, nil
}

// Vote 投票：up/down，不许投自己，净票数原子更新，作者声望随之调整
func (s *QuestionService) Vote(id string, voterID uint, up bool) (*QuestionResponse, error) {
	question, err := s.QuestionRepo.FindByID(id)
	if err != nil {
		return nil, util.ErrNotFound
	}
	if question.AuthorID == voterID {
		return nil, util.ErrSelfVote
	}

	delta := 1
	repDelta := ReputationQuestionUpvote
	if !up {
		delta = -1
		repDelta = ReputationQuestionDownvote
	}

	if err := s.QuestionRepo.AddVotes(id, delta); err != nil {
		return nil, err
	}
	if err := s.UserRepo.AddReputation(question.AuthorID, repDelta); err != nil {
		return nil, err
	}

	if up && s.Notifier != nil {
		s.Notifier.NotifyVote(question.AuthorID, voterID, question.Title, question.ID, nil)
	}

	updated, err := s.QuestionRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(updated), nil
}

func (s *QuestionService) SetClosed(id string, userID uint, isModerator bool, closed bool) error {
	question, err := s.QuestionRepo.FindByID(id)
	if err != nil {
		return util.ErrNotFound
	}
	if question.AuthorID != userID && !isModerator {
		return util.ErrPermissionDenied
	}
	return s.QuestionRepo.SetFlag(id, "is_closed", closed)
}

func (s *QuestionService) SetFeatured(id string, featured bool) error {
	if _, err := s.QuestionRepo.FindByID(id); err != nil {
		return util.ErrNotFound
	}
	return s.QuestionRepo.SetFlag(id, "is_featured", featured)
}

// SetHidden 下架/恢复上架，不影响删除标记
func (s *QuestionService) SetHidden(id string, hidden bool) error {
	var err error
	if hidden {
		err = s.QuestionRepo.Deactivate(id)
	} else {
		err = s.QuestionRepo.Activate(id)
	}
	if err == gorm.ErrRecordNotFound {
		return util.ErrNotFound
	}
	return err
}

// SetBounty 设置悬赏，默认 7 天有效期
func (s *QuestionService) SetBounty(id string, userID uint, req *BountyRequest) error {
	question, err := s.QuestionRepo.FindByID(id)
	if err != nil {
		return util.ErrNotFound
	}
	if question.AuthorID != userID {
		return util.ErrPermissionDenied
	}

	days := req.Days
	if days == 0 {
		days = 7
	}
	expiresAt := time.Now().AddDate(0, 0, days)
	return s.QuestionRepo.SetBounty(id, req.Amount, &expiresAt)
}

func (s *QuestionService) SoftDelete(id string, userID uint, isModerator bool) error {
	question, err := s.QuestionRepo.FindByID(id)
	if err != nil {
		return util.ErrNotFound
	}
	if question.AuthorID != userID && !isModerator {
		return util.ErrPermissionDenied
	}
	return s.QuestionRepo.SoftDelete(id)
}

func (s *QuestionService) Restore(id string) error {
	if _, err := s.QuestionRepo.FindByIDAny(id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrNotFound
		}
		return err
	}
	return s.QuestionRepo.Restore(id)
}
