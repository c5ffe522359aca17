package service

import (
	"context"
	"fmt"
	"qahub_backend/internal/model"
	"qahub_backend/internal/repository"
	"qahub_backend/internal/util"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

type NotificationService struct {
	NotificationRepo *repository.NotificationRepository
	UserRepo         *repository.UserRepository
	Redis            *redis.Client
}

func NewNotificationService(
	notificationRepo *repository.NotificationRepository,
	userRepo *repository.UserRepository,
	rdb *redis.Client,
) *NotificationService {
	return &NotificationService{
		NotificationRepo: notificationRepo,
		UserRepo:         userRepo,
		Redis:            rdb,
	}
}

type NotificationResponse struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Title       string     `json:"title"`
	Message     string     `json:"message"`
	Sender      string     `json:"sender,omitempty"`
	QuestionID  *string    `json:"questionId,omitempty"`
	AnswerID    *string    `json:"answerId,omitempty"`
	IsRead      bool       `json:"isRead"`
	ReadAt      *time.Time `json:"readAt,omitempty"`
	IsImportant bool       `json:"isImportant"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func toNotificationResponse(n *model.Notification) *NotificationResponse {
	resp := &NotificationResponse{
		ID:          n.ID,
		Type:        string(n.Type),
		Title:       n.Title,
		Message:     n.Message,
		QuestionID:  n.QuestionID,
		AnswerID:    n.AnswerID,
		IsRead:      n.IsRead,
		ReadAt:      n.ReadAt,
		IsImportant: n.IsImportant,
		CreatedAt:   n.CreatedAt,
	}
	if n.Sender != nil {
		resp.Sender = n.Sender.Name
	}
	return resp
}

// Create 入库并使未读数缓存失效
func (s *NotificationService) Create(notification *model.Notification) error {
	if err := s.NotificationRepo.Create(notification); err != nil {
		return err
	}
	s.invalidateUnreadCache(notification.RecipientID)
	return nil
}

// NotifyAnswer 新回答通知问题作者，自答不通知
func (s *NotificationService) NotifyAnswer(recipientID, senderID uint, questionTitle, questionID, answerID string) {
	if recipientID == senderID {
		return
	}
	s.deliver(&model.Notification{
		RecipientID: recipientID,
		SenderID:    &senderID,
		Type:        model.NotificationAnswer,
		Title:       "你的问题有了新回答",
		Message:     fmt.Sprintf("有人回答了你的问题「%s」", questionTitle),
		QuestionID:  &questionID,
		AnswerID:    &answerID,
	})
}

func (s *NotificationService) NotifyVote(recipientID, senderID uint, title, questionID string, answerID *string) {
	if recipientID == senderID {
		return
	}
	s.deliver(&model.Notification{
		RecipientID: recipientID,
		SenderID:    &senderID,
		Type:        model.NotificationVote,
		Title:       "收到新的赞同",
		Message:     fmt.Sprintf("你在「%s」下的内容获得了一个赞同", title),
		QuestionID:  &questionID,
		AnswerID:    answerID,
	})
}

// NotifyAccept 回答被采纳，重要通知
func (s *NotificationService) NotifyAccept(recipientID, senderID uint, questionTitle, questionID, answerID string) {
	if recipientID == senderID {
		return
	}
	s.deliver(&model.Notification{
		RecipientID: recipientID,
		SenderID:    &senderID,
		Type:        model.NotificationAccept,
		Title:       "你的回答被采纳了",
		Message:     fmt.Sprintf("你在「%s」下的回答被提问者采纳", questionTitle),
		QuestionID:  &questionID,
		AnswerID:    &answerID,
		IsImportant: true,
	})
}

// NotifySystem 系统广播，sender 为空
func (s *NotificationService) NotifySystem(recipientID uint, title, message string, important bool) {
	s.deliver(&model.Notification{
		RecipientID: recipientID,
		Type:        model.NotificationSystem,
		Title:       title,
		Message:     message,
		IsImportant: important,
	})
}

// BroadcastSystem 向多个用户批量投递系统通知，返回写入条数
func (s *NotificationService) BroadcastSystem(recipientIDs []uint, title, message string, important bool) (int, error) {
	seen := make(map[uint]bool, len(recipientIDs))
	notifications := make([]model.Notification, 0, len(recipientIDs))
	for _, id := range recipientIDs {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		notifications = append(notifications, model.Notification{
			RecipientID: id,
			Type:        model.NotificationSystem,
			Title:       title,
			Message:     message,
			IsImportant: important,
		})
	}
	if len(notifications) == 0 {
		return 0, util.ErrValidation
	}

	if err := s.NotificationRepo.CreateBatch(notifications); err != nil {
		return 0, err
	}
	for id := range seen {
		s.invalidateUnreadCache(id)
	}
	return len(notifications), nil
}

func (s *NotificationService) deliver(notification *model.Notification) {
	if err := s.Create(notification); err != nil {
		zap.L().Error("通知投递失败",
			zap.Uint("recipientId", notification.RecipientID),
			zap.String("type", string(notification.Type)),
			zap.Error(err))
	}
}

func (s *NotificationService) Inbox(f repository.NotificationFilter) ([]NotificationResponse, int64, error) {
	notifications, total, err := s.NotificationRepo.FindWithPagination(f)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]NotificationResponse, 0, len(notifications))
	for i := range notifications {
		responses = append(responses, *toNotificationResponse(&notifications[i]))
	}
	return responses, total, nil
}

func (s *NotificationService) MarkRead(id string, recipientID uint) error {
	if err := s.NotificationRepo.MarkRead(id, recipientID); err != nil {
		return util.ErrNotFound
	}
	s.invalidateUnreadCache(recipientID)
	return nil
}

func (s *NotificationService) MarkUnread(id string, recipientID uint) error {
	if err := s.NotificationRepo.MarkUnread(id, recipientID); err != nil {
		return util.ErrNotFound
	}
	s.invalidateUnreadCache(recipientID)
	return nil
}

func (s *NotificationService) MarkAllRead(recipientID uint) (int64, error) {
	affected, err := s.NotificationRepo.MarkAllRead(recipientID)
	if err != nil {
		return 0, err
	}
	s.invalidateUnreadCache(recipientID)
	return affected, nil
}

// UnreadCount 未读数带 Redis 缓存，60 秒过期
func (s *NotificationService) UnreadCount(recipientID uint) (int64, error) {
	if s.Redis != nil {
		cacheKey := fmt.Sprintf("notification:unread:%d", recipientID)
		cached, err := s.Redis.Get(context.Background(), cacheKey).Int64()
		if err == nil {
			return cached, nil
		}
	}

	count, err := s.NotificationRepo.UnreadCount(recipientID)
	if err != nil {
		return 0, err
	}

	if s.Redis != nil {
		cacheKey := fmt.Sprintf("notification:unread:%d", recipientID)
		s.Redis.Set(context.Background(), cacheKey, count, 60*time.Second)
	}
	return count, nil
}

func (s *NotificationService) Delete(id string, recipientID uint) error {
	if err := s.NotificationRepo.SoftDelete(id, recipientID); err != nil {
		return util.ErrNotFound
	}
	s.invalidateUnreadCache(recipientID)
	return nil
}

func (s *NotificationService) invalidateUnreadCache(recipientID uint) {
	if s.Redis == nil {
		return
	}
	cacheKey := fmt.Sprintf("notification:unread:%d", recipientID)
	s.Redis.Del(context.Background(), cacheKey)
}
