package service

import (
	"qahub_backend/internal/repository"
	"qahub_backend/pkg/monitoring"
	"time"

	"go.uber.org/zap"
)

// RetentionService 定期物理清理软删超期的记录
type RetentionService struct {
	UserRepo         *repository.UserRepository
	TagRepo          *repository.TagRepository
	QuestionRepo     *repository.QuestionRepository
	AnswerRepo       *repository.AnswerRepository
	NotificationRepo *repository.NotificationRepository
}

func NewRetentionService(
	userRepo *repository.UserRepository,
	tagRepo *repository.TagRepository,
	questionRepo *repository.QuestionRepository,
	answerRepo *repository.AnswerRepository,
	notificationRepo *repository.NotificationRepository,
) *RetentionService {
	return &RetentionService{
		UserRepo:         userRepo,
		TagRepo:          tagRepo,
		QuestionRepo:     questionRepo,
		AnswerRepo:       answerRepo,
		NotificationRepo: notificationRepo,
	}
}

type SweepResult struct {
	Users         int64 `json:"users"`
	Tags          int64 `json:"tags"`
	Questions     int64 `json:"questions"`
	Answers       int64 `json:"answers"`
	Notifications int64 `json:"notifications"`
	Total         int64 `json:"total"`
}

// Sweep 清理 cutoff 之前软删的记录，可重复执行
func (s *RetentionService) Sweep(cutoff time.Time) (*SweepResult, error) {
	result := &SweepResult{}

	purges := []struct {
		entity string
		fn     func(time.Time) (int64, error)
		target *int64
	}{
		{"answer", s.AnswerRepo.PurgeDeletedBefore, &result.Answers},
		{"question", s.QuestionRepo.PurgeDeletedBefore, &result.Questions},
		{"notification", s.NotificationRepo.PurgeDeletedBefore, &result.Notifications},
		{"tag", s.TagRepo.PurgeDeletedBefore, &result.Tags},
		{"user", s.UserRepo.PurgeDeletedBefore, &result.Users},
	}

	for _, p := range purges {
		purged, err := p.fn(cutoff)
		if err != nil {
			zap.L().Error("清理软删记录失败",
				zap.String("entity", p.entity),
				zap.Error(err))
			return result, err
		}
		*p.target = purged
		result.Total += purged
		if purged > 0 {
			monitoring.RetentionPurgeCounter.WithLabelValues(p.entity).Add(float64(purged))
		}
	}

	// 已读通知超过保留期后直接回收，无需先软删
	readPurged, err := s.NotificationRepo.PurgeReadBefore(cutoff)
	if err != nil {
		zap.L().Error("清理已读通知失败", zap.Error(err))
		return result, err
	}
	result.Notifications += readPurged
	result.Total += readPurged
	if readPurged > 0 {
		monitoring.RetentionPurgeCounter.WithLabelValues("notification").Add(float64(readPurged))
	}

	zap.L().Info("保留期清理完成",
		zap.Time("cutoff", cutoff),
		zap.Int64("total", result.Total))
	return result, nil
}

// SweepOlderThan 按保留天数清理
func (s *RetentionService) SweepOlderThan(days int) (*SweepResult, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	return s.Sweep(cutoff)
}
