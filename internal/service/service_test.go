package service

import (
	"fmt"
	"testing"
	"time"

	"qahub_backend/internal/config"
	"qahub_backend/internal/model"
	"qahub_backend/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&model.User{},
		&model.Tag{},
		&model.Question{},
		&model.Answer{},
		&model.Notification{},
	)
	require.NoError(t, err)

	return db
}

type testEnv struct {
	db            *gorm.DB
	userRepo      *repository.UserRepository
	tagRepo       *repository.TagRepository
	questionRepo  *repository.QuestionRepository
	answerRepo    *repository.AnswerRepository
	notifRepo     *repository.NotificationRepository
	auth          *AuthService
	users         *UserService
	questions     *QuestionService
	answers       *AnswerService
	tags          *TagService
	notifications *NotificationService
	retention     *RetentionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	userRepo := repository.NewUserRepository(db)
	tagRepo := repository.NewTagRepository(db)
	questionRepo := repository.NewQuestionRepository(db, tagRepo)
	answerRepo := repository.NewAnswerRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	cfg := &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour},
	}

	notifications := NewNotificationService(notifRepo, userRepo, nil)
	return &testEnv{
		db:            db,
		userRepo:      userRepo,
		tagRepo:       tagRepo,
		questionRepo:  questionRepo,
		answerRepo:    answerRepo,
		notifRepo:     notifRepo,
		auth:          NewAuthService(userRepo, cfg),
		users:         NewUserService(userRepo),
		questions:     NewQuestionService(questionRepo, answerRepo, tagRepo, userRepo, notifications, nil),
		answers:       NewAnswerService(answerRepo, questionRepo, userRepo, notifications),
		tags:          NewTagService(tagRepo),
		notifications: notifications,
		retention:     NewRetentionService(userRepo, tagRepo, questionRepo, answerRepo, notifRepo),
	}
}

func (e *testEnv) createUser(t *testing.T, name string) *model.User {
	t.Helper()

	user := &model.User{
		Name:     name,
		Email:    fmt.Sprintf("%s@example.com", name),
		Password: "hashed",
		Role:     model.RoleUser,
	}
	require.NoError(t, e.userRepo.Create(user))
	return user
}

func (e *testEnv) createQuestion(t *testing.T, authorID uint, title string, tagNames ...string) *model.Question {
	t.Helper()

	if len(tagNames) == 0 {
		tagNames = []string{"testing"}
	}
	resp, err := e.questions.Create(authorID, &QuestionRequest{
		Title:   title,
		Content: "这是一个用于测试的问题描述，内容足够长。",
		Tags:    tagNames,
	})
	require.NoError(t, err)

	question, err := e.questionRepo.FindByID(resp.ID)
	require.NoError(t, err)
	return question
}

func (e *testEnv) createAnswer(t *testing.T, questionID string, authorID uint) *model.Answer {
	t.Helper()

	resp, err := e.answers.Create(questionID, authorID, &AnswerRequest{
		Content: "这是一个用于测试的回答内容，长度满足要求。",
	})
	require.NoError(t, err)

	answer, err := e.answerRepo.FindByID(resp.ID)
	require.NoError(t, err)
	return answer
}
