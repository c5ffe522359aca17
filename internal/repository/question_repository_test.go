package repository

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return db, mock
}

// 投票必须是单条原子 UPDATE，不能读改写
func TestAddVotesIsAtomicUpdate(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewQuestionRepository(db, NewTagRepository(db))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE `questions` SET `updated_at`=?,`votes`=votes + ? WHERE id = ?")).
		WithArgs(sqlmock.AnyArg(), 3, "q-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.AddVotes("q-1", 3))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddVotesNegativeDelta(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewQuestionRepository(db, NewTagRepository(db))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE `questions` SET `updated_at`=?,`votes`=votes + ? WHERE id = ?")).
		WithArgs(sqlmock.AnyArg(), -1, "q-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.AddVotes("q-1", -1))
	require.NoError(t, mock.ExpectationsWereMet())
}

// 标签计数递减带 usage_count > 0 守卫，计数不为负
func TestDecrementUsageHasFloorGuard(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTagRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE `tags` SET `updated_at`=?,`usage_count`=usage_count - 1 WHERE id = ? AND usage_count > 0")).
		WithArgs(sqlmock.AnyArg(), uint(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DecrementUsage(db, 7))
	require.NoError(t, mock.ExpectationsWereMet())
}
