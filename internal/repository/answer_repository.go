package repository

import (
	"qahub_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnswerRepository struct {
	DB *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{DB: db}
}

func (r *AnswerRepository) Create(answer *model.Answer) error {
	return r.DB.Create(answer).Error
}

func (r *AnswerRepository) FindByID(id string) (*model.Answer, error) {
	var answer model.Answer
	err := r.DB.Scopes(model.ActiveScope).
		Preload("Author").
		First(&answer, "id = ?", id).Error
	return &answer, err
}

func (r *AnswerRepository) FindByIDAny(id string) (*model.Answer, error) {
	var answer model.Answer
	err := r.DB.Preload("Author").First(&answer, "id = ?", id).Error
	return &answer, err
}

// FindByQuestion 已采纳置顶，其余按票数、时间倒序
func (r *AnswerRepository) FindByQuestion(questionID string, offset, limit int) ([]model.Answer, int64, error) {
	var answers []model.Answer
	var total int64

	query := r.DB.Model(&model.Answer{}).Scopes(model.ActiveScope).
		Where("question_id = ?", questionID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("is_accepted DESC, votes DESC, created_at DESC").
		Offset(offset).Limit(limit).
		Preload("Author").
		Find(&answers).Error
	return answers, total, err
}

func (r *AnswerRepository) FindAccepted(questionID string) (*model.Answer, error) {
	var answer model.Answer
	err := r.DB.Scopes(model.ActiveScope).
		Where("question_id = ? AND is_accepted = ?", questionID, true).
		Preload("Author").
		First(&answer).Error
	return &answer, err
}

func (r *AnswerRepository) FindHighlyVoted(limit int) ([]model.Answer, error) {
	var answers []model.Answer
	err := r.DB.Scopes(model.ActiveScope).
		Where("votes >= ?", 10).
		Order("votes DESC").
		Limit(limit).
		Preload("Author").
		Find(&answers).Error
	return answers, err
}

func (r *AnswerRepository) Update(answer *model.Answer) error {
	return r.DB.Omit("Author").Save(answer).Error
}

// AddVotes 原子加减净票数
func (r *AnswerRepository) AddVotes(id string, delta int) error {
	return r.DB.Model(&model.Answer{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"votes":      gorm.Expr("votes + ?", delta),
			"updated_at": time.Now(),
		}).Error
}

// Accept 采纳回答：同一问题下先清掉其他采纳位，再置本回答，最后标记问题已解决。
// 整个协议跑在一个事务里，问题行先锁住作为串行化点（MySQL 下 FOR UPDATE）。
func (r *AnswerRepository) Accept(answer *model.Answer) error {
	now := time.Now()
	return r.DB.Transaction(func(tx *gorm.DB) error {
		q := tx
		if tx.Dialector.Name() == "mysql" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var question model.Question
		if err := q.First(&question, "id = ?", answer.QuestionID).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.Answer{}).
			Where("question_id = ? AND id <> ? AND is_accepted = ?", answer.QuestionID, answer.ID, true).
			Updates(map[string]interface{}{
				"is_accepted": false,
				"accepted_at": nil,
				"updated_at":  now,
			}).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.Answer{}).
			Where("id = ?", answer.ID).
			Updates(map[string]interface{}{
				"is_accepted": true,
				"accepted_at": now,
				"updated_at":  now,
			}).Error; err != nil {
			return err
		}

		return tx.Model(&model.Question{}).
			Where("id = ?", answer.QuestionID).
			Updates(map[string]interface{}{
				"is_answered": true,
				"updated_at":  now,
			}).Error
	})
}

// Unaccept 撤销采纳后按剩余采纳数重算问题的已解决位
func (r *AnswerRepository) Unaccept(answer *model.Answer) error {
	now := time.Now()
	return r.DB.Transaction(func(tx *gorm.DB) error {
		q := tx
		if tx.Dialector.Name() == "mysql" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var question model.Question
		if err := q.First(&question, "id = ?", answer.QuestionID).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.Answer{}).
			Where("id = ?", answer.ID).
			Updates(map[string]interface{}{
				"is_accepted": false,
				"accepted_at": nil,
				"updated_at":  now,
			}).Error; err != nil {
			return err
		}

		return syncAnswered(tx, answer.QuestionID, now)
	})
}

// syncAnswered 依据存活的采纳回答重算 is_answered
func syncAnswered(tx *gorm.DB, questionID string, now time.Time) error {
	var count int64
	if err := tx.Model(&model.Answer{}).Scopes(model.ActiveScope).
		Where("question_id = ? AND is_accepted = ?", questionID, true).
		Count(&count).Error; err != nil {
		return err
	}
	return tx.Model(&model.Question{}).
		Where("id = ?", questionID).
		Updates(map[string]interface{}{
			"is_answered": count > 0,
			"updated_at":  now,
		}).Error
}

// Activate 上架回答，同步问题的已解决位
func (r *AnswerRepository) Activate(id string) error {
	return r.setActiveAndSync(id, true)
}

// Deactivate 下架回答；隐藏被采纳的回答后问题回到未解决
func (r *AnswerRepository) Deactivate(id string) error {
	return r.setActiveAndSync(id, false)
}

func (r *AnswerRepository) setActiveAndSync(id string, active bool) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var answer model.Answer
		if err := tx.First(&answer, "id = ?", id).Error; err != nil {
			return err
		}
		if err := setActive(tx, &model.Answer{}, id, active); err != nil {
			return err
		}
		return syncAnswered(tx, answer.QuestionID, time.Now())
	})
}

// SoftDelete 软删回答；被采纳的回答删掉后要同步问题的已解决位
func (r *AnswerRepository) SoftDelete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var answer model.Answer
		if err := tx.First(&answer, "id = ?", id).Error; err != nil {
			return err
		}
		if err := softDelete(tx, &model.Answer{}, id); err != nil {
			return err
		}
		return syncAnswered(tx, answer.QuestionID, time.Now())
	})
}

func (r *AnswerRepository) Restore(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var answer model.Answer
		if err := tx.First(&answer, "id = ?", id).Error; err != nil {
			return err
		}
		if err := restore(tx, &model.Answer{}, id); err != nil {
			return err
		}
		return syncAnswered(tx, answer.QuestionID, time.Now())
	})
}

func (r *AnswerRepository) PurgeDeletedBefore(cutoff time.Time) (int64, error) {
	return purgeBefore(r.DB, &model.Answer{}, cutoff)
}
