package repository

import (
	"qahub_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB      *gorm.DB
	TagRepo *TagRepository
}

func NewQuestionRepository(db *gorm.DB, tagRepo *TagRepository) *QuestionRepository {
	return &QuestionRepository{DB: db, TagRepo: tagRepo}
}

// QuestionFilter 列表查询条件
type QuestionFilter struct {
	Offset    int
	Limit     int
	Tag       string
	Search    string
	AuthorID  uint
	Answered  *bool
	Popular   bool
	HasBounty bool
	Featured  *bool
	Sort      string // new | votes | views
}

// Create 建问并同步各标签的使用计数，一个事务内完成
func (r *QuestionRepository) Create(question *model.Question) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(question).Error; err != nil {
			return err
		}
		for _, tag := range question.Tags {
			if err := r.TagRepo.IncrementUsage(tx, tag.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *QuestionRepository) FindByID(id string) (*model.Question, error) {
	var question model.Question
	err := r.DB.Scopes(model.ActiveScope).
		Preload("Author").
		Preload("Tags").
		First(&question, "id = ?", id).Error
	return &question, err
}

// FindByIDAny 不过滤生命周期标志，恢复/审计用
func (r *QuestionRepository) FindByIDAny(id string) (*model.Question, error) {
	var question model.Question
	err := r.DB.Preload("Author").Preload("Tags").First(&question, "id = ?", id).Error
	return &question, err
}

func (r *QuestionRepository) FindWithPagination(f QuestionFilter) ([]model.Question, int64, error) {
	var questions []model.Question
	var total int64

	// 带标签联查时生命周期条件必须限定表名，避免列名歧义
	query := r.DB.Model(&model.Question{}).
		Where("questions.is_active = ? AND questions.is_deleted = ?", true, false)

	if f.Tag != "" {
		query = query.Joins("JOIN question_tags ON question_tags.question_id = questions.id").
			Joins("JOIN tags ON tags.id = question_tags.tag_id").
			Where("tags.name = ?", f.Tag)
	}
	if f.Search != "" {
		query = query.Where("questions.title LIKE ? OR questions.content LIKE ?", "%"+f.Search+"%", "%"+f.Search+"%")
	}
	if f.AuthorID > 0 {
		query = query.Where("questions.author_id = ?", f.AuthorID)
	}
	if f.Answered != nil {
		query = query.Where("questions.is_answered = ?", *f.Answered)
	}
	if f.Featured != nil {
		query = query.Where("questions.is_featured = ?", *f.Featured)
	}
	if f.Popular {
		query = query.Where("questions.views > ? OR questions.votes > ?", 100, 10)
	}
	if f.HasBounty {
		query = query.Where("questions.bounty_amount > 0")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch f.Sort {
	case "votes":
		query = query.Order("questions.votes DESC, questions.created_at DESC")
	case "views":
		query = query.Order("questions.views DESC, questions.created_at DESC")
	default:
		query = query.Order("questions.created_at DESC")
	}

	err := query.Offset(f.Offset).Limit(f.Limit).
		Preload("Author").
		Preload("Tags").
		Find(&questions).Error
	return questions, total, err
}

func (r *QuestionRepository) Update(question *model.Question) error {
	return r.DB.Omit("Tags", "Author", "Answers").Save(question).Error
}

// ReplaceTags 替换问题的标签集合，按差异调整各标签的使用计数
func (r *QuestionRepository) ReplaceTags(question *model.Question, tags []model.Tag) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var current []model.Tag
		if err := tx.Model(question).Association("Tags").Find(&current); err != nil {
			return err
		}

		oldSet := make(map[uint]bool, len(current))
		for _, t := range current {
			oldSet[t.ID] = true
		}
		newSet := make(map[uint]bool, len(tags))
		for _, t := range tags {
			newSet[t.ID] = true
		}

		if err := tx.Model(question).Association("Tags").Replace(tags); err != nil {
			return err
		}

		for id := range oldSet {
			if !newSet[id] {
				if err := r.TagRepo.DecrementUsage(tx, id); err != nil {
					return err
				}
			}
		}
		for id := range newSet {
			if !oldSet[id] {
				if err := r.TagRepo.IncrementUsage(tx, id); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// AddVotes 原子加减净票数，避免并发投票丢更新
func (r *QuestionRepository) AddVotes(id string, delta int) error {
	return r.DB.Model(&model.Question{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"votes":      gorm.Expr("votes + ?", delta),
			"updated_at": time.Now(),
		}).Error
}

func (r *QuestionRepository) IncrementViews(id string) error {
	return r.DB.Model(&model.Question{}).
		Where("id = ?", id).
		Update("views", gorm.Expr("views + 1")).Error
}

// SetFlag 更新单个布尔状态位（is_closed / is_featured 等）
func (r *QuestionRepository) SetFlag(id string, column string, value bool) error {
	res := r.DB.Model(&model.Question{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			column:       value,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *QuestionRepository) SetBounty(id string, amount uint, expiresAt *time.Time) error {
	return r.DB.Model(&model.Question{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"bounty_amount":     amount,
			"bounty_expires_at": expiresAt,
			"updated_at":        time.Now(),
		}).Error
}

func (r *QuestionRepository) Activate(id string) error {
	return setActive(r.DB, &model.Question{}, id, true)
}

func (r *QuestionRepository) Deactivate(id string) error {
	return setActive(r.DB, &model.Question{}, id, false)
}

// SoftDelete 软删问题并回退其标签的使用计数
func (r *QuestionRepository) SoftDelete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var question model.Question
		if err := tx.Preload("Tags").First(&question, "id = ?", id).Error; err != nil {
			return err
		}
		if err := softDelete(tx, &model.Question{}, id); err != nil {
			return err
		}
		for _, tag := range question.Tags {
			if err := r.TagRepo.DecrementUsage(tx, tag.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

// Restore 恢复软删问题并补回标签使用计数
func (r *QuestionRepository) Restore(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var question model.Question
		if err := tx.Preload("Tags").First(&question, "id = ?", id).Error; err != nil {
			return err
		}
		if err := restore(tx, &model.Question{}, id); err != nil {
			return err
		}
		for _, tag := range question.Tags {
			if err := r.TagRepo.IncrementUsage(tx, tag.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *QuestionRepository) PurgeDeletedBefore(cutoff time.Time) (int64, error) {
	return purgeBefore(r.DB, &model.Question{}, cutoff)
}
