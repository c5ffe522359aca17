package repository

import (
	"qahub_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type TagRepository struct {
	DB *gorm.DB
}

func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{DB: db}
}

func (r *TagRepository) Create(tag *model.Tag) error {
	return r.DB.Create(tag).Error
}

func (r *TagRepository) Update(tag *model.Tag) error {
	return r.DB.Save(tag).Error
}

// UpdateSynonym 列级更新同义指向，置 nil 即清除
func (r *TagRepository) UpdateSynonym(id uint, synonymOfID *uint) error {
	return r.DB.Model(&model.Tag{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"synonym_of_id": synonymOfID,
			"updated_at":    time.Now(),
		}).Error
}

func (r *TagRepository) FindByID(id uint) (*model.Tag, error) {
	var tag model.Tag
	err := r.DB.Scopes(model.ActiveScope).Preload("SynonymOf").First(&tag, "id = ?", id).Error
	return &tag, err
}

func (r *TagRepository) FindByIDAny(id uint) (*model.Tag, error) {
	var tag model.Tag
	err := r.DB.First(&tag, "id = ?", id).Error
	return &tag, err
}

func (r *TagRepository) FindByName(name string) (*model.Tag, error) {
	var tag model.Tag
	err := r.DB.Scopes(model.ActiveScope).First(&tag, "name = ?", name).Error
	return &tag, err
}

func (r *TagRepository) FindWithPagination(offset, limit int, search string, featured *bool) ([]model.Tag, int64, error) {
	var tags []model.Tag
	var total int64

	query := r.DB.Model(&model.Tag{}).Scopes(model.ActiveScope)
	if search != "" {
		query = query.Where("name LIKE ? OR description LIKE ?", "%"+search+"%", "%"+search+"%")
	}
	if featured != nil {
		query = query.Where("is_featured = ?", *featured)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("usage_count DESC, name ASC").
		Offset(offset).Limit(limit).
		Find(&tags).Error
	return tags, total, err
}

// GetOrCreate 按规范化后的名字取标签，不存在则创建。tag 名唯一，
// 调用方负责先做 Normalize + Validate。
func (r *TagRepository) GetOrCreate(tx *gorm.DB, name string) (*model.Tag, error) {
	var tag model.Tag
	err := tx.Scopes(model.ActiveScope).First(&tag, "name = ?", name).Error
	if err == nil {
		return &tag, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	tag = model.Tag{Name: name}
	if err := tx.Create(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *TagRepository) IncrementUsage(tx *gorm.DB, id uint) error {
	return tx.Model(&model.Tag{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"usage_count": gorm.Expr("usage_count + 1"),
			"updated_at":  time.Now(),
		}).Error
}

// DecrementUsage 使用计数下限为 0，已经是 0 时静默跳过
func (r *TagRepository) DecrementUsage(tx *gorm.DB, id uint) error {
	return tx.Model(&model.Tag{}).
		Where("id = ? AND usage_count > 0", id).
		Updates(map[string]interface{}{
			"usage_count": gorm.Expr("usage_count - 1"),
			"updated_at":  time.Now(),
		}).Error
}

func (r *TagRepository) Activate(id uint) error {
	return setActive(r.DB, &model.Tag{}, id, true)
}

func (r *TagRepository) Deactivate(id uint) error {
	return setActive(r.DB, &model.Tag{}, id, false)
}

func (r *TagRepository) SoftDelete(id uint) error {
	return softDelete(r.DB, &model.Tag{}, id)
}

func (r *TagRepository) Restore(id uint) error {
	return restore(r.DB, &model.Tag{}, id)
}

func (r *TagRepository) PurgeDeletedBefore(cutoff time.Time) (int64, error) {
	return purgeBefore(r.DB, &model.Tag{}, cutoff)
}
