package repository

import (
	"qahub_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.Scopes(model.ActiveScope).First(&user, "id = ?", id).Error
	return &user, err
}

// FindByIDAny 不过滤生命周期标志，管理端查看停用/已删用户时使用
func (r *UserRepository) FindByIDAny(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, "id = ?", id).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Scopes(model.ActiveScope).First(&user, "email = ?", email).Error
	return &user, err
}

func (r *UserRepository) FindByName(name string) (*model.User, error) {
	var user model.User
	err := r.DB.Scopes(model.ActiveScope).First(&user, "name = ?", name).Error
	return &user, err
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

func (r *UserRepository) FindWithPagination(offset, limit int, search string, verified *bool, includeDeleted bool) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	query := r.DB.Model(&model.User{})
	if !includeDeleted {
		query = query.Scopes(model.ActiveScope)
	}
	if search != "" {
		query = query.Where("name LIKE ? OR email LIKE ?", "%"+search+"%", "%"+search+"%")
	}
	if verified != nil {
		query = query.Where("is_verified = ?", *verified)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("reputation DESC, created_at DESC").
		Offset(offset).Limit(limit).
		Find(&users).Error
	return users, total, err
}

func (r *UserRepository) UpdateLastSeen(userID uint) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Update("last_seen", time.Now()).Error
}

func (r *UserRepository) UpdateLastLogin(userID uint) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Update("last_login", time.Now()).Error
}

// AddReputation 原子调整声望，负向调整时下限为 0
func (r *UserRepository) AddReputation(id uint, delta int) error {
	if delta == 0 {
		return nil
	}
	if delta > 0 {
		return r.DB.Model(&model.User{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"reputation": gorm.Expr("reputation + ?", delta),
				"updated_at": time.Now(),
			}).Error
	}
	return r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.User{}).
			Where("id = ? AND reputation >= ?", id, -delta).
			Updates(map[string]interface{}{
				"reputation": gorm.Expr("reputation + ?", delta),
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// 不够扣时归零
			return tx.Model(&model.User{}).
				Where("id = ?", id).
				Updates(map[string]interface{}{
					"reputation": 0,
					"updated_at": time.Now(),
				}).Error
		}
		return nil
	})
}

func (r *UserRepository) Activate(id uint) error {
	return setActive(r.DB, &model.User{}, id, true)
}

func (r *UserRepository) Deactivate(id uint) error {
	return setActive(r.DB, &model.User{}, id, false)
}

func (r *UserRepository) SoftDelete(id uint) error {
	return softDelete(r.DB, &model.User{}, id)
}

func (r *UserRepository) Restore(id uint) error {
	return restore(r.DB, &model.User{}, id)
}

func (r *UserRepository) PurgeDeletedBefore(cutoff time.Time) (int64, error) {
	return purgeBefore(r.DB, &model.User{}, cutoff)
}
