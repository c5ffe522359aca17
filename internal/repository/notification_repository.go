package repository

import (
	"qahub_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	DB *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

func (r *NotificationRepository) Create(notification *model.Notification) error {
	return r.DB.Create(notification).Error
}

func (r *NotificationRepository) CreateBatch(notifications []model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.DB.Create(&notifications).Error
}

func (r *NotificationRepository) FindByID(id string) (*model.Notification, error) {
	var notification model.Notification
	err := r.DB.Scopes(model.ActiveScope).
		Preload("Sender").
		First(&notification, "id = ?", id).Error
	return &notification, err
}

// NotificationFilter 收件箱查询条件
type NotificationFilter struct {
	RecipientID uint
	Type        model.NotificationType
	IsRead      *bool
	Offset      int
	Limit       int
}

func (r *NotificationRepository) FindWithPagination(f NotificationFilter) ([]model.Notification, int64, error) {
	var notifications []model.Notification
	var total int64

	query := r.DB.Model(&model.Notification{}).Scopes(model.ActiveScope).
		Where("recipient_id = ?", f.RecipientID)

	if f.Type != "" {
		query = query.Where("type = ?", f.Type)
	}
	if f.IsRead != nil {
		query = query.Where("is_read = ?", *f.IsRead)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("is_important DESC, created_at DESC").
		Offset(f.Offset).Limit(f.Limit).
		Preload("Sender").
		Find(&notifications).Error
	return notifications, total, err
}

// MarkRead 置已读，限定收件人本人
func (r *NotificationRepository) MarkRead(id string, recipientID uint) error {
	res := r.DB.Model(&model.Notification{}).
		Where("id = ? AND recipient_id = ? AND is_deleted = ?", id, recipientID, false).
		Updates(map[string]interface{}{
			"is_read":    true,
			"read_at":    time.Now(),
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

func (r *NotificationRepository) MarkUnread(id string, recipientID uint) error {
	res := r.DB.Model(&model.Notification{}).
		Where("id = ? AND recipient_id = ? AND is_deleted = ?", id, recipientID, false).
		Updates(map[string]interface{}{
			"is_read":    false,
			"read_at":    nil,
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

// MarkAllRead 批量已读，返回影响行数
func (r *NotificationRepository) MarkAllRead(recipientID uint) (int64, error) {
	res := r.DB.Model(&model.Notification{}).
		Where("recipient_id = ? AND is_read = ? AND is_deleted = ?", recipientID, false, false).
		Updates(map[string]interface{}{
			"is_read":    true,
			"read_at":    time.Now(),
			"updated_at": time.Now(),
		})
	return res.RowsAffected, res.Error
}

func (r *NotificationRepository) UnreadCount(recipientID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Notification{}).Scopes(model.ActiveScope).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

func (r *NotificationRepository) SoftDelete(id string, recipientID uint) error {
	res := r.DB.Model(&model.Notification{}).
		Where("id = ? AND recipient_id = ? AND is_deleted = ?", id, recipientID, false).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"is_active":  false,
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

func (r *NotificationRepository) PurgeDeletedBefore(cutoff time.Time) (int64, error) {
	return purgeBefore(r.DB, &model.Notification{}, cutoff)
}

// PurgeReadBefore 清理早于阈值的已读通知，已读通知不必等软删即可回收
func (r *NotificationRepository) PurgeReadBefore(cutoff time.Time) (int64, error) {
	res := r.DB.
		Where("is_read = ? AND read_at < ?", true, cutoff).
		Delete(&model.Notification{})
	return res.RowsAffected, res.Error
}
