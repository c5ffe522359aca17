package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// swagger:model
type BaseModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"index" json:"updatedAt"`
	IsActive  bool      `gorm:"default:true;index" json:"isActive"`
	IsDeleted bool      `gorm:"default:false;index" json:"-"`
}

// swagger:model
type UUIDBase struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"index" json:"updatedAt"`
	IsActive  bool      `gorm:"default:true;index" json:"isActive"`
	IsDeleted bool      `gorm:"default:false;index" json:"-"`
}

func (b *UUIDBase) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return
}

func GenerateUUID() string {
	return uuid.New().String()
}

// ActiveScope 默认查询范围：激活且未软删除
func ActiveScope(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ? AND is_deleted = ?", true, false)
}

// DeletedScope 仅软删除记录（管理/审计用）
func DeletedScope(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", true)
}

// InactiveScope 仅停用记录
func InactiveScope(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", false)
}
