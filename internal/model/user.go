package model

import (
	"time"
)

type UserRole string

const (
	RoleUser      UserRole = "user"
	RoleModerator UserRole = "moderator"
	RoleAdmin     UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name       string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Email      string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password   string    `gorm:"size:100;not null" json:"-"`
	Role       UserRole  `gorm:"size:20;default:'user'" json:"role"`
	Bio        string    `gorm:"size:500" json:"bio"`
	Avatar     string    `gorm:"size:255" json:"avatar"`
	Reputation int       `gorm:"default:0;index" json:"reputation"`
	IsVerified bool      `gorm:"default:false;index" json:"isVerified"`
	Disabled   bool      `gorm:"default:false" json:"disabled"`
	LastLogin  time.Time `json:"lastLogin"`
	LastSeen   time.Time `json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}

// ReputationLevel 按声望划分的用户等级
func (u *User) ReputationLevel() string {
	switch {
	case u.Reputation >= 10000:
		return "expert"
	case u.Reputation >= 5000:
		return "advanced"
	case u.Reputation >= 1000:
		return "intermediate"
	case u.Reputation >= 100:
		return "beginner"
	default:
		return "new"
	}
}
