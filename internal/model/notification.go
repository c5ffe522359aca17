package model

import (
	"time"
)

type NotificationType string

const (
	NotificationAnswer     NotificationType = "answer"
	NotificationVote       NotificationType = "vote"
	NotificationAccept     NotificationType = "accept"
	NotificationComment    NotificationType = "comment"
	NotificationMention    NotificationType = "mention"
	NotificationBounty     NotificationType = "bounty"
	NotificationModeration NotificationType = "moderation"
	NotificationSystem     NotificationType = "system"
)

type Notification struct {
	UUIDBase
	RecipientID uint             `gorm:"index:idx_notification_inbox;type:bigint unsigned" json:"recipientId"`
	Recipient   User             `gorm:"foreignKey:RecipientID" json:"-"`
	SenderID    *uint            `gorm:"index;type:bigint unsigned" json:"senderId"`
	Sender      *User            `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Type        NotificationType `gorm:"size:20;index;not null" json:"type"`
	Title       string           `gorm:"size:255;not null" json:"title"`
	Message     string           `gorm:"type:text" json:"message"`
	QuestionID  *string          `gorm:"type:varchar(36);index" json:"questionId"`
	AnswerID    *string          `gorm:"type:varchar(36);index" json:"answerId"`
	IsRead      bool             `gorm:"default:false;index:idx_notification_inbox" json:"isRead"`
	ReadAt      *time.Time       `json:"readAt"`
	IsImportant bool             `gorm:"default:false" json:"isImportant"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) IsUrgent() bool {
	return n.IsImportant && !n.IsRead
}
