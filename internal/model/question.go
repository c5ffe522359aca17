package model

import (
	"time"
)

type Question struct {
	UUIDBase
	Title           string     `gorm:"size:300;not null;index" json:"title"`
	Content         string     `gorm:"type:text;not null" json:"content"`
	AuthorID        uint       `gorm:"index;type:bigint unsigned" json:"authorId"`
	Author          User       `gorm:"foreignKey:AuthorID" json:"author"`
	Tags            []Tag      `gorm:"many2many:question_tags" json:"tags"`
	Views           uint       `gorm:"default:0;index" json:"views"`
	Votes           int        `gorm:"default:0;index" json:"votes"`
	IsAnswered      bool       `gorm:"default:false;index" json:"isAnswered"`
	IsClosed        bool       `gorm:"default:false;index" json:"isClosed"`
	IsFeatured      bool       `gorm:"default:false;index" json:"isFeatured"`
	BountyAmount    uint       `gorm:"default:0" json:"bountyAmount"`
	BountyExpiresAt *time.Time `json:"bountyExpiresAt"`
	Answers         []Answer   `gorm:"foreignKey:QuestionID" json:"answers,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// VotesCount 展示用的票数，沿用原有的绝对值口径
func (q *Question) VotesCount() int {
	if q.Votes < 0 {
		return -q.Votes
	}
	return q.Votes
}

// HasBounty 悬赏是否仍然有效
func (q *Question) HasBounty() bool {
	return q.BountyAmount > 0 && q.BountyExpiresAt != nil && time.Now().Before(*q.BountyExpiresAt)
}

func (q *Question) IsPopular() bool {
	return q.Views > 100 || q.Votes > 10
}
