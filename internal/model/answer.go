package model

import (
	"time"
)

type Answer struct {
	UUIDBase
	QuestionID   string     `gorm:"type:varchar(36);index:idx_answer_accepted;index:idx_answer_votes" json:"questionId"`
	AuthorID     uint       `gorm:"index;type:bigint unsigned" json:"authorId"`
	Author       User       `gorm:"foreignKey:AuthorID" json:"author"`
	Content      string     `gorm:"type:text;not null" json:"content"`
	IsAccepted   bool       `gorm:"default:false;index:idx_answer_accepted" json:"isAccepted"`
	AcceptedAt   *time.Time `json:"acceptedAt"`
	Votes        int        `gorm:"default:0;index:idx_answer_votes" json:"votes"`
	IsEdited     bool       `gorm:"default:false" json:"isEdited"`
	EditCount    uint       `gorm:"default:0" json:"editCount"`
	LastEditedAt *time.Time `json:"lastEditedAt"`
}

func (Answer) TableName() string {
	return "answers"
}

// VotesCount 展示用的票数，沿用原有的绝对值口径
func (a *Answer) VotesCount() int {
	if a.Votes < 0 {
		return -a.Votes
	}
	return a.Votes
}

func (a *Answer) IsHighlyVoted() bool {
	return a.Votes >= 10
}

// ReputationBonus 答案作者可获得的声望加成
func (a *Answer) ReputationBonus() int {
	if a.IsAccepted {
		return 15
	}
	if a.Votes >= 5 {
		return 10
	}
	return 0
}
