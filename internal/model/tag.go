package model

type Tag struct {
	BaseModel
	Name        string `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Color       string `gorm:"size:7;default:'#007bff'" json:"color"`
	UsageCount  uint   `gorm:"default:0;index" json:"usageCount"`
	IsFeatured  bool   `gorm:"default:false;index" json:"isFeatured"`
	IsModerated bool   `gorm:"default:false" json:"isModerated"`
	SynonymOfID *uint  `gorm:"index" json:"synonymOfId"`
	SynonymOf   *Tag   `gorm:"foreignKey:SynonymOfID" json:"synonymOf,omitempty"`
}

func (Tag) TableName() string {
	return "tags"
}

func (t *Tag) IsPopular() bool {
	return t.UsageCount >= 10
}

// DisplayName 同义词标签带上目标名
func (t *Tag) DisplayName() string {
	if t.SynonymOf != nil {
		return t.Name + " (synonym of " + t.SynonymOf.Name + ")"
	}
	return t.Name
}
