package model

import "time"

// BlogPost is a published article addressed by its slug.
type BlogPost struct {
	ID        uint      `gorm:"column:id;primaryKey" json:"id"`
	Slug      string    `gorm:"column:slug;uniqueIndex" json:"slug"`
	Title     string    `gorm:"column:title" json:"title"`
	Summary   string    `gorm:"column:summary" json:"summary"`
	Content   string    `gorm:"column:content" json:"content"`
	Pillar    string    `gorm:"column:pillar" json:"pillar"`
	Date      string    `gorm:"column:date" json:"date"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (BlogPost) TableName() string {
	return "blog"
}
