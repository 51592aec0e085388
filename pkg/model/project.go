package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Project is a portfolio entry addressed by its slug.
type Project struct {
	ID        uint      `gorm:"column:id;primaryKey" json:"id"`
	Slug      string    `gorm:"column:slug;uniqueIndex" json:"slug"`
	Title     string    `gorm:"column:title" json:"title"`
	Summary   string    `gorm:"column:summary" json:"summary"`
	Content   string    `gorm:"column:content" json:"content"`
	Tags      Tags      `gorm:"column:tags" json:"tags"`
	Thumbnail string    `gorm:"column:thumbnail" json:"thumbnail"`
	Date      string    `gorm:"column:date" json:"date"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Project) TableName() string {
	return "project"
}

// Tags is stored as a JSON array in a TEXT column.
type Tags []string

// Value encodes the tags as JSON. A nil slice is stored as "[]".
func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan decodes a JSON array column.
func (t *Tags) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*t = Tags{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("invalid value of Tags: %[1]T(%[1]v)", value)
	}
	if len(raw) == 0 {
		*t = Tags{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("tags column is not a JSON array: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*t = out
	return nil
}
