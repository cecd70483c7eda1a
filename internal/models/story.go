package models

import (
	"database/sql"
	"time"

	"gorm.io/datatypes"
)

// Story represents a HackerNews story. The id is the upstream item id and
// is globally unique across the store; reloading a story replaces all
// mutable fields.
type Story struct {
	ID          int64                      `gorm:"primaryKey;column:id"`
	Title       string                     `gorm:"type:varchar(512);not null;column:title"`
	URL         sql.NullString             `gorm:"type:varchar(1024);column:url"`
	Text        sql.NullString             `gorm:"type:text;column:text"`
	Score       int64                      `gorm:"not null;default:0;index:idx_stories_score;column:score"`
	Time        time.Time                  `gorm:"index:idx_stories_time;column:time"`
	By          sql.NullString             `gorm:"type:varchar(255);column:by"`
	Descendants int64                      `gorm:"not null;default:0;column:descendants"`
	Kids        datatypes.JSONSlice[int64] `gorm:"type:jsonb;column:kids"`
	Type        string                     `gorm:"type:varchar(32);column:type"`
	CreatedAt   time.Time                  `gorm:"autoCreateTime;column:created_at"`
}

// TableName specifies the table name for Story
func (Story) TableName() string {
	return "stories"
}
