package models

import (
	"database/sql"
	"time"

	"gorm.io/datatypes"
)

// Comment represents a HackerNews comment. story_id always points at the
// root story the comment ultimately belongs to; parent_id points at the
// direct parent comment and is null when the parent is the story itself.
// Body, author and timestamp may all be absent upstream; absence does not
// block ingestion.
type Comment struct {
	ID        int64                      `gorm:"primaryKey;column:id"`
	ParentID  sql.NullInt64              `gorm:"column:parent_id"`
	StoryID   int64                      `gorm:"not null;index:idx_comments_story_id;column:story_id"`
	By        sql.NullString             `gorm:"type:varchar(255);column:by"`
	Text      sql.NullString             `gorm:"type:text;column:text"`
	Time      time.Time                  `gorm:"column:time"`
	Kids      datatypes.JSONSlice[int64] `gorm:"type:jsonb;column:kids"`
	Type      string                     `gorm:"type:varchar(32);column:type"`
	CreatedAt time.Time                  `gorm:"autoCreateTime;column:created_at"`
}

// TableName specifies the table name for Comment
func (Comment) TableName() string {
	return "comments"
}
