package models

import (
	"database/sql"
	"time"
)

// User represents a HackerNews user. Users are created on first reference
// by any story, comment or job; reloading overwrites the mutable fields
// (karma, about) last-write-wins.
type User struct {
	ID        string         `gorm:"type:varchar(255);primaryKey;column:id"`
	Username  string         `gorm:"type:varchar(255);not null;uniqueIndex:users_username_ux;column:username"`
	CreatedAt time.Time      `gorm:"not null;column:created_at"`
	Karma     int64          `gorm:"not null;default:0;column:karma"`
	About     sql.NullString `gorm:"type:text;column:about"`
	IsDeleted bool           `gorm:"not null;default:false;column:is_deleted"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
