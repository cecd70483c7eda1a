package models

import (
	"database/sql"
	"time"
)

// Job represents a HackerNews job posting. job_type, location, company and
// salary_range are best-effort keyword extractions from the posting text
// and may all be null.
type Job struct {
	ID          int64          `gorm:"primaryKey;column:id"`
	Title       string         `gorm:"type:varchar(512);not null;column:title"`
	URL         sql.NullString `gorm:"type:varchar(1024);column:url"`
	Text        sql.NullString `gorm:"type:text;column:text"`
	Score       int64          `gorm:"not null;default:0;column:score"`
	Time        time.Time      `gorm:"index:idx_jobs_time;column:time"`
	By          sql.NullString `gorm:"type:varchar(255);column:by"`
	JobType     sql.NullString `gorm:"type:varchar(50);column:job_type"`
	Location    sql.NullString `gorm:"type:varchar(255);column:location"`
	Company     sql.NullString `gorm:"type:varchar(255);column:company"`
	SalaryRange sql.NullString `gorm:"type:varchar(255);column:salary_range"`
	CreatedAt   time.Time      `gorm:"autoCreateTime;column:created_at"`
}

// TableName specifies the table name for Job
func (Job) TableName() string {
	return "jobs"
}
