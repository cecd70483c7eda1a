package models

import (
	"time"

	"gorm.io/datatypes"
)

// StoryStats holds derived aggregates for a single story, recomputed
// wholesale on each transform and overwritten on conflict.
type StoryStats struct {
	StoryID          int64     `gorm:"primaryKey;column:story_id"`
	TotalComments    int64     `gorm:"not null;default:0;column:total_comments"`
	AvgCommentLength float64   `gorm:"column:avg_comment_length"`
	MaxCommentLength int64     `gorm:"column:max_comment_length"`
	MinCommentLength int64     `gorm:"column:min_comment_length"`
	EngagementScore  float64   `gorm:"column:engagement_score"`
	CreatedAt        time.Time `gorm:"autoCreateTime;column:created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime;column:updated_at"`
}

// TableName specifies the table name for StoryStats
func (StoryStats) TableName() string {
	return "story_stats"
}

// UserStats holds derived aggregates for a single user.
type UserStats struct {
	UserID          string    `gorm:"type:varchar(255);primaryKey;column:user_id"`
	TotalStories    int64     `gorm:"not null;default:0;column:total_stories"`
	TotalComments   int64     `gorm:"not null;default:0;column:total_comments"`
	AvgStoryScore   float64   `gorm:"column:avg_story_score"`
	AvgCommentScore float64   `gorm:"column:avg_comment_score"`
	EngagementScore float64   `gorm:"column:engagement_score"`
	CreatedAt       time.Time `gorm:"autoCreateTime;column:created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime;column:updated_at"`
}

// TableName specifies the table name for UserStats
func (UserStats) TableName() string {
	return "user_stats"
}

// TopicAnalysis is an append-only trend table: each analysis run inserts a
// fresh batch of rows keyed by run time, preserving history across runs.
type TopicAnalysis struct {
	ID            int64     `gorm:"primaryKey;autoIncrement;column:id"`
	Topic         string    `gorm:"type:text;column:topic"`
	StoryCount    int64     `gorm:"not null;default:0;column:story_count"`
	AvgScore      float64   `gorm:"column:avg_score"`
	TotalComments int64     `gorm:"not null;default:0;column:total_comments"`
	CreatedAt     time.Time `gorm:"autoCreateTime;column:created_at"`
}

// TableName specifies the table name for TopicAnalysis
func (TopicAnalysis) TableName() string {
	return "topic_analysis"
}

// JobStats holds derived aggregates for a job posting against comparable
// postings (same type and location, trailing 30 days).
type JobStats struct {
	JobID                int64                                `gorm:"primaryKey;column:job_id"`
	TotalPostings        int64                                `gorm:"not null;default:0;column:total_postings"`
	AvgSalary            float64                              `gorm:"column:avg_salary"`
	JobTypeDistribution  datatypes.JSONType[map[string]int64] `gorm:"type:jsonb;column:job_type_distribution"`
	LocationDistribution datatypes.JSONType[map[string]int64] `gorm:"type:jsonb;column:location_distribution"`
	CompanyDistribution  datatypes.JSONType[map[string]int64] `gorm:"type:jsonb;column:company_distribution"`
	CreatedAt            time.Time                            `gorm:"autoCreateTime;column:created_at"`
	UpdatedAt            time.Time                            `gorm:"autoUpdateTime;column:updated_at"`
}

// TableName specifies the table name for JobStats
func (JobStats) TableName() string {
	return "job_stats"
}
