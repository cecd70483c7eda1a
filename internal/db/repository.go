package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/maguenza/hackernews-ai-project/internal/models"
)

// Repository provides read access to the persisted HackerNews data. The
// chat and web layers consume these queries; neither of them gets a write
// path, and the repository is handed to them at construction rather than
// reached through globals.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// StoryRepository provides story-related read queries
type StoryRepository struct {
	*Repository
}

// NewStoryRepository creates a new story repository
func NewStoryRepository(repo *Repository) *StoryRepository {
	return &StoryRepository{Repository: repo}
}

// GetByID retrieves a story by id, nil when not found
func (r *StoryRepository) GetByID(ctx context.Context, id int64) (*models.Story, error) {
	var story models.Story
	if err := r.db.WithContext(ctx).First(&story, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &story, nil
}

// Search retrieves stories whose title matches the keyword, optionally
// filtered by minimum score and a trailing day window, ordered by score
// descending.
func (r *StoryRepository) Search(ctx context.Context, keyword string, minScore, daysBack, limit int) ([]*models.Story, error) {
	q := r.db.WithContext(ctx).Model(&models.Story{})
	if keyword != "" {
		q = q.Where("title ILIKE ?", "%"+keyword+"%")
	}
	if minScore > 0 {
		q = q.Where("score >= ?", minScore)
	}
	if daysBack > 0 {
		cutoff := time.Now().UTC().AddDate(0, 0, -daysBack)
		q = q.Where("time >= ?", cutoff)
	}

	var stories []*models.Story
	if err := q.Order("score DESC").Limit(limit).Find(&stories).Error; err != nil {
		return nil, err
	}
	return stories, nil
}

// TopByScore retrieves the highest scored stories in the trailing day window
func (r *StoryRepository) TopByScore(ctx context.Context, daysBack, limit int) ([]*models.Story, error) {
	return r.Search(ctx, "", 0, daysBack, limit)
}

// InWindow retrieves all stories created within the trailing window
func (r *StoryRepository) InWindow(ctx context.Context, since time.Time) ([]*models.Story, error) {
	var stories []*models.Story
	if err := r.db.WithContext(ctx).
		Where("time >= ?", since).
		Find(&stories).Error; err != nil {
		return nil, err
	}
	return stories, nil
}

// CommentRepository provides comment-related read queries
type CommentRepository struct {
	*Repository
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(repo *Repository) *CommentRepository {
	return &CommentRepository{Repository: repo}
}

// ByStory retrieves all comments belonging to a story
func (r *CommentRepository) ByStory(ctx context.Context, storyID int64) ([]*models.Comment, error) {
	var comments []*models.Comment
	if err := r.db.WithContext(ctx).
		Where("story_id = ?", storyID).
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// CountByStory counts comments for a set of stories, keyed by story id
func (r *CommentRepository) CountByStory(ctx context.Context, storyIDs []int64) (map[int64]int64, error) {
	if len(storyIDs) == 0 {
		return map[int64]int64{}, nil
	}

	type row struct {
		StoryID int64
		N       int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Select("story_id, COUNT(*) AS n").
		Where("story_id IN ?", storyIDs).
		Group("story_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[int64]int64, len(rows))
	for _, r := range rows {
		counts[r.StoryID] = r.N
	}
	return counts, nil
}

// ByAuthor retrieves all comments written by a user
func (r *CommentRepository) ByAuthor(ctx context.Context, userID string) ([]*models.Comment, error) {
	var comments []*models.Comment
	if err := r.db.WithContext(ctx).
		Where("by = ?", userID).
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// UserRepository provides user-related read queries
type UserRepository struct {
	*Repository
}

// NewUserRepository creates a new user repository
func NewUserRepository(repo *Repository) *UserRepository {
	return &UserRepository{Repository: repo}
}

// GetByName retrieves a user by username, nil when not found
func (r *UserRepository) GetByName(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// StoriesByAuthor retrieves all stories submitted by a user
func (r *UserRepository) StoriesByAuthor(ctx context.Context, userID string) ([]*models.Story, error) {
	var stories []*models.Story
	if err := r.db.WithContext(ctx).
		Where("by = ?", userID).
		Find(&stories).Error; err != nil {
		return nil, err
	}
	return stories, nil
}

// JobRepository provides job-related read queries
type JobRepository struct {
	*Repository
}

// NewJobRepository creates a new job repository
func NewJobRepository(repo *Repository) *JobRepository {
	return &JobRepository{Repository: repo}
}

// GetByID retrieves a job by id, nil when not found
func (r *JobRepository) GetByID(ctx context.Context, id int64) (*models.Job, error) {
	var job models.Job
	if err := r.db.WithContext(ctx).First(&job, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

// Search retrieves jobs matching the keyword and optional location and
// job-type filters, newest first.
func (r *JobRepository) Search(ctx context.Context, keyword, location, jobType string, limit int) ([]*models.Job, error) {
	q := r.db.WithContext(ctx).Model(&models.Job{})
	if keyword != "" {
		q = q.Where("title ILIKE ? OR text ILIKE ?", "%"+keyword+"%", "%"+keyword+"%")
	}
	if location != "" {
		q = q.Where("location ILIKE ?", "%"+location+"%")
	}
	if jobType != "" {
		q = q.Where("job_type ILIKE ?", "%"+jobType+"%")
	}

	var jobs []*models.Job
	if err := q.Order("time DESC").Limit(limit).Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// Comparable retrieves jobs posted since the given time sharing the same
// job type and location, the comparison set for job statistics.
func (r *JobRepository) Comparable(ctx context.Context, jobType, location string, since time.Time) ([]*models.Job, error) {
	var jobs []*models.Job
	if err := r.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Where("job_type IS NOT DISTINCT FROM ?", nullable(jobType)).
		Where("location IS NOT DISTINCT FROM ?", nullable(location)).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
