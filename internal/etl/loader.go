package etl

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/maguenza/hackernews-ai-project/internal/hn"
	"github.com/maguenza/hackernews-ai-project/internal/models"
	"github.com/maguenza/hackernews-ai-project/pkg/logging"
)

// Loader writes fetched items into the relational store. Every upsert is
// a single insert-or-update keyed by the upstream id and commits on its
// own: a failure partway through a comment tree leaves the siblings
// written so far committed. The loader exclusively owns writes to the
// primary entity tables.
type Loader struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewLoader creates a new loader
func NewLoader(db *gorm.DB) *Loader {
	return &Loader{
		db:     db,
		logger: logging.GetLogger().With(zap.String("component", "loader")),
	}
}

// Columns replaced on conflict, per entity. Everything mutable belongs
// here; id stays the conflict key and created_at records first insertion
// (for users, created_at is the upstream creation time and is replaced).
var (
	userUpdateColumns  = []string{"created_at", "karma", "about"}
	storyUpdateColumns = []string{
		"title", "url", "text", "score", "time", "by", "descendants", "kids", "type",
	}
	commentUpdateColumns = []string{
		"parent_id", "story_id", "by", "text", "time", "kids", "type",
	}
	jobUpdateColumns = []string{
		"title", "url", "text", "score", "time", "by",
		"job_type", "location", "company", "salary_range",
	}
)

// CreateTables runs the idempotent schema migration for the primary and
// derived tables. Collaborator operation, run once at startup.
func (l *Loader) CreateTables(ctx context.Context) error {
	return l.db.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.Story{},
		&models.Comment{},
		&models.Job{},
		&models.StoryStats{},
		&models.UserStats{},
		&models.TopicAnalysis{},
		&models.JobStats{},
	)
}

// UpsertUser inserts or updates a user record, last-write-wins on the
// mutable fields.
func (l *Loader) UpsertUser(ctx context.Context, user *hn.User) error {
	if user == nil || user.ID == "" {
		return fmt.Errorf("user has no id")
	}

	row := models.User{
		ID:        user.ID,
		Username:  user.ID,
		CreatedAt: user.CreatedAt(),
		Karma:     user.Karma,
		About:     nullString(user.About),
	}

	err := l.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(userUpdateColumns),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to upsert user %q: %w", user.ID, err)
	}
	return nil
}

// UpsertStory inserts or updates a story, replacing all mutable fields.
func (l *Loader) UpsertStory(ctx context.Context, story *hn.Item) error {
	if story == nil || story.ID <= 0 {
		return fmt.Errorf("story has no id")
	}

	row := models.Story{
		ID:          story.ID,
		Title:       story.Title,
		URL:         nullString(story.URL),
		Text:        nullString(story.Text),
		Score:       story.Score,
		Time:        story.CreatedAt(),
		By:          nullString(story.By),
		Descendants: story.Descendants,
		Kids:        datatypes.JSONSlice[int64](story.Kids),
		Type:        story.Type,
	}

	err := l.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(storyUpdateColumns),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to upsert story %d: %w", story.ID, err)
	}
	return nil
}

// UpsertComment inserts or updates a comment. storyID is the root story
// the comment belongs to; parentID is the direct parent comment, nil when
// the parent is the story itself.
func (l *Loader) UpsertComment(ctx context.Context, comment *hn.Item, storyID int64, parentID *int64) error {
	if comment == nil || comment.ID <= 0 {
		return fmt.Errorf("comment has no id")
	}

	row := models.Comment{
		ID:       comment.ID,
		ParentID: nullInt64(parentID),
		StoryID:  storyID,
		By:       nullString(comment.By),
		Text:     nullString(comment.Text),
		Time:     comment.CreatedAt(),
		Kids:     datatypes.JSONSlice[int64](comment.Kids),
		Type:     comment.Type,
	}

	err := l.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(commentUpdateColumns),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to upsert comment %d: %w", comment.ID, err)
	}
	return nil
}

// UpsertJob inserts or updates a job posting with its derived fields.
func (l *Loader) UpsertJob(ctx context.Context, job *hn.Item) error {
	if job == nil || job.ID <= 0 {
		return fmt.Errorf("job has no id")
	}

	fields := hn.JobFields{}
	if job.Job != nil {
		fields = *job.Job
	}

	row := models.Job{
		ID:          job.ID,
		Title:       job.Title,
		URL:         nullString(job.URL),
		Text:        nullString(job.Text),
		Score:       job.Score,
		Time:        job.CreatedAt(),
		By:          nullString(job.By),
		JobType:     nullString(fields.Type),
		Location:    nullString(fields.Location),
		Company:     nullString(fields.Company),
		SalaryRange: nullString(fields.SalaryRange),
	}

	err := l.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(jobUpdateColumns),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to upsert job %d: %w", job.ID, err)
	}
	return nil
}

// LoadStoryWithComments upserts the story and then walks its fetched
// comment tree depth-first, upserting every reachable node with the root
// story id and its immediate parent id. Nil nodes are skipped without
// aborting siblings; a write failure aborts the walk and propagates.
func (l *Loader) LoadStoryWithComments(ctx context.Context, story *hn.Item) error {
	if err := l.UpsertStory(ctx, story); err != nil {
		return err
	}
	return walkComments(story.Comments, nil, func(comment *hn.Item, parentID *int64) error {
		return l.UpsertComment(ctx, comment, story.ID, parentID)
	})
}

// walkComments visits every non-nil node reachable from the given comment
// list depth-first, passing the immediate parent comment id (nil at the
// top level, where the parent is the story). Nil nodes are skipped; a
// visit error aborts the walk.
func walkComments(comments []*hn.Item, parentID *int64, visit func(comment *hn.Item, parentID *int64) error) error {
	for _, comment := range comments {
		if comment == nil {
			continue
		}
		if err := visit(comment, parentID); err != nil {
			return err
		}
		id := comment.ID
		if err := walkComments(comment.Comments, &id, visit); err != nil {
			return err
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
