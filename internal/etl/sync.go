package etl

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/maguenza/hackernews-ai-project/internal/hn"
	"github.com/maguenza/hackernews-ai-project/internal/models"
	"github.com/maguenza/hackernews-ai-project/pkg/config"
	"github.com/maguenza/hackernews-ai-project/pkg/logging"
	"github.com/maguenza/hackernews-ai-project/pkg/telemetry"
)

// itemSource is the subset of the HackerNews client the driver needs.
type itemSource interface {
	TopStories(ctx context.Context, limit int) ([]int64, error)
	JobStories(ctx context.Context, limit int) ([]int64, error)
	Job(ctx context.Context, id int64) (*hn.Item, error)
	User(ctx context.Context, username string) (*hn.User, error)
}

// treeSource materializes full comment trees.
type treeSource interface {
	FetchTree(ctx context.Context, rootID int64) (*hn.Item, error)
}

// store is the write side of the pipeline.
type store interface {
	CreateTables(ctx context.Context) error
	LoadStoryWithComments(ctx context.Context, story *hn.Item) error
	UpsertUser(ctx context.Context, user *hn.User) error
	UpsertJob(ctx context.Context, job *hn.Item) error
}

// statistics is the transform side of the pipeline.
type statistics interface {
	TransformStoryData(ctx context.Context, storyID int64) (*models.StoryStats, error)
	TransformJobData(ctx context.Context, jobID int64) (*models.JobStats, error)
	AnalyzeTopics(ctx context.Context, hours int) ([]models.TopicAnalysis, error)
}

// Report summarizes one synchronization pass. CommentsSeen counts the
// declared direct children of each processed story, not the comment rows
// actually written.
type Report struct {
	StoriesProcessed int
	CommentsSeen     int
	UsersTouched     int
	JobsProcessed    int
}

// Sync orchestrates one full synchronization pass: fetch the top story
// and job batches, load and transform each item, then run topic analysis.
// Failures are isolated per item: an error in any step logs and skips
// that id only, so a pass always completes and reports counts.
type Sync struct {
	cfg         *config.PipelineConfig
	source      itemSource
	trees       treeSource
	loader      store
	transformer statistics
	logger      *zap.Logger
}

// NewSync creates a new pipeline driver
func NewSync(cfg *config.PipelineConfig, source itemSource, trees treeSource, loader store, transformer statistics) *Sync {
	return &Sync{
		cfg:         cfg,
		source:      source,
		trees:       trees,
		loader:      loader,
		transformer: transformer,
		logger:      logging.GetLogger().With(zap.String("component", "pipeline")),
	}
}

// Run executes one synchronization pass. It only returns an error for
// startup-class failures (schema migration, batch id listing); per-item
// failures are logged and skipped.
func (s *Sync) Run(ctx context.Context) (*Report, error) {
	ctx, span := telemetry.StartSpan(ctx, "pipeline.run")
	defer span.End()

	s.logger.Info("Starting pipeline run",
		zap.Int("story_limit", s.cfg.StoryLimit),
		zap.Int("job_limit", s.cfg.JobLimit))

	if err := s.loader.CreateTables(ctx); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	report := &Report{}
	users := make(map[string]struct{})

	if err := s.processStories(ctx, report, users); err != nil {
		return nil, err
	}
	if err := s.processJobs(ctx, report, users); err != nil {
		return nil, err
	}

	if _, err := s.transformer.AnalyzeTopics(ctx, s.cfg.TopicHours); err != nil {
		s.logger.Error("Topic analysis failed", zap.Error(err))
	}

	report.UsersTouched = len(users)
	s.logger.Info("Pipeline run completed",
		zap.Int("stories_processed", report.StoriesProcessed),
		zap.Int("comments_seen", report.CommentsSeen),
		zap.Int("users_touched", report.UsersTouched),
		zap.Int("jobs_processed", report.JobsProcessed))

	return report, nil
}

func (s *Sync) processStories(ctx context.Context, report *Report, users map[string]struct{}) error {
	ids, err := s.source.TopStories(ctx, s.cfg.StoryLimit)
	if err != nil {
		return fmt.Errorf("failed to list top stories: %w", err)
	}

	for _, id := range ids {
		if err := s.processStory(ctx, id, report, users); err != nil {
			s.logger.Error("Error processing story, skipping",
				zap.Int64("story_id", id), zap.Error(err))
		}
	}
	return nil
}

func (s *Sync) processStory(ctx context.Context, id int64, report *Report, users map[string]struct{}) error {
	story, err := s.trees.FetchTree(ctx, id)
	if err != nil {
		return err
	}
	if story == nil {
		return nil
	}
	if err := story.Validate(); err != nil {
		return err
	}

	if err := s.loader.LoadStoryWithComments(ctx, story); err != nil {
		return err
	}
	report.StoriesProcessed++
	report.CommentsSeen += len(story.Kids)

	if story.By != "" {
		user, err := s.source.User(ctx, story.By)
		if err != nil {
			return err
		}
		if user != nil {
			if err := s.loader.UpsertUser(ctx, user); err != nil {
				return err
			}
			users[user.ID] = struct{}{}
		}
	}

	if _, err := s.transformer.TransformStoryData(ctx, id); err != nil {
		return err
	}
	return nil
}

func (s *Sync) processJobs(ctx context.Context, report *Report, users map[string]struct{}) error {
	ids, err := s.source.JobStories(ctx, s.cfg.JobLimit)
	if err != nil {
		return fmt.Errorf("failed to list job stories: %w", err)
	}

	for _, id := range ids {
		if err := s.processJob(ctx, id, report, users); err != nil {
			s.logger.Error("Error processing job, skipping",
				zap.Int64("job_id", id), zap.Error(err))
		}
	}
	return nil
}

func (s *Sync) processJob(ctx context.Context, id int64, report *Report, users map[string]struct{}) error {
	job, err := s.source.Job(ctx, id)
	if err != nil {
		return err
	}
	if job == nil {
		return nil
	}
	if err := job.Validate(); err != nil {
		return err
	}

	if job.By != "" {
		user, err := s.source.User(ctx, job.By)
		if err != nil {
			return err
		}
		if user == nil {
			// Unlike stories, a job without a resolvable author is
			// skipped entirely.
			s.logger.Warn("Job author not found, skipping job",
				zap.Int64("job_id", id), zap.String("author", job.By))
			return nil
		}
		if err := s.loader.UpsertUser(ctx, user); err != nil {
			return err
		}
		users[user.ID] = struct{}{}
	}

	if err := s.loader.UpsertJob(ctx, job); err != nil {
		return err
	}
	report.JobsProcessed++

	if _, err := s.transformer.TransformJobData(ctx, id); err != nil {
		return err
	}
	return nil
}
