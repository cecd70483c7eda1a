package etl

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/maguenza/hackernews-ai-project/internal/db"
	"github.com/maguenza/hackernews-ai-project/internal/models"
	"github.com/maguenza/hackernews-ai-project/pkg/logging"
)

// Transformer derives aggregate statistics from the stored entities and
// writes them into the analytic tables, which it exclusively owns. Every
// transform recomputes its aggregates from scratch inside one transaction;
// a failure rolls the call back and propagates to the caller, which
// decides whether to continue with the next item.
type Transformer struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewTransformer creates a new transformer
func NewTransformer(gdb *gorm.DB) *Transformer {
	return &Transformer{
		db:     gdb,
		logger: logging.GetLogger().With(zap.String("component", "transformer")),
	}
}

// TransformStoryData recomputes the derived statistics for one story and
// upserts them into story_stats. Returns (nil, nil) when the story is not
// in the store.
func (t *Transformer) TransformStoryData(ctx context.Context, storyID int64) (*models.StoryStats, error) {
	var stats *models.StoryStats
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := db.NewRepository(tx)

		story, err := db.NewStoryRepository(repo).GetByID(ctx, storyID)
		if err != nil {
			return fmt.Errorf("failed to load story %d: %w", storyID, err)
		}
		if story == nil {
			return nil
		}

		comments, err := db.NewCommentRepository(repo).ByStory(ctx, storyID)
		if err != nil {
			return fmt.Errorf("failed to load comments for story %d: %w", storyID, err)
		}

		lengths := commentLengthStats(comments)
		row := models.StoryStats{
			StoryID:          storyID,
			TotalComments:    int64(len(comments)),
			AvgCommentLength: lengths.Avg,
			MaxCommentLength: lengths.Max,
			MinCommentLength: lengths.Min,
			EngagementScore:  storyEngagement(story.Score, int64(len(comments)), lengths.Avg),
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "story_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_comments", "avg_comment_length", "max_comment_length",
				"min_comment_length", "engagement_score", "updated_at",
			}),
		}).Create(&row).Error; err != nil {
			return fmt.Errorf("failed to upsert story stats for %d: %w", storyID, err)
		}

		stats = &row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// TransformUserData recomputes the derived statistics for one user and
// upserts them into user_stats. Returns (nil, nil) when the user is not
// in the store. Comments carry no score upstream, so the average comment
// score contributes zero to the weighted engagement.
func (t *Transformer) TransformUserData(ctx context.Context, userID string) (*models.UserStats, error) {
	var stats *models.UserStats
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := db.NewRepository(tx)
		userRepo := db.NewUserRepository(repo)

		user, err := userRepo.GetByName(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load user %q: %w", userID, err)
		}
		if user == nil {
			return nil
		}

		stories, err := userRepo.StoriesByAuthor(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("failed to load stories for user %q: %w", userID, err)
		}
		comments, err := db.NewCommentRepository(repo).ByAuthor(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("failed to load comments for user %q: %w", userID, err)
		}

		avgStoryScore := averageStoryScore(stories)
		row := models.UserStats{
			UserID:          user.ID,
			TotalStories:    int64(len(stories)),
			TotalComments:   int64(len(comments)),
			AvgStoryScore:   avgStoryScore,
			AvgCommentScore: 0,
			EngagementScore: userEngagement(int64(len(stories)), int64(len(comments)), avgStoryScore, 0),
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_stories", "total_comments", "avg_story_score",
				"avg_comment_score", "engagement_score", "updated_at",
			}),
		}).Create(&row).Error; err != nil {
			return fmt.Errorf("failed to upsert user stats for %q: %w", userID, err)
		}

		stats = &row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// AnalyzeTopics groups the stories created within the trailing window by
// exact title, ranks the distinct titles by story count and appends the
// top 10 as a fresh batch of topic_analysis rows. Rows accumulate across
// runs: the table is an append-only trend history, not a snapshot.
func (t *Transformer) AnalyzeTopics(ctx context.Context, hours int) ([]models.TopicAnalysis, error) {
	var topics []models.TopicAnalysis
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := db.NewRepository(tx)

		since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
		stories, err := db.NewStoryRepository(repo).InWindow(ctx, since)
		if err != nil {
			return fmt.Errorf("failed to load stories for topic analysis: %w", err)
		}

		ids := make([]int64, 0, len(stories))
		for _, s := range stories {
			ids = append(ids, s.ID)
		}
		counts, err := db.NewCommentRepository(repo).CountByStory(ctx, ids)
		if err != nil {
			return fmt.Errorf("failed to count comments for topic analysis: %w", err)
		}

		topics = rankTopics(stories, counts, 10)
		if len(topics) == 0 {
			return nil
		}

		if err := tx.Create(&topics).Error; err != nil {
			return fmt.Errorf("failed to store topic analysis: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return topics, nil
}

// TransformJobData recomputes the derived statistics for one job posting
// against comparable postings (same job type and location, trailing 30
// days) and upserts them into job_stats. Returns (nil, nil) when the job
// is not in the store.
func (t *Transformer) TransformJobData(ctx context.Context, jobID int64) (*models.JobStats, error) {
	var stats *models.JobStats
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := db.NewRepository(tx)
		jobRepo := db.NewJobRepository(repo)

		job, err := jobRepo.GetByID(ctx, jobID)
		if err != nil {
			return fmt.Errorf("failed to load job %d: %w", jobID, err)
		}
		if job == nil {
			return nil
		}

		since := time.Now().UTC().AddDate(0, 0, -30)
		comparable, err := jobRepo.Comparable(ctx, job.JobType.String, job.Location.String, since)
		if err != nil {
			return fmt.Errorf("failed to load comparable jobs for %d: %w", jobID, err)
		}

		types, locations, companies := jobDistributions(comparable)
		row := models.JobStats{
			JobID:                jobID,
			TotalPostings:        int64(len(comparable)),
			AvgSalary:            averageSalaryMidpoint(comparable),
			JobTypeDistribution:  datatypes.NewJSONType(types),
			LocationDistribution: datatypes.NewJSONType(locations),
			CompanyDistribution:  datatypes.NewJSONType(companies),
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "job_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_postings", "avg_salary", "job_type_distribution",
				"location_distribution", "company_distribution", "updated_at",
			}),
		}).Create(&row).Error; err != nil {
			return fmt.Errorf("failed to upsert job stats for %d: %w", jobID, err)
		}

		stats = &row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// lengthStats holds comment body length aggregates. Null bodies count as
// comments but are excluded from the length aggregates.
type lengthStats struct {
	Avg float64
	Min int64
	Max int64
}

func commentLengthStats(comments []*models.Comment) lengthStats {
	var stats lengthStats
	var sum, n int64
	first := true
	for _, c := range comments {
		if !c.Text.Valid {
			continue
		}
		l := int64(len(c.Text.String))
		sum += l
		n++
		if first || l < stats.Min {
			stats.Min = l
		}
		if first || l > stats.Max {
			stats.Max = l
		}
		first = false
	}
	if n > 0 {
		stats.Avg = float64(sum) / float64(n)
	}
	return stats
}

// storyEngagement weighs score, comment volume and comment depth into a
// single number.
func storyEngagement(score, commentCount int64, avgCommentLength float64) float64 {
	return 0.4*float64(score) + 0.4*float64(commentCount) + 0.2*avgCommentLength
}

func userEngagement(stories, comments int64, avgStoryScore, avgCommentScore float64) float64 {
	return 0.3*float64(stories) + 0.3*float64(comments) + 0.2*avgStoryScore + 0.2*avgCommentScore
}

func averageStoryScore(stories []*models.Story) float64 {
	if len(stories) == 0 {
		return 0
	}
	var sum int64
	for _, s := range stories {
		sum += s.Score
	}
	return float64(sum) / float64(len(stories))
}

// rankTopics groups stories by exact title, computes per-title aggregates
// and returns the top limit titles by story count descending. Ties break
// on topic name for deterministic output.
func rankTopics(stories []*models.Story, commentCounts map[int64]int64, limit int) []models.TopicAnalysis {
	type agg struct {
		count    int64
		scoreSum int64
		comments int64
	}
	byTitle := make(map[string]*agg)
	for _, s := range stories {
		a := byTitle[s.Title]
		if a == nil {
			a = &agg{}
			byTitle[s.Title] = a
		}
		a.count++
		a.scoreSum += s.Score
		a.comments += commentCounts[s.ID]
	}

	topics := make([]models.TopicAnalysis, 0, len(byTitle))
	for title, a := range byTitle {
		topics = append(topics, models.TopicAnalysis{
			Topic:         title,
			StoryCount:    a.count,
			AvgScore:      float64(a.scoreSum) / float64(a.count),
			TotalComments: a.comments,
		})
	}
	sort.Slice(topics, func(i, j int) bool {
		if topics[i].StoryCount != topics[j].StoryCount {
			return topics[i].StoryCount > topics[j].StoryCount
		}
		return topics[i].Topic < topics[j].Topic
	})
	if len(topics) > limit {
		topics = topics[:limit]
	}
	return topics
}

func jobDistributions(jobs []*models.Job) (types, locations, companies map[string]int64) {
	types = make(map[string]int64)
	locations = make(map[string]int64)
	companies = make(map[string]int64)
	for _, j := range jobs {
		if j.JobType.Valid {
			types[j.JobType.String]++
		}
		if j.Location.Valid {
			locations[j.Location.String]++
		}
		if j.Company.Valid {
			companies[j.Company.String]++
		}
	}
	return types, locations, companies
}

// salaryMidpoint parses a "min-max" salary range into its midpoint.
// Ranges that do not parse as two hyphen-separated numbers are skipped
// silently by the caller.
func salaryMidpoint(salaryRange string) (float64, bool) {
	parts := strings.SplitN(salaryRange, "-", 2)
	if len(parts) != 2 {
		return 0, false
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, false
	}
	hi, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, false
	}
	return (lo + hi) / 2, true
}

func averageSalaryMidpoint(jobs []*models.Job) float64 {
	var sum float64
	var n int
	for _, j := range jobs {
		if !j.SalaryRange.Valid {
			continue
		}
		if mid, ok := salaryMidpoint(j.SalaryRange.String); ok {
			sum += mid
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
