package chat

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/maguenza/hackernews-ai-project/internal/db"
	"github.com/maguenza/hackernews-ai-project/internal/models"
)

const (
	defaultToolLimit = 10
	maxToolLimit     = 50
)

// Toolset exposes the read repositories as model-callable functions. All
// tools are read only.
type Toolset struct {
	stories  *db.StoryRepository
	comments *db.CommentRepository
	users    *db.UserRepository
	jobs     *db.JobRepository
}

// NewToolset creates a new toolset over the given repository
func NewToolset(repo *db.Repository) *Toolset {
	return &Toolset{
		stories:  db.NewStoryRepository(repo),
		comments: db.NewCommentRepository(repo),
		users:    db.NewUserRepository(repo),
		jobs:     db.NewJobRepository(repo),
	}
}

// Declarations returns the function declarations advertised to the model
func (t *Toolset) Declarations() []*genai.FunctionDeclaration {
	return []*genai.FunctionDeclaration{
		{
			Name:        "search_stories",
			Description: "Search stored HackerNews stories by title keyword, optionally filtered by minimum score and a trailing day window.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"keyword":   {Type: genai.TypeString, Description: "Keyword to match against story titles"},
					"min_score": {Type: genai.TypeInteger, Description: "Only return stories with at least this score"},
					"days_back": {Type: genai.TypeInteger, Description: "Only return stories from the last N days"},
					"limit":     {Type: genai.TypeInteger, Description: "Maximum number of stories to return"},
				},
				Required: []string{"keyword"},
			},
		},
		{
			Name:        "get_top_stories",
			Description: "Get the highest scored stored stories, optionally restricted to a trailing day window.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"days_back": {Type: genai.TypeInteger, Description: "Only consider stories from the last N days"},
					"limit":     {Type: genai.TypeInteger, Description: "Maximum number of stories to return"},
				},
			},
		},
		{
			Name:        "search_jobs",
			Description: "Search stored HackerNews job postings by keyword, location, or job type.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"keyword":  {Type: genai.TypeString, Description: "Keyword to match against job title and text"},
					"location": {Type: genai.TypeString, Description: "Location to filter by, e.g. london or remote"},
					"job_type": {Type: genai.TypeString, Description: "Job type to filter by, e.g. full-time, contract, remote"},
					"limit":    {Type: genai.TypeInteger, Description: "Maximum number of jobs to return"},
				},
			},
		},
		{
			Name:        "get_user_info",
			Description: "Get a stored HackerNews user's profile together with their story and comment counts.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"username": {Type: genai.TypeString, Description: "The HackerNews username"},
				},
				Required: []string{"username"},
			},
		},
	}
}

// Execute dispatches a function call by name. Unknown tools and failing
// queries return errors for the caller to feed back to the model.
func (t *Toolset) Execute(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	switch name {
	case "search_stories":
		return t.searchStories(ctx, args)
	case "get_top_stories":
		return t.getTopStories(ctx, args)
	case "search_jobs":
		return t.searchJobs(ctx, args)
	case "get_user_info":
		return t.getUserInfo(ctx, args)
	default:
		return nil, fmt.Errorf("unknown tool %q", name)
	}
}

func (t *Toolset) searchStories(ctx context.Context, args map[string]any) (map[string]any, error) {
	keyword := argString(args, "keyword")
	if keyword == "" {
		return nil, fmt.Errorf("search_stories requires a keyword")
	}

	stories, err := t.stories.Search(ctx, keyword,
		argInt(args, "min_score", 0),
		argInt(args, "days_back", 0),
		clampLimit(argInt(args, "limit", defaultToolLimit)))
	if err != nil {
		return nil, fmt.Errorf("story search failed: %w", err)
	}
	return map[string]any{"stories": storySummaries(stories)}, nil
}

func (t *Toolset) getTopStories(ctx context.Context, args map[string]any) (map[string]any, error) {
	stories, err := t.stories.TopByScore(ctx,
		argInt(args, "days_back", 0),
		clampLimit(argInt(args, "limit", defaultToolLimit)))
	if err != nil {
		return nil, fmt.Errorf("top stories query failed: %w", err)
	}
	return map[string]any{"stories": storySummaries(stories)}, nil
}

func (t *Toolset) searchJobs(ctx context.Context, args map[string]any) (map[string]any, error) {
	jobs, err := t.jobs.Search(ctx,
		argString(args, "keyword"),
		argString(args, "location"),
		argString(args, "job_type"),
		clampLimit(argInt(args, "limit", defaultToolLimit)))
	if err != nil {
		return nil, fmt.Errorf("job search failed: %w", err)
	}
	return map[string]any{"jobs": jobSummaries(jobs)}, nil
}

func (t *Toolset) getUserInfo(ctx context.Context, args map[string]any) (map[string]any, error) {
	username := argString(args, "username")
	if username == "" {
		return nil, fmt.Errorf("get_user_info requires a username")
	}

	user, err := t.users.GetByName(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}
	if user == nil {
		return map[string]any{"found": false, "username": username}, nil
	}

	stories, err := t.users.StoriesByAuthor(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("story lookup failed: %w", err)
	}
	comments, err := t.comments.ByAuthor(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("comment lookup failed: %w", err)
	}

	info := map[string]any{
		"found":         true,
		"username":      user.Username,
		"karma":         user.Karma,
		"created_at":    user.CreatedAt.Format(time.RFC3339),
		"story_count":   len(stories),
		"comment_count": len(comments),
	}
	if user.About.Valid {
		info["about"] = user.About.String
	}
	return info, nil
}

func storySummaries(stories []*models.Story) []map[string]any {
	out := make([]map[string]any, 0, len(stories))
	for _, s := range stories {
		row := map[string]any{
			"id":       s.ID,
			"title":    s.Title,
			"score":    s.Score,
			"comments": s.Descendants,
			"time":     s.Time.Format(time.RFC3339),
		}
		if s.URL.Valid {
			row["url"] = s.URL.String
		}
		if s.By.Valid {
			row["by"] = s.By.String
		}
		out = append(out, row)
	}
	return out
}

func jobSummaries(jobs []*models.Job) []map[string]any {
	out := make([]map[string]any, 0, len(jobs))
	for _, j := range jobs {
		row := map[string]any{
			"id":    j.ID,
			"title": j.Title,
			"time":  j.Time.Format(time.RFC3339),
		}
		if j.URL.Valid {
			row["url"] = j.URL.String
		}
		if j.JobType.Valid {
			row["job_type"] = j.JobType.String
		}
		if j.Location.Valid {
			row["location"] = j.Location.String
		}
		if j.Company.Valid {
			row["company"] = j.Company.String
		}
		if j.SalaryRange.Valid {
			row["salary_range"] = j.SalaryRange.String
		}
		out = append(out, row)
	}
	return out
}

// Function call arguments arrive as decoded JSON, so numbers are float64.
func argInt(args map[string]any, key string, fallback int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	default:
		return fallback
	}
}

func argString(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultToolLimit
	}
	if limit > maxToolLimit {
		return maxToolLimit
	}
	return limit
}
