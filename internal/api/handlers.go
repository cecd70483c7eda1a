package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maguenza/hackernews-ai-project/internal/cache"
	"github.com/maguenza/hackernews-ai-project/internal/chat"
	"github.com/maguenza/hackernews-ai-project/internal/db"
	"github.com/maguenza/hackernews-ai-project/internal/models"
)

const storyCacheTTL = 60 * time.Second

// StoryAPI serves story read queries
type StoryAPI struct {
	stories *db.StoryRepository
	cache   *cache.Cache
}

// NewStoryAPI creates a new story API
func NewStoryAPI(repo *db.Repository, redisCache *cache.Cache) *StoryAPI {
	return &StoryAPI{
		stories: db.NewStoryRepository(repo),
		cache:   redisCache,
	}
}

// Search handles GET /api/stories
func (s *StoryAPI) Search(c *gin.Context) {
	keyword := c.Query("keyword")
	minScore := queryInt(c, "min_score", 0)
	daysBack := queryInt(c, "days_back", 0)
	limit := clampQueryLimit(queryInt(c, "limit", 20))

	cacheKey := cache.HashKey("api_stories", keyword,
		strconv.Itoa(minScore), strconv.Itoa(daysBack), strconv.Itoa(limit))

	var cached []*models.Story
	if err := s.cache.GetJSON(cacheKey, &cached); err == nil {
		c.JSON(http.StatusOK, gin.H{"stories": cached})
		return
	}

	stories, err := s.stories.Search(c.Request.Context(), keyword, minScore, daysBack, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "story search failed"})
		return
	}

	// Cache write failures never fail the request.
	_ = s.cache.SetJSON(cacheKey, stories, storyCacheTTL)

	c.JSON(http.StatusOK, gin.H{"stories": stories})
}

// Get handles GET /api/stories/:id
func (s *StoryAPI) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid story id"})
		return
	}

	story, err := s.stories.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "story lookup failed"})
		return
	}
	if story == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("story %d not found", id)})
		return
	}

	c.JSON(http.StatusOK, story)
}

// JobAPI serves job read queries
type JobAPI struct {
	jobs *db.JobRepository
}

// NewJobAPI creates a new job API
func NewJobAPI(repo *db.Repository) *JobAPI {
	return &JobAPI{jobs: db.NewJobRepository(repo)}
}

// Search handles GET /api/jobs
func (j *JobAPI) Search(c *gin.Context) {
	jobs, err := j.jobs.Search(c.Request.Context(),
		c.Query("keyword"),
		c.Query("location"),
		c.Query("job_type"),
		clampQueryLimit(queryInt(c, "limit", 20)))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "job search failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// UserAPI serves user read queries
type UserAPI struct {
	users *db.UserRepository
}

// NewUserAPI creates a new user API
func NewUserAPI(repo *db.Repository) *UserAPI {
	return &UserAPI{users: db.NewUserRepository(repo)}
}

// Get handles GET /api/users/:username
func (u *UserAPI) Get(c *gin.Context) {
	username := c.Param("username")

	user, err := u.users.GetByName(c.Request.Context(), username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user lookup failed"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("user %q not found", username)})
		return
	}

	stories, err := u.users.StoriesByAuthor(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "story lookup failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":        user,
		"story_count": len(stories),
	})
}

// ChatAPI serves the conversational endpoint
type ChatAPI struct {
	agent *chat.Agent
}

// NewChatAPI creates a new chat API
func NewChatAPI(agent *chat.Agent) *ChatAPI {
	return &ChatAPI{agent: agent}
}

type chatRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id"`
}

// Chat handles POST /api/chat
func (h *ChatAPI) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	if h.agent == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "chat is not configured"})
		return
	}

	reply, err := h.agent.Chat(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "chat request failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reply":      reply,
		"session_id": req.SessionID,
	})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func clampQueryLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}
