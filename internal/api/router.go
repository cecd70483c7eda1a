package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/maguenza/hackernews-ai-project/internal/cache"
	"github.com/maguenza/hackernews-ai-project/internal/chat"
	"github.com/maguenza/hackernews-ai-project/internal/db"
	"github.com/maguenza/hackernews-ai-project/pkg/logging"
)

// Router sets up API routes
type Router struct {
	db     *db.DB
	cache  *cache.Cache
	agent  *chat.Agent
	logger *zap.Logger
}

// NewRouter creates a new API router. agent may be nil when no Gemini
// key is configured; the chat endpoint then responds 503.
func NewRouter(database *db.DB, redisCache *cache.Cache, agent *chat.Agent) *Router {
	return &Router{
		db:     database,
		cache:  redisCache,
		agent:  agent,
		logger: logging.GetLogger().With(zap.String("component", "api-router")),
	}
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.GET("/health", r.healthHandler)

	repo := db.NewRepository(r.db.DB)
	stories := NewStoryAPI(repo, r.cache)
	jobs := NewJobAPI(repo)
	users := NewUserAPI(repo)
	chatAPI := NewChatAPI(r.agent)

	api := engine.Group("/api")
	api.GET("/stories", stories.Search)
	api.GET("/stories/:id", stories.Get)
	api.GET("/jobs", jobs.Search)
	api.GET("/users/:username", users.Get)
	api.POST("/chat", chatAPI.Chat)
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	status := "OK"
	code := 200
	if err := r.db.Health(c.Request.Context()); err != nil {
		r.logger.Error("Database health check failed", zap.Error(err))
		status = "DEGRADED"
		code = 503
	}

	c.JSON(code, gin.H{
		"status":  status,
		"service": "hackernews-api",
	})
}
