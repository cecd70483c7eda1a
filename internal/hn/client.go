package hn

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/maguenza/hackernews-ai-project/pkg/config"
	"github.com/maguenza/hackernews-ai-project/pkg/logging"
	"github.com/maguenza/hackernews-ai-project/pkg/telemetry"
)

// Client fetches items and users from the HackerNews Firebase API. Calls
// share a single rate limiter: a call that would exceed the request quota
// blocks until quota is available. The client holds no state beyond the
// HTTP connection pool.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// New creates a new HackerNews API client
func New(cfg *config.HackerNewsConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("api_url is required")
	}

	period := time.Duration(cfg.RatePeriodSecs) * time.Second
	limiter := rate.NewLimiter(rate.Every(period/time.Duration(cfg.RateLimit)), cfg.RateLimit)

	logger := logging.GetLogger().With(zap.String("component", "hn-client"))
	logger.Info("HackerNews client initialized",
		zap.String("url", cfg.URL),
		zap.Int("rate_limit", cfg.RateLimit),
		zap.Int("rate_period_secs", cfg.RatePeriodSecs))

	return &Client{
		baseURL: cfg.URL,
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: limiter,
		logger:  logger,
	}, nil
}

// TopStories returns the ids of the current top stories, at most limit.
func (c *Client) TopStories(ctx context.Context, limit int) ([]int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "hn.top_stories")
	defer span.End()

	var ids []int64
	found, err := c.get(ctx, "topstories.json", &ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list top stories: %w", err)
	}
	if !found {
		return nil, nil
	}
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// JobStories returns the ids of the current job postings, at most limit.
func (c *Client) JobStories(ctx context.Context, limit int) ([]int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "hn.job_stories")
	defer span.End()

	var ids []int64
	found, err := c.get(ctx, "jobstories.json", &ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list job stories: %w", err)
	}
	if !found {
		return nil, nil
	}
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// Item fetches a single item by id. A null upstream response is a soft
// absence and returns (nil, nil); network and decode failures propagate
// with the failing id.
func (c *Client) Item(ctx context.Context, id int64) (*Item, error) {
	ctx, span := telemetry.StartSpan(ctx, "hn.item")
	defer span.End()

	var item Item
	found, err := c.get(ctx, fmt.Sprintf("item/%d.json", id), &item)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch item %d: %w", id, err)
	}
	if !found {
		return nil, nil
	}
	return &item, nil
}

// Job fetches an item by id and derives the job-specific fields from its
// body text. The derivation is best-effort; see ExtractJobFields.
func (c *Client) Job(ctx context.Context, id int64) (*Item, error) {
	item, err := c.Item(ctx, id)
	if err != nil || item == nil {
		return item, err
	}
	fields := ExtractJobFields(item.Text)
	item.Job = &fields
	return item, nil
}

// User fetches a user record by username, (nil, nil) when unknown.
func (c *Client) User(ctx context.Context, username string) (*User, error) {
	ctx, span := telemetry.StartSpan(ctx, "hn.user")
	defer span.End()

	var user User
	found, err := c.get(ctx, fmt.Sprintf("user/%s.json", username), &user)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %q: %w", username, err)
	}
	if !found {
		return nil, nil
	}
	return &user, nil
}

// get performs a rate-limited GET against the API and decodes the JSON
// body into out. It returns false when the API answered with a JSON null,
// which is how the upstream signals a missing record.
func (c *Client) get(ctx context.Context, path string, out interface{}) (bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return false, fmt.Errorf("rate limiter wait: %w", err)
	}

	url := c.baseURL + "/" + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build request for %s: %w", path, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read response from %s: %w", path, err)
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return false, nil
	}

	if err := json.Unmarshal(trimmed, out); err != nil {
		return false, fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return true, nil
}
