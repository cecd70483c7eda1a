package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestQueryInt(t *testing.T) {
	tests := []struct {
		query    string
		key      string
		fallback int
		want     int
	}{
		{"min_score=10", "min_score", 0, 10},
		{"min_score=abc", "min_score", 5, 5},
		{"", "min_score", 7, 7},
		{"days_back=-2", "days_back", 0, -2},
	}

	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)

		if got := queryInt(c, tt.key, tt.fallback); got != tt.want {
			t.Errorf("queryInt(%q, %q) = %d, want %d", tt.query, tt.key, got, tt.want)
		}
	}
}

func TestClampQueryLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 20},
		{-1, 20},
		{50, 50},
		{100, 100},
		{500, 100},
	}

	for _, tt := range tests {
		if got := clampQueryLimit(tt.in); got != tt.want {
			t.Errorf("clampQueryLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestChatUnconfigured(t *testing.T) {
	chatAPI := NewChatAPI(nil)

	engine := gin.New()
	engine.POST("/api/chat", chatAPI.Chat)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"message":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 when chat is not configured, got %d", w.Code)
	}
}

func TestChatRequiresMessage(t *testing.T) {
	chatAPI := NewChatAPI(nil)

	engine := gin.New()
	engine.POST("/api/chat", chatAPI.Chat)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing message, got %d", w.Code)
	}
}
