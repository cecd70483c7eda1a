package logging

import (
	"testing"

	"github.com/maguenza/hackernews-ai-project/pkg/config"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.LoggingConfig
	}{
		{name: "json format", cfg: config.LoggingConfig{Level: "INFO", Format: "json"}},
		{name: "text format", cfg: config.LoggingConfig{Level: "DEBUG", Format: "text"}},
		{name: "unknown level falls back to info", cfg: config.LoggingConfig{Level: "bogus", Format: "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := InitLogger(&tt.cfg); err != nil {
				t.Fatalf("InitLogger failed: %v", err)
			}
			if Logger == nil {
				t.Fatal("Logger not set after InitLogger")
			}
		})
	}
}

func TestGetLoggerFallback(t *testing.T) {
	Logger = nil
	if GetLogger() == nil {
		t.Fatal("GetLogger returned nil")
	}
}

func TestWithComponent(t *testing.T) {
	if WithComponent("test") == nil {
		t.Fatal("WithComponent returned nil")
	}
}
