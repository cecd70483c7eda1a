package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Database   DatabaseConfig
	HackerNews HackerNewsConfig
	Pipeline   PipelineConfig
	Redis      RedisConfig
	Server     ServerConfig
	Gemini     GeminiConfig
	Logging    LoggingConfig
	Telemetry  TelemetryConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// HackerNewsConfig holds upstream HackerNews API configuration
type HackerNewsConfig struct {
	URL            string
	RateLimit      int // requests allowed per window
	RatePeriodSecs int // window length in seconds
}

// PipelineConfig holds ETL pipeline configuration
type PipelineConfig struct {
	StoryLimit   int
	JobLimit     int
	TopicHours   int
	MaxTreeNodes int    // 0 means unbounded
	CronSchedule string // used by the serve command
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL     string
	Enabled bool
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int
	Host string
}

// GeminiConfig holds the chat agent model configuration
type GeminiConfig struct {
	APIKey    string
	Model     string
	MaxRounds int // tool-calling rounds per chat turn
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// TelemetryConfig holds observability configuration
type TelemetryConfig struct {
	Enabled           bool
	JaegerURL         string
	PrometheusEnabled bool
	PrometheusPort    int
	ServiceName       string
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	setDefaults()

	viper.SetEnvPrefix("HN")
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.hackernews-ai")
	viper.AddConfigPath("/etc/hackernews-ai")

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found; this is OK if we have env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Database: DatabaseConfig{
			URL: getString("database_url", ""),
		},
		HackerNews: HackerNewsConfig{
			URL:            getString("api_url", "https://hacker-news.firebaseio.com/v0"),
			RateLimit:      getInt("rate_limit", 100),
			RatePeriodSecs: getInt("rate_period", 60),
		},
		Pipeline: PipelineConfig{
			StoryLimit:   getInt("story_limit", 100),
			JobLimit:     getInt("job_limit", 100),
			TopicHours:   getInt("topic_hours", 24),
			MaxTreeNodes: getInt("max_tree_nodes", 0),
			CronSchedule: getString("cron_schedule", "@hourly"),
		},
		Redis: RedisConfig{
			URL:     getString("redis_url", ""),
			Enabled: getString("redis_url", "") != "",
		},
		Server: ServerConfig{
			Port: getInt("http_server_port", 8080),
			Host: getString("http_server_host", "0.0.0.0"),
		},
		Gemini: GeminiConfig{
			APIKey:    getString("gemini_api_key", ""),
			Model:     getString("gemini_model", "gemini-2.0-flash"),
			MaxRounds: getInt("gemini_max_rounds", 5),
		},
		Logging: LoggingConfig{
			Level:  getString("log_level", "INFO"),
			Format: getString("log_format", "json"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           getBool("telemetry_enabled", false),
			JaegerURL:         getString("jaeger_url", ""),
			PrometheusEnabled: getBool("prometheus_enabled", false),
			PrometheusPort:    getInt("prometheus_port", 9090),
			ServiceName:       getString("service_name", "hackernews-ai"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("api_url", "https://hacker-news.firebaseio.com/v0")
	viper.SetDefault("rate_limit", 100)
	viper.SetDefault("rate_period", 60)
	viper.SetDefault("story_limit", 100)
	viper.SetDefault("job_limit", 100)
	viper.SetDefault("topic_hours", 24)
	viper.SetDefault("http_server_port", 8080)
	viper.SetDefault("http_server_host", "0.0.0.0")
	viper.SetDefault("gemini_model", "gemini-2.0-flash")
	viper.SetDefault("gemini_max_rounds", 5)
	viper.SetDefault("log_level", "INFO")
	viper.SetDefault("log_format", "json")
	viper.SetDefault("service_name", "hackernews-ai")
}

func getString(key, defaultValue string) string {
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	if val := os.Getenv("HN_" + toEnvKey(key)); val != "" {
		return val
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if viper.IsSet(key) {
		return viper.GetInt(key)
	}
	if val := os.Getenv("HN_" + toEnvKey(key)); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if viper.IsSet(key) {
		return viper.GetBool(key)
	}
	if val := os.Getenv("HN_" + toEnvKey(key)); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultValue
}

func toEnvKey(key string) string {
	result := ""
	for i, r := range key {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result += "_"
		}
		if r == '-' || r == '_' {
			result += "_"
		} else {
			result += string(r)
		}
	}
	return result
}

// Validate validates the configuration. A missing database URL is fatal:
// every entry point needs the store.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database_url is required")
	}
	if c.HackerNews.URL == "" {
		return fmt.Errorf("api_url is required")
	}
	if c.HackerNews.RateLimit <= 0 {
		return fmt.Errorf("rate_limit must be positive")
	}
	if c.HackerNews.RatePeriodSecs <= 0 {
		return fmt.Errorf("rate_period must be positive")
	}
	if c.Pipeline.StoryLimit < 0 || c.Pipeline.JobLimit < 0 {
		return fmt.Errorf("story_limit and job_limit must not be negative")
	}
	return nil
}
