package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Search      SearchConfig      `yaml:"search"`
	Admin       AdminConfig       `yaml:"admin"`
	Media       MediaConfig       `yaml:"media"`
	Email       EmailConfig       `yaml:"email"`
	Leads       LeadsConfig       `yaml:"leads"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	LinkPreview LinkPreviewConfig `yaml:"link_preview"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	// Peers allowed to set X-Forwarded-For; empty means the socket address
	// is the client IP.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Type     string         `yaml:"type"` // mysql, postgres or sqlite
	MySQL    MySQLConfig    `yaml:"mysql"`
	Postgres PostgresConfig `yaml:"postgres"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
}

// MySQLConfig contains MySQL connection settings
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// PostgresConfig contains PostgreSQL connection settings
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// SQLiteConfig contains the path of the embedded database file
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// SearchConfig contains search engine settings
type SearchConfig struct {
	Enabled        bool              `yaml:"enabled"`
	Meilisearch    MeilisearchConfig `yaml:"meilisearch"`
	DailyReindex   bool              `yaml:"daily_reindex"`
	ReindexRunTime string            `yaml:"reindex_run_time"`
}

// MeilisearchConfig contains Meilisearch connection settings
type MeilisearchConfig struct {
	Host   string `yaml:"host"`
	APIKey string `yaml:"api_key"`
}

// AdminConfig contains the admin gate settings. Both login paths share
// SessionTTLHours and the session cookie.
type AdminConfig struct {
	Passcode        string `yaml:"passcode"`
	Username        string `yaml:"username"`
	PasswordHash    string `yaml:"password_hash"` // bcrypt
	SessionSecret   string `yaml:"session_secret"`
	SessionTTLHours int    `yaml:"session_ttl_hours"`
	CookieSecure    bool   `yaml:"cookie_secure"`
}

// MediaConfig contains property image settings
type MediaConfig struct {
	RootDir         string `yaml:"root_dir"`
	ThumbnailWidth  int    `yaml:"thumbnail_width"`
	ThumbnailHeight int    `yaml:"thumbnail_height"`
	Workers         int    `yaml:"workers"`
	DailyRunEnabled bool   `yaml:"daily_run_enabled"`
	DailyRunTime    string `yaml:"daily_run_time"`
}

// EmailConfig contains lead notification settings
type EmailConfig struct {
	Enabled             bool     `yaml:"enabled"`
	ResendAPIKey        string   `yaml:"resend_api_key"`
	From                string   `yaml:"from"`
	NotifyTo            []string `yaml:"notify_to"`
	Workers             int      `yaml:"workers"`
	PollIntervalSeconds int      `yaml:"poll_interval_seconds"`
	BatchSize           int      `yaml:"batch_size"`
}

// LeadsConfig contains retention settings for contact inquiries and bookings
type LeadsConfig struct {
	RetentionDays    int    `yaml:"retention_days"`
	MaxDeletionCount int    `yaml:"max_deletion_count"`
	CleanupEnabled   bool   `yaml:"cleanup_enabled"`
	CleanupRunTime   string `yaml:"cleanup_run_time"`
}

// RateLimitConfig contains per-client limits for the public lead forms
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	RequestsPerHour   int  `yaml:"requests_per_hour"`
	RequestsPerDay    int  `yaml:"requests_per_day"`
}

// LinkPreviewConfig contains settings for press link previews
type LinkPreviewConfig struct {
	TimeoutSeconds    int    `yaml:"timeout_seconds"`
	MaxRetries        int    `yaml:"max_retries"`
	RetryDelaySeconds int    `yaml:"retry_delay_seconds"`
	MaxInFlight       int    `yaml:"max_in_flight"`
	RequestDelayMs    int    `yaml:"request_delay_ms"`
	HeadlessEnabled   bool   `yaml:"headless_enabled"`
	ChromePath        string `yaml:"chrome_path"`
	UserAgent         string `yaml:"user_agent"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Pretty      bool   `yaml:"pretty"`
	LogRequests bool   `yaml:"log_requests"`
	LogQueries  bool   `yaml:"log_queries"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8084",
			AllowedOrigins: []string{"http://localhost:5173"},
		},
		Database: DatabaseConfig{
			Type:   "sqlite",
			SQLite: SQLiteConfig{Path: "data/site.db"},
			Postgres: PostgresConfig{
				SSLMode: "disable",
			},
		},
		Search: SearchConfig{
			Enabled:        false,
			DailyReindex:   true,
			ReindexRunTime: "03:30",
		},
		Admin: AdminConfig{
			Passcode:        "202512",
			Username:        "admin",
			SessionTTLHours: 12,
		},
		Media: MediaConfig{
			RootDir:         "public/images/properties",
			ThumbnailWidth:  400,
			ThumbnailHeight: 300,
			Workers:         4,
			DailyRunEnabled: true,
			DailyRunTime:    "03:00",
		},
		Email: EmailConfig{
			Enabled:             false,
			From:                "Shine Be Bright <noreply@shinebebright.com>",
			Workers:             2,
			PollIntervalSeconds: 30,
			BatchSize:           10,
		},
		Leads: LeadsConfig{
			RetentionDays:    180,
			MaxDeletionCount: 5000,
			CleanupEnabled:   true,
			CleanupRunTime:   "04:00",
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 5,
			RequestsPerHour:   30,
			RequestsPerDay:    100,
		},
		LinkPreview: LinkPreviewConfig{
			TimeoutSeconds:    15,
			MaxRetries:        2,
			RetryDelaySeconds: 2,
			MaxInFlight:       2,
			RequestDelayMs:    500,
			HeadlessEnabled:   false,
			ChromePath:        "/usr/bin/google-chrome",
			UserAgent:         "Mozilla/5.0 (compatible; ShineBeBrightPreview/1.0)",
		},
		Logging: LoggingConfig{
			Level:       "info",
			Pretty:      false,
			LogRequests: true,
			LogQueries:  false,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(filepath string) (*Config, error) {
	config := DefaultConfig()

	// If file doesn't exist, return default config
	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// ApplyEnv fills connection settings from the environment where the file
// left them empty, and lets secrets in the environment take precedence.
func (c *Config) ApplyEnv() {
	c.Server.Port = GetEnv("PORT", c.Server.Port)

	c.Database.Type = GetEnv("DB_TYPE", c.Database.Type)

	my := &c.Database.MySQL
	my.Host = GetEnvOrConfig(my.Host, "DB_HOST", "mysql")
	my.Port = getEnvIntOrConfig(my.Port, "DB_PORT", 3306)
	my.User = GetEnvOrConfig(my.User, "DB_USER", "shinebebright")
	my.Password = GetEnvOrConfig(my.Password, "DB_PASSWORD", "")
	my.Database = GetEnvOrConfig(my.Database, "DB_NAME", "shinebebright")

	pg := &c.Database.Postgres
	pg.Host = GetEnvOrConfig(pg.Host, "DB_HOST", "db")
	pg.Port = getEnvIntOrConfig(pg.Port, "DB_PORT", 5432)
	pg.User = GetEnvOrConfig(pg.User, "DB_USER", "shinebebright")
	pg.Password = GetEnvOrConfig(pg.Password, "DB_PASSWORD", "")
	pg.Database = GetEnvOrConfig(pg.Database, "DB_NAME", "shinebebright")

	c.Database.SQLite.Path = GetEnvOrConfig(c.Database.SQLite.Path, "SQLITE_PATH", "data/site.db")

	c.Search.Meilisearch.Host = GetEnvOrConfig(c.Search.Meilisearch.Host, "MEILISEARCH_HOST", "http://meilisearch:7700")
	c.Search.Meilisearch.APIKey = GetEnvOrConfig(c.Search.Meilisearch.APIKey, "MEILISEARCH_KEY", "")

	overrideFromEnv(&c.Admin.Passcode, "ADMIN_PASSCODE")
	overrideFromEnv(&c.Admin.PasswordHash, "ADMIN_PASSWORD_HASH")
	overrideFromEnv(&c.Admin.SessionSecret, "SESSION_SECRET")
	overrideFromEnv(&c.Email.ResendAPIKey, "RESEND_API_KEY")
}

// SessionTTL returns the admin session lifetime as a duration
func (c *AdminConfig) SessionTTL() time.Duration {
	if c.SessionTTLHours <= 0 {
		return 12 * time.Hour
	}
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// GetTimeout returns the fetch timeout as a duration
func (c *LinkPreviewConfig) GetTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GetRetryDelay returns the retry delay as a duration
func (c *LinkPreviewConfig) GetRetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySeconds) * time.Second
}

// GetRequestDelay returns the minimum spacing between outbound fetches
func (c *LinkPreviewConfig) GetRequestDelay() time.Duration {
	return time.Duration(c.RequestDelayMs) * time.Millisecond
}

// GetPollInterval returns the outbox polling interval as a duration
func (c *EmailConfig) GetPollInterval() time.Duration {
	if c.PollIntervalSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// GetEnv returns the environment variable or the default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvOrConfig returns config value if set, otherwise falls back to environment variable, then default
func GetEnvOrConfig(configValue, envKey, defaultValue string) string {
	if configValue != "" {
		return configValue
	}
	return GetEnv(envKey, defaultValue)
}

func getEnvIntOrConfig(configValue int, envKey string, defaultValue int) int {
	if configValue > 0 {
		return configValue
	}
	if v, err := strconv.Atoi(os.Getenv(envKey)); err == nil && v > 0 {
		return v
	}
	return defaultValue
}

func overrideFromEnv(field *string, envKey string) {
	if v := os.Getenv(envKey); v != "" {
		*field = v
	}
}
