package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type (
	// APIServerConfig is the root configuration for the apiserver binary
	APIServerConfig struct {
		Server     ServerConfig     `yaml:"server"`
		Database   DatabaseConfig   `yaml:"database"`
		JWT        JWTConfig        `yaml:"jwt"`
		Logger     LoggerConfig     `yaml:"logger"`
		Notifier   NotifierConfig   `yaml:"notifier"`
		CORS       CORSConfig       `yaml:"cors"`
		RateLimit  RateLimitConfig  `yaml:"rate_limit"`
		Metrics    MetricsConfig    `yaml:"metrics"`
		SuperAdmin SuperAdminConfig `yaml:"super_admin"`
	}

	// ServerConfig holds the HTTP listener settings
	ServerConfig struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		IdleTimeout     time.Duration `yaml:"idle_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	}

	DatabaseConfig struct {
		Type     string `yaml:"type"`     // mysql, postgres, sqlite
		Host     string `yaml:"host"`     // localhost
		Port     int    `yaml:"port"`     // 3306 (mysql), 5432 (postgres)
		User     string `yaml:"user"`     // root (mysql), postgres (postgres)
		Password string `yaml:"password"` // password
		DBName   string `yaml:"dbname"`   // database name, or file path for sqlite
		SSLMode  string `yaml:"sslmode"`  // disable (postgres)
	}

	JWTConfig struct {
		SecretKey string        `yaml:"secret_key"`
		Duration  time.Duration `yaml:"duration"`
	}

	// NotifierConfig configures the notification outbox dispatcher
	NotifierConfig struct {
		Interval time.Duration       `yaml:"interval"` // outbox poll interval
		Batch    int                 `yaml:"batch"`    // max rows drained per poll
		Redis    NotifierRedisConfig `yaml:"redis"`    // optional event stream
	}

	// NotifierRedisConfig configures publication of notification events to a
	// Redis stream. Disabled when Addr is empty.
	NotifierRedisConfig struct {
		Addr     string `yaml:"addr"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Stream   string `yaml:"stream"`
	}

	// CORSConfig configures cross-origin access for the SPA frontend
	CORSConfig struct {
		AllowOrigins     []string `yaml:"allow_origins"`
		AllowCredentials bool     `yaml:"allow_credentials"`
	}

	// RateLimitConfig configures per-IP throttling on the login endpoint
	RateLimitConfig struct {
		LoginPerMinute int `yaml:"login_per_minute"`
		LoginBurst     int `yaml:"login_burst"`
	}

	// MetricsConfig configures the Prometheus registry
	MetricsConfig struct {
		Enabled   bool      `yaml:"enabled"`
		Namespace string    `yaml:"namespace"`
		Buckets   []float64 `yaml:"buckets"`
	}

	// SuperAdminConfig seeds the initial SYSTEM_ADMIN account on first boot
	SuperAdminConfig struct {
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
	}
)

func (c *APIServerConfig) setDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 5080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 20 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15 * time.Second
	}
	if c.Notifier.Interval == 0 {
		c.Notifier.Interval = time.Second
	}
	if c.Notifier.Batch == 0 {
		c.Notifier.Batch = 100
	}
	if c.RateLimit.LoginPerMinute == 0 {
		c.RateLimit.LoginPerMinute = 10
	}
	if c.RateLimit.LoginBurst == 0 {
		c.RateLimit.LoginBurst = 5
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "stayline"
	}
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	switch c.Type {
	case "postgres":
		return c.getPostgresDSN()
	case "mysql":
		return c.getMySQLDSN()
	case "sqlite":
		// Ensure the directory for the SQLite database exists.
		if err := os.MkdirAll(filepath.Dir(c.DBName), 0755); err != nil {
			panic(fmt.Errorf("failed to create directory for sqlite database: %w", err))
		}
		return c.DBName // For SQLite, DBName is the file path
	default:
		return ""
	}
}

// getPostgresDSN returns PostgreSQL connection string
func (c *DatabaseConfig) getPostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// getMySQLDSN returns MySQL connection string
func (c *DatabaseConfig) getMySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}
