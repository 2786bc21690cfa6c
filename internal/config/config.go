package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	RabbitMQ  RabbitMQConfig  `yaml:"rabbitmq"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	JWT       JWTConfig       `yaml:"jwt"`
	Storage   StorageConfig   `yaml:"storage"`
	Staff     []StaffAccount  `yaml:"staff"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Rentals   RentalsConfig   `yaml:"rentals"`
}

// ServerConfig contains HTTP and gRPC listener settings
type ServerConfig struct {
	Host           string   `yaml:"host"`
	HTTPPort       int      `yaml:"http_port"`
	GRPCPort       int      `yaml:"grpc_port"` // Health and reflection only
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// RedisConfig contains the cart store settings
type RedisConfig struct {
	URL          string `yaml:"url"`
	CartTTLHours int    `yaml:"cart_ttl_hours"`
}

// RabbitMQConfig contains the domain event broker settings. An empty URL
// disables publishing.
type RabbitMQConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

// SMTPConfig contains email service settings. An empty host logs emails
// instead of sending them.
type SMTPConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	User        string `yaml:"user"`
	Password    string `yaml:"password"`
	From        string `yaml:"from"`
	StaffNotify string `yaml:"staff_notify"` // Receives new rental and reminder emails
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// StorageConfig contains item photo storage settings
type StorageConfig struct {
	UploadDir   string `yaml:"upload_dir"`
	BaseURL     string `yaml:"base_url"` // Public server URL photos are served from
	MaxFileSize int64  `yaml:"max_file_size_mb"`
}

// StaffAccount is a back-office login. PasswordHash is a bcrypt hash.
type StaffAccount struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	CancelStalePending    string `yaml:"cancel_stale_pending"`
	SendTeardownReminders string `yaml:"send_teardown_reminders"`
	OutOfStockDigest      string `yaml:"out_of_stock_digest"`
}

// RentalsConfig contains rental housekeeping settings
type RentalsConfig struct {
	// StalePendingGraceDays is how many days past its event date a Pending
	// rental may stay unconfirmed before the scheduler cancels it.
	StalePendingGraceDays int `yaml:"stale_pending_grace_days"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse builds a configuration from YAML, applies environment overrides and
// validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Redis and RabbitMQ
	if val := os.Getenv("REDIS_URL"); val != "" {
		c.Redis.URL = val
	}
	if val := os.Getenv("RABBITMQ_URL"); val != "" {
		c.RabbitMQ.URL = val
	}

	// SMTP
	if val := os.Getenv("SMTP_HOST"); val != "" {
		c.SMTP.Host = val
	}
	if val := os.Getenv("SMTP_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.SMTP.Port)
	}
	if val := os.Getenv("SMTP_USER"); val != "" {
		c.SMTP.User = val
	}
	if val := os.Getenv("SMTP_PASSWORD"); val != "" {
		c.SMTP.Password = val
	}
	if val := os.Getenv("SMTP_FROM"); val != "" {
		c.SMTP.From = val
	}
	if val := os.Getenv("STAFF_NOTIFY_EMAIL"); val != "" {
		c.SMTP.StaffNotify = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("HTTP_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.HTTPPort)
	}
	if val := os.Getenv("GRPC_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.GRPCPort)
	}
	if val := os.Getenv("ALLOWED_ORIGINS"); val != "" {
		c.Server.AllowedOrigins = strings.Split(val, ",")
	}

	// Storage
	if val := os.Getenv("UPLOAD_DIR"); val != "" {
		c.Storage.UploadDir = val
	}
	if val := os.Getenv("PUBLIC_BASE_URL"); val != "" {
		c.Storage.BaseURL = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid and fills in defaults
func (c *Config) Validate() error {
	// Server validation
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.Server.HTTPPort)
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("invalid gRPC port: %d", c.Server.GRPCPort)
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	// Redis validation
	if c.Redis.URL == "" {
		return fmt.Errorf("redis url is required")
	}
	if c.Redis.CartTTLHours <= 0 {
		c.Redis.CartTTLHours = 72
	}

	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "rental.events"
	}

	// SMTP validation
	if c.SMTP.Host != "" && (c.SMTP.Port <= 0 || c.SMTP.Port > 65535) {
		return fmt.Errorf("invalid SMTP port: %d", c.SMTP.Port)
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry <= 0 {
		c.JWT.AccessTokenExpiry = 24 * 60
	}

	// Storage validation
	if c.Storage.UploadDir == "" {
		return fmt.Errorf("upload directory is required")
	}
	if c.Storage.MaxFileSize <= 0 {
		c.Storage.MaxFileSize = 5
	}

	for i, s := range c.Staff {
		if s.Username == "" || s.PasswordHash == "" {
			return fmt.Errorf("staff account %d needs a username and password_hash", i)
		}
	}

	// Scheduler defaults
	if c.Scheduler.CancelStalePending == "" {
		c.Scheduler.CancelStalePending = "0 0 1 * * *" // 1 AM daily
	}
	if c.Scheduler.SendTeardownReminders == "" {
		c.Scheduler.SendTeardownReminders = "0 0 7 * * *" // 7 AM daily
	}
	if c.Scheduler.OutOfStockDigest == "" {
		c.Scheduler.OutOfStockDigest = "0 30 7 * * *" // 7:30 AM daily
	}

	if c.Rentals.StalePendingGraceDays <= 0 {
		c.Rentals.StalePendingGraceDays = 1
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetHTTPAddress returns the HTTP API listen address
func (c *Config) GetHTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.HTTPPort)
}

// GetGRPCAddress returns the gRPC listen address, or "" when disabled
func (c *Config) GetGRPCAddress() string {
	if c.Server.GRPCPort == 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPCPort)
}

func (c *Config) CartTTL() time.Duration {
	return time.Duration(c.Redis.CartTTLHours) * time.Hour
}

func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.JWT.AccessTokenExpiry) * time.Minute
}

// MaxUploadBytes is the largest accepted photo upload
func (c *Config) MaxUploadBytes() int64 {
	return c.Storage.MaxFileSize << 20
}

// StaffAccounts returns staff password hashes keyed by username
func (c *Config) StaffAccounts() map[string]string {
	accounts := make(map[string]string, len(c.Staff))
	for _, s := range c.Staff {
		accounts[s.Username] = s.PasswordHash
	}
	return accounts
}
