package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// EnvProduction marks a production deployment
	EnvProduction = "production"
	// EnvDevelopment marks a local deployment
	EnvDevelopment = "development"
)

// Rate limit counter backends
const (
	RateLimitBackendPostgres = "postgres"
	RateLimitBackendRedis    = "redis"
	RateLimitBackendMemory   = "memory"
)

// Config represents the application configuration
type Config struct {
	// API contains API server configuration
	API APIConfig
	// Auth contains authentication configuration
	Auth AuthConfig
	// Database contains database configuration
	Database DatabaseConfig
	// Email contains email service configuration
	Email EmailConfig
	// Redis contains the optional Redis connection used for rate limit counters
	Redis RedisConfig
	// Reaper controls the background cleanup of expired sessions
	Reaper ReaperConfig

	// Rate Limiting Configuration
	RateLimit struct {
		Backend  string // Store holding per-key attempt counters
		Requests int    // Number of requests allowed per window and client IP
		Window   int    // Time window in seconds
		Burst    int    // Maximum burst size
	}
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	// Host is the database server hostname
	Host string
	// Port is the database server port
	Port int
	// User is the database username
	User string
	// Password is the database password
	Password string
	// DBName is the database name
	DBName string
	// SSLMode is the SSL mode for the database connection
	SSLMode string
	// MigrationsPath is the path to database migrations
	MigrationsPath string
}

// APIConfig contains API server settings
type APIConfig struct {
	// Port is the server port to listen on
	Port string
	// Environment is either "development" or "production"
	Environment string
}

// AuthConfig contains authentication settings
type AuthConfig struct {
	// SessionSecret is the HMAC key used to sign session tokens
	SessionSecret string
	// SessionTTL is the lifetime of a session token and its cookie
	SessionTTL time.Duration
	// BcryptCost is the work factor used when hashing passwords
	BcryptCost int
	// OTPLength is the number of digits in emailed verification codes
	OTPLength int
}

// EmailConfig contains email service settings
type EmailConfig struct {
	// SMTPHost is the SMTP server hostname
	SMTPHost string
	// SMTPPort is the SMTP server port
	SMTPPort int
	// SMTPUsername is the SMTP authentication username
	SMTPUsername string
	// SMTPPassword is the SMTP authentication password
	SMTPPassword string
	// FromAddress is the email address used as sender
	FromAddress string
	// AppName is used in email subjects and bodies
	AppName string
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ReaperConfig contains settings for the expired record reaper
type ReaperConfig struct {
	Enabled bool
	// Schedule in cron format (e.g. "*/10 * * * *" for every 10 minutes)
	Schedule string
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.API.Environment, EnvProduction)
}

// SMTPConfigured reports whether enough SMTP settings are present to deliver mail
func (e EmailConfig) SMTPConfigured() bool {
	return e.SMTPHost != "" && e.SMTPPort != 0 && e.FromAddress != ""
}

// LoadFromEnv retrieves configuration from environment variables
func (c *Config) LoadFromEnv() error {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	c.API = APIConfig{
		Port:        v.GetString("API_PORT"),
		Environment: strings.ToLower(v.GetString("APP_ENV")),
	}
	c.Database = DatabaseConfig{
		Host:           v.GetString("DB_HOST"),
		Port:           v.GetInt("DB_PORT"),
		User:           v.GetString("DB_USER"),
		Password:       v.GetString("DB_PASSWORD"),
		DBName:         v.GetString("DB_NAME"),
		SSLMode:        v.GetString("DB_SSL_MODE"),
		MigrationsPath: v.GetString("DB_MIGRATIONS_PATH"),
	}
	c.Auth = AuthConfig{
		SessionSecret: v.GetString("SESSION_SECRET"),
		SessionTTL:    v.GetDuration("SESSION_TTL"),
		BcryptCost:    v.GetInt("BCRYPT_COST"),
		OTPLength:     v.GetInt("OTP_LENGTH"),
	}
	c.Email = EmailConfig{
		SMTPHost:     v.GetString("SMTP_HOST"),
		SMTPPort:     v.GetInt("SMTP_PORT"),
		SMTPUsername: v.GetString("SMTP_USERNAME"),
		SMTPPassword: v.GetString("SMTP_PASSWORD"),
		FromAddress:  v.GetString("SMTP_FROM"),
		AppName:      v.GetString("APP_NAME"),
	}
	c.Redis = RedisConfig{
		Addr:     v.GetString("REDIS_ADDR"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}
	c.Reaper = ReaperConfig{
		Enabled:  v.GetBool("REAPER_ENABLED"),
		Schedule: v.GetString("REAPER_SCHEDULE"),
	}

	// Load rate limit configuration
	c.RateLimit.Backend = strings.ToLower(v.GetString("RATE_LIMIT_BACKEND"))
	c.RateLimit.Requests = v.GetInt("RATE_LIMIT_REQUESTS")
	c.RateLimit.Window = v.GetInt("RATE_LIMIT_WINDOW")
	c.RateLimit.Burst = v.GetInt("RATE_LIMIT_BURST")

	return c.Validate()
}

// Validate checks required fields and value ranges
func (c *Config) Validate() error {
	if c.Auth.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	if c.IsProduction() && len(c.Auth.SessionSecret) < 32 {
		return fmt.Errorf("SESSION_SECRET must be at least 32 bytes in production")
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.Auth.OTPLength < 4 || c.Auth.OTPLength > 10 {
		return fmt.Errorf("OTP_LENGTH must be between 4 and 10, got %d", c.Auth.OTPLength)
	}

	switch c.RateLimit.Backend {
	case RateLimitBackendPostgres, RateLimitBackendMemory:
	case RateLimitBackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required when RATE_LIMIT_BACKEND=redis")
		}
	default:
		return fmt.Errorf("unknown RATE_LIMIT_BACKEND %q", c.RateLimit.Backend)
	}

	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("API_PORT", "8080")
	v.SetDefault("APP_ENV", EnvDevelopment)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "contentdesk")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MIGRATIONS_PATH", "migrations")

	v.SetDefault("SESSION_TTL", 7*24*time.Hour)
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("OTP_LENGTH", 6)

	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("APP_NAME", "Content Desk")

	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("REAPER_ENABLED", true)
	v.SetDefault("REAPER_SCHEDULE", "*/10 * * * *")

	v.SetDefault("RATE_LIMIT_BACKEND", RateLimitBackendPostgres)
	v.SetDefault("RATE_LIMIT_REQUESTS", 1000)
	v.SetDefault("RATE_LIMIT_WINDOW", 60)
	v.SetDefault("RATE_LIMIT_BURST", 50)
}
