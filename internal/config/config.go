package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Logger   LoggerConfig   `yaml:"logger"`
	Auth     AuthConfig     `yaml:"auth"`
	CDN      CDNConfig      `yaml:"cdn"`
	S3       S3Config       `yaml:"s3"`
	Cache    CacheConfig    `yaml:"cache"`
	Realtime RealtimeConfig `yaml:"realtime"`
	Upload   UploadConfig   `yaml:"upload"`
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	CORSOrigins string `yaml:"cors_origins"`
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	Database        string `yaml:"name"`
	MaxConnections  int    `yaml:"max_connections"`
	MinConnections  int    `yaml:"min_connections"`
	MaxConnLifetime int    `yaml:"max_conn_lifetime"` // seconds
	Migrate         bool   `yaml:"migrate"`
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "console"
}

// AuthConfig holds session and authorisation configuration.
type AuthConfig struct {
	SessionSecret    string        `yaml:"session_secret"`
	SessionTTL       time.Duration `yaml:"session_ttl"`
	CookieName       string        `yaml:"cookie_name"`
	CookieSecure     bool          `yaml:"cookie_secure"`
	PrivilegedUserID string        `yaml:"privileged_user_id"`
	LoginPath        string        `yaml:"login_path"`
}

// CDNConfig holds image CDN configuration. An empty APISecret disables
// signing; the dependent endpoints then fail closed.
type CDNConfig struct {
	CloudName    string `yaml:"cloud_name"`
	APIKey       string `yaml:"api_key"`
	APISecret    string `yaml:"api_secret"`
	UploadPreset string `yaml:"upload_preset"`
	BaseURL      string `yaml:"base_url"`
}

// S3Config holds configuration for the flat screenshot bucket.
type S3Config struct {
	Enabled       bool   `yaml:"enabled"`
	Bucket        string `yaml:"bucket"`
	Region        string `yaml:"region"`
	Prefix        string `yaml:"prefix"`
	Endpoint      string `yaml:"endpoint"`
	PublicBaseURL string `yaml:"public_base_url"`
	AccessKey     string `yaml:"access_key"`
	SecretKey     string `yaml:"secret_key"`
}

// CacheConfig holds query cache configuration. Without a Redis URL the
// in-memory store is used.
type CacheConfig struct {
	RedisURL string        `yaml:"redis_url"`
	TTL      time.Duration `yaml:"ttl"`
}

// RealtimeConfig selects the change notification broker.
type RealtimeConfig struct {
	Driver  string `yaml:"driver"` // "postgres", "amqp" or "local"
	AMQPURL string `yaml:"amqp_url"`
	Channel string `yaml:"channel"`
}

// UploadConfig holds upload limits.
type UploadConfig struct {
	MaxBytes int64 `yaml:"max_bytes"`
}

// Load loads configuration from an optional YAML file named by CONFIG_FILE
// and then from environment variables, which take precedence.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			CORSOrigins: "*",
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			Database:        "storefront",
			MaxConnections:  25,
			MinConnections:  5,
			MaxConnLifetime: 300,
			Migrate:         true,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "json",
		},
		Auth: AuthConfig{
			SessionTTL: 24 * time.Hour,
			CookieName: "storefront_session",
			LoginPath:  "/auth/login",
		},
		CDN: CDNConfig{
			BaseURL: "https://api.cloudinary.com/v1_1",
		},
		S3: S3Config{
			Region: "us-east-1",
			Prefix: "screenshots/",
		},
		Cache: CacheConfig{
			TTL: 5 * time.Minute,
		},
		Realtime: RealtimeConfig{
			Driver:  "postgres",
			Channel: "storefront_changes",
		},
		Upload: UploadConfig{
			MaxBytes: 10 << 20,
		},
	}
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Host = getEnv("SERVER_HOST", c.Server.Host)
	c.Server.Port = getEnvAsInt("SERVER_PORT", c.Server.Port)
	c.Server.CORSOrigins = getEnv("CORS_ALLOWED_ORIGINS", c.Server.CORSOrigins)

	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnvAsInt("DB_PORT", c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.Database = getEnv("DB_NAME", c.Database.Database)
	c.Database.MaxConnections = getEnvAsInt("DB_MAX_CONNECTIONS", c.Database.MaxConnections)
	c.Database.MinConnections = getEnvAsInt("DB_MIN_CONNECTIONS", c.Database.MinConnections)
	c.Database.MaxConnLifetime = getEnvAsInt("DB_MAX_CONN_LIFETIME", c.Database.MaxConnLifetime)
	c.Database.Migrate = getEnvAsBool("DB_MIGRATE", c.Database.Migrate)

	c.Logger.Level = getEnv("LOG_LEVEL", c.Logger.Level)
	c.Logger.Format = getEnv("LOG_FORMAT", c.Logger.Format)

	c.Auth.SessionSecret = getEnv("AUTH_SESSION_SECRET", c.Auth.SessionSecret)
	c.Auth.SessionTTL = getEnvAsDuration("AUTH_SESSION_TTL", c.Auth.SessionTTL)
	c.Auth.CookieName = getEnv("AUTH_COOKIE_NAME", c.Auth.CookieName)
	c.Auth.CookieSecure = getEnvAsBool("AUTH_COOKIE_SECURE", c.Auth.CookieSecure)
	c.Auth.PrivilegedUserID = getEnv("AUTH_PRIVILEGED_USER_ID", c.Auth.PrivilegedUserID)

	c.CDN.CloudName = getEnv("CDN_CLOUD_NAME", c.CDN.CloudName)
	c.CDN.APIKey = getEnv("CDN_API_KEY", c.CDN.APIKey)
	c.CDN.APISecret = getEnv("CDN_API_SECRET", c.CDN.APISecret)
	c.CDN.UploadPreset = getEnv("CDN_UPLOAD_PRESET", c.CDN.UploadPreset)
	c.CDN.BaseURL = getEnv("CDN_BASE_URL", c.CDN.BaseURL)

	c.S3.Enabled = getEnvAsBool("S3_ENABLED", c.S3.Enabled)
	c.S3.Bucket = getEnv("S3_BUCKET", c.S3.Bucket)
	c.S3.Region = getEnv("S3_REGION", c.S3.Region)
	c.S3.Prefix = getEnv("S3_PREFIX", c.S3.Prefix)
	c.S3.Endpoint = getEnv("S3_ENDPOINT", c.S3.Endpoint)
	c.S3.PublicBaseURL = getEnv("S3_PUBLIC_BASE_URL", c.S3.PublicBaseURL)
	c.S3.AccessKey = getEnv("S3_ACCESS_KEY", c.S3.AccessKey)
	c.S3.SecretKey = getEnv("S3_SECRET_KEY", c.S3.SecretKey)

	c.Cache.RedisURL = getEnv("REDIS_URL", c.Cache.RedisURL)
	c.Cache.TTL = getEnvAsDuration("CACHE_TTL", c.Cache.TTL)

	c.Realtime.Driver = getEnv("REALTIME_DRIVER", c.Realtime.Driver)
	c.Realtime.AMQPURL = getEnv("AMQP_URL", c.Realtime.AMQPURL)
	c.Realtime.Channel = getEnv("REALTIME_CHANNEL", c.Realtime.Channel)

	c.Upload.MaxBytes = int64(getEnvAsInt("UPLOAD_MAX_BYTES", int(c.Upload.MaxBytes)))
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Auth.SessionSecret == "" {
		return fmt.Errorf("session secret is required")
	}

	if c.Auth.SessionTTL < time.Minute {
		return fmt.Errorf("session TTL must be at least one minute")
	}

	if c.Auth.PrivilegedUserID == "" {
		return fmt.Errorf("privileged user ID is required")
	}

	if _, err := uuid.Parse(c.Auth.PrivilegedUserID); err != nil {
		return fmt.Errorf("privileged user ID must be a UUID: %w", err)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	switch c.Realtime.Driver {
	case "postgres", "local":
	case "amqp":
		if c.Realtime.AMQPURL == "" {
			return fmt.Errorf("AMQP URL is required when realtime driver is amqp")
		}
	default:
		return fmt.Errorf("invalid realtime driver: %s (must be postgres, amqp, or local)", c.Realtime.Driver)
	}

	if c.Upload.MaxBytes < 1 {
		return fmt.Errorf("upload max bytes must be positive")
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Origins splits the configured CORS origins.
func (c *ServerConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// SigningEnabled reports whether CDN uploads can be signed.
func (c *CDNConfig) SigningEnabled() bool {
	return c.APISecret != "" && c.APIKey != "" && c.CloudName != ""
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
