package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Create a new instance of the logger
// Configure it to log at the desired level
// and format it as JSON for structured logging
var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	environment := GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(logrus.DebugLevel)
	case "production":
		log.SetLevel(logrus.ErrorLevel)
	default:
		// Default to info level for other environments
		log.SetLevel(logrus.InfoLevel)
	}
}

const defaultJWTSecret = "change-me-in-production-32-characters"

// Config used for the application configuration, loading the input from environment variables
// and an optional YAML file named by CONFIG_FILE
type Config struct {
	// Server Configuration
	Environment string   `mapstructure:"app_env"`
	Port        int      `mapstructure:"app_port"`
	Host        string   `mapstructure:"app_host"`
	CORSOrigins []string `mapstructure:"cors_origins"`

	// Database configuration
	DBDriver    string `mapstructure:"db_driver"`
	DatabaseURL string `mapstructure:"database_url"`
	DBHost      string `mapstructure:"db_host"`
	DBPort      string `mapstructure:"db_port"`
	DBName      string `mapstructure:"db_name"`
	DBUser      string `mapstructure:"db_user"`
	DBPassword  string `mapstructure:"db_password"`
	DBSSLMode   string `mapstructure:"db_sslmode"`
	DBPath      string `mapstructure:"db_path"`

	// Logging configuration
	LogLevel string `mapstructure:"log_level"`

	// Security Configuration
	JWTSecret         string        `mapstructure:"jwt_secret"`
	AccessTokenTTL    time.Duration `mapstructure:"access_token_ttl"`
	OAuthClientID     string        `mapstructure:"oauth_client_id"`
	OAuthClientSecret string        `mapstructure:"oauth_client_secret"`
	RateLimitRPS      float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst    int           `mapstructure:"rate_limit_burst"`

	// Seeded admin account
	AdminName     string `mapstructure:"admin_name"`
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`

	// Uploads and background work
	UploadDir       string `mapstructure:"upload_dir"`
	MaxUploadBytes  int64  `mapstructure:"max_upload_bytes"`
	RatingQueueSize int    `mapstructure:"rating_queue_size"`
}

// String returns a string representation of Config with sensitive data masked
func (c *Config) String() string {
	return fmt.Sprintf("Config{Environment: %s, Port: %d, Host: %s, DBDriver: %s, DatabaseURL: %s, DBHost: %s, DBName: %s, DBUser: %s, DBPassword: [REDACTED], DBPath: %s, LogLevel: %s, JWTSecret: [REDACTED], OAuthClientID: %s, OAuthClientSecret: [REDACTED], AdminEmail: %s, AdminPassword: [REDACTED], UploadDir: %s}",
		c.Environment, c.Port, c.Host, c.DBDriver, maskDatabaseURL(c.DatabaseURL), c.DBHost, c.DBName, c.DBUser, c.DBPath, c.LogLevel, c.OAuthClientID, c.AdminEmail, c.UploadDir)
}

// IsProduction reports whether the application runs with APP_ENV=production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// maskDatabaseURL masks password in database URL
func maskDatabaseURL(dbURL string) string {
	if dbURL == "" {
		return ""
	}

	parsed, err := url.Parse(dbURL)
	if err != nil {
		return "[REDACTED_INVALID_URL]"
	}

	if parsed.User != nil {
		// Replace password with [REDACTED]
		parsed.User = url.UserPassword(parsed.User.Username(), "[REDACTED]")
	}

	return parsed.String()
}

// setDefaults registers every known key so AutomaticEnv can resolve it
func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "development")
	v.SetDefault("app_port", 8080)
	v.SetDefault("app_host", "localhost")
	v.SetDefault("cors_origins", "*")
	v.SetDefault("db_driver", "sqlite")
	v.SetDefault("database_url", "")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_name", "foodhub")
	v.SetDefault("db_user", "foodhub")
	v.SetDefault("db_password", "")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("db_path", "foodhub.sqlite")
	v.SetDefault("log_level", "info")
	v.SetDefault("jwt_secret", defaultJWTSecret)
	v.SetDefault("access_token_ttl", "24h")
	v.SetDefault("oauth_client_id", "foodhub-web")
	v.SetDefault("oauth_client_secret", "foodhub-web-secret")
	v.SetDefault("rate_limit_rps", 5)
	v.SetDefault("rate_limit_burst", 10)
	v.SetDefault("admin_name", "Admin")
	v.SetDefault("admin_email", "admin@foodhub.com")
	v.SetDefault("admin_password", "")
	v.SetDefault("upload_dir", "uploads")
	v.SetDefault("max_upload_bytes", 5*1024*1024)
	v.SetDefault("rating_queue_size", 256)
}

// LoadConfig read the proper configuration from environment variables and returns a Config struct
// It also validates formats like DatabaseURL and JWTSecret
// Returns an error if any required environment variable is missing or invalid
func LoadConfig() (*Config, error) {
	log.Info("Loading configuration from environment variables")
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.WithField("config_file", path).Info("Configuration file loaded")
	}

	config := &Config{
		Environment:       v.GetString("app_env"),
		Port:              v.GetInt("app_port"),
		Host:              v.GetString("app_host"),
		CORSOrigins:       splitList(v.GetString("cors_origins")),
		DBDriver:          strings.ToLower(v.GetString("db_driver")),
		DatabaseURL:       v.GetString("database_url"),
		DBHost:            v.GetString("db_host"),
		DBPort:            v.GetString("db_port"),
		DBName:            v.GetString("db_name"),
		DBUser:            v.GetString("db_user"),
		DBPassword:        v.GetString("db_password"),
		DBSSLMode:         v.GetString("db_sslmode"),
		DBPath:            v.GetString("db_path"),
		LogLevel:          v.GetString("log_level"),
		JWTSecret:         v.GetString("jwt_secret"),
		AccessTokenTTL:    v.GetDuration("access_token_ttl"),
		OAuthClientID:     v.GetString("oauth_client_id"),
		OAuthClientSecret: v.GetString("oauth_client_secret"),
		RateLimitRPS:      v.GetFloat64("rate_limit_rps"),
		RateLimitBurst:    v.GetInt("rate_limit_burst"),
		AdminName:         v.GetString("admin_name"),
		AdminEmail:        strings.ToLower(v.GetString("admin_email")),
		AdminPassword:     v.GetString("admin_password"),
		UploadDir:         v.GetString("upload_dir"),
		MaxUploadBytes:    v.GetInt64("max_upload_bytes"),
		RatingQueueSize:   v.GetInt("rating_queue_size"),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	log.Infof("Configuration loaded: %s", config.String())
	return config, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid APP_PORT: %d", c.Port)
	}
	if c.DatabaseURL != "" {
		// validate URL with net/url
		if _, err := url.ParseRequestURI(c.DatabaseURL); err != nil {
			return fmt.Errorf("invalid DATABASE_URL format: %w", err)
		}
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters")
	}
	if c.IsProduction() && c.JWTSecret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.AccessTokenTTL <= 0 {
		return errors.New("ACCESS_TOKEN_TTL must be positive")
	}
	if c.OAuthClientID == "" || c.OAuthClientSecret == "" {
		return errors.New("OAUTH_CLIENT_ID and OAUTH_CLIENT_SECRET are required")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	if c.RatingQueueSize <= 0 {
		return errors.New("RATING_QUEUE_SIZE must be positive")
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Helper to get environment with default values
func GetEnvWithDefault(key, defaultValue string) string {
	log.Tracef("Getting environment variable: %s", key)
	value := os.Getenv(key)
	if value == "" {
		log.Debugf("Environment variable %s not set, using default value: %s", key, defaultValue)
		return defaultValue
	}
	return value
}

// GetEnvAsType retrieves an environment variable and converts it to the specified type
// using generic type handling.
func GetEnvAsType[T any](key string, defaultValue T) T {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result T
	switch any(result).(type) {
	case int:
		intValue, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return any(intValue).(T)
	case string:
		return any(value).(T)
	case bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return any(boolValue).(T)
	case time.Duration:
		durationValue, err := time.ParseDuration(value)
		if err != nil {
			return defaultValue
		}
		return any(durationValue).(T)
	default:
		return defaultValue // Fallback for unsupported types
	}
}
