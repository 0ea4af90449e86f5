package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Database and collection names are fixed; only the connection string is configurable.
const (
	DatabaseName   = "travel"
	CollectionName = "restaurants"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Auth      AuthConfig
	Archive   ArchiveConfig
	LogLevel  string
}

type ServerConfig struct {
	Port           string
	Host           string
	Environment    string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

type MongoDBConfig struct {
	URI                    string
	Database               string
	Collection             string
	ServerSelectionTimeout time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port, or "" when Redis is not configured.
func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	return r.Host + ":" + r.Port
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

type AuthConfig struct {
	JWTSecret    string
	TokenTTL     time.Duration
	OIDCIssuer   string
	OIDCClientID string
}

// Enabled reports whether bearer tokens are required on the restaurant routes.
func (a AuthConfig) Enabled() bool {
	return a.JWTSecret != "" || (a.OIDCIssuer != "" && a.OIDCClientID != "")
}

// ArchiveConfig configures the optional MinIO/S3 archive for deleted restaurants.
type ArchiveConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Prefix    string
}

func (a ArchiveConfig) Enabled() bool { return a.Endpoint != "" }

// LoadConfig loads configuration from environment variables and .env file.
// A missing MongoDB connection string is not an error here: it surfaces as
// database.ErrConfiguration on first use of the collection.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	v.AutomaticEnv()
	// MongoDBAtlasURI is the legacy app setting name.
	_ = v.BindEnv("MONGODB_URI", "MONGODB_URI", "MongoDBAtlasURI")

	v.SetDefault("SERVER_PORT", "7071")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("REQUEST_TIMEOUT_SECONDS", 10)
	v.SetDefault("MAX_BODY_BYTES", 1<<20)
	v.SetDefault("MONGODB_SERVER_SELECTION_TIMEOUT", 5)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("RATE_LIMIT_USE_REDIS", false)
	v.SetDefault("RATE_LIMIT_RPS", 20.0)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	v.SetDefault("AUTH_TOKEN_TTL_MINUTES", 60)
	v.SetDefault("ARCHIVE_MINIO_BUCKET", "restaurants-archive")
	v.SetDefault("ARCHIVE_PREFIX", "deleted/")
	v.SetDefault("LOG_LEVEL", "info")

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Host:           v.GetString("SERVER_HOST"),
			Environment:    v.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			RequestTimeout: time.Duration(v.GetInt("REQUEST_TIMEOUT_SECONDS")) * time.Second,
			MaxBodyBytes:   v.GetInt64("MAX_BODY_BYTES"),
		},
		MongoDB: MongoDBConfig{
			URI:                    v.GetString("MONGODB_URI"),
			Database:               DatabaseName,
			Collection:             CollectionName,
			ServerSelectionTimeout: time.Duration(v.GetInt("MONGODB_SERVER_SELECTION_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		Auth: AuthConfig{
			JWTSecret:    v.GetString("AUTH_JWT_SECRET"),
			TokenTTL:     time.Duration(v.GetInt("AUTH_TOKEN_TTL_MINUTES")) * time.Minute,
			OIDCIssuer:   v.GetString("OIDC_ISSUER"),
			OIDCClientID: v.GetString("OIDC_CLIENT_ID"),
		},
		Archive: ArchiveConfig{
			Endpoint:  v.GetString("ARCHIVE_MINIO_ENDPOINT"),
			AccessKey: v.GetString("ARCHIVE_MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("ARCHIVE_MINIO_SECRET_KEY"),
			UseSSL:    v.GetBool("ARCHIVE_MINIO_USE_SSL"),
			Bucket:    v.GetString("ARCHIVE_MINIO_BUCKET"),
			Prefix:    v.GetString("ARCHIVE_PREFIX"),
		},
		LogLevel: v.GetString("LOG_LEVEL"),
	}

	if cfg.MongoDB.ServerSelectionTimeout <= 0 {
		return nil, fmt.Errorf("MONGODB_SERVER_SELECTION_TIMEOUT must be positive")
	}
	if cfg.Server.RequestTimeout <= 0 {
		return nil, fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be positive")
	}
	if cfg.RateLimit.Enabled && (cfg.RateLimit.RPS <= 0 || cfg.RateLimit.Burst < 0) {
		return nil, fmt.Errorf("invalid rate limit: rps=%v burst=%d", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}
	return cfg, nil
}
