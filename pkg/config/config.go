package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Rate limiter backends.
const (
	RateLimitBackendMemory = "memory"
	RateLimitBackendRedis  = "redis"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	RateLimit RateLimitConfig
	ViewCache ViewCacheConfig
	Workflow  WorkflowConfig
	Posters   PostersConfig
	Charts    ChartsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// RatePolicy bounds how many calls a key may make inside a window.
type RatePolicy struct {
	MaxRequests int
	Window      time.Duration
}

// RateLimitConfig selects the limiter backend and the per-operation policies.
type RateLimitConfig struct {
	Backend              string
	CreateContentRequest RatePolicy
	CreateBug            RatePolicy
	CreateContent        RatePolicy
}

// ViewCacheConfig governs caching of dashboard and viewership payloads.
type ViewCacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// WorkflowConfig toggles status transition enforcement.
type WorkflowConfig struct {
	EnforceTransitions bool
}

// PostersConfig configures poster artwork storage and prefetching.
type PostersConfig struct {
	Dir            string
	Manifest       string
	FetchOnCreate  bool
	Workers        int
	Concurrency    int
	RequestTimeout time.Duration
}

// ChartsConfig tunes dashboard chart windows.
type ChartsConfig struct {
	TrendDays     int
	TopContentMax int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("ENABLE_REDIS"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	backend := strings.ToLower(strings.TrimSpace(v.GetString("RATE_LIMIT_BACKEND")))
	if backend != RateLimitBackendRedis {
		backend = RateLimitBackendMemory
	}
	cfg.RateLimit = RateLimitConfig{
		Backend: backend,
		CreateContentRequest: RatePolicy{
			MaxRequests: v.GetInt("RATE_LIMIT_CONTENT_REQUEST_MAX"),
			Window:      parseDuration(v.GetString("RATE_LIMIT_CONTENT_REQUEST_WINDOW"), time.Minute),
		},
		CreateBug: RatePolicy{
			MaxRequests: v.GetInt("RATE_LIMIT_BUG_MAX"),
			Window:      parseDuration(v.GetString("RATE_LIMIT_BUG_WINDOW"), time.Minute),
		},
		CreateContent: RatePolicy{
			MaxRequests: v.GetInt("RATE_LIMIT_CONTENT_MAX"),
			Window:      parseDuration(v.GetString("RATE_LIMIT_CONTENT_WINDOW"), time.Minute),
		},
	}

	cfg.ViewCache = ViewCacheConfig{
		Enabled: v.GetBool("ENABLE_VIEW_CACHE"),
		TTL:     parseDuration(v.GetString("VIEW_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Workflow = WorkflowConfig{
		EnforceTransitions: v.GetBool("ENFORCE_STATUS_TRANSITIONS"),
	}

	cfg.Posters = PostersConfig{
		Dir:            v.GetString("POSTERS_DIR"),
		Manifest:       v.GetString("POSTERS_MANIFEST"),
		FetchOnCreate:  v.GetBool("POSTERS_FETCH_ON_CREATE"),
		Workers:        v.GetInt("POSTERS_WORKERS"),
		Concurrency:    v.GetInt("POSTERS_CONCURRENCY"),
		RequestTimeout: parseDuration(v.GetString("POSTERS_REQUEST_TIMEOUT"), 15*time.Second),
	}

	cfg.Charts = ChartsConfig{
		TrendDays:     v.GetInt("TREND_DAYS"),
		TopContentMax: v.GetInt("TOP_CONTENT_MAX"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "media_catalog")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("ENABLE_REDIS", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "media-catalog-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("RATE_LIMIT_BACKEND", RateLimitBackendMemory)
	v.SetDefault("RATE_LIMIT_CONTENT_REQUEST_MAX", 5)
	v.SetDefault("RATE_LIMIT_CONTENT_REQUEST_WINDOW", "1m")
	v.SetDefault("RATE_LIMIT_BUG_MAX", 5)
	v.SetDefault("RATE_LIMIT_BUG_WINDOW", "1m")
	v.SetDefault("RATE_LIMIT_CONTENT_MAX", 10)
	v.SetDefault("RATE_LIMIT_CONTENT_WINDOW", "1m")

	v.SetDefault("ENABLE_VIEW_CACHE", false)
	v.SetDefault("VIEW_CACHE_TTL", "5m")

	v.SetDefault("ENFORCE_STATUS_TRANSITIONS", false)

	v.SetDefault("POSTERS_DIR", "./public/posters")
	v.SetDefault("POSTERS_MANIFEST", "./configs/posters.yaml")
	v.SetDefault("POSTERS_FETCH_ON_CREATE", false)
	v.SetDefault("POSTERS_WORKERS", 1)
	v.SetDefault("POSTERS_CONCURRENCY", 4)
	v.SetDefault("POSTERS_REQUEST_TIMEOUT", "15s")

	v.SetDefault("TREND_DAYS", 30)
	v.SetDefault("TOP_CONTENT_MAX", 10)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
