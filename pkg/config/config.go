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

// Store drivers understood by the bootstrap.
const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string
	MountRoot bool

	Store     StoreConfig
	Mongo     MongoConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Listing   ListingConfig
	CORS      CORSConfig
	Log       LogConfig
}

// StoreConfig selects the document store backend.
type StoreConfig struct {
	Driver  string
	SeedDir string
}

type MongoConfig struct {
	URI      string
	Username string
	Password string
	Database string
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
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig governs caching of the small unpaginated collections.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// AuthConfig holds the single shared dashboard credential.
type AuthConfig struct {
	Username     string
	Password     string
	PasswordHash string
}

// RateLimitConfig tunes the API token bucket. RPS <= 0 disables limiting.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// ListingConfig tunes the lecture listing engine.
type ListingConfig struct {
	UTCOffset       time.Duration
	DefaultPageSize int
	MaxPageSize     int
	MaxCandidates   int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
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

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.MountRoot = v.GetBool("MOUNT_ROOT")

	cfg.Store = StoreConfig{
		Driver:  strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
		SeedDir: v.GetString("STORE_SEED_DIR"),
	}

	cfg.Mongo = MongoConfig{
		URI:      v.GetString("MONGO_URI"),
		Username: v.GetString("MONGO_USERNAME"),
		Password: v.GetString("MONGO_PASSWORD"),
		Database: v.GetString("MONGO_DATABASE"),
	}

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
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_CACHE"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), 5*time.Minute),
	}

	cfg.Auth = AuthConfig{
		Username:     v.GetString("SITE_USERNAME"),
		Password:     v.GetString("SITE_PASSWORD"),
		PasswordHash: v.GetString("SITE_PASSWORD_HASH"),
	}

	cfg.RateLimit = RateLimitConfig{
		RPS:   v.GetFloat64("RATE_LIMIT_RPS"),
		Burst: v.GetInt("RATE_LIMIT_BURST"),
	}

	cfg.Listing = ListingConfig{
		UTCOffset:       parseDuration(v.GetString("LISTING_UTC_OFFSET"), 5*time.Hour+30*time.Minute),
		DefaultPageSize: positiveOr(v.GetInt("LISTING_DEFAULT_PAGE_SIZE"), 30),
		MaxPageSize:     positiveOr(v.GetInt("LISTING_MAX_PAGE_SIZE"), 200),
		MaxCandidates:   v.GetInt("LISTING_MAX_CANDIDATES"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case StoreMongo, StorePostgres, StoreMemory:
	default:
		return errors.New("STORE_DRIVER must be one of mongo, postgres, memory")
	}
	if c.Env == EnvProduction && c.Auth.Password == "" && c.Auth.PasswordHash == "" {
		return errors.New("SITE_PASSWORD or SITE_PASSWORD_HASH is required in production")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 4000)
	v.SetDefault("API_PREFIX", "/api")
	v.SetDefault("MOUNT_ROOT", true)

	v.SetDefault("STORE_DRIVER", StoreMongo)
	v.SetDefault("STORE_SEED_DIR", "")

	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_USERNAME", "")
	v.SetDefault("MONGO_PASSWORD", "")
	v.SetDefault("MONGO_DATABASE", "abs_dashboard")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "abs_dashboard")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CACHE_TTL", "5m")

	v.SetDefault("SITE_USERNAME", "admin")
	v.SetDefault("SITE_PASSWORD", "")
	v.SetDefault("SITE_PASSWORD_HASH", "")

	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)

	v.SetDefault("LISTING_UTC_OFFSET", "5h30m")
	v.SetDefault("LISTING_DEFAULT_PAGE_SIZE", 30)
	v.SetDefault("LISTING_MAX_PAGE_SIZE", 200)
	v.SetDefault("LISTING_MAX_CANDIDATES", 10000)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
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

func positiveOr(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
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
