package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	API      APIConfig
	Search   SearchConfig
	Catalog  CatalogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is (e.g. postgres://localhost:5432/directory?sslmode=disable)
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// RedisConfig holds Redis connection settings (rate limiter backend).
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

// APIConfig holds the static API key and boundary rate limiting.
type APIConfig struct {
	Key              string
	RateLimitEnabled bool
	RateLimitPerMin  int
}

// SearchConfig bounds geographic proximity queries. The radius cap is
// enforced here, not hard-coded in the query layer.
type SearchConfig struct {
	MaxRadiusMeters float64
	NearbyLimit     int
}

// CatalogConfig holds activity-tree policies. UnknownParentPolicy is
// "root" (treat a missing parent as level-1 creation) or "reject".
type CatalogConfig struct {
	MaxActivityDepth    int
	UnknownParentPolicy string
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (e.g. DATABASE_URL env), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	readTimeout, _ := strconv.Atoi(getEnv("READ_TIMEOUT_SEC", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("WRITE_TIMEOUT_SEC", "30"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        readTimeout,
			WriteTimeout:       writeTimeout,
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "directory"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 10)),
			MinConns: int32(getEnvInt("DB_MIN_CONNS", 2)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
			PoolSize: getEnvInt("REDIS_POOL_SIZE", 10),
		},
		API: APIConfig{
			Key:              getEnv("API_KEY", "change-me-in-production"),
			RateLimitEnabled: getEnv("RATE_LIMIT_ENABLED", "false") == "true",
			RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MIN", 120),
		},
		Search: SearchConfig{
			MaxRadiusMeters: getEnvFloat("SEARCH_MAX_RADIUS_M", 50000),
			NearbyLimit:     getEnvInt("SEARCH_NEARBY_LIMIT", 100),
		},
		Catalog: CatalogConfig{
			MaxActivityDepth:    getEnvInt("ACTIVITY_MAX_DEPTH", 3),
			UnknownParentPolicy: getEnv("ACTIVITY_UNKNOWN_PARENT_POLICY", "root"),
		},
	}

	if cfg.Catalog.UnknownParentPolicy != "root" && cfg.Catalog.UnknownParentPolicy != "reject" {
		return nil, fmt.Errorf("invalid ACTIVITY_UNKNOWN_PARENT_POLICY %q (want root or reject)", cfg.Catalog.UnknownParentPolicy)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
