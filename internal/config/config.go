package config

import (
	"os"
	"strconv"
	"time"
)

// StoreConfig describes where the authoritative case spreadsheet lives and how it is read.
type StoreConfig struct {
	// Backend selects the blob backend: "local" (filesystem, including mounted network shares) or "s3".
	Backend string
	// Root is the directory the local backend resolves Path and AuditLogPath against.
	Root string
	// Path is the key of the spreadsheet within the backend (e.g. "expedientes.xlsx").
	Path string
	// DateParseMode is "day-first" or "ambiguous".
	DateParseMode   string
	AuditLogEnabled bool
	AuditLogPath    string
}

// MinIOConfig holds object storage settings for MinIO / S3.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// RedisConfig enables the shared session cache and advisory lock when URL is set.
type RedisConfig struct {
	URL       string
	KeyPrefix string
}

// CacheConfig controls the session cache.
type CacheConfig struct {
	TTL time.Duration
}

// LockConfig controls the advisory write lock around updates.
type LockConfig struct {
	TTL  time.Duration
	Wait time.Duration
}

// AuthConfig holds the access gate and session token settings.
type AuthConfig struct {
	PassphraseSuffix string
	SessionSecret    string
	SessionTTL       time.Duration
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Port     string
	Timezone string
	Store    StoreConfig
	MinIO    MinIOConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Lock     LockConfig
	Auth     AuthConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		Port:     getEnv("PORT", "8080"),
		Timezone: getEnv("APP_TIMEZONE", "America/Lima"),
		Store: StoreConfig{
			Backend:         getEnv("STORE_BACKEND", "local"),
			Root:            getEnv("STORE_ROOT", "."),
			Path:            getEnv("STORE_PATH", "expedientes.xlsx"),
			DateParseMode:   getEnv("DATE_PARSE_MODE", "day-first"),
			AuditLogEnabled: getEnvBool("AUDIT_LOG_ENABLED", true),
			AuditLogPath:    getEnv("AUDIT_LOG_PATH", "log_actualizaciones.csv"),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Redis: RedisConfig{
			URL:       getEnv("REDIS_URL", ""),
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "expedientes:"),
		},
		Cache: CacheConfig{
			TTL: time.Duration(getEnvInt("CACHE_TTL_SECONDS", 60)) * time.Second,
		},
		Lock: LockConfig{
			TTL:  time.Duration(getEnvInt("LOCK_TTL_SECONDS", 30)) * time.Second,
			Wait: time.Duration(getEnvInt("LOCK_WAIT_SECONDS", 10)) * time.Second,
		},
		Auth: AuthConfig{
			PassphraseSuffix: getEnv("ACCESS_SUFFIX", "2025"),
			SessionSecret:    getEnv("SESSION_SECRET", ""),
			SessionTTL:       time.Duration(getEnvInt("SESSION_TTL_SECONDS", 8*3600)) * time.Second,
		},
	}
}

// Location resolves the configured timezone, falling back to UTC when it is unknown.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
