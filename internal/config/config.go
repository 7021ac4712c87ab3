package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultBind                 = ":8080"
	DefaultStorageRoot          = "/srv/lumen"
	DefaultMaxUploadBytes int64 = 100 * 1024 * 1024
	DefaultMaxPixels            = 50_000_000
	DefaultHistorySize          = 10
)

type AuthMode string

const (
	AuthNone   AuthMode = "none"
	AuthAPIKey AuthMode = "apikey"
	AuthOIDC   AuthMode = "oidc"
)

type Config struct {
	Bind               string
	DBDSN              string
	StorageRoot        string
	MaxUploadBytes     int64
	MaxPixels          int
	PublicMedia        bool
	AuthMode           AuthMode
	APIKeysFile        string
	CORSAllowedOrigins []string
	LogLevel           string
	AnalyzerSeed       int64
	HistorySize        int
	SwaggerUIPath      string
	OpenAPIPath        string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Bind:               getenv("LUMEN_BIND", DefaultBind),
		StorageRoot:        getenv("LUMEN_STORAGE_ROOT", DefaultStorageRoot),
		MaxUploadBytes:     getInt64("LUMEN_MAX_UPLOAD_BYTES", DefaultMaxUploadBytes),
		MaxPixels:          getInt("LUMEN_MAX_PIXELS", DefaultMaxPixels),
		PublicMedia:        getBool("LUMEN_PUBLIC_MEDIA", true),
		AuthMode:           AuthMode(getenv("LUMEN_AUTH_MODE", string(AuthAPIKey))),
		CORSAllowedOrigins: splitAndTrim(os.Getenv("LUMEN_CORS_ALLOWED_ORIGINS")),
		LogLevel:           os.Getenv("LUMEN_LOG_LEVEL"),
		AnalyzerSeed:       getInt64("LUMEN_ANALYZER_SEED", 1),
		HistorySize:        getInt("LUMEN_HISTORY_SIZE", DefaultHistorySize),
		SwaggerUIPath:      "/swagger",
		OpenAPIPath:        "/openapi.yaml",
	}

	cfg.DBDSN = os.Getenv("LUMEN_DB_DSN")
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("LUMEN_DB_DSN is required")
	}

	switch cfg.AuthMode {
	case AuthNone, AuthAPIKey, AuthOIDC:
	default:
		return nil, fmt.Errorf("invalid LUMEN_AUTH_MODE: %s", cfg.AuthMode)
	}

	if cfg.AuthMode == AuthAPIKey {
		cfg.APIKeysFile = getenv("LUMEN_API_KEYS_FILE", "api-keys.yaml")
		if cfg.APIKeysFile == "" {
			return nil, fmt.Errorf("LUMEN_API_KEYS_FILE is required when LUMEN_AUTH_MODE=apikey")
		}
	}

	if cfg.HistorySize < 0 {
		return nil, fmt.Errorf("LUMEN_HISTORY_SIZE must not be negative")
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return i
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(strings.TrimSpace(v))
		return v == "1" || v == "true" || v == "yes" || v == "y"
	}
	return def
}

func splitAndTrim(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
