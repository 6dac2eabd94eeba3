package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/rohits-web03/modvault/internal/logger"
)

const (
	StorageLocal = "local"
	StorageR2    = "r2"
)

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Region          string
	Prefix          string
	Endpoint        string
}

type Config struct {
	DB_URL           string
	DataDir          string
	Port             string
	Environment      string
	StorageBackend   string
	BootstrapWorkers int
	MaxUploadBytes   int64
	CorsConfig       cors.Options
	R2               R2Config
}

// Load reads ENV_FILE (default .env) if present, then the process
// environment.
func Load() Config {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		logger.Log.Infow("No env file found, relying on environment", "file", envFile)
	}

	return Config{
		DB_URL:           getEnv("DB_URL", ""),
		DataDir:          getEnv("DATA_DIR", ""),
		Port:             getEnv("PORT", "8080"),
		Environment:      getEnv("ENV", "development"),
		StorageBackend:   strings.ToLower(getEnv("STORAGE_BACKEND", StorageLocal)),
		BootstrapWorkers: getEnvInt("BOOTSTRAP_WORKERS", 4),
		MaxUploadBytes:   int64(getEnvInt("MAX_UPLOAD_BYTES", 0)),
		CorsConfig:       CorsConfig(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		R2: R2Config{
			AccountID:       getEnv("R2_ACCOUNT_ID", ""),
			AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
			BucketName:      getEnv("R2_BUCKET_NAME", ""),
			Region:          getEnv("R2_REGION", "auto"),
			Prefix:          getEnv("R2_PREFIX", ""),
			Endpoint:        getEnv("R2_ENDPOINT", ""),
		},
	}
}

// Validate checks the settings the server cannot start without.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("DATA_DIR is required")
	}
	switch c.StorageBackend {
	case StorageLocal:
	case StorageR2:
		if c.R2.AccountID == "" || c.R2.BucketName == "" {
			return errors.New("R2_ACCOUNT_ID and R2_BUCKET_NAME are required for the r2 storage backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	if c.BootstrapWorkers < 1 {
		return fmt.Errorf("BOOTSTRAP_WORKERS must be positive, got %d", c.BootstrapWorkers)
	}
	return nil
}

// SQLitePath is where the catalog lives when no DB_URL is given.
func (c Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "db.db")
}

// Gets the env by key or fallbacks
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		logger.Log.Warnw("Invalid integer in environment, using default", "key", key, "value", value, "default", fallback)
		return fallback
	}
	return n
}

func CorsConfig(origins string) cors.Options {
	var allowed []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowed = append(allowed, o)
		}
	}
	return cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"ETag"},
		AllowCredentials: true,
	}
}
