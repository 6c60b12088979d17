package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultUploadsSubDir    = "uploads"
	DefaultThumbnailsSubDir = "thumbnails"
)

const (
	defaultPort             = "8080"
	defaultDBDriver         = "sqlite"
	defaultDatabaseURL      = "agency.db"
	defaultThumbnailMaxSize = 400
	defaultMaxUploadBytes   = 20 << 20
	defaultPageSize         = 10
	defaultMaxPageSize      = 100
	defaultSessionMaxAge    = 720 * time.Hour
	defaultTokenTTL         = 24 * time.Hour
	defaultShutdownTimeout  = 10 * time.Second
)

type Config struct {
	Port string

	// database
	DBDriver    string // "sqlite" or "postgres"
	DatabaseURL string // file path / DSN for sqlite, connection string for postgres

	// sessions and bearer tokens
	SessionSecret    []byte
	SessionSecretSet bool
	SessionMaxAge    time.Duration
	TokenTTL         time.Duration
	CookieSecure     bool

	CORSAllowedOrigins []string

	// media storage configuration
	MediaStoragePath string // root for uploaded originals and thumbnails
	UploadsSubDir    string
	ThumbnailsSubDir string
	UploadsPath      string // full-calculated path for uploads
	ThumbnailsPath   string // full-calculated path for thumbnails
	ThumbnailMaxSize int
	MaxUploadBytes   int64
	DefaultPageSize  int
	MaxPageSize      int
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		logrus.Warnf("Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func getEnvDurationOrDefault(envVar string, defaultVal time.Duration) time.Duration {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := time.ParseDuration(valStr)
	if err != nil || val <= 0 {
		logrus.Warnf("Invalid %s '%s'. Using default %s. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func getEnvBoolOrDefault(envVar string, defaultVal bool) bool {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.ParseBool(valStr)
	if err != nil {
		logrus.Warnf("Invalid %s '%s'. Using default %t.", envVar, valStr, defaultVal)
		return defaultVal
	}
	return val
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func LoadConfig() (Config, error) {
	driver := strings.ToLower(getEnvOrDefault("DB_DRIVER", defaultDBDriver))
	if driver != "sqlite" && driver != "postgres" {
		return Config{}, fmt.Errorf("unsupported DB_DRIVER '%s' (expected sqlite or postgres)", driver)
	}

	mediaStorage := getEnvOrDefault("MEDIA_STORAGE_PATH", filepath.Join(".", "media_storage"))
	absMediaStorage, err := filepath.Abs(mediaStorage)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for media storage '%s': %w", mediaStorage, err)
	}

	uploadsSubDir := getEnvOrDefault("UPLOADS_SUBDIR", DefaultUploadsSubDir)
	thumbSubDir := getEnvOrDefault("THUMBNAILS_SUBDIR", DefaultThumbnailsSubDir)

	secret, secretSet := []byte(os.Getenv("SESSION_SECRET")), true
	if len(secret) == 0 {
		secretSet = false
		secret, err = randomSecret()
		if err != nil {
			return Config{}, fmt.Errorf("failed to generate session secret: %w", err)
		}
	}

	defaultSize := getEnvIntOrDefault("DEFAULT_PAGE_SIZE", defaultPageSize)
	maxSize := getEnvIntOrDefault("MAX_PAGE_SIZE", defaultMaxPageSize)
	if defaultSize > maxSize {
		defaultSize = maxSize
	}

	cfg := Config{
		Port:               getEnvOrDefault("PORT", defaultPort),
		DBDriver:           driver,
		DatabaseURL:        getEnvOrDefault("DATABASE_URL", defaultDatabaseURL),
		SessionSecret:      secret,
		SessionSecretSet:   secretSet,
		SessionMaxAge:      getEnvDurationOrDefault("SESSION_MAX_AGE", defaultSessionMaxAge),
		TokenTTL:           getEnvDurationOrDefault("TOKEN_TTL", defaultTokenTTL),
		CookieSecure:       getEnvBoolOrDefault("COOKIE_SECURE", false),
		CORSAllowedOrigins: splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		MediaStoragePath:   absMediaStorage,
		UploadsSubDir:      uploadsSubDir,
		ThumbnailsSubDir:   thumbSubDir,
		UploadsPath:        filepath.Join(absMediaStorage, uploadsSubDir),
		ThumbnailsPath:     filepath.Join(absMediaStorage, thumbSubDir),
		ThumbnailMaxSize:   getEnvIntOrDefault("THUMBNAIL_MAX_SIZE", defaultThumbnailMaxSize),
		MaxUploadBytes:     int64(getEnvIntOrDefault("MAX_UPLOAD_BYTES", defaultMaxUploadBytes)),
		DefaultPageSize:    defaultSize,
		MaxPageSize:        maxSize,
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          strings.ToLower(getEnvOrDefault("LOG_FORMAT", "text")),
		ShutdownTimeout:    getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	return cfg, nil
}

func randomSecret() ([]byte, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return []byte(hex.EncodeToString(buf)), nil
}
