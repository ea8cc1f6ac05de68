package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultEvidenceSubDir   = "evidencias"
	DefaultThumbnailsSubDir = "thumbnails"
)

const (
	defaultThumbnailMaxSize   = 480
	defaultMaxUploadMB        = 10
	defaultJWTExpirationHours = 24
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Port   string
	AppEnv string // "production" switches logging to the production preset
	// zap level name: debug, info, warn, error
	LogLevel string

	// database
	DBDriver     string
	DatabasePath string // sqlite file
	DBHost       string
	DBPort       int
	DBName       string
	DBUser       string
	DBPassword   string
	DBSSLMode    string

	// media storage configuration
	MediaStoragePath string // primary root for stored assets
	EvidenceSubDir   string
	ThumbnailsSubDir string
	EvidencePath     string // full-calculated path for acta evidence
	ThumbnailsPath   string // full-calculated path for evidence thumbnails
	ThumbnailMaxSize int
	MaxUploadBytes   int64

	// auth
	JWTSecret     string
	JWTExpiration time.Duration

	CORSAllowedOrigins []string

	// bootstrap administrator, only used while no account exists
	AdminUsername string
	AdminPassword string
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
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func LoadConfig() (Config, error) {
	driver := strings.ToLower(getEnvOrDefault("DB_DRIVER", DriverSQLite))
	if driver != DriverSQLite && driver != DriverPostgres {
		return Config{}, fmt.Errorf("unsupported DB_DRIVER '%s' (expected %s or %s)", driver, DriverSQLite, DriverPostgres)
	}

	mediaStorage := getEnvOrDefault("MEDIA_STORAGE_PATH", filepath.Join(".", "media_storage"))
	absMediaStorage, err := filepath.Abs(mediaStorage)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for media storage '%s': %w", mediaStorage, err)
	}

	evidenceSubDir := getEnvOrDefault("EVIDENCE_SUBDIR", DefaultEvidenceSubDir)
	thumbSubDir := getEnvOrDefault("THUMBNAILS_SUBDIR", DefaultThumbnailsSubDir)

	cfg := Config{
		Port:     getEnvOrDefault("PORT", "8080"),
		AppEnv:   getEnvOrDefault("APP_ENV", "development"),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),

		DBDriver:     driver,
		DatabasePath: getEnvOrDefault("DATABASE_PATH", "electoral.db"),
		DBHost:       getEnvOrDefault("DB_HOST", "localhost"),
		DBPort:       getEnvIntOrDefault("DB_PORT", 5432),
		DBName:       getEnvOrDefault("DB_NAME", "gubernamentales"),
		DBUser:       getEnvOrDefault("DB_USER", "postgres"),
		DBPassword:   os.Getenv("DB_PASSWORD"),
		DBSSLMode:    getEnvOrDefault("DB_SSLMODE", "disable"),

		MediaStoragePath: absMediaStorage,
		EvidenceSubDir:   evidenceSubDir,
		ThumbnailsSubDir: thumbSubDir,
		EvidencePath:     filepath.Join(absMediaStorage, evidenceSubDir),
		ThumbnailsPath:   filepath.Join(absMediaStorage, thumbSubDir),
		ThumbnailMaxSize: getEnvIntOrDefault("THUMBNAIL_MAX_SIZE", defaultThumbnailMaxSize),
		MaxUploadBytes:   int64(getEnvIntOrDefault("MAX_UPLOAD_MB", defaultMaxUploadMB)) << 20,

		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTExpiration: time.Duration(getEnvIntOrDefault("JWT_EXPIRATION_HOURS", defaultJWTExpirationHours)) * time.Hour,

		CORSAllowedOrigins: splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),

		AdminUsername: strings.TrimSpace(os.Getenv("ADMIN_USERNAME")),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	if cfg.IsProduction() && cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required when APP_ENV=production")
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// DSN returns the data source name for the configured driver.
func (c Config) DSN() string {
	if c.DBDriver == DriverPostgres {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
	}
	return c.DatabasePath
}
