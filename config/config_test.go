package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"DB_DRIVER", "PORT", "MEDIA_STORAGE_PATH", "MAX_UPLOAD_MB", "CORS_ALLOWED_ORIGINS", "APP_ENV", "JWT_SECRET", "DATABASE_PATH", "JWT_EXPIRATION_HOURS"} {
		t.Setenv(k, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "electoral.db", cfg.DSN())
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiration)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSAllowedOrigins)
	assert.True(t, filepath.IsAbs(cfg.MediaStoragePath))
	assert.Equal(t, filepath.Join(cfg.MediaStoragePath, DefaultEvidenceSubDir), cfg.EvidencePath)
}

func TestLoadConfigPostgres(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("APP_ENV", "")
	t.Setenv("DB_SSLMODE", "")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_NAME", "gubernamentales")
	t.Setenv("DB_USER", "admin")
	t.Setenv("DB_PASSWORD", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "host=db port=6543 user=admin password=secret dbname=gubernamentales sslmode=disable", cfg.DSN())
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigRequiresSecretInProduction(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestInvalidIntegersFallBack(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("MAX_UPLOAD_MB", "-3")
	t.Setenv("THUMBNAIL_MAX_SIZE", "abc")
	t.Setenv("CORS_ALLOWED_ORIGINS", " http://a.test , ,http://b.test")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, int64(defaultMaxUploadMB)<<20, cfg.MaxUploadBytes)
	assert.Equal(t, defaultThumbnailMaxSize, cfg.ThumbnailMaxSize)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
}
