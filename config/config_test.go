package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "works", cfg.MongoDB)
	assert.Equal(t, "works", cfg.MinIO.Bucket)
	assert.Equal(t, 60*time.Second, cfg.UploadTimeout)
	assert.Equal(t, 3, cfg.MaxSaveAttempts)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MONGO_DB", "works_test")
	t.Setenv("GIN_MODE", "release")
	t.Setenv("MINIO_ENDPOINT", "minio:9000")
	t.Setenv("MINIO_BUCKET", "proposals")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("UPLOAD_TIMEOUT", "15s")
	t.Setenv("MAX_SAVE_ATTEMPTS", "5")

	cfg := LoadConfig()
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "works_test", cfg.MongoDB)
	assert.False(t, cfg.Debug)
	assert.Equal(t, "minio:9000", cfg.MinIO.Endpoint)
	assert.Equal(t, "proposals", cfg.MinIO.Bucket)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, 15*time.Second, cfg.UploadTimeout)
	assert.Equal(t, 5, cfg.MaxSaveAttempts)
}
