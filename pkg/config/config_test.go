package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("SERVER_PORT", "8002")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "testuser")
	t.Setenv("DB_PASSWORD", "testpass")
	t.Setenv("DB_NAME", "testdb")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("VIDEO_STORE", "mongo")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "42")
	t.Setenv("S3_BUCKET_NAME", "bucket")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8002", cfg.ServerPort)
	assert.Equal(t, "db", cfg.DBHost)
	assert.Equal(t, "testuser", cfg.DBUser)
	assert.Equal(t, "testpass", cfg.DBPassword)
	assert.Equal(t, "testdb", cfg.DBName)
	assert.Equal(t, "6380", cfg.RedisPort)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, StoreMongo, cfg.VideoStore)
	assert.Equal(t, 42, cfg.RateLimitPerMinute)
	assert.Equal(t, "bucket", cfg.S3BucketName)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("VIDEO_STORE", "")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")
	t.Setenv("RABBITMQ_HOST", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, StorePostgres, cfg.VideoStore)
	assert.Equal(t, 100, cfg.RateLimitPerMinute)
	assert.Equal(t, "ffprobe", cfg.FFProbePath)
	assert.False(t, cfg.QueueEnabled())
}
