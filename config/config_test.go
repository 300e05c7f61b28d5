package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "SMTP_PORT", "CACHE_TTL", "DB_HOST", "RESOURCES_PUBLISHED_ONLY", "CRON_ENABLED", "CONTACT_TO_EMAIL", "DO_SPACES_BUCKET", "DO_SPACES_PRESIGN_TTL"} {
		t.Setenv(key, "")
	}

	env, err := Get()
	require.NoError(t, err)

	assert.Equal(t, 8080, env.PORT)
	assert.Equal(t, 587, env.SMTP_PORT)
	assert.Equal(t, 5*time.Minute, env.CACHE_TTL)
	assert.Equal(t, "localhost", env.DB_HOST)
	assert.Equal(t, "question-papers", env.SPACES_BUCKET)
	assert.Equal(t, DefaultContactEmail, env.CONTACT_TO_EMAIL)
	assert.True(t, env.RESOURCES_PUBLISHED_ONLY)
	assert.True(t, env.CRON_ENABLED)
	assert.Zero(t, env.SPACES_PRESIGN_TTL)
}

func TestGetOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("RESOURCES_PUBLISHED_ONLY", "false")
	t.Setenv("GO_ENV", "production")
	t.Setenv("DO_SPACES_PRESIGN_TTL", "15m")

	env, err := Get()
	require.NoError(t, err)

	assert.Equal(t, 9090, env.PORT)
	assert.Equal(t, 30*time.Second, env.CACHE_TTL)
	assert.False(t, env.RESOURCES_PUBLISHED_ONLY)
	assert.True(t, env.IsProduction())
	assert.Equal(t, 15*time.Minute, env.SPACES_PRESIGN_TTL)
}
