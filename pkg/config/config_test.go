package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 10, cfg.Analytics.LeaderboardSize)
	assert.Equal(t, 5*time.Minute, cfg.Analytics.CacheTTL)
	assert.False(t, cfg.Analytics.CalendarMode)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("LEADERBOARD_SIZE", "25")
	t.Setenv("ENABLE_CALENDAR_CONSISTENCY", "true")
	t.Setenv("ANALYTICS_CACHE_TTL", "90s")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("JWT_EXPIRATION", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Analytics.LeaderboardSize)
	assert.True(t, cfg.Analytics.CalendarMode)
	assert.Equal(t, 90*time.Second, cfg.Analytics.CacheTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
}
