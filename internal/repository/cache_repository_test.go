package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/task-tracker-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	assert.False(t, repo.Enabled())
	var out map[string]int
	assert.ErrorIs(t, repo.Get(ctx, "analytics:leaderboard", &out), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "analytics:leaderboard", map[string]int{"a": 1}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "analytics:*"))
	assert.NoError(t, repo.Close())
}
