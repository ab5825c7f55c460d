package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/school-roster-api/pkg/errors"
)

func TestCacheRepositoryWithoutClientDegradesToMiss(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var dest []string
	assert.ErrorIs(t, repo.Get(ctx, "workload:school-1::", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "workload:school-1::", []string{"a"}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "workload:school-1:*"))
	assert.NoError(t, repo.Ping(ctx))
	assert.NoError(t, repo.Close())
}
