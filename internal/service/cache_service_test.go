package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/school-roster-api/pkg/errors"
)

type cacheRepoStub struct {
	values     map[string]interface{}
	getErr     error
	setErr     error
	deleted    []string
	setTTLs    map[string]time.Duration
	deleteErr  error
	getInvokes int
}

func newCacheRepoStub() *cacheRepoStub {
	return &cacheRepoStub{values: map[string]interface{}{}, setTTLs: map[string]time.Duration{}}
}

func (s *cacheRepoStub) Get(_ context.Context, key string, dest interface{}) error {
	s.getInvokes++
	if s.getErr != nil {
		return s.getErr
	}
	value, ok := s.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	if target, ok := dest.(*WorkloadRanking); ok {
		*target = value.(WorkloadRanking)
	}
	return nil
}

func (s *cacheRepoStub) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.values[key] = value
	s.setTTLs[key] = ttl
	return nil
}

func (s *cacheRepoStub) DeleteByPattern(_ context.Context, pattern string) error {
	s.deleted = append(s.deleted, pattern)
	return s.deleteErr
}

func TestCacheServiceDisabledIsNoop(t *testing.T) {
	repo := newCacheRepoStub()
	svc := NewCacheService(repo, nil, 0, nil, false)

	var dest WorkloadRanking
	assert.False(t, svc.Get(context.Background(), "k", &dest))
	svc.Set(context.Background(), "k", WorkloadRanking{}, 0)
	require.NoError(t, svc.Invalidate(context.Background(), "k*"))
	assert.Zero(t, repo.getInvokes)
	assert.Empty(t, repo.values)
	assert.Empty(t, repo.deleted)
}

func TestCacheServiceRoundTripUsesDefaultTTL(t *testing.T) {
	repo := newCacheRepoStub()
	svc := NewCacheService(repo, NewMetricsService(), time.Minute, nil, true)

	svc.Set(context.Background(), "k", WorkloadRanking{SchoolID: "s1"}, 0)
	assert.Equal(t, time.Minute, repo.setTTLs["k"])

	var dest WorkloadRanking
	assert.True(t, svc.Get(context.Background(), "k", &dest))
	assert.Equal(t, "s1", dest.SchoolID)
}

func TestCacheServiceBackendFailureIsMiss(t *testing.T) {
	repo := newCacheRepoStub()
	repo.getErr = errors.New("redis down")
	svc := NewCacheService(repo, nil, 0, nil, true)

	var dest WorkloadRanking
	assert.False(t, svc.Get(context.Background(), "k", &dest))
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "workload:s1:-:math", cacheKey("workload", "s1", "", "Math"))
}
