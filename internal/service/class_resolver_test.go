package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-roster-api/internal/models"
	appErrors "github.com/noah-isme/school-roster-api/pkg/errors"
)

func TestClassResolverResolvesArm(t *testing.T) {
	f := newRosterFixture()

	target, err := f.resolver.Resolve(context.Background(), "s1", "j1g")
	require.NoError(t, err)
	assert.Equal(t, models.TargetClassArm, target.Kind)
	assert.Equal(t, "j1g", target.ID)
	assert.Equal(t, "JSS 1 Gold", target.DisplayName)
	assert.Equal(t, models.SchoolTypeSecondary, target.Type)
	require.NotNil(t, target.ClassLevelName)
	assert.Equal(t, "JSS 1", *target.ClassLevelName)
	require.NotNil(t, target.AcademicYear)
	assert.Equal(t, "2024/2025", *target.AcademicYear)
	require.NotNil(t, target.IsActive)
	assert.True(t, *target.IsActive)

	scope := target.Scope()
	require.NotNil(t, scope.ClassArmID)
	assert.Nil(t, scope.ClassID)
}

func TestClassResolverBySubdomainFallsBackToClass(t *testing.T) {
	f := newRosterFixture()

	target, err := f.resolver.Resolve(context.Background(), "hill", "c1")
	require.NoError(t, err)
	assert.Equal(t, models.TargetClass, target.Kind)
	assert.Equal(t, "Basic 2", target.DisplayName)
	require.NotNil(t, target.AcademicYear)
	assert.Equal(t, "2024/2025", *target.AcademicYear)
	assert.Nil(t, target.Scope().ClassArmID)
}

func TestClassResolverIgnoresArmOfAnotherSchool(t *testing.T) {
	f := newRosterFixture()

	// v1a is an arm of s2 and a legacy class of s1.
	target, err := f.resolver.Resolve(context.Background(), "s1", "v1a")
	require.NoError(t, err)
	assert.Equal(t, models.TargetClass, target.Kind)
	assert.Equal(t, "s1", target.SchoolID)

	_, err = f.resolver.Resolve(context.Background(), "s2", "p1a")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.Equal(t, "Class or ClassArm not found", appErrors.FromError(err).Message)
}

func TestClassResolverIsStable(t *testing.T) {
	f := newRosterFixture()
	first, err := f.resolver.Resolve(context.Background(), "s1", "p1a")
	require.NoError(t, err)
	second, err := f.resolver.Resolve(context.Background(), "s1", "p1a")
	require.NoError(t, err)
	assert.Equal(t, first.Kind, second.Kind)
	assert.Equal(t, first.ID, second.ID)
}

func TestClassResolverErrors(t *testing.T) {
	f := newRosterFixture()

	_, err := f.resolver.Resolve(context.Background(), "missing", "p1a")
	require.Error(t, err)
	assert.Equal(t, "School not found", appErrors.FromError(err).Message)

	_, err = f.resolver.Resolve(context.Background(), "s1", "nope")
	require.Error(t, err)
	assert.Equal(t, "Class or ClassArm not found", appErrors.FromError(err).Message)

	_, err = f.resolver.Resolve(context.Background(), "s1", "  ")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	f.arms.err = errors.New("db down")
	_, err = f.resolver.Resolve(context.Background(), "s1", "p1a")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))
}
