package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/school-roster-api/pkg/errors"
)

func subjectOpt(s string) *string { return &s }

func TestAssignmentValidatorPrimary(t *testing.T) {
	f := newRosterFixture()
	rows := newMemClassTeachers(f)
	v := NewAssignmentValidator(rows)
	ctx := context.Background()

	// empty primary class accepts any teacher
	require.NoError(t, v.Validate(ctx, nil, f.target("p1a"), "t1", AssignmentOptions{}))
	rows.seed("t1", "p1a", "", false)

	// a second teacher is rejected unless assigned as form teacher
	err := v.Validate(ctx, nil, f.target("p1a"), "t2", AssignmentOptions{})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrBadRequest))
	require.NoError(t, v.Validate(ctx, nil, f.target("p1a"), "t2", AssignmentOptions{IsPrimary: true}))

	// t1 cannot take another primary class
	err = v.Validate(ctx, nil, f.target("p1b"), "t1", AssignmentOptions{})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Equal(t, "Teacher is already assigned to primary class Primary 1 A", appErrors.FromError(err).Message)

	// free-text subject, but exact duplicates still conflict
	rows.seed("t2", "c1", "Music", false)
	err = v.Validate(ctx, nil, f.target("c1"), "t2", AssignmentOptions{Subject: subjectOpt("Music"), IsPrimary: true})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestAssignmentValidatorSecondary(t *testing.T) {
	f := newRosterFixture()
	rows := newMemClassTeachers(f)
	v := NewAssignmentValidator(rows)
	ctx := context.Background()
	target := f.target("j1g")

	err := v.Validate(ctx, nil, target, "t1", AssignmentOptions{})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrBadRequest))
	assert.Equal(t, "Subject is required for subject teacher assignments", appErrors.FromError(err).Message)

	err = v.Validate(ctx, nil, target, "t1", AssignmentOptions{Subject: subjectOpt("   ")})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrBadRequest))

	require.NoError(t, v.Validate(ctx, nil, target, "t1", AssignmentOptions{Subject: subjectOpt("Mathematics")}))
	rows.seed("t1", "j1g", "Mathematics", false)

	// same teacher, same subject
	err = v.Validate(ctx, nil, target, "t1", AssignmentOptions{Subject: subjectOpt(" Mathematics ")})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))

	// another teacher, same subject
	err = v.Validate(ctx, nil, target, "t2", AssignmentOptions{Subject: subjectOpt("Mathematics")})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))

	// another subject is fine
	require.NoError(t, v.Validate(ctx, nil, target, "t2", AssignmentOptions{Subject: subjectOpt("English")}))

	// form teacher slot
	require.NoError(t, v.Validate(ctx, nil, target, "t2", AssignmentOptions{IsPrimary: true}))
	rows.seed("t2", "j1g", "", true)
	err = v.Validate(ctx, nil, target, "t1", AssignmentOptions{IsPrimary: true})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Equal(t, "JSS 1 Gold already has a form teacher", appErrors.FromError(err).Message)

	// secondary classes allow several classes per teacher
	require.NoError(t, v.Validate(ctx, nil, f.target("v1a"), "t1", AssignmentOptions{Subject: subjectOpt("Mathematics")}))
}

func TestAssignmentValidatorTertiaryIsUnconstrained(t *testing.T) {
	f := newRosterFixture()
	rows := newMemClassTeachers(f)
	v := NewAssignmentValidator(rows)
	target := f.target("y1x")

	rows.seed("t1", "y1x", "", true)
	require.NoError(t, v.Validate(context.Background(), nil, target, "t2", AssignmentOptions{}))
	require.NoError(t, v.Validate(context.Background(), nil, target, "t2", AssignmentOptions{IsPrimary: true}))

	err := v.Validate(context.Background(), nil, target, "t1", AssignmentOptions{})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}
