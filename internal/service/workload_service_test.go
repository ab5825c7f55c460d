package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-roster-api/internal/dto"
	"github.com/noah-isme/school-roster-api/internal/models"
	appErrors "github.com/noah-isme/school-roster-api/pkg/errors"
)

type workloadReaderStub struct {
	rows   []models.TeacherWorkload
	err    error
	calls  int
	termID string
}

func (s *workloadReaderStub) ListWorkloads(_ context.Context, _ string, termID string) ([]models.TeacherWorkload, error) {
	s.calls++
	s.termID = termID
	return s.rows, s.err
}

func TestClassifyWorkloadBoundaries(t *testing.T) {
	cases := map[int]models.WorkloadBand{
		0:  models.WorkloadLow,
		9:  models.WorkloadLow,
		10: models.WorkloadNormal,
		25: models.WorkloadNormal,
		26: models.WorkloadHigh,
		30: models.WorkloadHigh,
		31: models.WorkloadOverloaded,
		45: models.WorkloadOverloaded,
	}
	for count, band := range cases {
		assert.Equal(t, band, ClassifyWorkload(count), "count %d", count)
	}
}

func TestRankTeachers(t *testing.T) {
	rows := []models.TeacherWorkload{
		{TeacherID: "t3", FirstName: "Zed", PeriodCount: 12},
		{TeacherID: "t1", FirstName: "Amy", PeriodCount: 33},
		{TeacherID: "t4", FirstName: "Bea", PeriodCount: 12},
		{TeacherID: "t2", FirstName: "Cal", PeriodCount: 4},
	}

	ranked := RankTeachers(rows)
	require.Len(t, ranked, 4)
	assert.Equal(t, []string{"t2", "t4", "t3", "t1"}, []string{ranked[0].TeacherID, ranked[1].TeacherID, ranked[2].TeacherID, ranked[3].TeacherID})
	assert.True(t, ranked[0].Recommended)
	assert.False(t, ranked[1].Recommended)
	assert.Equal(t, models.WorkloadLow, ranked[0].Band)
	assert.Equal(t, models.WorkloadNormal, ranked[1].Band)
	assert.Equal(t, models.WorkloadOverloaded, ranked[3].Band)
	assert.Contains(t, ranked[3].Warning, "33 periods")
	assert.Empty(t, ranked[0].Warning)

	// input untouched
	assert.Equal(t, "t3", rows[0].TeacherID)
	assert.Empty(t, rows[0].Band)

	assert.Empty(t, RankTeachers(nil))
}

func TestWorkloadServiceRankFiltersBySubjectAndCaches(t *testing.T) {
	f := newRosterFixture()
	reader := &workloadReaderStub{rows: []models.TeacherWorkload{
		{TeacherID: "t1", FirstName: "Ada", Subjects: []string{"Mathematics", "Physics"}, PeriodCount: 20},
		{TeacherID: "t2", FirstName: "Bola", Subjects: []string{"English"}, PeriodCount: 2},
		{TeacherID: "t5", FirstName: "Eke", Subjects: []string{"mathematics"}, PeriodCount: 28},
	}}
	repo := newCacheRepoStub()
	cache := NewCacheService(repo, nil, time.Minute, nil, true)
	svc := NewWorkloadService(f.resolver, reader, cache, 2*time.Minute, nil)

	resp, err := svc.Rank(context.Background(), "hill", dto.WorkloadQuery{Subject: " MATHEMATICS ", TermID: "term-1"})
	require.NoError(t, err)
	assert.False(t, resp.Cached)
	assert.Equal(t, "term-1", reader.termID)
	require.Len(t, resp.Teachers, 2)
	assert.Equal(t, "t1", resp.Teachers[0].TeacherID)
	assert.True(t, resp.Teachers[0].Recommended)
	assert.Equal(t, models.WorkloadHigh, resp.Teachers[1].Band)

	key := "workload:s1:term-1:mathematics"
	assert.Contains(t, repo.values, key)
	assert.Equal(t, 2*time.Minute, repo.setTTLs[key])

	again, err := svc.Rank(context.Background(), "s1", dto.WorkloadQuery{Subject: "mathematics", TermID: "term-1"})
	require.NoError(t, err)
	assert.True(t, again.Cached)
	assert.Equal(t, 1, reader.calls)

	svc.InvalidateSchool(context.Background(), "s1")
	assert.Equal(t, []string{"workload:s1:*"}, repo.deleted)
}

func TestWorkloadServiceRankWithoutSubject(t *testing.T) {
	f := newRosterFixture()
	reader := &workloadReaderStub{rows: []models.TeacherWorkload{
		{TeacherID: "t1", FirstName: "Ada", PeriodCount: 20},
		{TeacherID: "t2", FirstName: "Bola", PeriodCount: 2},
	}}
	svc := NewWorkloadService(f.resolver, reader, nil, 0, nil)

	resp, err := svc.Rank(context.Background(), "s1", dto.WorkloadQuery{})
	require.NoError(t, err)
	require.Len(t, resp.Teachers, 2)
	assert.Equal(t, "t2", resp.Teachers[0].TeacherID)

	svc.InvalidateSchool(context.Background(), "s1")
}

func TestWorkloadServiceRankErrors(t *testing.T) {
	f := newRosterFixture()
	svc := NewWorkloadService(f.resolver, &workloadReaderStub{err: errors.New("db down")}, nil, 0, nil)

	_, err := svc.Rank(context.Background(), "nowhere", dto.WorkloadQuery{})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	_, err = svc.Rank(context.Background(), "s1", dto.WorkloadQuery{})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))
}
