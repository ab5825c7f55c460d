package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-roster-api/internal/dto"
	"github.com/noah-isme/school-roster-api/internal/models"
)

// Weekly lesson period thresholds for workload bands.
const (
	workloadNormalFrom     = 10
	workloadHighFrom       = 26
	workloadOverloadedFrom = 31
)

const workloadCachePrefix = "workload"

type workloadReader interface {
	ListWorkloads(ctx context.Context, schoolID, termID string) ([]models.TeacherWorkload, error)
}

type schoolResolver interface {
	ResolveSchool(ctx context.Context, ref string) (*models.School, error)
}

// WorkloadRanking is the cached form of a ranked candidate list.
type WorkloadRanking struct {
	SchoolID string                   `json:"schoolId"`
	Teachers []models.TeacherWorkload `json:"teachers"`
}

// ClassifyWorkload maps a lesson period count to its band.
func ClassifyWorkload(periodCount int) models.WorkloadBand {
	switch {
	case periodCount >= workloadOverloadedFrom:
		return models.WorkloadOverloaded
	case periodCount >= workloadHighFrom:
		return models.WorkloadHigh
	case periodCount >= workloadNormalFrom:
		return models.WorkloadNormal
	default:
		return models.WorkloadLow
	}
}

// RankTeachers orders teachers by ascending period count and annotates each row.
// The input slice is not modified.
func RankTeachers(rows []models.TeacherWorkload) []models.TeacherWorkload {
	ranked := make([]models.TeacherWorkload, len(rows))
	copy(ranked, rows)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.PeriodCount != b.PeriodCount {
			return a.PeriodCount < b.PeriodCount
		}
		if an, bn := strings.ToLower(a.FullName()), strings.ToLower(b.FullName()); an != bn {
			return an < bn
		}
		return a.TeacherID < b.TeacherID
	})
	for i := range ranked {
		ranked[i].Band = ClassifyWorkload(ranked[i].PeriodCount)
		ranked[i].Recommended = i == 0
		ranked[i].Warning = ""
		if ranked[i].Band == models.WorkloadOverloaded {
			ranked[i].Warning = fmt.Sprintf("%s already teaches %d periods", ranked[i].FullName(), ranked[i].PeriodCount)
		}
	}
	return ranked
}

// WorkloadService ranks assignment candidates of a school by teaching load.
type WorkloadService struct {
	schools  schoolResolver
	teachers workloadReader
	cache    *CacheService
	ttl      time.Duration
	logger   *zap.Logger
}

// NewWorkloadService constructs the service. cache may be nil.
func NewWorkloadService(schools schoolResolver, teachers workloadReader, cache *CacheService, ttl time.Duration, logger *zap.Logger) *WorkloadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkloadService{schools: schools, teachers: teachers, cache: cache, ttl: ttl, logger: logger}
}

// Rank returns the school's active teachers, least loaded first.
func (s *WorkloadService) Rank(ctx context.Context, schoolRef string, query dto.WorkloadQuery) (*dto.WorkloadResponse, error) {
	school, err := s.schools.ResolveSchool(ctx, schoolRef)
	if err != nil {
		return nil, err
	}
	subject := strings.TrimSpace(query.Subject)
	termID := strings.TrimSpace(query.TermID)
	resp := &dto.WorkloadResponse{SchoolID: school.ID, Subject: subject, TermID: termID}

	key := cacheKey(workloadCachePrefix, school.ID, termID, subject)
	var cached WorkloadRanking
	if s.cache.Get(ctx, key, &cached) {
		resp.Teachers = cached.Teachers
		resp.Cached = true
		return resp, nil
	}

	rows, err := s.teachers.ListWorkloads(ctx, school.ID, termID)
	if err != nil {
		return nil, internalError(err, "failed to load teacher workloads")
	}
	if subject != "" {
		rows = filterCompetent(rows, subject)
	}
	resp.Teachers = RankTeachers(rows)

	s.cache.Set(ctx, key, WorkloadRanking{SchoolID: school.ID, Teachers: resp.Teachers}, s.ttl)
	return resp, nil
}

// InvalidateSchool drops every cached ranking of the school.
func (s *WorkloadService) InvalidateSchool(ctx context.Context, schoolID string) {
	if err := s.cache.Invalidate(ctx, cacheKey(workloadCachePrefix, schoolID)+":*"); err != nil {
		s.logger.Warn("workload cache invalidation failed", zap.String("school_id", schoolID), zap.Error(err))
	}
}

func filterCompetent(rows []models.TeacherWorkload, subject string) []models.TeacherWorkload {
	out := make([]models.TeacherWorkload, 0, len(rows))
	for _, row := range rows {
		teacher := models.Teacher{Subjects: row.Subjects}
		if teacher.Teaches(subject) {
			out = append(out, row)
		}
	}
	return out
}
