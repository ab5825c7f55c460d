package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/school-roster-api/internal/models"
)

// TimetableRepository persists timetable periods.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs the repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

func (r *TimetableRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

const timetableColumns = `id, school_id, class_id, class_arm_id, term_id, day_of_week, start_time, end_time, type, subject_id, course_id, teacher_id, created_at, updated_at`

// ListByScope returns the periods of a class or arm for a term in week order.
func (r *TimetableRepository) ListByScope(ctx context.Context, exec sqlx.ExtContext, scope models.ClassScope, termID string) ([]models.TimetablePeriod, error) {
	const query = `SELECT ` + timetableColumns + `
FROM timetable_periods
WHERE class_id IS NOT DISTINCT FROM $1 AND class_arm_id IS NOT DISTINCT FROM $2 AND term_id = $3
ORDER BY array_position(ARRAY['MONDAY','TUESDAY','WEDNESDAY','THURSDAY','FRIDAY','SATURDAY','SUNDAY'], day_of_week), start_time`
	var periods []models.TimetablePeriod
	if err := sqlx.SelectContext(ctx, r.exec(exec), &periods, query, scope.ClassID, scope.ClassArmID, termID); err != nil {
		return nil, fmt.Errorf("list timetable periods: %w", err)
	}
	return periods, nil
}

// DeleteByScope removes every period of a class or arm for a term.
func (r *TimetableRepository) DeleteByScope(ctx context.Context, exec sqlx.ExtContext, scope models.ClassScope, termID string) (int64, error) {
	const query = `DELETE FROM timetable_periods
WHERE class_id IS NOT DISTINCT FROM $1 AND class_arm_id IS NOT DISTINCT FROM $2 AND term_id = $3`
	result, err := r.exec(exec).ExecContext(ctx, query, scope.ClassID, scope.ClassArmID, termID)
	if err != nil {
		return 0, fmt.Errorf("delete timetable periods: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleted timetable rows affected: %w", err)
	}
	return affected, nil
}

// InsertMany stores periods, assigning ids and timestamps.
func (r *TimetableRepository) InsertMany(ctx context.Context, exec sqlx.ExtContext, periods []models.TimetablePeriod) error {
	target := r.exec(exec)
	now := time.Now().UTC()
	const query = `INSERT INTO timetable_periods (` + timetableColumns + `)
VALUES (:id, :school_id, :class_id, :class_arm_id, :term_id, :day_of_week, :start_time, :end_time, :type, :subject_id, :course_id, :teacher_id, :created_at, :updated_at)`
	for i := range periods {
		if periods[i].ID == "" {
			periods[i].ID = uuid.NewString()
		}
		if periods[i].CreatedAt.IsZero() {
			periods[i].CreatedAt = now
		}
		periods[i].UpdatedAt = now
		if _, err := sqlx.NamedExecContext(ctx, target, query, &periods[i]); err != nil {
			return fmt.Errorf("insert timetable period %s %s: %w", periods[i].DayOfWeek, periods[i].StartTime, err)
		}
	}
	return nil
}

// FindTeacherClashes returns periods outside scope that book any of teacherIDs in the same school and term.
func (r *TimetableRepository) FindTeacherClashes(ctx context.Context, exec sqlx.ExtContext, schoolID, termID string, scope models.ClassScope, teacherIDs []string) ([]models.TeacherClash, error) {
	if len(teacherIDs) == 0 {
		return nil, nil
	}
	const query = `
SELECT teacher_id, day_of_week, start_time, end_time, class_id, class_arm_id
FROM timetable_periods
WHERE school_id = $1 AND term_id = $2 AND type = 'LESSON' AND teacher_id = ANY($3)
  AND NOT (class_id IS NOT DISTINCT FROM $4 AND class_arm_id IS NOT DISTINCT FROM $5)`
	var clashes []models.TeacherClash
	if err := sqlx.SelectContext(ctx, r.exec(exec), &clashes, query, schoolID, termID, pq.Array(teacherIDs), scope.ClassID, scope.ClassArmID); err != nil {
		return nil, fmt.Errorf("find teacher clashes: %w", err)
	}
	return clashes, nil
}
