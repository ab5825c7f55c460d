package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-roster-api/internal/models"
)

// TeacherRepository manages teacher lookups.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs the repository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

const teacherColumns = `id, school_id, first_name, last_name, email, subjects, active, created_at, updated_at`

// FindByID returns a teacher by id.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	query := `SELECT ` + teacherColumns + ` FROM teachers WHERE id = $1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// ListWorkloads returns every active teacher of the school with the number of LESSON periods they teach.
// An empty termID counts periods across all terms.
func (r *TeacherRepository) ListWorkloads(ctx context.Context, schoolID, termID string) ([]models.TeacherWorkload, error) {
	const query = `
SELECT t.id AS teacher_id, t.first_name, t.last_name, t.email, t.subjects, COUNT(tp.id) AS period_count
FROM teachers t
LEFT JOIN timetable_periods tp
       ON tp.teacher_id = t.id AND tp.school_id = t.school_id AND tp.type = 'LESSON'
      AND ($2 = '' OR tp.term_id = $2)
WHERE t.school_id = $1 AND t.active = TRUE
GROUP BY t.id, t.first_name, t.last_name, t.email, t.subjects`
	var rows []models.TeacherWorkload
	if err := r.db.SelectContext(ctx, &rows, query, schoolID, termID); err != nil {
		return nil, fmt.Errorf("list teacher workloads: %w", err)
	}
	return rows, nil
}
