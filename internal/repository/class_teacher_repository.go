package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-roster-api/internal/models"
)

// ClassTeacherRepository persists teacher placements on classes and arms.
// Scope filters compare both target columns with IS NOT DISTINCT FROM so one query serves classes and arms.
type ClassTeacherRepository struct {
	db *sqlx.DB
}

// NewClassTeacherRepository constructs the repository.
func NewClassTeacherRepository(db *sqlx.DB) *ClassTeacherRepository {
	return &ClassTeacherRepository{db: db}
}

func (r *ClassTeacherRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

const classTeacherColumns = `ct.id, ct.teacher_id, ct.class_id, ct.class_arm_id, ct.subject, ct.is_primary, ct.created_at`

// ListByScope returns the teachers of a class or arm, form teacher first.
func (r *ClassTeacherRepository) ListByScope(ctx context.Context, exec sqlx.ExtContext, scope models.ClassScope) ([]models.ClassTeacherDetail, error) {
	const query = `
SELECT ` + classTeacherColumns + `,
       t.first_name AS teacher_first_name, t.last_name AS teacher_last_name, t.email AS teacher_email
FROM class_teachers ct
JOIN teachers t ON t.id = ct.teacher_id
WHERE ct.class_id IS NOT DISTINCT FROM $1 AND ct.class_arm_id IS NOT DISTINCT FROM $2
ORDER BY ct.is_primary DESC, ct.subject ASC NULLS FIRST, t.last_name ASC`
	var rows []models.ClassTeacherDetail
	if err := sqlx.SelectContext(ctx, r.exec(exec), &rows, query, scope.ClassID, scope.ClassArmID); err != nil {
		return nil, fmt.Errorf("list class teachers: %w", err)
	}
	return rows, nil
}

// FindExact returns the row matching teacher, scope and subject exactly. A nil subject matches NULL only.
func (r *ClassTeacherRepository) FindExact(ctx context.Context, exec sqlx.ExtContext, teacherID string, scope models.ClassScope, subject *string) (*models.ClassTeacher, error) {
	const query = `
SELECT ` + classTeacherColumns + `
FROM class_teachers ct
WHERE ct.teacher_id = $1 AND ct.class_id IS NOT DISTINCT FROM $2 AND ct.class_arm_id IS NOT DISTINCT FROM $3
  AND ct.subject IS NOT DISTINCT FROM $4
LIMIT 1`
	var row models.ClassTeacher
	if err := sqlx.GetContext(ctx, r.exec(exec), &row, query, teacherID, scope.ClassID, scope.ClassArmID, subject); err != nil {
		return nil, err
	}
	return &row, nil
}

// FindForTeacher returns the teacher's row on the scope. A nil subject matches any row, oldest first.
func (r *ClassTeacherRepository) FindForTeacher(ctx context.Context, exec sqlx.ExtContext, teacherID string, scope models.ClassScope, subject *string) (*models.ClassTeacher, error) {
	query := `
SELECT ` + classTeacherColumns + `
FROM class_teachers ct
WHERE ct.teacher_id = $1 AND ct.class_id IS NOT DISTINCT FROM $2 AND ct.class_arm_id IS NOT DISTINCT FROM $3`
	args := []interface{}{teacherID, scope.ClassID, scope.ClassArmID}
	if subject != nil {
		query += `
  AND ct.subject = $4`
		args = append(args, *subject)
	}
	query += `
ORDER BY ct.created_at ASC
LIMIT 1`
	var row models.ClassTeacher
	if err := sqlx.GetContext(ctx, r.exec(exec), &row, query, args...); err != nil {
		return nil, err
	}
	return &row, nil
}

// FindPrimaryPlacementElsewhere returns the teacher's row on a PRIMARY class or arm other than scope.
func (r *ClassTeacherRepository) FindPrimaryPlacementElsewhere(ctx context.Context, exec sqlx.ExtContext, teacherID string, scope models.ClassScope) (*models.PrimaryPlacement, error) {
	const query = `
SELECT ct.id AS class_teacher_id, ct.class_id, ct.class_arm_id,
       COALESCE(c.name, cl.name || ' ' || ca.name) AS display_name
FROM class_teachers ct
LEFT JOIN classes c ON c.id = ct.class_id
LEFT JOIN class_arms ca ON ca.id = ct.class_arm_id
LEFT JOIN class_levels cl ON cl.id = ca.class_level_id
WHERE ct.teacher_id = $1
  AND COALESCE(c.type, cl.type) = 'PRIMARY'
  AND NOT (ct.class_id IS NOT DISTINCT FROM $2 AND ct.class_arm_id IS NOT DISTINCT FROM $3)
ORDER BY ct.created_at ASC
LIMIT 1`
	var placement models.PrimaryPlacement
	if err := sqlx.GetContext(ctx, r.exec(exec), &placement, query, teacherID, scope.ClassID, scope.ClassArmID); err != nil {
		return nil, err
	}
	return &placement, nil
}

// CountByScope returns how many teacher rows the class or arm has.
func (r *ClassTeacherRepository) CountByScope(ctx context.Context, exec sqlx.ExtContext, scope models.ClassScope) (int, error) {
	const query = `SELECT COUNT(*) FROM class_teachers ct WHERE ct.class_id IS NOT DISTINCT FROM $1 AND ct.class_arm_id IS NOT DISTINCT FROM $2`
	var count int
	if err := sqlx.GetContext(ctx, r.exec(exec), &count, query, scope.ClassID, scope.ClassArmID); err != nil {
		return 0, fmt.Errorf("count class teachers: %w", err)
	}
	return count, nil
}

// FindPrimaryHolder returns the form teacher row of the scope held by someone other than excludeTeacherID.
func (r *ClassTeacherRepository) FindPrimaryHolder(ctx context.Context, exec sqlx.ExtContext, scope models.ClassScope, excludeTeacherID string) (*models.ClassTeacher, error) {
	const query = `
SELECT ` + classTeacherColumns + `
FROM class_teachers ct
WHERE ct.class_id IS NOT DISTINCT FROM $1 AND ct.class_arm_id IS NOT DISTINCT FROM $2
  AND ct.is_primary = TRUE AND ct.teacher_id <> $3
LIMIT 1`
	var row models.ClassTeacher
	if err := sqlx.GetContext(ctx, r.exec(exec), &row, query, scope.ClassID, scope.ClassArmID, excludeTeacherID); err != nil {
		return nil, err
	}
	return &row, nil
}

// FindSubjectHolder returns a row teaching subject on the scope held by someone other than excludeTeacherID.
func (r *ClassTeacherRepository) FindSubjectHolder(ctx context.Context, exec sqlx.ExtContext, scope models.ClassScope, subject, excludeTeacherID string) (*models.ClassTeacher, error) {
	const query = `
SELECT ` + classTeacherColumns + `
FROM class_teachers ct
WHERE ct.class_id IS NOT DISTINCT FROM $1 AND ct.class_arm_id IS NOT DISTINCT FROM $2
  AND ct.subject = $3 AND ct.teacher_id <> $4
LIMIT 1`
	var row models.ClassTeacher
	if err := sqlx.GetContext(ctx, r.exec(exec), &row, query, scope.ClassID, scope.ClassArmID, subject, excludeTeacherID); err != nil {
		return nil, err
	}
	return &row, nil
}

// DemotePrimaries clears the form teacher flag on every row of the scope.
func (r *ClassTeacherRepository) DemotePrimaries(ctx context.Context, exec sqlx.ExtContext, scope models.ClassScope) (int64, error) {
	const query = `UPDATE class_teachers SET is_primary = FALSE
WHERE class_id IS NOT DISTINCT FROM $1 AND class_arm_id IS NOT DISTINCT FROM $2 AND is_primary = TRUE`
	result, err := r.exec(exec).ExecContext(ctx, query, scope.ClassID, scope.ClassArmID)
	if err != nil {
		return 0, fmt.Errorf("demote primary teachers: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("demoted rows affected: %w", err)
	}
	return affected, nil
}

// Create inserts a placement.
func (r *ClassTeacherRepository) Create(ctx context.Context, exec sqlx.ExtContext, row *models.ClassTeacher) error {
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO class_teachers (id, teacher_id, class_id, class_arm_id, subject, is_primary, created_at)
		VALUES (:id, :teacher_id, :class_id, :class_arm_id, :subject, :is_primary, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, row); err != nil {
		return fmt.Errorf("create class teacher: %w", err)
	}
	return nil
}

// Delete removes a placement by id.
func (r *ClassTeacherRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	result, err := r.exec(exec).ExecContext(ctx, `DELETE FROM class_teachers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete class teacher: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("class teacher rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
