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

// ClassRepository manages persistence for legacy classes.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a new class repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

func (r *ClassRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

const classDetailSelect = `
SELECT c.id, c.school_id, c.name, c.type, c.class_level_id, c.academic_year, c.created_at, c.updated_at,
       cl.name AS class_level_name
FROM classes c
LEFT JOIN class_levels cl ON cl.id = c.class_level_id`

// FindBySchool returns a class only when it belongs to schoolID.
func (r *ClassRepository) FindBySchool(ctx context.Context, schoolID, id string) (*models.ClassDetail, error) {
	query := classDetailSelect + `
WHERE c.id = $1 AND c.school_id = $2`
	var class models.ClassDetail
	if err := r.db.GetContext(ctx, &class, query, id, schoolID); err != nil {
		return nil, err
	}
	return &class, nil
}

// ListBySchool returns the school's classes ordered by name.
func (r *ClassRepository) ListBySchool(ctx context.Context, schoolID string) ([]models.ClassDetail, error) {
	query := classDetailSelect + `
WHERE c.school_id = $1
ORDER BY c.name ASC`
	var classes []models.ClassDetail
	if err := r.db.SelectContext(ctx, &classes, query, schoolID); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// Create inserts a new class.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	class.CreatedAt = now
	class.UpdatedAt = now
	const query = `INSERT INTO classes (id, school_id, name, type, class_level_id, academic_year, created_at, updated_at)
		VALUES (:id, :school_id, :name, :type, :class_level_id, :academic_year, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// Update writes the mutable columns of a class.
func (r *ClassRepository) Update(ctx context.Context, class *models.Class) error {
	class.UpdatedAt = time.Now().UTC()
	const query = `UPDATE classes SET name = :name, class_level_id = :class_level_id, academic_year = :academic_year, updated_at = :updated_at
		WHERE id = :id AND school_id = :school_id`
	result, err := r.db.NamedExecContext(ctx, query, class)
	if err != nil {
		return fmt.Errorf("update class: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("class rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a class.
func (r *ClassRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	result, err := r.exec(exec).ExecContext(ctx, `DELETE FROM classes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("class rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
