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

// ClassArmRepository persists class arms.
type ClassArmRepository struct {
	db *sqlx.DB
}

// NewClassArmRepository constructs the repository.
func NewClassArmRepository(db *sqlx.DB) *ClassArmRepository {
	return &ClassArmRepository{db: db}
}

func (r *ClassArmRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

const classArmDetailSelect = `
SELECT ca.id, ca.class_level_id, ca.name, ca.academic_year, ca.is_active, ca.created_at, ca.updated_at,
       cl.school_id, cl.name AS class_level_name, cl.type
FROM class_arms ca
JOIN class_levels cl ON cl.id = ca.class_level_id`

// FindDetailByID loads an arm with its level regardless of school. Callers must check ownership.
func (r *ClassArmRepository) FindDetailByID(ctx context.Context, id string) (*models.ClassArmDetail, error) {
	query := classArmDetailSelect + `
WHERE ca.id = $1`
	var arm models.ClassArmDetail
	if err := r.db.GetContext(ctx, &arm, query, id); err != nil {
		return nil, err
	}
	return &arm, nil
}

// ListBySchool returns every arm under the school's levels.
func (r *ClassArmRepository) ListBySchool(ctx context.Context, schoolID string) ([]models.ClassArmDetail, error) {
	query := classArmDetailSelect + `
WHERE cl.school_id = $1
ORDER BY cl.level ASC, cl.name ASC, ca.name ASC`
	var arms []models.ClassArmDetail
	if err := r.db.SelectContext(ctx, &arms, query, schoolID); err != nil {
		return nil, fmt.Errorf("list class arms: %w", err)
	}
	return arms, nil
}

// Create inserts a class arm.
func (r *ClassArmRepository) Create(ctx context.Context, arm *models.ClassArm) error {
	if arm.ID == "" {
		arm.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	arm.CreatedAt = now
	arm.UpdatedAt = now
	const query = `INSERT INTO class_arms (id, class_level_id, name, academic_year, is_active, created_at, updated_at)
		VALUES (:id, :class_level_id, :name, :academic_year, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, arm); err != nil {
		return fmt.Errorf("create class arm: %w", err)
	}
	return nil
}

// UpdateName renames an arm.
func (r *ClassArmRepository) UpdateName(ctx context.Context, id, name string) error {
	const query = `UPDATE class_arms SET name = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, name, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update class arm: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("class arm rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an arm.
func (r *ClassArmRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	result, err := r.exec(exec).ExecContext(ctx, `DELETE FROM class_arms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete class arm: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("class arm rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
