package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-roster-api/internal/models"
)

// EnrollmentRepository reads and closes student enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

func (r *EnrollmentRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// CountActiveByScope returns the number of active enrollments in a class or arm.
func (r *EnrollmentRepository) CountActiveByScope(ctx context.Context, exec sqlx.ExtContext, scope models.ClassScope) (int, error) {
	const query = `SELECT COUNT(*) FROM enrollments
WHERE class_id IS NOT DISTINCT FROM $1 AND class_arm_id IS NOT DISTINCT FROM $2 AND is_active = TRUE`
	var count int
	if err := sqlx.GetContext(ctx, r.exec(exec), &count, query, scope.ClassID, scope.ClassArmID); err != nil {
		return 0, fmt.Errorf("count active enrollments: %w", err)
	}
	return count, nil
}

// CloseActiveByScope soft-closes every active enrollment of a class or arm at the given time.
func (r *EnrollmentRepository) CloseActiveByScope(ctx context.Context, exec sqlx.ExtContext, scope models.ClassScope, at time.Time) (int64, error) {
	const query = `UPDATE enrollments SET is_active = FALSE, end_date = $1, updated_at = $1
WHERE class_id IS NOT DISTINCT FROM $2 AND class_arm_id IS NOT DISTINCT FROM $3 AND is_active = TRUE`
	result, err := r.exec(exec).ExecContext(ctx, query, at, scope.ClassID, scope.ClassArmID)
	if err != nil {
		return 0, fmt.Errorf("close active enrollments: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("closed enrollment rows affected: %w", err)
	}
	return affected, nil
}
