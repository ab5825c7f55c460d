package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-roster-api/internal/models"
)

// ClassLevelRepository persists class levels.
type ClassLevelRepository struct {
	db *sqlx.DB
}

// NewClassLevelRepository constructs the repository.
func NewClassLevelRepository(db *sqlx.DB) *ClassLevelRepository {
	return &ClassLevelRepository{db: db}
}

// ListBySchool returns the levels of a school ordered by level, then name.
func (r *ClassLevelRepository) ListBySchool(ctx context.Context, schoolID string) ([]models.ClassLevel, error) {
	const query = `SELECT id, school_id, name, type, level, created_at, updated_at FROM class_levels WHERE school_id = $1 ORDER BY level ASC, name ASC`
	var levels []models.ClassLevel
	if err := r.db.SelectContext(ctx, &levels, query, schoolID); err != nil {
		return nil, fmt.Errorf("list class levels: %w", err)
	}
	return levels, nil
}

// FindByID returns a level only when it belongs to schoolID.
func (r *ClassLevelRepository) FindByID(ctx context.Context, schoolID, id string) (*models.ClassLevel, error) {
	const query = `SELECT id, school_id, name, type, level, created_at, updated_at FROM class_levels WHERE id = $1 AND school_id = $2`
	var level models.ClassLevel
	if err := r.db.GetContext(ctx, &level, query, id, schoolID); err != nil {
		return nil, err
	}
	return &level, nil
}

// Create inserts a class level.
func (r *ClassLevelRepository) Create(ctx context.Context, level *models.ClassLevel) error {
	if level.ID == "" {
		level.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	level.CreatedAt = now
	level.UpdatedAt = now
	const query = `INSERT INTO class_levels (id, school_id, name, type, level, created_at, updated_at)
		VALUES (:id, :school_id, :name, :type, :level, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, level); err != nil {
		return fmt.Errorf("create class level: %w", err)
	}
	return nil
}
