package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-roster-api/internal/models"
)

// SchoolRepository reads tenant records.
type SchoolRepository struct {
	db *sqlx.DB
}

// NewSchoolRepository constructs the repository.
func NewSchoolRepository(db *sqlx.DB) *SchoolRepository {
	return &SchoolRepository{db: db}
}

// FindByIDOrSubdomain loads a school by id, falling back to its subdomain.
// An id match wins when both exist.
func (r *SchoolRepository) FindByIDOrSubdomain(ctx context.Context, ref string) (*models.School, error) {
	const query = `SELECT id, name, subdomain, school_types, created_at, updated_at
FROM schools WHERE id = $1 OR subdomain = $1
ORDER BY (id = $1) DESC LIMIT 1`
	var school models.School
	if err := r.db.GetContext(ctx, &school, query, ref); err != nil {
		return nil, err
	}
	return &school, nil
}
