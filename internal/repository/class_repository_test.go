package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-roster-api/internal/models"
)

func TestClassLevelRepositoryListAndCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassLevelRepository(db)

	rows := sqlmock.NewRows([]string{"id", "school_id", "name", "type", "level", "created_at", "updated_at"}).
		AddRow("level-1", "school-1", "JSS 1", "SECONDARY", 7, time.Now(), time.Now()).
		AddRow("level-0", "school-1", "JSS 10", "SECONDARY", 16, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM class_levels WHERE school_id = $1 ORDER BY level ASC, name ASC")).
		WithArgs("school-1").
		WillReturnRows(rows)

	levels, err := repo.ListBySchool(context.Background(), "school-1")
	require.NoError(t, err)
	require.Len(t, levels, 2)
	assert.Equal(t, models.SchoolTypeSecondary, levels[0].Type)
	assert.Equal(t, 7, levels[0].Level)

	mock.ExpectExec("INSERT INTO class_levels").
		WithArgs(sqlmock.AnyArg(), "school-1", "JSS 2", models.SchoolTypeSecondary, 8, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	level := &models.ClassLevel{SchoolID: "school-1", Name: "JSS 2", Type: models.SchoolTypeSecondary, Level: 8}
	require.NoError(t, repo.Create(context.Background(), level))
	assert.NotEmpty(t, level.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassArmRepositoryFindDetailByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassArmRepository(db)

	rows := sqlmock.NewRows([]string{"id", "class_level_id", "name", "academic_year", "is_active", "created_at", "updated_at", "school_id", "class_level_name", "type"}).
		AddRow("arm-1", "level-1", "Gold", "2024/2025", false, time.Now(), time.Now(), "school-1", "JSS 1", "SECONDARY")
	mock.ExpectQuery(regexp.QuoteMeta("ca.academic_year, ca.is_active")).WithArgs("arm-1").WillReturnRows(rows)

	arm, err := repo.FindDetailByID(context.Background(), "arm-1")
	require.NoError(t, err)
	assert.Equal(t, "JSS 1 Gold", arm.DisplayName())
	assert.Equal(t, "school-1", arm.SchoolID)
	require.NotNil(t, arm.AcademicYear)
	assert.Equal(t, "2024/2025", *arm.AcademicYear)
	assert.False(t, arm.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassArmRepositoryListAndCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassArmRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY cl.level ASC, cl.name ASC, ca.name ASC")).
		WithArgs("school-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "class_level_id", "name", "academic_year", "is_active", "created_at", "updated_at", "school_id", "class_level_name", "type"}))
	arms, err := repo.ListBySchool(context.Background(), "school-1")
	require.NoError(t, err)
	assert.Empty(t, arms)

	year := "2025/2026"
	mock.ExpectExec("INSERT INTO class_arms").
		WithArgs(sqlmock.AnyArg(), "level-1", "Blue", year, true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	arm := &models.ClassArm{ClassLevelID: "level-1", Name: "Blue", AcademicYear: &year, IsActive: true}
	require.NoError(t, repo.Create(context.Background(), arm))
	assert.NotEmpty(t, arm.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassArmRepositoryUpdateNameMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassArmRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE class_arms SET name = $1, updated_at = $2 WHERE id = $3")).
		WithArgs("Blue", sqlmock.AnyArg(), "arm-x").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateName(context.Background(), "arm-x", "Blue")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryFindBySchoolAndDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	rows := sqlmock.NewRows([]string{"id", "school_id", "name", "type", "class_level_id", "academic_year", "created_at", "updated_at", "class_level_name"}).
		AddRow("class-1", "school-1", "Primary 3A", "PRIMARY", nil, "2024/2025", time.Now(), time.Now(), nil)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE c.id = $1 AND c.school_id = $2")).
		WithArgs("class-1", "school-1").
		WillReturnRows(rows)

	class, err := repo.FindBySchool(context.Background(), "school-1", "class-1")
	require.NoError(t, err)
	assert.Equal(t, models.SchoolTypePrimary, class.Type)
	require.NotNil(t, class.AcademicYear)
	assert.Nil(t, class.ClassLevelName)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM classes WHERE id = $1")).
		WithArgs("class-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), nil, "class-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectExec("UPDATE classes SET name").
		WithArgs("Primary 3B", nil, "2025/2026", sqlmock.AnyArg(), "class-1", "school-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), &models.Class{
		ID:           "class-1",
		SchoolID:     "school-1",
		Name:         "Primary 3B",
		AcademicYear: strPtr("2025/2026"),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
