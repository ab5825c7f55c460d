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

var classTeacherRowColumns = []string{"id", "teacher_id", "class_id", "class_arm_id", "subject", "is_primary", "created_at"}

func TestClassTeacherRepositoryFindExactMatchesNullSubject(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassTeacherRepository(db)

	rows := sqlmock.NewRows(classTeacherRowColumns).AddRow("ct-1", "teacher-1", nil, "arm-1", nil, true, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("AND ct.subject IS NOT DISTINCT FROM $4")).
		WithArgs("teacher-1", nil, "arm-1", nil).
		WillReturnRows(rows)

	scope := models.ClassScope{ClassArmID: strPtr("arm-1")}
	row, err := repo.FindExact(context.Background(), nil, "teacher-1", scope, nil)
	require.NoError(t, err)
	assert.True(t, row.IsPrimary)
	assert.Nil(t, row.Subject)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassTeacherRepositoryFindForTeacherFiltersSubjectWhenGiven(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassTeacherRepository(db)
	scope := models.ClassScope{ClassID: strPtr("class-1")}

	mock.ExpectQuery(regexp.QuoteMeta("AND ct.subject = $4")).
		WithArgs("teacher-1", "class-1", nil, "Physics").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindForTeacher(context.Background(), nil, "teacher-1", scope, strPtr("Physics"))
	assert.ErrorIs(t, err, sql.ErrNoRows)

	rows := sqlmock.NewRows(classTeacherRowColumns).AddRow("ct-2", "teacher-1", "class-1", nil, "Chemistry", false, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY ct.created_at ASC")).
		WithArgs("teacher-1", "class-1", nil).
		WillReturnRows(rows)

	row, err := repo.FindForTeacher(context.Background(), nil, "teacher-1", scope, nil)
	require.NoError(t, err)
	assert.Equal(t, "ct-2", row.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassTeacherRepositoryFindPrimaryPlacementElsewhere(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassTeacherRepository(db)

	rows := sqlmock.NewRows([]string{"class_teacher_id", "class_id", "class_arm_id", "display_name"}).
		AddRow("ct-9", "class-9", nil, "Primary 1A")
	mock.ExpectQuery(regexp.QuoteMeta("COALESCE(c.type, cl.type) = 'PRIMARY'")).
		WithArgs("teacher-1", "class-1", nil).
		WillReturnRows(rows)

	placement, err := repo.FindPrimaryPlacementElsewhere(context.Background(), nil, "teacher-1", models.ClassScope{ClassID: strPtr("class-1")})
	require.NoError(t, err)
	assert.Equal(t, "Primary 1A", placement.DisplayName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassTeacherRepositoryCountHoldersAndDemote(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassTeacherRepository(db)
	scope := models.ClassScope{ClassID: strPtr("class-1")}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM class_teachers")).
		WithArgs("class-1", nil).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	count, err := repo.CountByScope(context.Background(), nil, scope)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	mock.ExpectQuery(regexp.QuoteMeta("AND ct.is_primary = TRUE AND ct.teacher_id <> $3")).
		WithArgs("class-1", nil, "teacher-1").
		WillReturnError(sql.ErrNoRows)
	_, err = repo.FindPrimaryHolder(context.Background(), nil, scope, "teacher-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	mock.ExpectQuery(regexp.QuoteMeta("AND ct.subject = $3 AND ct.teacher_id <> $4")).
		WithArgs("class-1", nil, "Physics", "teacher-1").
		WillReturnRows(sqlmock.NewRows(classTeacherRowColumns).AddRow("ct-3", "teacher-2", "class-1", nil, "Physics", false, time.Now()))
	holder, err := repo.FindSubjectHolder(context.Background(), nil, scope, "Physics", "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, "teacher-2", holder.TeacherID)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE class_teachers SET is_primary = FALSE")).
		WithArgs("class-1", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	demoted, err := repo.DemotePrimaries(context.Background(), nil, scope)
	require.NoError(t, err)
	assert.Equal(t, int64(1), demoted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassTeacherRepositoryCreateAndDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassTeacherRepository(db)

	mock.ExpectExec("INSERT INTO class_teachers").
		WithArgs(sqlmock.AnyArg(), "teacher-1", "class-1", nil, "Physics", false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	row := &models.ClassTeacher{TeacherID: "teacher-1", ClassID: strPtr("class-1"), Subject: strPtr("Physics")}
	require.NoError(t, repo.Create(context.Background(), nil, row))
	assert.NotEmpty(t, row.ID)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM class_teachers WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), nil, "missing"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassTeacherRepositoryUsesProvidedTransaction(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassTeacherRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE class_teachers SET is_primary = FALSE").
		WithArgs(nil, "arm-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	tx, err := db.Beginx()
	require.NoError(t, err)
	_, err = repo.DemotePrimaries(context.Background(), tx, models.ClassScope{ClassArmID: strPtr("arm-1")})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
