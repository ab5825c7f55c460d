package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeacherRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	rows := sqlmock.NewRows([]string{"id", "school_id", "first_name", "last_name", "email", "subjects", "active", "created_at", "updated_at"}).
		AddRow("teacher-1", "school-1", "Ada", "Obi", "ada@example.com", "{Mathematics}", true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM teachers WHERE id = $1")).WithArgs("teacher-1").WillReturnRows(rows)

	teacher, err := repo.FindByID(context.Background(), "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, "school-1", teacher.SchoolID)
	assert.True(t, teacher.Teaches("mathematics"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryListWorkloads(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	rows := sqlmock.NewRows([]string{"teacher_id", "first_name", "last_name", "email", "subjects", "period_count"}).
		AddRow("teacher-1", "Ada", "Obi", "ada@example.com", "{Mathematics}", 12).
		AddRow("teacher-2", "Ben", "Eze", "ben@example.com", "{}", 0)
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN timetable_periods tp")).
		WithArgs("school-1", "term-1").
		WillReturnRows(rows)

	loads, err := repo.ListWorkloads(context.Background(), "school-1", "term-1")
	require.NoError(t, err)
	require.Len(t, loads, 2)
	assert.Equal(t, 12, loads[0].PeriodCount)
	assert.Empty(t, loads[1].Subjects)
	assert.NoError(t, mock.ExpectationsWereMet())
}
