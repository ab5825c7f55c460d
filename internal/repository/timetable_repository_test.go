package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-roster-api/internal/models"
)

var timetableRowColumns = []string{"id", "school_id", "class_id", "class_arm_id", "term_id", "day_of_week", "start_time", "end_time", "type", "subject_id", "course_id", "teacher_id", "created_at", "updated_at"}

func TestTimetableRepositoryListByScope(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	rows := sqlmock.NewRows(timetableRowColumns).
		AddRow("p-1", "school-1", nil, "arm-1", "term-1", "MONDAY", "07:30", "07:50", "ASSEMBLY", nil, nil, nil, time.Now(), time.Now()).
		AddRow("p-2", "school-1", nil, "arm-1", "term-1", "MONDAY", "07:50", "08:30", "LESSON", "math", nil, "teacher-1", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY array_position(")).
		WithArgs(nil, "arm-1", "term-1").
		WillReturnRows(rows)

	periods, err := repo.ListByScope(context.Background(), nil, models.ClassScope{ClassArmID: strPtr("arm-1")}, "term-1")
	require.NoError(t, err)
	require.Len(t, periods, 2)
	assert.Equal(t, models.PeriodAssembly, periods[0].Type)
	require.NotNil(t, periods[1].SubjectID)
	assert.Equal(t, "math", *periods[1].SubjectID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryReplaceInTransaction(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)
	scope := models.ClassScope{ClassID: strPtr("class-1")}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetable_periods")).
		WithArgs("class-1", nil, "term-1").
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec("INSERT INTO timetable_periods").
		WithArgs(sqlmock.AnyArg(), "school-1", "class-1", nil, "term-1", "TUESDAY", "07:50", "08:30", "LESSON", "math", nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := db.Beginx()
	require.NoError(t, err)
	deleted, err := repo.DeleteByScope(context.Background(), tx, scope, "term-1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), deleted)

	periods := []models.TimetablePeriod{{
		SchoolID:  "school-1",
		ClassID:   strPtr("class-1"),
		TermID:    "term-1",
		DayOfWeek: models.Tuesday,
		StartTime: "07:50",
		EndTime:   "08:30",
		Type:      models.PeriodLesson,
		SubjectID: strPtr("math"),
	}}
	require.NoError(t, repo.InsertMany(context.Background(), tx, periods))
	assert.NotEmpty(t, periods[0].ID)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryFindTeacherClashes(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)
	scope := models.ClassScope{ClassID: strPtr("class-1")}

	clashes, err := repo.FindTeacherClashes(context.Background(), nil, "school-1", "term-1", scope, nil)
	require.NoError(t, err)
	assert.Empty(t, clashes)

	rows := sqlmock.NewRows([]string{"teacher_id", "day_of_week", "start_time", "end_time", "class_id", "class_arm_id"}).
		AddRow("teacher-1", "MONDAY", "07:50", "08:30", "class-2", nil)
	mock.ExpectQuery(regexp.QuoteMeta("teacher_id = ANY($3)")).
		WithArgs("school-1", "term-1", sqlmock.AnyArg(), "class-1", nil).
		WillReturnRows(rows)

	clashes, err = repo.FindTeacherClashes(context.Background(), nil, "school-1", "term-1", scope, []string{"teacher-1"})
	require.NoError(t, err)
	require.Len(t, clashes, 1)
	assert.Equal(t, models.Monday, clashes[0].DayOfWeek)
	assert.Equal(t, "08:30", clashes[0].EndTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}
