package database

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsAreOrdered(t *testing.T) {
	migrations, err := Migrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)
	for i := 1; i < len(migrations); i++ {
		assert.Less(t, migrations[i-1].Version, migrations[i].Version)
	}
	assert.Equal(t, "0001_schools_and_teachers", migrations[0].Version)
}

func TestMigrateSkipsAppliedVersions(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	sqlxDB := sqlx.NewDb(db, "sqlmock")

	migrations, err := Migrations()
	require.NoError(t, err)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	rows := sqlmock.NewRows([]string{"version"}).AddRow(migrations[0].Version)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version FROM schema_migrations")).WillReturnRows(rows)
	for _, m := range migrations[1:] {
		mock.ExpectBegin()
		mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schema_migrations (version) VALUES ($1)")).
			WithArgs(m.Version).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()
	}

	ran, err := Migrate(context.Background(), sqlxDB, nil)
	require.NoError(t, err)
	assert.Len(t, ran, len(migrations)-1)
	assert.NotContains(t, ran, migrations[0].Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateRollsBackFailedMigration(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	sqlxDB := sqlx.NewDb(db, "sqlmock")

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version FROM schema_migrations")).WillReturnRows(sqlmock.NewRows([]string{"version"}))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schools").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	ran, err := Migrate(context.Background(), sqlxDB, nil)
	require.Error(t, err)
	assert.Empty(t, ran)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func migrationSQL(t *testing.T, version string) string {
	t.Helper()
	migrations, err := Migrations()
	require.NoError(t, err)
	for _, m := range migrations {
		if m.Version == version {
			return m.SQL
		}
	}
	t.Fatalf("migration %s not found", version)
	return ""
}

func TestTimetablePeriodsRejectOverlappingRanges(t *testing.T) {
	sql := migrationSQL(t, "0004_enrollments_and_timetable")
	assert.Contains(t, sql, "CREATE EXTENSION IF NOT EXISTS btree_gist")
	assert.Contains(t, sql, "CONSTRAINT timetable_periods_no_overlap EXCLUDE USING gist")
	assert.Contains(t, sql, ") WITH &&")
	assert.NotContains(t, sql, "uq_timetable_periods_slot")
}

func TestEnrollmentsKeepTargetAfterClassDelete(t *testing.T) {
	sql := migrationSQL(t, "0004_enrollments_and_timetable")
	start := strings.Index(sql, "CREATE TABLE IF NOT EXISTS enrollments")
	require.GreaterOrEqual(t, start, 0)
	end := strings.Index(sql[start:], ");")
	require.Greater(t, end, 0)
	table := sql[start : start+end]
	assert.NotContains(t, table, "REFERENCES classes")
	assert.NotContains(t, table, "REFERENCES class_arms")
	assert.NotContains(t, table, "SET NULL")
}

func TestClassLevelsAndArmsCarryOrderingColumns(t *testing.T) {
	sql := migrationSQL(t, "0002_classes")
	assert.Regexp(t, `(?s)class_levels \(.*level INT NOT NULL DEFAULT 0`, sql)
	assert.Regexp(t, `(?s)class_arms \(.*academic_year TEXT,\s+is_active BOOLEAN NOT NULL DEFAULT TRUE`, sql)
}
