package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-billing-api/internal/models"
)

func newEnrollmentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestEnrollmentRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)
	rows := sqlmock.NewRows([]string{"id", "student_id", "cohort_id", "status", "agreed_price", "updated_at"}).
		AddRow("E1", "stu-1", "coh-1", "pending", int64(1200000), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, cohort_id, status, agreed_price, updated_at FROM enrollments WHERE id = $1")).
		WithArgs("E1").
		WillReturnRows(rows)

	enrollment, err := repo.FindByID(context.Background(), "E1")
	require.NoError(t, err)
	require.Equal(t, "stu-1", enrollment.StudentID)
	require.Equal(t, models.EnrollmentStatusPending, enrollment.Status)
	require.Equal(t, int64(1200000), enrollment.AgreedPrice)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM enrollments WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryFindDetailByID(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)
	rows := sqlmock.NewRows([]string{"id", "student_id", "cohort_id", "status", "agreed_price", "updated_at", "cohort_name", "program_name"}).
		AddRow("E1", "stu-1", "coh-1", "enrolled", int64(1200000), time.Now(), "2026-1", "Bootcamp X")
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN cohorts c ON c.id = e.cohort_id")).
		WithArgs("E1").
		WillReturnRows(rows)

	detail, err := repo.FindDetailByID(context.Background(), "E1")
	require.NoError(t, err)
	require.Equal(t, "Bootcamp X", detail.ProgramName)
	require.Equal(t, "2026-1", detail.CohortName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryMarkEnrolled(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET status = $2, updated_at = $3 WHERE id = $1 AND status <> $4")).
		WithArgs("E1", string(models.EnrollmentStatusEnrolled), sqlmock.AnyArg(), string(models.EnrollmentStatusCancelled)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkEnrolled(context.Background(), "E1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryMarkEnrolledCancelledRow(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET status = $2")).
		WithArgs("E1", string(models.EnrollmentStatusEnrolled), sqlmock.AnyArg(), string(models.EnrollmentStatusCancelled)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkEnrolled(context.Background(), "E1")
	require.Error(t, err, "cancelled enrollments are never promoted")
	require.NoError(t, mock.ExpectationsWereMet())
}
