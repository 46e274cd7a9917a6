package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academy-billing-api/internal/models"
)

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// FindByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	const query = `SELECT id, student_id, cohort_id, status, agreed_price, updated_at FROM enrollments WHERE id = $1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindDetailByID returns an enrollment with cohort and program labels.
func (r *EnrollmentRepository) FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.student_id, e.cohort_id, e.status, e.agreed_price, e.updated_at,
        c.name AS cohort_name, p.name AS program_name
        FROM enrollments e
        LEFT JOIN cohorts c ON c.id = e.cohort_id
        LEFT JOIN programs p ON p.id = c.program_id
        WHERE e.id = $1`
	var detail models.EnrollmentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// MarkEnrolled advances an enrollment to enrolled. The update is a
// compare-and-set: re-running against an already enrolled row rewrites the
// same value, while a cancelled row is never promoted.
func (r *EnrollmentRepository) MarkEnrolled(ctx context.Context, id string) error {
	const query = `UPDATE enrollments SET status = $2, updated_at = $3 WHERE id = $1 AND status <> $4`
	result, err := r.db.ExecContext(ctx, query, id, models.EnrollmentStatusEnrolled, time.Now().UTC(), models.EnrollmentStatusCancelled)
	if err != nil {
		return fmt.Errorf("mark enrollment enrolled: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark enrollment enrolled: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("mark enrollment enrolled: no eligible row for %s", id)
	}
	return nil
}
