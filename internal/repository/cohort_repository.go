package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academy-billing-api/internal/models"
)

// CohortRepository reads cohort and program labeling context. The
// reconciliation engine never mutates these rows.
type CohortRepository struct {
	db *sqlx.DB
}

// NewCohortRepository constructs the repository.
func NewCohortRepository(db *sqlx.DB) *CohortRepository {
	return &CohortRepository{db: db}
}

// FindContext returns the joined cohort/program context for one cohort.
func (r *CohortRepository) FindContext(ctx context.Context, cohortID string) (*models.CohortContext, error) {
	const query = `SELECT c.id AS cohort_id, c.name AS cohort_name, p.id AS program_id, p.name AS program_name
        FROM cohorts c
        JOIN programs p ON p.id = c.program_id
        WHERE c.id = $1`
	var cohortCtx models.CohortContext
	if err := r.db.GetContext(ctx, &cohortCtx, query, cohortID); err != nil {
		return nil, err
	}
	return &cohortCtx, nil
}
