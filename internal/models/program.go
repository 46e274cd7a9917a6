package models

// Program is a course offering. Read-only context for invoice labeling.
type Program struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Cohort is one scheduled run of a program.
type Cohort struct {
	ID        string `db:"id" json:"id"`
	ProgramID string `db:"program_id" json:"program_id"`
	Name      string `db:"name" json:"name"`
}

// CohortContext is the joined cohort/program labeling context used when
// constructing fallback invoices and confirmation messages.
type CohortContext struct {
	CohortID    string `db:"cohort_id" json:"cohort_id"`
	CohortName  string `db:"cohort_name" json:"cohort_name"`
	ProgramID   string `db:"program_id" json:"program_id"`
	ProgramName string `db:"program_name" json:"program_name"`
}
