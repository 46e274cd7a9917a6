package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses. The reconciliation engine only ever advances
// pending to enrolled; cancelled is owned by admin flows and never overwritten.
const (
	EnrollmentStatusPending   EnrollmentStatus = "pending"
	EnrollmentStatusEnrolled  EnrollmentStatus = "enrolled"
	EnrollmentStatusCancelled EnrollmentStatus = "cancelled"
)

// Enrollment captures a student's registration to a cohort of a program.
type Enrollment struct {
	ID          string           `db:"id" json:"id"`
	StudentID   string           `db:"student_id" json:"student_id"`
	CohortID    string           `db:"cohort_id" json:"cohort_id"`
	Status      EnrollmentStatus `db:"status" json:"status"`
	AgreedPrice int64            `db:"agreed_price" json:"agreed_price"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updated_at"`
}

// EnrollmentDetail enriches Enrollment with cohort and program labels.
type EnrollmentDetail struct {
	Enrollment
	CohortName  string `db:"cohort_name" json:"cohort_name"`
	ProgramName string `db:"program_name" json:"program_name"`
}

// EnrollmentLedger bundles an enrollment with its invoice rows for read APIs.
type EnrollmentLedger struct {
	EnrollmentDetail
	Invoices []Invoice `json:"invoices"`
}
