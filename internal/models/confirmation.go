package models

// TransactionStatus is the payment provider's view of a transaction.
type TransactionStatus string

// Provider transaction statuses.
const (
	TransactionStatusApproved TransactionStatus = "APPROVED"
	TransactionStatusPending  TransactionStatus = "PENDING"
	TransactionStatusDeclined TransactionStatus = "DECLINED"
	TransactionStatusError    TransactionStatus = "ERROR"
)

// ConfirmationStatus is the tri-state outcome shown to the buyer.
type ConfirmationStatus string

// Buyer-facing confirmation outcomes.
const (
	ConfirmationApproved ConfirmationStatus = "approved"
	ConfirmationPending  ConfirmationStatus = "pending"
	ConfirmationDeclined ConfirmationStatus = "declined"
)

// ConfirmationResult is the display-facing output of one reconciliation run.
type ConfirmationResult struct {
	EnrollmentID string             `json:"enrollment_id"`
	Status       ConfirmationStatus `json:"status"`
	ProgramName  string             `json:"program_name"`
}
