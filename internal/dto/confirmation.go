package dto

import "github.com/noah-isme/academy-billing-api/internal/models"

// ConfirmationResponse is the payload rendered to the returning buyer.
type ConfirmationResponse struct {
	EnrollmentID string `json:"enrollment_id"`
	Status       string `json:"status"`
	ProgramName  string `json:"program_name"`
}

// NewConfirmationResponse maps a reconciliation result onto the wire shape.
func NewConfirmationResponse(result *models.ConfirmationResult) ConfirmationResponse {
	return ConfirmationResponse{
		EnrollmentID: result.EnrollmentID,
		Status:       string(result.Status),
		ProgramName:  result.ProgramName,
	}
}
