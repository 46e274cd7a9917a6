package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/academy-billing-api/internal/models"
	appErrors "github.com/noah-isme/academy-billing-api/pkg/errors"
)

type enrollmentDetailReader interface {
	FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error)
}

type invoiceLister interface {
	ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.Invoice, error)
}

// EnrollmentService serves the read surface over enrollments and their
// invoice ledgers. All lifecycle mutations belong to checkout/admin flows or
// the reconciliation engine, never to this service.
type EnrollmentService struct {
	enrollments enrollmentDetailReader
	invoices    invoiceLister
	logger      *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(enrollments enrollmentDetailReader, invoices invoiceLister, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{enrollments: enrollments, invoices: invoices, logger: logger}
}

// Ledger returns one enrollment with its cohort/program labels and invoices.
func (s *EnrollmentService) Ledger(ctx context.Context, id string) (*models.EnrollmentLedger, error) {
	detail, err := s.enrollments.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	invoices, err := s.invoices.ListByEnrollment(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load invoices")
	}
	return &models.EnrollmentLedger{EnrollmentDetail: *detail, Invoices: invoices}, nil
}
