package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/academy-billing-api/internal/models"
	appErrors "github.com/noah-isme/academy-billing-api/pkg/errors"
)

type enrollmentStore interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	MarkEnrolled(ctx context.Context, id string) error
}

type invoiceStore interface {
	ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.Invoice, error)
	Create(ctx context.Context, invoice *models.Invoice) error
	SettlePending(ctx context.Context, id string, paidAt time.Time) (bool, error)
	ClaimSettlement(ctx context.Context, id string, settledAt time.Time) (bool, error)
}

type cohortContextReader interface {
	FindContext(ctx context.Context, cohortID string) (*models.CohortContext, error)
}

type statusResolver interface {
	Resolve(ctx context.Context, reference string) models.TransactionStatus
}

// ReconciliationService translates an external transaction status into
// consistent changes across the enrollment, its invoices, the matricula fee
// and the coupon counter. There is no shared transaction boundary between
// those records: every step is individually idempotent, ordered as
// enrollment -> invoice -> matricula -> coupon, and side effects are gated by
// a durable settlement marker so a reload cannot double-apply them.
type ReconciliationService struct {
	enrollments enrollmentStore
	invoices    invoiceStore
	cohorts     cohortContextReader
	resolver    statusResolver
	matricula   *MatriculaExecutor
	coupon      *CouponExecutor
	cache       *CacheService
	metrics     *MetricsService
	logger      *zap.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewReconciliationService constructs the orchestrator.
func NewReconciliationService(
	enrollments enrollmentStore,
	invoices invoiceStore,
	cohorts cohortContextReader,
	resolver statusResolver,
	matricula *MatriculaExecutor,
	coupon *CouponExecutor,
	cache *CacheService,
	metrics *MetricsService,
	logger *zap.Logger,
) *ReconciliationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconciliationService{
		enrollments: enrollments,
		invoices:    invoices,
		cohorts:     cohorts,
		resolver:    resolver,
		matricula:   matricula,
		coupon:      coupon,
		cache:       cache,
		metrics:     metrics,
		logger:      logger,
		inFlight:    make(map[string]struct{}),
	}
}

// Confirm runs one reconciliation for the enrollment the buyer returned with.
// Only an APPROVED status writes anything; PENDING and DECLINED are terminal
// for the run and purely informational.
func (s *ReconciliationService) Confirm(ctx context.Context, enrollmentID string) (*models.ConfirmationResult, error) {
	if !s.acquire(enrollmentID) {
		return nil, appErrors.ErrConfirmationInFlight
	}
	defer s.release(enrollmentID)

	start := time.Now()

	enrollment, err := s.enrollments.FindByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	programName := s.programName(ctx, enrollment.CohortID)

	invoices, err := s.invoices.ListByEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load invoices")
	}
	plan := ClassifyInvoices(invoices)

	status := s.resolver.Resolve(ctx, s.paymentReference(enrollment, plan))

	result := &models.ConfirmationResult{EnrollmentID: enrollmentID, ProgramName: programName}
	switch status {
	case models.TransactionStatusApproved:
		result.Status = models.ConfirmationApproved
	case models.TransactionStatusPending:
		result.Status = models.ConfirmationPending
		s.metrics.RecordReconciliation(string(result.Status), time.Since(start))
		return result, nil
	default:
		result.Status = models.ConfirmationDeclined
		s.metrics.RecordReconciliation(string(result.Status), time.Since(start))
		return result, nil
	}

	first, err := s.settle(ctx, enrollment, plan, programName)
	if err != nil {
		return nil, err
	}

	s.dispatchSideEffects(ctx, enrollment, first)

	s.metrics.RecordReconciliation(string(result.Status), time.Since(start))
	return result, nil
}

// settle advances the enrollment and the invoice ledger. The enrollment write
// comes first and is fatal on failure; the invoice branch depends on the
// ledger classification.
func (s *ReconciliationService) settle(ctx context.Context, enrollment *models.Enrollment, plan PaymentPlan, programName string) (*models.Invoice, error) {
	if err := s.enrollments.MarkEnrolled(ctx, enrollment.ID); err != nil {
		s.logger.Error("enrollment transition failed",
			zap.String("enrollment_id", enrollment.ID),
			zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrConfirmationFailed.Code, appErrors.ErrConfirmationFailed.Status, appErrors.ErrConfirmationFailed.Message)
	}

	now := time.Now().UTC()

	switch plan.Kind {
	case PlanNoInvoices:
		invoice := s.buildFullPaymentInvoice(enrollment, programName, now)
		if err := s.invoices.Create(ctx, invoice); err != nil {
			// The enrollment is already enrolled; losing the fallback invoice
			// is an accepted inconsistency window, not a run failure.
			s.logger.Warn("fallback invoice creation failed",
				zap.String("enrollment_id", enrollment.ID),
				zap.Error(err))
			return nil, nil
		}
		return invoice, nil

	default:
		first := plan.First
		if first.Status == models.InvoiceStatusPending {
			settled, err := s.invoices.SettlePending(ctx, first.ID, now)
			if err != nil {
				s.logger.Error("invoice settlement failed",
					zap.String("enrollment_id", enrollment.ID),
					zap.String("invoice_id", first.ID),
					zap.Error(err))
				return nil, appErrors.Wrap(err, appErrors.ErrConfirmationFailed.Code, appErrors.ErrConfirmationFailed.Status, appErrors.ErrConfirmationFailed.Message)
			}
			if settled {
				first.Status = models.InvoiceStatusPaid
				first.PaidAt = &now
			}
		}
		return first, nil
	}
}

// dispatchSideEffects claims the durable settlement marker on the first
// invoice and, exactly once per claim, fires the matricula and coupon
// executors. Each executor is isolated: its failure cannot affect the other
// or roll back the settlement already committed.
func (s *ReconciliationService) dispatchSideEffects(ctx context.Context, enrollment *models.Enrollment, first *models.Invoice) {
	if first == nil {
		return
	}
	if first.SettledAt != nil {
		s.logger.Debug("side effects already dispatched",
			zap.String("invoice_id", first.ID),
			zap.Time("settled_at", *first.SettledAt))
		return
	}

	claimed, err := s.invoices.ClaimSettlement(ctx, first.ID, time.Now().UTC())
	if err != nil {
		// Unknown claim state: skip dispatch rather than risk a duplicate
		// coupon increment or matricula call.
		s.metrics.RecordSideEffectFailure("claim")
		s.logger.Error("settlement claim failed",
			zap.String("invoice_id", first.ID),
			zap.Error(err))
		return
	}
	if !claimed {
		s.logger.Debug("side effects already dispatched",
			zap.String("invoice_id", first.ID))
		return
	}

	s.matricula.Execute(ctx, enrollment.StudentID, first.Meta)
	s.coupon.Execute(ctx, first.Meta.CouponCode())
}

// paymentReference derives the provider lookup key: the transaction id the
// checkout flow stored on the first invoice, else the enrollment id itself.
// The latter is a weak reference; the resolver's optimistic fallback is the
// safety net when the provider does not recognise it.
func (s *ReconciliationService) paymentReference(enrollment *models.Enrollment, plan PaymentPlan) string {
	if plan.First != nil {
		if ref := plan.First.Meta.TransactionID(); ref != "" {
			return ref
		}
	}
	return enrollment.ID
}

func (s *ReconciliationService) buildFullPaymentInvoice(enrollment *models.Enrollment, programName string, now time.Time) *models.Invoice {
	return &models.Invoice{
		EnrollmentID: enrollment.ID,
		Label:        fmt.Sprintf("Pago completo - %s", programName),
		Amount:       enrollment.AgreedPrice,
		DueDate:      now,
		Status:       models.InvoiceStatusPaid,
		PaidAt:       &now,
		// The marker is stamped at creation: a fresh full-payment invoice
		// carries no coupon or matricula meta, so there is nothing to claim.
		SettledAt: &now,
		Meta: models.InvoiceMeta{
			models.MetaPaymentMethod: "full",
			models.MetaPaymentNumber: 1,
			models.MetaTotalPayments: 1,
		},
	}
}

func (s *ReconciliationService) programName(ctx context.Context, cohortID string) string {
	cacheKey := "cohort_context:" + cohortID

	var cached models.CohortContext
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return cached.ProgramName
	}

	cohortCtx, err := s.cohorts.FindContext(ctx, cohortID)
	if err != nil {
		s.logger.Warn("cohort context lookup failed",
			zap.String("cohort_id", cohortID),
			zap.Error(err))
		return ""
	}
	s.cache.Set(ctx, cacheKey, cohortCtx, 0)
	return cohortCtx.ProgramName
}

func (s *ReconciliationService) acquire(enrollmentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[enrollmentID]; busy {
		return false
	}
	s.inFlight[enrollmentID] = struct{}{}
	return true
}

func (s *ReconciliationService) release(enrollmentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, enrollmentID)
}
