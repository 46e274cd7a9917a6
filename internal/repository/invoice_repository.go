package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academy-billing-api/internal/models"
)

// InvoiceRepository handles persistence of the invoice ledger.
type InvoiceRepository struct {
	db *sqlx.DB
}

// NewInvoiceRepository constructs the repository.
func NewInvoiceRepository(db *sqlx.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// ListByEnrollment returns all invoice rows for one enrollment in creation
// order. The classifier relies on that order when meta carries no
// payment_number marker.
func (r *InvoiceRepository) ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.Invoice, error) {
	const query = `SELECT id, enrollment_id, label, amount, due_date, status, paid_at, settled_at, meta, created_at
        FROM invoices WHERE enrollment_id = $1 ORDER BY created_at ASC`
	var invoices []models.Invoice
	if err := r.db.SelectContext(ctx, &invoices, query, enrollmentID); err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return invoices, nil
}

// FindByID returns a single invoice row.
func (r *InvoiceRepository) FindByID(ctx context.Context, id string) (*models.Invoice, error) {
	const query = `SELECT id, enrollment_id, label, amount, due_date, status, paid_at, settled_at, meta, created_at
        FROM invoices WHERE id = $1`
	var invoice models.Invoice
	if err := r.db.GetContext(ctx, &invoice, query, id); err != nil {
		return nil, err
	}
	return &invoice, nil
}

// Create persists a new invoice row.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.NewString()
	}
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = time.Now().UTC()
	}
	if invoice.Status == "" {
		invoice.Status = models.InvoiceStatusPending
	}
	if invoice.Meta == nil {
		invoice.Meta = models.InvoiceMeta{}
	}
	const query = `INSERT INTO invoices (id, enrollment_id, label, amount, due_date, status, paid_at, settled_at, meta, created_at)
        VALUES (:id, :enrollment_id, :label, :amount, :due_date, :status, :paid_at, :settled_at, :meta, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, invoice); err != nil {
		return fmt.Errorf("create invoice: %w", err)
	}
	return nil
}

// SettlePending marks a pending invoice paid. Paid is terminal, so the update
// is a compare-and-set against the pending status; the boolean reports whether
// this call performed the transition.
func (r *InvoiceRepository) SettlePending(ctx context.Context, id string, paidAt time.Time) (bool, error) {
	const query = `UPDATE invoices SET status = $2, paid_at = $3 WHERE id = $1 AND status = $4`
	result, err := r.db.ExecContext(ctx, query, id, models.InvoiceStatusPaid, paidAt, models.InvoiceStatusPending)
	if err != nil {
		return false, fmt.Errorf("settle invoice: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("settle invoice: %w", err)
	}
	return affected > 0, nil
}

// ClaimSettlement stamps the durable side-effect marker on an invoice. Exactly
// one invocation wins the claim; later runs observe settled_at already set and
// skip side-effect dispatch.
func (r *InvoiceRepository) ClaimSettlement(ctx context.Context, id string, settledAt time.Time) (bool, error) {
	const query = `UPDATE invoices SET settled_at = $2 WHERE id = $1 AND settled_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, id, settledAt)
	if err != nil {
		return false, fmt.Errorf("claim settlement: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim settlement: %w", err)
	}
	return affected > 0, nil
}
