package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-billing-api/internal/models"
)

func newInvoiceRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestInvoiceRepositoryListByEnrollment(t *testing.T) {
	db, mock, cleanup := newInvoiceRepoMock(t)
	defer cleanup()

	repo := NewInvoiceRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "enrollment_id", "label", "amount", "due_date", "status", "paid_at", "settled_at", "meta", "created_at"}).
		AddRow("inv-1", "E1", "Cuota 1 de 2", int64(600000), now, "pending", nil, nil, []byte(`{"payment_number":1,"total_payments":2,"coupon_code":"WELCOME10"}`), now).
		AddRow("inv-2", "E1", "Cuota 2 de 2", int64(600000), now.AddDate(0, 1, 0), "pending", nil, nil, []byte(`{"payment_number":2,"total_payments":2}`), now)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at ASC")).
		WithArgs("E1").
		WillReturnRows(rows)

	invoices, err := repo.ListByEnrollment(context.Background(), "E1")
	require.NoError(t, err)
	require.Len(t, invoices, 2)

	number, ok := invoices[0].Meta.PaymentNumber()
	require.True(t, ok, "JSONB meta round-trips through the scanner")
	require.Equal(t, 1, number)
	require.Equal(t, "WELCOME10", invoices[0].Meta.CouponCode())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepositoryCreateFillsDefaults(t *testing.T) {
	db, mock, cleanup := newInvoiceRepoMock(t)
	defer cleanup()

	repo := NewInvoiceRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO invoices")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	invoice := &models.Invoice{EnrollmentID: "E1", Label: "Pago completo - Bootcamp X", Amount: 1200000}
	require.NoError(t, repo.Create(context.Background(), invoice))
	require.NotEmpty(t, invoice.ID)
	require.Equal(t, models.InvoiceStatusPending, invoice.Status)
	require.NotNil(t, invoice.Meta)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepositorySettlePending(t *testing.T) {
	db, mock, cleanup := newInvoiceRepoMock(t)
	defer cleanup()

	repo := NewInvoiceRepository(db)
	paidAt := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE invoices SET status = $2, paid_at = $3 WHERE id = $1 AND status = $4")).
		WithArgs("inv-1", string(models.InvoiceStatusPaid), paidAt, string(models.InvoiceStatusPending)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	settled, err := repo.SettlePending(context.Background(), "inv-1", paidAt)
	require.NoError(t, err)
	require.True(t, settled)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepositorySettlePendingAlreadyPaid(t *testing.T) {
	db, mock, cleanup := newInvoiceRepoMock(t)
	defer cleanup()

	repo := NewInvoiceRepository(db)
	paidAt := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE invoices SET status = $2, paid_at = $3 WHERE id = $1 AND status = $4")).
		WithArgs("inv-1", string(models.InvoiceStatusPaid), paidAt, string(models.InvoiceStatusPending)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	settled, err := repo.SettlePending(context.Background(), "inv-1", paidAt)
	require.NoError(t, err)
	require.False(t, settled, "a paid invoice is never rewritten")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepositoryClaimSettlement(t *testing.T) {
	db, mock, cleanup := newInvoiceRepoMock(t)
	defer cleanup()

	repo := NewInvoiceRepository(db)
	settledAt := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE invoices SET settled_at = $2 WHERE id = $1 AND settled_at IS NULL")).
		WithArgs("inv-1", settledAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	claimed, err := repo.ClaimSettlement(context.Background(), "inv-1", settledAt)
	require.NoError(t, err)
	require.True(t, claimed)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE invoices SET settled_at = $2 WHERE id = $1 AND settled_at IS NULL")).
		WithArgs("inv-1", settledAt).
		WillReturnResult(sqlmock.NewResult(0, 0))

	claimed, err = repo.ClaimSettlement(context.Background(), "inv-1", settledAt)
	require.NoError(t, err)
	require.False(t, claimed, "only the first claim wins")
	require.NoError(t, mock.ExpectationsWereMet())
}
