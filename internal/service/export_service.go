package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/noah-isme/academy-billing-api/internal/models"
	appErrors "github.com/noah-isme/academy-billing-api/pkg/errors"
	"github.com/noah-isme/academy-billing-api/pkg/export"
)

// ExportService renders an enrollment's invoice ledger as CSV and paid
// invoices as a PDF receipt.
type ExportService struct {
	enrollments *EnrollmentService
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
}

// NewExportService constructs ExportService.
func NewExportService(enrollments *EnrollmentService) *ExportService {
	return &ExportService{
		enrollments: enrollments,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
	}
}

var invoiceHeaders = []string{"Label", "Amount", "Due Date", "Status", "Paid At"}

// InvoicesCSV exports the full invoice ledger of one enrollment.
func (s *ExportService) InvoicesCSV(ctx context.Context, enrollmentID string) ([]byte, string, error) {
	ledger, err := s.enrollments.Ledger(ctx, enrollmentID)
	if err != nil {
		return nil, "", err
	}
	payload, err := s.csv.Render(export.Dataset{Headers: invoiceHeaders, Rows: invoiceRows(ledger.Invoices, false)})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render invoice export")
	}
	filename := fmt.Sprintf("invoices-%s.csv", enrollmentID)
	return payload, filename, nil
}

// Receipt renders a PDF receipt covering the paid invoices of one enrollment.
func (s *ExportService) Receipt(ctx context.Context, enrollmentID string) ([]byte, string, error) {
	ledger, err := s.enrollments.Ledger(ctx, enrollmentID)
	if err != nil {
		return nil, "", err
	}

	var paid []models.Invoice
	var total int64
	for _, invoice := range ledger.Invoices {
		if invoice.Status == models.InvoiceStatusPaid {
			paid = append(paid, invoice)
			total += invoice.Amount
		}
	}
	if len(paid) == 0 {
		return nil, "", appErrors.Clone(appErrors.ErrPreconditionFailed, "no paid invoices to receipt")
	}

	title := fmt.Sprintf("Recibo de pago - %s", ledger.ProgramName)
	footer := fmt.Sprintf("Total pagado: %s", strconv.FormatInt(total, 10))
	payload, err := s.pdf.Render(export.Dataset{Headers: invoiceHeaders, Rows: invoiceRows(paid, true)}, title, footer)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render receipt")
	}
	filename := fmt.Sprintf("receipt-%s.pdf", enrollmentID)
	return payload, filename, nil
}

func invoiceRows(invoices []models.Invoice, paidOnly bool) []map[string]string {
	rows := make([]map[string]string, 0, len(invoices))
	for _, invoice := range invoices {
		if paidOnly && invoice.Status != models.InvoiceStatusPaid {
			continue
		}
		paidAt := ""
		if invoice.PaidAt != nil {
			paidAt = invoice.PaidAt.Format(time.RFC3339)
		}
		rows = append(rows, map[string]string{
			"Label":    invoice.Label,
			"Amount":   strconv.FormatInt(invoice.Amount, 10),
			"Due Date": invoice.DueDate.Format("2006-01-02"),
			"Status":   string(invoice.Status),
			"Paid At":  paidAt,
		})
	}
	return rows
}
