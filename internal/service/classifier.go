package service

import "github.com/noah-isme/academy-billing-api/internal/models"

// PlanKind distinguishes the payment arrangements an invoice ledger can be in.
type PlanKind int

// Classifications of an enrollment's invoice ledger.
const (
	PlanNoInvoices PlanKind = iota
	PlanInstallment
	PlanSingleInvoice
)

func (k PlanKind) String() string {
	switch k {
	case PlanInstallment:
		return "installment"
	case PlanSingleInvoice:
		return "single"
	default:
		return "none"
	}
}

// PaymentPlan is the classifier's verdict over one enrollment's invoices.
// First is nil only for PlanNoInvoices.
type PaymentPlan struct {
	Kind  PlanKind
	First *models.Invoice
}

// ClassifyInvoices inspects the invoice rows of one enrollment and decides the
// payment arrangement. It is a pure function of the rows passed in: more than
// one row means an installment plan, exactly one a single invoice.
//
// For installment plans the first invoice is the row whose meta carries
// payment_number == 1. A missing or malformed marker does not positively
// identify a row as first, so classification falls back to ledger order.
func ClassifyInvoices(invoices []models.Invoice) PaymentPlan {
	switch len(invoices) {
	case 0:
		return PaymentPlan{Kind: PlanNoInvoices}
	case 1:
		return PaymentPlan{Kind: PlanSingleInvoice, First: &invoices[0]}
	}

	for i := range invoices {
		if n, ok := invoices[i].Meta.PaymentNumber(); ok && n == 1 {
			return PaymentPlan{Kind: PlanInstallment, First: &invoices[i]}
		}
	}
	return PaymentPlan{Kind: PlanInstallment, First: &invoices[0]}
}
