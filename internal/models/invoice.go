package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// InvoiceStatus represents the payment state of an invoice. Paid is terminal.
type InvoiceStatus string

// Possible invoice statuses.
const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
)

// Meta keys written by the checkout flow and read during reconciliation.
const (
	MetaPaymentMethod   = "payment_method"
	MetaProductType     = "product_type"
	MetaProductID       = "product_id"
	MetaPaymentNumber   = "payment_number"
	MetaTotalPayments   = "total_payments"
	MetaMatriculaAdded  = "matricula_added"
	MetaMatriculaAmount = "matricula_amount"
	MetaCouponCode      = "coupon_code"
	MetaTransactionID   = "transaction_id"
)

// InvoiceMeta is the open key/value bag stored as JSONB alongside each invoice.
// Checkout writes it; reconciliation only reads it, so every accessor tolerates
// absent keys and wrong-typed values.
type InvoiceMeta map[string]interface{}

// Value implements driver.Valuer for JSONB storage.
func (m InvoiceMeta) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for JSONB retrieval.
func (m *InvoiceMeta) Scan(src interface{}) error {
	if src == nil {
		*m = InvoiceMeta{}
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported invoice meta type %T", src)
	}
	if len(raw) == 0 {
		*m = InvoiceMeta{}
		return nil
	}
	return json.Unmarshal(raw, m)
}

// PaymentNumber returns the 1-based installment position. The second return is
// false when the key is absent or not a usable number.
func (m InvoiceMeta) PaymentNumber() (int, bool) {
	return m.intValue(MetaPaymentNumber)
}

// TotalPayments returns the declared size of the installment plan.
func (m InvoiceMeta) TotalPayments() (int, bool) {
	return m.intValue(MetaTotalPayments)
}

// CouponCode returns the redeemed coupon code, empty when absent.
func (m InvoiceMeta) CouponCode() string {
	s, _ := m[MetaCouponCode].(string)
	return s
}

// TransactionID returns the provider payment reference, empty when absent.
func (m InvoiceMeta) TransactionID() string {
	s, _ := m[MetaTransactionID].(string)
	return s
}

// MatriculaAdded reports whether a matricula fee was bundled into checkout.
func (m InvoiceMeta) MatriculaAdded() bool {
	b, _ := m[MetaMatriculaAdded].(bool)
	return b
}

// MatriculaAmount returns the bundled matricula fee, zero when absent.
func (m InvoiceMeta) MatriculaAmount() int64 {
	switch v := m[MetaMatriculaAmount].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

func (m InvoiceMeta) intValue(key string) (int, bool) {
	switch v := m[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), true
		}
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n, true
		}
	}
	return 0, false
}

// Invoice is one billable line item tied to an enrollment, either a full
// payment or a single installment.
type Invoice struct {
	ID           string        `db:"id" json:"id"`
	EnrollmentID string        `db:"enrollment_id" json:"enrollment_id"`
	Label        string        `db:"label" json:"label"`
	Amount       int64         `db:"amount" json:"amount"`
	DueDate      time.Time     `db:"due_date" json:"due_date"`
	Status       InvoiceStatus `db:"status" json:"status"`
	PaidAt       *time.Time    `db:"paid_at" json:"paid_at,omitempty"`
	SettledAt    *time.Time    `db:"settled_at" json:"settled_at,omitempty"`
	Meta         InvoiceMeta   `db:"meta" json:"meta"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
}
