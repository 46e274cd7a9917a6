package models

import "time"

// DiscountCoupon tracks redemption counts for a discount code. Codes are
// stored uppercased; lookups normalise case before querying.
type DiscountCoupon struct {
	ID        string    `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	UsesCount int       `db:"uses_count" json:"uses_count"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
