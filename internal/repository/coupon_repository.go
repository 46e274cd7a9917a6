package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academy-billing-api/internal/models"
)

// CouponRepository handles persistence of discount coupons.
type CouponRepository struct {
	db *sqlx.DB
}

// NewCouponRepository constructs the repository.
func NewCouponRepository(db *sqlx.DB) *CouponRepository {
	return &CouponRepository{db: db}
}

// FindByCode looks a coupon up by its code. Codes are stored uppercased, so
// the lookup normalises before querying.
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*models.DiscountCoupon, error) {
	const query = `SELECT id, code, uses_count, created_at FROM discount_coupons WHERE code = $1`
	var coupon models.DiscountCoupon
	if err := r.db.GetContext(ctx, &coupon, query, strings.ToUpper(strings.TrimSpace(code))); err != nil {
		return nil, err
	}
	return &coupon, nil
}

// Create persists a new coupon with its code uppercased.
func (r *CouponRepository) Create(ctx context.Context, coupon *models.DiscountCoupon) error {
	if coupon.ID == "" {
		coupon.ID = uuid.NewString()
	}
	if coupon.CreatedAt.IsZero() {
		coupon.CreatedAt = time.Now().UTC()
	}
	coupon.Code = strings.ToUpper(strings.TrimSpace(coupon.Code))
	const query = `INSERT INTO discount_coupons (id, code, uses_count, created_at)
        VALUES (:id, :code, :uses_count, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, coupon); err != nil {
		return fmt.Errorf("create coupon: %w", err)
	}
	return nil
}

// IncrementUses bumps the redemption counter by exactly one.
func (r *CouponRepository) IncrementUses(ctx context.Context, id string) error {
	const query = `UPDATE discount_coupons SET uses_count = uses_count + 1 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("increment coupon uses: %w", err)
	}
	return nil
}
