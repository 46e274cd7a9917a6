package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/academy-billing-api/internal/models"
)

type matriculaSettler interface {
	MarkPaid(ctx context.Context, studentID string) error
}

type couponStore interface {
	FindByCode(ctx context.Context, code string) (*models.DiscountCoupon, error)
	IncrementUses(ctx context.Context, id string) error
}

// MatriculaExecutor settles the one-time registration fee with the external
// collaborator. Failures are logged and counted, never surfaced: a missed
// settlement call must not disturb an already confirmed enrollment.
type MatriculaExecutor struct {
	settler matriculaSettler
	metrics *MetricsService
	logger  *zap.Logger
}

// NewMatriculaExecutor constructs a MatriculaExecutor.
func NewMatriculaExecutor(settler matriculaSettler, metrics *MetricsService, logger *zap.Logger) *MatriculaExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatriculaExecutor{settler: settler, metrics: metrics, logger: logger}
}

// Execute invokes matricula settlement when the first invoice's meta says a
// fee was bundled with a positive amount. Anything else is a no-op.
func (e *MatriculaExecutor) Execute(ctx context.Context, studentID string, meta models.InvoiceMeta) {
	if !meta.MatriculaAdded() || meta.MatriculaAmount() <= 0 {
		return
	}
	if err := e.settler.MarkPaid(ctx, studentID); err != nil {
		e.metrics.RecordSideEffectFailure("matricula")
		e.logger.Error("matricula settlement failed",
			zap.String("student_id", studentID),
			zap.Int64("matricula_amount", meta.MatriculaAmount()),
			zap.Error(err))
	}
}

// CouponExecutor increments the redemption counter of the coupon named in the
// first invoice's meta. Lookup is case-insensitive; failures are logged and
// counted, never surfaced.
type CouponExecutor struct {
	coupons couponStore
	metrics *MetricsService
	logger  *zap.Logger
}

// NewCouponExecutor constructs a CouponExecutor.
func NewCouponExecutor(coupons couponStore, metrics *MetricsService, logger *zap.Logger) *CouponExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CouponExecutor{coupons: coupons, metrics: metrics, logger: logger}
}

// Execute increments the coupon's uses_count by exactly one. An empty code or
// an unknown coupon is a no-op.
func (e *CouponExecutor) Execute(ctx context.Context, code string) {
	if code == "" {
		return
	}
	coupon, err := e.coupons.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			e.logger.Warn("coupon not found for redemption", zap.String("code", code))
			return
		}
		e.metrics.RecordSideEffectFailure("coupon")
		e.logger.Error("coupon lookup failed", zap.String("code", code), zap.Error(err))
		return
	}
	if err := e.coupons.IncrementUses(ctx, coupon.ID); err != nil {
		e.metrics.RecordSideEffectFailure("coupon")
		e.logger.Error("coupon increment failed",
			zap.String("code", code),
			zap.String("coupon_id", coupon.ID),
			zap.Error(err))
	}
}
