package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-billing-api/internal/models"
	appErrors "github.com/noah-isme/academy-billing-api/pkg/errors"
)

type couponRepository interface {
	FindByCode(ctx context.Context, code string) (*models.DiscountCoupon, error)
	Create(ctx context.Context, coupon *models.DiscountCoupon) error
}

// CreateCouponRequest describes coupon creation payload.
type CreateCouponRequest struct {
	Code string `json:"code" validate:"required,min=3,max=32"`
}

// CouponService manages discount coupons for the admin surface. Redemption
// counting belongs to the reconciliation engine's coupon executor, not here.
type CouponService struct {
	repo      couponRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCouponService constructs CouponService.
func NewCouponService(repo couponRepository, validate *validator.Validate, logger *zap.Logger) *CouponService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CouponService{repo: repo, validator: validate, logger: logger}
}

// Get looks a coupon up by code, case-insensitively.
func (s *CouponService) Get(ctx context.Context, code string) (*models.DiscountCoupon, error) {
	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "coupon not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load coupon")
	}
	return coupon, nil
}

// Create registers a new coupon with a zero usage count.
func (s *CouponService) Create(ctx context.Context, req CreateCouponRequest) (*models.DiscountCoupon, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid coupon payload")
	}
	if _, err := s.repo.FindByCode(ctx, req.Code); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "coupon code already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate coupon code")
	}

	coupon := &models.DiscountCoupon{Code: strings.ToUpper(strings.TrimSpace(req.Code))}
	if err := s.repo.Create(ctx, coupon); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create coupon")
	}
	return coupon, nil
}
