package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-billing-api/internal/models"
	appErrors "github.com/noah-isme/academy-billing-api/pkg/errors"
)

type mockCouponRepo struct {
	coupons map[string]models.DiscountCoupon
	created []models.DiscountCoupon
	findErr error
}

func (m *mockCouponRepo) FindByCode(ctx context.Context, code string) (*models.DiscountCoupon, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if c, ok := m.coupons[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCouponRepo) Create(ctx context.Context, coupon *models.DiscountCoupon) error {
	if coupon.ID == "" {
		coupon.ID = "cpn-new"
	}
	if m.coupons == nil {
		m.coupons = make(map[string]models.DiscountCoupon)
	}
	m.coupons[coupon.Code] = *coupon
	m.created = append(m.created, *coupon)
	return nil
}

func TestCouponServiceGet(t *testing.T) {
	repo := &mockCouponRepo{coupons: map[string]models.DiscountCoupon{
		"WELCOME10": {ID: "cpn-1", Code: "WELCOME10", UsesCount: 3},
	}}
	svc := NewCouponService(repo, nil, zap.NewNop())

	coupon, err := svc.Get(context.Background(), "welcome10")
	require.NoError(t, err)
	assert.Equal(t, "WELCOME10", coupon.Code)
	assert.Equal(t, 3, coupon.UsesCount)

	_, err = svc.Get(context.Background(), "GHOST")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCouponServiceCreate(t *testing.T) {
	repo := &mockCouponRepo{}
	svc := NewCouponService(repo, nil, zap.NewNop())

	coupon, err := svc.Create(context.Background(), CreateCouponRequest{Code: " spring26 "})
	require.NoError(t, err)
	assert.Equal(t, "SPRING26", coupon.Code, "codes are stored uppercased and trimmed")
	assert.Zero(t, coupon.UsesCount)
	require.Len(t, repo.created, 1)
}

func TestCouponServiceCreateRejectsDuplicate(t *testing.T) {
	repo := &mockCouponRepo{coupons: map[string]models.DiscountCoupon{
		"SPRING26": {ID: "cpn-1", Code: "SPRING26"},
	}}
	svc := NewCouponService(repo, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateCouponRequest{Code: "spring26"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.created)
}

func TestCouponServiceCreateValidation(t *testing.T) {
	repo := &mockCouponRepo{}
	svc := NewCouponService(repo, nil, zap.NewNop())

	for _, code := range []string{"", "ab", strings.Repeat("X", 33)} {
		_, err := svc.Create(context.Background(), CreateCouponRequest{Code: code})
		require.Error(t, err, "code %q must be rejected", code)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}
	assert.Empty(t, repo.created)
}

func TestCouponServiceCreateLookupFailure(t *testing.T) {
	repo := &mockCouponRepo{findErr: errors.New("connection reset")}
	svc := NewCouponService(repo, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateCouponRequest{Code: "SPRING26"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}
