package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-billing-api/internal/models"
)

func TestMatriculaExecutorGating(t *testing.T) {
	tests := []struct {
		name     string
		meta     models.InvoiceMeta
		wantCall bool
	}{
		{
			name: "added with positive amount settles",
			meta: models.InvoiceMeta{
				models.MetaMatriculaAdded:  true,
				models.MetaMatriculaAmount: float64(150000),
			},
			wantCall: true,
		},
		{
			name: "not added is a no-op",
			meta: models.InvoiceMeta{
				models.MetaMatriculaAmount: float64(150000),
			},
			wantCall: false,
		},
		{
			name: "added with zero amount is a no-op",
			meta: models.InvoiceMeta{
				models.MetaMatriculaAdded:  true,
				models.MetaMatriculaAmount: float64(0),
			},
			wantCall: false,
		},
		{
			name:     "empty meta is a no-op",
			meta:     models.InvoiceMeta{},
			wantCall: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settler := &mockSettler{}
			executor := NewMatriculaExecutor(settler, NewMetricsService(), zap.NewNop())

			executor.Execute(context.Background(), "stu-1", tt.meta)

			if tt.wantCall {
				assert.Equal(t, []string{"stu-1"}, settler.calls)
			} else {
				assert.Empty(t, settler.calls)
			}
		})
	}
}

func TestMatriculaExecutorSwallowsSettlerFailure(t *testing.T) {
	settler := &mockSettler{err: errors.New("service unavailable")}
	executor := NewMatriculaExecutor(settler, NewMetricsService(), zap.NewNop())

	executor.Execute(context.Background(), "stu-1", models.InvoiceMeta{
		models.MetaMatriculaAdded:  true,
		models.MetaMatriculaAmount: float64(150000),
	})

	assert.Equal(t, []string{"stu-1"}, settler.calls)
}

func TestCouponExecutorIncrementsOnce(t *testing.T) {
	store := &mockCouponStore{coupons: map[string]models.DiscountCoupon{
		"WELCOME10": {ID: "cpn-1", Code: "WELCOME10", UsesCount: 3},
	}}
	executor := NewCouponExecutor(store, NewMetricsService(), zap.NewNop())

	executor.Execute(context.Background(), "welcome10")

	assert.Equal(t, 1, store.increments["cpn-1"], "lowercase code matches the stored uppercase coupon")
}

func TestCouponExecutorEmptyCodeIsNoOp(t *testing.T) {
	store := &mockCouponStore{}
	executor := NewCouponExecutor(store, NewMetricsService(), zap.NewNop())

	executor.Execute(context.Background(), "")

	assert.Empty(t, store.increments)
}

func TestCouponExecutorUnknownCouponIsNoOp(t *testing.T) {
	store := &mockCouponStore{coupons: map[string]models.DiscountCoupon{}}
	executor := NewCouponExecutor(store, NewMetricsService(), zap.NewNop())

	executor.Execute(context.Background(), "GHOST")

	assert.Empty(t, store.increments)
}

func TestCouponExecutorSwallowsStoreFailures(t *testing.T) {
	t.Run("lookup failure", func(t *testing.T) {
		store := &mockCouponStore{findErr: errors.New("connection reset")}
		executor := NewCouponExecutor(store, NewMetricsService(), zap.NewNop())

		executor.Execute(context.Background(), "WELCOME10")

		assert.Empty(t, store.increments)
	})

	t.Run("increment failure", func(t *testing.T) {
		store := &mockCouponStore{
			coupons: map[string]models.DiscountCoupon{
				"WELCOME10": {ID: "cpn-1", Code: "WELCOME10"},
			},
			incErr: errors.New("connection reset"),
		}
		executor := NewCouponExecutor(store, NewMetricsService(), zap.NewNop())

		executor.Execute(context.Background(), "WELCOME10")

		assert.Empty(t, store.increments)
	})
}
