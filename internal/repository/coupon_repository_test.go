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

func newCouponRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestCouponRepositoryFindByCodeNormalises(t *testing.T) {
	db, mock, cleanup := newCouponRepoMock(t)
	defer cleanup()

	repo := NewCouponRepository(db)
	rows := sqlmock.NewRows([]string{"id", "code", "uses_count", "created_at"}).
		AddRow("cpn-1", "WELCOME10", 3, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, code, uses_count, created_at FROM discount_coupons WHERE code = $1")).
		WithArgs("WELCOME10").
		WillReturnRows(rows)

	coupon, err := repo.FindByCode(context.Background(), " welcome10 ")
	require.NoError(t, err)
	require.Equal(t, "WELCOME10", coupon.Code)
	require.Equal(t, 3, coupon.UsesCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCouponRepositoryCreateUppercasesCode(t *testing.T) {
	db, mock, cleanup := newCouponRepoMock(t)
	defer cleanup()

	repo := NewCouponRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO discount_coupons")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	coupon := &models.DiscountCoupon{Code: "spring26"}
	require.NoError(t, repo.Create(context.Background(), coupon))
	require.Equal(t, "SPRING26", coupon.Code)
	require.NotEmpty(t, coupon.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCouponRepositoryIncrementUses(t *testing.T) {
	db, mock, cleanup := newCouponRepoMock(t)
	defer cleanup()

	repo := NewCouponRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE discount_coupons SET uses_count = uses_count + 1 WHERE id = $1")).
		WithArgs("cpn-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.IncrementUses(context.Background(), "cpn-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
