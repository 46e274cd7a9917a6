package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-billing-api/internal/models"
	"github.com/noah-isme/academy-billing-api/pkg/config"
)

func signTestToken(t *testing.T, secret string, claims models.JWTClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestTokenServiceValidateToken(t *testing.T) {
	svc := NewTokenService(config.JWTConfig{Secret: "test-secret"})

	signed := signTestToken(t, "test-secret", models.JWTClaims{
		UserID: "usr-1",
		Role:   models.RoleAdmin,
		Email:  "ops@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := svc.ValidateToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "usr-1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestTokenServiceRejectsWrongSecret(t *testing.T) {
	svc := NewTokenService(config.JWTConfig{Secret: "test-secret"})

	signed := signTestToken(t, "other-secret", models.JWTClaims{UserID: "usr-1"})

	_, err := svc.ValidateToken(signed)
	assert.Error(t, err)
}

func TestTokenServiceRejectsExpiredToken(t *testing.T) {
	svc := NewTokenService(config.JWTConfig{Secret: "test-secret"})

	signed := signTestToken(t, "test-secret", models.JWTClaims{
		UserID: "usr-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	_, err := svc.ValidateToken(signed)
	assert.Error(t, err)
}

func TestTokenServiceRejectsGarbage(t *testing.T) {
	svc := NewTokenService(config.JWTConfig{Secret: "test-secret"})

	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}
