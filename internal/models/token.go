package models

import "github.com/golang-jwt/jwt/v5"

// UserRole distinguishes admin operators from regular users.
type UserRole string

// Roles accepted on admin routes.
const (
	RoleAdmin UserRole = "ADMIN"
	RoleStaff UserRole = "STAFF"
)

// JWTClaims are the access-token claims issued by the identity service.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	Email  string   `json:"email"`
	jwt.RegisteredClaims
}
