package auth

import (
	"context"
	"time"
)

// SigningAlgorithm is the only JWT algorithm issued or accepted.
const SigningAlgorithm = "HS256"

// DefaultTokenLifetime is the access token lifetime when none is configured.
const DefaultTokenLifetime = 30 * time.Minute

// JWTService defines operations for managing JWT access tokens.
type JWTService interface {
	// GenerateToken creates a signed access token whose subject is the
	// user's email. It returns the token and its absolute expiry.
	GenerateToken(ctx context.Context, email string) (string, time.Time, error)

	// ValidateToken verifies signature, algorithm and expiry and extracts the claims.
	// Returns ErrExpiredToken for an expired token and ErrInvalidToken otherwise.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims holds the validated contents of an access token.
type Claims struct {
	// Subject is the email of the user the token was issued for.
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
