package auth

import (
	"context"
	"time"

	"github.com/phrazzld/taktplan/internal/config"
)

// TestJWTSecret is a signing secret long enough for NewJWTService.
const TestJWTSecret = "test-jwt-secret-that-is-32-chars-long"

// DefaultJWTConfig returns a standard configuration for JWT authentication suitable for testing.
func DefaultJWTConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:              TestJWTSecret,
		TokenLifetimeMinutes:   30,
		BcryptCost:             4,
		LoginAttemptsPerMinute: 5,
	}
}

// NewTestJWTService creates a JWT service with an injected clock.
func NewTestJWTService(secret string, lifetime time.Duration, now func() time.Time) JWTService {
	if now == nil {
		now = time.Now
	}
	return &hmacJWTService{
		signingKey:    []byte(secret),
		tokenLifetime: lifetime,
		timeFunc:      now,
	}
}

// AuthHeader returns a "Bearer <token>" header value for email.
func AuthHeader(svc JWTService, email string) (string, error) {
	token, _, err := svc.GenerateToken(context.Background(), email)
	if err != nil {
		return "", err
	}
	return "Bearer " + token, nil
}
