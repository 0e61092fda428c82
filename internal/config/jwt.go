package config

import (
	"fmt"
	"time"
)

// MinSecretLength is the shortest accepted JWT_SECRET.
const MinSecretLength = 16

// JWTConfig enables bearer token checks on the mutating API routes.
type JWTConfig struct {
	Secret          string
	Issuer          string
	ExpirationHours int
}

// NewJWTConfig reads JWT_SECRET, JWT_ISSUER and JWT_EXPIRATION_HOURS.
// A nil config without error means JWT_SECRET is unset and the API stays
// open.
func NewJWTConfig() (*JWTConfig, error) {
	cfg := JWTConfig{Issuer: "research-analyst", ExpirationHours: 24}
	setString(&cfg.Secret, "JWT_SECRET")
	if cfg.Secret == "" {
		return nil, nil
	}
	setString(&cfg.Issuer, "JWT_ISSUER")
	if err := setInt(&cfg.ExpirationHours, "JWT_EXPIRATION_HOURS"); err != nil {
		return nil, err
	}

	switch {
	case len(cfg.Secret) < MinSecretLength:
		return nil, fmt.Errorf("JWT_SECRET must be at least %d characters", MinSecretLength)
	case cfg.ExpirationHours < 1:
		return nil, fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", cfg.ExpirationHours)
	}
	return &cfg, nil
}

// TokenTTL is the lifetime of an issued token.
func (c *JWTConfig) TokenTTL() time.Duration {
	return time.Duration(c.ExpirationHours) * time.Hour
}
