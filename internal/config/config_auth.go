package config

import "time"

// AuthConfig controls bearer-token issuance and validation (C1).
type AuthConfig struct {
	JWTSecret   string        `yaml:"jwt_secret"`
	TokenExpiry time.Duration `yaml:"token_expiry"`

	// Dev allows unsigned/anonymous developer tokens for local testing.
	// Never set in a cloud deployment.
	Dev bool `yaml:"dev"`
}
