package auth

import (
	"errors"
	"time"
)

// DefaultTokenTTL is the token lifetime used when configuration does not set one.
const DefaultTokenTTL = time.Hour

const minSecretLen = 32

// Config drives authentication behavior.
type Config struct {
	Signing SigningConfig
	Admin   AdminCredentials
}

// SigningConfig holds the key material and the claims every token is bound to.
// It is built once at startup and never changes afterwards.
type SigningConfig struct {
	Secret   string
	Issuer   string
	Audience string
	TokenTTL time.Duration
}

// Validate reports whether the signing configuration can be used.
func (c SigningConfig) Validate() error {
	if len(c.Secret) < minSecretLen {
		return errors.New("signing secret must be at least 32 bytes")
	}
	if c.Issuer == "" {
		return errors.New("token issuer cannot be empty")
	}
	if c.Audience == "" {
		return errors.New("token audience cannot be empty")
	}
	if c.TokenTTL <= 0 {
		return errors.New("token lifetime must be positive")
	}
	return nil
}

// AdminCredentials is the single shared credential accepted by Login.
type AdminCredentials struct {
	Username string
	Password string
}

// Configured reports whether both halves of the credential are present.
func (c AdminCredentials) Configured() bool {
	return c.Username != "" && c.Password != ""
}

// LoginRequest captures login details.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse returns the signed token.
type LoginResponse struct {
	Token string `json:"token"`
}

// IssuedToken is a signed bearer token and the instant it stops being valid.
type IssuedToken struct {
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Principal is the verified caller attached to a single request.
type Principal struct {
	Identity  string            `json:"identity"`
	Claims    map[string]string `json:"claims"`
	ExpiresAt time.Time         `json:"expiresAt"`
}
