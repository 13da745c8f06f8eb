package auth

import "errors"

// Token rejection reasons. They are logged, never returned to callers.
var (
	ErrTokenSignature       = errors.New("token signature invalid or token malformed")
	ErrTokenIssuer          = errors.New("token issuer mismatch")
	ErrTokenAudience        = errors.New("token audience mismatch")
	ErrTokenExpired         = errors.New("token expired")
	ErrTokenMissingIdentity = errors.New("token carries no identity")
)

// ErrCredentialsNotConfigured means no admin credential was provided at startup.
var ErrCredentialsNotConfigured = errors.New("admin credentials are not configured")
