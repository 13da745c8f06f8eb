package auth

import (
	"crypto/subtle"

	apperrors "github.com/yanqian/usergate/pkg/errors"
)

// CredentialVerifier checks a username/password pair against the configured admin credential.
type CredentialVerifier struct {
	creds AdminCredentials
}

// NewCredentialVerifier builds a verifier. Empty credentials are accepted here and
// reported as auth_not_configured on every Verify call.
func NewCredentialVerifier(creds AdminCredentials) *CredentialVerifier {
	return &CredentialVerifier{creds: creds}
}

// Verify returns the accepted identity.
func (v *CredentialVerifier) Verify(username, password string) (string, error) {
	if !v.creds.Configured() {
		return "", apperrors.Wrap("auth_not_configured", "login is not configured", ErrCredentialsNotConfigured)
	}
	if username == "" || password == "" {
		return "", apperrors.Wrap("invalid_credentials", "invalid username or password", nil)
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(v.creds.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(v.creds.Password)) == 1
	if !userOK || !passOK {
		return "", apperrors.Wrap("invalid_credentials", "invalid username or password", nil)
	}
	return username, nil
}
