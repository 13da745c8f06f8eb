package auth

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/yanqian/usergate/pkg/errors"
	"github.com/yanqian/usergate/pkg/util"
)

type tokenClaims struct {
	jwt.RegisteredClaims
	Name string `json:"name"`
}

// TokenIssuer signs HS256 bearer tokens for verified identities.
type TokenIssuer struct {
	cfg SigningConfig
	key []byte
	now util.Clock
}

// NewTokenIssuer validates cfg and returns an issuer reading time from now.
func NewTokenIssuer(cfg SigningConfig, now util.Clock) (*TokenIssuer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}
	if now == nil {
		now = util.NowUTC
	}
	return &TokenIssuer{cfg: cfg, key: []byte(cfg.Secret), now: now}, nil
}

// Issue produces a token for identity valid for the configured lifetime.
func (i *TokenIssuer) Issue(identity string) (IssuedToken, error) {
	now := i.now()
	expires := now.Add(i.cfg.TokenTTL)
	claims := tokenClaims{
		Name: identity,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.cfg.Issuer,
			Audience:  jwt.ClaimStrings{i.cfg.Audience},
			Subject:   identity,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return IssuedToken{}, apperrors.Wrap("auth_error", "failed to sign token", err)
	}
	return IssuedToken{
		Value:     signed,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// TokenValidator verifies tokens produced by a TokenIssuer with the same SigningConfig.
type TokenValidator struct {
	cfg    SigningConfig
	key    []byte
	now    util.Clock
	parser *jwt.Parser
}

// NewTokenValidator validates cfg and returns a validator reading time from now.
func NewTokenValidator(cfg SigningConfig, now util.Clock) (*TokenValidator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("token validator: %w", err)
	}
	if now == nil {
		now = util.NowUTC
	}
	return &TokenValidator{
		cfg: cfg,
		key: []byte(cfg.Secret),
		now: now,
		// Registered claims are checked below so the order and the clock are ours.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}, nil
}

// Validate checks signature, issuer, audience and expiry, in that order, and
// returns the principal carried by the token. Every failure is an invalid_token
// error wrapping one of the ErrToken* reasons.
func (v *TokenValidator) Validate(raw string) (Principal, error) {
	claims := &tokenClaims{}
	parsed, err := v.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	})
	if err != nil || !parsed.Valid {
		return Principal{}, reject(ErrTokenSignature)
	}
	if claims.Issuer != v.cfg.Issuer {
		return Principal{}, reject(ErrTokenIssuer)
	}
	if !slices.Contains(claims.Audience, v.cfg.Audience) {
		return Principal{}, reject(ErrTokenAudience)
	}
	if claims.ExpiresAt == nil || !v.now().Before(claims.ExpiresAt.Time) {
		return Principal{}, reject(ErrTokenExpired)
	}
	if claims.Subject == "" {
		return Principal{}, reject(ErrTokenMissingIdentity)
	}
	return toPrincipal(claims), nil
}

func reject(reason error) error {
	return apperrors.Wrap("invalid_token", "unauthorized", reason)
}

func toPrincipal(claims *tokenClaims) Principal {
	values := map[string]string{
		"sub": claims.Subject,
		"iss": claims.Issuer,
		"aud": strings.Join(claims.Audience, ","),
		"exp": strconv.FormatInt(claims.ExpiresAt.Unix(), 10),
	}
	if claims.Name != "" {
		values["name"] = claims.Name
	}
	if claims.ID != "" {
		values["jti"] = claims.ID
	}
	if claims.IssuedAt != nil {
		values["iat"] = strconv.FormatInt(claims.IssuedAt.Unix(), 10)
	}
	return Principal{
		Identity:  claims.Subject,
		Claims:    values,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}
}
