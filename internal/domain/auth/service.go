package auth

import (
	"context"
	"log/slog"
	"strings"

	apperrors "github.com/yanqian/usergate/pkg/errors"
	"github.com/yanqian/usergate/pkg/util"
)

// Service exposes authentication workflows.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
	ValidateToken(ctx context.Context, token string) (Principal, error)
}

type service struct {
	verifier  *CredentialVerifier
	issuer    *TokenIssuer
	validator *TokenValidator
	logger    *slog.Logger
}

// NewService constructs a Service instance. An invalid signing configuration is
// returned as an error so startup can abort.
func NewService(cfg Config, logger *slog.Logger) (Service, error) {
	return newService(cfg, util.NowUTC, logger)
}

func newService(cfg Config, now util.Clock, logger *slog.Logger) (*service, error) {
	issuer, err := NewTokenIssuer(cfg.Signing, now)
	if err != nil {
		return nil, err
	}
	validator, err := NewTokenValidator(cfg.Signing, now)
	if err != nil {
		return nil, err
	}
	logger = logger.With("component", "auth.service")
	if !cfg.Admin.Configured() {
		logger.Warn("admin credentials not configured, login will fail")
	}
	return &service{
		verifier:  NewCredentialVerifier(cfg.Admin),
		issuer:    issuer,
		validator: validator,
		logger:    logger,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	identity, err := s.verifier.Verify(req.Username, req.Password)
	if err != nil {
		if apperrors.IsCode(err, "invalid_credentials") {
			s.logger.Warn("login rejected", "username", req.Username)
		}
		return LoginResponse{}, err
	}
	token, err := s.issuer.Issue(identity)
	if err != nil {
		return LoginResponse{}, err
	}
	s.logger.Info("token issued", "identity", identity, "expires_at", token.ExpiresAt)
	return LoginResponse{Token: token.Value}, nil
}

func (s *service) ValidateToken(ctx context.Context, token string) (Principal, error) {
	if strings.TrimSpace(token) == "" {
		return Principal{}, reject(ErrTokenSignature)
	}
	return s.validator.Validate(token)
}
