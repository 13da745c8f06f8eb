package http

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/usergate/internal/domain/auth"
	apperrors "github.com/yanqian/usergate/pkg/errors"
)

var (
	errMissingAuthorization   = errors.New("missing authorization header")
	errMalformedAuthorization = errors.New("invalid authorization header")
)

// authGate admits a request to a protected operation only when it carries a
// valid bearer token. It never touches the wrapped handler on rejection.
type authGate struct {
	svc    auth.Service
	logger *slog.Logger
}

func newAuthGate(svc auth.Service, logger *slog.Logger) *authGate {
	return &authGate{svc: svc, logger: logger.With("component", "http.auth_gate")}
}

// Protect wraps next so it only runs for an authenticated caller.
func (g *authGate) Protect(next gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := g.authorize(c)
		if err != nil {
			if !apperrors.IsCode(err, "invalid_token") {
				abortWithError(c, asHTTPError(err))
				return
			}
			g.logger.Warn("request rejected", "path", c.Request.URL.Path, "method", c.Request.Method, "reason", errMessage(err))
			abortWithError(c, unauthorized(err))
			return
		}
		setPrincipal(c, principal)
		next(c)
	}
}

func (g *authGate) authorize(c *gin.Context) (auth.Principal, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return auth.Principal{}, apperrors.Wrap("invalid_token", "unauthorized", errMissingAuthorization)
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return auth.Principal{}, apperrors.Wrap("invalid_token", "unauthorized", errMalformedAuthorization)
	}
	return g.svc.ValidateToken(c.Request.Context(), strings.TrimSpace(parts[1]))
}

// open is the pass-through used when a route group is configured as public.
func open(next gin.HandlerFunc) gin.HandlerFunc {
	return next
}
