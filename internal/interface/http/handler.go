package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/usergate/internal/domain/auth"
	"github.com/yanqian/usergate/internal/domain/user"
	apperrors "github.com/yanqian/usergate/pkg/errors"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	authSvc auth.Service
	userSvc user.Service
	logger  *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(authSvc auth.Service, userSvc user.Service, logger *slog.Logger) *Handler {
	return &Handler{
		authSvc: authSvc,
		userSvc: userSvc,
		logger:  logger.With("component", "http.handler"),
	}
}

// Login exchanges the admin credential for a bearer token.
func (h *Handler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, badBody(err))
		return
	}

	resp, err := h.authSvc.Login(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Me returns the principal attached by the authorization gate.
func (h *Handler) Me(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		abortWithError(c, unauthorized(nil))
		return
	}
	c.JSON(http.StatusOK, principal)
}

// ListUsers returns the whole collection.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.userSvc.List(c.Request.Context())
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUser returns a single user.
func (h *Handler) GetUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	u, err := h.userSvc.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, u)
}

// CreateUser validates and stores a new user.
func (h *Handler) CreateUser(c *gin.Context) {
	payload, ok := bindPayload(c)
	if !ok {
		return
	}
	created, err := h.userSvc.Create(c.Request.Context(), payload)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.Header("Location", fmt.Sprintf("/users/%d", created.ID))
	c.JSON(http.StatusCreated, created)
}

// UpdateUser replaces the mutable fields of an existing user.
func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	payload, ok := bindPayload(c)
	if !ok {
		return
	}
	updated, err := h.userSvc.Update(c.Request.Context(), id, payload)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteUser removes a user and returns it.
func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	removed, err := h.userSvc.Delete(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, removed)
}

// Health is the liveness probe.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func userID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortWithError(c, fromDomainError(apperrors.Invalid("id", "invalid user id")))
		return 0, false
	}
	return id, true
}

// bindPayload decodes the request body. An empty body or a JSON null yields a
// nil payload so the validation rules report the missing record.
func bindPayload(c *gin.Context) (*user.Payload, bool) {
	raw, err := c.GetRawData()
	if err != nil {
		abortWithError(c, badBody(err))
		return nil, false
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, true
	}
	var payload *user.Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		abortWithError(c, badBody(err))
		return nil, false
	}
	return payload, true
}
