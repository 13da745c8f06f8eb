package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yanqian/usergate/pkg/errors"
)

const genericErrorMessage = "an unexpected error occurred"

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Field   string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the underlying cause.
func (e *HTTPError) Unwrap() error {
	return e.Err
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

// fromDomainError maps a coded domain error onto the transport.
func fromDomainError(err error) *HTTPError {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return asHTTPError(err)
	}
	switch appErr.Code {
	case "invalid_input":
		return &HTTPError{Status: http.StatusBadRequest, Code: "invalid_input", Message: appErr.Message, Field: appErr.Field, Err: err}
	case "not_found":
		return NewHTTPError(http.StatusNotFound, "not_found", appErr.Message, err)
	case "already_exists":
		return NewHTTPError(http.StatusConflict, "already_exists", appErr.Message, err)
	case "invalid_credentials", "invalid_token":
		return unauthorized(err)
	case "auth_not_configured":
		return NewHTTPError(http.StatusInternalServerError, "auth_not_configured", appErr.Message, err)
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal_error", appErr.Message, err)
	}
}

// unauthorized hides the rejection reason from the caller; err is only logged.
func unauthorized(err error) *HTTPError {
	return NewHTTPError(http.StatusUnauthorized, "unauthorized", "unauthorized", err)
}

// badBody classifies a failure to read or decode the request body.
func badBody(err error) *HTTPError {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return NewHTTPError(http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", err)
	}
	return NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err)
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "something went wrong",
		Err:     err,
	}
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
