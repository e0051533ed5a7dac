// Package apierr maps domain errors onto coded JSON error responses.
package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pdenton/rosterd/internal/model"
	"github.com/pdenton/rosterd/internal/services/adminauth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodePlayerNotFound     = "PLAYER_NOT_FOUND"
	CodeSessionNotFound    = "SESSION_NOT_FOUND"
	CodeActionNotFound     = "ACTION_NOT_FOUND"
	CodePendingNotFound    = "PENDING_NOT_FOUND"
	CodeNoIdentifiers      = "NO_IDENTIFIERS"
	CodeInvalidIdentifiers = "INVALID_IDENTIFIERS"
	CodeInvalidActionKind  = "INVALID_ACTION_KIND"
	CodeNotImplemented     = "NOT_IMPLEMENTED"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrSessionNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeSessionNotFound, "No connected player with that client id"}}
	case errors.Is(err, model.ErrActionNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeActionNotFound, "Action not found"}}
	case errors.Is(err, model.ErrPendingNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePendingNotFound, "Pending whitelist request not found"}}
	case errors.Is(err, model.ErrNoIdentifiers):
		return &httpError{http.StatusBadRequest, APIError{CodeNoIdentifiers, "The target session carries no identifiers"}}
	case errors.Is(err, model.ErrInvalidIdentifiers):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidIdentifiers, err.Error()}}
	case errors.Is(err, model.ErrInvalidActionKind):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidActionKind, "Action kind must be ban, warn or whitelist"}}
	case errors.Is(err, model.ErrNotImplemented):
		return &httpError{http.StatusNotImplemented, APIError{CodeNotImplemented, "Action revocation is not implemented"}}

	case errors.Is(err, adminauth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid username or password"}}
	case errors.Is(err, adminauth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
