package handler

import (
	"encoding/json"
	"net/http"

	"github.com/pdenton/rosterd/internal/api/request"
	"github.com/pdenton/rosterd/internal/api/response"
	"github.com/pdenton/rosterd/internal/services/adminauth"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *adminauth.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *adminauth.Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Username == "" || req.Password == "" {
		WriteError(w, NewInvalidRequestError("username and password are required"))
		return
	}

	session, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AuthResponseFromSession(session))
}
