package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pdenton/rosterd/internal/api/middleware"
	"github.com/pdenton/rosterd/internal/api/request"
	"github.com/pdenton/rosterd/internal/api/response"
	"github.com/pdenton/rosterd/internal/model"
	"github.com/pdenton/rosterd/internal/services/ledger"
	"github.com/pdenton/rosterd/internal/services/roster"
	"github.com/pdenton/rosterd/internal/storage"
)

// ActionHandler handles moderation ledger endpoints
type ActionHandler struct {
	ledgerService *ledger.Service
	rosterService *roster.Service
}

// NewActionHandler creates a new action handler
func NewActionHandler(ledgerService *ledger.Service, rosterService *roster.Service) *ActionHandler {
	return &ActionHandler{
		ledgerService: ledgerService,
		rosterService: rosterService,
	}
}

// Create handles POST /api/v1/actions
func (h *ActionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	identifiers := req.Identifiers
	if len(identifiers) == 0 && req.ClientID != nil {
		resolved, err := h.rosterService.IdentifiersForClient(*req.ClientID)
		if err != nil {
			WriteError(w, err)
			return
		}
		identifiers = resolved
	}
	if len(identifiers) == 0 {
		WriteError(w, NewInvalidRequestError("identifiers or client_id is required"))
		return
	}

	author := middleware.AdminName(r.Context())
	id, err := h.ledgerService.Append(r.Context(), model.ActionKind(req.Kind), identifiers, author, req.Reason, req.ExpiresAt)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.CreateActionResponse{ID: id})
}

// List handles GET /api/v1/actions
func (h *ActionHandler) List(w http.ResponseWriter, r *http.Request) {
	q := storage.ActionQuery{
		Kind:   model.ActionKind(r.URL.Query().Get("kind")),
		Author: r.URL.Query().Get("author"),
	}
	if ids, ok := r.URL.Query()["identifier"]; ok {
		q.Identifiers = ids
	}
	if r.URL.Query().Get("active") == "true" {
		q.ActiveOnly = true
	}
	if q.Kind != "" && !q.Kind.Valid() {
		WriteError(w, model.ErrInvalidActionKind)
		return
	}

	actions, err := h.ledgerService.Query(r.Context(), q)
	if err != nil {
		WriteError(w, err)
		return
	}

	out := make([]response.Action, 0, len(actions))
	for i := range actions {
		out = append(out, response.ActionFromModel(&actions[i]))
	}

	response.JSON(w, http.StatusOK, response.ActionList{Actions: out})
}

// Revoke handles POST /api/v1/actions/{id}/revoke
func (h *ActionHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	actionID := mux.Vars(r)["id"]

	author := middleware.AdminName(r.Context())
	if err := h.ledgerService.Revoke(r.Context(), actionID, author); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}
