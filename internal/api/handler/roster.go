package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pdenton/rosterd/internal/api/middleware"
	"github.com/pdenton/rosterd/internal/api/request"
	"github.com/pdenton/rosterd/internal/api/response"
	"github.com/pdenton/rosterd/internal/model"
	"github.com/pdenton/rosterd/internal/services/roster"
)

// RosterHandler handles heartbeat and player endpoints
type RosterHandler struct {
	rosterService *roster.Service
}

// NewRosterHandler creates a new roster handler
func NewRosterHandler(rosterService *roster.Service) *RosterHandler {
	return &RosterHandler{
		rosterService: rosterService,
	}
}

// Heartbeat handles POST /api/v1/heartbeat
func (h *RosterHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	var req request.HeartbeatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	snapshot := make([]roster.RawClient, 0, len(req.Clients))
	for _, c := range req.Clients {
		snapshot = append(snapshot, roster.RawClient{
			ClientID:    c.ID,
			Name:        c.Name,
			Ping:        c.Ping,
			Identifiers: c.Identifiers,
		})
	}

	h.rosterService.Reconcile(r.Context(), snapshot)
	response.NoContent(w)
}

// ListPlayers handles GET /api/v1/players
func (h *RosterHandler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	sessions := h.rosterService.Sessions()

	out := make([]response.Session, 0, len(sessions))
	for i := range sessions {
		out = append(out, response.SessionFromModel(&sessions[i]))
	}

	response.JSON(w, http.StatusOK, response.SessionList{Sessions: out})
}

// GetPlayer handles GET /api/v1/players/{license}
func (h *RosterHandler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	license := model.PlayerID(mux.Vars(r)["license"])

	view, err := h.rosterService.Lookup(r.Context(), license)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromView(view))
}

// SetNote handles PATCH /api/v1/players/{license}/note
func (h *RosterHandler) SetNote(w http.ResponseWriter, r *http.Request) {
	license := model.PlayerID(mux.Vars(r)["license"])

	var req request.SetNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	author := middleware.AdminName(r.Context())
	if err := h.rosterService.SetNote(r.Context(), license, req.Text, author); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}
