package handler

import (
	"encoding/json"
	"net/http"

	"github.com/pdenton/rosterd/internal/api/request"
	"github.com/pdenton/rosterd/internal/api/response"
	"github.com/pdenton/rosterd/internal/services/gate"
	"github.com/pdenton/rosterd/internal/services/ledger"
)

// GateHandler handles join checks and pending whitelist requests
type GateHandler struct {
	gateService   *gate.Service
	ledgerService *ledger.Service
}

// NewGateHandler creates a new gate handler
func NewGateHandler(gateService *gate.Service, ledgerService *ledger.Service) *GateHandler {
	return &GateHandler{
		gateService:   gateService,
		ledgerService: ledgerService,
	}
}

// JoinCheck handles POST /api/v1/join-check
func (h *GateHandler) JoinCheck(w http.ResponseWriter, r *http.Request) {
	var req request.JoinCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	decision := h.gateService.Decide(r.Context(), req.Identifiers, req.Name)
	response.JSON(w, http.StatusOK, response.DecisionFromModel(decision))
}

// ListPending handles GET /api/v1/pending
func (h *GateHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	requests, err := h.ledgerService.PendingRequests(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	out := make([]response.PendingRequest, 0, len(requests))
	for i := range requests {
		out = append(out, response.PendingRequestFromModel(&requests[i]))
	}

	response.JSON(w, http.StatusOK, response.PendingRequestList{Requests: out})
}

// WipePending handles DELETE /api/v1/pending
func (h *GateHandler) WipePending(w http.ResponseWriter, r *http.Request) {
	if err := h.ledgerService.WipePending(r.Context()); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}
