package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pdenton/rosterd/internal/api/handler"
	"github.com/pdenton/rosterd/internal/api/middleware"
	"github.com/pdenton/rosterd/internal/services/adminauth"
	"github.com/pdenton/rosterd/internal/services/gate"
	"github.com/pdenton/rosterd/internal/services/ledger"
	"github.com/pdenton/rosterd/internal/services/roster"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger        *slog.Logger
	AuthService   *adminauth.Service
	RosterService *roster.Service
	LedgerService *ledger.Service
	GateService   *gate.Service
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	rosterHandler := handler.NewRosterHandler(cfg.RosterService)
	actionHandler := handler.NewActionHandler(cfg.LedgerService, cfg.RosterService)
	gateHandler := handler.NewGateHandler(cfg.GateService, cfg.LedgerService)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Auth routes (no auth required for logging in)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)

	// Everything else requires an admin session
	protected := api.NewRoute().Subrouter()
	protected.Use(authMiddleware)

	// Heartbeat and player routes
	protected.HandleFunc("/heartbeat", rosterHandler.Heartbeat).Methods(http.MethodPost)
	protected.HandleFunc("/players", rosterHandler.ListPlayers).Methods(http.MethodGet)
	protected.HandleFunc("/players/{license}", rosterHandler.GetPlayer).Methods(http.MethodGet)
	protected.HandleFunc("/players/{license}/note", rosterHandler.SetNote).Methods(http.MethodPatch)

	// Join check routes
	protected.HandleFunc("/join-check", gateHandler.JoinCheck).Methods(http.MethodPost)

	// Moderation ledger routes
	protected.HandleFunc("/actions", actionHandler.Create).Methods(http.MethodPost)
	protected.HandleFunc("/actions", actionHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/actions/{id}/revoke", actionHandler.Revoke).Methods(http.MethodPost)

	// Pending whitelist routes
	protected.HandleFunc("/pending", gateHandler.ListPending).Methods(http.MethodGet)
	protected.HandleFunc("/pending", gateHandler.WipePending).Methods(http.MethodDelete)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
