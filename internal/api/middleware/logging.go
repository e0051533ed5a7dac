package middleware

import (
	"log/slog"
	"net/http"

	"github.com/pdenton/rosterd/internal/middleware"
)

// Logging logs API requests. The heartbeat endpoint is demoted to debug
// level since the game server posts a snapshot every few seconds.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger, "/api/v1/heartbeat")
}
