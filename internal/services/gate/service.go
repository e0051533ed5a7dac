// Package gate decides whether a connecting player is admitted,
// consulting the moderation ledger for active bans and whitelist
// grants. All failure paths deny: this is an access-control gate, so
// safety wins over availability.
package gate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pdenton/rosterd/internal/dependencies/clock"
	"github.com/pdenton/rosterd/internal/identity"
	"github.com/pdenton/rosterd/internal/model"
	"github.com/pdenton/rosterd/internal/storage"
)

// IDPlaceholder is substituted with the pending request id in the
// whitelist rejection template.
const IDPlaceholder = "<id>"

// Config holds the join-check configuration
type Config struct {
	// CheckBans enables denying players with an active ban
	CheckBans bool
	// CheckWhitelist enables denying players without an active
	// whitelist grant
	CheckWhitelist bool
	// RejectionTemplate is shown to unwhitelisted players; the
	// IDPlaceholder inside it is replaced with the pending request id
	RejectionTemplate string
}

// DefaultConfig returns a config with both checks disabled
func DefaultConfig() Config {
	return Config{
		RejectionTemplate: "You are not yet whitelisted in this server. Your request ID: " + IDPlaceholder,
	}
}

// Ledger is the slice of the moderation ledger the gate consumes
type Ledger interface {
	Query(ctx context.Context, q storage.ActionQuery) ([]model.Action, error)
	TouchPendingRequest(ctx context.Context, license model.PlayerID, name string) (string, error)
}

// Decision is the outcome of a join check
type Decision struct {
	Allow  bool
	Reason string
}

// Service evaluates join checks
type Service struct {
	ledger Ledger
	clock  clock.Clock
	cfg    Config
	logger *slog.Logger
}

// New creates a new gate service
func New(ledger Ledger, clk clock.Clock, cfg Config, logger *slog.Logger) *Service {
	return &Service{
		ledger: ledger,
		clock:  clk,
		cfg:    cfg,
		logger: logger,
	}
}

// Decide evaluates whether the connecting player identified by the
// given raw identifiers may join. The ban check runs strictly before
// the whitelist check, so a banned-but-whitelisted player is denied
// for the ban.
func (s *Service) Decide(ctx context.Context, identifiers []string, name string) Decision {
	if !s.cfg.CheckBans && !s.cfg.CheckWhitelist {
		return Decision{Allow: true, Reason: "checks disabled"}
	}

	ids := identity.Filter(identifiers)

	var history []model.Action
	if len(ids) > 0 {
		var err error
		history, err = s.ledger.Query(ctx, storage.ActionQuery{
			Identifiers: ids,
			ActiveOnly:  true,
			ActiveAt:    s.clock.Now(),
		})
		if err != nil {
			s.logger.Error("join check failed", slog.String("error", err.Error()))
			return Decision{Allow: false, Reason: fmt.Sprintf("failed to check ban/whitelist status: %s", err)}
		}
	}

	if s.cfg.CheckBans {
		for i := range history {
			if history[i].Kind == model.ActionBan {
				return Decision{
					Allow:  false,
					Reason: fmt.Sprintf("You have been banned from this server.\nBan ID: %s.", history[i].ID),
				}
			}
		}
	}

	if s.cfg.CheckWhitelist {
		whitelisted := false
		for i := range history {
			if history[i].Kind == model.ActionWhitelist {
				whitelisted = true
				break
			}
		}
		if !whitelisted {
			return s.denyUnwhitelisted(ctx, ids, name)
		}
	}

	return Decision{Allow: true}
}

// denyUnwhitelisted records (or refreshes) the pending whitelist
// request for the player and builds the templated rejection message.
func (s *Service) denyUnwhitelisted(ctx context.Context, ids []string, name string) Decision {
	license, ok := identity.PrimaryID(ids)
	if !ok {
		return Decision{Allow: false, Reason: "the whitelist check requires a license identifier"}
	}

	requestID, err := s.ledger.TouchPendingRequest(ctx, license, name)
	if err != nil {
		s.logger.Error("failed to record pending whitelist request", slog.String("error", err.Error()))
		return Decision{Allow: false, Reason: fmt.Sprintf("failed to check ban/whitelist status: %s", err)}
	}

	return Decision{
		Allow:  false,
		Reason: strings.ReplaceAll(s.cfg.RejectionTemplate, IDPlaceholder, requestID),
	}
}
