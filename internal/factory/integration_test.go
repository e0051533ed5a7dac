package factory

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/pdenton/rosterd/internal/model"
	"github.com/pdenton/rosterd/internal/services/gate"
	"github.com/pdenton/rosterd/internal/services/roster"
	"github.com/pdenton/rosterd/internal/storage"
	"github.com/pdenton/rosterd/internal/storage/file"
)

const (
	testLicenseRaw = "license:03a33ad88eb1e25fd4b265b72ed2fa7f95ae5e42"
	testLicense    = model.PlayerID("03a33ad88eb1e25fd4b265b72ed2fa7f95ae5e42")
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp(Config{
		GateConfig: gate.Config{
			CheckBans:         true,
			CheckWhitelist:    true,
			RejectionTemplate: "Request <id>",
		},
	})
	s.ctx = context.Background()
}

func (s *IntegrationSuite) heartbeat(clients ...roster.RawClient) {
	s.app.RosterService.Reconcile(s.ctx, clients)
}

// Test: a player connects, dwells past the threshold, earns a record,
// then disconnects with their note intact.
func (s *IntegrationSuite) TestSessionLifecycle() {
	s.heartbeat(roster.RawClient{ClientID: 1, Name: "Alice", Identifiers: []string{testLicenseRaw}})

	// Not yet promoted; nothing dirty, nothing saved
	s.app.Scheduler.Tick(s.ctx)
	_, err := s.app.Storage.GetPlayer(s.ctx, testLicense)
	s.ErrorIs(err, model.ErrPlayerNotFound)

	// Past the dwell threshold the tick promotes and persists
	s.app.MockClock.Advance(90 * time.Second)
	s.heartbeat(roster.RawClient{ClientID: 1, Name: "Alice", Identifiers: []string{testLicenseRaw}})
	s.app.Scheduler.Tick(s.ctx)

	player, err := s.app.Storage.GetPlayer(s.ctx, testLicense)
	s.Require().NoError(err)
	s.Equal(1, player.OnlineMinutes)
	s.False(s.app.DirtyFlag.Dirty())

	// Note the player, then let them disconnect
	s.Require().NoError(s.app.RosterService.SetNote(s.ctx, testLicense, "regular", "admin"))
	s.heartbeat()
	s.app.Scheduler.Tick(s.ctx)

	player, err = s.app.Storage.GetPlayer(s.ctx, testLicense)
	s.Require().NoError(err)
	s.Equal("regular", player.Note.Text)
	s.Equal(1, player.OnlineMinutes)
	s.Empty(s.app.RosterService.Sessions())
}

// Test: ban wins over whitelist, and the pending request survives
// repeated denials with a stable id.
func (s *IntegrationSuite) TestGateAgainstLedger() {
	s.app.MockRandom.QueueString("AAAA")

	first := s.app.GateService.Decide(s.ctx, []string{testLicenseRaw}, "Alice")
	s.False(first.Allow)
	s.Equal("Request RAAAA", first.Reason)

	s.app.MockClock.Advance(time.Minute)
	second := s.app.GateService.Decide(s.ctx, []string{testLicenseRaw}, "Alice")
	s.Equal(first.Reason, second.Reason)

	// Whitelist the player
	s.app.MockRandom.QueueString("WLC", "0001")
	_, err := s.app.LedgerService.Append(s.ctx, model.ActionWhitelist, []string{testLicenseRaw}, "admin", "", nil)
	s.Require().NoError(err)

	allowed := s.app.GateService.Decide(s.ctx, []string{testLicenseRaw}, "Alice")
	s.True(allowed.Allow)

	// A ban overrides the whitelist grant
	s.app.MockRandom.QueueString("BAN", "0001")
	banID, err := s.app.LedgerService.Append(s.ctx, model.ActionBan, []string{testLicenseRaw}, "admin", "cheating", nil)
	s.Require().NoError(err)

	denied := s.app.GateService.Decide(s.ctx, []string{testLicenseRaw}, "Alice")
	s.False(denied.Allow)
	s.Contains(denied.Reason, banID)
}

// Test: ledger mutations mark the shared flag and the tick clears it.
func (s *IntegrationSuite) TestFlushAfterLedgerWrite() {
	s.app.MockRandom.QueueString("BAN", "0001")
	_, err := s.app.LedgerService.Append(s.ctx, model.ActionBan, []string{testLicenseRaw}, "admin", "cheating", nil)
	s.Require().NoError(err)
	s.True(s.app.DirtyFlag.Dirty())

	s.app.Scheduler.Tick(s.ctx)
	s.False(s.app.DirtyFlag.Dirty())
}

// Test: expired bans stop matching active queries.
func (s *IntegrationSuite) TestBanExpiry() {
	s.app.MockRandom.QueueString("BAN", "0001")
	expiry := s.app.MockClock.Now().Add(time.Hour)
	_, err := s.app.LedgerService.Append(s.ctx, model.ActionBan, []string{testLicenseRaw}, "admin", "cooldown", &expiry)
	s.Require().NoError(err)

	denied := s.app.GateService.Decide(s.ctx, []string{testLicenseRaw}, "Alice")
	s.False(denied.Allow)

	s.app.MockClock.Advance(2 * time.Hour)
	actions, err := s.app.LedgerService.Query(s.ctx, storage.ActionQuery{
		Identifiers: []string{testLicenseRaw},
		Kind:        model.ActionBan,
		ActiveOnly:  true,
	})
	s.Require().NoError(err)
	s.Empty(actions)
}

// Test: wipe-pending-on-start clears requests left over from a prior run.
func (s *IntegrationSuite) TestWipePendingOnStart() {
	path := filepath.Join(s.T().TempDir(), "roster.json")

	seeded, err := file.Open(path)
	s.Require().NoError(err)
	s.Require().NoError(seeded.SavePendingRequest(s.ctx, &model.PendingRequest{ID: "RAAAA", License: testLicense}))
	s.Require().NoError(seeded.Persist(s.ctx))

	app, err := New(s.ctx, Config{
		StorageType:        StorageTypeFile,
		DataPath:           path,
		WipePendingOnStart: true,
	})
	s.Require().NoError(err)

	requests, err := app.LedgerService.PendingRequests(s.ctx)
	s.Require().NoError(err)
	s.Empty(requests)

	// The wipe is written through at bootstrap, so a restart before any
	// flush must not resurrect the requests.
	reloaded, err := file.Open(path)
	s.Require().NoError(err)
	onDisk, err := reloaded.ListPendingRequests(s.ctx)
	s.Require().NoError(err)
	s.Empty(onDisk)
}
