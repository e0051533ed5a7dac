package gate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/pdenton/rosterd/internal/dependencies/mocks"
	"github.com/pdenton/rosterd/internal/model"
	"github.com/pdenton/rosterd/internal/services/ledger"
	"github.com/pdenton/rosterd/internal/storage"
	"github.com/pdenton/rosterd/internal/storage/memory"
	"github.com/pdenton/rosterd/internal/testutil"
)

const (
	licenseA   = "license:03a33ad88eb1e25fd4b265b72ed2fa7f95ae5e42"
	licenseVal = "03a33ad88eb1e25fd4b265b72ed2fa7f95ae5e42"
	discordA   = "discord:272800190639898628"
)

type nopDirty struct{}

func (nopDirty) MarkDirty() {}

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	random  *mocks.MockRandom
	ledger  *ledger.Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.ledger = ledger.New(s.storage, s.clock, s.random, nopDirty{}, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) newGate(cfg Config) *Service {
	return New(s.ledger, s.clock, cfg, testutil.NopLogger())
}

func (s *ServiceSuite) ban(identifiers ...string) string {
	s.random.QueueString("BNC", "DDDD")
	id, err := s.ledger.Append(s.ctx, model.ActionBan, identifiers, "admin", "cheating", nil)
	s.Require().NoError(err)
	return id
}

func (s *ServiceSuite) whitelist(identifiers ...string) {
	s.random.QueueString("WLC", "EEEE")
	_, err := s.ledger.Append(s.ctx, model.ActionWhitelist, identifiers, "admin", "", nil)
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestChecksDisabledAllowsAnyone() {
	g := s.newGate(Config{})
	s.ban(licenseA)

	d := g.Decide(s.ctx, []string{licenseA}, "Alice")
	s.True(d.Allow)
	s.Equal("checks disabled", d.Reason)
}

func (s *ServiceSuite) TestActiveBanDenies() {
	g := s.newGate(Config{CheckBans: true})
	banID := s.ban(licenseA)

	d := g.Decide(s.ctx, []string{licenseA, discordA}, "Alice")
	s.False(d.Allow)
	s.Contains(d.Reason, banID)
}

func (s *ServiceSuite) TestExpiredBanAllows() {
	g := s.newGate(Config{CheckBans: true})
	s.random.QueueString("BNC", "DDDD")
	expiry := s.clock.Now().Add(time.Hour)
	_, err := s.ledger.Append(s.ctx, model.ActionBan, []string{licenseA}, "admin", "temp", &expiry)
	s.Require().NoError(err)

	s.clock.Advance(2 * time.Hour)
	d := g.Decide(s.ctx, []string{licenseA}, "Alice")
	s.True(d.Allow)
}

func (s *ServiceSuite) TestBanMatchesOnAnyIdentifier() {
	g := s.newGate(Config{CheckBans: true})
	banID := s.ban(discordA)

	// Different license, same discord account
	d := g.Decide(s.ctx, []string{"license:b04e1463c5d2a6a6a4fb0a689118e48e93de95c2", discordA}, "Alt")
	s.False(d.Allow)
	s.Contains(d.Reason, banID)
}

func (s *ServiceSuite) TestBanPrecedesWhitelist() {
	g := s.newGate(Config{CheckBans: true, CheckWhitelist: true})
	s.whitelist(licenseA)
	banID := s.ban(licenseA)

	d := g.Decide(s.ctx, []string{licenseA}, "Alice")
	s.False(d.Allow)
	s.Contains(d.Reason, banID)
}

func (s *ServiceSuite) TestWhitelistedAllows() {
	g := s.newGate(Config{CheckWhitelist: true})
	s.whitelist(licenseA)

	d := g.Decide(s.ctx, []string{licenseA}, "Alice")
	s.True(d.Allow)
	s.Empty(d.Reason)
}

func (s *ServiceSuite) TestUnwhitelistedDeniesWithTemplatedReason() {
	g := s.newGate(Config{
		CheckWhitelist:    true,
		RejectionTemplate: "Not whitelisted. Request ID: <id>",
	})
	s.random.QueueString("WXYZ")

	d := g.Decide(s.ctx, []string{licenseA}, "Alice")
	s.False(d.Allow)
	s.Equal("Not whitelisted. Request ID: RWXYZ", d.Reason)
}

func (s *ServiceSuite) TestRepeatAttemptsReuseRequestID() {
	g := s.newGate(Config{CheckWhitelist: true, RejectionTemplate: "<id>"})
	s.random.QueueString("WXYZ", "QQQQ")

	first := g.Decide(s.ctx, []string{licenseA}, "Alice")
	s.clock.Advance(time.Minute)
	second := g.Decide(s.ctx, []string{licenseA}, "Alice")

	s.Equal(first.Reason, second.Reason)

	reqs, err := s.storage.ListPendingRequests(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(reqs, 1)
	s.Equal(model.PlayerID(licenseVal), reqs[0].License)
	s.Equal(s.clock.Now(), reqs[0].LastAttemptAt)
}

func (s *ServiceSuite) TestWhitelistRequiresLicense() {
	g := s.newGate(Config{CheckWhitelist: true})

	d := g.Decide(s.ctx, []string{discordA}, "Alice")
	s.False(d.Allow)
	s.Contains(d.Reason, "license identifier")
}

func (s *ServiceSuite) TestMalformedIdentifiersAreIgnored() {
	g := s.newGate(Config{CheckBans: true})
	s.ban(licenseA)

	// The malformed pseudo-license must not be trusted for identity.
	d := g.Decide(s.ctx, []string{"license:deadbeef"}, "Alice")
	s.True(d.Allow)
}

func (s *ServiceSuite) TestLedgerFailureFailsClosed() {
	failing := &failingLedger{err: errors.New("store unavailable")}
	g := New(failing, s.clock, Config{CheckBans: true}, testutil.NopLogger())

	d := g.Decide(s.ctx, []string{licenseA}, "Alice")
	s.False(d.Allow)
	s.Contains(d.Reason, "store unavailable")
}

func (s *ServiceSuite) TestPendingRequestFailureFailsClosed() {
	failing := &failingLedger{touchErr: errors.New("store unavailable")}
	g := New(failing, s.clock, Config{CheckWhitelist: true, RejectionTemplate: "<id>"}, testutil.NopLogger())

	d := g.Decide(s.ctx, []string{licenseA}, "Alice")
	s.False(d.Allow)
	s.Contains(d.Reason, "store unavailable")
}

// failingLedger simulates ledger failures
type failingLedger struct {
	err      error
	touchErr error
}

func (f *failingLedger) Query(ctx context.Context, q storage.ActionQuery) ([]model.Action, error) {
	if f.err != nil {
		return nil, f.err
	}
	return nil, nil
}

func (f *failingLedger) TouchPendingRequest(ctx context.Context, license model.PlayerID, name string) (string, error) {
	if f.touchErr != nil {
		return "", f.touchErr
	}
	return "RAAAA", nil
}
