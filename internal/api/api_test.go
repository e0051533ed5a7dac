package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pdenton/rosterd/internal/api"
	"github.com/pdenton/rosterd/internal/api/response"
	"github.com/pdenton/rosterd/internal/factory"
	"github.com/pdenton/rosterd/internal/services/adminauth"
	"github.com/pdenton/rosterd/internal/services/gate"
)

const (
	testLicense    = "license:03a33ad88eb1e25fd4b265b72ed2fa7f95ae5e42"
	testLicenseVal = "03a33ad88eb1e25fd4b265b72ed2fa7f95ae5e42"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.App
}

func newTestServer(t *testing.T, cfg factory.Config) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	cfg.Logger = logger

	// API tests are integration tests - use production factory with real random/clock
	app, err := factory.New(context.Background(), cfg)
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:        logger,
		AuthService:   app.AuthService,
		RosterService: app.RosterService,
		LedgerService: app.LedgerService,
		GateService:   app.GateService,
	})

	return &testServer{
		handler: router,
		app:     app,
	}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) heartbeat(t *testing.T, clients ...map[string]any) {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/heartbeat", map[string]any{"clients": clients}, "")
	require.Equal(t, http.StatusNoContent, rr.Code)
}

func testClient(id int, name string, identifiers ...string) map[string]any {
	return map[string]any{
		"id":          id,
		"name":        name,
		"ping":        30,
		"identifiers": identifiers,
	}
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t, factory.Config{})

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestAuthRequiredWhenConfigured(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	ts := newTestServer(t, factory.Config{
		AuthConfig: adminauth.Config{Username: "admin", PasswordHash: string(hash)},
	})

	// No token
	rr := ts.request(http.MethodGet, "/api/v1/players", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// Bad credentials
	rr = ts.request(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": "admin", "password": "wrong",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// Login
	rr = ts.request(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": "admin", "password": "hunter2",
	}, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var auth response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &auth))
	require.NotEmpty(t, auth.SessionToken)

	// Authenticated request succeeds
	rr = ts.request(http.MethodGet, "/api/v1/players", nil, auth.SessionToken)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAuthDisabledByDefault(t *testing.T) {
	ts := newTestServer(t, factory.Config{})

	rr := ts.request(http.MethodGet, "/api/v1/players", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestHeartbeatPopulatesPlayerList(t *testing.T) {
	ts := newTestServer(t, factory.Config{})

	ts.heartbeat(t, testClient(1, "Alice", testLicense, "discord:272800190639898628"))

	rr := ts.request(http.MethodGet, "/api/v1/players", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var list response.SessionList
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Sessions, 1)
	assert.Equal(t, "Alice", list.Sessions[0].Name)
	assert.Equal(t, testLicenseVal, list.Sessions[0].License)
	assert.True(t, list.Sessions[0].Provisional)
}

func TestGetPlayer(t *testing.T) {
	ts := newTestServer(t, factory.Config{})

	ts.heartbeat(t, testClient(1, "Alice", testLicense))

	rr := ts.request(http.MethodGet, "/api/v1/players/"+testLicenseVal, nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var player response.Player
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &player))
	assert.True(t, player.Online)
	assert.Equal(t, "Alice", player.Name)
}

func TestGetPlayerNotFound(t *testing.T) {
	ts := newTestServer(t, factory.Config{})

	rr := ts.request(http.MethodGet, "/api/v1/players/ffffffffffffffffffffffffffffffffffffffff", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "PLAYER_NOT_FOUND")
}

func TestSetNoteOnConnectedPlayer(t *testing.T) {
	ts := newTestServer(t, factory.Config{})

	ts.heartbeat(t, testClient(1, "Alice", testLicense))

	rr := ts.request(http.MethodPatch, "/api/v1/players/"+testLicenseVal+"/note",
		map[string]string{"text": "keeps teleporting"}, "")
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/players/"+testLicenseVal, nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var player response.Player
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &player))
	assert.Equal(t, "keeps teleporting", player.Note.Text)
	assert.Equal(t, "admin", player.Note.Author)
}

func TestBanFlow(t *testing.T) {
	ts := newTestServer(t, factory.Config{
		GateConfig: gate.Config{CheckBans: true},
	})

	rr := ts.request(http.MethodPost, "/api/v1/actions", map[string]any{
		"kind":        "ban",
		"identifiers": []string{testLicense},
		"reason":      "cheating",
	}, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	var created response.CreateActionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Regexp(t, regexp.MustCompile(`^B[A-Z0-9]{3}-[A-Z0-9]{4}$`), created.ID)

	// The banned player is denied
	rr = ts.request(http.MethodPost, "/api/v1/join-check", map[string]any{
		"name":        "Alice",
		"identifiers": []string{testLicense},
	}, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var decision response.Decision
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &decision))
	assert.False(t, decision.Allow)
	assert.Contains(t, decision.Reason, created.ID)

	// An unrelated player is allowed
	rr = ts.request(http.MethodPost, "/api/v1/join-check", map[string]any{
		"name":        "Bob",
		"identifiers": []string{"license:b04e1463c5d2a6a6a4fb0a689118e48e93de95c2"},
	}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &decision))
	assert.True(t, decision.Allow)
}

func TestActionByClientID(t *testing.T) {
	ts := newTestServer(t, factory.Config{})

	ts.heartbeat(t, testClient(7, "Alice", testLicense))

	rr := ts.request(http.MethodPost, "/api/v1/actions", map[string]any{
		"kind":      "warn",
		"client_id": 7,
		"reason":    "language",
	}, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/actions?identifier="+testLicense, nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var list response.ActionList
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Actions, 1)
	assert.Equal(t, "warn", list.Actions[0].Kind)
	assert.Equal(t, []string{testLicense}, list.Actions[0].Identifiers)
}

func TestActionByUnknownClientID(t *testing.T) {
	ts := newTestServer(t, factory.Config{})

	rr := ts.request(http.MethodPost, "/api/v1/actions", map[string]any{
		"kind":      "warn",
		"client_id": 42,
		"reason":    "language",
	}, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "SESSION_NOT_FOUND")
}

func TestActionInvalidKind(t *testing.T) {
	ts := newTestServer(t, factory.Config{})

	rr := ts.request(http.MethodPost, "/api/v1/actions", map[string]any{
		"kind":        "kick",
		"identifiers": []string{testLicense},
	}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_ACTION_KIND")
}

func TestRevokeNotImplemented(t *testing.T) {
	ts := newTestServer(t, factory.Config{})

	rr := ts.request(http.MethodPost, "/api/v1/actions/BABC-1234/revoke", nil, "")
	assert.Equal(t, http.StatusNotImplemented, rr.Code)
	assert.Contains(t, rr.Body.String(), "NOT_IMPLEMENTED")
}

func TestWhitelistPendingFlow(t *testing.T) {
	ts := newTestServer(t, factory.Config{
		GateConfig: gate.Config{
			CheckWhitelist:    true,
			RejectionTemplate: "Request ID: <id>",
		},
	})

	// First attempt creates a pending request
	rr := ts.request(http.MethodPost, "/api/v1/join-check", map[string]any{
		"name":        "Alice",
		"identifiers": []string{testLicense},
	}, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var decision response.Decision
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &decision))
	assert.False(t, decision.Allow)
	assert.Regexp(t, regexp.MustCompile(`^Request ID: R[A-Z0-9]{4}$`), decision.Reason)

	rr = ts.request(http.MethodGet, "/api/v1/pending", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var pending response.PendingRequestList
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &pending))
	require.Len(t, pending.Requests, 1)
	assert.Equal(t, testLicenseVal, pending.Requests[0].License)

	// Granting the whitelist admits the player
	rr = ts.request(http.MethodPost, "/api/v1/actions", map[string]any{
		"kind":        "whitelist",
		"identifiers": []string{testLicense},
	}, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/join-check", map[string]any{
		"name":        "Alice",
		"identifiers": []string{testLicense},
	}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &decision))
	assert.True(t, decision.Allow)

	// Wipe the pending list
	rr = ts.request(http.MethodDelete, "/api/v1/pending", nil, "")
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/pending", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &pending))
	assert.Empty(t, pending.Requests)
}
