package banksdk

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAuthenticateHappyPath(t *testing.T) {
	bank := newScriptedBank(t)
	bank.pollStatuses = []string{"PENDING", "PENDING", "AUTHENTICATED"}
	clock := newFakeClock(time.Unix(1_700_000_000, 0))
	transport := &fakeTransport{handle: bank.handle}

	cfg := testConfig(transport, clock)
	cfg.TokenFile = filepath.Join(t.TempDir(), "tokens.json")
	c := newTestClient(t, cfg)

	require.False(t, c.IsAuthenticated())
	require.NoError(t, c.Authenticate(context.Background()))
	require.True(t, c.IsAuthenticated())

	cred, _, ok := c.store.get()
	require.True(t, ok)
	require.Equal(t, "access-1", cred.AccessToken)
	require.Equal(t, "refresh-1", cred.RefreshToken)

	// Credential was persisted alongside the install.
	_, err := os.Stat(cfg.TokenFile)
	require.NoError(t, err)

	// The refresh loop is running.
	require.NotNil(t, c.sched)
	require.False(t, c.sched.stopped())

	// Close removes the persisted file again.
	require.NoError(t, c.Close())
	_, err = os.Stat(cfg.TokenFile)
	require.True(t, os.IsNotExist(err))
}

func TestAuthenticateTwiceSkipsNetwork(t *testing.T) {
	bank := newScriptedBank(t)
	clock := newFakeClock(time.Unix(1_700_000_000, 0))
	transport := &fakeTransport{handle: bank.handle}
	c := newTestClient(t, testConfig(transport, clock))

	require.NoError(t, c.Authenticate(context.Background()))
	callsAfterFirst := transport.callCount()

	require.NoError(t, c.Authenticate(context.Background()))
	require.Equal(t, callsAfterFirst, transport.callCount(),
		"second authenticate with a valid credential must not touch the network")
}

func TestAuthenticateInvalidCredentials(t *testing.T) {
	bank := newScriptedBank(t)
	clock := newFakeClock(time.Unix(1_700_000_000, 0))
	transport := &fakeTransport{handle: bank.handle}

	cfg := testConfig(transport, clock)
	cfg.Password = "wrong"
	c := newTestClient(t, cfg)

	err := c.Authenticate(context.Background())
	require.ErrorIs(t, err, ErrAuthentication)
	require.False(t, c.IsAuthenticated())
	require.Equal(t, 1, transport.callCount(), "flow must stop at step 1")
}

func TestAuthenticateSessionLookupFailure(t *testing.T) {
	bank := newScriptedBank(t)
	clock := newFakeClock(time.Unix(1_700_000_000, 0))
	transport := &fakeTransport{handle: func(req *http.Request) (*http.Response, error) {
		if req.Method == http.MethodGet && req.URL.Path == sessionsPath {
			return jsonResponse(http.StatusInternalServerError, nil), nil
		}
		return bank.handle(req)
	}}
	c := newTestClient(t, testConfig(transport, clock))

	err := c.Authenticate(context.Background())
	require.ErrorIs(t, err, ErrSessionActivation)
	require.False(t, c.IsAuthenticated())
}

func TestAuthenticateMissingChallengeHeader(t *testing.T) {
	bank := newScriptedBank(t)
	clock := newFakeClock(time.Unix(1_700_000_000, 0))
	transport := &fakeTransport{handle: func(req *http.Request) (*http.Response, error) {
		resp, err := bank.handle(req)
		if req.Method == http.MethodPost && req.URL.Path == sessionsPath+"/sess-1/validate" {
			resp.Header.Del("x-once-authentication-info")
		}
		return resp, err
	}}
	c := newTestClient(t, testConfig(transport, clock))

	err := c.Authenticate(context.Background())
	require.ErrorIs(t, err, ErrAuthentication)
}

func TestAuthenticateActivationRejected(t *testing.T) {
	bank := newScriptedBank(t)
	clock := newFakeClock(time.Unix(1_700_000_000, 0))
	transport := &fakeTransport{handle: func(req *http.Request) (*http.Response, error) {
		if req.Method == http.MethodPatch && req.URL.Path == sessionsPath+"/sess-1" {
			return jsonResponse(http.StatusUnprocessableEntity, nil), nil
		}
		return bank.handle(req)
	}}
	c := newTestClient(t, testConfig(transport, clock))

	err := c.Authenticate(context.Background())
	require.ErrorIs(t, err, ErrSessionActivation)
	require.False(t, c.IsAuthenticated(), "no partial credential may be installed")
}

func TestAuthenticateRestoresPersistedCredential(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tokens.json")
	clock := newFakeClock(time.Unix(1_700_000_000, 0))

	seed := &tokenFile{path: path, log: testLogger()}
	require.NoError(t, seed.save(Credential{
		AccessToken:  "persisted-access",
		RefreshToken: "persisted-refresh",
		ExpiresAt:    clock.Now().Add(10 * time.Minute),
	}))

	transport := &fakeTransport{handle: func(req *http.Request) (*http.Response, error) {
		t.Errorf("unexpected network call: %s %s", req.Method, req.URL.Path)
		return jsonResponse(http.StatusInternalServerError, nil), nil
	}}

	cfg := testConfig(transport, clock)
	cfg.TokenFile = path
	c := newTestClient(t, cfg)

	require.True(t, c.IsAuthenticated())
	require.NoError(t, c.Authenticate(context.Background()))
	require.Equal(t, 0, transport.callCount())
}

func TestAuthenticateIgnoresExpiredPersistedCredential(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tokens.json")
	clock := newFakeClock(time.Unix(1_700_000_000, 0))

	seed := &tokenFile{path: path, log: testLogger()}
	require.NoError(t, seed.save(Credential{
		AccessToken:  "stale-access",
		RefreshToken: "stale-refresh",
		ExpiresAt:    clock.Now().Add(-time.Minute),
	}))

	bank := newScriptedBank(t)
	transport := &fakeTransport{handle: bank.handle}

	cfg := testConfig(transport, clock)
	cfg.TokenFile = path
	c := newTestClient(t, cfg)

	require.False(t, c.IsAuthenticated(), "expired record must not be loaded")

	// A full login flow runs instead.
	require.NoError(t, c.Authenticate(context.Background()))
	cred, _, _ := c.store.get()
	require.Equal(t, "access-1", cred.AccessToken)
}

func TestAuthenticateConcurrentCallersSingleFlow(t *testing.T) {
	bank := newScriptedBank(t)
	clock := newFakeClock(time.Unix(1_700_000_000, 0))
	transport := &fakeTransport{handle: bank.handle}
	c := newTestClient(t, testConfig(transport, clock))

	const callers = 4
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		go func() {
			errs <- c.Authenticate(context.Background())
		}()
	}
	for i := 0; i < callers; i++ {
		require.NoError(t, <-errs)
	}

	// Exactly one caller ran the flow.
	require.Equal(t, 1, bank.pollCount, "only one challenge may be polled")
	cred, _, _ := c.store.get()
	require.Equal(t, "access-1", cred.AccessToken)
	require.Equal(t, 1, bank.tokenCounter, "only one banking token pair may be issued")
}
