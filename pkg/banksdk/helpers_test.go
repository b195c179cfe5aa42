package banksdk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"
)

// fakeClock is a deterministic clock: an After call whose duration is
// within autoLimit advances the current time by that duration and fires
// immediately, so timed loops run synchronously. Longer waits (like the
// refresh scheduler's threshold sleep) never fire unless the limit is
// raised, keeping background loops parked during unrelated tests. Every
// requested wait is recorded for assertions.
type fakeClock struct {
	mu        sync.Mutex
	now       time.Time
	autoLimit time.Duration
	afters    []time.Duration
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start, autoLimit: 10 * time.Second}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afters = append(c.afters, d)
	ch := make(chan time.Time, 1)
	if d <= c.autoLimit {
		c.now = c.now.Add(d)
		ch <- c.now
	}
	return ch
}

func (c *fakeClock) setAutoLimit(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoLimit = d
}

func (c *fakeClock) requestedWaits() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	waits := make([]time.Duration, len(c.afters))
	copy(waits, c.afters)
	return waits
}

// fakeTransport routes requests to a handler func and counts calls.
type fakeTransport struct {
	mu     sync.Mutex
	handle func(*http.Request) (*http.Response, error)
	calls  int
}

func (t *fakeTransport) Do(req *http.Request) (*http.Response, error) {
	t.mu.Lock()
	t.calls++
	h := t.handle
	t.mu.Unlock()
	return h(req)
}

func (t *fakeTransport) callCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

func jsonResponse(status int, body any) *http.Response {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(&buf),
	}
}

func formValues(t *testing.T, r *http.Request) url.Values {
	t.Helper()
	data, err := io.ReadAll(r.Body)
	if err != nil {
		t.Fatalf("reading form body: %v", err)
	}
	values, err := url.ParseQuery(string(data))
	if err != nil {
		t.Fatalf("parsing form body: %v", err)
	}
	return values
}

// scriptedBank fakes the comdirect endpoints the SDK talks to. Refresh
// tokens are single-use: replaying a rotated token yields 401.
type scriptedBank struct {
	t *testing.T

	mu sync.Mutex

	// pollStatuses are returned in order on challenge status reads; the
	// last entry repeats once exhausted.
	pollStatuses []string
	pollCount    int

	expiresIn      int
	tokenCounter   int
	currentRefresh string
	refreshCount   int

	// failRefreshes makes every refresh grant answer 401;
	// failRefreshAfter allows that many successful refreshes first.
	failRefreshes    bool
	failRefreshAfter int
	refreshSuccesses int

	// bankingStatus, when non-zero, forces this status on banking calls.
	bankingStatus int
	bankingCalls  int
}

func newScriptedBank(t *testing.T) *scriptedBank {
	return &scriptedBank{
		t:            t,
		pollStatuses: []string{"AUTHENTICATED"},
		expiresIn:    599,
	}
}

func (b *scriptedBank) handle(req *http.Request) (*http.Response, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	path := req.URL.Path
	switch {
	case req.Method == http.MethodPost && path == "/oauth/token":
		return b.handleToken(req)

	case req.Method == http.MethodGet && path == "/api/session/clients/user/v1/sessions":
		return jsonResponse(http.StatusOK, []map[string]string{{"identifier": "sess-1"}}), nil

	case req.Method == http.MethodPost && path == "/api/session/clients/user/v1/sessions/sess-1/validate":
		resp := jsonResponse(http.StatusCreated, map[string]string{"identifier": "sess-1"})
		resp.Header.Set("x-once-authentication-info",
			`{"id":"challenge-1","typ":"P_TAN_PUSH","link":{"href":"/api/session/v1/tans/challenge-1"}}`)
		return resp, nil

	case req.Method == http.MethodGet && path == "/api/session/v1/tans/challenge-1":
		status := b.pollStatuses[len(b.pollStatuses)-1]
		if b.pollCount < len(b.pollStatuses) {
			status = b.pollStatuses[b.pollCount]
		}
		b.pollCount++
		return jsonResponse(http.StatusOK, map[string]string{"status": status}), nil

	case req.Method == http.MethodPatch && path == "/api/session/clients/user/v1/sessions/sess-1":
		return jsonResponse(http.StatusOK, map[string]string{"identifier": "sess-1"}), nil

	case req.Method == http.MethodGet && path == balancesPath:
		b.bankingCalls++
		if b.bankingStatus != 0 && b.bankingStatus != http.StatusOK {
			return jsonResponse(b.bankingStatus, nil), nil
		}
		if !b.bearerValid(req) {
			return jsonResponse(http.StatusUnauthorized, nil), nil
		}
		return jsonResponse(http.StatusOK, map[string]any{
			"values": []map[string]any{{
				"accountId": "acct-1",
				"balance":   map[string]string{"value": "1234.56", "unit": "EUR"},
			}},
		}), nil

	case req.Method == http.MethodGet && path == "/api/banking/v1/accounts/acct-1/transactions":
		b.bankingCalls++
		if b.bankingStatus != 0 && b.bankingStatus != http.StatusOK {
			return jsonResponse(b.bankingStatus, nil), nil
		}
		if !b.bearerValid(req) {
			return jsonResponse(http.StatusUnauthorized, nil), nil
		}
		return jsonResponse(http.StatusOK, map[string]any{
			"values": []map[string]any{{
				"reference":     "txn-1",
				"bookingStatus": "BOOKED",
				"amount":        map[string]string{"value": "-42.00", "unit": "EUR"},
			}},
		}), nil

	case req.Method == http.MethodGet && path == "/api/banking/v1/accounts/missing/transactions":
		b.bankingCalls++
		return jsonResponse(http.StatusNotFound, nil), nil

	default:
		b.t.Errorf("unexpected request: %s %s", req.Method, path)
		return jsonResponse(http.StatusNotFound, nil), nil
	}
}

func (b *scriptedBank) handleToken(req *http.Request) (*http.Response, error) {
	form := formValues(b.t, req)

	switch form.Get("grant_type") {
	case "password":
		if form.Get("username") != "user-1" || form.Get("password") != "pass-1" {
			return jsonResponse(http.StatusUnauthorized, map[string]string{"error": "invalid_grant"}), nil
		}
		return jsonResponse(http.StatusOK, map[string]any{
			"access_token": "initial-token",
			"expires_in":   599,
		}), nil

	case "cd_secondary":
		if form.Get("token") != "initial-token" {
			return jsonResponse(http.StatusUnauthorized, map[string]string{"error": "invalid_grant"}), nil
		}
		return b.issueTokenPair(), nil

	case "refresh_token":
		b.refreshCount++
		failing := b.failRefreshes ||
			(b.failRefreshAfter > 0 && b.refreshSuccesses >= b.failRefreshAfter)
		if failing || form.Get("refresh_token") != b.currentRefresh {
			return jsonResponse(http.StatusUnauthorized, map[string]string{"error": "invalid_grant"}), nil
		}
		b.refreshSuccesses++
		return b.issueTokenPair(), nil

	default:
		return jsonResponse(http.StatusBadRequest, map[string]string{"error": "unsupported_grant_type"}), nil
	}
}

func (b *scriptedBank) issueTokenPair() *http.Response {
	b.tokenCounter++
	b.currentRefresh = fmt.Sprintf("refresh-%d", b.tokenCounter)
	return jsonResponse(http.StatusOK, map[string]any{
		"access_token":  fmt.Sprintf("access-%d", b.tokenCounter),
		"refresh_token": b.currentRefresh,
		"expires_in":    b.expiresIn,
	})
}

func (b *scriptedBank) bearerValid(req *http.Request) bool {
	return req.Header.Get("Authorization") == fmt.Sprintf("Bearer access-%d", b.tokenCounter)
}

func (b *scriptedBank) refreshGrants() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refreshCount
}

func (b *scriptedBank) setFailRefreshes(fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failRefreshes = fail
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(doer Doer, clock Clock) Config {
	return Config{
		ClientID:     "client-1",
		ClientSecret: "secret-1",
		Username:     "user-1",
		Password:     "pass-1",
		BaseURL:      "https://bank.test",
		HTTPClient:   doer,
		Clock:        clock,
		Logger:       testLogger(),
	}
}

func newTestClient(t *testing.T, cfg Config) *Client {
	t.Helper()
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}
