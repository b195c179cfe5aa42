package bank_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ledgerlane/comdirect/internal/mockbank/app"
	"github.com/ledgerlane/comdirect/internal/mockbank/domain"
	"github.com/ledgerlane/comdirect/pkg/banksdk"
)

const (
	testClientID     = "client-1"
	testClientSecret = "secret-1"
	testUsername     = "user-1"
	testPassword     = "pass-1"
)

func defaultBankConfig(t *testing.T) app.Config {
	t.Helper()
	return app.Config{
		Env:       "dev",
		LogLevel:  "error",
		LogFormat: "text",

		ShutdownGracePeriod: time.Second,
		DatabaseFile:        filepath.Join(t.TempDir(), "bank.db"),

		Issuer:     "mockbank",
		AccessTTL:  10 * time.Minute,
		RefreshTTL: time.Hour,

		ClientID:     testClientID,
		ClientSecret: testClientSecret,
		Username:     testUsername,
		Password:     testPassword,

		TANKind:         domain.TANKindPush,
		TANApproveDelay: 100 * time.Millisecond,
		ChallengeTTL:    time.Minute,
	}
}

// startMockBank runs the mock bank in-process behind an httptest server.
func startMockBank(t *testing.T, cfg app.Config) string {
	t.Helper()

	application, err := app.New(cfg)
	require.NoError(t, err)

	server := httptest.NewServer(application.Handler())
	t.Cleanup(func() {
		server.Close()
		_ = application.Shutdown()
	})
	return server.URL
}

// sdkConfig builds a client config with poll timings tightened for tests.
func sdkConfig(baseURL, tokenFile string) banksdk.Config {
	return banksdk.Config{
		ClientID:        testClientID,
		ClientSecret:    testClientSecret,
		Username:        testUsername,
		Password:        testPassword,
		BaseURL:         baseURL,
		TokenFile:       tokenFile,
		TANPollInterval: 25 * time.Millisecond,
		TANTimeout:      3 * time.Second,
	}
}

func newSDKClient(t *testing.T, cfg banksdk.Config) *banksdk.Client {
	t.Helper()
	client, err := banksdk.New(cfg)
	require.NoError(t, err)
	return client
}

// jsonBody encodes v for use as a request body.
func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

// postTokenForm hits /oauth/token directly, for asserting on raw grant
// responses the SDK would never send.
func postTokenForm(t *testing.T, baseURL string, form url.Values) *http.Response {
	t.Helper()

	form.Set("client_id", testClientID)
	form.Set("client_secret", testClientSecret)

	resp, err := http.Post(
		baseURL+"/oauth/token",
		"application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}
