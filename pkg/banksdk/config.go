package banksdk

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Default tuning values. The TAN window matches what the bank enforces
// server-side; the refresh threshold leaves two minutes of slack before
// the access token expires.
const (
	DefaultRefreshThreshold = 120 * time.Second
	DefaultRequestTimeout   = 30 * time.Second
	DefaultTANPollInterval  = 1 * time.Second
	DefaultTANTimeout       = 60 * time.Second
)

// Doer performs a single HTTP exchange. *http.Client satisfies it; tests
// inject fakes.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config describes everything a Client needs. ClientID, ClientSecret,
// Username, Password and BaseURL are required; everything else has a
// sensible default.
type Config struct {
	// OAuth2 client registered with the bank.
	ClientID     string
	ClientSecret string

	// Account holder credentials, used once during the password grant.
	Username string
	Password string

	// BaseURL of the banking API, e.g. "https://api.comdirect.de".
	BaseURL string

	// RefreshThreshold is how long before expiry the background loop
	// rotates the token pair. Must be shorter than the token lifetime.
	RefreshThreshold time.Duration

	// RequestTimeout bounds each individual HTTP exchange when the SDK
	// constructs its own HTTP client. Ignored when HTTPClient is set.
	RequestTimeout time.Duration

	// TANPollInterval and TANTimeout control the approval poll loop.
	TANPollInterval time.Duration
	TANTimeout      time.Duration

	// TokenFile, when set, enables token persistence at this path.
	TokenFile string

	// OnReauthRequired is invoked when credentials cannot be recovered
	// automatically and a fresh Authenticate call is needed.
	OnReauthRequired func(reason ReauthReason)

	// OnTANStatus is invoked with progress updates while waiting for the
	// out-of-band TAN approval.
	OnTANStatus func(status TANStatus, info TANStatusInfo)

	// HTTPClient overrides the transport. Nil means a *http.Client with
	// Timeout set to RequestTimeout.
	HTTPClient Doer

	// Clock overrides time for tests. Nil means the system clock.
	Clock Clock

	// Logger for SDK diagnostics. Nil means slog.Default().
	Logger *slog.Logger
}

func (c Config) validate() error {
	switch {
	case c.ClientID == "":
		return fmt.Errorf("config: ClientID is required")
	case c.ClientSecret == "":
		return fmt.Errorf("config: ClientSecret is required")
	case c.Username == "":
		return fmt.Errorf("config: Username is required")
	case c.Password == "":
		return fmt.Errorf("config: Password is required")
	case c.BaseURL == "":
		return fmt.Errorf("config: BaseURL is required")
	}
	if c.RefreshThreshold < 0 || c.TANPollInterval < 0 || c.TANTimeout < 0 {
		return fmt.Errorf("config: durations must not be negative")
	}
	return nil
}

func (c Config) withDefaults() Config {
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
	if c.RefreshThreshold == 0 {
		c.RefreshThreshold = DefaultRefreshThreshold
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.TANPollInterval == 0 {
		c.TANPollInterval = DefaultTANPollInterval
	}
	if c.TANTimeout == 0 {
		c.TANTimeout = DefaultTANTimeout
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.RequestTimeout}
	}
	if c.Clock == nil {
		c.Clock = systemClock{}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}
