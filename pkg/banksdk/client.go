package banksdk

import (
	"log/slog"
	"sync"

	"github.com/ledgerlane/comdirect/pkg/idx"
)

// Client is a session handle for the comdirect API. It owns the credential
// pair, the background refresh loop, and the optional persisted token file.
// Create it with New, log in with Authenticate, tear it down with Close.
//
// A Client is safe for concurrent use.
type Client struct {
	cfg   Config
	httpc Doer
	clock Clock
	log   *slog.Logger

	store *tokenStore
	file  *tokenFile // nil when persistence is disabled

	// correlationID is the sessionId part of x-http-request-info. One per
	// Client lifetime.
	correlationID string

	// authMu serializes Authenticate so concurrent callers never create
	// duplicate TAN challenges; the second caller re-checks validity after
	// acquiring it.
	authMu sync.Mutex

	// writeMu serializes credential rotation and the persistence write
	// that follows it, so the file always reflects the latest install.
	writeMu sync.Mutex

	schedMu sync.Mutex
	sched   *refreshScheduler
}

// New validates the configuration and builds a Client. If a token file is
// configured and holds a still-valid credential, it is loaded so that
// Authenticate can short-circuit without a new TAN approval. Persistence
// read failures are logged and otherwise ignored.
func New(cfg Config) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	c := &Client{
		cfg:           cfg,
		httpc:         cfg.HTTPClient,
		clock:         cfg.Clock,
		log:           cfg.Logger,
		store:         &tokenStore{},
		correlationID: idx.New().String(),
	}

	if cfg.TokenFile != "" {
		c.file = &tokenFile{path: cfg.TokenFile, log: c.log}

		cred, ok, err := c.file.load(c.clock.Now())
		if err != nil {
			c.log.Warn("ignoring persisted tokens", "error", err)
		}
		if ok {
			c.store.set(cred)
			c.log.Info("restored persisted tokens",
				"access_token", sanitizeToken(cred.AccessToken),
				"expires_at", cred.ExpiresAt,
			)
		}
	}

	return c, nil
}

// IsAuthenticated reports whether a non-expired credential is present.
func (c *Client) IsAuthenticated() bool {
	return c.store.validAt(c.clock.Now())
}

// Close stops the refresh loop, clears the in-memory credential, and
// removes the persisted token file. In-flight API calls that already
// passed their credential check are not interrupted. The returned error
// only ever concerns file removal and is safe to just log.
func (c *Client) Close() error {
	c.stopScheduler()
	c.store.clear()

	if c.file == nil {
		return nil
	}
	if err := c.file.delete(); err != nil {
		c.log.Warn("removing persisted tokens", "error", err)
		return err
	}
	return nil
}
