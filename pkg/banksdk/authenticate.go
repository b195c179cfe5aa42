package banksdk

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"
)

// Authenticate runs the full comdirect login flow:
//
//  1. password grant for an initial two-factor token
//  2. session lookup
//  3. TAN challenge creation (triggers the push notification)
//  4. approval polling until the user confirms on their device
//  5. session activation and exchange for the banking-scoped token pair
//
// On success the credential is installed, persisted if configured, and the
// background refresh loop is started. If a valid credential already exists
// (earlier Authenticate, or restored from the token file) the flow is
// skipped entirely and no network calls are made.
//
// Concurrent calls serialize; the second caller returns as soon as the
// first one has succeeded. Any step failure leaves the credential store
// untouched.
func (c *Client) Authenticate(ctx context.Context) error {
	c.authMu.Lock()
	defer c.authMu.Unlock()

	if c.store.validAt(c.clock.Now()) {
		c.log.Debug("already authenticated, skipping login flow")
		c.startScheduler()
		return nil
	}

	initial, err := c.passwordGrant(ctx)
	if err != nil {
		return err
	}

	sessionID, err := c.sessionStatus(ctx, initial)
	if err != nil {
		return err
	}

	ch, err := c.createChallenge(ctx, initial, sessionID)
	if err != nil {
		return err
	}

	if err := c.pollChallenge(ctx, initial, ch); err != nil {
		return err
	}

	if err := c.activateSession(ctx, initial, ch); err != nil {
		return err
	}

	cred, err := c.secondaryGrant(ctx, initial)
	if err != nil {
		return err
	}

	c.installCredential(cred)
	c.startScheduler()

	c.log.Info("authenticated",
		"access_token", sanitizeToken(cred.AccessToken),
		"expires_at", cred.ExpiresAt,
	)
	return nil
}

// passwordGrant is step 1: the resource-owner-password-credentials grant.
// The returned token carries only the two-factor scope; it cannot call
// banking endpoints yet.
func (c *Client) passwordGrant(ctx context.Context) (string, error) {
	c.log.Debug("requesting password grant")

	tr, err := c.postToken(ctx, url.Values{
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"grant_type":    {"password"},
		"username":      {c.cfg.Username},
		"password":      {c.cfg.Password},
	})
	if err != nil {
		var se *statusError
		if errors.As(err, &se) {
			if se.code == http.StatusUnauthorized {
				return "", newError(ErrAuthentication, se.code, "invalid credentials", err)
			}
			return "", newError(ErrAuthentication, se.code, "password grant rejected", err)
		}
		if isTimeout(err) {
			return "", newError(ErrNetworkTimeout, 0, "password grant timed out", err)
		}
		return "", newError(ErrAuthentication, 0, "password grant failed", err)
	}

	c.log.Debug("initial token obtained", "access_token", sanitizeToken(tr.AccessToken))
	return tr.AccessToken, nil
}

// sessionStatus is step 2: look up the session identifier scoped to the
// initial token. The bank returns a list; the first entry is the current
// session.
func (c *Client) sessionStatus(ctx context.Context, token string) (string, error) {
	c.log.Debug("retrieving session status")

	req, err := c.newAPIRequest(ctx, http.MethodGet, sessionsPath, nil, token)
	if err != nil {
		return "", newError(ErrSessionActivation, 0, "session lookup failed", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", newError(ErrNetworkTimeout, 0, "session lookup timed out", err)
		}
		return "", newError(ErrSessionActivation, 0, "session lookup failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", newError(ErrSessionActivation, resp.StatusCode, "session lookup rejected", nil)
	}

	var sessions []struct {
		Identifier string `json:"identifier"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&sessions); err != nil {
		return "", newError(ErrSessionActivation, resp.StatusCode, "decoding session list", err)
	}
	if len(sessions) == 0 || sessions[0].Identifier == "" {
		return "", newError(ErrSessionActivation, resp.StatusCode, "no session data returned", nil)
	}

	c.log.Debug("session identifier retrieved", "session", sanitizeToken(sessions[0].Identifier))
	return sessions[0].Identifier, nil
}

// secondaryGrant is the token-exchange half of step 5: trade the approved
// initial token for the banking-scoped credential pair.
func (c *Client) secondaryGrant(ctx context.Context, initial string) (Credential, error) {
	c.log.Debug("exchanging for banking-scoped token")

	tr, err := c.postToken(ctx, url.Values{
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"grant_type":    {"cd_secondary"},
		"token":         {initial},
	})
	if err != nil {
		var se *statusError
		if errors.As(err, &se) {
			return Credential{}, newError(ErrSessionActivation, se.code, "token exchange rejected", err)
		}
		if isTimeout(err) {
			return Credential{}, newError(ErrNetworkTimeout, 0, "token exchange timed out", err)
		}
		return Credential{}, newError(ErrSessionActivation, 0, "token exchange failed", err)
	}

	return Credential{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		ExpiresAt:    c.clock.Now().Add(time.Duration(tr.ExpiresIn) * time.Second),
	}, nil
}

// installCredential installs a freshly authenticated credential and
// persists it. Runs behind the same writer gate as refresh rotations so
// the persisted file always reflects the latest install.
func (c *Client) installCredential(cred Credential) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.store.set(cred)
	c.persistLocked(cred)
}

// persistLocked writes the credential to the token file. Callers must hold
// writeMu. Persistence failures are logged and never block the flow.
func (c *Client) persistLocked(cred Credential) {
	if c.file == nil {
		return
	}
	if err := c.file.save(cred); err != nil {
		c.log.Warn("persisting tokens failed", "error", err)
	}
}
