package banksdk

import (
	"context"
	"errors"
	"net/url"
	"time"
)

// Refresh forces an immediate token rotation. Most callers never need
// this: the background loop refreshes proactively and Do recovers from
// 401s reactively. On failure the credential is cleared and the reauth
// callback fires with reason "token_refresh_failed".
func (c *Client) Refresh(ctx context.Context) error {
	_, version, ok := c.store.get()
	if !ok {
		return newError(ErrTokenExpired, 0, "not authenticated", nil)
	}
	return c.rotate(ctx, version, ReauthTokenRefreshFailed)
}

// rotate is the single funnel for every refresh path: proactive
// (scheduler), reactive (401 recovery), and manual. It holds the writer
// gate across the grant, the install, and the persistence write, so
// exactly one of two racing refreshes rotates and the file on disk always
// matches the store.
//
// observed is the store version the caller saw when it decided to
// refresh. If the store moved on since (another path already rotated, or
// Close cleared it), the rotation is redundant and returns nil without
// touching anything.
func (c *Client) rotate(ctx context.Context, observed uint64, reason ReauthReason) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	cur, version, ok := c.store.get()
	if !ok {
		c.notifyReauth(reason)
		return newError(ErrTokenExpired, 0, "no credential to refresh", nil)
	}
	if version != observed {
		c.log.Debug("refresh superseded by a newer rotation")
		return nil
	}

	cred, err := c.refreshGrant(ctx, cur.RefreshToken)
	if err != nil {
		c.store.clear()
		c.notifyReauth(reason)
		return err
	}

	// Close may clear the store without taking writeMu; the CAS keeps a
	// cleared store cleared instead of resurrecting a credential.
	if !c.store.installIfCurrent(cred, version) {
		return nil
	}
	c.persistLocked(cred)

	c.log.Info("token rotated",
		"access_token", sanitizeToken(cred.AccessToken),
		"expires_at", cred.ExpiresAt,
	)
	return nil
}

// refreshGrant performs the refresh_token exchange. The bank rotates both
// tokens: the presented refresh token is invalid after this call.
func (c *Client) refreshGrant(ctx context.Context, refreshToken string) (Credential, error) {
	tr, err := c.postToken(ctx, url.Values{
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	})
	if err != nil {
		var se *statusError
		if errors.As(err, &se) {
			return Credential{}, newError(ErrTokenExpired, se.code, "refresh grant rejected", err)
		}
		if isTimeout(err) {
			return Credential{}, newError(ErrNetworkTimeout, 0, "refresh grant timed out", err)
		}
		return Credential{}, newError(ErrTokenExpired, 0, "refresh grant failed", err)
	}

	return Credential{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		ExpiresAt:    c.clock.Now().Add(time.Duration(tr.ExpiresIn) * time.Second),
	}, nil
}
