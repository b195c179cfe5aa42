package banksdk

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
)

// sessionValidationBody is the request body for challenge creation and
// session activation. The bank expects the session identifier echoed back
// with both TAN flags set.
type sessionValidationBody struct {
	Identifier       string `json:"identifier"`
	SessionTanActive bool   `json:"sessionTanActive"`
	Activated2FA     bool   `json:"activated2FA"`
}

// challengeInfo is the x-once-authentication-info header payload returned
// by challenge creation.
type challengeInfo struct {
	ID   string `json:"id"`
	Typ  string `json:"typ"`
	Link struct {
		Href string `json:"href"`
	} `json:"link"`
}

// createChallenge is step 3: request a TAN challenge for the session. For
// the push kind this fires the notification to the user's device; the
// returned poll path is then watched until the user approves.
func (c *Client) createChallenge(
	ctx context.Context,
	token, sessionID string,
) (*challengeSession, error) {
	c.log.Debug("creating TAN challenge")

	body, err := json.Marshal(sessionValidationBody{
		Identifier:       sessionID,
		SessionTanActive: true,
		Activated2FA:     true,
	})
	if err != nil {
		return nil, newError(ErrAuthentication, 0, "encoding challenge request", err)
	}

	req, err := c.newAPIRequest(
		ctx,
		http.MethodPost,
		sessionsPath+"/"+sessionID+"/validate",
		bytes.NewReader(body),
		token,
	)
	if err != nil {
		return nil, newError(ErrAuthentication, 0, "TAN challenge creation failed", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, newError(ErrNetworkTimeout, 0, "TAN challenge creation timed out", err)
		}
		return nil, newError(ErrAuthentication, 0, "TAN challenge creation failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newError(ErrAuthentication, resp.StatusCode, "TAN challenge creation rejected", nil)
	}

	header := resp.Header.Get("x-once-authentication-info")
	if header == "" {
		return nil, newError(ErrAuthentication, resp.StatusCode, "missing x-once-authentication-info header", nil)
	}

	var info challengeInfo
	if err := json.Unmarshal([]byte(header), &info); err != nil {
		return nil, newError(ErrAuthentication, resp.StatusCode, "decoding x-once-authentication-info header", err)
	}
	if info.ID == "" || info.Link.Href == "" {
		return nil, newError(ErrAuthentication, resp.StatusCode, "incomplete x-once-authentication-info header", nil)
	}

	c.log.Info("TAN challenge created", "kind", info.Typ, "challenge", info.ID)

	c.notifyTANStatus(TANStatusRequested, TANStatusInfo{
		Kind:        info.Typ,
		ChallengeID: info.ID,
		Timeout:     c.cfg.TANTimeout,
	})

	return &challengeSession{
		sessionID:   sessionID,
		challengeID: info.ID,
		kind:        info.Typ,
		pollPath:    info.Link.Href,
		createdAt:   c.clock.Now(),
	}, nil
}

// pollChallenge is step 4: watch the challenge status once per interval
// until it turns AUTHENTICATED, a terminal negative status appears, the
// approval window elapses, or ctx is cancelled.
func (c *Client) pollChallenge(ctx context.Context, token string, ch *challengeSession) error {
	start := c.clock.Now()
	timeout := c.cfg.TANTimeout
	interval := c.cfg.TANPollInterval
	polls := 0

	c.notifyTANStatus(TANStatusPending, TANStatusInfo{
		Kind:        ch.kind,
		ChallengeID: ch.challengeID,
		Timeout:     timeout,
		Remaining:   timeout,
	})

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		elapsed := c.clock.Now().Sub(start)
		if elapsed >= timeout {
			c.log.Warn("TAN approval timed out", "kind", ch.kind, "elapsed", elapsed)
			c.notifyTANStatus(TANStatusTimeout, TANStatusInfo{
				Kind:        ch.kind,
				ChallengeID: ch.challengeID,
				Elapsed:     elapsed,
				Timeout:     timeout,
			})
			return newError(ErrTANTimeout, 0, "no TAN approval received", nil)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.clock.After(interval):
		}

		status, err := c.readChallengeStatus(ctx, token, ch.pollPath)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// Transient poll failures just mean one missed sample; the
			// timeout still bounds the loop.
			c.log.Warn("TAN status poll failed, retrying", "error", err)
			continue
		}

		elapsed = c.clock.Now().Sub(start)
		switch status {
		case "AUTHENTICATED":
			c.log.Info("TAN approved", "kind", ch.kind, "elapsed", elapsed)
			c.notifyTANStatus(TANStatusApproved, TANStatusInfo{
				Kind:        ch.kind,
				ChallengeID: ch.challengeID,
				Elapsed:     elapsed,
				Timeout:     timeout,
			})
			return nil

		case "PENDING":
			polls++
			if polls%10 == 0 {
				c.log.Info("still waiting for TAN approval", "elapsed", elapsed)
				c.notifyTANStatus(TANStatusPending, TANStatusInfo{
					Kind:        ch.kind,
					ChallengeID: ch.challengeID,
					Elapsed:     elapsed,
					Remaining:   timeout - elapsed,
					Timeout:     timeout,
				})
			}

		default:
			// CANCELLED, EXPIRED, or anything else the bank invents is
			// terminal; keeping on polling would never succeed.
			return newError(ErrAuthentication, 0, "TAN challenge ended with status "+status, nil)
		}
	}
}

// readChallengeStatus issues one status read against the poll path.
func (c *Client) readChallengeStatus(ctx context.Context, token, pollPath string) (string, error) {
	req, err := c.newAPIRequest(ctx, http.MethodGet, pollPath, nil, token)
	if err != nil {
		return "", err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &statusError{code: resp.StatusCode}
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	return payload.Status, nil
}

// activateSession is the activation half of step 5: confirm the approved
// challenge against the session. The bank answers 422 when the
// x-once-authentication-info header is malformed.
func (c *Client) activateSession(ctx context.Context, token string, ch *challengeSession) error {
	c.log.Debug("activating session")

	body, err := json.Marshal(sessionValidationBody{
		Identifier:       ch.sessionID,
		SessionTanActive: true,
		Activated2FA:     true,
	})
	if err != nil {
		return newError(ErrSessionActivation, 0, "encoding activation request", err)
	}

	req, err := c.newAPIRequest(
		ctx,
		http.MethodPatch,
		sessionsPath+"/"+ch.sessionID,
		bytes.NewReader(body),
		token,
	)
	if err != nil {
		return newError(ErrSessionActivation, 0, "session activation failed", err)
	}

	authInfo, _ := json.Marshal(map[string]string{"id": ch.challengeID})
	req.Header.Set("x-once-authentication-info", string(authInfo))

	resp, err := c.httpc.Do(req)
	if err != nil {
		if isTimeout(err) {
			return newError(ErrNetworkTimeout, 0, "session activation timed out", err)
		}
		return newError(ErrSessionActivation, 0, "session activation failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		c.log.Info("session activated")
		return nil
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return newError(ErrSessionActivation, resp.StatusCode, "incorrect authentication info header", nil)
	default:
		return newError(ErrSessionActivation, resp.StatusCode, "session activation rejected", nil)
	}
}
