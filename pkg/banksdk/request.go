package banksdk

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// Do issues an authenticated request against the banking API. The current
// access token is attached as a bearer credential; if none is valid, the
// call fails immediately with ErrTokenExpired and no network I/O happens.
//
// A 401 response triggers exactly one reactive refresh and one retry with
// the new token. A second 401 is returned as-is. The caller owns the
// response body.
func (c *Client) Do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	cred, version, ok := c.store.get()
	if !ok || !cred.ExpiresAt.After(c.clock.Now()) {
		return nil, newError(ErrTokenExpired, 0, "no valid credential", nil)
	}

	resp, err := c.send(ctx, method, path, body, cred.AccessToken)
	if err != nil {
		return nil, mapTransportError(err, method+" "+path+" failed")
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	resp.Body.Close()

	c.log.Debug("request unauthorized, attempting reactive refresh", "path", path)
	if err := c.rotate(ctx, version, ReauthAPIRequestUnauthorized); err != nil {
		return nil, newError(ErrTokenExpired, http.StatusUnauthorized, "unauthorized and refresh failed", err)
	}

	cred, _, ok = c.store.get()
	if !ok {
		return nil, newError(ErrTokenExpired, 0, "no valid credential after refresh", nil)
	}

	resp, err = c.send(ctx, method, path, body, cred.AccessToken)
	if err != nil {
		return nil, mapTransportError(err, method+" "+path+" retry failed")
	}
	return resp, nil
}

func (c *Client) send(ctx context.Context, method, path string, body []byte, token string) (*http.Response, error) {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := c.newAPIRequest(ctx, method, path, rdr, token)
	if err != nil {
		return nil, err
	}
	return c.httpc.Do(req)
}

// getJSON issues an authenticated GET and decodes the 200 body into
// target, mapping every other status onto the error taxonomy.
func (c *Client) getJSON(ctx context.Context, path string, target any) error {
	resp, err := c.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return mapAPIError(resp.StatusCode, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return newError(ErrServer, resp.StatusCode, "decoding response body", err)
	}
	return nil
}

// mapAPIError converts a non-2xx domain response status into a typed error.
func mapAPIError(status int, path string) *Error {
	switch {
	case status == http.StatusUnauthorized:
		return newError(ErrTokenExpired, status, "request unauthorized", nil)
	case status == http.StatusUnprocessableEntity:
		return newError(ErrValidation, status, "request rejected as invalid", nil)
	case status == http.StatusNotFound && strings.Contains(path, "/accounts/"):
		return newError(ErrAccountNotFound, status, "account not found", nil)
	case status >= 500:
		return newError(ErrServer, status, http.StatusText(status), nil)
	default:
		return &Error{Code: ErrorCodeRequestFailed, StatusCode: status, Message: http.StatusText(status)}
	}
}
