package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ledgerlane/comdirect/internal/mockbank/domain"
	"github.com/ledgerlane/comdirect/internal/mockbank/service"
	"github.com/ledgerlane/comdirect/pkg/httpx"
	"github.com/ledgerlane/comdirect/pkg/slogx"
)

// tokenResponse mirrors the bank's token endpoint payload.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// TokenHandler serves POST /oauth/token with the password, cd_secondary
// and refresh_token grants, form-encoded per RFC 6749.
type TokenHandler struct {
	TokenService *service.TokenService
}

func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	ctx := r.Context()
	log := slogx.FromContext(ctx)

	clientID := strings.TrimSpace(r.Form.Get("client_id"))
	clientSecret := r.Form.Get("client_secret")

	var (
		pair *domain.TokenPair
		err  error
	)
	switch grantType := r.Form.Get("grant_type"); grantType {
	case "password":
		pair, err = h.TokenService.PasswordGrant(ctx,
			clientID, clientSecret,
			strings.TrimSpace(r.Form.Get("username")), r.Form.Get("password"))
	case "cd_secondary":
		pair, err = h.TokenService.SecondaryGrant(ctx,
			clientID, clientSecret, r.Form.Get("token"))
	case "refresh_token":
		pair, err = h.TokenService.RefreshGrant(ctx,
			clientID, clientSecret, r.Form.Get("refresh_token"))
	default:
		writeError(w, http.StatusBadRequest, "unsupported_grant_type")
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidClient):
			writeError(w, http.StatusUnauthorized, "invalid_client")
		case errors.Is(err, service.ErrInvalidCredentials),
			errors.Is(err, service.ErrInvalidGrant),
			errors.Is(err, service.ErrInvalidRefresh),
			errors.Is(err, service.ErrSessionNotActivated):
			writeError(w, http.StatusUnauthorized, "invalid_grant")
		default:
			log.Error("token grant failed", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int(pair.ExpiresIn.Seconds()),
	})
}
