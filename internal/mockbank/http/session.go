package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ledgerlane/comdirect/internal/mockbank/service"
	"github.com/ledgerlane/comdirect/internal/mockbank/store"
	"github.com/ledgerlane/comdirect/pkg/httpx"
	"github.com/ledgerlane/comdirect/pkg/slogx"
)

// sessionResource is the session body the API exchanges on every leg of
// the flow.
type sessionResource struct {
	Identifier       string `json:"identifier"`
	SessionTanActive bool   `json:"sessionTanActive"`
	Activated2FA     bool   `json:"activated2FA"`
}

// challengeHeader is the x-once-authentication-info payload announced on
// challenge creation and echoed (id only) on activation.
type challengeHeader struct {
	ID   string `json:"id"`
	Typ  string `json:"typ"`
	Link struct {
		Href string `json:"href"`
	} `json:"link"`
}

// SessionsHandler covers session listing, TAN challenge creation
// (validate) and session activation.
type SessionsHandler struct {
	SessionService   *service.SessionService
	ChallengeService *service.ChallengeService
}

// HandleList serves GET /api/session/clients/user/v1/sessions. The
// token is bound to exactly one session, so the listing has one entry.
func (h *SessionsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, err := h.SessionService.Get(ctx, httpx.SessionIDFromCtx(ctx))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "invalid_token")
			return
		}
		slogx.FromContext(ctx).Error("session lookup failed", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, []sessionResource{{
		Identifier:       session.ID,
		SessionTanActive: session.TANActive,
		Activated2FA:     session.TANActive,
	}})
}

// HandleValidate serves POST .../sessions/{id}/validate: it opens a TAN
// challenge and announces it via the x-once-authentication-info header.
func (h *SessionsHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	sessionID := r.PathValue("id")
	if sessionID != httpx.SessionIDFromCtx(ctx) {
		writeError(w, http.StatusUnprocessableEntity, "session_mismatch")
		return
	}

	var body sessionResource
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Identifier != sessionID {
		writeError(w, http.StatusUnprocessableEntity, "invalid_session_body")
		return
	}

	ch, err := h.ChallengeService.Create(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "invalid_token")
			return
		}
		log.Error("challenge creation failed", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	header := challengeHeader{ID: ch.ID, Typ: ch.Kind}
	header.Link.Href = "/api/session/v1/tans/" + ch.ID
	headerJSON, err := json.Marshal(header)
	if err != nil {
		log.Error("encoding challenge header failed", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	w.Header().Set("x-once-authentication-info", string(headerJSON))
	httpx.WriteJSON(w, http.StatusCreated, sessionResource{
		Identifier:       sessionID,
		SessionTanActive: true,
		Activated2FA:     true,
	})
}

// HandleActivate serves PATCH .../sessions/{id}: with an approved
// challenge named in the x-once-authentication-info header, the session
// becomes TAN-active. A missing or malformed header is a 422, matching
// the real API.
func (h *SessionsHandler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID := r.PathValue("id")
	if sessionID != httpx.SessionIDFromCtx(ctx) {
		writeError(w, http.StatusUnprocessableEntity, "session_mismatch")
		return
	}

	var header struct {
		ID string `json:"id"`
	}
	raw := r.Header.Get("x-once-authentication-info")
	if err := json.Unmarshal([]byte(raw), &header); err != nil || header.ID == "" {
		writeError(w, http.StatusUnprocessableEntity, "invalid_authentication_info")
		return
	}

	if err := h.SessionService.Activate(ctx, sessionID, header.ID); err != nil {
		switch {
		case errors.Is(err, service.ErrChallengeNotApproved):
			writeError(w, http.StatusUnprocessableEntity, "challenge_not_approved")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusUnauthorized, "invalid_token")
		default:
			slogx.FromContext(ctx).Error("session activation failed", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, sessionResource{
		Identifier:       sessionID,
		SessionTanActive: true,
		Activated2FA:     true,
	})
}
