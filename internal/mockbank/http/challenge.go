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

// ChallengePollHandler serves GET /api/session/v1/tans/{id}, the status
// poll the client loops on while waiting for TAN approval.
type ChallengePollHandler struct {
	ChallengeService *service.ChallengeService
}

func (h *ChallengePollHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ch, err := h.ChallengeService.Status(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "challenge_not_found")
			return
		}
		slogx.FromContext(ctx).Error("challenge status read failed", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if ch.SessionID != httpx.SessionIDFromCtx(ctx) {
		writeError(w, http.StatusNotFound, "challenge_not_found")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": ch.Status})
}

// ChallengeAdminHandler settles non-push challenges: tests and the CLI
// hit these instead of a phone's TAN app. Not part of the real API,
// hence the /mock prefix.
type ChallengeAdminHandler struct {
	ChallengeService *service.ChallengeService
}

func (h *ChallengeAdminHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TOTP string `json:"totp"`
	}
	if r.Body != nil {
		// Body is optional; without a TAN secret no code is needed.
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	h.settle(w, r, func() error {
		return h.ChallengeService.Approve(r.Context(), r.PathValue("id"), body.TOTP)
	})
}

func (h *ChallengeAdminHandler) HandleDeny(w http.ResponseWriter, r *http.Request) {
	h.settle(w, r, func() error {
		return h.ChallengeService.Deny(r.Context(), r.PathValue("id"))
	})
}

func (h *ChallengeAdminHandler) settle(w http.ResponseWriter, r *http.Request, fn func() error) {
	if err := fn(); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "challenge_not_found")
		case errors.Is(err, service.ErrChallengeSettled):
			writeError(w, http.StatusConflict, "challenge_already_settled")
		case errors.Is(err, service.ErrInvalidTOTP):
			writeError(w, http.StatusForbidden, "invalid_totp_code")
		default:
			slogx.FromContext(r.Context()).Error("challenge settle failed", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
