package http

import (
	"net/http"

	"github.com/ledgerlane/comdirect/pkg/httpx"
)

// handleLivez is a trivial liveness probe.
func handleLivez(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
