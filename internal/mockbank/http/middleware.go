package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/ledgerlane/comdirect/pkg/httpx"
	"github.com/ledgerlane/comdirect/pkg/jwtx"
)

// requireBearer verifies the Authorization bearer token and requires the
// given scope. User and session IDs land in the request context.
func requireBearer(verifier *jwtx.HS256, scope string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "invalid_token")
				return
			}

			claims, err := verifier.Parse(raw)
			if err != nil || !claims.HasScope(scope) {
				writeError(w, http.StatusUnauthorized, "invalid_token")
				return
			}

			ctx := context.WithValue(r.Context(), httpx.CtxKeyUserID, claims.Subject)
			ctx = context.WithValue(ctx, httpx.CtxKeySessionID, claims.SID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// writeError emits the bank's minimal error body.
func writeError(w http.ResponseWriter, status int, code string) {
	httpx.WriteJSON(w, status, map[string]string{"error": code})
}
