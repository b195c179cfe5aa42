// Package http wires the mock bank's endpoints: the three token grants,
// the session/TAN flow, two banking reads, and a small admin surface for
// settling non-push challenges from tests or the command line.
package http

import (
	"log/slog"
	"net/http"

	"github.com/ledgerlane/comdirect/internal/mockbank/service"
	"github.com/ledgerlane/comdirect/pkg/httpx"
	"github.com/ledgerlane/comdirect/pkg/jwtx"
	"github.com/ledgerlane/comdirect/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier *jwtx.HS256
	logger   *slog.Logger

	TokenService     *service.TokenService
	SessionService   *service.SessionService
	ChallengeService *service.ChallengeService
	BankingService   *service.BankingService
}

func NewRouter(verifier *jwtx.HS256, logger *slog.Logger) *Router {
	r := &Router{
		Mux:      http.NewServeMux(),
		verifier: verifier,
		logger:   logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

// ServeHTTP implements http.Handler and applies the global middleware
// chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) ApplyRoutes() {
	r.registerOAuth()
	r.registerSession()
	r.registerBanking()
	r.registerAdmin()
	r.registerSystem()
}

func (r *Router) registerOAuth() {
	tokenHandler := &TokenHandler{TokenService: r.TokenService}

	// The token endpoint is the only unauthenticated surface, so it gets
	// the strict per-IP limit.
	r.Mux.Handle("POST /oauth/token",
		httpx.Chain(tokenHandler, httpx.RateLimitByIP(httpx.StrictLimit)))
}

func (r *Router) registerSession() {
	sessions := &SessionsHandler{
		SessionService:   r.SessionService,
		ChallengeService: r.ChallengeService,
	}
	poll := &ChallengePollHandler{ChallengeService: r.ChallengeService}

	twoFactor := requireBearer(r.verifier, jwtx.ScopeTwoFactor)

	r.Mux.Handle("GET /api/session/clients/user/v1/sessions",
		httpx.Chain(http.HandlerFunc(sessions.HandleList), twoFactor))
	r.Mux.Handle("POST /api/session/clients/user/v1/sessions/{id}/validate",
		httpx.Chain(http.HandlerFunc(sessions.HandleValidate), twoFactor))
	r.Mux.Handle("PATCH /api/session/clients/user/v1/sessions/{id}",
		httpx.Chain(http.HandlerFunc(sessions.HandleActivate), twoFactor))
	r.Mux.Handle("GET /api/session/v1/tans/{id}",
		httpx.Chain(poll, twoFactor))
}

func (r *Router) registerBanking() {
	banking := &BankingHandler{BankingService: r.BankingService}

	bankingScope := requireBearer(r.verifier, jwtx.ScopeBanking)

	r.Mux.Handle("GET /api/banking/clients/user/v2/accounts/balances",
		httpx.Chain(http.HandlerFunc(banking.HandleBalances), bankingScope))
	r.Mux.Handle("GET /api/banking/v1/accounts/{id}/transactions",
		httpx.Chain(http.HandlerFunc(banking.HandleTransactions), bankingScope))
}

func (r *Router) registerAdmin() {
	admin := &ChallengeAdminHandler{ChallengeService: r.ChallengeService}

	r.Mux.Handle("POST /mock/v1/challenges/{id}/approve", http.HandlerFunc(admin.HandleApprove))
	r.Mux.Handle("POST /mock/v1/challenges/{id}/deny", http.HandlerFunc(admin.HandleDeny))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", http.HandlerFunc(handleLivez))
}
