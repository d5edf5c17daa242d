package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/uplist/uplist/internal/board/service"
	"github.com/uplist/uplist/internal/board/store"
	"github.com/uplist/uplist/pkg/csrfx"
	"github.com/uplist/uplist/pkg/httpx"
	"github.com/uplist/uplist/pkg/slogx"
	"github.com/uplist/uplist/pkg/tokenx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	tokens       *tokenx.Service
	csrf         *csrfx.Guard
	lockout      *httpx.LockoutLimiter
	cookies      CookieConfig
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store          store.Store
	AuthService    *service.AuthService
	FeatureService *service.FeatureService
}

func NewRouter(
	tokens *tokenx.Service,
	csrf *csrfx.Guard,
	lockout *httpx.LockoutLimiter,
	cookies CookieConfig,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		tokens:       tokens,
		csrf:         csrf,
		lockout:      lockout,
		cookies:      cookies,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerAdmins()
	r.registerFeatures()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		AuthService: r.AuthService,
		CSRF:        r.csrf,
		Cookies:     r.cookies,
	}

	// Login is attempt-limited per IP with a lockout, not token-bucketed:
	// credential guessing must stop after a handful of failures.
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.LoginRateLimit(r.lockout),
		),
	)

	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("GET /v1/auth/csrf",
		httpx.Chain(http.HandlerFunc(h.HandleCSRF),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerAdmins() {
	h := &AdminsHandler{AuthService: r.AuthService}

	// Authenticated, access-token-only chain for account self-service.
	authed := func(handler http.Handler) http.Handler {
		return httpx.Chain(handler,
			httpx.Authenticate(r.tokens),
			httpx.RequireTokenType(tokenx.TypeAccess),
			httpx.CSRFProtect(r.csrf),
		)
	}

	// Admin-role chain for account management.
	adminOnly := func(handler http.Handler) http.Handler {
		return httpx.Chain(handler,
			httpx.Authenticate(r.tokens),
			httpx.RequireTokenType(tokenx.TypeAccess),
			httpx.RequireAdmin(),
			httpx.CSRFProtect(r.csrf),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	// Password changes share the login lockout budget per IP.
	r.Mux.Handle("POST /v1/admins/change-password",
		httpx.Chain(authed(http.HandlerFunc(h.HandleChangePassword)),
			httpx.LoginRateLimit(r.lockout),
		),
	)

	r.Mux.Handle("POST /v1/admins/check-password",
		httpx.Chain(http.HandlerFunc(h.HandleCheckPassword),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("POST /v1/admins", adminOnly(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("GET /v1/admins", adminOnly(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("DELETE /v1/admins/{id}", adminOnly(http.HandlerFunc(h.HandleDelete)))
}

func (r *Router) registerFeatures() {
	h := &FeaturesHandler{FeatureService: r.FeatureService}

	public := func(handler http.Handler) http.Handler {
		return httpx.Chain(handler, httpx.RateLimitByIP(httpx.PublicLimit))
	}

	// Public writes get a tighter budget plus CSRF when auth cookies ride along.
	publicWrite := func(handler http.Handler) http.Handler {
		return httpx.Chain(handler,
			httpx.CSRFProtect(r.csrf),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		)
	}

	adminOnly := func(handler http.Handler) http.Handler {
		return httpx.Chain(handler,
			httpx.Authenticate(r.tokens),
			httpx.RequireTokenType(tokenx.TypeAccess),
			httpx.RequireAdmin(),
			httpx.CSRFProtect(r.csrf),
		)
	}

	r.Mux.Handle("POST /v1/features", publicWrite(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("GET /v1/features", public(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("GET /v1/features/{id}", public(http.HandlerFunc(h.HandleGet)))
	r.Mux.Handle("PATCH /v1/features/{id}/status", adminOnly(http.HandlerFunc(h.HandleUpdateStatus)))
	r.Mux.Handle("DELETE /v1/features/{id}", adminOnly(http.HandlerFunc(h.HandleDelete)))

	r.Mux.Handle("POST /v1/features/{id}/comments", publicWrite(http.HandlerFunc(h.HandleCreateComment)))
	r.Mux.Handle("GET /v1/features/{id}/comments", public(http.HandlerFunc(h.HandleListComments)))
	r.Mux.Handle("POST /v1/features/{id}/votes", publicWrite(http.HandlerFunc(h.HandleVote)))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
