package httpx

import (
	"net/http"
	"strings"

	"github.com/uplist/uplist/pkg/slogx"
	"github.com/uplist/uplist/pkg/tokenx"
)

// Auth cookie and header names shared between the middleware and the
// handlers that set them.
const (
	CookieRefreshToken = "refresh_token"
	CookieSessionToken = "session_token"
	CookieCSRFToken    = "csrf_token"
	HeaderCSRFToken    = "X-CSRF-Token"
)

// TokenVerifier verifies a raw token string and answers revocation checks.
// Satisfied by tokenx.Service.
type TokenVerifier interface {
	Verify(raw string) (*tokenx.Claims, error)
	IsRevoked(jti string) bool
}

// Authenticate verifies the request's token and attaches its claims to the
// context. The refresh/session cookies are preferred; a Bearer header is
// accepted as a fallback for older clients. Verification failures and
// revoked token IDs both end the request with 401.
func Authenticate(v TokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := slogx.FromContext(r.Context())

			raw := ExtractToken(r)
			if raw == "" {
				WriteError(w, http.StatusUnauthorized, "unauthorized", "no authentication token provided")
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				log.Warn("token verification failed", "err", err)
				WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid authentication token")
				return
			}

			if claims.ID != "" && v.IsRevoked(claims.ID) {
				WriteError(w, http.StatusUnauthorized, "unauthorized", "token has been revoked")
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithClaims(r.Context(), claims)))
		})
	}
}

// RequireAdmin ends the request with 403 when the authenticated identity is
// not an admin. Must run after Authenticate; the 401/403 distinction is
// load-bearing for callers.
func RequireAdmin() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				WriteError(w, http.StatusUnauthorized, "unauthorized", "no authentication token provided")
				return
			}
			if claims.Role != "admin" {
				WriteError(w, http.StatusForbidden, "forbidden", "admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireTokenType asserts the verified token's type claim. It keeps
// long-lived refresh/session tokens from being used as bearer credentials
// on ordinary API calls.
func RequireTokenType(expected string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if !tokenx.ValidateTokenType(claims, expected) {
				WriteError(w, http.StatusUnauthorized, "unauthorized", expected+" token required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ExtractToken pulls the raw token from the request: refresh cookie first,
// then session cookie, then the Authorization Bearer header.
func ExtractToken(r *http.Request) string {
	if c, err := r.Cookie(CookieRefreshToken); err == nil && c.Value != "" {
		return c.Value
	}
	if c, err := r.Cookie(CookieSessionToken); err == nil && c.Value != "" {
		return c.Value
	}
	return BearerToken(r)
}

// BearerToken returns the Authorization Bearer token, or "".
func BearerToken(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
}
