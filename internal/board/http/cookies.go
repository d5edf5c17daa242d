package http

import (
	"net/http"
	"time"

	"github.com/uplist/uplist/pkg/csrfx"
	"github.com/uplist/uplist/pkg/httpx"
	"github.com/uplist/uplist/pkg/tokenx"
)

// CookieConfig carries the environment-dependent cookie attributes. Secure
// is off only in dev; Domain is set only in prod.
type CookieConfig struct {
	Secure bool
	Domain string
}

func (c CookieConfig) newCookie(name, value string, maxAge time.Duration, httpOnly bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   c.Domain,
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: httpOnly,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// setAuthCookies attaches the refresh token cookie and, when the pair carries
// one, the long-lived session token cookie.
func (c CookieConfig) setAuthCookies(w http.ResponseWriter, pair *tokenx.TokenPair) {
	http.SetCookie(w, c.newCookie(httpx.CookieRefreshToken, pair.RefreshToken, tokenx.DefaultRefreshTTL, true))
	if pair.SessionToken != "" {
		http.SetCookie(w, c.newCookie(httpx.CookieSessionToken, pair.SessionToken, tokenx.DefaultSessionTTL, true))
	}
}

// setCSRFCookie mirrors a CSRF token into a readable cookie so the frontend
// can echo it back in the X-CSRF-Token header.
func (c CookieConfig) setCSRFCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, c.newCookie(httpx.CookieCSRFToken, token, csrfx.DefaultMaxAge, false))
}

// clearAuthCookies expires every auth-related cookie.
func (c CookieConfig) clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{httpx.CookieRefreshToken, httpx.CookieSessionToken, httpx.CookieCSRFToken} {
		cookie := c.newCookie(name, "", 0, name != httpx.CookieCSRFToken)
		cookie.MaxAge = -1
		http.SetCookie(w, cookie)
	}
}
