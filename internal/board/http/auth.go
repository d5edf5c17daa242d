package http

import (
	"net/http"
	"strings"

	"github.com/uplist/uplist/internal/board/domain"
	"github.com/uplist/uplist/internal/board/service"
	"github.com/uplist/uplist/pkg/csrfx"
	"github.com/uplist/uplist/pkg/httpx"
	"github.com/uplist/uplist/pkg/slogx"
	"github.com/uplist/uplist/pkg/tokenx"
)

// AuthHandler serves the /v1/auth endpoints: login, refresh, logout, and
// CSRF token minting.
type AuthHandler struct {
	AuthService *service.AuthService
	CSRF        *csrfx.Guard
	Cookies     CookieConfig
}

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

type adminResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

type loginResponse struct {
	Admin  adminResponse     `json:"admin"`
	Tokens *tokenx.TokenPair `json:"tokens"`
}

func toAdminResponse(a domain.Admin) adminResponse {
	return adminResponse{
		ID:          a.ID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		Role:        a.Role,
	}
}

// HandleLogin serves POST /v1/auth/login. Responses to bad credentials are
// uniform regardless of whether the account exists. When the client already
// carries a CSRF cookie the double-submit check applies; first-visit logins
// without one are allowed through.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if c, err := r.Cookie(httpx.CookieCSRFToken); err == nil && c.Value != "" {
		header := r.Header.Get(httpx.HeaderCSRFToken)
		if !h.CSRF.ValidateProtection(r.Method, c.Value, header) {
			slogx.FromContext(ctx).Warn("login csrf validation failed")
			httpx.WriteError(w, http.StatusForbidden, "forbidden", "CSRF token missing or invalid")
			return
		}
	}

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "malformed request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
		return
	}

	admin, pair, err := h.AuthService.Login(ctx, req.Email, req.Password, req.RememberMe)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.Cookies.setAuthCookies(w, pair)
	httpx.WriteJSON(w, http.StatusOK, loginResponse{
		Admin:  toAdminResponse(admin),
		Tokens: pair,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// HandleRefresh serves POST /v1/auth/refresh. The refresh token comes from
// the cookie when present, otherwise from the body; rotation revokes the old
// token and resets the cookie.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	raw := ""
	if c, err := r.Cookie(httpx.CookieRefreshToken); err == nil && c.Value != "" {
		raw = c.Value
	} else {
		var req refreshRequest
		if err := decodeJSON(r, &req); err == nil {
			raw = req.RefreshToken
		}
	}
	if raw == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "no refresh token provided")
		return
	}

	admin, pair, err := h.AuthService.Refresh(r.Context(), raw)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.Cookies.setAuthCookies(w, pair)
	httpx.WriteJSON(w, http.StatusOK, loginResponse{
		Admin:  toAdminResponse(admin),
		Tokens: pair,
	})
}

// HandleLogout serves POST /v1/auth/logout. Every token the request carries
// (cookies and bearer header) is revoked; the response is 200 even when no
// token verified, so logout can never fail visibly.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	var raws []string
	for _, name := range []string{httpx.CookieRefreshToken, httpx.CookieSessionToken} {
		if c, err := r.Cookie(name); err == nil && c.Value != "" {
			raws = append(raws, c.Value)
		}
	}
	if bearer := httpx.BearerToken(r); bearer != "" {
		raws = append(raws, bearer)
	}

	h.AuthService.Logout(r.Context(), raws...)
	h.Cookies.clearAuthCookies(w)

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// HandleCSRF serves GET /v1/auth/csrf: mints a fresh token and mirrors it in
// a readable cookie for the double-submit pattern.
func (h *AuthHandler) HandleCSRF(w http.ResponseWriter, r *http.Request) {
	token, err := h.CSRF.Generate()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.Cookies.setCSRFCookie(w, token)
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"csrfToken": token})
}
