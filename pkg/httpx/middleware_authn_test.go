package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uplist/uplist/pkg/httpx"
	"github.com/uplist/uplist/pkg/tokenx"
)

func newTokenService() *tokenx.Service {
	return &tokenx.Service{
		Secret:      []byte("test-secret-test-secret-test-sec"),
		Issuer:      "uplist",
		Audience:    "uplist-api",
		Revocations: tokenx.NewRevocationList(),
	}
}

func adminIdentity() tokenx.Identity {
	return tokenx.Identity{
		SubjectID:   "01J8ZQ3V7N4K2M6P8R0T2V4X6Z",
		Email:       "alice@example.com",
		Role:        "admin",
		DisplayName: "Alice",
	}
}

// claimsEcho responds 200 and records the claims the middleware attached.
func claimsEcho(got **tokenx.Claims) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = httpx.ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate(t *testing.T) {
	svc := newTokenService()

	t.Run("accepts bearer token and attaches claims", func(t *testing.T) {
		raw, err := svc.CreateAccessToken(adminIdentity())
		require.NoError(t, err)

		var got *tokenx.Claims
		handler := httpx.Authenticate(svc)(claimsEcho(&got))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+raw)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, got)
		require.Equal(t, "alice@example.com", got.Email)
	})

	t.Run("prefers cookies over the bearer header", func(t *testing.T) {
		refresh, err := svc.CreateRefreshToken(adminIdentity())
		require.NoError(t, err)

		var got *tokenx.Claims
		handler := httpx.Authenticate(svc)(claimsEcho(&got))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: httpx.CookieRefreshToken, Value: refresh})
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, tokenx.TypeRefresh, got.TokenType)
	})

	t.Run("rejects a missing token", func(t *testing.T) {
		handler := httpx.Authenticate(svc)(okNoop())

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Body.String(), "no authentication token provided")
	})

	t.Run("rejects an invalid token", func(t *testing.T) {
		handler := httpx.Authenticate(svc)(okNoop())

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Body.String(), "invalid authentication token")
	})

	t.Run("rejects a revoked token", func(t *testing.T) {
		raw, err := svc.CreateAccessToken(adminIdentity())
		require.NoError(t, err)

		claims, err := svc.Verify(raw)
		require.NoError(t, err)
		svc.Revoke(claims.ID, claims.ExpiresAt.Time)

		handler := httpx.Authenticate(svc)(okNoop())

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+raw)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Body.String(), "revoked")
	})
}

func TestRequireAdmin(t *testing.T) {
	svc := newTokenService()

	run := func(role string) *httptest.ResponseRecorder {
		id := adminIdentity()
		id.Role = role
		raw, err := svc.CreateAccessToken(id)
		require.NoError(t, err)

		handler := httpx.Chain(okNoop(),
			httpx.Authenticate(svc),
			httpx.RequireAdmin(),
		)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+raw)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("admin passes", func(t *testing.T) {
		require.Equal(t, http.StatusOK, run("admin").Code)
	})

	t.Run("non-admin gets 403", func(t *testing.T) {
		rec := run("user")
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Contains(t, rec.Body.String(), "admin access required")
	})

	t.Run("unauthenticated gets 401", func(t *testing.T) {
		handler := httpx.RequireAdmin()(okNoop())
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireTokenType(t *testing.T) {
	svc := newTokenService()

	refresh, err := svc.CreateRefreshToken(adminIdentity())
	require.NoError(t, err)

	handler := httpx.Chain(okNoop(),
		httpx.Authenticate(svc),
		httpx.RequireTokenType(tokenx.TypeAccess),
	)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "access token required")
}

func TestBearerToken(t *testing.T) {
	t.Run("extracts the token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer abc123")
		require.Equal(t, "abc123", httpx.BearerToken(req))
	})

	t.Run("rejects other schemes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		require.Equal(t, "", httpx.BearerToken(req))
	})

	t.Run("empty without header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		require.Equal(t, "", httpx.BearerToken(req))
	})
}

func okNoop() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}
