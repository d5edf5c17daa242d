package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uplist/uplist/internal/board/domain"
	"github.com/uplist/uplist/internal/board/service"
	"github.com/uplist/uplist/internal/board/store/drivers/sqlite"
	"github.com/uplist/uplist/pkg/csrfx"
	"github.com/uplist/uplist/pkg/httpx"
	"github.com/uplist/uplist/pkg/tokenx"
)

const (
	testPassword   = "Tr0ub4dor&Three"
	testAdminEmail = "admin@example.com"
)

type testServer struct {
	*httptest.Server
	router *Router
}

// newTestServer wires a full router over an in-memory store. The lockout
// profile is the permissive test one; tests that exercise the lockout itself
// use newTestServerWithLockout.
func newTestServer(t *testing.T) *testServer {
	return newTestServerWithLockout(t, httpx.LockoutProfile("test"))
}

func newTestServerWithLockout(t *testing.T, lockCfg httpx.LockoutConfig) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())

	tokens := &tokenx.Service{
		Secret:      []byte("test-secret-at-least-32-bytes-long!!"),
		Issuer:      "uplist-test",
		Audience:    "uplist",
		Revocations: tokenx.NewRevocationList(),
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := NewRouter(
		tokens,
		csrfx.NewGuard([]byte("csrf-test-secret")),
		httpx.NewLockoutLimiter(lockCfg),
		CookieConfig{},
		"test",
		st,
		logger,
	)
	router.AuthService = &service.AuthService{Store: st, Tokens: tokens}
	router.FeatureService = &service.FeatureService{Store: st}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{Server: srv, router: router}
}

func (s *testServer) seedAdmin(t *testing.T, email, role string) domain.Admin {
	t.Helper()
	admin, err := s.router.AuthService.CreateAdmin(context.Background(), email, "Test Admin", role, testPassword)
	require.NoError(t, err)
	return admin
}

// request describes one API call made through the test server.
type request struct {
	method  string
	path    string
	body    any
	bearer  string
	cookies []*http.Cookie
	headers map[string]string
}

// do performs the request and decodes the JSON response body into a map.
// The response body is fully consumed; inspect cookies and headers on the
// returned response.
func (s *testServer) do(t *testing.T, req request) (*http.Response, map[string]any) {
	t.Helper()

	var body io.Reader
	if req.body != nil {
		raw, err := json.Marshal(req.body)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequest(req.method, s.URL+req.path, body)
	require.NoError(t, err)
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.bearer != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.bearer)
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}
	for _, c := range req.cookies {
		httpReq.AddCookie(c)
	}

	resp, err := http.DefaultClient.Do(httpReq)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	var decoded map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "response body: %s", raw)
	}
	return resp, decoded
}

// login performs a login for the seeded admin and returns the raw response
// plus the decoded body.
func (s *testServer) login(t *testing.T, email, password string, rememberMe bool) (*http.Response, map[string]any) {
	t.Helper()
	return s.do(t, request{
		method: http.MethodPost,
		path:   "/v1/auth/login",
		body:   map[string]any{"email": email, "password": password, "rememberMe": rememberMe},
	})
}

// accessTokenFor logs the account in and returns its bearer access token.
func (s *testServer) accessTokenFor(t *testing.T, email string) string {
	t.Helper()
	resp, body := s.login(t, email, testPassword, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tokens := body["tokens"].(map[string]any)
	return tokens["accessToken"].(string)
}

// cookieNamed returns the Set-Cookie entry with the given name, or nil.
func cookieNamed(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
