package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLivez(t *testing.T) {
	srv := newTestServer(t)

	resp, body := srv.do(t, request{method: http.MethodGet, path: "/livez"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", body["status"])
	require.Equal(t, "test", body["version"])
	require.NotEmpty(t, body["uptime"])
}

func TestReadyz(t *testing.T) {
	srv := newTestServer(t)

	resp, body := srv.do(t, request{method: http.MethodGet, path: "/readyz"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", body["status"])

	checks := body["checks"].(map[string]any)
	require.Equal(t, "ok", checks["database"])
}
