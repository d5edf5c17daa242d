package http

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uplist/uplist/internal/board/domain"
)

// createFeature submits a feature through the public API and returns its ID.
func createFeature(t *testing.T, srv *testServer, title string) string {
	t.Helper()
	resp, body := srv.do(t, request{
		method: http.MethodPost,
		path:   "/v1/features",
		body:   map[string]any{"title": title, "description": "details", "authorName": "alice"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return body["id"].(string)
}

func TestFeatureLifecycle(t *testing.T) {
	srv := newTestServer(t)
	srv.seedAdmin(t, testAdminEmail, domain.RoleAdmin)
	adminToken := srv.accessTokenFor(t, testAdminEmail)

	t.Run("anyone can submit and read features", func(t *testing.T) {
		id := createFeature(t, srv, "Dark mode")

		resp, body := srv.do(t, request{method: http.MethodGet, path: "/v1/features/" + id})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "Dark mode", body["title"])
		require.Equal(t, domain.StatusOpen, body["status"])
		require.Equal(t, float64(0), body["votes"])
	})

	t.Run("empty title is rejected", func(t *testing.T) {
		resp, _ := srv.do(t, request{
			method: http.MethodPost,
			path:   "/v1/features",
			body:   map[string]any{"title": "  ", "authorName": "alice"},
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("status changes are admin only", func(t *testing.T) {
		id := createFeature(t, srv, "Keyboard shortcuts")

		resp, _ := srv.do(t, request{
			method: http.MethodPatch,
			path:   "/v1/features/" + id + "/status",
			body:   map[string]any{"status": domain.StatusPlanned},
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		resp, body := srv.do(t, request{
			method: http.MethodPatch,
			path:   "/v1/features/" + id + "/status",
			bearer: adminToken,
			body:   map[string]any{"status": domain.StatusPlanned},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, domain.StatusPlanned, body["status"])

		resp, _ = srv.do(t, request{
			method: http.MethodPatch,
			path:   "/v1/features/" + id + "/status",
			bearer: adminToken,
			body:   map[string]any{"status": "shipped"},
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("deletion is admin only", func(t *testing.T) {
		id := createFeature(t, srv, "Export to CSV")

		resp, _ := srv.do(t, request{method: http.MethodDelete, path: "/v1/features/" + id})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		resp, _ = srv.do(t, request{method: http.MethodDelete, path: "/v1/features/" + id, bearer: adminToken})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp, _ = srv.do(t, request{method: http.MethodGet, path: "/v1/features/" + id})
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestFeatureListing(t *testing.T) {
	srv := newTestServer(t)

	for i := range 3 {
		createFeature(t, srv, fmt.Sprintf("Feature %d", i))
	}

	t.Run("lists with paging metadata", func(t *testing.T) {
		resp, body := srv.do(t, request{method: http.MethodGet, path: "/v1/features?page=1&perPage=2"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, float64(3), body["total"])
		require.Equal(t, float64(1), body["page"])
		require.Equal(t, float64(2), body["perPage"])
		require.Len(t, body["features"], 2)
	})

	t.Run("filters by search query", func(t *testing.T) {
		resp, body := srv.do(t, request{method: http.MethodGet, path: "/v1/features?q=Feature+1"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, float64(1), body["total"])
	})

	t.Run("rejects unknown status and sort values", func(t *testing.T) {
		resp, _ := srv.do(t, request{method: http.MethodGet, path: "/v1/features?status=bogus"})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp, _ = srv.do(t, request{method: http.MethodGet, path: "/v1/features?sort=bogus"})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestCommentEndpoints(t *testing.T) {
	srv := newTestServer(t)
	id := createFeature(t, srv, "Dark mode")

	t.Run("comments and replies", func(t *testing.T) {
		resp, parent := srv.do(t, request{
			method: http.MethodPost,
			path:   "/v1/features/" + id + "/comments",
			body:   map[string]any{"authorName": "alice", "body": "yes please"},
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		require.NotContains(t, parent, "parentId")

		resp, reply := srv.do(t, request{
			method: http.MethodPost,
			path:   "/v1/features/" + id + "/comments",
			body:   map[string]any{"authorName": "bob", "body": "agreed", "parentId": parent["id"]},
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		require.Equal(t, parent["id"], reply["parentId"])

		resp, body := srv.do(t, request{method: http.MethodGet, path: "/v1/features/" + id + "/comments"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, body["comments"], 2)
	})

	t.Run("comments on a missing feature are not found", func(t *testing.T) {
		resp, _ := srv.do(t, request{
			method: http.MethodPost,
			path:   "/v1/features/missing-id/comments",
			body:   map[string]any{"authorName": "alice", "body": "hello"},
		})
		require.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp, _ = srv.do(t, request{method: http.MethodGet, path: "/v1/features/missing-id/comments"})
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestVoteEndpoint(t *testing.T) {
	srv := newTestServer(t)
	id := createFeature(t, srv, "Dark mode")

	resp, body := srv.do(t, request{
		method: http.MethodPost,
		path:   "/v1/features/" + id + "/votes",
		body:   map[string]any{"voterKey": "voter-1"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, float64(1), body["votes"])

	// The same voter cannot vote twice.
	resp, _ = srv.do(t, request{
		method: http.MethodPost,
		path:   "/v1/features/" + id + "/votes",
		body:   map[string]any{"voterKey": "voter-1"},
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = srv.do(t, request{
		method: http.MethodPost,
		path:   "/v1/features/" + id + "/votes",
		body:   map[string]any{"voterKey": "voter-2"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, float64(2), body["votes"])
}
