package http

import (
	"net/http"
	"time"

	"github.com/uplist/uplist/internal/board/store"
	"github.com/uplist/uplist/pkg/httpx"
)

// ReadyzHandler reports 200 only when the store answers a ping; otherwise
// 503 with the failing check named in the body.
func ReadyzHandler(startTime time.Time, version string, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &HealthChecks{Database: "ok"}
		status := "ok"
		code := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
