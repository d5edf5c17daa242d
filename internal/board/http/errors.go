package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/uplist/uplist/internal/board/domain"
	"github.com/uplist/uplist/internal/board/service"
	"github.com/uplist/uplist/internal/board/store"
	"github.com/uplist/uplist/pkg/httpx"
	"github.com/uplist/uplist/pkg/passwordx"
	"github.com/uplist/uplist/pkg/slogx"
)

// maxBodySize bounds request bodies; board submissions are small.
const maxBodySize = 64 << 10

// decodeJSON reads a JSON request body into dst, rejecting unknown fields
// and trailing garbage so malformed requests fail instead of half-parsing.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected trailing data")
	}
	return nil
}

// writeServiceError maps service and store sentinels onto the response codes
// the API promises. Anything unmapped is a 500 with a generic body; the
// detail goes to the log, not the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
	case errors.Is(err, service.ErrInvalidToken):
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
	case errors.Is(err, service.ErrSamePassword):
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "new password must differ from the current password")
	case errors.Is(err, passwordx.ErrPolicy):
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, service.ErrInvalidInput):
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrInvalidStatus):
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid feature status")
	case errors.Is(err, store.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, store.ErrAlreadyExists):
		httpx.WriteError(w, http.StatusConflict, "conflict", "resource already exists")
	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err, "path", r.URL.Path)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
	}
}
