package http

import (
	"net/http"
	"strings"

	"github.com/uplist/uplist/internal/board/service"
	"github.com/uplist/uplist/pkg/httpx"
	"github.com/uplist/uplist/pkg/passwordx"
)

// AdminsHandler serves account management under /v1/admins.
type AdminsHandler struct {
	AuthService *service.AuthService
}

type createAdminRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
	Password    string `json:"password"`
}

// HandleCreate serves POST /v1/admins.
func (h *AdminsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createAdminRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "malformed request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "email and password are required")
		return
	}

	admin, err := h.AuthService.CreateAdmin(r.Context(), req.Email, req.DisplayName, req.Role, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toAdminResponse(admin))
}

// HandleList serves GET /v1/admins.
func (h *AdminsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	admins, err := h.AuthService.ListAdmins(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]adminResponse, 0, len(admins))
	for _, a := range admins {
		out = append(out, toAdminResponse(a))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"admins": out})
}

// HandleDelete serves DELETE /v1/admins/{id}. Self-deletion is rejected so
// the last admin cannot lock everyone out by accident.
func (h *AdminsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	claims := httpx.ClaimsFromContext(r.Context())
	if claims != nil && claims.Subject == id {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "cannot delete your own account")
		return
	}

	if err := h.AuthService.DeleteAdmin(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type passwordCheckRequest struct {
	Password string `json:"password"`
}

// HandleChangePassword serves POST /v1/admins/change-password for the
// authenticated account.
func (h *AdminsHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := httpx.ClaimsFromContext(r.Context())
	if claims == nil {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "no authentication token provided")
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "malformed request body")
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "current and new passwords are required")
		return
	}

	if err := h.AuthService.ChangePassword(r.Context(), claims.Subject, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "password_changed"})
}

// HandleCheckPassword serves POST /v1/admins/check-password: a dry-run of the
// password policy so the frontend can show rule feedback and a strength bar
// before submitting.
func (h *AdminsHandler) HandleCheckPassword(w http.ResponseWriter, r *http.Request) {
	var req passwordCheckRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "malformed request body")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, passwordx.Validate(req.Password))
}
