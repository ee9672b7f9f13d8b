package auth

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nkg-services/backend-electro/internal/common"
)

// Handler exposes authentication and staff-management endpoints.
type Handler struct {
	Service *Service
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// Login handles POST /api/v1/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.Validate(req); err != nil {
		common.WriteError(w, err)
		return
	}
	result, err := h.Service.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		common.WriteError(w, common.Unauthorized("invalid email or password"))
		return
	}
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, result)
}

// Me handles GET /api/v1/admin/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := common.AdminID(r.Context())
	if !ok {
		common.WriteError(w, common.Unauthorized(""))
		return
	}
	user, err := h.Service.GetAdmin(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, user)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

// ChangePassword handles POST /api/v1/admin/me/password.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := common.AdminID(r.Context())
	if !ok {
		common.WriteError(w, common.Unauthorized(""))
		return
	}
	var req changePasswordRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.Validate(req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := h.Service.ChangePassword(r.Context(), id, req.CurrentPassword, req.NewPassword); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListAdmins handles GET /api/v1/admin/users. Root only.
func (h *Handler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.ListAdmins(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if users == nil {
		users = []AdminUser{}
	}
	common.JSONData(w, http.StatusOK, users)
}

type createAdminRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"fullName" validate:"required,min=2"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=root admin"`
}

// CreateAdmin handles POST /api/v1/admin/users. Root only.
func (h *Handler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req createAdminRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.Validate(req); err != nil {
		common.WriteError(w, err)
		return
	}
	created, err := h.Service.CreateAdmin(r.Context(), req.Email, req.FullName, req.Password, req.Role)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, created)
}

type setActiveRequest struct {
	IsActive bool `json:"isActive"`
}

// SetAdminActive handles PATCH /api/v1/admin/users/{adminID}/active. Root
// only, and an admin cannot disable their own account.
func (h *Handler) SetAdminActive(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "adminID")
	if callerID, _ := common.AdminID(r.Context()); callerID == targetID {
		common.WriteError(w, common.Conflict("cannot change own active state"))
		return
	}
	var req setActiveRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	updated, err := h.Service.SetAdminActive(r.Context(), targetID, req.IsActive)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, updated)
}
