package supplier

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nkg-services/backend-electro/internal/common"
)

// Handler exposes the admin supplier endpoints.
type Handler struct {
	Store *Store
}

type supplierRequest struct {
	Name        string `json:"name" validate:"required,min=2"`
	ContactName string `json:"contactName"`
	Phone       string `json:"phone"`
	Email       string `json:"email" validate:"omitempty,email"`
	Address     string `json:"address"`
	IsDropship  bool   `json:"isDropship"`
	IsActive    bool   `json:"isActive"`
}

// List handles GET /api/v1/admin/suppliers.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.Store.List(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if suppliers == nil {
		suppliers = []Supplier{}
	}
	common.JSONData(w, http.StatusOK, suppliers)
}

// Create handles POST /api/v1/admin/suppliers.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req supplierRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.Validate(req); err != nil {
		common.WriteError(w, err)
		return
	}
	created, err := h.Store.Create(r.Context(), Supplier{
		Name:        req.Name,
		ContactName: req.ContactName,
		Phone:       req.Phone,
		Email:       req.Email,
		Address:     req.Address,
		IsDropship:  req.IsDropship,
		IsActive:    req.IsActive,
	})
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, created)
}

// Update handles PUT /api/v1/admin/suppliers/{supplierID}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req supplierRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.Validate(req); err != nil {
		common.WriteError(w, err)
		return
	}
	updated, err := h.Store.Update(r.Context(), Supplier{
		ID:          chi.URLParam(r, "supplierID"),
		Name:        req.Name,
		ContactName: req.ContactName,
		Phone:       req.Phone,
		Email:       req.Email,
		Address:     req.Address,
		IsDropship:  req.IsDropship,
		IsActive:    req.IsActive,
	})
	if errors.Is(err, ErrNotFound) {
		common.WriteError(w, common.NotFound("supplier"))
		return
	}
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/v1/admin/suppliers/{supplierID}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.Store.Delete(r.Context(), chi.URLParam(r, "supplierID"))
	if errors.Is(err, ErrNotFound) {
		common.WriteError(w, common.NotFound("supplier"))
		return
	}
	if err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
