package install

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nkg-services/backend-electro/internal/common"
	"github.com/nkg-services/backend-electro/internal/pricing"
)

// Handler exposes the installation service catalog.
type Handler struct {
	Store *Store
}

// List handles GET /api/v1/installation-services.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	services, err := h.Store.List(r.Context(), true)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if services == nil {
		services = []Service{}
	}
	common.JSONData(w, http.StatusOK, services)
}

// AdminList handles GET /api/v1/admin/installation-services.
func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	services, err := h.Store.List(r.Context(), false)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if services == nil {
		services = []Service{}
	}
	common.JSONData(w, http.StatusOK, services)
}

type updateRequest struct {
	Name        string        `json:"name" validate:"required"`
	Description string        `json:"description"`
	Fee         pricing.Money `json:"fee" validate:"gte=0"`
	IsActive    bool          `json:"isActive"`
}

// Update handles PUT /api/v1/admin/installation-services/{serviceID}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.Validate(req); err != nil {
		common.WriteError(w, err)
		return
	}
	updated, err := h.Store.Update(r.Context(), Service{
		ID:          chi.URLParam(r, "serviceID"),
		Name:        req.Name,
		Description: req.Description,
		Fee:         req.Fee,
		IsActive:    req.IsActive,
	})
	if errors.Is(err, ErrNotFound) {
		common.WriteError(w, common.NotFound("installation service"))
		return
	}
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, updated)
}
