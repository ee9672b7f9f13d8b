package customer

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nkg-services/backend-electro/internal/common"
)

// Handler exposes the admin customer endpoints.
type Handler struct {
	Store        *Store
	DefaultLimit int
	MaxLimit     int
}

func writeCustomerError(w http.ResponseWriter, resource string, err error) {
	if errors.Is(err, ErrNotFound) {
		common.WriteError(w, common.NotFound(resource))
		return
	}
	common.WriteError(w, err)
}

type customerRequest struct {
	FullName     string `json:"fullName" validate:"required,min=2"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phone" validate:"required,min=8"`
	CustomerType string `json:"customerType" validate:"required,oneof=INDIVIDUAL BUSINESS"`
	Notes        string `json:"notes"`
	IsActive     bool   `json:"isActive"`
}

// List handles GET /api/v1/admin/customers.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := common.ParsePagination(r, h.DefaultLimit, h.MaxLimit)
	customers, total, err := h.Store.List(r.Context(), r.URL.Query().Get("q"), int32(limit), common.Offset(page, limit))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if customers == nil {
		customers = []Customer{}
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       customers,
		"pagination": common.Pagination{Page: page, PerPage: limit, TotalItems: int(total)},
	})
}

// Get handles GET /api/v1/admin/customers/{customerID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.Store.Get(r.Context(), chi.URLParam(r, "customerID"))
	if err != nil {
		writeCustomerError(w, "customer", err)
		return
	}
	common.JSONData(w, http.StatusOK, c)
}

// Create handles POST /api/v1/admin/customers.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.Validate(req); err != nil {
		common.WriteError(w, err)
		return
	}
	created, err := h.Store.Create(r.Context(), Customer{
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		CustomerType: req.CustomerType,
		Notes:        req.Notes,
		IsActive:     req.IsActive,
	})
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, created)
}

// Update handles PUT /api/v1/admin/customers/{customerID}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.Validate(req); err != nil {
		common.WriteError(w, err)
		return
	}
	updated, err := h.Store.Update(r.Context(), Customer{
		ID:           chi.URLParam(r, "customerID"),
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		CustomerType: req.CustomerType,
		Notes:        req.Notes,
		IsActive:     req.IsActive,
	})
	if err != nil {
		writeCustomerError(w, "customer", err)
		return
	}
	common.JSONData(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/v1/admin/customers/{customerID}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Delete(r.Context(), chi.URLParam(r, "customerID")); err != nil {
		writeCustomerError(w, "customer", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addressRequest struct {
	Label        string `json:"label"`
	AddressLine1 string `json:"addressLine1" validate:"required"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city" validate:"required"`
	Region       string `json:"region"`
	IsDefault    bool   `json:"isDefault"`
}

// AddAddress handles POST /api/v1/admin/customers/{customerID}/addresses.
func (h *Handler) AddAddress(w http.ResponseWriter, r *http.Request) {
	var req addressRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.Validate(req); err != nil {
		common.WriteError(w, err)
		return
	}
	created, err := h.Store.AddAddress(r.Context(), Address{
		CustomerID:   chi.URLParam(r, "customerID"),
		Label:        req.Label,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		Region:       req.Region,
		IsDefault:    req.IsDefault,
	})
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, created)
}

// DeleteAddress handles DELETE /api/v1/admin/addresses/{addressID}.
func (h *Handler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteAddress(r.Context(), chi.URLParam(r, "addressID")); err != nil {
		writeCustomerError(w, "address", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
