package checkout

import (
	"net/http"

	"github.com/nkg-services/backend-electro/internal/cart"
	"github.com/nkg-services/backend-electro/internal/common"
)

// Handler exposes the storefront checkout endpoint.
type Handler struct {
	Service *Service
}

type submitRequest struct {
	CustomerName           string   `json:"customerName" validate:"required,min=2"`
	CustomerPhone          string   `json:"customerPhone" validate:"required,min=8"`
	CustomerEmail          string   `json:"customerEmail" validate:"omitempty,email"`
	AddressLine1           string   `json:"addressLine1" validate:"required"`
	City                   string   `json:"city" validate:"required"`
	CustomerNotes          string   `json:"customerNotes"`
	InstallationNotes      string   `json:"installationNotes"`
	InstallationServiceIDs []string `json:"installationServiceIds" validate:"dive,uuid"`
}

// Submit handles POST /api/v1/checkout. The cart session rides on the same
// header the cart endpoints use.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(cart.SessionHeader)
	if sessionID == "" {
		common.WriteError(w, common.BadRequest(cart.SessionHeader, "missing cart session header"))
		return
	}
	var req submitRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.Validate(req); err != nil {
		common.WriteError(w, err)
		return
	}
	result, err := h.Service.Submit(r.Context(), Request{
		SessionID:             sessionID,
		CustomerName:          req.CustomerName,
		CustomerPhone:         req.CustomerPhone,
		CustomerEmail:         req.CustomerEmail,
		AddressLine1:          req.AddressLine1,
		City:                  req.City,
		CustomerNotes:         req.CustomerNotes,
		InstallationNotes:     req.InstallationNotes,
		InstallationServiceID: req.InstallationServiceIDs,
	})
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, result)
}
