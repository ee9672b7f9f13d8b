package quote

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nkg-services/backend-electro/internal/common"
)

// Handler exposes quote endpoints.
type Handler struct {
	Service      *Service
	DefaultLimit int
	MaxLimit     int
}

type createRequest struct {
	CustomerName  string  `json:"customerName" validate:"required,min=2"`
	CustomerPhone string  `json:"customerPhone" validate:"required,min=8"`
	CustomerEmail string  `json:"customerEmail" validate:"omitempty,email"`
	VariantID     *string `json:"variantId" validate:"omitempty,uuid"`
	ProductName   string  `json:"productName" validate:"required"`
	Quantity      int     `json:"quantity"`
	Message       string  `json:"message" validate:"max=2000"`
}

// Create handles POST /api/v1/quotes, the public quote request endpoint.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.Validate(req); err != nil {
		common.WriteError(w, err)
		return
	}
	created, err := h.Service.Create(r.Context(), CreateInput{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		VariantID:     req.VariantID,
		ProductName:   req.ProductName,
		Quantity:      req.Quantity,
		Message:       req.Message,
	})
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, created)
}

// List handles GET /api/v1/admin/quotes.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := common.ParsePagination(r, h.DefaultLimit, h.MaxLimit)
	quotes, total, err := h.Service.List(r.Context(), r.URL.Query().Get("status"), int32(limit), common.Offset(page, limit))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if quotes == nil {
		quotes = []Quote{}
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       quotes,
		"pagination": common.Pagination{Page: page, PerPage: limit, TotalItems: int(total)},
	})
}

type respondRequest struct {
	Response string `json:"response" validate:"required,max=4000"`
}

// Respond handles POST /api/v1/admin/quotes/{quoteID}/response.
func (h *Handler) Respond(w http.ResponseWriter, r *http.Request) {
	var req respondRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.Validate(req); err != nil {
		common.WriteError(w, err)
		return
	}
	updated, err := h.Service.Respond(r.Context(), chi.URLParam(r, "quoteID"), req.Response)
	if errors.Is(err, ErrNotFound) {
		common.WriteError(w, common.NotFound("open quote"))
		return
	}
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, updated)
}

// Close handles POST /api/v1/admin/quotes/{quoteID}/close.
func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	updated, err := h.Service.Close(r.Context(), chi.URLParam(r, "quoteID"))
	if errors.Is(err, ErrNotFound) {
		common.WriteError(w, common.NotFound("quote"))
		return
	}
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, updated)
}
