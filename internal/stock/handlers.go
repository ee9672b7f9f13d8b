package stock

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nkg-services/backend-electro/internal/common"
)

// Handler exposes the admin stock endpoints.
type Handler struct {
	Service      *Service
	DefaultLimit int
	MaxLimit     int
}

// Levels handles GET /api/v1/admin/stock.
func (h *Handler) Levels(w http.ResponseWriter, r *http.Request) {
	page, limit := common.ParsePagination(r, h.DefaultLimit, h.MaxLimit)
	lowOnly := r.URL.Query().Get("low") == "true"
	levels, total, err := h.Service.Levels(r.Context(), lowOnly, int32(limit), common.Offset(page, limit))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if levels == nil {
		levels = []Level{}
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       levels,
		"pagination": common.Pagination{Page: page, PerPage: limit, TotalItems: int(total)},
	})
}

// Movements handles GET /api/v1/admin/stock/{variantID}/movements.
func (h *Handler) Movements(w http.ResponseWriter, r *http.Request) {
	page, limit := common.ParsePagination(r, h.DefaultLimit, h.MaxLimit)
	movements, err := h.Service.Movements(r.Context(), chi.URLParam(r, "variantID"), int32(limit), common.Offset(page, limit))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if movements == nil {
		movements = []Movement{}
	}
	common.JSONData(w, http.StatusOK, movements)
}

type movementRequest struct {
	MovementType string `json:"movementType" validate:"required,oneof=IN OUT ADJUST"`
	Quantity     int    `json:"quantity" validate:"gte=0"`
	Reason       string `json:"reason"`
	Reference    string `json:"reference"`
}

// Apply handles POST /api/v1/admin/stock/{variantID}/movements.
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	var req movementRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.Validate(req); err != nil {
		common.WriteError(w, err)
		return
	}
	adminID, _ := common.AdminID(r.Context())
	level, err := h.Service.Apply(r.Context(), MovementInput{
		VariantID:    chi.URLParam(r, "variantID"),
		MovementType: req.MovementType,
		Quantity:     req.Quantity,
		Reason:       req.Reason,
		Reference:    req.Reference,
		CreatedBy:    adminID,
	})
	if errors.Is(err, ErrInsufficient) {
		common.WriteError(w, common.Conflict(err.Error()))
		return
	}
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, level)
}

type reorderRequest struct {
	ReorderLevel int `json:"reorderLevel" validate:"gte=0"`
}

// SetReorderLevel handles PUT /api/v1/admin/stock/{variantID}/reorder-level.
func (h *Handler) SetReorderLevel(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.Validate(req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := h.Service.SetReorderLevel(r.Context(), chi.URLParam(r, "variantID"), req.ReorderLevel); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
