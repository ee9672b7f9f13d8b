package order

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nkg-services/backend-electro/internal/common"
	"github.com/nkg-services/backend-electro/internal/pricing"
)

// DashboardCache is dropped after order mutations so the back-office
// overview reflects them before its TTL lapses.
type DashboardCache interface {
	Invalidate(ctx context.Context)
}

// Handler exposes order endpoints. Track is public, everything else sits
// behind admin auth.
type Handler struct {
	Store        *Store
	Dashboard    DashboardCache
	DefaultLimit int
	MaxLimit     int
}

func (h *Handler) invalidateDashboard(r *http.Request) {
	if h.Dashboard != nil {
		h.Dashboard.Invalidate(r.Context())
	}
}

func writeOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		common.WriteError(w, common.NotFound("order"))
	case errors.Is(err, ErrBadTransition):
		common.WriteError(w, common.Conflict(err.Error()))
	default:
		common.WriteError(w, err)
	}
}

// Track handles GET /api/v1/orders/{orderNumber}. The phone query parameter
// must match the order, the reference alone is guessable.
func (h *Handler) Track(w http.ResponseWriter, r *http.Request) {
	o, err := h.Store.GetByNumber(r.Context(), chi.URLParam(r, "orderNumber"))
	if err != nil {
		writeOrderError(w, err)
		return
	}
	if r.URL.Query().Get("phone") != o.CustomerPhone {
		common.WriteError(w, common.NotFound("order"))
		return
	}
	common.JSONData(w, http.StatusOK, o)
}

func parseFilter(r *http.Request) Filter {
	f := Filter{
		Status:    r.URL.Query().Get("status"),
		OrderType: r.URL.Query().Get("type"),
		Phone:     r.URL.Query().Get("phone"),
	}
	if v := r.URL.Query().Get("from"); v != "" {
		if ts, err := time.Parse("2006-01-02", v); err == nil {
			f.From = &ts
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if ts, err := time.Parse("2006-01-02", v); err == nil {
			end := ts.AddDate(0, 0, 1)
			f.To = &end
		}
	}
	return f
}

// List handles GET /api/v1/admin/orders.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := common.ParsePagination(r, h.DefaultLimit, h.MaxLimit)
	orders, total, err := h.Store.List(r.Context(), parseFilter(r), int32(limit), common.Offset(page, limit))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if orders == nil {
		orders = []Order{}
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       orders,
		"pagination": common.Pagination{Page: page, PerPage: limit, TotalItems: int(total)},
	})
}

// Get handles GET /api/v1/admin/orders/{orderID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	o, err := h.Store.GetByID(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		writeOrderError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, o)
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateStatus handles PATCH /api/v1/admin/orders/{orderID}/status.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.Validate(req); err != nil {
		common.WriteError(w, err)
		return
	}
	next := Status(req.Status)
	if !next.Valid() {
		common.WriteError(w, common.BadRequest("status", "unknown order status"))
		return
	}
	o, err := h.Store.UpdateStatus(r.Context(), chi.URLParam(r, "orderID"), next)
	if err != nil {
		writeOrderError(w, err)
		return
	}
	h.invalidateDashboard(r)
	common.JSONData(w, http.StatusOK, o)
}

type discountRequest struct {
	Discount pricing.Money `json:"discount" validate:"gte=0"`
}

// ApplyDiscount handles PATCH /api/v1/admin/orders/{orderID}/discount.
func (h *Handler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	var req discountRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.Validate(req); err != nil {
		common.WriteError(w, err)
		return
	}
	o, err := h.Store.ApplyDiscount(r.Context(), chi.URLParam(r, "orderID"), req.Discount)
	if err != nil {
		writeOrderError(w, err)
		return
	}
	h.invalidateDashboard(r)
	common.JSONData(w, http.StatusOK, o)
}

// Export handles GET /api/v1/admin/orders/export, streaming an XLSX
// workbook honoring the same filters as the listing.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Store.ListAll(r.Context(), parseFilter(r))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := WriteXLSX(w, orders); err != nil {
		common.WriteError(w, err)
	}
}
