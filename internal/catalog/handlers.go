package catalog

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nkg-services/backend-electro/internal/common"
)

// Handler exposes the public storefront catalog endpoints.
type Handler struct {
	Service      *Service
	DefaultLimit int
	MaxLimit     int
}

// CategoryTree handles GET /api/v1/categories/tree.
func (h *Handler) CategoryTree(w http.ResponseWriter, r *http.Request) {
	roots, err := h.Service.CategoryTree(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, roots)
}

// Categories handles GET /api/v1/categories.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Service.Categories(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if categories == nil {
		categories = []Category{}
	}
	common.JSONData(w, http.StatusOK, categories)
}

// CategoryBySlug handles GET /api/v1/categories/{slug}.
func (h *Handler) CategoryBySlug(w http.ResponseWriter, r *http.Request) {
	category, err := h.Service.CategoryBySlug(r.Context(), chi.URLParam(r, "slug"))
	if errors.Is(err, ErrNotFound) {
		common.WriteError(w, common.NotFound("category"))
		return
	}
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, category)
}

// Brands handles GET /api/v1/brands.
func (h *Handler) Brands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.Service.Brands(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, brands)
}

// Products handles GET /api/v1/products with category, brand and search
// filters.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	page, limit := common.ParsePagination(r, h.DefaultLimit, h.MaxLimit)
	filter := ProductFilter{
		CategoryID: r.URL.Query().Get("category_id"),
		BrandID:    r.URL.Query().Get("brand_id"),
		Search:     r.URL.Query().Get("q"),
	}
	products, total, err := h.Service.Products(r.Context(), filter, int32(limit), common.Offset(page, limit))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if products == nil {
		products = []Product{}
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       products,
		"pagination": common.Pagination{Page: page, PerPage: limit, TotalItems: int(total)},
	})
}

// ProductBySlug handles GET /api/v1/products/{slug}.
func (h *Handler) ProductBySlug(w http.ResponseWriter, r *http.Request) {
	product, err := h.Service.ProductBySlug(r.Context(), chi.URLParam(r, "slug"))
	if errors.Is(err, ErrNotFound) {
		common.WriteError(w, common.NotFound("product"))
		return
	}
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, product)
}
