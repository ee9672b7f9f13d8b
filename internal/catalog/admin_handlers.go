package catalog

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nkg-services/backend-electro/internal/common"
	"github.com/nkg-services/backend-electro/internal/pricing"
)

// AdminHandler exposes the back-office CRUD surface over the catalog.
type AdminHandler struct {
	Store        *Store
	Cache        Cache
	DefaultLimit int
	MaxLimit     int
}

func (h *AdminHandler) invalidate(r *http.Request) {
	_ = h.Cache.Invalidate(r.Context(), "catalog:*")
}

func writeStoreError(w http.ResponseWriter, resource string, err error) {
	if errors.Is(err, ErrNotFound) {
		common.WriteError(w, common.NotFound(resource))
		return
	}
	if common.UniqueViolation(err) {
		common.WriteError(w, common.Conflict(resource+" already exists"))
		return
	}
	common.WriteError(w, err)
}

type categoryRequest struct {
	Name        string  `json:"name" validate:"required"`
	Slug        string  `json:"slug" validate:"required"`
	ParentID    *string `json:"parentId" validate:"omitempty,uuid"`
	Description string  `json:"description"`
	ImageURL    string  `json:"imageUrl"`
	OrderIndex  int     `json:"orderIndex" validate:"gte=0"`
	IsActive    bool    `json:"isActive"`
}

// ListCategories handles GET /api/v1/admin/categories, including inactive
// rows and tree-builder findings for the hierarchy screen.
func (h *AdminHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	flat, err := h.Store.ListCategories(r.Context(), false)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	roots, warnings := BuildTree(flat)
	if roots == nil {
		roots = []*Node{}
	}
	findings := make([]map[string]string, 0, len(warnings))
	for _, warning := range warnings {
		findings = append(findings, map[string]string{
			"code":    string(warning.Code),
			"subject": warning.Subject,
			"detail":  warning.Detail,
		})
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data":     roots,
		"warnings": findings,
	})
}

// CreateCategory handles POST /api/v1/admin/categories.
func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.Validate(req); err != nil {
		common.WriteError(w, err)
		return
	}
	created, err := h.Store.CreateCategory(r.Context(), Category{
		Name:        req.Name,
		Slug:        req.Slug,
		ParentID:    req.ParentID,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		OrderIndex:  req.OrderIndex,
		IsActive:    req.IsActive,
	})
	if err != nil {
		writeStoreError(w, "category", err)
		return
	}
	h.invalidate(r)
	common.JSONData(w, http.StatusCreated, created)
}

// UpdateCategory handles PUT /api/v1/admin/categories/{categoryID}.
func (h *AdminHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.Validate(req); err != nil {
		common.WriteError(w, err)
		return
	}
	id := chi.URLParam(r, "categoryID")
	if req.ParentID != nil && *req.ParentID == id {
		common.WriteError(w, common.BadRequest("parentId", "category cannot be its own parent"))
		return
	}
	updated, err := h.Store.UpdateCategory(r.Context(), Category{
		ID:          id,
		Name:        req.Name,
		Slug:        req.Slug,
		ParentID:    req.ParentID,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		OrderIndex:  req.OrderIndex,
		IsActive:    req.IsActive,
	})
	if err != nil {
		writeStoreError(w, "category", err)
		return
	}
	h.invalidate(r)
	common.JSONData(w, http.StatusOK, updated)
}

// DeleteCategory handles DELETE /api/v1/admin/categories/{categoryID}.
func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteCategory(r.Context(), chi.URLParam(r, "categoryID")); err != nil {
		writeStoreError(w, "category", err)
		return
	}
	h.invalidate(r)
	w.WriteHeader(http.StatusNoContent)
}

type brandRequest struct {
	Name     string `json:"name" validate:"required"`
	Slug     string `json:"slug" validate:"required"`
	LogoURL  string `json:"logoUrl"`
	IsActive bool   `json:"isActive"`
}

// ListBrands handles GET /api/v1/admin/brands.
func (h *AdminHandler) ListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.Store.ListBrands(r.Context(), false)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if brands == nil {
		brands = []Brand{}
	}
	common.JSONData(w, http.StatusOK, brands)
}

// CreateBrand handles POST /api/v1/admin/brands.
func (h *AdminHandler) CreateBrand(w http.ResponseWriter, r *http.Request) {
	var req brandRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.Validate(req); err != nil {
		common.WriteError(w, err)
		return
	}
	created, err := h.Store.CreateBrand(r.Context(), Brand{
		Name: req.Name, Slug: req.Slug, LogoURL: req.LogoURL, IsActive: req.IsActive,
	})
	if err != nil {
		writeStoreError(w, "brand", err)
		return
	}
	h.invalidate(r)
	common.JSONData(w, http.StatusCreated, created)
}

// UpdateBrand handles PUT /api/v1/admin/brands/{brandID}.
func (h *AdminHandler) UpdateBrand(w http.ResponseWriter, r *http.Request) {
	var req brandRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.Validate(req); err != nil {
		common.WriteError(w, err)
		return
	}
	updated, err := h.Store.UpdateBrand(r.Context(), Brand{
		ID:   chi.URLParam(r, "brandID"),
		Name: req.Name, Slug: req.Slug, LogoURL: req.LogoURL, IsActive: req.IsActive,
	})
	if err != nil {
		writeStoreError(w, "brand", err)
		return
	}
	h.invalidate(r)
	common.JSONData(w, http.StatusOK, updated)
}

// DeleteBrand handles DELETE /api/v1/admin/brands/{brandID}.
func (h *AdminHandler) DeleteBrand(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteBrand(r.Context(), chi.URLParam(r, "brandID")); err != nil {
		writeStoreError(w, "brand", err)
		return
	}
	h.invalidate(r)
	w.WriteHeader(http.StatusNoContent)
}

type productRequest struct {
	Name                 string         `json:"name" validate:"required"`
	Slug                 string         `json:"slug" validate:"required"`
	SKU                  string         `json:"sku" validate:"required"`
	Description          string         `json:"description"`
	TechnicalSpecs       map[string]any `json:"technicalSpecs"`
	CategoryID           string         `json:"categoryId" validate:"required,uuid"`
	BrandID              *string        `json:"brandId" validate:"omitempty,uuid"`
	SupplierID           *string        `json:"supplierId" validate:"omitempty,uuid"`
	RequiresInstallation bool           `json:"requiresInstallation"`
	IsDropshipping       bool           `json:"isDropshipping"`
	IsActive             bool           `json:"isActive"`
	MetaTitle            string         `json:"metaTitle"`
	MetaDescription      string         `json:"metaDescription"`
}

func (req productRequest) toProduct(id string) Product {
	return Product{
		ID:                   id,
		Name:                 req.Name,
		Slug:                 req.Slug,
		SKU:                  req.SKU,
		Description:          req.Description,
		TechnicalSpecs:       req.TechnicalSpecs,
		CategoryID:           req.CategoryID,
		BrandID:              req.BrandID,
		SupplierID:           req.SupplierID,
		RequiresInstallation: req.RequiresInstallation,
		IsDropshipping:       req.IsDropshipping,
		IsActive:             req.IsActive,
		MetaTitle:            req.MetaTitle,
		MetaDescription:      req.MetaDescription,
	}
}

// ListProducts handles GET /api/v1/admin/products.
func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, limit := common.ParsePagination(r, h.DefaultLimit, h.MaxLimit)
	filter := ProductFilter{
		CategoryID: r.URL.Query().Get("category_id"),
		BrandID:    r.URL.Query().Get("brand_id"),
		Search:     r.URL.Query().Get("q"),
	}
	products, total, err := h.Store.ListProducts(r.Context(), filter, int32(limit), common.Offset(page, limit))
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

// GetProduct handles GET /api/v1/admin/products/{productID}.
func (h *AdminHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.Store.GetProductByID(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		writeStoreError(w, "product", err)
		return
	}
	common.JSONData(w, http.StatusOK, product)
}

// CreateProduct handles POST /api/v1/admin/products.
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.Validate(req); err != nil {
		common.WriteError(w, err)
		return
	}
	created, err := h.Store.CreateProduct(r.Context(), req.toProduct(""))
	if err != nil {
		writeStoreError(w, "product", err)
		return
	}
	h.invalidate(r)
	common.JSONData(w, http.StatusCreated, created)
}

// UpdateProduct handles PUT /api/v1/admin/products/{productID}.
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.Validate(req); err != nil {
		common.WriteError(w, err)
		return
	}
	updated, err := h.Store.UpdateProduct(r.Context(), req.toProduct(chi.URLParam(r, "productID")))
	if err != nil {
		writeStoreError(w, "product", err)
		return
	}
	h.invalidate(r)
	common.JSONData(w, http.StatusOK, updated)
}

// DeleteProduct handles DELETE /api/v1/admin/products/{productID}.
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteProduct(r.Context(), chi.URLParam(r, "productID")); err != nil {
		writeStoreError(w, "product", err)
		return
	}
	h.invalidate(r)
	w.WriteHeader(http.StatusNoContent)
}

type variantRequest struct {
	SKU        string         `json:"sku" validate:"required"`
	Name       string         `json:"name"`
	Attributes map[string]any `json:"attributes"`
	IsActive   bool           `json:"isActive"`
}

// CreateVariant handles POST /api/v1/admin/products/{productID}/variants.
func (h *AdminHandler) CreateVariant(w http.ResponseWriter, r *http.Request) {
	var req variantRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.Validate(req); err != nil {
		common.WriteError(w, err)
		return
	}
	created, err := h.Store.CreateVariant(r.Context(), Variant{
		ProductID:  chi.URLParam(r, "productID"),
		SKU:        req.SKU,
		Name:       req.Name,
		Attributes: req.Attributes,
		IsActive:   req.IsActive,
	})
	if err != nil {
		writeStoreError(w, "variant", err)
		return
	}
	h.invalidate(r)
	common.JSONData(w, http.StatusCreated, created)
}

// UpdateVariant handles PUT /api/v1/admin/variants/{variantID}.
func (h *AdminHandler) UpdateVariant(w http.ResponseWriter, r *http.Request) {
	var req variantRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.Validate(req); err != nil {
		common.WriteError(w, err)
		return
	}
	updated, err := h.Store.UpdateVariant(r.Context(), Variant{
		ID:         chi.URLParam(r, "variantID"),
		SKU:        req.SKU,
		Name:       req.Name,
		Attributes: req.Attributes,
		IsActive:   req.IsActive,
	})
	if err != nil {
		writeStoreError(w, "variant", err)
		return
	}
	h.invalidate(r)
	common.JSONData(w, http.StatusOK, updated)
}

// DeleteVariant handles DELETE /api/v1/admin/variants/{variantID}.
func (h *AdminHandler) DeleteVariant(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteVariant(r.Context(), chi.URLParam(r, "variantID")); err != nil {
		writeStoreError(w, "variant", err)
		return
	}
	h.invalidate(r)
	w.WriteHeader(http.StatusNoContent)
}

type priceRequest struct {
	PriceType   string        `json:"priceType" validate:"required,oneof=UNIT BULK"`
	Amount      pricing.Money `json:"amount" validate:"gte=0"`
	MinQuantity int           `json:"minQuantity" validate:"gte=1"`
}

// UpsertPrice handles PUT /api/v1/admin/variants/{variantID}/prices. A bulk
// price with minQuantity of 1 or less would never beat the unit tier, reject
// it up front.
func (h *AdminHandler) UpsertPrice(w http.ResponseWriter, r *http.Request) {
	var req priceRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.Validate(req); err != nil {
		common.WriteError(w, err)
		return
	}
	if req.PriceType == "BULK" && req.MinQuantity <= 1 {
		common.WriteError(w, common.BadRequest("minQuantity", "bulk price requires a minimum quantity above 1"))
		return
	}
	variantID := chi.URLParam(r, "variantID")
	if err := h.Store.UpsertPrice(r.Context(), variantID, req.PriceType, req.Amount, req.MinQuantity); err != nil {
		common.WriteError(w, err)
		return
	}
	entry, err := h.Store.PriceEntry(r.Context(), variantID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		common.WriteError(w, err)
		return
	}
	h.invalidate(r)
	common.JSONData(w, http.StatusOK, entry)
}

type productImageRequest struct {
	ImageURL  string `json:"imageUrl" validate:"required"`
	IsPrimary bool   `json:"isPrimary"`
}

// AddProductImage handles POST /api/v1/admin/products/{productID}/images.
func (h *AdminHandler) AddProductImage(w http.ResponseWriter, r *http.Request) {
	var req productImageRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.Validate(req); err != nil {
		common.WriteError(w, err)
		return
	}
	created, err := h.Store.AddProductImage(r.Context(), ProductImage{
		ProductID: chi.URLParam(r, "productID"),
		ImageURL:  req.ImageURL,
		IsPrimary: req.IsPrimary,
	})
	if err != nil {
		common.WriteError(w, err)
		return
	}
	h.invalidate(r)
	common.JSONData(w, http.StatusCreated, created)
}

// DeleteProductImage handles DELETE /api/v1/admin/images/{imageID}.
func (h *AdminHandler) DeleteProductImage(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteProductImage(r.Context(), chi.URLParam(r, "imageID")); err != nil {
		writeStoreError(w, "image", err)
		return
	}
	h.invalidate(r)
	w.WriteHeader(http.StatusNoContent)
}
