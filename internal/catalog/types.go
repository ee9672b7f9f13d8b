// Package catalog owns the storefront product hierarchy: categories, brands,
// products, variants and their published prices.
package catalog

import (
	"time"

	"github.com/nkg-services/backend-electro/internal/pricing"
)

// Category is the flat persisted shape. ParentID may reference a category
// missing from a filtered listing, which the tree builder treats as a root.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	ParentID    *string   `json:"parentId,omitempty"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	OrderIndex  int       `json:"orderIndex"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Node is a category with its resolved children.
type Node struct {
	Category
	Children        []*Node `json:"children"`
	DescendantCount int     `json:"descendantCount"`
}

// Brand is a product manufacturer.
type Brand struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	LogoURL   string    `json:"logoUrl,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Product groups one or more sellable variants.
type Product struct {
	ID                   string          `json:"id"`
	Name                 string          `json:"name"`
	Slug                 string          `json:"slug"`
	SKU                  string          `json:"sku"`
	Description          string          `json:"description,omitempty"`
	TechnicalSpecs       map[string]any  `json:"technicalSpecs,omitempty"`
	CategoryID           string          `json:"categoryId"`
	BrandID              *string         `json:"brandId,omitempty"`
	SupplierID           *string         `json:"supplierId,omitempty"`
	RequiresInstallation bool            `json:"requiresInstallation"`
	IsDropshipping       bool            `json:"isDropshipping"`
	IsActive             bool            `json:"isActive"`
	MetaTitle            string          `json:"metaTitle,omitempty"`
	MetaDescription      string          `json:"metaDescription,omitempty"`
	Images               []ProductImage  `json:"images,omitempty"`
	Variants             []Variant       `json:"variants,omitempty"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

// ProductImage is a stored media reference for a product.
type ProductImage struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	ImageURL  string `json:"imageUrl"`
	IsPrimary bool   `json:"isPrimary"`
}

// Variant is the sellable unit carrying the price entry used by the
// storefront and the cart.
type Variant struct {
	ID         string             `json:"id"`
	ProductID  string             `json:"productId"`
	SKU        string             `json:"sku"`
	Name       string             `json:"name,omitempty"`
	Attributes map[string]any     `json:"attributes,omitempty"`
	IsActive   bool               `json:"isActive"`
	Price      *pricing.PriceEntry `json:"price,omitempty"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

// ProductFilter narrows storefront product listings.
type ProductFilter struct {
	CategoryID string
	BrandID    string
	Search     string
	ActiveOnly bool
}
