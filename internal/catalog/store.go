package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nkg-services/backend-electro/internal/pricing"
)

// ErrNotFound is returned when a catalog record does not exist.
var ErrNotFound = errors.New("catalog: not found")

// Store executes catalog queries against PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore builds a Store backed by the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const categoryColumns = `id::text, name, slug, parent_id::text, COALESCE(description, ''), COALESCE(image_url, ''), order_index, is_active, created_at, updated_at`

func scanCategory(row pgx.Row) (Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID, &c.Description, &c.ImageURL, &c.OrderIndex, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// ListCategories returns categories, optionally restricted to active ones,
// ordered for deterministic tree building.
func (s *Store) ListCategories(ctx context.Context, activeOnly bool) ([]Category, error) {
	q := `SELECT ` + categoryColumns + ` FROM categories`
	if activeOnly {
		q += ` WHERE is_active`
	}
	q += ` ORDER BY order_index ASC, created_at ASC`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// GetCategoryBySlug loads a single category.
func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (Category, error) {
	q := `SELECT ` + categoryColumns + ` FROM categories WHERE slug = $1`
	c, err := scanCategory(s.pool.QueryRow(ctx, q, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, ErrNotFound
	}
	return c, err
}

// CreateCategory inserts a category and returns the stored row.
func (s *Store) CreateCategory(ctx context.Context, c Category) (Category, error) {
	q := `
INSERT INTO categories (name, slug, parent_id, description, image_url, order_index, is_active)
VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7)
RETURNING ` + categoryColumns
	return scanCategory(s.pool.QueryRow(ctx, q, c.Name, c.Slug, c.ParentID, c.Description, c.ImageURL, c.OrderIndex, c.IsActive))
}

// UpdateCategory replaces the mutable fields of a category.
func (s *Store) UpdateCategory(ctx context.Context, c Category) (Category, error) {
	q := `
UPDATE categories
SET name = $2, slug = $3, parent_id = $4, description = NULLIF($5, ''),
    image_url = NULLIF($6, ''), order_index = $7, is_active = $8, updated_at = now()
WHERE id = $1
RETURNING ` + categoryColumns
	out, err := scanCategory(s.pool.QueryRow(ctx, q, c.ID, c.Name, c.Slug, c.ParentID, c.Description, c.ImageURL, c.OrderIndex, c.IsActive))
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, ErrNotFound
	}
	return out, err
}

// DeleteCategory removes a category. Children are re-rooted by the schema's
// ON DELETE SET NULL.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const brandColumns = `id::text, name, slug, COALESCE(logo_url, ''), is_active, created_at, updated_at`

func scanBrand(row pgx.Row) (Brand, error) {
	var b Brand
	err := row.Scan(&b.ID, &b.Name, &b.Slug, &b.LogoURL, &b.IsActive, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

// ListBrands returns all brands ordered by name.
func (s *Store) ListBrands(ctx context.Context, activeOnly bool) ([]Brand, error) {
	q := `SELECT ` + brandColumns + ` FROM brands`
	if activeOnly {
		q += ` WHERE is_active`
	}
	q += ` ORDER BY name ASC`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Brand
	for rows.Next() {
		b, err := scanBrand(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

// CreateBrand inserts a brand.
func (s *Store) CreateBrand(ctx context.Context, b Brand) (Brand, error) {
	q := `
INSERT INTO brands (name, slug, logo_url, is_active)
VALUES ($1, $2, NULLIF($3, ''), $4)
RETURNING ` + brandColumns
	return scanBrand(s.pool.QueryRow(ctx, q, b.Name, b.Slug, b.LogoURL, b.IsActive))
}

// UpdateBrand replaces the mutable fields of a brand.
func (s *Store) UpdateBrand(ctx context.Context, b Brand) (Brand, error) {
	q := `
UPDATE brands
SET name = $2, slug = $3, logo_url = NULLIF($4, ''), is_active = $5, updated_at = now()
WHERE id = $1
RETURNING ` + brandColumns
	out, err := scanBrand(s.pool.QueryRow(ctx, q, b.ID, b.Name, b.Slug, b.LogoURL, b.IsActive))
	if errors.Is(err, pgx.ErrNoRows) {
		return Brand{}, ErrNotFound
	}
	return out, err
}

// DeleteBrand removes a brand.
func (s *Store) DeleteBrand(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM brands WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const productColumns = `p.id::text, p.name, p.slug, p.sku, COALESCE(p.description, ''), p.technical_specs,
p.category_id::text, p.brand_id::text, p.supplier_id::text, p.requires_installation, p.is_dropshipping,
p.is_active, COALESCE(p.meta_title, ''), COALESCE(p.meta_description, ''), p.created_at, p.updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var (
		p     Product
		specs []byte
	)
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.SKU, &p.Description, &specs,
		&p.CategoryID, &p.BrandID, &p.SupplierID, &p.RequiresInstallation, &p.IsDropshipping,
		&p.IsActive, &p.MetaTitle, &p.MetaDescription, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	if len(specs) > 0 {
		_ = json.Unmarshal(specs, &p.TechnicalSpecs)
	}
	return p, nil
}

// ListProducts returns a filtered product page plus the total match count.
func (s *Store) ListProducts(ctx context.Context, filter ProductFilter, limit, offset int32) ([]Product, int64, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filter.ActiveOnly {
		where += ` AND p.is_active`
	}
	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		where += fmt.Sprintf(` AND p.category_id = $%d`, len(args))
	}
	if filter.BrandID != "" {
		args = append(args, filter.BrandID)
		where += fmt.Sprintf(` AND p.brand_id = $%d`, len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += fmt.Sprintf(` AND (p.name ILIKE $%d OR p.sku ILIKE $%d)`, len(args), len(args))
	}

	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM products p`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	q := `SELECT ` + productColumns + ` FROM products p` + where +
		fmt.Sprintf(` ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, p)
	}
	return result, total, rows.Err()
}

// GetProductBySlug loads a product with its images and priced variants.
func (s *Store) GetProductBySlug(ctx context.Context, slug string) (Product, error) {
	q := `SELECT ` + productColumns + ` FROM products p WHERE p.slug = $1`
	p, err := scanProduct(s.pool.QueryRow(ctx, q, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}
	return s.hydrateProduct(ctx, p)
}

// GetProductByID loads a product with its images and priced variants.
func (s *Store) GetProductByID(ctx context.Context, id string) (Product, error) {
	q := `SELECT ` + productColumns + ` FROM products p WHERE p.id = $1`
	p, err := scanProduct(s.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}
	return s.hydrateProduct(ctx, p)
}

func (s *Store) hydrateProduct(ctx context.Context, p Product) (Product, error) {
	images, err := s.listImages(ctx, p.ID)
	if err != nil {
		return Product{}, err
	}
	p.Images = images

	variants, err := s.listVariants(ctx, p.ID)
	if err != nil {
		return Product{}, err
	}
	for i := range variants {
		entry, err := s.PriceEntry(ctx, variants[i].ID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return Product{}, err
		}
		if err == nil {
			variants[i].Price = &entry
		}
	}
	p.Variants = variants
	return p, nil
}

func (s *Store) listImages(ctx context.Context, productID string) ([]ProductImage, error) {
	q := `
SELECT id::text, product_id::text, image_url, is_primary
FROM product_images WHERE product_id = $1
ORDER BY is_primary DESC, created_at ASC`
	rows, err := s.pool.Query(ctx, q, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ProductImage
	for rows.Next() {
		var img ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.ImageURL, &img.IsPrimary); err != nil {
			return nil, err
		}
		result = append(result, img)
	}
	return result, rows.Err()
}

func (s *Store) listVariants(ctx context.Context, productID string) ([]Variant, error) {
	q := `
SELECT id::text, product_id::text, sku, COALESCE(name, ''), attributes, is_active, created_at, updated_at
FROM product_variants WHERE product_id = $1
ORDER BY created_at ASC`
	rows, err := s.pool.Query(ctx, q, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Variant
	for rows.Next() {
		var (
			v     Variant
			attrs []byte
		)
		if err := rows.Scan(&v.ID, &v.ProductID, &v.SKU, &v.Name, &attrs, &v.IsActive, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		if len(attrs) > 0 {
			_ = json.Unmarshal(attrs, &v.Attributes)
		}
		result = append(result, v)
	}
	return result, rows.Err()
}

// PriceEntry assembles the active unit and bulk price rows for a variant into
// the shape the tier resolver consumes.
func (s *Store) PriceEntry(ctx context.Context, variantID string) (pricing.PriceEntry, error) {
	q := `
SELECT price_type, amount, min_quantity
FROM prices
WHERE variant_id = $1 AND is_active
  AND valid_from <= now() AND (valid_to IS NULL OR valid_to > now())
ORDER BY valid_from DESC`
	rows, err := s.pool.Query(ctx, q, variantID)
	if err != nil {
		return pricing.PriceEntry{}, err
	}
	defer rows.Close()

	entry := pricing.PriceEntry{VariantID: variantID}
	seenUnit := false
	for rows.Next() {
		var (
			priceType string
			amount    pricing.Money
			minQty    int
		)
		if err := rows.Scan(&priceType, &amount, &minQty); err != nil {
			return pricing.PriceEntry{}, err
		}
		switch priceType {
		case "UNIT":
			if !seenUnit {
				entry.UnitPrice = amount
				seenUnit = true
			}
		case "BULK":
			if entry.BulkPrice == nil {
				bulk := amount
				min := minQty
				entry.BulkPrice = &bulk
				entry.BulkMinQty = &min
			}
		}
	}
	if err := rows.Err(); err != nil {
		return pricing.PriceEntry{}, err
	}
	if !seenUnit && entry.BulkPrice == nil {
		return pricing.PriceEntry{}, ErrNotFound
	}
	return entry, nil
}

// UpsertPrice replaces the active price row of the given type for a variant.
func (s *Store) UpsertPrice(ctx context.Context, variantID, priceType string, amount pricing.Money, minQuantity int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE prices SET is_active = false, valid_to = now(), updated_at = now()
		 WHERE variant_id = $1 AND price_type = $2 AND is_active`,
		variantID, priceType); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO prices (variant_id, price_type, amount, min_quantity)
		 VALUES ($1, $2, $3, $4)`,
		variantID, priceType, amount, minQuantity); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// CreateProduct inserts a product row.
func (s *Store) CreateProduct(ctx context.Context, p Product) (Product, error) {
	specs, err := marshalJSONField(p.TechnicalSpecs)
	if err != nil {
		return Product{}, err
	}
	q := `
INSERT INTO products (name, slug, sku, description, technical_specs, category_id, brand_id, supplier_id,
                      requires_installation, is_dropshipping, is_active, meta_title, meta_description)
VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11, NULLIF($12, ''), NULLIF($13, ''))
RETURNING *`
	q = `WITH inserted AS (` + q + `) SELECT ` + productColumns + ` FROM inserted p`
	return scanProduct(s.pool.QueryRow(ctx, q, p.Name, p.Slug, p.SKU, p.Description, specs, p.CategoryID,
		p.BrandID, p.SupplierID, p.RequiresInstallation, p.IsDropshipping, p.IsActive, p.MetaTitle, p.MetaDescription))
}

// UpdateProduct replaces the mutable fields of a product.
func (s *Store) UpdateProduct(ctx context.Context, p Product) (Product, error) {
	specs, err := marshalJSONField(p.TechnicalSpecs)
	if err != nil {
		return Product{}, err
	}
	q := `
WITH updated AS (
  UPDATE products
  SET name = $2, slug = $3, sku = $4, description = NULLIF($5, ''), technical_specs = $6,
      category_id = $7, brand_id = $8, supplier_id = $9, requires_installation = $10,
      is_dropshipping = $11, is_active = $12, meta_title = NULLIF($13, ''),
      meta_description = NULLIF($14, ''), updated_at = now()
  WHERE id = $1
  RETURNING *
) SELECT ` + productColumns + ` FROM updated p`
	out, err := scanProduct(s.pool.QueryRow(ctx, q, p.ID, p.Name, p.Slug, p.SKU, p.Description, specs,
		p.CategoryID, p.BrandID, p.SupplierID, p.RequiresInstallation, p.IsDropshipping, p.IsActive,
		p.MetaTitle, p.MetaDescription))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return out, err
}

// DeleteProduct removes a product and, via cascade, its variants and prices.
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateVariant inserts a product variant.
func (s *Store) CreateVariant(ctx context.Context, v Variant) (Variant, error) {
	attrs, err := marshalJSONField(v.Attributes)
	if err != nil {
		return Variant{}, err
	}
	q := `
INSERT INTO product_variants (product_id, sku, name, attributes, is_active)
VALUES ($1, $2, NULLIF($3, ''), $4, $5)
RETURNING id::text, product_id::text, sku, COALESCE(name, ''), is_active, created_at, updated_at`
	var out Variant
	err = s.pool.QueryRow(ctx, q, v.ProductID, v.SKU, v.Name, attrs, v.IsActive).
		Scan(&out.ID, &out.ProductID, &out.SKU, &out.Name, &out.IsActive, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return Variant{}, err
	}
	out.Attributes = v.Attributes
	return out, nil
}

// UpdateVariant replaces the mutable fields of a variant.
func (s *Store) UpdateVariant(ctx context.Context, v Variant) (Variant, error) {
	attrs, err := marshalJSONField(v.Attributes)
	if err != nil {
		return Variant{}, err
	}
	q := `
UPDATE product_variants
SET sku = $2, name = NULLIF($3, ''), attributes = $4, is_active = $5, updated_at = now()
WHERE id = $1
RETURNING id::text, product_id::text, sku, COALESCE(name, ''), is_active, created_at, updated_at`
	var out Variant
	err = s.pool.QueryRow(ctx, q, v.ID, v.SKU, v.Name, attrs, v.IsActive).
		Scan(&out.ID, &out.ProductID, &out.SKU, &out.Name, &out.IsActive, &out.CreatedAt, &out.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Variant{}, ErrNotFound
	}
	if err != nil {
		return Variant{}, err
	}
	out.Attributes = v.Attributes
	return out, nil
}

// DeleteVariant removes a variant and its prices.
func (s *Store) DeleteVariant(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM product_variants WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddProductImage records an uploaded image URL against a product.
func (s *Store) AddProductImage(ctx context.Context, img ProductImage) (ProductImage, error) {
	q := `
INSERT INTO product_images (product_id, image_url, is_primary)
VALUES ($1, $2, $3)
RETURNING id::text, product_id::text, image_url, is_primary`
	var out ProductImage
	err := s.pool.QueryRow(ctx, q, img.ProductID, img.ImageURL, img.IsPrimary).
		Scan(&out.ID, &out.ProductID, &out.ImageURL, &out.IsPrimary)
	return out, err
}

// DeleteProductImage removes a stored image reference.
func (s *Store) DeleteProductImage(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM product_images WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// VariantSummary is the denormalized variant shape the cart stores per line.
type VariantSummary struct {
	VariantID            string `json:"variantId"`
	ProductID            string `json:"productId"`
	ProductName          string `json:"productName"`
	SKU                  string `json:"sku"`
	RequiresInstallation bool   `json:"requiresInstallation"`
}

// GetVariantSummary loads the display fields for a sellable variant.
func (s *Store) GetVariantSummary(ctx context.Context, variantID string) (VariantSummary, error) {
	q := `
SELECT v.id::text, p.id::text, p.name, v.sku, p.requires_installation
FROM product_variants v
JOIN products p ON p.id = v.product_id
WHERE v.id = $1 AND v.is_active AND p.is_active`
	var out VariantSummary
	err := s.pool.QueryRow(ctx, q, variantID).
		Scan(&out.VariantID, &out.ProductID, &out.ProductName, &out.SKU, &out.RequiresInstallation)
	if errors.Is(err, pgx.ErrNoRows) {
		return VariantSummary{}, ErrNotFound
	}
	return out, err
}

func marshalJSONField(m map[string]any) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}
