package catalog

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/nkg-services/backend-electro/internal/obs"
	"github.com/nkg-services/backend-electro/internal/pricing"
)

// Repository is the read surface the storefront service needs.
type Repository interface {
	ListCategories(ctx context.Context, activeOnly bool) ([]Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (Category, error)
	ListBrands(ctx context.Context, activeOnly bool) ([]Brand, error)
	ListProducts(ctx context.Context, filter ProductFilter, limit, offset int32) ([]Product, int64, error)
	GetProductBySlug(ctx context.Context, slug string) (Product, error)
	PriceEntry(ctx context.Context, variantID string) (pricing.PriceEntry, error)
}

// Service serves the public storefront catalog with a Redis read-through
// cache in front of PostgreSQL.
type Service struct {
	repo   Repository
	cache  Cache
	logger zerolog.Logger
}

// NewService wires the storefront catalog service.
func NewService(repo Repository, cache Cache, logger zerolog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

const (
	cacheKeyTree   = "catalog:tree"
	cacheKeyBrands = "catalog:brands"
)

// CategoryTree returns the active category forest. Data-quality findings from
// the tree builder are counted and logged, never returned to the storefront.
func (s *Service) CategoryTree(ctx context.Context) ([]*Node, error) {
	var cached []*Node
	if s.cache.GetJSON(ctx, cacheKeyTree, &cached) {
		return cached, nil
	}

	flat, err := s.repo.ListCategories(ctx, true)
	if err != nil {
		return nil, err
	}
	roots, warnings := BuildTree(flat)
	for _, w := range warnings {
		obs.CountWarning(w)
		s.logger.Warn().
			Str("code", string(w.Code)).
			Str("subject", w.Subject).
			Msg(w.Detail)
	}
	if roots == nil {
		roots = []*Node{}
	}
	s.cache.SetJSON(ctx, cacheKeyTree, roots)
	return roots, nil
}

// Categories returns the flat active category list for filter UIs.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx, true)
}

// CategoryBySlug loads one category for storefront landing pages.
func (s *Service) CategoryBySlug(ctx context.Context, slug string) (Category, error) {
	return s.repo.GetCategoryBySlug(ctx, slug)
}

// Brands returns active brands.
func (s *Service) Brands(ctx context.Context) ([]Brand, error) {
	var cached []Brand
	if s.cache.GetJSON(ctx, cacheKeyBrands, &cached) {
		return cached, nil
	}
	brands, err := s.repo.ListBrands(ctx, true)
	if err != nil {
		return nil, err
	}
	if brands == nil {
		brands = []Brand{}
	}
	s.cache.SetJSON(ctx, cacheKeyBrands, brands)
	return brands, nil
}

// Products returns a filtered page of active products.
func (s *Service) Products(ctx context.Context, filter ProductFilter, limit, offset int32) ([]Product, int64, error) {
	filter.ActiveOnly = true
	return s.repo.ListProducts(ctx, filter, limit, offset)
}

// ProductBySlug loads a product detail with variants and prices.
func (s *Service) ProductBySlug(ctx context.Context, slug string) (Product, error) {
	return s.repo.GetProductBySlug(ctx, slug)
}

// VariantPrice exposes the price entry used by cart and checkout.
func (s *Service) VariantPrice(ctx context.Context, variantID string) (pricing.PriceEntry, error) {
	return s.repo.PriceEntry(ctx, variantID)
}
