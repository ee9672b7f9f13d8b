package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/nkg-services/backend-electro/internal/pricing"
)

type fakeRepo struct {
	categories []Category
	brands     []Brand
	products   []Product
	listCalls  int
}

func (f *fakeRepo) ListCategories(_ context.Context, activeOnly bool) ([]Category, error) {
	f.listCalls++
	if !activeOnly {
		return f.categories, nil
	}
	var active []Category
	for _, c := range f.categories {
		if c.IsActive {
			active = append(active, c)
		}
	}
	return active, nil
}

func (f *fakeRepo) GetCategoryBySlug(_ context.Context, slug string) (Category, error) {
	for _, c := range f.categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return Category{}, ErrNotFound
}

func (f *fakeRepo) ListBrands(context.Context, bool) ([]Brand, error) {
	return f.brands, nil
}

func (f *fakeRepo) ListProducts(context.Context, ProductFilter, int32, int32) ([]Product, int64, error) {
	return f.products, int64(len(f.products)), nil
}

func (f *fakeRepo) GetProductBySlug(_ context.Context, slug string) (Product, error) {
	for _, p := range f.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (f *fakeRepo) PriceEntry(context.Context, string) (pricing.PriceEntry, error) {
	return pricing.PriceEntry{}, ErrNotFound
}

func newTestCache(t *testing.T) Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return Cache{R: client, TTL: time.Minute}
}

func TestCategoryTreeCachesResult(t *testing.T) {
	repo := &fakeRepo{categories: []Category{
		{ID: "root", Name: "Cables", Slug: "cables", OrderIndex: 1, IsActive: true},
		{ID: "child", Name: "Cuivre", Slug: "cuivre", ParentID: ptr("root"), OrderIndex: 1, IsActive: true},
	}}
	svc := NewService(repo, newTestCache(t), zerolog.Nop())

	first, err := svc.CategoryTree(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Equal(t, 1, first[0].DescendantCount)

	second, err := svc.CategoryTree(context.Background())
	require.NoError(t, err)
	require.Len(t, second, 1)
	require.Equal(t, 1, repo.listCalls, "second read must come from cache")
}

func TestCategoryTreeSkipsInactive(t *testing.T) {
	repo := &fakeRepo{categories: []Category{
		{ID: "visible", Name: "Visible", Slug: "visible", OrderIndex: 1, IsActive: true},
		{ID: "hidden", Name: "Hidden", Slug: "hidden", OrderIndex: 2, IsActive: false},
	}}
	svc := NewService(repo, Cache{}, zerolog.Nop())

	roots, err := svc.CategoryTree(context.Background())
	require.NoError(t, err)
	require.Len(t, roots, 1)
	require.Equal(t, "visible", roots[0].ID)
}

func TestProductBySlugNotFound(t *testing.T) {
	handler := &Handler{
		Service:      NewService(&fakeRepo{}, Cache{}, zerolog.Nop()),
		DefaultLimit: 20,
		MaxLimit:     100,
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/missing", nil)
	rr := httptest.NewRecorder()
	handler.ProductBySlug(rr, req)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestProductsListEnvelope(t *testing.T) {
	repo := &fakeRepo{products: []Product{{ID: "p1", Name: "Disjoncteur", Slug: "disjoncteur"}}}
	handler := &Handler{
		Service:      NewService(repo, Cache{}, zerolog.Nop()),
		DefaultLimit: 20,
		MaxLimit:     100,
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?limit=500", nil)
	rr := httptest.NewRecorder()
	handler.Products(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"pagination"`)
	require.Contains(t, rr.Body.String(), `"disjoncteur"`)
}
