package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/comparapy/backend/internal/domain"
)

// mockCatalog is an in-memory CatalogRepository shared by the usecase tests.
// A mutex guards it because the orchestrator fans out across sources.
type mockCatalog struct {
	mu           sync.Mutex
	supermarkets []domain.Supermarket
	categories   []domain.Category
	products     []domain.Product
	observations []domain.PriceObservation
	promos       []domain.Promo

	// failProductName makes CreateProduct fail for that exact name, to
	// simulate a per-item persistence error.
	failProductName string
	// supermarketErr makes GetOrCreateSupermarket fail, to simulate the
	// store being down.
	supermarketErr error
}

var errMockStore = errors.New("mock store failure")

func newMockCatalog() *mockCatalog {
	return &mockCatalog{}
}

func (m *mockCatalog) GetOrCreateSupermarket(ctx context.Context, slug, name, logoURL string) (*domain.Supermarket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.supermarketErr != nil {
		return nil, m.supermarketErr
	}

	for i := range m.supermarkets {
		if m.supermarkets[i].Slug == slug {
			return &m.supermarkets[i], nil
		}
	}

	market := domain.Supermarket{ID: uint(len(m.supermarkets) + 1), Slug: slug, Name: name, LogoURL: logoURL}
	m.supermarkets = append(m.supermarkets, market)
	return &m.supermarkets[len(m.supermarkets)-1], nil
}

func (m *mockCatalog) GetOrCreateCategory(ctx context.Context, slug, name string) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.categories {
		if m.categories[i].Slug == slug {
			return &m.categories[i], nil
		}
	}

	category := domain.Category{ID: uint(len(m.categories) + 1), Slug: slug, Name: name}
	m.categories = append(m.categories, category)
	return &m.categories[len(m.categories)-1], nil
}

func (m *mockCatalog) ProductByID(ctx context.Context, id uint) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.products {
		if m.products[i].ID == id {
			p := m.products[i]
			p.Category = m.categoryByID(p.CategoryID)
			return &p, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (m *mockCatalog) ProductByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.products {
		if m.products[i].Barcode != nil && *m.products[i].Barcode == barcode {
			p := m.products[i]
			return &p, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (m *mockCatalog) ProductsByNormalizedName(ctx context.Context, key string, limit int) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Product
	for _, p := range m.products {
		if strings.Contains(p.NormalizedName, key) {
			out = append(out, p)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (m *mockCatalog) CreateProduct(ctx context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failProductName != "" && p.Name == m.failProductName {
		return errMockStore
	}

	// Barcodes are unique: a conflicting insert resolves to the surviving
	// row, like ON CONFLICT DO NOTHING plus a re-fetch.
	if p.Barcode != nil {
		for i := range m.products {
			if m.products[i].Barcode != nil && *m.products[i].Barcode == *p.Barcode {
				*p = m.products[i]
				return nil
			}
		}
	}

	p.ID = uint(len(m.products) + 1)
	m.products = append(m.products, *p)
	return nil
}

func (m *mockCatalog) ListProducts(ctx context.Context, f domain.ProductFilters) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Product
	for _, p := range m.products {
		if f.Query != "" && !strings.Contains(p.NormalizedName, f.Query) {
			continue
		}
		if f.CategoryName != "" {
			category := m.categoryByID(p.CategoryID)
			if category == nil || category.Name != f.CategoryName {
				continue
			}
		}
		p.Category = m.categoryByID(p.CategoryID)
		p.Prices = m.observationsFor(p.ID)
		out = append(out, p)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}

func (m *mockCatalog) AppendObservation(ctx context.Context, obs *domain.PriceObservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	obs.ID = uint(len(m.observations) + 1)
	m.observations = append(m.observations, *obs)
	return nil
}

func (m *mockCatalog) ObservationsByPrice(ctx context.Context, productID uint) ([]domain.PriceObservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := m.observationsFor(productID)
	sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	for i := range out {
		out[i].Supermarket = m.supermarketByID(out[i].SupermarketID)
	}
	return out, nil
}

func (m *mockCatalog) RecentObservations(ctx context.Context, productID uint, limit int) ([]domain.PriceObservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := m.observationsFor(productID)
	sort.Slice(out, func(i, j int) bool { return out[i].ObservedAt.Before(out[j].ObservedAt) })
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (m *mockCatalog) FeaturedPromos(ctx context.Context) ([]domain.Promo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Promo
	for _, p := range m.promos {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out, nil
}

// helpers, caller must hold the lock

func (m *mockCatalog) categoryByID(id *uint) *domain.Category {
	if id == nil {
		return nil
	}
	for i := range m.categories {
		if m.categories[i].ID == *id {
			c := m.categories[i]
			return &c
		}
	}
	return nil
}

func (m *mockCatalog) supermarketByID(id uint) domain.Supermarket {
	for _, s := range m.supermarkets {
		if s.ID == id {
			return s
		}
	}
	return domain.Supermarket{}
}

func (m *mockCatalog) observationsFor(productID uint) []domain.PriceObservation {
	var out []domain.PriceObservation
	for _, obs := range m.observations {
		if obs.ProductID == productID {
			out = append(out, obs)
		}
	}
	return out
}
