package domain

import (
	"context"
	"time"
)

// ProductFilters narrows product listings. Query is matched as a
// case-insensitive substring against the normalized name; CategoryName is an
// exact match on the joined category.
type ProductFilters struct {
	Query        string
	CategoryName string
	Limit        int
}

// CatalogRepository is the persistence boundary of the ingestion pipeline and
// the read-side aggregations. Get-or-create operations are idempotent lookups
// by slug with an insert fallback; the store must resolve concurrent
// duplicate inserts via its uniqueness constraints (upsert-then-fetch).
type CatalogRepository interface {
	GetOrCreateSupermarket(ctx context.Context, slug, name, logoURL string) (*Supermarket, error)
	GetOrCreateCategory(ctx context.Context, slug, name string) (*Category, error)

	ProductByID(ctx context.Context, id uint) (*Product, error)
	ProductByBarcode(ctx context.Context, barcode string) (*Product, error)
	// ProductsByNormalizedName returns products whose normalized name contains
	// key as a substring, up to limit rows.
	ProductsByNormalizedName(ctx context.Context, key string, limit int) ([]Product, error)
	// CreateProduct inserts p. Barcodes are unique: when p carries one and a
	// concurrent writer already inserted it, p is replaced with the surviving
	// row (upsert-then-fetch) instead of failing or duplicating.
	CreateProduct(ctx context.Context, p *Product) error
	// ListProducts returns products with price history preloaded.
	ListProducts(ctx context.Context, f ProductFilters) ([]Product, error)

	// AppendObservation inserts one price row; the history is append-only.
	AppendObservation(ctx context.Context, obs *PriceObservation) error
	// ObservationsByPrice returns all observations for a product across
	// supermarkets, ascending by price, supermarket preloaded.
	ObservationsByPrice(ctx context.Context, productID uint) ([]PriceObservation, error)
	// RecentObservations returns the most recent limit observations for a
	// product, presented in ascending ObservedAt order.
	RecentObservations(ctx context.Context, productID uint, limit int) ([]PriceObservation, error)

	FeaturedPromos(ctx context.Context) ([]Promo, error)
}

// Fetcher retrieves raw markup for a source URL. Implementations fail with
// an error wrapping ErrFetchFailed on timeout or connection failure; the
// pipeline degrades that source to an empty item list.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// CacheRepository defines the interface for caching read-side aggregations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
