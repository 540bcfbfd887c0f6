package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/comparapy/backend/internal/domain"
)

// defaultTrendWindow bounds how many recent observations feed the trend series
const defaultTrendWindow = 40

// ProductSummary is one row of a product listing. BestPrice is nil when the
// product has no price history yet.
type ProductSummary struct {
	ID        uint    `json:"id"`
	Name      string  `json:"nombre"`
	Category  *string `json:"categoria"`
	ImageURL  string  `json:"imagen"`
	Barcode   *string `json:"barcode,omitempty"`
	BestPrice *int64  `json:"mejorPrecio"`
}

// SupermarketPrice is a product's current price at one supermarket.
type SupermarketPrice struct {
	Supermarket string    `json:"supermercado"`
	Slug        string    `json:"slug"`
	Logo        string    `json:"logo,omitempty"`
	Price       int64     `json:"precio"`
	ObservedAt  time.Time `json:"fecha"`
}

// PriceSpread tallies the best and worst current price and the savings
// between them. Best and Worst are nil for products without observations.
type PriceSpread struct {
	Best    *int64 `json:"best"`
	Worst   *int64 `json:"max"`
	Savings int64  `json:"ahorro"`
}

// Trend is the historical series over the most recent observations, oldest
// first. MinHist and AvgHist are nil when the history is empty.
type Trend struct {
	Labels  []time.Time `json:"labels"`
	Values  []int64     `json:"values"`
	MinHist *int64      `json:"minHist"`
	AvgHist *int64      `json:"avgHist"`
}

// ProductDetail bundles everything the product page needs.
type ProductDetail struct {
	Product ProductSummary     `json:"product"`
	Prices  []SupermarketPrice `json:"precios"`
	Spread  PriceSpread        `json:"mejores"`
	Trend   Trend              `json:"tendencia"`
}

// PriceServiceConfig holds configuration for the read-side aggregator
type PriceServiceConfig struct {
	TrendWindow  int
	DefaultLimit int
	CacheTTL     time.Duration
}

// PriceService computes the read-side aggregations over raw price
// observations: best/worst/savings, historical trend, filtered listings.
// All queries are read-only and idempotent; products without observations
// come back with nil sentinels rather than errors.
type PriceService struct {
	repo         domain.CatalogRepository
	cache        domain.CacheRepository
	trendWindow  int
	defaultLimit int
	cacheTTL     time.Duration
}

// NewPriceService creates the aggregator. cache may be nil to disable
// detail caching.
func NewPriceService(repo domain.CatalogRepository, cache domain.CacheRepository, config PriceServiceConfig) *PriceService {
	trendWindow := config.TrendWindow
	if trendWindow <= 0 || trendWindow > defaultTrendWindow {
		trendWindow = defaultTrendWindow
	}

	defaultLimit := config.DefaultLimit
	if defaultLimit <= 0 {
		defaultLimit = 50
	}

	cacheTTL := config.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}

	return &PriceService{
		repo:         repo,
		cache:        cache,
		trendWindow:  trendWindow,
		defaultLimit: defaultLimit,
		cacheTTL:     cacheTTL,
	}
}

// ProductDetail returns the full price bundle for one product: current
// prices ascending by price, spread, and the recent trend series.
func (s *PriceService) ProductDetail(ctx context.Context, id uint) (*ProductDetail, error) {
	cacheKey := fmt.Sprintf("product:%d", id)
	if s.cache != nil {
		if value, err := s.cache.Get(ctx, cacheKey); err == nil {
			if detail, ok := value.(*ProductDetail); ok {
				return detail, nil
			}
		}
	}

	product, err := s.repo.ProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	observations, err := s.repo.ObservationsByPrice(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load prices: %w", err)
	}

	prices := make([]SupermarketPrice, len(observations))
	for i, obs := range observations {
		prices[i] = SupermarketPrice{
			Supermarket: obs.Supermarket.Name,
			Slug:        obs.Supermarket.Slug,
			Logo:        obs.Supermarket.LogoURL,
			Price:       obs.Price,
			ObservedAt:  obs.ObservedAt,
		}
	}

	spread := PriceSpread{}
	if len(prices) > 0 {
		best := prices[0].Price
		worst := prices[len(prices)-1].Price
		spread.Best = &best
		spread.Worst = &worst
		spread.Savings = worst - best
	}

	trend, err := s.trend(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &ProductDetail{
		Product: ProductSummary{
			ID:       product.ID,
			Name:     product.Name,
			Category: categoryName(product),
			ImageURL: product.ImageURL,
			Barcode:  product.Barcode,
		},
		Prices: prices,
		Spread: spread,
		Trend:  *trend,
	}

	if s.cache != nil {
		// best effort; a cold cache only costs an extra query
		_ = s.cache.Set(ctx, cacheKey, detail, s.cacheTTL)
	}

	return detail, nil
}

// trend builds the historical series from the most recent observations,
// presented oldest first.
func (s *PriceService) trend(ctx context.Context, id uint) (*Trend, error) {
	history, err := s.repo.RecentObservations(ctx, id, s.trendWindow)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	trend := &Trend{
		Labels: make([]time.Time, len(history)),
		Values: make([]int64, len(history)),
	}

	if len(history) == 0 {
		return trend, nil
	}

	min := history[0].Price
	sum := int64(0)
	for i, obs := range history {
		trend.Labels[i] = obs.ObservedAt
		trend.Values[i] = obs.Price
		if obs.Price < min {
			min = obs.Price
		}
		sum += obs.Price
	}

	avg := int64(math.Round(float64(sum) / float64(len(history))))
	trend.MinHist = &min
	trend.AvgHist = &avg

	return trend, nil
}

// ListProducts returns up to limit products, optionally filtered by a
// case-insensitive substring of the normalized name. Each row carries the
// single best current price across its history.
func (s *PriceService) ListProducts(ctx context.Context, query string, limit int) ([]ProductSummary, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}

	products, err := s.repo.ListProducts(ctx, domain.ProductFilters{
		Query: NormalizeName(query),
		Limit: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	return summarize(products), nil
}

// ListByCategory returns products in the named category (exact match),
// optionally narrowed further by a normalized-name substring.
func (s *PriceService) ListByCategory(ctx context.Context, categoryName, query string) ([]ProductSummary, error) {
	if categoryName == "" {
		return nil, domain.ErrInvalidRequest
	}

	products, err := s.repo.ListProducts(ctx, domain.ProductFilters{
		Query:        NormalizeName(query),
		CategoryName: categoryName,
	})
	if err != nil {
		return nil, fmt.Errorf("list category: %w", err)
	}

	return summarize(products), nil
}

func summarize(products []domain.Product) []ProductSummary {
	items := make([]ProductSummary, len(products))
	for i := range products {
		p := &products[i]
		items[i] = ProductSummary{
			ID:        p.ID,
			Name:      p.Name,
			Category:  categoryName(p),
			ImageURL:  p.ImageURL,
			Barcode:   p.Barcode,
			BestPrice: bestPrice(p.Prices),
		}
	}
	return items
}

func categoryName(p *domain.Product) *string {
	if p.Category == nil {
		return nil
	}
	name := p.Category.Name
	return &name
}

// bestPrice returns the minimum observed price, or nil for empty history.
func bestPrice(observations []domain.PriceObservation) *int64 {
	if len(observations) == 0 {
		return nil
	}

	min := observations[0].Price
	for _, obs := range observations[1:] {
		if obs.Price < min {
			min = obs.Price
		}
	}
	return &min
}
