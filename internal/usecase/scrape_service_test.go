package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/comparapy/backend/internal/domain"
)

// stubFetcher serves canned markup per URL, or an error.
type stubFetcher struct {
	pages map[string]string
	errs  map[string]error
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err, ok := f.errs[url]; ok {
		return "", err
	}
	return f.pages[url], nil
}

// stubExtractor ignores markup and returns canned items per source slug.
type stubExtractor struct {
	items map[string][]domain.RawItem
}

func (e *stubExtractor) Extract(markup string, src domain.SourceProfile) []domain.RawItem {
	return e.items[src.Slug]
}

// gateCatalog holds every barcode lookup result until all expected callers
// have completed theirs, pinning the interleaving where each concurrent
// source misses the lookup before either gets to insert.
type gateCatalog struct {
	*mockCatalog
	lookups sync.WaitGroup
}

func (g *gateCatalog) ProductByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	p, err := g.mockCatalog.ProductByBarcode(ctx, barcode)
	g.lookups.Done()
	g.lookups.Wait()
	return p, err
}

func newTestService(repo *mockCatalog, fetcher domain.Fetcher, extractor Extractor, sources []domain.SourceProfile) *ScrapeService {
	matcher := NewMatcher(repo, MatcherConfig{})
	return NewScrapeService(repo, fetcher, extractor, matcher, ScrapeServiceConfig{Sources: sources})
}

func twoSources() []domain.SourceProfile {
	return []domain.SourceProfile{
		{Slug: "superseis", Name: "Superseis", URL: "https://superseis.test/", Category: "Superseis"},
		{Slug: "stock", Name: "Stock", URL: "https://stock.test/", Category: "Stock"},
	}
}

func TestScrapeServiceRun(t *testing.T) {
	ctx := context.Background()

	t.Run("no sources configured is fatal", func(t *testing.T) {
		svc := newTestService(newMockCatalog(), &stubFetcher{}, &stubExtractor{}, nil)
		_, err := svc.Run(ctx)
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("error = %v, want ErrInvalidRequest", err)
		}
	})

	t.Run("same barcode across sources creates one product with two observations", func(t *testing.T) {
		repo := newMockCatalog()
		sources := twoSources()
		fetcher := &stubFetcher{pages: map[string]string{
			"https://superseis.test/": "<html/>",
			"https://stock.test/":     "<html/>",
		}}
		extractor := &stubExtractor{items: map[string][]domain.RawItem{
			"superseis": {{Name: "Leche Entera 1L", Price: 1000, Barcode: "123", SourceSlug: "superseis"}},
			"stock":     {{Name: "LECHE ENTERA 1l", Price: 1200, Barcode: "123", SourceSlug: "stock"}},
		}}

		summary, err := newTestService(repo, fetcher, extractor, sources).Run(ctx)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}

		if !summary.OK || summary.Total != 2 {
			t.Errorf("summary = %+v, want OK with total 2", summary)
		}
		if len(repo.products) != 1 {
			t.Fatalf("products = %d, want 1", len(repo.products))
		}
		if len(repo.observations) != 2 {
			t.Fatalf("observations = %d, want 2", len(repo.observations))
		}

		// Read side over the same history
		prices := NewPriceService(repo, nil, PriceServiceConfig{})
		detail, err := prices.ProductDetail(ctx, repo.products[0].ID)
		if err != nil {
			t.Fatalf("ProductDetail: %v", err)
		}
		if detail.Spread.Best == nil || *detail.Spread.Best != 1000 {
			t.Errorf("best = %v, want 1000", detail.Spread.Best)
		}
		if detail.Spread.Worst == nil || *detail.Spread.Worst != 1200 {
			t.Errorf("worst = %v, want 1200", detail.Spread.Worst)
		}
		if detail.Spread.Savings != 200 {
			t.Errorf("savings = %d, want 200", detail.Spread.Savings)
		}
	})

	t.Run("concurrent sources racing on one barcode converge on a single product", func(t *testing.T) {
		repo := newMockCatalog()
		gated := &gateCatalog{mockCatalog: repo}
		gated.lookups.Add(2)

		sources := twoSources()
		fetcher := &stubFetcher{pages: map[string]string{
			"https://superseis.test/": "<html/>",
			"https://stock.test/":     "<html/>",
		}}
		// Names dissimilar enough that fuzzy matching alone would create two
		// products; only the barcode identity ties them together.
		extractor := &stubExtractor{items: map[string][]domain.RawItem{
			"superseis": {{Name: "Leche Entera 1L", Price: 1000, Barcode: "123", SourceSlug: "superseis"}},
			"stock":     {{Name: "Sachet Lactolanda Litro", Price: 1200, Barcode: "123", SourceSlug: "stock"}},
		}}

		matcher := NewMatcher(gated, MatcherConfig{})
		svc := NewScrapeService(gated, fetcher, extractor, matcher, ScrapeServiceConfig{Sources: sources})

		summary, err := svc.Run(ctx)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}

		if !summary.OK || summary.Total != 2 {
			t.Errorf("summary = %+v, want OK with total 2", summary)
		}
		if len(repo.products) != 1 {
			t.Fatalf("products = %d, want 1 for shared barcode, got %+v", len(repo.products), repo.products)
		}
		if len(repo.observations) != 2 {
			t.Errorf("observations = %d, want 2", len(repo.observations))
		}
		for _, obs := range repo.observations {
			if obs.ProductID != repo.products[0].ID {
				t.Errorf("observation product = %d, want %d", obs.ProductID, repo.products[0].ID)
			}
		}
	})

	t.Run("one malformed item does not block the other nine", func(t *testing.T) {
		repo := newMockCatalog()
		sources := []domain.SourceProfile{{Slug: "biggie", Name: "Biggie", URL: "https://biggie.test/"}}

		var items []domain.RawItem
		for i := 0; i < 9; i++ {
			items = append(items, domain.RawItem{
				Name:       fmt.Sprintf("Producto %d", i),
				Price:      int64(1000 + i),
				SourceSlug: "biggie",
			})
		}
		// Malformed: unparseable price surfaces as zero
		items = append(items, domain.RawItem{Name: "Roto", Price: 0, SourceSlug: "biggie"})

		fetcher := &stubFetcher{pages: map[string]string{"https://biggie.test/": "<html/>"}}
		extractor := &stubExtractor{items: map[string][]domain.RawItem{"biggie": items}}

		summary, err := newTestService(repo, fetcher, extractor, sources).Run(ctx)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}

		if summary.Total != 9 {
			t.Errorf("total = %d, want 9", summary.Total)
		}
		if len(repo.observations) != 9 {
			t.Errorf("observations = %d, want 9", len(repo.observations))
		}
	})

	t.Run("dead source yields zero items and run continues", func(t *testing.T) {
		repo := newMockCatalog()
		sources := twoSources()
		fetcher := &stubFetcher{
			pages: map[string]string{"https://superseis.test/": "<html/>"},
			errs:  map[string]error{"https://stock.test/": domain.ErrFetchFailed},
		}
		extractor := &stubExtractor{items: map[string][]domain.RawItem{
			"superseis": {{Name: "Arroz", Price: 5000, SourceSlug: "superseis"}},
		}}

		summary, err := newTestService(repo, fetcher, extractor, sources).Run(ctx)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}

		if summary.Total != 1 {
			t.Errorf("total = %d, want 1", summary.Total)
		}
		for _, r := range summary.Sources {
			if r.Source == "Stock" && r.Items != 0 {
				t.Errorf("dead source items = %d, want 0", r.Items)
			}
		}
	})

	t.Run("per-item store failure skips only that item", func(t *testing.T) {
		repo := newMockCatalog()
		repo.failProductName = "Producto Maldito"
		sources := []domain.SourceProfile{{Slug: "stock", Name: "Stock", URL: "https://stock.test/"}}

		fetcher := &stubFetcher{pages: map[string]string{"https://stock.test/": "<html/>"}}
		extractor := &stubExtractor{items: map[string][]domain.RawItem{"stock": {
			{Name: "Producto Bueno", Price: 1000, SourceSlug: "stock"},
			{Name: "Producto Maldito", Price: 2000, SourceSlug: "stock"},
			{Name: "Otro Bueno", Price: 3000, SourceSlug: "stock"},
		}}}

		summary, err := newTestService(repo, fetcher, extractor, sources).Run(ctx)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}

		if summary.Total != 2 {
			t.Errorf("total = %d, want 2", summary.Total)
		}
	})

	t.Run("store down is fatal with no partial summary", func(t *testing.T) {
		repo := newMockCatalog()
		repo.supermarketErr = errMockStore

		fetcher := &stubFetcher{pages: map[string]string{}}
		svc := newTestService(repo, fetcher, &stubExtractor{}, twoSources())

		summary, err := svc.Run(ctx)
		if err == nil {
			t.Fatal("expected fatal error")
		}
		if summary != nil {
			t.Errorf("summary = %+v, want nil", summary)
		}
	})

	t.Run("repeat runs append rather than dedupe observations", func(t *testing.T) {
		repo := newMockCatalog()
		sources := []domain.SourceProfile{{Slug: "stock", Name: "Stock", URL: "https://stock.test/"}}
		fetcher := &stubFetcher{pages: map[string]string{"https://stock.test/": "<html/>"}}
		extractor := &stubExtractor{items: map[string][]domain.RawItem{"stock": {
			{Name: "Fideos Anita", Price: 4500, Barcode: "777", SourceSlug: "stock"},
		}}}

		svc := newTestService(repo, fetcher, extractor, sources)
		for i := 0; i < 3; i++ {
			if _, err := svc.Run(ctx); err != nil {
				t.Fatalf("Run %d: %v", i, err)
			}
		}

		if len(repo.products) != 1 {
			t.Errorf("products = %d, want 1", len(repo.products))
		}
		if len(repo.observations) != 3 {
			t.Errorf("observations = %d, want 3 (one per run, same price)", len(repo.observations))
		}
	})
}
