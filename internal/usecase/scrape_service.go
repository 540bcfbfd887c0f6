package usecase

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/comparapy/backend/internal/domain"
)

// Extractor turns raw markup into the item records a source's selector
// profile describes. One pass per invocation; malformed elements are skipped
// and never appear in the output.
type Extractor interface {
	Extract(markup string, src domain.SourceProfile) []domain.RawItem
}

// ScrapeServiceConfig holds configuration for the scrape orchestrator
type ScrapeServiceConfig struct {
	Sources            []domain.SourceProfile
	EnableDebugLogging bool
}

// ScrapeService drives one ingestion run: every configured source is fetched
// and extracted concurrently, and each extracted item flows through
// normalize -> match -> record. Failures are isolated per source and per
// item so one bad record never aborts the batch.
type ScrapeService struct {
	repo      domain.CatalogRepository
	fetcher   domain.Fetcher
	extractor Extractor
	matcher   *Matcher
	sources   []domain.SourceProfile
	debug     bool
}

// NewScrapeService creates the orchestrator with its collaborators
func NewScrapeService(
	repo domain.CatalogRepository,
	fetcher domain.Fetcher,
	extractor Extractor,
	matcher *Matcher,
	config ScrapeServiceConfig,
) *ScrapeService {
	return &ScrapeService{
		repo:      repo,
		fetcher:   fetcher,
		extractor: extractor,
		matcher:   matcher,
		sources:   config.Sources,
		debug:     config.EnableDebugLogging,
	}
}

// Run scrapes all configured sources and returns the combined summary.
// A source whose fetch or parse fails entirely is reported with zero items
// and the run continues; a store failure while registering a supermarket is
// outside the per-item scope and fails the whole run (rows already written
// by other sources are not rolled back).
func (s *ScrapeService) Run(ctx context.Context) (*domain.ScrapeSummary, error) {
	if len(s.sources) == 0 {
		return nil, fmt.Errorf("%w: no sources configured", domain.ErrInvalidRequest)
	}

	results := make([]domain.SourceResult, len(s.sources))
	errs := make([]error, len(s.sources))

	var wg sync.WaitGroup
	for i, src := range s.sources {
		wg.Add(1)
		go func(i int, src domain.SourceProfile) {
			defer wg.Done()
			count, err := s.scrapeSource(ctx, src)
			results[i] = domain.SourceResult{Source: src.Name, Items: count}
			errs[i] = err
		}(i, src)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	total := 0
	for _, r := range results {
		total += r.Items
	}

	log.Printf("[SCRAPE] run complete: %d items across %d sources", total, len(s.sources))

	return &domain.ScrapeSummary{OK: true, Total: total, Sources: results}, nil
}

// scrapeSource ingests one source and returns how many items were persisted.
// The returned error is fatal to the whole run; per-item failures only log.
func (s *ScrapeService) scrapeSource(ctx context.Context, src domain.SourceProfile) (int, error) {
	market, err := s.repo.GetOrCreateSupermarket(ctx, src.Slug, src.Name, src.LogoURL)
	if err != nil {
		return 0, fmt.Errorf("register supermarket %q: %w", src.Slug, err)
	}

	markup, err := s.fetcher.Fetch(ctx, src.URL)
	if err != nil {
		// Source down or unreachable: recorded as zero items, run continues
		log.Printf("[SCRAPE] source %q unavailable: %v", src.Slug, err)
		return 0, nil
	}

	items := s.extractor.Extract(markup, src)

	// Items from one source are matched sequentially: parallel get-or-create
	// here would double-create products from near-duplicate entries on the
	// same page.
	count := 0
	for _, raw := range items {
		item := Normalize(raw)
		if !item.Valid() {
			continue
		}

		product, err := s.matcher.Resolve(ctx, item, src.Category)
		if err != nil {
			log.Printf("[SCRAPE] skipping item %q from %q: %v", item.Name, src.Slug, err)
			continue
		}

		if err := s.recordPrice(ctx, product.ID, market.ID, item.Price); err != nil {
			log.Printf("[SCRAPE] price not recorded for %q from %q: %v", item.Name, src.Slug, err)
			continue
		}

		count++
	}

	if s.debug {
		log.Printf("[SCRAPE] source %q: %d/%d items persisted", src.Slug, count, len(items))
	}

	return count, nil
}

// recordPrice appends one observation stamped with the current time. A zero
// or negative price is an explicit no-op, not an error. Every call appends a
// new row, even when the price is unchanged from the pair's last observation.
func (s *ScrapeService) recordPrice(ctx context.Context, productID, supermarketID uint, price int64) error {
	if price <= 0 {
		return nil
	}

	return s.repo.AppendObservation(ctx, &domain.PriceObservation{
		ProductID:     productID,
		SupermarketID: supermarketID,
		Price:         price,
		ObservedAt:    time.Now(),
	})
}
