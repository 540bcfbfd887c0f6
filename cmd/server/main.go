package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/comparapy/backend/config"
	httpDelivery "github.com/comparapy/backend/internal/delivery/http"
	"github.com/comparapy/backend/internal/infrastructure/cache"
	"github.com/comparapy/backend/internal/infrastructure/fetch"
	"github.com/comparapy/backend/internal/infrastructure/scrape"
	"github.com/comparapy/backend/internal/infrastructure/store"
	"github.com/comparapy/backend/internal/scheduler"
	"github.com/comparapy/backend/internal/usecase"
)

func main() {
	// Local development convenience; ignored when no .env exists
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting ComparaPY Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	db, err := store.Open(cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	repo := store.NewCatalogRepository(db)

	fetcher := fetch.NewClient(fetch.ClientConfig{
		Timeout:           cfg.Scrape.Timeout,
		RequestsPerSecond: cfg.Scrape.Rate,
		Burst:             cfg.Scrape.Burst,
	})

	extractor := scrape.NewExtractor()

	debug := cfg.Server.Environment == "development"
	if debug {
		fetcher.SetDebug(true)
		extractor.SetDebug(true)
	}

	matcher := usecase.NewMatcher(repo, usecase.MatcherConfig{
		MinConfidence:      cfg.Matching.MinConfidence,
		PrefixLength:       cfg.Matching.PrefixLength,
		EnableDebugLogging: cfg.Matching.EnableDebugLogging,
	})
	log.Printf("Matching: confidence=%.0f%%, prefix=%d",
		cfg.Matching.MinConfidence, cfg.Matching.PrefixLength)

	sources := scrape.DefaultSources(cfg.Scrape.SearchTerm)
	log.Printf("Scraping %d sources for %q", len(sources), cfg.Scrape.SearchTerm)

	scrapeService := usecase.NewScrapeService(repo, fetcher, extractor, matcher, usecase.ScrapeServiceConfig{
		Sources:            sources,
		EnableDebugLogging: debug,
	})

	memoryCache := cache.NewMemoryCache()
	priceService := usecase.NewPriceService(repo, memoryCache, usecase.PriceServiceConfig{
		CacheTTL: cfg.Cache.TTL,
	})
	promoService := usecase.NewPromoService(repo)

	sched := scheduler.New(scrapeService)
	if err := sched.Start(cfg.Scrape.Schedule); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	handler := httpDelivery.NewHandler(priceService, promoService, scrapeService)
	router := httpDelivery.SetupRouter(cfg, handler)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
