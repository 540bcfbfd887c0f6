package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/comparapy/backend/internal/domain"
	"github.com/comparapy/backend/internal/usecase"
)

// PriceProvider is the read-side surface the handlers consume.
type PriceProvider interface {
	ListProducts(ctx context.Context, query string, limit int) ([]usecase.ProductSummary, error)
	ListByCategory(ctx context.Context, categoryName, query string) ([]usecase.ProductSummary, error)
	ProductDetail(ctx context.Context, id uint) (*usecase.ProductDetail, error)
}

// PromoProvider lists promotional content.
type PromoProvider interface {
	Featured(ctx context.Context) ([]domain.Promo, error)
}

// ScrapeRunner triggers one full ingestion run.
type ScrapeRunner interface {
	Run(ctx context.Context) (*domain.ScrapeSummary, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	prices  PriceProvider
	promos  PromoProvider
	scraper ScrapeRunner
}

// NewHandler creates a new HTTP handler
func NewHandler(prices PriceProvider, promos PromoProvider, scraper ScrapeRunner) *Handler {
	return &Handler{
		prices:  prices,
		promos:  promos,
		scraper: scraper,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "comparapy-backend",
		"version": "1.0.0",
	})
}

// ListProducts handles GET /products?q=&limit=
func (h *Handler) ListProducts(c *gin.Context) {
	limit := 0
	if lStr := c.Query("limit"); lStr != "" {
		if l, err := strconv.Atoi(lStr); err == nil && l > 0 {
			if l > 100 {
				l = 100
			}
			limit = l
		}
	}

	items, err := h.prices.ListProducts(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "items": items})
}

// GetProduct handles GET /products/:id with the full price bundle
func (h *Handler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "missing or invalid id"})
		return
	}

	detail, err := h.prices.ProductDetail(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"product":   detail.Product,
		"precios":   detail.Prices,
		"mejores":   detail.Spread,
		"tendencia": detail.Trend,
	})
}

// CategoryProducts handles GET /category?cat=&q=
func (h *Handler) CategoryProducts(c *gin.Context) {
	items, err := h.prices.ListByCategory(c.Request.Context(), c.Query("cat"), c.Query("q"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "missing cat"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "items": items})
}

// FeaturedPromos handles GET /promos
func (h *Handler) FeaturedPromos(c *gin.Context) {
	items, err := h.promos.Featured(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "items": items})
}

// RunScrape handles POST /scrape. Per-source failures show up in the summary
// with zero items; only a fatal orchestration error produces ok:false.
func (h *Handler) RunScrape(c *gin.Context) {
	summary, err := h.scraper.Run(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}
