package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/comparapy/backend/internal/domain"
)

// MatcherConfig holds configuration for product reconciliation
type MatcherConfig struct {
	// MinConfidence is the minimum similarity score (0-100) a name-based
	// candidate needs before prices get attributed to it. Below the
	// threshold a new product is created instead.
	MinConfidence float64
	// PrefixLength is how many leading characters of the normalized name
	// form the candidate-lookup key.
	PrefixLength int
	// CandidateLimit caps how many candidates the store lookup returns.
	CandidateLimit     int
	EnableDebugLogging bool
}

// Matcher reconciles normalized items against the catalog: exact barcode
// match first, then scored fuzzy name match, then product creation.
type Matcher struct {
	repo           domain.CatalogRepository
	minConfidence  float64
	prefixLength   int
	candidateLimit int
	debug          bool
}

// NewMatcher creates a matcher with the given configuration
func NewMatcher(repo domain.CatalogRepository, config MatcherConfig) *Matcher {
	minConfidence := config.MinConfidence
	if minConfidence <= 0 {
		minConfidence = 40.0
	}

	prefixLength := config.PrefixLength
	if prefixLength <= 0 {
		prefixLength = 12
	}

	candidateLimit := config.CandidateLimit
	if candidateLimit <= 0 {
		candidateLimit = 20
	}

	return &Matcher{
		repo:           repo,
		minConfidence:  minConfidence,
		prefixLength:   prefixLength,
		candidateLimit: candidateLimit,
		debug:          config.EnableDebugLogging,
	}
}

// Resolve returns the catalog product an item refers to, creating product and
// category rows when nothing matches. Store errors propagate to the caller
// and are scoped to this single item.
//
// Order: barcode exact match short-circuits everything else; otherwise
// candidates sharing the normalized-name prefix are scored by token overlap
// and the best one wins if it clears the confidence threshold.
func (m *Matcher) Resolve(ctx context.Context, item domain.NormalizedItem, categoryName string) (*domain.Product, error) {
	if !item.Valid() {
		return nil, domain.ErrInvalidItem
	}

	if item.Barcode != "" {
		product, err := m.repo.ProductByBarcode(ctx, item.Barcode)
		if err == nil {
			return product, nil
		}
		if !errors.Is(err, domain.ErrProductNotFound) {
			return nil, fmt.Errorf("barcode lookup: %w", err)
		}
	}

	if product, err := m.matchByName(ctx, item); err != nil {
		return nil, err
	} else if product != nil {
		return product, nil
	}

	return m.createProduct(ctx, item, categoryName)
}

// matchByName returns the best-scoring candidate above the confidence
// threshold, or nil when no candidate qualifies.
func (m *Matcher) matchByName(ctx context.Context, item domain.NormalizedItem) (*domain.Product, error) {
	key := item.NormalizedName
	if len(key) > m.prefixLength {
		key = key[:m.prefixLength]
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, nil
	}

	candidates, err := m.repo.ProductsByNormalizedName(ctx, key, m.candidateLimit)
	if err != nil {
		return nil, fmt.Errorf("name lookup: %w", err)
	}

	var best *domain.Product
	highestScore := -1.0

	for i := range candidates {
		score := similarityScore(item.NormalizedName, candidates[i].NormalizedName)

		if m.debug {
			log.Printf("[MATCH] candidate %q score %.1f for %q", candidates[i].NormalizedName, score, item.NormalizedName)
		}

		if score > highestScore {
			highestScore = score
			best = &candidates[i]
		}
	}

	if best == nil || highestScore < m.minConfidence {
		if m.debug && best != nil {
			log.Printf("[MATCH] best candidate %q below threshold (%.1f < %.1f), creating new product", best.NormalizedName, highestScore, m.minConfidence)
		}
		return nil, nil
	}

	return best, nil
}

func (m *Matcher) createProduct(ctx context.Context, item domain.NormalizedItem, categoryName string) (*domain.Product, error) {
	var categoryID *uint
	if categoryName != "" {
		category, err := m.repo.GetOrCreateCategory(ctx, Slugify(categoryName), categoryName)
		if err != nil {
			return nil, fmt.Errorf("category get-or-create: %w", err)
		}
		categoryID = &category.ID
	}

	product := &domain.Product{
		Name:           item.Name,
		NormalizedName: item.NormalizedName,
		ImageURL:       item.ImageURL,
		CategoryID:     categoryID,
	}
	if item.Barcode != "" {
		barcode := item.Barcode
		product.Barcode = &barcode
	}

	if err := m.repo.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	return product, nil
}

// similarityScore computes token-set similarity between two normalized names.
// Weighted blend of item-token coverage (most important), candidate-token
// coverage, and Jaccard over the union, scaled to 0-100, plus a substring
// bonus for whole-name containment.
func similarityScore(itemName, candidateName string) float64 {
	itemTokens := strings.Fields(itemName)
	candidateTokens := strings.Fields(candidateName)

	if len(itemTokens) == 0 || len(candidateTokens) == 0 {
		return 0
	}

	itemMatched := countIntersection(itemTokens, candidateTokens)
	itemCoverage := float64(itemMatched) / float64(len(itemTokens))

	candidateMatched := countIntersection(candidateTokens, itemTokens)
	candidateCoverage := float64(candidateMatched) / float64(len(candidateTokens))

	union := countUnion(itemTokens, candidateTokens)
	jaccard := float64(itemMatched) / float64(union)

	score := (itemCoverage*0.60 + candidateCoverage*0.20 + jaccard*0.20) * 100

	if len(itemName) > 3 && (strings.Contains(candidateName, itemName) || strings.Contains(itemName, candidateName)) {
		score += 10
	}

	if score > 100 {
		score = 100
	}

	return score
}

// countIntersection returns how many distinct tokens of tokens2 appear in tokens1
func countIntersection(tokens1, tokens2 []string) int {
	set := make(map[string]bool)
	for _, t := range tokens1 {
		set[t] = true
	}

	matched := 0
	seen := make(map[string]bool)
	for _, t := range tokens2 {
		if set[t] && !seen[t] {
			matched++
			seen[t] = true
		}
	}

	return matched
}

// countUnion returns the count of unique tokens across both sets
func countUnion(tokens1, tokens2 []string) int {
	set := make(map[string]bool)
	for _, t := range tokens1 {
		set[t] = true
	}
	for _, t := range tokens2 {
		set[t] = true
	}
	return len(set)
}
