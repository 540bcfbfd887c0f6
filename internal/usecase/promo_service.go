package usecase

import (
	"context"
	"fmt"

	"github.com/comparapy/backend/internal/domain"
)

// PromoService reads promotional content. Promos are managed outside the
// ingestion core; this side only lists them.
type PromoService struct {
	repo domain.CatalogRepository
}

func NewPromoService(repo domain.CatalogRepository) *PromoService {
	return &PromoService{repo: repo}
}

// Featured returns the promos flagged for the front page, product included.
func (s *PromoService) Featured(ctx context.Context) ([]domain.Promo, error) {
	promos, err := s.repo.FeaturedPromos(ctx)
	if err != nil {
		return nil, fmt.Errorf("list promos: %w", err)
	}
	return promos, nil
}
