package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/comparapy/backend/internal/domain"
)

// CatalogRepository implements domain.CatalogRepository over GORM/Postgres.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// GetOrCreateSupermarket inserts the supermarket unless its slug exists, then
// fetches the surviving row. Two concurrent callers both end up with the same
// row: the insert conflicts on the unique slug index and does nothing.
func (r *CatalogRepository) GetOrCreateSupermarket(ctx context.Context, slug, name, logoURL string) (*domain.Supermarket, error) {
	market := domain.Supermarket{Slug: slug, Name: name, LogoURL: logoURL}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "slug"}}, DoNothing: true}).
		Create(&market).Error; err != nil {
		return nil, err
	}

	var out domain.Supermarket
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// GetOrCreateCategory follows the same upsert-then-fetch pattern keyed by slug.
func (r *CatalogRepository) GetOrCreateCategory(ctx context.Context, slug, name string) (*domain.Category, error) {
	category := domain.Category{Slug: slug, Name: name}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "slug"}}, DoNothing: true}).
		Create(&category).Error; err != nil {
		return nil, err
	}

	var out domain.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *CatalogRepository) ProductByID(ctx context.Context, id uint) (*domain.Product, error) {
	var product domain.Product
	if err := r.db.WithContext(ctx).
		Preload("Category").
		First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *CatalogRepository) ProductByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	var product domain.Product
	if err := r.db.WithContext(ctx).
		Where("barcode = ?", barcode).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// ProductsByNormalizedName matches key as a substring of the stored
// normalized name. Both sides are already lowercased by normalization, so a
// plain LIKE is effectively case-insensitive. Ordered by id so exact-score
// ties in the matcher resolve the same way on every run.
func (r *CatalogRepository) ProductsByNormalizedName(ctx context.Context, key string, limit int) ([]domain.Product, error) {
	var products []domain.Product
	if err := r.db.WithContext(ctx).
		Where("normalized_name LIKE ?", "%"+key+"%").
		Order("id").
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// CreateProduct inserts p. A barcoded product upserts on the unique barcode
// index: when a concurrent writer got there first, p is replaced with the
// surviving row so both callers attribute prices to the same product.
func (r *CatalogRepository) CreateProduct(ctx context.Context, p *domain.Product) error {
	if p.Barcode == nil {
		return r.db.WithContext(ctx).Create(p).Error
	}

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "barcode"}}, DoNothing: true}).
		Create(p).Error; err != nil {
		return err
	}
	if p.ID != 0 {
		return nil
	}

	var out domain.Product
	if err := r.db.WithContext(ctx).Where("barcode = ?", *p.Barcode).First(&out).Error; err != nil {
		return err
	}
	*p = out
	return nil
}

func (r *CatalogRepository) ListProducts(ctx context.Context, f domain.ProductFilters) ([]domain.Product, error) {
	query := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Preload("Category").
		Preload("Prices")

	if f.CategoryName != "" {
		query = query.
			Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.name = ?", f.CategoryName)
	}
	if f.Query != "" {
		query = query.Where("products.normalized_name LIKE ?", "%"+f.Query+"%")
	}
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}

	var products []domain.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *CatalogRepository) AppendObservation(ctx context.Context, obs *domain.PriceObservation) error {
	return r.db.WithContext(ctx).Create(obs).Error
}

func (r *CatalogRepository) ObservationsByPrice(ctx context.Context, productID uint) ([]domain.PriceObservation, error) {
	var observations []domain.PriceObservation
	if err := r.db.WithContext(ctx).
		Preload("Supermarket").
		Where("product_id = ?", productID).
		Order("price ASC").
		Find(&observations).Error; err != nil {
		return nil, err
	}
	return observations, nil
}

// RecentObservations fetches the newest rows and flips them so callers get
// the window oldest first, ready for charting.
func (r *CatalogRepository) RecentObservations(ctx context.Context, productID uint, limit int) ([]domain.PriceObservation, error) {
	var observations []domain.PriceObservation
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("observed_at DESC").
		Limit(limit).
		Find(&observations).Error; err != nil {
		return nil, err
	}

	for i, j := 0, len(observations)-1; i < j; i, j = i+1, j-1 {
		observations[i], observations[j] = observations[j], observations[i]
	}
	return observations, nil
}

func (r *CatalogRepository) FeaturedPromos(ctx context.Context) ([]domain.Promo, error) {
	var promos []domain.Promo
	if err := r.db.WithContext(ctx).
		Preload("Product").
		Where("featured = ?", true).
		Find(&promos).Error; err != nil {
		return nil, err
	}
	return promos, nil
}
