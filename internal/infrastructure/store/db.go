package store

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/comparapy/backend/internal/domain"
)

// Open connects to Postgres and migrates the catalog schema. The unique
// indexes on category and supermarket slugs are what makes concurrent
// get-or-create safe (upsert-then-fetch relies on them).
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(
		&domain.Category{},
		&domain.Supermarket{},
		&domain.Product{},
		&domain.PriceObservation{},
		&domain.Promo{},
	); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return db, nil
}
