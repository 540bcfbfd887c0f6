package domain

import "time"

// Category groups products for browsing. The slug is derived from the name
// (normalized, spaces replaced with hyphens) and is unique.
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Slug string `gorm:"uniqueIndex;not null" json:"slug"`
	Name string `gorm:"not null" json:"name"`
}

func (c *Category) TableName() string {
	return "categories"
}

// Supermarket is a scraped source site. Created lazily on the first item
// observed from that source, never mutated afterwards.
type Supermarket struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Slug    string `gorm:"uniqueIndex;not null" json:"slug"`
	Name    string `gorm:"not null" json:"name"`
	LogoURL string `json:"logo,omitempty"`
}

func (s *Supermarket) TableName() string {
	return "supermarkets"
}

// Product is one distinct physical good, best-effort deduplicated at
// ingestion time. NormalizedName is a derived comparison key, not unique.
// A barcode, when present, is a stronger identity signal than the name and
// is unique across the catalog (NULL barcodes don't conflict, so unbarcoded
// products are unconstrained).
// Products are never merged or deleted; only their price history grows.
type Product struct {
	ID             uint               `gorm:"primaryKey" json:"id"`
	Name           string             `gorm:"not null" json:"name"`
	NormalizedName string             `gorm:"index;not null" json:"normalizedName"`
	ImageURL       string             `json:"image,omitempty"`
	Barcode        *string            `gorm:"uniqueIndex" json:"barcode,omitempty"`
	CategoryID     *uint              `json:"-"`
	Category       *Category          `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Prices         []PriceObservation `gorm:"foreignKey:ProductID" json:"-"`
}

func (p *Product) TableName() string {
	return "products"
}

// PriceObservation is one timestamped price sighting for a (product,
// supermarket) pair. Rows are append-only: never updated, never deduplicated,
// even when the price is unchanged from the previous observation.
type PriceObservation struct {
	ID            uint        `gorm:"primaryKey" json:"-"`
	ProductID     uint        `gorm:"index;not null" json:"-"`
	SupermarketID uint        `gorm:"not null" json:"-"`
	Price         int64       `gorm:"not null" json:"price"`
	ObservedAt    time.Time   `gorm:"index;not null" json:"observedAt"`
	Supermarket   Supermarket `gorm:"foreignKey:SupermarketID" json:"-"`
}

func (o *PriceObservation) TableName() string {
	return "product_prices"
}

// Promo is promotional content attached to a product. The ingestion core
// never writes promos; they are managed externally and only read here.
type Promo struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Description string  `gorm:"not null" json:"description"`
	Featured    bool    `gorm:"index" json:"featured"`
	ProductID   uint    `gorm:"not null" json:"-"`
	Product     Product `gorm:"foreignKey:ProductID" json:"product"`
}

func (p *Promo) TableName() string {
	return "promos"
}
