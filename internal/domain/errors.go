package domain

import "errors"

var (
	// ErrProductNotFound is returned when a catalog lookup finds no product
	ErrProductNotFound = errors.New("product not found")

	// ErrCategoryNotFound is returned when a category lookup finds no row
	ErrCategoryNotFound = errors.New("category not found")

	// ErrSourceUnavailable is returned when a source's fetch or parse fails
	// entirely; the orchestrator records the source with zero items
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrFetchFailed is returned when an HTTP fetch times out or the
	// connection fails
	ErrFetchFailed = errors.New("fetch failed")

	// ErrInvalidItem is returned when an item fails name/price validation
	ErrInvalidItem = errors.New("invalid item")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
