package scrape

import (
	"net/url"

	"github.com/comparapy/backend/internal/domain"
)

// DefaultSources returns the selector profiles for the supported supermarket
// sites, searching for term. Selectors track each site's current markup;
// when a site redesigns, only its profile changes.
func DefaultSources(term string) []domain.SourceProfile {
	q := url.QueryEscape(term)

	return []domain.SourceProfile{
		{
			Slug:          "superseis",
			Name:          "Superseis",
			URL:           "https://www.superseis.com.py/buscar?search=" + q,
			BaseURL:       "https://www.superseis.com.py",
			Category:      "Superseis",
			ItemSelector:  ".product-item",
			NameSelector:  ".product-name",
			PriceSelector: ".price",
		},
		{
			Slug:          "stock",
			Name:          "Stock",
			URL:           "https://www.stock.com.py/buscar?search=" + q,
			BaseURL:       "https://www.stock.com.py",
			Category:      "Stock",
			ItemSelector:  ".product-item, .product-block",
			NameSelector:  ".product-name",
			PriceSelector: ".price",
		},
		{
			Slug:          "biggie",
			Name:          "Biggie",
			URL:           "https://biggie.com.py/?s=" + q,
			BaseURL:       "https://biggie.com.py",
			Category:      "Biggie",
			ItemSelector:  ".products .product",
			NameSelector:  ".woo-loop-product__title",
			PriceSelector: ".price bdi",
			LinkSelector:  "a",
		},
		{
			Slug:          "casarica",
			Name:          "Casa Rica",
			URL:           "https://www.casarica.com.py/catalogsearch/result/?q=" + q,
			BaseURL:       "https://www.casarica.com.py",
			Category:      "Casa Rica",
			ItemSelector:  ".product-item",
			NameSelector:  ".product-item-link",
			PriceSelector: ".price",
			LinkSelector:  ".product-item-link",
		},
	}
}
