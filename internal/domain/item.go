package domain

// RawItem is one record as extracted from a source page, before any
// normalization. The extractor has already parsed the price; items whose
// price text failed to parse never reach the pipeline.
type RawItem struct {
	Name       string `json:"name"`
	Price      int64  `json:"price"`
	ImageURL   string `json:"image,omitempty"`
	Link       string `json:"link,omitempty"`
	Barcode    string `json:"barcode,omitempty"`
	SourceSlug string `json:"supermarket"`
}

// NormalizedItem is the canonical form of a raw item: trimmed name, derived
// comparison key, integer price in whole guaraníes.
type NormalizedItem struct {
	Name           string
	NormalizedName string
	Price          int64
	ImageURL       string
	Link           string
	Barcode        string
	SourceSlug     string
}

// Valid reports whether the item can be matched and recorded. The extractor
// already drops unparseable prices; this is the second guard the matcher
// relies on.
func (n NormalizedItem) Valid() bool {
	return n.Name != "" && n.Price > 0
}

// SourceResult is the per-source line of a scrape summary. The field name
// follows the client-facing Spanish schema, like mejorPrecio and tendencia.
type SourceResult struct {
	Source string `json:"supermercado"`
	Items  int    `json:"items"`
}

// ScrapeSummary is what a full orchestrated run reports back. A source that
// failed entirely shows up with Items == 0 rather than as an error.
type ScrapeSummary struct {
	OK      bool           `json:"ok"`
	Total   int            `json:"total"`
	Sources []SourceResult `json:"summary"`
}
