package domain

// SourceProfile describes how to scrape one supermarket site. Adding a source
// means adding a profile, not new extraction code: the generic extractor walks
// ItemSelector matches and pulls each field with the selectors below.
type SourceProfile struct {
	Slug    string `mapstructure:"slug"`
	Name    string `mapstructure:"name"`
	URL     string `mapstructure:"url"`
	BaseURL string `mapstructure:"base_url"`
	LogoURL string `mapstructure:"logo_url"`

	// Category assigned to products first seen on this source, empty for none.
	Category string `mapstructure:"category"`

	ItemSelector  string `mapstructure:"item_selector"`
	NameSelector  string `mapstructure:"name_selector"`
	PriceSelector string `mapstructure:"price_selector"`
	ImageSelector string `mapstructure:"image_selector"`
	LinkSelector  string `mapstructure:"link_selector"`

	// Attribute on the container element carrying the barcode, if the site
	// exposes one (e.g. "data-ean"). Empty for sites that don't.
	BarcodeAttr string `mapstructure:"barcode_attr"`
}
