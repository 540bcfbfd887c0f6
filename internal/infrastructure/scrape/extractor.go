package scrape

import (
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/comparapy/backend/internal/domain"
)

// Package-level compiled regex pattern for performance
var nonDigitRegex = regexp.MustCompile(`[^0-9]`)

// Extractor is the one generic extraction routine shared by every source.
// All per-site knowledge lives in the SourceProfile selectors.
type Extractor struct {
	debug bool
}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// SetDebug enables per-element logging
func (e *Extractor) SetDebug(debug bool) {
	e.debug = debug
}

// Extract walks the profile's item containers in markup and pulls one raw
// item per well-formed element. Elements missing a name or a parseable
// positive price are skipped silently; unparseable markup yields an empty
// list, never an error.
func (e *Extractor) Extract(markup string, src domain.SourceProfile) []domain.RawItem {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		log.Printf("[EXTRACT] source %q: markup not parseable: %v", src.Slug, err)
		return nil
	}

	var items []domain.RawItem
	doc.Find(src.ItemSelector).Each(func(_ int, sel *goquery.Selection) {
		name := strings.TrimSpace(sel.Find(src.NameSelector).First().Text())
		price, ok := ParsePrice(sel.Find(src.PriceSelector).First().Text())
		if name == "" || !ok {
			if e.debug {
				log.Printf("[EXTRACT] source %q: skipping malformed element (name=%q)", src.Slug, name)
			}
			return
		}

		item := domain.RawItem{
			Name:       name,
			Price:      price,
			SourceSlug: src.Slug,
		}

		imageSelector := src.ImageSelector
		if imageSelector == "" {
			imageSelector = "img"
		}
		if img, exists := sel.Find(imageSelector).First().Attr("src"); exists {
			item.ImageURL = ResolveURL(src.BaseURL, img)
		}

		if src.LinkSelector != "" {
			if href, exists := sel.Find(src.LinkSelector).First().Attr("href"); exists {
				item.Link = ResolveURL(src.BaseURL, href)
			}
		}

		if src.BarcodeAttr != "" {
			item.Barcode = strings.TrimSpace(sel.AttrOr(src.BarcodeAttr, ""))
		}

		items = append(items, item)
	})

	return items
}

// ParsePrice turns price text like "Gs. 12.500" into 12500. Thousands dots
// and every other non-digit are stripped before parsing; an empty or
// non-positive result means the item must be dropped.
func ParsePrice(text string) (int64, bool) {
	digits := nonDigitRegex.ReplaceAllString(strings.ReplaceAll(text, ".", ""), "")
	if digits == "" {
		return 0, false
	}

	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}

	return n, true
}

// ResolveURL makes a scraped image or link URL absolute against the source's
// base origin. Absolute URLs pass through, protocol-relative ones get https.
func ResolveURL(base, src string) string {
	switch {
	case src == "":
		return ""
	case strings.HasPrefix(src, "http"):
		return src
	case strings.HasPrefix(src, "//"):
		return "https:" + src
	case strings.HasPrefix(src, "/"):
		return base + src
	default:
		return base + "/" + src
	}
}
