package usecase

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/comparapy/backend/internal/domain"
)

// Package-level compiled regex pattern for performance
var nonAlphanumSpaceRegex = regexp.MustCompile(`[^a-z0-9 ]`)

// deaccent decomposes to NFD and drops combining diacritical marks, so
// "Lácteos" becomes "Lacteos" before lowercasing and filtering.
var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName derives the comparison key stored on every product:
// lowercase, diacritics stripped, everything outside [a-z0-9 ] removed,
// trimmed. The same function runs at ingestion and at query time, so the
// keys always line up. Idempotent.
func NormalizeName(s string) string {
	lowered := strings.ToLower(s)
	stripped, _, err := transform.String(deaccent, lowered)
	if err != nil {
		// Transform only fails on malformed UTF-8; fall back to the raw input
		stripped = lowered
	}
	cleaned := nonAlphanumSpaceRegex.ReplaceAllString(stripped, "")
	return strings.TrimSpace(cleaned)
}

// Slugify derives category slugs: normalized name with spaces turned into
// hyphens ("Lácteos y Huevos" -> "lacteos-y-huevos").
func Slugify(s string) string {
	return strings.ReplaceAll(NormalizeName(s), " ", "-")
}

// Normalize converts a raw extracted item into its canonical form. Pure, no
// I/O. A non-positive price is carried through as zero and rejected later by
// the matcher; the extractor should already have dropped such items.
func Normalize(raw domain.RawItem) domain.NormalizedItem {
	name := strings.TrimSpace(raw.Name)

	price := raw.Price
	if price < 0 {
		price = 0
	}

	return domain.NormalizedItem{
		Name:           name,
		NormalizedName: NormalizeName(name),
		Price:          price,
		ImageURL:       raw.ImageURL,
		Link:           raw.Link,
		Barcode:        strings.TrimSpace(raw.Barcode),
		SourceSlug:     raw.SourceSlug,
	}
}
