package usecase

import (
	"log"
	"regexp"
	"strings"

	"github.com/catalogbridge/reconciler/internal/domain"
)

// Compiled regex patterns for record normalization
var (
	htmlTagPattern     = regexp.MustCompile(`<[^>]*>`)
	nonAlnumRunPattern = regexp.MustCompile(`[^a-z0-9]+`)
	fieldSpacePattern  = regexp.MustCompile(`\s+`)
)

// Canonical field names every normalized record uses, regardless of what
// the source called its columns.
const (
	FieldHandle      = "handle"
	FieldTitle       = "title"
	FieldVendor      = "vendor"
	FieldTags        = "tags"
	FieldProductType = "product_type"
	FieldSKU         = "sku"
	FieldUPC         = "upc"
	FieldPrice       = "price"
	FieldDescription = "description"
	FieldImageURL    = "image_url"
)

// Handle length caps. Inventory handles are slugified from free text, so
// they get a generous cap; the synthetic id prefix elsewhere uses 20.
const (
	inventoryHandleCap = 50
	syntheticKeyCap    = 20
)

// columnCandidates lists, per source and canonical field, the source
// column names to try in priority order. First non-empty candidate wins.
var columnCandidates = map[domain.SourceID]map[string][]string{
	domain.SourceShopify: {
		FieldHandle:      {"handle"},
		FieldTitle:       {"title"},
		FieldVendor:      {"vendor"},
		FieldTags:        {"tags"},
		FieldProductType: {"type", "product_type", "product_category"},
		FieldSKU:         {"variant_sku", "sku"},
		FieldUPC:         {"variant_barcode", "barcode", "upc"},
		FieldPrice:       {"variant_price", "price"},
		FieldDescription: {"body_html", "body_(html)", "description"},
		FieldImageURL:    {"image_src", "image"},
	},
	domain.SourceWoo: {
		FieldHandle:      {"slug", "post_name"},
		FieldTitle:       {"name", "post_title", "title"},
		FieldVendor:      {"brands", "brand", "vendor"},
		FieldTags:        {"categories", "tags", "tax:product_cat"},
		FieldProductType: {"type", "tax:product_type"},
		FieldSKU:         {"sku"},
		FieldUPC:         {"upc", "barcode", "gtin"},
		FieldPrice:       {"regular_price", "price", "sale_price"},
		FieldDescription: {"description", "short_description", "post_content"},
		FieldImageURL:    {"images", "image"},
	},
	domain.SourceInventory: {
		FieldHandle:      {"handle", "slug"},
		FieldTitle:       {"item_description", "description", "item_name", "product_name", "title", "name"},
		FieldVendor:      {"vendor", "supplier", "manufacturer", "brand"},
		FieldTags:        {"category", "categories", "department"},
		FieldProductType: {"type", "item_type"},
		FieldSKU:         {"sku", "item_number", "item_no", "item"},
		FieldUPC:         {"upc", "barcode", "upc_code"},
		FieldPrice:       {"price", "retail_price", "unit_price", "cost"},
		FieldDescription: {"long_description", "notes"},
	},
	domain.SourceScraped: {
		FieldHandle:      {"handle", "slug", "url_key"},
		FieldTitle:       {"title", "name"},
		FieldVendor:      {"vendor", "brand"},
		FieldTags:        {"tags", "categories", "breadcrumbs"},
		FieldProductType: {"type"},
		FieldSKU:         {"sku"},
		FieldUPC:         {"upc", "gtin"},
		FieldPrice:       {"price"},
		FieldDescription: {"description"},
		FieldImageURL:    {"image_url", "image"},
	},
}

// Normalizer converts raw heterogeneous rows into canonical records.
type Normalizer struct {
	enableDebugLogging bool
}

// NewNormalizer creates a new record normalizer.
func NewNormalizer(enableDebugLogging bool) *Normalizer {
	return &Normalizer{enableDebugLogging: enableDebugLogging}
}

// Normalize maps a raw row onto canonical fields for its source. Returns
// false when the row cannot yield both a handle and a title; such rows are
// silently skipped, never an error.
func (n *Normalizer) Normalize(source domain.SourceID, row map[string]string) (*domain.RawRecord, bool) {
	candidates, ok := columnCandidates[source]
	if !ok {
		return nil, false
	}

	fields := make(map[string]string, len(candidates))
	for canonical, names := range candidates {
		fields[canonical] = firstNonEmpty(row, names)
	}

	// Text fields may carry markup from CMS exports.
	fields[FieldTitle] = CleanText(fields[FieldTitle])
	fields[FieldDescription] = CleanText(fields[FieldDescription])
	fields[FieldTags] = CleanText(fields[FieldTags])
	fields[FieldVendor] = CleanText(fields[FieldVendor])

	if fields[FieldHandle] == "" {
		fields[FieldHandle] = n.deriveHandle(source, fields)
	} else {
		fields[FieldHandle] = Slugify(fields[FieldHandle])
	}

	if fields[FieldHandle] == "" || fields[FieldTitle] == "" {
		if n.enableDebugLogging {
			log.Printf("[NORMALIZE] skipping %s row: missing handle or title", source)
		}
		return nil, false
	}

	return &domain.RawRecord{Source: source, Fields: fields}, true
}

// deriveHandle builds a handle for sources that don't carry one.
func (n *Normalizer) deriveHandle(source domain.SourceID, fields map[string]string) string {
	switch source {
	case domain.SourceWoo:
		if sku := fields[FieldSKU]; sku != "" {
			return Slugify(sku)
		}
		return Slugify(fields[FieldTitle])
	case domain.SourceInventory:
		base := fields[FieldSKU]
		if base == "" {
			base = fields[FieldTitle]
		}
		return CapLength(Slugify(base), inventoryHandleCap)
	default:
		return Slugify(fields[FieldTitle])
	}
}

// firstNonEmpty returns the first non-empty trimmed value among the named
// columns of a row.
func firstNonEmpty(row map[string]string, names []string) string {
	for _, name := range names {
		if v := strings.TrimSpace(row[name]); v != "" {
			return v
		}
	}
	return ""
}

// CleanText strips HTML tags and collapses whitespace.
func CleanText(s string) string {
	s = htmlTagPattern.ReplaceAllString(s, " ")
	s = fieldSpacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Slugify lowercases a string and collapses non-alphanumeric runs to
// single hyphens, producing a URL-safe handle.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonAlnumRunPattern.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// CapLength truncates a string to at most max bytes. Truncation is a plain
// prefix cut, not a hash: two distinct inputs sharing a prefix collide,
// which downstream id consumers already rely on.
func CapLength(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
