package domain

import (
	"regexp"
	"strings"
)

var headerSpacePattern = regexp.MustCompile(`\s+`)

// SourceID identifies which upstream system produced a record.
type SourceID string

const (
	SourceShopify   SourceID = "shopify"
	SourceWoo       SourceID = "woo"
	SourceInventory SourceID = "inventory"
	SourceScraped   SourceID = "scraped"
)

// RawRecord is one row from one source, with column names normalized to
// lower-case underscore form. Records are immutable after ingestion and
// discarded once folded into a CatalogEntry.
type RawRecord struct {
	Source SourceID          `json:"source"`
	Fields map[string]string `json:"fields"`
}

// Get returns the value for a normalized field name, or "" when absent.
func (r *RawRecord) Get(name string) string {
	if r == nil || r.Fields == nil {
		return ""
	}
	return r.Fields[name]
}

// First returns the first non-empty value among the candidate field names.
func (r *RawRecord) First(names ...string) string {
	for _, name := range names {
		if v := r.Get(name); v != "" {
			return v
		}
	}
	return ""
}

// NormalizeFieldName converts a raw header name to its canonical form:
// lower-case, trimmed, inner whitespace replaced with underscores.
func NormalizeFieldName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return headerSpacePattern.ReplaceAllString(name, "_")
}

// RemoteProduct is a summary of a product already present in the remote
// storefront, as returned by the catalog sink's paginated fetch.
type RemoteProduct struct {
	ID       string `json:"id"`
	Handle   string `json:"handle"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	HasImage bool   `json:"hasImage"`
	HasSKU   bool   `json:"hasSku"`
}
