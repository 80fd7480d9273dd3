package domain

import "github.com/shopspring/decimal"

// Work queue tags attached to entries that need human follow-up.
const (
	WorkNeedsImages         = "needs_images"
	WorkNeedsDescription    = "needs_description"
	WorkNeedsClassification = "needs_classification"
)

// SourcesMulti is the Sources summary value once two or more provenance
// flags are set.
const SourcesMulti = "multi"

// Attributes holds structured fields extracted from free text. Each field
// is optional; empty string means not extracted.
type Attributes struct {
	Size       string `json:"size,omitempty"`
	Volume     string `json:"volume,omitempty"`
	VolumeUnit string `json:"volumeUnit,omitempty"`
}

// Provenance records which upstream sources confirmed an entry. Flags are
// OR-combined every time a new source contributes.
type Provenance struct {
	Shopify   bool `json:"shopify"`
	Woo       bool `json:"woo"`
	Inventory bool `json:"inventory"`
}

// Mark sets the flag for the given source. Unknown sources (e.g. scraped)
// are not tracked as provenance.
func (p *Provenance) Mark(source SourceID) {
	switch source {
	case SourceShopify:
		p.Shopify = true
	case SourceWoo:
		p.Woo = true
	case SourceInventory:
		p.Inventory = true
	}
}

// Count returns how many source flags are set.
func (p *Provenance) Count() int {
	n := 0
	if p.Shopify {
		n++
	}
	if p.Woo {
		n++
	}
	if p.Inventory {
		n++
	}
	return n
}

// CatalogEntry is one logical product, merged across sources.
type CatalogEntry struct {
	ID          string          `json:"id"`
	DedupKey    string          `json:"dedupKey"`
	Title       string          `json:"title"`
	Brand       string          `json:"brand,omitempty"`
	Vendor      string          `json:"vendor,omitempty"`
	Category    string          `json:"category"`
	SKU         string          `json:"sku,omitempty"`
	UPC         string          `json:"upc,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
	Tags        string          `json:"tags,omitempty"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Attributes  Attributes      `json:"attributes"`
	Provenance  Provenance      `json:"provenance"`
	Sources     string          `json:"sources"`
	WorkQueue   []string        `json:"workQueue,omitempty"`
	MatchMethod string          `json:"matchMethod,omitempty"`
	MatchScore  float64         `json:"matchScore,omitempty"`
}

// NeedsWork reports whether the given work queue tag is present.
func (e *CatalogEntry) NeedsWork(tag string) bool {
	for _, t := range e.WorkQueue {
		if t == tag {
			return true
		}
	}
	return false
}

// FuzzyMatch is the transient result of a pairwise similarity computation.
// It is never persisted; it only decides whether two keys get linked.
type FuzzyMatch struct {
	LeftKey  string  `json:"leftKey"`
	RightKey string  `json:"rightKey"`
	Score    float64 `json:"score"`
	Method   string  `json:"method"`
}

// Catalog is the deduplicated master catalog being built during a run.
// Entries keep insertion order, since output ordering is observable and
// must be stable across identical runs.
type Catalog struct {
	entries []*CatalogEntry
	index   map[string]int
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{index: make(map[string]int)}
}

// Lookup returns the entry for a dedup key, if present.
func (c *Catalog) Lookup(key string) (*CatalogEntry, bool) {
	i, ok := c.index[key]
	if !ok {
		return nil, false
	}
	return c.entries[i], true
}

// Insert adds a new entry. The entry's dedup key must not already be
// present; callers check with Lookup first.
func (c *Catalog) Insert(e *CatalogEntry) {
	c.index[e.DedupKey] = len(c.entries)
	c.entries = append(c.entries, e)
}

// Entries returns all entries in first-seen order.
func (c *Catalog) Entries() []*CatalogEntry {
	return c.entries
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}
