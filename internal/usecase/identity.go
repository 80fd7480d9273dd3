package usecase

import (
	"log"
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/catalogbridge/reconciler/internal/domain"
)

// currencyStripper removes currency symbols and separators before price parsing.
var currencyStripper = regexp.MustCompile(`[^0-9.\-]`)

// idPrefixes gives each source a short synthetic-id prefix.
var idPrefixes = map[domain.SourceID]string{
	domain.SourceShopify:   "sh",
	domain.SourceWoo:       "wc",
	domain.SourceInventory: "in",
	domain.SourceScraped:   "sc",
}

// Resolver folds classified records into the catalog, deduplicating by
// key and merging provenance. Conflicts are never errors: the first source
// to set a field wins, later sources only backfill empty fields.
type Resolver struct {
	defaultCategory    string
	enableDebugLogging bool
}

// NewResolver creates a resolver. The profile's default category marks
// entries whose classification fell through to the fallback.
func NewResolver(profile *domain.DomainProfile, enableDebugLogging bool) *Resolver {
	return &Resolver{
		defaultCategory:    profile.DefaultCategory,
		enableDebugLogging: enableDebugLogging,
	}
}

// DedupKey computes the identity key for a record: handle, then SKU, then
// the slugified title as a last resort.
func (r *Resolver) DedupKey(rec *domain.RawRecord) string {
	if handle := rec.Get(FieldHandle); handle != "" {
		return handle
	}
	if sku := rec.Get(FieldSKU); sku != "" {
		return Slugify(sku)
	}
	return Slugify(rec.Get(FieldTitle))
}

// Resolve inserts or merges one record. Returns true when a new entry was
// created, false when the record merged into an existing one.
func (r *Resolver) Resolve(catalog *domain.Catalog, rec *domain.RawRecord, cls Classification) bool {
	key := r.DedupKey(rec)
	if key == "" {
		return false
	}

	if existing, ok := catalog.Lookup(key); ok {
		r.merge(existing, rec, cls)
		if r.enableDebugLogging {
			log.Printf("[RESOLVE] merged %s record into %q (sources=%s)", rec.Source, key, existing.Sources)
		}
		return false
	}

	catalog.Insert(r.newEntry(key, rec, cls))
	return true
}

// newEntry builds a catalog entry from the first record seen for a key.
func (r *Resolver) newEntry(key string, rec *domain.RawRecord, cls Classification) *domain.CatalogEntry {
	entry := &domain.CatalogEntry{
		ID:          idPrefixes[rec.Source] + "-" + CapLength(key, syntheticKeyCap),
		DedupKey:    key,
		Title:       rec.Get(FieldTitle),
		Brand:       cls.Brand,
		Vendor:      rec.Get(FieldVendor),
		Category:    cls.Category,
		SKU:         rec.Get(FieldSKU),
		UPC:         rec.Get(FieldUPC),
		Price:       parsePrice(rec.Get(FieldPrice)),
		Description: rec.Get(FieldDescription),
		Tags:        rec.Get(FieldTags),
		ImageURL:    rec.Get(FieldImageURL),
		Attributes:  cls.Attributes,
		Sources:     string(rec.Source),
	}
	entry.Provenance.Mark(rec.Source)
	entry.WorkQueue = r.workQueue(entry)
	return entry
}

// workQueue runs the completeness checks once, at entry creation. Merges
// do not recompute it unless explicitly re-evaluated.
func (r *Resolver) workQueue(entry *domain.CatalogEntry) []string {
	var queue []string
	if entry.ImageURL == "" {
		queue = append(queue, domain.WorkNeedsImages)
	}
	if entry.Description == "" {
		queue = append(queue, domain.WorkNeedsDescription)
	}
	if entry.Category == r.defaultCategory {
		queue = append(queue, domain.WorkNeedsClassification)
	}
	return queue
}

// merge applies a later-source record to an existing entry: provenance is
// OR-combined, set fields are kept, empty fields are backfilled. The later
// record's classification backfills the same way: a brand or attribute the
// first source couldn't produce is taken from whichever source first can.
func (r *Resolver) merge(entry *domain.CatalogEntry, rec *domain.RawRecord, cls Classification) {
	entry.Provenance.Mark(rec.Source)
	if entry.Provenance.Count() >= 2 {
		entry.Sources = domain.SourcesMulti
	}

	fillIfEmpty(&entry.Brand, cls.Brand)
	fillIfEmpty(&entry.Vendor, rec.Get(FieldVendor))
	fillIfEmpty(&entry.SKU, rec.Get(FieldSKU))
	fillIfEmpty(&entry.UPC, rec.Get(FieldUPC))
	fillIfEmpty(&entry.Description, rec.Get(FieldDescription))
	fillIfEmpty(&entry.Tags, rec.Get(FieldTags))
	fillIfEmpty(&entry.ImageURL, rec.Get(FieldImageURL))
	fillIfEmpty(&entry.Attributes.Size, cls.Attributes.Size)
	if entry.Attributes.Volume == "" {
		entry.Attributes.Volume = cls.Attributes.Volume
		entry.Attributes.VolumeUnit = cls.Attributes.VolumeUnit
	}
	if entry.Price.IsZero() {
		entry.Price = parsePrice(rec.Get(FieldPrice))
	}
}

func fillIfEmpty(dst *string, value string) {
	if *dst == "" && value != "" {
		*dst = value
	}
}

// parsePrice parses a price string. Malformed prices degrade to zero,
// never an error.
func parsePrice(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	price, err := decimal.NewFromString(currencyStripper.ReplaceAllString(s, ""))
	if err != nil {
		return decimal.Zero
	}
	return price
}
