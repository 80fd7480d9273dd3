package domain

import "context"

// RecordSource defines the interface for anything that can produce raw
// product records: a CSV export, a SQL dump, a live database. Parsing and
// quoting rules are the source's responsibility; the engine only sees
// normalized field maps.
type RecordSource interface {
	// Name returns the source identity used for provenance tracking.
	Name() SourceID

	// Records reads every row from the source. A missing or unreadable
	// source is fatal for the run (ErrSourceUnavailable).
	Records(ctx context.Context) ([]*RawRecord, error)
}

// CatalogSink defines the interface for the remote storefront the catalog
// is pushed into. The reconciliation engine never calls these directly; a
// separate sync layer consumes catalog entries and drives them.
type CatalogSink interface {
	FetchAllProducts(ctx context.Context) ([]RemoteProduct, error)
	CreateProduct(ctx context.Context, entry *CatalogEntry) (string, error)
	AttachMedia(ctx context.Context, productID, sourceURL string) error
}
