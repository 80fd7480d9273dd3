// Package artifact writes the assembled catalog to machine-readable
// outputs: a reference CSV, a JSON document, and a SQLite database.
// Row order always follows catalog insertion order, so identical inputs
// produce byte-identical artifacts.
package artifact

import (
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/catalogbridge/reconciler/internal/domain"
)

// catalogColumns is the stable CSV/SQLite column order.
var catalogColumns = []string{
	"id", "dedup_key", "title", "brand", "vendor", "category",
	"sku", "upc", "price", "size", "volume", "volume_unit",
	"shopify", "woo", "inventory", "sources", "work_queue",
	"image_url", "match_method",
}

// Boolean fields are rendered as yes/no, one convention held everywhere.
func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// entryRow flattens one entry into the catalogColumns order.
func entryRow(e *domain.CatalogEntry) []string {
	return []string{
		e.ID,
		e.DedupKey,
		e.Title,
		e.Brand,
		e.Vendor,
		e.Category,
		e.SKU,
		e.UPC,
		e.Price.String(),
		e.Attributes.Size,
		e.Attributes.Volume,
		e.Attributes.VolumeUnit,
		yesNo(e.Provenance.Shopify),
		yesNo(e.Provenance.Woo),
		yesNo(e.Provenance.Inventory),
		e.Sources,
		strings.Join(e.WorkQueue, ";"),
		e.ImageURL,
		e.MatchMethod,
	}
}

// WriteCSV writes the catalog as a reference CSV.
func WriteCSV(path string, entries []*domain.CatalogEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(catalogColumns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range entries {
		if err := w.Write(entryRow(e)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return f.Close()
}

// WriteJSON writes the catalog as an indented JSON array.
func WriteJSON(path string, entries []*domain.CatalogEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// ReadJSON loads a catalog previously written by WriteJSON. The sync and
// image-matching jobs consume built catalogs instead of re-assembling.
func ReadJSON(path string) ([]*domain.CatalogEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrSourceUnavailable, path, err)
	}
	var entries []*domain.CatalogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return entries, nil
}

// WriteSQLite writes the catalog into a fresh SQLite database with one
// catalog table, all rows in a single transaction.
func WriteSQLite(path string, entries []*domain.CatalogEntry) error {
	// Always start from a clean file so re-runs stay idempotent.
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale sqlite: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	cols := make([]string, len(catalogColumns))
	for i, c := range catalogColumns {
		cols[i] = fmt.Sprintf("%q TEXT", c)
	}
	schema := fmt.Sprintf("CREATE TABLE catalog (%s)", strings.Join(cols, ", "))
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	placeholders := strings.TrimRight(strings.Repeat("?,", len(catalogColumns)), ",")
	stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO catalog VALUES (%s)", placeholders))
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		row := entryRow(e)
		args := make([]any, len(row))
		for i, v := range row {
			args[i] = v
		}
		if _, err := stmt.Exec(args...); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert row %s: %w", e.DedupKey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return db.Close()
}
