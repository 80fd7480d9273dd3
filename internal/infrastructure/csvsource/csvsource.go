// Package csvsource reads product records from CSV exports: the Shopify
// product export, the WooCommerce product export, and vendor inventory
// spreadsheets. Quoted-field handling (embedded commas and newlines,
// doubled-quote escaping) comes from encoding/csv.
package csvsource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/catalogbridge/reconciler/internal/domain"
)

// Source is a CSV-file backed record source.
type Source struct {
	name domain.SourceID
	path string
}

// New creates a CSV record source for the given file.
func New(name domain.SourceID, path string) *Source {
	return &Source{name: name, path: path}
}

// Name returns the source identity.
func (s *Source) Name() domain.SourceID {
	return s.name
}

// Records reads every data row of the CSV file. Field names come from the
// header row, normalized to lower-case underscore form. A missing file is
// fatal for the run.
func (s *Source) Records(ctx context.Context) ([]*domain.RawRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrSourceUnavailable, s.path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // vendor sheets have ragged rows

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: reading header: %v", domain.ErrSourceUnavailable, s.path, err)
	}
	fields := make([]string, len(header))
	for i, name := range header {
		fields[i] = domain.NormalizeFieldName(name)
	}

	var records []*domain.RawRecord
	line := 1
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			// Malformed rows are skipped, not fatal; the assembler counts
			// skips separately from parse errors we log here.
			log.Printf("[CSV] %s line %d: %v", s.path, line, err)
			continue
		}

		rec := &domain.RawRecord{
			Source: s.name,
			Fields: make(map[string]string, len(fields)),
		}
		for i, value := range row {
			if i >= len(fields) || fields[i] == "" {
				continue
			}
			rec.Fields[fields[i]] = value
		}
		records = append(records, rec)
	}

	return records, nil
}
