package usecase

import (
	"context"
	"fmt"
	"log"

	"github.com/catalogbridge/reconciler/internal/domain"
)

// Stats summarizes one assembly run. All counts are derived views for
// reporting, not part of the persisted catalog.
type Stats struct {
	Processed   int                     `json:"processed"`
	Skipped     int                     `json:"skipped"`
	OutOfDomain int                     `json:"outOfDomain"`
	Created     int                     `json:"created"`
	Merged      int                     `json:"merged"`
	BySource    map[domain.SourceID]int `json:"bySource"`
	ByCategory  map[string]int          `json:"byCategory"`
	ByBrand     map[string]int          `json:"byBrand"`
	ByWorkQueue map[string]int          `json:"byWorkQueue"`
}

// Assembler drives the reconciliation pipeline over all record sources in
// priority order, producing the deduplicated, classified catalog. The run
// is single-threaded and deterministic: identical inputs rebuild an
// identical catalog.
type Assembler struct {
	normalizer         *Normalizer
	classifier         *Classifier
	resolver           *Resolver
	enableDebugLogging bool
}

// NewAssembler creates an assembler from the engine components.
func NewAssembler(normalizer *Normalizer, classifier *Classifier, resolver *Resolver, enableDebugLogging bool) *Assembler {
	return &Assembler{
		normalizer:         normalizer,
		classifier:         classifier,
		resolver:           resolver,
		enableDebugLogging: enableDebugLogging,
	}
}

// Assemble reads every source in the given priority order and folds each
// in-domain record into the catalog. Source order is significant: it
// decides which source's fields win under first-writer-wins merging.
func (a *Assembler) Assemble(ctx context.Context, sources []domain.RecordSource) (*domain.Catalog, *Stats, error) {
	catalog := domain.NewCatalog()
	stats := &Stats{
		BySource:    make(map[domain.SourceID]int),
		ByCategory:  make(map[string]int),
		ByBrand:     make(map[string]int),
		ByWorkQueue: make(map[string]int),
	}

	for _, source := range sources {
		records, err := source.Records(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("reading %s source: %w", source.Name(), err)
		}
		log.Printf("[ASSEMBLE] %s: %d rows", source.Name(), len(records))

		for _, rec := range records {
			select {
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			default:
			}

			stats.Processed++
			normalized, ok := a.normalizer.Normalize(rec.Source, rec.Fields)
			if !ok {
				stats.Skipped++
				continue
			}

			cls := a.classifier.Classify(normalized)
			if !cls.InDomain {
				stats.OutOfDomain++
				continue
			}

			if a.resolver.Resolve(catalog, normalized, cls) {
				stats.Created++
				stats.BySource[rec.Source]++
			} else {
				stats.Merged++
			}
		}
	}

	a.summarize(catalog, stats)
	return catalog, stats, nil
}

// summarize computes the by-category, by-brand and work-queue counts.
func (a *Assembler) summarize(catalog *domain.Catalog, stats *Stats) {
	for _, entry := range catalog.Entries() {
		stats.ByCategory[entry.Category]++
		if entry.Brand != "" {
			stats.ByBrand[entry.Brand]++
		}
		for _, tag := range entry.WorkQueue {
			stats.ByWorkQueue[tag]++
		}
	}
	if a.enableDebugLogging {
		log.Printf("[ASSEMBLE] catalog built: %d entries, %d merged, %d skipped, %d out of domain",
			catalog.Len(), stats.Merged, stats.Skipped, stats.OutOfDomain)
	}
}
