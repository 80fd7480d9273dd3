package usecase

import (
	"context"
	"log"

	"github.com/catalogbridge/reconciler/internal/domain"
)

// SyncFailure records one item that failed during a sync run. Failures are
// reported, never retried, and never block the rest of the batch.
type SyncFailure struct {
	DedupKey string `json:"dedupKey"`
	Stage    string `json:"stage"`
	Reason   string `json:"reason"`
}

// SyncReport summarizes one sync run.
type SyncReport struct {
	RemoteProducts  int           `json:"remoteProducts"`
	Created         int           `json:"created"`
	MediaAttached   int           `json:"mediaAttached"`
	SkippedExisting int           `json:"skippedExisting"`
	Failures        []SyncFailure `json:"failures,omitempty"`
}

// SyncService pushes catalog entries into the remote storefront. The
// engine never talks to the sink; this layer consumes assembled entries
// and drives the sink's sequential, rate-limited operations.
type SyncService struct {
	sink               domain.CatalogSink
	enableDebugLogging bool
}

// NewSyncService creates a sync service over a catalog sink.
func NewSyncService(sink domain.CatalogSink, enableDebugLogging bool) *SyncService {
	return &SyncService{sink: sink, enableDebugLogging: enableDebugLogging}
}

// Run fetches the remote product set once, then walks the catalog in
// order: entries missing remotely are created, and entries carrying an
// image URL get media attached when the remote product has none.
// A mid-run API failure marks the item failed and moves on.
func (s *SyncService) Run(ctx context.Context, entries []*domain.CatalogEntry) (*SyncReport, error) {
	if len(entries) == 0 {
		return nil, domain.ErrEmptyCatalog
	}

	remote, err := s.sink.FetchAllProducts(ctx)
	if err != nil {
		return nil, err
	}

	byHandle := make(map[string]domain.RemoteProduct, len(remote))
	for _, p := range remote {
		byHandle[Slugify(p.Handle)] = p
	}

	report := &SyncReport{RemoteProducts: len(remote)}
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}

		existing, found := byHandle[entry.DedupKey]
		if !found {
			productID, err := s.sink.CreateProduct(ctx, entry)
			if err != nil {
				log.Printf("[SYNC] create failed for %q: %v", entry.DedupKey, err)
				report.Failures = append(report.Failures, SyncFailure{
					DedupKey: entry.DedupKey, Stage: "create", Reason: err.Error(),
				})
				continue
			}
			report.Created++
			if s.enableDebugLogging {
				log.Printf("[SYNC] created %q -> %s", entry.DedupKey, productID)
			}
			if entry.ImageURL != "" {
				s.attach(ctx, report, entry, productID)
			}
			continue
		}

		report.SkippedExisting++
		if entry.ImageURL != "" && !existing.HasImage {
			s.attach(ctx, report, entry, existing.ID)
		}
	}

	return report, nil
}

func (s *SyncService) attach(ctx context.Context, report *SyncReport, entry *domain.CatalogEntry, productID string) {
	if err := s.sink.AttachMedia(ctx, productID, entry.ImageURL); err != nil {
		log.Printf("[SYNC] media attach failed for %q: %v", entry.DedupKey, err)
		report.Failures = append(report.Failures, SyncFailure{
			DedupKey: entry.DedupKey, Stage: "media", Reason: err.Error(),
		})
		return
	}
	report.MediaAttached++
}
