// Package report prints human-readable run summaries and writes the
// failure log file. Partial failures always end up in the log, but they
// never block completion of the rest of the batch.
package report

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/catalogbridge/reconciler/internal/domain"
	"github.com/catalogbridge/reconciler/internal/usecase"
)

// PrintAssembly prints the catalog build summary.
func PrintAssembly(catalog *domain.Catalog, stats *usecase.Stats) {
	fmt.Printf("Rows processed: %d\n", stats.Processed)
	fmt.Printf("Rows skipped (missing handle/title): %d\n", stats.Skipped)
	fmt.Printf("Rows out of domain: %d\n", stats.OutOfDomain)
	fmt.Printf("Catalog entries: %d (%d merged from later sources)\n", catalog.Len(), stats.Merged)

	fmt.Println("\nBy category:")
	printCounts(stats.ByCategory)
	fmt.Println("\nBy brand:")
	printCounts(stats.ByBrand)
	fmt.Println("\nWork queue:")
	printCounts(stats.ByWorkQueue)
}

// PrintSync prints the sync run summary.
func PrintSync(r *usecase.SyncReport) {
	fmt.Printf("Remote products: %d\n", r.RemoteProducts)
	fmt.Printf("Created: %d\n", r.Created)
	fmt.Printf("Media attached: %d\n", r.MediaAttached)
	fmt.Printf("Skipped (already present): %d\n", r.SkippedExisting)
	fmt.Printf("Failed: %d\n", len(r.Failures))
}

// WriteSyncLog appends one line per failure to the run log file.
func WriteSyncLog(path string, r *usecase.SyncReport) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# sync run %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&b, "created=%d media=%d skipped=%d failed=%d\n",
		r.Created, r.MediaAttached, r.SkippedExisting, len(r.Failures))
	for _, f := range r.Failures {
		fmt.Fprintf(&b, "FAIL %s stage=%s: %s\n", f.DedupKey, f.Stage, f.Reason)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open run log: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("write run log: %w", err)
	}
	return f.Close()
}

// printCounts prints a count map with keys sorted for stable output.
func printCounts(counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-24s %d\n", k, counts[k])
	}
}
