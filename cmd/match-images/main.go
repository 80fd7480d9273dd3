// match-images links a directory of product image files to catalog
// entries by filename, using the matcher's strategy cascade. It writes a
// match manifest CSV and rewrites the catalog JSON with the linked image
// paths so sync-shopify can attach them.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/catalogbridge/reconciler/config"
	"github.com/catalogbridge/reconciler/internal/domain"
	"github.com/catalogbridge/reconciler/internal/infrastructure/artifact"
	"github.com/catalogbridge/reconciler/internal/usecase"
)

var (
	imagesDir    = flag.String("images", "", "Directory of image files to match (required)")
	catalogPath  = flag.String("catalog", "", "Catalog JSON path (default <output.dir>/<output.catalog_json>)")
	manifestPath = flag.String("manifest", "", "Match manifest CSV path (default <output.dir>/image_matches.csv)")
)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

func main() {
	flag.Parse()
	if *imagesDir == "" {
		log.Fatalf("-images is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	path := *catalogPath
	if path == "" {
		path = filepath.Join(cfg.Output.Dir, cfg.Output.CatalogJSON)
	}
	entries, err := artifact.ReadJSON(path)
	if err != nil {
		log.Fatalf("Failed to read catalog: %v", err)
	}

	files, err := listImages(*imagesDir)
	if err != nil {
		log.Fatalf("Failed to list images: %v", err)
	}
	log.Printf("Catalog: %d entries, images: %d files", len(entries), len(files))

	matcher := usecase.NewMatcher(usecase.MatcherConfig{
		Threshold:          cfg.Matching.Threshold,
		CoverageThreshold:  cfg.Matching.CoverageThreshold,
		EnableDebugLogging: cfg.Matching.EnableDebugLogging,
	})

	byKey := make(map[string]*domain.CatalogEntry, len(entries))
	for _, e := range entries {
		byKey[e.DedupKey] = e
	}

	var matches []*domain.FuzzyMatch
	unmatched := 0
	for _, file := range files {
		m := matcher.MatchAsset(file, entries)
		if m == nil {
			unmatched++
			continue
		}
		matches = append(matches, m)
		// First match per entry wins; extra files for the same product
		// stay in the manifest but don't overwrite the linked image.
		if e := byKey[m.RightKey]; e.ImageURL == "" {
			e.ImageURL = filepath.Join(*imagesDir, file)
			e.MatchMethod = m.Method
			e.MatchScore = m.Score
			e.WorkQueue = removeTag(e.WorkQueue, domain.WorkNeedsImages)
		}
	}

	outManifest := *manifestPath
	if outManifest == "" {
		if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
			log.Fatalf("Failed to create output dir: %v", err)
		}
		outManifest = filepath.Join(cfg.Output.Dir, "image_matches.csv")
	}
	if err := writeManifest(outManifest, matches); err != nil {
		log.Fatalf("Failed to write manifest: %v", err)
	}
	if err := artifact.WriteJSON(path, entries); err != nil {
		log.Fatalf("Failed to rewrite catalog: %v", err)
	}

	fmt.Printf("Images matched: %d\n", len(matches))
	fmt.Printf("Images unmatched: %d\n", unmatched)
	byMethod := make(map[string]int)
	for _, m := range matches {
		byMethod[m.Method]++
	}
	methods := make([]string, 0, len(byMethod))
	for m := range byMethod {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	for _, m := range methods {
		fmt.Printf("  %-20s %d\n", m, byMethod[m])
	}
	log.Printf("Manifest: %s", outManifest)
}

// listImages returns the image filenames of a directory, sorted for
// deterministic matching order.
func listImages(dir string) ([]string, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrSourceUnavailable, dir, err)
	}
	var files []string
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(de.Name()))] {
			files = append(files, de.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func writeManifest(path string, matches []*domain.FuzzyMatch) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"filename", "dedup_key", "method", "score"}); err != nil {
		return err
	}
	for _, m := range matches {
		if err := w.Write([]string{m.LeftKey, m.RightKey, m.Method, fmt.Sprintf("%.2f", m.Score)}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func removeTag(queue []string, tag string) []string {
	var out []string
	for _, t := range queue {
		if t != tag {
			out = append(out, t)
		}
	}
	return out
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime)
	log.SetOutput(os.Stdout)
}
