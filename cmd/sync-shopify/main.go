// sync-shopify pushes a built master catalog into the Shopify store:
// products missing remotely are created, and matched images are attached.
// Per-item failures are logged and skipped; the batch always runs to the
// end.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/catalogbridge/reconciler/config"
	"github.com/catalogbridge/reconciler/internal/infrastructure/artifact"
	"github.com/catalogbridge/reconciler/internal/infrastructure/shopify"
	"github.com/catalogbridge/reconciler/internal/report"
	"github.com/catalogbridge/reconciler/internal/usecase"
)

var catalogPath = flag.String("catalog", "", "Catalog JSON path (default <output.dir>/<output.catalog_json>)")

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Shopify.ShopDomain == "" || cfg.Shopify.AccessToken == "" {
		log.Fatalf("Shopify shop domain and access token are required (set CATALOGBRIDGE_SHOPIFY_SHOP_DOMAIN / CATALOGBRIDGE_SHOPIFY_ACCESS_TOKEN)")
	}

	path := *catalogPath
	if path == "" {
		path = filepath.Join(cfg.Output.Dir, cfg.Output.CatalogJSON)
	}
	entries, err := artifact.ReadJSON(path)
	if err != nil {
		log.Fatalf("Failed to read catalog: %v", err)
	}
	log.Printf("Catalog: %s (%d entries)", path, len(entries))

	client := shopify.NewClient(cfg.Shopify)
	if cfg.Matching.EnableDebugLogging {
		client.SetDebug(true)
	}

	sync := usecase.NewSyncService(client, cfg.Matching.EnableDebugLogging)
	result, err := sync.Run(context.Background(), entries)
	if err != nil {
		log.Fatalf("Sync failed: %v", err)
	}

	report.PrintSync(result)
	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		log.Fatalf("Failed to create output dir: %v", err)
	}
	logPath := filepath.Join(cfg.Output.Dir, cfg.Output.RunLog)
	if err := report.WriteSyncLog(logPath, result); err != nil {
		log.Fatalf("Failed to write run log: %v", err)
	}
	log.Printf("Run log: %s", logPath)
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime)
	log.SetOutput(os.Stdout)
}
