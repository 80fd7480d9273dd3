// build-catalog ingests every configured product source, reconciles the
// rows into one deduplicated master catalog, and writes the CSV, JSON and
// SQLite artifacts.
package main

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/catalogbridge/reconciler/config"
	"github.com/catalogbridge/reconciler/internal/domain"
	"github.com/catalogbridge/reconciler/internal/infrastructure/artifact"
	"github.com/catalogbridge/reconciler/internal/infrastructure/csvsource"
	"github.com/catalogbridge/reconciler/internal/infrastructure/sqldump"
	"github.com/catalogbridge/reconciler/internal/infrastructure/woodb"
	"github.com/catalogbridge/reconciler/internal/report"
	"github.com/catalogbridge/reconciler/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	profile := usecase.ProfileByName(cfg.Sources.DomainProfile)
	if profile == nil {
		log.Fatalf("Unknown domain profile: %s", cfg.Sources.DomainProfile)
	}
	log.Printf("Domain profile: %s", profile.Name)
	log.Printf("Source priority: %v", cfg.Sources.Priority)

	sources, err := buildSources(cfg)
	if err != nil {
		log.Fatalf("Failed to configure sources: %v", err)
	}
	if len(sources) == 0 {
		log.Fatalf("No sources configured; set at least one of shopify_csv, woo_csv, woo_sql_dump, inventory_csv, scraped_csv")
	}

	debug := cfg.Matching.EnableDebugLogging
	assembler := usecase.NewAssembler(
		usecase.NewNormalizer(debug),
		usecase.NewClassifier(profile, debug),
		usecase.NewResolver(profile, debug),
		debug,
	)

	catalog, stats, err := assembler.Assemble(context.Background(), sources)
	if err != nil {
		log.Fatalf("Catalog assembly failed: %v", err)
	}

	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		log.Fatalf("Failed to create output dir: %v", err)
	}
	entries := catalog.Entries()

	csvPath := filepath.Join(cfg.Output.Dir, cfg.Output.CatalogCSV)
	if err := artifact.WriteCSV(csvPath, entries); err != nil {
		log.Fatalf("Failed to write catalog CSV: %v", err)
	}
	jsonPath := filepath.Join(cfg.Output.Dir, cfg.Output.CatalogJSON)
	if err := artifact.WriteJSON(jsonPath, entries); err != nil {
		log.Fatalf("Failed to write catalog JSON: %v", err)
	}
	dbPath := filepath.Join(cfg.Output.Dir, cfg.Output.CatalogDB)
	if err := artifact.WriteSQLite(dbPath, entries); err != nil {
		log.Fatalf("Failed to write catalog SQLite: %v", err)
	}

	report.PrintAssembly(catalog, stats)
	log.Printf("CSV: %s", csvPath)
	log.Printf("JSON: %s", jsonPath)
	log.Printf("SQLite: %s", dbPath)
}

// buildSources assembles the record sources in configured priority order.
// For the woo source, a CSV export wins over a SQL dump, which wins over a
// live database connection.
func buildSources(cfg *config.Config) ([]domain.RecordSource, error) {
	var sources []domain.RecordSource
	for _, name := range cfg.Sources.Priority {
		switch domain.SourceID(name) {
		case domain.SourceShopify:
			if cfg.Sources.ShopifyCSV != "" {
				sources = append(sources, csvsource.New(domain.SourceShopify, cfg.Sources.ShopifyCSV))
			}
		case domain.SourceWoo:
			switch {
			case cfg.Sources.WooCSV != "":
				sources = append(sources, csvsource.New(domain.SourceWoo, cfg.Sources.WooCSV))
			case cfg.Sources.WooSQLDump != "":
				sources = append(sources, sqldump.New(domain.SourceWoo, cfg.Sources.WooSQLDump, cfg.WooDB.Table))
			case cfg.WooDB.Host != "":
				db, err := woodb.Open(cfg.WooDB)
				if err != nil {
					return nil, err
				}
				sources = append(sources, woodb.New(db, cfg.WooDB.Table))
			}
		case domain.SourceInventory:
			if cfg.Sources.InventoryCSV != "" {
				sources = append(sources, csvsource.New(domain.SourceInventory, cfg.Sources.InventoryCSV))
			}
		case domain.SourceScraped:
			if cfg.Sources.ScrapedCSV != "" {
				sources = append(sources, csvsource.New(domain.SourceScraped, cfg.Sources.ScrapedCSV))
			}
		}
	}
	return sources, nil
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime)
	log.SetOutput(os.Stdout)
}
