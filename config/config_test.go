package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		os.Unsetenv("CATALOGBRIDGE_SOURCES_DOMAIN_PROFILE")
		os.Unsetenv("CATALOGBRIDGE_SOURCES_SHOPIFY_CSV")
		os.Unsetenv("CATALOGBRIDGE_SOURCES_INVENTORY_CSV")
		os.Unsetenv("CATALOGBRIDGE_SOURCES_SCRAPED_CSV")
		os.Unsetenv("CATALOGBRIDGE_MATCHING_THRESHOLD")
		os.Unsetenv("CATALOGBRIDGE_SHOPIFY_SHOP_DOMAIN")
		os.Unsetenv("CATALOGBRIDGE_SHOPIFY_ACCESS_TOKEN")
		os.Unsetenv("CATALOGBRIDGE_SHOPIFY_REQUEST_DELAY")
		os.Unsetenv("CATALOGBRIDGE_WOODB_HOST")
		os.Unsetenv("CATALOGBRIDGE_OUTPUT_DIR")
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if len(cfg.Sources.Priority) != 3 || cfg.Sources.Priority[0] != "shopify" {
			t.Errorf("Sources.Priority = %v, want [shopify woo inventory]", cfg.Sources.Priority)
		}
		if cfg.Sources.DomainProfile != "garden-materials" {
			t.Errorf("Sources.DomainProfile = %s, want garden-materials", cfg.Sources.DomainProfile)
		}
		if cfg.Matching.Threshold != 0.7 {
			t.Errorf("Matching.Threshold = %v, want 0.7", cfg.Matching.Threshold)
		}
		if cfg.Shopify.APIVersion != "2024-07" {
			t.Errorf("Shopify.APIVersion = %s, want 2024-07", cfg.Shopify.APIVersion)
		}
		if cfg.Shopify.RequestDelay != 500*time.Millisecond {
			t.Errorf("Shopify.RequestDelay = %v, want 500ms", cfg.Shopify.RequestDelay)
		}
		if cfg.WooDB.Port != 3306 || cfg.WooDB.Table != "wp_posts" {
			t.Errorf("WooDB = %+v, want port 3306 table wp_posts", cfg.WooDB)
		}
		if cfg.Output.CatalogCSV != "master_catalog.csv" {
			t.Errorf("Output.CatalogCSV = %s, want master_catalog.csv", cfg.Output.CatalogCSV)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("CATALOGBRIDGE_SOURCES_DOMAIN_PROFILE", "ph-ec-meters")
		os.Setenv("CATALOGBRIDGE_SOURCES_SHOPIFY_CSV", "/data/products_export.csv")
		os.Setenv("CATALOGBRIDGE_SOURCES_SCRAPED_CSV", "/data/scraped_products.csv")
		os.Setenv("CATALOGBRIDGE_MATCHING_THRESHOLD", "0.85")
		os.Setenv("CATALOGBRIDGE_SHOPIFY_SHOP_DOMAIN", "example.myshopify.com")
		os.Setenv("CATALOGBRIDGE_SHOPIFY_ACCESS_TOKEN", "shpat_test")
		os.Setenv("CATALOGBRIDGE_SHOPIFY_REQUEST_DELAY", "250ms")
		os.Setenv("CATALOGBRIDGE_WOODB_HOST", "db.internal")
		os.Setenv("CATALOGBRIDGE_OUTPUT_DIR", "/tmp/outputs")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Sources.DomainProfile != "ph-ec-meters" {
			t.Errorf("Sources.DomainProfile = %s, want ph-ec-meters", cfg.Sources.DomainProfile)
		}
		if cfg.Sources.ShopifyCSV != "/data/products_export.csv" {
			t.Errorf("Sources.ShopifyCSV = %s, want /data/products_export.csv", cfg.Sources.ShopifyCSV)
		}
		if cfg.Sources.ScrapedCSV != "/data/scraped_products.csv" {
			t.Errorf("Sources.ScrapedCSV = %s, want /data/scraped_products.csv", cfg.Sources.ScrapedCSV)
		}
		if cfg.Matching.Threshold != 0.85 {
			t.Errorf("Matching.Threshold = %v, want 0.85", cfg.Matching.Threshold)
		}
		if cfg.Shopify.ShopDomain != "example.myshopify.com" {
			t.Errorf("Shopify.ShopDomain = %s, want example.myshopify.com", cfg.Shopify.ShopDomain)
		}
		if cfg.Shopify.AccessToken != "shpat_test" {
			t.Errorf("Shopify.AccessToken = %s, want shpat_test", cfg.Shopify.AccessToken)
		}
		if cfg.Shopify.RequestDelay != 250*time.Millisecond {
			t.Errorf("Shopify.RequestDelay = %v, want 250ms", cfg.Shopify.RequestDelay)
		}
		if cfg.WooDB.Host != "db.internal" {
			t.Errorf("WooDB.Host = %s, want db.internal", cfg.WooDB.Host)
		}
		if cfg.Output.Dir != "/tmp/outputs" {
			t.Errorf("Output.Dir = %s, want /tmp/outputs", cfg.Output.Dir)
		}
	})

	t.Run("fails validation for out-of-range threshold", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("CATALOGBRIDGE_MATCHING_THRESHOLD", "1.5")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for threshold > 1")
		}
	})
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Sources: SourcesConfig{
				Priority:      []string{"shopify", "woo", "inventory"},
				DomainProfile: "garden-materials",
			},
			Matching: MatchingConfig{Threshold: 0.7},
		}
	}

	t.Run("validates successfully with known sources", func(t *testing.T) {
		if err := validate(base()); err != nil {
			t.Errorf("validate() error = %v, want nil", err)
		}
	})

	t.Run("fails when domain profile is empty", func(t *testing.T) {
		cfg := base()
		cfg.Sources.DomainProfile = ""
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for empty domain profile")
		}
	})

	t.Run("fails for unknown source in priority list", func(t *testing.T) {
		cfg := base()
		cfg.Sources.Priority = []string{"shopify", "magento"}
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for unknown source")
		}
	})

	t.Run("fails for negative threshold", func(t *testing.T) {
		cfg := base()
		cfg.Matching.Threshold = -0.1
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for negative threshold")
		}
	})
}
