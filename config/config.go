package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the reconciliation jobs
type Config struct {
	Sources  SourcesConfig
	Matching MatchingConfig
	Shopify  ShopifyConfig
	WooDB    WooDBConfig
	Output   OutputConfig
}

// SourcesConfig holds source file paths. Priority lists the sources in
// processing order; the first source to set a field is authoritative.
type SourcesConfig struct {
	Priority      []string `mapstructure:"priority"`
	ShopifyCSV    string   `mapstructure:"shopify_csv"`
	WooCSV        string   `mapstructure:"woo_csv"`
	WooSQLDump    string   `mapstructure:"woo_sql_dump"`
	InventoryCSV  string   `mapstructure:"inventory_csv"`
	ScrapedCSV    string   `mapstructure:"scraped_csv"`
	DomainProfile string   `mapstructure:"domain_profile"`
}

// MatchingConfig holds fuzzy matching thresholds
type MatchingConfig struct {
	Threshold          float64 `mapstructure:"threshold"`
	CoverageThreshold  float64 `mapstructure:"coverage_threshold"`
	EnableDebugLogging bool    `mapstructure:"enable_debug_logging"`
}

// ShopifyConfig holds Shopify Admin API configuration
type ShopifyConfig struct {
	ShopDomain   string        `mapstructure:"shop_domain"`
	AccessToken  string        `mapstructure:"access_token"`
	APIVersion   string        `mapstructure:"api_version"`
	RequestDelay time.Duration `mapstructure:"request_delay"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// WooDBConfig holds the optional live WooCommerce MySQL source
type WooDBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	Table    string `mapstructure:"table"`
}

// OutputConfig holds artifact output paths
type OutputConfig struct {
	Dir         string `mapstructure:"dir"`
	CatalogCSV  string `mapstructure:"catalog_csv"`
	CatalogJSON string `mapstructure:"catalog_json"`
	CatalogDB   string `mapstructure:"catalog_db"`
	RunLog      string `mapstructure:"run_log"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/catalogbridge/")

	// Environment variable settings
	v.SetEnvPrefix("CATALOGBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Source defaults. Path keys default to empty so env-only overrides
	// still reach Unmarshal, which only walks keys viper knows about.
	v.SetDefault("sources.priority", []string{"shopify", "woo", "inventory"})
	v.SetDefault("sources.shopify_csv", "")
	v.SetDefault("sources.woo_csv", "")
	v.SetDefault("sources.woo_sql_dump", "")
	v.SetDefault("sources.inventory_csv", "")
	v.SetDefault("sources.scraped_csv", "")
	v.SetDefault("sources.domain_profile", "garden-materials")

	// Matching defaults
	v.SetDefault("matching.threshold", 0.7)
	v.SetDefault("matching.coverage_threshold", 0.7)
	v.SetDefault("matching.enable_debug_logging", false)

	// Shopify defaults
	v.SetDefault("shopify.shop_domain", "")
	v.SetDefault("shopify.access_token", "")
	v.SetDefault("shopify.api_version", "2024-07")
	v.SetDefault("shopify.request_delay", "500ms")
	v.SetDefault("shopify.timeout", "30s")

	// WooDB defaults
	v.SetDefault("woodb.host", "")
	v.SetDefault("woodb.port", 3306)
	v.SetDefault("woodb.username", "")
	v.SetDefault("woodb.password", "")
	v.SetDefault("woodb.database", "")
	v.SetDefault("woodb.table", "wp_posts")

	// Output defaults
	v.SetDefault("output.dir", "outputs")
	v.SetDefault("output.catalog_csv", "master_catalog.csv")
	v.SetDefault("output.catalog_json", "master_catalog.json")
	v.SetDefault("output.catalog_db", "master_catalog.sqlite")
	v.SetDefault("output.run_log", "run_log.txt")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Sources.DomainProfile == "" {
		return fmt.Errorf("domain profile is required (set CATALOGBRIDGE_SOURCES_DOMAIN_PROFILE)")
	}

	known := map[string]bool{"shopify": true, "woo": true, "inventory": true, "scraped": true}
	for _, name := range config.Sources.Priority {
		if !known[name] {
			return fmt.Errorf("unknown source in priority list: %s", name)
		}
	}

	if config.Matching.Threshold < 0 || config.Matching.Threshold > 1 {
		return fmt.Errorf("matching threshold must be between 0 and 1, got: %v", config.Matching.Threshold)
	}

	return nil
}
