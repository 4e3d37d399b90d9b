package config

import (
	"fmt"

	pkgconfig "github.com/bazaarlabs/catalog-search/pkg/config"
)

// Config holds all configuration for the catalog search service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"CATALOG_SEARCH_HTTP_PORT" envDefault:"8040" validate:"gte=1,lte=65535"`

	// Search backend
	BackendURL          string `env:"SEARCH_BACKEND_URL" envDefault:"http://localhost:9200" validate:"url"`
	BackendIndex        string `env:"SEARCH_BACKEND_INDEX" envDefault:"catalog_products"`
	BackendUsername     string `env:"SEARCH_BACKEND_USERNAME"`
	BackendPassword     string `env:"SEARCH_BACKEND_PASSWORD"`
	BackendInsecureTLS  bool   `env:"SEARCH_BACKEND_INSECURE_TLS" envDefault:"false"`

	// Search engine selection (elasticsearch or memory)
	SearchEngine string `env:"SEARCH_ENGINE" envDefault:"elasticsearch" validate:"oneof=elasticsearch memory"`

	// Catalog data source (file or http)
	CatalogSource     string `env:"CATALOG_SOURCE" envDefault:"file" validate:"oneof=file http"`
	CatalogDataFile   string `env:"CATALOG_DATA_FILE" envDefault:"data/products.json"`
	CatalogServiceURL string `env:"CATALOG_SERVICE_URL" envDefault:"http://localhost:8080/catalogue/products"`

	// Rebuild the index on startup.
	InitializeOnStart bool `env:"INITIALIZE_ON_START" envDefault:"true"`

	// Kafka; empty broker list disables event consumption and publishing.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load catalog search config: %w", err)
	}
	return cfg, nil
}

// KafkaEnabled reports whether event wiring is configured.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}
