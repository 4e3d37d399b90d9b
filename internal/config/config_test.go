package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8040, cfg.HTTPPort)
	assert.Equal(t, "http://localhost:9200", cfg.BackendURL)
	assert.Equal(t, "catalog_products", cfg.BackendIndex)
	assert.Equal(t, "elasticsearch", cfg.SearchEngine)
	assert.Equal(t, "file", cfg.CatalogSource)
	assert.Equal(t, "data/products.json", cfg.CatalogDataFile)
	assert.True(t, cfg.InitializeOnStart)
	assert.False(t, cfg.KafkaEnabled())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CATALOG_SEARCH_HTTP_PORT", "9090")
	t.Setenv("SEARCH_ENGINE", "memory")
	t.Setenv("CATALOG_SOURCE", "http")
	t.Setenv("CATALOG_SERVICE_URL", "http://catalog:8080/products")
	t.Setenv("INITIALIZE_ON_START", "false")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, "memory", cfg.SearchEngine)
	assert.Equal(t, "http", cfg.CatalogSource)
	assert.Equal(t, "http://catalog:8080/products", cfg.CatalogServiceURL)
	assert.False(t, cfg.InitializeOnStart)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled())
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "port out of range", key: "CATALOG_SEARCH_HTTP_PORT", value: "70000"},
		{name: "port zero", key: "CATALOG_SEARCH_HTTP_PORT", value: "0"},
		{name: "unknown engine", key: "SEARCH_ENGINE", value: "solr"},
		{name: "unknown source", key: "CATALOG_SOURCE", value: "ftp"},
		{name: "bad backend url", key: "SEARCH_BACKEND_URL", value: "not a url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
