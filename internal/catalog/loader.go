package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/bazaarlabs/catalog-search/internal/domain"
	"github.com/bazaarlabs/catalog-search/pkg/httpclient"
)

// ErrDataSource means the authoritative dataset could not be read or parsed.
var ErrDataSource = errors.New("catalog data source failed")

// Loader produces the ordered product record sequence from the
// authoritative dataset. Record order is source-defined; ranking never
// depends on it.
type Loader interface {
	Load(ctx context.Context) ([]domain.Product, error)
}

// FileSource loads the catalog from a JSON dataset file.
type FileSource struct {
	path string
}

// NewFileSource creates a file-backed loader.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Load reads and parses the dataset file.
func (s *FileSource) Load(_ context.Context) ([]domain.Product, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w: %w", s.path, ErrDataSource, err)
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("parse %s: %w: %w", s.path, ErrDataSource, err)
	}

	if err := validate(products); err != nil {
		return nil, fmt.Errorf("validate %s: %w: %w", s.path, ErrDataSource, err)
	}
	return products, nil
}

// HTTPSource loads the catalog from a remote catalog service. Calls go
// through a retrying client guarded by a circuit breaker so a flapping
// upstream cannot be hammered by repeated rebuilds.
type HTTPSource struct {
	url    string
	client *httpclient.BreakerClient
	logger *slog.Logger
}

// NewHTTPSource creates a loader fetching from the given products endpoint.
func NewHTTPSource(url string, logger *slog.Logger) *HTTPSource {
	return &HTTPSource{
		url:    url,
		client: httpclient.NewWithBreaker(httpclient.DefaultConfig(), httpclient.DefaultCircuitBreakerConfig("catalog-source"), logger),
		logger: logger,
	}
}

// Load fetches and parses the dataset from the remote service.
func (s *HTTPSource) Load(ctx context.Context) ([]domain.Product, error) {
	resp, err := s.client.Get(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w: %w", s.url, ErrDataSource, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %w: unexpected status %d", s.url, ErrDataSource, resp.StatusCode)
	}

	var products []domain.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, fmt.Errorf("parse response from %s: %w: %w", s.url, ErrDataSource, err)
	}

	if err := validate(products); err != nil {
		return nil, fmt.Errorf("validate response from %s: %w: %w", s.url, ErrDataSource, err)
	}

	s.logger.Debug("loaded catalog from remote source",
		slog.String("url", s.url),
		slog.Int("count", len(products)),
	)
	return products, nil
}

// validate rejects malformed records so the mapper downstream stays total.
func validate(products []domain.Product) error {
	seen := make(map[string]struct{}, len(products))
	for i, p := range products {
		if p.ID == "" {
			return fmt.Errorf("record %d: missing id", i)
		}
		if p.Name == "" {
			return fmt.Errorf("record %d (%s): missing name", i, p.ID)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("record %d: duplicate id %s", i, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}
