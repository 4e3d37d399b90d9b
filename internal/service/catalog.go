package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/bazaarlabs/catalog-search/internal/catalog"
	"github.com/bazaarlabs/catalog-search/internal/domain"
	"github.com/bazaarlabs/catalog-search/internal/engine"
	pkgkafka "github.com/bazaarlabs/catalog-search/pkg/kafka"
)

// ErrRebuildInProgress is returned when Initialize is called while another
// rebuild is still running. Rebuilds are destructive and must not interleave;
// searches are never blocked.
var ErrRebuildInProgress = errors.New("index rebuild already in progress")

// TopicIndexRebuilt is published after a successful full rebuild.
var TopicIndexRebuilt = pkgkafka.Topic("index", "rebuilt")

// EventPublisher publishes domain events. Satisfied by pkgkafka.Producer.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// IndexRebuiltData is the payload of a catalog.index.rebuilt event.
type IndexRebuiltData struct {
	DocumentCount int `json:"document_count"`
}

// CatalogService implements the search surface exposed to the rest of the
// application: full index rebuilds and keyword search.
type CatalogService struct {
	engine     engine.SearchEngine
	loader     catalog.Loader
	publisher  EventPublisher
	logger     *slog.Logger
	rebuilding atomic.Bool
}

// NewCatalogService creates the service. publisher may be nil when event
// publishing is disabled.
func NewCatalogService(eng engine.SearchEngine, loader catalog.Loader, publisher EventPublisher, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		engine:    eng,
		loader:    loader,
		publisher: publisher,
		logger:    logger,
	}
}

// Initialize performs a full destructive rebuild: recreate the index with
// its schema, load the catalog, map each record, and bulk-write the whole
// set in one batch. Any step failure aborts the rest and is surfaced; the
// operation is idempotent and safe to retry wholesale.
func (s *CatalogService) Initialize(ctx context.Context) error {
	if !s.rebuilding.CompareAndSwap(false, true) {
		return ErrRebuildInProgress
	}
	defer s.rebuilding.Store(false)

	if err := s.engine.Rebuild(ctx); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	products, err := s.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	docs := domain.NewDocuments(products)
	if err := s.engine.BulkIndex(ctx, docs); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	s.logger.InfoContext(ctx, "catalog index rebuilt",
		slog.Int("documents", len(docs)),
	)

	s.publishRebuilt(ctx, len(docs))
	return nil
}

// Search translates the keyword into the weighted fuzzy query and returns
// products in relevance order. An empty keyword is valid and yields an empty
// result.
func (s *CatalogService) Search(ctx context.Context, keyword string) ([]domain.Product, error) {
	keyword = strings.TrimSpace(keyword)

	docs, err := s.engine.Search(ctx, keyword)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", keyword, err)
	}

	products := make([]domain.Product, 0, len(docs))
	for _, doc := range docs {
		products = append(products, doc.Product())
	}

	s.logger.DebugContext(ctx, "search executed",
		slog.String("keyword", keyword),
		slog.Int("hits", len(products)),
	)
	return products, nil
}

// IsRebuilding reports whether a rebuild is currently running.
func (s *CatalogService) IsRebuilding() bool {
	return s.rebuilding.Load()
}

// IndexState reports the observable lifecycle state of the index and its
// document count.
func (s *CatalogService) IndexState(ctx context.Context) (engine.IndexState, int, error) {
	return s.engine.State(ctx)
}

// publishRebuilt emits the rebuilt event. Publishing is best-effort: the
// rebuild already succeeded and must not be reported as failed.
func (s *CatalogService) publishRebuilt(ctx context.Context, count int) {
	if s.publisher == nil {
		return
	}

	event, err := pkgkafka.NewEvent(TopicIndexRebuilt, "catalog", "index", "catalog-search", IndexRebuiltData{DocumentCount: count})
	if err != nil {
		s.logger.ErrorContext(ctx, "build rebuilt event", slog.String("error", err.Error()))
		return
	}
	if err := s.publisher.Publish(ctx, TopicIndexRebuilt, event); err != nil {
		s.logger.ErrorContext(ctx, "publish rebuilt event", slog.String("error", err.Error()))
	}
}
