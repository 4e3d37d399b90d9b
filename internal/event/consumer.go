package event

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bazaarlabs/catalog-search/internal/service"
	pkgkafka "github.com/bazaarlabs/catalog-search/pkg/kafka"
)

// Topics consumed by the catalog search service. Both signal that the
// authoritative dataset changed and the index must be rebuilt from scratch.
var (
	TopicDatasetUpdated   = pkgkafka.Topic("dataset", "updated")
	TopicReindexRequested = pkgkafka.Topic("reindex", "requested")
)

// Consumer reacts to catalog events with a full index rebuild.
type Consumer struct {
	catalogService *service.CatalogService
	logger         *slog.Logger
}

// NewConsumer creates the event consumer.
func NewConsumer(catalogService *service.CatalogService, logger *slog.Logger) *Consumer {
	return &Consumer{
		catalogService: catalogService,
		logger:         logger,
	}
}

// Handle processes a Kafka event. Unknown event types are logged and
// skipped; a rebuild already in progress absorbs the trigger since the
// running rebuild will pick up the same dataset.
func (c *Consumer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TopicDatasetUpdated, TopicReindexRequested:
		return c.handleRebuild(ctx, event)
	default:
		c.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

func (c *Consumer) handleRebuild(ctx context.Context, event *pkgkafka.Event) error {
	err := c.catalogService.Initialize(ctx)
	if errors.Is(err, service.ErrRebuildInProgress) {
		c.logger.InfoContext(ctx, "rebuild trigger absorbed, rebuild already running",
			slog.String("event_id", event.EventID),
		)
		return nil
	}
	if err != nil {
		return err
	}

	c.logger.InfoContext(ctx, "index rebuilt from event",
		slog.String("event_type", event.EventType),
		slog.String("event_id", event.EventID),
	)
	return nil
}
