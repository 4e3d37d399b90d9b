package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bazaarlabs/catalog-search/internal/catalog"
	"github.com/bazaarlabs/catalog-search/internal/config"
	"github.com/bazaarlabs/catalog-search/internal/engine"
	esengine "github.com/bazaarlabs/catalog-search/internal/engine/elasticsearch"
	"github.com/bazaarlabs/catalog-search/internal/engine/memory"
	"github.com/bazaarlabs/catalog-search/internal/event"
	handler "github.com/bazaarlabs/catalog-search/internal/handler/http"
	"github.com/bazaarlabs/catalog-search/internal/service"
	"github.com/bazaarlabs/catalog-search/pkg/health"
	pkgkafka "github.com/bazaarlabs/catalog-search/pkg/kafka"
)

// App wires together all dependencies and runs the catalog search service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	catalogService *service.CatalogService
	consumers      []*pkgkafka.Consumer
	producer       *pkgkafka.Producer
	httpServer     *http.Server
}

// NewApp creates the application, initializing all dependencies. The backend
// connection is established and verified here; a dead backend fails startup.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	// Search engine.
	var eng engine.SearchEngine
	switch cfg.SearchEngine {
	case "elasticsearch":
		esEng, err := esengine.New(esengine.Config{
			URL:                   cfg.BackendURL,
			Index:                 cfg.BackendIndex,
			Username:              cfg.BackendUsername,
			Password:              cfg.BackendPassword,
			InsecureSkipTLSVerify: cfg.BackendInsecureTLS,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("init elasticsearch engine: %w", err)
		}
		eng = esEng
	default:
		eng = memory.New()
		logger.Info("in-memory search engine initialized")
	}

	// Catalog data source.
	var loader catalog.Loader
	switch cfg.CatalogSource {
	case "http":
		loader = catalog.NewHTTPSource(cfg.CatalogServiceURL, logger)
	default:
		loader = catalog.NewFileSource(cfg.CatalogDataFile)
	}

	// Optional Kafka producer for rebuilt events.
	var producer *pkgkafka.Producer
	var publisher service.EventPublisher
	if cfg.KafkaEnabled() {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = producer
	}

	catalogService := service.NewCatalogService(eng, loader, publisher, logger)

	// Optional Kafka consumers for rebuild triggers.
	var consumers []*pkgkafka.Consumer
	if cfg.KafkaEnabled() {
		eventConsumer := event.NewConsumer(catalogService, logger)
		topics := []string{
			event.TopicDatasetUpdated,
			event.TopicReindexRequested,
		}
		for _, topic := range topics {
			consumerCfg := pkgkafka.ConsumerConfig{
				Brokers:  cfg.KafkaBrokers,
				GroupID:  "catalog-search",
				Topic:    topic,
				MinBytes: 1,
				MaxBytes: 10e6, // 10 MB
			}
			consumers = append(consumers, pkgkafka.NewConsumer(consumerCfg, eventConsumer.Handle, logger))
		}
		logger.Info("kafka consumers initialized",
			slog.Any("brokers", cfg.KafkaBrokers),
			slog.Int("topic_count", len(topics)),
		)
	}

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("search_backend", eng.Ping)
	healthHandler.Register("index", func(ctx context.Context) error {
		state, _, err := eng.State(ctx)
		if err != nil {
			return err
		}
		if state == engine.StateAbsent {
			return fmt.Errorf("index absent, search unavailable")
		}
		return nil
	})
	if cfg.KafkaEnabled() {
		healthHandler.Register("kafka", func(ctx context.Context) error {
			return pkgkafka.PingBrokers(ctx, cfg.KafkaBrokers)
		})
	}

	router := handler.NewRouter(catalogService, healthHandler, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		catalogService: catalogService,
		consumers:      consumers,
		producer:       producer,
		httpServer:     httpServer,
	}, nil
}

// Run starts the HTTP server and Kafka consumers, performing the initial
// index rebuild first when configured. An initialization failure is logged
// but does not abort startup: the index stays absent, searches fail closed,
// and the operator retries via the reindex endpoint or a Kafka trigger.
func (a *App) Run(ctx context.Context) error {
	if a.cfg.InitializeOnStart {
		if err := a.catalogService.Initialize(ctx); err != nil {
			a.logger.Error("initial index rebuild failed, search unavailable until reindex",
				slog.String("error", err.Error()),
			)
		}
	}

	errCh := make(chan error, 1+len(a.consumers))

	for _, c := range a.consumers {
		go func() {
			if err := c.Start(ctx); err != nil {
				errCh <- fmt.Errorf("kafka consumer: %w", err)
			}
		}()
	}

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	for _, c := range a.consumers {
		if err := c.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
