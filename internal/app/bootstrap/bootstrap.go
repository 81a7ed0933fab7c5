package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	campaignservice "fundlock/contexts/escrow-core/campaign-service"
	escrowpostgres "fundlock/contexts/escrow-core/campaign-service/adapters/postgres"
	"fundlock/contexts/escrow-core/campaign-service/application/commands"
	escrowworkers "fundlock/contexts/escrow-core/campaign-service/application/workers"
	registryservice "fundlock/contexts/escrow-core/registry-service"
	registrypostgres "fundlock/contexts/escrow-core/registry-service/adapters/postgres"
	"fundlock/internal/platform/config"
	"fundlock/internal/platform/db"
	"fundlock/internal/platform/httpserver"
	"fundlock/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres         *db.Postgres
	outboxRelay      escrowworkers.OutboxRelay
	deadlineResolver escrowworkers.DeadlineResolver
	registry         registryservice.Module
	relayEnabled     bool
	resolverEnabled  bool
	pollInterval     time.Duration
	resolverInterval time.Duration
	logger           *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	repo := escrowpostgres.NewRepository(pg.DB, logger)
	escrowModule := campaignservice.NewModule(campaignservice.Dependencies{
		Campaigns:      repo,
		Idempotency:    repo,
		Transfers:      repo,
		TransferLog:    repo,
		Outbox:         repo,
		Clock:          escrowpostgres.SystemClock{},
		IDGen:          escrowpostgres.UUIDGenerator{},
		IdempotencyTTL: cfg.IdempotencyTTL,
		Logger:         logger,
	})

	registryRepo := registrypostgres.NewRepository(pg.DB, logger)
	registryModule := registryservice.NewModule(registryservice.Dependencies{
		Registry:   registryRepo,
		EventDedup: registryRepo,
		Clock:      escrowpostgres.SystemClock{},
		DedupTTL:   cfg.EventDedupTTL,
		Disabled:   true, // consuming happens in the worker process
		Logger:     logger,
	})

	server := httpserver.New(escrowModule, registryModule, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	repo := escrowpostgres.NewRepository(pg.DB, logger)
	resolver := commands.ResolveMilestoneUseCase{
		Campaigns: repo,
		Transfers: repo,
		Outbox:    repo,
		Clock:     escrowpostgres.SystemClock{},
		IDGen:     escrowpostgres.UUIDGenerator{},
		Logger:    logger,
	}

	registryRepo := registrypostgres.NewRepository(pg.DB, logger)
	registryModule := registryservice.NewModule(registryservice.Dependencies{
		Registry:      registryRepo,
		EventDedup:    registryRepo,
		Subscriber:    kafka,
		Clock:         escrowpostgres.SystemClock{},
		ConsumerGroup: cfg.RegistryConsumerGroupID,
		DedupTTL:      cfg.EventDedupTTL,
		Disabled:      !cfg.EnableRegistryConsumer,
		Logger:        logger,
	})

	return &WorkerApp{
		postgres: pg,
		outboxRelay: escrowworkers.OutboxRelay{
			Outbox:    repo,
			Publisher: kafka,
			Clock:     escrowpostgres.SystemClock{},
			BatchSize: cfg.OutboxRelayBatch,
			Logger:    logger,
		},
		deadlineResolver: escrowworkers.DeadlineResolver{
			Campaigns: repo,
			Resolver:  resolver,
			Clock:     escrowpostgres.SystemClock{},
			BatchSize: cfg.DeadlineResolverBatch,
			Logger:    logger,
		},
		registry:         registryModule,
		relayEnabled:     cfg.EnableOutboxRelay,
		resolverEnabled:  cfg.EnableDeadlineResolver,
		pollInterval:     cfg.OutboxRelayPeriod,
		resolverInterval: cfg.DeadlineResolverPeriod,
		logger:           logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if err := w.registry.Consumer.Start(ctx); err != nil {
		return err
	}

	relayTicker := time.NewTicker(w.pollInterval)
	defer relayTicker.Stop()
	resolverTicker := time.NewTicker(w.resolverInterval)
	defer resolverTicker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"relay_enabled", w.relayEnabled,
		"resolver_enabled", w.resolverEnabled,
		"relay_interval", w.pollInterval.String(),
		"resolver_interval", w.resolverInterval.String(),
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-relayTicker.C:
			if !w.relayEnabled {
				continue
			}
			if err := w.outboxRelay.RunOnce(ctx); err != nil {
				return err
			}
		case <-resolverTicker.C:
			if !w.resolverEnabled {
				continue
			}
			if err := w.deadlineResolver.RunOnce(ctx); err != nil {
				return err
			}
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
