package registryservice

import (
	"log/slog"
	"time"

	httpadapter "fundlock/contexts/escrow-core/registry-service/adapters/http"
	"fundlock/contexts/escrow-core/registry-service/adapters/memory"
	"fundlock/contexts/escrow-core/registry-service/application/queries"
	"fundlock/contexts/escrow-core/registry-service/application/workers"
	"fundlock/contexts/escrow-core/registry-service/ports"
)

type Module struct {
	Handler  httpadapter.Handler
	Consumer workers.CampaignCreatedConsumer
	Store    *memory.Store
}

type Dependencies struct {
	Registry      ports.RegistryRepository
	EventDedup    ports.EventDedupStore
	Subscriber    ports.EventSubscriber
	Clock         ports.Clock
	ConsumerGroup string
	DedupTTL      time.Duration
	Disabled      bool
	Logger        *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Handler: httpadapter.Handler{
			ByFounder: queries.ListByFounderUseCase{
				Registry: deps.Registry,
				Logger:   deps.Logger,
			},
			Logger: deps.Logger,
		},
		Consumer: workers.CampaignCreatedConsumer{
			Subscriber:    deps.Subscriber,
			Dedup:         deps.EventDedup,
			Registry:      deps.Registry,
			Clock:         deps.Clock,
			ConsumerGroup: deps.ConsumerGroup,
			DedupTTL:      deps.DedupTTL,
			Disabled:      deps.Disabled,
			Logger:        deps.Logger,
		},
	}
}

func NewInMemoryModule(subscriber ports.EventSubscriber, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Registry:   store,
		EventDedup: store,
		Subscriber: subscriber,
		Clock:      store,
		DedupTTL:   7 * 24 * time.Hour,
		Logger:     logger,
	})
	module.Store = store
	return module
}
