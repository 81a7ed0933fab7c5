package campaignservice

import (
	"log/slog"
	"time"

	httpadapter "fundlock/contexts/escrow-core/campaign-service/adapters/http"
	"fundlock/contexts/escrow-core/campaign-service/adapters/memory"
	"fundlock/contexts/escrow-core/campaign-service/application/commands"
	"fundlock/contexts/escrow-core/campaign-service/application/queries"
	"fundlock/contexts/escrow-core/campaign-service/domain/entities"
	"fundlock/contexts/escrow-core/campaign-service/ports"
)

type Module struct {
	Handler   httpadapter.Handler
	Store     *memory.Store
	Transfers *memory.TransferLedger
}

type Dependencies struct {
	Campaigns      ports.CampaignRepository
	Idempotency    ports.IdempotencyStore
	Transfers      ports.TransferGateway
	TransferLog    ports.TransferLog
	Outbox         ports.OutboxWriter
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

func NewModule(deps Dependencies) Module {
	createUseCase := commands.CreateCampaignUseCase{
		Campaigns:      deps.Campaigns,
		Idempotency:    deps.Idempotency,
		Outbox:         deps.Outbox,
		Clock:          deps.Clock,
		IDGen:          deps.IDGen,
		IdempotencyTTL: deps.IdempotencyTTL,
		Logger:         deps.Logger,
	}
	contributeUseCase := commands.ContributeUseCase{
		Campaigns:      deps.Campaigns,
		Idempotency:    deps.Idempotency,
		Outbox:         deps.Outbox,
		Clock:          deps.Clock,
		IDGen:          deps.IDGen,
		IdempotencyTTL: deps.IdempotencyTTL,
		Logger:         deps.Logger,
	}
	submitUseCase := commands.SubmitEvidenceUseCase{
		Campaigns: deps.Campaigns,
		Outbox:    deps.Outbox,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	voteUseCase := commands.CastVoteUseCase{
		Campaigns: deps.Campaigns,
		Transfers: deps.Transfers,
		Outbox:    deps.Outbox,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	resolveUseCase := commands.ResolveMilestoneUseCase{
		Campaigns: deps.Campaigns,
		Transfers: deps.Transfers,
		Outbox:    deps.Outbox,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	refundUseCase := commands.ClaimRefundUseCase{
		Campaigns: deps.Campaigns,
		Transfers: deps.Transfers,
		Outbox:    deps.Outbox,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	cancelUseCase := commands.CancelCampaignUseCase{
		Campaigns: deps.Campaigns,
		Outbox:    deps.Outbox,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	emergencyUseCase := commands.FlagEmergencyUseCase{
		Campaigns: deps.Campaigns,
		Outbox:    deps.Outbox,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Create:     createUseCase,
			Contribute: contributeUseCase,
			Submit:     submitUseCase,
			Vote:       voteUseCase,
			Resolve:    resolveUseCase,
			Refund:     refundUseCase,
			Cancel:     cancelUseCase,
			Emergency:  emergencyUseCase,
			Campaigns:  queries.GetCampaignUseCase{Campaigns: deps.Campaigns},
			List:       queries.ListCampaignsUseCase{Campaigns: deps.Campaigns},
			Milestones: queries.GetMilestoneUseCase{Campaigns: deps.Campaigns},
			Funders:    queries.GetFunderUseCase{Campaigns: deps.Campaigns},
			Transfers:  queries.ListTransfersUseCase{Campaigns: deps.Campaigns, Transfers: deps.TransferLog},
			Logger:     deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.Campaign, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	transfers := memory.NewTransferLedger()
	module := NewModule(Dependencies{
		Campaigns:      store,
		Idempotency:    store,
		Transfers:      transfers,
		TransferLog:    transfers,
		Outbox:         store,
		Clock:          store,
		IDGen:          store,
		IdempotencyTTL: 24 * time.Hour,
		Logger:         logger,
	})
	module.Store = store
	module.Transfers = transfers
	return module
}
