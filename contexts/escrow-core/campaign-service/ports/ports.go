package ports

import (
	"context"
	"time"

	"fundlock/contexts/escrow-core/campaign-service/domain/entities"
	"fundlock/internal/shared/events"
	"fundlock/internal/shared/outbox"
)

type CampaignRepository interface {
	SaveCampaign(ctx context.Context, campaign entities.Campaign) error
	GetCampaign(ctx context.Context, campaignID string) (entities.Campaign, error)
	ListCampaigns(ctx context.Context) ([]entities.Campaign, error)
	// ListVotingPastDeadline feeds the worker that resolves expired voting
	// windows nobody touched; expiry itself stays lazy inside commands.
	ListVotingPastDeadline(ctx context.Context, now time.Time, limit int) ([]entities.Campaign, error)
}

// TransferGateway delivers funds to an external party. Implementations must
// treat a returned error as "nothing moved"; commands persist no state when a
// transfer fails.
type TransferGateway interface {
	Transfer(ctx context.Context, campaignID string, recipientID string, amount int64, reason string) error
}

type TransferRecord struct {
	CampaignID  string
	RecipientID string
	Amount      int64
	Reason      string
	SentAt      time.Time
}

// TransferLog exposes the settlement history a gateway accumulated.
type TransferLog interface {
	ListTransfers(ctx context.Context, campaignID string) ([]TransferRecord, error)
}

type IdempotencyRecord struct {
	Key         string
	RequestHash string
	CampaignID  string
	ExpiresAt   time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string, now time.Time) (IdempotencyRecord, bool, error)
	Put(ctx context.Context, record IdempotencyRecord) error
}

type EventEnvelope = events.Envelope

type OutboxMessage = outbox.Message

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
