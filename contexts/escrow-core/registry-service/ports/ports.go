package ports

import (
	"context"
	"time"

	"fundlock/contexts/escrow-core/registry-service/domain/entities"
	"fundlock/internal/shared/events"
)

type RegistryRepository interface {
	// RecordCampaign is idempotent on campaign id; replays upsert the same row.
	RecordCampaign(ctx context.Context, record entities.CampaignRecord) error
	ListByFounder(ctx context.Context, founderID string) ([]entities.CampaignRecord, error)
}

type EventEnvelope = events.Envelope

type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}

type EventDedupStore interface {
	ReserveEvent(ctx context.Context, eventID string, payloadHash string, expiresAt time.Time) (bool, error)
}

type Clock interface {
	Now() time.Time
}
