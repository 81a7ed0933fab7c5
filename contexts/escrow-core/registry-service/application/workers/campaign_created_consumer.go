package workers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	application "fundlock/contexts/escrow-core/registry-service/application"
	"fundlock/contexts/escrow-core/registry-service/domain/entities"
	"fundlock/contexts/escrow-core/registry-service/ports"
)

const (
	campaignCreatedTopic     = "escrow.campaign.created"
	defaultRegistryConsumerG = "registry-service-campaign-cg"
)

// CampaignCreatedConsumer keeps the founder index in step with escrow by
// consuming campaign creation events. Delivery is at-least-once; the dedupe
// store plus the idempotent upsert make replays harmless.
type CampaignCreatedConsumer struct {
	Subscriber    ports.EventSubscriber
	Dedup         ports.EventDedupStore
	Registry      ports.RegistryRepository
	Clock         ports.Clock
	ConsumerGroup string
	DedupTTL      time.Duration
	Disabled      bool
	Logger        *slog.Logger
}

func (c CampaignCreatedConsumer) Start(ctx context.Context) error {
	logger := application.ResolveLogger(c.Logger)
	if c.Disabled {
		logger.Info("campaign created consumer disabled by feature flag",
			"event", "registry_consumer_disabled",
			"module", "escrow-core/registry-service",
			"layer", "worker",
		)
		return nil
	}
	group := strings.TrimSpace(c.ConsumerGroup)
	if group == "" {
		group = defaultRegistryConsumerG
	}
	if err := c.Subscriber.Subscribe(ctx, campaignCreatedTopic, group, c.handleCampaignCreated); err != nil {
		logger.Error("campaign created consumer subscribe failed",
			"event", "registry_consumer_subscribe_failed",
			"module", "escrow-core/registry-service",
			"layer", "worker",
			"topic", campaignCreatedTopic,
			"consumer_group", group,
			"error", err.Error(),
		)
		return err
	}
	logger.Info("campaign created consumer subscription active",
		"event", "registry_consumer_started",
		"module", "escrow-core/registry-service",
		"layer", "worker",
		"consumer_group", group,
	)
	return nil
}

func (c CampaignCreatedConsumer) handleCampaignCreated(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(c.Logger)
	alreadyProcessed, err := c.Dedup.ReserveEvent(ctx, event.EventID, hashPayload(event.Data), c.now().Add(c.dedupTTL()))
	if err != nil {
		logger.Error("campaign created dedupe failed",
			"event", "registry_dedupe_failed",
			"module", "escrow-core/registry-service",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}
	if alreadyProcessed {
		logger.Debug("campaign created replay skipped",
			"event", "registry_campaign_created_replayed",
			"module", "escrow-core/registry-service",
			"layer", "worker",
			"event_id", event.EventID,
		)
		return nil
	}
	var payload struct {
		CampaignID  string `json:"campaign_id"`
		FounderID   string `json:"founder_id"`
		Title       string `json:"title"`
		FundingGoal int64  `json:"funding_goal"`
	}
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		logger.Error("campaign created payload decode failed",
			"event", "registry_campaign_created_decode_failed",
			"module", "escrow-core/registry-service",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}
	record := entities.CampaignRecord{
		CampaignID:  strings.TrimSpace(payload.CampaignID),
		FounderID:   strings.TrimSpace(payload.FounderID),
		Title:       payload.Title,
		FundingGoal: payload.FundingGoal,
		CreatedAt:   event.OccurredAt.UTC(),
	}
	if err := c.Registry.RecordCampaign(ctx, record); err != nil {
		logger.Error("campaign created index write failed",
			"event", "registry_campaign_created_write_failed",
			"module", "escrow-core/registry-service",
			"layer", "worker",
			"event_id", event.EventID,
			"campaign_id", record.CampaignID,
			"error", err.Error(),
		)
		return err
	}
	logger.Info("campaign created consumed",
		"event", "registry_campaign_created_consumed",
		"module", "escrow-core/registry-service",
		"layer", "worker",
		"event_id", event.EventID,
		"campaign_id", record.CampaignID,
		"founder_id", record.FounderID,
	)
	return nil
}

func (c CampaignCreatedConsumer) now() time.Time {
	now := time.Now().UTC()
	if c.Clock != nil {
		now = c.Clock.Now().UTC()
	}
	return now
}

func (c CampaignCreatedConsumer) dedupTTL() time.Duration {
	if c.DedupTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return c.DedupTTL
}

func hashPayload(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
