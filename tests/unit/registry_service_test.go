package unit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	registryservice "fundlock/contexts/escrow-core/registry-service"
	domainerrors "fundlock/contexts/escrow-core/registry-service/domain/errors"
	"fundlock/contexts/escrow-core/registry-service/ports"
)

// syncBus delivers published events to subscribers inline, which keeps the
// consumer tests free of goroutine timing.
type syncBus struct {
	handlers map[string][]func(context.Context, ports.EventEnvelope) error
}

func newSyncBus() *syncBus {
	return &syncBus{handlers: make(map[string][]func(context.Context, ports.EventEnvelope) error)}
}

func (b *syncBus) Subscribe(
	_ context.Context,
	topic string,
	_ string,
	handler func(context.Context, ports.EventEnvelope) error,
) error {
	b.handlers[topic] = append(b.handlers[topic], handler)
	return nil
}

func (b *syncBus) deliver(t *testing.T, topic string, event ports.EventEnvelope) {
	t.Helper()
	for _, handler := range b.handlers[topic] {
		if err := handler(context.Background(), event); err != nil {
			t.Fatalf("deliver %s: %v", topic, err)
		}
	}
}

func campaignCreatedEvent(eventID, campaignID, founderID, title string, goal int64, occurredAt time.Time) ports.EventEnvelope {
	payload, _ := json.Marshal(map[string]any{
		"campaign_id":  campaignID,
		"founder_id":   founderID,
		"title":        title,
		"funding_goal": goal,
	})
	return ports.EventEnvelope{
		EventID:       eventID,
		EventType:     "escrow.campaign.created",
		OccurredAt:    occurredAt,
		SourceService: "campaign-service",
		TraceID:       eventID,
		SchemaVersion: 1,
		PartitionKey:  campaignID,
		Data:          payload,
	}
}

func TestRegistryConsumerIndexesCampaignsByFounder(t *testing.T) {
	bus := newSyncBus()
	module := registryservice.NewInMemoryModule(bus, nil)
	if err := module.Consumer.Start(context.Background()); err != nil {
		t.Fatalf("consumer start failed: %v", err)
	}

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	bus.deliver(t, "escrow.campaign.created", campaignCreatedEvent("evt-2", "camp-b", "founder-1", "second", 2000, base.Add(time.Hour)))
	bus.deliver(t, "escrow.campaign.created", campaignCreatedEvent("evt-1", "camp-a", "founder-1", "first", 1000, base))
	bus.deliver(t, "escrow.campaign.created", campaignCreatedEvent("evt-3", "camp-c", "founder-2", "other", 3000, base))

	resp, err := module.Handler.ListByFounderHandler(context.Background(), "founder-1")
	if err != nil {
		t.Fatalf("list by founder failed: %v", err)
	}
	if len(resp.Campaigns) != 2 {
		t.Fatalf("expected 2 campaigns, got %d", len(resp.Campaigns))
	}
	// Ordered by creation time, not arrival order.
	if resp.Campaigns[0].CampaignID != "camp-a" || resp.Campaigns[1].CampaignID != "camp-b" {
		t.Fatalf("unexpected order %s, %s", resp.Campaigns[0].CampaignID, resp.Campaigns[1].CampaignID)
	}
	if resp.Campaigns[0].Title != "first" || resp.Campaigns[0].FundingGoal != 1000 {
		t.Fatalf("unexpected record %+v", resp.Campaigns[0])
	}

	other, err := module.Handler.ListByFounderHandler(context.Background(), "founder-2")
	if err != nil {
		t.Fatalf("list by founder failed: %v", err)
	}
	if len(other.Campaigns) != 1 || other.Campaigns[0].CampaignID != "camp-c" {
		t.Fatalf("unexpected campaigns for founder-2: %+v", other.Campaigns)
	}

	empty, err := module.Handler.ListByFounderHandler(context.Background(), "founder-unknown")
	if err != nil {
		t.Fatalf("unknown founder must list empty, got %v", err)
	}
	if len(empty.Campaigns) != 0 {
		t.Fatalf("expected empty list, got %d", len(empty.Campaigns))
	}

	_, err = module.Handler.ListByFounderHandler(context.Background(), "   ")
	if !errors.Is(err, domainerrors.ErrInvalidFounderID) {
		t.Fatalf("blank founder must be rejected, got %v", err)
	}
}

func TestRegistryConsumerDeduplicatesReplays(t *testing.T) {
	bus := newSyncBus()
	module := registryservice.NewInMemoryModule(bus, nil)
	if err := module.Consumer.Start(context.Background()); err != nil {
		t.Fatalf("consumer start failed: %v", err)
	}

	occurredAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	event := campaignCreatedEvent("evt-1", "camp-a", "founder-1", "first", 1000, occurredAt)
	bus.deliver(t, "escrow.campaign.created", event)
	bus.deliver(t, "escrow.campaign.created", event)

	resp, err := module.Handler.ListByFounderHandler(context.Background(), "founder-1")
	if err != nil {
		t.Fatalf("list by founder failed: %v", err)
	}
	if len(resp.Campaigns) != 1 {
		t.Fatalf("replay must not duplicate the row, got %d", len(resp.Campaigns))
	}

	// Same event id arriving with a different payload is a poisoned replay.
	conflicting := campaignCreatedEvent("evt-1", "camp-a", "founder-1", "tampered", 9999, occurredAt)
	alreadyProcessed, err := module.Store.ReserveEvent(context.Background(), conflicting.EventID, "different-hash", time.Now().UTC().Add(time.Hour))
	if !errors.Is(err, domainerrors.ErrConflict) {
		t.Fatalf("payload mismatch must conflict, got %v (processed=%v)", err, alreadyProcessed)
	}
}

func TestRegistryConsumerDisabledNeverSubscribes(t *testing.T) {
	bus := newSyncBus()
	module := registryservice.NewInMemoryModule(bus, nil)
	module.Consumer.Disabled = true
	if err := module.Consumer.Start(context.Background()); err != nil {
		t.Fatalf("disabled start must be a no-op: %v", err)
	}
	if len(bus.handlers) != 0 {
		t.Fatalf("disabled consumer must not subscribe")
	}
}

func TestRegistryDedupReservationExpires(t *testing.T) {
	module := registryservice.NewInMemoryModule(nil, nil)
	ctx := context.Background()

	processed, err := module.Store.ReserveEvent(ctx, "evt-ttl", "hash-a", time.Now().UTC().Add(-time.Minute))
	if err != nil || processed {
		t.Fatalf("first reservation: processed=%v err=%v", processed, err)
	}
	// The reservation above is already expired, so the slot reopens even for
	// a different payload hash.
	processed, err = module.Store.ReserveEvent(ctx, "evt-ttl", "hash-b", time.Now().UTC().Add(time.Hour))
	if err != nil || processed {
		t.Fatalf("expired slot must reopen: processed=%v err=%v", processed, err)
	}
	processed, err = module.Store.ReserveEvent(ctx, "evt-ttl", "hash-b", time.Now().UTC().Add(time.Hour))
	if err != nil || !processed {
		t.Fatalf("live reservation must report already processed: processed=%v err=%v", processed, err)
	}
}
