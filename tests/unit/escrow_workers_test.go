package unit

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	campaignservice "fundlock/contexts/escrow-core/campaign-service"
	"fundlock/contexts/escrow-core/campaign-service/application/commands"
	"fundlock/contexts/escrow-core/campaign-service/application/workers"
	"fundlock/contexts/escrow-core/campaign-service/domain/entities"
	"fundlock/contexts/escrow-core/campaign-service/ports"
	httptransport "fundlock/contexts/escrow-core/campaign-service/transport/http"
)

type recordingPublisher struct {
	mu       sync.Mutex
	events   []ports.EventEnvelope
	topics   []string
	failNext int
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failNext > 0 {
		p.failNext--
		return errors.New("simulated broker outage")
	}
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func TestDeadlineResolverSweepsExpiredVotingWindows(t *testing.T) {
	module := campaignservice.NewInMemoryModule(nil, nil)
	resolver := workers.DeadlineResolver{
		Campaigns: module.Store,
		Resolver: commands.ResolveMilestoneUseCase{
			Campaigns: module.Store,
			Transfers: module.Transfers,
			Outbox:    module.Store,
			Clock:     module.Store,
			IDGen:     module.Store,
		},
		Clock:     module.Store,
		BatchSize: 10,
	}

	// Nothing expired yet: the sweep is a no-op.
	if err := resolver.RunOnce(context.Background()); err != nil {
		t.Fatalf("empty sweep failed: %v", err)
	}

	expiredID := createTestCampaign(t, module, "founder-1", 1_000_000, 0)
	contribute(t, module, expiredID, "funder-1", 1000, "balanced")
	openVoting(t, module, expiredID, "founder-1", 0)
	if _, err := module.Handler.CastVoteHandler(context.Background(), expiredID, "funder-1", 0, httptransport.CastVoteRequest{Support: true}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	forceVotingExpired(t, module, expiredID, 0)

	openID := createTestCampaign(t, module, "founder-2", 1_000_000, 0)
	contribute(t, module, openID, "funder-2", 1000, "balanced")
	openVoting(t, module, openID, "founder-2", 0)

	if err := resolver.RunOnce(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	resolved, err := module.Store.GetCampaign(context.Background(), expiredID)
	if err != nil {
		t.Fatalf("get campaign failed: %v", err)
	}
	if resolved.Milestones[0].Status != entities.MilestoneStatusCompleted {
		t.Fatalf("expired window should have resolved, got %s", resolved.Milestones[0].Status)
	}
	if resolved.CurrentMilestone != 1 {
		t.Fatalf("pointer should have advanced, got %d", resolved.CurrentMilestone)
	}

	untouched, err := module.Store.GetCampaign(context.Background(), openID)
	if err != nil {
		t.Fatalf("get campaign failed: %v", err)
	}
	if untouched.Milestones[0].Status != entities.MilestoneStatusVoting {
		t.Fatalf("open window must not be resolved, got %s", untouched.Milestones[0].Status)
	}

	// The already-resolved campaign drops out of the next sweep.
	if err := resolver.RunOnce(context.Background()); err != nil {
		t.Fatalf("repeat sweep failed: %v", err)
	}
}

func TestOutboxRelayPublishesInOrderAndStopsOnFailure(t *testing.T) {
	module := campaignservice.NewInMemoryModule(nil, nil)
	campaignID := createTestCampaign(t, module, "founder-1", 1_000_000, 0)
	contribute(t, module, campaignID, "funder-1", 1000, "balanced")
	openVoting(t, module, campaignID, "founder-1", 0)

	publisher := &recordingPublisher{}
	relay := workers.OutboxRelay{
		Outbox:    module.Store,
		Publisher: publisher,
		Clock:     module.Store,
		BatchSize: 50,
	}

	publisher.failNext = 1
	if err := relay.RunOnce(context.Background()); err == nil {
		t.Fatalf("broker outage must surface as an error")
	}
	if len(publisher.events) != 0 {
		t.Fatalf("nothing should publish during the outage, got %d", len(publisher.events))
	}

	// The failed row was never marked published, so the retry delivers all
	// three events in append order.
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay retry failed: %v", err)
	}
	wantTopics := []string{
		"escrow.campaign.created",
		"escrow.contribution.recorded",
		"escrow.milestone.voting_opened",
	}
	if len(publisher.topics) != len(wantTopics) {
		t.Fatalf("expected %d events, got %d", len(wantTopics), len(publisher.topics))
	}
	for i, want := range wantTopics {
		if publisher.topics[i] != want {
			t.Fatalf("event %d: expected topic %s, got %s", i, want, publisher.topics[i])
		}
	}
	for _, event := range publisher.events {
		if event.PartitionKey != campaignID {
			t.Fatalf("events must partition by campaign, got %s", event.PartitionKey)
		}
		if event.SourceService != "campaign-service" {
			t.Fatalf("unexpected source service %s", event.SourceService)
		}
	}

	var created struct {
		CampaignID  string `json:"campaign_id"`
		FounderID   string `json:"founder_id"`
		FundingGoal int64  `json:"funding_goal"`
	}
	if err := json.Unmarshal(publisher.events[0].Data, &created); err != nil {
		t.Fatalf("decode created payload: %v", err)
	}
	if created.CampaignID != campaignID || created.FounderID != "founder-1" || created.FundingGoal != 1_000_000 {
		t.Fatalf("unexpected created payload %+v", created)
	}

	// Everything is marked published; a second cycle is a no-op.
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("idle relay cycle failed: %v", err)
	}
	if len(publisher.events) != len(wantTopics) {
		t.Fatalf("idle cycle must not republish, got %d events", len(publisher.events))
	}
}
