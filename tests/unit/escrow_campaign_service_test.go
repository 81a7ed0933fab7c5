package unit

import (
	"context"
	"errors"
	"testing"
	"time"

	campaignservice "fundlock/contexts/escrow-core/campaign-service"
	"fundlock/contexts/escrow-core/campaign-service/domain/entities"
	domainerrors "fundlock/contexts/escrow-core/campaign-service/domain/errors"
	httptransport "fundlock/contexts/escrow-core/campaign-service/transport/http"
)

func validMilestonePlans() []httptransport.MilestonePlanRequest {
	return []httptransport.MilestonePlanRequest{
		{Description: "prototype", ReleaseBps: 1000, DeadlineDays: 10},
		{Description: "alpha", ReleaseBps: 1500, DeadlineDays: 20},
		{Description: "beta", ReleaseBps: 2000, DeadlineDays: 30},
		{Description: "launch", ReleaseBps: 2500, DeadlineDays: 40},
		{Description: "post-launch", ReleaseBps: 3000, DeadlineDays: 50},
	}
}

func createTestCampaign(
	t *testing.T,
	module campaignservice.Module,
	founderID string,
	goal int64,
	feeBps int64,
) string {
	t.Helper()
	resp, err := module.Handler.CreateCampaignHandler(context.Background(), founderID, "idem-create-"+founderID, httptransport.CreateCampaignRequest{
		Title:          "test campaign",
		Description:    "escrowed build",
		FundingGoal:    goal,
		PlatformFeeBps: feeBps,
		Milestones:     validMilestonePlans(),
	})
	if err != nil {
		t.Fatalf("create campaign failed: %v", err)
	}
	return resp.CampaignID
}

func contribute(
	t *testing.T,
	module campaignservice.Module,
	campaignID string,
	funderID string,
	amount int64,
	profile string,
) httptransport.ContributeResponse {
	t.Helper()
	resp, err := module.Handler.ContributeHandler(context.Background(), campaignID, funderID, "idem-"+funderID+"-"+campaignID, httptransport.ContributeRequest{
		Amount:      amount,
		RiskProfile: profile,
	})
	if err != nil {
		t.Fatalf("contribute failed for %s: %v", funderID, err)
	}
	return resp
}

func TestCreateCampaignValidatesPlanAndReplays(t *testing.T) {
	module := campaignservice.NewInMemoryModule(nil, nil)

	badPlans := validMilestonePlans()
	badPlans[4].ReleaseBps = 2999
	_, err := module.Handler.CreateCampaignHandler(context.Background(), "founder-1", "idem-bad", httptransport.CreateCampaignRequest{
		Title:       "broken plan",
		FundingGoal: 10_000,
		Milestones:  badPlans,
	})
	if !errors.Is(err, domainerrors.ErrInvalidCampaignInput) {
		t.Fatalf("expected invalid input for bps sum != 10000, got %v", err)
	}

	req := httptransport.CreateCampaignRequest{
		Title:          "replayable",
		FundingGoal:    10_000,
		PlatformFeeBps: 250,
		Milestones:     validMilestonePlans(),
	}
	first, err := module.Handler.CreateCampaignHandler(context.Background(), "founder-1", "idem-1", req)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	second, err := module.Handler.CreateCampaignHandler(context.Background(), "founder-1", "idem-1", req)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if first.CampaignID != second.CampaignID {
		t.Fatalf("replay produced a different campaign: %s vs %s", first.CampaignID, second.CampaignID)
	}
	if first.CurrentMilestone != 0 || first.Status != string(entities.CampaignStatusActive) {
		t.Fatalf("new campaign should start active at milestone 0, got %s/%d", first.Status, first.CurrentMilestone)
	}
	if len(first.Milestones) != entities.MilestoneCount {
		t.Fatalf("expected %d milestones, got %d", entities.MilestoneCount, len(first.Milestones))
	}
}

func TestContributionSplitsByRiskProfile(t *testing.T) {
	module := campaignservice.NewInMemoryModule(nil, nil)
	campaignID := createTestCampaign(t, module, "founder-1", 1_000_000, 250)

	balanced := contribute(t, module, campaignID, "funder-balanced", 1000, "balanced")
	if balanced.Committed != 700 || balanced.Reserve != 300 {
		t.Fatalf("balanced 1000 should split 700/300, got %d/%d", balanced.Committed, balanced.Reserve)
	}
	conservative := contribute(t, module, campaignID, "funder-conservative", 1000, "conservative")
	if conservative.Committed != 500 || conservative.Reserve != 500 {
		t.Fatalf("conservative 1000 should split 500/500, got %d/%d", conservative.Committed, conservative.Reserve)
	}
	aggressive := contribute(t, module, campaignID, "funder-aggressive", 1000, "aggressive")
	if aggressive.Committed != 900 || aggressive.Reserve != 100 {
		t.Fatalf("aggressive 1000 should split 900/100, got %d/%d", aggressive.Committed, aggressive.Reserve)
	}

	campaign, err := module.Store.GetCampaign(context.Background(), campaignID)
	if err != nil {
		t.Fatalf("get campaign failed: %v", err)
	}
	if campaign.TotalRaised != 3000 {
		t.Fatalf("expected total raised 3000, got %d", campaign.TotalRaised)
	}
	if campaign.TotalCommittedPool != 2100 || campaign.TotalReservePool != 900 {
		t.Fatalf("expected pools 2100/900, got %d/%d", campaign.TotalCommittedPool, campaign.TotalReservePool)
	}
	if campaign.TotalCommittedPool+campaign.TotalReservePool != campaign.TotalRaised {
		t.Fatalf("pool split must sum to total raised")
	}
	if len(campaign.Roster) != 3 || campaign.Roster[0] != "funder-balanced" {
		t.Fatalf("roster should preserve first-contribution order, got %v", campaign.Roster)
	}
}

func TestContributionOddAmountRemainderGoesToReserve(t *testing.T) {
	module := campaignservice.NewInMemoryModule(nil, nil)
	campaignID := createTestCampaign(t, module, "founder-1", 1_000_000, 0)

	resp := contribute(t, module, campaignID, "funder-1", 333, "balanced")
	if resp.Committed != 233 || resp.Reserve != 100 {
		t.Fatalf("333 balanced should floor to 233 committed with 100 reserve, got %d/%d", resp.Committed, resp.Reserve)
	}
	if resp.Committed+resp.Reserve != 333 {
		t.Fatalf("split must conserve the contributed amount")
	}
}

func TestContributeReplayAndProfileLock(t *testing.T) {
	module := campaignservice.NewInMemoryModule(nil, nil)
	campaignID := createTestCampaign(t, module, "founder-1", 10_000, 0)

	first, err := module.Handler.ContributeHandler(context.Background(), campaignID, "funder-1", "idem-c1", httptransport.ContributeRequest{
		Amount:      500,
		RiskProfile: "balanced",
	})
	if err != nil {
		t.Fatalf("contribute failed: %v", err)
	}
	replay, err := module.Handler.ContributeHandler(context.Background(), campaignID, "funder-1", "idem-c1", httptransport.ContributeRequest{
		Amount:      500,
		RiskProfile: "balanced",
	})
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if !replay.Replayed {
		t.Fatalf("expected replayed contribution")
	}
	if replay.TotalRaised != first.TotalRaised {
		t.Fatalf("replay must not double-count: %d vs %d", replay.TotalRaised, first.TotalRaised)
	}

	_, err = module.Handler.ContributeHandler(context.Background(), campaignID, "funder-1", "idem-c2", httptransport.ContributeRequest{
		Amount:      100,
		RiskProfile: "aggressive",
	})
	if !errors.Is(err, domainerrors.ErrRiskProfileLocked) {
		t.Fatalf("expected locked risk profile, got %v", err)
	}

	_, err = module.Handler.ContributeHandler(context.Background(), campaignID, "funder-2", "idem-c3", httptransport.ContributeRequest{
		Amount:      9_501,
		RiskProfile: "balanced",
	})
	if !errors.Is(err, domainerrors.ErrGoalExceeded) {
		t.Fatalf("overshooting contribution must be rejected whole, got %v", err)
	}
	campaign, err := module.Store.GetCampaign(context.Background(), campaignID)
	if err != nil {
		t.Fatalf("get campaign failed: %v", err)
	}
	if campaign.TotalRaised != 500 {
		t.Fatalf("rejected contribution must not move the ledger, got %d", campaign.TotalRaised)
	}
}

func TestCancelOnlyBeforeFirstMilestoneActivity(t *testing.T) {
	module := campaignservice.NewInMemoryModule(nil, nil)
	campaignID := createTestCampaign(t, module, "founder-1", 10_000, 100)
	contribute(t, module, campaignID, "funder-1", 1000, "balanced")

	_, err := module.Handler.CancelCampaignHandler(context.Background(), campaignID, "funder-1")
	if !errors.Is(err, domainerrors.ErrNotFounder) {
		t.Fatalf("only the founder may cancel, got %v", err)
	}

	cancelled, err := module.Handler.CancelCampaignHandler(context.Background(), campaignID, "founder-1")
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != string(entities.CampaignStatusCancelled) {
		t.Fatalf("expected cancelled status, got %s", cancelled.Status)
	}

	refund, err := module.Handler.ClaimRefundHandler(context.Background(), campaignID, "funder-1")
	if err != nil {
		t.Fatalf("refund after cancel failed: %v", err)
	}
	// 1000 back minus the 1% platform fee.
	if refund.Amount != 990 {
		t.Fatalf("expected 990 refund, got %d", refund.Amount)
	}

	second := campaignservice.NewInMemoryModule(nil, nil)
	secondID := createTestCampaign(t, second, "founder-1", 10_000, 0)
	contribute(t, second, secondID, "funder-1", 1000, "balanced")
	if _, err := second.Handler.SubmitEvidenceHandler(context.Background(), secondID, "founder-1", 0, httptransport.SubmitEvidenceRequest{EvidenceRef: "ipfs://m0"}); err != nil {
		t.Fatalf("submit evidence failed: %v", err)
	}
	_, err = second.Handler.CancelCampaignHandler(context.Background(), secondID, "founder-1")
	if !errors.Is(err, domainerrors.ErrCancelNotAllowed) {
		t.Fatalf("cancel after milestone activity must fail, got %v", err)
	}
}

func TestFlagEmergencyEmitsEventWithoutStateChange(t *testing.T) {
	module := campaignservice.NewInMemoryModule(nil, nil)
	campaignID := createTestCampaign(t, module, "founder-1", 10_000, 0)
	contribute(t, module, campaignID, "funder-1", 1000, "balanced")

	err := module.Handler.FlagEmergencyHandler(context.Background(), campaignID, "funder-1", httptransport.EmergencyRequest{Reason: "funds at risk"})
	if !errors.Is(err, domainerrors.ErrNotFounder) {
		t.Fatalf("only the founder may flag, got %v", err)
	}

	if err := module.Handler.FlagEmergencyHandler(context.Background(), campaignID, "founder-1", httptransport.EmergencyRequest{Reason: "funds at risk"}); err != nil {
		t.Fatalf("flag emergency failed: %v", err)
	}
	if events := module.Store.ListOutboxByType("escrow.emergency.flagged"); len(events) != 1 {
		t.Fatalf("expected one emergency event, got %d", len(events))
	}

	campaign, err := module.Store.GetCampaign(context.Background(), campaignID)
	if err != nil {
		t.Fatalf("get campaign failed: %v", err)
	}
	if campaign.Status != entities.CampaignStatusActive {
		t.Fatalf("flagging must not mutate campaign state, got %s", campaign.Status)
	}
}

func TestLateEvidenceSubmissionFailsCampaign(t *testing.T) {
	module := campaignservice.NewInMemoryModule(nil, nil)
	campaignID := createTestCampaign(t, module, "founder-1", 10_000, 0)
	contribute(t, module, campaignID, "funder-1", 1000, "balanced")

	campaign, err := module.Store.GetCampaign(context.Background(), campaignID)
	if err != nil {
		t.Fatalf("get campaign failed: %v", err)
	}
	campaign.Milestones[0].DeadlineAt = time.Now().UTC().Add(-time.Hour)
	if err := module.Store.SaveCampaign(context.Background(), campaign); err != nil {
		t.Fatalf("save campaign failed: %v", err)
	}

	resp, err := module.Handler.SubmitEvidenceHandler(context.Background(), campaignID, "founder-1", 0, httptransport.SubmitEvidenceRequest{EvidenceRef: "ipfs://late"})
	if err != nil {
		t.Fatalf("late submission is a transition, not an error: %v", err)
	}
	if !resp.CampaignFailed {
		t.Fatalf("expected campaign failure on late submission")
	}

	failed := module.Store.ListOutboxByType("escrow.campaign.failed")
	if len(failed) != 1 {
		t.Fatalf("expected one campaign failed event, got %d", len(failed))
	}

	refund, err := module.Handler.ClaimRefundHandler(context.Background(), campaignID, "funder-1")
	if err != nil {
		t.Fatalf("refund after deadline failure failed: %v", err)
	}
	if refund.Amount != 1000 {
		t.Fatalf("no fee configured, expected full 1000 back, got %d", refund.Amount)
	}
}
