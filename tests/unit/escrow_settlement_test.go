package unit

import (
	"context"
	"errors"
	"testing"

	campaignservice "fundlock/contexts/escrow-core/campaign-service"
	"fundlock/contexts/escrow-core/campaign-service/domain/entities"
	domainerrors "fundlock/contexts/escrow-core/campaign-service/domain/errors"
	httptransport "fundlock/contexts/escrow-core/campaign-service/transport/http"
)

func approveMilestone(t *testing.T, module campaignservice.Module, campaignID, founderID string, index int) httptransport.ResolveResponse {
	t.Helper()
	openVoting(t, module, campaignID, founderID, index)
	if _, err := module.Handler.CastVoteHandler(context.Background(), campaignID, "funder-1", index, httptransport.CastVoteRequest{Support: true}); err != nil {
		t.Fatalf("vote on milestone %d failed: %v", index, err)
	}
	forceVotingExpired(t, module, campaignID, index)
	resp, err := module.Handler.ResolveHandler(context.Background(), campaignID, index)
	if err != nil {
		t.Fatalf("resolve milestone %d failed: %v", index, err)
	}
	if !resp.Approved {
		t.Fatalf("milestone %d should have been approved", index)
	}
	return resp
}

func TestFiveApprovalsCompleteCampaignAndReleaseEverything(t *testing.T) {
	module := campaignservice.NewInMemoryModule(nil, nil)
	campaignID := createTestCampaign(t, module, "founder-1", 1_000_000, 0)
	contribute(t, module, campaignID, "funder-1", 1000, "balanced")

	// Release schedule over the 700 committed pool: 70, 105, 140, 175, 210.
	expected := []int64{70, 105, 140, 175, 210}
	var releasedSum int64
	for index := 0; index < entities.MilestoneCount; index++ {
		resp := approveMilestone(t, module, campaignID, "founder-1", index)
		if resp.ReleaseAmount != expected[index] {
			t.Fatalf("milestone %d release: expected %d, got %d", index, expected[index], resp.ReleaseAmount)
		}
		releasedSum += resp.ReleaseAmount
		if index < entities.MilestoneCount-1 {
			if resp.CampaignCompleted {
				t.Fatalf("campaign must not complete before the last milestone")
			}
		} else {
			if !resp.CampaignCompleted {
				t.Fatalf("last approval should complete the campaign")
			}
			if resp.ReserveAmount != 300 {
				t.Fatalf("reserve payout should be 300, got %d", resp.ReserveAmount)
			}
		}
	}
	if releasedSum != 700 {
		t.Fatalf("releases must exhaust the committed pool, got %d", releasedSum)
	}

	campaign, err := module.Store.GetCampaign(context.Background(), campaignID)
	if err != nil {
		t.Fatalf("get campaign failed: %v", err)
	}
	if campaign.Status != entities.CampaignStatusCompleted {
		t.Fatalf("expected completed campaign, got %s", campaign.Status)
	}
	if campaign.TotalReleased != 700 {
		t.Fatalf("total released should be 700, got %d", campaign.TotalReleased)
	}

	// Six founder payouts in all: five milestone releases plus the reserve.
	records := module.Transfers.Records()
	if len(records) != 6 {
		t.Fatalf("expected 6 transfers, got %d", len(records))
	}
	last := records[len(records)-1]
	if last.Reason != "reserve_release" || last.Amount != 300 || last.RecipientID != "founder-1" {
		t.Fatalf("unexpected final transfer %+v", last)
	}

	if events := module.Store.ListOutboxByType("escrow.campaign.completed"); len(events) != 1 {
		t.Fatalf("expected one completion event, got %d", len(events))
	}

	_, err = module.Handler.ClaimRefundHandler(context.Background(), campaignID, "funder-1")
	if !errors.Is(err, domainerrors.ErrCampaignNotRefundable) {
		t.Fatalf("completed campaigns are not refundable, got %v", err)
	}
}

func TestDoubleRejectionFailsCampaignAndRefundsFeeAdjusted(t *testing.T) {
	module := campaignservice.NewInMemoryModule(nil, nil)
	campaignID := createTestCampaign(t, module, "founder-1", 1_000_000, 250)
	contribute(t, module, campaignID, "funder-1", 1000, "balanced")

	for round := 0; round < 2; round++ {
		openVoting(t, module, campaignID, "founder-1", 0)
		if _, err := module.Handler.CastVoteHandler(context.Background(), campaignID, "funder-1", 0, httptransport.CastVoteRequest{Support: false}); err != nil {
			t.Fatalf("round %d vote failed: %v", round, err)
		}
		forceVotingExpired(t, module, campaignID, 0)
		resp, err := module.Handler.ResolveHandler(context.Background(), campaignID, 0)
		if err != nil {
			t.Fatalf("round %d resolve failed: %v", round, err)
		}
		if resp.Approved {
			t.Fatalf("round %d must reject", round)
		}
		if round == 0 && resp.CampaignFailed {
			t.Fatalf("one rejection must not fail the campaign")
		}
		if round == 1 && !resp.CampaignFailed {
			t.Fatalf("second rejection must fail the campaign")
		}
	}

	campaign, err := module.Store.GetCampaign(context.Background(), campaignID)
	if err != nil {
		t.Fatalf("get campaign failed: %v", err)
	}
	if campaign.Status != entities.CampaignStatusFailed {
		t.Fatalf("expected failed campaign, got %s", campaign.Status)
	}
	if campaign.Milestones[0].Status != entities.MilestoneStatusRejected {
		t.Fatalf("twice-rejected milestone should be terminal, got %s", campaign.Milestones[0].Status)
	}

	refund, err := module.Handler.ClaimRefundHandler(context.Background(), campaignID, "funder-1")
	if err != nil {
		t.Fatalf("refund failed: %v", err)
	}
	// Nothing released, so the full 1000 comes back minus the 2.5% fee.
	if refund.Amount != 975 {
		t.Fatalf("expected 975 refund, got %d", refund.Amount)
	}

	_, err = module.Handler.ClaimRefundHandler(context.Background(), campaignID, "funder-1")
	if !errors.Is(err, domainerrors.ErrRefundAlreadyClaimed) {
		t.Fatalf("second claim must be rejected, got %v", err)
	}

	if events := module.Store.ListOutboxByType("escrow.refund.claimed"); len(events) != 1 {
		t.Fatalf("expected exactly one refund event, got %d", len(events))
	}
}

func TestRefundExcludesAlreadyReleasedCommittedSlices(t *testing.T) {
	module := campaignservice.NewInMemoryModule(nil, nil)
	campaignID := createTestCampaign(t, module, "founder-1", 1_000_000, 0)
	contribute(t, module, campaignID, "funder-1", 1000, "balanced")

	// Milestone 0 releases 70 of the 700 committed slice, then milestone 1
	// gets rejected twice and kills the campaign.
	approveMilestone(t, module, campaignID, "founder-1", 0)
	for round := 0; round < 2; round++ {
		openVoting(t, module, campaignID, "founder-1", 1)
		if _, err := module.Handler.CastVoteHandler(context.Background(), campaignID, "funder-1", 1, httptransport.CastVoteRequest{Support: false}); err != nil {
			t.Fatalf("round %d vote failed: %v", round, err)
		}
		forceVotingExpired(t, module, campaignID, 1)
		if _, err := module.Handler.ResolveHandler(context.Background(), campaignID, 1); err != nil {
			t.Fatalf("round %d resolve failed: %v", round, err)
		}
	}

	refund, err := module.Handler.ClaimRefundHandler(context.Background(), campaignID, "funder-1")
	if err != nil {
		t.Fatalf("refund failed: %v", err)
	}
	// 700 committed minus the 70 already released, plus the 300 reserve.
	if refund.Amount != 930 {
		t.Fatalf("expected 930 refund, got %d", refund.Amount)
	}
}

func TestTransferFailureLeavesNoPartialState(t *testing.T) {
	module := campaignservice.NewInMemoryModule(nil, nil)
	campaignID := createTestCampaign(t, module, "founder-1", 1_000_000, 0)
	contribute(t, module, campaignID, "funder-1", 1000, "balanced")
	openVoting(t, module, campaignID, "founder-1", 0)
	if _, err := module.Handler.CastVoteHandler(context.Background(), campaignID, "funder-1", 0, httptransport.CastVoteRequest{Support: true}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	forceVotingExpired(t, module, campaignID, 0)

	module.Transfers.FailNext(1)
	_, err := module.Handler.ResolveHandler(context.Background(), campaignID, 0)
	if !errors.Is(err, domainerrors.ErrTransferFailed) {
		t.Fatalf("expected transfer failure, got %v", err)
	}

	campaign, err := module.Store.GetCampaign(context.Background(), campaignID)
	if err != nil {
		t.Fatalf("get campaign failed: %v", err)
	}
	if campaign.Milestones[0].Status != entities.MilestoneStatusVoting {
		t.Fatalf("failed transfer must leave the milestone in voting, got %s", campaign.Milestones[0].Status)
	}
	if campaign.TotalReleased != 0 || campaign.CurrentMilestone != 0 {
		t.Fatalf("failed transfer must leave the ledger untouched")
	}
	if len(module.Transfers.Records()) != 0 {
		t.Fatalf("no transfer should have been recorded")
	}

	// The gateway recovers and the same resolution succeeds on retry.
	resp, err := module.Handler.ResolveHandler(context.Background(), campaignID, 0)
	if err != nil {
		t.Fatalf("retry resolve failed: %v", err)
	}
	if !resp.Approved || resp.ReleaseAmount != 70 {
		t.Fatalf("retry should approve and release 70, got %v/%d", resp.Approved, resp.ReleaseAmount)
	}

	transfers, err := module.Handler.ListTransfersHandler(context.Background(), campaignID)
	if err != nil {
		t.Fatalf("list transfers failed: %v", err)
	}
	if len(transfers) != 1 || transfers[0].Amount != 70 || transfers[0].Reason != "milestone_release" {
		t.Fatalf("unexpected transfer history %+v", transfers)
	}
}

func TestRefundTransferFailureKeepsClaimOpen(t *testing.T) {
	module := campaignservice.NewInMemoryModule(nil, nil)
	campaignID := createTestCampaign(t, module, "founder-1", 1_000_000, 0)
	contribute(t, module, campaignID, "funder-1", 1000, "balanced")
	_, err := module.Handler.CancelCampaignHandler(context.Background(), campaignID, "founder-1")
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	module.Transfers.FailNext(1)
	_, err = module.Handler.ClaimRefundHandler(context.Background(), campaignID, "funder-1")
	if !errors.Is(err, domainerrors.ErrTransferFailed) {
		t.Fatalf("expected transfer failure, got %v", err)
	}

	refund, err := module.Handler.ClaimRefundHandler(context.Background(), campaignID, "funder-1")
	if err != nil {
		t.Fatalf("retry after outage must succeed: %v", err)
	}
	if refund.Amount != 1000 {
		t.Fatalf("expected full 1000 refund, got %d", refund.Amount)
	}
}

func TestDelinquentFunderStillGetsRefund(t *testing.T) {
	module := campaignservice.NewInMemoryModule(nil, nil)
	campaignID := createTestCampaign(t, module, "founder-1", 1_000_000, 0)
	contribute(t, module, campaignID, "funder-1", 1000, "balanced")
	contribute(t, module, campaignID, "absent", 500, "conservative")

	for round := 0; round < 2; round++ {
		openVoting(t, module, campaignID, "founder-1", 0)
		if _, err := module.Handler.CastVoteHandler(context.Background(), campaignID, "funder-1", 0, httptransport.CastVoteRequest{Support: false}); err != nil {
			t.Fatalf("round %d vote failed: %v", round, err)
		}
		forceVotingExpired(t, module, campaignID, 0)
		if _, err := module.Handler.ResolveHandler(context.Background(), campaignID, 0); err != nil {
			t.Fatalf("round %d resolve failed: %v", round, err)
		}
	}

	// Delinquency changes vote accounting only, never refund entitlement.
	refund, err := module.Handler.ClaimRefundHandler(context.Background(), campaignID, "absent")
	if err != nil {
		t.Fatalf("delinquent refund failed: %v", err)
	}
	if refund.Amount != 500 {
		t.Fatalf("expected 500 refund, got %d", refund.Amount)
	}
}
