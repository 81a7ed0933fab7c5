package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "fundlock/contexts/escrow-core/campaign-service/application"
	"fundlock/contexts/escrow-core/campaign-service/domain/entities"
	domainerrors "fundlock/contexts/escrow-core/campaign-service/domain/errors"
	"fundlock/contexts/escrow-core/campaign-service/ports"
)

type ResolveMilestoneCommand struct {
	CampaignID     string
	MilestoneIndex int
}

type ResolveResult struct {
	Campaign          entities.Campaign
	Approved          bool
	CampaignFailed    bool
	CampaignCompleted bool
	ReleaseAmount     int64
	ReserveAmount     int64
	YesWeight         int64
	NoWeight          int64
	TotalWeight       int64
	NewDelinquents    []string
}

type ResolveMilestoneUseCase struct {
	Campaigns ports.CampaignRepository
	Transfers ports.TransferGateway
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

// Execute closes an expired voting window. Anyone may call it; a milestone
// that already resolved is no longer in voting, so a second call rejects
// without further effect.
func (uc ResolveMilestoneUseCase) Execute(ctx context.Context, cmd ResolveMilestoneCommand) (ResolveResult, error) {
	campaign, err := uc.Campaigns.GetCampaign(ctx, strings.TrimSpace(cmd.CampaignID))
	if err != nil {
		return ResolveResult{}, err
	}
	if cmd.MilestoneIndex < 0 || cmd.MilestoneIndex >= entities.MilestoneCount {
		return ResolveResult{}, domainerrors.ErrWrongMilestone
	}
	milestone := campaign.Milestones[cmd.MilestoneIndex]
	if milestone.Status != entities.MilestoneStatusVoting {
		return ResolveResult{}, domainerrors.ErrMilestoneNotVoting
	}
	now := uc.Clock.Now().UTC()
	if !now.After(milestone.VotingDeadline) {
		return ResolveResult{}, domainerrors.ErrVotingStillOpen
	}
	deps := resolutionDeps{
		campaigns: uc.Campaigns,
		transfers: uc.Transfers,
		outbox:    uc.Outbox,
		idGen:     uc.IDGen,
		logger:    uc.Logger,
	}
	return finalizeVoting(ctx, deps, campaign, cmd.MilestoneIndex, now)
}

type resolutionDeps struct {
	campaigns ports.CampaignRepository
	transfers ports.TransferGateway
	outbox    ports.OutboxWriter
	idGen     ports.IDGenerator
	logger    *slog.Logger
}

// finalizeVoting runs the full resolution pipeline on a staged copy of the
// aggregate: delinquency sweep, tally, release or rejection, and the campaign
// completion settlement. External transfers happen after all staged mutations
// and before anything persists; a transfer error aborts the whole resolution
// with no state change.
func finalizeVoting(
	ctx context.Context,
	deps resolutionDeps,
	campaign entities.Campaign,
	index int,
	now time.Time,
) (ResolveResult, error) {
	logger := application.ResolveLogger(deps.logger)
	working := campaign.Clone()
	milestone := working.Milestones[index]

	// Delinquency sweep in roster (first-contribution) order. The auto-yes
	// credit is recomputed against the live whale cap every resolution; it is
	// never a stored vote.
	newDelinquents := make([]string, 0)
	for _, funderID := range working.Roster {
		funder := working.Funders[funderID]
		if funder.VotedMilestones[index] {
			continue
		}
		funder.MissedVotes++
		if funder.MissedVotes >= entities.DelinquencyThreshold {
			if !funder.Delinquent {
				newDelinquents = append(newDelinquents, funderID)
			}
			funder.Delinquent = true
			weight := working.VoteWeight(funder)
			milestone.YesWeight += weight
			milestone.TotalWeight += weight
		}
		working.Funders[funderID] = funder
	}

	approved := entities.ApprovalReached(milestone.YesWeight, milestone.NoWeight)
	result := ResolveResult{
		Approved:       approved,
		YesWeight:      milestone.YesWeight,
		NoWeight:       milestone.NoWeight,
		TotalWeight:    milestone.TotalWeight,
		NewDelinquents: newDelinquents,
	}

	if approved {
		milestone.Status = entities.MilestoneStatusCompleted
		working.Milestones[index] = milestone
		release := working.ReleaseAmount(index)
		working.TotalReleased += release
		result.ReleaseAmount = release

		if index == entities.MilestoneCount-1 {
			working.Status = entities.CampaignStatusCompleted
			result.CampaignCompleted = true
			result.ReserveAmount = working.TotalReservePool
		} else {
			working.CurrentMilestone = index + 1
		}

		if release > 0 {
			if err := deps.transfers.Transfer(ctx, working.CampaignID, working.FounderID, release, "milestone_release"); err != nil {
				logger.Error("milestone release transfer failed",
					"event", "escrow_release_transfer_failed",
					"module", "escrow-core/campaign-service",
					"layer", "application",
					"campaign_id", working.CampaignID,
					"milestone_index", index,
					"amount", release,
					"error", err.Error(),
				)
				return ResolveResult{}, domainerrors.ErrTransferFailed
			}
		}
		if result.CampaignCompleted && result.ReserveAmount > 0 {
			if err := deps.transfers.Transfer(ctx, working.CampaignID, working.FounderID, result.ReserveAmount, "reserve_release"); err != nil {
				logger.Error("reserve release transfer failed",
					"event", "escrow_reserve_transfer_failed",
					"module", "escrow-core/campaign-service",
					"layer", "application",
					"campaign_id", working.CampaignID,
					"amount", result.ReserveAmount,
					"error", err.Error(),
				)
				return ResolveResult{}, domainerrors.ErrTransferFailed
			}
		}

		if err := deps.campaigns.SaveCampaign(ctx, working); err != nil {
			return ResolveResult{}, err
		}
		if err := appendMilestoneResolved(ctx, deps, working, index, result, now); err != nil {
			return ResolveResult{}, err
		}
		logger.Info("milestone approved and released",
			"event", "escrow_milestone_released",
			"module", "escrow-core/campaign-service",
			"layer", "application",
			"campaign_id", working.CampaignID,
			"milestone_index", index,
			"release_amount", release,
			"yes_weight", milestone.YesWeight,
			"no_weight", milestone.NoWeight,
			"campaign_completed", result.CampaignCompleted,
		)
		result.Campaign = working
		return result, nil
	}

	milestone.Rejections++
	if milestone.Rejections >= entities.MaxRejections {
		milestone.Status = entities.MilestoneStatusRejected
		working.Milestones[index] = milestone
		working.Status = entities.CampaignStatusFailed
		result.CampaignFailed = true
	} else {
		// First rejection: back to pending, one resubmission allowed. The
		// evidence reference stays on record.
		milestone.Status = entities.MilestoneStatusPending
		working.Milestones[index] = milestone
	}

	if err := deps.campaigns.SaveCampaign(ctx, working); err != nil {
		return ResolveResult{}, err
	}
	if err := appendMilestoneResolved(ctx, deps, working, index, result, now); err != nil {
		return ResolveResult{}, err
	}
	if result.CampaignFailed {
		if err := appendCampaignFailed(ctx, deps.outbox, deps.idGen, working, index, "milestone_rejected_twice", now); err != nil {
			return ResolveResult{}, err
		}
	}
	logger.Info("milestone rejected",
		"event", "escrow_milestone_rejected",
		"module", "escrow-core/campaign-service",
		"layer", "application",
		"campaign_id", working.CampaignID,
		"milestone_index", index,
		"rejections", milestone.Rejections,
		"yes_weight", milestone.YesWeight,
		"no_weight", milestone.NoWeight,
		"campaign_failed", result.CampaignFailed,
	)
	result.Campaign = working
	return result, nil
}

func appendMilestoneResolved(
	ctx context.Context,
	deps resolutionDeps,
	campaign entities.Campaign,
	index int,
	result ResolveResult,
	occurredAt time.Time,
) error {
	if deps.outbox == nil {
		return nil
	}
	eventID, err := deps.idGen.NewID(ctx)
	if err != nil {
		return err
	}
	eventType := "escrow.milestone.rejected"
	if result.Approved {
		eventType = "escrow.milestone.completed"
	}
	envelope, err := newEscrowEnvelope(eventID, eventType, campaign.CampaignID, occurredAt, map[string]any{
		"campaign_id":        campaign.CampaignID,
		"milestone_index":    index,
		"yes_weight":         result.YesWeight,
		"no_weight":          result.NoWeight,
		"total_weight":       result.TotalWeight,
		"release_amount":     result.ReleaseAmount,
		"new_delinquents":    result.NewDelinquents,
		"campaign_completed": result.CampaignCompleted,
	})
	if err != nil {
		return err
	}
	if err := deps.outbox.AppendOutbox(ctx, envelope); err != nil {
		return err
	}
	if !result.CampaignCompleted {
		return nil
	}
	completionID, err := deps.idGen.NewID(ctx)
	if err != nil {
		return err
	}
	completion, err := newEscrowEnvelope(completionID, "escrow.campaign.completed", campaign.CampaignID, occurredAt, map[string]any{
		"campaign_id":    campaign.CampaignID,
		"reserve_amount": result.ReserveAmount,
		"total_released": campaign.TotalReleased,
	})
	if err != nil {
		return err
	}
	return deps.outbox.AppendOutbox(ctx, completion)
}
