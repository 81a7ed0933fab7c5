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

type CastVoteCommand struct {
	CampaignID     string
	FunderID       string
	MilestoneIndex int
	Support        bool
}

type CastVoteResult struct {
	Campaign entities.Campaign
	Weight   int64
}

type CastVoteUseCase struct {
	Campaigns ports.CampaignRepository
	Transfers ports.TransferGateway
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

// Execute records one funder's vote at their whale-capped weight. A vote
// arriving after the deadline does not count; it triggers resolution of the
// window and then reports ErrVotingClosed to the caller.
func (uc CastVoteUseCase) Execute(ctx context.Context, cmd CastVoteCommand) (CastVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	campaign, err := uc.Campaigns.GetCampaign(ctx, strings.TrimSpace(cmd.CampaignID))
	if err != nil {
		return CastVoteResult{}, err
	}
	funderID := strings.TrimSpace(cmd.FunderID)
	funder, ok := campaign.Funders[funderID]
	if !ok || funder.TotalContribution == 0 {
		return CastVoteResult{}, domainerrors.ErrNotFunder
	}
	if cmd.MilestoneIndex < 0 || cmd.MilestoneIndex >= entities.MilestoneCount {
		return CastVoteResult{}, domainerrors.ErrWrongMilestone
	}
	milestone := campaign.Milestones[cmd.MilestoneIndex]
	if milestone.Status != entities.MilestoneStatusVoting {
		return CastVoteResult{}, domainerrors.ErrMilestoneNotVoting
	}

	now := uc.Clock.Now().UTC()
	if now.After(milestone.VotingDeadline) {
		deps := resolutionDeps{
			campaigns: uc.Campaigns,
			transfers: uc.Transfers,
			outbox:    uc.Outbox,
			idGen:     uc.IDGen,
			logger:    uc.Logger,
		}
		if _, err := finalizeVoting(ctx, deps, campaign, cmd.MilestoneIndex, now); err != nil {
			return CastVoteResult{}, err
		}
		return CastVoteResult{}, domainerrors.ErrVotingClosed
	}
	if funder.VotedMilestones[cmd.MilestoneIndex] {
		return CastVoteResult{}, domainerrors.ErrAlreadyVoted
	}

	working := campaign.Clone()
	weight := working.VoteWeight(funder)
	funder = working.Funders[funderID]
	funder.VotedMilestones[cmd.MilestoneIndex] = true
	funder.MissedVotes = 0
	funder.Delinquent = false
	working.Funders[funderID] = funder

	milestone = working.Milestones[cmd.MilestoneIndex]
	if cmd.Support {
		milestone.YesWeight += weight
	} else {
		milestone.NoWeight += weight
	}
	milestone.TotalWeight += weight
	working.Milestones[cmd.MilestoneIndex] = milestone

	if err := uc.Campaigns.SaveCampaign(ctx, working); err != nil {
		return CastVoteResult{}, err
	}
	if err := uc.appendVoteCast(ctx, working, funderID, cmd, weight, now); err != nil {
		return CastVoteResult{}, err
	}

	logger.Info("milestone vote cast",
		"event", "escrow_vote_cast",
		"module", "escrow-core/campaign-service",
		"layer", "application",
		"campaign_id", working.CampaignID,
		"funder_id", funderID,
		"milestone_index", cmd.MilestoneIndex,
		"support", cmd.Support,
		"weight", weight,
	)
	return CastVoteResult{Campaign: working, Weight: weight}, nil
}

func (uc CastVoteUseCase) appendVoteCast(
	ctx context.Context,
	campaign entities.Campaign,
	funderID string,
	cmd CastVoteCommand,
	weight int64,
	occurredAt time.Time,
) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newEscrowEnvelope(eventID, "escrow.vote.cast", campaign.CampaignID, occurredAt, map[string]any{
		"campaign_id":     campaign.CampaignID,
		"funder_id":       funderID,
		"milestone_index": cmd.MilestoneIndex,
		"support":         cmd.Support,
		"weight":          weight,
	})
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}
