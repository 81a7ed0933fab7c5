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

type SubmitEvidenceCommand struct {
	CampaignID     string
	CallerID       string
	MilestoneIndex int
	EvidenceRef    string
}

// SubmitEvidenceResult reports either an opened voting window or a
// deadline-driven campaign failure. The failure path is a state transition,
// not an error.
type SubmitEvidenceResult struct {
	Campaign       entities.Campaign
	CampaignFailed bool
}

type SubmitEvidenceUseCase struct {
	Campaigns ports.CampaignRepository
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

// Execute opens a voting window on the current milestone. Milestones unlock
// strictly in order; a submission arriving past the milestone deadline fails
// the whole campaign instead of opening voting.
func (uc SubmitEvidenceUseCase) Execute(ctx context.Context, cmd SubmitEvidenceCommand) (SubmitEvidenceResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	campaign, err := uc.Campaigns.GetCampaign(ctx, strings.TrimSpace(cmd.CampaignID))
	if err != nil {
		return SubmitEvidenceResult{}, err
	}
	if !campaign.IsFounder(cmd.CallerID) {
		return SubmitEvidenceResult{}, domainerrors.ErrNotFounder
	}
	if !campaign.IsActive() {
		return SubmitEvidenceResult{}, domainerrors.ErrCampaignNotActive
	}
	if cmd.MilestoneIndex != campaign.CurrentMilestone {
		return SubmitEvidenceResult{}, domainerrors.ErrWrongMilestone
	}
	if campaign.Milestones[cmd.MilestoneIndex].Status != entities.MilestoneStatusPending {
		return SubmitEvidenceResult{}, domainerrors.ErrMilestoneNotPending
	}

	now := uc.Clock.Now().UTC()
	working := campaign.Clone()
	milestone := working.Milestones[cmd.MilestoneIndex]

	if now.After(milestone.DeadlineAt) {
		// The milestone deadline binds even at submission time.
		working.Status = entities.CampaignStatusFailed
		if err := uc.Campaigns.SaveCampaign(ctx, working); err != nil {
			return SubmitEvidenceResult{}, err
		}
		if err := appendCampaignFailed(ctx, uc.Outbox, uc.IDGen, working, cmd.MilestoneIndex, "milestone_deadline_passed", now); err != nil {
			return SubmitEvidenceResult{}, err
		}
		logger.Info("campaign failed on late submission",
			"event", "escrow_campaign_failed",
			"module", "escrow-core/campaign-service",
			"layer", "application",
			"campaign_id", working.CampaignID,
			"milestone_index", cmd.MilestoneIndex,
			"reason", "milestone_deadline_passed",
		)
		return SubmitEvidenceResult{Campaign: working, CampaignFailed: true}, nil
	}

	milestone.Status = entities.MilestoneStatusVoting
	milestone.EvidenceRef = strings.TrimSpace(cmd.EvidenceRef)
	milestone.SubmittedAt = now
	milestone.VotingDeadline = now.Add(entities.VotingWindow)
	milestone.YesWeight = 0
	milestone.NoWeight = 0
	milestone.TotalWeight = 0
	working.Milestones[cmd.MilestoneIndex] = milestone
	for id, funder := range working.Funders {
		funder.VotedMilestones[cmd.MilestoneIndex] = false
		working.Funders[id] = funder
	}

	if err := uc.Campaigns.SaveCampaign(ctx, working); err != nil {
		return SubmitEvidenceResult{}, err
	}
	if err := uc.appendVotingOpened(ctx, working, cmd.MilestoneIndex, now); err != nil {
		return SubmitEvidenceResult{}, err
	}

	logger.Info("milestone voting opened",
		"event", "escrow_milestone_voting_opened",
		"module", "escrow-core/campaign-service",
		"layer", "application",
		"campaign_id", working.CampaignID,
		"milestone_index", cmd.MilestoneIndex,
		"evidence_ref", milestone.EvidenceRef,
		"voting_deadline", milestone.VotingDeadline.Format(time.RFC3339),
	)
	return SubmitEvidenceResult{Campaign: working}, nil
}

func (uc SubmitEvidenceUseCase) appendVotingOpened(
	ctx context.Context,
	campaign entities.Campaign,
	index int,
	occurredAt time.Time,
) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	milestone := campaign.Milestones[index]
	envelope, err := newEscrowEnvelope(eventID, "escrow.milestone.voting_opened", campaign.CampaignID, occurredAt, map[string]any{
		"campaign_id":     campaign.CampaignID,
		"milestone_index": index,
		"evidence_ref":    milestone.EvidenceRef,
		"voting_deadline": milestone.VotingDeadline.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

// appendCampaignFailed is shared by the late-submission path and resolution
// rejections; both report failure as a lifecycle event.
func appendCampaignFailed(
	ctx context.Context,
	outbox ports.OutboxWriter,
	idGen ports.IDGenerator,
	campaign entities.Campaign,
	index int,
	reason string,
	occurredAt time.Time,
) error {
	if outbox == nil {
		return nil
	}
	eventID, err := idGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newEscrowEnvelope(eventID, "escrow.campaign.failed", campaign.CampaignID, occurredAt, map[string]any{
		"campaign_id":     campaign.CampaignID,
		"milestone_index": index,
		"reason":          reason,
	})
	if err != nil {
		return err
	}
	return outbox.AppendOutbox(ctx, envelope)
}
