package commands

import (
	"context"
	"log/slog"
	"strings"

	application "fundlock/contexts/escrow-core/campaign-service/application"
	"fundlock/contexts/escrow-core/campaign-service/domain/entities"
	domainerrors "fundlock/contexts/escrow-core/campaign-service/domain/errors"
	"fundlock/contexts/escrow-core/campaign-service/ports"
)

type CancelCampaignCommand struct {
	CampaignID string
	CallerID   string
}

type CancelCampaignUseCase struct {
	Campaigns ports.CampaignRepository
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

// Execute cancels a campaign before any milestone has been put to a vote.
// Nothing has been released at that point, so every funder's refund math
// covers their full position.
func (uc CancelCampaignUseCase) Execute(ctx context.Context, cmd CancelCampaignCommand) (entities.Campaign, error) {
	logger := application.ResolveLogger(uc.Logger)

	campaign, err := uc.Campaigns.GetCampaign(ctx, strings.TrimSpace(cmd.CampaignID))
	if err != nil {
		return entities.Campaign{}, err
	}
	if !campaign.IsFounder(cmd.CallerID) {
		return entities.Campaign{}, domainerrors.ErrNotFounder
	}
	if !campaign.IsActive() {
		return entities.Campaign{}, domainerrors.ErrCampaignNotActive
	}
	if campaign.CurrentMilestone != 0 || campaign.Milestones[0].Status != entities.MilestoneStatusPending {
		return entities.Campaign{}, domainerrors.ErrCancelNotAllowed
	}

	now := uc.Clock.Now().UTC()
	working := campaign.Clone()
	working.Status = entities.CampaignStatusCancelled

	if err := uc.Campaigns.SaveCampaign(ctx, working); err != nil {
		return entities.Campaign{}, err
	}
	if uc.Outbox != nil {
		eventID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return entities.Campaign{}, err
		}
		envelope, err := newEscrowEnvelope(eventID, "escrow.campaign.cancelled", working.CampaignID, now, map[string]any{
			"campaign_id":  working.CampaignID,
			"founder_id":   working.FounderID,
			"total_raised": working.TotalRaised,
		})
		if err != nil {
			return entities.Campaign{}, err
		}
		if err := uc.Outbox.AppendOutbox(ctx, envelope); err != nil {
			return entities.Campaign{}, err
		}
	}

	logger.Info("campaign cancelled",
		"event", "escrow_campaign_cancelled",
		"module", "escrow-core/campaign-service",
		"layer", "application",
		"campaign_id", working.CampaignID,
		"founder_id", working.FounderID,
	)
	return working, nil
}
