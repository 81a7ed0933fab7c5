package commands

import (
	"context"
	"log/slog"
	"strings"

	application "fundlock/contexts/escrow-core/campaign-service/application"
	domainerrors "fundlock/contexts/escrow-core/campaign-service/domain/errors"
	"fundlock/contexts/escrow-core/campaign-service/ports"
)

type FlagEmergencyCommand struct {
	CampaignID string
	CallerID   string
	Reason     string
}

type FlagEmergencyUseCase struct {
	Campaigns ports.CampaignRepository
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

// Execute emits an emergency notification for off-platform review. It is a
// notification hook only: campaign state is read for the guards and never
// mutated.
func (uc FlagEmergencyUseCase) Execute(ctx context.Context, cmd FlagEmergencyCommand) error {
	logger := application.ResolveLogger(uc.Logger)

	campaign, err := uc.Campaigns.GetCampaign(ctx, strings.TrimSpace(cmd.CampaignID))
	if err != nil {
		return err
	}
	if !campaign.IsFounder(cmd.CallerID) {
		return domainerrors.ErrNotFounder
	}

	now := uc.Clock.Now().UTC()
	if uc.Outbox != nil {
		eventID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return err
		}
		envelope, err := newEscrowEnvelope(eventID, "escrow.emergency.flagged", campaign.CampaignID, now, map[string]any{
			"campaign_id": campaign.CampaignID,
			"founder_id":  campaign.FounderID,
			"reason":      strings.TrimSpace(cmd.Reason),
		})
		if err != nil {
			return err
		}
		if err := uc.Outbox.AppendOutbox(ctx, envelope); err != nil {
			return err
		}
	}

	logger.Warn("emergency flagged",
		"event", "escrow_emergency_flagged",
		"module", "escrow-core/campaign-service",
		"layer", "application",
		"campaign_id", campaign.CampaignID,
		"reason", strings.TrimSpace(cmd.Reason),
	)
	return nil
}
