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

type ClaimRefundCommand struct {
	CampaignID string
	FunderID   string
}

type ClaimRefundResult struct {
	Campaign entities.Campaign
	Amount   int64
}

type ClaimRefundUseCase struct {
	Campaigns ports.CampaignRepository
	Transfers ports.TransferGateway
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

// Execute pays one funder their fee-adjusted unreleased committed slice plus
// full reserve, exactly once. The claim flag is staged before the transfer and
// nothing persists if the transfer fails, so a retry later stays possible and
// a re-entrant call during the transfer sees no claimable state.
func (uc ClaimRefundUseCase) Execute(ctx context.Context, cmd ClaimRefundCommand) (ClaimRefundResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	campaign, err := uc.Campaigns.GetCampaign(ctx, strings.TrimSpace(cmd.CampaignID))
	if err != nil {
		return ClaimRefundResult{}, err
	}
	if campaign.Status != entities.CampaignStatusFailed && campaign.Status != entities.CampaignStatusCancelled {
		return ClaimRefundResult{}, domainerrors.ErrCampaignNotRefundable
	}
	funderID := strings.TrimSpace(cmd.FunderID)
	funder, ok := campaign.Funders[funderID]
	if !ok {
		return ClaimRefundResult{}, domainerrors.ErrNotFunder
	}
	if funder.RefundClaimed {
		return ClaimRefundResult{}, domainerrors.ErrRefundAlreadyClaimed
	}
	amount := campaign.RefundAmount(funder)
	if amount == 0 {
		return ClaimRefundResult{}, domainerrors.ErrNothingToRefund
	}

	now := uc.Clock.Now().UTC()
	working := campaign.Clone()
	funder = working.Funders[funderID]
	funder.RefundClaimed = true
	working.Funders[funderID] = funder

	if err := uc.Transfers.Transfer(ctx, working.CampaignID, funderID, amount, "refund"); err != nil {
		logger.Error("refund transfer failed",
			"event", "escrow_refund_transfer_failed",
			"module", "escrow-core/campaign-service",
			"layer", "application",
			"campaign_id", working.CampaignID,
			"funder_id", funderID,
			"amount", amount,
			"error", err.Error(),
		)
		return ClaimRefundResult{}, domainerrors.ErrTransferFailed
	}

	if err := uc.Campaigns.SaveCampaign(ctx, working); err != nil {
		return ClaimRefundResult{}, err
	}
	if err := uc.appendRefundClaimed(ctx, working, funderID, amount, now); err != nil {
		return ClaimRefundResult{}, err
	}

	logger.Info("refund claimed",
		"event", "escrow_refund_claimed",
		"module", "escrow-core/campaign-service",
		"layer", "application",
		"campaign_id", working.CampaignID,
		"funder_id", funderID,
		"amount", amount,
	)
	return ClaimRefundResult{Campaign: working, Amount: amount}, nil
}

func (uc ClaimRefundUseCase) appendRefundClaimed(
	ctx context.Context,
	campaign entities.Campaign,
	funderID string,
	amount int64,
	occurredAt time.Time,
) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newEscrowEnvelope(eventID, "escrow.refund.claimed", campaign.CampaignID, occurredAt, map[string]any{
		"campaign_id": campaign.CampaignID,
		"funder_id":   funderID,
		"amount":      amount,
	})
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}
