package queries

import (
	"context"
	"log/slog"
	"strings"

	"fundlock/contexts/escrow-core/campaign-service/domain/entities"
	domainerrors "fundlock/contexts/escrow-core/campaign-service/domain/errors"
	"fundlock/contexts/escrow-core/campaign-service/ports"
)

type GetCampaignUseCase struct {
	Campaigns ports.CampaignRepository
	Logger    *slog.Logger
}

func (uc GetCampaignUseCase) Execute(ctx context.Context, campaignID string) (entities.Campaign, error) {
	return uc.Campaigns.GetCampaign(ctx, strings.TrimSpace(campaignID))
}

type GetMilestoneUseCase struct {
	Campaigns ports.CampaignRepository
	Logger    *slog.Logger
}

func (uc GetMilestoneUseCase) Execute(ctx context.Context, campaignID string, index int) (entities.Milestone, error) {
	if index < 0 || index >= entities.MilestoneCount {
		return entities.Milestone{}, domainerrors.ErrWrongMilestone
	}
	campaign, err := uc.Campaigns.GetCampaign(ctx, strings.TrimSpace(campaignID))
	if err != nil {
		return entities.Milestone{}, err
	}
	return campaign.Milestones[index], nil
}

type GetFunderUseCase struct {
	Campaigns ports.CampaignRepository
	Logger    *slog.Logger
}

// FunderView augments the stored record with the live capped vote weight and
// the refund the funder would receive if the campaign failed right now.
type FunderView struct {
	Funder         entities.Funder
	VoteWeight     int64
	PendingRefund  int64
	RefundableNow  bool
	CampaignStatus entities.CampaignStatus
}

func (uc GetFunderUseCase) Execute(ctx context.Context, campaignID string, funderID string) (FunderView, error) {
	campaign, err := uc.Campaigns.GetCampaign(ctx, strings.TrimSpace(campaignID))
	if err != nil {
		return FunderView{}, err
	}
	funder, ok := campaign.Funders[strings.TrimSpace(funderID)]
	if !ok {
		return FunderView{}, domainerrors.ErrNotFunder
	}
	refundable := campaign.Status == entities.CampaignStatusFailed ||
		campaign.Status == entities.CampaignStatusCancelled
	return FunderView{
		Funder:         funder,
		VoteWeight:     campaign.VoteWeight(funder),
		PendingRefund:  campaign.RefundAmount(funder),
		RefundableNow:  refundable && !funder.RefundClaimed,
		CampaignStatus: campaign.Status,
	}, nil
}

type ListCampaignsUseCase struct {
	Campaigns ports.CampaignRepository
	Logger    *slog.Logger
}

func (uc ListCampaignsUseCase) Execute(ctx context.Context) ([]entities.Campaign, error) {
	return uc.Campaigns.ListCampaigns(ctx)
}

type ListTransfersUseCase struct {
	Campaigns ports.CampaignRepository
	Transfers ports.TransferLog
	Logger    *slog.Logger
}

func (uc ListTransfersUseCase) Execute(ctx context.Context, campaignID string) ([]ports.TransferRecord, error) {
	campaignID = strings.TrimSpace(campaignID)
	if _, err := uc.Campaigns.GetCampaign(ctx, campaignID); err != nil {
		return nil, err
	}
	return uc.Transfers.ListTransfers(ctx, campaignID)
}
