package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"fundlock/contexts/escrow-core/campaign-service/application/commands"
	"fundlock/contexts/escrow-core/campaign-service/application/queries"
	"fundlock/contexts/escrow-core/campaign-service/domain/entities"
	httptransport "fundlock/contexts/escrow-core/campaign-service/transport/http"
)

type Handler struct {
	Create     commands.CreateCampaignUseCase
	Contribute commands.ContributeUseCase
	Submit     commands.SubmitEvidenceUseCase
	Vote       commands.CastVoteUseCase
	Resolve    commands.ResolveMilestoneUseCase
	Refund     commands.ClaimRefundUseCase
	Cancel     commands.CancelCampaignUseCase
	Emergency  commands.FlagEmergencyUseCase
	Campaigns  queries.GetCampaignUseCase
	List       queries.ListCampaignsUseCase
	Milestones queries.GetMilestoneUseCase
	Funders    queries.GetFunderUseCase
	Transfers  queries.ListTransfersUseCase
	Logger     *slog.Logger
}

func (h Handler) CreateCampaignHandler(
	ctx context.Context,
	founderID string,
	idempotencyKey string,
	req httptransport.CreateCampaignRequest,
) (httptransport.CampaignResponse, error) {
	plans := make([]entities.MilestonePlan, 0, len(req.Milestones))
	for _, plan := range req.Milestones {
		plans = append(plans, entities.MilestonePlan{
			Description:  plan.Description,
			ReleaseBps:   plan.ReleaseBps,
			DeadlineDays: plan.DeadlineDays,
		})
	}
	result, err := h.Create.Execute(ctx, commands.CreateCampaignCommand{
		FounderID:      founderID,
		IdempotencyKey: idempotencyKey,
		Title:          req.Title,
		Description:    req.Description,
		FundingGoal:    req.FundingGoal,
		PlatformFeeBps: req.PlatformFeeBps,
		Milestones:     plans,
	})
	if err != nil {
		return httptransport.CampaignResponse{}, err
	}
	return mapCampaign(result.Campaign), nil
}

func (h Handler) ContributeHandler(
	ctx context.Context,
	campaignID string,
	funderID string,
	idempotencyKey string,
	req httptransport.ContributeRequest,
) (httptransport.ContributeResponse, error) {
	result, err := h.Contribute.Execute(ctx, commands.ContributeCommand{
		CampaignID:     campaignID,
		FunderID:       funderID,
		IdempotencyKey: idempotencyKey,
		Amount:         req.Amount,
		Profile:        entities.RiskProfile(req.RiskProfile),
	})
	if err != nil {
		return httptransport.ContributeResponse{}, err
	}
	return httptransport.ContributeResponse{
		CampaignID:  result.Campaign.CampaignID,
		FunderID:    result.Funder.FunderID,
		Amount:      req.Amount,
		Committed:   result.Committed,
		Reserve:     result.Reserve,
		TotalRaised: result.Campaign.TotalRaised,
		Replayed:    result.Replayed,
	}, nil
}

func (h Handler) SubmitEvidenceHandler(
	ctx context.Context,
	campaignID string,
	callerID string,
	milestoneIndex int,
	req httptransport.SubmitEvidenceRequest,
) (httptransport.SubmitEvidenceResponse, error) {
	result, err := h.Submit.Execute(ctx, commands.SubmitEvidenceCommand{
		CampaignID:     campaignID,
		CallerID:       callerID,
		MilestoneIndex: milestoneIndex,
		EvidenceRef:    req.EvidenceRef,
	})
	if err != nil {
		return httptransport.SubmitEvidenceResponse{}, err
	}
	milestone := result.Campaign.Milestones[milestoneIndex]
	resp := httptransport.SubmitEvidenceResponse{
		CampaignID:     result.Campaign.CampaignID,
		MilestoneIndex: milestoneIndex,
		Status:         string(milestone.Status),
		CampaignFailed: result.CampaignFailed,
	}
	if !milestone.VotingDeadline.IsZero() {
		resp.VotingDeadline = milestone.VotingDeadline.Format(time.RFC3339)
	}
	return resp, nil
}

func (h Handler) CastVoteHandler(
	ctx context.Context,
	campaignID string,
	funderID string,
	milestoneIndex int,
	req httptransport.CastVoteRequest,
) (httptransport.CastVoteResponse, error) {
	result, err := h.Vote.Execute(ctx, commands.CastVoteCommand{
		CampaignID:     campaignID,
		FunderID:       funderID,
		MilestoneIndex: milestoneIndex,
		Support:        req.Support,
	})
	if err != nil {
		return httptransport.CastVoteResponse{}, err
	}
	return httptransport.CastVoteResponse{
		CampaignID:     result.Campaign.CampaignID,
		FunderID:       funderID,
		MilestoneIndex: milestoneIndex,
		Support:        req.Support,
		Weight:         result.Weight,
	}, nil
}

func (h Handler) ResolveHandler(
	ctx context.Context,
	campaignID string,
	milestoneIndex int,
) (httptransport.ResolveResponse, error) {
	result, err := h.Resolve.Execute(ctx, commands.ResolveMilestoneCommand{
		CampaignID:     campaignID,
		MilestoneIndex: milestoneIndex,
	})
	if err != nil {
		return httptransport.ResolveResponse{}, err
	}
	return httptransport.ResolveResponse{
		CampaignID:        result.Campaign.CampaignID,
		MilestoneIndex:    milestoneIndex,
		Approved:          result.Approved,
		ReleaseAmount:     result.ReleaseAmount,
		ReserveAmount:     result.ReserveAmount,
		YesWeight:         result.YesWeight,
		NoWeight:          result.NoWeight,
		TotalWeight:       result.TotalWeight,
		CampaignFailed:    result.CampaignFailed,
		CampaignCompleted: result.CampaignCompleted,
	}, nil
}

func (h Handler) ClaimRefundHandler(
	ctx context.Context,
	campaignID string,
	funderID string,
) (httptransport.ClaimRefundResponse, error) {
	result, err := h.Refund.Execute(ctx, commands.ClaimRefundCommand{
		CampaignID: campaignID,
		FunderID:   funderID,
	})
	if err != nil {
		return httptransport.ClaimRefundResponse{}, err
	}
	return httptransport.ClaimRefundResponse{
		CampaignID: result.Campaign.CampaignID,
		FunderID:   funderID,
		Amount:     result.Amount,
	}, nil
}

func (h Handler) CancelCampaignHandler(
	ctx context.Context,
	campaignID string,
	callerID string,
) (httptransport.CampaignResponse, error) {
	campaign, err := h.Cancel.Execute(ctx, commands.CancelCampaignCommand{
		CampaignID: campaignID,
		CallerID:   callerID,
	})
	if err != nil {
		return httptransport.CampaignResponse{}, err
	}
	return mapCampaign(campaign), nil
}

func (h Handler) FlagEmergencyHandler(
	ctx context.Context,
	campaignID string,
	callerID string,
	req httptransport.EmergencyRequest,
) error {
	return h.Emergency.Execute(ctx, commands.FlagEmergencyCommand{
		CampaignID: campaignID,
		CallerID:   callerID,
		Reason:     req.Reason,
	})
}

func (h Handler) GetCampaignHandler(ctx context.Context, campaignID string) (httptransport.CampaignResponse, error) {
	campaign, err := h.Campaigns.Execute(ctx, campaignID)
	if err != nil {
		return httptransport.CampaignResponse{}, err
	}
	return mapCampaign(campaign), nil
}

func (h Handler) ListCampaignsHandler(ctx context.Context) ([]httptransport.CampaignResponse, error) {
	campaigns, err := h.List.Execute(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]httptransport.CampaignResponse, 0, len(campaigns))
	for _, campaign := range campaigns {
		items = append(items, mapCampaign(campaign))
	}
	return items, nil
}

func (h Handler) GetMilestoneHandler(
	ctx context.Context,
	campaignID string,
	milestoneIndex int,
) (httptransport.MilestoneResponse, error) {
	milestone, err := h.Milestones.Execute(ctx, campaignID, milestoneIndex)
	if err != nil {
		return httptransport.MilestoneResponse{}, err
	}
	return mapMilestone(milestoneIndex, milestone), nil
}

func (h Handler) GetFunderHandler(
	ctx context.Context,
	campaignID string,
	funderID string,
) (httptransport.FunderResponse, error) {
	view, err := h.Funders.Execute(ctx, campaignID, funderID)
	if err != nil {
		return httptransport.FunderResponse{}, err
	}
	return httptransport.FunderResponse{
		FunderID:          view.Funder.FunderID,
		TotalContribution: view.Funder.TotalContribution,
		Committed:         view.Funder.Committed,
		Reserve:           view.Funder.Reserve,
		RiskProfile:       string(view.Funder.Profile),
		VoteWeight:        view.VoteWeight,
		MissedVotes:       view.Funder.MissedVotes,
		Delinquent:        view.Funder.Delinquent,
		RefundClaimed:     view.Funder.RefundClaimed,
		PendingRefund:     view.PendingRefund,
		RefundableNow:     view.RefundableNow,
	}, nil
}

func (h Handler) ListTransfersHandler(ctx context.Context, campaignID string) ([]httptransport.TransferResponse, error) {
	records, err := h.Transfers.Execute(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	items := make([]httptransport.TransferResponse, 0, len(records))
	for _, rec := range records {
		items = append(items, httptransport.TransferResponse{
			CampaignID:  rec.CampaignID,
			RecipientID: rec.RecipientID,
			Amount:      rec.Amount,
			Reason:      rec.Reason,
			SentAt:      rec.SentAt.Format(time.RFC3339),
		})
	}
	return items, nil
}

func mapCampaign(campaign entities.Campaign) httptransport.CampaignResponse {
	milestones := make([]httptransport.MilestoneResponse, 0, entities.MilestoneCount)
	for i, milestone := range campaign.Milestones {
		milestones = append(milestones, mapMilestone(i, milestone))
	}
	return httptransport.CampaignResponse{
		CampaignID:         campaign.CampaignID,
		FounderID:          campaign.FounderID,
		Title:              campaign.Title,
		Description:        campaign.Description,
		FundingGoal:        campaign.FundingGoal,
		TotalRaised:        campaign.TotalRaised,
		TotalCommittedPool: campaign.TotalCommittedPool,
		TotalReservePool:   campaign.TotalReservePool,
		TotalReleased:      campaign.TotalReleased,
		CurrentMilestone:   campaign.CurrentMilestone,
		Status:             string(campaign.Status),
		PlatformFeeBps:     campaign.PlatformFeeBps,
		FunderCount:        len(campaign.Roster),
		Milestones:         milestones,
	}
}

func mapMilestone(index int, milestone entities.Milestone) httptransport.MilestoneResponse {
	resp := httptransport.MilestoneResponse{
		Index:       index,
		Description: milestone.Description,
		ReleaseBps:  milestone.ReleaseBps,
		DeadlineAt:  milestone.DeadlineAt.Format(time.RFC3339),
		Status:      string(milestone.Status),
		EvidenceRef: milestone.EvidenceRef,
		YesWeight:   milestone.YesWeight,
		NoWeight:    milestone.NoWeight,
		TotalWeight: milestone.TotalWeight,
		Rejections:  milestone.Rejections,
	}
	if !milestone.VotingDeadline.IsZero() {
		resp.VotingDeadline = milestone.VotingDeadline.Format(time.RFC3339)
	}
	return resp
}
