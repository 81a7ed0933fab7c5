package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	application "fundlock/contexts/escrow-core/campaign-service/application"
	"fundlock/contexts/escrow-core/campaign-service/domain/entities"
	domainerrors "fundlock/contexts/escrow-core/campaign-service/domain/errors"
	"fundlock/contexts/escrow-core/campaign-service/ports"
)

// CreateCampaignCommand is the factory input: identity of the founder plus the
// full five-slot milestone plan, fixed for the campaign's lifetime.
type CreateCampaignCommand struct {
	FounderID      string
	IdempotencyKey string
	Title          string
	Description    string
	FundingGoal    int64
	PlatformFeeBps int64
	Milestones     []entities.MilestonePlan
}

type CreateCampaignResult struct {
	Campaign entities.Campaign
	Replayed bool
}

type CreateCampaignUseCase struct {
	Campaigns      ports.CampaignRepository
	Idempotency    ports.IdempotencyStore
	Outbox         ports.OutboxWriter
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

func (uc CreateCampaignUseCase) Execute(ctx context.Context, cmd CreateCampaignCommand) (CreateCampaignResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	if strings.TrimSpace(cmd.IdempotencyKey) == "" {
		return CreateCampaignResult{}, domainerrors.ErrIdempotencyKeyRequired
	}
	if strings.TrimSpace(cmd.FounderID) == "" ||
		strings.TrimSpace(cmd.Title) == "" ||
		cmd.FundingGoal <= 0 ||
		cmd.PlatformFeeBps < 0 ||
		cmd.PlatformFeeBps > entities.BasisPointDenominator ||
		!entities.ValidMilestonePlans(cmd.Milestones) {
		logger.Warn("campaign create validation failed",
			"event", "escrow_campaign_create_validation_failed",
			"module", "escrow-core/campaign-service",
			"layer", "application",
			"founder_id", strings.TrimSpace(cmd.FounderID),
		)
		return CreateCampaignResult{}, domainerrors.ErrInvalidCampaignInput
	}

	now := uc.Clock.Now().UTC()
	requestHash := hashCreateCampaignCommand(cmd)
	if record, found, err := uc.Idempotency.Get(ctx, cmd.IdempotencyKey, now); err != nil {
		return CreateCampaignResult{}, err
	} else if found {
		if record.RequestHash != requestHash {
			return CreateCampaignResult{}, domainerrors.ErrIdempotencyConflict
		}
		campaign, err := uc.Campaigns.GetCampaign(ctx, record.CampaignID)
		if err != nil {
			return CreateCampaignResult{}, err
		}
		return CreateCampaignResult{Campaign: campaign, Replayed: true}, nil
	}

	campaignID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return CreateCampaignResult{}, err
	}

	campaign := entities.Campaign{
		CampaignID:     campaignID,
		FounderID:      strings.TrimSpace(cmd.FounderID),
		Title:          strings.TrimSpace(cmd.Title),
		Description:    strings.TrimSpace(cmd.Description),
		FundingGoal:    cmd.FundingGoal,
		Status:         entities.CampaignStatusActive,
		PlatformFeeBps: cmd.PlatformFeeBps,
		CreatedAt:      now,
		Funders:        make(map[string]entities.Funder),
	}
	for i, plan := range cmd.Milestones {
		campaign.Milestones[i] = entities.Milestone{
			Description: strings.TrimSpace(plan.Description),
			ReleaseBps:  plan.ReleaseBps,
			DeadlineAt:  now.Add(time.Duration(plan.DeadlineDays) * 24 * time.Hour),
			Status:      entities.MilestoneStatusPending,
		}
	}

	if err := uc.Campaigns.SaveCampaign(ctx, campaign); err != nil {
		return CreateCampaignResult{}, err
	}
	if err := uc.appendCampaignCreated(ctx, campaign, now); err != nil {
		return CreateCampaignResult{}, err
	}
	if err := uc.Idempotency.Put(ctx, ports.IdempotencyRecord{
		Key:         strings.TrimSpace(cmd.IdempotencyKey),
		RequestHash: requestHash,
		CampaignID:  campaign.CampaignID,
		ExpiresAt:   now.Add(resolveIdempotencyTTL(uc.IdempotencyTTL)),
	}); err != nil {
		return CreateCampaignResult{}, err
	}

	logger.Info("campaign created",
		"event", "escrow_campaign_created",
		"module", "escrow-core/campaign-service",
		"layer", "application",
		"campaign_id", campaign.CampaignID,
		"founder_id", campaign.FounderID,
		"funding_goal", campaign.FundingGoal,
		"platform_fee_bps", campaign.PlatformFeeBps,
	)
	return CreateCampaignResult{Campaign: campaign}, nil
}

func (uc CreateCampaignUseCase) appendCampaignCreated(
	ctx context.Context,
	campaign entities.Campaign,
	occurredAt time.Time,
) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	schedule := make([]map[string]any, 0, entities.MilestoneCount)
	for i, milestone := range campaign.Milestones {
		schedule = append(schedule, map[string]any{
			"index":       i,
			"release_bps": milestone.ReleaseBps,
			"deadline_at": milestone.DeadlineAt.Format(time.RFC3339),
		})
	}
	envelope, err := newEscrowEnvelope(eventID, "escrow.campaign.created", campaign.CampaignID, occurredAt, map[string]any{
		"campaign_id":      campaign.CampaignID,
		"founder_id":       campaign.FounderID,
		"title":            campaign.Title,
		"funding_goal":     campaign.FundingGoal,
		"platform_fee_bps": campaign.PlatformFeeBps,
		"milestones":       schedule,
	})
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

func resolveIdempotencyTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 7 * 24 * time.Hour
	}
	return ttl
}

func hashCreateCampaignCommand(cmd CreateCampaignCommand) string {
	payload := map[string]any{
		"founder_id":       strings.TrimSpace(cmd.FounderID),
		"title":            strings.TrimSpace(cmd.Title),
		"funding_goal":     cmd.FundingGoal,
		"platform_fee_bps": cmd.PlatformFeeBps,
		"milestones":       cmd.Milestones,
		"op":               "create_campaign",
	}
	raw, _ := json.Marshal(payload)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
