package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"

	application "fundlock/contexts/escrow-core/campaign-service/application"
	"fundlock/contexts/escrow-core/campaign-service/domain/entities"
	domainerrors "fundlock/contexts/escrow-core/campaign-service/domain/errors"
	"fundlock/contexts/escrow-core/campaign-service/ports"
)

type ContributeCommand struct {
	CampaignID     string
	FunderID       string
	IdempotencyKey string
	Amount         int64
	Profile        entities.RiskProfile
}

type ContributeResult struct {
	Campaign  entities.Campaign
	Funder    entities.Funder
	Committed int64
	Reserve   int64
	Replayed  bool
}

type ContributeUseCase struct {
	Campaigns      ports.CampaignRepository
	Idempotency    ports.IdempotencyStore
	Outbox         ports.OutboxWriter
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

// Execute records a contribution: the amount splits into committed and
// reserve slices by the funder's risk profile, pools grow by the same split,
// and first-time funders join the ordered roster.
func (uc ContributeUseCase) Execute(ctx context.Context, cmd ContributeCommand) (ContributeResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	if strings.TrimSpace(cmd.IdempotencyKey) == "" {
		return ContributeResult{}, domainerrors.ErrIdempotencyKeyRequired
	}
	if strings.TrimSpace(cmd.FunderID) == "" {
		return ContributeResult{}, domainerrors.ErrNotFunder
	}
	if cmd.Amount <= 0 {
		return ContributeResult{}, domainerrors.ErrInvalidAmount
	}
	committedBps, ok := cmd.Profile.CommittedBps()
	if !ok {
		return ContributeResult{}, domainerrors.ErrInvalidRiskProfile
	}

	now := uc.Clock.Now().UTC()
	requestHash := hashContributeCommand(cmd)
	if record, found, err := uc.Idempotency.Get(ctx, cmd.IdempotencyKey, now); err != nil {
		return ContributeResult{}, err
	} else if found {
		if record.RequestHash != requestHash {
			return ContributeResult{}, domainerrors.ErrIdempotencyConflict
		}
		campaign, err := uc.Campaigns.GetCampaign(ctx, record.CampaignID)
		if err != nil {
			return ContributeResult{}, err
		}
		return ContributeResult{
			Campaign: campaign,
			Funder:   campaign.Funders[strings.TrimSpace(cmd.FunderID)],
			Replayed: true,
		}, nil
	}

	campaign, err := uc.Campaigns.GetCampaign(ctx, strings.TrimSpace(cmd.CampaignID))
	if err != nil {
		return ContributeResult{}, err
	}
	if !campaign.IsActive() {
		return ContributeResult{}, domainerrors.ErrCampaignNotActive
	}
	if campaign.TotalRaised+cmd.Amount > campaign.FundingGoal {
		// Whole-or-nothing: a contribution that would overshoot the goal is
		// rejected outright, never partially filled.
		return ContributeResult{}, domainerrors.ErrGoalExceeded
	}

	funderID := strings.TrimSpace(cmd.FunderID)
	working := campaign.Clone()
	funder, exists := working.Funders[funderID]
	if exists {
		if funder.Profile != cmd.Profile {
			return ContributeResult{}, domainerrors.ErrRiskProfileLocked
		}
	} else {
		funder = entities.Funder{
			FunderID:           funderID,
			Profile:            cmd.Profile,
			FirstContributedAt: now,
		}
		working.Roster = append(working.Roster, funderID)
	}

	committed, reserve := entities.SplitContribution(cmd.Amount, committedBps)
	funder.TotalContribution += cmd.Amount
	funder.Committed += committed
	funder.Reserve += reserve
	working.Funders[funderID] = funder
	working.TotalRaised += cmd.Amount
	working.TotalCommittedPool += committed
	working.TotalReservePool += reserve

	if err := uc.Campaigns.SaveCampaign(ctx, working); err != nil {
		return ContributeResult{}, err
	}
	if err := uc.appendContributionRecorded(ctx, working, funder, cmd, committed, reserve, now); err != nil {
		return ContributeResult{}, err
	}
	if err := uc.Idempotency.Put(ctx, ports.IdempotencyRecord{
		Key:         strings.TrimSpace(cmd.IdempotencyKey),
		RequestHash: requestHash,
		CampaignID:  working.CampaignID,
		ExpiresAt:   now.Add(resolveIdempotencyTTL(uc.IdempotencyTTL)),
	}); err != nil {
		return ContributeResult{}, err
	}

	logger.Info("contribution recorded",
		"event", "escrow_contribution_recorded",
		"module", "escrow-core/campaign-service",
		"layer", "application",
		"campaign_id", working.CampaignID,
		"funder_id", funderID,
		"amount", cmd.Amount,
		"committed", committed,
		"reserve", reserve,
		"risk_profile", string(cmd.Profile),
		"total_raised", working.TotalRaised,
	)
	return ContributeResult{
		Campaign:  working,
		Funder:    funder,
		Committed: committed,
		Reserve:   reserve,
	}, nil
}

func (uc ContributeUseCase) appendContributionRecorded(
	ctx context.Context,
	campaign entities.Campaign,
	funder entities.Funder,
	cmd ContributeCommand,
	committed int64,
	reserve int64,
	occurredAt time.Time,
) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newEscrowEnvelope(eventID, "escrow.contribution.recorded", campaign.CampaignID, occurredAt, map[string]any{
		"campaign_id":  campaign.CampaignID,
		"funder_id":    funder.FunderID,
		"amount":       cmd.Amount,
		"risk_profile": string(cmd.Profile),
		"committed":    committed,
		"reserve":      reserve,
		"total_raised": campaign.TotalRaised,
	})
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

func hashContributeCommand(cmd ContributeCommand) string {
	payload := map[string]string{
		"campaign_id":  strings.TrimSpace(cmd.CampaignID),
		"funder_id":    strings.TrimSpace(cmd.FunderID),
		"amount":       strconv.FormatInt(cmd.Amount, 10),
		"risk_profile": string(cmd.Profile),
		"op":           "contribute",
	}
	raw, _ := json.Marshal(payload)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
