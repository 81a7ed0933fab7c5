package workers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	application "fundlock/contexts/escrow-core/campaign-service/application"
	"fundlock/contexts/escrow-core/campaign-service/application/commands"
	domainerrors "fundlock/contexts/escrow-core/campaign-service/domain/errors"
	"fundlock/contexts/escrow-core/campaign-service/ports"
)

// DeadlineResolver sweeps campaigns whose voting window expired without any
// vote or explicit resolve call touching them. Expiry stays lazy in the
// command path; this worker just makes sure resolution eventually happens.
type DeadlineResolver struct {
	Campaigns ports.CampaignRepository
	Resolver  commands.ResolveMilestoneUseCase
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

func (j DeadlineResolver) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(j.Logger)
	now := time.Now().UTC()
	if j.Clock != nil {
		now = j.Clock.Now().UTC()
	}

	limit := j.BatchSize
	if limit <= 0 {
		limit = 100
	}

	expired, err := j.Campaigns.ListVotingPastDeadline(ctx, now, limit)
	if err != nil {
		logger.Error("deadline resolution sweep failed",
			"event", "escrow_deadline_sweep_failed",
			"module", "escrow-core/campaign-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	resolved := 0
	for _, campaign := range expired {
		_, err := j.Resolver.Execute(ctx, commands.ResolveMilestoneCommand{
			CampaignID:     campaign.CampaignID,
			MilestoneIndex: campaign.CurrentMilestone,
		})
		if err != nil {
			// A racing caller may have resolved first; that is not a sweep
			// failure. Transfer failures are retried on the next cycle.
			if errors.Is(err, domainerrors.ErrMilestoneNotVoting) ||
				errors.Is(err, domainerrors.ErrVotingStillOpen) {
				continue
			}
			logger.Error("deadline resolution failed",
				"event", "escrow_deadline_resolve_failed",
				"module", "escrow-core/campaign-service",
				"layer", "worker",
				"campaign_id", campaign.CampaignID,
				"milestone_index", campaign.CurrentMilestone,
				"error", err.Error(),
			)
			continue
		}
		resolved++
	}

	if resolved > 0 {
		logger.Info("deadline resolution sweep completed",
			"event", "escrow_deadline_sweep_completed",
			"module", "escrow-core/campaign-service",
			"layer", "worker",
			"resolved_count", resolved,
		)
	}
	return nil
}
