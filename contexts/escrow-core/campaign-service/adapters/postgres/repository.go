package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"fundlock/contexts/escrow-core/campaign-service/domain/entities"
	domainerrors "fundlock/contexts/escrow-core/campaign-service/domain/errors"
	"fundlock/contexts/escrow-core/campaign-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// SaveCampaign persists the whole aggregate in one transaction: the campaign
// row, all five milestone rows, and every funder row. Command code stages
// mutations on a copy, so a save is always a consistent snapshot.
func (r *Repository) SaveCampaign(ctx context.Context, campaign entities.Campaign) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := campaignModelFromEntity(campaign)
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"total_raised":         row.TotalRaised,
				"total_committed_pool": row.TotalCommittedPool,
				"total_reserve_pool":   row.TotalReservePool,
				"total_released":       row.TotalReleased,
				"current_milestone":    row.CurrentMilestone,
				"status":               row.Status,
			}),
		}).Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrConflict
			}
			return r.logError("escrow_repo_save_campaign_failed", err, "campaign_id", campaign.CampaignID)
		}

		for i, milestone := range campaign.Milestones {
			milestoneRow := milestoneModelFromEntity(campaign.CampaignID, i, milestone)
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "campaign_id"}, {Name: "milestone_index"}},
				DoUpdates: clause.Assignments(map[string]any{
					"status":          milestoneRow.Status,
					"voting_deadline": milestoneRow.VotingDeadline,
					"yes_weight":      milestoneRow.YesWeight,
					"no_weight":       milestoneRow.NoWeight,
					"total_weight":    milestoneRow.TotalWeight,
					"evidence_ref":    milestoneRow.EvidenceRef,
					"rejections":      milestoneRow.Rejections,
					"submitted_at":    milestoneRow.SubmittedAt,
				}),
			}).Create(&milestoneRow).Error; err != nil {
				return r.logError("escrow_repo_save_milestone_failed", err,
					"campaign_id", campaign.CampaignID,
					"milestone_index", i,
				)
			}
		}

		for position, funderID := range campaign.Roster {
			funder := campaign.Funders[funderID]
			funderRow := funderModelFromEntity(campaign.CampaignID, position, funder)
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "campaign_id"}, {Name: "funder_id"}},
				DoUpdates: clause.Assignments(map[string]any{
					"total_contribution": funderRow.TotalContribution,
					"committed":          funderRow.Committed,
					"reserve":            funderRow.Reserve,
					"voted_bitmap":       funderRow.VotedBitmap,
					"missed_votes":       funderRow.MissedVotes,
					"delinquent":         funderRow.Delinquent,
					"refund_claimed":     funderRow.RefundClaimed,
				}),
			}).Create(&funderRow).Error; err != nil {
				return r.logError("escrow_repo_save_funder_failed", err,
					"campaign_id", campaign.CampaignID,
					"funder_id", funderID,
				)
			}
		}
		return nil
	})
}

func (r *Repository) GetCampaign(ctx context.Context, campaignID string) (entities.Campaign, error) {
	var row campaignModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(campaignID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Campaign{}, domainerrors.ErrCampaignNotFound
		}
		return entities.Campaign{}, r.logError("escrow_repo_get_campaign_failed", err, "campaign_id", strings.TrimSpace(campaignID))
	}
	return r.hydrate(ctx, row)
}

func (r *Repository) ListCampaigns(ctx context.Context) ([]entities.Campaign, error) {
	var rows []campaignModel
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("escrow_repo_list_campaigns_failed", err)
	}
	items := make([]entities.Campaign, 0, len(rows))
	for _, row := range rows {
		campaign, err := r.hydrate(ctx, row)
		if err != nil {
			return nil, err
		}
		items = append(items, campaign)
	}
	return items, nil
}

func (r *Repository) ListVotingPastDeadline(ctx context.Context, now time.Time, limit int) ([]entities.Campaign, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []campaignModel
	err := r.db.WithContext(ctx).
		Table("escrow_campaigns AS c").
		Select("c.*").
		Joins("JOIN escrow_milestones AS m ON m.campaign_id = c.id AND m.milestone_index = c.current_milestone").
		Where("c.status = ?", string(entities.CampaignStatusActive)).
		Where("m.status = ?", string(entities.MilestoneStatusVoting)).
		Where("m.voting_deadline < ?", now.UTC()).
		Order("c.created_at ASC").
		Limit(limit).
		Scan(&rows).
		Error
	if err != nil {
		return nil, r.logError("escrow_repo_list_voting_past_deadline_failed", err)
	}
	items := make([]entities.Campaign, 0, len(rows))
	for _, row := range rows {
		campaign, err := r.hydrate(ctx, row)
		if err != nil {
			return nil, err
		}
		items = append(items, campaign)
	}
	return items, nil
}

func (r *Repository) hydrate(ctx context.Context, row campaignModel) (entities.Campaign, error) {
	campaign := row.toEntity()

	var milestoneRows []milestoneModel
	if err := r.db.WithContext(ctx).
		Where("campaign_id = ?", row.ID).
		Order("milestone_index ASC").
		Find(&milestoneRows).Error; err != nil {
		return entities.Campaign{}, r.logError("escrow_repo_load_milestones_failed", err, "campaign_id", row.ID)
	}
	for _, milestoneRow := range milestoneRows {
		if milestoneRow.MilestoneIndex < 0 || milestoneRow.MilestoneIndex >= entities.MilestoneCount {
			continue
		}
		campaign.Milestones[milestoneRow.MilestoneIndex] = milestoneRow.toEntity()
	}

	var funderRows []funderModel
	if err := r.db.WithContext(ctx).
		Where("campaign_id = ?", row.ID).
		Order("roster_position ASC").
		Find(&funderRows).Error; err != nil {
		return entities.Campaign{}, r.logError("escrow_repo_load_funders_failed", err, "campaign_id", row.ID)
	}
	campaign.Funders = make(map[string]entities.Funder, len(funderRows))
	campaign.Roster = make([]string, 0, len(funderRows))
	for _, funderRow := range funderRows {
		campaign.Funders[funderRow.FunderID] = funderRow.toEntity()
		campaign.Roster = append(campaign.Roster, funderRow.FunderID)
	}
	return campaign, nil
}

func (r *Repository) Get(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	var row idempotencyModel
	err := r.db.WithContext(ctx).
		Where("key = ?", strings.TrimSpace(key)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.IdempotencyRecord{}, false, nil
		}
		return ports.IdempotencyRecord{}, false, r.logError("escrow_repo_get_idempotency_failed", err)
	}
	if !row.ExpiresAt.After(now.UTC()) {
		return ports.IdempotencyRecord{}, false, nil
	}
	return ports.IdempotencyRecord{
		Key:         row.Key,
		RequestHash: row.RequestHash,
		CampaignID:  row.CampaignID,
		ExpiresAt:   row.ExpiresAt,
	}, true, nil
}

func (r *Repository) Put(ctx context.Context, record ports.IdempotencyRecord) error {
	row := idempotencyModel{
		Key:         strings.TrimSpace(record.Key),
		RequestHash: strings.TrimSpace(record.RequestHash),
		CampaignID:  strings.TrimSpace(record.CampaignID),
		ExpiresAt:   record.ExpiresAt.UTC(),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
	if err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrIdempotencyConflict
		}
		return r.logError("escrow_repo_put_idempotency_failed", err)
	}
	return nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := marshalEnvelope(envelope)
	if err != nil {
		return err
	}
	row := outboxModel{
		ID:           strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return r.logError("escrow_repo_append_outbox_failed", err, "event_type", envelope.EventType)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("escrow_repo_list_pending_outbox_failed", err)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.ID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      row.Payload,
			CreatedAt:    row.CreatedAt,
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("escrow_repo_mark_outbox_published_failed", result.Error, "outbox_id", outboxID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "escrow-core/campaign-service",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("escrow repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
