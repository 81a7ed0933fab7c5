package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"fundlock/contexts/escrow-core/registry-service/domain/entities"
	domainerrors "fundlock/contexts/escrow-core/registry-service/domain/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type registryModel struct {
	CampaignID  string    `gorm:"column:campaign_id;primaryKey"`
	FounderID   string    `gorm:"column:founder_id;index"`
	Title       string    `gorm:"column:title"`
	FundingGoal int64     `gorm:"column:funding_goal"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (registryModel) TableName() string {
	return "escrow_founder_index"
}

type dedupModel struct {
	EventID     string    `gorm:"column:event_id;primaryKey"`
	PayloadHash string    `gorm:"column:payload_hash"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
}

func (dedupModel) TableName() string {
	return "escrow_registry_event_dedup"
}

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

func (r *Repository) RecordCampaign(ctx context.Context, record entities.CampaignRecord) error {
	row := registryModel{
		CampaignID:  strings.TrimSpace(record.CampaignID),
		FounderID:   strings.TrimSpace(record.FounderID),
		Title:       record.Title,
		FundingGoal: record.FundingGoal,
		CreatedAt:   record.CreatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "campaign_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"title":        row.Title,
			"funding_goal": row.FundingGoal,
		}),
	}).Create(&row).Error; err != nil {
		return r.logError("registry_repo_record_failed", err, "campaign_id", row.CampaignID)
	}
	return nil
}

func (r *Repository) ListByFounder(ctx context.Context, founderID string) ([]entities.CampaignRecord, error) {
	var rows []registryModel
	if err := r.db.WithContext(ctx).
		Where("founder_id = ?", strings.TrimSpace(founderID)).
		Order("created_at ASC, campaign_id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("registry_repo_list_failed", err, "founder_id", founderID)
	}
	items := make([]entities.CampaignRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, entities.CampaignRecord{
			CampaignID:  row.CampaignID,
			FounderID:   row.FounderID,
			Title:       row.Title,
			FundingGoal: row.FundingGoal,
			CreatedAt:   row.CreatedAt,
		})
	}
	return items, nil
}

// ReserveEvent claims an event id for processing. A replay with the same
// payload reports already-processed; the same id with a different payload is
// a conflict the consumer must surface.
func (r *Repository) ReserveEvent(
	ctx context.Context,
	eventID string,
	payloadHash string,
	expiresAt time.Time,
) (bool, error) {
	eventID = strings.TrimSpace(eventID)
	payloadHash = strings.TrimSpace(payloadHash)

	var alreadyProcessed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing dedupModel
		findErr := tx.Where("event_id = ?", eventID).Take(&existing).Error
		switch {
		case findErr == nil:
			if time.Now().UTC().After(existing.ExpiresAt.UTC()) {
				if delErr := tx.Where("event_id = ?", eventID).Delete(&dedupModel{}).Error; delErr != nil {
					return delErr
				}
			} else {
				if existing.PayloadHash != payloadHash {
					return domainerrors.ErrConflict
				}
				alreadyProcessed = true
				return nil
			}
		case errors.Is(findErr, gorm.ErrRecordNotFound):
		default:
			return findErr
		}
		return tx.Create(&dedupModel{
			EventID:     eventID,
			PayloadHash: payloadHash,
			ExpiresAt:   expiresAt.UTC(),
		}).Error
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrConflict) {
			return false, err
		}
		return false, r.logError("registry_repo_reserve_event_failed", err, "event_id", eventID)
	}
	return alreadyProcessed, nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "escrow-core/registry-service",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("registry repository operation failed", fields...)
	return err
}
