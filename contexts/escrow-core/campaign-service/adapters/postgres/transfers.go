package postgresadapter

import (
	"context"
	"strings"
	"time"

	"fundlock/contexts/escrow-core/campaign-service/ports"

	"github.com/google/uuid"
)

type transferModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	CampaignID  string    `gorm:"column:campaign_id"`
	RecipientID string    `gorm:"column:recipient_id"`
	Amount      int64     `gorm:"column:amount"`
	Reason      string    `gorm:"column:reason"`
	SentAt      time.Time `gorm:"column:sent_at"`
}

func (transferModel) TableName() string {
	return "escrow_transfers"
}

// Transfer records the payout instruction row the treasury side consumes.
// The insert is the irrevocable step, so it runs only after commands have
// staged all aggregate mutations.
func (r *Repository) Transfer(ctx context.Context, campaignID string, recipientID string, amount int64, reason string) error {
	row := transferModel{
		ID:          uuid.NewString(),
		CampaignID:  strings.TrimSpace(campaignID),
		RecipientID: strings.TrimSpace(recipientID),
		Amount:      amount,
		Reason:      strings.TrimSpace(reason),
		SentAt:      time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("escrow_repo_transfer_failed", err,
			"campaign_id", row.CampaignID,
			"recipient_id", row.RecipientID,
			"amount", amount,
		)
	}
	return nil
}

func (r *Repository) ListTransfers(ctx context.Context, campaignID string) ([]ports.TransferRecord, error) {
	var rows []transferModel
	if err := r.db.WithContext(ctx).
		Where("campaign_id = ?", strings.TrimSpace(campaignID)).
		Order("sent_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("escrow_repo_list_transfers_failed", err, "campaign_id", campaignID)
	}
	items := make([]ports.TransferRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.TransferRecord{
			CampaignID:  row.CampaignID,
			RecipientID: row.RecipientID,
			Amount:      row.Amount,
			Reason:      row.Reason,
			SentAt:      row.SentAt,
		})
	}
	return items, nil
}
