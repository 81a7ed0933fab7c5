package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"fundlock/contexts/escrow-core/registry-service/application/queries"
	httptransport "fundlock/contexts/escrow-core/registry-service/transport/http"
)

type Handler struct {
	ByFounder queries.ListByFounderUseCase
	Logger    *slog.Logger
}

func (h Handler) ListByFounderHandler(ctx context.Context, founderID string) (httptransport.FounderCampaignsResponse, error) {
	records, err := h.ByFounder.Execute(ctx, founderID)
	if err != nil {
		return httptransport.FounderCampaignsResponse{}, err
	}
	items := make([]httptransport.CampaignRecordResponse, 0, len(records))
	for _, record := range records {
		items = append(items, httptransport.CampaignRecordResponse{
			CampaignID:  record.CampaignID,
			FounderID:   record.FounderID,
			Title:       record.Title,
			FundingGoal: record.FundingGoal,
			CreatedAt:   record.CreatedAt.Format(time.RFC3339),
		})
	}
	return httptransport.FounderCampaignsResponse{
		FounderID: founderID,
		Campaigns: items,
	}, nil
}
