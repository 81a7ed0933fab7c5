package queries

import (
	"context"
	"log/slog"
	"strings"

	"fundlock/contexts/escrow-core/registry-service/domain/entities"
	domainerrors "fundlock/contexts/escrow-core/registry-service/domain/errors"
	"fundlock/contexts/escrow-core/registry-service/ports"
)

type ListByFounderUseCase struct {
	Registry ports.RegistryRepository
	Logger   *slog.Logger
}

// Execute returns the founder's campaigns in creation order. An unknown
// founder yields an empty list, not an error.
func (uc ListByFounderUseCase) Execute(ctx context.Context, founderID string) ([]entities.CampaignRecord, error) {
	founderID = strings.TrimSpace(founderID)
	if founderID == "" {
		return nil, domainerrors.ErrInvalidFounderID
	}
	return uc.Registry.ListByFounder(ctx, founderID)
}
