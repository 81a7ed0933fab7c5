package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"fundlock/contexts/escrow-core/registry-service/domain/entities"
	domainerrors "fundlock/contexts/escrow-core/registry-service/domain/errors"
)

type dedupRecord struct {
	payloadHash string
	expiresAt   time.Time
}

// Store keeps the founder index in process. It backs both the repository and
// the event dedupe ports so a worker-only deployment needs one dependency.
type Store struct {
	mu         sync.RWMutex
	records    map[string]entities.CampaignRecord
	eventDedup map[string]dedupRecord
}

func NewStore() *Store {
	return &Store{
		records:    make(map[string]entities.CampaignRecord),
		eventDedup: make(map[string]dedupRecord),
	}
}

func (s *Store) RecordCampaign(_ context.Context, record entities.CampaignRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[strings.TrimSpace(record.CampaignID)] = record
	return nil
}

func (s *Store) ListByFounder(_ context.Context, founderID string) ([]entities.CampaignRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.CampaignRecord, 0)
	for _, record := range s.records {
		if record.FounderID == founderID {
			items = append(items, record)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CampaignID < items[j].CampaignID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) ReserveEvent(
	_ context.Context,
	eventID string,
	payloadHash string,
	expiresAt time.Time,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.TrimSpace(eventID)
	existing, ok := s.eventDedup[key]
	if ok {
		if !existing.expiresAt.IsZero() && time.Now().UTC().After(existing.expiresAt.UTC()) {
			delete(s.eventDedup, key)
		} else {
			if existing.payloadHash != strings.TrimSpace(payloadHash) {
				return false, domainerrors.ErrConflict
			}
			return true, nil
		}
	}

	s.eventDedup[key] = dedupRecord{
		payloadHash: strings.TrimSpace(payloadHash),
		expiresAt:   expiresAt.UTC(),
	}
	return false, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}
