package commands

import (
	"encoding/json"
	"time"

	"fundlock/contexts/escrow-core/campaign-service/ports"
)

func newEscrowEnvelope(
	eventID string,
	eventType string,
	campaignID string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	// Command-side events are partitioned by campaign for stable ordering on
	// campaign-scoped consumers.
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:       eventID,
		EventType:     eventType,
		OccurredAt:    occurredAt.UTC(),
		SourceService: "campaign-service",
		TraceID:       eventID,
		SchemaVersion: 1,
		PartitionKey:  campaignID,
		Data:          payload,
	}, nil
}
