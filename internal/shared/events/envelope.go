package events

import "time"

// Envelope is the canonical event shape carried through outboxes and the bus.
// Contexts alias this type in their ports so payloads stay compatible across
// service boundaries.
type Envelope struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	OccurredAt    time.Time `json:"occurred_at"`
	SourceService string    `json:"source_service"`
	TraceID       string    `json:"trace_id"`
	SchemaVersion int       `json:"schema_version"`
	PartitionKey  string    `json:"partition_key"`
	Data          []byte    `json:"data"`
}
