package outbox

import "time"

// Message is an outbox row persisted inside the same transaction as the state
// change that produced it. Relay workers read pending rows and publish them to
// the bus.
type Message struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}
