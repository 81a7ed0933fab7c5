package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"fundlock/contexts/escrow-core/campaign-service/ports"
)

// TransferLedger is the in-memory transfer gateway. FailNext makes the next
// transfer attempts fail, which is how tests exercise the state-rollback
// contract of the commands.
type TransferLedger struct {
	mu        sync.Mutex
	records   []ports.TransferRecord
	failCount int
}

func NewTransferLedger() *TransferLedger {
	return &TransferLedger{}
}

func (l *TransferLedger) FailNext(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failCount = n
}

func (l *TransferLedger) Transfer(_ context.Context, campaignID string, recipientID string, amount int64, reason string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failCount > 0 {
		l.failCount--
		return errors.New("simulated transfer outage")
	}
	l.records = append(l.records, ports.TransferRecord{
		CampaignID:  campaignID,
		RecipientID: recipientID,
		Amount:      amount,
		Reason:      reason,
		SentAt:      time.Now().UTC(),
	})
	return nil
}

func (l *TransferLedger) ListTransfers(_ context.Context, campaignID string) ([]ports.TransferRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	items := make([]ports.TransferRecord, 0, len(l.records))
	for _, rec := range l.records {
		if rec.CampaignID == campaignID {
			items = append(items, rec)
		}
	}
	return items, nil
}

// Records returns every transfer regardless of campaign, in delivery order.
func (l *TransferLedger) Records() []ports.TransferRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]ports.TransferRecord(nil), l.records...)
}
