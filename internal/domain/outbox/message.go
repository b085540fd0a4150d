// Package outbox implements the transactional-outbox pattern for ledger
// documents: the reconciled ledger is staged in PostgreSQL within the same
// transaction as the salary records, and a poller publishes it to the
// document store afterwards.
package outbox

import (
	"encoding/json"
	"time"

	"github.com/shiftpay/pos-ledger/internal/domain/ledger"
	"github.com/shiftpay/pos-ledger/internal/domain/shared"
)

// Message stages one reconciled shift ledger for publishing
type Message struct {
	ID            int64               `json:"id"`
	ShiftID       int64               `json:"shift_id"`
	Date          string              `json:"date"`
	Payload       json.RawMessage     `json:"payload"`
	Status        shared.OutboxStatus `json:"status"`
	Attempts      int                 `json:"attempts"`
	CreatedAt     time.Time           `json:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty"`
}

func NewMessage(l *ledger.ShiftLedger) (*Message, error) {
	payload, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}

	return &Message{
		ShiftID:   l.ShiftID,
		Date:      l.Date,
		Payload:   payload,
		Status:    shared.OutboxStatusPending,
		Attempts:  0,
		CreatedAt: time.Now(),
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsProcessed() {
	m.Status = shared.OutboxStatusProcessed
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsFailed() {
	m.Status = shared.OutboxStatusFailedToPublish
	now := time.Now()
	m.LastAttemptAt = &now
}

// GetShiftLedger extracts the staged ledger from the payload
func (m *Message) GetShiftLedger() (*ledger.ShiftLedger, error) {
	var l ledger.ShiftLedger
	if err := json.Unmarshal(m.Payload, &l); err != nil {
		return nil, err
	}
	return &l, nil
}
