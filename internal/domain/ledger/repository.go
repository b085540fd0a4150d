package ledger

import (
	"context"
	"strconv"
)

// Repository manages reconciled shift-ledger persistence. Ledgers are
// recomputed per run, so writes are upserts keyed by (shift, date).
type Repository interface {
	Upsert(ctx context.Context, l *ShiftLedger) error
	GetByShiftID(ctx context.Context, shiftID int64) (*ShiftLedger, error)
	GetByDate(ctx context.Context, date string) ([]*ShiftLedger, error)
}

// ErrLedgerNotFound indicates a missing shift ledger
type ErrLedgerNotFound struct {
	ShiftID int64
}

func (e ErrLedgerNotFound) Error() string {
	return "shift ledger not found: " + strconv.FormatInt(e.ShiftID, 10)
}

// Is implements the errors.Is interface for ErrLedgerNotFound
func (e ErrLedgerNotFound) Is(target error) bool {
	t, ok := target.(ErrLedgerNotFound)
	if !ok {
		return false
	}
	// A zero-valued target matches any ErrLedgerNotFound
	if t.ShiftID == 0 {
		return true
	}
	return e.ShiftID == t.ShiftID
}
