// Package shift models cash-register shift windows and assigns event
// timestamps to them, including the pre-shift grace window for sales rung
// up before the register was formally opened.
package shift

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// OpenEndSentinel is the literal the upstream POS sends while a shift is still open.
	OpenEndSentinel = "0000-00-00 00:00:00"

	// TimeLayout is the timestamp format used by the upstream POS for shift boundaries.
	TimeLayout = "2006-01-02 15:04:05"

	// Shifts never run past 06:00 the day after they start; anything the
	// register reports beyond that is clamped.
	dayEndCutoffHour = 6

	// Sales between 09:00 and the first shift's formal start still belong
	// to that first shift (prep-time sales).
	graceStartHour = 9
)

// Window is one cash-register session: its identifier, resolved open/close
// interval, and the cash+card total the register itself reported.
// Windows are immutable once constructed and live for a single reconciliation run.
type Window struct {
	ID            int64
	Start         time.Time
	End           time.Time
	ReportedTotal decimal.Decimal
}

// NewWindow builds a Window from upstream shift fields. A still-open shift
// (OpenEndSentinel) ends "now"; either way the end is clamped to 06:00 on
// the calendar day after the shift started.
func NewWindow(id int64, dateStart, dateEnd string, reportedTotal decimal.Decimal, now time.Time) (Window, error) {
	start, err := time.ParseInLocation(TimeLayout, dateStart, time.UTC)
	if err != nil {
		return Window{}, fmt.Errorf("invalid shift start %q: %w", dateStart, err)
	}

	var end time.Time
	if dateEnd == OpenEndSentinel {
		end = now
	} else {
		end, err = time.ParseInLocation(TimeLayout, dateEnd, time.UTC)
		if err != nil {
			return Window{}, fmt.Errorf("invalid shift end %q: %w", dateEnd, err)
		}
	}

	cutoff := dayCutoff(start)
	if end.After(cutoff) {
		end = cutoff
	}

	return Window{
		ID:            id,
		Start:         start,
		End:           end,
		ReportedTotal: reportedTotal,
	}, nil
}

// dayCutoff returns 06:00 on the day after the given start instant.
func dayCutoff(start time.Time) time.Time {
	next := start.AddDate(0, 0, 1)
	return time.Date(next.Year(), next.Month(), next.Day(), dayEndCutoffHour, 0, 0, 0, next.Location())
}

// GraceStart returns the instant from which pre-shift sales are still
// attributed to this window: 09:00 on the window's own start date.
func (w Window) GraceStart() time.Time {
	return time.Date(w.Start.Year(), w.Start.Month(), w.Start.Day(), graceStartHour, 0, 0, 0, w.Start.Location())
}

// Contains reports whether ts falls inside the window, boundaries included.
func (w Window) Contains(ts time.Time) bool {
	return !ts.Before(w.Start) && !ts.After(w.End)
}

// Resolve assigns a timestamp to a shift window. Windows must be ordered by
// ascending start time; the first match wins (overlaps are an upstream
// data-quality problem, not validated here). When no window matches, a
// timestamp inside the first window's grace interval still resolves to the
// first window. Anything else is unassigned and the caller drops the event.
func Resolve(ts time.Time, windows []Window) (int64, bool) {
	for _, w := range windows {
		if w.Contains(ts) {
			return w.ID, true
		}
	}

	if len(windows) > 0 {
		first := windows[0]
		grace := first.GraceStart()
		if !ts.Before(grace) && ts.Before(first.Start) {
			return first.ID, true
		}
	}

	return 0, false
}
