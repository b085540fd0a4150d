package shift

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(value string) time.Time {
	t, err := time.ParseInLocation(TimeLayout, value, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNewWindow(t *testing.T) {
	now := ts("2025-09-01 23:30:00")

	t.Run("ClosedShift", func(t *testing.T) {
		w, err := NewWindow(10, "2025-09-01 10:00:00", "2025-09-01 20:00:00", decimal.NewFromInt(250), now)
		require.NoError(t, err)

		assert.Equal(t, int64(10), w.ID)
		assert.Equal(t, ts("2025-09-01 10:00:00"), w.Start)
		assert.Equal(t, ts("2025-09-01 20:00:00"), w.End)
		assert.True(t, w.ReportedTotal.Equal(decimal.NewFromInt(250)))
	})

	t.Run("OpenShiftEndsNow", func(t *testing.T) {
		w, err := NewWindow(10, "2025-09-01 10:00:00", OpenEndSentinel, decimal.Zero, now)
		require.NoError(t, err)
		assert.Equal(t, now, w.End)
	})

	t.Run("EndClampedToNextDayCutoff", func(t *testing.T) {
		w, err := NewWindow(10, "2025-09-01 10:00:00", "2025-09-02 11:45:00", decimal.Zero, now)
		require.NoError(t, err)
		assert.Equal(t, ts("2025-09-02 06:00:00"), w.End)
	})

	t.Run("OpenShiftClampedWhenNowPastCutoff", func(t *testing.T) {
		lateNow := ts("2025-09-02 08:00:00")
		w, err := NewWindow(10, "2025-09-01 10:00:00", OpenEndSentinel, decimal.Zero, lateNow)
		require.NoError(t, err)
		assert.Equal(t, ts("2025-09-02 06:00:00"), w.End)
	})

	t.Run("InvalidStart", func(t *testing.T) {
		_, err := NewWindow(10, "not-a-time", "2025-09-01 20:00:00", decimal.Zero, now)
		assert.Error(t, err)
	})

	t.Run("InvalidEnd", func(t *testing.T) {
		_, err := NewWindow(10, "2025-09-01 10:00:00", "not-a-time", decimal.Zero, now)
		assert.Error(t, err)
	})
}

func TestResolve(t *testing.T) {
	windows := []Window{
		{ID: 1, Start: ts("2025-09-01 10:00:00"), End: ts("2025-09-01 18:00:00")},
		{ID: 2, Start: ts("2025-09-01 18:00:01"), End: ts("2025-09-02 02:00:00")},
	}

	tests := []struct {
		name     string
		ts       time.Time
		wantID   int64
		wantOK   bool
	}{
		{"InsideFirstWindow", ts("2025-09-01 12:00:00"), 1, true},
		{"InsideSecondWindow", ts("2025-09-01 23:00:00"), 2, true},
		{"ExactStartBoundary", ts("2025-09-01 10:00:00"), 1, true},
		{"ExactEndBoundary", ts("2025-09-01 18:00:00"), 1, true},
		{"GraceWindowStart", ts("2025-09-01 09:00:00"), 1, true},
		{"InsideGraceWindow", ts("2025-09-01 09:45:00"), 1, true},
		{"BeforeGraceWindow", ts("2025-09-01 08:59:59"), 0, false},
		{"AfterLastWindow", ts("2025-09-02 03:00:00"), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := Resolve(tt.ts, windows)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}

	t.Run("NoWindows", func(t *testing.T) {
		_, ok := Resolve(ts("2025-09-01 12:00:00"), nil)
		assert.False(t, ok)
	})

	t.Run("OverlappingWindowsFirstMatchWins", func(t *testing.T) {
		overlapping := []Window{
			{ID: 1, Start: ts("2025-09-01 10:00:00"), End: ts("2025-09-01 20:00:00")},
			{ID: 2, Start: ts("2025-09-01 19:00:00"), End: ts("2025-09-02 02:00:00")},
		}
		id, ok := Resolve(ts("2025-09-01 19:30:00"), overlapping)
		require.True(t, ok)
		assert.Equal(t, int64(1), id)
	})
}
