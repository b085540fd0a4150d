package shared

import (
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidDate   = errors.New("invalid business date, expected YYYY-MM-DD")
	ErrInvalidSpotID = errors.New("invalid spot id")
)

// DateLayout is the business-date format used throughout the wire and API
// surface.
const DateLayout = "2006-01-02"

// ReconciliationRequest defines a Kafka message asking the processor to
// reconcile one business day for one POS spot.
type ReconciliationRequest struct {
	Date          string    `json:"date"` // YYYY-MM-DD
	SpotID        int64     `json:"spot_id"`
	CorrelationID string    `json:"correlation_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewReconciliationRequest validates the date and stamps the message.
func NewReconciliationRequest(date string, spotID int64) (*ReconciliationRequest, error) {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return nil, ErrInvalidDate
	}
	if spotID <= 0 {
		return nil, ErrInvalidSpotID
	}
	return &ReconciliationRequest{
		Date:          date,
		SpotID:        spotID,
		CorrelationID: uuid.NewString(),
		Timestamp:     time.Now().UTC(),
	}, nil
}

// Key returns the partitioning key, keeping requests for the same day and
// spot on one partition.
func (r *ReconciliationRequest) Key() string {
	return r.Date + ":" + strconv.FormatInt(r.SpotID, 10)
}
