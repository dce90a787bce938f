package booking

import (
	"math"
	"time"

	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/platform/apperr"
)

// Period is the stay requested by a booking.
type Period struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

// NewPeriod validates and returns a Period. Start must be strictly before End.
func NewPeriod(start, end time.Time) (Period, error) {
	if start.IsZero() || end.IsZero() {
		return Period{}, apperr.NewValidationError("start and end dates are required")
	}
	if !start.Before(end) {
		return Period{}, apperr.NewValidationError("start date must be before end date")
	}
	return Period{Start: start.UTC(), End: end.UTC()}, nil
}

// ValidateNotPast rejects periods that start before the current UTC day.
func (p Period) ValidateNotPast(now time.Time) error {
	today := now.UTC().Truncate(24 * time.Hour)
	if p.Start.Before(today) {
		return apperr.NewValidationError("start date cannot be in the past")
	}
	return nil
}

// Overlaps reports whether p and other intersect. Boundaries are inclusive:
// a period ending on the day another starts counts as overlapping.
func (p Period) Overlaps(other Period) bool {
	return !p.Start.After(other.End) && !p.End.Before(other.Start)
}

// Nights returns the number of nights covered, rounding partial days up.
func (p Period) Nights() int64 {
	return int64(math.Ceil(p.End.Sub(p.Start).Hours() / 24))
}
