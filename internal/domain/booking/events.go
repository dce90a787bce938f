package booking

import (
	"time"

	"github.com/google/uuid"
)

// Event types published on the booking events topic.
const (
	EventCreated      = "booking.created"
	EventApproved     = "booking.approved"
	EventRejected     = "booking.rejected"
	EventCancelled    = "booking.cancelled"
	EventExpiredBatch = "booking.expired_batch"
)

// LifecycleEvent is emitted after a booking changes status.
type LifecycleEvent struct {
	BookingID        uuid.UUID  `json:"booking_id"`
	BookingNumber    string     `json:"booking_number"`
	StudentID        uuid.UUID  `json:"student_id"`
	HostelID         uuid.UUID  `json:"hostel_id"`
	RoomID           uuid.UUID  `json:"room_id"`
	Status           string     `json:"status"`
	PreviousStatus   string     `json:"previous_status,omitempty"`
	ActorID          *uuid.UUID `json:"actor_id,omitempty"`
	Reason           string     `json:"reason,omitempty"`
	StartDate        time.Time  `json:"start_date"`
	EndDate          time.Time  `json:"end_date"`
	TotalAmountCents int64      `json:"total_amount_cents"`
	Currency         string     `json:"currency"`
	OccurredAt       time.Time  `json:"occurred_at"`
}

// ExpiredBatchEvent summarises one expiry sweep.
type ExpiredBatchEvent struct {
	Count      int64     `json:"count"`
	SweptAt    time.Time `json:"swept_at"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewLifecycleEvent builds the event for the booking's current state.
func NewLifecycleEvent(b *Booking, previous BookingStatus, actorID *uuid.UUID, reason string, now time.Time) LifecycleEvent {
	evt := LifecycleEvent{
		BookingID:        b.ID(),
		BookingNumber:    b.BookingNumber(),
		StudentID:        b.StudentID(),
		HostelID:         b.HostelID(),
		RoomID:           b.RoomID(),
		Status:           string(b.Status()),
		ActorID:          actorID,
		Reason:           reason,
		StartDate:        b.Period().Start,
		EndDate:          b.Period().End,
		TotalAmountCents: b.TotalAmountCents(),
		Currency:         b.Currency(),
		OccurredAt:       now.UTC(),
	}
	if previous != "" {
		evt.PreviousStatus = string(previous)
	}
	return evt
}
