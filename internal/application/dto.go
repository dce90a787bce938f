package application

import (
	"time"

	bookingDomain "github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/domain/booking"
	hostelDomain "github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/domain/hostel"
	roomDomain "github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/domain/room"
	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/platform/auth"
	"github.com/google/uuid"
)

// CreateBookingRequest holds the data for placing a booking.
type CreateBookingRequest struct {
	RoomID    uuid.UUID         `json:"room_id" binding:"required"`
	StartDate time.Time         `json:"start_date" binding:"required"`
	EndDate   time.Time         `json:"end_date" binding:"required"`
	Notes     string            `json:"notes"`
	Metadata  map[string]string `json:"metadata"`
}

// DecisionAction is a landlord's verdict on a pending booking.
type DecisionAction string

const (
	ActionApprove DecisionAction = "approve"
	ActionReject  DecisionAction = "reject"
)

// IsValid reports whether the action is known.
func (a DecisionAction) IsValid() bool {
	return a == ActionApprove || a == ActionReject
}

// DecisionRequest holds a landlord's decision.
type DecisionRequest struct {
	Action DecisionAction `json:"action" binding:"required"`
	Reason string         `json:"reason"`
}

// CancelRequest holds an optional cancellation reason.
type CancelRequest struct {
	Reason string `json:"reason"`
}

// Actor identifies the caller of a read operation.
type Actor struct {
	ID   uuid.UUID
	Role auth.Role
}

// BookingDTO is the API response representation of a booking.
type BookingDTO struct {
	ID               uuid.UUID                   `json:"id"`
	BookingNumber    string                      `json:"booking_number"`
	StudentID        uuid.UUID                   `json:"student_id"`
	HostelID         uuid.UUID                   `json:"hostel_id"`
	HostelName       string                      `json:"hostel_name,omitempty"`
	RoomID           uuid.UUID                   `json:"room_id"`
	RoomNumber       string                      `json:"room_number,omitempty"`
	StartDate        time.Time                   `json:"start_date"`
	EndDate          time.Time                   `json:"end_date"`
	Nights           int64                       `json:"nights"`
	Status           string                      `json:"status"`
	TotalAmountCents int64                       `json:"total_amount_cents"`
	Currency         string                      `json:"currency"`
	IsActive         bool                        `json:"is_active"`
	ExpiresAt        *time.Time                  `json:"expires_at,omitempty"`
	LockedAt         *time.Time                  `json:"locked_at,omitempty"`
	Decision         *bookingDomain.Decision     `json:"decision,omitempty"`
	Cancellation     *bookingDomain.Cancellation `json:"cancellation,omitempty"`
	Notes            string                      `json:"notes,omitempty"`
	Metadata         map[string]string           `json:"metadata,omitempty"`
	Version          int64                       `json:"version"`
	CreatedAt        time.Time                   `json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
}

func toBookingDTO(b *bookingDomain.Booking) BookingDTO {
	meta := b.Metadata()
	return BookingDTO{
		ID:               b.ID(),
		BookingNumber:    b.BookingNumber(),
		StudentID:        b.StudentID(),
		HostelID:         b.HostelID(),
		RoomID:           b.RoomID(),
		StartDate:        b.Period().Start,
		EndDate:          b.Period().End,
		Nights:           b.Period().Nights(),
		Status:           string(b.Status()),
		TotalAmountCents: b.TotalAmountCents(),
		Currency:         b.Currency(),
		IsActive:         b.IsActive(),
		ExpiresAt:        b.ExpiresAt(),
		LockedAt:         b.LockedAt(),
		Decision:         b.Decision(),
		Cancellation:     b.Cancellation(),
		Notes:            meta.Notes,
		Metadata:         meta.Attributes,
		Version:          b.Version(),
		CreatedAt:        b.CreatedAt(),
		UpdatedAt:        b.UpdatedAt(),
	}
}

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, b := range bookings {
		dtos[i] = toBookingDTO(b)
	}
	return dtos
}

// withContext fills in display names when the hostel or room is known.
func (d *BookingDTO) withContext(h *hostelDomain.Hostel, rm *roomDomain.Room) {
	if h != nil {
		d.HostelName = h.Name
	}
	if rm != nil {
		d.RoomNumber = rm.RoomNumber()
	}
}
