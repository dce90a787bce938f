package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/platform/apperr"
	"github.com/google/uuid"
)

const bookingNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Decision records who approved or rejected a booking.
type Decision struct {
	DecidedBy uuid.UUID `json:"decided_by"`
	DecidedAt time.Time `json:"decided_at"`
	Reason    string    `json:"reason,omitempty"`
}

// Cancellation records who cancelled a booking.
type Cancellation struct {
	CancelledBy uuid.UUID `json:"cancelled_by"`
	CancelledAt time.Time `json:"cancelled_at"`
	Reason      string    `json:"reason,omitempty"`
}

// Metadata is caller-supplied context stored with a booking.
type Metadata struct {
	Notes      string            `json:"notes,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Booking is the aggregate root for the booking ledger.
type Booking struct {
	id            uuid.UUID
	bookingNumber string
	studentID     uuid.UUID
	hostelID      uuid.UUID
	roomID        uuid.UUID
	period        Period
	status        BookingStatus

	totalAmountCents int64
	currency         string

	isActive     bool
	expiresAt    *time.Time
	lockedAt     *time.Time
	decision     *Decision
	cancellation *Cancellation
	metadata     Metadata

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateBookingNumber creates a booking number in the format "HB-XXXXXX".
func generateBookingNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking number: %w", err)
		}
		result[i] = bookingNumberChars[n.Int64()]
	}
	return "HB-" + string(result), nil
}

// NewBooking creates a new Booking aggregate with status=pending that expires
// after expiryWindow unless decided.
func NewBooking(
	studentID uuid.UUID,
	hostelID uuid.UUID,
	roomID uuid.UUID,
	period Period,
	totalAmountCents int64,
	currency string,
	metadata Metadata,
	now time.Time,
	expiryWindow time.Duration,
) (*Booking, error) {
	if studentID == uuid.Nil {
		return nil, apperr.NewValidationError("student ID is required")
	}
	if hostelID == uuid.Nil || roomID == uuid.Nil {
		return nil, apperr.NewValidationError("hostel and room IDs are required")
	}
	if !period.Start.Before(period.End) {
		return nil, apperr.NewValidationError("start date must be before end date")
	}
	if totalAmountCents < 0 {
		return nil, apperr.NewValidationError("total amount cannot be negative")
	}
	if expiryWindow <= 0 {
		return nil, apperr.NewValidationError("expiry window must be positive")
	}

	bookingNumber, err := generateBookingNumber()
	if err != nil {
		return nil, err
	}

	now = now.UTC()
	expiresAt := now.Add(expiryWindow)
	lockedAt := now
	return &Booking{
		id:               uuid.New(),
		bookingNumber:    bookingNumber,
		studentID:        studentID,
		hostelID:         hostelID,
		roomID:           roomID,
		period:           period,
		status:           StatusPending,
		totalAmountCents: totalAmountCents,
		currency:         currency,
		isActive:         true,
		expiresAt:        &expiresAt,
		lockedAt:         &lockedAt,
		metadata:         metadata,
		version:          1,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	bookingNumber string,
	studentID uuid.UUID,
	hostelID uuid.UUID,
	roomID uuid.UUID,
	period Period,
	status BookingStatus,
	totalAmountCents int64,
	currency string,
	isActive bool,
	expiresAt *time.Time,
	lockedAt *time.Time,
	decision *Decision,
	cancellation *Cancellation,
	metadata Metadata,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:               id,
		bookingNumber:    bookingNumber,
		studentID:        studentID,
		hostelID:         hostelID,
		roomID:           roomID,
		period:           period,
		status:           status,
		totalAmountCents: totalAmountCents,
		currency:         currency,
		isActive:         isActive,
		expiresAt:        expiresAt,
		lockedAt:         lockedAt,
		decision:         decision,
		cancellation:     cancellation,
		metadata:         metadata,
		version:          version,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// BookingNumber returns the human-readable booking number.
func (b *Booking) BookingNumber() string { return b.bookingNumber }

// StudentID returns the ID of the student who made the booking.
func (b *Booking) StudentID() uuid.UUID { return b.studentID }

// HostelID returns the parent hostel of the booked room.
func (b *Booking) HostelID() uuid.UUID { return b.hostelID }

// RoomID returns the booked room.
func (b *Booking) RoomID() uuid.UUID { return b.roomID }

// Period returns the requested stay.
func (b *Booking) Period() Period { return b.period }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// TotalAmountCents returns the prorated total in cents.
func (b *Booking) TotalAmountCents() int64 { return b.totalAmountCents }

// Currency returns the currency code.
func (b *Booking) Currency() string { return b.currency }

// IsActive is false once an admin force-cancels the booking or it expires.
func (b *Booking) IsActive() bool { return b.isActive }

// ExpiresAt returns when an undecided booking lapses.
func (b *Booking) ExpiresAt() *time.Time { return b.expiresAt }

// LockedAt returns when the booking claimed its period.
func (b *Booking) LockedAt() *time.Time { return b.lockedAt }

// Decision returns the landlord decision, or nil if undecided.
func (b *Booking) Decision() *Decision { return b.decision }

// Cancellation returns the cancellation record, or nil if not cancelled.
func (b *Booking) Cancellation() *Cancellation { return b.cancellation }

// Metadata returns the caller-supplied metadata.
func (b *Booking) Metadata() Metadata { return b.metadata }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// HoldsRoomPeriod reports whether this booking blocks its period for others.
func (b *Booking) HoldsRoomPeriod() bool { return b.status.HoldsPeriod() }

// --- Behavior ---

// Approve transitions the booking from pending to approved.
func (b *Booking) Approve(landlordID uuid.UUID, reason string, now time.Time) error {
	return b.decide(StatusApproved, landlordID, reason, now)
}

// Reject transitions the booking from pending to rejected.
func (b *Booking) Reject(landlordID uuid.UUID, reason string, now time.Time) error {
	return b.decide(StatusRejected, landlordID, reason, now)
}

func (b *Booking) decide(target BookingStatus, landlordID uuid.UUID, reason string, now time.Time) error {
	if !b.status.CanTransitionTo(target) {
		return apperr.NewInvalidStateError(string(b.status), string(target))
	}
	if landlordID == uuid.Nil {
		return apperr.NewValidationError("landlord ID is required")
	}
	now = now.UTC()
	b.status = target
	b.decision = &Decision{DecidedBy: landlordID, DecidedAt: now, Reason: reason}
	b.updatedAt = now
	return nil
}

// Cancel transitions a pending or approved booking to cancelled.
func (b *Booking) Cancel(cancelledBy uuid.UUID, reason string, now time.Time) error {
	if !b.status.CanBeCancelled() {
		return apperr.NewInvalidStateError(string(b.status), string(StatusCancelled))
	}
	now = now.UTC()
	b.status = StatusCancelled
	b.cancellation = &Cancellation{CancelledBy: cancelledBy, CancelledAt: now, Reason: reason}
	b.updatedAt = now
	return nil
}

// ForceCancel cancels the booking on behalf of an administrator and retires it.
func (b *Booking) ForceCancel(adminID uuid.UUID, reason string, now time.Time) error {
	if err := b.Cancel(adminID, reason, now); err != nil {
		return err
	}
	b.isActive = false
	return nil
}

// IsExpiredAt reports whether a pending booking has passed its expiry time.
func (b *Booking) IsExpiredAt(now time.Time) bool {
	return b.status == StatusPending && b.isActive && b.expiresAt != nil && b.expiresAt.Before(now)
}

// Expire transitions a lapsed pending booking to expired.
func (b *Booking) Expire(now time.Time) error {
	if !b.status.CanTransitionTo(StatusExpired) {
		return apperr.NewInvalidStateError(string(b.status), string(StatusExpired))
	}
	b.status = StatusExpired
	b.isActive = false
	b.updatedAt = now.UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
}
