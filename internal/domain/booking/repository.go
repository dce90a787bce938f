package booking

import (
	"context"
	"time"

	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/domain/hostel"
	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/domain/room"
	"github.com/google/uuid"
)

// BookingRepository defines the persistence contract for the booking ledger.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByIDForUpdate retrieves a booking and locks it until the
	// surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindOverlapping returns the pending or approved bookings of a room whose
	// period overlaps the given one, optionally ignoring one booking.
	FindOverlapping(ctx context.Context, roomID uuid.UUID, period Period, excludeID *uuid.UUID) ([]*Booking, error)

	// HasApprovedBooking reports whether an active approved booking other than
	// excludeID holds the room.
	HasApprovedBooking(ctx context.Context, roomID uuid.UUID, excludeID *uuid.UUID) (bool, error)

	// FindByStudentID retrieves bookings made by a student with pagination.
	FindByStudentID(ctx context.Context, studentID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindByHostelID retrieves bookings for a hostel's rooms with pagination.
	FindByHostelID(ctx context.Context, hostelID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error

	// ExpirePending moves every active pending booking whose expiry is before
	// now to expired in one statement and returns how many changed.
	ExpirePending(ctx context.Context, now time.Time) (int64, error)
}

// Repositories groups the stores touched by the lifecycle engine.
type Repositories interface {
	Bookings() BookingRepository
	Rooms() room.Repository
	Hostels() hostel.Repository
}

// UnitOfWork runs a function against repositories bound to one atomic unit.
// If fn returns an error every write made through tx is rolled back.
type UnitOfWork interface {
	Repositories
	WithinTransaction(ctx context.Context, fn func(tx Repositories) error) error
}
