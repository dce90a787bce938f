package room

import (
	"time"

	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/platform/apperr"
	"github.com/google/uuid"
)

var (
	ErrRoomNotFound    = apperr.New(apperr.KindNotFound, "ROOM_NOT_FOUND", "room not found")
	ErrRoomInactive    = apperr.New(apperr.KindPolicy, "ROOM_INACTIVE", "room is not active")
	ErrRoomUnavailable = apperr.New(apperr.KindPolicy, "ROOM_UNAVAILABLE", "room is not available for booking")
)

// Room is a bookable unit inside a hostel. Its availability flag is stored
// but always recomputed from occupancy and approval state.
type Room struct {
	id                uuid.UUID
	hostelID          uuid.UUID
	roomNumber        string
	capacity          int
	currentOccupancy  int
	priceMonthlyCents int64
	currency          string
	isAvailable       bool
	isActive          bool
	version           int64
	createdAt         time.Time
	updatedAt         time.Time
}

// NewRoom creates an active, available room under the ID assigned by the
// listings service.
func NewRoom(id, hostelID uuid.UUID, roomNumber string, capacity int, priceMonthlyCents int64, currency string) (*Room, error) {
	if id == uuid.Nil || hostelID == uuid.Nil {
		return nil, apperr.NewValidationError("room and hostel IDs are required")
	}
	if err := validateListing(roomNumber, capacity, 0, priceMonthlyCents); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Room{
		id:                id,
		hostelID:          hostelID,
		roomNumber:        roomNumber,
		capacity:          capacity,
		priceMonthlyCents: priceMonthlyCents,
		currency:          currency,
		isAvailable:       true,
		isActive:          true,
		version:           1,
		createdAt:         now,
		updatedAt:         now,
	}, nil
}

// ReconstructRoom rebuilds a Room from persistence data (no validation).
func ReconstructRoom(
	id uuid.UUID,
	hostelID uuid.UUID,
	roomNumber string,
	capacity int,
	currentOccupancy int,
	priceMonthlyCents int64,
	currency string,
	isAvailable bool,
	isActive bool,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Room {
	return &Room{
		id:                id,
		hostelID:          hostelID,
		roomNumber:        roomNumber,
		capacity:          capacity,
		currentOccupancy:  currentOccupancy,
		priceMonthlyCents: priceMonthlyCents,
		currency:          currency,
		isAvailable:       isAvailable,
		isActive:          isActive,
		version:           version,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

func (r *Room) ID() uuid.UUID { return r.id }
func (r *Room) HostelID() uuid.UUID { return r.hostelID }
func (r *Room) RoomNumber() string { return r.roomNumber }
func (r *Room) Capacity() int { return r.capacity }
func (r *Room) CurrentOccupancy() int { return r.currentOccupancy }
func (r *Room) PriceMonthlyCents() int64 { return r.priceMonthlyCents }
func (r *Room) Currency() string { return r.currency }
func (r *Room) IsAvailable() bool { return r.isAvailable }
func (r *Room) IsActive() bool { return r.isActive }
func (r *Room) Version() int64 { return r.version }
func (r *Room) CreatedAt() time.Time { return r.createdAt }
func (r *Room) UpdatedAt() time.Time { return r.updatedAt }
func (r *Room) IsFull() bool { return r.currentOccupancy >= r.capacity }

// CheckBookable returns the first reason the room cannot take a new booking.
func (r *Room) CheckBookable() error {
	if !r.isActive {
		return ErrRoomInactive
	}
	if !r.isAvailable {
		return ErrRoomUnavailable
	}
	return nil
}

// RecomputeAvailability derives isAvailable from occupancy and whether an
// approved booking currently holds the room. It reports whether the flag changed.
func (r *Room) RecomputeAvailability(heldByApprovedBooking bool, now time.Time) bool {
	available := !r.IsFull() && !heldByApprovedBooking
	if available == r.isAvailable {
		return false
	}
	r.isAvailable = available
	r.updatedAt = now
	return true
}

// SetOccupancy updates the occupancy count, keeping it within capacity.
func (r *Room) SetOccupancy(occupancy int) error {
	if occupancy < 0 || occupancy > r.capacity {
		return apperr.NewValidationError("occupancy must be between 0 and capacity")
	}
	r.currentOccupancy = occupancy
	return nil
}

// ApplyListing overwrites the catalog-owned attributes of the room. An
// empty currency keeps the current one.
func (r *Room) ApplyListing(roomNumber string, capacity, occupancy int, priceMonthlyCents int64, currency string, active bool) error {
	if err := validateListing(roomNumber, capacity, occupancy, priceMonthlyCents); err != nil {
		return err
	}
	r.roomNumber = roomNumber
	r.capacity = capacity
	r.currentOccupancy = occupancy
	r.priceMonthlyCents = priceMonthlyCents
	if currency != "" {
		r.currency = currency
	}
	r.isActive = active
	return nil
}

func validateListing(roomNumber string, capacity, occupancy int, priceMonthlyCents int64) error {
	if roomNumber == "" {
		return apperr.NewValidationError("room number is required")
	}
	if capacity <= 0 {
		return apperr.NewValidationError("capacity must be positive")
	}
	if occupancy < 0 || occupancy > capacity {
		return apperr.NewValidationError("occupancy must be between 0 and capacity")
	}
	if priceMonthlyCents < 0 {
		return apperr.NewValidationError("price cannot be negative")
	}
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (r *Room) IncrementVersion(now time.Time) {
	r.version++
	r.updatedAt = now
}
