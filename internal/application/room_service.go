package application

import (
	"context"
	"errors"
	"time"

	bookingDomain "github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/domain/booking"
	roomDomain "github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/domain/room"
	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/platform/apperr"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RoomSnapshot is the room listing carried by inbound room events.
type RoomSnapshot struct {
	RoomID            uuid.UUID `json:"room_id"`
	HostelID          uuid.UUID `json:"hostel_id"`
	RoomNumber        string    `json:"room_number"`
	Capacity          int       `json:"capacity"`
	CurrentOccupancy  int       `json:"current_occupancy"`
	PriceMonthlyCents int64     `json:"price_monthly_cents"`
	Currency          string    `json:"currency"`
	IsActive          bool      `json:"is_active"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// OccupancyUpdate reports a change in the number of residents of a room.
type OccupancyUpdate struct {
	RoomID           uuid.UUID `json:"room_id"`
	CurrentOccupancy int       `json:"current_occupancy"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// RoomDirectoryService keeps the room availability store in step with the
// listings service. Every write locks the room row and recomputes
// availability against the approved bookings it can see under that lock.
type RoomDirectoryService struct {
	uow    bookingDomain.UnitOfWork
	logger *zap.Logger
	now    func() time.Time
}

// NewRoomDirectoryService creates a new RoomDirectoryService.
func NewRoomDirectoryService(uow bookingDomain.UnitOfWork, logger *zap.Logger) *RoomDirectoryService {
	return &RoomDirectoryService{
		uow:    uow,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ApplySnapshot creates the room or overwrites its listing attributes.
func (s *RoomDirectoryService) ApplySnapshot(ctx context.Context, snap RoomSnapshot) error {
	if snap.RoomID == uuid.Nil || snap.HostelID == uuid.Nil {
		return apperr.NewValidationError("room and hostel IDs are required")
	}

	now := s.now()
	var rm *roomDomain.Room
	err := s.uow.WithinTransaction(ctx, func(tx bookingDomain.Repositories) error {
		var err error
		rm, err = tx.Rooms().FindByIDForUpdate(ctx, snap.RoomID)
		switch {
		case errors.Is(err, roomDomain.ErrRoomNotFound):
			rm, err = roomDomain.NewRoom(snap.RoomID, snap.HostelID, snap.RoomNumber, snap.Capacity, snap.PriceMonthlyCents, snap.Currency)
			if err != nil {
				return err
			}
			if err := rm.ApplyListing(snap.RoomNumber, snap.Capacity, snap.CurrentOccupancy, snap.PriceMonthlyCents, snap.Currency, snap.IsActive); err != nil {
				return err
			}
			return s.store(ctx, tx, rm, false, now)
		case err != nil:
			return err
		}

		if rm.HostelID() != snap.HostelID {
			return apperr.NewValidationError("room belongs to a different hostel")
		}
		if err := rm.ApplyListing(snap.RoomNumber, snap.Capacity, snap.CurrentOccupancy, snap.PriceMonthlyCents, snap.Currency, snap.IsActive); err != nil {
			return err
		}
		return s.store(ctx, tx, rm, true, now)
	})
	if err != nil {
		return err
	}

	s.logger.Info("room directory updated",
		zap.String("room_id", rm.ID().String()),
		zap.Bool("is_active", rm.IsActive()),
		zap.Bool("is_available", rm.IsAvailable()),
	)
	return nil
}

// ApplyOccupancy records a new occupancy count for a known room.
func (s *RoomDirectoryService) ApplyOccupancy(ctx context.Context, upd OccupancyUpdate) error {
	if upd.RoomID == uuid.Nil {
		return apperr.NewValidationError("room ID is required")
	}

	now := s.now()
	var rm *roomDomain.Room
	err := s.uow.WithinTransaction(ctx, func(tx bookingDomain.Repositories) error {
		var err error
		rm, err = tx.Rooms().FindByIDForUpdate(ctx, upd.RoomID)
		if err != nil {
			return err
		}
		if err := rm.SetOccupancy(upd.CurrentOccupancy); err != nil {
			return err
		}
		return s.store(ctx, tx, rm, true, now)
	})
	if err != nil {
		return err
	}

	s.logger.Info("room occupancy updated",
		zap.String("room_id", rm.ID().String()),
		zap.Int("current_occupancy", rm.CurrentOccupancy()),
		zap.Bool("is_available", rm.IsAvailable()),
	)
	return nil
}

func (s *RoomDirectoryService) store(ctx context.Context, tx bookingDomain.Repositories, rm *roomDomain.Room, existing bool, now time.Time) error {
	held, err := tx.Bookings().HasApprovedBooking(ctx, rm.ID(), nil)
	if err != nil {
		return err
	}
	rm.RecomputeAvailability(held, now)

	if !existing {
		return tx.Rooms().Save(ctx, rm)
	}
	rm.IncrementVersion(now)
	return tx.Rooms().Update(ctx, rm)
}
