package repository

import (
	"context"

	bookingDomain "github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/domain/booking"
	hostelDomain "github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/domain/hostel"
	roomDomain "github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/domain/room"
	"gorm.io/gorm"
)

// GormUnitOfWork hands out repositories bound either to the shared pool or,
// inside WithinTransaction, to a single database transaction.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork.
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// Bookings returns the booking ledger.
func (u *GormUnitOfWork) Bookings() bookingDomain.BookingRepository {
	return NewGormBookingRepository(u.db)
}

// Rooms returns the room availability store.
func (u *GormUnitOfWork) Rooms() roomDomain.Repository {
	return NewGormRoomRepository(u.db)
}

// Hostels returns the hostel directory.
func (u *GormUnitOfWork) Hostels() hostelDomain.Repository {
	return NewGormHostelRepository(u.db)
}

// WithinTransaction runs fn in a transaction. Row locks taken through the
// ForUpdate finders are held until fn returns; any error rolls back.
func (u *GormUnitOfWork) WithinTransaction(ctx context.Context, fn func(tx bookingDomain.Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormUnitOfWork{db: tx})
	})
}

var _ bookingDomain.UnitOfWork = (*GormUnitOfWork)(nil)
