package application

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	bookingDomain "github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/domain/booking"
	hostelDomain "github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/domain/hostel"
	roomDomain "github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/domain/room"
	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/platform/pagination"
	"github.com/google/uuid"
)

// memStore is an in-memory UnitOfWork. Transactions are serialised by one
// mutex, which stands in for row locks, and roll back by restoring a snapshot.
type memStore struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]bookingDomain.Booking
	rooms    map[uuid.UUID]roomDomain.Room
	hostels  map[uuid.UUID]hostelDomain.Hostel

	// lockWait runs once, inside the next transactional room lock. It models
	// another transaction committing while this one waits for the row.
	lockWait func(s *memStore)
}

func newMemStore() *memStore {
	return &memStore{
		bookings: make(map[uuid.UUID]bookingDomain.Booking),
		rooms:    make(map[uuid.UUID]roomDomain.Room),
		hostels:  make(map[uuid.UUID]hostelDomain.Hostel),
	}
}

func (s *memStore) Bookings() bookingDomain.BookingRepository { return &memBookings{view{s, false}} }
func (s *memStore) Rooms() roomDomain.Repository { return &memRooms{view{s, false}} }
func (s *memStore) Hostels() hostelDomain.Repository { return &memHostels{view{s, false}} }

func (s *memStore) WithinTransaction(ctx context.Context, fn func(tx bookingDomain.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bookings := maps.Clone(s.bookings)
	rooms := maps.Clone(s.rooms)
	hostels := maps.Clone(s.hostels)

	if err := fn(memTx{s}); err != nil {
		s.bookings, s.rooms, s.hostels = bookings, rooms, hostels
		return err
	}
	return nil
}

type memTx struct{ s *memStore }

func (t memTx) Bookings() bookingDomain.BookingRepository { return &memBookings{view{t.s, true}} }
func (t memTx) Rooms() roomDomain.Repository { return &memRooms{view{t.s, true}} }
func (t memTx) Hostels() hostelDomain.Repository { return &memHostels{view{t.s, true}} }

type view struct {
	s  *memStore
	tx bool
}

func (v view) do(fn func()) {
	if !v.tx {
		v.s.mu.Lock()
		defer v.s.mu.Unlock()
	}
	fn()
}

// --- bookings ---

type memBookings struct{ view }

func (r *memBookings) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var (
		out *bookingDomain.Booking
		err error
	)
	r.do(func() {
		b, ok := r.s.bookings[id]
		if !ok {
			err = bookingDomain.ErrBookingNotFound
			return
		}
		out = &b
	})
	return out, err
}

func (r *memBookings) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	return r.FindByID(ctx, id)
}

func (r *memBookings) FindOverlapping(_ context.Context, roomID uuid.UUID, period bookingDomain.Period, excludeID *uuid.UUID) ([]*bookingDomain.Booking, error) {
	var out []*bookingDomain.Booking
	r.do(func() {
		for id, b := range r.s.bookings {
			if b.RoomID() != roomID || !b.HoldsRoomPeriod() {
				continue
			}
			if excludeID != nil && id == *excludeID {
				continue
			}
			if b.Period().Overlaps(period) {
				b := b
				out = append(out, &b)
			}
		}
	})
	return out, nil
}

func (r *memBookings) HasApprovedBooking(_ context.Context, roomID uuid.UUID, excludeID *uuid.UUID) (bool, error) {
	var held bool
	r.do(func() {
		for id, b := range r.s.bookings {
			if excludeID != nil && id == *excludeID {
				continue
			}
			if b.RoomID() == roomID && b.Status() == bookingDomain.StatusApproved && b.IsActive() {
				held = true
				return
			}
		}
	})
	return held, nil
}

func (r *memBookings) page(match func(b *bookingDomain.Booking) bool, page, limit int) ([]*bookingDomain.Booking, int64) {
	var all []*bookingDomain.Booking
	r.do(func() {
		for _, b := range r.s.bookings {
			b := b
			if match(&b) {
				all = append(all, &b)
			}
		}
	})
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt().After(all[j].CreatedAt()) })

	total := int64(len(all))
	offset := pagination.Offset(page, limit)
	if offset >= len(all) {
		return []*bookingDomain.Booking{}, total
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total
}

func (r *memBookings) FindByStudentID(_ context.Context, studentID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	items, total := r.page(func(b *bookingDomain.Booking) bool { return b.StudentID() == studentID }, page, limit)
	return items, total, nil
}

func (r *memBookings) FindByHostelID(_ context.Context, hostelID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	items, total := r.page(func(b *bookingDomain.Booking) bool { return b.HostelID() == hostelID }, page, limit)
	return items, total, nil
}

func (r *memBookings) ListAll(_ context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	items, total := r.page(func(*bookingDomain.Booking) bool { return true }, page, limit)
	return items, total, nil
}

func (r *memBookings) CountByStatus(_ context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	r.do(func() {
		for _, b := range r.s.bookings {
			counts[string(b.Status())]++
		}
	})
	return counts, nil
}

func (r *memBookings) Save(_ context.Context, b *bookingDomain.Booking) error {
	r.do(func() {
		r.s.bookings[b.ID()] = *b
	})
	return nil
}

func (r *memBookings) Update(_ context.Context, b *bookingDomain.Booking) error {
	var err error
	r.do(func() {
		stored, ok := r.s.bookings[b.ID()]
		if !ok || stored.Version() != b.Version()-1 {
			err = bookingDomain.ErrConcurrentModified
			return
		}
		r.s.bookings[b.ID()] = *b
	})
	return err
}

func (r *memBookings) ExpirePending(_ context.Context, now time.Time) (int64, error) {
	var count int64
	r.do(func() {
		for id, b := range r.s.bookings {
			if !b.IsExpiredAt(now) {
				continue
			}
			if err := b.Expire(now); err != nil {
				continue
			}
			b.IncrementVersion()
			r.s.bookings[id] = b
			count++
		}
	})
	return count, nil
}

// --- rooms ---

type memRooms struct{ view }

func (r *memRooms) FindByID(_ context.Context, id uuid.UUID) (*roomDomain.Room, error) {
	var (
		out *roomDomain.Room
		err error
	)
	r.do(func() {
		rm, ok := r.s.rooms[id]
		if !ok {
			err = roomDomain.ErrRoomNotFound
			return
		}
		out = &rm
	})
	return out, err
}

func (r *memRooms) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*roomDomain.Room, error) {
	if r.tx && r.s.lockWait != nil {
		wait := r.s.lockWait
		r.s.lockWait = nil
		wait(r.s)
	}
	return r.FindByID(ctx, id)
}

func (r *memRooms) Save(_ context.Context, rm *roomDomain.Room) error {
	r.do(func() {
		r.s.rooms[rm.ID()] = *rm
	})
	return nil
}

func (r *memRooms) Update(_ context.Context, rm *roomDomain.Room) error {
	var err error
	r.do(func() {
		stored, ok := r.s.rooms[rm.ID()]
		if !ok || stored.Version() != rm.Version()-1 {
			err = bookingDomain.ErrConcurrentModified
			return
		}
		r.s.rooms[rm.ID()] = *rm
	})
	return err
}

// --- hostels ---

type memHostels struct{ view }

func (r *memHostels) FindByID(_ context.Context, id uuid.UUID) (*hostelDomain.Hostel, error) {
	var (
		out *hostelDomain.Hostel
		err error
	)
	r.do(func() {
		h, ok := r.s.hostels[id]
		if !ok {
			err = hostelDomain.ErrHostelNotFound
			return
		}
		out = &h
	})
	return out, err
}

func (r *memHostels) Upsert(_ context.Context, h *hostelDomain.Hostel) error {
	r.do(func() {
		if stored, ok := r.s.hostels[h.ID]; ok && stored.UpdatedAt.After(h.UpdatedAt) {
			return
		}
		r.s.hostels[h.ID] = *h
	})
	return nil
}
