package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	bookingDomain "github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/domain/booking"
	hostelDomain "github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/domain/hostel"
	roomDomain "github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/domain/room"
	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/platform/apperr"
	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/platform/auth"
	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/platform/pagination"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventPublisher delivers booking lifecycle events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, key string, data interface{}) error
}

// Settings carries the engine's tunables.
type Settings struct {
	ExpiryWindow time.Duration
	Currency     string
}

// DefaultExpiryWindow applies when Settings.ExpiryWindow is zero.
const DefaultExpiryWindow = 24 * time.Hour

// BookingService is the lifecycle engine. It is the only writer of booking
// status and of room availability.
type BookingService struct {
	uow      bookingDomain.UnitOfWork
	pricing  bookingDomain.PricingStrategy
	events   EventPublisher
	logger   *zap.Logger
	settings Settings
	now      func() time.Time
}

// Option customises a BookingService.
type Option func(*BookingService)

// WithEventPublisher enables lifecycle event publication.
func WithEventPublisher(p EventPublisher) Option {
	return func(s *BookingService) {
		s.events = p
	}
}

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *BookingService) {
		s.now = now
	}
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	uow bookingDomain.UnitOfWork,
	pricing bookingDomain.PricingStrategy,
	settings Settings,
	logger *zap.Logger,
	opts ...Option,
) *BookingService {
	if settings.ExpiryWindow <= 0 {
		settings.ExpiryWindow = DefaultExpiryWindow
	}
	if settings.Currency == "" {
		settings.Currency = "KES"
	}

	s := &BookingService{
		uow:      uow,
		pricing:  pricing,
		logger:   logger,
		settings: settings,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateBooking places a pending booking for a room. The room row is locked
// for the duration of the checks and the insert, so two overlapping requests
// for the same room cannot both pass the overlap scan.
func (s *BookingService) CreateBooking(ctx context.Context, studentID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	now := s.now()
	period, err := bookingDomain.NewPeriod(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if err := period.ValidateNotPast(now); err != nil {
		return nil, err
	}

	var (
		bk *bookingDomain.Booking
		rm *roomDomain.Room
		h  *hostelDomain.Hostel
	)
	err = s.uow.WithinTransaction(ctx, func(tx bookingDomain.Repositories) error {
		var err error
		rm, err = tx.Rooms().FindByIDForUpdate(ctx, req.RoomID)
		if err != nil {
			return err
		}
		if err := rm.CheckBookable(); err != nil {
			return err
		}

		h, err = tx.Hostels().FindByID(ctx, rm.HostelID())
		if err != nil {
			return err
		}
		if !h.IsApproved() {
			return hostelDomain.ErrHostelNotApproved
		}

		conflicts, err := tx.Bookings().FindOverlapping(ctx, rm.ID(), period, nil)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return bookingDomain.ErrPeriodUnavailable
		}

		total, err := s.pricing.Calculate(bookingDomain.PricingParams{
			MonthlyRateCents: rm.PriceMonthlyCents(),
			Period:           period,
		})
		if err != nil {
			return apperr.NewValidationError(fmt.Sprintf("pricing error: %v", err))
		}

		currency := rm.Currency()
		if currency == "" {
			currency = s.settings.Currency
		}

		bk, err = bookingDomain.NewBooking(
			studentID,
			h.ID,
			rm.ID(),
			period,
			total,
			currency,
			bookingDomain.Metadata{Notes: req.Notes, Attributes: req.Metadata},
			now,
			s.settings.ExpiryWindow,
		)
		if err != nil {
			return err
		}
		return tx.Bookings().Save(ctx, bk)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking created",
		zap.String("booking_id", bk.ID().String()),
		zap.String("room_id", bk.RoomID().String()),
		zap.String("student_id", studentID.String()),
	)
	s.publishLifecycle(ctx, bookingDomain.EventCreated, bk, "", &studentID, "")

	result := toBookingDTO(bk)
	result.withContext(h, rm)
	return &result, nil
}

// DecideBooking approves or rejects a pending booking on behalf of the
// hostel's landlord. Approval marks the room unavailable in the same unit.
func (s *BookingService) DecideBooking(ctx context.Context, bookingID, landlordID uuid.UUID, action DecisionAction, reason string) (*BookingDTO, error) {
	if !action.IsValid() {
		return nil, apperr.NewValidationError(fmt.Sprintf("invalid decision action: %s", action))
	}
	if action == ActionReject && strings.TrimSpace(reason) == "" {
		return nil, apperr.NewValidationError("a reason is required to reject a booking")
	}

	now := s.now()
	var bk *bookingDomain.Booking
	err := s.uow.WithinTransaction(ctx, func(tx bookingDomain.Repositories) error {
		var err error
		bk, err = tx.Bookings().FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}

		if err := s.authorizeLandlord(ctx, tx, bk.HostelID(), landlordID); err != nil {
			return err
		}

		switch action {
		case ActionApprove:
			err = bk.Approve(landlordID, reason, now)
		case ActionReject:
			err = bk.Reject(landlordID, reason, now)
		}
		if err != nil {
			return err
		}

		bk.IncrementVersion()
		if err := tx.Bookings().Update(ctx, bk); err != nil {
			return err
		}

		if action == ActionApprove {
			return s.syncRoomAvailability(ctx, tx, bk.RoomID(), nil, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	eventType := bookingDomain.EventRejected
	if action == ActionApprove {
		eventType = bookingDomain.EventApproved
	}
	s.logger.Info("booking decided",
		zap.String("booking_id", bookingID.String()),
		zap.String("action", string(action)),
		zap.String("landlord_id", landlordID.String()),
	)
	s.publishLifecycle(ctx, eventType, bk, bookingDomain.StatusPending, &landlordID, reason)

	result := toBookingDTO(bk)
	return &result, nil
}

// CancelBooking cancels a pending or approved booking on behalf of the
// student who made it. Cancelling an approved booking releases the room.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, studentID uuid.UUID, reason string) (*BookingDTO, error) {
	return s.cancel(ctx, bookingID, studentID, reason, false)
}

// ForceCancelBooking cancels any non-terminal booking on behalf of an
// administrator and retires it.
func (s *BookingService) ForceCancelBooking(ctx context.Context, bookingID, adminID uuid.UUID, reason string) (*BookingDTO, error) {
	return s.cancel(ctx, bookingID, adminID, reason, true)
}

func (s *BookingService) cancel(ctx context.Context, bookingID, actorID uuid.UUID, reason string, force bool) (*BookingDTO, error) {
	now := s.now()
	var (
		bk       *bookingDomain.Booking
		previous bookingDomain.BookingStatus
	)
	err := s.uow.WithinTransaction(ctx, func(tx bookingDomain.Repositories) error {
		var err error
		bk, err = tx.Bookings().FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if !force && bk.StudentID() != actorID {
			return bookingDomain.ErrNotAuthorized
		}

		// Captured before the transition: the release decision depends on
		// the status the booking had when we locked it.
		previous = bk.Status()
		if force {
			err = bk.ForceCancel(actorID, reason, now)
		} else {
			err = bk.Cancel(actorID, reason, now)
		}
		if err != nil {
			return err
		}

		bk.IncrementVersion()
		if err := tx.Bookings().Update(ctx, bk); err != nil {
			return err
		}

		if previous != bookingDomain.StatusApproved {
			return nil
		}
		bookingID := bk.ID()
		return s.syncRoomAvailability(ctx, tx, bk.RoomID(), &bookingID, now)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking cancelled",
		zap.String("booking_id", bookingID.String()),
		zap.String("previous_status", string(previous)),
		zap.Bool("forced", force),
	)
	s.publishLifecycle(ctx, bookingDomain.EventCancelled, bk, previous, &actorID, reason)

	result := toBookingDTO(bk)
	return &result, nil
}

// ExpireOldBookings moves every lapsed pending booking to expired in a
// single statement. Room availability is untouched: pending bookings never
// changed it. Safe to run repeatedly or concurrently.
func (s *BookingService) ExpireOldBookings(ctx context.Context) (int64, error) {
	now := s.now()
	count, err := s.uow.Bookings().ExpirePending(ctx, now)
	if err != nil {
		return 0, err
	}

	if count > 0 {
		s.logger.Info("expired pending bookings", zap.Int64("count", count))
		s.publish(ctx, bookingDomain.EventExpiredBatch, now.Format(time.RFC3339), bookingDomain.ExpiredBatchEvent{
			Count:      count,
			SweptAt:    now,
			OccurredAt: now,
		})
	}
	return count, nil
}

// GetBooking returns a booking visible to the actor: its student, the
// hostel's landlord, or an administrator.
func (s *BookingService) GetBooking(ctx context.Context, bookingID uuid.UUID, actor Actor) (*BookingDTO, error) {
	bk, err := s.uow.Bookings().FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	h, err := s.uow.Hostels().FindByID(ctx, bk.HostelID())
	if err != nil && !errors.Is(err, hostelDomain.ErrHostelNotFound) {
		return nil, err
	}

	switch actor.Role {
	case auth.RoleAdmin:
	case auth.RoleStudent:
		if bk.StudentID() != actor.ID {
			return nil, bookingDomain.ErrNotAuthorized
		}
	case auth.RoleLandlord:
		if h == nil || !h.OwnedBy(actor.ID) {
			return nil, bookingDomain.ErrNotAuthorized
		}
	default:
		return nil, bookingDomain.ErrNotAuthorized
	}

	rm, err := s.uow.Rooms().FindByID(ctx, bk.RoomID())
	if err != nil && !errors.Is(err, roomDomain.ErrRoomNotFound) {
		return nil, err
	}

	result := toBookingDTO(bk)
	result.withContext(h, rm)
	return &result, nil
}

// ListStudentBookings returns a page of a student's own bookings.
func (s *BookingService) ListStudentBookings(ctx context.Context, studentID uuid.UUID, page, limit int) (*pagination.Result[BookingDTO], error) {
	page, limit = pagination.Normalize(page, limit)
	bookings, total, err := s.uow.Bookings().FindByStudentID(ctx, studentID, page, limit)
	if err != nil {
		return nil, err
	}

	result := pagination.NewResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// ListHostelBookings returns a page of bookings for a hostel the landlord owns.
func (s *BookingService) ListHostelBookings(ctx context.Context, hostelID, landlordID uuid.UUID, page, limit int) (*pagination.Result[BookingDTO], error) {
	h, err := s.uow.Hostels().FindByID(ctx, hostelID)
	if err != nil {
		return nil, err
	}
	if !h.OwnedBy(landlordID) {
		return nil, bookingDomain.ErrNotAuthorized
	}

	page, limit = pagination.Normalize(page, limit)
	bookings, total, err := s.uow.Bookings().FindByHostelID(ctx, hostelID, page, limit)
	if err != nil {
		return nil, err
	}

	result := pagination.NewResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// --- Admin methods ---

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) (*pagination.Result[BookingDTO], error) {
	page, limit = pagination.Normalize(page, limit)
	bookings, total, err := s.uow.Bookings().ListAll(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	result := pagination.NewResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.uow.Bookings().CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}

// --- Helpers ---

// authorizeLandlord checks hostel ownership. A hostel missing from the
// directory cannot be owned by anyone.
func (s *BookingService) authorizeLandlord(ctx context.Context, tx bookingDomain.Repositories, hostelID, landlordID uuid.UUID) error {
	h, err := tx.Hostels().FindByID(ctx, hostelID)
	if err != nil {
		if errors.Is(err, hostelDomain.ErrHostelNotFound) {
			return bookingDomain.ErrNotAuthorized
		}
		return err
	}
	if !h.OwnedBy(landlordID) {
		return bookingDomain.ErrNotAuthorized
	}
	return nil
}

// syncRoomAvailability locks the room and recomputes its availability flag.
// The approved-booking lookup must run after the lock is granted so it sees
// every approval committed by transactions that held the room before us.
func (s *BookingService) syncRoomAvailability(ctx context.Context, tx bookingDomain.Repositories, roomID uuid.UUID, excludeID *uuid.UUID, now time.Time) error {
	rm, err := tx.Rooms().FindByIDForUpdate(ctx, roomID)
	if err != nil {
		return err
	}
	held, err := tx.Bookings().HasApprovedBooking(ctx, roomID, excludeID)
	if err != nil {
		return err
	}
	if !rm.RecomputeAvailability(held, now) {
		return nil
	}
	rm.IncrementVersion(now)
	return tx.Rooms().Update(ctx, rm)
}

func (s *BookingService) publishLifecycle(ctx context.Context, eventType string, bk *bookingDomain.Booking, previous bookingDomain.BookingStatus, actorID *uuid.UUID, reason string) {
	evt := bookingDomain.NewLifecycleEvent(bk, previous, actorID, reason, s.now())
	s.publish(ctx, eventType, bk.ID().String(), evt)
}

// publish is best-effort: the state change is already committed.
func (s *BookingService) publish(ctx context.Context, eventType, key string, data interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, eventType, key, data); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("event_type", eventType),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
