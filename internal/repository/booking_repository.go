package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bookingDomain "github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/domain/booking"
	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/platform/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BookingNumber      string          `gorm:"uniqueIndex;not null;size:20"`
	StudentID          uuid.UUID       `gorm:"type:uuid;index;not null"`
	HostelID           uuid.UUID       `gorm:"type:uuid;index;not null"`
	RoomID             uuid.UUID       `gorm:"type:uuid;not null;index:idx_bookings_room_period,priority:1"`
	StartDate          time.Time       `gorm:"not null;index:idx_bookings_room_period,priority:3"`
	EndDate            time.Time       `gorm:"not null;index:idx_bookings_room_period,priority:4"`
	Status             string          `gorm:"not null;size:20;index:idx_bookings_room_period,priority:2"`
	TotalAmountCents   int64           `gorm:"not null"`
	Currency           string          `gorm:"not null;size:3;default:'KES'"`
	IsActive           bool            `gorm:"not null;default:true"`
	ExpiresAt          *time.Time      `gorm:"index"`
	LockedAt           *time.Time      `gorm:""`
	DecidedBy          *uuid.UUID      `gorm:"type:uuid"`
	DecidedAt          *time.Time      `gorm:""`
	DecisionReason     string          `gorm:"size:500"`
	CancelledBy        *uuid.UUID      `gorm:"type:uuid"`
	CancelledAt        *time.Time      `gorm:""`
	CancellationReason string          `gorm:"size:500"`
	Metadata           json.RawMessage `gorm:"type:jsonb"`
	Version            int64           `gorm:"not null;default:1"`
	CreatedAt          time.Time       `gorm:"not null"`
	UpdatedAt          time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// holdingStatuses are the statuses that block a room period.
var holdingStatuses = []string{
	string(bookingDomain.StatusPending),
	string(bookingDomain.StatusApproved),
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	return r.findOne(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate retrieves a booking with a row lock held until the transaction ends.
func (r *GormBookingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	return r.findOne(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormBookingRepository) findOne(db *gorm.DB, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := db.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bookingDomain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindOverlapping returns pending or approved bookings on the room whose
// period intersects the given one (inclusive boundaries).
func (r *GormBookingRepository) FindOverlapping(ctx context.Context, roomID uuid.UUID, period bookingDomain.Period, excludeID *uuid.UUID) ([]*bookingDomain.Booking, error) {
	query := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Where("status IN ?", holdingStatuses).
		Where("start_date <= ? AND end_date >= ?", period.End, period.Start)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var models []BookingModel
	if err := query.Order("start_date ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find overlapping bookings: %w", err)
	}
	return toDomainBookings(models)
}

// HasApprovedBooking reports whether another active approved booking holds the room.
func (r *GormBookingRepository) HasApprovedBooking(ctx context.Context, roomID uuid.UUID, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("room_id = ? AND status = ? AND is_active = ?", roomID, string(bookingDomain.StatusApproved), true)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count approved bookings: %w", err)
	}
	return count > 0, nil
}

// FindByStudentID retrieves bookings for a specific student with pagination.
func (r *GormBookingRepository) FindByStudentID(ctx context.Context, studentID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.paginate(ctx, r.db.Where("student_id = ?", studentID), page, limit)
}

// FindByHostelID retrieves bookings for a specific hostel with pagination.
func (r *GormBookingRepository) FindByHostelID(ctx context.Context, hostelID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.paginate(ctx, r.db.Where("hostel_id = ?", hostelID), page, limit)
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.paginate(ctx, r.db, page, limit)
}

func (r *GormBookingRepository) paginate(ctx context.Context, scope *gorm.DB, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := scope.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	if err := scope.WithContext(ctx).
		Order("created_at DESC").
		Offset(pagination.Offset(page, limit)).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}

	// Only update if the stored version is the one we loaded (IncrementVersion was called).
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":              model.Status,
			"is_active":           model.IsActive,
			"decided_by":          model.DecidedBy,
			"decided_at":          model.DecidedAt,
			"decision_reason":     model.DecisionReason,
			"cancelled_by":        model.CancelledBy,
			"cancelled_at":        model.CancelledAt,
			"cancellation_reason": model.CancellationReason,
			"metadata":            model.Metadata,
			"version":             model.Version,
			"updated_at":          model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return bookingDomain.ErrConcurrentModified
	}

	return nil
}

// ExpirePending expires every active pending booking whose expiry is before now.
func (r *GormBookingRepository) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("status = ? AND is_active = ? AND expires_at < ?", string(bookingDomain.StatusPending), true, now).
		Updates(map[string]interface{}{
			"status":     string(bookingDomain.StatusExpired),
			"is_active":  false,
			"version":    gorm.Expr("version + 1"),
			"updated_at": now,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to expire pending bookings: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) (*BookingModel, error) {
	metadataJSON, err := json.Marshal(bk.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	model := &BookingModel{
		ID:               bk.ID(),
		BookingNumber:    bk.BookingNumber(),
		StudentID:        bk.StudentID(),
		HostelID:         bk.HostelID(),
		RoomID:           bk.RoomID(),
		StartDate:        bk.Period().Start,
		EndDate:          bk.Period().End,
		Status:           string(bk.Status()),
		TotalAmountCents: bk.TotalAmountCents(),
		Currency:         bk.Currency(),
		IsActive:         bk.IsActive(),
		ExpiresAt:        bk.ExpiresAt(),
		LockedAt:         bk.LockedAt(),
		Metadata:         metadataJSON,
		Version:          bk.Version(),
		CreatedAt:        bk.CreatedAt(),
		UpdatedAt:        bk.UpdatedAt(),
	}

	if d := bk.Decision(); d != nil {
		decidedBy, decidedAt := d.DecidedBy, d.DecidedAt
		model.DecidedBy = &decidedBy
		model.DecidedAt = &decidedAt
		model.DecisionReason = d.Reason
	}
	if c := bk.Cancellation(); c != nil {
		cancelledBy, cancelledAt := c.CancelledBy, c.CancelledAt
		model.CancelledBy = &cancelledBy
		model.CancelledAt = &cancelledAt
		model.CancellationReason = c.Reason
	}

	return model, nil
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	var metadata bookingDomain.Metadata
	if len(m.Metadata) > 0 {
		if err := json.Unmarshal(m.Metadata, &metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	var decision *bookingDomain.Decision
	if m.DecidedBy != nil && m.DecidedAt != nil {
		decision = &bookingDomain.Decision{
			DecidedBy: *m.DecidedBy,
			DecidedAt: *m.DecidedAt,
			Reason:    m.DecisionReason,
		}
	}

	var cancellation *bookingDomain.Cancellation
	if m.CancelledBy != nil && m.CancelledAt != nil {
		cancellation = &bookingDomain.Cancellation{
			CancelledBy: *m.CancelledBy,
			CancelledAt: *m.CancelledAt,
			Reason:      m.CancellationReason,
		}
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.BookingNumber,
		m.StudentID,
		m.HostelID,
		m.RoomID,
		bookingDomain.Period{Start: m.StartDate.UTC(), End: m.EndDate.UTC()},
		status,
		m.TotalAmountCents,
		m.Currency,
		m.IsActive,
		m.ExpiresAt,
		m.LockedAt,
		decision,
		cancellation,
		metadata,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}
