package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	roomDomain "github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/domain/room"
	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/platform/apperr"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RoomModel is the GORM model for the rooms table.
type RoomModel struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	HostelID          uuid.UUID `gorm:"type:uuid;index;not null"`
	RoomNumber        string    `gorm:"not null;size:50"`
	Capacity          int       `gorm:"not null"`
	CurrentOccupancy  int       `gorm:"not null;default:0"`
	PriceMonthlyCents int64     `gorm:"not null"`
	Currency          string    `gorm:"not null;size:3;default:'KES'"`
	IsAvailable       bool      `gorm:"not null;default:true"`
	IsActive          bool      `gorm:"not null;default:true"`
	Version           int64     `gorm:"not null;default:1"`
	CreatedAt         time.Time `gorm:"not null"`
	UpdatedAt         time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (RoomModel) TableName() string {
	return "rooms"
}

// GormRoomRepository is the GORM-based room availability store.
type GormRoomRepository struct {
	db *gorm.DB
}

// NewGormRoomRepository creates a new GormRoomRepository.
func NewGormRoomRepository(db *gorm.DB) *GormRoomRepository {
	return &GormRoomRepository{db: db}
}

// FindByID retrieves a room by its unique identifier.
func (r *GormRoomRepository) FindByID(ctx context.Context, id uuid.UUID) (*roomDomain.Room, error) {
	return r.findOne(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate retrieves a room with a row lock held until the transaction ends.
func (r *GormRoomRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*roomDomain.Room, error) {
	return r.findOne(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormRoomRepository) findOne(db *gorm.DB, id uuid.UUID) (*roomDomain.Room, error) {
	var model RoomModel
	if err := db.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, roomDomain.ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to find room by ID: %w", err)
	}
	return toDomainRoom(&model), nil
}

// Save persists a new room.
func (r *GormRoomRepository) Save(ctx context.Context, rm *roomDomain.Room) error {
	if err := r.db.WithContext(ctx).Create(toRoomModel(rm)).Error; err != nil {
		return fmt.Errorf("failed to save room: %w", err)
	}
	return nil
}

// Update persists listing attributes, occupancy and availability with
// optimistic locking.
func (r *GormRoomRepository) Update(ctx context.Context, rm *roomDomain.Room) error {
	result := r.db.WithContext(ctx).
		Model(&RoomModel{}).
		Where("id = ? AND version = ?", rm.ID(), rm.Version()-1).
		Updates(map[string]interface{}{
			"room_number":         rm.RoomNumber(),
			"capacity":            rm.Capacity(),
			"price_monthly_cents": rm.PriceMonthlyCents(),
			"currency":            rm.Currency(),
			"current_occupancy":   rm.CurrentOccupancy(),
			"is_available":        rm.IsAvailable(),
			"is_active":           rm.IsActive(),
			"version":             rm.Version(),
			"updated_at":          rm.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update room: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NewConcurrencyError("room was modified by another transaction")
	}
	return nil
}

func toRoomModel(rm *roomDomain.Room) *RoomModel {
	return &RoomModel{
		ID:                rm.ID(),
		HostelID:          rm.HostelID(),
		RoomNumber:        rm.RoomNumber(),
		Capacity:          rm.Capacity(),
		CurrentOccupancy:  rm.CurrentOccupancy(),
		PriceMonthlyCents: rm.PriceMonthlyCents(),
		Currency:          rm.Currency(),
		IsAvailable:       rm.IsAvailable(),
		IsActive:          rm.IsActive(),
		Version:           rm.Version(),
		CreatedAt:         rm.CreatedAt(),
		UpdatedAt:         rm.UpdatedAt(),
	}
}

func toDomainRoom(m *RoomModel) *roomDomain.Room {
	return roomDomain.ReconstructRoom(
		m.ID,
		m.HostelID,
		m.RoomNumber,
		m.Capacity,
		m.CurrentOccupancy,
		m.PriceMonthlyCents,
		m.Currency,
		m.IsAvailable,
		m.IsActive,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
