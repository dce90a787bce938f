package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	hostelDomain "github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/domain/hostel"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HostelModel is the GORM model for the local hostel directory.
type HostelModel struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name               string    `gorm:"not null;size:200"`
	LandlordID         uuid.UUID `gorm:"type:uuid;index;not null"`
	VerificationStatus string    `gorm:"not null;size:20;default:'pending'"`
	UpdatedAt          time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (HostelModel) TableName() string {
	return "hostels"
}

// GormHostelRepository is the GORM-based hostel directory.
type GormHostelRepository struct {
	db *gorm.DB
}

// NewGormHostelRepository creates a new GormHostelRepository.
func NewGormHostelRepository(db *gorm.DB) *GormHostelRepository {
	return &GormHostelRepository{db: db}
}

// FindByID retrieves a hostel by its unique identifier.
func (r *GormHostelRepository) FindByID(ctx context.Context, id uuid.UUID) (*hostelDomain.Hostel, error) {
	var model HostelModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, hostelDomain.ErrHostelNotFound
		}
		return nil, fmt.Errorf("failed to find hostel by ID: %w", err)
	}

	status, err := hostelDomain.ParseVerificationStatus(model.VerificationStatus)
	if err != nil {
		return nil, err
	}
	return &hostelDomain.Hostel{
		ID:                 model.ID,
		Name:               model.Name,
		LandlordID:         model.LandlordID,
		VerificationStatus: status,
		UpdatedAt:          model.UpdatedAt,
	}, nil
}

// Upsert inserts the hostel or overwrites an older stored copy. Snapshots
// older than the stored row are ignored so out-of-order events are harmless.
func (r *GormHostelRepository) Upsert(ctx context.Context, h *hostelDomain.Hostel) error {
	model := HostelModel{
		ID:                 h.ID,
		Name:               h.Name,
		LandlordID:         h.LandlordID,
		VerificationStatus: string(h.VerificationStatus),
		UpdatedAt:          h.UpdatedAt,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "landlord_id", "verification_status", "updated_at"}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "hostels.updated_at <= excluded.updated_at"},
		}},
	}).Create(&model).Error
	if err != nil {
		return fmt.Errorf("failed to upsert hostel: %w", err)
	}
	return nil
}
