package application

import (
	"context"
	"time"

	hostelDomain "github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/domain/hostel"
	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/platform/apperr"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HostelSnapshot is the hostel state carried by inbound hostel events.
type HostelSnapshot struct {
	HostelID           uuid.UUID `json:"hostel_id"`
	Name               string    `json:"name"`
	LandlordID         uuid.UUID `json:"landlord_id"`
	VerificationStatus string    `json:"verification_status"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// HostelDirectoryService keeps the local hostel directory in step with the
// listings service.
type HostelDirectoryService struct {
	repo   hostelDomain.Repository
	logger *zap.Logger
}

// NewHostelDirectoryService creates a new HostelDirectoryService.
func NewHostelDirectoryService(repo hostelDomain.Repository, logger *zap.Logger) *HostelDirectoryService {
	return &HostelDirectoryService{repo: repo, logger: logger}
}

// ApplySnapshot upserts the hostel. Older snapshots than the stored row are
// ignored by the repository.
func (s *HostelDirectoryService) ApplySnapshot(ctx context.Context, snap HostelSnapshot) error {
	if snap.HostelID == uuid.Nil || snap.LandlordID == uuid.Nil {
		return apperr.NewValidationError("hostel and landlord IDs are required")
	}
	status, err := hostelDomain.ParseVerificationStatus(snap.VerificationStatus)
	if err != nil {
		return apperr.NewValidationError(err.Error())
	}

	updatedAt := snap.UpdatedAt.UTC()
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	h := &hostelDomain.Hostel{
		ID:                 snap.HostelID,
		Name:               snap.Name,
		LandlordID:         snap.LandlordID,
		VerificationStatus: status,
		UpdatedAt:          updatedAt,
	}
	if err := s.repo.Upsert(ctx, h); err != nil {
		return err
	}

	s.logger.Info("hostel directory updated",
		zap.String("hostel_id", h.ID.String()),
		zap.String("verification_status", string(status)),
	)
	return nil
}
