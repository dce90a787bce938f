package hostel

import (
	"fmt"
	"time"

	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/platform/apperr"
	"github.com/google/uuid"
)

var (
	ErrHostelNotFound    = apperr.New(apperr.KindNotFound, "HOSTEL_NOT_FOUND", "hostel not found")
	ErrHostelNotApproved = apperr.New(apperr.KindPolicy, "HOSTEL_NOT_APPROVED", "hostel is not approved for bookings")
)

// VerificationStatus is the moderation state of a hostel listing.
type VerificationStatus string

const (
	VerificationPending   VerificationStatus = "pending"
	VerificationApproved  VerificationStatus = "approved"
	VerificationRejected  VerificationStatus = "rejected"
	VerificationSuspended VerificationStatus = "suspended"
)

// ParseVerificationStatus converts a string to a VerificationStatus.
func ParseVerificationStatus(s string) (VerificationStatus, error) {
	switch v := VerificationStatus(s); v {
	case VerificationPending, VerificationApproved, VerificationRejected, VerificationSuspended:
		return v, nil
	default:
		return "", fmt.Errorf("invalid verification status: %s", s)
	}
}

// Hostel is the read-only view of a hostel listing used by the booking engine.
type Hostel struct {
	ID                 uuid.UUID
	Name               string
	LandlordID         uuid.UUID
	VerificationStatus VerificationStatus
	UpdatedAt          time.Time
}

// IsApproved reports whether bookings may be taken for this hostel.
func (h *Hostel) IsApproved() bool {
	return h.VerificationStatus == VerificationApproved
}

// OwnedBy reports whether the landlord owns this hostel.
func (h *Hostel) OwnedBy(landlordID uuid.UUID) bool {
	return h.LandlordID == landlordID
}
