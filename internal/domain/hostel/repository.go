package hostel

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the local hostel directory.
type Repository interface {
	// FindByID retrieves a hostel by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Hostel, error)

	// Upsert inserts the hostel or overwrites the stored copy when the
	// incoming snapshot is at least as recent.
	Upsert(ctx context.Context, hostel *Hostel) error
}
