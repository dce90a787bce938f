package room

import (
	"testing"
	"time"

	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/platform/apperr"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoom(t *testing.T) {
	hostelID := uuid.New()

	r, err := NewRoom(uuid.New(), hostelID, "A1", 2, 2_500_000, "KES")
	require.NoError(t, err)
	assert.Equal(t, hostelID, r.HostelID())
	assert.True(t, r.IsAvailable())
	assert.True(t, r.IsActive())
	assert.Equal(t, int64(1), r.Version())
	assert.NoError(t, r.CheckBookable())

	tests := []struct {
		name     string
		hostelID uuid.UUID
		number   string
		capacity int
		price    int64
	}{
		{"missing hostel", uuid.Nil, "A1", 1, 0},
		{"missing number", hostelID, "", 1, 0},
		{"zero capacity", hostelID, "A1", 0, 0},
		{"negative price", hostelID, "A1", 1, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRoom(uuid.New(), tt.hostelID, tt.number, tt.capacity, tt.price, "KES")
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}

func TestRoom_CheckBookable(t *testing.T) {
	unavailable := ReconstructRoom(uuid.New(), uuid.New(), "B2", 1, 0, 0, "KES", false, true, 1, time.Now(), time.Now())
	assert.ErrorIs(t, unavailable.CheckBookable(), ErrRoomUnavailable)

	inactive := ReconstructRoom(uuid.New(), uuid.New(), "B3", 1, 0, 0, "KES", false, false, 1, time.Now(), time.Now())
	assert.ErrorIs(t, inactive.CheckBookable(), ErrRoomInactive)

	r, err := NewRoom(uuid.New(), uuid.New(), "B4", 1, 0, "KES")
	require.NoError(t, err)
	require.NoError(t, r.ApplyListing("B4", 1, 0, 0, "", false))
	assert.ErrorIs(t, r.CheckBookable(), ErrRoomInactive)
}

func TestRoom_RecomputeAvailability(t *testing.T) {
	now := time.Date(2026, time.January, 5, 12, 0, 0, 0, time.UTC)
	r, err := NewRoom(uuid.New(), uuid.New(), "C1", 2, 0, "KES")
	require.NoError(t, err)

	assert.False(t, r.RecomputeAvailability(false, now))
	assert.True(t, r.IsAvailable())

	assert.True(t, r.RecomputeAvailability(true, now))
	assert.False(t, r.IsAvailable())
	assert.Equal(t, now, r.UpdatedAt())

	assert.True(t, r.RecomputeAvailability(false, now))
	assert.True(t, r.IsAvailable())

	require.NoError(t, r.SetOccupancy(2))
	assert.True(t, r.IsFull())
	assert.True(t, r.RecomputeAvailability(false, now))
	assert.False(t, r.IsAvailable())
}

func TestRoom_SetOccupancy(t *testing.T) {
	r, err := NewRoom(uuid.New(), uuid.New(), "D1", 3, 0, "KES")
	require.NoError(t, err)

	assert.NoError(t, r.SetOccupancy(3))
	assert.Equal(t, 3, r.CurrentOccupancy())
	assert.Error(t, r.SetOccupancy(4))
	assert.Error(t, r.SetOccupancy(-1))
	assert.Equal(t, 3, r.CurrentOccupancy())
}

func TestRoom_IncrementVersion(t *testing.T) {
	r, err := NewRoom(uuid.New(), uuid.New(), "E1", 1, 0, "KES")
	require.NoError(t, err)
	now := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)

	r.IncrementVersion(now)
	assert.Equal(t, int64(2), r.Version())
	assert.Equal(t, now, r.UpdatedAt())
}

func TestNewRoom_RequiresID(t *testing.T) {
	_, err := NewRoom(uuid.Nil, uuid.New(), "A1", 1, 0, "KES")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestRoom_ApplyListing(t *testing.T) {
	r, err := NewRoom(uuid.New(), uuid.New(), "F1", 2, 1_000_000, "KES")
	require.NoError(t, err)

	require.NoError(t, r.ApplyListing("F1a", 4, 3, 1_200_000, "", true))
	assert.Equal(t, "F1a", r.RoomNumber())
	assert.Equal(t, 4, r.Capacity())
	assert.Equal(t, 3, r.CurrentOccupancy())
	assert.Equal(t, int64(1_200_000), r.PriceMonthlyCents())
	assert.Equal(t, "KES", r.Currency())

	require.NoError(t, r.ApplyListing("F1a", 4, 3, 1_200_000, "USD", false))
	assert.Equal(t, "USD", r.Currency())
	assert.False(t, r.IsActive())

	err = r.ApplyListing("F1a", 2, 3, 1_200_000, "", true)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, 4, r.Capacity())
	assert.False(t, r.IsActive())
}
