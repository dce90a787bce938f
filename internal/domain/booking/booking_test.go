package booking

import (
	"testing"
	"time"

	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/platform/apperr"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, time.December, 1, 10, 0, 0, 0, time.UTC)

func newPendingBooking(t *testing.T) *Booking {
	t.Helper()
	b, err := NewBooking(
		uuid.New(), uuid.New(), uuid.New(),
		Period{Start: d(time.January, 1), End: d(time.January, 31)},
		3_000_000, "KES", Metadata{Notes: "quiet room"},
		testNow, 24*time.Hour,
	)
	require.NoError(t, err)
	return b
}

func TestNewBooking(t *testing.T) {
	b := newPendingBooking(t)

	assert.Equal(t, StatusPending, b.Status())
	assert.True(t, b.IsActive())
	assert.Equal(t, int64(1), b.Version())
	assert.Equal(t, testNow.Add(24*time.Hour), *b.ExpiresAt())
	assert.Equal(t, testNow, *b.LockedAt())
	assert.Regexp(t, `^HB-[A-Z2-9]{6}$`, b.BookingNumber())
	assert.True(t, b.HoldsRoomPeriod())
	assert.Nil(t, b.Decision())
	assert.Nil(t, b.Cancellation())
}

func TestNewBooking_Validation(t *testing.T) {
	period := Period{Start: d(time.January, 1), End: d(time.January, 31)}

	tests := []struct {
		name  string
		build func() (*Booking, error)
	}{
		{"missing student", func() (*Booking, error) {
			return NewBooking(uuid.Nil, uuid.New(), uuid.New(), period, 0, "KES", Metadata{}, testNow, time.Hour)
		}},
		{"missing room", func() (*Booking, error) {
			return NewBooking(uuid.New(), uuid.New(), uuid.Nil, period, 0, "KES", Metadata{}, testNow, time.Hour)
		}},
		{"inverted period", func() (*Booking, error) {
			return NewBooking(uuid.New(), uuid.New(), uuid.New(), Period{Start: period.End, End: period.Start}, 0, "KES", Metadata{}, testNow, time.Hour)
		}},
		{"negative amount", func() (*Booking, error) {
			return NewBooking(uuid.New(), uuid.New(), uuid.New(), period, -5, "KES", Metadata{}, testNow, time.Hour)
		}},
		{"no expiry window", func() (*Booking, error) {
			return NewBooking(uuid.New(), uuid.New(), uuid.New(), period, 0, "KES", Metadata{}, testNow, 0)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}

func TestBooking_ApproveAndReject(t *testing.T) {
	landlordID := uuid.New()

	b := newPendingBooking(t)
	require.NoError(t, b.Approve(landlordID, "", testNow.Add(time.Hour)))
	assert.Equal(t, StatusApproved, b.Status())
	assert.Equal(t, landlordID, b.Decision().DecidedBy)
	assert.True(t, b.HoldsRoomPeriod())

	err := b.Reject(landlordID, "late", testNow)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	r := newPendingBooking(t)
	require.NoError(t, r.Reject(landlordID, "renovation", testNow))
	assert.Equal(t, StatusRejected, r.Status())
	assert.Equal(t, "renovation", r.Decision().Reason)
	assert.False(t, r.HoldsRoomPeriod())

	assert.Equal(t, apperr.KindValidation, apperr.KindOf(newPendingBooking(t).Approve(uuid.Nil, "", testNow)))
}

func TestBooking_Cancel(t *testing.T) {
	b := newPendingBooking(t)
	studentID := b.StudentID()

	require.NoError(t, b.Cancel(studentID, "changed plans", testNow))
	assert.Equal(t, StatusCancelled, b.Status())
	assert.Equal(t, studentID, b.Cancellation().CancelledBy)
	assert.True(t, b.IsActive())

	assert.ErrorIs(t, b.Cancel(studentID, "", testNow), ErrInvalidTransition)
}

func TestBooking_ForceCancel(t *testing.T) {
	b := newPendingBooking(t)
	require.NoError(t, b.Approve(uuid.New(), "", testNow))

	adminID := uuid.New()
	require.NoError(t, b.ForceCancel(adminID, "policy breach", testNow))
	assert.Equal(t, StatusCancelled, b.Status())
	assert.False(t, b.IsActive())

	assert.ErrorIs(t, b.ForceCancel(adminID, "", testNow), ErrInvalidTransition)
}

func TestBooking_Expire(t *testing.T) {
	b := newPendingBooking(t)

	assert.False(t, b.IsExpiredAt(testNow.Add(23*time.Hour)))
	assert.False(t, b.IsExpiredAt(testNow.Add(24*time.Hour)))
	assert.True(t, b.IsExpiredAt(testNow.Add(25*time.Hour)))

	require.NoError(t, b.Expire(testNow.Add(25*time.Hour)))
	assert.Equal(t, StatusExpired, b.Status())
	assert.False(t, b.IsActive())
	assert.False(t, b.IsExpiredAt(testNow.Add(48*time.Hour)))

	approved := newPendingBooking(t)
	require.NoError(t, approved.Approve(uuid.New(), "", testNow))
	assert.False(t, approved.IsExpiredAt(testNow.Add(48*time.Hour)))
	assert.ErrorIs(t, approved.Expire(testNow), ErrInvalidTransition)
}

func TestNewLifecycleEvent(t *testing.T) {
	b := newPendingBooking(t)
	landlordID := uuid.New()
	require.NoError(t, b.Approve(landlordID, "", testNow))

	evt := NewLifecycleEvent(b, StatusPending, &landlordID, "", testNow)
	assert.Equal(t, b.ID(), evt.BookingID)
	assert.Equal(t, "approved", evt.Status)
	assert.Equal(t, "pending", evt.PreviousStatus)
	assert.Equal(t, landlordID, *evt.ActorID)
	assert.Equal(t, int64(3_000_000), evt.TotalAmountCents)

	created := NewLifecycleEvent(newPendingBooking(t), "", nil, "", testNow)
	assert.Empty(t, created.PreviousStatus)
}
