package booking

import "github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/platform/apperr"

var (
	ErrBookingNotFound    = apperr.New(apperr.KindNotFound, "BOOKING_NOT_FOUND", "booking not found")
	ErrPeriodUnavailable  = apperr.New(apperr.KindConflict, "PERIOD_UNAVAILABLE", "room is already booked for the requested period")
	ErrNotAuthorized      = apperr.NewForbiddenError("not authorized to act on this booking")
	ErrInvalidTransition  = apperr.New(apperr.KindInvalidState, "INVALID_TRANSITION", "booking status does not allow this action")
	ErrConcurrentModified = apperr.NewConcurrencyError("booking was modified by another transaction")
)
