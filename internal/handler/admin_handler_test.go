package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/application"
	bookingDomain "github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/domain/booking"
	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/platform/auth"
	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/platform/pagination"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAdminBookingHandler_ForceCancel(t *testing.T) {
	svc := &MockBookingService{}
	router, jwtManager := newTestRouter(svc)
	bookingID := uuid.New()
	adminID := uuid.New()

	svc.On("ForceCancelBooking", mock.Anything, bookingID, adminID, "duplicate listing").
		Return(&application.BookingDTO{ID: bookingID, Status: "cancelled"}, nil)

	w := doRequest(t, router, jwtManager, http.MethodPost, "/api/v1/admin/bookings/"+bookingID.String()+"/cancel",
		adminID, auth.RoleAdmin, application.CancelRequest{Reason: "duplicate listing"})

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestAdminBookingHandler_ForceCancel_Terminal(t *testing.T) {
	svc := &MockBookingService{}
	router, jwtManager := newTestRouter(svc)
	bookingID := uuid.New()

	svc.On("ForceCancelBooking", mock.Anything, bookingID, mock.Anything, "").
		Return(nil, bookingDomain.ErrInvalidTransition)

	w := doRequest(t, router, jwtManager, http.MethodPost, "/api/v1/admin/bookings/"+bookingID.String()+"/cancel",
		uuid.New(), auth.RoleAdmin, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_TRANSITION", decodeBody(t, w).Error.Code)
}

func TestAdminBookingHandler_Expire(t *testing.T) {
	svc := &MockBookingService{}
	router, jwtManager := newTestRouter(svc)
	svc.On("ExpireOldBookings", mock.Anything).Return(int64(7), nil)

	w := doRequest(t, router, jwtManager, http.MethodPost, "/api/v1/admin/bookings/expire", uuid.New(), auth.RoleAdmin, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data struct {
			Expired int64 `json:"expired"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(7), body.Data.Expired)
}

func TestAdminBookingHandler_ListAndStats(t *testing.T) {
	svc := &MockBookingService{}
	router, jwtManager := newTestRouter(svc)
	adminID := uuid.New()

	result := pagination.NewResult([]application.BookingDTO{{ID: uuid.New()}}, 1, 1, 20)
	svc.On("ListAllBookings", mock.Anything, 1, 20).Return(&result, nil)
	svc.On("GetBookingStats", mock.Anything).Return(&application.BookingStatsDTO{
		TotalBookings: 3,
		ByStatus:      map[string]int64{"pending": 2, "approved": 1},
	}, nil)

	w := doRequest(t, router, jwtManager, http.MethodGet, "/api/v1/admin/bookings", adminID, auth.RoleAdmin, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, router, jwtManager, http.MethodGet, "/api/v1/admin/stats/bookings", adminID, auth.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data application.BookingStatsDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(3), body.Data.TotalBookings)
	assert.Equal(t, int64(2), body.Data.ByStatus["pending"])
}
