package handler

import (
	"context"
	"strconv"

	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/application"
	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/platform/auth"
	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/platform/middleware"
	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/platform/pagination"
	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/platform/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BookingService is the subset of the lifecycle engine exposed over HTTP.
type BookingService interface {
	CreateBooking(ctx context.Context, studentID uuid.UUID, req application.CreateBookingRequest) (*application.BookingDTO, error)
	DecideBooking(ctx context.Context, bookingID, landlordID uuid.UUID, action application.DecisionAction, reason string) (*application.BookingDTO, error)
	CancelBooking(ctx context.Context, bookingID, studentID uuid.UUID, reason string) (*application.BookingDTO, error)
	ForceCancelBooking(ctx context.Context, bookingID, adminID uuid.UUID, reason string) (*application.BookingDTO, error)
	ExpireOldBookings(ctx context.Context) (int64, error)
	GetBooking(ctx context.Context, bookingID uuid.UUID, actor application.Actor) (*application.BookingDTO, error)
	ListStudentBookings(ctx context.Context, studentID uuid.UUID, page, limit int) (*pagination.Result[application.BookingDTO], error)
	ListHostelBookings(ctx context.Context, hostelID, landlordID uuid.UUID, page, limit int) (*pagination.Result[application.BookingDTO], error)
	ListAllBookings(ctx context.Context, page, limit int) (*pagination.Result[application.BookingDTO], error)
	GetBookingStats(ctx context.Context) (*application.BookingStatsDTO, error)
}

// BookingHandler handles HTTP requests for student and landlord booking
// operations.
type BookingHandler struct {
	service BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(authMW)
	{
		bookings.POST("", middleware.RequireRole(auth.RoleStudent), h.CreateBooking)
		bookings.GET("", middleware.RequireRole(auth.RoleStudent), h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/cancel", middleware.RequireRole(auth.RoleStudent), h.CancelBooking)
		bookings.POST("/:id/decision", middleware.RequireRole(auth.RoleLandlord), h.DecideBooking)
	}

	hostels := r.Group("/api/v1/hostels")
	hostels.Use(authMW, middleware.RequireRole(auth.RoleLandlord))
	{
		hostels.GET("/:id/bookings", h.ListHostelBookings)
	}
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListBookings handles GET /api/v1/bookings (the student's own bookings).
func (h *BookingHandler) ListBookings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	page, limit := parsePagination(c)
	result, err := h.service.ListStudentBookings(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	actor, ok := actorFrom(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), bookingID, actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var body application.CancelRequest
	// The body is optional.
	_ = c.ShouldBindJSON(&body)

	result, err := h.service.CancelBooking(c.Request.Context(), bookingID, userID, body.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DecideBooking handles POST /api/v1/bookings/:id/decision.
func (h *BookingHandler) DecideBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	landlordID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.DecideBooking(c.Request.Context(), bookingID, landlordID, req.Action, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListHostelBookings handles GET /api/v1/hostels/:id/bookings.
func (h *BookingHandler) ListHostelBookings(c *gin.Context) {
	hostelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid hostel ID")
		return
	}

	landlordID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	page, limit := parsePagination(c)
	result, err := h.service.ListHostelBookings(c.Request.Context(), hostelID, landlordID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

func actorFrom(c *gin.Context) (application.Actor, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return application.Actor{}, false
	}
	role, ok := middleware.GetUserRole(c)
	if !ok {
		return application.Actor{}, false
	}
	return application.Actor{ID: userID, Role: role}, true
}

func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(pagination.DefaultLimit)))
	return pagination.Normalize(page, limit)
}
