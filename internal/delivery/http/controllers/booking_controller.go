package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventbooking/internal/delivery/http/dto"
	"eventbooking/internal/delivery/http/helpers"
	"eventbooking/internal/domain"
	"eventbooking/internal/metrics"
)

// CreateBookingRequest is the request body for POST /events/{slug}/bookings.
type CreateBookingRequest struct {
	Email string `json:"email" example:"ada@example.com"`
}

// CreateBookingResponse is the data payload of a successful booking.
type CreateBookingResponse struct {
	Message string              `json:"message" example:"Successfully booked! Check your email for confirmation."`
	Booking dto.BookingResponse `json:"booking"`
}

// CreateBookingSuccessResponse is the success response envelope for POST /events/{slug}/bookings (201).
type CreateBookingSuccessResponse struct {
	Data  CreateBookingResponse `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// BookingsCountResponse is the data payload for GET /events/{slug}/bookings/count.
type BookingsCountResponse struct {
	Count int `json:"count" example:"42"`
}

// BookingsCountSuccessResponse is the success response envelope for GET /events/{slug}/bookings/count (200).
type BookingsCountSuccessResponse struct {
	Data  BookingsCountResponse `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

type BookingController struct {
	Logger  *slog.Logger
	Service domain.BookingService
}

func NewBookingController(logger *slog.Logger, svc domain.BookingService) *BookingController {
	return &BookingController{
		Logger:  logger,
		Service: svc,
	}
}

// bookingFailureStatus maps an unsuccessful booking outcome to its HTTP status and error code.
var bookingFailureStatus = map[domain.BookingOutcome]struct {
	status int
	code   string
}{
	domain.BookingInvalidEmail:  {http.StatusBadRequest, domain.CodeInvalidEmail},
	domain.BookingEventNotFound: {http.StatusNotFound, helpers.ErrCodeEventNotFound},
	domain.BookingAlreadyBooked: {http.StatusConflict, helpers.ErrCodeAlreadyBooked},
}

// CreateBooking godoc
// @Summary Book an event
// @Description Books the event for the given email. Each email can book an event once.
// @Tags bookings
// @Accept json
// @Produce json
// @Param slug path string true "Event slug"
// @Param booking body CreateBookingRequest true "Attendee email"
// @Success 201 {object} controllers.CreateBookingSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request, invalid_email"
// @Failure 404 {object} helpers.APIResponse "error.code: event_not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: already_booked"
// @Failure 429 {object} helpers.APIResponse "error.code: too_many_requests"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{slug}/bookings [post]
func (c *BookingController) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if !helpers.DecodeAndValidate(w, r, nil, &req) {
		return
	}
	result, err := c.Service.CreateBooking(r.Context(), r.PathValue("slug"), req.Email)
	if err != nil {
		metrics.BookingsTotal.WithLabelValues("error").Inc()
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "Failed to create booking. Please try again.")
		return
	}
	metrics.BookingsTotal.WithLabelValues(string(result.Outcome)).Inc()
	if !result.Success {
		f, ok := bookingFailureStatus[result.Outcome]
		if !ok {
			f.status, f.code = http.StatusBadRequest, helpers.ErrCodeBadRequest
		}
		helpers.WriteJSONError(w, f.status, f.code, result.Message)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, CreateBookingResponse{
		Message: result.Message,
		Booking: dto.NewBookingResponse(result.Booking),
	})
}

// GetBookingsCount godoc
// @Summary Count bookings for an event
// @Description Returns the number of bookings. An unknown slug counts as zero.
// @Tags bookings
// @Produce json
// @Param slug path string true "Event slug"
// @Success 200 {object} controllers.BookingsCountSuccessResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Failure 503 {object} helpers.APIResponse "error.code: database_error"
// @Router /events/{slug}/bookings/count [get]
func (c *BookingController) GetBookingsCount(w http.ResponseWriter, r *http.Request) {
	count, err := c.Service.GetBookingsCount(r.Context(), r.PathValue("slug"))
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		if errors.Is(err, domain.ErrStorage) {
			helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeDatabaseError, "Database connection or query failed")
			return
		}
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "Failed to count bookings")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, BookingsCountResponse{Count: count})
}
