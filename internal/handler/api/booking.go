package api

import (
	"context"
	"errors"
	"net/http"

	"parkly/internal/domain/booking"
	reqdto "parkly/internal/handler/dto/request"
	resdto "parkly/internal/handler/dto/response"
	"parkly/internal/handler/httperr"
	"parkly/internal/handler/middleware"
	"parkly/internal/infra/uow"
	"parkly/internal/pkg/errs"
	"parkly/internal/usecase/commands"
	"parkly/internal/usecase/shared"

	"github.com/gin-gonic/gin"
)

type bookFunc func(ctx context.Context, actor shared.Actor, place string, day booking.Weekday) (*commands.Outcome, error)

type BookingHandler struct {
	bookings commands.BookingCommands
}

func NewBookingHandler(bookings commands.BookingCommands) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// @Summary Create permanent booking
// @Description Book a parking place for every week on the given weekday
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateBookingRequest true "Booking request"
// @Success 201 {object} resdto.BookingResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /bookings [post]
func (h *BookingHandler) CreatePermanent(c *gin.Context) {
	h.create(c, h.bookings.BookPermanent)
}

// @Summary Create temporary booking
// @Description Book a parking place for the upcoming occurrence of the given weekday only
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateBookingRequest true "Booking request"
// @Success 201 {object} resdto.BookingResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /bookings/temporary [post]
func (h *BookingHandler) CreateTemporary(c *gin.Context) {
	h.create(c, h.bookings.BookTemporary)
}

// @Summary Remove booking
// @Description Cancel the booking of a place on a weekday
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param day path string true "Weekday (monday..sunday)"
// @Param place path string true "Parking place"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /bookings/{day}/{place} [delete]
func (h *BookingHandler) Remove(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errs.New("actor missing from context"), "Internal server error", nil)
		return
	}

	day, err := booking.ParseWeekday(c.Param("day"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid weekday", nil)
		return
	}

	outcome, err := h.bookings.Remove(c.Request.Context(), actor, c.Param("place"), day)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromOutcome(outcome))
}

func (h *BookingHandler) create(c *gin.Context, book bookFunc) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errs.New("actor missing from context"), "Internal server error", nil)
		return
	}

	var req reqdto.CreateBookingRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	day, err := booking.ParseWeekday(req.Day)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid weekday", nil)
		return
	}

	outcome, err := book(c.Request.Context(), actor, req.Place, day)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resdto.FromOutcome(outcome))
}

func respondBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrValidation):
		httperr.AbortWithError(c, http.StatusBadRequest, err, err.Error(), nil)
	case errors.Is(err, commands.ErrPermanentLimitReached):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Permanent booking limit reached", nil)
	case errors.Is(err, booking.ErrAlreadyBookedPermanent),
		errors.Is(err, booking.ErrAlreadyBookedTemporary),
		errors.Is(err, booking.ErrSlotTaken):
		httperr.AbortWithError(c, http.StatusConflict, err, err.Error(), nil)
	case errors.Is(err, booking.ErrNotOwner):
		httperr.AbortWithError(c, http.StatusForbidden, err, err.Error(), nil)
	case errors.Is(err, booking.ErrNotBooked):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Slot is not booked", nil)
	case errors.Is(err, uow.ErrMaxRetriesExceeded):
		httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Storage is contended, try again later", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}
