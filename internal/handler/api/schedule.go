package api

import (
	"net/http"

	"parkly/internal/domain/booking"
	resdto "parkly/internal/handler/dto/response"
	"parkly/internal/handler/httperr"
	"parkly/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type ScheduleHandler struct {
	schedules queries.ScheduleQueries
}

func NewScheduleHandler(schedules queries.ScheduleQueries) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules}
}

// @Summary Get weekly schedule
// @Description Full projection of every parking place on every weekday
// @Tags schedule
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.ScheduleResponse
// @Failure 401 {object} map[string]string
// @Router /schedule [get]
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	view, err := h.schedules.GetSchedule(c.Request.Context())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to load schedule", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.FromScheduleView(view))
}

// @Summary Get schedule cell
// @Description Occupancy of one parking place on one weekday
// @Tags schedule
// @Produce json
// @Security BearerAuth
// @Param day path string true "Weekday (monday..sunday)"
// @Param place path string true "Parking place"
// @Success 200 {object} resdto.ScheduleCell
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /schedule/{day}/{place} [get]
func (h *ScheduleHandler) GetCell(c *gin.Context) {
	day, err := booking.ParseWeekday(c.Param("day"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid weekday", nil)
		return
	}

	cell, err := h.schedules.GetCell(c.Request.Context(), c.Param("place"), day)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to load cell", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.FromScheduleCell(cell))
}
