package request

type CreateBookingRequest struct {
	Place string `json:"place" binding:"required"`
	Day   string `json:"day" binding:"required"`
}
