package response

import (
	"time"

	"parkly/internal/usecase/commands"
)

type BookingResponse struct {
	Event     string     `json:"event"`
	Place     string     `json:"place"`
	Day       string     `json:"day"`
	Occupant  string     `json:"occupant"`
	Displaced *string    `json:"displaced,omitempty"`
	Restored  *string    `json:"restored,omitempty"`
	Date      *time.Time `json:"date,omitempty"`
}

func FromOutcome(o *commands.Outcome) *BookingResponse {
	resp := &BookingResponse{
		Event:    o.Event,
		Place:    o.Place,
		Day:      string(o.Day),
		Occupant: o.Occupant,
		Date:     o.Date,
	}
	if o.Displaced != "" {
		displaced := o.Displaced
		resp.Displaced = &displaced
	}
	if o.Restored != "" {
		restored := o.Restored
		resp.Restored = &restored
	}
	return resp
}
