package response

import (
	"time"

	"parkly/internal/usecase/commands"
	"parkly/internal/usecase/queries"
)

type ScheduleResponse struct {
	WeekStart time.Time     `json:"weekStart"`
	Days      []ScheduleDay `json:"days"`
}

type ScheduleDay struct {
	Day   string         `json:"day"`
	Date  time.Time      `json:"date"`
	Cells []ScheduleCell `json:"cells"`
}

type ScheduleCell struct {
	Place    string  `json:"place"`
	Occupant *string `json:"occupant,omitempty"`
	Kind     *string `json:"kind,omitempty"`
}

type SweepResponse struct {
	Processed int `json:"processed"`
	Restored  int `json:"restored"`
	Freed     int `json:"freed"`
}

func FromScheduleView(v *queries.ScheduleView) *ScheduleResponse {
	resp := &ScheduleResponse{
		WeekStart: v.WeekStart,
		Days:      make([]ScheduleDay, 0, len(v.Days)),
	}
	for _, d := range v.Days {
		day := ScheduleDay{
			Day:   string(d.Day),
			Date:  d.Date,
			Cells: make([]ScheduleCell, 0, len(d.Cells)),
		}
		for _, cell := range d.Cells {
			day.Cells = append(day.Cells, fromScheduleCell(cell))
		}
		resp.Days = append(resp.Days, day)
	}
	return resp
}

func FromScheduleCell(cell *queries.ScheduleCell) *ScheduleCell {
	c := fromScheduleCell(*cell)
	return &c
}

func FromSweepResult(r *commands.SweepResult) *SweepResponse {
	return &SweepResponse{
		Processed: r.Processed,
		Restored:  r.Restored,
		Freed:     r.Freed,
	}
}

func fromScheduleCell(cell queries.ScheduleCell) ScheduleCell {
	c := ScheduleCell{
		Place:    cell.Place,
		Occupant: cell.Occupant,
	}
	if cell.Kind != nil {
		kind := string(*cell.Kind)
		c.Kind = &kind
	}
	return c
}
