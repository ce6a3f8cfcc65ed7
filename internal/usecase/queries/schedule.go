package queries

import (
	"context"
	"time"

	"parkly/internal/domain/booking"
	"parkly/internal/domain/schedule"
	"parkly/internal/pkg/config"
)

// Read models (DTO for read side)
type ScheduleView struct {
	WeekStart time.Time     `json:"week_start"`
	Days      []ScheduleDay `json:"days"`
}

type ScheduleDay struct {
	Day   booking.Weekday `json:"day"`
	Date  time.Time       `json:"date"`
	Cells []ScheduleCell  `json:"cells"`
}

type ScheduleCell struct {
	Place    string        `json:"place"`
	Occupant *string       `json:"occupant,omitempty"`
	Kind     *booking.Kind `json:"kind,omitempty"`
}

// ScheduleReadStore is the display collaborator's view of the store.
type ScheduleReadStore interface {
	// FullSchedule projects every visible booking, keyed by weekday
	// then place.
	FullSchedule(ctx context.Context) (map[booking.Weekday]map[string]booking.Occupancy, error)

	// CellOccupancy reads one cell, nil if free.
	CellOccupancy(ctx context.Context, place string, day booking.Weekday) (*booking.Occupancy, error)
}

type ScheduleQueries interface {
	// GetSchedule projects the full week: every catalog place on every
	// weekday, occupied or not, with concrete dates resolved.
	GetSchedule(ctx context.Context) (*ScheduleView, error)

	// GetCell reads a single (place, weekday) cell.
	GetCell(ctx context.Context, place string, day booking.Weekday) (*ScheduleCell, error)
}

type scheduleQueriesImpl struct {
	store    ScheduleReadStore
	resolver *schedule.WeekResolver
	cfg      config.ParkingConfig
}

func NewScheduleQueries(store ScheduleReadStore, resolver *schedule.WeekResolver, cfg config.ParkingConfig) ScheduleQueries {
	return &scheduleQueriesImpl{
		store:    store,
		resolver: resolver,
		cfg:      cfg,
	}
}

func (q *scheduleQueriesImpl) GetSchedule(ctx context.Context) (*ScheduleView, error) {
	occupied, err := q.store.FullSchedule(ctx)
	if err != nil {
		return nil, err
	}

	view := &ScheduleView{
		WeekStart: q.resolver.CurrentWeekStart(),
		Days:      make([]ScheduleDay, 0, len(booking.Weekdays())),
	}
	for _, day := range booking.Weekdays() {
		d := ScheduleDay{
			Day:   day,
			Date:  q.resolver.ResolveDate(day),
			Cells: make([]ScheduleCell, 0, len(q.cfg.Places)),
		}
		for _, place := range q.cfg.Places {
			cell := ScheduleCell{Place: place}
			if occ, ok := occupied[day][place]; ok {
				occupant := occ.Occupant
				kind := occ.Kind
				cell.Occupant = &occupant
				cell.Kind = &kind
			}
			d.Cells = append(d.Cells, cell)
		}
		view.Days = append(view.Days, d)
	}
	return view, nil
}

func (q *scheduleQueriesImpl) GetCell(ctx context.Context, place string, day booking.Weekday) (*ScheduleCell, error) {
	occ, err := q.store.CellOccupancy(ctx, place, day)
	if err != nil {
		return nil, err
	}

	cell := &ScheduleCell{Place: place}
	if occ != nil {
		occupant := occ.Occupant
		kind := occ.Kind
		cell.Occupant = &occupant
		cell.Kind = &kind
	}
	return cell, nil
}
