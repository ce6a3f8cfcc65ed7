package store

import (
	"context"
	"errors"

	"parkly/internal/domain/booking"
	"parkly/internal/infra"

	"github.com/jackc/pgx/v5"
)

// ScheduleReadStore serves the display projection straight off the
// pool; it never writes.
type ScheduleReadStore struct {
	db DBTX
}

func NewScheduleReadStore(db DBTX) *ScheduleReadStore {
	return &ScheduleReadStore{db: db}
}

func (s *ScheduleReadStore) FullSchedule(ctx context.Context) (map[booking.Weekday]map[string]booking.Occupancy, error) {
	const q = `
		SELECT day, place, occupant, is_temp
		FROM bookings
		WHERE NOT manually_deleted`

	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to read schedule", err)
	}
	defer rows.Close()

	schedule := make(map[booking.Weekday]map[string]booking.Occupancy)
	for rows.Next() {
		var day, place, occupant string
		var isTemp bool
		if err := rows.Scan(&day, &place, &occupant, &isTemp); err != nil {
			return nil, infra.WrapRepoErr("failed to scan schedule row", err)
		}

		kind := booking.KindPermanent
		if isTemp {
			kind = booking.KindTemporary
		}

		d := booking.Weekday(day)
		if schedule[d] == nil {
			schedule[d] = make(map[string]booking.Occupancy)
		}
		schedule[d][place] = booking.Occupancy{Occupant: occupant, Kind: kind}
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate schedule rows", err)
	}
	return schedule, nil
}

func (s *ScheduleReadStore) CellOccupancy(ctx context.Context, place string, day booking.Weekday) (*booking.Occupancy, error) {
	const q = `
		SELECT occupant, is_temp
		FROM bookings
		WHERE place = $1 AND day = $2 AND NOT manually_deleted
		LIMIT 1`

	var occupant string
	var isTemp bool
	err := s.db.QueryRow(ctx, q, place, string(day)).Scan(&occupant, &isTemp)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, infra.WrapRepoErr("failed to read cell occupancy", err)
	}

	kind := booking.KindPermanent
	if isTemp {
		kind = booking.KindTemporary
	}
	return &booking.Occupancy{Occupant: occupant, Kind: kind}, nil
}
