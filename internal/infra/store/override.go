package store

import (
	"context"
	"errors"
	"time"

	"parkly/internal/domain/booking"
	"parkly/internal/infra"

	"github.com/jackc/pgx/v5"
)

type OverrideStore struct {
	db DBTX
}

func NewOverrideStore(db DBTX) *OverrideStore {
	return &OverrideStore{db: db}
}

func (s *OverrideStore) Put(ctx context.Context, ov booking.Override) error {
	// At most one override per cell: replace rather than accumulate.
	const q = `
		WITH cleared AS (
			DELETE FROM temp_overrides WHERE place = $1 AND day = $2
		)
		INSERT INTO temp_overrides (place, day, occupant, original_occupant, reserved_on, restore_on)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.db.Exec(ctx, q,
		ov.Place, string(ov.Day), ov.Occupant, ov.OriginalOccupant, ov.ReservedOn, ov.RestoreOn)
	if err != nil {
		return infra.WrapRepoErr("failed to put override", err)
	}
	return nil
}

func (s *OverrideStore) Get(ctx context.Context, place string, day booking.Weekday) (*booking.Override, error) {
	const q = `
		SELECT place, day, occupant, original_occupant, reserved_on, restore_on
		FROM temp_overrides
		WHERE place = $1 AND day = $2
		LIMIT 1`

	ov, err := scanOverride(s.db.QueryRow(ctx, q, place, string(day)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, infra.WrapRepoErr("failed to read override", err)
	}
	return &ov, nil
}

func (s *OverrideStore) Delete(ctx context.Context, place string, day booking.Weekday) error {
	const q = `DELETE FROM temp_overrides WHERE place = $1 AND day = $2`

	if _, err := s.db.Exec(ctx, q, place, string(day)); err != nil {
		return infra.WrapRepoErr("failed to delete override", err)
	}
	return nil
}

func (s *OverrideStore) ListExpired(ctx context.Context, asOf time.Time) ([]booking.Override, error) {
	const q = `
		SELECT place, day, occupant, original_occupant, reserved_on, restore_on
		FROM temp_overrides
		WHERE restore_on < $1
		ORDER BY place, day`

	rows, err := s.db.Query(ctx, q, asOf)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list expired overrides", err)
	}
	defer rows.Close()

	var expired []booking.Override
	for rows.Next() {
		ov, err := scanOverride(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan override", err)
		}
		expired = append(expired, ov)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate expired overrides", err)
	}
	return expired, nil
}

func scanOverride(row pgx.Row) (booking.Override, error) {
	var ov booking.Override
	var day string
	if err := row.Scan(&ov.Place, &day, &ov.Occupant, &ov.OriginalOccupant, &ov.ReservedOn, &ov.RestoreOn); err != nil {
		return booking.Override{}, err
	}
	ov.Day = booking.Weekday(day)
	return ov, nil
}
