package store

import (
	"context"
	"errors"

	"parkly/internal/domain/booking"
	"parkly/internal/infra"

	"github.com/jackc/pgx/v5"
)

type BookingStore struct {
	db DBTX
}

func NewBookingStore(db DBTX) *BookingStore {
	return &BookingStore{db: db}
}

func (s *BookingStore) CurrentOccupant(ctx context.Context, place string, day booking.Weekday) (*booking.Occupancy, error) {
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
		return nil, infra.WrapRepoErr("failed to read current occupant", err)
	}

	occ := &booking.Occupancy{Occupant: occupant, Kind: booking.KindPermanent}
	if isTemp {
		occ.Kind = booking.KindTemporary
	}
	return occ, nil
}

func (s *BookingStore) UserBooking(ctx context.Context, occupant string, day booking.Weekday, kind booking.Kind) (string, error) {
	const q = `
		SELECT place
		FROM bookings
		WHERE occupant = $1 AND day = $2 AND is_temp = $3 AND NOT manually_deleted
		LIMIT 1`

	var place string
	err := s.db.QueryRow(ctx, q, occupant, string(day), kind == booking.KindTemporary).Scan(&place)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", infra.WrapRepoErr("failed to read user booking", err)
	}
	return place, nil
}

func (s *BookingStore) PermanentCount(ctx context.Context, occupant string) (int, error) {
	const q = `
		SELECT count(*)
		FROM bookings
		WHERE occupant = $1 AND NOT is_temp AND NOT manually_deleted`

	var count int
	if err := s.db.QueryRow(ctx, q, occupant).Scan(&count); err != nil {
		return 0, infra.WrapRepoErr("failed to count permanent bookings", err)
	}
	return count, nil
}

// Replace swaps in the booking row for a cell in one shot, so a crash
// cannot leave the cell with no row while it is logically occupied.
func (s *BookingStore) Replace(ctx context.Context, place string, day booking.Weekday, occupant string, kind booking.Kind) error {
	const q = `
		WITH cleared AS (
			DELETE FROM bookings
			WHERE place = $1 AND day = $2 AND NOT manually_deleted
		)
		INSERT INTO bookings (place, day, occupant, is_temp)
		VALUES ($1, $2, $3, $4)`

	if _, err := s.db.Exec(ctx, q, place, string(day), occupant, kind == booking.KindTemporary); err != nil {
		return infra.WrapRepoErr("failed to replace booking", err)
	}
	return nil
}

func (s *BookingStore) Delete(ctx context.Context, place string, day booking.Weekday) error {
	const q = `DELETE FROM bookings WHERE place = $1 AND day = $2 AND NOT manually_deleted`

	if _, err := s.db.Exec(ctx, q, place, string(day)); err != nil {
		return infra.WrapRepoErr("failed to delete booking", err)
	}
	return nil
}

func (s *BookingStore) DeleteTemporary(ctx context.Context, place string, day booking.Weekday) error {
	const q = `DELETE FROM bookings WHERE place = $1 AND day = $2 AND is_temp AND NOT manually_deleted`

	if _, err := s.db.Exec(ctx, q, place, string(day)); err != nil {
		return infra.WrapRepoErr("failed to delete temporary booking", err)
	}
	return nil
}

func (s *BookingStore) MarkManuallyDeleted(ctx context.Context, place, occupant string, day booking.Weekday) error {
	// The owner's row may still exist (plain cancellation) or be gone
	// already (displaced by an override); either way exactly one hidden
	// marker row remains.
	const q = `
		WITH updated AS (
			UPDATE bookings
			SET manually_deleted = TRUE
			WHERE place = $1 AND occupant = $2 AND day = $3 AND NOT manually_deleted
			RETURNING id
		)
		INSERT INTO bookings (place, day, occupant, is_temp, manually_deleted)
		SELECT $1, $3, $2, FALSE, TRUE
		WHERE NOT EXISTS (SELECT 1 FROM updated)
		  AND NOT EXISTS (
			SELECT 1 FROM bookings
			WHERE place = $1 AND occupant = $2 AND day = $3 AND manually_deleted
		  )`

	if _, err := s.db.Exec(ctx, q, place, occupant, string(day)); err != nil {
		return infra.WrapRepoErr("failed to mark booking manually deleted", err)
	}
	return nil
}

func (s *BookingStore) HasManualDeletionMark(ctx context.Context, place, occupant string, day booking.Weekday) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE place = $1 AND occupant = $2 AND day = $3 AND manually_deleted
		)`

	var marked bool
	if err := s.db.QueryRow(ctx, q, place, occupant, string(day)).Scan(&marked); err != nil {
		return false, infra.WrapRepoErr("failed to check manual deletion mark", err)
	}
	return marked, nil
}

func (s *BookingStore) ClearManualDeletionMarks(ctx context.Context, place string, day booking.Weekday) error {
	const q = `DELETE FROM bookings WHERE place = $1 AND day = $2 AND manually_deleted`

	if _, err := s.db.Exec(ctx, q, place, string(day)); err != nil {
		return infra.WrapRepoErr("failed to clear manual deletion marks", err)
	}
	return nil
}
