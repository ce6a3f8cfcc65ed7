package shared

import (
	"context"
	"time"

	"parkly/internal/domain/booking"
)

// UnitOfWork runs a decision's full read-then-write sequence as one
// transaction, retrying transparently on storage contention.
type UnitOfWork interface {
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type Tx interface {
	Bookings() BookingStore
	Overrides() OverrideStore
	Notifications() NotificationStore

	// LockCell serializes all writers of one (place, weekday) cell for
	// the remainder of the transaction.
	LockCell(ctx context.Context, place string, day booking.Weekday) error
}

type BookingStore interface {
	// CurrentOccupant reads the visible booking of a cell, nil if free.
	CurrentOccupant(ctx context.Context, place string, day booking.Weekday) (*booking.Occupancy, error)

	// UserBooking finds the place of the occupant's booking of the
	// given kind on a weekday, "" if none.
	UserBooking(ctx context.Context, occupant string, day booking.Weekday, kind booking.Kind) (string, error)

	PermanentCount(ctx context.Context, occupant string) (int, error)

	// Replace atomically swaps in the booking row for a cell, clearing
	// whatever visible row was there.
	Replace(ctx context.Context, place string, day booking.Weekday, occupant string, kind booking.Kind) error

	Delete(ctx context.Context, place string, day booking.Weekday) error
	DeleteTemporary(ctx context.Context, place string, day booking.Weekday) error

	// Manual-deletion markers record an owner's deliberate cancellation
	// of a booking hidden behind an override; they are invisible to
	// every occupancy read.
	MarkManuallyDeleted(ctx context.Context, place, occupant string, day booking.Weekday) error
	HasManualDeletionMark(ctx context.Context, place, occupant string, day booking.Weekday) (bool, error)
	ClearManualDeletionMarks(ctx context.Context, place string, day booking.Weekday) error
}

type OverrideStore interface {
	Put(ctx context.Context, ov booking.Override) error
	Get(ctx context.Context, place string, day booking.Weekday) (*booking.Override, error)
	Delete(ctx context.Context, place string, day booking.Weekday) error
	ListExpired(ctx context.Context, asOf time.Time) ([]booking.Override, error)
}

type NotificationStore interface {
	CreateJob(ctx context.Context, kind, topic string, payload []byte, runAt time.Time) error
}
