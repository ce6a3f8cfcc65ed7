//go:build unit

package commands_test

import (
	"context"
	"time"

	"parkly/internal/domain/booking"
	"parkly/internal/usecase/shared"
)

// In-memory storage mirroring the SQL stores' semantics, shared by a
// fake unit of work and the read-side fakes.

type cellKey struct {
	place string
	day   booking.Weekday
}

type bookingRow struct {
	occupant        string
	temporary       bool
	manuallyDeleted bool
}

type notificationJob struct {
	kind    string
	topic   string
	payload []byte
	runAt   time.Time
}

type memState struct {
	bookings  map[cellKey][]bookingRow
	overrides map[cellKey]booking.Override
	jobs      []notificationJob
}

func newMemState() *memState {
	return &memState{
		bookings:  make(map[cellKey][]bookingRow),
		overrides: make(map[cellKey]booking.Override),
	}
}

func (m *memState) seedBooking(place string, day booking.Weekday, occupant string, kind booking.Kind) {
	k := cellKey{place, day}
	m.bookings[k] = append(m.bookings[k], bookingRow{
		occupant:  occupant,
		temporary: kind == booking.KindTemporary,
	})
}

func (m *memState) visibleOccupant(place string, day booking.Weekday) *booking.Occupancy {
	for _, row := range m.bookings[cellKey{place, day}] {
		if row.manuallyDeleted {
			continue
		}
		kind := booking.KindPermanent
		if row.temporary {
			kind = booking.KindTemporary
		}
		return &booking.Occupancy{Occupant: row.occupant, Kind: kind}
	}
	return nil
}

type fakeUoW struct {
	state *memState
}

func (u *fakeUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, &fakeTx{state: u.state})
}

type fakeTx struct {
	state *memState
}

func (t *fakeTx) Bookings() shared.BookingStore           { return &fakeBookingStore{state: t.state} }
func (t *fakeTx) Overrides() shared.OverrideStore         { return &fakeOverrideStore{state: t.state} }
func (t *fakeTx) Notifications() shared.NotificationStore { return &fakeNotificationStore{state: t.state} }

func (t *fakeTx) LockCell(_ context.Context, _ string, _ booking.Weekday) error {
	return nil
}

type fakeBookingStore struct {
	state *memState
}

func (s *fakeBookingStore) CurrentOccupant(_ context.Context, place string, day booking.Weekday) (*booking.Occupancy, error) {
	return s.state.visibleOccupant(place, day), nil
}

func (s *fakeBookingStore) UserBooking(_ context.Context, occupant string, day booking.Weekday, kind booking.Kind) (string, error) {
	for k, rows := range s.state.bookings {
		if k.day != day {
			continue
		}
		for _, row := range rows {
			if row.manuallyDeleted || row.occupant != occupant {
				continue
			}
			if row.temporary == (kind == booking.KindTemporary) {
				return k.place, nil
			}
		}
	}
	return "", nil
}

func (s *fakeBookingStore) PermanentCount(_ context.Context, occupant string) (int, error) {
	count := 0
	for _, rows := range s.state.bookings {
		for _, row := range rows {
			if !row.manuallyDeleted && !row.temporary && row.occupant == occupant {
				count++
			}
		}
	}
	return count, nil
}

func (s *fakeBookingStore) Replace(_ context.Context, place string, day booking.Weekday, occupant string, kind booking.Kind) error {
	k := cellKey{place, day}
	s.state.bookings[k] = append(keepMarked(s.state.bookings[k]), bookingRow{
		occupant:  occupant,
		temporary: kind == booking.KindTemporary,
	})
	return nil
}

func (s *fakeBookingStore) Delete(_ context.Context, place string, day booking.Weekday) error {
	k := cellKey{place, day}
	s.state.bookings[k] = keepMarked(s.state.bookings[k])
	return nil
}

func (s *fakeBookingStore) DeleteTemporary(_ context.Context, place string, day booking.Weekday) error {
	k := cellKey{place, day}
	kept := s.state.bookings[k][:0:0]
	for _, row := range s.state.bookings[k] {
		if !row.manuallyDeleted && row.temporary {
			continue
		}
		kept = append(kept, row)
	}
	s.state.bookings[k] = kept
	return nil
}

func (s *fakeBookingStore) MarkManuallyDeleted(_ context.Context, place, occupant string, day booking.Weekday) error {
	k := cellKey{place, day}
	for i, row := range s.state.bookings[k] {
		if !row.manuallyDeleted && row.occupant == occupant {
			s.state.bookings[k][i].manuallyDeleted = true
			return nil
		}
	}
	for _, row := range s.state.bookings[k] {
		if row.manuallyDeleted && row.occupant == occupant {
			return nil
		}
	}
	s.state.bookings[k] = append(s.state.bookings[k], bookingRow{
		occupant:        occupant,
		manuallyDeleted: true,
	})
	return nil
}

func (s *fakeBookingStore) HasManualDeletionMark(_ context.Context, place, occupant string, day booking.Weekday) (bool, error) {
	for _, row := range s.state.bookings[cellKey{place, day}] {
		if row.manuallyDeleted && row.occupant == occupant {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeBookingStore) ClearManualDeletionMarks(_ context.Context, place string, day booking.Weekday) error {
	k := cellKey{place, day}
	kept := s.state.bookings[k][:0:0]
	for _, row := range s.state.bookings[k] {
		if row.manuallyDeleted {
			continue
		}
		kept = append(kept, row)
	}
	s.state.bookings[k] = kept
	return nil
}

func keepMarked(rows []bookingRow) []bookingRow {
	kept := rows[:0:0]
	for _, row := range rows {
		if row.manuallyDeleted {
			kept = append(kept, row)
		}
	}
	return kept
}

type fakeOverrideStore struct {
	state *memState
}

func (s *fakeOverrideStore) Put(_ context.Context, ov booking.Override) error {
	s.state.overrides[cellKey{ov.Place, ov.Day}] = ov
	return nil
}

func (s *fakeOverrideStore) Get(_ context.Context, place string, day booking.Weekday) (*booking.Override, error) {
	ov, ok := s.state.overrides[cellKey{place, day}]
	if !ok {
		return nil, nil
	}
	copied := ov
	return &copied, nil
}

func (s *fakeOverrideStore) Delete(_ context.Context, place string, day booking.Weekday) error {
	delete(s.state.overrides, cellKey{place, day})
	return nil
}

func (s *fakeOverrideStore) ListExpired(_ context.Context, asOf time.Time) ([]booking.Override, error) {
	var expired []booking.Override
	for _, ov := range s.state.overrides {
		if ov.Expired(asOf) {
			expired = append(expired, ov)
		}
	}
	return expired, nil
}

type fakeNotificationStore struct {
	state *memState
}

func (s *fakeNotificationStore) CreateJob(_ context.Context, kind, topic string, payload []byte, runAt time.Time) error {
	s.state.jobs = append(s.state.jobs, notificationJob{
		kind:    kind,
		topic:   topic,
		payload: payload,
		runAt:   runAt,
	})
	return nil
}
