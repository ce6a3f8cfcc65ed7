//go:build unit

package commands_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"parkly/internal/domain/booking"
	"parkly/internal/domain/schedule"
	"parkly/internal/pkg/clock"
	"parkly/internal/pkg/config"
	"parkly/internal/usecase/commands"
	"parkly/internal/usecase/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = shared.Actor{Handle: "alice"}
	ursu  = shared.Actor{Handle: "ursula"}
	vip   = shared.Actor{Handle: "wendy", Privileged: true}
	vip2  = shared.Actor{Handle: "walter", Privileged: true}
	admin = shared.Actor{Handle: "admin", Privileged: true}
)

type env struct {
	state        *memState
	clk          *clock.MockClock
	bookings     commands.BookingCommands
	restorations commands.RestorationCommands
}

// Monday 2026-03-02, mid-morning.
var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newEnv() *env {
	state := newMemState()
	clk := clock.NewMockClock(testNow)
	resolver := schedule.NewWeekResolver(clk)
	uow := &fakeUoW{state: state}
	cfg := config.ParkingConfig{
		Places:              []string{"1", "2", "3", "4"},
		MaxPermanentPerUser: 3,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &env{
		state:        state,
		clk:          clk,
		bookings:     commands.NewBookingUseCase(uow, resolver, clk, cfg),
		restorations: commands.NewRestorationUseCase(uow, &fakeOverrideStore{state: state}, clk, logger),
	}
}

func TestBookPermanent(t *testing.T) {
	t.Run("free cell is booked and announced", func(t *testing.T) {
		e := newEnv()

		outcome, err := e.bookings.BookPermanent(context.Background(), alice, "2", booking.Wednesday)
		require.NoError(t, err)
		assert.Equal(t, commands.EventBooked, outcome.Event)
		assert.Equal(t, "alice", outcome.Occupant)
		assert.Empty(t, outcome.Displaced)

		occ := e.state.visibleOccupant("2", booking.Wednesday)
		require.NotNil(t, occ)
		assert.Equal(t, booking.Occupancy{Occupant: "alice", Kind: booking.KindPermanent}, *occ)

		require.Len(t, e.state.jobs, 1)
		assert.Equal(t, "broadcast", e.state.jobs[0].kind)
		assert.Equal(t, commands.EventBooked, e.state.jobs[0].topic)

		var payload commands.Outcome
		require.NoError(t, json.Unmarshal(e.state.jobs[0].payload, &payload))
		assert.Equal(t, "alice", payload.Occupant)
	})

	t.Run("fourth permanent booking hits the cap", func(t *testing.T) {
		e := newEnv()
		e.state.seedBooking("1", booking.Monday, "alice", booking.KindPermanent)
		e.state.seedBooking("2", booking.Tuesday, "alice", booking.KindPermanent)
		e.state.seedBooking("3", booking.Wednesday, "alice", booking.KindPermanent)

		_, err := e.bookings.BookPermanent(context.Background(), alice, "1", booking.Thursday)
		require.ErrorIs(t, err, commands.ErrPermanentLimitReached)
	})

	t.Run("rejected request leaves the store untouched", func(t *testing.T) {
		e := newEnv()
		e.state.seedBooking("2", booking.Wednesday, "victor", booking.KindPermanent)

		_, err := e.bookings.BookPermanent(context.Background(), alice, "2", booking.Wednesday)
		require.ErrorIs(t, err, booking.ErrSlotTaken)

		occ := e.state.visibleOccupant("2", booking.Wednesday)
		require.NotNil(t, occ)
		assert.Equal(t, "victor", occ.Occupant)
		assert.Empty(t, e.state.jobs)
	})

	t.Run("second booking the same weekday names the first place", func(t *testing.T) {
		e := newEnv()
		e.state.seedBooking("1", booking.Wednesday, "alice", booking.KindPermanent)

		_, err := e.bookings.BookPermanent(context.Background(), alice, "3", booking.Wednesday)
		require.ErrorIs(t, err, booking.ErrAlreadyBookedPermanent)

		var abErr *booking.AlreadyBookedError
		require.ErrorAs(t, err, &abErr)
		assert.Equal(t, "1", abErr.Place)
	})

	t.Run("privileged user displaces the sitting occupant", func(t *testing.T) {
		e := newEnv()
		e.state.seedBooking("2", booking.Wednesday, "victor", booking.KindPermanent)

		outcome, err := e.bookings.BookPermanent(context.Background(), vip, "2", booking.Wednesday)
		require.NoError(t, err)
		assert.Equal(t, commands.EventOverridden, outcome.Event)
		assert.Equal(t, "victor", outcome.Displaced)

		occ := e.state.visibleOccupant("2", booking.Wednesday)
		require.NotNil(t, occ)
		assert.Equal(t, "wendy", occ.Occupant)
	})

	t.Run("unknown place is rejected before any store access", func(t *testing.T) {
		e := newEnv()

		_, err := e.bookings.BookPermanent(context.Background(), alice, "99", booking.Wednesday)
		require.ErrorIs(t, err, commands.ErrValidation)
		assert.Empty(t, e.state.jobs)
	})

	t.Run("empty handle is rejected", func(t *testing.T) {
		e := newEnv()

		_, err := e.bookings.BookPermanent(context.Background(), shared.Actor{}, "1", booking.Monday)
		require.ErrorIs(t, err, commands.ErrValidation)
	})

	t.Run("unknown weekday is rejected", func(t *testing.T) {
		e := newEnv()

		_, err := e.bookings.BookPermanent(context.Background(), alice, "1", booking.Weekday("someday"))
		require.ErrorIs(t, err, commands.ErrValidation)
	})
}

func TestBookTemporary(t *testing.T) {
	t.Run("free cell needs no override record", func(t *testing.T) {
		e := newEnv()

		outcome, err := e.bookings.BookTemporary(context.Background(), alice, "3", booking.Friday)
		require.NoError(t, err)
		assert.Equal(t, commands.EventBooked, outcome.Event)
		require.NotNil(t, outcome.Date)
		assert.Equal(t, time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC), *outcome.Date)

		assert.Empty(t, e.state.overrides)
		occ := e.state.visibleOccupant("3", booking.Friday)
		require.NotNil(t, occ)
		assert.Equal(t, booking.KindTemporary, occ.Kind)
	})

	t.Run("occupied cell rejects a regular user", func(t *testing.T) {
		e := newEnv()
		e.state.seedBooking("3", booking.Friday, "victor", booking.KindPermanent)

		_, err := e.bookings.BookTemporary(context.Background(), alice, "3", booking.Friday)
		require.ErrorIs(t, err, booking.ErrSlotTaken)
	})

	t.Run("privileged displacement records the override", func(t *testing.T) {
		e := newEnv()
		e.state.seedBooking("3", booking.Wednesday, "ursula", booking.KindPermanent)

		outcome, err := e.bookings.BookTemporary(context.Background(), vip, "3", booking.Wednesday)
		require.NoError(t, err)
		assert.Equal(t, commands.EventOverridden, outcome.Event)
		assert.Equal(t, "ursula", outcome.Displaced)

		ov, ok := e.state.overrides[cellKey{"3", booking.Wednesday}]
		require.True(t, ok)
		assert.Equal(t, "wendy", ov.Occupant)
		require.NotNil(t, ov.OriginalOccupant)
		assert.Equal(t, "ursula", *ov.OriginalOccupant)
		assert.Equal(t, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), ov.RestoreOn)
	})
}

func TestRemove(t *testing.T) {
	t.Run("owner removes their booking outright", func(t *testing.T) {
		e := newEnv()
		e.state.seedBooking("1", booking.Monday, "alice", booking.KindPermanent)

		outcome, err := e.bookings.Remove(context.Background(), alice, "1", booking.Monday)
		require.NoError(t, err)
		assert.Equal(t, commands.EventRemoved, outcome.Event)
		assert.Nil(t, e.state.visibleOccupant("1", booking.Monday))
	})

	t.Run("removing a free cell fails", func(t *testing.T) {
		e := newEnv()

		_, err := e.bookings.Remove(context.Background(), alice, "1", booking.Monday)
		require.ErrorIs(t, err, booking.ErrNotBooked)
	})

	t.Run("removing another user's booking fails", func(t *testing.T) {
		e := newEnv()
		e.state.seedBooking("1", booking.Monday, "victor", booking.KindPermanent)

		_, err := e.bookings.Remove(context.Background(), alice, "1", booking.Monday)
		require.ErrorIs(t, err, booking.ErrNotOwner)

		occ := e.state.visibleOccupant("1", booking.Monday)
		require.NotNil(t, occ)
		assert.Equal(t, "victor", occ.Occupant)
	})

	t.Run("owner cancelling their temporary booking restores the displaced occupant immediately", func(t *testing.T) {
		e := newEnv()
		e.state.seedBooking("2", booking.Thursday, "ursula", booking.KindPermanent)

		_, err := e.bookings.BookTemporary(context.Background(), vip, "2", booking.Thursday)
		require.NoError(t, err)

		outcome, err := e.bookings.Remove(context.Background(), vip, "2", booking.Thursday)
		require.NoError(t, err)
		assert.Equal(t, "ursula", outcome.Restored)

		occ := e.state.visibleOccupant("2", booking.Thursday)
		require.NotNil(t, occ)
		assert.Equal(t, booking.Occupancy{Occupant: "ursula", Kind: booking.KindPermanent}, *occ)
		assert.Empty(t, e.state.overrides)
	})

	t.Run("privileged removal of a free cell announces nothing", func(t *testing.T) {
		e := newEnv()

		outcome, err := e.bookings.Remove(context.Background(), admin, "1", booking.Monday)
		require.NoError(t, err)
		assert.Equal(t, commands.EventRemoved, outcome.Event)
		assert.Empty(t, e.state.jobs)
	})

	t.Run("privileged removal of an overriding booking restores early", func(t *testing.T) {
		e := newEnv()
		e.state.seedBooking("2", booking.Thursday, "ursula", booking.KindPermanent)

		_, err := e.bookings.BookTemporary(context.Background(), vip, "2", booking.Thursday)
		require.NoError(t, err)

		outcome, err := e.bookings.Remove(context.Background(), admin, "2", booking.Thursday)
		require.NoError(t, err)
		assert.Equal(t, "ursula", outcome.Restored)

		occ := e.state.visibleOccupant("2", booking.Thursday)
		require.NotNil(t, occ)
		assert.Equal(t, "ursula", occ.Occupant)
		assert.Empty(t, e.state.overrides)
	})
}
