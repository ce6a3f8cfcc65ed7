//go:build unit

package booking_test

import (
	"testing"
	"time"

	"parkly/internal/domain/booking"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func occupied(occupant string, kind booking.Kind) *booking.Occupancy {
	return &booking.Occupancy{Occupant: occupant, Kind: kind}
}

func override(occupant string, original *string) *booking.Override {
	return &booking.Override{
		Place:            "4",
		Day:              booking.Wednesday,
		Occupant:         occupant,
		OriginalOccupant: original,
		ReservedOn:       time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
		RestoreOn:        time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
	}
}

func TestDecidePermanent(t *testing.T) {
	tests := []struct {
		name       string
		snap       booking.Snapshot
		privileged bool
		want       booking.PermanentPlan
		errIs      error
	}{
		{
			name: "free cell books without displacement",
			snap: booking.Snapshot{},
			want: booking.PermanentPlan{},
		},
		{
			name:  "occupied cell rejects regular user",
			snap:  booking.Snapshot{Current: occupied("victor", booking.KindPermanent)},
			errIs: booking.ErrSlotTaken,
		},
		{
			name:  "temporarily occupied cell rejects regular user",
			snap:  booking.Snapshot{Current: occupied("victor", booking.KindTemporary)},
			errIs: booking.ErrSlotTaken,
		},
		{
			name:       "occupied cell yields to privileged user",
			snap:       booking.Snapshot{Current: occupied("victor", booking.KindPermanent)},
			privileged: true,
			want: booking.PermanentPlan{
				Displaced: "victor",
				Overrode:  true,
			},
		},
		{
			name: "privileged booking clears a pending override",
			snap: booking.Snapshot{
				Current:  occupied("wendy", booking.KindTemporary),
				Override: override("wendy", strPtr("ursula")),
			},
			privileged: true,
			want: booking.PermanentPlan{
				ClearOverride: true,
				Displaced:     "wendy",
				Overrode:      true,
			},
		},
		{
			name:  "second permanent booking the same day is rejected",
			snap:  booking.Snapshot{OwnPermanentPlace: "2"},
			errIs: booking.ErrAlreadyBookedPermanent,
		},
		{
			name:  "existing temporary booking the same day is rejected",
			snap:  booking.Snapshot{OwnTemporaryPlace: "7"},
			errIs: booking.ErrAlreadyBookedTemporary,
		},
		{
			name:       "day exclusivity binds privileged users too",
			snap:       booking.Snapshot{OwnPermanentPlace: "2"},
			privileged: true,
			errIs:      booking.ErrAlreadyBookedPermanent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := booking.DecidePermanent(tt.snap, "alice", tt.privileged)
			if tt.errIs != nil {
				require.ErrorIs(t, err, tt.errIs)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("plan mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecideTemporary(t *testing.T) {
	tests := []struct {
		name       string
		snap       booking.Snapshot
		privileged bool
		want       booking.TemporaryPlan
		errIs      error
	}{
		{
			name: "free cell books without an override record",
			snap: booking.Snapshot{},
			want: booking.TemporaryPlan{},
		},
		{
			name:  "occupied cell rejects regular user",
			snap:  booking.Snapshot{Current: occupied("victor", booking.KindPermanent)},
			errIs: booking.ErrSlotTaken,
		},
		{
			name:       "privileged displacement of a permanent occupant records the override",
			snap:       booking.Snapshot{Current: occupied("victor", booking.KindPermanent)},
			privileged: true,
			want: booking.TemporaryPlan{
				RecordOverride:   true,
				OriginalOccupant: strPtr("victor"),
				Displaced:        "victor",
				Overrode:         true,
			},
		},
		{
			name: "displacing a temporary occupant carries the original forward",
			snap: booking.Snapshot{
				Current:  occupied("victor", booking.KindTemporary),
				Override: override("victor", strPtr("ursula")),
			},
			privileged: true,
			want: booking.TemporaryPlan{
				RemoveCurrentTemp: true,
				RecordOverride:    true,
				OriginalOccupant:  strPtr("ursula"),
				Displaced:         "victor",
				Overrode:          true,
			},
		},
		{
			name: "displacing a temporary occupant of a once-free cell keeps nobody to restore",
			snap: booking.Snapshot{
				Current:  occupied("victor", booking.KindTemporary),
				Override: override("victor", nil),
			},
			privileged: true,
			want: booking.TemporaryPlan{
				RemoveCurrentTemp: true,
				RecordOverride:    true,
				Displaced:         "victor",
				Overrode:          true,
			},
		},
		{
			name:  "second temporary booking the same day is rejected",
			snap:  booking.Snapshot{OwnTemporaryPlace: "9"},
			errIs: booking.ErrAlreadyBookedTemporary,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := booking.DecideTemporary(tt.snap, "wendy", tt.privileged)
			if tt.errIs != nil {
				require.ErrorIs(t, err, tt.errIs)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("plan mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecideRemoval(t *testing.T) {
	tests := []struct {
		name       string
		snap       booking.Snapshot
		requester  string
		privileged bool
		want       booking.RemovalPlan
		errIs      error
	}{
		{
			name:      "owner removes their permanent booking",
			snap:      booking.Snapshot{Current: occupied("alice", booking.KindPermanent)},
			requester: "alice",
			want:      booking.RemovalPlan{Action: booking.RemovalDelete, Removed: "alice"},
		},
		{
			name: "owner cancelling their temporary booking hands the cell back",
			snap: booking.Snapshot{
				Current:  occupied("wendy", booking.KindTemporary),
				Override: override("wendy", strPtr("ursula")),
			},
			requester: "wendy",
			want: booking.RemovalPlan{
				Action:        booking.RemovalEarlyRestore,
				Removed:       "wendy",
				Displaced:     "ursula",
				ClearOverride: true,
			},
		},
		{
			name: "displaced owner cancelling behind an override leaves a marker",
			snap: booking.Snapshot{
				Current:  occupied("wendy", booking.KindTemporary),
				Override: override("wendy", strPtr("ursula")),
			},
			requester: "ursula",
			want:      booking.RemovalPlan{Action: booking.RemovalMarkDeleted, Removed: "ursula"},
		},
		{
			name:      "removing a free cell reports it is not booked",
			snap:      booking.Snapshot{},
			requester: "alice",
			errIs:     booking.ErrNotBooked,
		},
		{
			name:      "removing another user's booking is rejected",
			snap:      booking.Snapshot{Current: occupied("victor", booking.KindPermanent)},
			requester: "alice",
			errIs:     booking.ErrNotOwner,
		},
		{
			name: "privileged removal of an overriding booking restores the original",
			snap: booking.Snapshot{
				Current:  occupied("wendy", booking.KindTemporary),
				Override: override("wendy", strPtr("ursula")),
			},
			requester:  "admin",
			privileged: true,
			want: booking.RemovalPlan{
				Action:        booking.RemovalEarlyRestore,
				Removed:       "wendy",
				Displaced:     "ursula",
				ClearOverride: true,
			},
		},
		{
			name:       "privileged removal of a permanent booking deletes it",
			snap:       booking.Snapshot{Current: occupied("victor", booking.KindPermanent)},
			requester:  "admin",
			privileged: true,
			want:       booking.RemovalPlan{Action: booking.RemovalDelete, Removed: "victor"},
		},
		{
			name: "privileged removal clears a dangling override",
			snap: booking.Snapshot{
				Current:  occupied("victor", booking.KindPermanent),
				Override: override("victor", strPtr("victor")),
			},
			requester:  "admin",
			privileged: true,
			want: booking.RemovalPlan{
				Action:        booking.RemovalDelete,
				Removed:       "victor",
				ClearOverride: true,
			},
		},
		{
			name:       "privileged removal of a free cell is a no-op delete",
			snap:       booking.Snapshot{},
			requester:  "admin",
			privileged: true,
			want:       booking.RemovalPlan{Action: booking.RemovalDelete},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := booking.DecideRemoval(tt.snap, tt.requester, tt.privileged)
			if tt.errIs != nil {
				require.ErrorIs(t, err, tt.errIs)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("plan mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEffectiveOccupancy(t *testing.T) {
	t.Run("override wins over the booking row", func(t *testing.T) {
		snap := booking.Snapshot{
			Current:  occupied("ursula", booking.KindPermanent),
			Override: override("wendy", strPtr("ursula")),
		}
		occupant, temporary, taken := snap.EffectiveOccupancy()
		assert.Equal(t, "wendy", occupant)
		assert.True(t, temporary)
		assert.True(t, taken)
	})

	t.Run("free cell reports unoccupied", func(t *testing.T) {
		_, _, taken := booking.Snapshot{}.EffectiveOccupancy()
		assert.False(t, taken)
	})
}
