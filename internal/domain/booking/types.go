package booking

import "time"

type Kind string

const (
	KindPermanent Kind = "permanent"
	KindTemporary Kind = "temporary"
)

// Occupancy is the visible booking of a (place, weekday) cell.
type Occupancy struct {
	Occupant string
	Kind     Kind
}

// Override records that a temporary booking has displaced whatever held
// a cell before. OriginalOccupant is nil when the cell was free; the
// displaced permanent occupant's identity survives only here while the
// override is active.
type Override struct {
	Place            string
	Day              Weekday
	Occupant         string
	OriginalOccupant *string
	ReservedOn       time.Time
	RestoreOn        time.Time
}

// Expired reports whether the override's week has elapsed as of the
// given date (restoration happens strictly after the restore date).
func (o Override) Expired(asOf time.Time) bool {
	y, m, d := asOf.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, asOf.Location())
	return o.RestoreOn.Before(today)
}

// Snapshot is a fresh read of everything a decision needs for one
// (place, weekday) cell plus the requester's existing claims that day.
type Snapshot struct {
	Current  *Occupancy
	Override *Override

	// Place of the requester's existing booking of each kind on the
	// requested weekday, any slot; empty if none.
	OwnPermanentPlace string
	OwnTemporaryPlace string
}

// EffectiveOccupancy resolves who owns the cell for collision purposes.
// An active override wins over the plain booking row: a cell under
// temporary override belongs to the temporary occupant even though the
// original occupant is still recorded for restoration.
func (s Snapshot) EffectiveOccupancy() (occupant string, temporary bool, occupied bool) {
	if s.Override != nil {
		return s.Override.Occupant, true, true
	}
	if s.Current != nil {
		return s.Current.Occupant, s.Current.Kind == KindTemporary, true
	}
	return "", false, false
}
