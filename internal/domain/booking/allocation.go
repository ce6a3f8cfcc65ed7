package booking

// Allocation rules. Each Decide function is a pure function of a fresh
// Snapshot and the request; it returns the mutation plan the caller
// must apply inside the same transaction the snapshot was read in.

// PermanentPlan describes how to place a permanent booking. The
// booking row itself is always written with Replace, which clears
// whatever visible row held the cell.
type PermanentPlan struct {
	// ClearOverride also removes a pending override, so a later sweep
	// cannot clobber the new permanent booking.
	ClearOverride bool

	// Displaced is the occupant losing the cell, empty if it was free.
	Displaced string

	Overrode bool
}

func DecidePermanent(s Snapshot, occupant string, privileged bool) (PermanentPlan, error) {
	if err := checkDayExclusivity(s); err != nil {
		return PermanentPlan{}, err
	}

	if s.Current == nil {
		return PermanentPlan{}, nil
	}

	if !privileged {
		return PermanentPlan{}, &SlotTakenError{
			Occupant:  s.Current.Occupant,
			Temporary: s.Current.Kind == KindTemporary,
		}
	}

	return PermanentPlan{
		ClearOverride: s.Override != nil,
		Displaced:     s.Current.Occupant,
		Overrode:      true,
	}, nil
}

// TemporaryPlan describes how to place a temporary booking.
type TemporaryPlan struct {
	// RemoveCurrentTemp clears the sitting temporary occupant's booking
	// and override first (privileged temp-over-temp displacement).
	RemoveCurrentTemp bool

	// RecordOverride stores an override so the displacement can be
	// reversed. OriginalOccupant is the permanent occupant to restore;
	// nil when nobody is owed the cell back. Only one level of override
	// is kept: displacing a temporary occupant carries the previous
	// override's original occupant forward.
	RecordOverride   bool
	OriginalOccupant *string

	// Displaced is the occupant pushed out right now, empty if none.
	Displaced string

	Overrode bool
}

func DecideTemporary(s Snapshot, occupant string, privileged bool) (TemporaryPlan, error) {
	if err := checkDayExclusivity(s); err != nil {
		return TemporaryPlan{}, err
	}

	current, wasTemporary, occupied := s.EffectiveOccupancy()
	if !occupied {
		// Free cell: nothing to restore later, no override recorded.
		return TemporaryPlan{}, nil
	}

	if !privileged {
		return TemporaryPlan{}, &SlotTakenError{Occupant: current, Temporary: wasTemporary}
	}

	if wasTemporary {
		var original *string
		if s.Override != nil {
			original = s.Override.OriginalOccupant
		}
		return TemporaryPlan{
			RemoveCurrentTemp: true,
			RecordOverride:    true,
			OriginalOccupant:  original,
			Displaced:         current,
			Overrode:          true,
		}, nil
	}

	displaced := current
	return TemporaryPlan{
		RecordOverride:   true,
		OriginalOccupant: &displaced,
		Displaced:        current,
		Overrode:         true,
	}, nil
}

// RemovalAction is what a removal decision resolved to.
type RemovalAction int

const (
	// RemovalDelete removes the current booking outright.
	RemovalDelete RemovalAction = iota

	// RemovalEarlyRestore removes a temporary booking and reverses its
	// override now instead of waiting for the sweep.
	RemovalEarlyRestore

	// RemovalMarkDeleted records that the displaced permanent owner
	// cancelled their shadowed booking, so the sweep must not reinstate
	// it.
	RemovalMarkDeleted
)

type RemovalPlan struct {
	Action RemovalAction

	// Removed is the occupant whose booking goes away ("" for a
	// privileged removal of a free cell, which is a no-op).
	Removed string

	// Displaced is the occupant eligible for restoration under
	// RemovalEarlyRestore, empty if the cell just becomes free.
	Displaced string

	ClearOverride bool
}

func DecideRemoval(s Snapshot, requester string, privileged bool) (RemovalPlan, error) {
	if privileged {
		return decidePrivilegedRemoval(s), nil
	}

	if s.Current != nil && s.Current.Occupant == requester {
		if s.Override != nil && s.Override.Occupant == requester {
			// Cancelling one's own temporary booking hands the cell
			// back to whoever it displaced.
			return RemovalPlan{
				Action:        RemovalEarlyRestore,
				Removed:       requester,
				Displaced:     derefOccupant(s.Override.OriginalOccupant),
				ClearOverride: true,
			}, nil
		}
		return RemovalPlan{Action: RemovalDelete, Removed: requester}, nil
	}

	// The displaced permanent owner may still cancel the booking hiding
	// behind an override; the cancellation is recorded as a marker the
	// sweep honours.
	if s.Override != nil && s.Override.OriginalOccupant != nil && *s.Override.OriginalOccupant == requester {
		return RemovalPlan{Action: RemovalMarkDeleted, Removed: requester}, nil
	}

	if s.Current == nil {
		return RemovalPlan{}, ErrNotBooked
	}
	return RemovalPlan{}, &NotOwnerError{Occupant: s.Current.Occupant}
}

func decidePrivilegedRemoval(s Snapshot) RemovalPlan {
	if s.Override != nil && s.Current != nil &&
		s.Override.Occupant == s.Current.Occupant &&
		derefOccupant(s.Override.OriginalOccupant) != s.Override.Occupant {
		return RemovalPlan{
			Action:        RemovalEarlyRestore,
			Removed:       s.Current.Occupant,
			Displaced:     derefOccupant(s.Override.OriginalOccupant),
			ClearOverride: true,
		}
	}

	var removed string
	if s.Current != nil {
		removed = s.Current.Occupant
	}
	return RemovalPlan{
		Action:        RemovalDelete,
		Removed:       removed,
		ClearOverride: s.Override != nil,
	}
}

func checkDayExclusivity(s Snapshot) error {
	if s.OwnPermanentPlace != "" {
		return &AlreadyBookedError{Place: s.OwnPermanentPlace, Kind: KindPermanent}
	}
	if s.OwnTemporaryPlace != "" {
		return &AlreadyBookedError{Place: s.OwnTemporaryPlace, Kind: KindTemporary}
	}
	return nil
}

func derefOccupant(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
