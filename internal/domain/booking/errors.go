package booking

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyOccupant = errors.New("occupant handle cannot be empty")
	ErrUnknownPlace  = errors.New("unknown parking place")

	ErrAlreadyBookedPermanent = errors.New("already holds a permanent booking that day")
	ErrAlreadyBookedTemporary = errors.New("already holds a temporary booking that day")
	ErrSlotTaken              = errors.New("slot already booked")
	ErrNotOwner               = errors.New("booked by another user")
	ErrNotBooked              = errors.New("slot is not booked")
)

// AlreadyBookedError names the slot the requester already holds on the
// requested weekday.
type AlreadyBookedError struct {
	Place string
	Kind  Kind
}

func (e *AlreadyBookedError) Error() string {
	return fmt.Sprintf("already holds a %s booking of place %s that day", e.Kind, e.Place)
}

func (e *AlreadyBookedError) Is(target error) bool {
	switch e.Kind {
	case KindTemporary:
		return target == ErrAlreadyBookedTemporary
	default:
		return target == ErrAlreadyBookedPermanent
	}
}

// SlotTakenError names the current occupant blocking the request.
type SlotTakenError struct {
	Occupant  string
	Temporary bool
}

func (e *SlotTakenError) Error() string {
	if e.Temporary {
		return fmt.Sprintf("place temporarily booked by @%s", e.Occupant)
	}
	return fmt.Sprintf("place booked by @%s", e.Occupant)
}

func (e *SlotTakenError) Is(target error) bool {
	return target == ErrSlotTaken
}

type NotOwnerError struct {
	Occupant string
}

func (e *NotOwnerError) Error() string {
	return fmt.Sprintf("place booked by @%s", e.Occupant)
}

func (e *NotOwnerError) Is(target error) bool {
	return target == ErrNotOwner
}
