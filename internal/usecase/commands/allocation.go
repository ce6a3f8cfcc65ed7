package commands

import (
	"context"
	"encoding/json"
	"slices"
	"time"

	"parkly/internal/domain/booking"
	"parkly/internal/domain/schedule"
	"parkly/internal/pkg/clock"
	"parkly/internal/pkg/config"
	"parkly/internal/pkg/errs"
	"parkly/internal/usecase/shared"
)

var (
	ErrValidation            = errs.New("validation error")
	ErrPermanentLimitReached = errs.New("permanent booking limit reached")
)

// Outcome describes what a successful request changed, for the
// notification and display collaborators.
type Outcome struct {
	Event     string          `json:"event"`
	Place     string          `json:"place"`
	Day       booking.Weekday `json:"day"`
	Occupant  string          `json:"occupant"`
	Displaced string          `json:"displaced,omitempty"`
	Date      *time.Time      `json:"date,omitempty"`
	Restored  string          `json:"restored,omitempty"`
}

const (
	EventBooked     = "booking.booked"
	EventOverridden = "booking.overridden"
	EventRemoved    = "booking.removed"
	EventRestored   = "booking.restored"
)

type BookingCommands interface {
	BookPermanent(ctx context.Context, actor shared.Actor, place string, day booking.Weekday) (*Outcome, error)
	BookTemporary(ctx context.Context, actor shared.Actor, place string, day booking.Weekday) (*Outcome, error)
	Remove(ctx context.Context, actor shared.Actor, place string, day booking.Weekday) (*Outcome, error)
}

type bookingUseCaseImpl struct {
	uow      shared.UnitOfWork
	resolver *schedule.WeekResolver
	clock    clock.Clock
	cfg      config.ParkingConfig
}

func NewBookingUseCase(
	uow shared.UnitOfWork,
	resolver *schedule.WeekResolver,
	clk clock.Clock,
	cfg config.ParkingConfig,
) BookingCommands {
	return &bookingUseCaseImpl{
		uow:      uow,
		resolver: resolver,
		clock:    clk,
		cfg:      cfg,
	}
}

func (u *bookingUseCaseImpl) BookPermanent(ctx context.Context, actor shared.Actor, place string, day booking.Weekday) (*Outcome, error) {
	if err := u.validate(actor, place, day); err != nil {
		return nil, err
	}

	var outcome *Outcome
	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.LockCell(ctx, place, day); err != nil {
			return err
		}

		count, err := tx.Bookings().PermanentCount(ctx, actor.Handle)
		if err != nil {
			return err
		}
		if count >= u.cfg.MaxPermanentPerUser {
			return errs.Mark(
				errs.Newf("occupant %s already holds %d permanent bookings", actor.Handle, count),
				ErrPermanentLimitReached,
			)
		}

		snap, err := readSnapshot(ctx, tx, actor.Handle, place, day)
		if err != nil {
			return err
		}

		plan, err := booking.DecidePermanent(snap, actor.Handle, actor.Privileged)
		if err != nil {
			return err
		}

		if plan.ClearOverride {
			if err := tx.Overrides().Delete(ctx, place, day); err != nil {
				return err
			}
		}
		if err := tx.Bookings().Replace(ctx, place, day, actor.Handle, booking.KindPermanent); err != nil {
			return err
		}

		outcome = &Outcome{
			Event:     EventBooked,
			Place:     place,
			Day:       day,
			Occupant:  actor.Handle,
			Displaced: plan.Displaced,
		}
		if plan.Overrode {
			outcome.Event = EventOverridden
		}
		return u.notify(ctx, tx, outcome)
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

func (u *bookingUseCaseImpl) BookTemporary(ctx context.Context, actor shared.Actor, place string, day booking.Weekday) (*Outcome, error) {
	if err := u.validate(actor, place, day); err != nil {
		return nil, err
	}

	date := u.resolver.ResolveDate(day)
	restoreOn := date

	var outcome *Outcome
	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.LockCell(ctx, place, day); err != nil {
			return err
		}

		snap, err := readSnapshot(ctx, tx, actor.Handle, place, day)
		if err != nil {
			return err
		}

		plan, err := booking.DecideTemporary(snap, actor.Handle, actor.Privileged)
		if err != nil {
			return err
		}

		if plan.RemoveCurrentTemp {
			if err := tx.Bookings().DeleteTemporary(ctx, place, day); err != nil {
				return err
			}
			if err := tx.Overrides().Delete(ctx, place, day); err != nil {
				return err
			}
		}
		if plan.RecordOverride {
			ov := booking.Override{
				Place:            place,
				Day:              day,
				Occupant:         actor.Handle,
				OriginalOccupant: plan.OriginalOccupant,
				ReservedOn:       date,
				RestoreOn:        restoreOn,
			}
			if err := tx.Overrides().Put(ctx, ov); err != nil {
				return err
			}
		}
		if err := tx.Bookings().Replace(ctx, place, day, actor.Handle, booking.KindTemporary); err != nil {
			return err
		}

		outcome = &Outcome{
			Event:     EventBooked,
			Place:     place,
			Day:       day,
			Occupant:  actor.Handle,
			Displaced: plan.Displaced,
			Date:      &date,
		}
		if plan.Overrode {
			outcome.Event = EventOverridden
		}
		return u.notify(ctx, tx, outcome)
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

func (u *bookingUseCaseImpl) Remove(ctx context.Context, actor shared.Actor, place string, day booking.Weekday) (*Outcome, error) {
	if err := u.validate(actor, place, day); err != nil {
		return nil, err
	}

	var outcome *Outcome
	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.LockCell(ctx, place, day); err != nil {
			return err
		}

		snap, err := readSnapshot(ctx, tx, actor.Handle, place, day)
		if err != nil {
			return err
		}

		plan, err := booking.DecideRemoval(snap, actor.Handle, actor.Privileged)
		if err != nil {
			return err
		}

		outcome = &Outcome{
			Event:    EventRemoved,
			Place:    place,
			Day:      day,
			Occupant: actor.Handle,
		}
		if plan.Removed != actor.Handle {
			outcome.Displaced = plan.Removed
		}

		switch plan.Action {
		case booking.RemovalEarlyRestore:
			restored, err := reverseOverride(ctx, tx, *snap.Override)
			if err != nil {
				return err
			}
			outcome.Restored = restored

		case booking.RemovalMarkDeleted:
			if err := tx.Bookings().MarkManuallyDeleted(ctx, place, actor.Handle, day); err != nil {
				return err
			}

		default:
			if err := tx.Bookings().Delete(ctx, place, day); err != nil {
				return err
			}
			if plan.ClearOverride {
				if err := tx.Overrides().Delete(ctx, place, day); err != nil {
					return err
				}
			}
			if actor.Privileged {
				if err := tx.Bookings().ClearManualDeletionMarks(ctx, place, day); err != nil {
					return err
				}
			}
		}

		// A privileged removal of a free cell changed nothing; there is
		// no event to announce.
		if plan.Removed == "" {
			return nil
		}
		return u.notify(ctx, tx, outcome)
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

func (u *bookingUseCaseImpl) validate(actor shared.Actor, place string, day booking.Weekday) error {
	if actor.Handle == "" {
		return errs.Mark(booking.ErrEmptyOccupant, ErrValidation)
	}
	if day.Index() < 0 {
		return errs.Mark(booking.ErrInvalidWeekday, ErrValidation)
	}
	if !slices.Contains(u.cfg.Places, place) {
		return errs.Mark(booking.ErrUnknownPlace, ErrValidation)
	}
	return nil
}

func (u *bookingUseCaseImpl) notify(ctx context.Context, tx shared.Tx, outcome *Outcome) error {
	payload, err := json.Marshal(outcome)
	if err != nil {
		return errs.Wrap(err, "failed to encode outcome")
	}
	return tx.Notifications().CreateJob(ctx, "broadcast", outcome.Event, payload, u.clock.Now())
}

// readSnapshot collects everything the decision rules need, in the
// transaction the mutation will run in.
func readSnapshot(ctx context.Context, tx shared.Tx, occupant, place string, day booking.Weekday) (booking.Snapshot, error) {
	current, err := tx.Bookings().CurrentOccupant(ctx, place, day)
	if err != nil {
		return booking.Snapshot{}, err
	}
	override, err := tx.Overrides().Get(ctx, place, day)
	if err != nil {
		return booking.Snapshot{}, err
	}
	ownPermanent, err := tx.Bookings().UserBooking(ctx, occupant, day, booking.KindPermanent)
	if err != nil {
		return booking.Snapshot{}, err
	}
	ownTemporary, err := tx.Bookings().UserBooking(ctx, occupant, day, booking.KindTemporary)
	if err != nil {
		return booking.Snapshot{}, err
	}

	return booking.Snapshot{
		Current:           current,
		Override:          override,
		OwnPermanentPlace: ownPermanent,
		OwnTemporaryPlace: ownTemporary,
	}, nil
}

// reverseOverride undoes one override: reinstate the displaced
// permanent occupant unless they cancelled in the meantime, otherwise
// free the cell. The override row and the temporary booking go away
// unconditionally. Returns the reinstated occupant, if any.
func reverseOverride(ctx context.Context, tx shared.Tx, ov booking.Override) (string, error) {
	restored := ""

	if ov.OriginalOccupant != nil && *ov.OriginalOccupant != "" {
		displaced := *ov.OriginalOccupant
		marked, err := tx.Bookings().HasManualDeletionMark(ctx, ov.Place, displaced, ov.Day)
		if err != nil {
			return "", err
		}
		if marked {
			// The owner's cancellation takes precedence over restoration.
			if err := tx.Bookings().DeleteTemporary(ctx, ov.Place, ov.Day); err != nil {
				return "", err
			}
			if err := tx.Bookings().ClearManualDeletionMarks(ctx, ov.Place, ov.Day); err != nil {
				return "", err
			}
		} else {
			if err := tx.Bookings().Replace(ctx, ov.Place, ov.Day, displaced, booking.KindPermanent); err != nil {
				return "", err
			}
			restored = displaced
		}
	} else {
		if err := tx.Bookings().DeleteTemporary(ctx, ov.Place, ov.Day); err != nil {
			return "", err
		}
	}

	if err := tx.Overrides().Delete(ctx, ov.Place, ov.Day); err != nil {
		return "", err
	}
	return restored, nil
}
