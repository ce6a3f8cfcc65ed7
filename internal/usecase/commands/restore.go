package commands

import (
	"context"
	"encoding/json"
	"log/slog"

	"parkly/internal/domain/booking"
	"parkly/internal/pkg/clock"
	"parkly/internal/usecase/shared"
)

// SweepResult summarizes one restoration sweep.
type SweepResult struct {
	Processed int `json:"processed"`
	Restored  int `json:"restored"`
	Freed     int `json:"freed"`
}

type RestorationCommands interface {
	// RestoreExpired reverses every override whose restoration date has
	// passed. One override failing is logged and does not abort the
	// rest of the sweep.
	RestoreExpired(ctx context.Context) (*SweepResult, error)
}

type restorationUseCaseImpl struct {
	uow     shared.UnitOfWork
	reader  shared.OverrideStore
	clock   clock.Clock
	slogger *slog.Logger
}

func NewRestorationUseCase(
	uow shared.UnitOfWork,
	reader shared.OverrideStore,
	clk clock.Clock,
	slogger *slog.Logger,
) RestorationCommands {
	return &restorationUseCaseImpl{
		uow:     uow,
		reader:  reader,
		clock:   clk,
		slogger: slogger,
	}
}

func (u *restorationUseCaseImpl) RestoreExpired(ctx context.Context) (*SweepResult, error) {
	today := truncateToDay(u.clock.Now())

	expired, err := u.reader.ListExpired(ctx, today)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{}
	for _, ov := range expired {
		restored, err := u.restoreOne(ctx, ov)
		if err != nil {
			u.slogger.Error("failed to restore expired override",
				"place", ov.Place,
				"day", string(ov.Day),
				"error", err.Error())
			continue
		}
		result.Processed++
		if restored != "" {
			result.Restored++
		} else {
			result.Freed++
		}
	}

	if result.Processed > 0 {
		u.slogger.Info("restoration sweep completed",
			"processed", result.Processed,
			"restored", result.Restored,
			"freed", result.Freed)
	}
	return result, nil
}

// restoreOne applies all steps for a single override atomically, so a
// failure partway cannot leave a dangling override with a deleted
// booking.
func (u *restorationUseCaseImpl) restoreOne(ctx context.Context, ov booking.Override) (string, error) {
	var restored string

	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.LockCell(ctx, ov.Place, ov.Day); err != nil {
			return err
		}

		// The override may be gone by now (early restoration raced us).
		fresh, err := tx.Overrides().Get(ctx, ov.Place, ov.Day)
		if err != nil {
			return err
		}
		if fresh == nil {
			return nil
		}

		restored, err = reverseOverride(ctx, tx, *fresh)
		if err != nil {
			return err
		}

		if restored == "" {
			return nil
		}
		payload, err := json.Marshal(Outcome{
			Event:    EventRestored,
			Place:    ov.Place,
			Day:      ov.Day,
			Occupant: restored,
			Restored: restored,
		})
		if err != nil {
			return err
		}
		return tx.Notifications().CreateJob(ctx, "broadcast", EventRestored, payload, u.clock.Now())
	})
	return restored, err
}
