package uow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"parkly/internal/domain/booking"
	"parkly/internal/infra/store"
	"parkly/internal/pkg/config"
	"parkly/internal/pkg/errs"
	"parkly/internal/usecase/shared"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgErrCodeSerializationFailure = "40001"
	pgErrCodeDeadlockDetected     = "40P01"
	pgErrCodeLockNotAvailable     = "55P03"
)

var (
	errTransactionBegin   = errs.New("failed to begin transaction")
	errTransactionCommit  = errs.New("failed to commit transaction")
	ErrMaxRetriesExceeded = errs.New("transaction failed after max retries")
)

type PostgresUoW struct {
	pool        *pgxpool.Pool
	maxAttempts int
	retryDelay  time.Duration
}

func NewPostgresUoW(pool *pgxpool.Pool, cfg config.DBConfig) shared.UnitOfWork {
	attempts := cfg.TxMaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &PostgresUoW{
		pool:        pool,
		maxAttempts: attempts,
		retryDelay:  cfg.TxRetryDelay,
	}
}

// Within runs fn in a transaction, retrying the whole sequence on
// storage contention with a fixed delay between attempts. Exhaustion is
// escalated as fatal.
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	var lastErr error

	for attempt := 1; attempt <= u.maxAttempts; attempt++ {
		err := u.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !isContention(err) {
			return err
		}

		lastErr = err
		if attempt == u.maxAttempts {
			break
		}

		slog.Warn("retrying contended transaction",
			"attempt", attempt,
			"wait_ms", u.retryDelay.Milliseconds(),
			"error", err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(u.retryDelay):
		}
	}

	slog.Error("transaction failed after max retries",
		"attempts", u.maxAttempts,
		"error", lastErr.Error())
	return errs.Mark(lastErr, ErrMaxRetriesExceeded)
}

// Avoids defer accumulation in the retry loop to prevent connection leaks
func (u *PostgresUoW) runOnce(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	pgxTx, err := u.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return errs.Mark(err, errTransactionBegin)
	}

	err = fn(ctx, &pgTx{dbtx: pgxTx})
	if err == nil {
		if err = pgxTx.Commit(ctx); err == nil {
			return nil
		}
		err = errs.Mark(err, errTransactionCommit)
	}

	if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil {
		if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			slog.Warn("rollback failed", "error", rollbackErr.Error())
		}
	}
	return err
}

func isContention(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case pgErrCodeSerializationFailure, pgErrCodeDeadlockDetected, pgErrCodeLockNotAvailable:
		return true
	default:
		return false
	}
}

type pgTx struct {
	dbtx store.DBTX

	// Lazy-initialized stores
	bookingStore      shared.BookingStore
	overrideStore     shared.OverrideStore
	notificationStore shared.NotificationStore
}

func (t *pgTx) Bookings() shared.BookingStore {
	if t.bookingStore == nil {
		t.bookingStore = store.NewBookingStore(t.dbtx)
	}
	return t.bookingStore
}

func (t *pgTx) Overrides() shared.OverrideStore {
	if t.overrideStore == nil {
		t.overrideStore = store.NewOverrideStore(t.dbtx)
	}
	return t.overrideStore
}

func (t *pgTx) Notifications() shared.NotificationStore {
	if t.notificationStore == nil {
		t.notificationStore = store.NewNotificationStore(t.dbtx)
	}
	return t.notificationStore
}

// LockCell takes an advisory lock scoped to the transaction, so two
// concurrent decisions about the same (place, weekday) cell cannot both
// observe it free.
func (t *pgTx) LockCell(ctx context.Context, place string, day booking.Weekday) error {
	const q = `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`

	if _, err := t.dbtx.Exec(ctx, q, place+"/"+string(day)); err != nil {
		return errs.Wrap(err, "failed to lock cell")
	}
	return nil
}
