package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/jmoiron/sqlx"
)

type TxOptions struct {
	IsolationLevel sql.IsolationLevel
	ReadOnly       bool
	MaxRetries     int
}

func DefaultTxOptions() TxOptions {
	return TxOptions{
		IsolationLevel: sql.LevelReadCommitted,
		ReadOnly:       false,
		MaxRetries:     3,
	}
}

// SnapshotTxOptions gives a read-only transaction that sees one consistent
// snapshot across several queries.
func SnapshotTxOptions() TxOptions {
	return TxOptions{
		IsolationLevel: sql.LevelRepeatableRead,
		ReadOnly:       true,
	}
}

// WithTransaction runs fn in a single transaction. Errors that are not one of
// the caller-facing kinds come back wrapped in ErrTransactionFailed, after the
// rollback.
func WithTransaction(ctx context.Context, db *sqlx.DB, opts TxOptions, fn func(*sqlx.Tx) error) error {
	return asTransactionFailure(runTx(ctx, db, opts, fn))
}

// WithRetry is WithTransaction that re-runs fn from scratch when postgres
// reports a serialization failure, a deadlock or a lock timeout.
func WithRetry(ctx context.Context, db *sqlx.DB, opts TxOptions, fn func(*sqlx.Tx) error) error {
	backoff := 50 * time.Millisecond

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return asTransactionFailure(err)
		}

		err := runTx(ctx, db, opts, fn)
		if err == nil {
			return nil
		}

		if !IsRetryable(err) {
			return asTransactionFailure(err)
		}

		if attempt >= opts.MaxRetries {
			return asTransactionFailure(fmt.Errorf("max retries (%d) exceeded: %w", opts.MaxRetries, err))
		}

		jitter := time.Duration(rand.Int63n(int64(backoff / 4)))
		sleepDuration := backoff + jitter

		select {
		case <-time.After(sleepDuration):
		case <-ctx.Done():
			return asTransactionFailure(ctx.Err())
		}

		backoff *= 2
	}
}

func runTx(ctx context.Context, db *sqlx.DB, opts TxOptions, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, &sql.TxOptions{
		Isolation: opts.IsolationLevel,
		ReadOnly:  opts.ReadOnly,
	})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return rollbackFailure(rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// rollbackFailure keeps both causes reachable through errors.Is and errors.As.
func rollbackFailure(rbErr, err error) error {
	return fmt.Errorf("%w: rollback failed: %w (original error: %w)", ErrTransactionFailed, rbErr, err)
}

func asTransactionFailure(err error) error {
	if err == nil || IsDomainError(err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrTransactionFailed, err)
}
