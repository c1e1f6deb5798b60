// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"
)

const (
	maxTxAttempts  = 3
	retryBaseSleep = 15 * time.Millisecond
)

// runTx executes fn inside a transaction. Lock contention
// (serialization failure, deadlock, sqlite busy) surfaces as
// ErrConcurrencyConflict and is retried with jittered backoff up to
// maxTxAttempts; every other error is returned as-is after rollback.
// fn must be safe to re-run from scratch.
func (e *Engine) runTx(ctx context.Context, fn func(tx querier) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		if attempt > 1 {
			sleep := retryBaseSleep*time.Duration(attempt-1) + time.Duration(rand.Int63n(int64(retryBaseSleep)))
			select {
			case <-time.After(sleep):
			case <-ctx.Done():
				return ctx.Err()
			}
			slog.Warn("retrying transaction after conflict", "attempt", attempt)
		}

		err = e.attemptTx(ctx, fn)
		if err == nil || !errors.Is(err, ErrConcurrencyConflict) {
			return err
		}
	}
	return err
}

func (e *Engine) attemptTx(ctx context.Context, fn func(tx querier) error) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		if isRetryable(err) {
			return fmt.Errorf("%w: %v", ErrConcurrencyConflict, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		if isRetryable(err) {
			return fmt.Errorf("%w: %v", ErrConcurrencyConflict, err)
		}
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
