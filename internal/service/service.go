// Package service implements the back-office workflows.  Every operation
// takes the acting operator's user ID explicitly and scopes all reads and
// writes to it.  Failures are returned as *apperror.AppError: domain
// failures carry the message shown to the caller, anything else is wrapped
// as an internal error whose cause is logged by the HTTP layer.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/safari-backoffice/internal/apperror"
	"github.com/iliyamo/safari-backoffice/internal/queue"
	"github.com/iliyamo/safari-backoffice/internal/repository"
)

// numberAttempts bounds how often a colliding document number is
// regenerated within one transaction.
const numberAttempts = 3

// EventPublisher receives domain events after their transaction commits.
type EventPublisher interface {
	PublishBookingCreated(ctx context.Context, ev queue.BookingCreatedEvent) error
	PublishPaymentRecorded(ctx context.Context, ev queue.PaymentRecordedEvent) error
}

// NumberGenerator produces invoice, receipt and voucher numbers.
type NumberGenerator interface {
	Generate(prefix string) (string, error)
}

// inTx runs fn inside a transaction and commits when fn succeeds.  Any
// error, including a domain error, rolls the whole transaction back.
func inTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// issueNumber generates a number with prefix and hands it to insert,
// generating a fresh one while insert reports a collision.
func issueNumber(gen NumberGenerator, prefix string, insert func(number string) error) error {
	for attempt := 1; attempt <= numberAttempts; attempt++ {
		n, err := gen.Generate(prefix)
		if err != nil {
			return err
		}
		err = insert(n)
		if !errors.Is(err, repository.ErrDuplicateNumber) {
			return err
		}
	}
	return fmt.Errorf("%s number still colliding after %d attempts: %w", prefix, numberAttempts, repository.ErrDuplicateNumber)
}

// wrap passes domain errors through and hides everything else behind an
// internal error.
func wrap(op string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.Internal(op, err)
}

func utcNow(clock func() time.Time) time.Time {
	// MySQL DATETIME has second precision.
	return clock().UTC().Truncate(time.Second)
}
