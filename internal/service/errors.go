// Package service implements the bill, reminder, and user lifecycle
// operations on top of the storage contract. Services are stateless
// between calls; every operation runs against the injected store.
package service

import (
	"errors"
	"fmt"

	"github.com/mmynk/billmap/internal/models"
)

// ErrInvalidInput marks recoverable validation failures. Wrapped errors
// carry the expected format or range so callers can correct the request.
var ErrInvalidInput = errors.New("invalid input")

var (
	// ErrInvalidDueDate carries the canonical due-date layout.
	ErrInvalidDueDate = fmt.Errorf("%w: due date must use format %s", ErrInvalidInput, models.DueDateLayout)

	// ErrInvalidRemindAt carries the canonical reminder-time layout.
	ErrInvalidRemindAt = fmt.Errorf("%w: reminder time must use format %q", ErrInvalidInput, models.RemindAtLayout)

	// ErrNonPositiveAmount rejects zero and negative bill amounts.
	ErrNonPositiveAmount = fmt.Errorf("%w: amount must be greater than zero", ErrInvalidInput)

	// ErrMinPaymentRange rejects minimum payments outside [0, amount].
	ErrMinPaymentRange = fmt.Errorf("%w: minimum payment must be between zero and the bill amount", ErrInvalidInput)

	// ErrStatusTransition rejects any reminder status change other than
	// pending -> sent.
	ErrStatusTransition = fmt.Errorf("%w: a sent reminder cannot return to pending", ErrInvalidInput)
)
