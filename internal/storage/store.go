// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/billmap/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist or has been
	// soft-deleted. Lookups never distinguish the two.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when an insert or update would give
	// two active users the same email. The partial unique index on the
	// users table is the source of truth, so this also surfaces when two
	// concurrent registrations race past the service-level pre-check.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrConflict is returned when a guarded update finds the record was
	// modified concurrently, e.g. a reminder rewrite racing a dispatch
	// sweep. The caller should re-read and retry.
	ErrConflict = errors.New("record modified concurrently")
)

// Store defines the persistence contract for BillMap records.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
//
// All reads and updates are scoped to active records: a soft-deleted row
// behaves exactly like a missing one. Write methods populate ID and the
// lifecycle timestamps on the passed model.
type Store interface {
	// CreateUser persists a new user. Returns ErrDuplicateEmail if an
	// active user already holds the same email.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID retrieves an active user by ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUserByEmail retrieves an active user by (lowercased) email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// UpdateUser rewrites the mutable fields of an active user and
	// refreshes UpdatedAt. Returns ErrDuplicateEmail on an email
	// collision with another active user.
	UpdateUser(ctx context.Context, user *models.User) error

	// SoftDeleteUser marks a user deleted. Bills and reminders owned by
	// the user are not cascaded.
	SoftDeleteUser(ctx context.Context, id string) error

	// ListUsers returns all active users, oldest first.
	ListUsers(ctx context.Context) ([]*models.User, error)

	// CreateBill persists a new bill.
	CreateBill(ctx context.Context, bill *models.Bill) error

	// GetBill retrieves an active bill by ID.
	GetBill(ctx context.Context, id string) (*models.Bill, error)

	// ListBillsByUser returns the active bills owned by a user, ordered
	// by due date.
	ListBillsByUser(ctx context.Context, userID string) ([]*models.Bill, error)

	// UpdateBill rewrites the mutable fields of an active bill and
	// refreshes UpdatedAt. The owner and status are not touched.
	UpdateBill(ctx context.Context, bill *models.Bill) error

	// MarkBillPaid transitions an active bill to paid and returns it.
	// Calling it on an already-paid bill is a no-op success.
	MarkBillPaid(ctx context.Context, id string) (*models.Bill, error)

	// SoftDeleteBill marks a bill deleted.
	SoftDeleteBill(ctx context.Context, id string) error

	// CreateReminder persists a new reminder.
	CreateReminder(ctx context.Context, reminder *models.Reminder) error

	// GetReminder retrieves an active reminder by ID. Ownership checks
	// are the caller's responsibility.
	GetReminder(ctx context.Context, id string) (*models.Reminder, error)

	// ListRemindersByUser returns the active reminders owned by a user,
	// ordered by trigger time.
	ListRemindersByUser(ctx context.Context, userID string) ([]*models.Reminder, error)

	// UpdateReminder rewrites the mutable fields of an active reminder
	// and refreshes UpdatedAt. The write only lands if the stored status
	// still equals priorStatus (the status the caller read before
	// patching); returns ErrConflict when a concurrent transition, such
	// as a dispatch sweep, got there first. This keeps pending -> sent
	// monotonic: a stale rewrite can never revert a sent reminder.
	UpdateReminder(ctx context.Context, reminder *models.Reminder, priorStatus models.ReminderStatus) error

	// SoftDeleteReminder marks a reminder deleted.
	SoftDeleteReminder(ctx context.Context, id string) error

	// DispatchDueReminders atomically selects every active pending
	// reminder with a trigger time at or before now, transitions the
	// whole batch to sent, and returns it. Concurrent sweeps never
	// dispatch the same reminder twice.
	DispatchDueReminders(ctx context.Context, now time.Time) ([]*models.Reminder, error)

	// Close releases any resources held by the store.
	Close() error
}
