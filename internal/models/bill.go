package models

import "time"

// BillStatus is the payment state of a bill.
type BillStatus string

const (
	// BillStatusPending is the initial state of every bill.
	BillStatusPending BillStatus = "pending"

	// BillStatusPaid marks a settled bill. The transition is one-way:
	// a paid bill never returns to pending.
	BillStatusPaid BillStatus = "paid"
)

// DueDateLayout is the canonical wire and storage format for due dates.
const DueDateLayout = "2006-01-02"

// Bill represents a debt owed by one user to a creditor.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string

	// UserID is the owning user. Immutable after creation.
	UserID string

	// Creditor is the payee the debt is owed to.
	Creditor string

	// AmountCents is the amount owed in integer cents. Always positive.
	AmountCents int64

	// DueDate is the calendar date the bill is due, at UTC midnight.
	// There is no time-of-day component.
	DueDate time.Time

	// Status is pending or paid.
	Status BillStatus

	// MinPaymentCents is the optional minimum payment in cents.
	// When set, 0 <= MinPaymentCents <= AmountCents.
	MinPaymentCents *int64

	// Description is optional free text.
	Description string

	// CreatedAt is the unix timestamp when the bill was created.
	CreatedAt int64

	// UpdatedAt is the unix timestamp of the last mutation.
	UpdatedAt int64

	// DeletedAt is the unix timestamp of the soft delete, or nil while
	// the bill is active.
	DeletedAt *int64
}

// Active reports whether the bill has not been soft-deleted.
func (b *Bill) Active() bool {
	return b.DeletedAt == nil
}

// IsOverdue reports whether the bill is unpaid and past its due date at
// the given instant. Computed fresh on every call, never stored.
func (b *Bill) IsOverdue(now time.Time) bool {
	return b.Status != BillStatusPaid && b.DueDate.Before(DateOf(now))
}

// DateOf truncates an instant to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
