package models

import (
	"fmt"
	"time"
)

// ReminderStatus is the dispatch state of a reminder.
type ReminderStatus string

const (
	// ReminderStatusPending is the initial state of every reminder.
	ReminderStatusPending ReminderStatus = "pending"

	// ReminderStatusSent marks a dispatched reminder. The transition is
	// one-way: a sent reminder is never re-dispatched.
	ReminderStatusSent ReminderStatus = "sent"
)

// ParseReminderStatus validates a wire status value. Anything other than
// the two known states is rejected.
func ParseReminderStatus(s string) (ReminderStatus, error) {
	switch ReminderStatus(s) {
	case ReminderStatusPending:
		return ReminderStatusPending, nil
	case ReminderStatusSent:
		return ReminderStatusSent, nil
	default:
		return "", fmt.Errorf("unrecognized reminder status %q: expected %q or %q",
			s, ReminderStatusPending, ReminderStatusSent)
	}
}

// RemindAtLayout is the canonical wire format for reminder times
// (minute precision).
const RemindAtLayout = "2006-01-02 15:04"

// DefaultNotificationMethod is used when a reminder does not name one.
const DefaultNotificationMethod = "app_notification"

// Reminder represents a scheduled notification for one bill.
type Reminder struct {
	// ID is the unique identifier for the reminder (UUID format).
	ID string

	// UserID is the owning user. Immutable after creation.
	UserID string

	// BillID is the bill this reminder is attached to. The bill must
	// belong to the same user.
	BillID string

	// RemindAt is the moment the reminder becomes due. It may be in the
	// past, in which case the reminder is immediately due.
	RemindAt time.Time

	// Status is pending or sent.
	Status ReminderStatus

	// Message is optional text delivered with the notification.
	Message string

	// NotificationMethod tags how the notification should be delivered
	// (e.g. "app_notification", "email").
	NotificationMethod string

	// CreatedAt is the unix timestamp when the reminder was created.
	CreatedAt int64

	// UpdatedAt is the unix timestamp of the last mutation.
	UpdatedAt int64

	// DeletedAt is the unix timestamp of the soft delete, or nil while
	// the reminder is active.
	DeletedAt *int64
}

// Active reports whether the reminder has not been soft-deleted.
func (r *Reminder) Active() bool {
	return r.DeletedAt == nil
}

// IsDue reports whether the reminder is pending and its trigger time has
// passed (at-or-before now counts as due).
func (r *Reminder) IsDue(now time.Time) bool {
	return r.Status == ReminderStatusPending && !r.RemindAt.After(now)
}
