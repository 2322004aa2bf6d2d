package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/billmap/internal/models"
	"github.com/mmynk/billmap/internal/storage"
)

// ReminderService implements reminder scheduling and the due-reminder
// dispatch sweep. Every read is owner-scoped: a reminder that belongs to
// another user is indistinguishable from a missing one.
type ReminderService struct {
	store storage.Store
}

// NewReminderService creates a new ReminderService with the given storage backend.
func NewReminderService(store storage.Store) *ReminderService {
	return &ReminderService{store: store}
}

// ScheduleReminderParams are the inputs for Schedule. RemindAt uses the
// "YYYY-MM-DD HH:MM" layout; a past time makes the reminder immediately due.
type ScheduleReminderParams struct {
	UserID             string
	BillID             string
	RemindAt           string
	Message            string
	NotificationMethod string
}

// Schedule validates and persists a new pending reminder. The referenced
// bill must exist and belong to the scheduling user.
func (s *ReminderService) Schedule(ctx context.Context, params ScheduleReminderParams) (*models.Reminder, error) {
	remindAt, err := time.ParseInLocation(models.RemindAtLayout, params.RemindAt, time.UTC)
	if err != nil {
		return nil, ErrInvalidRemindAt
	}

	bill, err := s.store.GetBill(ctx, params.BillID)
	if err != nil {
		return nil, err
	}
	if bill.UserID != params.UserID {
		// A foreign bill looks exactly like a missing one.
		return nil, storage.ErrNotFound
	}

	reminder := &models.Reminder{
		UserID:             params.UserID,
		BillID:             params.BillID,
		RemindAt:           remindAt,
		Status:             models.ReminderStatusPending,
		Message:            params.Message,
		NotificationMethod: params.NotificationMethod,
	}
	if err := s.store.CreateReminder(ctx, reminder); err != nil {
		return nil, err
	}

	slog.Info("reminder scheduled", "reminder_id", reminder.ID,
		"bill_id", reminder.BillID, "remind_at", params.RemindAt)
	return reminder, nil
}

// GetByID retrieves an active reminder owned by the given user.
func (s *ReminderService) GetByID(ctx context.Context, userID, id string) (*models.Reminder, error) {
	reminder, err := s.store.GetReminder(ctx, id)
	if err != nil {
		return nil, err
	}
	if reminder.UserID != userID {
		return nil, storage.ErrNotFound
	}
	return reminder, nil
}

// ListForUser returns the active reminders owned by a user.
func (s *ReminderService) ListForUser(ctx context.Context, userID string) ([]*models.Reminder, error) {
	return s.store.ListRemindersByUser(ctx, userID)
}

// ReminderPatch enumerates the updatable reminder fields. Nil fields are
// left unchanged.
type ReminderPatch struct {
	RemindAt           *string
	Status             *string
	Message            *string
	NotificationMethod *string
}

// Update applies the supplied fields to an active reminder owned by the
// given user. The only accepted status transition is pending -> sent; an
// unrecognized status value or a sent -> pending attempt is invalid input.
func (s *ReminderService) Update(ctx context.Context, userID, id string, patch ReminderPatch) (*models.Reminder, error) {
	reminder, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	priorStatus := reminder.Status

	if patch.RemindAt != nil {
		remindAt, err := time.ParseInLocation(models.RemindAtLayout, *patch.RemindAt, time.UTC)
		if err != nil {
			return nil, ErrInvalidRemindAt
		}
		reminder.RemindAt = remindAt
	}
	if patch.Status != nil {
		status, err := models.ParseReminderStatus(*patch.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if reminder.Status == models.ReminderStatusSent && status == models.ReminderStatusPending {
			return nil, ErrStatusTransition
		}
		reminder.Status = status
	}
	if patch.Message != nil {
		reminder.Message = *patch.Message
	}
	if patch.NotificationMethod != nil {
		reminder.NotificationMethod = *patch.NotificationMethod
	}

	// Guarded by the status read above: if a dispatch sweep transitioned
	// the reminder between our read and this write, the store reports a
	// conflict instead of silently reverting sent to pending.
	if err := s.store.UpdateReminder(ctx, reminder, priorStatus); err != nil {
		return nil, err
	}

	slog.Info("reminder updated", "reminder_id", reminder.ID)
	return reminder, nil
}

// SoftDelete marks a reminder deleted and returns the final record.
func (s *ReminderService) SoftDelete(ctx context.Context, userID, id string) (*models.Reminder, error) {
	reminder, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.SoftDeleteReminder(ctx, id); err != nil {
		return nil, err
	}

	slog.Info("reminder soft-deleted", "reminder_id", id)
	return reminder, nil
}

// DispatchDue sweeps every active pending reminder whose trigger time is
// at or before now, transitions the batch to sent, and returns it. Safe
// to call repeatedly: a reminder is dispatched at most once, even across
// concurrent sweeps, because the store performs the select-and-update as
// one atomic unit.
func (s *ReminderService) DispatchDue(ctx context.Context, now time.Time) ([]*models.Reminder, error) {
	dispatched, err := s.store.DispatchDueReminders(ctx, now)
	if err != nil {
		return nil, err
	}

	for _, reminder := range dispatched {
		// Delivery transport is out of scope; the dispatch signal is the log line.
		slog.Info("reminder dispatched",
			"reminder_id", reminder.ID,
			"bill_id", reminder.BillID,
			"method", reminder.NotificationMethod,
			"message", reminder.Message,
		)
	}

	return dispatched, nil
}
