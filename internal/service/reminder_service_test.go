package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmynk/billmap/internal/models"
	"github.com/mmynk/billmap/internal/storage"
)

func newReminderService(t *testing.T) (*ReminderService, *models.User, *models.Bill, storage.Store) {
	t.Helper()
	store := newTestStore(t)
	ctx := context.Background()

	user := &models.User{FirstName: "Rem", LastName: "Inder",
		Email: "reminder@example.com", PasswordHash: "x"}
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	bill := &models.Bill{
		UserID:      user.ID,
		Creditor:    "Electric Co",
		AmountCents: 10050,
		DueDate:     time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := store.CreateBill(ctx, bill); err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}

	return NewReminderService(store), user, bill, store
}

func TestScheduleReminder(t *testing.T) {
	svc, user, bill, store := newReminderService(t)
	ctx := context.Background()

	t.Run("schedules pending reminder with default method", func(t *testing.T) {
		reminder, err := svc.Schedule(ctx, ScheduleReminderParams{
			UserID:   user.ID,
			BillID:   bill.ID,
			RemindAt: "2098-12-25 09:00",
			Message:  "electric bill due soon",
		})
		if err != nil {
			t.Fatalf("Schedule failed: %v", err)
		}
		if reminder.Status != models.ReminderStatusPending {
			t.Errorf("status: got %q, want pending", reminder.Status)
		}
		if reminder.NotificationMethod != models.DefaultNotificationMethod {
			t.Errorf("notification method: got %q, want %q",
				reminder.NotificationMethod, models.DefaultNotificationMethod)
		}
	})

	t.Run("rejects malformed remind_at", func(t *testing.T) {
		_, err := svc.Schedule(ctx, ScheduleReminderParams{
			UserID: user.ID, BillID: bill.ID, RemindAt: "tomorrow morning"})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("rejects missing bill", func(t *testing.T) {
		_, err := svc.Schedule(ctx, ScheduleReminderParams{
			UserID: user.ID, BillID: "no-such-bill", RemindAt: "2098-12-25 09:00"})
		if err != storage.ErrNotFound {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("foreign bill looks missing", func(t *testing.T) {
		other := &models.User{FirstName: "Other", LastName: "User",
			Email: "other@example.com", PasswordHash: "x"}
		if err := store.CreateUser(ctx, other); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		_, err := svc.Schedule(ctx, ScheduleReminderParams{
			UserID: other.ID, BillID: bill.ID, RemindAt: "2098-12-25 09:00"})
		if err != storage.ErrNotFound {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestReminderOwnership(t *testing.T) {
	svc, user, bill, store := newReminderService(t)
	ctx := context.Background()

	reminder, err := svc.Schedule(ctx, ScheduleReminderParams{
		UserID: user.ID, BillID: bill.ID, RemindAt: "2098-12-25 09:00"})
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}

	other := &models.User{FirstName: "Other", LastName: "User",
		Email: "other2@example.com", PasswordHash: "x"}
	if err := store.CreateUser(ctx, other); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	t.Run("owner can read", func(t *testing.T) {
		if _, err := svc.GetByID(ctx, user.ID, reminder.ID); err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
	})

	t.Run("non-owner gets not found", func(t *testing.T) {
		if _, err := svc.GetByID(ctx, other.ID, reminder.ID); err != storage.ErrNotFound {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if _, err := svc.SoftDelete(ctx, other.ID, reminder.ID); err != storage.ErrNotFound {
			t.Fatalf("expected ErrNotFound on delete, got %v", err)
		}
	})
}

func TestUpdateReminder(t *testing.T) {
	svc, user, bill, _ := newReminderService(t)
	ctx := context.Background()

	reminder, err := svc.Schedule(ctx, ScheduleReminderParams{
		UserID: user.ID, BillID: bill.ID, RemindAt: "2098-12-25 09:00"})
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}

	t.Run("reschedules and edits message", func(t *testing.T) {
		remindAt := "2098-12-26 10:30"
		message := "second notice"
		updated, err := svc.Update(ctx, user.ID, reminder.ID,
			ReminderPatch{RemindAt: &remindAt, Message: &message})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if updated.RemindAt.Format(models.RemindAtLayout) != "2098-12-26 10:30" {
			t.Errorf("remind_at: got %v", updated.RemindAt)
		}
		if updated.Message != "second notice" {
			t.Errorf("message: got %q", updated.Message)
		}
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		status := "snoozed"
		if _, err := svc.Update(ctx, user.ID, reminder.ID, ReminderPatch{Status: &status}); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("sent cannot return to pending", func(t *testing.T) {
		sent := "sent"
		if _, err := svc.Update(ctx, user.ID, reminder.ID, ReminderPatch{Status: &sent}); err != nil {
			t.Fatalf("marking sent failed: %v", err)
		}

		pending := "pending"
		if _, err := svc.Update(ctx, user.ID, reminder.ID, ReminderPatch{Status: &pending}); !errors.Is(err, ErrStatusTransition) {
			t.Fatalf("expected ErrStatusTransition, got %v", err)
		}
	})
}

func TestDispatchDue(t *testing.T) {
	svc, user, bill, _ := newReminderService(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Minute)

	past, err := svc.Schedule(ctx, ScheduleReminderParams{
		UserID:   user.ID,
		BillID:   bill.ID,
		RemindAt: now.Add(-time.Hour).Format(models.RemindAtLayout),
		Message:  "overdue notice",
	})
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if _, err := svc.Schedule(ctx, ScheduleReminderParams{
		UserID:   user.ID,
		BillID:   bill.ID,
		RemindAt: now.Add(time.Hour).Format(models.RemindAtLayout),
		Message:  "not yet",
	}); err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}

	t.Run("dispatches only due pending reminders", func(t *testing.T) {
		dispatched, err := svc.DispatchDue(ctx, now)
		if err != nil {
			t.Fatalf("DispatchDue failed: %v", err)
		}
		if len(dispatched) != 1 {
			t.Fatalf("dispatched: got %d, want 1", len(dispatched))
		}
		if dispatched[0].ID != past.ID {
			t.Errorf("dispatched wrong reminder: %s", dispatched[0].ID)
		}
		if dispatched[0].Status != models.ReminderStatusSent {
			t.Errorf("status: got %q, want sent", dispatched[0].Status)
		}
	})

	t.Run("repeat sweep is a no-op", func(t *testing.T) {
		dispatched, err := svc.DispatchDue(ctx, now)
		if err != nil {
			t.Fatalf("DispatchDue failed: %v", err)
		}
		if len(dispatched) != 0 {
			t.Errorf("re-dispatch: got %d, want 0", len(dispatched))
		}
	})

	t.Run("dispatched reminder stays sent", func(t *testing.T) {
		got, err := svc.GetByID(ctx, user.ID, past.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if got.Status != models.ReminderStatusSent {
			t.Errorf("status: got %q, want sent", got.Status)
		}
	})
}
