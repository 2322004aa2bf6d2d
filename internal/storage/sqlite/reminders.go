package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/billmap/internal/models"
	"github.com/mmynk/billmap/internal/storage"
)

const reminderColumns = "id, user_id, bill_id, remind_at, status, message, notification_method, created_at, updated_at, deleted_at"

// CreateReminder persists a new reminder to the database.
func (s *SQLiteStore) CreateReminder(ctx context.Context, reminder *models.Reminder) error {
	if reminder.ID == "" {
		reminder.ID = uuid.New().String()
	}
	if reminder.Status == "" {
		reminder.Status = models.ReminderStatusPending
	}
	if reminder.NotificationMethod == "" {
		reminder.NotificationMethod = models.DefaultNotificationMethod
	}
	now := time.Now().Unix()
	if reminder.CreatedAt == 0 {
		reminder.CreatedAt = now
	}
	reminder.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reminders (id, user_id, bill_id, remind_at, status, message, notification_method, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		reminder.ID, reminder.UserID, reminder.BillID, reminder.RemindAt.Unix(),
		string(reminder.Status), nullString(reminder.Message), reminder.NotificationMethod,
		reminder.CreatedAt, reminder.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reminder: %w", err)
	}

	return nil
}

// GetReminder retrieves an active reminder by ID.
func (s *SQLiteStore) GetReminder(ctx context.Context, id string) (*models.Reminder, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+reminderColumns+" FROM reminders WHERE id = ? AND deleted_at IS NULL", id)
	return scanReminder(row)
}

// ListRemindersByUser returns the active reminders owned by a user,
// ordered by trigger time.
func (s *SQLiteStore) ListRemindersByUser(ctx context.Context, userID string) ([]*models.Reminder, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+reminderColumns+" FROM reminders WHERE user_id = ? AND deleted_at IS NULL ORDER BY remind_at, id",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	defer rows.Close()

	return collectReminders(rows)
}

// UpdateReminder rewrites the mutable fields of an active reminder.
// Status is included here because the service layer has already validated
// the pending->sent transition; the UPDATE is guarded by the status the
// caller read, so a rewrite racing a dispatch sweep loses instead of
// reverting a sent reminder back to pending.
func (s *SQLiteStore) UpdateReminder(ctx context.Context, reminder *models.Reminder, priorStatus models.ReminderStatus) error {
	reminder.UpdatedAt = time.Now().Unix()

	res, err := s.db.ExecContext(ctx,
		`UPDATE reminders SET remind_at = ?, status = ?, message = ?, notification_method = ?, updated_at = ?
		 WHERE id = ? AND deleted_at IS NULL AND status = ?`,
		reminder.RemindAt.Unix(), string(reminder.Status), nullString(reminder.Message),
		reminder.NotificationMethod, reminder.UpdatedAt, reminder.ID, string(priorStatus),
	)
	if err != nil {
		return fmt.Errorf("failed to update reminder: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update reminder: %w", err)
	}
	if n == 0 {
		// Distinguish a vanished reminder from one whose status moved
		// underneath the caller.
		if _, err := s.GetReminder(ctx, reminder.ID); err != nil {
			return err
		}
		return storage.ErrConflict
	}

	return nil
}

// SoftDeleteReminder marks a reminder deleted.
func (s *SQLiteStore) SoftDeleteReminder(ctx context.Context, id string) error {
	return s.softDelete(ctx, "reminders", id)
}

// DispatchDueReminders selects-and-updates the due pending batch inside a
// single write transaction. SQLite serializes writers, so two concurrent
// sweeps cannot both claim a reminder; the UPDATE is additionally guarded
// by status = 'pending'.
func (s *SQLiteStore) DispatchDueReminders(ctx context.Context, now time.Time) ([]*models.Reminder, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		"SELECT "+reminderColumns+` FROM reminders
		 WHERE deleted_at IS NULL AND status = ? AND remind_at <= ?
		 ORDER BY remind_at, id`,
		string(models.ReminderStatusPending), now.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to select due reminders: %w", err)
	}
	due, err := collectReminders(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	if len(due) == 0 {
		return nil, tx.Commit()
	}

	sentAt := time.Now().Unix()
	args := make([]any, 0, len(due)+3)
	args = append(args, string(models.ReminderStatusSent), sentAt)
	for _, r := range due {
		args = append(args, r.ID)
	}
	args = append(args, string(models.ReminderStatusPending))

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(due)), ", ")
	res, err := tx.ExecContext(ctx,
		`UPDATE reminders SET status = ?, updated_at = ?
		 WHERE id IN (`+placeholders+`) AND status = ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to mark reminders sent: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to mark reminders sent: %w", err)
	}
	if n != int64(len(due)) {
		return nil, fmt.Errorf("dispatch batch mismatch: selected %d, updated %d", len(due), n)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit dispatch: %w", err)
	}

	for _, r := range due {
		r.Status = models.ReminderStatusSent
		r.UpdatedAt = sentAt
	}

	return due, nil
}

func collectReminders(rows *sql.Rows) ([]*models.Reminder, error) {
	var reminders []*models.Reminder
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reminders: %w", err)
	}
	return reminders, nil
}

func scanReminder(sc scanner) (*models.Reminder, error) {
	reminder := &models.Reminder{}
	var (
		remindAt  int64
		status    string
		message   sql.NullString
		deletedAt sql.NullInt64
	)

	err := sc.Scan(&reminder.ID, &reminder.UserID, &reminder.BillID, &remindAt,
		&status, &message, &reminder.NotificationMethod,
		&reminder.CreatedAt, &reminder.UpdatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan reminder: %w", err)
	}

	reminder.RemindAt = time.Unix(remindAt, 0).UTC()
	reminder.Status = models.ReminderStatus(status)
	if message.Valid {
		reminder.Message = message.String
	}
	if deletedAt.Valid {
		reminder.DeletedAt = &deletedAt.Int64
	}

	return reminder, nil
}
