package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/billmap/internal/models"
	"github.com/mmynk/billmap/internal/storage"
)

const billColumns = "id, user_id, creditor, amount_cents, due_date, status, min_payment_cents, description, created_at, updated_at, deleted_at"

// CreateBill persists a new bill to the database.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.Status == "" {
		bill.Status = models.BillStatusPending
	}
	now := time.Now().Unix()
	if bill.CreatedAt == 0 {
		bill.CreatedAt = now
	}
	bill.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bills (id, user_id, creditor, amount_cents, due_date, status, min_payment_cents, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID, bill.UserID, bill.Creditor, bill.AmountCents,
		bill.DueDate.Format(models.DueDateLayout), string(bill.Status),
		nullInt64(bill.MinPaymentCents), nullString(bill.Description),
		bill.CreatedAt, bill.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	return nil
}

// GetBill retrieves an active bill by ID.
func (s *SQLiteStore) GetBill(ctx context.Context, id string) (*models.Bill, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+billColumns+" FROM bills WHERE id = ? AND deleted_at IS NULL", id)
	return scanBill(row)
}

// ListBillsByUser returns the active bills owned by a user, ordered by due date.
func (s *SQLiteStore) ListBillsByUser(ctx context.Context, userID string) ([]*models.Bill, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+billColumns+" FROM bills WHERE user_id = ? AND deleted_at IS NULL ORDER BY due_date, id",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var bills []*models.Bill
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}

	return bills, nil
}

// UpdateBill rewrites the mutable fields of an active bill. Owner and
// status are deliberately excluded; status only moves through MarkBillPaid.
func (s *SQLiteStore) UpdateBill(ctx context.Context, bill *models.Bill) error {
	bill.UpdatedAt = time.Now().Unix()

	res, err := s.db.ExecContext(ctx,
		`UPDATE bills SET creditor = ?, amount_cents = ?, due_date = ?, min_payment_cents = ?, description = ?, updated_at = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		bill.Creditor, bill.AmountCents, bill.DueDate.Format(models.DueDateLayout),
		nullInt64(bill.MinPaymentCents), nullString(bill.Description),
		bill.UpdatedAt, bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// MarkBillPaid transitions an active bill to paid. The UPDATE is guarded
// by the current status, so a bill that is already paid is left untouched
// and the call is a no-op success.
func (s *SQLiteStore) MarkBillPaid(ctx context.Context, id string) (*models.Bill, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE bills SET status = ?, updated_at = ?
		 WHERE id = ? AND deleted_at IS NULL AND status != ?`,
		string(models.BillStatusPaid), time.Now().Unix(), id, string(models.BillStatusPaid),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to mark bill paid: %w", err)
	}

	// Zero rows means either already paid or not visible; re-reading
	// distinguishes the two.
	return s.GetBill(ctx, id)
}

// SoftDeleteBill marks a bill deleted.
func (s *SQLiteStore) SoftDeleteBill(ctx context.Context, id string) error {
	return s.softDelete(ctx, "bills", id)
}

func scanBill(sc scanner) (*models.Bill, error) {
	bill := &models.Bill{}
	var (
		dueDate     string
		status      string
		minPayment  sql.NullInt64
		description sql.NullString
		deletedAt   sql.NullInt64
	)

	err := sc.Scan(&bill.ID, &bill.UserID, &bill.Creditor, &bill.AmountCents,
		&dueDate, &status, &minPayment, &description,
		&bill.CreatedAt, &bill.UpdatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan bill: %w", err)
	}

	bill.DueDate, err = time.ParseInLocation(models.DueDateLayout, dueDate, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored due date %q: %w", dueDate, err)
	}
	bill.Status = models.BillStatus(status)
	if minPayment.Valid {
		bill.MinPaymentCents = &minPayment.Int64
	}
	if description.Valid {
		bill.Description = description.String
	}
	if deletedAt.Valid {
		bill.DeletedAt = &deletedAt.Int64
	}

	return bill, nil
}
