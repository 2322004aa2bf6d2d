package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mmynk/billmap/internal/aggregation"
	"github.com/mmynk/billmap/internal/models"
	"github.com/mmynk/billmap/internal/storage"
)

// ErrGatewayUnavailable is returned by ImportLiabilities when no
// aggregation gateway is configured.
var ErrGatewayUnavailable = errors.New("aggregation gateway not configured")

// BillService implements the bill lifecycle: create, partial update,
// mark-paid, soft-delete, and the overdue query. It optionally consumes
// the aggregation gateway to seed bills from imported liabilities; the
// gateway may be nil and no core operation depends on it.
type BillService struct {
	store   storage.Store
	gateway aggregation.Gateway
}

// NewBillService creates a new BillService. gateway may be nil.
func NewBillService(store storage.Store, gateway aggregation.Gateway) *BillService {
	return &BillService{store: store, gateway: gateway}
}

// CreateBillParams are the inputs for Create. DueDate is a calendar date
// in YYYY-MM-DD form; amounts are integer cents.
type CreateBillParams struct {
	UserID          string
	Creditor        string
	AmountCents     int64
	DueDate         string
	MinPaymentCents *int64
	Description     string
}

// Create validates and persists a new pending bill. The owner must be an
// existing active user.
func (s *BillService) Create(ctx context.Context, params CreateBillParams) (*models.Bill, error) {
	dueDate, err := time.ParseInLocation(models.DueDateLayout, params.DueDate, time.UTC)
	if err != nil {
		return nil, ErrInvalidDueDate
	}
	if err := validateAmounts(params.AmountCents, params.MinPaymentCents); err != nil {
		return nil, err
	}

	// The owner reference is enforced here, not assumed.
	if _, err := s.store.GetUserByID(ctx, params.UserID); err != nil {
		return nil, err
	}

	bill := &models.Bill{
		UserID:          params.UserID,
		Creditor:        params.Creditor,
		AmountCents:     params.AmountCents,
		DueDate:         dueDate,
		Status:          models.BillStatusPending,
		MinPaymentCents: params.MinPaymentCents,
		Description:     params.Description,
	}
	if err := s.store.CreateBill(ctx, bill); err != nil {
		return nil, err
	}

	slog.Info("bill created", "bill_id", bill.ID, "user_id", bill.UserID,
		"creditor", bill.Creditor, "due_date", params.DueDate)
	return bill, nil
}

// GetByID retrieves an active bill.
func (s *BillService) GetByID(ctx context.Context, id string) (*models.Bill, error) {
	return s.store.GetBill(ctx, id)
}

// ListForUser returns the active bills owned by a user.
func (s *BillService) ListForUser(ctx context.Context, userID string) ([]*models.Bill, error) {
	return s.store.ListBillsByUser(ctx, userID)
}

// BillPatch enumerates the updatable bill fields. Nil fields are left
// unchanged; owner and status are not patchable.
type BillPatch struct {
	Creditor        *string
	AmountCents     *int64
	DueDate         *string
	MinPaymentCents *int64
	Description     *string
}

// Update applies the supplied fields to an active bill. The amount and
// minimum-payment relationship is re-validated whenever either changes.
func (s *BillService) Update(ctx context.Context, id string, patch BillPatch) (*models.Bill, error) {
	bill, err := s.store.GetBill(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Creditor != nil {
		bill.Creditor = *patch.Creditor
	}
	if patch.AmountCents != nil {
		bill.AmountCents = *patch.AmountCents
	}
	if patch.DueDate != nil {
		dueDate, err := time.ParseInLocation(models.DueDateLayout, *patch.DueDate, time.UTC)
		if err != nil {
			return nil, ErrInvalidDueDate
		}
		bill.DueDate = dueDate
	}
	if patch.MinPaymentCents != nil {
		bill.MinPaymentCents = patch.MinPaymentCents
	}
	if patch.Description != nil {
		bill.Description = *patch.Description
	}

	if err := validateAmounts(bill.AmountCents, bill.MinPaymentCents); err != nil {
		return nil, err
	}

	if err := s.store.UpdateBill(ctx, bill); err != nil {
		return nil, err
	}

	slog.Info("bill updated", "bill_id", bill.ID)
	return bill, nil
}

// MarkPaid transitions a bill to paid. Idempotent: marking an
// already-paid bill succeeds without changing anything.
func (s *BillService) MarkPaid(ctx context.Context, id string) (*models.Bill, error) {
	bill, err := s.store.MarkBillPaid(ctx, id)
	if err != nil {
		return nil, err
	}

	slog.Info("bill marked paid", "bill_id", bill.ID)
	return bill, nil
}

// SoftDelete marks a bill deleted and returns the final record.
func (s *BillService) SoftDelete(ctx context.Context, id string) (*models.Bill, error) {
	bill, err := s.store.GetBill(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.SoftDeleteBill(ctx, id); err != nil {
		return nil, err
	}

	slog.Info("bill soft-deleted", "bill_id", id)
	return bill, nil
}

// IsOverdue reports whether the bill is unpaid and past due right now.
// Computed fresh from the stored due date and status on every call.
func (s *BillService) IsOverdue(ctx context.Context, id string) (bool, error) {
	bill, err := s.store.GetBill(ctx, id)
	if err != nil {
		return false, err
	}
	return bill.IsOverdue(time.Now()), nil
}

// ImportLiabilities pulls liabilities from the aggregation gateway and
// creates a pending bill for each one that carries a due date. Returns
// the created bills.
func (s *BillService) ImportLiabilities(ctx context.Context, userID, accessToken string) ([]*models.Bill, error) {
	if s.gateway == nil {
		return nil, ErrGatewayUnavailable
	}

	liabilities, err := s.gateway.GetLiabilities(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	var bills []*models.Bill
	for _, liability := range liabilities {
		if liability.DueDate == "" || liability.AmountCents <= 0 {
			slog.Warn("skipping unmappable liability", "creditor", liability.Creditor,
				"amount_cents", liability.AmountCents, "due_date", liability.DueDate)
			continue
		}

		bill, err := s.Create(ctx, CreateBillParams{
			UserID:          userID,
			Creditor:        liability.Creditor,
			AmountCents:     liability.AmountCents,
			DueDate:         liability.DueDate,
			MinPaymentCents: liability.MinPaymentCents,
			Description:     liability.Description,
		})
		if err != nil {
			return nil, err
		}
		bills = append(bills, bill)
	}

	slog.Info("liabilities imported", "user_id", userID, "bills_created", len(bills))
	return bills, nil
}

// validateAmounts enforces amount > 0 and 0 <= minPayment <= amount.
func validateAmounts(amountCents int64, minPaymentCents *int64) error {
	if amountCents <= 0 {
		return ErrNonPositiveAmount
	}
	if minPaymentCents != nil && (*minPaymentCents < 0 || *minPaymentCents > amountCents) {
		return ErrMinPaymentRange
	}
	return nil
}
