package server

import (
	"time"

	"github.com/mmynk/billmap/internal/models"
	"github.com/mmynk/billmap/pkg/money"
)

// Wire representations. Timestamps render as RFC 3339, amounts as
// two-digit decimal strings, due dates in the canonical YYYY-MM-DD form.

type userResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		CreatedAt: rfc3339(u.CreatedAt),
		UpdatedAt: rfc3339(u.UpdatedAt),
	}
}

type billResponse struct {
	ID             string  `json:"id"`
	UserID         string  `json:"user_id"`
	Creditor       string  `json:"creditor"`
	Amount         string  `json:"amount"`
	DueDate        string  `json:"due_date"`
	Status         string  `json:"status"`
	MinimumPayment *string `json:"minimum_payment,omitempty"`
	Description    string  `json:"description,omitempty"`
	Overdue        bool    `json:"overdue"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

func toBillResponse(b *models.Bill) billResponse {
	resp := billResponse{
		ID:          b.ID,
		UserID:      b.UserID,
		Creditor:    b.Creditor,
		Amount:      money.FromCents(b.AmountCents),
		DueDate:     b.DueDate.Format(models.DueDateLayout),
		Status:      string(b.Status),
		Description: b.Description,
		Overdue:     b.IsOverdue(time.Now()),
		CreatedAt:   rfc3339(b.CreatedAt),
		UpdatedAt:   rfc3339(b.UpdatedAt),
	}
	if b.MinPaymentCents != nil {
		min := money.FromCents(*b.MinPaymentCents)
		resp.MinimumPayment = &min
	}
	return resp
}

func toBillResponses(bills []*models.Bill) []billResponse {
	out := make([]billResponse, len(bills))
	for i, b := range bills {
		out[i] = toBillResponse(b)
	}
	return out
}

type reminderResponse struct {
	ID                 string `json:"id"`
	UserID             string `json:"user_id"`
	BillID             string `json:"bill_id"`
	RemindAt           string `json:"remind_at"`
	Status             string `json:"status"`
	Message            string `json:"message,omitempty"`
	NotificationMethod string `json:"notification_method"`
	Due                bool   `json:"due"`
	CreatedAt          string `json:"created_at"`
	UpdatedAt          string `json:"updated_at"`
}

func toReminderResponse(r *models.Reminder) reminderResponse {
	return reminderResponse{
		ID:                 r.ID,
		UserID:             r.UserID,
		BillID:             r.BillID,
		RemindAt:           r.RemindAt.Format(models.RemindAtLayout),
		Status:             string(r.Status),
		Message:            r.Message,
		NotificationMethod: r.NotificationMethod,
		Due:                r.IsDue(time.Now()),
		CreatedAt:          rfc3339(r.CreatedAt),
		UpdatedAt:          rfc3339(r.UpdatedAt),
	}
}

func toReminderResponses(reminders []*models.Reminder) []reminderResponse {
	out := make([]reminderResponse, len(reminders))
	for i, r := range reminders {
		out[i] = toReminderResponse(r)
	}
	return out
}

func rfc3339(unix int64) string {
	return time.Unix(unix, 0).UTC().Format(time.RFC3339)
}
