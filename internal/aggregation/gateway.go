// Package aggregation bridges BillMap to a third-party bank-data
// provider. The gateway is optional: the rest of the system works with a
// nil gateway, and nothing in the core bill or reminder paths touches it.
package aggregation

import (
	"context"
	"time"
)

// Liability is an imported debt as reported by the provider, already
// normalized to BillMap's money and date conventions.
type Liability struct {
	// Creditor is the institution or account the debt is owed to.
	Creditor string

	// AmountCents is the outstanding balance in integer cents.
	AmountCents int64

	// MinPaymentCents is the minimum payment in cents, when reported.
	MinPaymentCents *int64

	// DueDate is the next payment due date in YYYY-MM-DD form, empty
	// when the provider does not report one.
	DueDate string

	// Description is free text carried over from the provider.
	Description string
}

// Transaction is a single account transaction from the provider.
type Transaction struct {
	// Name is the merchant or transaction description.
	Name string

	// AmountCents is the transaction amount in integer cents.
	AmountCents int64

	// Date is the posting date in YYYY-MM-DD form.
	Date string
}

// Gateway is the contract for the external account-data provider.
type Gateway interface {
	// CreateLinkToken starts the account-linking flow for a user and
	// returns a short-lived link token for the provider's widget.
	CreateLinkToken(ctx context.Context, userID string) (string, error)

	// ExchangePublicToken trades the public token produced by the
	// linking widget for a long-lived access token.
	ExchangePublicToken(ctx context.Context, publicToken string) (string, error)

	// GetLiabilities retrieves the outstanding debts for a linked item.
	GetLiabilities(ctx context.Context, accessToken string) ([]Liability, error)

	// GetTransactions retrieves transactions for a linked item within
	// the given date range.
	GetTransactions(ctx context.Context, accessToken string, startDate, endDate time.Time) ([]Transaction, error)
}
