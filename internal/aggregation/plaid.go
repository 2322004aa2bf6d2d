package aggregation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/plaid/plaid-go/v27/plaid"

	"github.com/mmynk/billmap/internal/models"
)

// Ensure PlaidGateway implements Gateway
var _ Gateway = (*PlaidGateway)(nil)

// PlaidGateway implements Gateway against the Plaid API.
type PlaidGateway struct {
	client     *plaid.APIClient
	clientName string
}

// NewPlaidGateway creates a Plaid-backed gateway. environment is
// "sandbox" or "production"; anything else falls back to sandbox.
func NewPlaidGateway(clientID, secret, environment string) *PlaidGateway {
	cfg := plaid.NewConfiguration()
	cfg.AddDefaultHeader("PLAID-CLIENT-ID", clientID)
	cfg.AddDefaultHeader("PLAID-SECRET", secret)

	env := plaid.Sandbox
	if environment == "production" {
		env = plaid.Production
	}
	cfg.UseEnvironment(env)

	return &PlaidGateway{
		client:     plaid.NewAPIClient(cfg),
		clientName: "BillMap",
	}
}

// CreateLinkToken generates a link token for the Plaid Link widget.
func (g *PlaidGateway) CreateLinkToken(ctx context.Context, userID string) (string, error) {
	user := plaid.LinkTokenCreateRequestUser{ClientUserId: userID}
	req := plaid.NewLinkTokenCreateRequest(g.clientName, "en",
		[]plaid.CountryCode{plaid.COUNTRYCODE_US}, user)
	req.SetProducts([]plaid.Products{plaid.PRODUCTS_TRANSACTIONS, plaid.PRODUCTS_LIABILITIES})

	resp, _, err := g.client.PlaidApi.LinkTokenCreate(ctx).
		LinkTokenCreateRequest(*req).Execute()
	if err != nil {
		return "", fmt.Errorf("failed to create link token: %w", err)
	}

	return resp.GetLinkToken(), nil
}

// ExchangePublicToken trades a public token for an access token.
func (g *PlaidGateway) ExchangePublicToken(ctx context.Context, publicToken string) (string, error) {
	req := plaid.NewItemPublicTokenExchangeRequest(publicToken)

	resp, _, err := g.client.PlaidApi.ItemPublicTokenExchange(ctx).
		ItemPublicTokenExchangeRequest(*req).Execute()
	if err != nil {
		return "", fmt.Errorf("failed to exchange public token: %w", err)
	}

	return resp.GetAccessToken(), nil
}

// GetLiabilities retrieves credit-card and student-loan liabilities for a
// linked item.
func (g *PlaidGateway) GetLiabilities(ctx context.Context, accessToken string) ([]Liability, error) {
	req := plaid.NewLiabilitiesGetRequest(accessToken)

	resp, _, err := g.client.PlaidApi.LiabilitiesGet(ctx).
		LiabilitiesGetRequest(*req).Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get liabilities: %w", err)
	}

	// Account names make better creditor labels than account IDs.
	accountNames := make(map[string]string)
	for _, account := range resp.GetAccounts() {
		accountNames[account.GetAccountId()] = account.GetName()
	}

	var liabilities []Liability
	liab := resp.GetLiabilities()

	for _, credit := range liab.GetCredit() {
		l := Liability{
			Creditor:    accountNames[credit.GetAccountId()],
			AmountCents: centsFromFloat(credit.GetLastStatementBalance()),
			DueDate:     credit.GetNextPaymentDueDate(),
			Description: "imported credit card liability",
		}
		if min := centsFromFloat(credit.GetMinimumPaymentAmount()); min > 0 {
			l.MinPaymentCents = &min
		}
		liabilities = append(liabilities, l)
	}

	for _, loan := range liab.GetStudent() {
		l := Liability{
			Creditor:    accountNames[loan.GetAccountId()],
			AmountCents: centsFromFloat(loan.GetOutstandingInterestAmount()),
			DueDate:     loan.GetNextPaymentDueDate(),
			Description: "imported student loan liability",
		}
		if min := centsFromFloat(loan.GetMinimumPaymentAmount()); min > 0 {
			l.MinPaymentCents = &min
		}
		liabilities = append(liabilities, l)
	}

	slog.Info("liabilities retrieved", "count", len(liabilities))
	return liabilities, nil
}

// GetTransactions walks the transactions sync cursor and returns every
// transaction posted within [startDate, endDate].
func (g *PlaidGateway) GetTransactions(ctx context.Context, accessToken string, startDate, endDate time.Time) ([]Transaction, error) {
	var transactions []Transaction
	cursor := ""

	for {
		req := plaid.NewTransactionsSyncRequest(accessToken)
		if cursor != "" {
			req.SetCursor(cursor)
		}

		resp, _, err := g.client.PlaidApi.TransactionsSync(ctx).
			TransactionsSyncRequest(*req).Execute()
		if err != nil {
			return nil, fmt.Errorf("failed to sync transactions: %w", err)
		}

		for _, txn := range resp.GetAdded() {
			date, err := time.ParseInLocation(models.DueDateLayout, txn.GetDate(), time.UTC)
			if err != nil {
				continue
			}
			if date.Before(startDate) || date.After(endDate) {
				continue
			}
			transactions = append(transactions, Transaction{
				Name:        txn.GetName(),
				AmountCents: centsFromFloat(txn.GetAmount()),
				Date:        txn.GetDate(),
			})
		}

		if !resp.GetHasMore() {
			break
		}
		cursor = resp.GetNextCursor()
	}

	slog.Info("transactions retrieved", "count", len(transactions))
	return transactions, nil
}

// centsFromFloat converts the provider's float amounts into integer
// cents. Floats exist only at this boundary; rounding here is the single
// place drift could enter, so round half away from zero at two digits.
func centsFromFloat(v float64) int64 {
	return int64(math.Round(v * 100))
}
