package server

import (
	"net/http"
	"time"

	"github.com/mmynk/billmap/internal/middleware"
	"github.com/mmynk/billmap/internal/models"
	"github.com/mmynk/billmap/internal/service"
	"github.com/mmynk/billmap/pkg/money"
)

func (s *Server) handleCreateLinkToken(w http.ResponseWriter, r *http.Request) {
	if s.gateway == nil {
		writeError(w, service.ErrGatewayUnavailable)
		return
	}

	token, err := s.gateway.CreateLinkToken(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"link_token": token})
}

type exchangeTokenRequest struct {
	PublicToken string `json:"public_token"`
}

func (s *Server) handleExchangeToken(w http.ResponseWriter, r *http.Request) {
	if s.gateway == nil {
		writeError(w, service.ErrGatewayUnavailable)
		return
	}

	var req exchangeTokenRequest
	if err := decodeJSON(r, &req); err != nil || req.PublicToken == "" {
		badRequest(w, "public_token is required")
		return
	}

	accessToken, err := s.gateway.ExchangePublicToken(r.Context(), req.PublicToken)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"access_token": accessToken})
}

func (s *Server) handleGetLiabilities(w http.ResponseWriter, r *http.Request) {
	if s.gateway == nil {
		writeError(w, service.ErrGatewayUnavailable)
		return
	}

	accessToken := r.URL.Query().Get("access_token")
	if accessToken == "" {
		badRequest(w, "access_token is required")
		return
	}

	liabilities, err := s.gateway.GetLiabilities(r.Context(), accessToken)
	if err != nil {
		writeError(w, err)
		return
	}

	type liabilityResponse struct {
		Creditor       string  `json:"creditor"`
		Amount         string  `json:"amount"`
		MinimumPayment *string `json:"minimum_payment,omitempty"`
		DueDate        string  `json:"due_date,omitempty"`
		Description    string  `json:"description,omitempty"`
	}
	out := make([]liabilityResponse, len(liabilities))
	for i, l := range liabilities {
		out[i] = liabilityResponse{
			Creditor:    l.Creditor,
			Amount:      money.FromCents(l.AmountCents),
			DueDate:     l.DueDate,
			Description: l.Description,
		}
		if l.MinPaymentCents != nil {
			min := money.FromCents(*l.MinPaymentCents)
			out[i].MinimumPayment = &min
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"liabilities": out})
}

func (s *Server) handleGetTransactions(w http.ResponseWriter, r *http.Request) {
	if s.gateway == nil {
		writeError(w, service.ErrGatewayUnavailable)
		return
	}

	accessToken := r.URL.Query().Get("access_token")
	startStr := r.URL.Query().Get("start_date")
	endStr := r.URL.Query().Get("end_date")
	if accessToken == "" || startStr == "" || endStr == "" {
		badRequest(w, "access_token, start_date, and end_date are required")
		return
	}

	startDate, err := time.ParseInLocation(models.DueDateLayout, startStr, time.UTC)
	if err != nil {
		badRequest(w, "start_date must use format "+models.DueDateLayout)
		return
	}
	endDate, err := time.ParseInLocation(models.DueDateLayout, endStr, time.UTC)
	if err != nil {
		badRequest(w, "end_date must use format "+models.DueDateLayout)
		return
	}

	transactions, err := s.gateway.GetTransactions(r.Context(), accessToken, startDate, endDate)
	if err != nil {
		writeError(w, err)
		return
	}

	type transactionResponse struct {
		Name   string `json:"name"`
		Amount string `json:"amount"`
		Date   string `json:"date"`
	}
	out := make([]transactionResponse, len(transactions))
	for i, t := range transactions {
		out[i] = transactionResponse{
			Name:   t.Name,
			Amount: money.FromCents(t.AmountCents),
			Date:   t.Date,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"transactions": out})
}

type importLiabilitiesRequest struct {
	AccessToken string `json:"access_token"`
}

// handleImportLiabilities seeds bills from the user's linked accounts.
func (s *Server) handleImportLiabilities(w http.ResponseWriter, r *http.Request) {
	var req importLiabilitiesRequest
	if err := decodeJSON(r, &req); err != nil || req.AccessToken == "" {
		badRequest(w, "access_token is required")
		return
	}

	bills, err := s.bills.ImportLiabilities(r.Context(),
		middleware.GetUserID(r.Context()), req.AccessToken)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"bills": toBillResponses(bills),
		"count": len(bills),
	})
}
