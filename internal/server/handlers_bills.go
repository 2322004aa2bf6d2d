package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mmynk/billmap/internal/middleware"
	"github.com/mmynk/billmap/internal/service"
	"github.com/mmynk/billmap/internal/storage"
	"github.com/mmynk/billmap/pkg/money"
)

type createBillRequest struct {
	Creditor       string  `json:"creditor"`
	Amount         string  `json:"amount"`
	DueDate        string  `json:"due_date"`
	MinimumPayment *string `json:"minimum_payment"`
	Description    string  `json:"description"`
}

func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	var req createBillRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Creditor == "" || req.Amount == "" || req.DueDate == "" {
		badRequest(w, "creditor, amount, and due_date are required")
		return
	}

	amountCents, err := money.ToCents(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	var minPaymentCents *int64
	if req.MinimumPayment != nil {
		cents, err := money.ToCents(*req.MinimumPayment)
		if err != nil {
			writeError(w, err)
			return
		}
		minPaymentCents = &cents
	}

	bill, err := s.bills.Create(r.Context(), service.CreateBillParams{
		UserID:          middleware.GetUserID(r.Context()),
		Creditor:        req.Creditor,
		AmountCents:     amountCents,
		DueDate:         req.DueDate,
		MinPaymentCents: minPaymentCents,
		Description:     req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toBillResponse(bill))
}

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	bills, err := s.bills.ListForUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBillResponses(bills))
}

// ownedBill loads a bill and hides other users' bills behind not-found.
func (s *Server) ownedBill(r *http.Request, id string) (string, error) {
	bill, err := s.bills.GetByID(r.Context(), id)
	if err != nil {
		return "", err
	}
	if bill.UserID != middleware.GetUserID(r.Context()) {
		return "", storage.ErrNotFound
	}
	return bill.ID, nil
}

func (s *Server) handleGetBill(w http.ResponseWriter, r *http.Request) {
	bill, err := s.bills.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err == nil && bill.UserID != middleware.GetUserID(r.Context()) {
		err = storage.ErrNotFound
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBillResponse(bill))
}

type updateBillRequest struct {
	Creditor       *string `json:"creditor"`
	Amount         *string `json:"amount"`
	DueDate        *string `json:"due_date"`
	MinimumPayment *string `json:"minimum_payment"`
	Description    *string `json:"description"`
}

func (s *Server) handleUpdateBill(w http.ResponseWriter, r *http.Request) {
	id, err := s.ownedBill(r, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req updateBillRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	patch := service.BillPatch{
		Creditor:    req.Creditor,
		DueDate:     req.DueDate,
		Description: req.Description,
	}
	if req.Amount != nil {
		cents, err := money.ToCents(*req.Amount)
		if err != nil {
			writeError(w, err)
			return
		}
		patch.AmountCents = &cents
	}
	if req.MinimumPayment != nil {
		cents, err := money.ToCents(*req.MinimumPayment)
		if err != nil {
			writeError(w, err)
			return
		}
		patch.MinPaymentCents = &cents
	}

	bill, err := s.bills.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBillResponse(bill))
}

func (s *Server) handleMarkBillPaid(w http.ResponseWriter, r *http.Request) {
	id, err := s.ownedBill(r, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	bill, err := s.bills.MarkPaid(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBillResponse(bill))
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	id, err := s.ownedBill(r, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	if _, err := s.bills.SoftDelete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
