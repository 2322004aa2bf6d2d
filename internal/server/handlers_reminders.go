package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mmynk/billmap/internal/middleware"
	"github.com/mmynk/billmap/internal/service"
)

type scheduleReminderRequest struct {
	BillID             string `json:"bill_id"`
	RemindAt           string `json:"remind_at"`
	Message            string `json:"message"`
	NotificationMethod string `json:"notification_method"`
}

func (s *Server) handleScheduleReminder(w http.ResponseWriter, r *http.Request) {
	var req scheduleReminderRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.BillID == "" || req.RemindAt == "" {
		badRequest(w, "bill_id and remind_at are required")
		return
	}

	reminder, err := s.reminders.Schedule(r.Context(), service.ScheduleReminderParams{
		UserID:             middleware.GetUserID(r.Context()),
		BillID:             req.BillID,
		RemindAt:           req.RemindAt,
		Message:            req.Message,
		NotificationMethod: req.NotificationMethod,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toReminderResponse(reminder))
}

func (s *Server) handleListReminders(w http.ResponseWriter, r *http.Request) {
	reminders, err := s.reminders.ListForUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReminderResponses(reminders))
}

func (s *Server) handleGetReminder(w http.ResponseWriter, r *http.Request) {
	reminder, err := s.reminders.GetByID(r.Context(),
		middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReminderResponse(reminder))
}

type updateReminderRequest struct {
	RemindAt           *string `json:"remind_at"`
	Status             *string `json:"status"`
	Message            *string `json:"message"`
	NotificationMethod *string `json:"notification_method"`
}

func (s *Server) handleUpdateReminder(w http.ResponseWriter, r *http.Request) {
	var req updateReminderRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	reminder, err := s.reminders.Update(r.Context(),
		middleware.GetUserID(r.Context()), chi.URLParam(r, "id"),
		service.ReminderPatch{
			RemindAt:           req.RemindAt,
			Status:             req.Status,
			Message:            req.Message,
			NotificationMethod: req.NotificationMethod,
		})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toReminderResponse(reminder))
}

func (s *Server) handleDeleteReminder(w http.ResponseWriter, r *http.Request) {
	_, err := s.reminders.SoftDelete(r.Context(),
		middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleDispatchReminders runs one dispatch sweep. Meant to be hit by an
// external scheduler (cron); calling it twice in a row is harmless. The
// sweep spans every user, so the response carries only a count: the
// dispatched records belong to other owners and are never echoed back to
// the caller.
func (s *Server) handleDispatchReminders(w http.ResponseWriter, r *http.Request) {
	dispatched, err := s.reminders.DispatchDue(r.Context(), time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": len(dispatched)})
}
