package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmynk/billmap/internal/auth"
	"github.com/mmynk/billmap/internal/models"
	"github.com/mmynk/billmap/internal/service"
	"github.com/mmynk/billmap/internal/storage/sqlite"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "billmap-server-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	users := service.NewUserService(store, auth.NewBcryptHasher())
	bills := service.NewBillService(store, nil)
	reminders := service.NewReminderService(store)

	srv := New(users, bills, reminders, nil, jwtManager)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	return ts
}

// doJSON sends a JSON request and decodes the JSON response into out (when
// out is non-nil). The response status is returned for assertion.
func doJSON(t *testing.T, method, url, token string, body any, out any) int {
	t.Helper()

	var reqBody bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&reqBody).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &reqBody)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func registerTestUser(t *testing.T, ts *httptest.Server, email string) string {
	t.Helper()
	var resp struct {
		Token string `json:"token"`
	}
	status := doJSON(t, http.MethodPost, ts.URL+"/api/auth/register", "", map[string]string{
		"first_name": "Test",
		"last_name":  "User",
		"email":      email,
		"password":   "password123",
	}, &resp)
	if status != http.StatusCreated {
		t.Fatalf("register: got status %d, want 201", status)
	}
	if resp.Token == "" {
		t.Fatal("register: empty token")
	}
	return resp.Token
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	var resp map[string]string
	if status := doJSON(t, http.MethodGet, ts.URL+"/healthz", "", nil, &resp); status != http.StatusOK {
		t.Fatalf("healthz: got status %d", status)
	}
	if resp["status"] != "ok" {
		t.Errorf("healthz body: got %v", resp)
	}
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t)

	token := registerTestUser(t, ts, "flow@example.com")

	t.Run("duplicate registration conflicts", func(t *testing.T) {
		status := doJSON(t, http.MethodPost, ts.URL+"/api/auth/register", "", map[string]string{
			"first_name": "Dup", "email": "flow@example.com", "password": "password123",
		}, nil)
		if status != http.StatusConflict {
			t.Errorf("duplicate register: got status %d, want 409", status)
		}
	})

	t.Run("login returns fresh token", func(t *testing.T) {
		var resp struct {
			Token string `json:"token"`
			User  struct {
				Email string `json:"email"`
			} `json:"user"`
		}
		status := doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", "", map[string]string{
			"email": "flow@example.com", "password": "password123",
		}, &resp)
		if status != http.StatusOK {
			t.Fatalf("login: got status %d", status)
		}
		if resp.Token == "" || resp.User.Email != "flow@example.com" {
			t.Errorf("login body mismatch: %+v", resp)
		}
	})

	t.Run("wrong password unauthorized", func(t *testing.T) {
		status := doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", "", map[string]string{
			"email": "flow@example.com", "password": "wrong-password",
		}, nil)
		if status != http.StatusUnauthorized {
			t.Errorf("bad login: got status %d, want 401", status)
		}
	})

	t.Run("me requires token", func(t *testing.T) {
		if status := doJSON(t, http.MethodGet, ts.URL+"/api/auth/me", "", nil, nil); status != http.StatusUnauthorized {
			t.Errorf("me without token: got status %d, want 401", status)
		}
		var me struct {
			Email string `json:"email"`
		}
		if status := doJSON(t, http.MethodGet, ts.URL+"/api/auth/me", token, nil, &me); status != http.StatusOK {
			t.Fatalf("me: got status %d", status)
		}
		if me.Email != "flow@example.com" {
			t.Errorf("me email: got %q", me.Email)
		}
	})
}

func TestBillEndpoints(t *testing.T) {
	ts := newTestServer(t)
	token := registerTestUser(t, ts, "bills@example.com")

	type billBody struct {
		ID             string  `json:"id"`
		Creditor       string  `json:"creditor"`
		Amount         string  `json:"amount"`
		DueDate        string  `json:"due_date"`
		Status         string  `json:"status"`
		MinimumPayment *string `json:"minimum_payment"`
		Overdue        bool    `json:"overdue"`
	}

	var created billBody
	t.Run("create", func(t *testing.T) {
		status := doJSON(t, http.MethodPost, ts.URL+"/api/bills", token, map[string]any{
			"creditor":        "Electric Co",
			"amount":          "100.50",
			"due_date":        "2099-01-01",
			"minimum_payment": "25.00",
		}, &created)
		if status != http.StatusCreated {
			t.Fatalf("create bill: got status %d", status)
		}
		if created.Amount != "100.50" || created.Status != string(models.BillStatusPending) {
			t.Errorf("created bill mismatch: %+v", created)
		}
		if created.MinimumPayment == nil || *created.MinimumPayment != "25.00" {
			t.Errorf("minimum payment: got %v", created.MinimumPayment)
		}
		if created.Overdue {
			t.Error("bill due 2099-01-01 reported overdue")
		}
	})

	t.Run("invalid amount rejected", func(t *testing.T) {
		status := doJSON(t, http.MethodPost, ts.URL+"/api/bills", token, map[string]any{
			"creditor": "X", "amount": "100.505", "due_date": "2099-01-01",
		}, nil)
		if status != http.StatusBadRequest {
			t.Errorf("sub-cent amount: got status %d, want 400", status)
		}
	})

	t.Run("pay is idempotent over http", func(t *testing.T) {
		payURL := fmt.Sprintf("%s/api/bills/%s/pay", ts.URL, created.ID)
		var paid billBody
		if status := doJSON(t, http.MethodPost, payURL, token, nil, &paid); status != http.StatusOK {
			t.Fatalf("pay: got status %d", status)
		}
		if paid.Status != string(models.BillStatusPaid) {
			t.Errorf("status after pay: got %q", paid.Status)
		}
		if status := doJSON(t, http.MethodPost, payURL, token, nil, &paid); status != http.StatusOK {
			t.Fatalf("second pay: got status %d", status)
		}
	})

	t.Run("foreign bill hidden", func(t *testing.T) {
		otherToken := registerTestUser(t, ts, "intruder@example.com")
		status := doJSON(t, http.MethodGet, ts.URL+"/api/bills/"+created.ID, otherToken, nil, nil)
		if status != http.StatusNotFound {
			t.Errorf("foreign bill read: got status %d, want 404", status)
		}
	})

	t.Run("delete hides from list", func(t *testing.T) {
		status := doJSON(t, http.MethodDelete, ts.URL+"/api/bills/"+created.ID, token, nil, nil)
		if status != http.StatusOK {
			t.Fatalf("delete: got status %d", status)
		}
		var bills []billBody
		if status := doJSON(t, http.MethodGet, ts.URL+"/api/bills", token, nil, &bills); status != http.StatusOK {
			t.Fatalf("list: got status %d", status)
		}
		for _, b := range bills {
			if b.ID == created.ID {
				t.Error("deleted bill still listed")
			}
		}
	})
}

func TestReminderEndpoints(t *testing.T) {
	ts := newTestServer(t)
	token := registerTestUser(t, ts, "reminders@example.com")

	var bill struct {
		ID string `json:"id"`
	}
	status := doJSON(t, http.MethodPost, ts.URL+"/api/bills", token, map[string]any{
		"creditor": "Card Co", "amount": "500.00", "due_date": "2099-01-01",
	}, &bill)
	if status != http.StatusCreated {
		t.Fatalf("create bill: got status %d", status)
	}

	pastRemindAt := time.Now().UTC().Add(-time.Hour).Format(models.RemindAtLayout)

	var reminder struct {
		ID                 string `json:"id"`
		Status             string `json:"status"`
		NotificationMethod string `json:"notification_method"`
		Due                bool   `json:"due"`
	}
	t.Run("schedule", func(t *testing.T) {
		status := doJSON(t, http.MethodPost, ts.URL+"/api/reminders", token, map[string]any{
			"bill_id":   bill.ID,
			"remind_at": pastRemindAt,
			"message":   "card payment due",
		}, &reminder)
		if status != http.StatusCreated {
			t.Fatalf("schedule: got status %d", status)
		}
		if reminder.Status != string(models.ReminderStatusPending) {
			t.Errorf("status: got %q", reminder.Status)
		}
		if reminder.NotificationMethod != models.DefaultNotificationMethod {
			t.Errorf("notification method: got %q", reminder.NotificationMethod)
		}
		if !reminder.Due {
			t.Error("past reminder not reported due")
		}
	})

	t.Run("dispatch sweeps due reminders once", func(t *testing.T) {
		var resp struct {
			Count int `json:"count"`
		}
		if status := doJSON(t, http.MethodPost, ts.URL+"/api/reminders/dispatch", token, nil, &resp); status != http.StatusOK {
			t.Fatalf("dispatch: got status %d", status)
		}
		if resp.Count != 1 {
			t.Fatalf("dispatch count: got %d, want 1", resp.Count)
		}

		var swept struct {
			Status string `json:"status"`
		}
		if status := doJSON(t, http.MethodGet, ts.URL+"/api/reminders/"+reminder.ID, token, nil, &swept); status != http.StatusOK {
			t.Fatalf("get after dispatch: got status %d", status)
		}
		if swept.Status != string(models.ReminderStatusSent) {
			t.Errorf("status after dispatch: got %q, want sent", swept.Status)
		}

		if status := doJSON(t, http.MethodPost, ts.URL+"/api/reminders/dispatch", token, nil, &resp); status != http.StatusOK {
			t.Fatalf("second dispatch: got status %d", status)
		}
		if resp.Count != 0 {
			t.Errorf("re-dispatch count: got %d, want 0", resp.Count)
		}
	})

	t.Run("sent cannot return to pending", func(t *testing.T) {
		status := doJSON(t, http.MethodPatch, ts.URL+"/api/reminders/"+reminder.ID, token,
			map[string]any{"status": "pending"}, nil)
		if status != http.StatusBadRequest {
			t.Errorf("sent->pending: got status %d, want 400", status)
		}
	})
}

func TestDispatchKeepsForeignRemindersPrivate(t *testing.T) {
	ts := newTestServer(t)
	ownerToken := registerTestUser(t, ts, "owner@example.com")
	otherToken := registerTestUser(t, ts, "other@example.com")

	var bill struct {
		ID string `json:"id"`
	}
	status := doJSON(t, http.MethodPost, ts.URL+"/api/bills", ownerToken, map[string]any{
		"creditor": "Hospital", "amount": "300.00", "due_date": "2099-01-01",
	}, &bill)
	if status != http.StatusCreated {
		t.Fatalf("create bill: got status %d", status)
	}

	var reminder struct {
		ID string `json:"id"`
	}
	status = doJSON(t, http.MethodPost, ts.URL+"/api/reminders", ownerToken, map[string]any{
		"bill_id":   bill.ID,
		"remind_at": time.Now().UTC().Add(-time.Hour).Format(models.RemindAtLayout),
		"message":   "pay medical bill",
	}, &reminder)
	if status != http.StatusCreated {
		t.Fatalf("schedule: got status %d", status)
	}

	// Another user may trigger the sweep, but the response must not carry
	// the owner's reminder records.
	var resp map[string]json.RawMessage
	if status := doJSON(t, http.MethodPost, ts.URL+"/api/reminders/dispatch", otherToken, nil, &resp); status != http.StatusOK {
		t.Fatalf("dispatch: got status %d", status)
	}
	var count int
	if err := json.Unmarshal(resp["count"], &count); err != nil || count != 1 {
		t.Fatalf("dispatch count: got %s (err %v), want 1", resp["count"], err)
	}
	delete(resp, "count")
	if len(resp) != 0 {
		t.Errorf("dispatch response leaked extra fields: %v", resp)
	}

	if status := doJSON(t, http.MethodGet, ts.URL+"/api/reminders/"+reminder.ID, otherToken, nil, nil); status != http.StatusNotFound {
		t.Errorf("foreign reminder read: got status %d, want 404", status)
	}

	var swept struct {
		Status string `json:"status"`
	}
	if status := doJSON(t, http.MethodGet, ts.URL+"/api/reminders/"+reminder.ID, ownerToken, nil, &swept); status != http.StatusOK {
		t.Fatalf("owner read: got status %d", status)
	}
	if swept.Status != string(models.ReminderStatusSent) {
		t.Errorf("owner reminder status: got %q, want sent", swept.Status)
	}
}

func TestPlaidRoutesWithoutGateway(t *testing.T) {
	ts := newTestServer(t)
	token := registerTestUser(t, ts, "plaid@example.com")

	if status := doJSON(t, http.MethodGet, ts.URL+"/api/plaid/link_token", token, nil, nil); status != http.StatusServiceUnavailable {
		t.Errorf("link_token without gateway: got status %d, want 503", status)
	}
	if status := doJSON(t, http.MethodPost, ts.URL+"/api/plaid/import", token,
		map[string]any{"access_token": "x"}, nil); status != http.StatusServiceUnavailable {
		t.Errorf("import without gateway: got status %d, want 503", status)
	}
}
