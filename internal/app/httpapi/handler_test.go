package httpapi_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	app "github.com/relato-crm/relato/internal/app"
	"github.com/relato-crm/relato/internal/app/auth"
	"github.com/relato-crm/relato/internal/app/httpapi"
)

func newTestAPI(t *testing.T) http.Handler {
	t.Helper()
	tokens := auth.NewManager("test-secret", time.Hour)
	application := app.New(app.Stores{}, tokens, nil)
	return httpapi.New(application, nil, nil)
}

func doJSON(t *testing.T, api http.Handler, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestAPILifecycle(t *testing.T) {
	api := newTestAPI(t)

	// Register, then verify the duplicate is refused.
	rec := doJSON(t, api, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "ana@example.com", "full_name": "Ana Silva", "password": "hunter22",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: got %d, want 201 (%s)", rec.Code, rec.Body.String())
	}
	me := decodeBody(t, rec)
	if _, ok := me["password"]; ok {
		t.Fatal("register response leaks password field")
	}

	rec = doJSON(t, api, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "ANA@example.com", "full_name": "Other", "password": "whatever",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register: got %d, want 409", rec.Code)
	}
	if msg := decodeBody(t, rec)["error"]; msg == "" {
		t.Fatal("conflict response missing error message")
	}

	// Login and pull the bearer token.
	rec = doJSON(t, api, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ana@example.com", "password": "hunter22",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: got %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	login := decodeBody(t, rec)
	token, _ := login["access_token"].(string)
	if token == "" {
		t.Fatal("login response missing access_token")
	}
	if login["token_type"] != "bearer" {
		t.Fatalf("token_type = %v, want bearer", login["token_type"])
	}

	// Wrong password must use the same message as an unknown email.
	rec = doJSON(t, api, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ana@example.com", "password": "nope",
	})
	wrongPass := decodeBody(t, rec)["error"]
	rec = doJSON(t, api, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ghost@example.com", "password": "nope",
	})
	unknownUser := decodeBody(t, rec)["error"]
	if wrongPass != unknownUser {
		t.Fatalf("login failures differ: %v vs %v", wrongPass, unknownUser)
	}

	// Protected routes fail closed without a token.
	if rec := doJSON(t, api, http.MethodGet, "/api/companies", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated list: got %d, want 401", rec.Code)
	}
	if rec := doJSON(t, api, http.MethodGet, "/api/auth/me", "garbage-token", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bogus token: got %d, want 401", rec.Code)
	}

	rec = doJSON(t, api, http.MethodGet, "/api/auth/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: got %d, want 200", rec.Code)
	}
	if got := decodeBody(t, rec)["email"]; got != "ana@example.com" {
		t.Fatalf("me email = %v", got)
	}

	// Company, then a contact attached to it.
	rec = doJSON(t, api, http.MethodPost, "/api/companies", token, map[string]interface{}{
		"name": "Acme Corp", "industry": "Manufacturing", "city": "Lisboa",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create company: got %d (%s)", rec.Code, rec.Body.String())
	}
	companyID := int64(decodeBody(t, rec)["id"].(float64))

	rec = doJSON(t, api, http.MethodPost, "/api/contacts", token, map[string]interface{}{
		"first_name": "Bruno", "last_name": "Costa",
		"email": "bruno@acme.test", "company_id": companyID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create contact: got %d (%s)", rec.Code, rec.Body.String())
	}
	contactBody := decodeBody(t, rec)
	contactID := int64(contactBody["id"].(float64))
	if contactBody["company_name"] != "Acme Corp" {
		t.Fatalf("contact company_name = %v", contactBody["company_name"])
	}

	// A contact pointing at a missing company is a 400.
	rec = doJSON(t, api, http.MethodPost, "/api/contacts", token, map[string]interface{}{
		"first_name": "Carla", "last_name": "Dias", "company_id": 9999,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("dangling company_id: got %d, want 400", rec.Code)
	}

	// Deal defaults its owner to the caller; close_date accepts a bare date.
	rec = doJSON(t, api, http.MethodPost, "/api/deals", token, map[string]interface{}{
		"name": "Acme renewal", "value": 42000.0, "stage": "negotiation",
		"probability": 60, "company_id": companyID, "close_date": "2026-11-30",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create deal: got %d (%s)", rec.Code, rec.Body.String())
	}
	dealBody := decodeBody(t, rec)
	if dealBody["owner_name"] != "Ana Silva" {
		t.Fatalf("deal owner_name = %v", dealBody["owner_name"])
	}
	if dealBody["company_name"] != "Acme Corp" {
		t.Fatalf("deal company_name = %v", dealBody["company_name"])
	}

	rec = doJSON(t, api, http.MethodPost, "/api/deals", token, map[string]interface{}{
		"name": "Bad odds", "value": 10.0, "stage": "lead", "probability": 250,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("probability out of range: got %d, want 400", rec.Code)
	}

	// Omitting value entirely is rejected; it must not default to zero.
	rec = doJSON(t, api, http.MethodPost, "/api/deals", token, map[string]interface{}{
		"name": "No price yet", "stage": "lead",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing value: got %d, want 400 (%s)", rec.Code, rec.Body.String())
	}

	// An explicit zero value is still a valid deal.
	rec = doJSON(t, api, http.MethodPost, "/api/deals", token, map[string]interface{}{
		"name": "Free pilot", "value": 0.0, "stage": "lead",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("zero value deal: got %d, want 201 (%s)", rec.Code, rec.Body.String())
	}

	// Activity falls back to the planned status and the caller as owner.
	rec = doJSON(t, api, http.MethodPost, "/api/activities", token, map[string]interface{}{
		"subject": "Kickoff call", "contact_id": contactID, "due_date": "2026-09-01",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create activity: got %d (%s)", rec.Code, rec.Body.String())
	}
	activityBody := decodeBody(t, rec)
	if activityBody["status"] != "planned" {
		t.Fatalf("activity status = %v", activityBody["status"])
	}
	if activityBody["owner_name"] != "Ana Silva" {
		t.Fatalf("activity owner_name = %v", activityBody["owner_name"])
	}

	// Search spans deals, contacts and companies.
	rec = doJSON(t, api, http.MethodGet, "/api/search?q=acme", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("search: got %d", rec.Code)
	}
	var result struct {
		Deals     []json.RawMessage `json:"deals"`
		Contacts  []json.RawMessage `json:"contacts"`
		Companies []json.RawMessage `json:"companies"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode search: %v", err)
	}
	if len(result.Companies) != 1 || len(result.Deals) != 1 || len(result.Contacts) != 1 {
		t.Fatalf("search counts = %d/%d/%d, want 1/1/1",
			len(result.Deals), len(result.Contacts), len(result.Companies))
	}

	// Delete is idempotent only in effect: the second call is a 404.
	path := fmt.Sprintf("/api/contacts/%d", contactID)
	if rec := doJSON(t, api, http.MethodDelete, path, token, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete contact: got %d, want 204", rec.Code)
	}
	if rec := doJSON(t, api, http.MethodDelete, path, token, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("delete missing contact: got %d, want 404", rec.Code)
	}
}

func TestAPIValidation(t *testing.T) {
	api := newTestAPI(t)

	rec := doJSON(t, api, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "not-an-email", "full_name": "X", "password": "pw",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad email: got %d, want 400", rec.Code)
	}

	// Unknown payload fields are rejected rather than ignored.
	rec = doJSON(t, api, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "ok@example.com", "full_name": "X", "password": "pw", "role": "admin",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown field: got %d, want 400", rec.Code)
	}
}

func TestHealthAndMetricsAreOpen(t *testing.T) {
	api := newTestAPI(t)

	rec := doJSON(t, api, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz: got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["status"]; got != "ok" {
		t.Fatalf("healthz status = %v", got)
	}

	rec = doJSON(t, api, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "relato_") {
		t.Fatal("metrics output missing relato namespace")
	}
}

func TestCORSPreflight(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/companies", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight: got %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("allow-origin = %q", got)
	}
}
