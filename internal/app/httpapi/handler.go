// Package httpapi exposes the CRM REST API.
package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	app "github.com/relato-crm/relato/internal/app"
	"github.com/relato-crm/relato/internal/app/domain/activity"
	"github.com/relato-crm/relato/internal/app/domain/company"
	"github.com/relato-crm/relato/internal/app/domain/contact"
	"github.com/relato-crm/relato/internal/app/domain/deal"
	"github.com/relato-crm/relato/internal/app/metrics"
	apperrors "github.com/relato-crm/relato/internal/errors"
	"github.com/relato-crm/relato/pkg/logger"
)

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app *app.Application
	log *logger.Logger
}

// New returns the fully assembled API handler: routes wrapped with CORS,
// request logging, metrics and bearer authentication.
func New(application *app.Application, allowedOrigins []string, log *logger.Logger) http.Handler {
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	h := &handler{app: application, log: log}

	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/register", h.register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.login).Methods(http.MethodPost)
	api.HandleFunc("/auth/me", h.me).Methods(http.MethodGet)
	api.HandleFunc("/companies", h.listCompanies).Methods(http.MethodGet)
	api.HandleFunc("/companies", h.createCompany).Methods(http.MethodPost)
	api.HandleFunc("/contacts", h.listContacts).Methods(http.MethodGet)
	api.HandleFunc("/contacts", h.createContact).Methods(http.MethodPost)
	api.HandleFunc("/contacts/{id:[0-9]+}", h.deleteContact).Methods(http.MethodDelete)
	api.HandleFunc("/deals", h.listDeals).Methods(http.MethodGet)
	api.HandleFunc("/deals", h.createDeal).Methods(http.MethodPost)
	api.HandleFunc("/activities", h.listActivities).Methods(http.MethodGet)
	api.HandleFunc("/activities", h.createActivity).Methods(http.MethodPost)
	api.HandleFunc("/search", h.search).Methods(http.MethodGet)

	router.HandleFunc("/healthz", h.healthz).Methods(http.MethodGet)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	var wrapped http.Handler = router
	wrapped = newAuthMiddleware(application.Tokens, log).Handler(wrapped)
	wrapped = metrics.InstrumentHandler(wrapped)
	wrapped = requestLogger(log)(wrapped)
	wrapped = corsMiddleware(allowedOrigins)(wrapped)
	return wrapped
}

// --- auth endpoints ----------------------------------------------------------

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		FullName string `json:"full_name"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	u, err := h.app.Users.Register(r.Context(), payload.Email, payload.FullName, payload.Password)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	metrics.RecordCreated("user")
	writeJSON(w, http.StatusCreated, u)
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	token, err := h.app.Users.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}

func (h *handler) me(w http.ResponseWriter, r *http.Request) {
	u, err := h.app.Users.WhoAmI(r.Context(), callerID(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// --- company endpoints -------------------------------------------------------

func (h *handler) listCompanies(w http.ResponseWriter, r *http.Request) {
	list, err := h.app.Companies.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) createCompany(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name      string   `json:"name"`
		Industry  *string  `json:"industry"`
		Website   *string  `json:"website"`
		Email     *string  `json:"email"`
		Phone     *string  `json:"phone"`
		Address   *string  `json:"address"`
		City      *string  `json:"city"`
		Country   *string  `json:"country"`
		Employees *int     `json:"employees"`
		Revenue   *float64 `json:"revenue"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	created, err := h.app.Companies.Create(r.Context(), company.Company{
		Name:      payload.Name,
		Industry:  payload.Industry,
		Website:   payload.Website,
		Email:     payload.Email,
		Phone:     payload.Phone,
		Address:   payload.Address,
		City:      payload.City,
		Country:   payload.Country,
		Employees: payload.Employees,
		Revenue:   payload.Revenue,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	metrics.RecordCreated("company")
	writeJSON(w, http.StatusCreated, created)
}

// --- contact endpoints -------------------------------------------------------

func (h *handler) listContacts(w http.ResponseWriter, r *http.Request) {
	list, err := h.app.Contacts.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) createContact(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		FirstName  string  `json:"first_name"`
		LastName   string  `json:"last_name"`
		Email      *string `json:"email"`
		Phone      *string `json:"phone"`
		Position   *string `json:"position"`
		Department *string `json:"department"`
		CompanyID  *int64  `json:"company_id"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	created, err := h.app.Contacts.Create(r.Context(), contact.Contact{
		FirstName:  payload.FirstName,
		LastName:   payload.LastName,
		Email:      payload.Email,
		Phone:      payload.Phone,
		Position:   payload.Position,
		Department: payload.Department,
		CompanyID:  payload.CompanyID,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	metrics.RecordCreated("contact")
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) deleteContact(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid contact id"))
		return
	}

	if err := h.app.Contacts.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- deal endpoints ----------------------------------------------------------

func (h *handler) listDeals(w http.ResponseWriter, r *http.Request) {
	list, err := h.app.Deals.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) createDeal(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name        string   `json:"name"`
		Value       *float64 `json:"value"`
		Stage       string   `json:"stage"`
		Probability int      `json:"probability"`
		Description *string  `json:"description"`
		CloseDate   *apiDate `json:"close_date"`
		CompanyID   *int64   `json:"company_id"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	// A deal without a value is malformed; an explicit zero is fine.
	if payload.Value == nil {
		h.writeServiceError(w, r, apperrors.InvalidInput("value is required"))
		return
	}

	created, err := h.app.Deals.Create(r.Context(), deal.Deal{
		Name:        payload.Name,
		Value:       *payload.Value,
		Stage:       payload.Stage,
		Probability: payload.Probability,
		Description: payload.Description,
		CloseDate:   payload.CloseDate.timePtr(),
		CompanyID:   payload.CompanyID,
	}, callerID(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	metrics.RecordCreated("deal")
	writeJSON(w, http.StatusCreated, created)
}

// --- activity endpoints ------------------------------------------------------

func (h *handler) listActivities(w http.ResponseWriter, r *http.Request) {
	list, err := h.app.Activities.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) createActivity(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Subject   string   `json:"subject"`
		Status    string   `json:"status"`
		DueDate   *apiDate `json:"due_date"`
		Notes     *string  `json:"notes"`
		DealID    *int64   `json:"deal_id"`
		ContactID *int64   `json:"contact_id"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	created, err := h.app.Activities.Create(r.Context(), activity.Activity{
		Subject:   payload.Subject,
		Status:    payload.Status,
		DueDate:   payload.DueDate.timePtr(),
		Notes:     payload.Notes,
		DealID:    payload.DealID,
		ContactID: payload.ContactID,
	}, callerID(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	metrics.RecordCreated("activity")
	writeJSON(w, http.StatusCreated, created)
}

// --- search and health -------------------------------------------------------

func (h *handler) search(w http.ResponseWriter, r *http.Request) {
	result, err := h.app.Search.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- helpers -----------------------------------------------------------------

// apiDate accepts both bare dates ("2026-08-28") and RFC 3339 timestamps in
// request payloads.
type apiDate struct {
	time.Time
}

func (d *apiDate) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return fmt.Errorf("invalid date %q", raw)
	}
	d.Time = t
	return nil
}

func (d *apiDate) timePtr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

func (h *handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.WithError(err).
			WithField("path", r.URL.Path).
			WithField("method", r.Method).
			Error("request failed")
	}
	writeError(w, status, fmt.Errorf("%s", apperrors.PublicMessage(err)))
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
