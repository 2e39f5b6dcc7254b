// Package contacts implements contact listing, creation and deletion.
package contacts

import (
	"context"
	"errors"
	"strings"

	"github.com/relato-crm/relato/internal/app/domain/company"
	"github.com/relato-crm/relato/internal/app/domain/contact"
	"github.com/relato-crm/relato/internal/app/storage"
	"github.com/relato-crm/relato/internal/app/views"
	apperrors "github.com/relato-crm/relato/internal/errors"
	"github.com/relato-crm/relato/pkg/logger"
)

// Service manages contact records.
type Service struct {
	store     storage.ContactStore
	companies storage.CompanyStore
	log       *logger.Logger
}

// New constructs a contact service.
func New(store storage.ContactStore, companies storage.CompanyStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("contacts")
	}
	return &Service{store: store, companies: companies, log: log}
}

// Create inserts a contact. A company reference, when present, must name an
// existing company.
func (s *Service) Create(ctx context.Context, c contact.Contact) (views.Contact, error) {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	if c.FirstName == "" || c.LastName == "" {
		return views.Contact{}, apperrors.InvalidInput("first_name and last_name are required")
	}

	if c.CompanyID != nil {
		if _, err := s.companies.GetCompany(ctx, *c.CompanyID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return views.Contact{}, apperrors.InvalidInput("company not found").WithDetails("company_id", *c.CompanyID)
			}
			return views.Contact{}, apperrors.Internal(err)
		}
	}

	created, err := s.store.CreateContact(ctx, c)
	if err != nil {
		return views.Contact{}, apperrors.Internal(err)
	}
	s.log.WithField("contact_id", created.ID).Info("contact created")
	return views.NewContact(created, s.resolveCompany(ctx, created.CompanyID)), nil
}

// List returns all contacts with company names resolved from current state.
func (s *Service) List(ctx context.Context) ([]views.Contact, error) {
	records, err := s.store.ListContacts(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	result := make([]views.Contact, 0, len(records))
	for _, c := range records {
		result = append(result, views.NewContact(c, s.resolveCompany(ctx, c.CompanyID)))
	}
	return result, nil
}

// Delete removes a contact by id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteContact(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.NotFound("contact not found")
		}
		return apperrors.Internal(err)
	}
	s.log.WithField("contact_id", id).Info("contact deleted")
	return nil
}

// resolveCompany returns nil when the reference is absent or dangling, so
// the view omits the name instead of failing.
func (s *Service) resolveCompany(ctx context.Context, id *int64) *company.Company {
	if id == nil {
		return nil
	}
	c, err := s.companies.GetCompany(ctx, *id)
	if err != nil {
		return nil
	}
	return &c
}
