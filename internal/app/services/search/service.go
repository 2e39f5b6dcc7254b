// Package search implements the global free-text search across deals,
// contacts and companies.
package search

import (
	"context"

	"github.com/relato-crm/relato/internal/app/domain/company"
	"github.com/relato-crm/relato/internal/app/domain/user"
	"github.com/relato-crm/relato/internal/app/storage"
	"github.com/relato-crm/relato/internal/app/views"
	apperrors "github.com/relato-crm/relato/internal/errors"
	"github.com/relato-crm/relato/pkg/logger"
)

// maxResults caps each result category independently.
const maxResults = 10

// Service runs case-insensitive substring searches across the three
// searchable entity types. Results within a category are ordered by id
// ascending (insertion order); an empty query matches every row up to the
// cap.
type Service struct {
	deals     storage.DealStore
	contacts  storage.ContactStore
	companies storage.CompanyStore
	users     storage.UserStore
	log       *logger.Logger
}

// New constructs a search service.
func New(deals storage.DealStore, contacts storage.ContactStore, companies storage.CompanyStore, users storage.UserStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("search")
	}
	return &Service{deals: deals, contacts: contacts, companies: companies, users: users, log: log}
}

// Search matches the query independently against deal names, contact
// first/last names and emails, and company names. Each category is capped at
// maxResults and assembled through the view rules of its entity.
func (s *Service) Search(ctx context.Context, query string) (views.SearchResult, error) {
	result := views.SearchResult{
		Deals:     []views.Deal{},
		Contacts:  []views.Contact{},
		Companies: []views.Company{},
	}

	deals, err := s.deals.SearchDeals(ctx, query, maxResults)
	if err != nil {
		return views.SearchResult{}, apperrors.Internal(err)
	}
	for _, d := range deals {
		result.Deals = append(result.Deals, views.NewDeal(d, s.resolveCompany(ctx, d.CompanyID), s.resolveOwner(ctx, d.OwnerID)))
	}

	contacts, err := s.contacts.SearchContacts(ctx, query, maxResults)
	if err != nil {
		return views.SearchResult{}, apperrors.Internal(err)
	}
	for _, c := range contacts {
		result.Contacts = append(result.Contacts, views.NewContact(c, s.resolveCompany(ctx, c.CompanyID)))
	}

	companies, err := s.companies.SearchCompanies(ctx, query, maxResults)
	if err != nil {
		return views.SearchResult{}, apperrors.Internal(err)
	}
	for _, c := range companies {
		result.Companies = append(result.Companies, views.NewCompany(c))
	}

	return result, nil
}

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

func (s *Service) resolveOwner(ctx context.Context, id *int64) *user.User {
	if id == nil {
		return nil
	}
	u, err := s.users.GetUser(ctx, *id)
	if err != nil {
		return nil
	}
	return &u
}
