// Package memory provides an in-memory implementation of the storage
// interfaces. It is safe for concurrent use and is primarily intended for
// tests and local development.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/relato-crm/relato/internal/app/domain/activity"
	"github.com/relato-crm/relato/internal/app/domain/company"
	"github.com/relato-crm/relato/internal/app/domain/contact"
	"github.com/relato-crm/relato/internal/app/domain/deal"
	"github.com/relato-crm/relato/internal/app/domain/user"
	"github.com/relato-crm/relato/internal/app/storage"
)

// Store is the in-memory implementation of every storage interface.
type Store struct {
	mu           sync.RWMutex
	nextID       int64
	users        map[int64]user.User
	usersByEmail map[string]int64
	companies    map[int64]company.Company
	contacts     map[int64]contact.Contact
	deals        map[int64]deal.Deal
	activities   map[int64]activity.Activity
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.CompanyStore = (*Store)(nil)
var _ storage.ContactStore = (*Store)(nil)
var _ storage.DealStore = (*Store)(nil)
var _ storage.ActivityStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextID:       1,
		users:        make(map[int64]user.User),
		usersByEmail: make(map[string]int64),
		companies:    make(map[int64]company.Company),
		contacts:     make(map[int64]contact.Contact),
		deals:        make(map[int64]deal.Deal),
		activities:   make(map[int64]activity.Activity),
	}
}

func (s *Store) nextIDLocked() int64 {
	id := s.nextID
	s.nextID++
	return id
}

// UserStore implementation ----------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(u.Email)
	if _, exists := s.usersByEmail[key]; exists {
		return user.User{}, storage.ErrDuplicateEmail
	}

	u.ID = s.nextIDLocked()
	u.CreatedAt = time.Now().UTC()
	s.users[u.ID] = u
	s.usersByEmail[key] = u.ID
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id int64) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByEmail[strings.ToLower(email)]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	return s.users[id], nil
}

// CompanyStore implementation -------------------------------------------------

func (s *Store) CreateCompany(_ context.Context, c company.Company) (company.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = s.nextIDLocked()
	c.CreatedAt = time.Now().UTC()
	s.companies[c.ID] = cloneCompany(c)
	return c, nil
}

func (s *Store) GetCompany(_ context.Context, id int64) (company.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.companies[id]
	if !ok {
		return company.Company{}, storage.ErrNotFound
	}
	return cloneCompany(c), nil
}

func (s *Store) ListCompanies(_ context.Context) ([]company.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]company.Company, 0, len(s.companies))
	for _, c := range s.companies {
		result = append(result, cloneCompany(c))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *Store) SearchCompanies(_ context.Context, query string, limit int) ([]company.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(query)
	var result []company.Company
	for _, c := range s.companies {
		if strings.Contains(strings.ToLower(c.Name), needle) {
			result = append(result, cloneCompany(c))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return capped(result, limit), nil
}

// ContactStore implementation -------------------------------------------------

func (s *Store) CreateContact(_ context.Context, c contact.Contact) (contact.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = s.nextIDLocked()
	c.CreatedAt = time.Now().UTC()
	s.contacts[c.ID] = cloneContact(c)
	return c, nil
}

func (s *Store) GetContact(_ context.Context, id int64) (contact.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contacts[id]
	if !ok {
		return contact.Contact{}, storage.ErrNotFound
	}
	return cloneContact(c), nil
}

func (s *Store) ListContacts(_ context.Context) ([]contact.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]contact.Contact, 0, len(s.contacts))
	for _, c := range s.contacts {
		result = append(result, cloneContact(c))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *Store) DeleteContact(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.contacts[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.contacts, id)
	return nil
}

func (s *Store) SearchContacts(_ context.Context, query string, limit int) ([]contact.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(query)
	var result []contact.Contact
	for _, c := range s.contacts {
		email := ""
		if c.Email != nil {
			email = *c.Email
		}
		if strings.Contains(strings.ToLower(c.FirstName), needle) ||
			strings.Contains(strings.ToLower(c.LastName), needle) ||
			strings.Contains(strings.ToLower(email), needle) {
			result = append(result, cloneContact(c))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return capped(result, limit), nil
}

// DealStore implementation ----------------------------------------------------

func (s *Store) CreateDeal(_ context.Context, d deal.Deal) (deal.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d.ID = s.nextIDLocked()
	d.CreatedAt = time.Now().UTC()
	s.deals[d.ID] = cloneDeal(d)
	return d, nil
}

func (s *Store) GetDeal(_ context.Context, id int64) (deal.Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.deals[id]
	if !ok {
		return deal.Deal{}, storage.ErrNotFound
	}
	return cloneDeal(d), nil
}

func (s *Store) ListDeals(_ context.Context) ([]deal.Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]deal.Deal, 0, len(s.deals))
	for _, d := range s.deals {
		result = append(result, cloneDeal(d))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *Store) SearchDeals(_ context.Context, query string, limit int) ([]deal.Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(query)
	var result []deal.Deal
	for _, d := range s.deals {
		if strings.Contains(strings.ToLower(d.Name), needle) {
			result = append(result, cloneDeal(d))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return capped(result, limit), nil
}

// ActivityStore implementation ------------------------------------------------

func (s *Store) CreateActivity(_ context.Context, a activity.Activity) (activity.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = s.nextIDLocked()
	a.CreatedAt = time.Now().UTC()
	s.activities[a.ID] = cloneActivity(a)
	return a, nil
}

func (s *Store) GetActivity(_ context.Context, id int64) (activity.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.activities[id]
	if !ok {
		return activity.Activity{}, storage.ErrNotFound
	}
	return cloneActivity(a), nil
}

func (s *Store) ListActivities(_ context.Context) ([]activity.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]activity.Activity, 0, len(s.activities))
	for _, a := range s.activities {
		result = append(result, cloneActivity(a))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// helpers ---------------------------------------------------------------------

func capped[T any](in []T, limit int) []T {
	if limit > 0 && len(in) > limit {
		return in[:limit]
	}
	return in
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneCompany(c company.Company) company.Company {
	c.Industry = clonePtr(c.Industry)
	c.Website = clonePtr(c.Website)
	c.Email = clonePtr(c.Email)
	c.Phone = clonePtr(c.Phone)
	c.Address = clonePtr(c.Address)
	c.City = clonePtr(c.City)
	c.Country = clonePtr(c.Country)
	c.Employees = clonePtr(c.Employees)
	c.Revenue = clonePtr(c.Revenue)
	return c
}

func cloneContact(c contact.Contact) contact.Contact {
	c.Email = clonePtr(c.Email)
	c.Phone = clonePtr(c.Phone)
	c.Position = clonePtr(c.Position)
	c.Department = clonePtr(c.Department)
	c.CompanyID = clonePtr(c.CompanyID)
	return c
}

func cloneDeal(d deal.Deal) deal.Deal {
	d.Description = clonePtr(d.Description)
	d.CloseDate = clonePtr(d.CloseDate)
	d.CompanyID = clonePtr(d.CompanyID)
	d.OwnerID = clonePtr(d.OwnerID)
	return d
}

func cloneActivity(a activity.Activity) activity.Activity {
	a.DueDate = clonePtr(a.DueDate)
	a.Notes = clonePtr(a.Notes)
	a.DealID = clonePtr(a.DealID)
	a.ContactID = clonePtr(a.ContactID)
	a.OwnerID = clonePtr(a.OwnerID)
	return a
}
