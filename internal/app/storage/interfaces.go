// Package storage defines persistence interfaces for the CRM entities. Both
// the in-memory and PostgreSQL implementations translate their native
// failures into the sentinel errors below so services stay backend-agnostic.
package storage

import (
	"context"
	"errors"

	"github.com/relato-crm/relato/internal/app/domain/activity"
	"github.com/relato-crm/relato/internal/app/domain/company"
	"github.com/relato-crm/relato/internal/app/domain/contact"
	"github.com/relato-crm/relato/internal/app/domain/deal"
	"github.com/relato-crm/relato/internal/app/domain/user"
)

// ErrNotFound reports an absent record for lookups and deletes by id.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateEmail reports a violation of the user email uniqueness
// constraint. The constraint is enforced atomically at insert time by the
// store, never by a check-then-insert in application code.
var ErrDuplicateEmail = errors.New("email already registered")

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	GetUser(ctx context.Context, id int64) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
}

// CompanyStore persists companies.
type CompanyStore interface {
	CreateCompany(ctx context.Context, c company.Company) (company.Company, error)
	GetCompany(ctx context.Context, id int64) (company.Company, error)
	ListCompanies(ctx context.Context) ([]company.Company, error)
	// SearchCompanies matches name case-insensitively by substring, ordered
	// by id ascending, capped at limit.
	SearchCompanies(ctx context.Context, query string, limit int) ([]company.Company, error)
}

// ContactStore persists contacts.
type ContactStore interface {
	CreateContact(ctx context.Context, c contact.Contact) (contact.Contact, error)
	GetContact(ctx context.Context, id int64) (contact.Contact, error)
	ListContacts(ctx context.Context) ([]contact.Contact, error)
	DeleteContact(ctx context.Context, id int64) error
	// SearchContacts matches first name, last name or email.
	SearchContacts(ctx context.Context, query string, limit int) ([]contact.Contact, error)
}

// DealStore persists deals.
type DealStore interface {
	CreateDeal(ctx context.Context, d deal.Deal) (deal.Deal, error)
	GetDeal(ctx context.Context, id int64) (deal.Deal, error)
	ListDeals(ctx context.Context) ([]deal.Deal, error)
	// SearchDeals matches the deal name.
	SearchDeals(ctx context.Context, query string, limit int) ([]deal.Deal, error)
}

// ActivityStore persists activities.
type ActivityStore interface {
	CreateActivity(ctx context.Context, a activity.Activity) (activity.Activity, error)
	GetActivity(ctx context.Context, id int64) (activity.Activity, error)
	ListActivities(ctx context.Context) ([]activity.Activity, error)
}
