// Package app composes the CRM services with their storage dependencies.
// Business logic lives in internal/app/services; this package only wires.
package app

import (
	"github.com/relato-crm/relato/internal/app/auth"
	"github.com/relato-crm/relato/internal/app/services/activities"
	"github.com/relato-crm/relato/internal/app/services/companies"
	"github.com/relato-crm/relato/internal/app/services/contacts"
	"github.com/relato-crm/relato/internal/app/services/deals"
	"github.com/relato-crm/relato/internal/app/services/search"
	"github.com/relato-crm/relato/internal/app/services/users"
	"github.com/relato-crm/relato/internal/app/storage"
	"github.com/relato-crm/relato/internal/app/storage/memory"
	"github.com/relato-crm/relato/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Users      storage.UserStore
	Companies  storage.CompanyStore
	Contacts   storage.ContactStore
	Deals      storage.DealStore
	Activities storage.ActivityStore
}

// Application ties the domain services together.
type Application struct {
	log    *logger.Logger
	Tokens *auth.Manager

	Users      *users.Service
	Companies  *companies.Service
	Contacts   *contacts.Service
	Deals      *deals.Service
	Activities *activities.Service
	Search     *search.Service
}

// New builds a fully initialised application with the provided stores and
// token manager.
func New(stores Stores, tokens *auth.Manager, log *logger.Logger) *Application {
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Users == nil {
		stores.Users = mem
	}
	if stores.Companies == nil {
		stores.Companies = mem
	}
	if stores.Contacts == nil {
		stores.Contacts = mem
	}
	if stores.Deals == nil {
		stores.Deals = mem
	}
	if stores.Activities == nil {
		stores.Activities = mem
	}

	return &Application{
		log:        log,
		Tokens:     tokens,
		Users:      users.New(stores.Users, tokens, log),
		Companies:  companies.New(stores.Companies, log),
		Contacts:   contacts.New(stores.Contacts, stores.Companies, log),
		Deals:      deals.New(stores.Deals, stores.Companies, stores.Users, log),
		Activities: activities.New(stores.Activities, stores.Deals, stores.Contacts, stores.Users, log),
		Search:     search.New(stores.Deals, stores.Contacts, stores.Companies, stores.Users, log),
	}
}
