// Package views builds API response shapes from domain entities. Assembly is
// a pure function of the entity and its store-resolved relations; the
// denormalized display names are never persisted, so they always reflect the
// related row's current state. A missing relation simply omits the field.
package views

import (
	"time"

	"github.com/relato-crm/relato/internal/app/domain/activity"
	"github.com/relato-crm/relato/internal/app/domain/company"
	"github.com/relato-crm/relato/internal/app/domain/contact"
	"github.com/relato-crm/relato/internal/app/domain/deal"
	"github.com/relato-crm/relato/internal/app/domain/user"
)

// User is the public shape of an account. The password hash is never part
// of it.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Company mirrors the stored entity; companies carry no denormalized fields.
type Company struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Industry  *string   `json:"industry,omitempty"`
	Website   *string   `json:"website,omitempty"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Address   *string   `json:"address,omitempty"`
	City      *string   `json:"city,omitempty"`
	Country   *string   `json:"country,omitempty"`
	Employees *int      `json:"employees,omitempty"`
	Revenue   *float64  `json:"revenue,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Contact adds the owning company's name when the company resolves.
type Contact struct {
	ID          int64     `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       *string   `json:"email,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	Position    *string   `json:"position,omitempty"`
	Department  *string   `json:"department,omitempty"`
	CompanyID   *int64    `json:"company_id,omitempty"`
	CompanyName *string   `json:"company_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Deal adds the company name and the owner's full name when they resolve.
type Deal struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Value       float64    `json:"value"`
	Stage       string     `json:"stage"`
	Probability int        `json:"probability"`
	Description *string    `json:"description,omitempty"`
	CloseDate   *time.Time `json:"close_date,omitempty"`
	CompanyID   *int64     `json:"company_id,omitempty"`
	OwnerID     *int64     `json:"owner_id,omitempty"`
	CompanyName *string    `json:"company_name,omitempty"`
	OwnerName   *string    `json:"owner_name,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Activity adds the owner's full name when the owner resolves.
type Activity struct {
	ID        int64      `json:"id"`
	Subject   string     `json:"subject"`
	Status    string     `json:"status"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
	DealID    *int64     `json:"deal_id,omitempty"`
	ContactID *int64     `json:"contact_id,omitempty"`
	OwnerID   *int64     `json:"owner_id,omitempty"`
	OwnerName *string    `json:"owner_name,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// SearchResult groups the three independently matched categories.
type SearchResult struct {
	Deals     []Deal    `json:"deals"`
	Contacts  []Contact `json:"contacts"`
	Companies []Company `json:"companies"`
}

// NewUser strips the password hash from an account.
func NewUser(u user.User) User {
	return User{ID: u.ID, Email: u.Email, FullName: u.FullName, CreatedAt: u.CreatedAt}
}

// NewCompany copies the entity's own fields.
func NewCompany(c company.Company) Company {
	return Company{
		ID:        c.ID,
		Name:      c.Name,
		Industry:  c.Industry,
		Website:   c.Website,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		City:      c.City,
		Country:   c.Country,
		Employees: c.Employees,
		Revenue:   c.Revenue,
		CreatedAt: c.CreatedAt,
	}
}

// NewContact assembles a contact view; comp may be nil when the contact has
// no company or the reference no longer resolves.
func NewContact(c contact.Contact, comp *company.Company) Contact {
	view := Contact{
		ID:         c.ID,
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		Email:      c.Email,
		Phone:      c.Phone,
		Position:   c.Position,
		Department: c.Department,
		CompanyID:  c.CompanyID,
		CreatedAt:  c.CreatedAt,
	}
	if comp != nil {
		view.CompanyName = &comp.Name
	}
	return view
}

// NewDeal assembles a deal view; comp and owner may each be nil.
func NewDeal(d deal.Deal, comp *company.Company, owner *user.User) Deal {
	view := Deal{
		ID:          d.ID,
		Name:        d.Name,
		Value:       d.Value,
		Stage:       d.Stage,
		Probability: d.Probability,
		Description: d.Description,
		CloseDate:   d.CloseDate,
		CompanyID:   d.CompanyID,
		OwnerID:     d.OwnerID,
		CreatedAt:   d.CreatedAt,
	}
	if comp != nil {
		view.CompanyName = &comp.Name
	}
	if owner != nil {
		view.OwnerName = &owner.FullName
	}
	return view
}

// NewActivity assembles an activity view; owner may be nil.
func NewActivity(a activity.Activity, owner *user.User) Activity {
	view := Activity{
		ID:        a.ID,
		Subject:   a.Subject,
		Status:    a.Status,
		DueDate:   a.DueDate,
		Notes:     a.Notes,
		DealID:    a.DealID,
		ContactID: a.ContactID,
		OwnerID:   a.OwnerID,
		CreatedAt: a.CreatedAt,
	}
	if owner != nil {
		view.OwnerName = &owner.FullName
	}
	return view
}
