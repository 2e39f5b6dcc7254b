// Package postgres implements the storage interfaces backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/relato-crm/relato/internal/app/domain/activity"
	"github.com/relato-crm/relato/internal/app/domain/company"
	"github.com/relato-crm/relato/internal/app/domain/contact"
	"github.com/relato-crm/relato/internal/app/domain/deal"
	"github.com/relato-crm/relato/internal/app/domain/user"
	"github.com/relato-crm/relato/internal/app/storage"
)

const uniqueViolation = "23505"

// Store implements the storage interfaces using a sqlx database handle.
type Store struct {
	db *sqlx.DB
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.CompanyStore = (*Store)(nil)
var _ storage.ContactStore = (*Store)(nil)
var _ storage.DealStore = (*Store)(nil)
var _ storage.ActivityStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// --- UserStore ---------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	row := s.db.QueryRowxContext(ctx, `
		INSERT INTO users (email, full_name, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, u.Email, u.FullName, u.PasswordHash)
	if err := row.Scan(&u.ID, &u.CreatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return user.User{}, storage.ErrDuplicateEmail
		}
		return user.User{}, err
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (user.User, error) {
	var u user.User
	err := s.db.GetContext(ctx, &u, `
		SELECT id, email, full_name, password_hash, created_at
		FROM users
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return user.User{}, storage.ErrNotFound
	}
	return u, err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User
	err := s.db.GetContext(ctx, &u, `
		SELECT id, email, full_name, password_hash, created_at
		FROM users
		WHERE lower(email) = lower($1)
	`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return user.User{}, storage.ErrNotFound
	}
	return u, err
}

// --- CompanyStore ------------------------------------------------------------

func (s *Store) CreateCompany(ctx context.Context, c company.Company) (company.Company, error) {
	row := s.db.QueryRowxContext(ctx, `
		INSERT INTO companies (name, industry, website, email, phone, address, city, country, employees, revenue)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`, c.Name, c.Industry, c.Website, c.Email, c.Phone, c.Address, c.City, c.Country, c.Employees, c.Revenue)
	if err := row.Scan(&c.ID, &c.CreatedAt); err != nil {
		return company.Company{}, err
	}
	return c, nil
}

func (s *Store) GetCompany(ctx context.Context, id int64) (company.Company, error) {
	var c company.Company
	err := s.db.GetContext(ctx, &c, `
		SELECT id, name, industry, website, email, phone, address, city, country, employees, revenue, created_at
		FROM companies
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return company.Company{}, storage.ErrNotFound
	}
	return c, err
}

func (s *Store) ListCompanies(ctx context.Context) ([]company.Company, error) {
	result := []company.Company{}
	err := s.db.SelectContext(ctx, &result, `
		SELECT id, name, industry, website, email, phone, address, city, country, employees, revenue, created_at
		FROM companies
		ORDER BY id
	`)
	return result, err
}

func (s *Store) SearchCompanies(ctx context.Context, query string, limit int) ([]company.Company, error) {
	result := []company.Company{}
	err := s.db.SelectContext(ctx, &result, `
		SELECT id, name, industry, website, email, phone, address, city, country, employees, revenue, created_at
		FROM companies
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY id
		LIMIT $2
	`, query, limit)
	return result, err
}

// --- ContactStore ------------------------------------------------------------

func (s *Store) CreateContact(ctx context.Context, c contact.Contact) (contact.Contact, error) {
	row := s.db.QueryRowxContext(ctx, `
		INSERT INTO contacts (first_name, last_name, email, phone, position, department, company_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, c.FirstName, c.LastName, c.Email, c.Phone, c.Position, c.Department, c.CompanyID)
	if err := row.Scan(&c.ID, &c.CreatedAt); err != nil {
		return contact.Contact{}, err
	}
	return c, nil
}

func (s *Store) GetContact(ctx context.Context, id int64) (contact.Contact, error) {
	var c contact.Contact
	err := s.db.GetContext(ctx, &c, `
		SELECT id, first_name, last_name, email, phone, position, department, company_id, created_at
		FROM contacts
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return contact.Contact{}, storage.ErrNotFound
	}
	return c, err
}

func (s *Store) ListContacts(ctx context.Context) ([]contact.Contact, error) {
	result := []contact.Contact{}
	err := s.db.SelectContext(ctx, &result, `
		SELECT id, first_name, last_name, email, phone, position, department, company_id, created_at
		FROM contacts
		ORDER BY id
	`)
	return result, err
}

func (s *Store) DeleteContact(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) SearchContacts(ctx context.Context, query string, limit int) ([]contact.Contact, error) {
	result := []contact.Contact{}
	err := s.db.SelectContext(ctx, &result, `
		SELECT id, first_name, last_name, email, phone, position, department, company_id, created_at
		FROM contacts
		WHERE first_name ILIKE '%' || $1 || '%'
		   OR last_name ILIKE '%' || $1 || '%'
		   OR email ILIKE '%' || $1 || '%'
		ORDER BY id
		LIMIT $2
	`, query, limit)
	return result, err
}

// --- DealStore ---------------------------------------------------------------

func (s *Store) CreateDeal(ctx context.Context, d deal.Deal) (deal.Deal, error) {
	row := s.db.QueryRowxContext(ctx, `
		INSERT INTO deals (name, value, stage, probability, description, close_date, company_id, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, d.Name, d.Value, d.Stage, d.Probability, d.Description, d.CloseDate, d.CompanyID, d.OwnerID)
	if err := row.Scan(&d.ID, &d.CreatedAt); err != nil {
		return deal.Deal{}, err
	}
	return d, nil
}

func (s *Store) GetDeal(ctx context.Context, id int64) (deal.Deal, error) {
	var d deal.Deal
	err := s.db.GetContext(ctx, &d, `
		SELECT id, name, value, stage, probability, description, close_date, company_id, owner_id, created_at
		FROM deals
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return deal.Deal{}, storage.ErrNotFound
	}
	return d, err
}

func (s *Store) ListDeals(ctx context.Context) ([]deal.Deal, error) {
	result := []deal.Deal{}
	err := s.db.SelectContext(ctx, &result, `
		SELECT id, name, value, stage, probability, description, close_date, company_id, owner_id, created_at
		FROM deals
		ORDER BY id
	`)
	return result, err
}

func (s *Store) SearchDeals(ctx context.Context, query string, limit int) ([]deal.Deal, error) {
	result := []deal.Deal{}
	err := s.db.SelectContext(ctx, &result, `
		SELECT id, name, value, stage, probability, description, close_date, company_id, owner_id, created_at
		FROM deals
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY id
		LIMIT $2
	`, query, limit)
	return result, err
}

// --- ActivityStore -----------------------------------------------------------

func (s *Store) CreateActivity(ctx context.Context, a activity.Activity) (activity.Activity, error) {
	row := s.db.QueryRowxContext(ctx, `
		INSERT INTO activities (subject, status, due_date, notes, deal_id, contact_id, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, a.Subject, a.Status, a.DueDate, a.Notes, a.DealID, a.ContactID, a.OwnerID)
	if err := row.Scan(&a.ID, &a.CreatedAt); err != nil {
		return activity.Activity{}, err
	}
	return a, nil
}

func (s *Store) GetActivity(ctx context.Context, id int64) (activity.Activity, error) {
	var a activity.Activity
	err := s.db.GetContext(ctx, &a, `
		SELECT id, subject, status, due_date, notes, deal_id, contact_id, owner_id, created_at
		FROM activities
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return activity.Activity{}, storage.ErrNotFound
	}
	return a, err
}

func (s *Store) ListActivities(ctx context.Context) ([]activity.Activity, error) {
	result := []activity.Activity{}
	err := s.db.SelectContext(ctx, &result, `
		SELECT id, subject, status, due_date, notes, deal_id, contact_id, owner_id, created_at
		FROM activities
		ORDER BY id
	`)
	return result, err
}
