package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/relato-crm/relato/internal/app/domain/company"
	"github.com/relato-crm/relato/internal/app/domain/contact"
	"github.com/relato-crm/relato/internal/app/domain/deal"
	"github.com/relato-crm/relato/internal/app/domain/user"
	"github.com/relato-crm/relato/internal/app/storage"
	"github.com/relato-crm/relato/internal/platform/database"
)

func TestStoreIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping postgres integration test")
	}

	db, err := database.Open(dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db.DB); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store := New(db)
	ctx := context.Background()

	u, err := store.CreateUser(ctx, user.User{Email: "integration@example.com", FullName: "Integration", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := store.CreateUser(ctx, user.User{Email: "integration@example.com", FullName: "Dup", PasswordHash: "x"}); !errors.Is(err, storage.ErrDuplicateEmail) {
		t.Fatalf("expected duplicate email error, got %v", err)
	}
	// Uniqueness holds across case variants, same as the lookup predicate.
	if _, err := store.CreateUser(ctx, user.User{Email: "INTEGRATION@example.com", FullName: "Dup", PasswordHash: "x"}); !errors.Is(err, storage.ErrDuplicateEmail) {
		t.Fatalf("expected duplicate email error for case variant, got %v", err)
	}

	c, err := store.CreateCompany(ctx, company.Company{Name: "Acme Corp"})
	if err != nil {
		t.Fatalf("create company: %v", err)
	}

	ct, err := store.CreateContact(ctx, contact.Contact{FirstName: "Jane", LastName: "Doe", CompanyID: &c.ID})
	if err != nil {
		t.Fatalf("create contact: %v", err)
	}

	if _, err := store.CreateDeal(ctx, deal.Deal{Name: "Acme Renewal", Value: 1200, Stage: "proposal", CompanyID: &c.ID, OwnerID: &u.ID}); err != nil {
		t.Fatalf("create deal: %v", err)
	}

	deals, err := store.SearchDeals(ctx, "acme", 10)
	if err != nil {
		t.Fatalf("search deals: %v", err)
	}
	if len(deals) == 0 {
		t.Fatalf("expected at least one deal match")
	}

	if err := store.DeleteContact(ctx, ct.ID); err != nil {
		t.Fatalf("delete contact: %v", err)
	}
	if err := store.DeleteContact(ctx, ct.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found on re-delete, got %v", err)
	}
}
