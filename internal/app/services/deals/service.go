// Package deals implements deal listing and creation with denormalized
// company and owner names on every response.
package deals

import (
	"context"
	"errors"
	"strings"

	"github.com/relato-crm/relato/internal/app/domain/company"
	"github.com/relato-crm/relato/internal/app/domain/deal"
	"github.com/relato-crm/relato/internal/app/domain/user"
	"github.com/relato-crm/relato/internal/app/storage"
	"github.com/relato-crm/relato/internal/app/views"
	apperrors "github.com/relato-crm/relato/internal/errors"
	"github.com/relato-crm/relato/pkg/logger"
)

// Service manages deal records.
type Service struct {
	store     storage.DealStore
	companies storage.CompanyStore
	users     storage.UserStore
	log       *logger.Logger
}

// New constructs a deal service.
func New(store storage.DealStore, companies storage.CompanyStore, users storage.UserStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("deals")
	}
	return &Service{store: store, companies: companies, users: users, log: log}
}

// Create inserts a deal owned by the caller unless the payload names an
// owner explicitly. A company reference, when present, must resolve.
func (s *Service) Create(ctx context.Context, d deal.Deal, callerID int64) (views.Deal, error) {
	d.Name = strings.TrimSpace(d.Name)
	d.Stage = strings.TrimSpace(d.Stage)
	if d.Name == "" {
		return views.Deal{}, apperrors.InvalidInput("name is required")
	}
	if d.Stage == "" {
		return views.Deal{}, apperrors.InvalidInput("stage is required")
	}
	if d.Value < 0 {
		return views.Deal{}, apperrors.InvalidInput("value must not be negative")
	}
	if d.Probability < 0 || d.Probability > 100 {
		return views.Deal{}, apperrors.InvalidInput("probability must be between 0 and 100")
	}

	if d.CompanyID != nil {
		if _, err := s.companies.GetCompany(ctx, *d.CompanyID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return views.Deal{}, apperrors.InvalidInput("company not found").WithDetails("company_id", *d.CompanyID)
			}
			return views.Deal{}, apperrors.Internal(err)
		}
	}

	if d.OwnerID == nil {
		d.OwnerID = &callerID
	}

	created, err := s.store.CreateDeal(ctx, d)
	if err != nil {
		return views.Deal{}, apperrors.Internal(err)
	}
	s.log.WithField("deal_id", created.ID).
		WithField("owner_id", *created.OwnerID).
		Info("deal created")
	return s.assemble(ctx, created), nil
}

// List returns all deals with company and owner names resolved from current
// state.
func (s *Service) List(ctx context.Context) ([]views.Deal, error) {
	records, err := s.store.ListDeals(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	result := make([]views.Deal, 0, len(records))
	for _, d := range records {
		result = append(result, s.assemble(ctx, d))
	}
	return result, nil
}

func (s *Service) assemble(ctx context.Context, d deal.Deal) views.Deal {
	return views.NewDeal(d, s.resolveCompany(ctx, d.CompanyID), s.resolveOwner(ctx, d.OwnerID))
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
