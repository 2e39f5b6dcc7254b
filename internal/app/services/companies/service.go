// Package companies implements company listing and creation.
package companies

import (
	"context"
	"strings"

	"github.com/relato-crm/relato/internal/app/domain/company"
	"github.com/relato-crm/relato/internal/app/storage"
	"github.com/relato-crm/relato/internal/app/views"
	apperrors "github.com/relato-crm/relato/internal/errors"
	"github.com/relato-crm/relato/pkg/logger"
)

// Service manages company records.
type Service struct {
	store storage.CompanyStore
	log   *logger.Logger
}

// New constructs a company service.
func New(store storage.CompanyStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("companies")
	}
	return &Service{store: store, log: log}
}

// Create inserts a company. Only the name is required.
func (s *Service) Create(ctx context.Context, c company.Company) (views.Company, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return views.Company{}, apperrors.InvalidInput("name is required")
	}

	created, err := s.store.CreateCompany(ctx, c)
	if err != nil {
		return views.Company{}, apperrors.Internal(err)
	}
	s.log.WithField("company_id", created.ID).Info("company created")
	return views.NewCompany(created), nil
}

// List returns all companies in insertion order.
func (s *Service) List(ctx context.Context) ([]views.Company, error) {
	records, err := s.store.ListCompanies(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	result := make([]views.Company, 0, len(records))
	for _, c := range records {
		result = append(result, views.NewCompany(c))
	}
	return result, nil
}
