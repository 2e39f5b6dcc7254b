// Package activities implements activity listing and creation.
package activities

import (
	"context"
	"errors"
	"strings"

	"github.com/relato-crm/relato/internal/app/domain/activity"
	"github.com/relato-crm/relato/internal/app/domain/user"
	"github.com/relato-crm/relato/internal/app/storage"
	"github.com/relato-crm/relato/internal/app/views"
	apperrors "github.com/relato-crm/relato/internal/errors"
	"github.com/relato-crm/relato/pkg/logger"
)

// Service manages activity records.
type Service struct {
	store    storage.ActivityStore
	deals    storage.DealStore
	contacts storage.ContactStore
	users    storage.UserStore
	log      *logger.Logger
}

// New constructs an activity service.
func New(store storage.ActivityStore, deals storage.DealStore, contacts storage.ContactStore, users storage.UserStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("activities")
	}
	return &Service{store: store, deals: deals, contacts: contacts, users: users, log: log}
}

// Create inserts an activity owned by the caller unless the payload names an
// owner. Deal and contact references, when present, must resolve.
func (s *Service) Create(ctx context.Context, a activity.Activity, callerID int64) (views.Activity, error) {
	a.Subject = strings.TrimSpace(a.Subject)
	if a.Subject == "" {
		return views.Activity{}, apperrors.InvalidInput("subject is required")
	}
	if strings.TrimSpace(a.Status) == "" {
		a.Status = activity.DefaultStatus
	}

	if a.DealID != nil {
		if _, err := s.deals.GetDeal(ctx, *a.DealID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return views.Activity{}, apperrors.InvalidInput("deal not found").WithDetails("deal_id", *a.DealID)
			}
			return views.Activity{}, apperrors.Internal(err)
		}
	}
	if a.ContactID != nil {
		if _, err := s.contacts.GetContact(ctx, *a.ContactID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return views.Activity{}, apperrors.InvalidInput("contact not found").WithDetails("contact_id", *a.ContactID)
			}
			return views.Activity{}, apperrors.Internal(err)
		}
	}

	if a.OwnerID == nil {
		a.OwnerID = &callerID
	}

	created, err := s.store.CreateActivity(ctx, a)
	if err != nil {
		return views.Activity{}, apperrors.Internal(err)
	}
	s.log.WithField("activity_id", created.ID).
		WithField("owner_id", *created.OwnerID).
		Info("activity created")
	return views.NewActivity(created, s.resolveOwner(ctx, created.OwnerID)), nil
}

// List returns all activities with owner names resolved from current state.
func (s *Service) List(ctx context.Context) ([]views.Activity, error) {
	records, err := s.store.ListActivities(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	result := make([]views.Activity, 0, len(records))
	for _, a := range records {
		result = append(result, views.NewActivity(a, s.resolveOwner(ctx, a.OwnerID)))
	}
	return result, nil
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
