// Package users implements registration, login and the current-user lookup.
package users

import (
	"context"
	"errors"
	"strings"

	"github.com/relato-crm/relato/internal/app/auth"
	"github.com/relato-crm/relato/internal/app/domain/user"
	"github.com/relato-crm/relato/internal/app/storage"
	"github.com/relato-crm/relato/internal/app/views"
	apperrors "github.com/relato-crm/relato/internal/errors"
	"github.com/relato-crm/relato/pkg/logger"
)

// loginFailedMessage is shared by the unknown-email and wrong-password paths
// so login errors cannot be used to enumerate accounts.
const loginFailedMessage = "incorrect email or password"

// Service handles user accounts and credential verification.
type Service struct {
	store  storage.UserStore
	tokens *auth.Manager
	log    *logger.Logger
}

// New constructs a user service.
func New(store storage.UserStore, tokens *auth.Manager, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("users")
	}
	return &Service{store: store, tokens: tokens, log: log}
}

// Register creates an account with a hashed password. A duplicate email
// yields a Conflict error; the store enforces uniqueness atomically at
// insert time.
func (s *Service) Register(ctx context.Context, email, fullName, password string) (views.User, error) {
	email = strings.TrimSpace(email)
	fullName = strings.TrimSpace(fullName)

	if email == "" || !strings.Contains(email, "@") {
		return views.User{}, apperrors.InvalidInput("a valid email is required")
	}
	if fullName == "" {
		return views.User{}, apperrors.InvalidInput("full_name is required")
	}
	if password == "" {
		return views.User{}, apperrors.InvalidInput("password is required")
	}

	hash, err := s.tokens.HashPassword(password)
	if err != nil {
		return views.User{}, apperrors.Internal(err)
	}

	created, err := s.store.CreateUser(ctx, user.User{Email: email, FullName: fullName, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateEmail) {
			return views.User{}, apperrors.Conflict("user already exists")
		}
		return views.User{}, apperrors.Internal(err)
	}

	s.log.WithField("user_id", created.ID).Info("user registered")
	return views.NewUser(created), nil
}

// Login verifies credentials and issues a bearer token. Unknown email and
// wrong password produce the identical Unauthenticated error.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.store.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", apperrors.Unauthorized(loginFailedMessage)
		}
		return "", apperrors.Internal(err)
	}
	if !s.tokens.CheckPassword(u.PasswordHash, password) {
		return "", apperrors.Unauthorized(loginFailedMessage)
	}

	token, err := s.tokens.IssueToken(u.ID)
	if err != nil {
		return "", apperrors.Internal(err)
	}
	s.log.WithField("user_id", u.ID).Info("user logged in")
	return token, nil
}

// WhoAmI returns the caller's own account view.
func (s *Service) WhoAmI(ctx context.Context, userID int64) (views.User, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// The token outlived the account.
			return views.User{}, apperrors.Unauthorized("unknown user")
		}
		return views.User{}, apperrors.Internal(err)
	}
	return views.NewUser(u), nil
}
