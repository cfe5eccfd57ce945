// Package service holds the authentication flow: registration and login on
// top of the user store, the password hasher and the token service.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/altera-oes/backend/internal/logging"
	"github.com/altera-oes/backend/internal/model"
	"github.com/altera-oes/backend/internal/repository"
	"github.com/altera-oes/backend/internal/utils"
)

// UserStore is the persistence the auth flow needs. Create must enforce
// email uniqueness and report violations as repository.ErrEmailExists;
// GetByEmail reports a missing user as sql.ErrNoRows.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
}

// AttemptRecorder counts auth attempts by event and outcome.
type AttemptRecorder interface {
	RecordAuthAttempt(event, outcome string)
}

type RegisterResult struct {
	User  model.User
	Token utils.AccessToken
}

type AuthService struct {
	users    UserStore
	tokens   *utils.TokenService
	cost     int
	log      logging.Logger
	recorder AttemptRecorder
}

// NewAuthService wires the flow. recorder may be nil.
func NewAuthService(users UserStore, tokens *utils.TokenService, bcryptCost int, log logging.Logger, recorder AttemptRecorder) *AuthService {
	return &AuthService{users: users, tokens: tokens, cost: bcryptCost, log: log.With("component", "auth"), recorder: recorder}
}

// Register creates a user and issues its first access token.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (RegisterResult, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		s.record("register", "invalid")
		return RegisterResult{}, ErrValidation
	}

	hash, err := utils.HashPassword(password, s.cost)
	if err != nil {
		s.record("register", "error")
		return RegisterResult{}, fmt.Errorf("hash password: %w", err)
	}

	u := model.User{Name: name, Email: email, PasswordHash: hash}
	if err := s.users.Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			s.record("register", "duplicate")
			s.log.Info(ctx, "registration rejected", "reason", "duplicate_email")
			return RegisterResult{}, ErrDuplicateEmail
		}
		s.record("register", "error")
		return RegisterResult{}, fmt.Errorf("%w: %w", ErrStore, err)
	}

	tok, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		s.record("register", "error")
		return RegisterResult{}, fmt.Errorf("issue token: %w", err)
	}

	s.record("register", "ok")
	s.log.Info(ctx, "user registered", "user_id", u.ID)
	return RegisterResult{User: u, Token: tok}, nil
}

// Login checks the credentials and issues a fresh access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (utils.AccessToken, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		s.record("login", "invalid")
		return utils.AccessToken{}, ErrValidation
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.record("login", "user_not_found")
			s.log.Info(ctx, "login rejected", "reason", "user_not_found")
			return utils.AccessToken{}, ErrUserNotFound
		}
		s.record("login", "error")
		return utils.AccessToken{}, fmt.Errorf("%w: %w", ErrStore, err)
	}

	ok, err := utils.VerifyPassword(u.PasswordHash, password)
	if err != nil {
		s.record("login", "error")
		s.log.Error(ctx, "stored password hash unreadable", "user_id", u.ID, "err", err)
		return utils.AccessToken{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.record("login", "invalid_password")
		s.log.Info(ctx, "login rejected", "reason", "invalid_password", "user_id", u.ID)
		return utils.AccessToken{}, ErrInvalidPassword
	}

	tok, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		s.record("login", "error")
		return utils.AccessToken{}, fmt.Errorf("issue token: %w", err)
	}
	s.record("login", "ok")
	return tok, nil
}

func (s *AuthService) record(event, outcome string) {
	if s.recorder != nil {
		s.recorder.RecordAuthAttempt(event, outcome)
	}
}
