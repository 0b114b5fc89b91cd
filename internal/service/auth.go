// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eventlog-app/eventlog/internal/model"
	"github.com/eventlog-app/eventlog/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned on any login mismatch. It is deliberately
// generic: callers must not learn whether the email exists.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrNoSession is returned when no user is logged in.
var ErrNoSession = errors.New("no active session")

// ValidationError is a recoverable input error whose message is shown to the
// user verbatim. No mutation happens when one is returned.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationErr(msg string) error { return &ValidationError{Message: msg} }

// AuthService manages accounts and the single-slot session.
type AuthService struct {
	users    *repository.UserRepository
	sessions *repository.SessionRepository
}

// NewAuthService constructs an AuthService with its dependencies.
func NewAuthService(users *repository.UserRepository, sessions *repository.SessionRepository) *AuthService {
	return &AuthService{users: users, sessions: sessions}
}

// SignUp validates the request, appends the new account, and logs it in.
// Validation failures return *ValidationError and leave the store untouched.
func (s *AuthService) SignUp(ctx context.Context, req model.SignUpRequest) (*model.Session, error) {
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return nil, validationErr("Please complete all fields.")
	}
	if len(req.Password) < 6 {
		return nil, validationErr("Password must be at least 6 characters.")
	}
	if req.Password != req.ConfirmPassword {
		return nil, validationErr("Passwords do not match.")
	}

	_, err := s.users.FindByEmail(ctx, req.Email)
	if err == nil {
		return nil, validationErr("An account with that email already exists.")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check existing account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := model.UserAccount{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := s.users.Append(ctx, account); err != nil {
		return nil, err
	}
	return s.issueSession(ctx, account)
}

// LogIn authenticates by exact email match and password hash comparison.
// Every mismatch yields the same ErrInvalidCredentials.
func (s *AuthService) LogIn(ctx context.Context, req model.LogInRequest) (*model.Session, error) {
	if req.Email == "" || req.Password == "" {
		return nil, validationErr("Enter email and password.")
	}

	account, err := s.users.FindByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueSession(ctx, *account)
}

// LogOut clears the session unconditionally; it is idempotent.
func (s *AuthService) LogOut(ctx context.Context) error {
	return s.sessions.Clear(ctx)
}

// CurrentUser returns the logged-in account, or ErrNoSession.
func (s *AuthService) CurrentUser(ctx context.Context) (*model.UserAccount, error) {
	sess, err := s.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}
	return &sess.User, nil
}

// CurrentSession returns the stored session, or ErrNoSession.
func (s *AuthService) CurrentSession(ctx context.Context) (*model.Session, error) {
	sess, err := s.sessions.Get(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// issueSession stores a fresh session for the account, replacing any previous
// one, and returns it.
func (s *AuthService) issueSession(ctx context.Context, account model.UserAccount) (*model.Session, error) {
	sess := model.Session{
		Token:     uuid.New().String(),
		User:      account,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}
	return &sess, nil
}
