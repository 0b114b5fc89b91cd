// Package repository implements typed access to the records kept in the local
// store. Every collection lives whole under one key, so mutations are
// read-modify-write of the full list. The store enforces no integrity rules;
// invariants such as registration uniqueness belong to the service layer.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/eventlog-app/eventlog/internal/database"
	"github.com/eventlog-app/eventlog/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// UserRepository handles persistence for user accounts. The users list is
// append-only.
type UserRepository struct {
	store database.Store
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(store database.Store) *UserRepository {
	return &UserRepository{store: store}
}

// List returns all accounts in signup order.
func (r *UserRepository) List(ctx context.Context) ([]model.UserAccount, error) {
	var users []model.UserAccount
	if _, err := r.store.Get(ctx, database.KeyUsers, &users); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// FindByEmail returns the account with the exact email, or ErrNotFound.
// Matching is case-sensitive.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.UserAccount, error) {
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Email == email {
			return &users[i], nil
		}
	}
	return nil, ErrNotFound
}

// Append adds an account to the end of the users list and persists it.
func (r *UserRepository) Append(ctx context.Context, u model.UserAccount) error {
	users, err := r.List(ctx)
	if err != nil {
		return err
	}
	users = append(users, u)
	if err := r.store.Set(ctx, database.KeyUsers, users); err != nil {
		return fmt.Errorf("append user: %w", err)
	}
	return nil
}

// SessionRepository handles the single-slot authenticated session.
type SessionRepository struct {
	store database.Store
}

// NewSessionRepository constructs a SessionRepository.
func NewSessionRepository(store database.Store) *SessionRepository {
	return &SessionRepository{store: store}
}

// Get returns the current session, or ErrNotFound when nobody is logged in.
func (r *SessionRepository) Get(ctx context.Context) (*model.Session, error) {
	var sess model.Session
	ok, err := r.store.Get(ctx, database.KeyAuthUser, &sess)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if !ok || sess.Token == "" {
		return nil, ErrNotFound
	}
	return &sess, nil
}

// Put stores the session, replacing any previous one.
func (r *SessionRepository) Put(ctx context.Context, sess model.Session) error {
	if err := r.store.Set(ctx, database.KeyAuthUser, sess); err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

// Clear removes the session. Clearing an absent session is a no-op.
func (r *SessionRepository) Clear(ctx context.Context) error {
	if err := r.store.Delete(ctx, database.KeyAuthUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// EventRepository handles the events list. Events are seed data: this
// application reads them and, apart from the one-time seed, never writes.
type EventRepository struct {
	store database.Store
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(store database.Store) *EventRepository {
	return &EventRepository{store: store}
}

// List returns all events in storage order.
func (r *EventRepository) List(ctx context.Context) ([]model.Event, error) {
	var events []model.Event
	if _, err := r.store.Get(ctx, database.KeyEvents, &events); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// Seeded reports whether the events key holds any data yet.
func (r *EventRepository) Seeded(ctx context.Context) (bool, error) {
	var events []model.Event
	ok, err := r.store.Get(ctx, database.KeyEvents, &events)
	if err != nil {
		return false, fmt.Errorf("check events: %w", err)
	}
	return ok, nil
}

// Put replaces the events list. Used only by the seed process.
func (r *EventRepository) Put(ctx context.Context, events []model.Event) error {
	if err := r.store.Set(ctx, database.KeyEvents, events); err != nil {
		return fmt.Errorf("put events: %w", err)
	}
	return nil
}

// RegistrationRepository handles persistence for registrations.
type RegistrationRepository struct {
	store database.Store
}

// NewRegistrationRepository constructs a RegistrationRepository.
func NewRegistrationRepository(store database.Store) *RegistrationRepository {
	return &RegistrationRepository{store: store}
}

// List returns all registrations in insertion order.
func (r *RegistrationRepository) List(ctx context.Context) ([]model.Registration, error) {
	var regs []model.Registration
	if _, err := r.store.Get(ctx, database.KeyRegistrations, &regs); err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return regs, nil
}

// FindByEventAndEmail returns the registration matching both fields exactly,
// or ErrNotFound.
func (r *RegistrationRepository) FindByEventAndEmail(ctx context.Context, eventID int64, email string) (*model.Registration, error) {
	regs, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range regs {
		if regs[i].EventID == eventID && regs[i].Email == email {
			return &regs[i], nil
		}
	}
	return nil, ErrNotFound
}

// ListByEmail returns the registrations whose email matches exactly, in
// insertion order.
func (r *RegistrationRepository) ListByEmail(ctx context.Context, email string) ([]model.Registration, error) {
	regs, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.Registration
	for _, reg := range regs {
		if reg.Email == email {
			out = append(out, reg)
		}
	}
	return out, nil
}

// Append adds a registration to the end of the list and persists it.
func (r *RegistrationRepository) Append(ctx context.Context, reg model.Registration) error {
	regs, err := r.List(ctx)
	if err != nil {
		return err
	}
	regs = append(regs, reg)
	if err := r.store.Set(ctx, database.KeyRegistrations, regs); err != nil {
		return fmt.Errorf("append registration: %w", err)
	}
	return nil
}

// RemoveByID deletes the registration with the given id and persists the
// result. An unknown id is a silent no-op.
func (r *RegistrationRepository) RemoveByID(ctx context.Context, id int64) error {
	regs, err := r.List(ctx)
	if err != nil {
		return err
	}
	next := regs[:0]
	for _, reg := range regs {
		if reg.ID != id {
			next = append(next, reg)
		}
	}
	if len(next) == len(regs) {
		return nil
	}
	if err := r.store.Set(ctx, database.KeyRegistrations, next); err != nil {
		return fmt.Errorf("remove registration: %w", err)
	}
	return nil
}
