package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eventlog-app/eventlog/internal/model"
	"github.com/eventlog-app/eventlog/internal/repository"
)

// ErrAlreadyRegistered is returned when the same email registers twice for
// one event. The existing registration is returned alongside it.
var ErrAlreadyRegistered = errors.New("already registered for this event")

// RegistrationService enforces the one-registration-per-(event, user)
// invariant the store itself cannot.
type RegistrationService struct {
	registrations *repository.RegistrationRepository
}

// NewRegistrationService constructs a RegistrationService.
func NewRegistrationService(registrations *repository.RegistrationRepository) *RegistrationService {
	return &RegistrationService{registrations: registrations}
}

// Register creates a registration for the event. A second call with the same
// (eventID, email) writes nothing and returns the existing record with
// ErrAlreadyRegistered.
func (s *RegistrationService) Register(ctx context.Context, email, name string, eventID int64) (*model.Registration, error) {
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if name == "" {
		name = email
	}

	existing, err := s.registrations.FindByEventAndEmail(ctx, eventID, email)
	if err == nil {
		return existing, ErrAlreadyRegistered
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	all, err := s.registrations.List(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	reg := model.Registration{
		ID:        nextID(all, now.UnixMilli()),
		EventID:   eventID,
		Email:     email,
		Name:      name,
		Timestamp: now.UTC().Format(time.RFC3339),
	}
	if err := s.registrations.Append(ctx, reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Unregister removes the registration with the given id. Unknown ids are a
// silent no-op.
func (s *RegistrationService) Unregister(ctx context.Context, id int64) error {
	return s.registrations.RemoveByID(ctx, id)
}

// ListForUser returns the user's registrations in insertion order.
func (s *RegistrationService) ListForUser(ctx context.Context, email string) ([]model.Registration, error) {
	return s.registrations.ListByEmail(ctx, email)
}

// nextID derives a registration id from the creation time, bumping past any
// id already in use so ids stay distinct even within one millisecond.
func nextID(existing []model.Registration, candidate int64) int64 {
	used := make(map[int64]bool, len(existing))
	for _, reg := range existing {
		used[reg.ID] = true
	}
	for used[candidate] {
		candidate++
	}
	return candidate
}
