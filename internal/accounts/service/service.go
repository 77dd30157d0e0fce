// Package service implements account lookup and lazy provisioning for
// applicants reaching the system through the intake form.
package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/paasforest/immigrationai-sub000/internal/accounts/repository"
	"github.com/paasforest/immigrationai-sub000/platform/apperr"
	"github.com/paasforest/immigrationai-sub000/platform/logger"
)

// RoleApplicant is the role stamped on accounts provisioned from intake.
const RoleApplicant = "applicant"

// Store is the persistence contract for accounts.
type Store interface {
	GetByEmail(ctx context.Context, email string) (repository.Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Account, error)
	Create(ctx context.Context, email, name, role, passwordHash string) (repository.Account, error)
}

// Service manages account provisioning.
type Service struct {
	store Store
	log   *logger.Logger
}

// New creates the account service.
func New(store Store, log *logger.Logger) *Service {
	return &Service{store: store, log: log}
}

// ResolveApplicant returns the account id for the applicant email, creating
// the account on first sight. Provisioned accounts get an unguessable
// placeholder credential; the applicant sets a real password through the
// reset flow in their welcome email.
func (s *Service) ResolveApplicant(ctx context.Context, email, name string) (uuid.UUID, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return uuid.Nil, apperr.Validation("applicant email is required")
	}

	existing, err := s.store.GetByEmail(ctx, email)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return uuid.Nil, fmt.Errorf("lookup applicant account: %w", err)
	}

	hash, err := randomCredentialHash()
	if err != nil {
		return uuid.Nil, fmt.Errorf("provision applicant credential: %w", err)
	}

	created, err := s.store.Create(ctx, email, name, RoleApplicant, hash)
	if errors.Is(err, repository.ErrEmailTaken) {
		// Concurrent intake for the same email; the other insert won.
		existing, err := s.store.GetByEmail(ctx, email)
		if err != nil {
			return uuid.Nil, fmt.Errorf("lookup applicant account after race: %w", err)
		}
		return existing.ID, nil
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("create applicant account: %w", err)
	}

	s.log.Info("applicant account provisioned", "account_id", created.ID.String())
	return created.ID, nil
}

// Get returns the account by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (repository.Account, error) {
	a, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Account{}, apperr.NotFound("account not found")
	}
	if err != nil {
		return repository.Account{}, apperr.Wrap(apperr.KindInternal, "account store failure", err)
	}
	return a, nil
}

func randomCredentialHash() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	secret := base64.RawURLEncoding.EncodeToString(buf)
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
