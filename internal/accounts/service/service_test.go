package service

import (
	"context"
	"testing"

	"github.com/paasforest/immigrationai-sub000/internal/accounts/repository"
	"github.com/paasforest/immigrationai-sub000/platform/apperr"
	"github.com/paasforest/immigrationai-sub000/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	accounts map[string]repository.Account

	lookups []string
	created []repository.Account
}

func newFakeStore() *fakeStore {
	return &fakeStore{accounts: make(map[string]repository.Account)}
}

func (f *fakeStore) GetByEmail(_ context.Context, email string) (repository.Account, error) {
	f.lookups = append(f.lookups, email)
	if a, ok := f.accounts[email]; ok {
		return a, nil
	}
	return repository.Account{}, repository.ErrNotFound
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (repository.Account, error) {
	for _, a := range f.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return repository.Account{}, repository.ErrNotFound
}

func (f *fakeStore) Create(_ context.Context, email, name, role, passwordHash string) (repository.Account, error) {
	a := repository.Account{ID: uuid.New(), Email: email, Name: name, Role: role, PasswordHash: passwordHash}
	f.accounts[email] = a
	f.created = append(f.created, a)
	return a, nil
}

func TestResolveApplicantReusesExistingAccount(t *testing.T) {
	store := newFakeStore()
	existing := repository.Account{ID: uuid.New(), Email: "amina@example.com"}
	store.accounts["amina@example.com"] = existing
	svc := New(store, logger.New("development"))

	id, err := svc.ResolveApplicant(context.Background(), "  Amina@Example.COM ", "Amina Yusuf")
	if err != nil {
		t.Fatalf("ResolveApplicant: %v", err)
	}
	if id != existing.ID {
		t.Errorf("resolved %s, want existing account %s", id, existing.ID)
	}
	if len(store.created) != 0 {
		t.Error("existing account must not be re-provisioned")
	}
}

func TestResolveApplicantProvisionsNewAccount(t *testing.T) {
	store := newFakeStore()
	svc := New(store, logger.New("development"))

	id, err := svc.ResolveApplicant(context.Background(), "new@example.com", "New Applicant")
	if err != nil {
		t.Fatalf("ResolveApplicant: %v", err)
	}
	if len(store.created) != 1 {
		t.Fatalf("created %d accounts, want 1", len(store.created))
	}
	created := store.created[0]
	if created.ID != id {
		t.Errorf("returned %s, want provisioned account %s", id, created.ID)
	}
	if created.Role != RoleApplicant {
		t.Errorf("role = %s, want %s", created.Role, RoleApplicant)
	}
	if created.PasswordHash == "" {
		t.Error("provisioned account needs a placeholder credential")
	}
}

func TestResolveApplicantSurvivesCreateRace(t *testing.T) {
	winner := repository.Account{ID: uuid.New(), Email: "race@example.com"}
	svc := New(&racingStore{winner: winner}, logger.New("development"))

	id, err := svc.ResolveApplicant(context.Background(), "race@example.com", "Racer")
	if err != nil {
		t.Fatalf("ResolveApplicant: %v", err)
	}
	if id != winner.ID {
		t.Errorf("resolved %s, want the racing insert's account %s", id, winner.ID)
	}
}

// racingStore simulates a concurrent insert landing between lookup and
// create: the first lookup misses, the create collides, the re-lookup hits.
type racingStore struct {
	winner  repository.Account
	lookups int
}

func (r *racingStore) GetByEmail(context.Context, string) (repository.Account, error) {
	r.lookups++
	if r.lookups == 1 {
		return repository.Account{}, repository.ErrNotFound
	}
	return r.winner, nil
}

func (r *racingStore) GetByID(context.Context, uuid.UUID) (repository.Account, error) {
	return repository.Account{}, repository.ErrNotFound
}

func (r *racingStore) Create(context.Context, string, string, string, string) (repository.Account, error) {
	return repository.Account{}, repository.ErrEmailTaken
}

func TestResolveApplicantRequiresEmail(t *testing.T) {
	svc := New(newFakeStore(), logger.New("development"))

	_, err := svc.ResolveApplicant(context.Background(), "   ", "No Email")
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestGetUnknownAccount(t *testing.T) {
	svc := New(newFakeStore(), logger.New("development"))

	_, err := svc.Get(context.Background(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
