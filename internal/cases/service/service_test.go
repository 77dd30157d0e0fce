package service

import (
	"context"
	"errors"
	"testing"

	"github.com/paasforest/immigrationai-sub000/internal/cases/repository"
	"github.com/paasforest/immigrationai-sub000/internal/events"
	"github.com/paasforest/immigrationai-sub000/platform/apperr"
	"github.com/paasforest/immigrationai-sub000/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	lead       repository.LeadForConversion
	leadErr    error
	provider   repository.ProviderContact
	existing   repository.Case
	existErr   error
	takenRefs  map[string]bool
	createErrs []error

	created []repository.CreateCaseParams
}

func (f *fakeStore) GetLeadForConversion(context.Context, uuid.UUID) (repository.LeadForConversion, error) {
	return f.lead, f.leadErr
}

func (f *fakeStore) GetProviderContact(context.Context, uuid.UUID) (repository.ProviderContact, error) {
	return f.provider, nil
}

func (f *fakeStore) GetCaseByLead(context.Context, uuid.UUID) (repository.Case, error) {
	if f.existErr != nil {
		return repository.Case{}, f.existErr
	}
	return f.existing, nil
}

func (f *fakeStore) ReferenceExists(_ context.Context, ref string) (bool, error) {
	return f.takenRefs[ref], nil
}

func (f *fakeStore) CreateCaseConvertLead(_ context.Context, params repository.CreateCaseParams) (repository.Case, error) {
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return repository.Case{}, err
		}
	}
	f.created = append(f.created, params)
	return repository.Case{
		ID:        uuid.New(),
		Reference: params.Reference,
		LeadID:    params.LeadID,
		Priority:  params.Priority,
		Status:    "open",
	}, nil
}

func (f *fakeStore) ListByProvider(context.Context, uuid.UUID) ([]repository.Case, error) {
	return nil, nil
}

func (f *fakeStore) GetForProvider(context.Context, uuid.UUID, uuid.UUID) (repository.Case, error) {
	return repository.Case{}, repository.ErrNotFound
}

type fakeAccounts struct {
	id    uuid.UUID
	err   error
	calls int
}

func (f *fakeAccounts) ResolveApplicant(context.Context, string, string) (uuid.UUID, error) {
	f.calls++
	return f.id, f.err
}

// seqRefs hands out references from a fixed list, wrapping on exhaustion.
type seqRefs struct {
	refs []string
	next int
}

func (g *seqRefs) Generate() string {
	ref := g.refs[g.next%len(g.refs)]
	g.next++
	return ref
}

type fakeBus struct {
	published []events.Event
}

func (f *fakeBus) Publish(_ context.Context, e events.Event) { f.published = append(f.published, e) }
func (f *fakeBus) PublishSync(_ context.Context, e events.Event) error {
	f.published = append(f.published, e)
	return nil
}
func (f *fakeBus) Subscribe(string, events.Handler) {}

func orgID() *uuid.UUID {
	id := uuid.New()
	return &id
}

func acceptedLead() repository.LeadForConversion {
	return repository.LeadForConversion{
		ID:             uuid.New(),
		Status:         "assigned",
		ApplicantName:  "Amina Yusuf",
		ApplicantEmail: "amina@example.com",
		Urgency:        "standard",
	}
}

func newService(store *fakeStore, accounts *fakeAccounts, refs *seqRefs, bus *fakeBus) *Service {
	if refs == nil {
		refs = &seqRefs{refs: []string{"IMM-2026-AAAAAA"}}
	}
	return New(store, accounts, refs, bus, logger.New("development"))
}

func TestConvertCreatesCase(t *testing.T) {
	store := &fakeStore{lead: acceptedLead(), provider: repository.ProviderContact{OrganizationID: orgID()}}
	accounts := &fakeAccounts{id: uuid.New()}
	bus := &fakeBus{}
	svc := newService(store, accounts, nil, bus)

	converted, err := svc.Convert(context.Background(), store.lead.ID, uuid.New())
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if converted.Reference != "IMM-2026-AAAAAA" {
		t.Errorf("reference = %s", converted.Reference)
	}
	if len(store.created) != 1 {
		t.Fatalf("created %d cases, want 1", len(store.created))
	}
	if store.created[0].ApplicantAccountID != accounts.id {
		t.Error("case should be owned by the resolved applicant account")
	}
	if store.created[0].Priority != "normal" {
		t.Errorf("priority = %s, want normal", store.created[0].Priority)
	}
	if len(bus.published) != 1 || bus.published[0].EventName() != (events.LeadConverted{}).EventName() {
		t.Errorf("expected one lead converted event, got %v", bus.published)
	}
}

func TestConvertIsIdempotentForConvertedLead(t *testing.T) {
	lead := acceptedLead()
	lead.Status = "converted"
	existing := repository.Case{ID: uuid.New(), Reference: "IMM-2026-ZZZZZZ"}
	store := &fakeStore{lead: lead, existing: existing}
	accounts := &fakeAccounts{}
	svc := newService(store, accounts, nil, &fakeBus{})

	converted, err := svc.Convert(context.Background(), lead.ID, uuid.New())
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if converted.CaseID != existing.ID || converted.Reference != existing.Reference {
		t.Errorf("got %+v, want the existing case back", converted)
	}
	if accounts.calls != 0 {
		t.Error("idempotent replay must not touch accounts")
	}
	if len(store.created) != 0 {
		t.Error("idempotent replay must not create a second case")
	}
}

func TestConvertRequiresProviderOrganization(t *testing.T) {
	store := &fakeStore{lead: acceptedLead(), provider: repository.ProviderContact{}}
	svc := newService(store, &fakeAccounts{}, nil, &fakeBus{})

	_, err := svc.Convert(context.Background(), store.lead.ID, uuid.New())
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("expected validation error for org-less provider, got %v", err)
	}
}

func TestConvertRetriesTakenReference(t *testing.T) {
	store := &fakeStore{
		lead:      acceptedLead(),
		provider:  repository.ProviderContact{OrganizationID: orgID()},
		takenRefs: map[string]bool{"IMM-2026-AAAAAA": true},
	}
	refs := &seqRefs{refs: []string{"IMM-2026-AAAAAA", "IMM-2026-BBBBBB"}}
	svc := newService(store, &fakeAccounts{id: uuid.New()}, refs, &fakeBus{})

	converted, err := svc.Convert(context.Background(), store.lead.ID, uuid.New())
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if converted.Reference != "IMM-2026-BBBBBB" {
		t.Errorf("reference = %s, want the second candidate", converted.Reference)
	}
}

func TestConvertRetriesReferenceRaceOnInsert(t *testing.T) {
	store := &fakeStore{
		lead:       acceptedLead(),
		provider:   repository.ProviderContact{OrganizationID: orgID()},
		createErrs: []error{repository.ErrReferenceTaken},
	}
	refs := &seqRefs{refs: []string{"IMM-2026-AAAAAA", "IMM-2026-BBBBBB"}}
	svc := newService(store, &fakeAccounts{id: uuid.New()}, refs, &fakeBus{})

	converted, err := svc.Convert(context.Background(), store.lead.ID, uuid.New())
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if converted.Reference != "IMM-2026-BBBBBB" {
		t.Errorf("reference = %s, want retry after insert collision", converted.Reference)
	}
}

func TestConvertGivesUpWhenReferencesExhausted(t *testing.T) {
	store := &fakeStore{
		lead:      acceptedLead(),
		provider:  repository.ProviderContact{OrganizationID: orgID()},
		takenRefs: map[string]bool{"IMM-2026-AAAAAA": true},
	}
	svc := newService(store, &fakeAccounts{id: uuid.New()}, nil, &fakeBus{})

	_, err := svc.Convert(context.Background(), store.lead.ID, uuid.New())
	if err == nil {
		t.Fatal("expected failure when every candidate reference collides")
	}
}

func TestConvertSurfacesWinnerOfConcurrentAccept(t *testing.T) {
	winner := repository.Case{ID: uuid.New(), Reference: "IMM-2026-WINNER"}
	store := &fakeStore{
		lead:       acceptedLead(),
		provider:   repository.ProviderContact{OrganizationID: orgID()},
		createErrs: []error{repository.ErrLeadNotAccepted},
		existing:   winner,
	}
	svc := newService(store, &fakeAccounts{id: uuid.New()}, nil, &fakeBus{})

	converted, err := svc.Convert(context.Background(), store.lead.ID, uuid.New())
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if converted.CaseID != winner.ID {
		t.Errorf("expected the concurrently created case, got %+v", converted)
	}
}

func TestConvertConflictWhenLeadNotAccepted(t *testing.T) {
	store := &fakeStore{
		lead:       acceptedLead(),
		provider:   repository.ProviderContact{OrganizationID: orgID()},
		createErrs: []error{repository.ErrLeadNotAccepted},
		existErr:   repository.ErrNotFound,
	}
	svc := newService(store, &fakeAccounts{id: uuid.New()}, nil, &fakeBus{})

	_, err := svc.Convert(context.Background(), store.lead.ID, uuid.New())
	if !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestConvertLeadNotFound(t *testing.T) {
	store := &fakeStore{leadErr: repository.ErrNotFound}
	svc := newService(store, &fakeAccounts{}, nil, &fakeBus{})

	_, err := svc.Convert(context.Background(), uuid.New(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestConvertAccountResolutionFailure(t *testing.T) {
	store := &fakeStore{lead: acceptedLead(), provider: repository.ProviderContact{OrganizationID: orgID()}}
	accounts := &fakeAccounts{err: errors.New("accounts store down")}
	svc := newService(store, accounts, nil, &fakeBus{})

	_, err := svc.Convert(context.Background(), store.lead.ID, uuid.New())
	if !apperr.Is(err, apperr.KindInternal) {
		t.Errorf("expected internal error, got %v", err)
	}
	if len(store.created) != 0 {
		t.Error("no case may be created without an applicant account")
	}
}

func TestPriorityFromUrgency(t *testing.T) {
	tests := []struct {
		urgency string
		want    string
	}{
		{"urgent", "high"},
		{"standard", "normal"},
		{"flexible", "low"},
		{"", "normal"},
		{"whenever", "normal"},
	}

	for _, tt := range tests {
		if got := PriorityFromUrgency(tt.urgency); got != tt.want {
			t.Errorf("PriorityFromUrgency(%q) = %s, want %s", tt.urgency, got, tt.want)
		}
	}
}
