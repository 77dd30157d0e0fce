package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/paasforest/immigrationai-sub000/internal/events"
	"github.com/paasforest/immigrationai-sub000/internal/leads/repository"
	"github.com/paasforest/immigrationai-sub000/platform/apperr"
	"github.com/paasforest/immigrationai-sub000/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	createErr error
	lead      repository.Lead
	status    string
	statusErr error
	holds     bool

	created []repository.CreateParams
}

func (f *fakeStore) Create(_ context.Context, params repository.CreateParams) (repository.Lead, error) {
	if f.createErr != nil {
		return repository.Lead{}, f.createErr
	}
	f.created = append(f.created, params)
	return repository.Lead{
		ID:                 uuid.New(),
		ServiceTypeID:      params.ServiceTypeID,
		ApplicantName:      params.ApplicantName,
		ApplicantEmail:     params.ApplicantEmail,
		ApplicantPhone:     params.ApplicantPhone,
		OriginCountry:      params.OriginCountry,
		DestinationCountry: params.DestinationCountry,
		Urgency:            params.Urgency,
		Status:             "pending_assignment",
		ExpiresAt:          params.ExpiresAt,
	}, nil
}

func (f *fakeStore) GetByID(context.Context, uuid.UUID) (repository.Lead, error) {
	return f.lead, nil
}

func (f *fakeStore) GetStatus(context.Context, uuid.UUID) (string, error) {
	return f.status, f.statusErr
}

func (f *fakeStore) ProviderHoldsLead(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return f.holds, nil
}

type fakeEnqueuer struct {
	assigns []uuid.UUID
	err     error
}

func (f *fakeEnqueuer) EnqueueAssign(_ context.Context, leadID uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.assigns = append(f.assigns, leadID)
	return nil
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

func validInput() SubmitInput {
	return SubmitInput{
		ServiceTypeID:      uuid.New(),
		ApplicantName:      "  Amina Yusuf ",
		ApplicantEmail:     " Amina@Example.COM ",
		ApplicantPhone:     "+44 7911 123456",
		OriginCountry:      "nigeria",
		DestinationCountry: "canada",
		Urgency:            UrgencyStandard,
		Description:        "Skilled worker visa for a software role.",
	}
}

func TestSubmitStoresAndEnqueues(t *testing.T) {
	store := &fakeStore{}
	tasks := &fakeEnqueuer{}
	bus := &fakeBus{}
	svc := New(store, tasks, bus, logger.New("development"))
	submitted := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return submitted }

	lead, err := svc.Submit(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if len(store.created) != 1 {
		t.Fatalf("created %d leads, want 1", len(store.created))
	}
	params := store.created[0]
	if params.ApplicantName != "Amina Yusuf" {
		t.Errorf("name = %q, want trimmed", params.ApplicantName)
	}
	if params.ApplicantEmail != "amina@example.com" {
		t.Errorf("email = %q, want lowercased", params.ApplicantEmail)
	}
	if params.ApplicantPhone != "+447911123456" {
		t.Errorf("phone = %q, want E.164", params.ApplicantPhone)
	}
	if params.OriginCountry != "NIGERIA" || params.DestinationCountry != "CANADA" {
		t.Errorf("corridor = %s -> %s, want uppercased", params.OriginCountry, params.DestinationCountry)
	}
	if want := submitted.Add(7 * 24 * time.Hour); !params.ExpiresAt.Equal(want) {
		t.Errorf("expires at %v, want %v", params.ExpiresAt, want)
	}

	if len(tasks.assigns) != 1 || tasks.assigns[0] != lead.ID {
		t.Error("submission should enqueue the first routing pass")
	}
	if len(bus.published) != 1 || bus.published[0].EventName() != (events.LeadSubmitted{}).EventName() {
		t.Errorf("expected one lead submitted event, got %v", bus.published)
	}
}

func TestSubmitRejectsInvalidPhone(t *testing.T) {
	store := &fakeStore{}
	svc := New(store, &fakeEnqueuer{}, &fakeBus{}, logger.New("development"))

	input := validInput()
	input.ApplicantPhone = "not a number"

	_, err := svc.Submit(context.Background(), input)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if len(store.created) != 0 {
		t.Error("invalid phone must not create a lead")
	}
}

func TestSubmitUnknownServiceType(t *testing.T) {
	store := &fakeStore{createErr: repository.ErrUnknownServiceType}
	svc := New(store, &fakeEnqueuer{}, &fakeBus{}, logger.New("development"))

	_, err := svc.Submit(context.Background(), validInput())
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestSubmitSurvivesEnqueueFailure(t *testing.T) {
	store := &fakeStore{}
	tasks := &fakeEnqueuer{err: errors.New("redis down")}
	svc := New(store, tasks, &fakeBus{}, logger.New("development"))

	lead, err := svc.Submit(context.Background(), validInput())
	if err != nil {
		t.Fatalf("a lost enqueue must not fail the submission: %v", err)
	}
	if lead.ID == uuid.Nil {
		t.Error("lead should still be stored")
	}
}

func TestTrackStatusUnknownLead(t *testing.T) {
	store := &fakeStore{statusErr: repository.ErrNotFound}
	svc := New(store, &fakeEnqueuer{}, &fakeBus{}, logger.New("development"))

	_, err := svc.TrackStatus(context.Background(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestGetForProviderRequiresAssignmentHistory(t *testing.T) {
	store := &fakeStore{holds: false}
	svc := New(store, &fakeEnqueuer{}, &fakeBus{}, logger.New("development"))

	_, err := svc.GetForProvider(context.Background(), uuid.New(), uuid.New())
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
}

func TestGetForProviderReturnsLead(t *testing.T) {
	lead := repository.Lead{ID: uuid.New(), ApplicantName: "Amina Yusuf"}
	store := &fakeStore{holds: true, lead: lead}
	svc := New(store, &fakeEnqueuer{}, &fakeBus{}, logger.New("development"))

	got, err := svc.GetForProvider(context.Background(), lead.ID, uuid.New())
	if err != nil {
		t.Fatalf("GetForProvider: %v", err)
	}
	if got.ID != lead.ID {
		t.Errorf("got lead %s, want %s", got.ID, lead.ID)
	}
}
