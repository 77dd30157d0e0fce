package service

import (
	"context"
	"reflect"
	"testing"

	"github.com/paasforest/immigrationai-sub000/internal/providers/repository"
	"github.com/paasforest/immigrationai-sub000/platform/apperr"
	"github.com/paasforest/immigrationai-sub000/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	createErr error
	created   []repository.CreateSpecializationParams
}

func (f *fakeStore) GetProvider(context.Context, uuid.UUID) (repository.Provider, error) {
	return repository.Provider{}, repository.ErrNotFound
}

func (f *fakeStore) ListServiceTypes(context.Context) ([]repository.ServiceType, error) {
	return nil, nil
}

func (f *fakeStore) ListSpecializations(context.Context, uuid.UUID) ([]repository.Specialization, error) {
	return nil, nil
}

func (f *fakeStore) GetSpecialization(context.Context, uuid.UUID, uuid.UUID) (repository.Specialization, error) {
	return repository.Specialization{}, repository.ErrNotFound
}

func (f *fakeStore) CreateSpecialization(_ context.Context, params repository.CreateSpecializationParams) (repository.Specialization, error) {
	if f.createErr != nil {
		return repository.Specialization{}, f.createErr
	}
	f.created = append(f.created, params)
	return repository.Specialization{
		ID:              uuid.New(),
		ProviderID:      params.ProviderID,
		ServiceTypeID:   params.ServiceTypeID,
		OriginCountries: params.OriginCountries,
		DestCountries:   params.DestCountries,
	}, nil
}

func (f *fakeStore) UpdateSpecialization(context.Context, uuid.UUID, uuid.UUID, repository.UpdateSpecializationParams) (repository.Specialization, error) {
	return repository.Specialization{}, repository.ErrNotFound
}

func (f *fakeStore) DeleteSpecialization(context.Context, uuid.UUID, uuid.UUID) error {
	return repository.ErrNotFound
}

func validSpecInput() SpecializationInput {
	return SpecializationInput{
		ServiceTypeID:      uuid.New(),
		OriginCountries:    []string{"nigeria", " GHANA ", "Nigeria", ""},
		DestCountries:      []string{"canada"},
		MaxConcurrentLeads: 5,
		AcceptingLeads:     true,
	}
}

func TestCreateSpecializationNormalizesCorridors(t *testing.T) {
	store := &fakeStore{}
	svc := New(store, logger.New("development"))

	_, err := svc.CreateSpecialization(context.Background(), uuid.New(), validSpecInput())
	if err != nil {
		t.Fatalf("CreateSpecialization: %v", err)
	}
	if len(store.created) != 1 {
		t.Fatalf("created %d specializations, want 1", len(store.created))
	}

	got := store.created[0]
	if want := []string{"NIGERIA", "GHANA"}; !reflect.DeepEqual(got.OriginCountries, want) {
		t.Errorf("origins = %v, want deduplicated uppercase %v", got.OriginCountries, want)
	}
	if want := []string{"CANADA"}; !reflect.DeepEqual(got.DestCountries, want) {
		t.Errorf("destinations = %v, want %v", got.DestCountries, want)
	}
}

func TestCreateSpecializationValidatesCapacity(t *testing.T) {
	svc := New(&fakeStore{}, logger.New("development"))

	input := validSpecInput()
	input.MaxConcurrentLeads = 0

	_, err := svc.CreateSpecialization(context.Background(), uuid.New(), input)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestCreateSpecializationValidatesSuccessRate(t *testing.T) {
	svc := New(&fakeStore{}, logger.New("development"))

	for _, rate := range []int{-1, 101} {
		input := validSpecInput()
		input.SuccessRate = &rate

		if _, err := svc.CreateSpecialization(context.Background(), uuid.New(), input); !apperr.Is(err, apperr.KindValidation) {
			t.Errorf("success rate %d: expected validation error, got %v", rate, err)
		}
	}
}

func TestCreateSpecializationDuplicateServiceType(t *testing.T) {
	store := &fakeStore{createErr: repository.ErrDuplicateSpecialization}
	svc := New(store, logger.New("development"))

	_, err := svc.CreateSpecialization(context.Background(), uuid.New(), validSpecInput())
	if !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestCreateSpecializationUnknownServiceType(t *testing.T) {
	store := &fakeStore{createErr: repository.ErrNotFound}
	svc := New(store, logger.New("development"))

	_, err := svc.CreateSpecialization(context.Background(), uuid.New(), validSpecInput())
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestDeleteSpecializationNotFound(t *testing.T) {
	svc := New(&fakeStore{}, logger.New("development"))

	err := svc.DeleteSpecialization(context.Background(), uuid.New(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestNormalizeCountriesKeepsOrder(t *testing.T) {
	got := normalizeCountries([]string{"ghana", "nigeria", "ghana", "  ", "kenya"})
	want := []string{"GHANA", "NIGERIA", "KENYA"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("normalizeCountries = %v, want %v", got, want)
	}
}
