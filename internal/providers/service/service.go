// Package service implements provider profile and specialization management.
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/paasforest/immigrationai-sub000/internal/providers/repository"
	"github.com/paasforest/immigrationai-sub000/platform/apperr"
	"github.com/paasforest/immigrationai-sub000/platform/logger"
)

// Store is the persistence contract for providers.
type Store interface {
	GetProvider(ctx context.Context, id uuid.UUID) (repository.Provider, error)
	ListServiceTypes(ctx context.Context) ([]repository.ServiceType, error)
	ListSpecializations(ctx context.Context, providerID uuid.UUID) ([]repository.Specialization, error)
	GetSpecialization(ctx context.Context, id, providerID uuid.UUID) (repository.Specialization, error)
	CreateSpecialization(ctx context.Context, params repository.CreateSpecializationParams) (repository.Specialization, error)
	UpdateSpecialization(ctx context.Context, id, providerID uuid.UUID, params repository.UpdateSpecializationParams) (repository.Specialization, error)
	DeleteSpecialization(ctx context.Context, id, providerID uuid.UUID) error
}

// Service manages provider routing profiles.
type Service struct {
	store Store
	log   *logger.Logger
}

// New creates the provider service.
func New(store Store, log *logger.Logger) *Service {
	return &Service{store: store, log: log}
}

// GetProfile returns the provider's own profile.
func (s *Service) GetProfile(ctx context.Context, providerID uuid.UUID) (repository.Provider, error) {
	p, err := s.store.GetProvider(ctx, providerID)
	if err != nil {
		return repository.Provider{}, mapRepoErr(err, "provider not found")
	}
	return p, nil
}

// ListServiceTypes returns the routable service types.
func (s *Service) ListServiceTypes(ctx context.Context) ([]repository.ServiceType, error) {
	types, err := s.store.ListServiceTypes(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "provider store failure", err)
	}
	return types, nil
}

// ListSpecializations returns the provider's specializations.
func (s *Service) ListSpecializations(ctx context.Context, providerID uuid.UUID) ([]repository.Specialization, error) {
	specs, err := s.store.ListSpecializations(ctx, providerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "provider store failure", err)
	}
	return specs, nil
}

// SpecializationInput carries validated specialization fields from transport.
type SpecializationInput struct {
	ServiceTypeID      uuid.UUID
	OriginCountries    []string
	DestCountries      []string
	MaxConcurrentLeads int
	AcceptingLeads     bool
	SuccessRate        *int
	Independent        bool
}

// CreateSpecialization adds a routing profile for a service type. Corridor
// codes are normalized to upper case; an empty corridor set means the
// provider accepts any country on that side.
func (s *Service) CreateSpecialization(ctx context.Context, providerID uuid.UUID, input SpecializationInput) (repository.Specialization, error) {
	if err := validateInput(&input); err != nil {
		return repository.Specialization{}, err
	}

	spec, err := s.store.CreateSpecialization(ctx, repository.CreateSpecializationParams{
		ProviderID:         providerID,
		ServiceTypeID:      input.ServiceTypeID,
		OriginCountries:    input.OriginCountries,
		DestCountries:      input.DestCountries,
		MaxConcurrentLeads: input.MaxConcurrentLeads,
		AcceptingLeads:     input.AcceptingLeads,
		SuccessRate:        input.SuccessRate,
		Independent:        input.Independent,
	})
	if errors.Is(err, repository.ErrDuplicateSpecialization) {
		return repository.Specialization{}, apperr.Conflict("a specialization for this service type already exists")
	}
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Specialization{}, apperr.Validation("unknown service type")
	}
	if err != nil {
		return repository.Specialization{}, apperr.Wrap(apperr.KindInternal, "provider store failure", err)
	}

	s.log.Info("specialization created",
		"provider_id", providerID.String(),
		"service_type_id", input.ServiceTypeID.String(),
	)
	return spec, nil
}

// UpdateSpecialization replaces the mutable fields of an owned specialization.
func (s *Service) UpdateSpecialization(ctx context.Context, id, providerID uuid.UUID, input SpecializationInput) (repository.Specialization, error) {
	if err := validateInput(&input); err != nil {
		return repository.Specialization{}, err
	}

	spec, err := s.store.UpdateSpecialization(ctx, id, providerID, repository.UpdateSpecializationParams{
		OriginCountries:    input.OriginCountries,
		DestCountries:      input.DestCountries,
		MaxConcurrentLeads: input.MaxConcurrentLeads,
		AcceptingLeads:     input.AcceptingLeads,
		SuccessRate:        input.SuccessRate,
		Independent:        input.Independent,
	})
	if err != nil {
		return repository.Specialization{}, mapRepoErr(err, "specialization not found")
	}
	return spec, nil
}

// DeleteSpecialization removes an owned specialization. Leads already
// assigned through it are unaffected.
func (s *Service) DeleteSpecialization(ctx context.Context, id, providerID uuid.UUID) error {
	if err := s.store.DeleteSpecialization(ctx, id, providerID); err != nil {
		return mapRepoErr(err, "specialization not found")
	}
	return nil
}

func validateInput(input *SpecializationInput) error {
	if input.MaxConcurrentLeads < 1 {
		return apperr.Validation("max concurrent leads must be at least 1")
	}
	if input.SuccessRate != nil && (*input.SuccessRate < 0 || *input.SuccessRate > 100) {
		return apperr.Validation("success rate must be between 0 and 100")
	}
	input.OriginCountries = normalizeCountries(input.OriginCountries)
	input.DestCountries = normalizeCountries(input.DestCountries)
	return nil
}

func normalizeCountries(codes []string) []string {
	out := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		c := strings.ToUpper(strings.TrimSpace(code))
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func mapRepoErr(err error, notFoundMsg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(notFoundMsg)
	}
	return apperr.Wrap(apperr.KindInternal, "provider store failure", err)
}
