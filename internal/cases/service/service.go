// Package service implements lead-to-case conversion.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/paasforest/immigrationai-sub000/internal/cases/ports"
	"github.com/paasforest/immigrationai-sub000/internal/cases/repository"
	"github.com/paasforest/immigrationai-sub000/internal/events"
	"github.com/paasforest/immigrationai-sub000/platform/apperr"
	"github.com/paasforest/immigrationai-sub000/platform/logger"
)

// referenceAttempts bounds the collision retry loop when minting case
// references. The keyspace makes collisions vanishingly rare; hitting the
// bound means the generator is broken, not unlucky.
const referenceAttempts = 10

// ConvertedCase is the view of a case handed back to the accept path.
type ConvertedCase struct {
	CaseID    uuid.UUID
	Reference string
}

// Store is the persistence contract the converter needs. Satisfied by
// repository.Repository; test doubles implement it directly.
type Store interface {
	GetLeadForConversion(ctx context.Context, leadID uuid.UUID) (repository.LeadForConversion, error)
	GetProviderContact(ctx context.Context, providerID uuid.UUID) (repository.ProviderContact, error)
	GetCaseByLead(ctx context.Context, leadID uuid.UUID) (repository.Case, error)
	ReferenceExists(ctx context.Context, ref string) (bool, error)
	CreateCaseConvertLead(ctx context.Context, params repository.CreateCaseParams) (repository.Case, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID) ([]repository.Case, error)
	GetForProvider(ctx context.Context, id, providerID uuid.UUID) (repository.Case, error)
}

// Service converts accepted leads into case records.
type Service struct {
	store    Store
	accounts ports.AccountResolver
	refs     ports.ReferenceGenerator
	bus      events.Bus
	log      *logger.Logger
}

// New creates the case conversion service.
func New(store Store, accounts ports.AccountResolver, refs ports.ReferenceGenerator, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		store:    store,
		accounts: accounts,
		refs:     refs,
		bus:      bus,
		log:      log,
	}
}

// Convert materializes the accepted lead into a case owned by the accepting
// provider's organization. Conversion is idempotent per lead: a lead that
// already carries a case gets the existing case back, no matter which call
// created it. The applicant account is resolved (or provisioned) first so a
// mid-flight failure before the transaction leaves nothing to undo.
func (s *Service) Convert(ctx context.Context, leadID, providerID uuid.UUID) (ConvertedCase, error) {
	lead, err := s.store.GetLeadForConversion(ctx, leadID)
	if err != nil {
		return ConvertedCase{}, mapRepoErr(err, "lead not found")
	}

	if lead.Status == "converted" {
		existing, err := s.store.GetCaseByLead(ctx, leadID)
		if err != nil {
			return ConvertedCase{}, mapRepoErr(err, "converted lead has no case")
		}
		return ConvertedCase{CaseID: existing.ID, Reference: existing.Reference}, nil
	}

	provider, err := s.store.GetProviderContact(ctx, providerID)
	if err != nil {
		return ConvertedCase{}, mapRepoErr(err, "provider not found")
	}
	if provider.OrganizationID == nil {
		return ConvertedCase{}, apperr.Wrap(apperr.KindValidation, "provider has no organization to own the case", repository.ErrNoOrganization)
	}

	accountID, err := s.accounts.ResolveApplicant(ctx, lead.ApplicantEmail, lead.ApplicantName)
	if err != nil {
		return ConvertedCase{}, apperr.Wrap(apperr.KindInternal, "could not resolve applicant account", err)
	}

	created, err := s.createWithReference(ctx, repository.CreateCaseParams{
		LeadID:             leadID,
		ProviderID:         providerID,
		OrganizationID:     *provider.OrganizationID,
		ApplicantAccountID: accountID,
		Priority:           PriorityFromUrgency(lead.Urgency),
	})
	if errors.Is(err, repository.ErrLeadNotAccepted) {
		// Lead moved under us. If another accept won the race the case
		// exists now; surface it rather than an error.
		if existing, lookupErr := s.store.GetCaseByLead(ctx, leadID); lookupErr == nil {
			return ConvertedCase{CaseID: existing.ID, Reference: existing.Reference}, nil
		}
		return ConvertedCase{}, apperr.Wrap(apperr.KindConflict, "lead is not awaiting conversion", err)
	}
	if err != nil {
		return ConvertedCase{}, apperr.Wrap(apperr.KindInternal, "could not create case", err)
	}

	s.log.Info("lead converted to case",
		"lead_id", leadID.String(),
		"case_id", created.ID.String(),
		"reference", created.Reference,
		"provider_id", providerID.String(),
	)
	s.bus.Publish(ctx, events.LeadConverted{
		BaseEvent:     events.NewBaseEvent(),
		LeadID:        leadID,
		CaseID:        created.ID,
		CaseReference: created.Reference,
		ProviderID:    providerID,
	})

	return ConvertedCase{CaseID: created.ID, Reference: created.Reference}, nil
}

// ListForProvider returns the calling provider's cases, newest first.
func (s *Service) ListForProvider(ctx context.Context, providerID uuid.UUID) ([]repository.Case, error) {
	cases, err := s.store.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "case store failure", err)
	}
	return cases, nil
}

// GetForProvider returns one case scoped to its owning provider.
func (s *Service) GetForProvider(ctx context.Context, id, providerID uuid.UUID) (repository.Case, error) {
	c, err := s.store.GetForProvider(ctx, id, providerID)
	if err != nil {
		return repository.Case{}, mapRepoErr(err, "case not found")
	}
	return c, nil
}

// GetByLead returns the case created for a lead, if one exists.
func (s *Service) GetByLead(ctx context.Context, leadID uuid.UUID) (repository.Case, error) {
	c, err := s.store.GetCaseByLead(ctx, leadID)
	if err != nil {
		return repository.Case{}, mapRepoErr(err, "case not found")
	}
	return c, nil
}

func (s *Service) createWithReference(ctx context.Context, params repository.CreateCaseParams) (repository.Case, error) {
	for i := 0; i < referenceAttempts; i++ {
		ref := s.refs.Generate()
		taken, err := s.store.ReferenceExists(ctx, ref)
		if err != nil {
			return repository.Case{}, err
		}
		if taken {
			continue
		}
		params.Reference = ref
		created, err := s.store.CreateCaseConvertLead(ctx, params)
		if errors.Is(err, repository.ErrReferenceTaken) {
			// Lost a race on the reference after the existence check.
			continue
		}
		return created, err
	}
	return repository.Case{}, fmt.Errorf("no unique case reference after %d attempts", referenceAttempts)
}

// PriorityFromUrgency maps the applicant's urgency tier to a case priority.
// Unknown tiers fall back to normal.
func PriorityFromUrgency(urgency string) string {
	switch urgency {
	case "urgent":
		return "high"
	case "flexible":
		return "low"
	default:
		return "normal"
	}
}

func mapRepoErr(err error, notFoundMsg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(notFoundMsg)
	}
	return apperr.Wrap(apperr.KindInternal, "case store failure", err)
}
