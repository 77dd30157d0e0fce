// Package service implements lead intake and lookup.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/paasforest/immigrationai-sub000/internal/events"
	"github.com/paasforest/immigrationai-sub000/internal/leads/ports"
	"github.com/paasforest/immigrationai-sub000/internal/leads/repository"
	"github.com/paasforest/immigrationai-sub000/platform/apperr"
	"github.com/paasforest/immigrationai-sub000/platform/logger"
	"github.com/paasforest/immigrationai-sub000/platform/phone"
)

// expiryWindow is the informational lead expiry horizon. It is stamped on
// the row at submission; nothing in the pipeline enforces it.
const expiryWindow = 7 * 24 * time.Hour

// Urgency tiers accepted at intake.
const (
	UrgencyFlexible = "flexible"
	UrgencyStandard = "standard"
	UrgencyUrgent   = "urgent"
)

// Store is the persistence contract for leads.
type Store interface {
	Create(ctx context.Context, params repository.CreateParams) (repository.Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error)
	GetStatus(ctx context.Context, id uuid.UUID) (string, error)
	ProviderHoldsLead(ctx context.Context, leadID, providerID uuid.UUID) (bool, error)
}

// Service handles lead intake.
type Service struct {
	store Store
	tasks ports.AssignEnqueuer
	bus   events.Bus
	log   *logger.Logger
	now   func() time.Time
}

// New creates the lead service.
func New(store Store, tasks ports.AssignEnqueuer, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		store: store,
		tasks: tasks,
		bus:   bus,
		log:   log,
		now:   time.Now,
	}
}

// SubmitInput carries validated intake fields from transport.
type SubmitInput struct {
	ServiceTypeID      uuid.UUID
	ApplicantName      string
	ApplicantEmail     string
	ApplicantPhone     string
	OriginCountry      string
	DestinationCountry string
	Urgency            string
	Description        string
}

// Submit stores a new lead and schedules its first routing pass. The lead is
// durable once this returns; a failed enqueue is logged and left for the
// stuck-lead sweep to pick up rather than surfaced to the applicant.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (repository.Lead, error) {
	normalizedPhone, err := phone.NormalizeE164(input.ApplicantPhone)
	if err != nil {
		return repository.Lead{}, apperr.Validation("invalid phone number")
	}

	lead, err := s.store.Create(ctx, repository.CreateParams{
		ServiceTypeID:      input.ServiceTypeID,
		ApplicantName:      strings.TrimSpace(input.ApplicantName),
		ApplicantEmail:     strings.ToLower(strings.TrimSpace(input.ApplicantEmail)),
		ApplicantPhone:     normalizedPhone,
		OriginCountry:      strings.ToUpper(strings.TrimSpace(input.OriginCountry)),
		DestinationCountry: strings.ToUpper(strings.TrimSpace(input.DestinationCountry)),
		Urgency:            input.Urgency,
		Description:        strings.TrimSpace(input.Description),
		ExpiresAt:          s.now().UTC().Add(expiryWindow),
	})
	if errors.Is(err, repository.ErrUnknownServiceType) {
		return repository.Lead{}, apperr.Validation("unknown or inactive service type")
	}
	if err != nil {
		return repository.Lead{}, apperr.Wrap(apperr.KindInternal, "could not store lead", err)
	}

	s.log.Info("lead submitted",
		"lead_id", lead.ID.String(),
		"service_type_id", lead.ServiceTypeID.String(),
	)
	s.bus.Publish(ctx, events.LeadSubmitted{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
	})

	if err := s.tasks.EnqueueAssign(ctx, lead.ID); err != nil {
		s.log.Error("failed to enqueue initial assignment",
			"lead_id", lead.ID.String(),
			"error", err.Error(),
		)
	}

	return lead, nil
}

// TrackStatus returns the lifecycle status for the public tracking endpoint.
func (s *Service) TrackStatus(ctx context.Context, leadID uuid.UUID) (string, error) {
	status, err := s.store.GetStatus(ctx, leadID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", apperr.NotFound("lead not found")
	}
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "lead store failure", err)
	}
	return status, nil
}

// GetForProvider returns the full lead detail to a provider who holds (or
// has held) an assignment for it.
func (s *Service) GetForProvider(ctx context.Context, leadID, providerID uuid.UUID) (repository.Lead, error) {
	holds, err := s.store.ProviderHoldsLead(ctx, leadID, providerID)
	if err != nil {
		return repository.Lead{}, apperr.Wrap(apperr.KindInternal, "lead store failure", err)
	}
	if !holds {
		return repository.Lead{}, apperr.Forbidden("lead was never offered to you")
	}

	lead, err := s.store.GetByID(ctx, leadID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return repository.Lead{}, apperr.Wrap(apperr.KindInternal, "lead store failure", err)
	}
	return lead, nil
}
