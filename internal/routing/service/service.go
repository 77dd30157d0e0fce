// Package service implements the assignment orchestrator: the protocol that
// offers each lead to one provider at a time, reacts to accept, decline and
// expiry, and hands accepted leads to the case converter.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/paasforest/immigrationai-sub000/internal/events"
	"github.com/paasforest/immigrationai-sub000/internal/routing/domain"
	"github.com/paasforest/immigrationai-sub000/internal/routing/ports"
	"github.com/paasforest/immigrationai-sub000/internal/routing/repository"
	"github.com/paasforest/immigrationai-sub000/platform/apperr"
	"github.com/paasforest/immigrationai-sub000/platform/config"
	"github.com/paasforest/immigrationai-sub000/platform/logger"

	"github.com/google/uuid"
)

// Provider response actions.
const (
	ActionAccept  = "accept"
	ActionDecline = "decline"
)

// offerRetries bounds how often Assign reruns candidate selection after
// losing a capacity race to a concurrent routing call.
const offerRetries = 3

// CandidateFinder produces the ranked candidate list for a lead.
// Implemented by matcher.Matcher.
type CandidateFinder interface {
	FindCandidates(ctx context.Context, lead domain.Lead) ([]domain.Candidate, error)
}

// Service drives the routing protocol for leads and assignments.
type Service struct {
	repo      repository.Store
	matcher   CandidateFinder
	converter ports.CaseConverter
	tasks     ports.TaskEnqueuer
	bus       events.Bus
	log       *logger.Logger

	offerTTL     time.Duration
	maxAttempts  int
	reasonMinLen int
}

// New creates the orchestrator.
func New(
	repo repository.Store,
	finder CandidateFinder,
	converter ports.CaseConverter,
	tasks ports.TaskEnqueuer,
	bus events.Bus,
	cfg config.RoutingConfig,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:         repo,
		matcher:      finder,
		converter:    converter,
		tasks:        tasks,
		bus:          bus,
		log:          log,
		offerTTL:     cfg.GetOfferTTL(),
		maxAttempts:  cfg.GetMaxAttempts(),
		reasonMinLen: cfg.GetDeclineReasonMinLen(),
	}
}

// Assign offers the lead to the best remaining candidate. The lead must be
// in pending_assignment. Providers that already hold any assignment for the
// lead are skipped. When no candidate remains, the lead terminates as
// no_match_found and (nil, nil) is returned: a dead end is an outcome, not
// an error.
func (s *Service) Assign(ctx context.Context, leadID uuid.UUID) (*domain.Assignment, error) {
	lead, err := s.repo.GetLead(ctx, leadID)
	if err != nil {
		return nil, mapRepoErr(err, "lead not found")
	}
	if lead.Status != domain.LeadPendingAssignment {
		return nil, apperr.Conflict("lead is not awaiting assignment")
	}

	for try := 0; try < offerRetries; try++ {
		attempt, err := s.repo.CountAssignments(ctx, leadID)
		if err != nil {
			return nil, err
		}
		attempt++

		candidate, err := s.pickCandidate(ctx, lead)
		if err != nil {
			return nil, err
		}
		if candidate == nil {
			if err := s.repo.MarkLeadTerminal(ctx, leadID, domain.LeadNoMatchFound); err != nil {
				return nil, err
			}
			s.log.RoutingEvent("no_match_found", leadID.String(), attempt-1, "candidate pool exhausted")
			s.bus.Publish(ctx, events.LeadRoutingDeadEnd{
				BaseEvent: events.NewBaseEvent(),
				LeadID:    leadID,
				Outcome:   string(domain.LeadNoMatchFound),
			})
			return nil, nil
		}

		assignment, err := s.repo.OfferAssignment(ctx, repository.OfferParams{
			LeadID:     leadID,
			ProviderID: candidate.ProviderID,
			Attempt:    attempt,
			OfferTTL:   s.offerTTL,
		})
		if errors.Is(err, repository.ErrProviderAtCapacity) {
			// A concurrent routing call filled the provider's last slot
			// after matching. Rerun selection; the capacity filter now
			// excludes them.
			continue
		}
		if err != nil {
			return nil, mapRepoErr(err, "lead not found")
		}

		s.log.RoutingEvent("assignment_offered", leadID.String(), attempt, candidate.ProviderID.String())
		s.bus.Publish(ctx, events.AssignmentOffered{
			BaseEvent:    events.NewBaseEvent(),
			AssignmentID: assignment.ID,
			LeadID:       leadID,
			ProviderID:   candidate.ProviderID,
			Attempt:      attempt,
			ExpiresAt:    assignment.ExpiresAt,
		})
		return &assignment, nil
	}

	return nil, apperr.Internal("assignment retries exhausted under contention")
}

// pickCandidate runs the matcher and returns the top-ranked candidate not
// yet tried for this lead, or nil when none remains. Only the head of the
// ranked list is offered per round; the remainder is discarded.
func (s *Service) pickCandidate(ctx context.Context, lead domain.Lead) (*domain.Candidate, error) {
	candidates, err := s.matcher.FindCandidates(ctx, lead)
	if err != nil {
		return nil, err
	}

	tried, err := s.repo.TriedProviderIDs(ctx, lead.ID)
	if err != nil {
		return nil, err
	}

	for _, candidate := range candidates {
		if tried[candidate.ProviderID] {
			continue
		}
		c := candidate
		return &c, nil
	}
	return nil, nil
}

// Respond records a provider's answer to a pending offer. Accept converts
// the lead into a case and returns it; decline records the reason and
// schedules reassignment. A late response to an expired offer marks the
// offer expired and is rejected with Gone.
func (s *Service) Respond(ctx context.Context, assignmentID, providerID uuid.UUID, action, reason string) (*ports.ConvertedCase, error) {
	assignment, err := s.repo.GetAssignment(ctx, assignmentID)
	if err != nil {
		return nil, mapRepoErr(err, "assignment not found")
	}

	if assignment.ProviderID != providerID {
		return nil, apperr.Forbidden("assignment belongs to another provider")
	}
	if assignment.Status != domain.AssignmentPending {
		return nil, apperr.Conflict("assignment has already been resolved")
	}
	if assignment.Expired(time.Now()) {
		s.expireAndReroute(ctx, assignment)
		return nil, apperr.Gone("this assignment offer has expired")
	}

	switch action {
	case ActionAccept:
		return s.accept(ctx, assignment)
	case ActionDecline:
		return nil, s.decline(ctx, assignment, reason)
	default:
		return nil, apperr.Validation("action must be accept or decline")
	}
}

// accept hands the lead to the case converter. A conversion failure
// propagates and leaves the assignment pending so the same provider can
// retry the accept.
func (s *Service) accept(ctx context.Context, assignment domain.Assignment) (*ports.ConvertedCase, error) {
	converted, err := s.converter.Convert(ctx, assignment.LeadID, assignment.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("convert lead %s: %w", assignment.LeadID, err)
	}

	if err := s.repo.AcceptAssignment(ctx, assignment.ID, time.Now()); err != nil {
		// The case exists; a retried accept reaches the idempotent
		// conversion path and completes this step.
		return nil, fmt.Errorf("mark assignment accepted: %w", err)
	}

	s.log.RoutingEvent("assignment_accepted", assignment.LeadID.String(), assignment.Attempt, converted.Reference)
	return &converted, nil
}

// decline records the provider's refusal and schedules reassignment. The
// decline itself always succeeds once recorded; a failed reassignment
// enqueue is logged and left to the sweep.
func (s *Service) decline(ctx context.Context, assignment domain.Assignment, reason string) error {
	if len(strings.TrimSpace(reason)) < s.reasonMinLen {
		return apperr.Validation(fmt.Sprintf("decline reason must be at least %d characters", s.reasonMinLen))
	}

	if err := s.repo.DeclineAssignment(ctx, assignment.ID, strings.TrimSpace(reason), time.Now()); err != nil {
		if errors.Is(err, repository.ErrAssignmentNotPending) {
			return apperr.Conflict("assignment has already been resolved")
		}
		return err
	}

	s.log.RoutingEvent("assignment_declined", assignment.LeadID.String(), assignment.Attempt, reason)
	s.bus.Publish(ctx, events.AssignmentDeclined{
		BaseEvent:    events.NewBaseEvent(),
		AssignmentID: assignment.ID,
		LeadID:       assignment.LeadID,
		ProviderID:   assignment.ProviderID,
		Attempt:      assignment.Attempt,
		Reason:       reason,
	})

	if err := s.tasks.EnqueueReassign(ctx, assignment.LeadID); err != nil {
		s.log.Error("reassign enqueue failed, sweep will recover the lead",
			"lead_id", assignment.LeadID, "error", err)
	}

	return nil
}

// Reassign routes a lead again after a decline or expiry. When the lead has
// already used up the maximum number of attempts it terminates as
// declined_all without consulting the matcher; otherwise routing proceeds
// exactly like an initial assignment, which may itself terminate the lead
// as no_match_found.
func (s *Service) Reassign(ctx context.Context, leadID uuid.UUID) error {
	attempts, err := s.repo.CountAssignments(ctx, leadID)
	if err != nil {
		return err
	}
	if attempts == 0 {
		return apperr.Conflict("lead has no prior assignments to reassign from")
	}

	if attempts >= s.maxAttempts {
		if err := s.repo.MarkLeadTerminal(ctx, leadID, domain.LeadDeclinedAll); err != nil {
			if errors.Is(err, repository.ErrLeadNotRoutable) {
				// Already routed or terminated by a concurrent call.
				return nil
			}
			return err
		}
		s.log.RoutingEvent("declined_all", leadID.String(), attempts, "attempt limit reached")
		s.bus.Publish(ctx, events.LeadRoutingDeadEnd{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    leadID,
			Outcome:   string(domain.LeadDeclinedAll),
		})
		return nil
	}

	_, err = s.Assign(ctx, leadID)
	if apperr.Is(err, apperr.KindConflict) {
		// The lead moved on (converted or re-routed concurrently); the
		// reassignment is moot.
		return nil
	}
	return err
}

// ExpireStale marks overdue pending assignments expired and schedules
// reassignment for each affected lead. It returns the number of
// assignments expired.
func (s *Service) ExpireStale(ctx context.Context, limit int) (int, error) {
	stale, err := s.repo.ListStalePending(ctx, time.Now(), limit)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, assignment := range stale {
		if err := s.repo.ExpireAssignment(ctx, assignment.ID); err != nil {
			if errors.Is(err, repository.ErrAssignmentNotPending) {
				continue
			}
			return expired, err
		}
		expired++

		s.log.RoutingEvent("assignment_expired", assignment.LeadID.String(), assignment.Attempt, assignment.ProviderID.String())
		s.bus.Publish(ctx, events.AssignmentExpired{
			BaseEvent:    events.NewBaseEvent(),
			AssignmentID: assignment.ID,
			LeadID:       assignment.LeadID,
			ProviderID:   assignment.ProviderID,
			Attempt:      assignment.Attempt,
		})

		if err := s.tasks.EnqueueReassign(ctx, assignment.LeadID); err != nil {
			s.log.Error("reassign enqueue failed after expiry",
				"lead_id", assignment.LeadID, "error", err)
		}
	}

	return expired, nil
}

// RequeueStuck re-enqueues leads that have sat in pending_assignment beyond
// the grace window, recovering from lost enqueues. It returns the number of
// leads requeued.
func (s *Service) RequeueStuck(ctx context.Context, grace time.Duration, limit int) (int, error) {
	ids, err := s.repo.ListStuckPendingLeadIDs(ctx, time.Now().Add(-grace), limit)
	if err != nil {
		return 0, err
	}

	requeued := 0
	for _, id := range ids {
		if err := s.tasks.EnqueueAssign(ctx, id); err != nil {
			s.log.Error("assign enqueue failed for stuck lead", "lead_id", id, "error", err)
			continue
		}
		requeued++
	}

	return requeued, nil
}

// GetAssignmentForProvider returns one of the provider's assignments,
// surfacing expiry lazily: reading an overdue pending offer marks it
// expired and schedules reassignment.
func (s *Service) GetAssignmentForProvider(ctx context.Context, assignmentID, providerID uuid.UUID) (domain.Assignment, error) {
	assignment, err := s.repo.GetAssignment(ctx, assignmentID)
	if err != nil {
		return domain.Assignment{}, mapRepoErr(err, "assignment not found")
	}
	if assignment.ProviderID != providerID {
		return domain.Assignment{}, apperr.Forbidden("assignment belongs to another provider")
	}

	if assignment.Expired(time.Now()) {
		s.expireAndReroute(ctx, assignment)
		assignment.Status = domain.AssignmentExpired
	}

	return assignment, nil
}

// ListProviderQueue returns the provider's open offers, lazily expiring any
// that are overdue.
func (s *Service) ListProviderQueue(ctx context.Context, providerID uuid.UUID) ([]domain.Assignment, error) {
	pending, err := s.repo.ListPendingByProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	open := pending[:0]
	for _, assignment := range pending {
		if assignment.Expired(now) {
			s.expireAndReroute(ctx, assignment)
			continue
		}
		open = append(open, assignment)
	}

	return open, nil
}

// ListLeadAssignments returns the full offer history of a lead in attempt
// order.
func (s *Service) ListLeadAssignments(ctx context.Context, leadID uuid.UUID) ([]domain.Assignment, error) {
	return s.repo.ListByLead(ctx, leadID)
}

// expireAndReroute performs the lazy-expiry transition for an overdue
// pending assignment discovered on access.
func (s *Service) expireAndReroute(ctx context.Context, assignment domain.Assignment) {
	if err := s.repo.ExpireAssignment(ctx, assignment.ID); err != nil {
		if !errors.Is(err, repository.ErrAssignmentNotPending) {
			s.log.Error("lazy expiry failed", "assignment_id", assignment.ID, "error", err)
		}
		return
	}

	s.log.RoutingEvent("assignment_expired", assignment.LeadID.String(), assignment.Attempt, assignment.ProviderID.String())
	s.bus.Publish(ctx, events.AssignmentExpired{
		BaseEvent:    events.NewBaseEvent(),
		AssignmentID: assignment.ID,
		LeadID:       assignment.LeadID,
		ProviderID:   assignment.ProviderID,
		Attempt:      assignment.Attempt,
	})

	if err := s.tasks.EnqueueReassign(ctx, assignment.LeadID); err != nil {
		s.log.Error("reassign enqueue failed after lazy expiry",
			"lead_id", assignment.LeadID, "error", err)
	}
}

func mapRepoErr(err error, notFoundMsg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(notFoundMsg)
	}
	if errors.Is(err, repository.ErrLeadNotRoutable) {
		return apperr.Conflict("lead is not awaiting assignment")
	}
	return err
}
