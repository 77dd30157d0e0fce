package repository

import (
	"context"
	"time"

	"github.com/paasforest/immigrationai-sub000/internal/routing/domain"

	"github.com/google/uuid"
)

// Store is the persistence contract the assignment orchestrator depends on.
// *Repository is the PostgreSQL implementation; tests substitute fakes.
type Store interface {
	GetLead(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	TriedProviderIDs(ctx context.Context, leadID uuid.UUID) (map[uuid.UUID]bool, error)
	CountAssignments(ctx context.Context, leadID uuid.UUID) (int, error)
	OfferAssignment(ctx context.Context, params OfferParams) (domain.Assignment, error)
	MarkLeadTerminal(ctx context.Context, leadID uuid.UUID, status domain.LeadStatus) error

	GetAssignment(ctx context.Context, id uuid.UUID) (domain.Assignment, error)
	AcceptAssignment(ctx context.Context, id uuid.UUID, respondedAt time.Time) error
	DeclineAssignment(ctx context.Context, id uuid.UUID, reason string, respondedAt time.Time) error
	ExpireAssignment(ctx context.Context, id uuid.UUID) error

	ListStalePending(ctx context.Context, now time.Time, limit int) ([]domain.Assignment, error)
	ListByLead(ctx context.Context, leadID uuid.UUID) ([]domain.Assignment, error)
	ListPendingByProvider(ctx context.Context, providerID uuid.UUID) ([]domain.Assignment, error)
	ListStuckPendingLeadIDs(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error)
}

var _ Store = (*Repository)(nil)
