// Package ports defines the outbound contracts of the routing module.
// Adapters in internal/adapters satisfy them with other modules' services.
package ports

import (
	"context"

	"github.com/google/uuid"
)

// ConvertedCase is the minimal view of a case returned to an accepting
// provider.
type ConvertedCase struct {
	CaseID    uuid.UUID
	Reference string
}

// CaseConverter materializes an accepted lead into a durable case record.
// Convert must be idempotent per lead: once a lead is converted, repeat
// calls return the existing case instead of creating a second one.
type CaseConverter interface {
	Convert(ctx context.Context, leadID, providerID uuid.UUID) (ConvertedCase, error)
}

// TaskEnqueuer hands routing work to the background queue. Enqueue failures
// are reported so callers can decide whether to log and continue (decline
// handling) or fail (nothing in the engine currently does).
type TaskEnqueuer interface {
	EnqueueAssign(ctx context.Context, leadID uuid.UUID) error
	EnqueueReassign(ctx context.Context, leadID uuid.UUID) error
}
