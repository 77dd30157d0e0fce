// Package ports declares the outbound contracts of the leads module.
package ports

import (
	"context"

	"github.com/google/uuid"
)

// AssignEnqueuer schedules the initial routing pass for a freshly submitted
// lead. Satisfied by the scheduler client.
type AssignEnqueuer interface {
	EnqueueAssign(ctx context.Context, leadID uuid.UUID) error
}
