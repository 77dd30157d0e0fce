// Package ports declares the contracts the case converter depends on but
// does not own.
package ports

import (
	"context"

	"github.com/google/uuid"
)

// AccountResolver finds or lazily provisions the applicant's account so the
// new case has an owner to hang off.
type AccountResolver interface {
	ResolveApplicant(ctx context.Context, email, name string) (uuid.UUID, error)
}

// ReferenceGenerator mints human-shareable case references.
type ReferenceGenerator interface {
	Generate() string
}
