package adapters

import (
	"context"

	"github.com/google/uuid"

	accountsservice "github.com/paasforest/immigrationai-sub000/internal/accounts/service"
	"github.com/paasforest/immigrationai-sub000/internal/cases/ports"
)

// AccountResolverAdapter adapts the accounts service for the case
// converter. It implements cases/ports.AccountResolver.
type AccountResolverAdapter struct {
	svc *accountsservice.Service
}

// NewAccountResolverAdapter creates the adapter.
func NewAccountResolverAdapter(svc *accountsservice.Service) *AccountResolverAdapter {
	return &AccountResolverAdapter{svc: svc}
}

// ResolveApplicant returns the account id for the applicant, provisioning
// one on first sight.
func (a *AccountResolverAdapter) ResolveApplicant(ctx context.Context, email, name string) (uuid.UUID, error) {
	return a.svc.ResolveApplicant(ctx, email, name)
}

var _ ports.AccountResolver = (*AccountResolverAdapter)(nil)
