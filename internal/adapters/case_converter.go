// Package adapters bridges module boundaries: each adapter implements one
// module's outbound port with another module's service.
package adapters

import (
	"context"

	"github.com/google/uuid"

	casesservice "github.com/paasforest/immigrationai-sub000/internal/cases/service"
	"github.com/paasforest/immigrationai-sub000/internal/routing/ports"
)

// CaseConverterAdapter adapts the cases service for the routing engine's
// accept path. It implements routing/ports.CaseConverter.
type CaseConverterAdapter struct {
	svc *casesservice.Service
}

// NewCaseConverterAdapter creates the adapter.
func NewCaseConverterAdapter(svc *casesservice.Service) *CaseConverterAdapter {
	return &CaseConverterAdapter{svc: svc}
}

// Convert materializes the accepted lead into a case.
func (a *CaseConverterAdapter) Convert(ctx context.Context, leadID, providerID uuid.UUID) (ports.ConvertedCase, error) {
	converted, err := a.svc.Convert(ctx, leadID, providerID)
	if err != nil {
		return ports.ConvertedCase{}, err
	}
	return ports.ConvertedCase{
		CaseID:    converted.CaseID,
		Reference: converted.Reference,
	}, nil
}

var _ ports.CaseConverter = (*CaseConverterAdapter)(nil)
