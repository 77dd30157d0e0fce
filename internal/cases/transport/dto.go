// Package transport defines the cases module's response shapes.
package transport

import (
	"time"

	"github.com/google/uuid"

	"github.com/paasforest/immigrationai-sub000/internal/cases/repository"
)

// CaseResponse is the provider-facing view of a case.
type CaseResponse struct {
	ID        uuid.UUID `json:"id"`
	Reference string    `json:"reference"`
	LeadID    uuid.UUID `json:"lead_id"`
	Priority  string    `json:"priority"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ToCaseResponse maps a repository case to its API view.
func ToCaseResponse(c repository.Case) CaseResponse {
	return CaseResponse{
		ID:        c.ID,
		Reference: c.Reference,
		LeadID:    c.LeadID,
		Priority:  c.Priority,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
	}
}

// ToCaseResponses maps a slice of cases.
func ToCaseResponses(cases []repository.Case) []CaseResponse {
	out := make([]CaseResponse, 0, len(cases))
	for _, c := range cases {
		out = append(out, ToCaseResponse(c))
	}
	return out
}
