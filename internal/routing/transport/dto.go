// Package transport defines the HTTP request/response shapes of the
// routing module.
package transport

import (
	"time"

	"github.com/paasforest/immigrationai-sub000/internal/routing/domain"

	"github.com/google/uuid"
)

// RespondRequest is a provider's answer to a pending assignment offer.
type RespondRequest struct {
	Action string `json:"action" validate:"required,oneof=accept decline"`
	Reason string `json:"reason,omitempty"`
}

// AssignmentResponse is the provider-facing view of one offer.
type AssignmentResponse struct {
	ID            uuid.UUID  `json:"id"`
	LeadID        uuid.UUID  `json:"leadId"`
	Status        string     `json:"status"`
	Attempt       int        `json:"attempt"`
	AssignedAt    time.Time  `json:"assignedAt"`
	ExpiresAt     time.Time  `json:"expiresAt"`
	RespondedAt   *time.Time `json:"respondedAt,omitempty"`
	DeclineReason *string    `json:"declineReason,omitempty"`
}

// ConvertedCaseResponse is returned to a provider whose accept succeeded.
type ConvertedCaseResponse struct {
	CaseID    uuid.UUID `json:"caseId"`
	Reference string    `json:"reference"`
}

// ToAssignmentResponse maps a domain assignment to its transport shape.
func ToAssignmentResponse(a domain.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:            a.ID,
		LeadID:        a.LeadID,
		Status:        string(a.Status),
		Attempt:       a.Attempt,
		AssignedAt:    a.AssignedAt,
		ExpiresAt:     a.ExpiresAt,
		RespondedAt:   a.RespondedAt,
		DeclineReason: a.DeclineReason,
	}
}

// ToLeadHistoryResponses maps a lead's offer history for one viewing
// provider. Decline reasons entered by other providers are withheld.
func ToLeadHistoryResponses(assignments []domain.Assignment, viewerID uuid.UUID) []AssignmentResponse {
	out := make([]AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		resp := ToAssignmentResponse(a)
		if a.ProviderID != viewerID {
			resp.DeclineReason = nil
		}
		out = append(out, resp)
	}
	return out
}

// ToAssignmentResponses maps a slice of assignments.
func ToAssignmentResponses(assignments []domain.Assignment) []AssignmentResponse {
	out := make([]AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, ToAssignmentResponse(a))
	}
	return out
}
