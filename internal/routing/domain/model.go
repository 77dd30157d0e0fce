package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// LeadExpiryWindow is the informational validity of a submitted lead.
// It is recorded at submission and surfaced for display; the routing
// engine does not enforce it.
const LeadExpiryWindow = 7 * 24 * time.Hour

// Lead is a submitted service request awaiting provider assignment.
type Lead struct {
	ID                 uuid.UUID
	ServiceTypeID      uuid.UUID
	ServiceTypeName    string
	ApplicantName      string
	ApplicantEmail     string
	ApplicantPhone     string
	OriginCountry      string
	DestinationCountry string
	Urgency            string
	Description        string
	Status             LeadStatus
	CaseID             *uuid.UUID
	CreatedAt          time.Time
	ExpiresAt          time.Time
}

// Assignment is one timed offer of a lead to one provider.
type Assignment struct {
	ID            uuid.UUID
	LeadID        uuid.UUID
	ProviderID    uuid.UUID
	Status        AssignmentStatus
	Attempt       int
	AssignedAt    time.Time
	ExpiresAt     time.Time
	RespondedAt   *time.Time
	DeclineReason *string
}

// Expired reports whether a still-pending offer has passed its deadline.
// Terminal offers are never considered expired retroactively.
func (a Assignment) Expired(now time.Time) bool {
	return a.Status == AssignmentPending && now.After(a.ExpiresAt)
}

// Specialization is a provider's willingness and capacity for one service
// type. Empty corridor sets are explicit wildcards.
type Specialization struct {
	ProviderID           uuid.UUID
	ServiceTypeID        uuid.UUID
	OriginCountries      []string
	DestinationCountries []string
	MaxConcurrentLeads   int
	AcceptingLeads       bool
	SuccessRate          *int
	Independent          bool
}

// MatchesCorridor reports whether the specialization serves the given
// origin/destination pair. An empty corridor set matches any value in that
// dimension; a non-empty set only matches listed values. Comparison is
// case-insensitive on the stored country names.
func (s Specialization) MatchesCorridor(origin, destination string) bool {
	return corridorContains(s.OriginCountries, origin) &&
		corridorContains(s.DestinationCountries, destination)
}

func corridorContains(corridor []string, country string) bool {
	if len(corridor) == 0 {
		return true
	}
	for _, c := range corridor {
		if strings.EqualFold(c, country) {
			return true
		}
	}
	return false
}

// Candidate is a specialization that survived corridor and capacity
// filtering, with its current load and computed score.
type Candidate struct {
	Specialization
	ActiveAssignments int
	Score             int
}
