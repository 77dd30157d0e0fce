// Package events defines the domain events exchanged between modules.
package events

import (
	"time"

	"github.com/google/uuid"
)

// LeadSubmitted is published when a new lead enters the intake pipeline.
type LeadSubmitted struct {
	BaseEvent
	LeadID uuid.UUID
}

// EventName returns the unique event identifier.
func (e LeadSubmitted) EventName() string { return "lead.submitted" }

// AssignmentOffered is published when a lead is offered to a provider.
// The notification module delivers the provider email on this event;
// delivery failures never reach the routing engine.
type AssignmentOffered struct {
	BaseEvent
	AssignmentID uuid.UUID
	LeadID       uuid.UUID
	ProviderID   uuid.UUID
	Attempt      int
	ExpiresAt    time.Time
}

// EventName returns the unique event identifier.
func (e AssignmentOffered) EventName() string { return "routing.assignment_offered" }

// AssignmentDeclined is published when a provider declines an offer.
type AssignmentDeclined struct {
	BaseEvent
	AssignmentID uuid.UUID
	LeadID       uuid.UUID
	ProviderID   uuid.UUID
	Attempt      int
	Reason       string
}

// EventName returns the unique event identifier.
func (e AssignmentDeclined) EventName() string { return "routing.assignment_declined" }

// AssignmentExpired is published when a pending offer passes its deadline,
// whether detected by the sweep or on a provider's late response.
type AssignmentExpired struct {
	BaseEvent
	AssignmentID uuid.UUID
	LeadID       uuid.UUID
	ProviderID   uuid.UUID
	Attempt      int
}

// EventName returns the unique event identifier.
func (e AssignmentExpired) EventName() string { return "routing.assignment_expired" }

// LeadRoutingDeadEnd is published when routing terminates without a
// conversion: either no candidate was available (no_match_found) or every
// allowed attempt was used up (declined_all).
type LeadRoutingDeadEnd struct {
	BaseEvent
	LeadID  uuid.UUID
	Outcome string
}

// EventName returns the unique event identifier.
func (e LeadRoutingDeadEnd) EventName() string { return "routing.lead_dead_end" }

// LeadConverted is published when an accepted lead has been materialized
// into a case. The notification module sends the applicant the provider's
// contact details on this event.
type LeadConverted struct {
	BaseEvent
	LeadID        uuid.UUID
	CaseID        uuid.UUID
	CaseReference string
	ProviderID    uuid.UUID
}

// EventName returns the unique event identifier.
func (e LeadConverted) EventName() string { return "cases.lead_converted" }
