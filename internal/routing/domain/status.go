// Package domain provides core business rules for the intake routing engine.
package domain

// LeadStatus is the lifecycle state of a submitted lead.
type LeadStatus string

const (
	// LeadPendingAssignment is the initial state: no live offer exists.
	LeadPendingAssignment LeadStatus = "pending_assignment"
	// LeadAssigned means exactly one pending offer is out to a provider.
	LeadAssigned LeadStatus = "assigned"
	// LeadConverted is the terminal success state: a case exists.
	LeadConverted LeadStatus = "converted"
	// LeadNoMatchFound is terminal: the candidate pool was exhausted.
	// This can happen as early as the first attempt.
	LeadNoMatchFound LeadStatus = "no_match_found"
	// LeadDeclinedAll is terminal: the maximum number of providers were
	// offered the lead and none accepted.
	LeadDeclinedAll LeadStatus = "declined_all"
)

// leadTransitions is the allowed lead state machine.
var leadTransitions = map[LeadStatus][]LeadStatus{
	LeadPendingAssignment: {LeadAssigned, LeadNoMatchFound, LeadDeclinedAll},
	LeadAssigned:          {LeadPendingAssignment, LeadConverted},
}

// Terminal reports whether no further routing actions may occur for the lead.
func (s LeadStatus) Terminal() bool {
	return s == LeadConverted || s == LeadNoMatchFound || s == LeadDeclinedAll
}

// CanTransitionTo reports whether the lead may move from s to next.
func (s LeadStatus) CanTransitionTo(next LeadStatus) bool {
	for _, allowed := range leadTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known lead status.
func (s LeadStatus) Valid() bool {
	switch s {
	case LeadPendingAssignment, LeadAssigned, LeadConverted, LeadNoMatchFound, LeadDeclinedAll:
		return true
	}
	return false
}

// AssignmentStatus is the state of a single offer to a provider.
type AssignmentStatus string

const (
	// AssignmentPending is the initial state of a fresh offer.
	AssignmentPending AssignmentStatus = "pending"
	// AssignmentAccepted is terminal; the lead converts to a case.
	AssignmentAccepted AssignmentStatus = "accepted"
	// AssignmentDeclined is terminal; a decline reason is recorded.
	AssignmentDeclined AssignmentStatus = "declined"
	// AssignmentExpired is terminal; the offer passed its deadline.
	AssignmentExpired AssignmentStatus = "expired"
)

// Terminal reports whether the offer can no longer change state.
func (s AssignmentStatus) Terminal() bool {
	return s == AssignmentAccepted || s == AssignmentDeclined || s == AssignmentExpired
}

// Valid reports whether s is a known assignment status.
func (s AssignmentStatus) Valid() bool {
	switch s {
	case AssignmentPending, AssignmentAccepted, AssignmentDeclined, AssignmentExpired:
		return true
	}
	return false
}
