package domain

import "testing"

func TestLeadStatusTransitions(t *testing.T) {
	tests := []struct {
		name string
		from LeadStatus
		to   LeadStatus
		want bool
	}{
		{"pending to assigned", LeadPendingAssignment, LeadAssigned, true},
		{"pending to no match", LeadPendingAssignment, LeadNoMatchFound, true},
		{"pending to declined all", LeadPendingAssignment, LeadDeclinedAll, true},
		{"pending to converted", LeadPendingAssignment, LeadConverted, false},
		{"assigned back to pending", LeadAssigned, LeadPendingAssignment, true},
		{"assigned to converted", LeadAssigned, LeadConverted, true},
		{"assigned to no match", LeadAssigned, LeadNoMatchFound, false},
		{"assigned to declined all", LeadAssigned, LeadDeclinedAll, false},
		{"converted is terminal", LeadConverted, LeadAssigned, false},
		{"no match is terminal", LeadNoMatchFound, LeadPendingAssignment, false},
		{"declined all is terminal", LeadDeclinedAll, LeadAssigned, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestLeadStatusTerminal(t *testing.T) {
	terminal := []LeadStatus{LeadConverted, LeadNoMatchFound, LeadDeclinedAll}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}

	active := []LeadStatus{LeadPendingAssignment, LeadAssigned}
	for _, s := range active {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestLeadStatusValid(t *testing.T) {
	if LeadStatus("bogus").Valid() {
		t.Error("unknown status should not be valid")
	}
	if !LeadPendingAssignment.Valid() {
		t.Error("pending_assignment should be valid")
	}
}

func TestAssignmentStatusTerminal(t *testing.T) {
	if AssignmentPending.Terminal() {
		t.Error("pending should not be terminal")
	}
	for _, s := range []AssignmentStatus{AssignmentAccepted, AssignmentDeclined, AssignmentExpired} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
}
