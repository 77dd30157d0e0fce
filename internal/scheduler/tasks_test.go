package scheduler

import (
	"testing"

	"github.com/google/uuid"
)

func TestLeadTaskPayloadRoundTrip(t *testing.T) {
	leadID := uuid.New()

	task, err := NewAssignTask(leadID)
	if err != nil {
		t.Fatalf("NewAssignTask: %v", err)
	}
	if task.Type() != TypeAssignLead {
		t.Errorf("task type = %s, want %s", task.Type(), TypeAssignLead)
	}

	payload, err := ParseLeadTaskPayload(task.Payload())
	if err != nil {
		t.Fatalf("ParseLeadTaskPayload: %v", err)
	}
	if payload.LeadID != leadID {
		t.Errorf("lead id = %s, want %s", payload.LeadID, leadID)
	}
}

func TestParseLeadTaskPayloadRejectsGarbage(t *testing.T) {
	if _, err := ParseLeadTaskPayload([]byte("not json")); err == nil {
		t.Error("expected error for malformed payload")
	}
}

func TestParseLeadTaskPayloadRejectsMissingLeadID(t *testing.T) {
	if _, err := ParseLeadTaskPayload([]byte(`{}`)); err == nil {
		t.Error("expected error for missing lead_id")
	}
	if _, err := ParseLeadTaskPayload([]byte(`{"lead_id":"00000000-0000-0000-0000-000000000000"}`)); err == nil {
		t.Error("expected error for nil lead_id")
	}
}
