// Package scheduler moves routing work off the request path. Tasks are
// queued in Redis via asynq and processed by the worker binary, which also
// runs the periodic expiry sweep.
package scheduler

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task type names. Shared between the client (producers) and the worker.
const (
	TypeAssignLead  = "routing:assign"
	TypeReassign    = "routing:reassign"
	TypeExpirySweep = "routing:expiry_sweep"
)

// LeadTaskPayload is the payload for assign and reassign tasks.
type LeadTaskPayload struct {
	LeadID uuid.UUID `json:"lead_id"`
}

// NewAssignTask creates a task that runs the initial routing pass for a
// lead.
func NewAssignTask(leadID uuid.UUID) (*asynq.Task, error) {
	payload, err := json.Marshal(LeadTaskPayload{LeadID: leadID})
	if err != nil {
		return nil, fmt.Errorf("marshal assign payload: %w", err)
	}
	return asynq.NewTask(TypeAssignLead, payload), nil
}

// NewReassignTask creates a task that reroutes a lead after a decline or
// expiry.
func NewReassignTask(leadID uuid.UUID) (*asynq.Task, error) {
	payload, err := json.Marshal(LeadTaskPayload{LeadID: leadID})
	if err != nil {
		return nil, fmt.Errorf("marshal reassign payload: %w", err)
	}
	return asynq.NewTask(TypeReassign, payload), nil
}

// NewExpirySweepTask creates the periodic sweep task. It carries no payload.
func NewExpirySweepTask() *asynq.Task {
	return asynq.NewTask(TypeExpirySweep, nil)
}

// ParseLeadTaskPayload decodes an assign/reassign payload.
func ParseLeadTaskPayload(data []byte) (LeadTaskPayload, error) {
	var p LeadTaskPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return LeadTaskPayload{}, fmt.Errorf("unmarshal lead task payload: %w", err)
	}
	if p.LeadID == uuid.Nil {
		return LeadTaskPayload{}, fmt.Errorf("lead task payload missing lead_id")
	}
	return p, nil
}
