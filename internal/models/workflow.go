package models

import "time"

// Step actions.
const (
	ActionTurnOn  = "TURN_ON"
	ActionTurnOff = "TURN_OFF"
	ActionDelay   = "DELAY"
)

// Required device states for conditions.
const (
	StateOn  = "ON"
	StateOff = "OFF"
)

// Execution statuses. Transitions are one-directional:
// RUNNING -> exactly one of COMPLETED / FAILED.
const (
	ExecutionRunning   = "RUNNING"
	ExecutionCompleted = "COMPLETED"
	ExecutionFailed    = "FAILED"
)

// Workflow is a named, ordered sequence of device actions with optional
// guard conditions. Steps are ordered by Position ascending.
type Workflow struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Enabled   bool           `json:"enabled"`
	Steps     []WorkflowStep `json:"steps"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// WorkflowStep is one action within a workflow. DelaySeconds is meaningful
// only for DELAY actions; DeviceID only for TURN_ON/TURN_OFF.
type WorkflowStep struct {
	ID           string              `json:"id"`
	DeviceID     string              `json:"device_id,omitempty"`
	Action       string              `json:"action"` // TURN_ON | TURN_OFF | DELAY
	DelaySeconds int                 `json:"delay_seconds,omitempty"`
	Position     int                 `json:"position"`
	Conditions   []WorkflowCondition `json:"conditions,omitempty"`
}

// WorkflowCondition requires a device to be in a given power state
// immediately before its owning step runs.
type WorkflowCondition struct {
	DeviceID      string `json:"device_id"`
	RequiredState string `json:"required_state"` // ON | OFF
}

// WorkflowExecution tracks one run of a workflow to a terminal outcome.
type WorkflowExecution struct {
	ID          string     `json:"id"`
	WorkflowID  string     `json:"workflow_id"`
	Status      string     `json:"status"` // RUNNING | COMPLETED | FAILED
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ErrorMsg    string     `json:"error,omitempty"`
}
