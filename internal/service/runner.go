package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Scharxi/tasmo-admin-sub001/internal/logger"
	"github.com/Scharxi/tasmo-admin-sub001/internal/models"
	"github.com/Scharxi/tasmo-admin-sub001/internal/repository"
)

// Pause between consecutive steps so back-to-back commands don't overload
// the plugs.
const interStepDelay = 500 * time.Millisecond

// PowerController is the slice of the device service the runner drives.
// Using it (instead of the raw gateway) keeps the mark-offline-on-failure
// policy in one place.
type PowerController interface {
	SetPower(ctx context.Context, id string, on bool) (models.ToggleResult, error)
}

// StepResult is one entry of the structured step-outcome stream an execution
// is built from; progress is observable without parsing logs.
type StepResult struct {
	Position int           `json:"position"`
	Action   string        `json:"action"`
	DeviceID string        `json:"device_id,omitempty"`
	OK       bool          `json:"ok"`
	Err      string        `json:"error,omitempty"`
	Elapsed  time.Duration `json:"elapsed_ms"`
}

// ExecutionOutcome is what Execute returns to the API layer. The execution
// ID is always present once a record was created, so a FAILED run can be
// correlated with its stored record.
type ExecutionOutcome struct {
	ExecutionID string       `json:"execution_id"`
	Status      string       `json:"status"`
	Message     string       `json:"message,omitempty"`
	Steps       []StepResult `json:"steps"`
}

// Runner executes a workflow's steps strictly in ascending position order,
// checking each step's conditions against the most recently persisted device
// state immediately before the step runs. One execution record per run:
// RUNNING -> COMPLETED, or RUNNING -> FAILED at the first failing step with
// no rollback of already-applied steps. Concurrent triggers of the same
// workflow are not locked against each other; they race as independent
// executions.
type Runner struct {
	workflowRepo repository.WorkflowRepo
	deviceRepo   repository.DeviceRepo
	power        PowerController
	log          *logger.Logger

	// sleep is swapped out in tests; the default honors ctx cancellation.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewRunner(workflowRepo repository.WorkflowRepo, deviceRepo repository.DeviceRepo, power PowerController, log *logger.Logger) *Runner {
	return &Runner{
		workflowRepo: workflowRepo,
		deviceRepo:   deviceRepo,
		power:        power,
		log:          log,
		sleep:        sleepCtx,
	}
}

// Execute runs one workflow to a terminal state. A missing workflow returns
// ErrNotFound and a disabled one ErrWorkflowDisabled, in both cases without
// creating an execution record.
func (r *Runner) Execute(ctx context.Context, workflowID string) (ExecutionOutcome, error) {
	wf, err := r.workflowRepo.GetByID(ctx, workflowID)
	if err != nil {
		return ExecutionOutcome{}, err
	}
	if wf == nil {
		return ExecutionOutcome{}, fmt.Errorf("workflow %q: %w", workflowID, ErrNotFound)
	}
	if !wf.Enabled {
		return ExecutionOutcome{}, fmt.Errorf("workflow %q: %w", workflowID, ErrWorkflowDisabled)
	}

	exec := models.WorkflowExecution{
		ID:         uuid.NewString(),
		WorkflowID: wf.ID,
		Status:     models.ExecutionRunning,
		StartedAt:  time.Now().UTC(),
	}
	if err := r.workflowRepo.CreateExecution(ctx, exec); err != nil {
		return ExecutionOutcome{}, err
	}

	results, runErr := r.runSteps(ctx, wf)

	outcome := ExecutionOutcome{ExecutionID: exec.ID, Steps: results}
	now := time.Now().UTC()
	if runErr != nil {
		outcome.Status = models.ExecutionFailed
		outcome.Message = runErr.Error()
	} else {
		outcome.Status = models.ExecutionCompleted
	}

	if err := r.workflowRepo.FinishExecution(ctx, exec.ID, outcome.Status, now, outcome.Message); err != nil {
		r.log.Errorw("finish_execution_failed", "execution", exec.ID, "err", err)
	}
	r.log.Infow("workflow_execution_finished",
		"workflow", wf.ID, "execution", exec.ID, "status", outcome.Status, "steps", len(results))

	return outcome, nil
}

// runSteps walks the ordered steps. Steps after the first failure never run.
func (r *Runner) runSteps(ctx context.Context, wf *models.Workflow) ([]StepResult, error) {
	var results []StepResult

	for i, step := range wf.Steps {
		started := time.Now()
		err := r.runStep(ctx, step)

		res := StepResult{
			Position: step.Position,
			Action:   step.Action,
			DeviceID: step.DeviceID,
			OK:       err == nil,
			Elapsed:  time.Since(started),
		}
		if err != nil {
			res.Err = err.Error()
		}
		results = append(results, res)
		r.log.Infow("workflow_step_finished",
			"workflow", wf.ID, "position", step.Position, "action", step.Action, "ok", res.OK, "err", res.Err)

		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", step.Position, step.Action, err)
		}

		// Brief pause between steps, skipped after the last one.
		if i < len(wf.Steps)-1 {
			if err := r.sleep(ctx, interStepDelay); err != nil {
				return results, err
			}
		}
	}
	return results, nil
}

func (r *Runner) runStep(ctx context.Context, step models.WorkflowStep) error {
	// Conditions are evaluated immediately before the step, against the
	// most recently persisted device state, so a condition observes effects
	// of earlier steps in the same run.
	for _, cond := range step.Conditions {
		if err := r.checkCondition(ctx, cond); err != nil {
			return err
		}
	}

	switch step.Action {
	case models.ActionTurnOn, models.ActionTurnOff:
		on := step.Action == models.ActionTurnOn
		res, err := r.power.SetPower(ctx, step.DeviceID, on)
		if err != nil {
			return err
		}
		if !res.Success {
			return fmt.Errorf("device %q rejected %s: %s", step.DeviceID, step.Action, res.Err)
		}
		return nil
	case models.ActionDelay:
		if step.DelaySeconds <= 0 {
			return nil // no-op, never blocks
		}
		return r.sleep(ctx, time.Duration(step.DelaySeconds)*time.Second)
	default:
		return fmt.Errorf("unknown action %q", step.Action)
	}
}

func (r *Runner) checkCondition(ctx context.Context, cond models.WorkflowCondition) error {
	d, err := r.deviceRepo.GetByID(ctx, cond.DeviceID)
	if err != nil {
		return err
	}
	if d == nil {
		return fmt.Errorf("condition references unknown device %q", cond.DeviceID)
	}

	actual := models.StateOff
	if d.PowerState {
		actual = models.StateOn
	}
	if actual != cond.RequiredState {
		return fmt.Errorf("condition failed: device %q (%s) is %s, expected %s",
			d.Name, d.ID, actual, cond.RequiredState)
	}
	return nil
}

// sleepCtx waits for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
