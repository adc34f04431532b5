package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Scharxi/tasmo-admin-sub001/internal/logger"
	"github.com/Scharxi/tasmo-admin-sub001/internal/models"
	"github.com/Scharxi/tasmo-admin-sub001/internal/repository"
)

// WorkflowParams carries a full workflow definition for create/update.
// Steps are taken in slice order; positions are assigned from it.
type WorkflowParams struct {
	Name    string
	Enabled bool
	Steps   []StepParams
}

type StepParams struct {
	DeviceID     string
	Action       string
	DelaySeconds int
	Conditions   []ConditionParams
}

type ConditionParams struct {
	DeviceID      string
	RequiredState string
}

type WorkflowService struct {
	workflowRepo repository.WorkflowRepo
	deviceRepo   repository.DeviceRepo
	runner       *Runner
}

func NewWorkflowService(workflowRepo repository.WorkflowRepo, deviceRepo repository.DeviceRepo, power PowerController, log *logger.Logger) *WorkflowService {
	return &WorkflowService{
		workflowRepo: workflowRepo,
		deviceRepo:   deviceRepo,
		runner:       NewRunner(workflowRepo, deviceRepo, power, log),
	}
}

func (s *WorkflowService) List(ctx context.Context) ([]models.Workflow, error) {
	return s.workflowRepo.List(ctx)
}

func (s *WorkflowService) Get(ctx context.Context, id string) (*models.Workflow, error) {
	w, err := s.workflowRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, fmt.Errorf("workflow %q: %w", id, ErrNotFound)
	}
	return w, nil
}

func (s *WorkflowService) Create(ctx context.Context, p WorkflowParams) (*models.Workflow, error) {
	steps, err := s.buildSteps(ctx, p)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	w := models.Workflow{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(p.Name),
		Enabled:   p.Enabled,
		Steps:     steps,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.workflowRepo.Create(ctx, w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *WorkflowService) Update(ctx context.Context, id string, p WorkflowParams) (*models.Workflow, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	steps, err := s.buildSteps(ctx, p)
	if err != nil {
		return nil, err
	}

	w := models.Workflow{
		ID:        id,
		Name:      strings.TrimSpace(p.Name),
		Enabled:   p.Enabled,
		Steps:     steps,
		CreatedAt: existing.CreatedAt,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.workflowRepo.Update(ctx, w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *WorkflowService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.workflowRepo.Delete(ctx, id)
}

// Execute runs the workflow synchronously to a terminal execution record.
func (s *WorkflowService) Execute(ctx context.Context, id string) (ExecutionOutcome, error) {
	return s.runner.Execute(ctx, id)
}

func (s *WorkflowService) Executions(ctx context.Context, id string) ([]models.WorkflowExecution, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.workflowRepo.ListExecutions(ctx, id)
}

// buildSteps validates the step list and materializes it with fresh step IDs
// and positions assigned from slice order.
func (s *WorkflowService) buildSteps(ctx context.Context, p WorkflowParams) ([]models.WorkflowStep, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if len(p.Steps) == 0 {
		return nil, fmt.Errorf("%w: a workflow needs at least one step", ErrValidation)
	}

	steps := make([]models.WorkflowStep, 0, len(p.Steps))
	for i, sp := range p.Steps {
		step := models.WorkflowStep{
			ID:       uuid.NewString(),
			Action:   strings.ToUpper(strings.TrimSpace(sp.Action)),
			Position: i,
		}

		switch step.Action {
		case models.ActionTurnOn, models.ActionTurnOff:
			if sp.DeviceID == "" {
				return nil, fmt.Errorf("%w: step %d needs a device", ErrValidation, i)
			}
			if err := s.requireDevice(ctx, sp.DeviceID, i); err != nil {
				return nil, err
			}
			step.DeviceID = sp.DeviceID
		case models.ActionDelay:
			if sp.DelaySeconds <= 0 {
				return nil, fmt.Errorf("%w: step %d DELAY needs delay_seconds > 0", ErrValidation, i)
			}
			step.DelaySeconds = sp.DelaySeconds
		default:
			return nil, fmt.Errorf("%w: step %d has unknown action %q", ErrValidation, i, sp.Action)
		}

		for _, cp := range sp.Conditions {
			state := strings.ToUpper(strings.TrimSpace(cp.RequiredState))
			if state != models.StateOn && state != models.StateOff {
				return nil, fmt.Errorf("%w: step %d condition state must be ON or OFF", ErrValidation, i)
			}
			if cp.DeviceID == "" {
				return nil, fmt.Errorf("%w: step %d condition needs a device", ErrValidation, i)
			}
			if err := s.requireDevice(ctx, cp.DeviceID, i); err != nil {
				return nil, err
			}
			step.Conditions = append(step.Conditions, models.WorkflowCondition{
				DeviceID:      cp.DeviceID,
				RequiredState: state,
			})
		}

		steps = append(steps, step)
	}
	return steps, nil
}

func (s *WorkflowService) requireDevice(ctx context.Context, deviceID string, stepIdx int) error {
	d, err := s.deviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		return err
	}
	if d == nil {
		return fmt.Errorf("step %d references unknown device %q: %w", stepIdx, deviceID, ErrNotFound)
	}
	return nil
}
