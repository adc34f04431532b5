package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Scharxi/tasmo-admin-sub001/internal/models"
)

type WorkflowSQLite struct {
	db *sql.DB
}

func NewWorkflowSQLite(db *sql.DB) *WorkflowSQLite {
	return &WorkflowSQLite{db: db}
}

var _ WorkflowRepo = (*WorkflowSQLite)(nil)

const (
	selectWorkflowsSQL    = `SELECT id, name, enabled, created_at, updated_at FROM workflows ORDER BY name`
	selectWorkflowByIDSQL = `SELECT id, name, enabled, created_at, updated_at FROM workflows WHERE id = ?`
	insertWorkflowSQL     = `INSERT INTO workflows (id, name, enabled, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	updateWorkflowSQL     = `UPDATE workflows SET name=?, enabled=?, updated_at=? WHERE id=?`
	deleteWorkflowSQL     = `DELETE FROM workflows WHERE id = ?`
	deleteStepsSQL        = `DELETE FROM workflow_steps WHERE workflow_id = ?`

	selectStepsSQL = `
		SELECT id, device_id, action, delay_s, position
		FROM workflow_steps WHERE workflow_id = ? ORDER BY position ASC
	`
	insertStepSQL = `
		INSERT INTO workflow_steps (id, workflow_id, device_id, action, delay_s, position)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	selectConditionsSQL = `
		SELECT device_id, required_state FROM workflow_conditions WHERE step_id = ? ORDER BY id
	`
	insertConditionSQL = `
		INSERT INTO workflow_conditions (step_id, device_id, required_state) VALUES (?, ?, ?)
	`

	insertExecutionSQL = `
		INSERT INTO workflow_executions (id, workflow_id, status, started_at) VALUES (?, ?, ?, ?)
	`
	finishExecutionSQL = `
		UPDATE workflow_executions SET status=?, completed_at=?, error=? WHERE id=?
	`
	selectExecutionsSQL = `
		SELECT id, workflow_id, status, started_at, completed_at, error
		FROM workflow_executions WHERE workflow_id = ? ORDER BY started_at DESC
	`
)

func (r *WorkflowSQLite) List(ctx context.Context) ([]models.Workflow, error) {
	rows, err := r.db.QueryContext(ctx, selectWorkflowsSQL)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.Workflow
	for rows.Next() {
		var w models.Workflow
		if err := rows.Scan(&w.ID, &w.Name, &w.Enabled, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan workflow row: %w", err)
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Steps and conditions are loaded per workflow; list sizes are small
	// (this is an admin dashboard, not a rules engine at scale).
	for i := range out {
		steps, err := r.loadSteps(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Steps = steps
	}
	return out, nil
}

// GetByID fetches a workflow with its ordered steps and each step's
// conditions. Returns (nil, nil) if not found.
func (r *WorkflowSQLite) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	var w models.Workflow
	err := r.db.QueryRowContext(ctx, selectWorkflowByIDSQL, id).
		Scan(&w.ID, &w.Name, &w.Enabled, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select workflow %q: %w", id, err)
	}

	w.Steps, err = r.loadSteps(ctx, id)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WorkflowSQLite) loadSteps(ctx context.Context, workflowID string) ([]models.WorkflowStep, error) {
	rows, err := r.db.QueryContext(ctx, selectStepsSQL, workflowID)
	if err != nil {
		return nil, fmt.Errorf("list steps for workflow %q: %w", workflowID, err)
	}
	defer func() { _ = rows.Close() }()

	var steps []models.WorkflowStep
	for rows.Next() {
		var (
			step     models.WorkflowStep
			deviceID sql.NullString
			delay    sql.NullInt64
		)
		if err := rows.Scan(&step.ID, &deviceID, &step.Action, &delay, &step.Position); err != nil {
			return nil, fmt.Errorf("scan step row: %w", err)
		}
		step.DeviceID = deviceID.String
		step.DelaySeconds = int(delay.Int64)
		steps = append(steps, step)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range steps {
		conditions, err := r.loadConditions(ctx, steps[i].ID)
		if err != nil {
			return nil, err
		}
		steps[i].Conditions = conditions
	}
	return steps, nil
}

func (r *WorkflowSQLite) loadConditions(ctx context.Context, stepID string) ([]models.WorkflowCondition, error) {
	rows, err := r.db.QueryContext(ctx, selectConditionsSQL, stepID)
	if err != nil {
		return nil, fmt.Errorf("list conditions for step %q: %w", stepID, err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.WorkflowCondition
	for rows.Next() {
		var c models.WorkflowCondition
		if err := rows.Scan(&c.DeviceID, &c.RequiredState); err != nil {
			return nil, fmt.Errorf("scan condition row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Create inserts the workflow with its steps and conditions in one transaction.
func (r *WorkflowSQLite) Create(ctx context.Context, w models.Workflow) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		now := time.Now().UTC()
		createdAt, updatedAt := w.CreatedAt, w.UpdatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		if updatedAt.IsZero() {
			updatedAt = now
		}
		if _, err := tx.ExecContext(ctx, insertWorkflowSQL, w.ID, w.Name, w.Enabled, createdAt, updatedAt); err != nil {
			return fmt.Errorf("insert workflow %q: %w", w.Name, err)
		}
		return insertSteps(ctx, tx, w.ID, w.Steps)
	})
}

// Update rewrites the workflow row and replaces its whole step list; step
// identity is not preserved across edits (conditions cascade with steps).
func (r *WorkflowSQLite) Update(ctx context.Context, w models.Workflow) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, updateWorkflowSQL, w.Name, w.Enabled, time.Now().UTC(), w.ID); err != nil {
			return fmt.Errorf("update workflow %q: %w", w.ID, err)
		}
		if _, err := tx.ExecContext(ctx, deleteStepsSQL, w.ID); err != nil {
			return fmt.Errorf("clear steps for workflow %q: %w", w.ID, err)
		}
		return insertSteps(ctx, tx, w.ID, w.Steps)
	})
}

func insertSteps(ctx context.Context, tx *sql.Tx, workflowID string, steps []models.WorkflowStep) error {
	for _, step := range steps {
		var deviceID any
		if step.DeviceID != "" {
			deviceID = step.DeviceID
		}
		var delay any
		if step.DelaySeconds > 0 {
			delay = step.DelaySeconds
		}
		if _, err := tx.ExecContext(ctx, insertStepSQL,
			step.ID, workflowID, deviceID, step.Action, delay, step.Position,
		); err != nil {
			return fmt.Errorf("insert step %d of workflow %q: %w", step.Position, workflowID, err)
		}
		for _, cond := range step.Conditions {
			if _, err := tx.ExecContext(ctx, insertConditionSQL, step.ID, cond.DeviceID, cond.RequiredState); err != nil {
				return fmt.Errorf("insert condition for step %q: %w", step.ID, err)
			}
		}
	}
	return nil
}

func (r *WorkflowSQLite) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, deleteWorkflowSQL, id)
	if err != nil {
		return fmt.Errorf("delete workflow %q: %w", id, err)
	}
	return nil
}

func (r *WorkflowSQLite) CreateExecution(ctx context.Context, e models.WorkflowExecution) error {
	startedAt := e.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, insertExecutionSQL, e.ID, e.WorkflowID, e.Status, startedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert execution %q: %w", e.ID, err)
	}
	return nil
}

// FinishExecution moves an execution to its terminal state. Called exactly
// once per execution: RUNNING -> COMPLETED or FAILED.
func (r *WorkflowSQLite) FinishExecution(ctx context.Context, id, status string, completedAt time.Time, errMsg string) error {
	var msg any
	if errMsg != "" {
		msg = errMsg
	}
	_, err := r.db.ExecContext(ctx, finishExecutionSQL, status, completedAt.UTC(), msg, id)
	if err != nil {
		return fmt.Errorf("finish execution %q: %w", id, err)
	}
	return nil
}

func (r *WorkflowSQLite) ListExecutions(ctx context.Context, workflowID string) ([]models.WorkflowExecution, error) {
	rows, err := r.db.QueryContext(ctx, selectExecutionsSQL, workflowID)
	if err != nil {
		return nil, fmt.Errorf("list executions for workflow %q: %w", workflowID, err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.WorkflowExecution
	for rows.Next() {
		var (
			e           models.WorkflowExecution
			completedAt sql.NullTime
			errMsg      sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.WorkflowID, &e.Status, &e.StartedAt, &completedAt, &errMsg); err != nil {
			return nil, fmt.Errorf("scan execution row: %w", err)
		}
		e.StartedAt = e.StartedAt.UTC()
		if completedAt.Valid {
			t := completedAt.Time.UTC()
			e.CompletedAt = &t
		}
		e.ErrorMsg = errMsg.String
		out = append(out, e)
	}
	return out, rows.Err()
}

// inTx runs fn inside a transaction, rolling back on error.
func (r *WorkflowSQLite) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
