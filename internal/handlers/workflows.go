package handlers

import (
	"net/http"

	"github.com/Scharxi/tasmo-admin-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

// WorkflowRequest is the payload for creating/updating a workflow. Step
// order in the slice defines execution order.
type WorkflowRequest struct {
	Name    string        `json:"name" binding:"required" example:"Evening shutdown"`
	Enabled bool          `json:"enabled"`
	Steps   []StepRequest `json:"steps" binding:"required"`
}

type StepRequest struct {
	// Target device; required for TURN_ON/TURN_OFF
	DeviceID string `json:"device_id,omitempty"`
	// Allowed: TURN_ON, TURN_OFF, DELAY
	Action string `json:"action" binding:"required" example:"TURN_OFF"`
	// Seconds to wait; required for DELAY
	DelaySeconds int                `json:"delay_seconds,omitempty" example:"5"`
	Conditions   []ConditionRequest `json:"conditions,omitempty"`
}

type ConditionRequest struct {
	DeviceID string `json:"device_id" binding:"required"`
	// Allowed: ON, OFF
	RequiredState string `json:"required_state" binding:"required" example:"ON"`
}

func (r WorkflowRequest) toParams() service.WorkflowParams {
	p := service.WorkflowParams{Name: r.Name, Enabled: r.Enabled}
	for _, sr := range r.Steps {
		sp := service.StepParams{
			DeviceID:     sr.DeviceID,
			Action:       sr.Action,
			DelaySeconds: sr.DelaySeconds,
		}
		for _, cr := range sr.Conditions {
			sp.Conditions = append(sp.Conditions, service.ConditionParams{
				DeviceID:      cr.DeviceID,
				RequiredState: cr.RequiredState,
			})
		}
		p.Steps = append(p.Steps, sp)
	}
	return p
}

// @Summary      List workflows
// @Tags         workflows
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, workflows"
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/workflows [get]
// @Security     BearerAuth
func (h *Handler) listWorkflows(c *gin.Context) {
	workflows, err := h.services.Workflows.List(c.Request.Context())
	if err != nil {
		h.respondServiceError(c, err, "workflows_list_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(workflows), "workflows": workflows})
}

// @Summary      Get a workflow
// @Tags         workflows
// @Produce      json
// @Param        id   path      string  true  "Workflow ID"
// @Success      200  {object}  models.Workflow
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/workflows/{id} [get]
// @Security     BearerAuth
func (h *Handler) getWorkflow(c *gin.Context) {
	w, err := h.services.Workflows.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondServiceError(c, err, "workflow_get_failed")
		return
	}
	c.JSON(http.StatusOK, w)
}

// @Summary      Create a workflow
// @Tags         workflows
// @Accept       json
// @Produce      json
// @Param        body  body      WorkflowRequest  true  "Workflow payload"
// @Success      201   {object}  models.Workflow
// @Failure      400   {object}  map[string]string
// @Router       /api/v1/workflows [post]
// @Security     BearerAuth
func (h *Handler) createWorkflow(c *gin.Context) {
	var req WorkflowRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	w, err := h.services.Workflows.Create(c.Request.Context(), req.toParams())
	if err != nil {
		h.respondServiceError(c, err, "workflow_create_failed")
		return
	}
	c.JSON(http.StatusCreated, w)
}

// @Summary      Update a workflow
// @Tags         workflows
// @Accept       json
// @Produce      json
// @Param        id    path      string           true  "Workflow ID"
// @Param        body  body      WorkflowRequest  true  "Workflow payload"
// @Success      200   {object}  models.Workflow
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/workflows/{id} [put]
// @Security     BearerAuth
func (h *Handler) updateWorkflow(c *gin.Context) {
	var req WorkflowRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	w, err := h.services.Workflows.Update(c.Request.Context(), c.Param("id"), req.toParams())
	if err != nil {
		h.respondServiceError(c, err, "workflow_update_failed")
		return
	}
	c.JSON(http.StatusOK, w)
}

// @Summary      Delete a workflow
// @Tags         workflows
// @Produce      json
// @Param        id   path  string  true  "Workflow ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/workflows/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteWorkflow(c *gin.Context) {
	if err := h.services.Workflows.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondServiceError(c, err, "workflow_delete_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// @Summary      Execute a workflow
// @Description  Runs the steps sequentially. A run that fails mid-way still answers 200; the outcome carries status FAILED plus the execution id for correlation with the stored record.
// @Tags         workflows
// @Produce      json
// @Param        id   path      string  true  "Workflow ID"
// @Success      200  {object}  service.ExecutionOutcome
// @Failure      400  {object}  map[string]string  "workflow disabled"
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/workflows/{id}/execute [post]
// @Security     BearerAuth
func (h *Handler) executeWorkflow(c *gin.Context) {
	outcome, err := h.services.Workflows.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondServiceError(c, err, "workflow_execute_failed")
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// @Summary      List executions of a workflow
// @Tags         workflows
// @Produce      json
// @Param        id   path      string  true  "Workflow ID"
// @Success      200  {object}  map[string]interface{}  "count, executions"
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/workflows/{id}/executions [get]
// @Security     BearerAuth
func (h *Handler) listExecutions(c *gin.Context) {
	executions, err := h.services.Workflows.Executions(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondServiceError(c, err, "workflow_executions_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(executions), "executions": executions})
}
