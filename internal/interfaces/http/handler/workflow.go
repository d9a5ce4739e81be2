package handler

import (
	presaleapp "github.com/diecast/backoffice/internal/application/presale"
	"github.com/diecast/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// WorkflowHandler exposes the assign-and-plan orchestration
type WorkflowHandler struct {
	BaseHandler
	workflow *presaleapp.AssignAndPlanWorkflow
}

// NewWorkflowHandler creates a new WorkflowHandler
func NewWorkflowHandler(workflow *presaleapp.AssignAndPlanWorkflow) *WorkflowHandler {
	return &WorkflowHandler{workflow: workflow}
}

// assignAndPlanResponse carries the partial-success outcome over the wire
type assignAndPlanResponse struct {
	UnitIDs   []string                 `json:"unit_ids"`
	Plan      *presaleapp.PlanResponse `json:"plan,omitempty"`
	PlanError string                   `json:"plan_error,omitempty"`
}

// AssignAndPlan assigns units to a delivery and creates its payment plan.
// The two steps are separate aggregate transactions: a plan failure leaves
// the units assigned and is reported in the response instead of rolled back.
func (h *WorkflowHandler) AssignAndPlan(c *gin.Context) {
	var req presaleapp.AssignAndPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.workflow.Execute(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	resp := assignAndPlanResponse{
		UnitIDs: make([]string, 0, len(result.UnitIDs)),
		Plan:    result.Plan,
	}
	for _, id := range result.UnitIDs {
		resp.UnitIDs = append(resp.UnitIDs, id.String())
	}
	if result.PlanErr != nil {
		resp.PlanError = result.PlanErr.Error()
	}

	h.Success(c, resp)
}

// RegisterRoutes registers workflow routes
func (h *WorkflowHandler) RegisterRoutes(rg *gin.RouterGroup) {
	workflows := rg.Group("/presale/workflows")
	{
		workflows.POST("/assign-and-plan", h.AssignAndPlan)
	}
}
