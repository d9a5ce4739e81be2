package presale

import (
	"context"

	"github.com/diecast/backoffice/internal/infrastructure/telemetry"
)

// AssignAndPlanWorkflow chains unit assignment and plan creation. The two
// aggregates are persisted independently: there is no cross-aggregate
// rollback, so a plan failure leaves the units assigned and is surfaced on
// the result for the caller to compensate (unassign or retry the plan).
type AssignAndPlanWorkflow struct {
	lots  *LotService
	plans *PaymentPlanService
}

// NewAssignAndPlanWorkflow creates a new AssignAndPlanWorkflow
func NewAssignAndPlanWorkflow(lots *LotService, plans *PaymentPlanService) *AssignAndPlanWorkflow {
	return &AssignAndPlanWorkflow{lots: lots, plans: plans}
}

// Execute assigns the units, then creates the plan. A non-nil error means the
// assignment itself failed and nothing was committed. A nil error with a
// non-nil result.PlanErr means the units are assigned but the plan was not
// created.
func (w *AssignAndPlanWorkflow) Execute(ctx context.Context, req AssignAndPlanRequest) (*AssignAndPlanResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "presale_workflow", "assign_and_plan",
		telemetry.WithAttribute(telemetry.SpanAttrLotID, req.LotID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrDeliveryID, req.Assignment.DeliveryID.String()))
	defer span.End()

	unitIDs, err := w.lots.AssignUnitsToDelivery(ctx, req.LotID, req.Assignment)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result := &AssignAndPlanResult{UnitIDs: unitIDs}

	plan, err := w.plans.CreatePlan(ctx, req.Plan)
	if err != nil {
		result.PlanErr = err
		telemetry.AddEvent(span, "plan_step_failed", "error", err.Error())
		return result, nil
	}

	result.Plan = plan
	return result, nil
}
