package presale

import (
	"context"
	"errors"
	"time"

	"github.com/diecast/backoffice/internal/domain/logistics"
	"github.com/diecast/backoffice/internal/domain/presale"
	"github.com/diecast/backoffice/internal/domain/shared"
	"github.com/diecast/backoffice/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentPlanService handles installment plan operations: creation, payment
// recording, overdue detection and the delivery status mirror.
type PaymentPlanService struct {
	planRepo       presale.PaymentPlanRepository
	deliveryRepo   logistics.DeliveryRepository
	eventPublisher shared.EventPublisher
}

// NewPaymentPlanService creates a new PaymentPlanService
func NewPaymentPlanService(
	planRepo presale.PaymentPlanRepository,
	deliveryRepo logistics.DeliveryRepository,
) *PaymentPlanService {
	return &PaymentPlanService{
		planRepo:     planRepo,
		deliveryRepo: deliveryRepo,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PaymentPlanService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// publishDomainEvents publishes all pending domain events from the plan
func (s *PaymentPlanService) publishDomainEvents(ctx context.Context, plan *presale.PaymentPlan) {
	if s.eventPublisher == nil {
		return
	}
	events := plan.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	plan.ClearDomainEvents()
}

// syncDeliveryMirror writes the plan link and status onto the delivery. Mirror
// failures are reported to the caller: the delivery row is the surface the
// back office reads, so a stale mirror is a real fault, not an audit miss.
func (s *PaymentPlanService) syncDeliveryMirror(ctx context.Context, plan *presale.PaymentPlan, link bool) error {
	if s.deliveryRepo == nil {
		return nil
	}

	delivery, err := s.deliveryRepo.FindByID(ctx, plan.DeliveryID)
	if err != nil {
		return err
	}

	if link {
		delivery.LinkPaymentPlan(plan.ID, plan.Status.String())
	} else {
		delivery.SyncPreSaleStatus(plan.Status.String())
	}
	return s.deliveryRepo.Save(ctx, delivery)
}

// CreatePlan creates an installment plan for a delivery. One plan per
// delivery: a second create is rejected with DUPLICATE_PLAN.
func (s *PaymentPlanService) CreatePlan(ctx context.Context, req CreatePlanRequest) (*PlanResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment_plan", "create",
		telemetry.WithAttribute(telemetry.SpanAttrDeliveryID, req.DeliveryID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrAmount, req.TotalAmount.String()))
	defer span.End()

	existing, err := s.planRepo.FindByDelivery(ctx, req.DeliveryID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if existing != nil {
		err := shared.NewDomainError("DUPLICATE_PLAN", "Delivery already has a payment plan")
		telemetry.RecordError(span, err)
		return nil, err
	}

	if s.deliveryRepo != nil {
		if _, err := s.deliveryRepo.FindByID(ctx, req.DeliveryID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("DELIVERY_NOT_FOUND", "Delivery not found")
			}
			return nil, err
		}
	}

	plan, err := presale.NewPaymentPlan(
		req.DeliveryID,
		req.TotalAmount,
		req.NumberOfPayments,
		presale.PaymentFrequency(req.Frequency),
		req.StartDate,
		presale.PlanCustomerInput{CustomerID: req.CustomerID, CustomerName: req.CustomerName},
		req.BonusPercentage,
	)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.planRepo.Save(ctx, plan); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.syncDeliveryMirror(ctx, plan, true); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishDomainEvents(ctx, plan)

	response := ToPlanResponse(plan)
	return &response, nil
}

// GetByID retrieves a plan by ID
func (s *PaymentPlanService) GetByID(ctx context.Context, planID uuid.UUID) (*PlanResponse, error) {
	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	response := ToPlanResponse(plan)
	return &response, nil
}

// GetByDelivery retrieves the plan attached to a delivery
func (s *PaymentPlanService) GetByDelivery(ctx context.Context, deliveryID uuid.UUID) (*PlanResponse, error) {
	plan, err := s.planRepo.FindByDelivery(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	response := ToPlanResponse(plan)
	return &response, nil
}

// GetSchedule returns the installment schedule of a plan
func (s *PaymentPlanService) GetSchedule(ctx context.Context, planID uuid.UUID) ([]InstallmentResponse, error) {
	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	return ToPlanResponse(plan).Installments, nil
}

// NextPaymentDue returns the earliest unsettled installment, or nil when the
// plan is fully settled
func (s *PaymentPlanService) NextPaymentDue(ctx context.Context, planID uuid.UUID) (*InstallmentResponse, error) {
	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	next := plan.NextPaymentDue()
	if next == nil {
		return nil, nil
	}
	return &InstallmentResponse{
		ID:            next.ID,
		Sequence:      next.Sequence,
		ScheduledDate: next.ScheduledDate,
		AmountDue:     next.AmountDue,
		AmountPaid:    next.AmountPaid,
		ActualDate:    next.ActualDate,
		IsOverdue:     next.IsOverdue,
		IsSettled:     next.IsSettled(),
		Notes:         next.Notes,
	}, nil
}

// RecordPayment applies a payment to the plan and syncs the delivery mirror
func (s *PaymentPlanService) RecordPayment(ctx context.Context, planID uuid.UUID, req RecordPaymentRequest) (*RecordPaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment_plan", "record_payment",
		telemetry.WithAttribute(telemetry.SpanAttrPlanID, planID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrAmount, req.Amount.String()))
	defer span.End()

	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	installmentID, err := plan.RecordPayment(req.Amount, req.PaymentDate, req.Notes)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.planRepo.SaveWithLock(ctx, plan); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.syncDeliveryMirror(ctx, plan, false); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishDomainEvents(ctx, plan)
	telemetry.AddEvent(span, "payment_recorded",
		"installment_id", installmentID.String(),
		"plan_status", plan.Status.String())

	return &RecordPaymentResponse{
		Plan:          ToPlanResponse(plan),
		InstallmentID: installmentID,
	}, nil
}

// CheckOverdue re-evaluates a single plan's overdue state as of the given
// instant and persists any change
func (s *PaymentPlanService) CheckOverdue(ctx context.Context, planID uuid.UUID, asOf time.Time) (*PlanResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment_plan", "check_overdue",
		telemetry.WithAttribute(telemetry.SpanAttrPlanID, planID.String()))
	defer span.End()

	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	plan.CheckOverduePayments(asOf)

	if err := s.planRepo.Save(ctx, plan); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.syncDeliveryMirror(ctx, plan, false); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishDomainEvents(ctx, plan)

	response := ToPlanResponse(plan)
	return &response, nil
}

// SweepOverdue re-evaluates every pending or in-progress plan. Intended for a
// periodic job; each plan is persisted individually so one failure does not
// abort the sweep.
func (s *PaymentPlanService) SweepOverdue(ctx context.Context, asOf time.Time) (*SweepOverdueResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment_plan", "sweep_overdue")
	defer span.End()

	plans, err := s.planRepo.FindActive(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result := &SweepOverdueResponse{SweptAt: asOf}
	for i := range plans {
		plan := &plans[i]
		result.PlansChecked++

		plan.CheckOverduePayments(asOf)
		if plan.HasOverduePayments {
			result.PlansOverdue++
		}

		if err := s.planRepo.Save(ctx, plan); err != nil {
			telemetry.AddEvent(span, "sweep_save_failed", telemetry.SpanAttrPlanID, plan.ID.String())
			continue
		}
		if err := s.syncDeliveryMirror(ctx, plan, false); err != nil {
			telemetry.AddEvent(span, "sweep_mirror_failed", telemetry.SpanAttrPlanID, plan.ID.String())
		}
		s.publishDomainEvents(ctx, plan)
	}

	telemetry.SetAttributes(span,
		"plans_checked", result.PlansChecked,
		"plans_overdue", result.PlansOverdue)
	return result, nil
}

// ListOverdue returns plans currently flagged with overdue payments
func (s *PaymentPlanService) ListOverdue(ctx context.Context) ([]PlanResponse, error) {
	plans, err := s.planRepo.FindOverdue(ctx)
	if err != nil {
		return nil, err
	}
	return ToPlanResponses(plans), nil
}

// ApplyBonus manually applies the early-payment bonus to a plan
func (s *PaymentPlanService) ApplyBonus(ctx context.Context, planID uuid.UUID) (*PlanResponse, error) {
	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	if !plan.EarlyPaymentBonus.IsPositive() {
		return nil, shared.NewDomainError("NO_BONUS_CONFIGURED", "Plan has no early payment bonus")
	}
	if plan.BonusApplied {
		return nil, shared.NewDomainError("BONUS_ALREADY_APPLIED", "Bonus was already applied")
	}

	plan.ApplyEarlyPaymentBonus()

	if err := s.planRepo.SaveWithLock(ctx, plan); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, plan)

	response := ToPlanResponse(plan)
	return &response, nil
}

// CancelPlan terminates a plan and syncs the delivery mirror
func (s *PaymentPlanService) CancelPlan(ctx context.Context, planID uuid.UUID, req CancelPlanRequest) (*PlanResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment_plan", "cancel",
		telemetry.WithAttribute(telemetry.SpanAttrPlanID, planID.String()))
	defer span.End()

	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := plan.Cancel(req.Reason); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.planRepo.SaveWithLock(ctx, plan); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.syncDeliveryMirror(ctx, plan, false); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishDomainEvents(ctx, plan)

	response := ToPlanResponse(plan)
	return &response, nil
}

// PlanAnalytics summarizes the progress of one plan
func (s *PaymentPlanService) PlanAnalytics(ctx context.Context, planID uuid.UUID) (*PlanAnalyticsResponse, error) {
	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	return &PlanAnalyticsResponse{
		PlanID:            plan.ID,
		Status:            plan.Status.String(),
		TotalAmount:       plan.TotalAmount,
		TotalPaid:         plan.TotalPaid,
		RemainingAmount:   plan.RemainingAmount,
		PercentagePaid:    plan.PercentagePaid(),
		PaymentsCompleted: plan.PaymentsCompleted,
		PaymentsTotal:     plan.NumberOfPayments,
		OverdueAmount:     plan.OverdueAmount,
		DaysOverdue:       plan.DaysOverdue,
		BonusAmount:       plan.BonusAmount,
	}, nil
}

// CustomerSummary aggregates every plan of one customer
func (s *PaymentPlanService) CustomerSummary(ctx context.Context, customerID uuid.UUID) (*CustomerSummaryResponse, error) {
	plans, err := s.planRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	summary := &CustomerSummaryResponse{
		CustomerID:       customerID,
		TotalAmount:      decimal.Zero,
		TotalPaid:        decimal.Zero,
		TotalOutstanding: decimal.Zero,
		OverdueAmount:    decimal.Zero,
	}
	for i := range plans {
		plan := &plans[i]
		summary.PlanCount++
		switch plan.Status {
		case presale.PlanStatusCompleted:
			summary.CompletedPlans++
		case presale.PlanStatusCancelled:
			// cancelled plans count toward nothing but the plan total
		default:
			summary.ActivePlans++
		}
		summary.TotalAmount = summary.TotalAmount.Add(plan.TotalAmount)
		summary.TotalPaid = summary.TotalPaid.Add(plan.TotalPaid)
		if plan.Status != presale.PlanStatusCancelled {
			summary.TotalOutstanding = summary.TotalOutstanding.Add(plan.RemainingAmount)
		}
		summary.OverdueAmount = summary.OverdueAmount.Add(plan.OverdueAmount)
	}
	return summary, nil
}

// Statistics aggregates every plan on the books
func (s *PaymentPlanService) Statistics(ctx context.Context) (*PaymentStatisticsResponse, error) {
	plans, err := s.planRepo.FindAll(ctx, shared.Filter{Page: 1, PageSize: -1})
	if err != nil {
		return nil, err
	}

	stats := &PaymentStatisticsResponse{
		PlansByStatus:    make(map[string]int),
		TotalAmount:      decimal.Zero,
		TotalCollected:   decimal.Zero,
		TotalOutstanding: decimal.Zero,
		TotalOverdue:     decimal.Zero,
	}
	for i := range plans {
		plan := &plans[i]
		stats.TotalPlans++
		stats.PlansByStatus[plan.Status.String()]++
		stats.TotalAmount = stats.TotalAmount.Add(plan.TotalAmount)
		stats.TotalCollected = stats.TotalCollected.Add(plan.TotalPaid)
		if plan.Status != presale.PlanStatusCancelled {
			stats.TotalOutstanding = stats.TotalOutstanding.Add(plan.RemainingAmount)
		}
		if plan.HasOverduePayments {
			stats.OverduePlans++
			stats.TotalOverdue = stats.TotalOverdue.Add(plan.OverdueAmount)
		}
	}
	return stats, nil
}
