package presale

import (
	"time"

	"github.com/diecast/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypePaymentPlan = "PaymentPlan"

// Event type constants
const (
	EventTypePlanCreated     = "PaymentPlanCreated"
	EventTypePaymentRecorded = "PaymentRecorded"
	EventTypePlanCompleted   = "PaymentPlanCompleted"
	EventTypePlanOverdue     = "PaymentPlanOverdue"
	EventTypeBonusApplied    = "EarlyPaymentBonusApplied"
	EventTypePlanCancelled   = "PaymentPlanCancelled"
)

// PlanCreatedEvent is raised when a payment plan and its schedule are created
type PlanCreatedEvent struct {
	shared.BaseDomainEvent
	PlanID           uuid.UUID        `json:"plan_id"`
	DeliveryID       uuid.UUID        `json:"delivery_id"`
	TotalAmount      decimal.Decimal  `json:"total_amount"`
	NumberOfPayments int              `json:"number_of_payments"`
	Frequency        PaymentFrequency `json:"frequency"`
}

// NewPlanCreatedEvent creates a new PlanCreatedEvent
func NewPlanCreatedEvent(plan *PaymentPlan) *PlanCreatedEvent {
	return &PlanCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypePlanCreated, AggregateTypePaymentPlan, plan.ID),
		PlanID:           plan.ID,
		DeliveryID:       plan.DeliveryID,
		TotalAmount:      plan.TotalAmount,
		NumberOfPayments: plan.NumberOfPayments,
		Frequency:        plan.Frequency,
	}
}

// EventType returns the event type name
func (e *PlanCreatedEvent) EventType() string {
	return EventTypePlanCreated
}

// PaymentRecordedEvent is raised for every recorded payment
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PlanID          uuid.UUID       `json:"plan_id"`
	DeliveryID      uuid.UUID       `json:"delivery_id"`
	InstallmentID   uuid.UUID       `json:"installment_id"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentDate     time.Time       `json:"payment_date"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(plan *PaymentPlan, installmentID uuid.UUID, amount decimal.Decimal, date time.Time) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, AggregateTypePaymentPlan, plan.ID),
		PlanID:          plan.ID,
		DeliveryID:      plan.DeliveryID,
		InstallmentID:   installmentID,
		Amount:          amount,
		PaymentDate:     date,
		TotalPaid:       plan.TotalPaid,
		RemainingAmount: plan.RemainingAmount,
	}
}

// EventType returns the event type name
func (e *PaymentRecordedEvent) EventType() string {
	return EventTypePaymentRecorded
}

// PlanCompletedEvent is raised when the plan becomes fully paid
type PlanCompletedEvent struct {
	shared.BaseDomainEvent
	PlanID       uuid.UUID       `json:"plan_id"`
	DeliveryID   uuid.UUID       `json:"delivery_id"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	CompletedAt  time.Time       `json:"completed_at"`
	BonusApplied bool            `json:"bonus_applied"`
}

// NewPlanCompletedEvent creates a new PlanCompletedEvent
func NewPlanCompletedEvent(plan *PaymentPlan, completedAt time.Time) *PlanCompletedEvent {
	return &PlanCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePlanCompleted, AggregateTypePaymentPlan, plan.ID),
		PlanID:          plan.ID,
		DeliveryID:      plan.DeliveryID,
		TotalPaid:       plan.TotalPaid,
		CompletedAt:     completedAt,
		BonusApplied:    plan.BonusApplied,
	}
}

// EventType returns the event type name
func (e *PlanCompletedEvent) EventType() string {
	return EventTypePlanCompleted
}

// PlanOverdueEvent is raised when a plan first enters the overdue state
type PlanOverdueEvent struct {
	shared.BaseDomainEvent
	PlanID        uuid.UUID       `json:"plan_id"`
	DeliveryID    uuid.UUID       `json:"delivery_id"`
	OverdueAmount decimal.Decimal `json:"overdue_amount"`
	DaysOverdue   int             `json:"days_overdue"`
}

// NewPlanOverdueEvent creates a new PlanOverdueEvent
func NewPlanOverdueEvent(plan *PaymentPlan) *PlanOverdueEvent {
	return &PlanOverdueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePlanOverdue, AggregateTypePaymentPlan, plan.ID),
		PlanID:          plan.ID,
		DeliveryID:      plan.DeliveryID,
		OverdueAmount:   plan.OverdueAmount,
		DaysOverdue:     plan.DaysOverdue,
	}
}

// EventType returns the event type name
func (e *PlanOverdueEvent) EventType() string {
	return EventTypePlanOverdue
}

// BonusAppliedEvent is raised when the early payment bonus is granted
type BonusAppliedEvent struct {
	shared.BaseDomainEvent
	PlanID      uuid.UUID       `json:"plan_id"`
	DeliveryID  uuid.UUID       `json:"delivery_id"`
	BonusAmount decimal.Decimal `json:"bonus_amount"`
}

// NewBonusAppliedEvent creates a new BonusAppliedEvent
func NewBonusAppliedEvent(plan *PaymentPlan) *BonusAppliedEvent {
	return &BonusAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBonusApplied, AggregateTypePaymentPlan, plan.ID),
		PlanID:          plan.ID,
		DeliveryID:      plan.DeliveryID,
		BonusAmount:     plan.BonusAmount,
	}
}

// EventType returns the event type name
func (e *BonusAppliedEvent) EventType() string {
	return EventTypeBonusApplied
}

// PlanCancelledEvent is raised when a plan is cancelled
type PlanCancelledEvent struct {
	shared.BaseDomainEvent
	PlanID     uuid.UUID `json:"plan_id"`
	DeliveryID uuid.UUID `json:"delivery_id"`
	Reason     string    `json:"reason,omitempty"`
}

// NewPlanCancelledEvent creates a new PlanCancelledEvent
func NewPlanCancelledEvent(plan *PaymentPlan, reason string) *PlanCancelledEvent {
	return &PlanCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePlanCancelled, AggregateTypePaymentPlan, plan.ID),
		PlanID:          plan.ID,
		DeliveryID:      plan.DeliveryID,
		Reason:          reason,
	}
}

// EventType returns the event type name
func (e *PlanCancelledEvent) EventType() string {
	return EventTypePlanCancelled
}
