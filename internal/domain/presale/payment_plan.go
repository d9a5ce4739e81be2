package presale

import (
	"fmt"
	"time"

	"github.com/diecast/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlanStatus represents the lifecycle status of a payment plan
type PlanStatus string

const (
	PlanStatusPending    PlanStatus = "pending"
	PlanStatusInProgress PlanStatus = "in-progress"
	PlanStatusCompleted  PlanStatus = "completed"
	PlanStatusOverdue    PlanStatus = "overdue"
	PlanStatusPaused     PlanStatus = "paused"
	PlanStatusCancelled  PlanStatus = "cancelled"
)

// IsValid checks if the status is a valid PlanStatus
func (s PlanStatus) IsValid() bool {
	switch s {
	case PlanStatusPending, PlanStatusInProgress, PlanStatusCompleted,
		PlanStatusOverdue, PlanStatusPaused, PlanStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PlanStatus
func (s PlanStatus) String() string {
	return string(s)
}

// IsTerminal returns true for statuses that end the plan lifecycle
func (s PlanStatus) IsTerminal() bool {
	return s == PlanStatusCompleted || s == PlanStatusCancelled
}

// PaymentFrequency determines the spacing between scheduled installments
type PaymentFrequency string

const (
	FrequencyWeekly   PaymentFrequency = "weekly"
	FrequencyBiweekly PaymentFrequency = "biweekly"
	FrequencyMonthly  PaymentFrequency = "monthly"
)

// IsValid checks if the frequency is a known PaymentFrequency
func (f PaymentFrequency) IsValid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

// DaysBetween returns the day offset between consecutive installments
func (f PaymentFrequency) DaysBetween() int {
	switch f {
	case FrequencyBiweekly:
		return 14
	case FrequencyMonthly:
		return 30
	default:
		return 7
	}
}

// Installment is one scheduled slice of a plan's total amount. AmountPaid may
// exceed AmountDue: an overshoot stays on the installment it settled and is
// never rolled into the next one.
type Installment struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	PlanID        uuid.UUID `gorm:"type:uuid;not null;index"`
	Sequence      int       `gorm:"not null"`
	ScheduledDate time.Time `gorm:"not null;index"`
	AmountDue     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AmountPaid    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ActualDate    *time.Time
	IsOverdue     bool   `gorm:"not null;default:false"`
	Notes         string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Installment) TableName() string {
	return "presale_installments"
}

// IsSettled returns true once the installment is fully paid
func (i *Installment) IsSettled() bool {
	return i.AmountPaid.GreaterThanOrEqual(i.AmountDue)
}

// Outstanding returns the unpaid remainder of the installment
func (i *Installment) Outstanding() decimal.Decimal {
	remaining := i.AmountDue.Sub(i.AmountPaid)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// PaymentPlan is the amortized balance for one delivery. The schedule is
// generated once at creation and settled FIFO: each recorded payment lands on
// the earliest installment that is not yet fully paid.
type PaymentPlan struct {
	shared.BaseAggregateRoot
	DeliveryID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	CustomerID   *uuid.UUID `gorm:"type:uuid;index"`
	CustomerName string     `gorm:"type:varchar(200)"` // customers that predate the customer catalog

	TotalAmount      decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	NumberOfPayments int              `gorm:"not null"`
	AmountPerPayment decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	Frequency        PaymentFrequency `gorm:"type:varchar(10);not null"`
	StartDate        time.Time        `gorm:"not null"`

	Installments []Installment `gorm:"foreignKey:PlanID;references:ID"`

	TotalPaid         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	RemainingAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PaymentsCompleted int             `gorm:"not null;default:0"`

	Status                 PlanStatus `gorm:"type:varchar(15);not null;index"`
	ExpectedCompletionDate *time.Time
	ActualCompletionDate   *time.Time
	LastPaymentDate        *time.Time

	HasOverduePayments bool            `gorm:"not null;default:false;index"`
	OverdueAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DaysOverdue        int             `gorm:"not null;default:0"`

	EarlyPaymentBonus    decimal.Decimal `gorm:"type:decimal(9,4);not null;default:0"` // percent, zero means unset
	EarliestPaymentBonus *time.Time
	BonusApplied         bool            `gorm:"not null;default:false"`
	BonusAmount          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (PaymentPlan) TableName() string {
	return "presale_payment_plans"
}

// PlanCustomerInput identifies the paying customer, either by catalog ID or by
// free-text name for pre-catalog customers.
type PlanCustomerInput struct {
	CustomerID   *uuid.UUID
	CustomerName string
}

// NewPaymentPlan creates a plan and generates its full installment schedule.
// Each installment is due amountPerPayment = totalAmount / numberOfPayments;
// a division remainder is not redistributed. When a bonus percentage is given
// the bonus deadline is set to one day before the first installment.
func NewPaymentPlan(deliveryID uuid.UUID, totalAmount decimal.Decimal, numberOfPayments int, frequency PaymentFrequency, startDate time.Time, customer PlanCustomerInput, bonusPct decimal.Decimal) (*PaymentPlan, error) {
	if deliveryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_DELIVERY", "Delivery ID cannot be empty")
	}
	if !totalAmount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Total amount must be greater than 0")
	}
	if numberOfPayments < 1 {
		return nil, shared.NewDomainError("INVALID_PAYMENT_COUNT", "Number of payments must be at least 1")
	}
	if !frequency.IsValid() {
		return nil, shared.NewDomainError("INVALID_FREQUENCY", fmt.Sprintf("Unknown payment frequency %q", frequency))
	}
	if bonusPct.IsNegative() || bonusPct.GreaterThan(oneHundred) {
		return nil, shared.NewDomainError("INVALID_BONUS", "Early payment bonus must be between 0 and 100")
	}

	plan := &PaymentPlan{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		DeliveryID:        deliveryID,
		CustomerID:        customer.CustomerID,
		CustomerName:      customer.CustomerName,
		TotalAmount:       totalAmount,
		NumberOfPayments:  numberOfPayments,
		AmountPerPayment:  totalAmount.Div(decimal.NewFromInt(int64(numberOfPayments))),
		Frequency:         frequency,
		StartDate:         startDate,
		RemainingAmount:   totalAmount,
		Status:            PlanStatusPending,
		EarlyPaymentBonus: bonusPct,
	}

	days := frequency.DaysBetween()
	plan.Installments = make([]Installment, 0, numberOfPayments)
	for i := 0; i < numberOfPayments; i++ {
		plan.Installments = append(plan.Installments, Installment{
			ID:            uuid.New(),
			PlanID:        plan.ID,
			Sequence:      i + 1,
			ScheduledDate: startDate.AddDate(0, 0, days*i),
			AmountDue:     plan.AmountPerPayment,
			AmountPaid:    decimal.Zero,
		})
	}

	completion := startDate.AddDate(0, 0, days*(numberOfPayments-1))
	plan.ExpectedCompletionDate = &completion

	if bonusPct.IsPositive() {
		deadline := startDate.AddDate(0, 0, -1)
		plan.EarliestPaymentBonus = &deadline
	}

	plan.AddDomainEvent(NewPlanCreatedEvent(plan))
	return plan, nil
}

// IsFullyPaid returns true once the recorded payments cover the total amount
func (p *PaymentPlan) IsFullyPaid() bool {
	return p.TotalPaid.GreaterThanOrEqual(p.TotalAmount)
}

// NextPaymentDue returns the earliest installment that is not fully paid, or
// nil when every installment is settled.
func (p *PaymentPlan) NextPaymentDue() *Installment {
	for i := range p.Installments {
		if !p.Installments[i].IsSettled() {
			return &p.Installments[i]
		}
	}
	return nil
}

// RecordPayment applies a payment to the earliest unsettled installment (FIFO
// settlement, never split across installments). An overshoot stays on that
// installment. The overdue state is re-evaluated as of the payment date so
// that backdated payments remain deterministic. Returns the ID of the settled
// installment.
func (p *PaymentPlan) RecordPayment(amount decimal.Decimal, date time.Time, notes string) (uuid.UUID, error) {
	if !amount.IsPositive() {
		return uuid.Nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be greater than 0")
	}
	if p.Status == PlanStatusCancelled {
		return uuid.Nil, shared.NewDomainError("INVALID_STATE", "Cannot record a payment on a cancelled plan")
	}
	if p.IsFullyPaid() {
		return uuid.Nil, shared.NewDomainError("PLAN_ALREADY_PAID", "Payment plan is already fully paid")
	}

	next := p.NextPaymentDue()
	if next == nil {
		return uuid.Nil, shared.NewDomainError("NO_PAYMENTS_PENDING", "No payments pending for this plan")
	}

	next.AmountPaid = next.AmountPaid.Add(amount)
	actual := date
	next.ActualDate = &actual
	if notes != "" {
		next.Notes = appendNote(next.Notes, notes)
	}
	if next.IsSettled() {
		next.IsOverdue = false
		p.PaymentsCompleted++
	}

	p.TotalPaid = p.TotalPaid.Add(amount)
	p.RemainingAmount = p.TotalAmount.Sub(p.TotalPaid)
	lastPayment := date
	p.LastPaymentDate = &lastPayment

	if p.IsFullyPaid() {
		p.Status = PlanStatusCompleted
		completedAt := date
		p.ActualCompletionDate = &completedAt
	} else if p.Status == PlanStatusPending {
		p.Status = PlanStatusInProgress
	}

	if p.EarlyPaymentBonus.IsPositive() && !p.BonusApplied &&
		p.EarliestPaymentBonus != nil && !date.After(*p.EarliestPaymentBonus) &&
		p.IsFullyPaid() {
		p.ApplyEarlyPaymentBonus()
	}

	p.CheckOverduePayments(date)

	p.Touch()
	p.IncrementVersion()

	p.AddDomainEvent(NewPaymentRecordedEvent(p, next.ID, amount, date))
	if p.Status == PlanStatusCompleted {
		p.AddDomainEvent(NewPlanCompletedEvent(p, date))
	}
	return next.ID, nil
}

// CheckOverduePayments scans the schedule as of the given instant. Every
// installment scheduled before now and not fully paid contributes its unpaid
// remainder to the overdue amount. An active plan reports status overdue while
// any such installment exists and returns to in-progress once all are
// satisfied.
func (p *PaymentPlan) CheckOverduePayments(now time.Time) {
	hasOverdue := false
	totalOverdue := decimal.Zero
	var earliest *time.Time

	for i := range p.Installments {
		inst := &p.Installments[i]
		if !inst.IsSettled() && inst.ScheduledDate.Before(now) {
			hasOverdue = true
			totalOverdue = totalOverdue.Add(inst.Outstanding())
			inst.IsOverdue = true

			if earliest == nil || inst.ScheduledDate.Before(*earliest) {
				scheduled := inst.ScheduledDate
				earliest = &scheduled
			}
		}
	}

	wasOverdue := p.HasOverduePayments
	p.HasOverduePayments = hasOverdue
	p.OverdueAmount = totalOverdue

	if earliest != nil {
		p.DaysOverdue = int(now.Sub(*earliest).Hours() / 24)
	} else {
		p.DaysOverdue = 0
	}

	if hasOverdue && !p.Status.IsTerminal() && p.Status != PlanStatusPaused {
		p.Status = PlanStatusOverdue
		if !wasOverdue {
			p.AddDomainEvent(NewPlanOverdueEvent(p))
		}
	} else if !hasOverdue && p.Status == PlanStatusOverdue {
		if p.TotalPaid.IsPositive() {
			p.Status = PlanStatusInProgress
		} else {
			p.Status = PlanStatusPending
		}
	}
}

// RecalculateRemainingPayments evenly redistributes the outstanding balance
// across the still-unsettled installments. This is an external rebalancing
// operation; normal payment recording never reshapes the schedule.
func (p *PaymentPlan) RecalculateRemainingPayments(totalPaidSoFar decimal.Decimal) {
	remaining := p.TotalAmount.Sub(totalPaidSoFar)

	unpaid := make([]*Installment, 0)
	for i := range p.Installments {
		if !p.Installments[i].IsSettled() {
			unpaid = append(unpaid, &p.Installments[i])
		}
	}
	if len(unpaid) == 0 {
		return
	}

	perInstallment := remaining.Div(decimal.NewFromInt(int64(len(unpaid))))
	for _, inst := range unpaid {
		inst.AmountDue = perInstallment
	}

	p.Touch()
	p.IncrementVersion()
}

// ApplyEarlyPaymentBonus computes the bonus amount once. The bonus is credit
// bookkeeping only: it reduces neither TotalAmount nor RemainingAmount.
func (p *PaymentPlan) ApplyEarlyPaymentBonus() {
	if !p.EarlyPaymentBonus.IsPositive() || p.BonusApplied {
		return
	}

	p.BonusAmount = p.TotalAmount.Mul(p.EarlyPaymentBonus).Div(oneHundred)
	p.BonusApplied = true
	p.Touch()

	p.AddDomainEvent(NewBonusAppliedEvent(p))
}

// Pause suspends an active plan. Overdue detection keeps accruing but the
// status stays paused until Resume.
func (p *PaymentPlan) Pause() error {
	if p.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot pause a completed or cancelled plan")
	}
	if p.Status == PlanStatusPaused {
		return shared.NewDomainError("INVALID_STATE", "Plan is already paused")
	}

	p.Status = PlanStatusPaused
	p.Touch()
	p.IncrementVersion()
	return nil
}

// Resume reactivates a paused plan and recomputes its status from the
// payments recorded so far.
func (p *PaymentPlan) Resume(now time.Time) error {
	if p.Status != PlanStatusPaused {
		return shared.NewDomainError("INVALID_STATE", "Only a paused plan can be resumed")
	}

	if p.TotalPaid.IsPositive() {
		p.Status = PlanStatusInProgress
	} else {
		p.Status = PlanStatusPending
	}
	p.CheckOverduePayments(now)
	p.Touch()
	p.IncrementVersion()
	return nil
}

// Cancel terminates the plan. A completed plan cannot be cancelled. The reason
// is appended to the most recent installment's notes when one exists.
func (p *PaymentPlan) Cancel(reason string) error {
	if p.Status == PlanStatusCompleted {
		return shared.NewDomainError("INVALID_STATE", "Cannot cancel a completed plan")
	}
	if p.Status == PlanStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Plan is already cancelled")
	}

	p.Status = PlanStatusCancelled
	if reason != "" && len(p.Installments) > 0 {
		last := &p.Installments[len(p.Installments)-1]
		last.Notes = appendNote(last.Notes, "Cancelled: "+reason)
	}

	p.Touch()
	p.IncrementVersion()

	p.AddDomainEvent(NewPlanCancelledEvent(p, reason))
	return nil
}

// PercentagePaid returns how much of the total has been covered, 0-100
func (p *PaymentPlan) PercentagePaid() decimal.Decimal {
	if p.TotalAmount.IsZero() {
		return decimal.Zero
	}
	return p.TotalPaid.Div(p.TotalAmount).Mul(oneHundred)
}

func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + " | " + note
}
