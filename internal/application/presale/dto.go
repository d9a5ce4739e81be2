package presale

import (
	"time"

	"github.com/diecast/backoffice/internal/domain/presale"
	"github.com/diecast/backoffice/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LotResponse represents a pre-sale lot in API responses
type LotResponse struct {
	ID                uuid.UUID       `json:"id"`
	ProductID         string          `json:"product_id"`
	ProductName       string          `json:"product_name,omitempty"`
	Brand             string          `json:"brand,omitempty"`
	Photo             string          `json:"photo,omitempty"`
	TotalQuantity     int             `json:"total_quantity"`
	AssignedQuantity  int             `json:"assigned_quantity"`
	AvailableQuantity int             `json:"available_quantity"`
	BasePricePerUnit  decimal.Decimal `json:"base_price_per_unit"`
	MarkupPercentage  decimal.Decimal `json:"markup_percentage"`
	FinalPricePerUnit decimal.Decimal `json:"final_price_per_unit"`
	PreSalePrice      decimal.Decimal `json:"pre_sale_price"`
	NormalPrice       decimal.Decimal `json:"normal_price"`
	Status            string          `json:"status"`
	StartDate         time.Time       `json:"start_date"`
	EndDate           *time.Time      `json:"end_date,omitempty"`
	PurchaseIDs       []uuid.UUID     `json:"purchase_ids"`
	TotalSaleAmount   decimal.Decimal `json:"total_sale_amount"`
	TotalCostAmount   decimal.Decimal `json:"total_cost_amount"`
	TotalProfit       decimal.Decimal `json:"total_profit"`

	Units               []UnitResponse               `json:"units"`
	DeliveryAssignments []DeliveryAssignmentResponse `json:"delivery_assignments"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

// UnitResponse represents a single allocated unit
type UnitResponse struct {
	ID           uuid.UUID  `json:"id"`
	PurchaseID   uuid.UUID  `json:"purchase_id"`
	DeliveryID   *uuid.UUID `json:"delivery_id,omitempty"`
	AssignedDate *time.Time `json:"assigned_date,omitempty"`
	Notes        string     `json:"notes,omitempty"`
}

// DeliveryAssignmentResponse summarizes the units one delivery holds
type DeliveryAssignmentResponse struct {
	DeliveryID   uuid.UUID `json:"delivery_id"`
	UnitsCount   int       `json:"units_count"`
	AssignedDate time.Time `json:"assigned_date"`
}

// ToLotResponse converts a domain lot to its response representation
func ToLotResponse(lot *presale.PreSaleLot) LotResponse {
	units := make([]UnitResponse, 0, len(lot.Units))
	for _, u := range lot.Units {
		units = append(units, UnitResponse{
			ID:           u.ID,
			PurchaseID:   u.PurchaseID,
			DeliveryID:   u.DeliveryID,
			AssignedDate: u.AssignedDate,
			Notes:        u.Notes,
		})
	}
	assignments := make([]DeliveryAssignmentResponse, 0, len(lot.DeliveryAssignments))
	for _, da := range lot.DeliveryAssignments {
		assignments = append(assignments, DeliveryAssignmentResponse{
			DeliveryID:   da.DeliveryID,
			UnitsCount:   da.UnitsCount,
			AssignedDate: da.AssignedDate,
		})
	}

	return LotResponse{
		ID:                  lot.ID,
		ProductID:           lot.ProductID,
		ProductName:         lot.ProductName,
		Brand:               lot.Brand,
		Photo:               lot.Photo,
		TotalQuantity:       lot.TotalQuantity,
		AssignedQuantity:    lot.AssignedQuantity,
		AvailableQuantity:   lot.AvailableQuantity,
		BasePricePerUnit:    lot.BasePricePerUnit,
		MarkupPercentage:    lot.MarkupPercentage,
		FinalPricePerUnit:   lot.FinalPricePerUnit,
		PreSalePrice:        lot.PreSalePrice,
		NormalPrice:         lot.NormalPrice,
		Status:              lot.Status.String(),
		StartDate:           lot.StartDate,
		EndDate:             lot.EndDate,
		PurchaseIDs:         lot.PurchaseIDs,
		TotalSaleAmount:     lot.TotalSaleAmount,
		TotalCostAmount:     lot.TotalCostAmount,
		TotalProfit:         lot.TotalProfit,
		Units:               units,
		DeliveryAssignments: assignments,
		CreatedAt:           lot.CreatedAt,
		UpdatedAt:           lot.UpdatedAt,
		Version:             lot.Version,
	}
}

// ToLotResponses converts a slice of lots
func ToLotResponses(lots []presale.PreSaleLot) []LotResponse {
	responses := make([]LotResponse, 0, len(lots))
	for i := range lots {
		responses = append(responses, ToLotResponse(&lots[i]))
	}
	return responses
}

// CreateOrMergeLotRequest registers a purchase against a product's lot. When
// the product has no lot yet one is created; otherwise the purchase is merged.
type CreateOrMergeLotRequest struct {
	ProductID  string           `json:"product_id" binding:"required"`
	PurchaseID uuid.UUID        `json:"purchase_id" binding:"required"`
	Quantity   int              `json:"quantity" binding:"required,min=1"`
	UnitPrice  decimal.Decimal  `json:"unit_price" binding:"required"`
	MarkupPct  *decimal.Decimal `json:"markup_percentage"`
	FinalPrice *decimal.Decimal `json:"final_price"`
	Photo      string           `json:"photo"`
}

// AssignUnitsRequest allocates units of a lot to a delivery
type AssignUnitsRequest struct {
	DeliveryID uuid.UUID `json:"delivery_id" binding:"required"`
	PurchaseID uuid.UUID `json:"purchase_id" binding:"required"`
	Count      int       `json:"count" binding:"required,min=1"`
}

// UnassignUnitsRequest releases the given units back to the pool
type UnassignUnitsRequest struct {
	UnitIDs []uuid.UUID `json:"unit_ids" binding:"required,min=1"`
}

// UpdateMarkupRequest changes the markup percentage of a lot
type UpdateMarkupRequest struct {
	MarkupPercentage decimal.Decimal `json:"markup_percentage" binding:"required"`
}

// UpdateFinalPriceRequest overrides the sale price of a lot
type UpdateFinalPriceRequest struct {
	FinalPrice decimal.Decimal `json:"final_price" binding:"required"`
}

// UpdateLotStatusRequest moves the lot along its status graph
type UpdateLotStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// LotListFilter represents filter options for lot listing
type LotListFilter struct {
	Status   string `form:"status"`
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ProfitAnalyticsResponse breaks down the margin of one lot. The totals carry
// their currency; per-unit prices mirror the lot and stay bare decimals.
type ProfitAnalyticsResponse struct {
	LotID             uuid.UUID         `json:"lot_id"`
	ProductID         string            `json:"product_id"`
	TotalQuantity     int               `json:"total_quantity"`
	BasePricePerUnit  decimal.Decimal   `json:"base_price_per_unit"`
	FinalPricePerUnit decimal.Decimal   `json:"final_price_per_unit"`
	ProfitPerUnit     decimal.Decimal   `json:"profit_per_unit"`
	TotalSaleAmount   valueobject.Money `json:"total_sale_amount"`
	TotalCostAmount   valueobject.Money `json:"total_cost_amount"`
	TotalProfit       valueobject.Money `json:"total_profit"`
	MarginPercentage  decimal.Decimal   `json:"margin_percentage"`
}

// ActiveSummaryResponse aggregates the currently active lots
type ActiveSummaryResponse struct {
	ActiveLots      int               `json:"active_lots"`
	TotalUnits      int               `json:"total_units"`
	AssignedUnits   int               `json:"assigned_units"`
	AvailableUnits  int               `json:"available_units"`
	ProjectedSale   valueobject.Money `json:"projected_sale"`
	ProjectedCost   valueobject.Money `json:"projected_cost"`
	ProjectedProfit valueobject.Money `json:"projected_profit"`
	GeneratedAt     time.Time         `json:"generated_at"`
}

// PlanResponse represents a payment plan in API responses
type PlanResponse struct {
	ID                     uuid.UUID             `json:"id"`
	DeliveryID             uuid.UUID             `json:"delivery_id"`
	CustomerID             *uuid.UUID            `json:"customer_id,omitempty"`
	CustomerName           string                `json:"customer_name,omitempty"`
	TotalAmount            decimal.Decimal       `json:"total_amount"`
	NumberOfPayments       int                   `json:"number_of_payments"`
	AmountPerPayment       decimal.Decimal       `json:"amount_per_payment"`
	Frequency              string                `json:"frequency"`
	StartDate              time.Time             `json:"start_date"`
	Installments           []InstallmentResponse `json:"installments"`
	TotalPaid              decimal.Decimal       `json:"total_paid"`
	RemainingAmount        decimal.Decimal       `json:"remaining_amount"`
	PaymentsCompleted      int                   `json:"payments_completed"`
	Status                 string                `json:"status"`
	ExpectedCompletionDate *time.Time            `json:"expected_completion_date,omitempty"`
	ActualCompletionDate   *time.Time            `json:"actual_completion_date,omitempty"`
	LastPaymentDate        *time.Time            `json:"last_payment_date,omitempty"`
	HasOverduePayments     bool                  `json:"has_overdue_payments"`
	OverdueAmount          decimal.Decimal       `json:"overdue_amount"`
	DaysOverdue            int                   `json:"days_overdue"`
	EarlyPaymentBonus      decimal.Decimal       `json:"early_payment_bonus"`
	EarliestPaymentBonus   *time.Time            `json:"earliest_payment_bonus,omitempty"`
	BonusApplied           bool                  `json:"bonus_applied"`
	BonusAmount            decimal.Decimal       `json:"bonus_amount"`
	CreatedAt              time.Time             `json:"created_at"`
	UpdatedAt              time.Time             `json:"updated_at"`
	Version                int                   `json:"version"`
}

// InstallmentResponse represents one scheduled installment
type InstallmentResponse struct {
	ID            uuid.UUID       `json:"id"`
	Sequence      int             `json:"sequence"`
	ScheduledDate time.Time       `json:"scheduled_date"`
	AmountDue     decimal.Decimal `json:"amount_due"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	ActualDate    *time.Time      `json:"actual_date,omitempty"`
	IsOverdue     bool            `json:"is_overdue"`
	IsSettled     bool            `json:"is_settled"`
	Notes         string          `json:"notes,omitempty"`
}

// ToPlanResponse converts a domain plan to its response representation
func ToPlanResponse(plan *presale.PaymentPlan) PlanResponse {
	installments := make([]InstallmentResponse, 0, len(plan.Installments))
	for i := range plan.Installments {
		inst := &plan.Installments[i]
		installments = append(installments, InstallmentResponse{
			ID:            inst.ID,
			Sequence:      inst.Sequence,
			ScheduledDate: inst.ScheduledDate,
			AmountDue:     inst.AmountDue,
			AmountPaid:    inst.AmountPaid,
			ActualDate:    inst.ActualDate,
			IsOverdue:     inst.IsOverdue,
			IsSettled:     inst.IsSettled(),
			Notes:         inst.Notes,
		})
	}

	return PlanResponse{
		ID:                     plan.ID,
		DeliveryID:             plan.DeliveryID,
		CustomerID:             plan.CustomerID,
		CustomerName:           plan.CustomerName,
		TotalAmount:            plan.TotalAmount,
		NumberOfPayments:       plan.NumberOfPayments,
		AmountPerPayment:       plan.AmountPerPayment,
		Frequency:              string(plan.Frequency),
		StartDate:              plan.StartDate,
		Installments:           installments,
		TotalPaid:              plan.TotalPaid,
		RemainingAmount:        plan.RemainingAmount,
		PaymentsCompleted:      plan.PaymentsCompleted,
		Status:                 plan.Status.String(),
		ExpectedCompletionDate: plan.ExpectedCompletionDate,
		ActualCompletionDate:   plan.ActualCompletionDate,
		LastPaymentDate:        plan.LastPaymentDate,
		HasOverduePayments:     plan.HasOverduePayments,
		OverdueAmount:          plan.OverdueAmount,
		DaysOverdue:            plan.DaysOverdue,
		EarlyPaymentBonus:      plan.EarlyPaymentBonus,
		EarliestPaymentBonus:   plan.EarliestPaymentBonus,
		BonusApplied:           plan.BonusApplied,
		BonusAmount:            plan.BonusAmount,
		CreatedAt:              plan.CreatedAt,
		UpdatedAt:              plan.UpdatedAt,
		Version:                plan.Version,
	}
}

// ToPlanResponses converts a slice of plans
func ToPlanResponses(plans []presale.PaymentPlan) []PlanResponse {
	responses := make([]PlanResponse, 0, len(plans))
	for i := range plans {
		responses = append(responses, ToPlanResponse(&plans[i]))
	}
	return responses
}

// CreatePlanRequest creates a payment plan for a delivery
type CreatePlanRequest struct {
	DeliveryID       uuid.UUID       `json:"delivery_id" binding:"required"`
	TotalAmount      decimal.Decimal `json:"total_amount" binding:"required"`
	NumberOfPayments int             `json:"number_of_payments" binding:"required,min=1"`
	Frequency        string          `json:"frequency" binding:"required,oneof=weekly biweekly monthly"`
	StartDate        time.Time       `json:"start_date" binding:"required"`
	CustomerID       *uuid.UUID      `json:"customer_id"`
	CustomerName     string          `json:"customer_name"`
	BonusPercentage  decimal.Decimal `json:"bonus_percentage"`
}

// RecordPaymentRequest records one payment against a plan
type RecordPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate time.Time       `json:"payment_date" binding:"required"`
	Notes       string          `json:"notes" binding:"omitempty,max=500"`
}

// RecordPaymentResponse reports where the payment landed
type RecordPaymentResponse struct {
	Plan          PlanResponse `json:"plan"`
	InstallmentID uuid.UUID    `json:"installment_id"`
}

// CancelPlanRequest terminates a plan
type CancelPlanRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=255"`
}

// PlanAnalyticsResponse summarizes the progress of one plan
type PlanAnalyticsResponse struct {
	PlanID            uuid.UUID       `json:"plan_id"`
	Status            string          `json:"status"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	TotalPaid         decimal.Decimal `json:"total_paid"`
	RemainingAmount   decimal.Decimal `json:"remaining_amount"`
	PercentagePaid    decimal.Decimal `json:"percentage_paid"`
	PaymentsCompleted int             `json:"payments_completed"`
	PaymentsTotal     int             `json:"payments_total"`
	OverdueAmount     decimal.Decimal `json:"overdue_amount"`
	DaysOverdue       int             `json:"days_overdue"`
	BonusAmount       decimal.Decimal `json:"bonus_amount"`
}

// CustomerSummaryResponse aggregates a customer's plans
type CustomerSummaryResponse struct {
	CustomerID       uuid.UUID       `json:"customer_id"`
	PlanCount        int             `json:"plan_count"`
	ActivePlans      int             `json:"active_plans"`
	CompletedPlans   int             `json:"completed_plans"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	OverdueAmount    decimal.Decimal `json:"overdue_amount"`
}

// PaymentStatisticsResponse aggregates every plan on the books
type PaymentStatisticsResponse struct {
	TotalPlans       int             `json:"total_plans"`
	PlansByStatus    map[string]int  `json:"plans_by_status"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	TotalCollected   decimal.Decimal `json:"total_collected"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	TotalOverdue     decimal.Decimal `json:"total_overdue"`
	OverduePlans     int             `json:"overdue_plans"`
}

// SweepOverdueResponse reports the outcome of an overdue sweep
type SweepOverdueResponse struct {
	PlansChecked int       `json:"plans_checked"`
	PlansOverdue int       `json:"plans_overdue"`
	SweptAt      time.Time `json:"swept_at"`
}

// AssignAndPlanRequest runs unit assignment and plan creation as one workflow
type AssignAndPlanRequest struct {
	LotID      uuid.UUID          `json:"lot_id" binding:"required"`
	Assignment AssignUnitsRequest `json:"assignment" binding:"required"`
	Plan       CreatePlanRequest  `json:"plan" binding:"required"`
}

// AssignAndPlanResult is the workflow outcome. Assignment and plan creation
// are separate aggregate transactions: when the plan step fails the assigned
// units stay assigned and PlanErr carries the failure.
type AssignAndPlanResult struct {
	UnitIDs []uuid.UUID   `json:"unit_ids"`
	Plan    *PlanResponse `json:"plan,omitempty"`
	PlanErr error         `json:"-"`
}
