package logistics

import (
	"time"

	"github.com/diecast/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DeliveryStatus represents the scheduling status of a delivery
type DeliveryStatus string

const (
	DeliveryStatusScheduled   DeliveryStatus = "scheduled"
	DeliveryStatusPrepared    DeliveryStatus = "prepared"
	DeliveryStatusCompleted   DeliveryStatus = "completed"
	DeliveryStatusCancelled   DeliveryStatus = "cancelled"
	DeliveryStatusRescheduled DeliveryStatus = "rescheduled"
)

// IsValid checks if the status is a valid DeliveryStatus
func (s DeliveryStatus) IsValid() bool {
	switch s {
	case DeliveryStatusScheduled, DeliveryStatusPrepared, DeliveryStatusCompleted,
		DeliveryStatusCancelled, DeliveryStatusRescheduled:
		return true
	}
	return false
}

// Delivery is a customer hand-off of goods. For the pre-sale engine it is a
// collaborator: the engine keys allocations and payment plans by delivery ID
// and mirrors the plan state onto the two PreSale* fields.
type Delivery struct {
	shared.BaseAggregateRoot
	CustomerID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ScheduledDate time.Time       `gorm:"not null;index"`
	Location      string          `gorm:"type:varchar(300);not null"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Status        DeliveryStatus  `gorm:"type:varchar(15);not null;index"`
	Notes         string          `gorm:"type:varchar(500)"`
	CompletedDate *time.Time

	// Mirror pair written by the pre-sale engine; PreSaleStatus tracks the
	// linked payment plan's status verbatim.
	PreSalePaymentPlanID *uuid.UUID `gorm:"type:uuid;index"`
	PreSaleStatus        string     `gorm:"type:varchar(15)"`
}

// TableName returns the table name for GORM
func (Delivery) TableName() string {
	return "deliveries"
}

// NewDelivery creates a scheduled delivery for a customer
func NewDelivery(customerID uuid.UUID, scheduledDate time.Time, location string, totalAmount decimal.Decimal) (*Delivery, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if location == "" {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Delivery location cannot be empty")
	}
	if totalAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Delivery amount cannot be negative")
	}

	return &Delivery{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		ScheduledDate:     scheduledDate,
		Location:          location,
		TotalAmount:       totalAmount,
		Status:            DeliveryStatusScheduled,
	}, nil
}

// LinkPaymentPlan attaches a payment plan to the delivery and seeds the
// status mirror
func (d *Delivery) LinkPaymentPlan(planID uuid.UUID, planStatus string) {
	d.PreSalePaymentPlanID = &planID
	d.PreSaleStatus = planStatus
	d.Touch()
	d.IncrementVersion()
}

// SyncPreSaleStatus updates the mirrored plan status
func (d *Delivery) SyncPreSaleStatus(planStatus string) {
	d.PreSaleStatus = planStatus
	d.Touch()
	d.IncrementVersion()
}

// Complete marks the delivery as handed off
func (d *Delivery) Complete() error {
	if d.Status == DeliveryStatusCompleted || d.Status == DeliveryStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Delivery is already closed")
	}
	d.Status = DeliveryStatusCompleted
	now := time.Now()
	d.CompletedDate = &now
	d.Touch()
	d.IncrementVersion()
	return nil
}

// Cancel closes the delivery without hand-off
func (d *Delivery) Cancel() error {
	if d.Status == DeliveryStatusCompleted || d.Status == DeliveryStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Delivery is already closed")
	}
	d.Status = DeliveryStatusCancelled
	d.Touch()
	d.IncrementVersion()
	return nil
}
