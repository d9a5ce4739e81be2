package logistics

import (
	"time"

	"github.com/diecast/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseStatus represents the supplier-side status of a purchase
type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusPaid      PurchaseStatus = "paid"
	PurchaseStatusShipped   PurchaseStatus = "shipped"
	PurchaseStatusReceived  PurchaseStatus = "received"
	PurchaseStatusCancelled PurchaseStatus = "cancelled"
)

// IsValid checks if the status is a valid PurchaseStatus
func (s PurchaseStatus) IsValid() bool {
	switch s {
	case PurchaseStatusPending, PurchaseStatusPaid, PurchaseStatusShipped,
		PurchaseStatusReceived, PurchaseStatusCancelled:
		return true
	}
	return false
}

// Purchase records one supplier order of a single product. Purchases feed the
// pre-sale engine: registering a purchase creates or merges the product's lot,
// and every allocated unit keeps its purchase as provenance.
type Purchase struct {
	shared.BaseAggregateRoot
	SupplierID   *uuid.UUID      `gorm:"type:uuid;index"`
	ProductID    string          `gorm:"type:varchar(50);not null;index"`
	Quantity     int             `gorm:"not null"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalCost    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ShippingCost decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PurchaseDate time.Time       `gorm:"not null;index"`
	Status       PurchaseStatus  `gorm:"type:varchar(15);not null;index"`
	IsReceived   bool            `gorm:"not null;default:false"`
	ReceivedDate *time.Time
	Notes        string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Purchase) TableName() string {
	return "purchases"
}

// NewPurchase creates a pending purchase of one product
func NewPurchase(productID string, quantity int, unitPrice decimal.Decimal, purchaseDate time.Time) (*Purchase, error) {
	if productID == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	return &Purchase{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		Quantity:          quantity,
		UnitPrice:         unitPrice,
		TotalCost:         unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
		PurchaseDate:      purchaseDate,
		Status:            PurchaseStatusPending,
	}, nil
}

// MarkReceived stamps the purchase as physically received
func (p *Purchase) MarkReceived() error {
	if p.Status == PurchaseStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot receive a cancelled purchase")
	}
	if p.IsReceived {
		return shared.NewDomainError("INVALID_STATE", "Purchase is already received")
	}

	p.Status = PurchaseStatusReceived
	p.IsReceived = true
	now := time.Now()
	p.ReceivedDate = &now
	p.Touch()
	p.IncrementVersion()
	return nil
}
