package inventory

import (
	"github.com/diecast/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemStatus represents the sale status of a stocked item
type ItemStatus string

const (
	ItemStatusAvailable ItemStatus = "available"
	ItemStatusReserved  ItemStatus = "reserved"
	ItemStatusSold      ItemStatus = "sold"
)

// InventoryItem is one physically received piece in the store's stock. When a
// pre-sale lot transitions to received, the engine converts it into inventory:
// one item per tracked unit, or one item per quantity when the lot carries no
// unit records.
type InventoryItem struct {
	shared.BaseAggregateRoot
	ProductID   string          `gorm:"type:varchar(50);not null;index"`
	ProductName string          `gorm:"type:varchar(200)"`
	Cost        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Price       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Status      ItemStatus      `gorm:"type:varchar(10);not null;index"`

	// Provenance back to the pre-sale engine
	SourceLotID  *uuid.UUID `gorm:"type:uuid;index"`
	SourceUnitID *uuid.UUID `gorm:"type:uuid;index"`
	PurchaseID   *uuid.UUID `gorm:"type:uuid;index"`
	DeliveryID   *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (InventoryItem) TableName() string {
	return "inventory_items"
}

// NewInventoryItem creates an available stock item
func NewInventoryItem(productID string, cost, price decimal.Decimal) (*InventoryItem, error) {
	if productID == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if cost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Cost cannot be negative")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	return &InventoryItem{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		Cost:              cost,
		Price:             price,
		Status:            ItemStatusAvailable,
	}, nil
}

// SetPreSaleProvenance records where the item came from within the pre-sale
// engine. UnitID, purchase and delivery are optional: lots without tracked
// units convert by quantity alone.
func (i *InventoryItem) SetPreSaleProvenance(lotID uuid.UUID, unitID, purchaseID, deliveryID *uuid.UUID) {
	i.SourceLotID = &lotID
	i.SourceUnitID = unitID
	i.PurchaseID = purchaseID
	i.DeliveryID = deliveryID
	i.Touch()
}

// Reserve holds the item for a pending sale
func (i *InventoryItem) Reserve() error {
	if i.Status != ItemStatusAvailable {
		return shared.NewDomainError("INVALID_STATE", "Only an available item can be reserved")
	}
	i.Status = ItemStatusReserved
	i.Touch()
	i.IncrementVersion()
	return nil
}

// MarkSold finalizes the sale of the item
func (i *InventoryItem) MarkSold() error {
	if i.Status == ItemStatusSold {
		return shared.NewDomainError("INVALID_STATE", "Item is already sold")
	}
	i.Status = ItemStatusSold
	i.Touch()
	i.IncrementVersion()
	return nil
}
