package presale

import (
	"github.com/diecast/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypePreSaleLot = "PreSaleLot"

// Event type constants
const (
	EventTypeLotCreated        = "PreSaleLotCreated"
	EventTypePurchaseMerged    = "PreSalePurchaseMerged"
	EventTypeUnitsAssigned     = "PreSaleUnitsAssigned"
	EventTypeUnitsUnassigned   = "PreSaleUnitsUnassigned"
	EventTypeAssignmentsReset  = "PreSaleAssignmentsReset"
	EventTypeLotPricingChanged = "PreSaleLotPricingChanged"
	EventTypeLotStatusChanged  = "PreSaleLotStatusChanged"
)

// LotCreatedEvent is raised when the first purchase of a product opens a lot
type LotCreatedEvent struct {
	shared.BaseDomainEvent
	LotID      uuid.UUID       `json:"lot_id"`
	ProductID  string          `json:"product_id"`
	PurchaseID uuid.UUID       `json:"purchase_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	FinalPrice decimal.Decimal `json:"final_price"`
}

// NewLotCreatedEvent creates a new LotCreatedEvent
func NewLotCreatedEvent(lot *PreSaleLot, purchaseID uuid.UUID, quantity int) *LotCreatedEvent {
	return &LotCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLotCreated, AggregateTypePreSaleLot, lot.ID),
		LotID:           lot.ID,
		ProductID:       lot.ProductID,
		PurchaseID:      purchaseID,
		Quantity:        quantity,
		UnitPrice:       lot.BasePricePerUnit,
		FinalPrice:      lot.FinalPricePerUnit,
	}
}

// EventType returns the event type name
func (e *LotCreatedEvent) EventType() string {
	return EventTypeLotCreated
}

// PurchaseMergedEvent is raised when a later purchase is folded into a lot
type PurchaseMergedEvent struct {
	shared.BaseDomainEvent
	LotID         uuid.UUID `json:"lot_id"`
	ProductID     string    `json:"product_id"`
	PurchaseID    uuid.UUID `json:"purchase_id"`
	Quantity      int       `json:"quantity"`
	TotalQuantity int       `json:"total_quantity"`
}

// NewPurchaseMergedEvent creates a new PurchaseMergedEvent
func NewPurchaseMergedEvent(lot *PreSaleLot, purchaseID uuid.UUID, quantity int) *PurchaseMergedEvent {
	return &PurchaseMergedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseMerged, AggregateTypePreSaleLot, lot.ID),
		LotID:           lot.ID,
		ProductID:       lot.ProductID,
		PurchaseID:      purchaseID,
		Quantity:        quantity,
		TotalQuantity:   lot.TotalQuantity,
	}
}

// EventType returns the event type name
func (e *PurchaseMergedEvent) EventType() string {
	return EventTypePurchaseMerged
}

// UnitsAssignedEvent is raised when units are allocated to a delivery
type UnitsAssignedEvent struct {
	shared.BaseDomainEvent
	LotID             uuid.UUID   `json:"lot_id"`
	ProductID         string      `json:"product_id"`
	DeliveryID        uuid.UUID   `json:"delivery_id"`
	PurchaseID        uuid.UUID   `json:"purchase_id"`
	UnitIDs           []uuid.UUID `json:"unit_ids"`
	AvailableQuantity int         `json:"available_quantity"`
}

// NewUnitsAssignedEvent creates a new UnitsAssignedEvent
func NewUnitsAssignedEvent(lot *PreSaleLot, deliveryID, purchaseID uuid.UUID, unitIDs []uuid.UUID) *UnitsAssignedEvent {
	return &UnitsAssignedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeUnitsAssigned, AggregateTypePreSaleLot, lot.ID),
		LotID:             lot.ID,
		ProductID:         lot.ProductID,
		DeliveryID:        deliveryID,
		PurchaseID:        purchaseID,
		UnitIDs:           unitIDs,
		AvailableQuantity: lot.AvailableQuantity,
	}
}

// EventType returns the event type name
func (e *UnitsAssignedEvent) EventType() string {
	return EventTypeUnitsAssigned
}

// UnitsUnassignedEvent is raised when units are released back to the pool
type UnitsUnassignedEvent struct {
	shared.BaseDomainEvent
	LotID             uuid.UUID   `json:"lot_id"`
	ProductID         string      `json:"product_id"`
	UnitIDs           []uuid.UUID `json:"unit_ids"`
	AvailableQuantity int         `json:"available_quantity"`
}

// NewUnitsUnassignedEvent creates a new UnitsUnassignedEvent
func NewUnitsUnassignedEvent(lot *PreSaleLot, unitIDs []uuid.UUID) *UnitsUnassignedEvent {
	return &UnitsUnassignedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeUnitsUnassigned, AggregateTypePreSaleLot, lot.ID),
		LotID:             lot.ID,
		ProductID:         lot.ProductID,
		UnitIDs:           unitIDs,
		AvailableQuantity: lot.AvailableQuantity,
	}
}

// EventType returns the event type name
func (e *UnitsUnassignedEvent) EventType() string {
	return EventTypeUnitsUnassigned
}

// AssignmentsResetEvent is raised when a lot is reset to a pristine
// unallocated state and cancelled
type AssignmentsResetEvent struct {
	shared.BaseDomainEvent
	LotID         uuid.UUID `json:"lot_id"`
	ProductID     string    `json:"product_id"`
	TotalQuantity int       `json:"total_quantity"`
}

// NewAssignmentsResetEvent creates a new AssignmentsResetEvent
func NewAssignmentsResetEvent(lot *PreSaleLot) *AssignmentsResetEvent {
	return &AssignmentsResetEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAssignmentsReset, AggregateTypePreSaleLot, lot.ID),
		LotID:           lot.ID,
		ProductID:       lot.ProductID,
		TotalQuantity:   lot.TotalQuantity,
	}
}

// EventType returns the event type name
func (e *AssignmentsResetEvent) EventType() string {
	return EventTypeAssignmentsReset
}

// LotPricingChangedEvent is raised when markup, final price or an override
// price changes
type LotPricingChangedEvent struct {
	shared.BaseDomainEvent
	LotID             uuid.UUID       `json:"lot_id"`
	ProductID         string          `json:"product_id"`
	MarkupPercentage  decimal.Decimal `json:"markup_percentage"`
	FinalPricePerUnit decimal.Decimal `json:"final_price_per_unit"`
	TotalProfit       decimal.Decimal `json:"total_profit"`
}

// NewLotPricingChangedEvent creates a new LotPricingChangedEvent
func NewLotPricingChangedEvent(lot *PreSaleLot) *LotPricingChangedEvent {
	return &LotPricingChangedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeLotPricingChanged, AggregateTypePreSaleLot, lot.ID),
		LotID:             lot.ID,
		ProductID:         lot.ProductID,
		MarkupPercentage:  lot.MarkupPercentage,
		FinalPricePerUnit: lot.FinalPricePerUnit,
		TotalProfit:       lot.TotalProfit,
	}
}

// EventType returns the event type name
func (e *LotPricingChangedEvent) EventType() string {
	return EventTypeLotPricingChanged
}

// LotStatusChangedEvent is raised on every lifecycle transition
type LotStatusChangedEvent struct {
	shared.BaseDomainEvent
	LotID     uuid.UUID `json:"lot_id"`
	ProductID string    `json:"product_id"`
	From      LotStatus `json:"from"`
	To        LotStatus `json:"to"`
}

// NewLotStatusChangedEvent creates a new LotStatusChangedEvent
func NewLotStatusChangedEvent(lot *PreSaleLot, from, to LotStatus) *LotStatusChangedEvent {
	return &LotStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLotStatusChanged, AggregateTypePreSaleLot, lot.ID),
		LotID:           lot.ID,
		ProductID:       lot.ProductID,
		From:            from,
		To:              to,
	}
}

// EventType returns the event type name
func (e *LotStatusChangedEvent) EventType() string {
	return EventTypeLotStatusChanged
}
