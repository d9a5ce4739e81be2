package presale

import (
	"fmt"
	"time"

	"github.com/diecast/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LotStatus represents the lifecycle status of a pre-sale lot
type LotStatus string

const (
	LotStatusActive         LotStatus = "active"
	LotStatusPurchased      LotStatus = "purchased"
	LotStatusShipped        LotStatus = "shipped"
	LotStatusReceived       LotStatus = "received"
	LotStatusReserved       LotStatus = "reserved"
	LotStatusPaymentPlan    LotStatus = "payment-plan"
	LotStatusPaymentPending LotStatus = "payment-pending"
	LotStatusReady          LotStatus = "ready"
	LotStatusDelivered      LotStatus = "delivered"
	LotStatusCancelled      LotStatus = "cancelled"
)

// IsValid checks if the status is a valid LotStatus
func (s LotStatus) IsValid() bool {
	switch s {
	case LotStatusActive, LotStatusPurchased, LotStatusShipped, LotStatusReceived,
		LotStatusReserved, LotStatusPaymentPlan, LotStatusPaymentPending,
		LotStatusReady, LotStatusDelivered, LotStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of LotStatus
func (s LotStatus) String() string {
	return string(s)
}

// IsTerminal returns true for statuses that end the lot lifecycle
func (s LotStatus) IsTerminal() bool {
	return s == LotStatusDelivered || s == LotStatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status
func (s LotStatus) CanTransitionTo(target LotStatus) bool {
	if target == LotStatusCancelled {
		return !s.IsTerminal()
	}
	switch s {
	case LotStatusActive:
		return target == LotStatusPurchased
	case LotStatusPurchased:
		return target == LotStatusShipped
	case LotStatusShipped:
		return target == LotStatusReceived
	case LotStatusReceived:
		return target == LotStatusReserved || target == LotStatusPaymentPlan || target == LotStatusPaymentPending
	case LotStatusReserved:
		return target == LotStatusPaymentPlan || target == LotStatusReady
	case LotStatusPaymentPlan:
		return target == LotStatusPaymentPending || target == LotStatusReady
	case LotStatusPaymentPending:
		return target == LotStatusReady
	case LotStatusReady:
		return target == LotStatusDelivered
	case LotStatusDelivered, LotStatusCancelled:
		return false
	}
	return false
}

// DefaultMarkupPercentage is applied when a lot is created without an explicit
// markup or final price.
var DefaultMarkupPercentage = decimal.NewFromInt(15)

// UnitAssignment is one physical, individually allocatable piece within a lot.
// A unit exists only once it has been assigned to a delivery; provenance is
// kept per unit so receipts can be traced back to the contributing purchase.
type UnitAssignment struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key"`
	LotID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	PurchaseID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	DeliveryID   *uuid.UUID `gorm:"type:uuid;index"`
	AssignedDate *time.Time
	Notes        string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (UnitAssignment) TableName() string {
	return "presale_units"
}

// DeliveryAssignment summarizes the units a single delivery holds from this
// lot. An entry exists only while the delivery has at least one unit.
type DeliveryAssignment struct {
	LotID        uuid.UUID `gorm:"type:uuid;primary_key"`
	DeliveryID   uuid.UUID `gorm:"type:uuid;primary_key;index"`
	UnitsCount   int       `gorm:"not null"`
	AssignedDate time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DeliveryAssignment) TableName() string {
	return "presale_delivery_assignments"
}

// PreSaleLot aggregates every pre-sale purchase of one product into a single
// sellable lot. It is the aggregate root for unit allocation: all quantity
// counters, unit records and per-delivery assignment summaries are mutated
// together so the lot can never over-commit stock.
type PreSaleLot struct {
	shared.BaseAggregateRoot
	ProductID string `gorm:"type:varchar(50);not null;uniqueIndex"`

	TotalQuantity     int `gorm:"not null"`
	AssignedQuantity  int `gorm:"not null;default:0"`
	AvailableQuantity int `gorm:"not null"`

	BasePricePerUnit  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	MarkupPercentage  decimal.Decimal `gorm:"type:decimal(9,4);not null"`
	FinalPricePerUnit decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PreSalePrice      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // zero means unset
	NormalPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // zero means unset

	Status    LotStatus `gorm:"type:varchar(20);not null;index"`
	StartDate time.Time `gorm:"not null"`
	EndDate   *time.Time
	Notes     string `gorm:"type:varchar(500)"`

	// Denormalized product metadata for faster lookups
	ProductName string `gorm:"type:varchar(200)"`
	Brand       string `gorm:"type:varchar(100)"`
	Photo       string `gorm:"type:varchar(500)"`

	PurchaseIDs []uuid.UUID `gorm:"serializer:json;type:jsonb"`

	TotalSaleAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalCostAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalProfit     decimal.Decimal `gorm:"type:decimal(18,4);not null"`

	Units               []UnitAssignment     `gorm:"foreignKey:LotID;references:ID"`
	DeliveryAssignments []DeliveryAssignment `gorm:"foreignKey:LotID;references:ID"`
}

// TableName returns the table name for GORM
func (PreSaleLot) TableName() string {
	return "presale_lots"
}

// LotPricingInput carries the optional pricing overrides accepted when
// registering a purchase. ExplicitFinalPrice takes precedence over MarkupPct.
type LotPricingInput struct {
	MarkupPct          *decimal.Decimal
	ExplicitFinalPrice *decimal.Decimal
}

// NewPreSaleLot creates a lot from the first purchase registration of a product
func NewPreSaleLot(productID string, purchaseID uuid.UUID, quantity int, unitPrice decimal.Decimal, pricing LotPricingInput, photo string) (*PreSaleLot, error) {
	if productID == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if purchaseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PURCHASE", "Purchase ID cannot be empty")
	}
	if quantity < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	markup := DefaultMarkupPercentage
	if pricing.MarkupPct != nil {
		if err := validateMarkup(*pricing.MarkupPct); err != nil {
			return nil, err
		}
		markup = *pricing.MarkupPct
	}

	var finalPrice decimal.Decimal
	if pricing.ExplicitFinalPrice != nil && pricing.ExplicitFinalPrice.IsPositive() {
		finalPrice = *pricing.ExplicitFinalPrice
		markup = MarkupFromFinal(unitPrice, finalPrice)
	} else {
		finalPrice = FinalPrice(unitPrice, markup)
	}

	lot := &PreSaleLot{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		ProductID:           productID,
		TotalQuantity:       quantity,
		AssignedQuantity:    0,
		AvailableQuantity:   quantity,
		BasePricePerUnit:    unitPrice,
		MarkupPercentage:    markup,
		FinalPricePerUnit:   finalPrice,
		Status:              LotStatusActive,
		StartDate:           time.Now(),
		Photo:               photo,
		PurchaseIDs:         []uuid.UUID{purchaseID},
		Units:               make([]UnitAssignment, 0),
		DeliveryAssignments: make([]DeliveryAssignment, 0),
	}
	lot.recomputeDerived()

	lot.AddDomainEvent(NewLotCreatedEvent(lot, purchaseID, quantity))
	return lot, nil
}

// MergePurchase folds another purchase of the same product into the lot. The
// new quantity becomes available immediately; the base price is never changed
// by a merge, but pricing overrides are honored when supplied.
func (l *PreSaleLot) MergePurchase(purchaseID uuid.UUID, quantity int, pricing LotPricingInput) error {
	if purchaseID == uuid.Nil {
		return shared.NewDomainError("INVALID_PURCHASE", "Purchase ID cannot be empty")
	}
	if quantity < 1 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if l.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot merge a purchase into a terminal lot")
	}
	if pricing.MarkupPct != nil {
		if err := validateMarkup(*pricing.MarkupPct); err != nil {
			return err
		}
	}

	l.TotalQuantity += quantity
	l.AvailableQuantity = l.TotalQuantity - l.AssignedQuantity

	if !l.hasPurchase(purchaseID) {
		l.PurchaseIDs = append(l.PurchaseIDs, purchaseID)
	}

	if pricing.ExplicitFinalPrice != nil && pricing.ExplicitFinalPrice.IsPositive() {
		l.FinalPricePerUnit = *pricing.ExplicitFinalPrice
		l.MarkupPercentage = MarkupFromFinal(l.BasePricePerUnit, *pricing.ExplicitFinalPrice)
	} else if pricing.MarkupPct != nil {
		l.MarkupPercentage = *pricing.MarkupPct
		l.FinalPricePerUnit = FinalPrice(l.BasePricePerUnit, *pricing.MarkupPct)
	}

	l.recomputeDerived()
	l.Touch()
	l.IncrementVersion()

	l.AddDomainEvent(NewPurchaseMergedEvent(l, purchaseID, quantity))
	return nil
}

// CanAssign returns true if the available quantity can cover the requested count
func (l *PreSaleLot) CanAssign(count int) bool {
	return count <= l.AvailableQuantity
}

// AssignUnits allocates count units from the lot to a delivery. The call is
// all-or-nothing: when the precondition fails nothing is mutated. Returns the
// generated unit IDs in assignment order.
func (l *PreSaleLot) AssignUnits(deliveryID, purchaseID uuid.UUID, count int) ([]uuid.UUID, error) {
	if deliveryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_DELIVERY", "Delivery ID cannot be empty")
	}
	if purchaseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PURCHASE", "Purchase ID cannot be empty")
	}
	if count < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Assignment count must be at least 1")
	}
	if !l.CanAssign(count) {
		return nil, shared.NewDomainError("INSUFFICIENT_AVAILABILITY",
			fmt.Sprintf("Cannot assign %d units, only %d available", count, l.AvailableQuantity))
	}

	now := time.Now()
	unitIDs := make([]uuid.UUID, 0, count)
	for range count {
		unitID := uuid.New()
		assignedAt := now
		l.Units = append(l.Units, UnitAssignment{
			ID:           unitID,
			LotID:        l.ID,
			PurchaseID:   purchaseID,
			DeliveryID:   &deliveryID,
			AssignedDate: &assignedAt,
		})
		unitIDs = append(unitIDs, unitID)
	}

	l.AssignedQuantity += count
	l.AvailableQuantity = l.TotalQuantity - l.AssignedQuantity

	if existing := l.findDeliveryAssignment(deliveryID); existing != nil {
		existing.UnitsCount += count
	} else {
		l.DeliveryAssignments = append(l.DeliveryAssignments, DeliveryAssignment{
			LotID:        l.ID,
			DeliveryID:   deliveryID,
			UnitsCount:   count,
			AssignedDate: now,
		})
	}

	l.Touch()
	l.IncrementVersion()

	l.AddDomainEvent(NewUnitsAssignedEvent(l, deliveryID, purchaseID, unitIDs))
	return unitIDs, nil
}

// UnassignUnits releases the given units back to the available pool. The whole
// call is one transaction: if any ID is unknown, no unit is unassigned.
func (l *PreSaleLot) UnassignUnits(unitIDs []uuid.UUID) error {
	if len(unitIDs) == 0 {
		return shared.NewDomainError("INVALID_INPUT", "At least one unit ID is required")
	}

	// Validate the full set, duplicates included, before touching anything
	removed := make(map[uuid.UUID]bool, len(unitIDs))
	indexes := make([]int, 0, len(unitIDs))
	for _, unitID := range unitIDs {
		if removed[unitID] {
			return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Duplicate unit ID %s", unitID))
		}
		idx := l.findUnitIndex(unitID)
		if idx == -1 {
			return shared.NewDomainError("UNIT_NOT_FOUND", fmt.Sprintf("Unit %s not found", unitID))
		}
		removed[unitID] = true
		indexes = append(indexes, idx)
	}

	for _, idx := range indexes {
		if deliveryID := l.Units[idx].DeliveryID; deliveryID != nil {
			l.decrementDeliveryAssignment(*deliveryID)
		}
	}

	kept := make([]UnitAssignment, 0, len(l.Units)-len(unitIDs))
	for _, unit := range l.Units {
		if !removed[unit.ID] {
			kept = append(kept, unit)
		}
	}
	l.Units = kept
	l.AssignedQuantity -= len(unitIDs)
	l.AvailableQuantity = l.TotalQuantity - l.AssignedQuantity

	l.Touch()
	l.IncrementVersion()

	l.AddDomainEvent(NewUnitsUnassignedEvent(l, unitIDs))
	return nil
}

// ResetAssignments clears all unit allocation and cancels the lot. Every unit
// returns to the available pool and the end date is stamped.
func (l *PreSaleLot) ResetAssignments() {
	l.Units = make([]UnitAssignment, 0)
	l.DeliveryAssignments = make([]DeliveryAssignment, 0)
	l.AssignedQuantity = 0
	l.AvailableQuantity = l.TotalQuantity
	l.Status = LotStatusCancelled
	now := time.Now()
	l.EndDate = &now

	l.Touch()
	l.IncrementVersion()

	l.AddDomainEvent(NewAssignmentsResetEvent(l))
}

// UpdateMarkup changes the markup percentage and rederives the final price and
// the lot totals.
func (l *PreSaleLot) UpdateMarkup(pct decimal.Decimal) error {
	if err := validateMarkup(pct); err != nil {
		return err
	}

	l.MarkupPercentage = pct
	l.FinalPricePerUnit = FinalPrice(l.BasePricePerUnit, pct)
	l.recomputeDerived()
	l.Touch()
	l.IncrementVersion()

	l.AddDomainEvent(NewLotPricingChangedEvent(l))
	return nil
}

// UpdateFinalPrice overrides the sale price directly and back-solves the
// markup percentage. The final price may not undercut the base price.
func (l *PreSaleLot) UpdateFinalPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Final price cannot be negative")
	}
	if price.LessThan(l.BasePricePerUnit) {
		return shared.NewDomainError("INVALID_PRICE", "Final price cannot be less than the base price")
	}

	l.FinalPricePerUnit = price
	l.MarkupPercentage = MarkupFromFinal(l.BasePricePerUnit, price)
	l.recomputeDerived()
	l.Touch()
	l.IncrementVersion()

	l.AddDomainEvent(NewLotPricingChangedEvent(l))
	return nil
}

// SetPreSalePrice sets the promotional pre-sale price. It takes effect on the
// effective unit price only while the lot is active.
func (l *PreSaleLot) SetPreSalePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Pre-sale price cannot be negative")
	}
	l.PreSalePrice = price
	l.recomputeDerived()
	l.Touch()
	l.IncrementVersion()

	l.AddDomainEvent(NewLotPricingChangedEvent(l))
	return nil
}

// SetNormalPrice sets the regular store price used once the lot is past the
// active stage.
func (l *PreSaleLot) SetNormalPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Normal price cannot be negative")
	}
	l.NormalPrice = price
	l.recomputeDerived()
	l.Touch()
	l.IncrementVersion()

	l.AddDomainEvent(NewLotPricingChangedEvent(l))
	return nil
}

// TransitionStatus moves the lot along the allowed status graph. The end date
// is stamped when the lot reaches a terminal status.
func (l *PreSaleLot) TransitionStatus(target LotStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown status %q", target))
	}
	if !l.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE_TRANSITION",
			fmt.Sprintf("Cannot transition lot from %s to %s", l.Status, target))
	}

	from := l.Status
	l.Status = target
	if target.IsTerminal() {
		now := time.Now()
		l.EndDate = &now
	}
	// Leaving active can change the effective price precedence
	l.recomputeDerived()
	l.Touch()
	l.IncrementVersion()

	l.AddDomainEvent(NewLotStatusChangedEvent(l, from, target))
	return nil
}

// UpdatePhoto replaces the product photo reference
func (l *PreSaleLot) UpdatePhoto(photo string) {
	l.Photo = photo
	l.Touch()
	l.IncrementVersion()
}

// SetProductMetadata fills the denormalized product display fields
func (l *PreSaleLot) SetProductMetadata(name, brand string) {
	l.ProductName = name
	l.Brand = brand
	l.Touch()
}

// UnitsForDelivery returns the units currently assigned to the given delivery
func (l *PreSaleLot) UnitsForDelivery(deliveryID uuid.UUID) []UnitAssignment {
	units := make([]UnitAssignment, 0)
	for _, u := range l.Units {
		if u.DeliveryID != nil && *u.DeliveryID == deliveryID {
			units = append(units, u)
		}
	}
	return units
}

// ProfitPerUnit returns the margin on a single unit
func (l *PreSaleLot) ProfitPerUnit() decimal.Decimal {
	return l.FinalPricePerUnit.Sub(l.BasePricePerUnit)
}

// recomputeDerived rederives the effective unit price and the three totals.
// The totals are always recomputed together.
func (l *PreSaleLot) recomputeDerived() {
	markupDerived := FinalPrice(l.BasePricePerUnit, l.MarkupPercentage)
	effective := EffectivePrice(l.Status, l.PreSalePrice, l.NormalPrice, markupDerived)
	if effective.Equal(markupDerived) {
		// No override in effect; keep an explicitly set final price intact
		effective = l.FinalPricePerUnit
		if effective.IsZero() {
			effective = markupDerived
		}
	}
	l.FinalPricePerUnit = effective

	totals := ComputeTotals(l.FinalPricePerUnit, l.BasePricePerUnit, int64(l.TotalQuantity))
	l.TotalSaleAmount = totals.SaleAmount
	l.TotalCostAmount = totals.CostAmount
	l.TotalProfit = totals.Profit
}

func (l *PreSaleLot) hasPurchase(purchaseID uuid.UUID) bool {
	for _, id := range l.PurchaseIDs {
		if id == purchaseID {
			return true
		}
	}
	return false
}

func (l *PreSaleLot) findUnitIndex(unitID uuid.UUID) int {
	for i := range l.Units {
		if l.Units[i].ID == unitID {
			return i
		}
	}
	return -1
}

func (l *PreSaleLot) findDeliveryAssignment(deliveryID uuid.UUID) *DeliveryAssignment {
	for i := range l.DeliveryAssignments {
		if l.DeliveryAssignments[i].DeliveryID == deliveryID {
			return &l.DeliveryAssignments[i]
		}
	}
	return nil
}

func (l *PreSaleLot) decrementDeliveryAssignment(deliveryID uuid.UUID) {
	for i := range l.DeliveryAssignments {
		if l.DeliveryAssignments[i].DeliveryID == deliveryID {
			l.DeliveryAssignments[i].UnitsCount--
			if l.DeliveryAssignments[i].UnitsCount <= 0 {
				l.DeliveryAssignments = append(l.DeliveryAssignments[:i], l.DeliveryAssignments[i+1:]...)
			}
			return
		}
	}
}

func validateMarkup(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(oneHundred) {
		return shared.NewDomainError("INVALID_MARKUP", "Markup percentage must be between 0 and 100")
	}
	return nil
}
