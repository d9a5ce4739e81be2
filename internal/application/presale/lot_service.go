package presale

import (
	"context"
	"errors"
	"time"

	"github.com/diecast/backoffice/internal/domain/inventory"
	"github.com/diecast/backoffice/internal/domain/logistics"
	"github.com/diecast/backoffice/internal/domain/presale"
	"github.com/diecast/backoffice/internal/domain/shared"
	"github.com/diecast/backoffice/internal/domain/shared/valueobject"
	"github.com/diecast/backoffice/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SummaryCache caches the active pre-sale summary between reads. A miss is
// not an error; (nil, nil) means recompute.
type SummaryCache interface {
	Get(ctx context.Context) (*ActiveSummaryResponse, error)
	Set(ctx context.Context, summary *ActiveSummaryResponse) error
	Invalidate(ctx context.Context) error
}

// LotService handles pre-sale lot operations: purchase registration, unit
// allocation, pricing and lifecycle transitions.
type LotService struct {
	lotRepo        presale.LotRepository
	deliveryRepo   logistics.DeliveryRepository
	inventoryRepo  inventory.InventoryItemRepository
	summaryCache   SummaryCache
	eventPublisher shared.EventPublisher
}

// NewLotService creates a new LotService
func NewLotService(
	lotRepo presale.LotRepository,
	deliveryRepo logistics.DeliveryRepository,
	inventoryRepo inventory.InventoryItemRepository,
) *LotService {
	return &LotService{
		lotRepo:       lotRepo,
		deliveryRepo:  deliveryRepo,
		inventoryRepo: inventoryRepo,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *LotService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetSummaryCache sets the cache for the active summary (optional)
func (s *LotService) SetSummaryCache(cache SummaryCache) {
	s.summaryCache = cache
}

// publishDomainEvents publishes all pending domain events from the lot
func (s *LotService) publishDomainEvents(ctx context.Context, lot *presale.PreSaleLot) {
	if s.eventPublisher == nil {
		return
	}
	events := lot.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	lot.ClearDomainEvents()
}

// invalidateSummary drops the cached active summary after a mutation
func (s *LotService) invalidateSummary(ctx context.Context) {
	if s.summaryCache == nil {
		return
	}
	_ = s.summaryCache.Invalidate(ctx)
}

// CreateOrMergeLot registers a purchase. The first purchase of a product opens
// its lot; later purchases of the same product merge into it.
func (s *LotService) CreateOrMergeLot(ctx context.Context, req CreateOrMergeLotRequest) (*LotResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "presale_lot", "create_or_merge",
		telemetry.WithAttribute(telemetry.SpanAttrProductID, req.ProductID))
	defer span.End()

	pricing := presale.LotPricingInput{
		MarkupPct:          req.MarkupPct,
		ExplicitFinalPrice: req.FinalPrice,
	}

	lot, err := s.lotRepo.FindByProduct(ctx, req.ProductID)
	switch {
	case err == nil:
		if err := lot.MergePurchase(req.PurchaseID, req.Quantity, pricing); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if err := s.lotRepo.SaveWithLock(ctx, lot); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	case errors.Is(err, shared.ErrNotFound):
		lot, err = presale.NewPreSaleLot(req.ProductID, req.PurchaseID, req.Quantity, req.UnitPrice, pricing, req.Photo)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if err := s.lotRepo.Save(ctx, lot); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	default:
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishDomainEvents(ctx, lot)
	s.invalidateSummary(ctx)

	response := ToLotResponse(lot)
	return &response, nil
}

// GetByID retrieves a lot by ID
func (s *LotService) GetByID(ctx context.Context, lotID uuid.UUID) (*LotResponse, error) {
	lot, err := s.lotRepo.FindByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	response := ToLotResponse(lot)
	return &response, nil
}

// GetByProduct retrieves the lot of a product
func (s *LotService) GetByProduct(ctx context.Context, productID string) (*LotResponse, error) {
	lot, err := s.lotRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	response := ToLotResponse(lot)
	return &response, nil
}

// List retrieves lots with filtering and pagination
func (s *LotService) List(ctx context.Context, filter LotListFilter) ([]LotResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "updated_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.Status != "" {
		status := presale.LotStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Unknown lot status filter")
		}
		domainFilter.Filters["status"] = filter.Status
	}

	lots, err := s.lotRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.lotRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToLotResponses(lots), total, nil
}

// AssignUnitsToDelivery allocates units from a lot to a delivery. The
// precondition, the mutation and the persist run against one aggregate load;
// version conflicts surface as CONCURRENCY_CONFLICT for the caller to retry.
func (s *LotService) AssignUnitsToDelivery(ctx context.Context, lotID uuid.UUID, req AssignUnitsRequest) ([]uuid.UUID, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "presale_lot", "assign_units",
		telemetry.WithAttribute(telemetry.SpanAttrLotID, lotID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrDeliveryID, req.DeliveryID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrQuantity, req.Count))
	defer span.End()

	if s.deliveryRepo != nil {
		if _, err := s.deliveryRepo.FindByID(ctx, req.DeliveryID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("DELIVERY_NOT_FOUND", "Delivery not found")
			}
			return nil, err
		}
	}

	lot, err := s.lotRepo.FindByID(ctx, lotID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	unitIDs, err := lot.AssignUnits(req.DeliveryID, req.PurchaseID, req.Count)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.lotRepo.SaveWithLock(ctx, lot); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishDomainEvents(ctx, lot)
	s.invalidateSummary(ctx)
	telemetry.AddEvent(span, "units_assigned", "count", len(unitIDs))
	return unitIDs, nil
}

// UnassignUnits releases units back to the available pool
func (s *LotService) UnassignUnits(ctx context.Context, lotID uuid.UUID, req UnassignUnitsRequest) (*LotResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "presale_lot", "unassign_units",
		telemetry.WithAttribute(telemetry.SpanAttrLotID, lotID.String()))
	defer span.End()

	lot, err := s.lotRepo.FindByID(ctx, lotID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := lot.UnassignUnits(req.UnitIDs); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.lotRepo.SaveWithLock(ctx, lot); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishDomainEvents(ctx, lot)
	s.invalidateSummary(ctx)

	response := ToLotResponse(lot)
	return &response, nil
}

// UpdateMarkup changes the markup percentage of a lot
func (s *LotService) UpdateMarkup(ctx context.Context, lotID uuid.UUID, req UpdateMarkupRequest) (*LotResponse, error) {
	return s.mutateLot(ctx, lotID, "update_markup", func(lot *presale.PreSaleLot) error {
		return lot.UpdateMarkup(req.MarkupPercentage)
	})
}

// UpdateFinalPrice overrides the sale price of a lot
func (s *LotService) UpdateFinalPrice(ctx context.Context, lotID uuid.UUID, req UpdateFinalPriceRequest) (*LotResponse, error) {
	return s.mutateLot(ctx, lotID, "update_final_price", func(lot *presale.PreSaleLot) error {
		return lot.UpdateFinalPrice(req.FinalPrice)
	})
}

// SetPreSalePrice sets the promotional price used while the lot is active
func (s *LotService) SetPreSalePrice(ctx context.Context, lotID uuid.UUID, price decimal.Decimal) (*LotResponse, error) {
	return s.mutateLot(ctx, lotID, "set_presale_price", func(lot *presale.PreSaleLot) error {
		return lot.SetPreSalePrice(price)
	})
}

// SetNormalPrice sets the regular store price used past the active stage
func (s *LotService) SetNormalPrice(ctx context.Context, lotID uuid.UUID, price decimal.Decimal) (*LotResponse, error) {
	return s.mutateLot(ctx, lotID, "set_normal_price", func(lot *presale.PreSaleLot) error {
		return lot.SetNormalPrice(price)
	})
}

// UpdateStatus moves the lot along its status graph. The transition to
// received converts the lot into inventory: one item per tracked unit, or one
// per total quantity when no units are tracked.
func (s *LotService) UpdateStatus(ctx context.Context, lotID uuid.UUID, req UpdateLotStatusRequest) (*LotResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "presale_lot", "update_status",
		telemetry.WithAttribute(telemetry.SpanAttrLotID, lotID.String()),
		telemetry.WithAttribute("target_status", req.Status))
	defer span.End()

	target := presale.LotStatus(req.Status)

	lot, err := s.lotRepo.FindByID(ctx, lotID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := lot.TransitionStatus(target); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.lotRepo.SaveWithLock(ctx, lot); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if target == presale.LotStatusReceived {
		if err := s.convertToInventory(ctx, lot); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		telemetry.AddEvent(span, "converted_to_inventory",
			telemetry.SpanAttrQuantity, lot.TotalQuantity)
	}

	s.publishDomainEvents(ctx, lot)
	s.invalidateSummary(ctx)

	response := ToLotResponse(lot)
	return &response, nil
}

// CancelLot clears all unit allocation and cancels the lot
func (s *LotService) CancelLot(ctx context.Context, lotID uuid.UUID) (*LotResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "presale_lot", "cancel",
		telemetry.WithAttribute(telemetry.SpanAttrLotID, lotID.String()))
	defer span.End()

	lot, err := s.lotRepo.FindByID(ctx, lotID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	lot.ResetAssignments()

	if err := s.lotRepo.SaveWithLock(ctx, lot); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishDomainEvents(ctx, lot)
	s.invalidateSummary(ctx)

	response := ToLotResponse(lot)
	return &response, nil
}

// UnitsForDelivery lists the units a delivery currently holds from a lot
func (s *LotService) UnitsForDelivery(ctx context.Context, lotID, deliveryID uuid.UUID) ([]UnitResponse, error) {
	lot, err := s.lotRepo.FindByID(ctx, lotID)
	if err != nil {
		return nil, err
	}

	units := lot.UnitsForDelivery(deliveryID)
	responses := make([]UnitResponse, 0, len(units))
	for _, u := range units {
		responses = append(responses, UnitResponse{
			ID:           u.ID,
			PurchaseID:   u.PurchaseID,
			DeliveryID:   u.DeliveryID,
			AssignedDate: u.AssignedDate,
			Notes:        u.Notes,
		})
	}
	return responses, nil
}

// ProfitAnalytics breaks down the margin of one lot
func (s *LotService) ProfitAnalytics(ctx context.Context, lotID uuid.UUID) (*ProfitAnalyticsResponse, error) {
	lot, err := s.lotRepo.FindByID(ctx, lotID)
	if err != nil {
		return nil, err
	}

	margin := decimal.Zero
	if lot.TotalSaleAmount.IsPositive() {
		margin = lot.TotalProfit.Div(lot.TotalSaleAmount).Mul(decimal.NewFromInt(100))
	}

	return &ProfitAnalyticsResponse{
		LotID:             lot.ID,
		ProductID:         lot.ProductID,
		TotalQuantity:     lot.TotalQuantity,
		BasePricePerUnit:  lot.BasePricePerUnit,
		FinalPricePerUnit: lot.FinalPricePerUnit,
		ProfitPerUnit:     lot.ProfitPerUnit(),
		TotalSaleAmount:   valueobject.NewMoneyMXN(lot.TotalSaleAmount),
		TotalCostAmount:   valueobject.NewMoneyMXN(lot.TotalCostAmount),
		TotalProfit:       valueobject.NewMoneyMXN(lot.TotalProfit),
		MarginPercentage:  margin,
	}, nil
}

// ActiveSummary aggregates every active lot. The result is served from the
// summary cache when one is configured.
func (s *LotService) ActiveSummary(ctx context.Context) (*ActiveSummaryResponse, error) {
	if s.summaryCache != nil {
		if cached, err := s.summaryCache.Get(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	lots, err := s.lotRepo.FindByStatus(ctx, presale.LotStatusActive)
	if err != nil {
		return nil, err
	}

	summary := &ActiveSummaryResponse{GeneratedAt: time.Now()}
	sale, cost, profit := decimal.Zero, decimal.Zero, decimal.Zero
	for i := range lots {
		lot := &lots[i]
		summary.ActiveLots++
		summary.TotalUnits += lot.TotalQuantity
		summary.AssignedUnits += lot.AssignedQuantity
		summary.AvailableUnits += lot.AvailableQuantity
		sale = sale.Add(lot.TotalSaleAmount)
		cost = cost.Add(lot.TotalCostAmount)
		profit = profit.Add(lot.TotalProfit)
	}
	summary.ProjectedSale = valueobject.NewMoneyMXN(sale)
	summary.ProjectedCost = valueobject.NewMoneyMXN(cost)
	summary.ProjectedProfit = valueobject.NewMoneyMXN(profit)

	if s.summaryCache != nil {
		_ = s.summaryCache.Set(ctx, summary)
	}
	return summary, nil
}

// mutateLot loads a lot, applies the mutation and persists with the version
// check. Shared by the pricing operations.
func (s *LotService) mutateLot(ctx context.Context, lotID uuid.UUID, op string, mutate func(*presale.PreSaleLot) error) (*LotResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "presale_lot", op,
		telemetry.WithAttribute(telemetry.SpanAttrLotID, lotID.String()))
	defer span.End()

	lot, err := s.lotRepo.FindByID(ctx, lotID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := mutate(lot); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.lotRepo.SaveWithLock(ctx, lot); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishDomainEvents(ctx, lot)
	s.invalidateSummary(ctx)

	response := ToLotResponse(lot)
	return &response, nil
}

// convertToInventory materializes a received lot as stock items
func (s *LotService) convertToInventory(ctx context.Context, lot *presale.PreSaleLot) error {
	if s.inventoryRepo == nil {
		return nil
	}

	if len(lot.Units) > 0 {
		for i := range lot.Units {
			unit := &lot.Units[i]
			item, err := inventory.NewInventoryItem(lot.ProductID, lot.BasePricePerUnit, lot.FinalPricePerUnit)
			if err != nil {
				return err
			}
			item.ProductName = lot.ProductName
			unitID := unit.ID
			purchaseID := unit.PurchaseID
			item.SetPreSaleProvenance(lot.ID, &unitID, &purchaseID, unit.DeliveryID)
			if err := s.inventoryRepo.Save(ctx, item); err != nil {
				return err
			}
		}
		return nil
	}

	for i := 0; i < lot.TotalQuantity; i++ {
		item, err := inventory.NewInventoryItem(lot.ProductID, lot.BasePricePerUnit, lot.FinalPricePerUnit)
		if err != nil {
			return err
		}
		item.ProductName = lot.ProductName
		item.SetPreSaleProvenance(lot.ID, nil, nil, nil)
		if err := s.inventoryRepo.Save(ctx, item); err != nil {
			return err
		}
	}
	return nil
}
