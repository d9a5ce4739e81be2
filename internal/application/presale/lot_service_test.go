package presale

import (
	"context"
	"testing"

	"github.com/diecast/backoffice/internal/domain/inventory"
	"github.com/diecast/backoffice/internal/domain/logistics"
	"github.com/diecast/backoffice/internal/domain/presale"
	"github.com/diecast/backoffice/internal/domain/shared"
	"github.com/diecast/backoffice/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newDomainLot(t *testing.T, quantity int) *presale.PreSaleLot {
	t.Helper()
	lot, err := presale.NewPreSaleLot("HW-2024-001", uuid.New(), quantity, decimal.NewFromInt(5),
		presale.LotPricingInput{}, "")
	require.NoError(t, err)
	lot.ClearDomainEvents()
	return lot
}

func newDomainDelivery(t *testing.T) *logistics.Delivery {
	t.Helper()
	delivery, err := logistics.NewDelivery(uuid.New(), planStartDate(), "Centro, CDMX", decimal.NewFromInt(500))
	require.NoError(t, err)
	return delivery
}

func TestLotService_CreateOrMergeLot(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a lot for a new product", func(t *testing.T) {
		lotRepo := new(MockLotRepository)
		service := NewLotService(lotRepo, nil, nil)
		publisher := NewMockEventPublisher()
		service.SetEventPublisher(publisher)

		lotRepo.On("FindByProduct", ctx, "HW-2024-001").Return(nil, shared.ErrNotFound)
		lotRepo.On("Save", ctx, mock.AnythingOfType("*presale.PreSaleLot")).Return(nil)

		resp, err := service.CreateOrMergeLot(ctx, CreateOrMergeLotRequest{
			ProductID:  "HW-2024-001",
			PurchaseID: uuid.New(),
			Quantity:   10,
			UnitPrice:  decimal.NewFromInt(5),
		})

		require.NoError(t, err)
		assert.Equal(t, "HW-2024-001", resp.ProductID)
		assert.Equal(t, 10, resp.AvailableQuantity)
		assert.Equal(t, "active", resp.Status)
		assert.Len(t, publisher.GetEventsByType(presale.EventTypeLotCreated), 1)
		lotRepo.AssertExpectations(t)
	})

	t.Run("merges a purchase into an existing lot", func(t *testing.T) {
		lotRepo := new(MockLotRepository)
		service := NewLotService(lotRepo, nil, nil)
		lot := newDomainLot(t, 10)

		lotRepo.On("FindByProduct", ctx, "HW-2024-001").Return(lot, nil)
		lotRepo.On("SaveWithLock", ctx, lot).Return(nil)

		resp, err := service.CreateOrMergeLot(ctx, CreateOrMergeLotRequest{
			ProductID:  "HW-2024-001",
			PurchaseID: uuid.New(),
			Quantity:   5,
			UnitPrice:  decimal.NewFromInt(5),
		})

		require.NoError(t, err)
		assert.Equal(t, 15, resp.TotalQuantity)
		lotRepo.AssertExpectations(t)
	})

	t.Run("propagates repository errors", func(t *testing.T) {
		lotRepo := new(MockLotRepository)
		service := NewLotService(lotRepo, nil, nil)

		lotRepo.On("FindByProduct", ctx, "HW-2024-001").Return(nil, shared.ErrConcurrencyConflict)

		_, err := service.CreateOrMergeLot(ctx, CreateOrMergeLotRequest{
			ProductID:  "HW-2024-001",
			PurchaseID: uuid.New(),
			Quantity:   5,
			UnitPrice:  decimal.NewFromInt(5),
		})

		require.Error(t, err)
	})
}

func TestLotService_AssignUnitsToDelivery(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns units and persists with the version check", func(t *testing.T) {
		lotRepo := new(MockLotRepository)
		deliveryRepo := new(MockDeliveryRepository)
		service := NewLotService(lotRepo, deliveryRepo, nil)
		publisher := NewMockEventPublisher()
		service.SetEventPublisher(publisher)

		lot := newDomainLot(t, 10)
		delivery := newDomainDelivery(t)

		deliveryRepo.On("FindByID", ctx, delivery.ID).Return(delivery, nil)
		lotRepo.On("FindByID", ctx, lot.ID).Return(lot, nil)
		lotRepo.On("SaveWithLock", ctx, lot).Return(nil)

		unitIDs, err := service.AssignUnitsToDelivery(ctx, lot.ID, AssignUnitsRequest{
			DeliveryID: delivery.ID,
			PurchaseID: lot.PurchaseIDs[0],
			Count:      3,
		})

		require.NoError(t, err)
		assert.Len(t, unitIDs, 3)
		assert.Equal(t, 7, lot.AvailableQuantity)
		assert.Len(t, publisher.GetEventsByType(presale.EventTypeUnitsAssigned), 1)
		lotRepo.AssertExpectations(t)
	})

	t.Run("unknown delivery is rejected before touching the lot", func(t *testing.T) {
		lotRepo := new(MockLotRepository)
		deliveryRepo := new(MockDeliveryRepository)
		service := NewLotService(lotRepo, deliveryRepo, nil)

		deliveryID := uuid.New()
		deliveryRepo.On("FindByID", ctx, deliveryID).Return(nil, shared.ErrNotFound)

		_, err := service.AssignUnitsToDelivery(ctx, uuid.New(), AssignUnitsRequest{
			DeliveryID: deliveryID,
			PurchaseID: uuid.New(),
			Count:      3,
		})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "DELIVERY_NOT_FOUND", domainErr.Code)
		lotRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("insufficient availability does not persist", func(t *testing.T) {
		lotRepo := new(MockLotRepository)
		deliveryRepo := new(MockDeliveryRepository)
		service := NewLotService(lotRepo, deliveryRepo, nil)

		lot := newDomainLot(t, 2)
		delivery := newDomainDelivery(t)

		deliveryRepo.On("FindByID", ctx, delivery.ID).Return(delivery, nil)
		lotRepo.On("FindByID", ctx, lot.ID).Return(lot, nil)

		_, err := service.AssignUnitsToDelivery(ctx, lot.ID, AssignUnitsRequest{
			DeliveryID: delivery.ID,
			PurchaseID: lot.PurchaseIDs[0],
			Count:      5,
		})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INSUFFICIENT_AVAILABILITY", domainErr.Code)
		lotRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("concurrency conflict surfaces to the caller", func(t *testing.T) {
		lotRepo := new(MockLotRepository)
		deliveryRepo := new(MockDeliveryRepository)
		service := NewLotService(lotRepo, deliveryRepo, nil)

		lot := newDomainLot(t, 10)
		delivery := newDomainDelivery(t)

		deliveryRepo.On("FindByID", ctx, delivery.ID).Return(delivery, nil)
		lotRepo.On("FindByID", ctx, lot.ID).Return(lot, nil)
		lotRepo.On("SaveWithLock", ctx, lot).Return(shared.ErrConcurrencyConflict)

		_, err := service.AssignUnitsToDelivery(ctx, lot.ID, AssignUnitsRequest{
			DeliveryID: delivery.ID,
			PurchaseID: lot.PurchaseIDs[0],
			Count:      3,
		})

		require.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})
}

func TestLotService_UnassignUnits(t *testing.T) {
	ctx := context.Background()

	t.Run("releases units back to the pool", func(t *testing.T) {
		lotRepo := new(MockLotRepository)
		service := NewLotService(lotRepo, nil, nil)

		lot := newDomainLot(t, 10)
		unitIDs, err := lot.AssignUnits(uuid.New(), lot.PurchaseIDs[0], 4)
		require.NoError(t, err)
		lot.ClearDomainEvents()

		lotRepo.On("FindByID", ctx, lot.ID).Return(lot, nil)
		lotRepo.On("SaveWithLock", ctx, lot).Return(nil)

		resp, err := service.UnassignUnits(ctx, lot.ID, UnassignUnitsRequest{UnitIDs: unitIDs[:2]})

		require.NoError(t, err)
		assert.Equal(t, 8, resp.AvailableQuantity)
		assert.Equal(t, 2, resp.AssignedQuantity)
	})
}

func TestLotService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("walks the lot along the status graph", func(t *testing.T) {
		lotRepo := new(MockLotRepository)
		service := NewLotService(lotRepo, nil, nil)

		lot := newDomainLot(t, 3)
		lotRepo.On("FindByID", ctx, lot.ID).Return(lot, nil)
		lotRepo.On("SaveWithLock", ctx, lot).Return(nil)

		resp, err := service.UpdateStatus(ctx, lot.ID, UpdateLotStatusRequest{Status: "purchased"})

		require.NoError(t, err)
		assert.Equal(t, "purchased", resp.Status)
	})

	t.Run("received transition converts tracked units to inventory", func(t *testing.T) {
		lotRepo := new(MockLotRepository)
		inventoryRepo := new(MockInventoryItemRepository)
		service := NewLotService(lotRepo, nil, inventoryRepo)

		lot := newDomainLot(t, 5)
		deliveryID := uuid.New()
		_, err := lot.AssignUnits(deliveryID, lot.PurchaseIDs[0], 2)
		require.NoError(t, err)
		require.NoError(t, lot.TransitionStatus(presale.LotStatusPurchased))
		require.NoError(t, lot.TransitionStatus(presale.LotStatusShipped))
		lot.ClearDomainEvents()

		lotRepo.On("FindByID", ctx, lot.ID).Return(lot, nil)
		lotRepo.On("SaveWithLock", ctx, lot).Return(nil)

		var created []*inventory.InventoryItem
		inventoryRepo.On("Save", ctx, mock.AnythingOfType("*inventory.InventoryItem")).
			Run(func(args mock.Arguments) {
				created = append(created, args.Get(1).(*inventory.InventoryItem))
			}).Return(nil)

		resp, err := service.UpdateStatus(ctx, lot.ID, UpdateLotStatusRequest{Status: "received"})

		require.NoError(t, err)
		assert.Equal(t, "received", resp.Status)
		// One item per tracked unit
		require.Len(t, created, 2)
		for _, item := range created {
			assert.Equal(t, lot.ProductID, item.ProductID)
			require.NotNil(t, item.SourceLotID)
			assert.Equal(t, lot.ID, *item.SourceLotID)
			assert.NotNil(t, item.SourceUnitID)
			require.NotNil(t, item.DeliveryID)
			assert.Equal(t, deliveryID, *item.DeliveryID)
		}
	})

	t.Run("received transition without tracked units converts by quantity", func(t *testing.T) {
		lotRepo := new(MockLotRepository)
		inventoryRepo := new(MockInventoryItemRepository)
		service := NewLotService(lotRepo, nil, inventoryRepo)

		lot := newDomainLot(t, 3)
		require.NoError(t, lot.TransitionStatus(presale.LotStatusPurchased))
		require.NoError(t, lot.TransitionStatus(presale.LotStatusShipped))
		lot.ClearDomainEvents()

		lotRepo.On("FindByID", ctx, lot.ID).Return(lot, nil)
		lotRepo.On("SaveWithLock", ctx, lot).Return(nil)
		inventoryRepo.On("Save", ctx, mock.AnythingOfType("*inventory.InventoryItem")).Return(nil).Times(3)

		_, err := service.UpdateStatus(ctx, lot.ID, UpdateLotStatusRequest{Status: "received"})

		require.NoError(t, err)
		inventoryRepo.AssertExpectations(t)
	})

	t.Run("invalid transition is rejected", func(t *testing.T) {
		lotRepo := new(MockLotRepository)
		service := NewLotService(lotRepo, nil, nil)

		lot := newDomainLot(t, 3)
		lotRepo.On("FindByID", ctx, lot.ID).Return(lot, nil)

		_, err := service.UpdateStatus(ctx, lot.ID, UpdateLotStatusRequest{Status: "delivered"})

		require.Error(t, err)
		lotRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}

func TestLotService_Pricing(t *testing.T) {
	ctx := context.Background()

	t.Run("markup update flows through to totals", func(t *testing.T) {
		lotRepo := new(MockLotRepository)
		service := NewLotService(lotRepo, nil, nil)

		lot := newDomainLot(t, 10)
		lotRepo.On("FindByID", ctx, lot.ID).Return(lot, nil)
		lotRepo.On("SaveWithLock", ctx, lot).Return(nil)

		resp, err := service.UpdateMarkup(ctx, lot.ID, UpdateMarkupRequest{MarkupPercentage: decimal.NewFromInt(20)})

		require.NoError(t, err)
		assert.Equal(t, "6", resp.FinalPricePerUnit.String())
		assert.Equal(t, "60", resp.TotalSaleAmount.String())
	})

	t.Run("final price below base does not persist", func(t *testing.T) {
		lotRepo := new(MockLotRepository)
		service := NewLotService(lotRepo, nil, nil)

		lot := newDomainLot(t, 10)
		lotRepo.On("FindByID", ctx, lot.ID).Return(lot, nil)

		_, err := service.UpdateFinalPrice(ctx, lot.ID, UpdateFinalPriceRequest{FinalPrice: decimal.NewFromInt(1)})

		require.Error(t, err)
		lotRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}

func TestLotService_ActiveSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("aggregates active lots", func(t *testing.T) {
		lotRepo := new(MockLotRepository)
		service := NewLotService(lotRepo, nil, nil)

		lotA := newDomainLot(t, 10)
		lotB := newDomainLot(t, 4)
		_, err := lotB.AssignUnits(uuid.New(), lotB.PurchaseIDs[0], 1)
		require.NoError(t, err)

		lotRepo.On("FindByStatus", ctx, presale.LotStatusActive).
			Return([]presale.PreSaleLot{*lotA, *lotB}, nil)

		summary, err := service.ActiveSummary(ctx)

		require.NoError(t, err)
		assert.Equal(t, 2, summary.ActiveLots)
		assert.Equal(t, 14, summary.TotalUnits)
		assert.Equal(t, 1, summary.AssignedUnits)
		assert.Equal(t, 13, summary.AvailableUnits)
		assert.Equal(t, "80.5", summary.ProjectedSale.Amount().String())
		assert.Equal(t, "70", summary.ProjectedCost.Amount().String())
		assert.Equal(t, valueobject.MXN, summary.ProjectedSale.Currency())

		expectedProfit, err := valueobject.NewMoneyMXNFromString("10.5")
		require.NoError(t, err)
		assert.True(t, summary.ProjectedProfit.Equals(expectedProfit))
	})
}

func TestLotService_ProfitAnalytics(t *testing.T) {
	ctx := context.Background()
	lotRepo := new(MockLotRepository)
	service := NewLotService(lotRepo, nil, nil)

	lot := newDomainLot(t, 10)
	lotRepo.On("FindByID", ctx, lot.ID).Return(lot, nil)

	analytics, err := service.ProfitAnalytics(ctx, lot.ID)

	require.NoError(t, err)
	assert.Equal(t, "0.75", analytics.ProfitPerUnit.StringFixed(2))
	assert.Equal(t, "7.50 MXN", analytics.TotalProfit.String())
	assert.Equal(t, valueobject.MXN, analytics.TotalSaleAmount.Currency())
	// 7.50 over 57.50 of sale
	assert.Equal(t, "13.04", analytics.MarginPercentage.StringFixed(2))
}
