package presale

import (
	"context"
	"sync"
	"time"

	"github.com/diecast/backoffice/internal/domain/inventory"
	"github.com/diecast/backoffice/internal/domain/logistics"
	"github.com/diecast/backoffice/internal/domain/presale"
	"github.com/diecast/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// planStartDate is the fixed schedule anchor used across the service tests
func planStartDate() time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
}

// MockEventPublisher collects published domain events
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{events: make([]shared.DomainEvent, 0)}
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) GetEventsByType(eventType string) []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, 0)
	for _, e := range m.events {
		if e.EventType() == eventType {
			result = append(result, e)
		}
	}
	return result
}

// MockLotRepository is a mock implementation of presale.LotRepository
type MockLotRepository struct {
	mock.Mock
}

func (m *MockLotRepository) FindByID(ctx context.Context, id uuid.UUID) (*presale.PreSaleLot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*presale.PreSaleLot), args.Error(1)
}

func (m *MockLotRepository) FindByProduct(ctx context.Context, productID string) (*presale.PreSaleLot, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*presale.PreSaleLot), args.Error(1)
}

func (m *MockLotRepository) FindAll(ctx context.Context, filter shared.Filter) ([]presale.PreSaleLot, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]presale.PreSaleLot), args.Error(1)
}

func (m *MockLotRepository) FindByStatus(ctx context.Context, status presale.LotStatus) ([]presale.PreSaleLot, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]presale.PreSaleLot), args.Error(1)
}

func (m *MockLotRepository) Save(ctx context.Context, lot *presale.PreSaleLot) error {
	args := m.Called(ctx, lot)
	return args.Error(0)
}

func (m *MockLotRepository) SaveWithLock(ctx context.Context, lot *presale.PreSaleLot) error {
	args := m.Called(ctx, lot)
	return args.Error(0)
}

func (m *MockLotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLotRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockPaymentPlanRepository is a mock implementation of presale.PaymentPlanRepository
type MockPaymentPlanRepository struct {
	mock.Mock
}

func (m *MockPaymentPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*presale.PaymentPlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*presale.PaymentPlan), args.Error(1)
}

func (m *MockPaymentPlanRepository) FindByDelivery(ctx context.Context, deliveryID uuid.UUID) (*presale.PaymentPlan, error) {
	args := m.Called(ctx, deliveryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*presale.PaymentPlan), args.Error(1)
}

func (m *MockPaymentPlanRepository) FindAll(ctx context.Context, filter shared.Filter) ([]presale.PaymentPlan, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]presale.PaymentPlan), args.Error(1)
}

func (m *MockPaymentPlanRepository) FindActive(ctx context.Context) ([]presale.PaymentPlan, error) {
	args := m.Called(ctx)
	return args.Get(0).([]presale.PaymentPlan), args.Error(1)
}

func (m *MockPaymentPlanRepository) FindOverdue(ctx context.Context) ([]presale.PaymentPlan, error) {
	args := m.Called(ctx)
	return args.Get(0).([]presale.PaymentPlan), args.Error(1)
}

func (m *MockPaymentPlanRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]presale.PaymentPlan, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]presale.PaymentPlan), args.Error(1)
}

func (m *MockPaymentPlanRepository) Save(ctx context.Context, plan *presale.PaymentPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockPaymentPlanRepository) SaveWithLock(ctx context.Context, plan *presale.PaymentPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockPaymentPlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockDeliveryRepository is a mock implementation of logistics.DeliveryRepository
type MockDeliveryRepository struct {
	mock.Mock
}

func (m *MockDeliveryRepository) FindByID(ctx context.Context, id uuid.UUID) (*logistics.Delivery, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*logistics.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]logistics.Delivery, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]logistics.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) Save(ctx context.Context, delivery *logistics.Delivery) error {
	args := m.Called(ctx, delivery)
	return args.Error(0)
}

func (m *MockDeliveryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockInventoryItemRepository is a mock implementation of inventory.InventoryItemRepository
type MockInventoryItemRepository struct {
	mock.Mock
}

func (m *MockInventoryItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.InventoryItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.InventoryItem), args.Error(1)
}

func (m *MockInventoryItemRepository) FindByProduct(ctx context.Context, productID string) ([]inventory.InventoryItem, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]inventory.InventoryItem), args.Error(1)
}

func (m *MockInventoryItemRepository) FindBySourceLot(ctx context.Context, lotID uuid.UUID) ([]inventory.InventoryItem, error) {
	args := m.Called(ctx, lotID)
	return args.Get(0).([]inventory.InventoryItem), args.Error(1)
}

func (m *MockInventoryItemRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.InventoryItem, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]inventory.InventoryItem), args.Error(1)
}

func (m *MockInventoryItemRepository) Save(ctx context.Context, item *inventory.InventoryItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockInventoryItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
