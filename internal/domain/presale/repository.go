package presale

import (
	"context"

	"github.com/diecast/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// LotRepository persists PreSaleLot aggregates
type LotRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PreSaleLot, error)
	FindByProduct(ctx context.Context, productID string) (*PreSaleLot, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]PreSaleLot, error)
	FindByStatus(ctx context.Context, status LotStatus) ([]PreSaleLot, error)
	// Save persists the aggregate without a version check
	Save(ctx context.Context, lot *PreSaleLot) error
	// SaveWithLock persists the aggregate with an optimistic version check and
	// returns shared.ErrConcurrencyConflict when the stored version moved
	SaveWithLock(ctx context.Context, lot *PreSaleLot) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// PaymentPlanRepository persists PaymentPlan aggregates
type PaymentPlanRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentPlan, error)
	FindByDelivery(ctx context.Context, deliveryID uuid.UUID) (*PaymentPlan, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]PaymentPlan, error)
	// FindActive returns plans still collecting payments (pending, in-progress
	// or overdue), the set the overdue sweep re-evaluates
	FindActive(ctx context.Context) ([]PaymentPlan, error)
	// FindOverdue returns non-completed plans flagged with overdue payments,
	// most-delinquent first
	FindOverdue(ctx context.Context) ([]PaymentPlan, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]PaymentPlan, error)
	Save(ctx context.Context, plan *PaymentPlan) error
	SaveWithLock(ctx context.Context, plan *PaymentPlan) error
	Delete(ctx context.Context, id uuid.UUID) error
}
