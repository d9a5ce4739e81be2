package logistics

import (
	"context"

	"github.com/diecast/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// DeliveryRepository persists Delivery aggregates
type DeliveryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Delivery, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Delivery, error)
	Save(ctx context.Context, delivery *Delivery) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PurchaseRepository persists Purchase aggregates
type PurchaseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Purchase, error)
	FindByProduct(ctx context.Context, productID string) ([]Purchase, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Purchase, error)
	Save(ctx context.Context, purchase *Purchase) error
	Delete(ctx context.Context, id uuid.UUID) error
}
