package inventory

import (
	"context"

	"github.com/diecast/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// InventoryItemRepository persists InventoryItem aggregates
type InventoryItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*InventoryItem, error)
	FindByProduct(ctx context.Context, productID string) ([]InventoryItem, error)
	FindBySourceLot(ctx context.Context, lotID uuid.UUID) ([]InventoryItem, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]InventoryItem, error)
	Save(ctx context.Context, item *InventoryItem) error
	Delete(ctx context.Context, id uuid.UUID) error
}
