package persistence

import (
	"context"
	"testing"

	"github.com/diecast/backoffice/internal/domain/inventory"
	"github.com/diecast/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupInventoryTestDB creates an in-memory SQLite database with the inventory table
func setupInventoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&inventory.InventoryItem{})
	require.NoError(t, err)

	return db
}

func newStoredItem(t *testing.T, productID string) *inventory.InventoryItem {
	t.Helper()

	item, err := inventory.NewInventoryItem(productID, decimal.NewFromInt(5), decimal.RequireFromString("5.75"))
	require.NoError(t, err)
	item.ClearDomainEvents()
	return item
}

func TestGormInventoryItemRepository_SaveAndFind(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewGormInventoryItemRepository(db)
	ctx := context.Background()

	item := newStoredItem(t, "HW-2024-001")
	require.NoError(t, repo.Save(ctx, item))

	found, err := repo.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, found.ID)
	assert.True(t, found.Cost.Equal(decimal.NewFromInt(5)))
	assert.True(t, found.Price.Equal(decimal.RequireFromString("5.75")))

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormInventoryItemRepository_FindBySourceLot(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewGormInventoryItemRepository(db)
	ctx := context.Background()

	lotID := uuid.New()
	unitID := uuid.New()

	converted := newStoredItem(t, "HW-2024-001")
	converted.SetPreSaleProvenance(lotID, &unitID, nil, nil)
	require.NoError(t, repo.Save(ctx, converted))

	unrelated := newStoredItem(t, "MB-2024-007")
	require.NoError(t, repo.Save(ctx, unrelated))

	items, err := repo.FindBySourceLot(ctx, lotID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, converted.ID, items[0].ID)
	require.NotNil(t, items[0].SourceUnitID)
	assert.Equal(t, unitID, *items[0].SourceUnitID)
}

func TestGormInventoryItemRepository_FindByProduct(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewGormInventoryItemRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newStoredItem(t, "HW-2024-001")))
	require.NoError(t, repo.Save(ctx, newStoredItem(t, "HW-2024-001")))
	require.NoError(t, repo.Save(ctx, newStoredItem(t, "MB-2024-007")))

	items, err := repo.FindByProduct(ctx, "HW-2024-001")
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestGormInventoryItemRepository_FindAll(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewGormInventoryItemRepository(db)
	ctx := context.Background()

	item := newStoredItem(t, "HW-2024-001")
	item.ProductName = "Nissan Skyline GT-R"
	require.NoError(t, repo.Save(ctx, item))

	items, err := repo.FindAll(ctx, shared.Filter{Page: 1, PageSize: 20, Search: "skyline"})
	require.NoError(t, err)
	assert.Len(t, items, 1)

	items, err = repo.FindAll(ctx, shared.Filter{
		Page: 1, PageSize: 20,
		Filters: map[string]interface{}{"product_id": "MB-2024-007"},
	})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestGormInventoryItemRepository_Delete(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewGormInventoryItemRepository(db)
	ctx := context.Background()

	item := newStoredItem(t, "HW-2024-001")
	require.NoError(t, repo.Save(ctx, item))

	require.NoError(t, repo.Delete(ctx, item.ID))
	assert.ErrorIs(t, repo.Delete(ctx, item.ID), shared.ErrNotFound)
}
