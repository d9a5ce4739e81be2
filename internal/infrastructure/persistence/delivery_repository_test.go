package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/diecast/backoffice/internal/domain/logistics"
	"github.com/diecast/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupDeliveryTestDB creates an in-memory SQLite database with the deliveries table
func setupDeliveryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&logistics.Delivery{})
	require.NoError(t, err)

	return db
}

func newStoredDelivery(t *testing.T) *logistics.Delivery {
	t.Helper()

	delivery, err := logistics.NewDelivery(uuid.New(),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "Centro, CDMX", decimal.NewFromInt(500))
	require.NoError(t, err)
	delivery.ClearDomainEvents()
	return delivery
}

func TestGormDeliveryRepository_SaveAndFind(t *testing.T) {
	db := setupDeliveryTestDB(t)
	repo := NewGormDeliveryRepository(db)
	ctx := context.Background()

	delivery := newStoredDelivery(t)
	require.NoError(t, repo.Save(ctx, delivery))

	found, err := repo.FindByID(ctx, delivery.ID)
	require.NoError(t, err)
	assert.Equal(t, delivery.ID, found.ID)
	assert.Equal(t, "Centro, CDMX", found.Location)
	assert.Nil(t, found.PreSalePaymentPlanID)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormDeliveryRepository_PersistsPlanMirror(t *testing.T) {
	db := setupDeliveryTestDB(t)
	repo := NewGormDeliveryRepository(db)
	ctx := context.Background()

	delivery := newStoredDelivery(t)
	require.NoError(t, repo.Save(ctx, delivery))

	planID := uuid.New()
	delivery.LinkPaymentPlan(planID, "pending")
	require.NoError(t, repo.Save(ctx, delivery))

	found, err := repo.FindByID(ctx, delivery.ID)
	require.NoError(t, err)
	require.NotNil(t, found.PreSalePaymentPlanID)
	assert.Equal(t, planID, *found.PreSalePaymentPlanID)
	assert.Equal(t, "pending", found.PreSaleStatus)
}

func TestGormDeliveryRepository_FindAll(t *testing.T) {
	db := setupDeliveryTestDB(t)
	repo := NewGormDeliveryRepository(db)
	ctx := context.Background()

	delivery := newStoredDelivery(t)
	require.NoError(t, repo.Save(ctx, delivery))

	deliveries, err := repo.FindAll(ctx, shared.Filter{
		Page: 1, PageSize: 20,
		Filters: map[string]interface{}{"customer_id": delivery.CustomerID},
	})
	require.NoError(t, err)
	require.Len(t, deliveries, 1)
	assert.Equal(t, delivery.ID, deliveries[0].ID)
}

func TestGormDeliveryRepository_Delete(t *testing.T) {
	db := setupDeliveryTestDB(t)
	repo := NewGormDeliveryRepository(db)
	ctx := context.Background()

	delivery := newStoredDelivery(t)
	require.NoError(t, repo.Save(ctx, delivery))

	require.NoError(t, repo.Delete(ctx, delivery.ID))
	assert.ErrorIs(t, repo.Delete(ctx, delivery.ID), shared.ErrNotFound)
}
