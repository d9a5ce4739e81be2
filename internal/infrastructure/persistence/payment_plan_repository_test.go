package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/diecast/backoffice/internal/domain/presale"
	"github.com/diecast/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var planTestStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// setupPlanTestDB creates an in-memory SQLite database with the plan tables
func setupPlanTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&presale.PaymentPlan{}, &presale.Installment{})
	require.NoError(t, err)

	return db
}

func newStoredPlan(t *testing.T, deliveryID uuid.UUID) *presale.PaymentPlan {
	t.Helper()

	plan, err := presale.NewPaymentPlan(deliveryID, decimal.NewFromInt(300), 3,
		presale.FrequencyWeekly, planTestStart,
		presale.PlanCustomerInput{CustomerName: "Maria Lopez"}, decimal.Zero)
	require.NoError(t, err)
	plan.ClearDomainEvents()
	return plan
}

func TestGormPaymentPlanRepository_SaveAndFindByID(t *testing.T) {
	db := setupPlanTestDB(t)
	repo := NewGormPaymentPlanRepository(db)
	ctx := context.Background()

	plan := newStoredPlan(t, uuid.New())
	require.NoError(t, repo.Save(ctx, plan))

	found, err := repo.FindByID(ctx, plan.ID)
	require.NoError(t, err)

	assert.Equal(t, plan.ID, found.ID)
	assert.Equal(t, presale.PlanStatusPending, found.Status)
	assert.True(t, found.TotalAmount.Equal(decimal.NewFromInt(300)))
	require.Len(t, found.Installments, 3)

	// Installments come back in sequence order with the scheduled dates intact
	assert.Equal(t, 1, found.Installments[0].Sequence)
	assert.Equal(t, 3, found.Installments[2].Sequence)
	assert.Equal(t, planTestStart.AddDate(0, 0, 7).Day(), found.Installments[1].ScheduledDate.Day())
}

func TestGormPaymentPlanRepository_FindByDelivery(t *testing.T) {
	db := setupPlanTestDB(t)
	repo := NewGormPaymentPlanRepository(db)
	ctx := context.Background()

	deliveryID := uuid.New()
	plan := newStoredPlan(t, deliveryID)
	require.NoError(t, repo.Save(ctx, plan))

	found, err := repo.FindByDelivery(ctx, deliveryID)
	require.NoError(t, err)
	assert.Equal(t, plan.ID, found.ID)

	_, err = repo.FindByDelivery(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormPaymentPlanRepository_SavePersistsPaymentProgress(t *testing.T) {
	db := setupPlanTestDB(t)
	repo := NewGormPaymentPlanRepository(db)
	ctx := context.Background()

	plan := newStoredPlan(t, uuid.New())
	require.NoError(t, repo.Save(ctx, plan))

	_, err := plan.RecordPayment(decimal.NewFromInt(100), planTestStart.AddDate(0, 0, 1), "cash")
	require.NoError(t, err)
	require.NoError(t, repo.SaveWithLock(ctx, plan))

	found, err := repo.FindByID(ctx, plan.ID)
	require.NoError(t, err)

	assert.Equal(t, presale.PlanStatusInProgress, found.Status)
	assert.True(t, found.TotalPaid.Equal(decimal.NewFromInt(100)))
	assert.True(t, found.RemainingAmount.Equal(decimal.NewFromInt(200)))
	require.Len(t, found.Installments, 3)
	assert.True(t, found.Installments[0].AmountPaid.Equal(decimal.NewFromInt(100)))
	assert.NotNil(t, found.Installments[0].ActualDate)
	assert.Equal(t, "cash", found.Installments[0].Notes)
}

func TestGormPaymentPlanRepository_SaveWithLock_Conflict(t *testing.T) {
	db := setupPlanTestDB(t)
	repo := NewGormPaymentPlanRepository(db)
	ctx := context.Background()

	plan := newStoredPlan(t, uuid.New())
	require.NoError(t, repo.Save(ctx, plan))

	stale, err := repo.FindByID(ctx, plan.ID)
	require.NoError(t, err)

	_, err = plan.RecordPayment(decimal.NewFromInt(100), planTestStart, "")
	require.NoError(t, err)
	require.NoError(t, repo.SaveWithLock(ctx, plan))

	_, err = stale.RecordPayment(decimal.NewFromInt(50), planTestStart, "")
	require.NoError(t, err)
	err = repo.SaveWithLock(ctx, stale)

	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

	found, err := repo.FindByID(ctx, plan.ID)
	require.NoError(t, err)
	assert.True(t, found.TotalPaid.Equal(decimal.NewFromInt(100)))
}

func TestGormPaymentPlanRepository_FindActive(t *testing.T) {
	db := setupPlanTestDB(t)
	repo := NewGormPaymentPlanRepository(db)
	ctx := context.Background()

	pending := newStoredPlan(t, uuid.New())
	require.NoError(t, repo.Save(ctx, pending))

	cancelled := newStoredPlan(t, uuid.New())
	require.NoError(t, cancelled.Cancel("customer backed out"))
	cancelled.ClearDomainEvents()
	require.NoError(t, repo.Save(ctx, cancelled))

	overdue := newStoredPlan(t, uuid.New())
	overdue.CheckOverduePayments(planTestStart.AddDate(0, 1, 0))
	overdue.ClearDomainEvents()
	require.NoError(t, repo.Save(ctx, overdue))

	plans, err := repo.FindActive(ctx)
	require.NoError(t, err)

	require.Len(t, plans, 2)
	ids := []uuid.UUID{plans[0].ID, plans[1].ID}
	assert.Contains(t, ids, pending.ID)
	assert.Contains(t, ids, overdue.ID)
}

func TestGormPaymentPlanRepository_FindOverdue(t *testing.T) {
	db := setupPlanTestDB(t)
	repo := NewGormPaymentPlanRepository(db)
	ctx := context.Background()

	current := newStoredPlan(t, uuid.New())
	require.NoError(t, repo.Save(ctx, current))

	lightlyOverdue := newStoredPlan(t, uuid.New())
	lightlyOverdue.CheckOverduePayments(planTestStart.AddDate(0, 0, 3))
	lightlyOverdue.ClearDomainEvents()
	require.NoError(t, repo.Save(ctx, lightlyOverdue))

	deeplyOverdue := newStoredPlan(t, uuid.New())
	deeplyOverdue.CheckOverduePayments(planTestStart.AddDate(0, 2, 0))
	deeplyOverdue.ClearDomainEvents()
	require.NoError(t, repo.Save(ctx, deeplyOverdue))

	plans, err := repo.FindOverdue(ctx)
	require.NoError(t, err)

	// Most-delinquent first
	require.Len(t, plans, 2)
	assert.Equal(t, deeplyOverdue.ID, plans[0].ID)
	assert.Equal(t, lightlyOverdue.ID, plans[1].ID)
}

func TestGormPaymentPlanRepository_FindByCustomer(t *testing.T) {
	db := setupPlanTestDB(t)
	repo := NewGormPaymentPlanRepository(db)
	ctx := context.Background()

	customerID := uuid.New()
	plan, err := presale.NewPaymentPlan(uuid.New(), decimal.NewFromInt(300), 3,
		presale.FrequencyWeekly, planTestStart,
		presale.PlanCustomerInput{CustomerID: &customerID}, decimal.Zero)
	require.NoError(t, err)
	plan.ClearDomainEvents()
	require.NoError(t, repo.Save(ctx, plan))

	other := newStoredPlan(t, uuid.New())
	require.NoError(t, repo.Save(ctx, other))

	plans, err := repo.FindByCustomer(ctx, customerID)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, plan.ID, plans[0].ID)
}

func TestGormPaymentPlanRepository_FindAll(t *testing.T) {
	db := setupPlanTestDB(t)
	repo := NewGormPaymentPlanRepository(db)
	ctx := context.Background()

	plan := newStoredPlan(t, uuid.New())
	require.NoError(t, repo.Save(ctx, plan))

	t.Run("search matches customer name", func(t *testing.T) {
		plans, err := repo.FindAll(ctx, shared.Filter{Page: 1, PageSize: 20, Search: "maria"})
		require.NoError(t, err)
		assert.Len(t, plans, 1)
	})

	t.Run("status filter", func(t *testing.T) {
		plans, err := repo.FindAll(ctx, shared.Filter{
			Page: 1, PageSize: 20,
			Filters: map[string]interface{}{"status": presale.PlanStatusCompleted},
		})
		require.NoError(t, err)
		assert.Empty(t, plans)
	})

	t.Run("unpaginated listing", func(t *testing.T) {
		plans, err := repo.FindAll(ctx, shared.Filter{Page: 1, PageSize: -1})
		require.NoError(t, err)
		assert.Len(t, plans, 1)
	})
}

func TestGormPaymentPlanRepository_Delete(t *testing.T) {
	db := setupPlanTestDB(t)
	repo := NewGormPaymentPlanRepository(db)
	ctx := context.Background()

	plan := newStoredPlan(t, uuid.New())
	require.NoError(t, repo.Save(ctx, plan))

	require.NoError(t, repo.Delete(ctx, plan.ID))

	_, err := repo.FindByID(ctx, plan.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	var installmentRows int64
	require.NoError(t, db.Model(&presale.Installment{}).Count(&installmentRows).Error)
	assert.Equal(t, int64(0), installmentRows)

	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), shared.ErrNotFound)
}
