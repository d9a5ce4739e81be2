package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/diecast/backoffice/internal/domain/presale"
	"github.com/diecast/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentPlanRepository implements PaymentPlanRepository using GORM
type GormPaymentPlanRepository struct {
	db *gorm.DB
}

// NewGormPaymentPlanRepository creates a new GormPaymentPlanRepository
func NewGormPaymentPlanRepository(db *gorm.DB) *GormPaymentPlanRepository {
	return &GormPaymentPlanRepository{db: db}
}

// FindByID finds a payment plan by its ID, including its installments
func (r *GormPaymentPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*presale.PaymentPlan, error) {
	var plan presale.PaymentPlan
	if err := r.withInstallments(r.db.WithContext(ctx)).First(&plan, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// FindByDelivery finds the plan attached to a delivery. At most one plan
// exists per delivery.
func (r *GormPaymentPlanRepository) FindByDelivery(ctx context.Context, deliveryID uuid.UUID) (*presale.PaymentPlan, error) {
	var plan presale.PaymentPlan
	if err := r.withInstallments(r.db.WithContext(ctx)).First(&plan, "delivery_id = ?", deliveryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// FindAll finds plans matching the filter
func (r *GormPaymentPlanRepository) FindAll(ctx context.Context, filter shared.Filter) ([]presale.PaymentPlan, error) {
	var plans []presale.PaymentPlan
	query := r.applyFilter(r.withInstallments(r.db.WithContext(ctx)).Model(&presale.PaymentPlan{}), filter)

	if err := query.Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

// FindActive returns plans in pending or in-progress status, the set the
// overdue sweep re-evaluates
func (r *GormPaymentPlanRepository) FindActive(ctx context.Context) ([]presale.PaymentPlan, error) {
	var plans []presale.PaymentPlan
	if err := r.withInstallments(r.db.WithContext(ctx)).
		Where("status IN ?", []presale.PlanStatus{presale.PlanStatusPending, presale.PlanStatusInProgress, presale.PlanStatusOverdue}).
		Order("start_date ASC").
		Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

// FindOverdue returns non-terminal plans flagged with overdue payments,
// most-delinquent first
func (r *GormPaymentPlanRepository) FindOverdue(ctx context.Context) ([]presale.PaymentPlan, error) {
	var plans []presale.PaymentPlan
	if err := r.withInstallments(r.db.WithContext(ctx)).
		Where("has_overdue_payments = ? AND status NOT IN ?",
			true, []presale.PlanStatus{presale.PlanStatusCompleted, presale.PlanStatusCancelled}).
		Order("days_overdue DESC, overdue_amount DESC").
		Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

// FindByCustomer finds all plans for a catalog customer
func (r *GormPaymentPlanRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]presale.PaymentPlan, error) {
	var plans []presale.PaymentPlan
	if err := r.withInstallments(r.db.WithContext(ctx)).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

// Save creates or updates a plan without a version check
func (r *GormPaymentPlanRepository) Save(ctx context.Context, plan *presale.PaymentPlan) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Installments").Save(plan).Error; err != nil {
			return err
		}
		return r.syncInstallments(tx, plan)
	})
}

// SaveWithLock updates a plan with an optimistic version check. Returns
// shared.ErrConcurrencyConflict when the stored version moved since the
// aggregate was loaded.
func (r *GormPaymentPlanRepository) SaveWithLock(ctx context.Context, plan *presale.PaymentPlan) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&presale.PaymentPlan{}).
			Where("id = ? AND version = ?", plan.ID, plan.Version-1).
			Select("*").
			Omit("Installments", "created_at").
			Updates(plan)

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return r.syncInstallments(tx, plan)
	})
}

// Delete deletes a plan and its installments
func (r *GormPaymentPlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("plan_id = ?", id).Delete(&presale.Installment{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&presale.PaymentPlan{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// withInstallments preloads the installment schedule in sequence order
func (r *GormPaymentPlanRepository) withInstallments(query *gorm.DB) *gorm.DB {
	return query.Preload("Installments", func(db *gorm.DB) *gorm.DB {
		return db.Order("sequence ASC")
	})
}

// syncInstallments replaces the stored installment rows with the aggregate's
// current schedule
func (r *GormPaymentPlanRepository) syncInstallments(tx *gorm.DB, plan *presale.PaymentPlan) error {
	if err := tx.Where("plan_id = ?", plan.ID).Delete(&presale.Installment{}).Error; err != nil {
		return err
	}
	if len(plan.Installments) > 0 {
		if err := tx.Create(&plan.Installments).Error; err != nil {
			return err
		}
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormPaymentPlanRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(customer_name) LIKE ?", pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "delivery_id":
			query = query.Where("delivery_id = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "overdue":
			if value == true {
				query = query.Where("has_overdue_payments = ?", true)
			}
		}
	}

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering
	orderBy := ValidateSortField(filter.OrderBy, PaymentPlanSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

// Ensure GormPaymentPlanRepository implements PaymentPlanRepository
var _ presale.PaymentPlanRepository = (*GormPaymentPlanRepository)(nil)
