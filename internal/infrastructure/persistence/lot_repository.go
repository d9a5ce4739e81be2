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

// GormLotRepository implements LotRepository using GORM
type GormLotRepository struct {
	db *gorm.DB
}

// NewGormLotRepository creates a new GormLotRepository
func NewGormLotRepository(db *gorm.DB) *GormLotRepository {
	return &GormLotRepository{db: db}
}

// FindByID finds a lot by its ID, including units and delivery assignments
func (r *GormLotRepository) FindByID(ctx context.Context, id uuid.UUID) (*presale.PreSaleLot, error) {
	var lot presale.PreSaleLot
	if err := r.withChildren(r.db.WithContext(ctx)).First(&lot, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &lot, nil
}

// FindByProduct finds the lot accumulating pre-sale purchases of a product.
// At most one lot exists per product.
func (r *GormLotRepository) FindByProduct(ctx context.Context, productID string) (*presale.PreSaleLot, error) {
	var lot presale.PreSaleLot
	if err := r.withChildren(r.db.WithContext(ctx)).First(&lot, "product_id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &lot, nil
}

// FindAll finds lots matching the filter
func (r *GormLotRepository) FindAll(ctx context.Context, filter shared.Filter) ([]presale.PreSaleLot, error) {
	var lots []presale.PreSaleLot
	query := r.applyFilter(r.withChildren(r.db.WithContext(ctx)).Model(&presale.PreSaleLot{}), filter)

	if err := query.Find(&lots).Error; err != nil {
		return nil, err
	}
	return lots, nil
}

// FindByStatus finds all lots in the given status
func (r *GormLotRepository) FindByStatus(ctx context.Context, status presale.LotStatus) ([]presale.PreSaleLot, error) {
	var lots []presale.PreSaleLot
	if err := r.withChildren(r.db.WithContext(ctx)).
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&lots).Error; err != nil {
		return nil, err
	}
	return lots, nil
}

// Save creates or updates a lot without a version check
func (r *GormLotRepository) Save(ctx context.Context, lot *presale.PreSaleLot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Units", "DeliveryAssignments").Save(lot).Error; err != nil {
			return err
		}
		return r.syncChildren(tx, lot)
	})
}

// SaveWithLock updates a lot with an optimistic version check. Returns
// shared.ErrConcurrencyConflict when the stored version moved since the
// aggregate was loaded.
func (r *GormLotRepository) SaveWithLock(ctx context.Context, lot *presale.PreSaleLot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&presale.PreSaleLot{}).
			Where("id = ? AND version = ?", lot.ID, lot.Version-1).
			Select("*").
			Omit("Units", "DeliveryAssignments", "created_at").
			Updates(lot)

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return r.syncChildren(tx, lot)
	})
}

// Delete deletes a lot and its child rows
func (r *GormLotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lot_id = ?", id).Delete(&presale.UnitAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("lot_id = ?", id).Delete(&presale.DeliveryAssignment{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&presale.PreSaleLot{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts lots matching the filter
func (r *GormLotRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&presale.PreSaleLot{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// withChildren preloads the unit and delivery-assignment child rows
func (r *GormLotRepository) withChildren(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Units", func(db *gorm.DB) *gorm.DB {
			return db.Order("assigned_date ASC")
		}).
		Preload("DeliveryAssignments", func(db *gorm.DB) *gorm.DB {
			return db.Order("assigned_date ASC")
		})
}

// syncChildren replaces the stored child rows with the aggregate's current
// slices. Child sets are small (units per lot), so delete-and-recreate keeps
// removal handling trivial.
func (r *GormLotRepository) syncChildren(tx *gorm.DB, lot *presale.PreSaleLot) error {
	if err := tx.Where("lot_id = ?", lot.ID).Delete(&presale.UnitAssignment{}).Error; err != nil {
		return err
	}
	if len(lot.Units) > 0 {
		if err := tx.Create(&lot.Units).Error; err != nil {
			return err
		}
	}
	if err := tx.Where("lot_id = ?", lot.ID).Delete(&presale.DeliveryAssignment{}).Error; err != nil {
		return err
	}
	if len(lot.DeliveryAssignments) > 0 {
		if err := tx.Create(&lot.DeliveryAssignments).Error; err != nil {
			return err
		}
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormLotRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering
	orderBy := ValidateSortField(filter.OrderBy, LotSortFields, "updated_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormLotRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(product_id) LIKE ? OR LOWER(product_name) LIKE ? OR LOWER(brand) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "brand":
			query = query.Where("brand = ?", value)
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "has_availability":
			if value == true {
				query = query.Where("available_quantity > 0")
			}
		}
	}

	return query
}

// Ensure GormLotRepository implements LotRepository
var _ presale.LotRepository = (*GormLotRepository)(nil)
