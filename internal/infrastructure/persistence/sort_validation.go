package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// LotSortFields contains allowed sort fields for pre-sale lots
var LotSortFields = map[string]bool{
	"id":                   true,
	"created_at":           true,
	"updated_at":           true,
	"product_id":           true,
	"product_name":         true,
	"brand":                true,
	"status":               true,
	"start_date":           true,
	"total_quantity":       true,
	"available_quantity":   true,
	"base_price_per_unit":  true,
	"final_price_per_unit": true,
	"total_profit":         true,
}

// PaymentPlanSortFields contains allowed sort fields for payment plans
var PaymentPlanSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"delivery_id":      true,
	"customer_name":    true,
	"status":           true,
	"start_date":       true,
	"total_amount":     true,
	"total_paid":       true,
	"remaining_amount": true,
	"overdue_amount":   true,
	"days_overdue":     true,
}

// DeliverySortFields contains allowed sort fields for deliveries
var DeliverySortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"customer_id":    true,
	"scheduled_date": true,
	"status":         true,
	"total_amount":   true,
}

// PurchaseSortFields contains allowed sort fields for purchases
var PurchaseSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"product_id":    true,
	"purchase_date": true,
	"status":        true,
	"quantity":      true,
	"unit_price":    true,
	"total_cost":    true,
}

// InventoryItemSortFields contains allowed sort fields for inventory items
var InventoryItemSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"product_id":   true,
	"product_name": true,
	"status":       true,
	"cost":         true,
	"price":        true,
}
