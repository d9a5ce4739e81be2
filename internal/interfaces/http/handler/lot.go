package handler

import (
	presaleapp "github.com/diecast/backoffice/internal/application/presale"
	"github.com/diecast/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LotHandler handles pre-sale lot API endpoints
type LotHandler struct {
	BaseHandler
	lotService *presaleapp.LotService
}

// NewLotHandler creates a new LotHandler
func NewLotHandler(lotService *presaleapp.LotService) *LotHandler {
	return &LotHandler{lotService: lotService}
}

// PriceRequest carries a single price override
type PriceRequest struct {
	Price decimal.Decimal `json:"price" binding:"required"`
}

// CreateOrMerge registers a purchase against a product's lot. A product
// without a lot gets one; a product with a lot has the purchase merged in.
func (h *LotHandler) CreateOrMerge(c *gin.Context) {
	var req presaleapp.CreateOrMergeLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	lot, err := h.lotService.CreateOrMergeLot(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, lot)
}

// GetByID retrieves a lot by its ID
func (h *LotHandler) GetByID(c *gin.Context) {
	lotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lot ID format")
		return
	}

	lot, err := h.lotService.GetByID(c.Request.Context(), lotID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lot)
}

// GetByProduct retrieves the lot tracking a product
func (h *LotHandler) GetByProduct(c *gin.Context) {
	productID := c.Param("product_id")
	if productID == "" {
		h.BadRequest(c, "product_id is required")
		return
	}

	lot, err := h.lotService.GetByProduct(c.Request.Context(), productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lot)
}

// List retrieves a paginated list of lots with optional filtering
func (h *LotHandler) List(c *gin.Context) {
	var filter presaleapp.LotListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	lots, total, err := h.lotService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, lots, total, filter.Page, filter.PageSize)
}

// AssignUnits allocates units of a lot to a delivery
func (h *LotHandler) AssignUnits(c *gin.Context) {
	lotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lot ID format")
		return
	}

	var req presaleapp.AssignUnitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	unitIDs, err := h.lotService.AssignUnitsToDelivery(c.Request.Context(), lotID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, gin.H{"unit_ids": unitIDs})
}

// UnassignUnits releases units back to the available pool
func (h *LotHandler) UnassignUnits(c *gin.Context) {
	lotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lot ID format")
		return
	}

	var req presaleapp.UnassignUnitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	lot, err := h.lotService.UnassignUnits(c.Request.Context(), lotID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lot)
}

// UpdateMarkup changes the markup percentage of a lot
func (h *LotHandler) UpdateMarkup(c *gin.Context) {
	lotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lot ID format")
		return
	}

	var req presaleapp.UpdateMarkupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	lot, err := h.lotService.UpdateMarkup(c.Request.Context(), lotID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lot)
}

// UpdateFinalPrice overrides the sale price of a lot
func (h *LotHandler) UpdateFinalPrice(c *gin.Context) {
	lotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lot ID format")
		return
	}

	var req presaleapp.UpdateFinalPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	lot, err := h.lotService.UpdateFinalPrice(c.Request.Context(), lotID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lot)
}

// SetPreSalePrice sets the price used while the lot is still active
func (h *LotHandler) SetPreSalePrice(c *gin.Context) {
	lotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lot ID format")
		return
	}

	var req PriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	lot, err := h.lotService.SetPreSalePrice(c.Request.Context(), lotID, req.Price)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lot)
}

// SetNormalPrice sets the price used once the lot leaves pre-sale
func (h *LotHandler) SetNormalPrice(c *gin.Context) {
	lotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lot ID format")
		return
	}

	var req PriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	lot, err := h.lotService.SetNormalPrice(c.Request.Context(), lotID, req.Price)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lot)
}

// UpdateStatus moves the lot along its status graph
func (h *LotHandler) UpdateStatus(c *gin.Context) {
	lotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lot ID format")
		return
	}

	var req presaleapp.UpdateLotStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	lot, err := h.lotService.UpdateStatus(c.Request.Context(), lotID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lot)
}

// Cancel terminates a lot and releases its assignments
func (h *LotHandler) Cancel(c *gin.Context) {
	lotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lot ID format")
		return
	}

	lot, err := h.lotService.CancelLot(c.Request.Context(), lotID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lot)
}

// UnitsForDelivery lists the units a delivery holds within a lot
func (h *LotHandler) UnitsForDelivery(c *gin.Context) {
	lotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lot ID format")
		return
	}

	deliveryID, err := uuid.Parse(c.Param("delivery_id"))
	if err != nil {
		h.BadRequest(c, "Invalid delivery ID format")
		return
	}

	units, err := h.lotService.UnitsForDelivery(c.Request.Context(), lotID, deliveryID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, units)
}

// ProfitAnalytics breaks down the margin of one lot
func (h *LotHandler) ProfitAnalytics(c *gin.Context) {
	lotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lot ID format")
		return
	}

	analytics, err := h.lotService.ProfitAnalytics(c.Request.Context(), lotID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, analytics)
}

// ActiveSummary aggregates the currently active lots
func (h *LotHandler) ActiveSummary(c *gin.Context) {
	summary, err := h.lotService.ActiveSummary(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, summary)
}

// RegisterRoutes registers all lot routes
func (h *LotHandler) RegisterRoutes(rg *gin.RouterGroup) {
	items := rg.Group("/presale/items")
	{
		items.POST("", h.CreateOrMerge)
		items.GET("", h.List)
		items.GET("/summary", h.ActiveSummary)
		items.GET("/by-product/:product_id", h.GetByProduct)
		items.GET("/:id", h.GetByID)
		items.POST("/:id/assignments", h.AssignUnits)
		items.POST("/:id/unassign", h.UnassignUnits)
		items.PUT("/:id/markup", h.UpdateMarkup)
		items.PUT("/:id/final-price", h.UpdateFinalPrice)
		items.PUT("/:id/pre-sale-price", h.SetPreSalePrice)
		items.PUT("/:id/normal-price", h.SetNormalPrice)
		items.PUT("/:id/status", h.UpdateStatus)
		items.POST("/:id/cancel", h.Cancel)
		items.GET("/:id/deliveries/:delivery_id/units", h.UnitsForDelivery)
		items.GET("/:id/profit", h.ProfitAnalytics)
	}
}
