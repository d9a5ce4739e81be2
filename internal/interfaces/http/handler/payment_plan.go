package handler

import (
	"time"

	presaleapp "github.com/diecast/backoffice/internal/application/presale"
	"github.com/diecast/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentPlanHandler handles installment payment plan API endpoints
type PaymentPlanHandler struct {
	BaseHandler
	planService *presaleapp.PaymentPlanService
}

// NewPaymentPlanHandler creates a new PaymentPlanHandler
func NewPaymentPlanHandler(planService *presaleapp.PaymentPlanService) *PaymentPlanHandler {
	return &PaymentPlanHandler{planService: planService}
}

// Create creates a payment plan for a delivery
func (h *PaymentPlanHandler) Create(c *gin.Context) {
	var req presaleapp.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	plan, err := h.planService.CreatePlan(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, plan)
}

// GetByID retrieves a plan by its ID
func (h *PaymentPlanHandler) GetByID(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid plan ID format")
		return
	}

	plan, err := h.planService.GetByID(c.Request.Context(), planID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, plan)
}

// GetByDelivery retrieves the plan attached to a delivery
func (h *PaymentPlanHandler) GetByDelivery(c *gin.Context) {
	deliveryID, err := uuid.Parse(c.Param("delivery_id"))
	if err != nil {
		h.BadRequest(c, "Invalid delivery ID format")
		return
	}

	plan, err := h.planService.GetByDelivery(c.Request.Context(), deliveryID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, plan)
}

// GetSchedule returns the installment schedule of a plan
func (h *PaymentPlanHandler) GetSchedule(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid plan ID format")
		return
	}

	schedule, err := h.planService.GetSchedule(c.Request.Context(), planID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, schedule)
}

// NextPaymentDue returns the first unsettled installment of a plan
func (h *PaymentPlanHandler) NextPaymentDue(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid plan ID format")
		return
	}

	installment, err := h.planService.NextPaymentDue(c.Request.Context(), planID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, installment)
}

// RecordPayment records one payment against a plan
func (h *PaymentPlanHandler) RecordPayment(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid plan ID format")
		return
	}

	var req presaleapp.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.planService.RecordPayment(c.Request.Context(), planID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// CheckOverdue re-evaluates the overdue state of one plan. An optional
// as_of query parameter (RFC3339) pins the evaluation date.
func (h *PaymentPlanHandler) CheckOverdue(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid plan ID format")
		return
	}

	asOf := time.Now()
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.BadRequest(c, "as_of must be an RFC3339 timestamp")
			return
		}
		asOf = parsed
	}

	plan, err := h.planService.CheckOverdue(c.Request.Context(), planID, asOf)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, plan)
}

// SweepOverdue re-evaluates every plan still collecting payments
func (h *PaymentPlanHandler) SweepOverdue(c *gin.Context) {
	result, err := h.planService.SweepOverdue(c.Request.Context(), time.Now())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// ListOverdue lists plans with overdue installments
func (h *PaymentPlanHandler) ListOverdue(c *gin.Context) {
	plans, err := h.planService.ListOverdue(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, plans)
}

// ApplyBonus applies the early-payment bonus when the plan qualifies
func (h *PaymentPlanHandler) ApplyBonus(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid plan ID format")
		return
	}

	plan, err := h.planService.ApplyBonus(c.Request.Context(), planID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, plan)
}

// Cancel terminates a plan with a reason
func (h *PaymentPlanHandler) Cancel(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid plan ID format")
		return
	}

	var req presaleapp.CancelPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	plan, err := h.planService.CancelPlan(c.Request.Context(), planID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, plan)
}

// Analytics summarizes the progress of one plan
func (h *PaymentPlanHandler) Analytics(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid plan ID format")
		return
	}

	analytics, err := h.planService.PlanAnalytics(c.Request.Context(), planID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, analytics)
}

// CustomerSummary aggregates a customer's plans
func (h *PaymentPlanHandler) CustomerSummary(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("customer_id"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}

	summary, err := h.planService.CustomerSummary(c.Request.Context(), customerID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, summary)
}

// Statistics aggregates every plan on the books
func (h *PaymentPlanHandler) Statistics(c *gin.Context) {
	stats, err := h.planService.Statistics(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, stats)
}

// RegisterRoutes registers all payment plan routes
func (h *PaymentPlanHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/presale/payments")
	{
		payments.POST("", h.Create)
		payments.GET("/overdue", h.ListOverdue)
		payments.GET("/statistics", h.Statistics)
		payments.POST("/sweep-overdue", h.SweepOverdue)
		payments.GET("/by-delivery/:delivery_id", h.GetByDelivery)
		payments.GET("/customers/:customer_id/summary", h.CustomerSummary)
		payments.GET("/:id", h.GetByID)
		payments.GET("/:id/schedule", h.GetSchedule)
		payments.GET("/:id/next", h.NextPaymentDue)
		payments.GET("/:id/analytics", h.Analytics)
		payments.POST("/:id/payments", h.RecordPayment)
		payments.POST("/:id/check-overdue", h.CheckOverdue)
		payments.POST("/:id/bonus", h.ApplyBonus)
		payments.POST("/:id/cancel", h.Cancel)
	}
}
