package presale

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/diecast/backoffice/internal/domain/presale"
	"github.com/diecast/backoffice/internal/domain/shared"
)

// PlanOverdueHandler reacts to payment plans entering the overdue state
// and notifies the back office so collectors can follow up.
type PlanOverdueHandler struct {
	logger   *zap.Logger
	notifier OverdueNotifier
}

// OverdueNotifier is the interface for alerting about overdue plans.
// Implementations can support different channels (in-app, webhook, email).
type OverdueNotifier interface {
	// NotifyPlanOverdue sends a notification about an overdue payment plan
	NotifyPlanOverdue(ctx context.Context, notification OverdueNotification) error
}

// OverdueNotification describes an overdue payment plan
type OverdueNotification struct {
	PlanID        string `json:"plan_id"`
	DeliveryID    string `json:"delivery_id"`
	OverdueAmount string `json:"overdue_amount"`
	DaysOverdue   int    `json:"days_overdue"`
}

// NewPlanOverdueHandler creates a new handler for plan overdue events
func NewPlanOverdueHandler(logger *zap.Logger) *PlanOverdueHandler {
	return &PlanOverdueHandler{
		logger: logger,
	}
}

// WithNotifier sets the notifier for sending alerts
func (h *PlanOverdueHandler) WithNotifier(notifier OverdueNotifier) *PlanOverdueHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *PlanOverdueHandler) EventTypes() []string {
	return []string{presale.EventTypePlanOverdue}
}

// Handle processes a PlanOverdueEvent
func (h *PlanOverdueHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	overdueEvent, ok := event.(*presale.PlanOverdueEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", presale.EventTypePlanOverdue),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			presale.EventTypePlanOverdue, event.EventType())
	}

	h.logger.Warn("payment plan overdue",
		zap.String("plan_id", overdueEvent.PlanID.String()),
		zap.String("delivery_id", overdueEvent.DeliveryID.String()),
		zap.String("overdue_amount", overdueEvent.OverdueAmount.String()),
		zap.Int("days_overdue", overdueEvent.DaysOverdue),
	)

	notification := OverdueNotification{
		PlanID:        overdueEvent.PlanID.String(),
		DeliveryID:    overdueEvent.DeliveryID.String(),
		OverdueAmount: overdueEvent.OverdueAmount.String(),
		DaysOverdue:   overdueEvent.DaysOverdue,
	}

	if h.notifier != nil {
		if err := h.notifier.NotifyPlanOverdue(ctx, notification); err != nil {
			h.logger.Error("failed to send overdue notification",
				zap.String("plan_id", notification.PlanID),
				zap.Error(err),
			)
			// Notification failure must not fail the event handling
		} else {
			h.logger.Info("overdue notification sent",
				zap.String("plan_id", notification.PlanID),
				zap.Int("days_overdue", notification.DaysOverdue),
			)
		}
	}

	return nil
}

var _ shared.EventHandler = (*PlanOverdueHandler)(nil)

// LoggingOverdueNotifier logs overdue alerts. Useful for development
// and for deployments without an external alerting channel.
type LoggingOverdueNotifier struct {
	logger *zap.Logger
}

// NewLoggingOverdueNotifier creates a new logging notifier
func NewLoggingOverdueNotifier(logger *zap.Logger) *LoggingOverdueNotifier {
	return &LoggingOverdueNotifier{
		logger: logger,
	}
}

// NotifyPlanOverdue logs the overdue plan notification
func (n *LoggingOverdueNotifier) NotifyPlanOverdue(ctx context.Context, notification OverdueNotification) error {
	n.logger.Warn("PAYMENT PLAN OVERDUE",
		zap.String("plan_id", notification.PlanID),
		zap.String("delivery_id", notification.DeliveryID),
		zap.String("overdue_amount", notification.OverdueAmount),
		zap.Int("days_overdue", notification.DaysOverdue),
	)
	return nil
}

var _ OverdueNotifier = (*LoggingOverdueNotifier)(nil)
