package presale

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/diecast/backoffice/internal/domain/presale"
	"github.com/diecast/backoffice/internal/domain/shared"
)

type mockOverdueNotifier struct {
	notifications []OverdueNotification
	returnError   error
}

func (m *mockOverdueNotifier) NotifyPlanOverdue(_ context.Context, notification OverdueNotification) error {
	if m.returnError != nil {
		return m.returnError
	}
	m.notifications = append(m.notifications, notification)
	return nil
}

func overdueEvent(planID, deliveryID uuid.UUID) *presale.PlanOverdueEvent {
	return &presale.PlanOverdueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			presale.EventTypePlanOverdue,
			presale.AggregateTypePaymentPlan,
			planID,
		),
		PlanID:        planID,
		DeliveryID:    deliveryID,
		OverdueAmount: decimal.NewFromInt(150),
		DaysOverdue:   12,
	}
}

func TestPlanOverdueHandler_EventTypes(t *testing.T) {
	handler := NewPlanOverdueHandler(zap.NewNop())

	eventTypes := handler.EventTypes()
	require.Len(t, eventTypes, 1)
	assert.Equal(t, presale.EventTypePlanOverdue, eventTypes[0])
}

func TestPlanOverdueHandler_Handle(t *testing.T) {
	logger := zap.NewNop()

	t.Run("notifies about an overdue plan", func(t *testing.T) {
		notifier := &mockOverdueNotifier{}
		handler := NewPlanOverdueHandler(logger).WithNotifier(notifier)

		planID := uuid.New()
		deliveryID := uuid.New()

		err := handler.Handle(context.Background(), overdueEvent(planID, deliveryID))
		require.NoError(t, err)

		require.Len(t, notifier.notifications, 1)
		notification := notifier.notifications[0]
		assert.Equal(t, planID.String(), notification.PlanID)
		assert.Equal(t, deliveryID.String(), notification.DeliveryID)
		assert.Equal(t, "150", notification.OverdueAmount)
		assert.Equal(t, 12, notification.DaysOverdue)
	})

	t.Run("handles without notifier configured", func(t *testing.T) {
		handler := NewPlanOverdueHandler(logger)

		err := handler.Handle(context.Background(), overdueEvent(uuid.New(), uuid.New()))
		require.NoError(t, err)
	})

	t.Run("continues on notification error", func(t *testing.T) {
		notifier := &mockOverdueNotifier{returnError: assert.AnError}
		handler := NewPlanOverdueHandler(logger).WithNotifier(notifier)

		err := handler.Handle(context.Background(), overdueEvent(uuid.New(), uuid.New()))
		require.NoError(t, err)
	})

	t.Run("returns error for wrong event type", func(t *testing.T) {
		handler := NewPlanOverdueHandler(logger)

		base := shared.NewBaseDomainEvent(
			presale.EventTypePaymentRecorded,
			presale.AggregateTypePaymentPlan,
			uuid.New(),
		)

		err := handler.Handle(context.Background(), &base)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected event type")
	})
}

func TestLoggingOverdueNotifier(t *testing.T) {
	notifier := NewLoggingOverdueNotifier(zap.NewNop())

	err := notifier.NotifyPlanOverdue(context.Background(), OverdueNotification{
		PlanID:        uuid.New().String(),
		DeliveryID:    uuid.New().String(),
		OverdueAmount: "150",
		DaysOverdue:   12,
	})
	require.NoError(t, err)
}
