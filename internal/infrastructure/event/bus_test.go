package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/diecast/backoffice/internal/domain/shared"
)

type recordingHandler struct {
	types    []string
	received []shared.DomainEvent
	err      error
	panics   bool
}

func (h *recordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("boom")
	}
	h.received = append(h.received, event)
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

func newTestEvent(eventType string) shared.DomainEvent {
	e := shared.NewBaseDomainEvent(eventType, "PaymentPlan", uuid.New())
	return &e
}

func TestInMemoryEventBus_PublishDispatchesToSubscribers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	bus.Start()
	defer bus.Stop()

	overdueHandler := &recordingHandler{types: []string{"PaymentPlanOverdue"}}
	allHandler := &recordingHandler{}
	bus.Subscribe(overdueHandler)
	bus.Subscribe(allHandler)

	err := bus.Publish(context.Background(),
		newTestEvent("PaymentPlanOverdue"),
		newTestEvent("PaymentRecorded"),
	)
	require.NoError(t, err)

	require.Len(t, overdueHandler.received, 1)
	assert.Equal(t, "PaymentPlanOverdue", overdueHandler.received[0].EventType())
	assert.Len(t, allHandler.received, 2)
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandlerDeclaration(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	bus.Start()

	handler := &recordingHandler{types: []string{"PaymentPlanOverdue"}}
	bus.Subscribe(handler, "PaymentPlanCompleted")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("PaymentPlanOverdue")))
	assert.Empty(t, handler.received)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("PaymentPlanCompleted")))
	assert.Len(t, handler.received, 1)
}

func TestInMemoryEventBus_HandlerErrorDoesNotStopDispatch(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	bus.Start()

	failing := &recordingHandler{types: []string{"PaymentRecorded"}, err: errors.New("db unavailable")}
	succeeding := &recordingHandler{types: []string{"PaymentRecorded"}}
	bus.Subscribe(failing)
	bus.Subscribe(succeeding)

	err := bus.Publish(context.Background(), newTestEvent("PaymentRecorded"))
	assert.Error(t, err)
	assert.Len(t, succeeding.received, 1)
}

func TestInMemoryEventBus_RecoversFromHandlerPanic(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	bus.Start()

	panicking := &recordingHandler{types: []string{"PaymentRecorded"}, panics: true}
	succeeding := &recordingHandler{types: []string{"PaymentRecorded"}}
	bus.Subscribe(panicking)
	bus.Subscribe(succeeding)

	err := bus.Publish(context.Background(), newTestEvent("PaymentRecorded"))
	assert.ErrorContains(t, err, "panicked")
	assert.Len(t, succeeding.received, 1)
}

func TestInMemoryEventBus_DropsEventsWhenStopped(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{}
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("PaymentRecorded")))
	assert.Empty(t, handler.received)

	bus.Start()
	bus.Stop()
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("PaymentRecorded")))
	assert.Empty(t, handler.received)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	bus.Start()

	handler := &recordingHandler{types: []string{"PaymentRecorded"}}
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("PaymentRecorded")))
	assert.Empty(t, handler.received)
}
