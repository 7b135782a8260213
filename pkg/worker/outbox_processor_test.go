package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/internal/repository/memory"
	"github.com/jwalitptl/hospital-api/pkg/logger"
	"github.com/jwalitptl/hospital-api/pkg/messaging"
)

type fakeBroker struct {
	mu        sync.Mutex
	published []messaging.Message
	fail      bool
}

func (b *fakeBroker) Publish(_ context.Context, _ string, message interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail {
		return errors.New("broker unavailable")
	}
	b.published = append(b.published, message.(messaging.Message))
	return nil
}

func (b *fakeBroker) Close() error { return nil }

func enqueue(t *testing.T, store *memory.Store, eventType string) *model.OutboxEvent {
	t.Helper()
	var event *model.OutboxEvent
	err := store.WithTx(context.Background(), func(tx repository.Tx) error {
		var err error
		event, err = model.NewOutboxEvent(eventType, map[string]string{"k": "v"})
		if err != nil {
			return err
		}
		return tx.InsertOutboxEvent(context.Background(), event)
	})
	require.NoError(t, err)
	return event
}

func TestProcessEventsPublishesAndMarks(t *testing.T) {
	store := memory.NewStore()
	broker := &fakeBroker{}
	ctx := context.Background()

	enqueue(t, store, model.EventRegistrationCreated)
	enqueue(t, store, model.EventRegistrationCompleted)

	p := NewOutboxProcessor(store.Outbox(), broker, OutboxProcessorConfig{BatchSize: 10}, logger.NewLogger(nil), nil)
	require.NoError(t, p.processEvents(ctx))

	require.Len(t, broker.published, 2)
	assert.Equal(t, model.EventRegistrationCreated, broker.published[0].Type)
	assert.Equal(t, model.EventRegistrationCompleted, broker.published[1].Type)

	// Nothing left pending.
	pending, err := store.Outbox().GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestProcessEventsMarksFailed(t *testing.T) {
	store := memory.NewStore()
	broker := &fakeBroker{fail: true}
	ctx := context.Background()

	evt := enqueue(t, store, model.EventRegistrationCreated)

	p := NewOutboxProcessor(store.Outbox(), broker, OutboxProcessorConfig{BatchSize: 10}, logger.NewLogger(nil), nil)
	require.NoError(t, p.processEvents(ctx))

	// Failed events leave the pending queue instead of being retried hot.
	pending, err := store.Outbox().GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// The row itself survives for inspection.
	require.NoError(t, store.Outbox().UpdateStatus(ctx, evt.ID, model.OutboxStatusPending, nil))
	pending, err = store.Outbox().GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, evt.ID, pending[0].ID)
}

func TestProcessorDefaults(t *testing.T) {
	p := NewOutboxProcessor(memory.NewStore().Outbox(), &fakeBroker{}, OutboxProcessorConfig{}, logger.NewLogger(nil), nil)
	assert.Equal(t, 100, p.config.BatchSize)
	assert.NotZero(t, p.config.PollInterval)
}
