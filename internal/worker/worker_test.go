package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notifier/internal/events"
	"notifier/internal/queue"
)

type fakePublisher struct {
	published []events.Event
	err       error
}

func (p *fakePublisher) Publish(_ context.Context, e events.Event) error {
	p.published = append(p.published, e)
	return p.err
}

type fakeMaintainer struct {
	calls int
	err   error
}

func (m *fakeMaintainer) DeleteAllClearedNotifications(context.Context) (int64, error) {
	m.calls++
	return 3, m.err
}

func newTestWorker() (*Worker, *fakePublisher, *fakeMaintainer) {
	p := &fakePublisher{}
	m := &fakeMaintainer{}
	return &Worker{publisher: p, maintainer: m}, p, m
}

func TestHandleDispatchEvent(t *testing.T) {
	w, p, _ := newTestWorker()

	task, err := queue.NewDispatchEventTask(events.WorkspaceDeleted{WorkspaceID: 8})
	require.NoError(t, err)

	require.NoError(t, w.Mux().ProcessTask(context.Background(), task))
	require.Len(t, p.published, 1)
	assert.Equal(t, events.WorkspaceDeleted{WorkspaceID: 8}, p.published[0])
}

func TestHandleDispatchEventSkipsRetryOnBadPayload(t *testing.T) {
	w, p, _ := newTestWorker()

	for _, payload := range []string{`not json`, `{"kind":"row.deleted","data":{}}`} {
		err := w.HandleDispatchEvent(context.Background(), asynq.NewTask(queue.TaskDispatchEvent, []byte(payload)))
		require.Error(t, err)
		assert.True(t, errors.Is(err, asynq.SkipRetry), payload)
	}
	assert.Empty(t, p.published)
}

func TestHandleDispatchEventReturnsSubscriberErrors(t *testing.T) {
	w, p, _ := newTestWorker()
	p.err = errors.New("database unavailable")

	task, err := queue.NewDispatchEventTask(events.WorkspaceDeleted{WorkspaceID: 8})
	require.NoError(t, err)

	err = w.HandleDispatchEvent(context.Background(), task)
	require.ErrorIs(t, err, p.err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandlePurgeCleared(t *testing.T) {
	w, _, m := newTestWorker()

	require.NoError(t, w.Mux().ProcessTask(context.Background(), queue.NewPurgeClearedTask()))
	assert.Equal(t, 1, m.calls)

	m.err = errors.New("locked")
	require.ErrorIs(t, w.HandlePurgeCleared(context.Background(), queue.NewPurgeClearedTask()), m.err)
}
