package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notifier/internal/events"
)

func TestNewDispatchEventTask(t *testing.T) {
	task, err := NewDispatchEventTask(events.WorkspaceDeleted{WorkspaceID: 3})
	require.NoError(t, err)
	assert.Equal(t, TaskDispatchEvent, task.Type())

	e, err := events.Decode(task.Payload())
	require.NoError(t, err)
	assert.Equal(t, events.WorkspaceDeleted{WorkspaceID: 3}, e)
}

func TestNewPurgeClearedTask(t *testing.T) {
	task := NewPurgeClearedTask()
	assert.Equal(t, TaskPurgeCleared, task.Type())
	assert.Empty(t, task.Payload())
}
