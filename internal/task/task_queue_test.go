package task

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopTask(taskType string) *FuncTask {
	return NewFuncTask(taskType, func(ctx context.Context) error { return nil })
}

func TestFuncTask(t *testing.T) {
	t.Parallel()

	executed := false
	task := NewFuncTask("maintenance", func(ctx context.Context) error {
		executed = true
		return nil
	})

	assert.NotEqual(t, uuid.Nil, task.ID())
	assert.Equal(t, "maintenance", task.Type())
	require.NoError(t, task.Execute(context.Background()))
	assert.True(t, executed)
}

func TestTaskQueueEnqueueAndConsume(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(2, slog.Default())

	task := noopTask("maintenance")
	require.NoError(t, queue.Enqueue(task))

	received := <-queue.GetChannel()
	assert.Equal(t, task.ID(), received.ID())
}

func TestTaskQueueFull(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(1, slog.Default())

	require.NoError(t, queue.Enqueue(noopTask("maintenance")))

	err := queue.Enqueue(noopTask("maintenance"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestTaskQueueClosed(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(2, slog.Default())
	queue.Close()

	err := queue.Enqueue(noopTask("maintenance"))
	assert.ErrorIs(t, err, ErrQueueClosed)

	// Closing twice must not panic.
	queue.Close()
}

func TestTaskQueueDrainsAfterClose(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(2, slog.Default())
	task := noopTask("maintenance")
	require.NoError(t, queue.Enqueue(task))
	queue.Close()

	received, ok := <-queue.GetChannel()
	require.True(t, ok)
	assert.Equal(t, task.ID(), received.ID())

	_, ok = <-queue.GetChannel()
	assert.False(t, ok)
}
