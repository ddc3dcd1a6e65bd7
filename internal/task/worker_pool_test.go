package task

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPoolProcessesTasks(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(10, slog.Default())
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 3}, slog.Default())

	var mu sync.Mutex
	processed := 0

	pool.Start()
	for i := 0; i < 10; i++ {
		err := queue.Enqueue(NewFuncTask("count", func(ctx context.Context) error {
			mu.Lock()
			processed++
			mu.Unlock()
			return nil
		}))
		require.NoError(t, err)
	}

	queue.Close()
	pool.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 10, processed)
}

func TestWorkerPoolReportsTaskErrors(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(1, slog.Default())
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 1}, slog.Default())

	taskErr := errors.New("task failed")
	errCh := make(chan error, 1)
	pool.SetErrorHandler(func(task Task, err error) {
		errCh <- err
	})

	pool.Start()
	require.NoError(t, queue.Enqueue(NewFuncTask("failing", func(ctx context.Context) error {
		return taskErr
	})))

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, taskErr)
	case <-time.After(2 * time.Second):
		t.Fatal("error handler was not invoked")
	}

	queue.Close()
	pool.Wait()
}

func TestWorkerPoolRecoversFromPanics(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(2, slog.Default())
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 1}, slog.Default())

	errCh := make(chan error, 1)
	pool.SetErrorHandler(func(task Task, err error) {
		errCh <- err
	})

	pool.Start()
	require.NoError(t, queue.Enqueue(NewFuncTask("panicking", func(ctx context.Context) error {
		panic("boom")
	})))

	select {
	case err := <-errCh:
		assert.Contains(t, err.Error(), "task panicked")
	case <-time.After(2 * time.Second):
		t.Fatal("panic was not reported to the error handler")
	}

	// The worker must survive the panic and keep processing.
	done := make(chan struct{})
	require.NoError(t, queue.Enqueue(NewFuncTask("after-panic", func(ctx context.Context) error {
		close(done)
		return nil
	})))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not process task after a panic")
	}

	queue.Close()
	pool.Wait()
}

func TestWorkerPoolStop(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(1, slog.Default())
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 2}, slog.Default())

	pool.Start()
	pool.Stop()
	// Stop returns only once every worker has exited; reaching this point
	// is the assertion.
}

func TestWorkerPoolDefaultsInvalidWorkerCount(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(1, slog.Default())
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 0}, slog.Default())
	assert.Equal(t, 1, pool.workerCount)
}
