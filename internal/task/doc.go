// Package task provides a bounded in-process queue and worker pool for
// background work. It is a standalone primitive: producers enqueue Task
// values, the pool drains them with a fixed number of goroutines, and
// shutdown waits for in-flight tasks to finish.
package task
