package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmmdmlingbakery/mdm-ling-audit/app/page"
)

var _ DispatcherInterface = (*Dispatcher)(nil)

const DefaultWorkerCount = 8

// Dispatcher runs page checks on a fixed pool of workers fed from a task
// queue. Each task owns its result; results are gathered only after every
// worker has finished.
type Dispatcher struct {
	inspector   PageInspector
	workerCount int
}

func NewDispatcher(inspector PageInspector, workerCount int) *Dispatcher {
	if workerCount <= 0 {
		workerCount = DefaultWorkerCount
	}

	return &Dispatcher{
		inspector:   inspector,
		workerCount: workerCount,
	}
}

func (d *Dispatcher) Run(ctx context.Context, targets []Target) map[string]page.Result {
	results := make(map[string]page.Result, len(targets))
	if len(targets) == 0 {
		return results
	}

	start := time.Now()

	taskQueue := make(chan TaskInterface, len(targets))
	submitted := make([]*InspectPageTask, 0, len(targets))
	for _, target := range targets {
		task := NewInspectPageTask(target, d.inspector)
		submitted = append(submitted, task)
		taskQueue <- task
	}
	close(taskQueue)

	workers := min(d.workerCount, len(targets))

	var g errgroup.Group
	for i := 0; i < workers; i++ {
		workerID := i
		g.Go(func() error {
			d.worker(ctx, workerID, taskQueue)
			return nil
		})
	}
	// workers never return an error; Wait is only the barrier
	_ = g.Wait()

	for _, task := range submitted {
		results[task.Target.URL] = task.Result()
	}

	slog.Debug("Page checks dispatched",
		"targets", len(targets),
		"workers", workers,
		"duration", time.Since(start))

	return results
}

func (d *Dispatcher) worker(ctx context.Context, id int, taskQueue <-chan TaskInterface) {
	for task := range taskQueue {
		d.executeTask(ctx, id, task)
	}
}

func (d *Dispatcher) executeTask(ctx context.Context, workerID int, task TaskInterface) {
	task.Start()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("Worker task panicked", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "name", task.GetTargetName(), "panic", r)
			task.Fail(fmt.Sprint(r))
		}
	}()

	if err := task.Execute(ctx); err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "error", err)
		task.Fail(err.Error())
		return
	}

	slog.Debug("Task completed",
		"type", string(task.GetType()),
		"id", task.GetID(),
		"name", task.GetTargetName(),
		"duration", task.GetDuration())
}
