package tasks

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmmdmlingbakery/mdm-ling-audit/app/feed"
	"github.com/dmmdmlingbakery/mdm-ling-audit/app/page"
)

type fakeInspector struct {
	mu       sync.Mutex
	calls    map[string]int
	results  map[string]page.Result
	panicFor map[string]bool
	delay    time.Duration

	active    atomic.Int32
	maxActive atomic.Int32
}

func newFakeInspector() *fakeInspector {
	return &fakeInspector{
		calls:    make(map[string]int),
		results:  make(map[string]page.Result),
		panicFor: make(map[string]bool),
	}
}

func (f *fakeInspector) Run(ctx context.Context, url, name string) page.Result {
	current := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		seen := f.maxActive.Load()
		if current <= seen || f.maxActive.CompareAndSwap(seen, current) {
			break
		}
	}

	f.mu.Lock()
	f.calls[url]++
	result, ok := f.results[url]
	shouldPanic := f.panicFor[url]
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if shouldPanic {
		panic("selector engine exploded")
	}
	if !ok {
		return page.Result{Status: feed.StatusInStock, Detail: "all variants verified"}
	}
	return result
}

func makeTargets(n int) []Target {
	targets := make([]Target, n)
	for i := range targets {
		targets[i] = Target{
			URL:  fmt.Sprintf("https://x/product-%d", i),
			Name: fmt.Sprintf("Product %d", i),
		}
	}
	return targets
}

func TestDispatcher_OneResultPerTarget(t *testing.T) {
	inspector := newFakeInspector()
	inspector.results["https://x/product-3"] = page.Result{Status: feed.StatusVariantSoldOut, Detail: "missing: fun-size"}

	targets := makeTargets(20)
	results := NewDispatcher(inspector, 8).Run(context.Background(), targets)

	require.Len(t, results, 20)
	for _, target := range targets {
		assert.Equal(t, 1, inspector.calls[target.URL], "target %s should be inspected once", target.URL)
		assert.Contains(t, results, target.URL)
	}
	assert.Equal(t, feed.StatusVariantSoldOut, results["https://x/product-3"].Status)
	assert.Equal(t, "missing: fun-size", results["https://x/product-3"].Detail)
}

func TestDispatcher_PanicBecomesCheckFailed(t *testing.T) {
	inspector := newFakeInspector()
	inspector.panicFor["https://x/product-1"] = true

	results := NewDispatcher(inspector, 2).Run(context.Background(), makeTargets(4))

	require.Len(t, results, 4)
	assert.Equal(t, feed.StatusCheckFailed, results["https://x/product-1"].Status)
	assert.Contains(t, results["https://x/product-1"].Detail, "selector engine exploded")
	assert.Equal(t, feed.StatusInStock, results["https://x/product-0"].Status)
	assert.Equal(t, feed.StatusInStock, results["https://x/product-2"].Status)
}

func TestDispatcher_BoundedConcurrency(t *testing.T) {
	inspector := newFakeInspector()
	inspector.delay = 20 * time.Millisecond

	results := NewDispatcher(inspector, 3).Run(context.Background(), makeTargets(12))

	assert.Len(t, results, 12)
	assert.LessOrEqual(t, inspector.maxActive.Load(), int32(3))
	assert.Greater(t, inspector.maxActive.Load(), int32(1))
}

func TestDispatcher_NoTargets(t *testing.T) {
	results := NewDispatcher(newFakeInspector(), 8).Run(context.Background(), nil)

	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestDispatcher_DefaultWorkerCount(t *testing.T) {
	dispatcher := NewDispatcher(newFakeInspector(), 0)

	assert.Equal(t, DefaultWorkerCount, dispatcher.workerCount)
}

func TestInspectPageTask_ResultBeforeExecution(t *testing.T) {
	task := NewInspectPageTask(Target{URL: "https://x/a", Name: "A"}, newFakeInspector())

	assert.Equal(t, TaskTypeInspectPage, task.GetType())
	assert.Equal(t, "A", task.GetTargetName())
	assert.Equal(t, time.Duration(0), task.GetDuration())
	assert.Equal(t, feed.StatusCheckFailed, task.Result().Status)
}

type erroringTask struct {
	Task
	failedWith string
}

func (t *erroringTask) Execute(ctx context.Context) error {
	return fmt.Errorf("inspector unavailable")
}

func (t *erroringTask) Fail(reason string) {
	t.failedWith = reason
}

func TestDispatcher_ExecuteTaskErrorFailsTask(t *testing.T) {
	task := &erroringTask{Task: NewTask(TaskTypeInspectPage, "Broken")}

	NewDispatcher(newFakeInspector(), 1).executeTask(context.Background(), 0, task)

	assert.Equal(t, "inspector unavailable", task.failedWith)
	assert.NotNil(t, task.StartedAt)
}
