package tasks

import (
	"context"
	"fmt"

	"github.com/dmmdmlingbakery/mdm-ling-audit/app/feed"
	"github.com/dmmdmlingbakery/mdm-ling-audit/app/page"
)

// Target is a product queued for a page check, identified by its URL
type Target struct {
	URL  string
	Name string
}

var _ TaskInterface = (*InspectPageTask)(nil)

type InspectPageTask struct {
	Task
	Target    Target
	inspector PageInspector
	result    page.Result
	done      bool
}

func NewInspectPageTask(target Target, inspector PageInspector) *InspectPageTask {
	return &InspectPageTask{
		Task:      NewTask(TaskTypeInspectPage, target.Name),
		Target:    target,
		inspector: inspector,
	}
}

func (t *InspectPageTask) Execute(ctx context.Context) error {
	t.result = t.inspector.Run(ctx, t.Target.URL, t.Target.Name)
	t.done = true
	return nil
}

// Fail records a CHECK_FAILED result for a task that could not complete
func (t *InspectPageTask) Fail(reason string) {
	t.result = page.Result{
		Status: feed.StatusCheckFailed,
		Detail: fmt.Sprintf("check error: %s", reason),
	}
	t.done = true
}

// Result is only meaningful after the dispatcher's barrier. A task that never
// ran reports CHECK_FAILED.
func (t *InspectPageTask) Result() page.Result {
	if !t.done {
		return page.Result{Status: feed.StatusCheckFailed, Detail: "check error: not executed"}
	}
	return t.result
}
