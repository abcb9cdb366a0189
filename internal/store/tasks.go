package store

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/felixgeelhaar/taskboard/internal/api"
	"github.com/felixgeelhaar/taskboard/pkg/taskboard/types"
)

// Tasks is the client-side task list.
type Tasks struct {
	base

	mu    sync.RWMutex
	tasks []types.Task
}

// NewTasks creates a task store. users supplies the acting user for
// Complete, Approve and Rework.
func NewTasks(client *api.Client, users UserSource, opts ...Option) *Tasks {
	t := &Tasks{tasks: []types.Task{}}
	t.init("tasks", client, users, opts)
	return t
}

// List returns a copy of the held tasks
func (t *Tasks) List() []types.Task {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]types.Task(nil), t.tasks...)
}

// Fetch loads one page of tasks and replaces the held list with it. On
// failure the held list becomes empty and the error is returned.
func (t *Tasks) Fetch(ctx context.Context, skip, limit int) ([]types.Task, error) {
	done := t.beginLoading()
	defer done()

	tasks, err := t.fetch(ctx, skip, limit)
	if err != nil {
		tasks = []types.Task{}
	}

	t.mu.Lock()
	t.tasks = tasks
	t.mu.Unlock()

	return append([]types.Task(nil), tasks...), t.record(ctx, "fetch", err)
}

func (t *Tasks) fetch(ctx context.Context, skip, limit int) ([]types.Task, error) {
	resp, err := t.client.Get(ctx, "/tasks/list", pageQuery(skip, limit))
	if err != nil {
		return nil, err
	}
	var list types.TaskList
	if len(resp.Data) > 0 && string(resp.Data) != "null" {
		if err := resp.Decode(&list); err != nil {
			return nil, err
		}
	}
	if list.Tasks == nil {
		list.Tasks = []types.Task{}
	}
	return list.Tasks, nil
}

// Get fetches a single task. The held list is not changed.
func (t *Tasks) Get(ctx context.Context, id int64) (*types.Task, error) {
	task, err := t.call(ctx, http.MethodGet, taskPath(id), nil, nil)
	return task, t.record(ctx, "get", err)
}

// Create creates a task and appends it to the held list
func (t *Tasks) Create(ctx context.Context, in types.TaskCreate) (*types.Task, error) {
	if err := in.Validate(); err != nil {
		return nil, t.record(ctx, "create", invalidInput(err))
	}
	if in.WorkerIDs == nil {
		in.WorkerIDs = []int64{}
	}

	task, err := t.call(ctx, http.MethodPost, "/tasks/", nil, in)
	if err == nil {
		t.mu.Lock()
		t.tasks = append(t.tasks, *task)
		t.mu.Unlock()
	}
	return task, t.record(ctx, "create", err)
}

// Update changes a task and replaces the held entry with the same id
func (t *Tasks) Update(ctx context.Context, id int64, in types.TaskUpdate) (*types.Task, error) {
	if err := in.Validate(); err != nil {
		return nil, t.record(ctx, "update", invalidInput(err))
	}
	if in.IsEmpty() {
		return nil, t.record(ctx, "update", invalidInput(fmt.Errorf("nothing to update")))
	}

	task, err := t.call(ctx, http.MethodPut, taskPath(id), nil, in)
	if err == nil {
		t.replace(*task)
	}
	return task, t.record(ctx, "update", err)
}

// Delete deletes a task and removes exactly that id from the held list,
// keeping the order of the rest.
func (t *Tasks) Delete(ctx context.Context, id int64) error {
	_, err := t.client.Delete(ctx, taskPath(id))
	if err == nil {
		t.remove(id)
	}
	return t.record(ctx, "delete", err)
}

// Clear empties the held list
func (t *Tasks) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tasks = []types.Task{}
}

// Workers returns the ids of the workers assigned to a task. On failure the
// result is empty and the error is returned.
func (t *Tasks) Workers(ctx context.Context, id int64) ([]int64, error) {
	resp, err := t.client.Get(ctx, taskPath(id)+"/workers", nil)
	if err != nil {
		return []int64{}, t.record(ctx, "workers", err)
	}
	ids, err := decodeList[int64](resp)
	return ids, t.record(ctx, "workers", err)
}

// AddWorker assigns a worker to a task
func (t *Tasks) AddWorker(ctx context.Context, id, workerID int64) (*types.Task, error) {
	task, err := t.call(ctx, http.MethodPost, fmt.Sprintf("%s/add-worker/%d", taskPath(id), workerID), nil, nil)
	if err == nil {
		t.replace(*task)
	}
	return task, t.record(ctx, "add_worker", err)
}

// RemoveWorker unassigns a worker from a task
func (t *Tasks) RemoveWorker(ctx context.Context, id, workerID int64) (*types.Task, error) {
	task, err := t.call(ctx, http.MethodPost, fmt.Sprintf("%s/remove-worker/%d", taskPath(id), workerID), nil, nil)
	if err == nil {
		t.replace(*task)
	}
	return task, t.record(ctx, "remove_worker", err)
}

// Complete marks the task done on behalf of the session user
func (t *Tasks) Complete(ctx context.Context, id int64) (*types.WorkerCompletion, error) {
	user, err := t.sessionUser("complete task")
	if err != nil {
		return nil, t.record(ctx, "complete", err)
	}

	resp, err := t.client.Post(ctx, taskPath(id)+"/complete", userQuery(user), nil)
	if err != nil {
		return nil, t.record(ctx, "complete", err)
	}
	var completion types.WorkerCompletion
	if err := resp.Decode(&completion); err != nil {
		return nil, t.record(ctx, "complete", err)
	}
	return &completion, t.record(ctx, "complete", nil)
}

// Approve accepts a completed task on behalf of the session user
func (t *Tasks) Approve(ctx context.Context, id int64) (*types.Task, error) {
	return t.review(ctx, "approve", id)
}

// Rework sends a task back to its workers on behalf of the session user
func (t *Tasks) Rework(ctx context.Context, id int64) (*types.Task, error) {
	return t.review(ctx, "rework", id)
}

func (t *Tasks) review(ctx context.Context, op string, id int64) (*types.Task, error) {
	user, err := t.sessionUser(op + " task")
	if err != nil {
		return nil, t.record(ctx, op, err)
	}

	task, err := t.call(ctx, http.MethodPost, taskPath(id)+"/"+op, userQuery(user), nil)
	if err == nil {
		t.replace(*task)
	}
	return task, t.record(ctx, op, err)
}

func (t *Tasks) call(ctx context.Context, method, path string, query url.Values, body any) (*types.Task, error) {
	resp, err := t.client.Do(ctx, method, path, query, body)
	if err != nil {
		return nil, err
	}
	var task types.Task
	if err := resp.Decode(&task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (t *Tasks) replace(task types.Task) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.tasks {
		if t.tasks[i].ID == task.ID {
			t.tasks[i] = task
			return
		}
	}
}

func (t *Tasks) remove(id int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	kept := make([]types.Task, 0, len(t.tasks))
	for _, task := range t.tasks {
		if task.ID != id {
			kept = append(kept, task)
		}
	}
	t.tasks = kept
}

func taskPath(id int64) string {
	return fmt.Sprintf("/tasks/%d", id)
}
