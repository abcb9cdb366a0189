package cmd

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tberrors "github.com/felixgeelhaar/taskboard/internal/errors"
	"github.com/felixgeelhaar/taskboard/pkg/taskboard/types"
)

var sampleTasks = []types.Task{
	{ID: 1, Title: "Write report", Status: types.TaskStatusNew, Priority: "high", WorkerIDs: []int64{3}},
	{ID: 2, Title: "Review budget", Status: types.TaskStatusInProgress, Priority: "low", WorkerIDs: []int64{}},
	{ID: 3, Title: "Ship release", Status: types.TaskStatusCompleted, Priority: "medium", WorkerIDs: []int64{3, 4}},
}

func TestProtectedCommandWithoutToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.run("tasks", "list")
	require.Error(t, err)
	assert.True(t, tberrors.HasCode(err, tberrors.ErrCodeNavRedirected))
	assert.Contains(t, err.Error(), "redirected to /login")
	assert.Contains(t, err.Error(), "authentication required")
	assert.Zero(t, f.gw.total())
}

func TestProtectedCommandWithStaleToken(t *testing.T) {
	f := newFixture(t)
	f.loginAs("tok-expired")

	_, err := f.run("tasks", "list")
	require.Error(t, err)
	assert.True(t, tberrors.HasCode(err, tberrors.ErrCodeNavRedirected))
	assert.Contains(t, err.Error(), "session could not be revalidated")

	assert.Len(t, f.gw.callsTo("GET /api/auth/me"), 1)
	assert.Empty(t, f.gw.callsTo("GET /api/tasks/list"))
	assert.Empty(t, f.storedToken())
}

func TestTasksList(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		f := newFixture(t)
		f.loginAs("tok-alice")
		f.gw.on("GET /api/tasks/list", http.StatusOK, types.TaskList{Tasks: sampleTasks})

		out, err := f.run("tasks", "list", "-o", "json")
		require.NoError(t, err)

		view := decodeJSON[taskListView](t, out)
		require.Len(t, view.Tasks, 3)
		assert.Equal(t, "Write report", view.Tasks[0].Title)

		calls := f.gw.callsTo("GET /api/tasks/list")
		require.Len(t, calls, 1)
		assert.Equal(t, "limit=100&skip=0", calls[0].query)
	})

	t.Run("paging and status filter", func(t *testing.T) {
		f := newFixture(t)
		f.loginAs("tok-walt")
		f.gw.on("GET /api/tasks/list", http.StatusOK, types.TaskList{Tasks: sampleTasks})

		out, err := f.run("tasks", "list", "--skip", "10", "--limit", "5", "--status", "in_progress", "-o", "json")
		require.NoError(t, err)

		view := decodeJSON[taskListView](t, out)
		require.Len(t, view.Tasks, 1)
		assert.EqualValues(t, 2, view.Tasks[0].ID)
		assert.Equal(t, "limit=5&skip=10", f.gw.callsTo("GET /api/tasks/list")[0].query)
	})

	t.Run("text table", func(t *testing.T) {
		f := newFixture(t)
		f.loginAs("tok-alice")
		f.gw.on("GET /api/tasks/list", http.StatusOK, types.TaskList{Tasks: sampleTasks})

		out, err := f.run("tasks", "list")
		require.NoError(t, err)
		assert.Contains(t, out, "TITLE")
		assert.Contains(t, out, "Ship release")
		assert.Contains(t, out, "3, 4")
	})

	t.Run("invalid status", func(t *testing.T) {
		f := newFixture(t)
		f.loginAs("tok-alice")

		_, err := f.run("tasks", "list", "--status", "done")
		require.Error(t, err)
		assert.True(t, tberrors.HasCode(err, tberrors.ErrCodeStoreInvalidInput))
		assert.Empty(t, f.gw.callsTo("GET /api/tasks/list"))
	})

	t.Run("backend failure", func(t *testing.T) {
		f := newFixture(t)
		f.loginAs("tok-alice")
		f.gw.on("GET /api/tasks/list", http.StatusInternalServerError, map[string]string{"detail": "database down"})

		_, err := f.run("tasks", "list")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database down")
	})
}

func TestTasksGetRejectsBadID(t *testing.T) {
	f := newFixture(t)
	f.loginAs("tok-alice")

	_, err := f.run("tasks", "get", "abc")
	require.Error(t, err)
	assert.True(t, tberrors.HasCode(err, tberrors.ErrCodeStoreInvalidInput))
	assert.Contains(t, err.Error(), `invalid task id "abc"`)
	assert.Zero(t, f.gw.total())
}

func TestTasksGet(t *testing.T) {
	f := newFixture(t)
	f.loginAs("tok-walt")
	f.gw.on("GET /api/tasks/1", http.StatusOK, sampleTasks[0])

	out, err := f.run("tasks", "get", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "#1 Write report")
	assert.Contains(t, out, "Priority:")
}

func TestTasksCreate(t *testing.T) {
	f := newFixture(t)
	f.loginAs("tok-alice")
	f.gw.on("POST /api/tasks/", http.StatusCreated, types.Task{
		ID: 9, Title: "Plan sprint", Status: types.TaskStatusNew, Priority: "high", WorkerIDs: []int64{3, 4},
	})

	out, err := f.run("tasks", "create", "--title", "Plan sprint", "--priority", "high",
		"--worker", "3", "--worker", "4", "-o", "json")
	require.NoError(t, err)

	view := decodeJSON[taskView](t, out)
	assert.EqualValues(t, 9, view.Task.ID)

	calls := f.gw.callsTo("POST /api/tasks/")
	require.Len(t, calls, 1)
	var body map[string]any
	require.NoError(t, json.Unmarshal(calls[0].body, &body))
	assert.Equal(t, "Plan sprint", body["title"])
	assert.Equal(t, "high", body["priority"])
	assert.Equal(t, []any{float64(3), float64(4)}, body["worker_ids"])
}

func TestTasksCreateRequiresTitle(t *testing.T) {
	f := newFixture(t)
	f.loginAs("tok-alice")

	_, err := f.run("tasks", "create")
	require.Error(t, err)
	assert.True(t, tberrors.HasCode(err, tberrors.ErrCodeStoreInvalidInput))
	assert.Empty(t, f.gw.callsTo("POST /api/tasks/"))
}

func TestTasksUpdateSendsOnlyChangedFields(t *testing.T) {
	f := newFixture(t)
	f.loginAs("tok-alice")
	f.gw.on("PUT /api/tasks/2", http.StatusOK, sampleTasks[1])

	_, err := f.run("tasks", "update", "2", "--status", "in_progress")
	require.NoError(t, err)

	calls := f.gw.callsTo("PUT /api/tasks/2")
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"status":"in_progress"}`, string(calls[0].body))
}

func TestTasksDelete(t *testing.T) {
	t.Run("requires confirmation without a terminal", func(t *testing.T) {
		f := newFixture(t)
		f.loginAs("tok-alice")

		_, err := f.run("tasks", "delete", "4")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--yes")
		assert.Empty(t, f.gw.callsTo("DELETE /api/tasks/4"))
	})

	t.Run("with --yes", func(t *testing.T) {
		f := newFixture(t)
		f.loginAs("tok-alice")
		f.gw.on("DELETE /api/tasks/4", http.StatusOK, map[string]string{"message": "Task deleted"})

		out, err := f.run("tasks", "delete", "4", "--yes")
		require.NoError(t, err)
		assert.Contains(t, out, "Deleted task #4.")
		assert.Len(t, f.gw.callsTo("DELETE /api/tasks/4"), 1)
	})
}

func TestTasksWorkerAssignment(t *testing.T) {
	f := newFixture(t)
	f.loginAs("tok-alice")
	f.gw.on("POST /api/tasks/2/add-worker/3", http.StatusOK, types.Task{ID: 2, Title: "Review budget", WorkerIDs: []int64{3}})
	f.gw.on("POST /api/tasks/2/remove-worker/3", http.StatusOK, types.Task{ID: 2, Title: "Review budget", WorkerIDs: []int64{}})

	out, err := f.run("tasks", "assign", "2", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Workers:")

	_, err = f.run("tasks", "unassign", "2", "3")
	require.NoError(t, err)

	assert.Len(t, f.gw.callsTo("POST /api/tasks/2/add-worker/3"), 1)
	assert.Len(t, f.gw.callsTo("POST /api/tasks/2/remove-worker/3"), 1)
}

func TestTasksComplete(t *testing.T) {
	f := newFixture(t)
	f.loginAs("tok-walt")
	f.gw.on("POST /api/tasks/1/complete", http.StatusOK, types.WorkerCompletion{ID: 5, TaskID: 1, WorkerID: 3})

	out, err := f.run("tasks", "complete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Worker 3 completed task #1")

	calls := f.gw.callsTo("POST /api/tasks/1/complete")
	require.Len(t, calls, 1)
	assert.Equal(t, "user_id=3", calls[0].query)
}

func TestTasksReview(t *testing.T) {
	f := newFixture(t)
	f.loginAs("tok-alice")
	f.gw.on("POST /api/tasks/3/approve", http.StatusOK, sampleTasks[2])
	f.gw.on("POST /api/tasks/3/rework", http.StatusOK, types.Task{ID: 3, Title: "Ship release", Status: types.TaskStatusRework})

	_, err := f.run("tasks", "approve", "3")
	require.NoError(t, err)
	out, err := f.run("tasks", "rework", "3", "-o", "json")
	require.NoError(t, err)

	view := decodeJSON[taskView](t, out)
	assert.Equal(t, types.TaskStatusRework, view.Task.Status)
	assert.Equal(t, "user_id=1", f.gw.callsTo("POST /api/tasks/3/approve")[0].query)
	assert.Equal(t, "user_id=1", f.gw.callsTo("POST /api/tasks/3/rework")[0].query)
}

func TestTasksWorkers(t *testing.T) {
	f := newFixture(t)
	f.loginAs("tok-walt")
	f.gw.on("GET /api/tasks/3/workers", http.StatusOK, []int64{3, 4})

	out, err := f.run("tasks", "workers", "3", "-o", "json")
	require.NoError(t, err)

	view := decodeJSON[workersView](t, out)
	assert.Equal(t, []int64{3, 4}, view.WorkerIDs)
}
