package cmd

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tberrors "github.com/felixgeelhaar/taskboard/internal/errors"
	"github.com/felixgeelhaar/taskboard/pkg/taskboard/types"
)

func TestCommentsList(t *testing.T) {
	f := newFixture(t)
	f.loginAs("tok-walt")
	f.gw.on("GET /api/tasks/1/comments", http.StatusOK, []types.Comment{
		{ID: 1, TaskID: 1, UserID: 1, FullName: "Alice Admin", Text: "Please include Q3 numbers"},
	})

	out, err := f.run("comments", "list", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Alice Admin")
	assert.Contains(t, out, "Please include Q3 numbers")
}

func TestCommentsAdd(t *testing.T) {
	t.Run("signed with the session user", func(t *testing.T) {
		f := newFixture(t)
		f.loginAs("tok-walt")
		f.gw.on("POST /api/tasks/1/comments", http.StatusCreated, types.Comment{
			ID: 2, TaskID: 1, UserID: 3, FullName: "Walt Worker", Text: "On it",
		})

		out, err := f.run("comments", "add", "1", "On", "it", "-o", "json")
		require.NoError(t, err)

		view := decodeJSON[commentListView](t, out)
		require.Len(t, view.Comments, 1)
		assert.EqualValues(t, 2, view.Comments[0].ID)

		calls := f.gw.callsTo("POST /api/tasks/1/comments")
		require.Len(t, calls, 1)
		assert.JSONEq(t, `{"text":"On it","full_name":"Walt Worker"}`, string(calls[0].body))
	})

	t.Run("empty text", func(t *testing.T) {
		f := newFixture(t)
		f.loginAs("tok-walt")

		_, err := f.run("comments", "add", "1")
		require.Error(t, err)
		assert.True(t, tberrors.HasCode(err, tberrors.ErrCodeStoreInvalidInput))
		assert.Empty(t, f.gw.callsTo("POST /api/tasks/1/comments"))
	})
}

func TestHistory(t *testing.T) {
	f := newFixture(t)
	f.loginAs("tok-alice")
	f.gw.on("GET /api/tasks/1/history", http.StatusOK, []types.HistoryEntry{
		{ID: 1, TaskID: 1, EventType: "created", UserID: 1},
		{ID: 2, TaskID: 1, EventType: "worker_added", UserID: 1, Details: "worker 3"},
	})

	out, err := f.run("history", "1", "-o", "json")
	require.NoError(t, err)

	view := decodeJSON[historyView](t, out)
	assert.EqualValues(t, 1, view.TaskID)
	require.Len(t, view.History, 2)
	assert.Equal(t, "worker 3", view.History[1].Details)
}
