package store

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tberrors "github.com/felixgeelhaar/taskboard/internal/errors"
	"github.com/felixgeelhaar/taskboard/pkg/taskboard/types"
)

func TestCommentsFetch(t *testing.T) {
	b, client := newBackend(t)
	b.on("GET /api/tasks/1/comments", http.StatusOK, []types.Comment{{ID: 1, TaskID: 1, Text: "first"}})
	b.on("GET /api/tasks/1/history", http.StatusOK, []types.HistoryEntry{{ID: 1, TaskID: 1, EventType: types.EventCreated}})

	comments := NewComments(client, nil)

	got, err := comments.Fetch(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "first", comments.Comments()[0].Text)

	history, err := comments.FetchHistory(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, types.EventCreated, comments.History()[0].EventType)

	comments.Clear()
	assert.Empty(t, comments.Comments())
	assert.Empty(t, comments.History())
}

func TestCommentsFetchFailureDegradesToEmpty(t *testing.T) {
	b, client := newBackend(t)
	b.on("GET /api/tasks/1/comments", http.StatusOK, []types.Comment{{ID: 1}})
	b.on("GET /api/tasks/1/history", http.StatusOK, nil)

	comments := NewComments(client, nil)
	_, err := comments.Fetch(context.Background(), 1)
	require.NoError(t, err)

	history, err := comments.FetchHistory(context.Background(), 1)
	require.NoError(t, err, "null history is an empty list")
	assert.Empty(t, history)

	b.on("GET /api/tasks/1/comments", http.StatusInternalServerError, "boom")
	got, err := comments.Fetch(context.Background(), 1)
	require.Error(t, err)
	assert.Empty(t, got)
	assert.Empty(t, comments.Comments())

	_, err = comments.FetchHistory(context.Background(), 2)
	require.Error(t, err)
	assert.Empty(t, comments.History())
}

func TestCommentsAddAuthorName(t *testing.T) {
	tests := []struct {
		name string
		user *types.User
		want string
	}{
		{name: "full name", user: &types.User{ID: 1, FullName: "Ada Lovelace", Email: "ada@example.com"}, want: "Ada Lovelace"},
		{name: "email fallback", user: &types.User{ID: 1, Email: "ada@example.com"}, want: "ada@example.com"},
		{name: "no user", user: nil, want: "Unknown User"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, client := newBackend(t)
			b.handle("POST /api/tasks/9/comments", func(r *http.Request) (int, any) {
				var in types.CommentCreate
				if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
					return http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()}
				}
				return http.StatusCreated, types.Comment{ID: 3, TaskID: 9, Text: in.Text, FullName: in.FullName}
			})

			comments := NewComments(client, staticUser{tt.user})
			comment, err := comments.Add(context.Background(), 9, "looks good")
			require.NoError(t, err)
			assert.Equal(t, tt.want, comment.FullName)
			assert.Equal(t, "looks good", comment.Text)
			require.Len(t, comments.Comments(), 1)

			sent := b.calls("POST /api/tasks/9/comments")
			require.Len(t, sent, 1)
			assert.JSONEq(t, `{"text":"looks good","full_name":"`+tt.want+`"}`, string(sent[0].body))
		})
	}
}

func TestCommentsAddRejectsEmptyText(t *testing.T) {
	b, client := newBackend(t)
	_, err := NewComments(client, nil).Add(context.Background(), 9, "   ")
	assert.Equal(t, tberrors.ErrCodeStoreInvalidInput, tberrors.CodeOf(err))
	assert.Empty(t, b.calls("POST /api/tasks/9/comments"))
}
