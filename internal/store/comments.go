package store

import (
	"context"
	"strings"
	"sync"

	"github.com/felixgeelhaar/taskboard/internal/api"
	"github.com/felixgeelhaar/taskboard/pkg/taskboard/types"
)

// Comments holds the comments and history of the task being viewed.
type Comments struct {
	base

	mu       sync.RWMutex
	comments []types.Comment
	history  []types.HistoryEntry
}

// NewComments creates a comment store. users supplies the author name for
// new comments.
func NewComments(client *api.Client, users UserSource, opts ...Option) *Comments {
	c := &Comments{comments: []types.Comment{}, history: []types.HistoryEntry{}}
	c.init("comments", client, users, opts)
	return c
}

// Comments returns a copy of the held comments
func (c *Comments) Comments() []types.Comment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]types.Comment(nil), c.comments...)
}

// History returns a copy of the held history
func (c *Comments) History() []types.HistoryEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]types.HistoryEntry(nil), c.history...)
}

// Fetch loads the comments of a task. On failure the held comments become
// empty and the error is returned.
func (c *Comments) Fetch(ctx context.Context, taskID int64) ([]types.Comment, error) {
	done := c.beginLoading()
	defer done()

	comments, err := fetchList[types.Comment](ctx, c.client, taskPath(taskID)+"/comments")

	c.mu.Lock()
	c.comments = comments
	c.mu.Unlock()

	return append([]types.Comment(nil), comments...), c.record(ctx, "fetch", err)
}

// FetchHistory loads the history of a task. On failure the held history
// becomes empty and the error is returned.
func (c *Comments) FetchHistory(ctx context.Context, taskID int64) ([]types.HistoryEntry, error) {
	done := c.beginLoading()
	defer done()

	history, err := fetchList[types.HistoryEntry](ctx, c.client, taskPath(taskID)+"/history")

	c.mu.Lock()
	c.history = history
	c.mu.Unlock()

	return append([]types.HistoryEntry(nil), history...), c.record(ctx, "fetch_history", err)
}

// Add posts a comment signed with the session user's display name and
// appends the created comment to the held list.
func (c *Comments) Add(ctx context.Context, taskID int64, text string) (*types.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, c.record(ctx, "add", invalidInput(errEmptyComment))
	}

	var author *types.User
	if c.users != nil {
		author = c.users.User()
	}
	body := types.CommentCreate{Text: text, FullName: author.DisplayName()}

	resp, err := c.client.Post(ctx, taskPath(taskID)+"/comments", nil, body)
	if err != nil {
		return nil, c.record(ctx, "add", err)
	}
	var comment types.Comment
	if err := resp.Decode(&comment); err != nil {
		return nil, c.record(ctx, "add", err)
	}

	c.mu.Lock()
	c.comments = append(c.comments, comment)
	c.mu.Unlock()

	return &comment, c.record(ctx, "add", nil)
}

// Clear empties both comments and history
func (c *Comments) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.comments = []types.Comment{}
	c.history = []types.HistoryEntry{}
}

func fetchList[T any](ctx context.Context, client *api.Client, path string) ([]T, error) {
	resp, err := client.Get(ctx, path, nil)
	if err != nil {
		return []T{}, err
	}
	return decodeList[T](resp)
}
