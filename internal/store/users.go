package store

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/felixgeelhaar/taskboard/internal/api"
	"github.com/felixgeelhaar/taskboard/pkg/taskboard/types"
)

// Users is the client-side user list used by the admin views.
type Users struct {
	base

	mu    sync.RWMutex
	users []types.User
}

// NewUsers creates a user store
func NewUsers(client *api.Client, opts ...Option) *Users {
	u := &Users{users: []types.User{}}
	u.init("users", client, nil, opts)
	return u
}

// List returns a copy of the held users
func (u *Users) List() []types.User {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return append([]types.User(nil), u.users...)
}

// Fetch loads one page of users and replaces the held list. On failure the
// held list becomes empty and the error is returned.
func (u *Users) Fetch(ctx context.Context, skip, limit int) ([]types.User, error) {
	done := u.beginLoading()
	defer done()

	var users []types.User
	resp, err := u.client.Get(ctx, "/auth/users", pageQuery(skip, limit))
	if err == nil {
		users, err = decodeList[types.User](resp)
	}
	if err != nil {
		users = []types.User{}
	}

	u.mu.Lock()
	u.users = users
	u.mu.Unlock()

	return append([]types.User(nil), users...), u.record(ctx, "fetch", err)
}

// Get fetches a single user. The held list is not changed.
func (u *Users) Get(ctx context.Context, id int64) (*types.User, error) {
	user, err := u.call(ctx, http.MethodGet, userPath(id), nil)
	return user, u.record(ctx, "get", err)
}

// Create creates a user and appends it to the held list
func (u *Users) Create(ctx context.Context, in types.UserCreate) (*types.User, error) {
	if err := in.Validate(); err != nil {
		return nil, u.record(ctx, "create", invalidInput(err))
	}

	user, err := u.call(ctx, http.MethodPost, "/auth/users", in)
	if err == nil {
		u.mu.Lock()
		u.users = append(u.users, *user)
		u.mu.Unlock()
	}
	return user, u.record(ctx, "create", err)
}

// Update changes a user and replaces the held entry with the same id
func (u *Users) Update(ctx context.Context, id int64, in types.UserUpdate) (*types.User, error) {
	if in.Role != nil && !in.Role.IsValid() {
		return nil, u.record(ctx, "update", invalidInput(fmt.Errorf("invalid role %q", *in.Role)))
	}

	user, err := u.call(ctx, http.MethodPut, userPath(id), in)
	if err == nil {
		u.replace(*user)
	}
	return user, u.record(ctx, "update", err)
}

// Delete deletes a user and removes that id from the held list
func (u *Users) Delete(ctx context.Context, id int64) error {
	_, err := u.client.Delete(ctx, userPath(id))
	if err == nil {
		u.mu.Lock()
		kept := make([]types.User, 0, len(u.users))
		for _, user := range u.users {
			if user.ID != id {
				kept = append(kept, user)
			}
		}
		u.users = kept
		u.mu.Unlock()
	}
	return u.record(ctx, "delete", err)
}

// ToggleActive flips a user's active flag and replaces the held entry
func (u *Users) ToggleActive(ctx context.Context, id int64) (*types.User, error) {
	user, err := u.call(ctx, http.MethodPost, userPath(id)+"/toggle-active", nil)
	if err == nil {
		u.replace(*user)
	}
	return user, u.record(ctx, "toggle_active", err)
}

// Clear empties the held list
func (u *Users) Clear() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.users = []types.User{}
}

func (u *Users) call(ctx context.Context, method, path string, body any) (*types.User, error) {
	resp, err := u.client.Do(ctx, method, path, nil, body)
	if err != nil {
		return nil, err
	}
	var user types.User
	if err := resp.Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *Users) replace(user types.User) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for i := range u.users {
		if u.users[i].ID == user.ID {
			u.users[i] = user
			return
		}
	}
}

func userPath(id int64) string {
	return fmt.Sprintf("/auth/users/%d", id)
}
