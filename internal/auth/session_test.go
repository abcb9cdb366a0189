package auth

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskboard/pkg/taskboard/types"
)

type failingStore struct{ MemoryStore }

func (f *failingStore) Load(ctx context.Context) (string, error) {
	return "", errors.New("disk on fire")
}

func TestNewSessionRestoresTokenOnly(t *testing.T) {
	session, err := NewSession(context.Background(), NewMemoryStoreWithToken("restored"))
	require.NoError(t, err)

	assert.Equal(t, "restored", session.Token())
	assert.True(t, session.IsAuthenticated())
	assert.Nil(t, session.User(), "a restored token is unvalidated")
	assert.False(t, session.Snapshot().Validated())
}

func TestNewSessionStoreFailure(t *testing.T) {
	session, err := NewSession(context.Background(), &failingStore{})
	require.Error(t, err)
	require.NotNil(t, session)
	assert.Empty(t, session.Token())
}

func TestNewSessionNilStore(t *testing.T) {
	session, err := NewSession(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, session.Store())
}

func TestSessionTransitions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	session, err := NewSession(ctx, store)
	require.NoError(t, err)

	user := &types.User{ID: 1, Email: "a@example.com", Role: types.RoleAdmin}
	require.NoError(t, session.establish(ctx, "tok", user))

	snap := session.Snapshot()
	assert.Equal(t, "tok", snap.Token)
	require.NotNil(t, snap.User)
	assert.Equal(t, int64(1), snap.User.ID)
	persisted, _ := store.Load(ctx)
	assert.Equal(t, "tok", persisted)

	// Callers get copies
	snap.User.Role = types.RoleWorker
	assert.Equal(t, types.RoleAdmin, session.User().Role)

	assert.False(t, session.validate("other", user), "stale token must not validate")

	cleared, err := session.invalidate(ctx, "other")
	require.NoError(t, err)
	assert.False(t, cleared)
	assert.Equal(t, "tok", session.Token())

	cleared, err = session.invalidate(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, cleared)
	assert.Empty(t, session.Token())
	assert.Nil(t, session.User())
	persisted, _ = store.Load(ctx)
	assert.Empty(t, persisted)
}

func TestSessionLoading(t *testing.T) {
	session, _ := NewSession(context.Background(), nil)
	assert.False(t, session.Loading())

	done1 := session.beginLoading()
	done2 := session.beginLoading()
	assert.True(t, session.Loading())

	done1()
	done1()
	assert.True(t, session.Loading(), "second flight still running")

	done2()
	assert.False(t, session.Loading())
}

func TestSessionSnapshotIsConsistent(t *testing.T) {
	ctx := context.Background()
	session, _ := NewSession(ctx, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = session.establish(ctx, "tok", &types.User{ID: 1})
		}()
		go func() {
			defer wg.Done()
			_ = session.clear(ctx)
		}()
	}

	for i := 0; i < 200; i++ {
		snap := session.Snapshot()
		if snap.User != nil {
			assert.NotEmpty(t, snap.Token, "user without token")
		}
	}
	wg.Wait()
}
