package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	tberrors "github.com/felixgeelhaar/taskboard/internal/errors"
)

// TokenKey is the key the bearer token is persisted under
const TokenKey = "auth_token"

// TokenStore persists the bearer token between runs.
//
// Implementations must be safe for concurrent use. Load returns "" with a
// nil error when nothing has been stored.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Delete(ctx context.Context) error
}

// FileStore keeps the token in a small JSON document on disk,
// e.g. ~/.taskboard/auth.json:
//
//	{"auth_token": "eyJhbGciOi..."}
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store backed by the file at path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file
func (f *FileStore) Path() string {
	return f.path
}

type tokenDocument struct {
	AuthToken string `json:"auth_token"`
}

// Load reads the persisted token
func (f *FileStore) Load(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", tberrors.Wrap(tberrors.ErrCodeAuthPersistenceFail, "failed to read token file", err).
			WithSuggestion("Check permissions on " + f.path)
	}
	if len(data) == 0 {
		return "", nil
	}

	var doc tokenDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", tberrors.Wrap(tberrors.ErrCodeAuthPersistenceFail, "token file is corrupted", err).
			WithSuggestion("Run 'taskboard auth logout' to reset it")
	}
	return doc.AuthToken, nil
}

// Save writes the token with owner-only permissions
func (f *FileStore) Save(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return tberrors.Wrap(tberrors.ErrCodeAuthPersistenceFail, "failed to create token directory", err)
	}

	data, err := json.MarshalIndent(tokenDocument{AuthToken: token}, "", "  ")
	if err != nil {
		return tberrors.Wrap(tberrors.ErrCodeAuthPersistenceFail, "failed to encode token", err)
	}

	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return tberrors.Wrap(tberrors.ErrCodeAuthPersistenceFail, "failed to write token file", err)
	}
	// WriteFile keeps the mode of an existing file
	if err := os.Chmod(f.path, 0o600); err != nil {
		return tberrors.Wrap(tberrors.ErrCodeAuthPersistenceFail, "failed to restrict token file", err)
	}
	return nil
}

// Delete removes the token file. A missing file is not an error.
func (f *FileStore) Delete(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return tberrors.Wrap(tberrors.ErrCodeAuthPersistenceFail, "failed to remove token file", err)
	}
	return nil
}

// MemoryStore implements in-memory token storage.
//
// Used by tests and by --ephemeral runs where nothing may touch disk.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// NewMemoryStoreWithToken creates a store that already holds token
func NewMemoryStoreWithToken(token string) *MemoryStore {
	m := NewMemoryStore()
	m.values[TokenKey] = token
	return m
}

// Load returns the stored token
func (m *MemoryStore) Load(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[TokenKey], nil
}

// Save stores the token
func (m *MemoryStore) Save(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[TokenKey] = token
	return nil
}

// Delete removes the token
func (m *MemoryStore) Delete(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, TokenKey)
	return nil
}
