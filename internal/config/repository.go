// internal/config/repository.go
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Repository is an asynchronous key-value store for small pieces of mutable
// state: the global enable toggle, per-site overrides, remembered UI
// positions. Callers depend on this interface rather than any global, so
// tests can substitute an in-memory implementation.
type Repository interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// FileRepository persists entries as a single JSON object on disk. Writes
// rewrite the whole file; the data set is a handful of toggles, so that is
// fine.
type FileRepository struct {
	path string

	mu      sync.Mutex
	entries map[string]string
	loaded  bool
}

// NewFileRepository creates a repository backed by the given file. The file
// is created on first Set.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

func (r *FileRepository) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.loadLocked(); err != nil {
		return "", false, err
	}
	v, ok := r.entries[key]
	return v, ok, nil
}

func (r *FileRepository) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.loadLocked(); err != nil {
		return err
	}
	r.entries[key] = value
	return r.saveLocked()
}

func (r *FileRepository) loadLocked() error {
	if r.loaded {
		return nil
	}
	r.entries = make(map[string]string)
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			r.loaded = true
			return nil
		}
		return fmt.Errorf("read state file: %w", err)
	}
	if err := json.Unmarshal(data, &r.entries); err != nil {
		return fmt.Errorf("decode state file: %w", err)
	}
	r.loaded = true
	return nil
}

func (r *FileRepository) saveLocked() error {
	data, err := json.MarshalIndent(r.entries, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return nil
}

// MemoryRepository is an in-memory Repository for tests and ephemeral runs.
type MemoryRepository struct {
	mu      sync.Mutex
	entries map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{entries: make(map[string]string)}
}

func (r *MemoryRepository) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.entries[key]
	return v, ok, nil
}

func (r *MemoryRepository) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = value
	return nil
}
