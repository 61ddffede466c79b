package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/gofrs/flock"
)

const (
	// lockRetryDelay is the delay between attempts to acquire the file lock
	lockRetryDelay = 50 * time.Millisecond

	// lockFileSuffix is appended to the store path to name the lock file
	lockFileSuffix = ".lock"
)

//go:generate mockgen -destination=mocks/mock_file_store.go -package=mocks -source=file_store.go KeyValueStore

// KeyValueStore persists a string keyed mapping of JSON-serializable values
type KeyValueStore interface {
	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key string, value any) error

	// Get returns the JSON-decoded value stored under key.
	// The boolean is false when the key is absent.
	Get(ctx context.Context, key string) (any, bool, error)

	// GetInto decodes the value stored under key into out.
	// The boolean is false when the key is absent, in which case out is untouched.
	GetInto(ctx context.Context, key string, out any) (bool, error)

	// GetManyInto decodes the value of every key of targets into its target,
	// all from the same version of the mapping. Absent keys are left untouched
	// and reported false.
	GetManyInto(ctx context.Context, targets map[string]any) (map[string]bool, error)

	// Has reports whether key holds a value other than null
	Has(ctx context.Context, key string) (bool, error)

	// Clear removes every key
	Clear(ctx context.Context) error

	// Replace swaps the whole mapping for values in a single write
	Replace(ctx context.Context, values map[string]any) error

	// Path returns the location of the backing file
	Path() string
}

// fileStore implements KeyValueStore on a single JSON file
type fileStore struct {
	path string

	// mu serializes access within the process, the file lock across processes
	mu   sync.Mutex
	lock *flock.Flock
}

// NewFileStore creates a key-value store backed by the JSON file at path.
// The file and its directory are created on first write.
func NewFileStore(path string) KeyValueStore {
	return &fileStore{
		path: path,
		lock: flock.New(path + lockFileSuffix),
	}
}

// Path returns the location of the backing file
func (f *fileStore) Path() string {
	return f.path
}

// Set stores value under key
func (f *fileStore) Set(ctx context.Context, key string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key '%s': %w", key, err)
	}

	return f.withLock(ctx, func() error {
		data := f.loadData(ctx)
		data[key] = encoded
		return f.saveData(data)
	})
}

// Get returns the JSON-decoded value stored under key
func (f *fileStore) Get(ctx context.Context, key string) (any, bool, error) {
	var value any
	found, err := f.GetInto(ctx, key, &value)
	if err != nil || !found {
		return nil, found, err
	}
	return value, true, nil
}

// GetInto decodes the value stored under key into out
func (f *fileStore) GetInto(ctx context.Context, key string, out any) (bool, error) {
	var raw json.RawMessage
	err := f.withLock(ctx, func() error {
		raw = f.loadData(ctx)[key]
		return nil
	})
	if err != nil {
		return false, err
	}
	if raw == nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("failed to decode value for key '%s': %w", key, err)
	}
	return true, nil
}

// GetManyInto decodes several keys from one read of the file
func (f *fileStore) GetManyInto(ctx context.Context, targets map[string]any) (map[string]bool, error) {
	var data map[string]json.RawMessage
	err := f.withLock(ctx, func() error {
		data = f.loadData(ctx)
		return nil
	})
	if err != nil {
		return nil, err
	}

	found := make(map[string]bool, len(targets))
	for key, out := range targets {
		raw, ok := data[key]
		found[key] = ok
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return nil, fmt.Errorf("failed to decode value for key '%s': %w", key, err)
		}
	}
	return found, nil
}

// Has reports whether key is present with a non-null value.
// Falsy values such as "", 0 and false count as present.
func (f *fileStore) Has(ctx context.Context, key string) (bool, error) {
	var raw json.RawMessage
	err := f.withLock(ctx, func() error {
		raw = f.loadData(ctx)[key]
		return nil
	})
	if err != nil {
		return false, err
	}
	return raw != nil && !bytes.Equal(bytes.TrimSpace(raw), []byte("null")), nil
}

// Clear overwrites the file with an empty mapping
func (f *fileStore) Clear(ctx context.Context) error {
	return f.withLock(ctx, func() error {
		return f.saveData(map[string]json.RawMessage{})
	})
}

// Replace overwrites the file with exactly values
func (f *fileStore) Replace(ctx context.Context, values map[string]any) error {
	data := make(map[string]json.RawMessage, len(values))
	for key, value := range values {
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal value for key '%s': %w", key, err)
		}
		data[key] = encoded
	}

	return f.withLock(ctx, func() error {
		return f.saveData(data)
	})
}

// withLock runs fn while holding both the in-process and the file lock
func (f *fileStore) withLock(ctx context.Context, fn func() error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0750); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	locked, err := f.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("failed to lock storage file: %w", err)
	}
	if !locked {
		return fmt.Errorf("failed to lock storage file %s", f.path)
	}
	defer func() {
		_ = f.lock.Unlock()
	}()

	return fn()
}

// loadData reads the whole mapping. A missing or corrupt file yields an empty mapping.
func (f *fileStore) loadData(ctx context.Context) map[string]json.RawMessage {
	logger := logr.FromContextOrDiscard(ctx)
	data := make(map[string]json.RawMessage)

	//nolint:gosec // File path comes from configuration, this is expected behavior
	content, err := os.ReadFile(f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Info("Failed to read storage file, treating as empty", "path", f.path, "error", err.Error())
		}
		return data
	}
	if len(bytes.TrimSpace(content)) == 0 {
		return data
	}

	if err := json.Unmarshal(content, &data); err != nil || data == nil {
		logger.Info("Storage file is not a JSON object, treating as empty", "path", f.path)
		return make(map[string]json.RawMessage)
	}
	return data
}

// saveData writes the whole mapping through a temporary file and an atomic rename
func (f *fileStore) saveData(data map[string]json.RawMessage) error {
	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal storage data: %w", err)
	}

	tempPath := f.path + ".tmp"
	if err := os.WriteFile(tempPath, encoded, 0600); err != nil {
		return fmt.Errorf("failed to write temporary storage file: %w", err)
	}

	if err := os.Rename(tempPath, f.path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename storage file: %w", err)
	}

	return nil
}
