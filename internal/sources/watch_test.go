package sources

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchFile_SignalsOnWrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "translations.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	trigger := make(chan struct{}, 1)
	errCh := make(chan error, 1)
	go func() { errCh <- WatchFile(ctx, path, trigger) }()

	// The watcher may not be registered yet, so the file is rewritten on every poll
	require.Eventually(t, func() bool {
		if err := os.WriteFile(path, []byte(`{"en":{"a":"b"}}`), 0o600); err != nil {
			return false
		}
		select {
		case <-trigger:
			return true
		default:
			return false
		}
	}, 3*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("WatchFile did not return after cancellation")
	}
}

func TestWatchFile_SignalsOnConfigMapSwap(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "..v1"), 0o750))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "..v2"), 0o750))
	require.NoError(t, os.Symlink("..v1", filepath.Join(dir, "..data")))
	path := filepath.Join(dir, "translations.json")
	require.NoError(t, os.Symlink(filepath.Join("..data", "translations.json"), path))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	trigger := make(chan struct{}, 1)
	go func() { _ = WatchFile(ctx, path, trigger) }()

	// The kubelet points a fresh link at the new version and renames it over ..data
	version := 0
	require.Eventually(t, func() bool {
		version++
		target := "..v1"
		if version%2 == 0 {
			target = "..v2"
		}
		tmp := filepath.Join(dir, "..data_tmp")
		_ = os.Remove(tmp)
		if err := os.Symlink(target, tmp); err != nil {
			return false
		}
		if err := os.Rename(tmp, filepath.Join(dir, "..data")); err != nil {
			return false
		}
		select {
		case <-trigger:
			return true
		default:
			return false
		}
	}, 3*time.Second, 50*time.Millisecond)
}

func TestWatchFile_IgnoresSiblings(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "translations.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	trigger := make(chan struct{}, 1)
	go func() { _ = WatchFile(ctx, path, trigger) }()

	for range 5 {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0o600))
		time.Sleep(20 * time.Millisecond)
	}

	assert.Never(t, func() bool {
		select {
		case <-trigger:
			return true
		default:
			return false
		}
	}, 200*time.Millisecond, 20*time.Millisecond)
}

func TestWatchFile_MissingDirectory(t *testing.T) {
	t.Parallel()

	err := WatchFile(context.Background(), filepath.Join(t.TempDir(), "missing", "translations.json"),
		make(chan struct{}, 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to watch")
}
