package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startWatcher runs w until the test ends.
func startWatcher(t *testing.T, w *cookWatcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("watcher did not stop")
		}
	})
}

func waitSync(t *testing.T, synced <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-synced:
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %s sync", what)
	}
}

func TestCookWatcher_SyncsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rock.yaml")
	require.NoError(t, os.WriteFile(path, []byte("asset: rock\n"), 0o644))

	synced := make(chan struct{}, 8)
	w := newCookWatcher(path, 20*time.Millisecond, quietLogger())
	w.sync = func(context.Context) error {
		synced <- struct{}{}
		return nil
	}
	startWatcher(t, w)

	waitSync(t, synced, "initial")

	require.NoError(t, os.WriteFile(path, []byte("asset: rock\nobjects: []\n"), 0o644))
	waitSync(t, synced, "change")
}

func TestCookWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rock.yaml")
	require.NoError(t, os.WriteFile(path, []byte("asset: rock\n"), 0o644))

	var count atomic.Int32
	synced := make(chan struct{}, 8)
	w := newCookWatcher(path, 20*time.Millisecond, quietLogger())
	w.sync = func(context.Context) error {
		count.Add(1)
		synced <- struct{}{}
		return nil
	}
	startWatcher(t, w)
	waitSync(t, synced, "initial")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), count.Load())
}

func TestCookWatcher_ResyncRetriesOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rock.yaml")
	require.NoError(t, os.WriteFile(path, []byte("asset: rock\n"), 0o644))

	var count atomic.Int32
	synced := make(chan struct{}, 8)
	w := newCookWatcher(path, 20*time.Millisecond, quietLogger())
	w.sync = func(context.Context) error {
		count.Add(1)
		// Every pass comes back empty
		w.ScheduleResync(0)
		synced <- struct{}{}
		return nil
	}
	startWatcher(t, w)

	waitSync(t, synced, "initial")
	waitSync(t, synced, "resync")
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(2), count.Load(), "an empty cook is retried once per change")

	// A file change re-arms the retry
	require.NoError(t, os.WriteFile(path, []byte("asset: rock\nobjects: []\n"), 0o644))
	waitSync(t, synced, "change")
	waitSync(t, synced, "second resync")
}

func TestCookWatcher_SyncErrorKeepsWatching(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rock.yaml")
	require.NoError(t, os.WriteFile(path, []byte("asset: rock\n"), 0o644))

	synced := make(chan struct{}, 8)
	w := newCookWatcher(path, 20*time.Millisecond, quietLogger())
	w.sync = func(context.Context) error {
		synced <- struct{}{}
		return errCookInvalid
	}
	startWatcher(t, w)
	waitSync(t, synced, "initial")

	require.NoError(t, os.WriteFile(path, []byte("asset: rock\nobjects: []\n"), 0o644))
	waitSync(t, synced, "change")
}

func TestCookWatcher_MissingDirectory(t *testing.T) {
	w := newCookWatcher(filepath.Join(t.TempDir(), "absent", "rock.yaml"), time.Millisecond, quietLogger())
	w.sync = func(context.Context) error { return nil }

	assert.Error(t, w.run(context.Background()))
}
