package daemon

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

// runWatcher starts w in the background and returns a channel signalled on
// every change, plus a stop function.
func runWatcher(t *testing.T, w *Watcher) (<-chan struct{}, func()) {
	t.Helper()

	changes := make(chan struct{}, 16)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- w.Run(ctx, func() { changes <- struct{}{} })
	}()

	// Let the watch register before the test touches the directory.
	time.Sleep(100 * time.Millisecond)

	return changes, func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Run() error = %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("Run() did not return after cancel")
		}
	}
}

func waitForChange(t *testing.T, changes <-chan struct{}) {
	t.Helper()
	select {
	case <-changes:
	case <-time.After(3 * time.Second):
		t.Fatal("change not reported")
	}
}

func TestNewWatcher(t *testing.T) {
	if _, err := NewWatcher(WatcherOptions{}); err == nil {
		t.Error("NewWatcher() with empty path error = nil")
	}

	w, err := NewWatcher(WatcherOptions{Path: "cluster.conf"})
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	if !filepath.IsAbs(w.path) {
		t.Errorf("path = %q, want absolute", w.path)
	}
	if w.debounce != DefaultDebounce {
		t.Errorf("debounce = %v, want %v", w.debounce, DefaultDebounce)
	}
}

func TestWatcher_DetectsWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeConf(t, dir, conf(testCluster, 1, ""))

	w, err := NewWatcher(WatcherOptions{Path: path, Debounce: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	changes, stop := runWatcher(t, w)
	defer stop()

	writeConf(t, dir, conf(testCluster, 2, ""))
	waitForChange(t, changes)
}

func TestWatcher_DetectsAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := writeConf(t, dir, conf(testCluster, 1, ""))

	w, err := NewWatcher(WatcherOptions{Path: path, Debounce: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	changes, stop := runWatcher(t, w)
	defer stop()

	tmp := filepath.Join(dir, ".cluster.conf.tmp")
	if err := os.WriteFile(tmp, []byte(conf(testCluster, 2, "")), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}
	waitForChange(t, changes)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeConf(t, dir, conf(testCluster, 1, ""))

	var calls atomic.Int32
	w, err := NewWatcher(WatcherOptions{Path: path, Debounce: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = w.Run(ctx, func() { calls.Add(1) })
		close(done)
	}()
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "other.conf"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(150 * time.Millisecond)
	cancel()
	<-done

	if got := calls.Load(); got != 0 {
		t.Errorf("onChange called %d times for an unrelated file", got)
	}
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w, err := NewWatcher(WatcherOptions{Path: filepath.Join(t.TempDir(), "absent", "cluster.conf")})
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	if err := w.Run(context.Background(), func() {}); err == nil {
		t.Error("Run() on a missing directory error = nil")
	}
}
