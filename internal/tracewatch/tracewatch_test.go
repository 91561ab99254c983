package tracewatch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherReportsWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trace.txt")

	if err := os.WriteFile(path, []byte("a 1 16\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	w, err := NewWatcher(path)
	if err != nil {
		t.Skip("fsnotify not supported:", err)
	}
	defer w.Close()

	go func() {
		_ = os.WriteFile(path, []byte("a 1 16\nf 1\n"), 0o644)
	}()

	select {
	case ev := <-w.Events():
		if ev.Path == "" {
			t.Fatal("event had empty path")
		}
	case err := <-w.Errors():
		t.Fatalf("watcher reported error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for write event")
	}
}
