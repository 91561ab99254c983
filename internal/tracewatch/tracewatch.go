// Package tracewatch notifies callers when a trace file changes on disk, so
// a benchmark driver can re-run a trace every time it is edited instead of
// requiring a fresh process invocation per run.
package tracewatch

import "github.com/fsnotify/fsnotify"

// WatchOp indicates the kind of change observed on a watched path.
type WatchOp uint32

const (
	OpCreate WatchOp = 1 << iota
	OpWrite
	OpRemove
	OpRename
	OpChmod
)

// Event describes one filesystem change.
type Event struct {
	Path string
	Op   WatchOp
}

// Watcher delivers change events for a single watched trace file.
type Watcher interface {
	Events() <-chan Event
	Errors() <-chan error
	Close() error
}

// FSNotifyWatcher implements Watcher on top of fsnotify's OS-native
// notifications, watching exactly one path for the lifetime of the
// watcher.
type FSNotifyWatcher struct {
	w   *fsnotify.Watcher
	evC chan Event
	erC chan error
}

// NewWatcher creates a watcher on path, which must already exist.
func NewWatcher(path string) (*FSNotifyWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := w.Add(path); err != nil {
		w.Close()

		return nil, err
	}

	fw := &FSNotifyWatcher{w: w, evC: make(chan Event, 16), erC: make(chan error, 1)}
	go fw.loop()

	return fw, nil
}

func (fw *FSNotifyWatcher) loop() {
	for {
		select {
		case ev, ok := <-fw.w.Events:
			if !ok {
				return
			}

			var op WatchOp
			if ev.Op&fsnotify.Create != 0 {
				op |= OpCreate
			}

			if ev.Op&fsnotify.Write != 0 {
				op |= OpWrite
			}

			if ev.Op&fsnotify.Remove != 0 {
				op |= OpRemove
			}

			if ev.Op&fsnotify.Rename != 0 {
				op |= OpRename
			}

			if ev.Op&fsnotify.Chmod != 0 {
				op |= OpChmod
			}

			fw.evC <- Event{Path: ev.Name, Op: op}
		case err, ok := <-fw.w.Errors:
			if !ok {
				return
			}

			fw.erC <- err
		}
	}
}

func (fw *FSNotifyWatcher) Events() <-chan Event { return fw.evC }

func (fw *FSNotifyWatcher) Errors() <-chan error { return fw.erC }

func (fw *FSNotifyWatcher) Close() error { return fw.w.Close() }
