// Package watch reports changes to the artifacts in a tracking directory.
package watch

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gorewood/longrun/internal/logging"
	"github.com/gorewood/longrun/internal/output"
)

// Event operations.
const (
	OpCreated = "created"
	OpWritten = "written"
	OpRemoved = "removed"
	OpRenamed = "renamed"
)

// Event is a change to one watched file.
type Event struct {
	File string    `json:"file"`
	Op   string    `json:"op"`
	Time time.Time `json:"time"`
}

// Watcher watches a directory for changes to a fixed set of file names.
// Saves done by write-then-rename surface as create events on the target.
type Watcher struct {
	dir    string
	files  map[string]bool
	fsw    *fsnotify.Watcher
	logger logging.Logger
	now    func() time.Time
}

// Open starts watching dir. Events are only reported for the named files;
// with no names every file in dir is reported.
func Open(dir string, logger logging.Logger, files ...string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, output.NewSystemErrorWithCause("failed to create file watcher", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, output.NewSystemErrorWithCause("failed to watch "+dir, err)
	}

	w := &Watcher{
		dir:    dir,
		fsw:    fsw,
		logger: logging.OrDiscard(logger),
		now:    time.Now,
	}
	if len(files) > 0 {
		w.files = make(map[string]bool, len(files))
		for _, f := range files {
			w.files[f] = true
		}
	}
	return w, nil
}

// Run delivers events to handle until ctx is done or the watcher fails.
// It returns nil when ctx is cancelled.
func (w *Watcher) Run(ctx context.Context, handle func(Event)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if e, keep := w.translate(ev); keep {
				handle(e)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				w.logger.Warn("file watcher overflowed; some changes were not reported", "dir", w.dir)
				continue
			}
			return output.NewSystemErrorWithCause("file watcher failed", err)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) translate(ev fsnotify.Event) (Event, bool) {
	name := filepath.Base(ev.Name)
	if w.files != nil && !w.files[name] {
		return Event{}, false
	}

	var op string
	switch {
	case ev.Has(fsnotify.Create):
		op = OpCreated
	case ev.Has(fsnotify.Write):
		op = OpWritten
	case ev.Has(fsnotify.Remove):
		op = OpRemoved
	case ev.Has(fsnotify.Rename):
		op = OpRenamed
	default:
		// chmod only
		return Event{}, false
	}
	w.logger.Debug("watch event", "file", name, "op", op)
	return Event{File: name, Op: op, Time: w.now()}, true
}
