// Package watcher turns filesystem notifications for a team directory into
// a pull-style stream of Events.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Alexrp02/pokemon-team-overlay/internal/teamfile"
)

// ErrClosed is returned by Next once the notification channel has closed.
var ErrClosed = errors.New("watcher: notification channel closed")

type Category string

const (
	Created  Category = "created"
	Modified Category = "modified"
	Removed  Category = "removed"
	Other    Category = "other"
)

type Event struct {
	Paths    []string
	Category Category
}

// Source is anything that can hand out change events one at a time.
type Source interface {
	Next(ctx context.Context) (Event, error)
}

// Watcher watches a directory rather than individual files, so editors
// that save by renaming a temp file over the original still show up.
type Watcher struct {
	dir     string
	pattern string
	fs      *fsnotify.Watcher
	log     *zap.Logger
}

var _ Source = (*Watcher)(nil)

// New starts watching dir. Failing to set up the OS watch is returned as an
// error since nothing would ever be reloaded without it.
func New(dir, pattern string, log *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &Watcher{
		dir:     dir,
		pattern: pattern,
		fs:      fw,
		log:     log,
	}, nil
}

// Next blocks until an event for a team file arrives. Events for other
// files are dropped here. Errors reported by the OS layer are logged and
// skipped; only a closed notification channel ends the stream.
func (w *Watcher) Next(ctx context.Context) (Event, error) {
	for {
		select {
		case <-ctx.Done():
			return Event{}, ctx.Err()

		case err, ok := <-w.fs.Errors:
			if !ok {
				return Event{}, ErrClosed
			}
			w.log.Warn("watch error", zap.Error(err))

		case fe, ok := <-w.fs.Events:
			if !ok {
				return Event{}, ErrClosed
			}
			if !teamfile.Matches(filepath.Base(fe.Name), w.pattern) {
				w.log.Debug("ignoring event for non-team file", zap.String("path", fe.Name))
				continue
			}

			ev := Event{Paths: []string{fe.Name}, Category: categorize(fe.Op)}
			if ev.Category == Removed {
				w.rearm()
			}
			return ev, nil
		}
	}
}

// rearm re-adds the directory watch after a removal so a file that is
// deleted and then recreated keeps producing events. Adding a path that is
// already watched is a no-op.
func (w *Watcher) rearm() {
	if err := w.fs.Add(w.dir); err != nil {
		w.log.Warn("re-arm watch failed", zap.String("dir", w.dir), zap.Error(err))
	}
}

func (w *Watcher) Close() error {
	return w.fs.Close()
}

func categorize(op fsnotify.Op) Category {
	switch {
	case op.Has(fsnotify.Create):
		return Created
	case op.Has(fsnotify.Write):
		return Modified
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return Removed
	default:
		return Other
	}
}
