// Package watch provides a debounced single-file change notifier for
// tailing transcript logs.
package watch

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DebounceInterval coalesces rapid successive writes from one logical
// append into a single notification.
const DebounceInterval = 100 * time.Millisecond

// Event is a change notification or a watcher error.
type Event struct {
	Path string
	Err  error
}

// Watcher arms a debounced filesystem watch on exactly one file at a time
// and tracks the caller-maintained read watermark for it. All methods are
// intended to be called from a single owning goroutine; only the events
// channel crosses goroutines.
type Watcher struct {
	log      *logrus.Entry
	debounce time.Duration

	inner    *fsnotify.Watcher
	events   chan Event
	done     chan struct{}
	path     string
	position int64
}

// New creates an unarmed watcher.
func New(log *logrus.Entry) *Watcher {
	return &Watcher{log: log, debounce: DebounceInterval}
}

// Watch arms the watcher on path, replacing any previous watch and
// resetting the watermark.
func (w *Watcher) Watch(path string) error {
	w.Stop()

	inner, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := inner.Add(path); err != nil {
		inner.Close()
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	w.inner = inner
	w.path = path
	w.position = 0
	w.events = make(chan Event, 8)
	w.done = make(chan struct{})

	go w.forward(inner, path, w.events, w.done)

	w.log.WithField("path", path).Debug("armed file watch")
	return nil
}

// forward converts raw fsnotify events into debounced notifications.
func (w *Watcher) forward(inner *fsnotify.Watcher, path string, out chan<- Event, done <-chan struct{}) {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case ev, ok := <-inner.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-fire:
			timer = nil
			fire = nil
			select {
			case out <- Event{Path: path}:
			case <-done:
				return
			}

		case err, ok := <-inner.Errors:
			if !ok {
				return
			}
			select {
			case out <- Event{Err: err}:
			case <-done:
				return
			}

		case <-done:
			return
		}
	}
}

// Stop disarms the watcher and resets bookkeeping. Safe to call when
// already stopped.
func (w *Watcher) Stop() {
	if w.inner != nil {
		close(w.done)
		w.inner.Close()
		w.inner = nil
	}
	w.events = nil
	w.done = nil
	w.path = ""
	w.position = 0
}

// Events returns the notification source. When the watcher is unarmed it
// returns a nil channel, which blocks forever in a select, so it composes
// safely inside a multi-way wait.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Active reports whether a watch is armed.
func (w *Watcher) Active() bool {
	return w.inner != nil
}

// Path returns the currently watched file, or empty when unarmed.
func (w *Watcher) Path() string {
	return w.path
}

// Position returns the read watermark for the watched file. The watcher
// never advances it itself; callers update it after each successful read.
func (w *Watcher) Position() int64 {
	return w.position
}

// SetPosition records the watermark reached by the caller's last read.
func (w *Watcher) SetPosition(pos int64) {
	w.position = pos
}
