// Package watch reports changes to a single file.
//
// The watcher observes the file's parent directory so that editors which
// save by renaming a temporary file over the original keep being tracked.
// Bursts of changes are debounced into one event.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDelay is the default debounce delay.
const DefaultDelay = 100 * time.Millisecond

// ErrClosed is returned when watching through a closed Watcher.
var ErrClosed = errors.New("watcher is closed")

// Op represents the type of file operation.
type Op uint32

const (
	// OpCreate indicates the file was created.
	OpCreate Op = 1 << iota
	// OpWrite indicates the file was written to.
	OpWrite
	// OpRemove indicates the file was removed.
	OpRemove
	// OpRename indicates the file was renamed away.
	OpRename
)

// String returns the operation name.
func (op Op) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Event represents a debounced file change.
type Event struct {
	// Path is the absolute path of the watched file.
	Path string

	// Op is the coalesced operation.
	Op Op

	// Time is when the last contributing change was seen.
	Time time.Time
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDelay sets the debounce delay. Zero delivers every change immediately;
// negative values are ignored.
func WithDelay(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.delay = d
		}
	}
}

// Watcher monitors one file for changes.
type Watcher struct {
	path  string
	delay time.Duration

	fsw    *fsnotify.Watcher
	events chan Event
	errors chan error

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// New starts watching path. The file itself may not exist yet, but its
// directory must.
func New(path string, opts ...Option) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", absPath, err)
	}

	w := &Watcher{
		path:   absPath,
		delay:  DefaultDelay,
		fsw:    fsw,
		events: make(chan Event),
		errors: make(chan error, 1),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.wg.Add(1)
	go w.loop()

	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Events returns the event channel. It is closed by Close.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the error channel. It is closed by Close.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher. Pending debounced events are discarded.
// Calling Close more than once is safe.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		close(w.done)
		w.wg.Wait()
		close(w.events)
		close(w.errors)
		w.closeErr = w.fsw.Close()
	})
	return w.closeErr
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	var (
		pending *Event
		timer   *time.Timer
		fire    <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.done:
			return

		case fsEvent, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			op := w.convert(fsEvent)
			if op == 0 {
				continue
			}
			event := Event{Path: w.path, Op: op, Time: time.Now()}
			if w.delay == 0 {
				w.send(event)
				continue
			}

			pending = coalesce(pending, event)
			if timer == nil {
				timer = time.NewTimer(w.delay)
			} else {
				timer.Reset(w.delay)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if pending != nil {
				w.send(*pending)
				pending = nil
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
				// Drop when the previous error has not been read.
			}
		}
	}
}

// convert maps an fsnotify event on the watched file to an Op.
// Events on other files and permission changes map to zero.
func (w *Watcher) convert(fsEvent fsnotify.Event) Op {
	if filepath.Clean(fsEvent.Name) != w.path {
		return 0
	}
	switch {
	case fsEvent.Op.Has(fsnotify.Remove):
		return OpRemove
	case fsEvent.Op.Has(fsnotify.Rename):
		return OpRename
	case fsEvent.Op.Has(fsnotify.Create):
		return OpCreate
	case fsEvent.Op.Has(fsnotify.Write):
		return OpWrite
	}
	return 0
}

func (w *Watcher) send(event Event) {
	select {
	case w.events <- event:
	case <-w.done:
	}
}

// coalesce folds next into the pending event:
//   - remove and rename replace whatever is pending
//   - create replaces anything, since the file exists again
//   - write keeps a pending create, remove or rename
func coalesce(pending *Event, next Event) *Event {
	if pending == nil {
		return &next
	}
	merged := next
	if next.Op == OpWrite {
		merged.Op = pending.Op
	}
	return &merged
}

// Run calls fn for each event until ctx is done, the watcher closes, the
// watcher reports an error or fn fails. It returns the cause.
func Run(ctx context.Context, w *Watcher, fn func(Event) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.Events():
			if !ok {
				return ErrClosed
			}
			if err := fn(event); err != nil {
				return err
			}
		case err, ok := <-w.Errors():
			if !ok {
				return ErrClosed
			}
			return err
		}
	}
}
