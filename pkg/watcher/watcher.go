// Package watcher reloads the open song when it changes on disk. It watches
// the file's directory with fsnotify, so editors that save by rename are
// caught, and falls back to stat polling when fsnotify is unavailable or
// LEADSHEET_FORCE_POLL is set.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vanderheijden86/leadsheet/pkg/debug"
)

// DefaultPollInterval is the stat interval in polling mode.
const DefaultPollInterval = 1 * time.Second

var (
	ErrFileRemoved = errors.New("song file was removed")
	ErrPermission  = errors.New("permission denied")
	ErrNoFile      = errors.New("no file to watch")
)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounceDuration sets the debounce duration.
func WithDebounceDuration(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounceDuration = d
	}
}

// WithPollInterval sets the polling interval.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) {
		w.pollInterval = d
	}
}

// WithOnError sets the callback invoked on watch errors.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// WithForcePoll forces polling mode.
func WithForcePoll(force bool) Option {
	return func(w *Watcher) {
		w.forcePoll = force
	}
}

// Watcher follows one song file at a time. Watch retargets it when the user
// opens another file.
type Watcher struct {
	debounceDuration time.Duration
	pollInterval     time.Duration
	onError          func(error)
	forcePoll        bool

	debouncer *Debouncer
	changeCh  chan string

	mu        sync.RWMutex
	path      string
	polling   bool
	cancel    context.CancelFunc
	fsWatcher *fsnotify.Watcher
}

// New creates an idle watcher.
func New(opts ...Option) *Watcher {
	w := &Watcher{
		debounceDuration: DefaultDebounceDuration,
		pollInterval:     DefaultPollInterval,
		onError:          func(error) {},
		changeCh:         make(chan string, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = NewDebouncer(w.debounceDuration)
	return w
}

// Watch starts following path, dropping any previous target.
func (w *Watcher) Watch(path string) error {
	if path == "" {
		return ErrNoFile
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.Stop()

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsPermission(err) {
			return ErrPermission
		}
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	w.path = abs
	w.cancel = cancel
	w.polling = w.forcePoll || envBool("LEADSHEET_FORCE_POLL")

	if !w.polling {
		fsw, err := fsnotify.NewWatcher()
		if err == nil {
			err = fsw.Add(filepath.Dir(abs))
			if err != nil {
				fsw.Close()
			}
		}
		if err != nil {
			debug.Log("watcher: fsnotify unavailable for %s, polling: %v", abs, err)
			w.polling = true
		} else {
			w.fsWatcher = fsw
			go w.watchEvents(ctx, abs, fsw)
		}
	}
	if w.polling {
		go w.watchPolling(ctx, abs, info.ModTime(), info.Size())
	}
	debug.Log("watcher: following %s (polling=%v)", abs, w.polling)
	return nil
}

// Stop stops watching. The Changed channel stays open so a pending receive
// is simply never satisfied.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	if w.fsWatcher != nil {
		w.fsWatcher.Close()
		w.fsWatcher = nil
	}
	w.debouncer.Cancel()
	w.path = ""
}

// Changed delivers the path of the watched file after it changes.
func (w *Watcher) Changed() <-chan string {
	return w.changeCh
}

// Path returns the watched file, or "" when stopped.
func (w *Watcher) Path() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.path
}

// IsPolling reports whether the current target is polled.
func (w *Watcher) IsPolling() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.polling
}

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func (w *Watcher) watchEvents(ctx context.Context, path string, fsw *fsnotify.Watcher) {
	target := filepath.Base(path)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			switch {
			case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
				w.debouncer.Trigger(func() { w.notify(ctx, path) })
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				// Saves by rename recreate the file; only report a removal
				// when it is still gone once the writes settle.
				w.debouncer.Trigger(func() {
					if _, err := os.Stat(path); os.IsNotExist(err) {
						w.onError(ErrFileRemoved)
						return
					}
					w.notify(ctx, path)
				})
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) watchPolling(ctx context.Context, path string, mtime time.Time, size int64) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	missing := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			info, err := os.Stat(path)
			switch {
			case os.IsNotExist(err):
				if !missing {
					missing = true
					w.onError(ErrFileRemoved)
				}
				continue
			case os.IsPermission(err):
				w.onError(ErrPermission)
				continue
			case err != nil:
				w.onError(err)
				continue
			}
			if missing || !info.ModTime().Equal(mtime) || info.Size() != size {
				missing = false
				mtime, size = info.ModTime(), info.Size()
				w.debouncer.Trigger(func() { w.notify(ctx, path) })
			}
		}
	}
}

// notify signals a change unless the target has moved on.
func (w *Watcher) notify(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}
	select {
	case w.changeCh <- path:
	default:
	}
}
