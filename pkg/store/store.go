// Package store holds the viewer's single source of truth: the open file,
// the engine's content and its reconciled form, the chosen musical key and
// the loading/error state. Every engine request goes through a Store, one at
// a time.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vanderheijden86/leadsheet/pkg/chord"
	"github.com/vanderheijden86/leadsheet/pkg/debug"
	"github.com/vanderheijden86/leadsheet/pkg/engine"
	"github.com/vanderheijden86/leadsheet/pkg/sheet"
)

// NoFileSelected is shown as the file name after a cancelled file choice.
const NoFileSelected = "No file selected?"

var (
	// ErrBusy is returned when an operation is attempted while another
	// engine request is outstanding.
	ErrBusy = errors.New("an engine request is already in progress")
	// ErrNotLoaded is returned by operations that need a loaded file.
	ErrNotLoaded = errors.New("no file loaded")
)

// Phase is the store's position in its load lifecycle.
type Phase int

const (
	Idle Phase = iota
	Loading
	Loaded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// State is a point-in-time copy of the store.
type State struct {
	FileName  string
	Content   sheet.Content // as returned by the engine
	Processed sheet.Content // reconciled, what gets displayed
	Key       string
	Loading   bool
	Loaded    bool
	Err       string
	Phase     Phase
}

// Store sequences engine requests against the viewer state.
type Store struct {
	eng engine.Engine

	mu    sync.Mutex
	state State
	busy  bool
}

// New creates an idle store backed by eng.
func New(eng engine.Engine) *Store {
	return &Store{
		eng: eng,
		state: State{
			Key:   chord.Unset,
			Phase: Idle,
		},
	}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Content = st.Content.Clone()
	st.Processed = st.Processed.Clone()
	return st
}

// Busy reports whether an engine request is outstanding.
func (s *Store) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

func (s *Store) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrBusy
	}
	s.busy = true
	return nil
}

func (s *Store) release() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

// update applies fn to the state under the lock.
func (s *Store) update(fn func(st *State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

// fail records an engine failure. The raw error goes to the engine log and
// a readable message to the state.
func (s *Store) fail(op string, err error, st *State) {
	s.eng.LogPrint(fmt.Sprintf("%s caught %v", op, err))
	st.Err = err.Error()
}

// Open asks the engine for a file and loads it. A cancelled or failed choice
// sets the placeholder file name and leaves the content alone.
func (s *Store) Open(ctx context.Context) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()

	s.update(func(st *State) { st.Key = chord.Unset })

	path, err := s.eng.ChooseFile(ctx)
	if err != nil {
		s.update(func(st *State) {
			s.fail("ChooseFile", err, st)
			st.FileName = NoFileSelected
			st.Loaded = false
			st.Phase = Failed
		})
		return nil
	}
	if path == "" {
		debug.Log("store: file choice cancelled")
		s.update(func(st *State) {
			st.FileName = NoFileSelected
			st.Loaded = false
			st.Phase = Idle
		})
		return nil
	}
	s.load(ctx, path)
	return nil
}

// Load retrieves path and makes it the current file.
func (s *Store) Load(ctx context.Context, path string) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()
	s.load(ctx, path)
	return nil
}

// Reload retrieves the current file again.
func (s *Store) Reload(ctx context.Context) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()

	s.mu.Lock()
	path := s.state.FileName
	s.mu.Unlock()
	if path == "" || path == NoFileSelected {
		return ErrNotLoaded
	}
	s.load(ctx, path)
	return nil
}

// load must be called with the request slot held. Content is cleared
// before retrieval and stays empty when retrieval fails.
func (s *Store) load(ctx context.Context, path string) {
	defer debug.LogEnterExit("store.load")()

	s.update(func(st *State) {
		*st = State{
			FileName:  path,
			Content:   sheet.Empty(),
			Processed: sheet.Empty(),
			Key:       st.Key,
			Loading:   true,
			Phase:     Loading,
		}
	})

	c, err := s.eng.RetrieveFileContents(ctx, path)

	s.update(func(st *State) {
		st.Loading = false
		if err != nil {
			s.fail("RetrieveFileContents", err, st)
			st.Loaded = false
			st.Phase = Failed
			return
		}
		fresh := c.ResetTransposition()
		st.Content = fresh
		st.Processed = fresh.Clone()
		st.Key = chord.Unset
		st.Loaded = true
		st.Err = ""
		st.Phase = Loaded
	})
}

// TransposeUp steps every chord one semitone up.
func (s *Store) TransposeUp(ctx context.Context) error {
	return s.transpose(ctx, true)
}

// TransposeDown steps every chord one semitone down.
func (s *Store) TransposeDown(ctx context.Context) error {
	return s.transpose(ctx, false)
}

func (s *Store) transpose(ctx context.Context, up bool) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()

	s.mu.Lock()
	loaded := s.state.Loaded
	current := s.state.Processed.Clone()
	s.mu.Unlock()
	if !loaded {
		return ErrNotLoaded
	}

	op := "TransposeDownOneStep"
	step := s.eng.TransposeDownOneStep
	if up {
		op = "TransposeUpOneStep"
		step = s.eng.TransposeUpOneStep
	}
	next, err := step(ctx, current)

	s.update(func(st *State) {
		if err != nil {
			s.fail(op, err, st)
			return
		}
		st.Content = next
		st.Processed = sheet.Reconcile(next)
		st.Err = ""
	})
	return nil
}

// Export copies the displayed sheet to the clipboard through the engine.
// Content is never changed by an export.
func (s *Store) Export(ctx context.Context) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()

	s.mu.Lock()
	loaded := s.state.Loaded
	current := s.state.Processed.Clone()
	s.mu.Unlock()
	if !loaded {
		return ErrNotLoaded
	}

	if err := s.eng.ExportToClipboard(ctx, current); err != nil {
		s.update(func(st *State) { s.fail("ExportToClipboard", err, st) })
	}
	return nil
}

// SetKey sets the musical key indicator. Unknown keys are ignored.
func (s *Store) SetKey(k string) {
	if !chord.IsKey(k) {
		return
	}
	s.update(func(st *State) { st.Key = k })
}

// Key returns the musical key indicator.
func (s *Store) Key() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Key
}

// KeyChosen reports whether a key other than the unset value is selected.
func (s *Store) KeyChosen() bool {
	return s.Key() != chord.Unset
}

// LineStyle returns the presentation bucket of line i of the displayed
// content. It panics when i is out of range.
func (s *Store) LineStyle(i int) sheet.Bucket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sheet.StyleFor(s.state.Processed.Lines[i].Kind)
}

// ClearError clears the error message.
func (s *Store) ClearError() {
	s.update(func(st *State) { st.Err = "" })
}
