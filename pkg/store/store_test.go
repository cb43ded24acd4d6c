package store

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/vanderheijden86/leadsheet/pkg/chord"
	"github.com/vanderheijden86/leadsheet/pkg/engine"
	"github.com/vanderheijden86/leadsheet/pkg/sheet"
)

// fakeEngine scripts engine responses and records calls.
type fakeEngine struct {
	mu sync.Mutex

	choice    string
	chooseErr error
	files     map[string]sheet.Content
	exportErr error

	calls    []string
	exported []sheet.Content
	logs     []string

	// block, when set, is waited on inside RetrieveFileContents.
	block chan struct{}
}

func (f *fakeEngine) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeEngine) ChooseFile(ctx context.Context) (string, error) {
	f.record("ChooseFile")
	return f.choice, f.chooseErr
}

func (f *fakeEngine) RetrieveFileContents(ctx context.Context, path string) (sheet.Content, error) {
	f.record("RetrieveFileContents " + path)
	if f.block != nil {
		<-f.block
	}
	c, ok := f.files[path]
	if !ok {
		return sheet.Content{}, errors.New("open " + path + ": no such file or directory")
	}
	return c.Clone(), nil
}

func (f *fakeEngine) TransposeUpOneStep(ctx context.Context, c sheet.Content) (sheet.Content, error) {
	f.record("TransposeUpOneStep")
	return engine.Transpose(c, true), nil
}

func (f *fakeEngine) TransposeDownOneStep(ctx context.Context, c sheet.Content) (sheet.Content, error) {
	f.record("TransposeDownOneStep")
	return engine.Transpose(c, false), nil
}

func (f *fakeEngine) ExportToClipboard(ctx context.Context, c sheet.Content) error {
	f.record("ExportToClipboard")
	f.mu.Lock()
	f.exported = append(f.exported, c)
	f.mu.Unlock()
	return f.exportErr
}

func (f *fakeEngine) LogPrint(msg string) {
	f.mu.Lock()
	f.logs = append(f.logs, msg)
	f.mu.Unlock()
}

func (f *fakeEngine) called(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func sampleContent() sheet.Content {
	return sheet.Content{Lines: []sheet.Line{
		{LineNumber: 0, Kind: sheet.KindSection, Text: "[Verse]"},
		{LineNumber: 1, Kind: sheet.KindChords, Text: "C | Am", Runs: []sheet.LetterRun{
			{Kind: sheet.RunChord, OriginalLetters: "C", ChordSymbol: "C"},
			{Kind: sheet.RunText, OriginalLetters: " | "},
			{Kind: sheet.RunChord, OriginalLetters: "Am", ChordSymbol: "Am"},
		}},
		{LineNumber: 2, Kind: sheet.KindLyrics, Text: "Hello world"},
		{LineNumber: 3, Kind: "Bridge?", Text: "odd"},
	}}
}

func loadedStore(t *testing.T) (*Store, *fakeEngine) {
	t.Helper()
	f := &fakeEngine{files: map[string]sheet.Content{"song.txt": sampleContent()}}
	s := New(f)
	if err := s.Load(context.Background(), "song.txt"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if st := s.Snapshot(); st.Phase != Loaded {
		t.Fatalf("phase = %s after load, err %q", st.Phase, st.Err)
	}
	return s, f
}

func TestNewStoreIsIdle(t *testing.T) {
	st := New(&fakeEngine{}).Snapshot()
	if st.Phase != Idle || st.Loaded || st.Loading {
		t.Errorf("unexpected initial state %+v", st)
	}
	if st.Key != chord.Unset {
		t.Errorf("key = %q, want unset", st.Key)
	}
}

func TestOpenLoadsChosenFile(t *testing.T) {
	f := &fakeEngine{
		choice: "song.txt",
		files:  map[string]sheet.Content{"song.txt": sampleContent()},
	}
	s := New(f)
	s.SetKey("G")
	if err := s.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	st := s.Snapshot()
	if st.FileName != "song.txt" || !st.Loaded || st.Loading || st.Phase != Loaded {
		t.Errorf("state after open = %+v", st)
	}
	if st.Key != chord.Unset {
		t.Errorf("key = %q, want unset after load", st.Key)
	}
	if got := st.Processed.Lines[1].Text; got != "C | Am" {
		t.Errorf("chord line = %q", got)
	}
}

// A cancelled choice sets the placeholder and never retrieves.
func TestOpenCancelled(t *testing.T) {
	f := &fakeEngine{choice: ""}
	s := New(f)
	if err := s.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	st := s.Snapshot()
	if st.FileName != NoFileSelected {
		t.Errorf("file name = %q", st.FileName)
	}
	if st.Loaded || st.Loading {
		t.Errorf("loaded=%v loading=%v", st.Loaded, st.Loading)
	}
	if n := f.called("RetrieveFileContents"); n != 0 {
		t.Errorf("RetrieveFileContents called %d times", n)
	}
}

func TestOpenCancelledKeepsContent(t *testing.T) {
	s, f := loadedStore(t)
	f.choice = ""
	before := s.Snapshot().Processed.String()
	if err := s.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := s.Snapshot().Processed.String(); got != before {
		t.Errorf("content changed on cancel:\n%s", got)
	}
}

func TestOpenChooserError(t *testing.T) {
	f := &fakeEngine{chooseErr: errors.New("dialog crashed")}
	s := New(f)
	if err := s.Open(context.Background()); err != nil {
		t.Fatalf("Open returned %v, want error in state", err)
	}
	st := s.Snapshot()
	if st.Err == "" {
		t.Error("error message not set")
	}
	if len(f.logs) == 0 {
		t.Error("raw error not logged")
	}
	if st.Phase != Failed || st.Loaded || st.Loading {
		t.Errorf("phase = %v loaded = %v loading = %v, want failed and not loaded", st.Phase, st.Loaded, st.Loading)
	}
	if st.FileName != NoFileSelected {
		t.Errorf("file name = %q, want placeholder", st.FileName)
	}
}

// A failed retrieval leaves empty content and an error message.
func TestLoadFailure(t *testing.T) {
	f := &fakeEngine{files: map[string]sheet.Content{}}
	s := New(f)
	if err := s.Load(context.Background(), "missing.txt"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	st := s.Snapshot()
	if st.Processed.Len() != 0 || st.Content.Len() != 0 {
		t.Errorf("content not empty: %d lines", st.Processed.Len())
	}
	if st.Content.Lines == nil || st.Processed.Lines == nil {
		t.Error("cleared content should be empty, not nil")
	}
	if st.Err == "" {
		t.Error("error message empty")
	}
	if st.Loading || st.Loaded || st.Phase != Failed {
		t.Errorf("state = %+v", st)
	}
	if len(f.logs) != 1 || !strings.Contains(f.logs[0], "missing.txt") {
		t.Errorf("logs = %q", f.logs)
	}
}

func TestFailedReloadClearsContent(t *testing.T) {
	s, f := loadedStore(t)
	f.files = map[string]sheet.Content{}
	if err := s.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	st := s.Snapshot()
	if st.Processed.Len() != 0 {
		t.Errorf("content kept after failed reload")
	}
	if st.Err == "" || st.Phase != Failed {
		t.Errorf("state = %+v", st)
	}
}

func TestReloadWithoutFile(t *testing.T) {
	s := New(&fakeEngine{})
	if err := s.Reload(context.Background()); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("err = %v, want ErrNotLoaded", err)
	}
}

// Loading a new file drops transposition and resets the key.
func TestFreshLoadResetsTransposition(t *testing.T) {
	s, f := loadedStore(t)
	stale := sampleContent()
	stale.Lines[1].Runs[0].TransposedLetters = "D"
	f.files["other.txt"] = stale

	s.SetKey("Am")
	if err := s.TransposeUp(context.Background()); err != nil {
		t.Fatalf("TransposeUp: %v", err)
	}
	if err := s.Load(context.Background(), "other.txt"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	st := s.Snapshot()
	if st.Processed.IsTransposed() || st.Content.IsTransposed() {
		t.Error("transposition survived a fresh load")
	}
	if st.Key != chord.Unset {
		t.Errorf("key = %q", st.Key)
	}
	if got := st.Processed.Lines[1].Text; got != "C | Am" {
		t.Errorf("chord line = %q", got)
	}
}

func TestTransposeAccumulatesFromReconciled(t *testing.T) {
	s, _ := loadedStore(t)
	ctx := context.Background()
	s.SetKey("C")

	steps := []struct {
		up   bool
		want string
	}{
		{true, "C# | A#m"},
		{true, "D | Bm"},
		{false, "Db | Bbm"},
		{false, "C | Am"},
	}

	for i, step := range steps {
		var err error
		if step.up {
			err = s.TransposeUp(ctx)
		} else {
			err = s.TransposeDown(ctx)
		}
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		st := s.Snapshot()
		if got := st.Processed.Lines[1].Text; got != step.want {
			t.Errorf("step %d: chord line = %q, want %q", i, got, step.want)
		}
		if got := st.Processed.Lines[2].Text; got != "Hello world" {
			t.Errorf("step %d: lyrics changed to %q", i, got)
		}
	}
	if got := s.Key(); got != "C" {
		t.Errorf("transposition changed the key to %q", got)
	}
}

func TestTransposeRequiresLoadedFile(t *testing.T) {
	s := New(&fakeEngine{})
	if err := s.TransposeUp(context.Background()); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("TransposeUp err = %v", err)
	}
	if err := s.Export(context.Background()); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Export err = %v", err)
	}
}

func TestExport(t *testing.T) {
	s, f := loadedStore(t)
	if err := s.TransposeUp(context.Background()); err != nil {
		t.Fatalf("TransposeUp: %v", err)
	}
	if err := s.Export(context.Background()); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(f.exported) != 1 {
		t.Fatalf("exported %d times", len(f.exported))
	}
	if got := f.exported[0].Lines[1].Text; got != "C# | A#m" {
		t.Errorf("exported chord line %q, want reconciled text", got)
	}
	if st := s.Snapshot(); st.Err != "" {
		t.Errorf("error = %q", st.Err)
	}
}

func TestExportFailureKeepsContent(t *testing.T) {
	s, f := loadedStore(t)
	f.exportErr = errors.New("clipboard unavailable")
	before := s.Snapshot()
	if err := s.Export(context.Background()); err != nil {
		t.Fatalf("Export: %v", err)
	}
	after := s.Snapshot()
	if after.Err != "clipboard unavailable" {
		t.Errorf("error = %q", after.Err)
	}
	if after.Processed.String() != before.Processed.String() || after.Phase != Loaded {
		t.Error("export failure changed content")
	}
	s.ClearError()
	if s.Snapshot().Err != "" {
		t.Error("ClearError left the message")
	}
}

func TestBusyRejectsSecondRequest(t *testing.T) {
	f := &fakeEngine{
		files: map[string]sheet.Content{"song.txt": sampleContent()},
		block: make(chan struct{}),
	}
	s := New(f)

	done := make(chan error, 1)
	go func() { done <- s.Load(context.Background(), "song.txt") }()

	// wait until the load is inside the engine
	for f.called("RetrieveFileContents") == 0 {
		runtime.Gosched()
	}
	if !s.Busy() {
		t.Fatal("store not busy during load")
	}
	st := s.Snapshot()
	if !st.Loading || st.Phase != Loading || st.Processed.Len() != 0 {
		t.Errorf("mid-load state = %+v", st)
	}
	if err := s.TransposeUp(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("TransposeUp err = %v, want ErrBusy", err)
	}
	if err := s.Open(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("Open err = %v, want ErrBusy", err)
	}

	close(f.block)
	if err := <-done; err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Busy() {
		t.Error("still busy after load")
	}
	if f.called("ChooseFile") != 0 {
		t.Error("rejected Open reached the engine")
	}
}

func TestSetKey(t *testing.T) {
	s := New(&fakeEngine{})
	if s.KeyChosen() {
		t.Fatal("key chosen on a new store")
	}
	s.SetKey("F#m")
	if s.Key() != "F#m" || !s.KeyChosen() {
		t.Errorf("key = %q", s.Key())
	}
	s.SetKey("H")
	if s.Key() != "F#m" {
		t.Errorf("unknown key accepted: %q", s.Key())
	}
	s.SetKey(chord.Unset)
	if s.KeyChosen() {
		t.Error("unset key reported as chosen")
	}
}

func TestLineStyle(t *testing.T) {
	s, _ := loadedStore(t)
	want := []sheet.Bucket{sheet.BucketSection, sheet.BucketChords, sheet.BucketLyrics, sheet.BucketDefault}
	for i, b := range want {
		if got := s.LineStyle(i); got != b {
			t.Errorf("LineStyle(%d) = %s, want %s", i, got, b)
		}
	}
}

func TestLineStyleOutOfRangePanics(t *testing.T) {
	for _, idx := range []int{-1, 4, 100} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("LineStyle(%d) did not panic", idx)
				}
			}()
			s, _ := loadedStore(t)
			s.LineStyle(idx)
		}()
	}

	defer func() {
		if recover() == nil {
			t.Error("LineStyle on empty content did not panic")
		}
	}()
	New(&fakeEngine{}).LineStyle(0)
}

func TestSnapshotIsACopy(t *testing.T) {
	s, _ := loadedStore(t)
	st := s.Snapshot()
	st.Processed.Lines[1].Runs[0].TransposedLetters = "X"
	st.Processed.Lines[2].Text = "changed"
	again := s.Snapshot()
	if again.Processed.Lines[1].Runs[0].TransposedLetters != "" || again.Processed.Lines[2].Text != "Hello world" {
		t.Error("snapshot aliases store state")
	}
}

func TestPhaseString(t *testing.T) {
	if Loading.String() != "loading" || Phase(9).String() != "Phase(9)" {
		t.Errorf("unexpected phase names %q %q", Loading, Phase(9))
	}
}
