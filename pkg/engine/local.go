package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"

	"github.com/vanderheijden86/leadsheet/pkg/debug"
	"github.com/vanderheijden86/leadsheet/pkg/export"
	"github.com/vanderheijden86/leadsheet/pkg/library"
	"github.com/vanderheijden86/leadsheet/pkg/metrics"
	"github.com/vanderheijden86/leadsheet/pkg/parser"
	"github.com/vanderheijden86/leadsheet/pkg/sheet"
)

// ErrNoChooser is returned by ChooseFile when the engine has no way to ask
// the user for a file.
var ErrNoChooser = errors.New("no file chooser configured")

// LocalOption configures a Local engine.
type LocalOption func(*Local)

// WithChooser sets the file chooser.
func WithChooser(c Chooser) LocalOption {
	return func(l *Local) {
		l.chooser = c
	}
}

// WithStartDir sets the directory the first ChooseFile starts in.
func WithStartDir(dir string) LocalOption {
	return func(l *Local) {
		l.lastDir = dir
	}
}

// WithLibrary enables the parse cache and recents tracking.
func WithLibrary(lib *library.Library) LocalOption {
	return func(l *Local) {
		l.lib = lib
	}
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(write func(string) error) LocalOption {
	return func(l *Local) {
		l.writeClipboard = write
	}
}

// WithExportFormat sets the clipboard serialisation ("text" or "markdown").
func WithExportFormat(format string) LocalOption {
	return func(l *Local) {
		l.exportFormat = format
	}
}

// WithLogger replaces the LogPrint sink.
func WithLogger(fn func(string)) LocalOption {
	return func(l *Local) {
		l.log = fn
	}
}

// Local is an in-process Engine reading song files from disk.
type Local struct {
	chooser        Chooser
	lib            *library.Library
	writeClipboard func(string) error
	exportFormat   string
	log            func(string)

	mu       sync.Mutex
	lastDir  string
	lastFile string
}

// NewLocal creates a Local engine.
func NewLocal(opts ...LocalOption) *Local {
	l := &Local{
		writeClipboard: clipboard.WriteAll,
		exportFormat:   export.FormatText,
		log:            func(msg string) { debug.Log("%s", msg) },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ChooseFile asks the configured chooser for a file, starting in the
// directory of the previous choice.
func (l *Local) ChooseFile(ctx context.Context) (string, error) {
	if l.chooser == nil {
		return "", ErrNoChooser
	}
	l.mu.Lock()
	dir := l.lastDir
	l.mu.Unlock()

	path, err := l.chooser.Choose(ctx, dir)
	if err != nil {
		return "", fmt.Errorf("unable to choose song file: %w", err)
	}
	if path != "" {
		l.mu.Lock()
		l.lastDir = filepath.Dir(path)
		l.mu.Unlock()
	}
	return path, nil
}

// LastDir returns the directory the next ChooseFile starts in.
func (l *Local) LastDir() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastDir
}

// RetrieveFileContents reads and parses the file at path. Files ending in
// .json are decoded as encoded sheet content. The result never carries
// transposed letters.
func (l *Local) RetrieveFileContents(ctx context.Context, path string) (sheet.Content, error) {
	defer debug.LogEnterExit("engine.RetrieveFileContents")()
	defer metrics.Timer(metrics.FileRetrieve)()
	if err := ctx.Err(); err != nil {
		return sheet.Content{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		l.LogPrint(fmt.Sprintf("retrieve contents of %s caught %v", path, err))
		return sheet.Content{}, err
	}
	if info.IsDir() {
		return sheet.Content{}, fmt.Errorf("%s is a directory", path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	if l.lib != nil {
		c, ok, err := l.lib.Cached(abs, info.Size(), info.ModTime())
		if err != nil {
			l.LogPrint(fmt.Sprintf("ignoring parse cache for %s: %v", abs, err))
		} else if ok {
			metrics.CacheHits.Inc()
			l.remember(abs)
			return c.ResetTransposition(), nil
		}
		metrics.CacheMisses.Inc()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		l.LogPrint(fmt.Sprintf("retrieve contents of %s caught %v", path, err))
		return sheet.Content{}, err
	}

	var c sheet.Content
	if strings.EqualFold(filepath.Ext(path), ".json") {
		c, err = sheet.Decode(data)
		if err != nil {
			return sheet.Content{}, fmt.Errorf("%s: %w", path, err)
		}
	} else {
		c = parser.Parse(string(data))
	}
	c = c.ResetTransposition()

	if l.lib != nil {
		if err := l.lib.Store(abs, info.Size(), info.ModTime(), c); err != nil {
			l.LogPrint(fmt.Sprintf("caching %s: %v", abs, err))
		}
	}
	l.remember(abs)
	return c, nil
}

func (l *Local) remember(path string) {
	l.mu.Lock()
	l.lastFile = path
	l.mu.Unlock()
	if l.lib != nil {
		if err := l.lib.RecordOpen(path, time.Now()); err != nil {
			l.LogPrint(fmt.Sprintf("recording %s: %v", path, err))
		}
	}
}

// TransposeUpOneStep implements Engine.
func (l *Local) TransposeUpOneStep(ctx context.Context, c sheet.Content) (sheet.Content, error) {
	if err := ctx.Err(); err != nil {
		return sheet.Content{}, err
	}
	return Transpose(c, true), nil
}

// TransposeDownOneStep implements Engine.
func (l *Local) TransposeDownOneStep(ctx context.Context, c sheet.Content) (sheet.Content, error) {
	if err := ctx.Err(); err != nil {
		return sheet.Content{}, err
	}
	return Transpose(c, false), nil
}

// ExportToClipboard implements Engine.
func (l *Local) ExportToClipboard(ctx context.Context, c sheet.Content) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	title := strings.TrimSuffix(filepath.Base(l.lastFile), filepath.Ext(l.lastFile))
	l.mu.Unlock()
	if title == "." {
		title = ""
	}

	text, err := export.Render(c, l.exportFormat, title)
	if err != nil {
		return err
	}
	if err := l.writeClipboard(text); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}

// LogPrint implements Engine.
func (l *Local) LogPrint(msg string) {
	if l.log != nil {
		l.log(msg)
	}
}
