// Package ui provides the terminal user interface for leadsheet.
package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/leadsheet/pkg/chord"
	"github.com/vanderheijden86/leadsheet/pkg/config"
	"github.com/vanderheijden86/leadsheet/pkg/debug"
	"github.com/vanderheijden86/leadsheet/pkg/metrics"
	"github.com/vanderheijden86/leadsheet/pkg/store"
	"github.com/vanderheijden86/leadsheet/pkg/watcher"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	// header and footer rows around the sheet
	chromeHeight = 2
)

type focus int

const (
	focusSheet focus = iota
	focusPicker
	focusKey
	focusHelp
)

// opDoneMsg reports that a store operation settled.
type opDoneMsg struct {
	op  string
	err error
}

// openFileMsg asks the model to load a file given on the command line.
type openFileMsg struct {
	path string
}

// FileChangedMsg is sent when the watched song changes on disk.
type FileChangedMsg struct {
	Path string
}

// statusExpiredMsg clears a transient status message.
type statusExpiredMsg struct {
	seq int
}

// Options wires a Model to its collaborators.
type Options struct {
	Store   *store.Store
	Bridge  *PickerBridge
	Watcher *watcher.Watcher // nil disables live reload
	Config  config.Config
	// InitialFile is loaded on start when set.
	InitialFile string
}

// Model is the Bubble Tea model for the viewer.
type Model struct {
	ctx     context.Context
	store   *store.Store
	bridge  *PickerBridge
	watcher *watcher.Watcher
	cfg     config.Config
	theme   Theme

	width  int
	height int
	ready  bool
	focus  focus

	viewport viewport.Model
	spinner  spinner.Model

	picker    filepicker.Model
	pickReply chan string
	keyForm   *huh.Form
	helpView  string

	pending         string
	showLineNumbers bool
	status          string
	statusSeq       int
	initialFile     string
	watching        string
}

// NewModel creates the viewer model.
func NewModel(ctx context.Context, opts Options) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ColorPrimary)

	return Model{
		ctx:             ctx,
		store:           opts.Store,
		bridge:          opts.Bridge,
		watcher:         opts.Watcher,
		cfg:             opts.Config,
		theme:           DefaultTheme(lipgloss.DefaultRenderer()),
		width:           defaultWidth,
		height:          defaultHeight,
		viewport:        viewport.New(defaultWidth, defaultHeight-chromeHeight),
		spinner:         sp,
		showLineNumbers: opts.Config.UI.ShowLineNumbers,
		initialFile:     opts.InitialFile,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{WaitForPickRequestCmd(m.bridge), ReadyTimeoutCmd()}
	if m.watcher != nil {
		cmds = append(cmds, WatchFileCmd(m.watcher))
	}
	if m.initialFile != "" {
		path := m.initialFile
		cmds = append(cmds, func() tea.Msg { return openFileMsg{path: path} })
	}
	return tea.Batch(cmds...)
}

// ReadyTimeoutMsg marks the UI ready when the terminal is slow to report
// its size.
type ReadyTimeoutMsg struct{}

// ReadyTimeoutCmd sends ReadyTimeoutMsg after 100ms.
func ReadyTimeoutCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return ReadyTimeoutMsg{}
	})
}

// WatchFileCmd waits for the next change of the watched song.
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		return FileChangedMsg{Path: <-w.Changed()}
	}
}

func statusExpireCmd(seq int) tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return statusExpiredMsg{seq: seq}
	})
}

// dispatch runs fn off the UI goroutine unless a request is already in
// flight.
func (m *Model) dispatch(op string, fn func(context.Context) error) tea.Cmd {
	if m.pending != "" || m.store.Busy() {
		return m.setStatus(fmt.Sprintf("busy (%s)", m.pending))
	}
	m.pending = op
	ctx := m.ctx
	debug.Log("ui: dispatch %s", op)
	run := func() tea.Msg {
		return opDoneMsg{op: op, err: fn(ctx)}
	}
	return tea.Batch(run, m.spinner.Tick)
}

func (m *Model) setStatus(s string) tea.Cmd {
	m.status = s
	m.statusSeq++
	return statusExpireCmd(m.statusSeq)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The key form needs every message while it is open.
	if m.focus == focusKey && m.keyForm != nil {
		if k, ok := msg.(tea.KeyMsg); !ok || k.String() != "esc" {
			return m.updateKeyForm(msg)
		}
		m.closeKeyForm()
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.viewport.Width = msg.Width
		m.viewport.Height = max(1, msg.Height-chromeHeight)
		if m.focus == focusPicker {
			m.picker, _ = m.picker.Update(m.pickerSizeMsg())
		}
		if m.helpView != "" {
			m.helpView = ""
			if m.focus == focusHelp {
				m.helpView = m.renderHelpView()
			}
		}
		if m.pending == "" {
			m.refreshViewport()
		}
		return m, nil

	case ReadyTimeoutMsg:
		m.ready = true
		return m, nil

	case openFileMsg:
		path := msg.path
		return m, m.dispatch("load", func(ctx context.Context) error {
			return m.store.Load(ctx, path)
		})

	case opDoneMsg:
		return m.handleOpDone(msg)

	case pickRequestMsg:
		return m.openPicker(msg.req)

	case FileChangedMsg:
		var cmds []tea.Cmd
		if m.watcher != nil {
			cmds = append(cmds, WatchFileCmd(m.watcher))
		}
		if msg.Path != "" && msg.Path == m.watching {
			debug.Log("ui: %s changed on disk", msg.Path)
			cmds = append(cmds, m.dispatch("reload", m.store.Reload))
		}
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		if m.pending == "" && !m.store.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case statusExpiredMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
		}
		return m, nil

	case tea.KeyMsg:
		switch m.focus {
		case focusPicker:
			return m.handlePickerKeys(msg)
		case focusHelp:
			return m.handleHelpKeys(msg)
		default:
			return m.handleSheetKeys(msg)
		}
	}

	if m.focus == focusPicker {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleOpDone(msg opDoneMsg) (tea.Model, tea.Cmd) {
	m.pending = ""
	var cmd tea.Cmd
	switch {
	case errors.Is(msg.err, store.ErrBusy):
		cmd = m.setStatus("busy, try again")
	case errors.Is(msg.err, store.ErrNotLoaded):
		cmd = m.setStatus("open a song first (o)")
	case msg.err != nil:
		cmd = m.setStatus(msg.err.Error())
	}

	st := m.store.Snapshot()
	switch msg.op {
	case "open", "load", "reload":
		m.viewport.GotoTop()
		m.followFile(st)
	case "export":
		if msg.err == nil && st.Err == "" {
			cmd = m.setStatus("Copied to clipboard")
		}
	}
	m.refreshViewport()
	return m, cmd
}

// followFile points the watcher at the loaded file.
func (m *Model) followFile(st store.State) {
	if m.watcher == nil || !m.cfg.Files.Watch || !st.Loaded {
		return
	}
	abs, err := filepath.Abs(st.FileName)
	if err != nil || abs == m.watching {
		return
	}
	if err := m.watcher.Watch(abs); err != nil {
		debug.Log("ui: cannot watch %s: %v", abs, err)
		return
	}
	m.watching = abs
}

func (m Model) handleSheetKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "o":
		return m, m.dispatch("open", m.store.Open)
	case "+", "=", "u":
		return m, m.dispatch("transpose up", m.store.TransposeUp)
	case "-", "d":
		return m, m.dispatch("transpose down", m.store.TransposeDown)
	case "c":
		return m, m.dispatch("export", m.store.Export)
	case "r":
		return m, m.dispatch("reload", m.store.Reload)
	case "k":
		return m.openKeyForm()
	case "n":
		m.showLineNumbers = !m.showLineNumbers
		if m.pending == "" {
			m.refreshViewport()
		}
		return m, nil
	case "?":
		m.focus = focusHelp
		m.helpView = m.renderHelpView()
		return m, nil
	case "esc":
		m.store.ClearError()
		m.status = ""
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleHelpKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "?", "esc", "q":
		m.focus = focusSheet
	}
	return m, nil
}

func (m Model) renderHelpView() string {
	out, err := renderHelp(min(m.width-4, 72))
	if err != nil {
		debug.Log("ui: help render failed: %v", err)
		return helpMarkdown
	}
	return out
}

func (m Model) pickerSizeMsg() tea.WindowSizeMsg {
	return tea.WindowSizeMsg{Width: m.width, Height: m.height - chromeHeight}
}

func (m Model) openPicker(req pickRequest) (tea.Model, tea.Cmd) {
	fp := filepicker.New()
	fp.AutoHeight = true
	fp.ShowHidden = false
	fp.AllowedTypes = m.cfg.Files.Extensions
	fp.CurrentDirectory = req.dir
	if fp.CurrentDirectory == "" {
		fp.CurrentDirectory = "."
	}
	fp, _ = fp.Update(m.pickerSizeMsg())

	m.picker = fp
	m.pickReply = req.reply
	m.focus = focusPicker
	return m, tea.Batch(m.picker.Init(), WaitForPickRequestCmd(m.bridge))
}

func (m *Model) answerPicker(path string) {
	if m.pickReply != nil {
		m.pickReply <- path
		m.pickReply = nil
	}
	m.focus = focusSheet
}

func (m Model) handlePickerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.answerPicker("")
		return m, tea.Quit
	case "esc", "q":
		m.answerPicker("")
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.answerPicker(path)
		return m, cmd
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		return m, tea.Batch(cmd, m.setStatus(fmt.Sprintf("not a song file: %s", filepath.Base(path))))
	}
	return m, cmd
}

func (m Model) openKeyForm() (tea.Model, tea.Cmd) {
	current := m.store.Key()
	options := append([]string{chord.Unset}, chord.Keys...)
	m.keyForm = huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Key("key").
			Title("Musical key").
			Options(huh.NewOptions(options...)...).
			Height(10).
			Value(&current),
	)).WithTheme(huh.ThemeDracula()).WithShowHelp(false)
	m.focus = focusKey
	return m, m.keyForm.Init()
}

func (m Model) updateKeyForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "ctrl+c" {
		return m, tea.Quit
	}
	model, cmd := m.keyForm.Update(msg)
	if f, ok := model.(*huh.Form); ok {
		m.keyForm = f
	}
	switch m.keyForm.State {
	case huh.StateCompleted:
		m.store.SetKey(m.keyForm.GetString("key"))
		m.closeKeyForm()
		return m, nil
	case huh.StateAborted:
		m.closeKeyForm()
		return m, nil
	}
	return m, cmd
}

func (m *Model) closeKeyForm() {
	m.keyForm = nil
	m.focus = focusSheet
}

// refreshViewport re-renders the sheet from the store. Only call it when no
// request is in flight.
func (m *Model) refreshViewport() {
	defer metrics.Timer(metrics.SheetRender)()

	st := m.store.Snapshot()
	width := m.viewport.Width
	if m.showLineNumbers {
		width -= m.theme.LineNumber.GetWidth() + m.theme.LineNumber.GetMarginRight()
	}

	var b strings.Builder
	for i, line := range st.Processed.Lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		if m.showLineNumbers {
			b.WriteString(m.theme.LineNumber.Render(fmt.Sprintf("%d", line.LineNumber+1)))
		}
		text := truncateWidth(line.Text, width)
		b.WriteString(m.theme.LineStyle(m.store.LineStyle(i)).Render(text))
	}
	m.viewport.SetContent(b.String())
}

// truncateWidth cuts s to maxWidth cells. Chord lines are never wrapped
// because wrapping would break their alignment with the lyrics.
func truncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	return runewidth.Truncate(s, maxWidth, "…")
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	st := m.store.Snapshot()

	var body string
	switch {
	case m.focus == focusPicker:
		body = m.theme.Header.Render("Open song") + m.theme.Muted.Render("  (enter select, esc cancel)") +
			"\n" + m.picker.View()
	case m.focus == focusKey && m.keyForm != nil:
		body = m.theme.Modal.Render(m.keyForm.View())
	case m.focus == focusHelp:
		body = m.helpView
	case st.Loading:
		body = fmt.Sprintf("%s Loading %s...", m.spinner.View(), filepath.Base(st.FileName))
	case st.Processed.Len() == 0 && st.Err == "":
		body = m.theme.Muted.Render("Press o to open a song, ? for help.")
	default:
		body = m.viewport.View()
	}

	body = lipgloss.NewStyle().Height(max(1, m.height-chromeHeight)).MaxHeight(max(1, m.height-chromeHeight)).Render(body)
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(st), body, m.renderFooter(st))
}

func (m Model) renderHeader(st store.State) string {
	name := st.FileName
	if name == "" {
		name = "no file"
	} else if name != store.NoFileSelected {
		name = filepath.Base(name)
	}
	parts := []string{
		m.theme.Header.Render("♪ leadsheet"),
		m.theme.Base.Render(name),
		m.theme.Muted.Render("Key: ") + m.theme.Base.Render(st.Key),
	}
	if st.Processed.IsTransposed() {
		parts = append(parts, m.theme.Chords.Render("transposed"))
	}
	if m.pending != "" {
		parts = append(parts, m.spinner.View()+" "+m.theme.Muted.Render(m.pending))
	}
	return lipgloss.NewStyle().MaxWidth(max(m.width, 1)).Render(strings.Join(parts, m.theme.Muted.Render(" │ ")))
}

func (m Model) renderFooter(st store.State) string {
	switch {
	case st.Err != "":
		return m.theme.Error.Render("Error: " + st.Err)
	case m.status != "":
		return m.theme.Success.Render(m.status)
	default:
		return m.theme.Muted.Render("o open  +/- transpose  c copy  k key  r reload  ? help  q quit")
	}
}

// FileName returns the file name shown in the header.
func (m Model) FileName() string {
	return m.store.Snapshot().FileName
}

// Pending returns the operation in flight, or "".
func (m Model) Pending() string {
	return m.pending
}
