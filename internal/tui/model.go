package tui

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"winnow/internal/errors"
	"winnow/internal/flags"
	"winnow/internal/log"
	"winnow/internal/preload"
	"winnow/internal/tui/common"
	"winnow/internal/tui/components"
	"winnow/internal/tui/messages"
	"winnow/internal/tui/views"
	"winnow/internal/watch"
	"winnow/pkg/types"
)

// Session is the part of the triage session the screen drives
type Session interface {
	State() types.State
	Slots() flags.Slots
	Dispose(action types.Action) (types.DispositionResult, error)
	Reset() (types.State, error)
	Rescan() (types.State, error)
	Content() (preload.Content, bool)
	DryRun() bool
}

// Model is the bubbletea model of the triage screen
type Model struct {
	session Session
	watcher *watch.Watcher
	keys    types.KeyMap
	help    help.Model
	status  *components.StatusBar

	state   types.State
	slots   flags.Slots
	content *preload.Content
	mode    common.Mode
	busy    bool
	stale   bool
	width   int
}

// New creates the model. watcher may be nil.
func New(session Session, watcher *watch.Watcher) *Model {
	return &Model{
		session: session,
		watcher: watcher,
		keys:    types.DefaultKeyMap(),
		help:    help.New(),
		status:  components.NewStatusBar(),
		state:   session.State(),
		slots:   session.Slots(),
		mode:    common.Triage,
	}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadContent(), m.waitForChange())
}

// View implements tea.Model
func (m *Model) View() string {
	return views.RenderMainView(m)
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case messages.DisposedMsg:
		return m.handleDisposed(msg)

	case messages.RebuiltMsg:
		m.busy = false
		m.status.SetLoading(false)
		if msg.Err != nil {
			m.status.SetText(msg.Err.Error(), components.Error)
			return m, nil
		}
		m.state = msg.State
		m.content = nil
		m.stale = false
		if msg.Reset {
			m.status.SetText("Decisions forgotten, starting over", components.Success)
		} else {
			m.status.SetText(fmt.Sprintf("Rescanned, %d pending", msg.State.Remaining()), components.Info)
		}
		return m, m.loadContent()

	case messages.ContentMsg:
		if m.state.Current != nil && msg.Content.Name == m.state.Current.Name {
			c := msg.Content
			m.content = &c
		}
		return m, nil

	case messages.ChangeMsg:
		m.stale = true
		return m, m.waitForChange()

	case messages.WatchClosedMsg:
		return m, nil
	}

	return m, m.status.Update(msg)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == common.ConfirmReset {
		switch {
		case msg.String() == "ctrl+c":
			return m, tea.Quit
		case key.Matches(msg, m.keys.Confirm):
			m.mode = common.Triage
			return m.startRebuild(true)
		case key.Matches(msg, m.keys.Cancel):
			m.mode = common.Triage
			m.status.Clear()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	// one operation at a time
	if m.busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Keep):
		return m.startDispose(types.Keep())
	case key.Matches(msg, m.keys.Reject):
		return m.startDispose(types.Reject())
	case key.Matches(msg, m.keys.Sort):
		if slot, ok := types.SortSlot(msg.String()); ok {
			return m.startDispose(types.SortTo(slot))
		}
	case key.Matches(msg, m.keys.Rescan):
		return m.startRebuild(false)
	case key.Matches(msg, m.keys.Reset):
		m.mode = common.ConfirmReset
	}
	return m, nil
}

func (m *Model) startDispose(action types.Action) (tea.Model, tea.Cmd) {
	if m.state.Current == nil {
		return m, nil
	}
	if action.Kind == types.ActionSort && !m.slots[action.Slot].Named() {
		m.status.SetText(fmt.Sprintf("Flag %d has no name; run: winnow flags rename %d <name>", action.Slot+1, action.Slot+1), components.Warning)
		return m, nil
	}
	if m.watcher != nil && action.Moves() {
		m.watcher.Suppress(m.state.Current.Name)
	}

	m.busy = true
	m.status.SetLoading(true)
	m.status.SetText(fmt.Sprintf("%s %s", action, m.state.Current.Name), components.Info)

	session := m.session
	return m, tea.Batch(m.status.Tick(), func() tea.Msg {
		res, err := session.Dispose(action)
		return messages.DisposedMsg{Result: res, Err: err}
	})
}

func (m *Model) handleDisposed(msg messages.DisposedMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	m.status.SetLoading(false)
	m.state = m.session.State()
	m.content = nil

	switch {
	case msg.Err != nil:
		m.status.SetText(describeError(msg.Err), components.Error)
	case msg.Result.Warning != nil:
		m.status.SetText("Not recorded as viewed: "+msg.Result.Warning.Error(), components.Warning)
	case msg.Result.Action.Moves() && !msg.Result.Moved:
		m.status.SetText(fmt.Sprintf("Would move %s to %s", msg.Result.Entry.Name, relative(m.state.Dir, msg.Result.DestinationPath)), components.Info)
	case msg.Result.Action.Moves():
		m.status.SetText(fmt.Sprintf("%s → %s", msg.Result.Entry.Name, relative(m.state.Dir, msg.Result.DestinationPath)), components.Success)
	case m.session.DryRun():
		m.status.SetText("Would keep "+msg.Result.Entry.Name, components.Info)
	default:
		m.status.SetText("Kept "+msg.Result.Entry.Name, components.Info)
	}
	return m, m.loadContent()
}

func (m *Model) startRebuild(reset bool) (tea.Model, tea.Cmd) {
	m.busy = true
	m.status.SetLoading(true)
	m.status.SetText("Scanning", components.Info)

	session := m.session
	return m, tea.Batch(m.status.Tick(), func() tea.Msg {
		var (
			state types.State
			err   error
		)
		if reset {
			state, err = session.Reset()
		} else {
			state, err = session.Rescan()
		}
		return messages.RebuiltMsg{State: state, Reset: reset, Err: err}
	})
}

func (m *Model) loadContent() tea.Cmd {
	if m.state.Current == nil {
		return nil
	}
	session := m.session
	return func() tea.Msg {
		content, ok := session.Content()
		if !ok {
			return nil
		}
		return messages.ContentMsg{Content: content}
	}
}

func (m *Model) waitForChange() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	changes := m.watcher.Changes()
	return func() tea.Msg {
		change, ok := <-changes
		if !ok {
			return messages.WatchClosedMsg{}
		}
		log.LogWithFields(log.F("name", change.Name), log.F("op", change.Op.String())).Debug("Directory changed")
		return messages.ChangeMsg{Change: change}
	}
}

func describeError(err error) string {
	switch {
	case errors.IsSlotUnnamed(err):
		return "That flag has no name yet"
	case errors.IsBusy(err):
		return "Still working on the previous decision"
	case errors.IsExhausted(err):
		return "Nothing left to decide"
	case errors.IsMoveError(err):
		return "Move failed: " + err.Error()
	default:
		return err.Error()
	}
}

func relative(base, path string) string {
	if rel, err := filepath.Rel(base, path); err == nil {
		return rel
	}
	return path
}

// State returns the last state the screen rendered
func (m *Model) State() types.State { return m.state }

// Slots returns the flag slots shown in the legend
func (m *Model) Slots() flags.Slots { return m.slots }

// Content returns preloaded content for the current entry, if any
func (m *Model) Content() *preload.Content { return m.content }

func (m *Model) Mode() common.Mode  { return m.mode }
func (m *Model) Busy() bool         { return m.busy }
func (m *Model) Stale() bool        { return m.stale }
func (m *Model) ShowHelp() bool     { return m.help.ShowAll }
func (m *Model) StatusView() string { return m.status.View() }
func (m *Model) HelpView() string   { return m.help.View(m.keys) }
func (m *Model) Width() int         { return m.width }

var _ common.ModelReader = (*Model)(nil)
