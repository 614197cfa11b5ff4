// Package tui is the interactive todo screen: an input box for new todos
// above a list whose rows are either displayed or edited in place.
//
// All store mutations happen in Update. Remote calls run as tea.Cmds and
// report back through messages; overlapping calls are not coordinated
// and the last response to arrive wins.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/tada-sync/internal/app"
	"github.com/Makepad-fr/tada-sync/internal/remote"
	"github.com/Makepad-fr/tada-sync/internal/ui"
)

type focus int

const (
	focusList focus = iota
	focusInput
)

type Model struct {
	ctx     context.Context
	session *app.Session
	keys    keyMap

	list    list.Model
	input   textinput.Model // pending new todo
	edit    textinput.Model // edit cursor text
	spinner spinner.Model
	focus   focus

	inflight  int
	status    string
	statusErr bool

	width, height int
}

// New builds the model. The initial fetch starts in Init.
func New(ctx context.Context, s *app.Session) Model {
	keys := defaultKeyMap()

	l := list.New(nil, rowDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.SetStatusBarItemName("todo", "todos")
	l.Styles.Title = ui.Current().Title
	l.Styles.HelpStyle = ui.Current().Help
	l.Styles.PaginationStyle = ui.Current().Help
	l.AdditionalShortHelpKeys = keys.listHelp
	l.AdditionalFullHelpKeys = keys.listHelp

	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = "New Todo"
	in.CharLimit = 500

	ed := textinput.New()
	ed.Prompt = ""
	ed.CharLimit = 500

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	m := Model{
		ctx:      ctx,
		session:  s,
		keys:     keys,
		list:     l,
		input:    in,
		edit:     ed,
		spinner:  sp,
		inflight: 1,
		status:   "loading todos",
		width:    80,
		height:   24,
	}
	m.sync()
	return m
}

// Run starts the program on the alternate screen.
func Run(ctx context.Context, s *app.Session) error {
	_, err := tea.NewProgram(New(ctx, s), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(listCmd(m.ctx, m.session.Remote()), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.sync()
		return m, nil

	case spinner.TickMsg:
		if m.inflight == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case listedMsg:
		return m.settle("loaded", m.session.ApplyList(msg.todos, msg.err))
	case createdMsg:
		err := m.session.ApplyCreate(msg.todo, msg.err)
		if err == nil {
			m.input.SetValue("")
		}
		return m.settle("added", err)
	case toggledMsg:
		return m.settle("updated", m.session.ApplyToggle(msg.id, msg.completed, msg.err))
	case renamedMsg:
		return m.settle("saved", m.session.ApplyRename(msg.id, msg.title, msg.err))
	case deletedMsg:
		return m.settle("deleted", m.session.ApplyDelete(msg.id, msg.err))

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.session.Store().EditCursor().Active() {
			return m.updateEditing(msg)
		}
		if m.focus == focusInput {
			return m.updateInput(msg)
		}
		return m.updateList(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		id, title, err := m.session.RenameRequest()
		if err != nil {
			return m, nil
		}
		return m.start(renameCmd(m.ctx, m.session.Remote(), id, title))
	case key.Matches(msg, m.keys.Cancel):
		m.session.Store().CancelEdit()
		m.edit.Blur()
		m.sync()
		return m, nil
	}
	var cmd tea.Cmd
	m.edit, cmd = m.edit.Update(msg)
	m.session.Store().SetEditText(m.edit.Value())
	m.sync()
	return m, cmd
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.start(createCmd(m.ctx, m.session.Remote(), m.session.CreateRequest()))
	case key.Matches(msg, m.keys.Cancel), msg.String() == "tab":
		m.focus = focusList
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.session.Store().SetPendingInput(m.input.Value())
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Add):
		m.focus = focusInput
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Reload):
		return m.start(listCmd(m.ctx, m.session.Remote()))
	case key.Matches(msg, m.keys.Toggle):
		row, ok := m.selected()
		if !ok {
			return m, nil
		}
		want, err := m.session.ToggleRequest(row.Todo.ID)
		if err != nil {
			return m, nil
		}
		return m.start(toggleCmd(m.ctx, m.session.Remote(), row.Todo.ID, want))
	case key.Matches(msg, m.keys.Delete):
		row, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m.start(deleteCmd(m.ctx, m.session.Remote(), row.Todo.ID))
	case key.Matches(msg, m.keys.Edit):
		row, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.session.Store().BeginEdit(row.Todo.ID)
		m.edit.SetValue(m.session.Store().EditCursor().Title)
		m.edit.CursorEnd()
		m.sync()
		return m, m.edit.Focus()
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// start counts a request in flight and runs it.
func (m Model) start(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.inflight++
	m.status, m.statusErr = "", false
	if m.inflight == 1 {
		return m, tea.Batch(cmd, m.spinner.Tick)
	}
	return m, cmd
}

// settle records the outcome of a finished request.
func (m Model) settle(done string, err error) (tea.Model, tea.Cmd) {
	if m.inflight > 0 {
		m.inflight--
	}
	if err != nil {
		m.status, m.statusErr = describe(err), true
	} else {
		m.status, m.statusErr = done, false
	}
	// A delete or reload can take the edited row away.
	if !m.session.Store().EditCursor().Active() {
		m.edit.Blur()
	}
	m.sync()
	return m, nil
}

// sync rebuilds list items and the header from the store.
func (m *Model) sync() {
	s := m.session.Store()
	idx := m.list.Index()
	m.list.SetItems(toItems(Rows(s)))
	if n := len(m.list.Items()); idx >= n && n > 0 {
		m.list.Select(n - 1)
	}

	th := ui.Current()
	done, pending := s.Stats()
	m.list.Title = fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		th.Title.Render("Todo App"),
		th.Success.Render(th.SymDone), done,
		th.Pending.Render(th.SymPending), pending,
		th.Accent.Render("Total"), s.Len(),
	)

	listHeight := m.height - 7
	if listHeight < 3 {
		listHeight = 3
	}
	m.list.SetSize(m.width-4, listHeight)
	m.input.Width = m.width - 10
	m.edit.Width = m.width - 20
}

func (m Model) selected() (Row, bool) {
	it, ok := m.list.SelectedItem().(rowItem)
	if !ok {
		return Row{}, false
	}
	return it.Row, true
}

func (m Model) View() string {
	th := ui.Current()

	label := "New Todo"
	if m.focus == focusInput {
		label = th.Accent.Render("New Todo") + th.Muted.Render("  enter: Add Todo · esc: back")
	} else {
		label += th.Muted.Render("  a: type")
	}
	header := label + "\n" + m.input.View()

	var status string
	switch {
	case m.inflight > 0:
		status = m.spinner.View() + " " + th.Muted.Render(fmt.Sprintf("%d request(s) in flight", m.inflight))
	case m.statusErr:
		status = th.Error.Render(th.SymFail + " " + m.status)
	case m.status != "":
		status = th.Success.Render(th.SymOK + " " + m.status)
	}

	return ui.Panel(strings.Join([]string{header, m.list.View(), status}, "\n"))
}

// describe turns a sync failure into a short status line.
func describe(err error) string {
	var re *remote.Error
	if errors.As(err, &re) {
		if re.Status != 0 {
			return fmt.Sprintf("%s failed: server returned %d", re.Op, re.Status)
		}
		return fmt.Sprintf("%s failed: %v", re.Op, re.Err)
	}
	return err.Error()
}
