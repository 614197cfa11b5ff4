package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/tada-sync/internal/model"
	"github.com/Makepad-fr/tada-sync/internal/store"
	"github.com/Makepad-fr/tada-sync/internal/ui"
)

// RowKind is the render variant of one list row.
type RowKind int

const (
	RowDisplay RowKind = iota
	RowEditing
)

func (k RowKind) String() string {
	if k == RowEditing {
		return "editing"
	}
	return "display"
}

// Row is what a single todo renders as.
type Row struct {
	Kind        RowKind
	Todo        model.Todo
	ToggleLabel string // display only
	EditText    string // editing only
}

// ToggleLabel is the completion button text.
func ToggleLabel(completed bool) string {
	if completed {
		return "Done"
	}
	return "Not Done"
}

// Rows maps the store to rows, in list order. At most one row is
// RowEditing: the one under the edit cursor.
func Rows(s *store.Store) []Row {
	cursor := s.EditCursor()
	todos := s.Todos()
	rows := make([]Row, 0, len(todos))
	for _, t := range todos {
		if cursor.Is(t.ID) {
			rows = append(rows, Row{Kind: RowEditing, Todo: t, EditText: cursor.Title})
			continue
		}
		rows = append(rows, Row{Kind: RowDisplay, Todo: t, ToggleLabel: ToggleLabel(t.Completed)})
	}
	return rows
}

// RenderRow draws a row on one line, without selection marker.
func RenderRow(r Row) string {
	th := ui.Current()
	if r.Kind == RowEditing {
		return fmt.Sprintf("%s %s%s  %s",
			th.Accent.Render("✎"),
			r.EditText,
			th.Accent.Render("▏"),
			th.ButtonEdit.Render("[Save]"))
	}

	box := th.Muted.Render(th.BoxUnchecked)
	title := r.Todo.Title
	toggle := th.Button.Render("[" + r.ToggleLabel + "]")
	if r.Todo.Completed {
		box = th.Success.Render(th.BoxChecked)
		title = th.Done.Render(title)
		toggle = th.ButtonDone.Render("[" + r.ToggleLabel + "]")
	}
	if title == "" {
		title = th.Muted.Render("(untitled)")
	}
	return fmt.Sprintf("%s %s  %s %s %s",
		box, title, toggle,
		th.Error.Render("[Delete]"),
		th.ButtonEdit.Render("[Edit]"))
}

// rowItem adapts Row to bubbles/list.Item.
type rowItem struct{ Row }

func (i rowItem) FilterValue() string { return i.Todo.Title }

func toItems(rows []Row) []list.Item {
	out := make([]list.Item, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowItem{r})
	}
	return out
}

// rowDelegate renders single-line rows.
type rowDelegate struct{}

func (d rowDelegate) Height() int                             { return 1 }
func (d rowDelegate) Spacing() int                            { return 0 }
func (d rowDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(rowItem)
	if !ok {
		return
	}
	prefix := "  "
	if index == m.Index() {
		prefix = ui.Current().Selected.Render(">") + " "
	}
	fmt.Fprint(w, prefix+strings.ReplaceAll(RenderRow(it.Row), "\n", " "))
}
