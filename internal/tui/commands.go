package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/tada-sync/internal/app"
	"github.com/Makepad-fr/tada-sync/internal/model"
)

// Results of remote calls. Update feeds them to the session.
type (
	listedMsg struct {
		todos []model.Todo
		err   error
	}
	createdMsg struct {
		todo model.Todo
		err  error
	}
	toggledMsg struct {
		id        int
		completed bool
		err       error
	}
	renamedMsg struct {
		id    int
		title string
		err   error
	}
	deletedMsg struct {
		id  int
		err error
	}
)

// The commands below run off the event loop and must not touch the
// store; everything they need is captured when they are built.

func listCmd(ctx context.Context, r app.Remote) tea.Cmd {
	return func() tea.Msg {
		todos, err := r.List(ctx)
		return listedMsg{todos: todos, err: err}
	}
}

func createCmd(ctx context.Context, r app.Remote, t model.NewTodo) tea.Cmd {
	return func() tea.Msg {
		created, err := r.Create(ctx, t)
		return createdMsg{todo: created, err: err}
	}
}

func toggleCmd(ctx context.Context, r app.Remote, id int, completed bool) tea.Cmd {
	return func() tea.Msg {
		got, err := r.SetCompleted(ctx, id, completed)
		return toggledMsg{id: id, completed: got, err: err}
	}
}

func renameCmd(ctx context.Context, r app.Remote, id int, title string) tea.Cmd {
	return func() tea.Msg {
		got, err := r.Rename(ctx, id, title)
		return renamedMsg{id: id, title: got, err: err}
	}
}

func deleteCmd(ctx context.Context, r app.Remote, id int) tea.Cmd {
	return func() tea.Msg {
		return deletedMsg{id: id, err: r.Delete(ctx, id)}
	}
}
