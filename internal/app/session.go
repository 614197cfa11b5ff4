// Package app connects the remote todo collection to the view state.
//
// Every sync operation has a request phase and an apply phase. The
// request phase only does I/O and may run off the event loop; the apply
// phase mutates the store and must run on the goroutine that owns it.
// The synchronous methods (Load, Create, ...) chain both for callers that
// have no event loop.
//
// Mutations are write-through: the store changes only after the server
// acknowledged, and the acknowledged value is what gets stored. A failed
// call is logged and returned; the store is left as it was.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tada-sync/internal/logging"
	"github.com/Makepad-fr/tada-sync/internal/model"
	"github.com/Makepad-fr/tada-sync/internal/remote"
	"github.com/Makepad-fr/tada-sync/internal/store"
)

var (
	ErrNotFound   = errors.New("no such todo")
	ErrNotEditing = errors.New("no todo is being edited")
)

// Remote is the subset of *remote.Client a Session needs.
type Remote interface {
	List(ctx context.Context) ([]model.Todo, error)
	Create(ctx context.Context, t model.NewTodo) (model.Todo, error)
	SetCompleted(ctx context.Context, id int, completed bool) (bool, error)
	Rename(ctx context.Context, id int, title string) (string, error)
	Delete(ctx context.Context, id int) error
}

type Options struct {
	UserID int
	Logger *log.Logger
}

type Session struct {
	store  *store.Store
	remote Remote
	userID int
	log    *log.Logger
}

func NewSession(r Remote, opts Options) *Session {
	s := &Session{
		store:  store.New(),
		remote: r,
		userID: opts.UserID,
		log:    opts.Logger,
	}
	if s.userID < 1 {
		s.userID = 1
	}
	if s.log == nil {
		s.log = logging.Discard()
	}
	return s
}

func (s *Session) Store() *store.Store { return s.store }

func (s *Session) Remote() Remote { return s.remote }

// CreateRequest builds the create payload from the pending input. Empty
// titles are submitted as they are.
func (s *Session) CreateRequest() model.NewTodo {
	return model.NewTodo{UserID: s.userID, Title: s.store.PendingInput(), Completed: false}
}

// ToggleRequest returns the completed value to send for id.
func (s *Session) ToggleRequest(id int) (bool, error) {
	t, ok := s.store.Find(id)
	if !ok {
		return false, fmt.Errorf("toggle %d: %w", id, ErrNotFound)
	}
	return !t.Completed, nil
}

// RenameRequest returns the id and title under the edit cursor.
func (s *Session) RenameRequest() (int, string, error) {
	c := s.store.EditCursor()
	if c.ID == nil {
		return 0, "", ErrNotEditing
	}
	return *c.ID, c.Title, nil
}

func (s *Session) ApplyList(list []model.Todo, err error) error {
	if err != nil {
		return s.failed(remote.OpList, 0, err)
	}
	s.store.ApplyFetchedList(list)
	s.log.Debug("todos loaded", "count", len(list))
	return nil
}

func (s *Session) ApplyCreate(t model.Todo, err error) error {
	if err != nil {
		return s.failed(remote.OpCreate, 0, err)
	}
	s.store.PrependCreated(t)
	s.store.ClearPendingInput()
	s.log.Debug("todo created", "id", t.ID, "count", s.store.Len())
	return nil
}

func (s *Session) ApplyToggle(id int, completed bool, err error) error {
	if err != nil {
		return s.failed(remote.OpToggle, id, err)
	}
	s.store.ApplyToggle(id, completed)
	s.log.Debug("todo toggled", "id", id, "completed", completed)
	return nil
}

func (s *Session) ApplyRename(id int, title string, err error) error {
	if err != nil {
		return s.failed(remote.OpRename, id, err)
	}
	s.store.ApplyRename(id, title)
	s.log.Debug("todo renamed", "id", id)
	return nil
}

func (s *Session) ApplyDelete(id int, err error) error {
	if err != nil {
		return s.failed(remote.OpDelete, id, err)
	}
	s.store.RemoveRecord(id)
	s.log.Debug("todo deleted", "id", id, "count", s.store.Len())
	return nil
}

// Load fetches the collection into the store.
func (s *Session) Load(ctx context.Context) error {
	list, err := s.remote.List(ctx)
	return s.ApplyList(list, err)
}

// Create submits the pending input.
func (s *Session) Create(ctx context.Context) error {
	t, err := s.remote.Create(ctx, s.CreateRequest())
	return s.ApplyCreate(t, err)
}

// Toggle flips the completed flag of id on the server.
func (s *Session) Toggle(ctx context.Context, id int) error {
	want, err := s.ToggleRequest(id)
	if err != nil {
		return err
	}
	got, err := s.remote.SetCompleted(ctx, id, want)
	return s.ApplyToggle(id, got, err)
}

// SaveEdit sends the edit cursor's title.
func (s *Session) SaveEdit(ctx context.Context) error {
	id, title, err := s.RenameRequest()
	if err != nil {
		return err
	}
	got, err := s.remote.Rename(ctx, id, title)
	return s.ApplyRename(id, got, err)
}

func (s *Session) Delete(ctx context.Context, id int) error {
	return s.ApplyDelete(id, s.remote.Delete(ctx, id))
}

func (s *Session) failed(op remote.Op, id int, err error) error {
	kv := []any{"op", op, "err", err}
	if id != 0 {
		kv = append(kv, "id", id)
	}
	var re *remote.Error
	if errors.As(err, &re) {
		if re.Status != 0 {
			kv = append(kv, "status", re.Status)
		}
		kv = append(kv, "request_id", re.RequestID)
	}
	s.log.Error("sync failed", kv...)
	return err
}
