// Package store holds the view state of a todo session: the record list,
// the pending new-todo title and the edit cursor.
//
// The methods below are the only write surface. A Store is owned by one
// event loop and is not safe for concurrent use.
package store

import "github.com/Makepad-fr/tada-sync/internal/model"

type Store struct {
	todos   []model.Todo
	pending string
	cursor  model.EditCursor
}

func New() *Store {
	return &Store{todos: []model.Todo{}}
}

// Todos returns a copy of the current list.
func (s *Store) Todos() []model.Todo {
	out := make([]model.Todo, len(s.todos))
	copy(out, s.todos)
	return out
}

func (s *Store) Len() int { return len(s.todos) }

// Find returns the record with id and whether it exists.
func (s *Store) Find(id int) (model.Todo, bool) {
	if i := s.index(id); i >= 0 {
		return s.todos[i], true
	}
	return model.Todo{}, false
}

func (s *Store) PendingInput() string { return s.pending }

// EditCursor returns a copy of the cursor; mutating it has no effect.
func (s *Store) EditCursor() model.EditCursor {
	c := model.EditCursor{Title: s.cursor.Title}
	if s.cursor.ID != nil {
		id := *s.cursor.ID
		c.ID = &id
	}
	return c
}

// Editing reports whether the row for id renders its edit variant.
func (s *Store) Editing(id int) bool { return s.cursor.Is(id) }

// Stats counts done and pending records.
func (s *Store) Stats() (done, pending int) {
	for _, t := range s.todos {
		if t.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}

func (s *Store) SetPendingInput(text string) { s.pending = text }

func (s *Store) ClearPendingInput() { s.pending = "" }

// BeginEdit opens the cursor on id with its current title.
// Unknown ids are ignored.
func (s *Store) BeginEdit(id int) {
	t, ok := s.Find(id)
	if !ok {
		return
	}
	s.cursor = model.EditCursor{ID: &id, Title: t.Title}
}

// SetEditText is a no-op when nothing is being edited.
func (s *Store) SetEditText(text string) {
	if s.cursor.ID == nil {
		return
	}
	s.cursor.Title = text
}

// CancelEdit closes the cursor without touching any record.
func (s *Store) CancelEdit() { s.cursor = model.EditCursor{} }

// ApplyFetchedList replaces the whole list. The edit cursor is dropped
// when its record is not in the new list.
func (s *Store) ApplyFetchedList(list []model.Todo) {
	s.todos = make([]model.Todo, len(list))
	copy(s.todos, list)
	if s.cursor.Active() && s.index(*s.cursor.ID) < 0 {
		s.cursor = model.EditCursor{}
	}
}

// PrependCreated inserts t at the head of the list. It is the only
// operation that changes relative order.
func (s *Store) PrependCreated(t model.Todo) {
	s.todos = append([]model.Todo{t}, s.todos...)
}

func (s *Store) ApplyToggle(id int, completed bool) {
	if i := s.index(id); i >= 0 {
		s.todos[i].Completed = completed
	}
}

// ApplyRename sets the title of id and resets the edit cursor.
func (s *Store) ApplyRename(id int, title string) {
	if i := s.index(id); i >= 0 {
		s.todos[i].Title = title
	}
	s.cursor = model.EditCursor{}
}

// RemoveRecord filters id out of the list and drops the edit cursor
// if it pointed at id.
func (s *Store) RemoveRecord(id int) {
	if s.cursor.Is(id) {
		s.cursor = model.EditCursor{}
	}
	out := s.todos[:0]
	for _, t := range s.todos {
		if t.ID != id {
			out = append(out, t)
		}
	}
	s.todos = out
}

func (s *Store) index(id int) int {
	for i, t := range s.todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}
