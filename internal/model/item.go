package model

// Todo is a todo record as exchanged with the remote /todos collection.
// IDs are assigned by the server; the client never makes one up.
type Todo struct {
	ID        int    `json:"id" yaml:"id"`
	UserID    int    `json:"userId" yaml:"userId"`
	Title     string `json:"title" yaml:"title"`
	Completed bool   `json:"completed" yaml:"completed"`
}

// NewTodo is the create payload. The server assigns the id.
type NewTodo struct {
	UserID    int    `json:"userId"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// EditCursor points at the single todo being edited, if any.
type EditCursor struct {
	ID    *int
	Title string
}

// Active reports whether a row is in edit mode.
func (c EditCursor) Active() bool { return c.ID != nil }

// Is reports whether the cursor points at id.
func (c EditCursor) Is(id int) bool { return c.ID != nil && *c.ID == id }
