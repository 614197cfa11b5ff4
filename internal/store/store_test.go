package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tada-sync/internal/model"
)

func seeded() *Store {
	s := New()
	s.ApplyFetchedList([]model.Todo{
		{ID: 1, UserID: 1, Title: "A", Completed: false},
		{ID: 2, UserID: 1, Title: "B", Completed: true},
		{ID: 3, UserID: 2, Title: "C", Completed: false},
	})
	return s
}

func TestNewStoreIsEmpty(t *testing.T) {
	s := New()
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.PendingInput())
	assert.False(t, s.EditCursor().Active())
	assert.NotNil(t, s.Todos())
}

func TestApplyFetchedListReplaces(t *testing.T) {
	s := seeded()
	s.ApplyFetchedList([]model.Todo{{ID: 9, Title: "Z"}})
	require.Equal(t, 1, s.Len())
	assert.Equal(t, 9, s.Todos()[0].ID)
}

func TestTodosReturnsCopy(t *testing.T) {
	s := seeded()
	list := s.Todos()
	list[0].Title = "mutated"
	got, _ := s.Find(1)
	assert.Equal(t, "A", got.Title)
}

func TestPrependCreatedGoesToHead(t *testing.T) {
	s := seeded()
	s.PrependCreated(model.Todo{ID: 201, UserID: 1, Title: "Buy milk"})

	list := s.Todos()
	require.Len(t, list, 4)
	assert.Equal(t, 201, list[0].ID)
	assert.Equal(t, []int{201, 1, 2, 3}, ids(list))
}

func TestApplyToggleChangesOnlyOneField(t *testing.T) {
	s := seeded()
	before := s.Todos()
	s.ApplyToggle(1, true)
	after := s.Todos()

	assert.Equal(t, ids(before), ids(after))
	changed := 0
	for i := range before {
		if before[i] != after[i] {
			changed++
			assert.Equal(t, before[i].Title, after[i].Title)
			assert.Equal(t, before[i].UserID, after[i].UserID)
			assert.NotEqual(t, before[i].Completed, after[i].Completed)
		}
	}
	assert.Equal(t, 1, changed)
}

func TestApplyToggleUnknownIDIsNoop(t *testing.T) {
	s := seeded()
	before := s.Todos()
	s.ApplyToggle(42, true)
	assert.Equal(t, before, s.Todos())
}

func TestBeginEditCopiesTitle(t *testing.T) {
	s := seeded()
	s.BeginEdit(2)

	c := s.EditCursor()
	require.True(t, c.Active())
	assert.Equal(t, 2, *c.ID)
	assert.Equal(t, "B", c.Title)
	assert.True(t, s.Editing(2))
	assert.False(t, s.Editing(1))
}

func TestBeginEditUnknownIDIsNoop(t *testing.T) {
	s := seeded()
	s.BeginEdit(99)
	assert.False(t, s.EditCursor().Active())
}

func TestBeginEditMovesCursor(t *testing.T) {
	s := seeded()
	s.BeginEdit(1)
	s.BeginEdit(3)
	assert.False(t, s.Editing(1))
	assert.True(t, s.Editing(3))
}

func TestSetEditTextRequiresCursor(t *testing.T) {
	s := seeded()
	s.SetEditText("ignored")
	assert.Empty(t, s.EditCursor().Title)

	s.BeginEdit(1)
	s.SetEditText("A2")
	assert.Equal(t, "A2", s.EditCursor().Title)
}

func TestEditCursorReturnsCopy(t *testing.T) {
	s := seeded()
	s.BeginEdit(1)
	c := s.EditCursor()
	*c.ID = 3
	assert.True(t, s.Editing(1))
}

func TestApplyRenameResetsCursor(t *testing.T) {
	s := seeded()
	s.BeginEdit(3)
	s.SetEditText("c!")
	s.ApplyRename(3, "C (server)")

	got, ok := s.Find(3)
	require.True(t, ok)
	assert.Equal(t, "C (server)", got.Title)
	c := s.EditCursor()
	assert.Nil(t, c.ID)
	assert.Empty(t, c.Title)
	assert.Equal(t, []int{1, 2, 3}, ids(s.Todos()))
}

func TestRemoveRecord(t *testing.T) {
	s := New()
	s.ApplyFetchedList([]model.Todo{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}})
	s.RemoveRecord(1)

	list := s.Todos()
	require.Len(t, list, 1)
	assert.Equal(t, model.Todo{ID: 2, Title: "B"}, list[0])
}

func TestRemoveRecordDropsCursorOnRemovedRow(t *testing.T) {
	s := seeded()
	s.BeginEdit(2)
	s.RemoveRecord(2)
	assert.False(t, s.EditCursor().Active())
	assert.False(t, s.Editing(2))
}

func TestRemoveRecordKeepsCursorOnOtherRow(t *testing.T) {
	s := seeded()
	s.BeginEdit(1)
	s.RemoveRecord(2)
	assert.True(t, s.Editing(1))
}

func TestApplyFetchedListDropsStaleCursor(t *testing.T) {
	s := seeded()
	s.BeginEdit(3)
	s.ApplyFetchedList([]model.Todo{{ID: 1, Title: "A"}})
	assert.False(t, s.EditCursor().Active())

	s.BeginEdit(1)
	s.SetEditText("A2")
	s.ApplyFetchedList([]model.Todo{{ID: 1, Title: "A"}, {ID: 4, Title: "D"}})
	assert.True(t, s.Editing(1))
	assert.Equal(t, "A2", s.EditCursor().Title)
}

func TestRemoveRecordUnknownIDIsNoop(t *testing.T) {
	s := seeded()
	s.RemoveRecord(77)
	assert.Equal(t, []int{1, 2, 3}, ids(s.Todos()))
}

func TestPendingInput(t *testing.T) {
	s := New()
	s.SetPendingInput("Buy milk")
	assert.Equal(t, "Buy milk", s.PendingInput())
	s.ClearPendingInput()
	assert.Empty(t, s.PendingInput())
}

func TestCancelEdit(t *testing.T) {
	s := seeded()
	s.BeginEdit(1)
	s.SetEditText("nope")
	s.CancelEdit()
	assert.False(t, s.EditCursor().Active())
	got, _ := s.Find(1)
	assert.Equal(t, "A", got.Title)
}

func TestStats(t *testing.T) {
	done, pending := seeded().Stats()
	assert.Equal(t, 1, done)
	assert.Equal(t, 2, pending)
}

func ids(list []model.Todo) []int {
	out := make([]int, 0, len(list))
	for _, t := range list {
		out = append(out, t.ID)
	}
	return out
}
