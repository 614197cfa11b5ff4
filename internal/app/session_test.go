package app

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tada-sync/internal/logging"
	"github.com/Makepad-fr/tada-sync/internal/model"
	"github.com/Makepad-fr/tada-sync/internal/placeholder"
	"github.com/Makepad-fr/tada-sync/internal/remote"
)

var errBoom = errors.New("boom")

// fakeRemote answers like jsonplaceholder: create always echoes id 201,
// PUT echoes what was sent.
type fakeRemote struct {
	list    []model.Todo
	fail    error
	created []model.NewTodo
	puts    []map[string]any
	deleted []int
	// rewrite lets a test normalize titles server-side.
	rewrite func(string) string
}

func (f *fakeRemote) List(context.Context) ([]model.Todo, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	return f.list, nil
}

func (f *fakeRemote) Create(_ context.Context, t model.NewTodo) (model.Todo, error) {
	f.created = append(f.created, t)
	if f.fail != nil {
		return model.Todo{}, f.fail
	}
	return model.Todo{ID: 201, UserID: t.UserID, Title: t.Title, Completed: t.Completed}, nil
}

func (f *fakeRemote) SetCompleted(_ context.Context, id int, completed bool) (bool, error) {
	f.puts = append(f.puts, map[string]any{"id": id, "completed": completed})
	if f.fail != nil {
		return false, f.fail
	}
	return completed, nil
}

func (f *fakeRemote) Rename(_ context.Context, id int, title string) (string, error) {
	f.puts = append(f.puts, map[string]any{"id": id, "title": title})
	if f.fail != nil {
		return "", f.fail
	}
	if f.rewrite != nil {
		return f.rewrite(title), nil
	}
	return title, nil
}

func (f *fakeRemote) Delete(_ context.Context, id int) error {
	f.deleted = append(f.deleted, id)
	return f.fail
}

func loaded(t *testing.T, list ...model.Todo) (*Session, *fakeRemote) {
	t.Helper()
	f := &fakeRemote{list: list}
	s := NewSession(f, Options{UserID: 1})
	require.NoError(t, s.Load(context.Background()))
	f.fail = nil
	return s, f
}

func TestToggleScenario(t *testing.T) {
	s, _ := loaded(t, model.Todo{ID: 1, Title: "A", Completed: false})

	require.NoError(t, s.Toggle(context.Background(), 1))
	assert.Equal(t, []model.Todo{{ID: 1, Title: "A", Completed: true}}, s.Store().Todos())
}

func TestToggleTwiceRestores(t *testing.T) {
	s, _ := loaded(t, model.Todo{ID: 1, Title: "A"}, model.Todo{ID: 2, Title: "B", Completed: true})
	before := s.Store().Todos()

	require.NoError(t, s.Toggle(context.Background(), 2))
	require.NoError(t, s.Toggle(context.Background(), 2))
	assert.Equal(t, before, s.Store().Todos())
}

func TestToggleUnknownIDSendsNothing(t *testing.T) {
	s, f := loaded(t, model.Todo{ID: 1})
	err := s.Toggle(context.Background(), 9)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, f.puts)
}

func TestCreateScenario(t *testing.T) {
	s, f := loaded(t, model.Todo{ID: 1, Title: "A"})
	s.Store().SetPendingInput("Buy milk")

	require.NoError(t, s.Create(context.Background()))

	list := s.Store().Todos()
	require.Len(t, list, 2)
	assert.Equal(t, model.Todo{ID: 201, UserID: 1, Title: "Buy milk", Completed: false}, list[0])
	assert.Empty(t, s.Store().PendingInput())
	assert.Equal(t, []model.NewTodo{{UserID: 1, Title: "Buy milk", Completed: false}}, f.created)
}

func TestCreateSubmitsEmptyTitle(t *testing.T) {
	s, f := loaded(t)
	require.NoError(t, s.Create(context.Background()))
	require.Len(t, f.created, 1)
	assert.Equal(t, "", f.created[0].Title)
	assert.Equal(t, 1, s.Store().Len())
}

func TestCreateFailureKeepsPendingInput(t *testing.T) {
	s, f := loaded(t, model.Todo{ID: 1})
	s.Store().SetPendingInput("Buy milk")
	f.fail = errBoom

	err := s.Create(context.Background())
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, "Buy milk", s.Store().PendingInput())
	assert.Equal(t, 1, s.Store().Len())
}

func TestRenameUsesServerEcho(t *testing.T) {
	s, f := loaded(t, model.Todo{ID: 1, Title: "A"}, model.Todo{ID: 2, Title: "B"})
	f.rewrite = func(string) string { return "normalized" }

	s.Store().BeginEdit(2)
	s.Store().SetEditText("  b  ")
	require.NoError(t, s.SaveEdit(context.Background()))

	assert.Equal(t, []model.Todo{{ID: 1, Title: "A"}, {ID: 2, Title: "normalized"}}, s.Store().Todos())
	c := s.Store().EditCursor()
	assert.Nil(t, c.ID)
	assert.Empty(t, c.Title)
	assert.Equal(t, []map[string]any{{"id": 2, "title": "  b  "}}, f.puts)
}

func TestRenameFailureKeepsCursor(t *testing.T) {
	s, f := loaded(t, model.Todo{ID: 1, Title: "A"})
	s.Store().BeginEdit(1)
	s.Store().SetEditText("A2")
	f.fail = errBoom

	assert.Error(t, s.SaveEdit(context.Background()))
	assert.True(t, s.Store().Editing(1))
	assert.Equal(t, "A2", s.Store().EditCursor().Title)
	got, _ := s.Store().Find(1)
	assert.Equal(t, "A", got.Title)
}

func TestSaveEditWithoutCursor(t *testing.T) {
	s, f := loaded(t, model.Todo{ID: 1})
	assert.ErrorIs(t, s.SaveEdit(context.Background()), ErrNotEditing)
	assert.Empty(t, f.puts)
}

func TestDeleteScenario(t *testing.T) {
	s, _ := loaded(t, model.Todo{ID: 1, Title: "A"}, model.Todo{ID: 2, Title: "B"})
	require.NoError(t, s.Delete(context.Background(), 1))
	assert.Equal(t, []model.Todo{{ID: 2, Title: "B"}}, s.Store().Todos())
}

func TestFailuresLeaveStateAlone(t *testing.T) {
	s, f := loaded(t, model.Todo{ID: 1, Title: "A"}, model.Todo{ID: 2, Title: "B"})
	before := s.Store().Todos()
	f.fail = errBoom

	assert.Error(t, s.Toggle(context.Background(), 1))
	assert.Error(t, s.Delete(context.Background(), 2))
	assert.Error(t, s.Load(context.Background()))
	assert.Equal(t, before, s.Store().Todos())
}

func TestInitialLoadFailureLeavesEmptyList(t *testing.T) {
	f := &fakeRemote{fail: errBoom}
	s := NewSession(f, Options{})
	assert.Error(t, s.Load(context.Background()))
	assert.Equal(t, 0, s.Store().Len())
}

func TestLateResponseForRemovedRecordIsNoop(t *testing.T) {
	s, _ := loaded(t, model.Todo{ID: 1, Title: "A"}, model.Todo{ID: 2, Title: "B"})
	want, err := s.ToggleRequest(1)
	require.NoError(t, err)

	require.NoError(t, s.ApplyDelete(1, nil))
	require.NoError(t, s.ApplyToggle(1, want, nil))
	assert.Equal(t, []model.Todo{{ID: 2, Title: "B"}}, s.Store().Todos())
}

func TestOverlappingTogglesLastResponseWins(t *testing.T) {
	s, _ := loaded(t, model.Todo{ID: 1, Title: "A"})
	first, err := s.ToggleRequest(1)
	require.NoError(t, err)
	second, err := s.ToggleRequest(1)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Responses arrive out of order; whichever lands last is shown.
	require.NoError(t, s.ApplyToggle(1, true, nil))
	require.NoError(t, s.ApplyToggle(1, false, nil))
	got, _ := s.Store().Find(1)
	assert.False(t, got.Completed)
}

func TestFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	f := &fakeRemote{fail: &remote.Error{Op: remote.OpList, Method: "GET", URL: "u", Status: 503, RequestID: "rid", Err: remote.ErrStatus}}
	s := NewSession(f, Options{Logger: logging.New(&buf, logging.Options{Format: "logfmt"})})

	assert.Error(t, s.Load(context.Background()))
	out := buf.String()
	assert.Contains(t, out, "sync failed")
	assert.Contains(t, out, "op=list")
	assert.Contains(t, out, "status=503")
	assert.Contains(t, out, "request_id=rid")
}

func TestAgainstPlaceholderServer(t *testing.T) {
	ps := placeholder.New([]model.Todo{{ID: 1, UserID: 1, Title: "A"}, {ID: 2, UserID: 1, Title: "B"}}, placeholder.Options{})
	srv := httptest.NewServer(ps.Handler())
	defer srv.Close()

	c, err := remote.New(remote.Options{BaseURL: srv.URL, StrictSchema: true})
	require.NoError(t, err)
	s := NewSession(c, Options{UserID: 3})
	ctx := context.Background()

	require.NoError(t, s.Load(ctx))
	s.Store().SetPendingInput("C")
	require.NoError(t, s.Create(ctx))
	require.NoError(t, s.Toggle(ctx, 1))
	s.Store().BeginEdit(2)
	s.Store().SetEditText("B2")
	require.NoError(t, s.SaveEdit(ctx))
	require.NoError(t, s.Delete(ctx, 1))

	want := []model.Todo{
		{ID: 3, UserID: 3, Title: "C"},
		{ID: 2, UserID: 1, Title: "B2"},
	}
	assert.Equal(t, want, s.Store().Todos())
	assert.ElementsMatch(t, want, ps.Snapshot())

	err = s.Delete(ctx, 99)
	assert.ErrorIs(t, err, remote.ErrStatus)
	assert.Equal(t, remote.OpDelete, remote.OpOf(err))
	assert.Len(t, s.Store().Todos(), 2)
}
