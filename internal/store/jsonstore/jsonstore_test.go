package jsonstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tada-sync/internal/model"
)

func TestLoadMissingFileIsEmpty(t *testing.T) {
	items, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotNil(t, items)
}

func TestSaveThenLoad(t *testing.T) {
	p := filepath.Join(t.TempDir(), "todos.json")
	in := []model.Todo{
		{ID: 1, UserID: 1, Title: "A", Completed: true},
		{ID: 2, UserID: 3, Title: "B"},
	}
	require.NoError(t, Save(p, in))

	out, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSaveUsesWireFieldNames(t *testing.T) {
	p := filepath.Join(t.TempDir(), "todos.json")
	require.NoError(t, Save(p, []model.Todo{{ID: 7, UserID: 1, Title: "x"}}))

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"userId": 1`)
	assert.Contains(t, string(b), `"completed": false`)
}

func TestDirectoryResolvesToDefaultFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Save(dir, nil))
	_, err := os.Stat(filepath.Join(dir, DefaultFileName))
	assert.NoError(t, err)
}

func TestLoadRejectsGarbage(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(p, []byte("{not json"), 0o644))
	_, err := Load(p)
	assert.ErrorContains(t, err, "json unmarshal")
}
