package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Makepad-fr/tada-sync/internal/model"
)

// JSON files of todo records. Used to seed the placeholder server and
// to export a fetched list. Single file, human-readable, portable.

// DefaultFileName is used when a caller passes a directory.
const DefaultFileName = "todos.json"

func resolve(path string) (string, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		return filepath.Join(wd, DefaultFileName), nil
	}
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		return filepath.Join(path, DefaultFileName), nil
	}
	return path, nil
}

// Load reads records from path. A missing file is an empty list.
func Load(path string) ([]model.Todo, error) {
	p, err := resolve(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.Todo{}, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	var items []model.Todo
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if items == nil {
		items = []model.Todo{}
	}
	return items, nil
}

// Save writes records to path, replacing any existing file.
func Save(path string, items []model.Todo) error {
	p, err := resolve(path)
	if err != nil {
		return err
	}
	if items == nil {
		items = []model.Todo{}
	}
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if err := os.WriteFile(p, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
