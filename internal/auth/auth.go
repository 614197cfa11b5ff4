// Package auth stores the optional bearer token sent with every sync
// request. TADA_TOKEN wins over the credentials file.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Makepad-fr/tada-sync/internal/config"
)

const (
	credFileName = "credentials.json"
	envToken     = "TADA_TOKEN"
)

// Source values for TokenInfo.
const (
	SourceEnv  = "env"
	SourceFile = "file"
)

type TokenInfo struct {
	Token     string    `json:"token"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

func credFilePath() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, credFileName), nil
}

// Get returns the active token, or nil when none is configured.
func Get() (*TokenInfo, error) {
	if env := strings.TrimSpace(os.Getenv(envToken)); env != "" {
		return &TokenInfo{Token: stripBearer(env), Source: SourceEnv}, nil
	}

	p, err := credFilePath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var ti TokenInfo
	if err := json.Unmarshal(b, &ti); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	ti.Token = stripBearer(ti.Token)
	ti.Source = SourceFile
	return &ti, nil
}

// Token returns just the token string, "" when there is none.
func Token() (string, error) {
	ti, err := Get()
	if err != nil || ti == nil {
		return "", err
	}
	return ti.Token, nil
}

// Set writes token to the credentials file with owner-only permissions.
func Set(token string) error {
	token = stripBearer(strings.TrimSpace(token))
	if token == "" {
		return fmt.Errorf("empty token")
	}
	p, err := credFilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	b, err := json.MarshalIndent(TokenInfo{
		Token:     token,
		Source:    SourceFile,
		CreatedAt: time.Now().UTC(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.WriteFile(p, b, 0o600); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Delete removes the credentials file. A missing file is not an error.
func Delete() error {
	p, err := credFilePath()
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

func stripBearer(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}
