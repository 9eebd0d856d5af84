// Package file mirrors the session into a JSON file on local disk.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dtroode/ats-client/internal/model"
)

const fileMode = 0o600

// Store keeps the session in a single JSON object keyed by the session
// storage keys.
type Store struct {
	path string
}

var _ model.SessionStore = (*Store)(nil)

// NewStore creates a file-backed session store at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the mirrored session. It returns model.ErrNotFound when no
// file exists.
func (s *Store) Load(_ context.Context) (model.Session, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return model.Session{}, model.ErrNotFound
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to read session file: %w", err)
	}

	fields := map[string]string{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return model.Session{}, fmt.Errorf("failed to decode session file: %w", err)
	}
	return model.SessionFromFields(fields), nil
}

// Save writes the session to a temporary file and renames it over the
// target, so a crash leaves either the old or the new record.
func (s *Store) Save(_ context.Context, session model.Session) error {
	data, err := json.Marshal(session.Fields())
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

// Clear removes the session file. A missing file is not an error.
func (s *Store) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
