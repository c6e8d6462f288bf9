package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/synk/client/internal/ports"
)

// FileStore persists credentials as a JSON file, the CLI analogue of the
// browser client's localStorage. A missing or corrupt file degrades to an
// empty session rather than an error.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed credential store. An empty path falls
// back to <user-config-dir>/synk/session.json.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve user config dir: %w", err)
		}
		path = filepath.Join(dir, "synk", "session.json")
	}
	return &FileStore{path: path}, nil
}

// Path returns the resolved session file path
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the stored credentials. Absence or corruption yields empty
// credentials, never an error.
func (s *FileStore) Load() (ports.Credentials, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ports.Credentials{}, nil
		}
		return ports.Credentials{}, fmt.Errorf("failed to read session file: %w", err)
	}

	var creds ports.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		// Corrupt state: discard it and start unauthenticated
		_ = os.Remove(s.path)
		return ports.Credentials{}, nil
	}

	// Reject an invalid stored user shape (an old client bug stored the
	// pagination wrapper as the user record)
	if creds.User != nil && creds.User.ID == "" {
		creds.User = nil
	}

	return creds, nil
}

// Save writes the credentials with owner-only permissions
func (s *FileStore) Save(creds ports.Credentials) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return nil
}

// Clear removes the stored credentials
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
