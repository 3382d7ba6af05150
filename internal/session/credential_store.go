package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CredentialStore is the durable slot holding the raw bearer credential.
// It is the sole piece of state surviving a restart.
type CredentialStore interface {
	Load() (string, error)
	Save(credential string) error
	Clear() error
}

// FileCredentialStore keeps the credential in a single file, created with
// owner-only permissions.
type FileCredentialStore struct {
	path string
}

func NewFileCredentialStore(path string) *FileCredentialStore {
	return &FileCredentialStore{path: path}
}

func (s *FileCredentialStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read credential slot: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileCredentialStore) Save(credential string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create credential dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(credential), 0o600); err != nil {
		return fmt.Errorf("failed to write credential slot: %w", err)
	}
	return nil
}

func (s *FileCredentialStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear credential slot: %w", err)
	}
	return nil
}
