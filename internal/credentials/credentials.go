// Package credentials persists the login used to skip the interactive
// prompt. The file is plaintext JSON; the format can change without
// affecting the session or navigation code.
package credentials

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/jsonc"
)

const fileName = "auth.conf"

// ErrNotFound is returned by Load when no credentials were saved.
var ErrNotFound = errors.New("no stored credentials")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Credentials is the stored login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Store reads and writes credentials at a fixed path.
type Store struct {
	path string
}

// NewStore creates a store for auth.conf inside dir.
func NewStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, fileName)}
}

func (s *Store) Path() string {
	return s.path
}

// Load reads stored credentials. Comments and trailing commas are allowed
// since the file is sometimes edited by hand.
func (s *Store) Load() (Credentials, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Credentials{}, ErrNotFound
	}
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	var creds Credentials
	if err := json.Unmarshal(jsonc.ToJSON(data), &creds); err != nil {
		return Credentials{}, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	if creds.Email == "" || creds.Password == "" {
		return Credentials{}, fmt.Errorf("%s is missing email or password", s.path)
	}
	return creds, nil
}

// Save writes credentials, owner-readable only.
func (s *Store) Save(creds Credentials) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	return nil
}

// Delete removes stored credentials. Deleting nothing is not an error.
func (s *Store) Delete() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", s.path, err)
	}
	return nil
}
