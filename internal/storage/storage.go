// Package storage persists the client session state: the access token, the
// refresh token and the serialized identity. The three entries are written
// together on login and cleared together on logout, mirroring the original
// browser-local storage contract.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Keys of the persisted entries.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
)

// ErrNoSession is returned by Read when no session state is persisted.
var ErrNoSession = errors.New("no persisted session")

const stateFile = "session.json"

// Store is a file-backed keyed store for the session entries. Writes go
// through a temp file and rename so the three keys never appear partially
// written.
type Store struct {
	dir string
}

// New creates a store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path() string {
	return filepath.Join(s.dir, stateFile)
}

// Write persists all three entries at once.
func (s *Store) Write(accessToken, refreshToken, userJSON string) error {
	entries := map[string]string{
		KeyAccessToken:  accessToken,
		KeyRefreshToken: refreshToken,
		KeyUser:         userJSON,
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session state: %w", err)
	}
	tmp := s.path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session state: %w", err)
	}
	if err := os.Rename(tmp, s.path()); err != nil {
		return fmt.Errorf("commit session state: %w", err)
	}
	return nil
}

// Read returns the persisted entries, or ErrNoSession when nothing is stored.
func (s *Store) Read() (accessToken, refreshToken, userJSON string, err error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return "", "", "", ErrNoSession
		}
		return "", "", "", fmt.Errorf("read session state: %w", err)
	}
	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return "", "", "", fmt.Errorf("decode session state: %w", err)
	}
	if entries[KeyAccessToken] == "" {
		return "", "", "", ErrNoSession
	}
	return entries[KeyAccessToken], entries[KeyRefreshToken], entries[KeyUser], nil
}

// Clear removes all persisted entries. Clearing an already empty store is
// not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear session state: %w", err)
	}
	return nil
}
