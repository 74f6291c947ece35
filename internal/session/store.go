// Package session holds the current authenticated identity and bearer
// credentials, backed by the persisted session storage. Restoring from
// storage is optimistic: no server round-trip validates the token first, so
// startup shows authenticated state immediately and a later 401 surfaces
// as a normal request error. Validity exists so callers can add forced
// logout on expiry without restructuring the store; nothing here reacts to
// it.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ukydev/eco-monitor/internal/models"
	"github.com/ukydev/eco-monitor/internal/storage"
)

var (
	// ErrNotAuthenticated is returned by Validity when no session is held.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrTokenExpired is returned by Validity for an expired access token.
	ErrTokenExpired = errors.New("access token expired")
)

// Store is the session store.
type Store struct {
	mu           sync.RWMutex
	persist      *storage.Store
	user         *models.User
	accessToken  string
	refreshToken string
}

// NewStore creates an empty session store over the given persisted storage.
func NewStore(persist *storage.Store) *Store {
	return &Store{persist: persist}
}

// Establish stores the identity and tokens in memory and persists all three
// entries together. Called after a successful login or registration.
func (s *Store) Establish(user *models.User, accessToken, refreshToken string) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("serialize identity: %w", err)
	}
	if err := s.persist.Write(accessToken, refreshToken, string(userJSON)); err != nil {
		return err
	}

	s.mu.Lock()
	s.user = user
	s.accessToken = accessToken
	s.refreshToken = refreshToken
	s.mu.Unlock()
	return nil
}

// Restore loads a previously persisted session into memory. Returns the
// restored identity, or nil when nothing is persisted. The session is
// treated as authenticated without validating the token server-side.
func (s *Store) Restore() (*models.User, error) {
	accessToken, refreshToken, userJSON, err := s.persist.Read()
	if err != nil {
		if errors.Is(err, storage.ErrNoSession) {
			return nil, nil
		}
		return nil, err
	}

	var user models.User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		return nil, fmt.Errorf("decode persisted identity: %w", err)
	}

	s.mu.Lock()
	s.user = &user
	s.accessToken = accessToken
	s.refreshToken = refreshToken
	s.mu.Unlock()
	return &user, nil
}

// Logout clears the persisted entries and the in-memory session. Idempotent:
// logging out twice is safe.
func (s *Store) Logout() error {
	if err := s.persist.Clear(); err != nil {
		return err
	}

	s.mu.Lock()
	s.user = nil
	s.accessToken = ""
	s.refreshToken = ""
	s.mu.Unlock()
	return nil
}

// SetUser replaces the in-memory identity and re-persists the session, used
// when a fuller identity (with access rights) arrives after login.
func (s *Store) SetUser(user *models.User) error {
	s.mu.RLock()
	accessToken, refreshToken := s.accessToken, s.refreshToken
	s.mu.RUnlock()
	return s.Establish(user, accessToken, refreshToken)
}

// User returns the current identity, or nil when logged out.
func (s *Store) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Token returns the current bearer token. Suitable as the api.Client token
// callback.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the stored refresh token. It is persisted but unused
// by the core flows.
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// IsAuthenticated reports whether an identity is held.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// Validity checks the held access token's expiry without verifying its
// signature (the client does not hold the signing secret). It reports
// ErrNotAuthenticated, ErrTokenExpired, or nil. Callers wanting forced
// logout on expiry combine this with Logout themselves.
func (s *Store) Validity() error {
	s.mu.RLock()
	token := s.accessToken
	s.mu.RUnlock()

	if token == "" {
		return ErrNotAuthenticated
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return fmt.Errorf("parse access token: %w", err)
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		// Tokens without exp never expire client-side.
		return nil
	}
	if time.Now().After(exp.Time) {
		return ErrTokenExpired
	}
	return nil
}
