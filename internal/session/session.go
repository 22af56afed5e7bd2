// Package session holds the signed-in user's profile and membership cache.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/nikbrunner/dex/internal/library"
	"github.com/nikbrunner/dex/internal/model"
	"github.com/nikbrunner/dex/internal/profile"
	"github.com/rs/zerolog/log"
)

// Store is what a session needs from storage.
type Store interface {
	profile.Store
	library.Store
	library.EntrySource
}

// Session is one signed-in user.
type Session struct {
	Profile model.Profile
	Library *library.Cache
}

// UserID returns the signed-in user's id.
func (s *Session) UserID() string {
	return s.Profile.ID
}

// IsAdmin reports whether the user holds the admin role.
func (s *Session) IsAdmin() bool {
	return s.Profile.IsAdmin()
}

// Manager creates and tears down sessions. At most one session is current.
type Manager struct {
	store    Store
	profiles *profile.Service

	mu      sync.Mutex
	current *Session
}

// NewManager creates a Manager with no current session.
func NewManager(store Store) *Manager {
	return &Manager{
		store:    store,
		profiles: profile.NewService(store),
	}
}

// Profiles returns the profile service the manager signs in with.
func (m *Manager) Profiles() *profile.Service {
	return m.profiles
}

// SignIn loads (or creates) the user's profile and builds a fresh membership cache.
// Any current session is replaced.
func (m *Manager) SignIn(ctx context.Context, userID string) (*Session, error) {
	if userID == "" {
		return nil, fmt.Errorf("sign in: empty user id")
	}

	p, err := m.profiles.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("sign in %s: %w", userID, err)
	}

	cache := library.New(userID, m.store, m.store)
	if err := cache.Load(ctx); err != nil {
		return nil, fmt.Errorf("sign in %s: %w", userID, err)
	}

	s := &Session{Profile: *p, Library: cache}

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()

	log.Ctx(ctx).Info().Str("user", userID).Str("role", p.Role).Msg("signed in")
	return s, nil
}

// SignOut drops the current session and its cache.
func (m *Manager) SignOut() {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
}

// Switch signs out and signs in as userID.
func (m *Manager) Switch(ctx context.Context, userID string) (*Session, error) {
	m.SignOut()
	return m.SignIn(ctx, userID)
}

// Current returns the active session, or nil.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Reload refreshes the current session's profile and cache from the store.
func (m *Manager) Reload(ctx context.Context) (*Session, error) {
	cur := m.Current()
	if cur == nil {
		return nil, fmt.Errorf("reload: not signed in")
	}
	return m.SignIn(ctx, cur.UserID())
}
