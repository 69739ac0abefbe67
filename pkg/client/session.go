package client

import (
	"context"

	"github.com/plana-app/backend/internal/models"
)

// State is the session lifecycle state.
type State int

const (
	StateUnknown State = iota
	StateValidating
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateValidating:
		return "validating"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	}
	return "invalid"
}

// Session holds the authentication state: the current user and token.
// It is explicit state owned by the caller, not package-level. A Session
// has a single writer; it is not safe for concurrent use.
type Session struct {
	api   *Client
	store TokenStore
	state State
	user  *models.UserPublic
}

// NewSession creates a session in StateUnknown.
func NewSession(api *Client, store TokenStore) *Session {
	return &Session{api: api, store: store, state: StateUnknown}
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// User returns the authenticated user, or nil.
func (s *Session) User() *models.UserPublic { return s.user }

// DarkMode returns the authenticated user's theme preference.
func (s *Session) DarkMode() bool {
	return s.user != nil && s.user.DarkMode
}

// Start initializes the session from the persisted token. With no stored
// token it lands directly in StateUnauthenticated; otherwise it validates
// the token against the backend and discards it on failure.
func (s *Session) Start(ctx context.Context) error {
	token, err := s.store.Load()
	if err != nil {
		return err
	}
	if token == "" {
		s.state = StateUnauthenticated
		return nil
	}

	s.state = StateValidating
	s.api.SetToken(token)
	user, err := s.api.Validate(ctx)
	if err != nil {
		s.reset()
		return nil
	}
	s.user = user
	s.state = StateAuthenticated
	return nil
}

// Login stores a newly issued token and validates it. On failure the token
// is rolled back and the session stays unauthenticated.
func (s *Session) Login(ctx context.Context, token string) error {
	if err := s.store.Save(token); err != nil {
		return err
	}
	s.api.SetToken(token)

	user, err := s.api.Validate(ctx)
	if err != nil {
		s.reset()
		return err
	}
	s.user = user
	s.state = StateAuthenticated
	return nil
}

// Logout clears the persisted token and the in-memory user.
func (s *Session) Logout() error {
	err := s.store.Clear()
	s.api.SetToken("")
	s.user = nil
	s.state = StateUnauthenticated
	return err
}

// UpdateSettings updates the user's profile and theme preference. Local
// state changes only after the backend acknowledges the update, so a failed
// call leaves the previous values in place.
func (s *Session) UpdateSettings(ctx context.Context, firstName, lastName string, darkMode bool) error {
	if s.state != StateAuthenticated {
		return &APIError{Status: 401, Message: "not authenticated"}
	}
	user, err := s.api.UpdateSettings(ctx, firstName, lastName, darkMode)
	if err != nil {
		return err
	}
	s.user = user
	return nil
}

// SetDarkMode toggles the theme preference, keeping the stored names.
func (s *Session) SetDarkMode(ctx context.Context, enabled bool) error {
	if s.user == nil {
		return &APIError{Status: 401, Message: "not authenticated"}
	}
	return s.UpdateSettings(ctx, s.user.FirstName, s.user.LastName, enabled)
}

func (s *Session) reset() {
	_ = s.store.Clear()
	s.api.SetToken("")
	s.user = nil
	s.state = StateUnauthenticated
}
