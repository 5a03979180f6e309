package storage

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/MrSnakeDoc/startpage/internal/domain"
)

// LoginResult describes a login attempt that did not fail.
type LoginResult struct {
	// Enabled is false when auth is off; no session is created then.
	Enabled   bool
	SessionID string
	MaxAge    int64 // seconds
}

// AuthResult is the outcome of checking a request's session token.
type AuthResult struct {
	Enabled  bool
	Admitted bool
	MaxAge   int64 // seconds, valid when Admitted and Enabled
}

// AuthEnabled reports whether the login gate is on.
func (s *Storage) AuthEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config.Auth.Enabled
}

// Config returns a copy of the persisted configuration.
func (s *Storage) Config() domain.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// Login checks credentials and opens a session. With auth disabled it
// succeeds without creating anything.
func (s *Storage) Login(username, password string) (LoginResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	auth := s.config.Auth
	if !auth.Enabled {
		return LoginResult{Enabled: false}, nil
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(auth.Username)) == 1
	passOK := checkPassword(auth.Password, password)
	if !userOK || !passOK {
		return LoginResult{Enabled: true}, domain.ErrInvalidCredentials
	}

	id := s.sessions.Create(auth.SessionDuration())
	if err := s.saveSessionsLocked(); err != nil {
		return LoginResult{}, fmt.Errorf("failed to persist session: %w", err)
	}

	return LoginResult{
		Enabled:   true,
		SessionID: id,
		MaxAge:    auth.SessionDurationSecs,
	}, nil
}

// Logout deletes the session if it exists.
func (s *Storage) Logout(sessionID string) error {
	if sessionID == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions.Get(sessionID); !ok {
		return nil
	}
	s.sessions.Delete(sessionID)
	return s.saveSessionsLocked()
}

// Authenticate decides whether a request carrying sessionID may proceed.
// With auth enabled a valid session is refreshed (sliding window) and an
// expired one is removed; both changes are persisted.
func (s *Storage) Authenticate(sessionID string) (AuthResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	auth := s.config.Auth
	if !auth.Enabled {
		return AuthResult{Enabled: false, Admitted: true}, nil
	}
	if sessionID == "" {
		return AuthResult{Enabled: true}, nil
	}

	_, known := s.sessions.Get(sessionID)
	ok := s.sessions.ValidateAndRefresh(sessionID, auth.SessionDuration())
	if known {
		if err := s.saveSessionsLocked(); err != nil {
			return AuthResult{Enabled: true}, fmt.Errorf("failed to persist session: %w", err)
		}
	}

	return AuthResult{
		Enabled:  true,
		Admitted: ok,
		MaxAge:   auth.SessionDurationSecs,
	}, nil
}

// checkPassword accepts either a bcrypt hash or a plain stored password.
func checkPassword(stored, given string) bool {
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

func isBcryptHash(s string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// SweepSessions drops expired sessions and saves the file when any went.
func (s *Storage) SweepSessions() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.sessions.Sweep()
	if removed == 0 {
		return 0, nil
	}
	if err := s.saveSessionsLocked(); err != nil {
		return removed, err
	}
	return removed, nil
}
