// Package session tracks login sessions with sliding expiration.
//
// Store is not safe for concurrent use; the owner serializes access.
package session

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/startpage/internal/domain"
)

// Store holds active sessions keyed by token.
type Store struct {
	sessions map[string]domain.SessionData
	now      func() time.Time
}

// fileDocument is the on-disk shape of the sessions file.
type fileDocument struct {
	Sessions map[string]domain.SessionData `json:"sessions"`
}

// NewStore creates an empty store. A nil clock defaults to time.Now.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		sessions: make(map[string]domain.SessionData),
		now:      now,
	}
}

// Create mints a random token valid for duration and returns it.
// Collisions are not checked; the UUIDv4 space makes them negligible.
func (s *Store) Create(duration time.Duration) string {
	id := uuid.NewString()
	now := s.now()
	s.sessions[id] = domain.SessionData{
		SessionID: id,
		CreatedAt: now,
		ExpiresAt: now.Add(duration),
	}
	return id
}

// ValidateAndRefresh reports whether id is a live session. A live session
// has its expiry pushed to now+duration; an expired one is removed.
func (s *Store) ValidateAndRefresh(id string, duration time.Duration) bool {
	sess, ok := s.sessions[id]
	if !ok {
		return false
	}
	now := s.now()
	if sess.Expired(now) {
		delete(s.sessions, id)
		return false
	}
	sess.ExpiresAt = now.Add(duration)
	s.sessions[id] = sess
	return true
}

// Delete removes id. Unknown ids are ignored.
func (s *Store) Delete(id string) {
	delete(s.sessions, id)
}

// Sweep drops every expired session and returns how many were removed.
func (s *Store) Sweep() int {
	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Get returns a copy of the session without refreshing it.
func (s *Store) Get(id string) (domain.SessionData, bool) {
	sess, ok := s.sessions[id]
	return sess, ok
}

// Len returns the number of stored sessions, expired ones included.
func (s *Store) Len() int {
	return len(s.sessions)
}

func (s *Store) MarshalJSON() ([]byte, error) {
	return json.Marshal(fileDocument{Sessions: s.sessions})
}

func (s *Store) UnmarshalJSON(data []byte) error {
	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	if doc.Sessions == nil {
		doc.Sessions = make(map[string]domain.SessionData)
	}
	s.sessions = doc.Sessions
	if s.now == nil {
		s.now = time.Now
	}
	return nil
}
