package workout

import (
	"strings"
	"sync"
	"time"
)

// Store keeps at most one active session per owner.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	now      func() time.Time
}

// StoreOption customises a Store.
type StoreOption func(*Store)

// WithClock overrides the time source used for start and end stamps.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore constructs an empty Store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		sessions: make(map[int64]*Session),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartSession opens a new empty session. It returns false and changes nothing
// when the owner already has an active session.
func (s *Store) StartSession(owner int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[owner]; ok {
		return false
	}
	s.sessions[owner] = &Session{Owner: owner, StartTime: s.now()}
	return true
}

// AddExercise appends an exercise without sets to the owner's active session.
// A blank name is rejected.
func (s *Store) AddExercise(owner int64, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[owner]
	if !ok || strings.TrimSpace(name) == "" {
		return false
	}
	sess.Exercises = append(sess.Exercises, Exercise{Name: name})
	return true
}

// AddSet records a set on the current exercise, which is always the last one added.
// The returned exercise is a copy including the new set.
func (s *Store) AddSet(owner int64, weight float64, reps int) (Exercise, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[owner]
	if !ok || len(sess.Exercises) == 0 {
		return Exercise{}, false
	}
	current := &sess.Exercises[len(sess.Exercises)-1]
	current.Sets = append(current.Sets, Set{Weight: weight, Reps: reps})
	return current.clone(), true
}

// FinishSession removes the owner's session and returns it with EndTime set.
func (s *Store) FinishSession(owner int64) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[owner]
	if !ok {
		return nil, false
	}
	delete(s.sessions, owner)
	end := s.now()
	sess.EndTime = &end
	return sess, true
}

// HasActiveSession reports whether the owner has an unfinished session.
func (s *Store) HasActiveSession(owner int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[owner]
	return ok
}

// Session returns a snapshot of the owner's active session.
func (s *Store) Session(owner int64) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[owner]
	if !ok {
		return Session{}, false
	}
	return sess.Clone(), true
}

// ActiveCount returns the number of owners with an active session.
func (s *Store) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
