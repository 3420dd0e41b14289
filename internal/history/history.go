// Package history keeps each session's calculations in memory, in the order
// they were made, until the session clears them.
package history

import "sync"

type Store[T any] struct {
	mu       sync.RWMutex
	limit    int
	sessions map[string]*sessionLog[T]
}

type sessionLog[T any] struct {
	next    int
	entries []Entry[T]
}

type Entry[T any] struct {
	ID   int
	Item T
}

// New returns a store keeping at most limit entries per session. A limit of
// zero or less keeps everything.
func New[T any](limit int) *Store[T] {
	return &Store[T]{limit: limit, sessions: make(map[string]*sessionLog[T])}
}

// Append stores item and returns its id. Ids start at 1 and are not reused
// after Clear or after the oldest entries are dropped to honor the limit.
func (s *Store[T]) Append(session string, item T) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.sessions[session]
	if !ok {
		l = &sessionLog[T]{next: 1}
		s.sessions[session] = l
	}
	id := l.next
	l.next++
	l.entries = append(l.entries, Entry[T]{ID: id, Item: item})
	if s.limit > 0 && len(l.entries) > s.limit {
		drop := len(l.entries) - s.limit
		l.entries = append(l.entries[:0:0], l.entries[drop:]...)
	}
	return id
}

func (s *Store[T]) List(session string) []Entry[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.sessions[session]
	if !ok {
		return nil
	}
	out := make([]Entry[T], len(l.entries))
	copy(out, l.entries)
	return out
}

func (s *Store[T]) Get(session string, id int) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var zero T
	l, ok := s.sessions[session]
	if !ok {
		return zero, false
	}
	for _, e := range l.entries {
		if e.ID == id {
			return e.Item, true
		}
	}
	return zero, false
}

// Clear drops the session's entries.
func (s *Store[T]) Clear(session string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.sessions[session]; ok {
		l.entries = nil
	}
}

func (s *Store[T]) Len(session string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if l, ok := s.sessions[session]; ok {
		return len(l.entries)
	}
	return 0
}
