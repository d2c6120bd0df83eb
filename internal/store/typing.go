package store

import (
	"sort"

	"github.com/google/uuid"
)

// AddTypingUser records that a user is composing in a thread. Set semantics:
// adding a user twice keeps a single entry. The store only mirrors the
// start/stop events it is handed; expiry is the emitting side's contract.
func (s *Store) AddTypingUser(threadID, userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.typing[threadID]
	if set == nil {
		set = make(map[uuid.UUID]struct{})
		s.typing[threadID] = set
	}
	set[userID] = struct{}{}
}

// RemoveTypingUser drops a user from a thread's typing set. No-op if absent.
func (s *Store) RemoveTypingUser(threadID, userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if set, ok := s.typing[threadID]; ok {
		delete(set, userID)
		if len(set) == 0 {
			delete(s.typing, threadID)
		}
	}
}

// TypingUsers returns the thread's typing set in a stable order.
func (s *Store) TypingUsers(threadID uuid.UUID) []uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := s.typing[threadID]
	out := make([]uuid.UUID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
