package store

import "github.com/google/uuid"

// IncrementUnread bumps the unread counter for a thread. The caller decides
// whether a delivery counts as unread (it must not for the active thread).
func (s *Store) IncrementUnread(threadID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unread[threadID]++
}

// ClearUnread resets a thread's unread counter after its latest message has
// been acknowledged as read.
func (s *Store) ClearUnread(threadID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.unread, threadID)
}

func (s *Store) UnreadCount(threadID uuid.UUID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unread[threadID]
}

func (s *Store) UnreadCounts() map[uuid.UUID]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[uuid.UUID]int, len(s.unread))
	for id, n := range s.unread {
		out[id] = n
	}
	return out
}
