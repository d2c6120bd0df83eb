package store

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/stafflyhq/chat/internal/domain"
)

// MessagePatch is a partial in-place update of a log entry. Nil fields are
// left untouched.
type MessagePatch struct {
	Content  *string
	EditedAt *time.Time
	Status   *domain.MessageStatus
}

// SetMessages merges a fetched message list into the thread's log. Entries
// already in the log win over their fetched duplicates: a push event that
// raced the fetch must not be erased by the later wholesale load. Within the
// input, the first occurrence of an ID wins. The result is ordered by
// creation time ascending, ties keeping arrival order.
func (s *Store) SetMessages(threadID uuid.UUID, messages []domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.messages[threadID]
	seen := make(map[uuid.UUID]struct{}, len(existing)+len(messages))
	merged := make([]domain.Message, 0, len(existing)+len(messages))
	for _, m := range existing {
		seen[m.ID] = struct{}{}
		merged = append(merged, m)
	}
	for _, m := range messages {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		if m.Status == "" {
			m.Status = domain.StatusConfirmed
		}
		merged = append(merged, m)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.Before(merged[j].CreatedAt)
	})
	s.messages[threadID] = merged
}

// AddMessage appends a message to the thread's log unless an entry with the
// same ID is already there, in which case the call is a no-op and the
// existing entry survives. The fetch path, the optimistic send path and the
// push path can all fire for the same message; whichever lands first wins
// the slot. Reports whether the message was inserted.
func (s *Store) AddMessage(threadID uuid.UUID, msg domain.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.messages[threadID]
	for i := range log {
		if log[i].ID == msg.ID {
			return false
		}
	}
	if msg.Status == "" {
		msg.Status = domain.StatusConfirmed
	}
	// Insert before the first later entry so equal timestamps keep arrival
	// order.
	at := sort.Search(len(log), func(i int) bool {
		return log[i].CreatedAt.After(msg.CreatedAt)
	})
	log = append(log, domain.Message{})
	copy(log[at+1:], log[at:])
	log[at] = msg
	s.messages[threadID] = log
	return true
}

// UpdateMessage patches the entry with the given ID in place. No-op if the
// ID is absent. Reports whether an entry was patched.
func (s *Store) UpdateMessage(threadID, messageID uuid.UUID, patch MessagePatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.messages[threadID]
	for i := range log {
		if log[i].ID != messageID {
			continue
		}
		if patch.Content != nil {
			log[i].Content = *patch.Content
		}
		if patch.EditedAt != nil {
			log[i].EditedAt = patch.EditedAt
		}
		if patch.Status != nil {
			log[i].Status = *patch.Status
		}
		return true
	}
	return false
}

// RemoveMessage deletes the entry with the given ID. No-op if absent.
func (s *Store) RemoveMessage(threadID, messageID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.messages[threadID]
	for i := range log {
		if log[i].ID == messageID {
			s.messages[threadID] = append(log[:i], log[i+1:]...)
			return true
		}
	}
	return false
}

// Messages returns a copy of the thread's ordered log.
func (s *Store) Messages(threadID uuid.UUID) []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log := s.messages[threadID]
	out := make([]domain.Message, len(log))
	copy(out, log)
	return out
}
