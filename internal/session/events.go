package session

import (
	"github.com/google/uuid"
	"github.com/stafflyhq/chat/internal/domain"
	"github.com/stafflyhq/chat/internal/store"
)

// The session implements ws.Handler: every push event funnels through the
// same store primitives the request paths use, so ordering between the two
// never matters.

func (s *Session) OnMessageCreated(msg domain.Message) {
	msg.Status = domain.StatusConfirmed
	if !s.store.AddMessage(msg.ThreadID, msg) {
		// Duplicate of an entry we already hold (optimistic echo or a
		// merge that beat the push). Nothing to count.
		return
	}
	s.store.BumpThreadActivity(msg.ThreadID, msg.CreatedAt)

	s.mu.Lock()
	active := s.activeThread
	s.mu.Unlock()
	if msg.ThreadID != active {
		s.store.IncrementUnread(msg.ThreadID)
	}
}

func (s *Session) OnMessageUpdated(msg domain.Message) {
	s.store.UpdateMessage(msg.ThreadID, msg.ID, store.MessagePatch{
		Content:  &msg.Content,
		EditedAt: msg.EditedAt,
	})
}

func (s *Session) OnMessageDeleted(threadID, messageID uuid.UUID) {
	s.store.RemoveMessage(threadID, messageID)
}

func (s *Session) OnThreadCreated(th domain.Thread) {
	s.store.AddThread(th)
}

func (s *Session) OnThreadUpdated(th domain.Thread) {
	s.store.UpdateThread(th)
}

func (s *Session) OnTypingStart(threadID, userID uuid.UUID, displayName string) {
	if userID == s.userID {
		return
	}
	s.store.AddTypingUser(threadID, userID)
}

func (s *Session) OnTypingStop(threadID, userID uuid.UUID) {
	s.store.RemoveTypingUser(threadID, userID)
}
