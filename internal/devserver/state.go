package devserver

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stafflyhq/chat/internal/domain"
)

var (
	ErrChannelNotFound = errors.New("channel not found")
	ErrThreadNotFound  = errors.New("thread not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrNotSender       = errors.New("only the message sender can perform this action")
)

// state is the in-memory stand-in for the relational data service. Good
// enough for the CLI and the test suite; nothing survives a restart.
type state struct {
	mu        sync.RWMutex
	channels  map[uuid.UUID]*domain.Channel
	members   map[uuid.UUID]map[uuid.UUID]string // channelID -> userID -> role
	threads   map[uuid.UUID]*domain.Thread
	messages  map[uuid.UUID]*domain.Message
	byThread  map[uuid.UUID][]uuid.UUID // threadID -> message IDs, insertion order
	reactions map[uuid.UUID]map[string][]uuid.UUID
	pins      map[uuid.UUID][]uuid.UUID // channelID -> pinned message IDs
	lastRead  map[uuid.UUID]uuid.UUID   // userID -> last acknowledged message
}

func newState() *state {
	return &state{
		channels:  make(map[uuid.UUID]*domain.Channel),
		members:   make(map[uuid.UUID]map[uuid.UUID]string),
		threads:   make(map[uuid.UUID]*domain.Thread),
		messages:  make(map[uuid.UUID]*domain.Message),
		byThread:  make(map[uuid.UUID][]uuid.UUID),
		reactions: make(map[uuid.UUID]map[string][]uuid.UUID),
		pins:      make(map[uuid.UUID][]uuid.UUID),
		lastRead:  make(map[uuid.UUID]uuid.UUID),
	}
}

func (s *state) listChannels(userID uuid.UUID) []domain.Channel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Channel{}
	for id, ch := range s.channels {
		members := s.members[id]
		if _, ok := members[userID]; !ok {
			continue
		}
		view := *ch
		view.MemberCount = len(members)
		if ch.Type == domain.ChannelDirect {
			for uid := range members {
				if uid != userID {
					other := uid
					view.OtherUserID = &other
				}
			}
		}
		out = append(out, view)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// createChannel creates a group or direct channel. Starting a direct channel
// with a user you already share one with returns the existing channel.
func (s *state) createChannel(creator uuid.UUID, name string, channelType domain.ChannelType, otherUserID *uuid.UUID) (*domain.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if channelType == domain.ChannelDirect && otherUserID != nil {
		for id, ch := range s.channels {
			if ch.Type != domain.ChannelDirect {
				continue
			}
			members := s.members[id]
			if _, a := members[creator]; !a {
				continue
			}
			if _, b := members[*otherUserID]; b {
				view := *ch
				view.OtherUserID = otherUserID
				return &view, nil
			}
		}
	}

	ch := &domain.Channel{
		ID:        uuid.New(),
		Name:      name,
		Type:      channelType,
		CreatedBy: creator,
		CreatedAt: time.Now(),
	}
	s.channels[ch.ID] = ch
	s.members[ch.ID] = map[uuid.UUID]string{creator: "admin"}
	if channelType == domain.ChannelDirect && otherUserID != nil {
		s.members[ch.ID][*otherUserID] = "member"
	}

	view := *ch
	view.MemberCount = len(s.members[ch.ID])
	view.OtherUserID = otherUserID
	return &view, nil
}

func (s *state) addMember(channelID, userID uuid.UUID, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.channels[channelID]; !ok {
		return ErrChannelNotFound
	}
	if role == "" {
		role = "member"
	}
	s.members[channelID][userID] = role
	return nil
}

func (s *state) listThreads(channelID uuid.UUID) ([]domain.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.channels[channelID]; !ok {
		return nil, ErrChannelNotFound
	}
	out := []domain.Thread{}
	for _, th := range s.threads {
		if th.ChannelID == channelID {
			out = append(out, *th)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastActivityAt.After(out[j].LastActivityAt) })
	return out, nil
}

func (s *state) createThread(channelID, creator uuid.UUID, title string) (*domain.Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.channels[channelID]; !ok {
		return nil, ErrChannelNotFound
	}
	now := time.Now()
	th := &domain.Thread{
		ID:             uuid.New(),
		ChannelID:      channelID,
		Title:          title,
		CreatedBy:      creator,
		CreatedAt:      now,
		LastActivityAt: now,
	}
	s.threads[th.ID] = th
	view := *th
	return &view, nil
}

func (s *state) getThread(threadID uuid.UUID) (*domain.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	th, ok := s.threads[threadID]
	if !ok {
		return nil, ErrThreadNotFound
	}
	view := *th
	return &view, nil
}

func (s *state) listMessages(threadID uuid.UUID) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.threads[threadID]; !ok {
		return nil, ErrThreadNotFound
	}
	out := []domain.Message{}
	for _, id := range s.byThread[threadID] {
		out = append(out, *s.messages[id])
	}
	return out, nil
}

// createMessage stores a message and returns it along with the refreshed
// thread, whose activity it bumped.
func (s *state) createMessage(threadID uuid.UUID, sender identity, content string, mentions []domain.Mention) (*domain.Message, *domain.Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	th, ok := s.threads[threadID]
	if !ok {
		return nil, nil, ErrThreadNotFound
	}
	msg := &domain.Message{
		ID:          uuid.New(),
		ThreadID:    threadID,
		SenderID:    sender.userID,
		SenderName:  sender.displayName,
		SenderEmail: sender.email,
		Content:     content,
		Mentions:    mentions,
		CreatedAt:   time.Now(),
	}
	s.messages[msg.ID] = msg
	s.byThread[threadID] = append(s.byThread[threadID], msg.ID)
	th.LastActivityAt = msg.CreatedAt

	msgView := *msg
	thView := *th
	return &msgView, &thView, nil
}

func (s *state) updateMessage(messageID, userID uuid.UUID, content string) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.messages[messageID]
	if !ok {
		return nil, ErrMessageNotFound
	}
	if msg.SenderID != userID {
		return nil, ErrNotSender
	}
	now := time.Now()
	msg.Content = content
	msg.EditedAt = &now
	view := *msg
	return &view, nil
}

func (s *state) deleteMessage(messageID, userID uuid.UUID) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.messages[messageID]
	if !ok {
		return nil, ErrMessageNotFound
	}
	if msg.SenderID != userID {
		return nil, ErrNotSender
	}
	delete(s.messages, messageID)
	ids := s.byThread[msg.ThreadID]
	for i, id := range ids {
		if id == messageID {
			s.byThread[msg.ThreadID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	view := *msg
	return &view, nil
}

func (s *state) markRead(messageID, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.messages[messageID]; !ok {
		return ErrMessageNotFound
	}
	s.lastRead[userID] = messageID
	return nil
}

func (s *state) addReaction(messageID, userID uuid.UUID, emoji string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.messages[messageID]; !ok {
		return ErrMessageNotFound
	}
	set := s.reactions[messageID]
	if set == nil {
		set = make(map[string][]uuid.UUID)
		s.reactions[messageID] = set
	}
	set[emoji] = append(set[emoji], userID)
	return nil
}

func (s *state) pinMessage(channelID, messageID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.channels[channelID]; !ok {
		return ErrChannelNotFound
	}
	if _, ok := s.messages[messageID]; !ok {
		return ErrMessageNotFound
	}
	s.pins[channelID] = append(s.pins[channelID], messageID)
	return nil
}
