// Package session orchestrates one user's messaging state: it drives the
// REST façades, applies push events to the store, and keeps the active
// channel/thread pointers. The store holds the data; the session decides
// when to mutate it.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stafflyhq/chat/internal/api"
	"github.com/stafflyhq/chat/internal/domain"
	"github.com/stafflyhq/chat/internal/store"
)

var ErrNoActiveThread = errors.New("no active thread selected")

// API is the slice of the REST façade the session drives.
type API interface {
	Channels(ctx context.Context) ([]domain.Channel, error)
	CreateChannel(ctx context.Context, input api.CreateChannelInput) (*domain.Channel, error)
	Threads(ctx context.Context, channelID uuid.UUID) ([]domain.Thread, error)
	CreateThread(ctx context.Context, channelID uuid.UUID, title string) (*domain.Thread, error)
	Messages(ctx context.Context, threadID uuid.UUID) ([]domain.Message, error)
	CreateMessage(ctx context.Context, threadID uuid.UUID, input api.CreateMessageInput) (*domain.Message, error)
	UpdateMessage(ctx context.Context, messageID uuid.UUID, content string) (*domain.Message, error)
	DeleteMessage(ctx context.Context, messageID uuid.UUID) error
	MarkAsRead(ctx context.Context, messageID uuid.UUID) error
}

// Transport is the live-connection surface the session drives. Room
// membership survives reconnects inside the adapter; the session never
// re-issues joins.
type Transport interface {
	Join(roomID uuid.UUID)
	Leave(roomID uuid.UUID)
	StartTyping(threadID uuid.UUID, displayName string)
	StopTyping(threadID uuid.UUID)
	IsConnected() bool
	Close()
}

type Session struct {
	store     *store.Store
	api       API
	transport Transport

	userID      uuid.UUID
	displayName string

	mu            sync.Mutex
	activeChannel uuid.UUID
	activeThread  uuid.UUID
	// threadSeq tags in-flight message fetches so a response for a thread
	// that is no longer active is discarded instead of applied.
	threadSeq  uint64
	channelSeq uint64
}

func New(st *store.Store, a API, t Transport, userID uuid.UUID, displayName string) *Session {
	return &Session{
		store:       st,
		api:         a,
		transport:   t,
		userID:      userID,
		displayName: displayName,
	}
}

func (s *Session) Store() *store.Store { return s.store }

// SetTransport wires the live connection in after construction. The adapter
// and the session reference each other (the session is the adapter's event
// handler), so one of the two has to be attached late.
func (s *Session) SetTransport(t Transport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transport = t
}

func (s *Session) ActiveThread() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeThread
}

func (s *Session) ActiveChannel() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeChannel
}

// LoadChannels populates the channel directory.
func (s *Session) LoadChannels(ctx context.Context) error {
	channels, err := s.api.Channels(ctx)
	if err != nil {
		return fmt.Errorf("loading channels: %w", err)
	}
	s.store.SetChannels(channels)
	return nil
}

// SelectChannel makes a channel active: joins its room and loads its thread
// registry. A stale response for a previously selected channel is dropped.
func (s *Session) SelectChannel(ctx context.Context, channelID uuid.UUID) error {
	s.mu.Lock()
	s.activeChannel = channelID
	s.channelSeq++
	seq := s.channelSeq
	t := s.transport
	s.mu.Unlock()

	t.Join(channelID)

	threads, err := s.api.Threads(ctx, channelID)
	if err != nil {
		return fmt.Errorf("loading threads: %w", err)
	}

	s.mu.Lock()
	stale := s.channelSeq != seq || s.activeChannel != channelID
	s.mu.Unlock()
	if stale {
		return nil
	}

	s.store.SetThreads(channelID, threads)
	return nil
}

// SelectThread makes a thread active: joins its room, loads its log and
// acknowledges the latest message as read. If the active thread changes
// before the fetch resolves, the stale response is not written.
func (s *Session) SelectThread(ctx context.Context, threadID uuid.UUID) error {
	s.mu.Lock()
	s.activeThread = threadID
	s.threadSeq++
	seq := s.threadSeq
	t := s.transport
	s.mu.Unlock()

	t.Join(threadID)

	messages, err := s.api.Messages(ctx, threadID)
	if err != nil {
		return fmt.Errorf("loading messages: %w", err)
	}

	s.mu.Lock()
	stale := s.threadSeq != seq || s.activeThread != threadID
	s.mu.Unlock()
	if stale {
		return nil
	}

	s.store.SetMessages(threadID, messages)
	s.ackLatest(ctx, threadID)
	return nil
}

// ackLatest marks the newest log entry as read and clears the local unread
// counter. If the ack fails the counter is kept, so the badge stays in step
// with the server's read position; the next select retries.
func (s *Session) ackLatest(ctx context.Context, threadID uuid.UUID) {
	msgs := s.store.Messages(threadID)
	if len(msgs) > 0 {
		if err := s.api.MarkAsRead(ctx, msgs[len(msgs)-1].ID); err != nil {
			log.Printf("session: mark as read: %v", err)
			return
		}
	}
	s.store.ClearUnread(threadID)
}

// CreateChannel creates a group channel and appends it to the directory.
func (s *Session) CreateChannel(ctx context.Context, name string, channelType domain.ChannelType) (*domain.Channel, error) {
	ch, err := s.api.CreateChannel(ctx, api.CreateChannelInput{Name: name, Type: channelType})
	if err != nil {
		return nil, err
	}
	s.store.AddChannel(*ch)
	return ch, nil
}

// OpenDirect returns the direct channel with a user, creating it only when
// the cached directory has none. Racing creations from elsewhere can still
// produce a duplicate; searching first keeps that the exception.
func (s *Session) OpenDirect(ctx context.Context, otherUserID uuid.UUID) (*domain.Channel, error) {
	if ch, ok := s.store.DirectChannelWith(otherUserID); ok {
		return &ch, nil
	}
	ch, err := s.api.CreateChannel(ctx, api.CreateChannelInput{
		Type:        domain.ChannelDirect,
		OtherUserID: &otherUserID,
	})
	if err != nil {
		return nil, err
	}
	s.store.AddChannel(*ch)
	return ch, nil
}

// CreateThread creates a thread in the active channel and registers it.
func (s *Session) CreateThread(ctx context.Context, title string) (*domain.Thread, error) {
	s.mu.Lock()
	channelID := s.activeChannel
	s.mu.Unlock()

	th, err := s.api.CreateThread(ctx, channelID, title)
	if err != nil {
		return nil, err
	}
	s.store.AddThread(*th)
	return th, nil
}

// SendMessage appends a pending entry immediately, then swaps it for the
// server's authoritative message once the create call returns. On failure
// the pending entry is marked failed instead of silently passing for a
// delivered message.
func (s *Session) SendMessage(ctx context.Context, content string, mentions []domain.Mention) (*domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, api.ErrEmptyContent
	}

	s.mu.Lock()
	threadID := s.activeThread
	s.mu.Unlock()
	if threadID == uuid.Nil {
		return nil, ErrNoActiveThread
	}

	local := domain.Message{
		ID:         uuid.New(),
		ThreadID:   threadID,
		SenderID:   s.userID,
		SenderName: s.displayName,
		Content:    content,
		Mentions:   mentions,
		CreatedAt:  time.Now(),
		Status:     domain.StatusPending,
	}
	s.store.AddMessage(threadID, local)

	sent, err := s.api.CreateMessage(ctx, threadID, api.CreateMessageInput{Content: content, Mentions: mentions})
	if err != nil {
		failed := domain.StatusFailed
		s.store.UpdateMessage(threadID, local.ID, store.MessagePatch{Status: &failed})
		return nil, fmt.Errorf("sending message: %w", err)
	}

	// The push path may already have delivered the confirmed message;
	// AddMessage deduplicates by ID so firing both is safe.
	s.store.RemoveMessage(threadID, local.ID)
	confirmed := *sent
	confirmed.Status = domain.StatusConfirmed
	s.store.AddMessage(threadID, confirmed)
	s.store.BumpThreadActivity(threadID, confirmed.CreatedAt)
	return &confirmed, nil
}

// EditMessage edits a message and patches the local log from the response.
func (s *Session) EditMessage(ctx context.Context, threadID, messageID uuid.UUID, content string) error {
	updated, err := s.api.UpdateMessage(ctx, messageID, content)
	if err != nil {
		return err
	}
	s.store.UpdateMessage(threadID, messageID, store.MessagePatch{
		Content:  &updated.Content,
		EditedAt: updated.EditedAt,
	})
	return nil
}

// DeleteMessage deletes a message remotely and locally.
func (s *Session) DeleteMessage(ctx context.Context, threadID, messageID uuid.UUID) error {
	if err := s.api.DeleteMessage(ctx, messageID); err != nil {
		return err
	}
	s.store.RemoveMessage(threadID, messageID)
	return nil
}

// Logout clears all session state and tears down the live connection.
func (s *Session) Logout() {
	s.mu.Lock()
	s.activeChannel = uuid.Nil
	s.activeThread = uuid.Nil
	t := s.transport
	s.mu.Unlock()
	s.store.Reset()
	t.Close()
}
