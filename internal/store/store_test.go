package store_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stafflyhq/chat/internal/domain"
	"github.com/stafflyhq/chat/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelDirectoryGrouping(t *testing.T) {
	s := store.New()
	other := uuid.New()
	s.SetChannels([]domain.Channel{
		{ID: uuid.New(), Name: "general", Type: domain.ChannelPublic},
		{ID: uuid.New(), Name: "hr-private", Type: domain.ChannelPrivate},
		{ID: uuid.New(), Type: domain.ChannelDirect, OtherUserID: &other},
	})

	assert.Len(t, s.ChannelsByType(domain.ChannelPublic), 1)
	assert.Len(t, s.ChannelsByType(domain.ChannelPrivate), 1)
	assert.Len(t, s.ChannelsByType(domain.ChannelDirect), 1)
	assert.Len(t, s.Channels(), 3)
}

func TestAddChannelIsIdempotent(t *testing.T) {
	s := store.New()
	ch := domain.Channel{ID: uuid.New(), Name: "general", Type: domain.ChannelPublic}

	s.AddChannel(ch)
	s.AddChannel(ch)

	assert.Len(t, s.Channels(), 1)
}

func TestDirectChannelWith(t *testing.T) {
	s := store.New()
	other := uuid.New()
	direct := domain.Channel{ID: uuid.New(), Type: domain.ChannelDirect, OtherUserID: &other}
	s.SetChannels([]domain.Channel{
		{ID: uuid.New(), Name: "general", Type: domain.ChannelPublic},
		direct,
	})

	found, ok := s.DirectChannelWith(other)
	require.True(t, ok)
	assert.Equal(t, direct.ID, found.ID)

	_, ok = s.DirectChannelWith(uuid.New())
	assert.False(t, ok)
}

func TestThreadsOrderedByActivity(t *testing.T) {
	s := store.New()
	channelID := uuid.New()
	old := domain.Thread{ID: uuid.New(), ChannelID: channelID, Title: "old", LastActivityAt: base}
	fresh := domain.Thread{ID: uuid.New(), ChannelID: channelID, Title: "fresh", LastActivityAt: base.Add(time.Hour)}

	s.SetThreads(channelID, []domain.Thread{old, fresh})

	threads := s.ThreadsFor(channelID)
	require.Len(t, threads, 2)
	assert.Equal(t, "fresh", threads[0].Title)

	// A message in the old thread moves it back to the top.
	s.BumpThreadActivity(old.ID, base.Add(2*time.Hour))
	assert.Equal(t, "old", s.ThreadsFor(channelID)[0].Title)
}

func TestUpdateThreadRefreshesMetadata(t *testing.T) {
	s := store.New()
	channelID := uuid.New()
	th := domain.Thread{ID: uuid.New(), ChannelID: channelID, Title: "before", LastActivityAt: base}
	s.SetThreads(channelID, []domain.Thread{th})

	th.Title = "after"
	s.UpdateThread(th)

	assert.Equal(t, "after", s.ThreadsFor(channelID)[0].Title)

	// Unknown threads are ignored.
	s.UpdateThread(domain.Thread{ID: uuid.New(), ChannelID: channelID, Title: "ghost"})
	assert.Len(t, s.ThreadsFor(channelID), 1)
}

func TestAddThreadIsIdempotent(t *testing.T) {
	s := store.New()
	th := domain.Thread{ID: uuid.New(), ChannelID: uuid.New(), Title: "topic", LastActivityAt: base}

	s.AddThread(th)
	s.AddThread(th)

	assert.Len(t, s.ThreadsFor(th.ChannelID), 1)
}

func TestResetClearsEverything(t *testing.T) {
	s := store.New()
	threadID := uuid.New()
	s.SetChannels([]domain.Channel{{ID: uuid.New(), Name: "general", Type: domain.ChannelPublic}})
	s.AddMessage(threadID, message(uuid.New(), "hi", base))
	s.IncrementUnread(threadID)
	s.AddTypingUser(threadID, uuid.New())

	s.Reset()

	assert.Empty(t, s.Channels())
	assert.Empty(t, s.Messages(threadID))
	assert.Zero(t, s.UnreadCount(threadID))
	assert.Empty(t, s.TypingUsers(threadID))
}
