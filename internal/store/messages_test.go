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

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func message(id uuid.UUID, content string, at time.Time) domain.Message {
	return domain.Message{
		ID:        id,
		SenderID:  uuid.New(),
		Content:   content,
		CreatedAt: at,
	}
}

func contents(msgs []domain.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Content
	}
	return out
}

func TestAddMessageDeduplicatesByID(t *testing.T) {
	s := store.New()
	threadID := uuid.New()
	id := uuid.New()

	require.True(t, s.AddMessage(threadID, message(id, "first", base)))
	require.False(t, s.AddMessage(threadID, message(id, "second", base.Add(time.Second))))

	log := s.Messages(threadID)
	require.Len(t, log, 1)
	// First insertion wins; later arrivals of the same ID are not inserts.
	assert.Equal(t, "first", log[0].Content)

	newContent := "second"
	require.True(t, s.UpdateMessage(threadID, id, store.MessagePatch{Content: &newContent}))
	assert.Equal(t, "second", s.Messages(threadID)[0].Content)
}

func TestAddMessageKeepsTimestampOrder(t *testing.T) {
	s := store.New()
	threadID := uuid.New()

	s.AddMessage(threadID, message(uuid.New(), "b", base.Add(2*time.Second)))
	s.AddMessage(threadID, message(uuid.New(), "a", base.Add(time.Second)))
	s.AddMessage(threadID, message(uuid.New(), "c", base.Add(3*time.Second)))

	assert.Equal(t, []string{"a", "b", "c"}, contents(s.Messages(threadID)))
}

func TestAddMessageTiesKeepArrivalOrder(t *testing.T) {
	s := store.New()
	threadID := uuid.New()

	s.AddMessage(threadID, message(uuid.New(), "first-arrival", base))
	s.AddMessage(threadID, message(uuid.New(), "second-arrival", base))
	s.AddMessage(threadID, message(uuid.New(), "third-arrival", base))

	assert.Equal(t, []string{"first-arrival", "second-arrival", "third-arrival"}, contents(s.Messages(threadID)))
}

func TestSetMessagesSortsArbitraryInput(t *testing.T) {
	s := store.New()
	threadID := uuid.New()

	s.SetMessages(threadID, []domain.Message{
		message(uuid.New(), "c", base.Add(3*time.Second)),
		message(uuid.New(), "a", base.Add(time.Second)),
		message(uuid.New(), "b", base.Add(2*time.Second)),
	})

	assert.Equal(t, []string{"a", "b", "c"}, contents(s.Messages(threadID)))
}

func TestSetMessagesDropsRepeatedIdentifier(t *testing.T) {
	s := store.New()
	threadID := uuid.New()
	id := uuid.New()

	s.SetMessages(threadID, []domain.Message{
		message(id, "kept", base),
		message(uuid.New(), "other", base.Add(time.Second)),
		message(id, "dropped", base.Add(2*time.Second)),
	})

	log := s.Messages(threadID)
	require.Len(t, log, 2)
	assert.Equal(t, "kept", log[0].Content)
	assert.Equal(t, "other", log[1].Content)
}

func TestSetMessagesMergesWithPushedEntries(t *testing.T) {
	s := store.New()
	threadID := uuid.New()
	pushedID := uuid.New()

	// A push lands while the initial fetch is still in flight.
	s.AddMessage(threadID, message(pushedID, "pushed", base.Add(2*time.Second)))

	s.SetMessages(threadID, []domain.Message{
		message(uuid.New(), "fetched-1", base.Add(time.Second)),
		message(pushedID, "stale-copy", base.Add(2*time.Second)),
		message(uuid.New(), "fetched-2", base.Add(3*time.Second)),
	})

	log := s.Messages(threadID)
	require.Len(t, log, 3)
	// The wholesale load neither erased nor duplicated the pushed entry.
	assert.Equal(t, []string{"fetched-1", "pushed", "fetched-2"}, contents(log))
}

func TestUpdateMessageAbsentIsNoOp(t *testing.T) {
	s := store.New()
	threadID := uuid.New()
	content := "x"

	assert.False(t, s.UpdateMessage(threadID, uuid.New(), store.MessagePatch{Content: &content}))
	assert.Empty(t, s.Messages(threadID))
}

func TestRemoveMessage(t *testing.T) {
	s := store.New()
	threadID := uuid.New()
	id := uuid.New()

	s.AddMessage(threadID, message(id, "bye", base))
	assert.True(t, s.RemoveMessage(threadID, id))
	assert.Empty(t, s.Messages(threadID))

	assert.False(t, s.RemoveMessage(threadID, id))
}

func TestUpdateMessagePatchesStatus(t *testing.T) {
	s := store.New()
	threadID := uuid.New()
	id := uuid.New()

	pending := message(id, "hello", base)
	pending.Status = domain.StatusPending
	s.AddMessage(threadID, pending)

	failed := domain.StatusFailed
	require.True(t, s.UpdateMessage(threadID, id, store.MessagePatch{Status: &failed}))

	log := s.Messages(threadID)
	require.Len(t, log, 1)
	assert.Equal(t, domain.StatusFailed, log[0].Status)
	assert.Equal(t, "hello", log[0].Content)
}
