// Package store is the client-side state container for a messaging session:
// the cached channel and thread directories, the per-thread message logs,
// unread counters and typing sets. It is the sole mutator of that state; the
// transport and the UI both go through its methods, which makes the fetch
// path and the push path safe to interleave.
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stafflyhq/chat/internal/domain"
)

type Store struct {
	mu sync.RWMutex

	channels []domain.Channel
	threads  map[uuid.UUID][]domain.Thread  // channelID -> threads, most recent activity first
	messages map[uuid.UUID][]domain.Message // threadID -> log, created_at ascending
	unread   map[uuid.UUID]int
	typing   map[uuid.UUID]map[uuid.UUID]struct{}
}

func New() *Store {
	s := &Store{}
	s.reset()
	return s
}

// Reset clears all session state. Called at logout.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Store) reset() {
	s.channels = nil
	s.threads = make(map[uuid.UUID][]domain.Thread)
	s.messages = make(map[uuid.UUID][]domain.Message)
	s.unread = make(map[uuid.UUID]int)
	s.typing = make(map[uuid.UUID]map[uuid.UUID]struct{})
}

// SetChannels replaces the channel directory. Duplicate IDs in the input are
// dropped, first occurrence wins.
func (s *Store) SetChannels(channels []domain.Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[uuid.UUID]struct{}, len(channels))
	s.channels = s.channels[:0]
	for _, ch := range channels {
		if _, dup := seen[ch.ID]; dup {
			continue
		}
		seen[ch.ID] = struct{}{}
		s.channels = append(s.channels, ch)
	}
}

// AddChannel appends a channel to the directory. No-op if the ID is already
// present; the creation response is authoritative so no re-fetch follows.
func (s *Store) AddChannel(ch domain.Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.channels {
		if existing.ID == ch.ID {
			return
		}
	}
	s.channels = append(s.channels, ch)
}

func (s *Store) Channels() []domain.Channel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Channel, len(s.channels))
	copy(out, s.channels)
	return out
}

// ChannelsByType returns the directory slice for one sidebar group.
func (s *Store) ChannelsByType(t domain.ChannelType) []domain.Channel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Channel
	for _, ch := range s.channels {
		if ch.Type == t {
			out = append(out, ch)
		}
	}
	return out
}

// DirectChannelWith looks up an existing direct channel with the given
// counterpart. Callers must check here before creating a new direct channel
// so racing creations stay a best-effort duplicate, not the common case.
func (s *Store) DirectChannelWith(userID uuid.UUID) (domain.Channel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.channels {
		if ch.Type == domain.ChannelDirect && ch.OtherUserID != nil && *ch.OtherUserID == userID {
			return ch, true
		}
	}
	return domain.Channel{}, false
}

// SetThreads replaces the thread registry for a channel, ordered by most
// recent activity first.
func (s *Store) SetThreads(channelID uuid.UUID, threads []domain.Thread) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[uuid.UUID]struct{}, len(threads))
	out := make([]domain.Thread, 0, len(threads))
	for _, th := range threads {
		if _, dup := seen[th.ID]; dup {
			continue
		}
		seen[th.ID] = struct{}{}
		out = append(out, th)
	}
	sortThreads(out)
	s.threads[channelID] = out
}

// AddThread inserts a newly created thread into its channel's registry.
// No-op if the ID is already present.
func (s *Store) AddThread(th domain.Thread) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.threads[th.ChannelID]
	for _, existing := range list {
		if existing.ID == th.ID {
			return
		}
	}
	list = append(list, th)
	sortThreads(list)
	s.threads[th.ChannelID] = list
}

// UpdateThread refreshes a thread's metadata from a push event. No-op if the
// thread is not cached.
func (s *Store) UpdateThread(th domain.Thread) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.threads[th.ChannelID]
	for i := range list {
		if list[i].ID == th.ID {
			list[i] = th
			sortThreads(list)
			return
		}
	}
}

// BumpThreadActivity moves a thread up the registry when a message lands in
// it. No-op if the thread is unknown or the timestamp is older than what we
// already have.
func (s *Store) BumpThreadActivity(threadID uuid.UUID, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for channelID, list := range s.threads {
		for i := range list {
			if list[i].ID != threadID {
				continue
			}
			if at.After(list[i].LastActivityAt) {
				list[i].LastActivityAt = at
				sortThreads(list)
				s.threads[channelID] = list
			}
			return
		}
	}
}

func (s *Store) ThreadsFor(channelID uuid.UUID) []domain.Thread {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.threads[channelID]
	out := make([]domain.Thread, len(list))
	copy(out, list)
	return out
}

func sortThreads(list []domain.Thread) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].LastActivityAt.After(list[j].LastActivityAt)
	})
}
