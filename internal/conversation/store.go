// Package conversation holds the in-memory message state for one session.
// The sequence is append-only: ids are unique, nothing is reordered and
// nothing is ever deleted. State starts empty on every launch.
package conversation

import (
	"sync"

	"github.com/google/uuid"
)

// Store is the insertion-ordered sequence of messages. Messages are owned
// exclusively by the store; lookups hand out copies, never aliases.
type Store struct {
	mu        sync.Mutex
	messages  []*Message
	onRefresh func()
}

// NewStore creates an empty store. onRefresh is invoked outside the lock
// after every append and every effective update; it stands in for the
// scroll-to-latest refresh of a visual client and may be nil.
func NewStore(onRefresh func()) *Store {
	return &Store{onRefresh: onRefresh}
}

// Append adds a message at the tail and returns its fresh id.
func (s *Store) Append(role Role, text string) string {
	m := &Message{ID: uuid.NewString(), Role: role, Text: text}

	s.mu.Lock()
	s.messages = append(s.messages, m)
	s.mu.Unlock()

	s.refresh()
	return m.ID
}

// Update replaces the text of the message with the given id. A missing id is
// a deliberate idempotent no-op, not an error: a stale update simply has
// nothing left to land on and is dropped silently.
func (s *Store) Update(id, text string) {
	s.mu.Lock()
	var hit bool
	for _, m := range s.messages {
		if m.ID == id {
			m.Text = text
			hit = true
			break
		}
	}
	s.mu.Unlock()

	if hit {
		s.refresh()
	}
}

// Find returns a copy of the message with the given id. Conversations stay
// small, so a linear scan is fine.
func (s *Store) Find(id string) (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if m.ID == id {
			return *m, true
		}
	}
	return Message{}, false
}

// Messages returns an ordered snapshot of the whole conversation.
func (s *Store) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	for i, m := range s.messages {
		out[i] = *m
	}
	return out
}

// Len reports the number of messages.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

func (s *Store) refresh() {
	if s.onRefresh != nil {
		s.onRefresh()
	}
}
