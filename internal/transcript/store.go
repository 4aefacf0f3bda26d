package transcript

import (
	"sync"

	"github.com/futig/coverletter-backend/internal/entity"
)

const defaultSubscriberBuffer = 32

// Store is an append-only, insertion-ordered message log of one conversation
type Store struct {
	mu          sync.RWMutex
	messages    []entity.Message
	subscribers map[int]chan entity.Message
	nextSubID   int
}

func NewStore() *Store {
	return &Store{
		subscribers: make(map[int]chan entity.Message),
	}
}

// Append adds a message at the end of the log and fans it out to subscribers.
// Subscribers with a full buffer miss the message; All stays authoritative.
func (s *Store) Append(msg entity.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, msg)

	for _, ch := range s.subscribers {
		select {
		case ch <- msg:
		default:
		}
	}
}

// All returns a snapshot copy of the log
func (s *Store) All() []entity.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.messages)
}

// HasAsked reports whether an asker text message with exactly this text was logged
func (s *Store) HasAsked(text string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.messages {
		if m.Origin == entity.OriginAsker && m.Kind == entity.MessageKindText && m.Text == text {
			return true
		}
	}
	return false
}

// Subscribe returns a channel receiving every message appended after the call.
// The returned cancel func closes the channel and is safe to call more than once.
func (s *Store) Subscribe() (<-chan entity.Message, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan entity.Message, defaultSubscriberBuffer)
	s.subscribers[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subscribers, id)
			close(ch)
		})
	}

	return ch, cancel
}
