package observability

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aretw0/easel/pkg/domain"
)

// subscriberBuffer bounds how far a slow consumer may lag before events are
// dropped for it.
const subscriberBuffer = 10

// Event wraps an interaction event with its type tag for transport.
type Event struct {
	Type    domain.EventType `json:"type"`
	Payload any              `json:"payload"`
}

// Stream fans interaction events out to subscribers.
type Stream struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

// NewStream creates an empty stream.
func NewStream() *Stream {
	return &Stream{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a listener. The returned cancel removes it and closes
// the channel; calling cancel more than once is safe.
func (s *Stream) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	s.subs[ch] = struct{}{}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, ch)
			close(ch)
		})
	}
	return ch, cancel
}

// Subscribers returns the number of active listeners.
func (s *Stream) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// Publish delivers the event to every subscriber. A subscriber with a full
// buffer is skipped rather than blocking the pointer handlers.
func (s *Stream) Publish(e Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for ch := range s.subs {
		select {
		case ch <- e:
		default:
			slog.Warn("observability: subscriber buffer full, dropping event", "type", e.Type)
		}
	}
}

// Hooks returns callbacks publishing every interaction event to the stream.
// The deployment selection mirrors are skipped; they repeat the selection
// events already published here.
func (s *Stream) Hooks() domain.InteractionHooks {
	return domain.InteractionHooks{
		OnNodeSelected: func(_ context.Context, e *domain.SelectionEvent) {
			s.Publish(Event{Type: e.Type, Payload: e})
		},
		OnSelectionCleared: func(_ context.Context, e *domain.SelectionEvent) {
			s.Publish(Event{Type: e.Type, Payload: e})
		},
		OnNodeMoved: func(_ context.Context, e *domain.NodeEvent) {
			s.Publish(Event{Type: e.Type, Payload: e})
		},
		OnNodeAdded: func(_ context.Context, e *domain.NodeEvent) {
			s.Publish(Event{Type: e.Type, Payload: e})
		},
		OnEdgeConnected: func(_ context.Context, e *domain.EdgeEvent) {
			s.Publish(Event{Type: e.Type, Payload: e})
		},
		OnEditPulse: func(_ context.Context, e *domain.PulseEvent) {
			s.Publish(Event{Type: e.Type, Payload: e})
		},
		OnGesture: func(_ context.Context, e *domain.GestureEvent) {
			s.Publish(Event{Type: e.Type, Payload: e})
		},
	}
}
