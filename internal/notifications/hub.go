package notifications

import (
	"context"
	"errors"
	"sync"

	"studyhub/internal/middleware"
	"studyhub/internal/observability"
)

const (
	maxStreamsPerUser = 8
	maxStreams        = 10000
)

var (
	ErrUserStreamLimit = errors.New("user stream limit reached")
	ErrStreamLimit     = errors.New("server stream limit reached")
	ErrHubClosed       = errors.New("notification hub is shut down")
)

// Hub maps a user ID to that user's open streams.
type Hub struct {
	mu      sync.RWMutex
	streams map[uint]map[*Stream]struct{}
	total   int
	closed  bool
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{streams: make(map[uint]map[*Stream]struct{})}
}

// Register opens a stream for userID.
func (h *Hub) Register(userID uint) (*Stream, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	if h.total >= maxStreams {
		return nil, ErrStreamLimit
	}
	set, ok := h.streams[userID]
	if !ok {
		set = make(map[*Stream]struct{})
		h.streams[userID] = set
	}
	if len(set) >= maxStreamsPerUser {
		return nil, ErrUserStreamLimit
	}

	s := newStream(userID)
	set[s] = struct{}{}
	h.total++
	observability.NotificationStreams.Inc()
	return s, nil
}

// Unregister closes s and forgets it. Calling it twice is harmless.
func (h *Hub) Unregister(s *Stream) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.streams[s.UserID]
	if !ok {
		return
	}
	if _, exists := set[s]; !exists {
		return
	}
	delete(set, s)
	if len(set) == 0 {
		delete(h.streams, s.UserID)
	}
	h.total--
	observability.NotificationStreams.Dec()
	s.close()
}

// Broadcast queues message on every stream userID has open.
func (h *Hub) Broadcast(userID uint, message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	data := []byte(message)
	for s := range h.streams[userID] {
		if !s.trySend(data) {
			middleware.Logger.Warn("notification stream buffer full, dropping message", "user_id", userID)
		}
	}
}

// Connected reports how many streams userID has open.
func (h *Hub) Connected(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.streams[userID])
}

// StartWiring forwards every message published through n to the matching user's streams.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartPatternSubscriber(ctx, h.Broadcast)
}

// Shutdown closes all streams and refuses new registrations.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.streams {
		for s := range set {
			s.close()
			observability.NotificationStreams.Dec()
		}
	}
	h.streams = make(map[uint]map[*Stream]struct{})
	h.total = 0
	h.closed = true
	return nil
}

// Stream is one subscriber's outbound queue. Messages arrive on C until the stream is closed.
type Stream struct {
	UserID uint
	C      <-chan []byte

	send chan []byte
	once sync.Once
}

func newStream(userID uint) *Stream {
	ch := make(chan []byte, 64)
	return &Stream{UserID: userID, C: ch, send: ch}
}

// trySend must be called with the hub lock held so it never races close.
func (s *Stream) trySend(data []byte) bool {
	select {
	case s.send <- data:
		return true
	default:
		return false
	}
}

func (s *Stream) close() {
	s.once.Do(func() { close(s.send) })
}
