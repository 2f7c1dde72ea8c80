package session

import (
	"log/slog"
	"sync"

	"github.com/aretw0/historyviewer/pkg/domain"
)

// Update is delivered to subscribers after a selection changed.
type Update struct {
	Selection domain.CompareSelection `json:"selection"`
	Delta     *domain.SelectionDelta  `json:"delta"`
}

// Broadcaster fans selection updates out to per-session subscribers.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Update]struct{} // SessionID -> Set of Channels
	logger      *slog.Logger
}

// NewBroadcaster creates an empty Broadcaster.
func NewBroadcaster(logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[string]map[chan Update]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a buffered channel for sessionID. The returned func
// unsubscribes and closes the channel; it is safe to call more than once.
func (b *Broadcaster) Subscribe(sessionID string) (<-chan Update, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Update, 10)
	if _, ok := b.subscribers[sessionID]; !ok {
		b.subscribers[sessionID] = make(map[chan Update]struct{})
	}
	b.subscribers[sessionID][ch] = struct{}{}

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs, ok := b.subscribers[sessionID]
		if !ok {
			return
		}
		if _, live := subs[ch]; !live {
			return
		}
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(b.subscribers, sessionID)
		}
	}
}

// Broadcast delivers u to every subscriber of sessionID without blocking.
// Slow subscribers miss updates.
func (b *Broadcaster) Broadcast(sessionID string, u Update) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subscribers[sessionID] {
		select {
		case ch <- u:
		default:
			b.logger.Warn("subscriber buffer full, dropping update", "session_id", sessionID)
		}
	}
}
