package service

import (
	"sync"

	"github.com/kbtools/pdf-ingest/types"
)

const hubBufferSize = 64

// ProgressHub fans progress events out to any number of subscribers. The
// pipeline publishes synchronously, so delivery never blocks: a subscriber
// that falls behind misses events rather than stalling the run.
type ProgressHub struct {
	mu   sync.Mutex
	subs map[chan types.ProgressEvent]struct{}
}

func NewProgressHub() *ProgressHub {
	return &ProgressHub{
		subs: make(map[chan types.ProgressEvent]struct{}),
	}
}

// Subscribe registers a subscriber. The returned cancel func unregisters it
// and closes the channel; it is safe to call more than once.
func (h *ProgressHub) Subscribe() (<-chan types.ProgressEvent, func()) {
	ch := make(chan types.ProgressEvent, hubBufferSize)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers an event to every current subscriber without blocking.
func (h *ProgressHub) Publish(ev types.ProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
