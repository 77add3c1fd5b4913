package assistant

import (
	"sync"

	"github.com/aikodesk/aiko/pkg/emotion"
)

// subscriberBuffer is the per-subscriber channel capacity. A subscriber that
// falls further behind than this misses intermediate states rather than
// blocking the writer.
const subscriberBuffer = 16

// StateHolder is the single mutable emotional-state field shared by text
// processing and voice capture. Writes are last-write-wins with no stacking:
// entering listening while a request is processing overwrites the displayed
// state, matching the one-field model the UI renders from.
type StateHolder struct {
	mu      sync.Mutex
	current emotion.State
	subs    map[int]chan emotion.State
	nextID  int
}

// NewStateHolder creates a holder starting in the idle state.
func NewStateHolder() *StateHolder {
	return &StateHolder{
		current: emotion.StateIdle,
		subs:    make(map[int]chan emotion.State),
	}
}

// Get returns the current state.
func (h *StateHolder) Get() emotion.State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Set updates the current state and notifies all subscribers.
func (h *StateHolder) Set(s emotion.State) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.current = s
	for _, ch := range h.subs {
		select {
		case ch <- s:
		default:
		}
	}
}

// Subscribe registers for state-change notifications. The returned channel
// is closed when the cancel function is called. Cancel is idempotent.
func (h *StateHolder) Subscribe() (<-chan emotion.State, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan emotion.State, subscriberBuffer)
	h.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}
