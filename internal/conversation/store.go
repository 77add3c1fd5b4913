package conversation

import "sync"

// DefaultMaxExchanges is the retained-exchange limit when none is configured.
const DefaultMaxExchanges = 10

// Store is the ordered conversation transcript. Insertion order is
// chronological order. After every append the transcript is trimmed to at
// most 2×maxExchanges turns by dropping the oldest; because turns arrive one
// at a time, shedding always happens at the front and whole exchanges leave
// the window together. Safe for concurrent use.
type Store struct {
	mu           sync.RWMutex
	turns        []Turn
	maxExchanges int
}

// NewStore creates an empty store retaining at most maxExchanges exchanges.
// Non-positive values fall back to DefaultMaxExchanges.
func NewStore(maxExchanges int) *Store {
	if maxExchanges <= 0 {
		maxExchanges = DefaultMaxExchanges
	}
	return &Store{maxExchanges: maxExchanges}
}

// Append adds a turn to the end of the transcript and trims to the
// retained-length invariant. Infallible.
func (s *Store) Append(turn Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, turn)
	s.trimLocked()
}

// trimLocked drops the oldest turns until the transcript fits the invariant.
// Caller must hold s.mu.
func (s *Store) trimLocked() {
	limit := 2 * s.maxExchanges
	if over := len(s.turns) - limit; over > 0 {
		s.turns = append(s.turns[:0:0], s.turns[over:]...)
	}
}

// RecentSuffix returns the last count turns (or fewer if the transcript is
// shorter), in chronological order. The returned slice is a copy.
func (s *Store) RecentSuffix(count int) []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if count <= 0 {
		return nil
	}
	if count > len(s.turns) {
		count = len(s.turns)
	}
	if count == 0 {
		return nil
	}

	result := make([]Turn, count)
	copy(result, s.turns[len(s.turns)-count:])
	return result
}

// Snapshot returns a copy of the full transcript in chronological order.
func (s *Store) Snapshot() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Turn, len(s.turns))
	copy(result, s.turns)
	return result
}

// Len returns the number of retained turns.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}

// Clear empties the transcript.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
}

// replace swaps in a fully validated turn list, applying the trim invariant.
func (s *Store) replace(turns []Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = turns
	s.trimLocked()
}
