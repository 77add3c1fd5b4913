package conversation_test

import (
	"fmt"
	"testing"

	"github.com/aikodesk/aiko/internal/conversation"
)

// appendExchanges appends n full user/assistant exchanges with numbered content.
func appendExchanges(s *conversation.Store, n int) {
	for i := 0; i < n; i++ {
		s.Append(conversation.NewUserTurn(fmt.Sprintf("question-%d", i)))
		s.Append(conversation.NewAssistantTurn(fmt.Sprintf("answer-%d", i), false))
	}
}

func TestStoreAppendAndSnapshot(t *testing.T) {
	t.Parallel()

	store := conversation.NewStore(10)
	appendExchanges(store, 3)

	turns := store.Snapshot()
	if len(turns) != 6 {
		t.Fatalf("Snapshot: got %d turns, want 6", len(turns))
	}
	if turns[0].Role != conversation.RoleUser || turns[0].Content != "question-0" {
		t.Errorf("Snapshot[0] = %+v, want first user turn", turns[0])
	}
	if turns[5].Role != conversation.RoleAssistant || turns[5].Content != "answer-2" {
		t.Errorf("Snapshot[5] = %+v, want last assistant turn", turns[5])
	}
}

func TestStoreTrimsToWholeExchanges(t *testing.T) {
	t.Parallel()

	const maxExchanges = 4

	tests := []struct {
		name      string
		exchanges int
		wantLen   int
		wantFirst string
	}{
		{name: "under limit", exchanges: 3, wantLen: 6, wantFirst: "question-0"},
		{name: "at limit", exchanges: 4, wantLen: 8, wantFirst: "question-0"},
		{name: "one over", exchanges: 5, wantLen: 8, wantFirst: "question-1"},
		{name: "far over", exchanges: 9, wantLen: 8, wantFirst: "question-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := conversation.NewStore(maxExchanges)
			appendExchanges(store, tt.exchanges)

			turns := store.Snapshot()
			if len(turns) != tt.wantLen {
				t.Fatalf("got %d turns, want %d", len(turns), tt.wantLen)
			}
			if turns[0].Content != tt.wantFirst {
				t.Errorf("oldest turn = %q, want %q", turns[0].Content, tt.wantFirst)
			}
			// The trimmed transcript must still alternate user/assistant
			// starting with a user turn: whole exchanges only.
			for i, turn := range turns {
				want := conversation.RoleUser
				if i%2 == 1 {
					want = conversation.RoleAssistant
				}
				if turn.Role != want {
					t.Errorf("turn %d role = %q, want %q", i, turn.Role, want)
				}
			}
		})
	}
}

func TestStoreTrimDropsExactOverflow(t *testing.T) {
	t.Parallel()

	const maxExchanges = 10
	store := conversation.NewStore(maxExchanges)

	// 2×maxExchanges + k turns appended one at a time.
	const k = 6
	total := 2*maxExchanges + k
	for i := 0; i < total; i++ {
		role := conversation.RoleUser
		if i%2 == 1 {
			role = conversation.RoleAssistant
		}
		store.Append(conversation.Turn{Role: role, Content: fmt.Sprintf("turn-%d", i)})
	}

	if got := store.Len(); got != 2*maxExchanges {
		t.Fatalf("Len = %d, want %d", got, 2*maxExchanges)
	}
	turns := store.Snapshot()
	if turns[0].Content != fmt.Sprintf("turn-%d", k) {
		t.Errorf("oldest turn = %q, want %q (k oldest dropped)", turns[0].Content, fmt.Sprintf("turn-%d", k))
	}
}

func TestStoreRecentSuffix(t *testing.T) {
	t.Parallel()

	store := conversation.NewStore(10)
	appendExchanges(store, 5)

	tests := []struct {
		name      string
		count     int
		wantLen   int
		wantFirst string
	}{
		{name: "subset", count: 4, wantLen: 4, wantFirst: "question-3"},
		{name: "exact", count: 10, wantLen: 10, wantFirst: "question-0"},
		{name: "more than stored", count: 50, wantLen: 10, wantFirst: "question-0"},
		{name: "zero", count: 0, wantLen: 0},
		{name: "negative", count: -1, wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			suffix := store.RecentSuffix(tt.count)
			if len(suffix) != tt.wantLen {
				t.Fatalf("RecentSuffix(%d): got %d turns, want %d", tt.count, len(suffix), tt.wantLen)
			}
			if tt.wantLen > 0 && suffix[0].Content != tt.wantFirst {
				t.Errorf("RecentSuffix(%d)[0] = %q, want %q", tt.count, suffix[0].Content, tt.wantFirst)
			}
		})
	}
}

func TestStoreClear(t *testing.T) {
	t.Parallel()

	store := conversation.NewStore(10)
	appendExchanges(store, 2)

	store.Clear()
	if got := store.Len(); got != 0 {
		t.Fatalf("Len after Clear = %d, want 0", got)
	}
	if suffix := store.RecentSuffix(4); len(suffix) != 0 {
		t.Errorf("RecentSuffix after Clear returned %d turns", len(suffix))
	}
}

func TestStoreDefaultMaxExchanges(t *testing.T) {
	t.Parallel()

	store := conversation.NewStore(0)
	appendExchanges(store, conversation.DefaultMaxExchanges+3)

	if got := store.Len(); got != 2*conversation.DefaultMaxExchanges {
		t.Fatalf("Len = %d, want %d", got, 2*conversation.DefaultMaxExchanges)
	}
}
