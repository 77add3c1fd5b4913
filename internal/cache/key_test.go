package cache_test

import (
	"testing"
	"time"

	"github.com/aikodesk/aiko/internal/cache"
	"github.com/aikodesk/aiko/internal/conversation"
)

func contextWindow() []conversation.Turn {
	return []conversation.Turn{
		{Role: conversation.RoleUser, Content: "hello"},
		{Role: conversation.RoleAssistant, Content: "Hi there!"},
		{Role: conversation.RoleUser, Content: "how are you?"},
		{Role: conversation.RoleAssistant, Content: "Doing well."},
	}
}

func TestDeriveKeyDeterministic(t *testing.T) {
	t.Parallel()

	a := cache.DeriveKey("what time is it?", contextWindow())
	b := cache.DeriveKey("what time is it?", contextWindow())
	if a != b {
		t.Fatalf("identical inputs produced different keys: %s vs %s", a, b)
	}
}

func TestDeriveKeyIgnoresTimestampsAndProvenance(t *testing.T) {
	t.Parallel()

	window := contextWindow()
	a := cache.DeriveKey("ping", window)

	// Same role/content, different timestamps and cache flags.
	for i := range window {
		window[i].CreatedAt = time.Now().Add(time.Duration(i) * time.Hour)
		window[i].FromCache = true
	}
	b := cache.DeriveKey("ping", window)

	if a != b {
		t.Fatal("timestamps or cache provenance leaked into the key")
	}
}

func TestDeriveKeySensitivity(t *testing.T) {
	t.Parallel()

	base := cache.DeriveKey("hello", contextWindow())

	tests := []struct {
		name      string
		utterance string
		mutate    func([]conversation.Turn) []conversation.Turn
	}{
		{
			name:      "different utterance",
			utterance: "hello!",
			mutate:    func(w []conversation.Turn) []conversation.Turn { return w },
		},
		{
			name:      "different turn content",
			utterance: "hello",
			mutate: func(w []conversation.Turn) []conversation.Turn {
				w[1].Content = "Hello there!"
				return w
			},
		},
		{
			name:      "different turn role",
			utterance: "hello",
			mutate: func(w []conversation.Turn) []conversation.Turn {
				w[1].Role = conversation.RoleUser
				return w
			},
		},
		{
			name:      "shorter window",
			utterance: "hello",
			mutate:    func(w []conversation.Turn) []conversation.Turn { return w[:2] },
		},
		{
			name:      "field boundary shift",
			utterance: "helloh",
			mutate: func(w []conversation.Turn) []conversation.Turn {
				// Moves a byte across the utterance/context boundary; the
				// length prefixes must keep the keys apart.
				w[0].Content = "ello"
				return w
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			key := cache.DeriveKey(tt.utterance, tt.mutate(contextWindow()))
			if key == base {
				t.Error("distinct inputs produced the same key")
			}
		})
	}
}

func TestDeriveKeyEmptyContext(t *testing.T) {
	t.Parallel()

	a := cache.DeriveKey("hello", nil)
	b := cache.DeriveKey("hello", []conversation.Turn{})
	if a != b {
		t.Fatal("nil and empty context windows produced different keys")
	}

	var zero cache.Key
	if a == zero {
		t.Fatal("empty-context key is the zero key")
	}
	if len(a.String()) != 64 {
		t.Errorf("key hex length = %d, want 64", len(a.String()))
	}
}
