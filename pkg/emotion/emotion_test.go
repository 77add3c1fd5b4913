package emotion_test

import (
	"testing"

	"github.com/aikodesk/aiko/pkg/emotion"
)

func TestStateValid(t *testing.T) {
	t.Parallel()

	valid := []emotion.State{
		emotion.StateIdle,
		emotion.StateHappy,
		emotion.StateSad,
		emotion.StateConfused,
		emotion.StateThinking,
		emotion.StateProcessing,
		emotion.StateResponding,
		emotion.StateError,
		emotion.StateListening,
	}
	for _, s := range valid {
		if !s.Valid() {
			t.Errorf("State(%q).Valid() = false, want true", s)
		}
	}

	for _, s := range []emotion.State{"", "angry", "IDLE"} {
		if s.Valid() {
			t.Errorf("State(%q).Valid() = true, want false", s)
		}
	}
}

func TestStateString(t *testing.T) {
	t.Parallel()

	if got := emotion.StateHappy.String(); got != "happy" {
		t.Errorf("StateHappy.String() = %q, want %q", got, "happy")
	}
}
