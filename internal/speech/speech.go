// Package speech defines the interfaces the engine consumes for text-to-speech
// and speech-to-text. The engines themselves are opaque: concrete
// implementations live in module packages (e.g. speech.command).
package speech

import (
	"context"
	"errors"
	"time"
)

// ErrRecognition indicates the speech-to-text engine failed. Distinct from
// "no speech detected", which Listen reports as an empty string and nil error.
var ErrRecognition = errors.New("speech: recognition failed")

// Speaker converts text to audible speech. Speak is fire-and-forget from the
// orchestrator's point of view: failures are logged, never surfaced.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Listener captures one utterance from the microphone.
//
// timeout bounds the wait for speech to begin; phraseLimit bounds the length
// of the captured phrase. A timeout is not an error: Listen returns ("", nil).
type Listener interface {
	Listen(ctx context.Context, timeout, phraseLimit time.Duration) (string, error)
}

// VolumeController is an optional capability a Speaker may declare. Callers
// must check SupportsVolumeControl before calling SetVolume; an engine whose
// backend has no volume knob reports false and SetVolume is never invoked.
type VolumeController interface {
	// SupportsVolumeControl reports whether the engine can adjust volume.
	SupportsVolumeControl() bool

	// SetVolume sets the speech volume, from 0.0 (mute) to 1.0 (full).
	SetVolume(level float64) error
}
