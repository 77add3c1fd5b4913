package assistant

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aikodesk/aiko/internal/provider/providertest"
	"github.com/aikodesk/aiko/pkg/emotion"
)

// scriptedListener replays a fixed sequence of listen results, then blocks
// until its context is cancelled.
type scriptedListener struct {
	mu      sync.Mutex
	results []listenResult
	calls   int
}

type listenResult struct {
	text string
	err  error
}

func (l *scriptedListener) Listen(ctx context.Context, _, _ time.Duration) (string, error) {
	l.mu.Lock()
	idx := l.calls
	l.calls++
	l.mu.Unlock()

	if idx < len(l.results) {
		r := l.results[idx]
		return r.text, r.err
	}
	<-ctx.Done()
	return "", ctx.Err()
}

func (l *scriptedListener) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func newTestVoice(t *testing.T, listener *scriptedListener, fake *providertest.Fake) *VoiceController {
	t.Helper()
	o := newTestOrchestrator(t, fake)
	v := NewVoiceController(o, nil, 50*time.Millisecond, 50*time.Millisecond)
	if listener != nil {
		v.SetListener(listener)
	}
	return v
}

func TestVoice_StartStop(t *testing.T) {
	t.Parallel()

	listener := &scriptedListener{}
	v := newTestVoice(t, listener, providertest.NewFake())

	if err := v.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !v.Running() {
		t.Error("Running() = false after Start")
	}
	if err := v.Start(); !errors.Is(err, ErrVoiceAlreadyStarted) {
		t.Errorf("second Start = %v, want ErrVoiceAlreadyStarted", err)
	}

	if err := v.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if v.Running() {
		t.Error("Running() = true after Stop")
	}
	if err := v.Stop(); !errors.Is(err, ErrVoiceNotStarted) {
		t.Errorf("second Stop = %v, want ErrVoiceNotStarted", err)
	}

	if got := v.orch.State().Get(); got != emotion.StateIdle {
		t.Errorf("state after Stop = %v, want idle", got)
	}
}

func TestVoice_NoListener(t *testing.T) {
	t.Parallel()

	v := newTestVoice(t, nil, providertest.NewFake())
	if err := v.Start(); !errors.Is(err, ErrNoListener) {
		t.Errorf("Start = %v, want ErrNoListener", err)
	}
}

func TestVoice_CapturedUtteranceIsHandled(t *testing.T) {
	t.Parallel()

	fake := providertest.NewFake(providertest.Response{Content: "Hi there!"})
	listener := &scriptedListener{results: []listenResult{
		{text: ""},      // timeout, no speech
		{text: "hello"}, // captured utterance
	}}
	v := newTestVoice(t, listener, fake)

	if err := v.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = v.Stop() })

	deadline := time.After(2 * time.Second)
	for fake.CallCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for the captured utterance to be handled")
		case <-time.After(10 * time.Millisecond):
		}
	}

	if got := v.orch.HistoryLen(); got != 2 {
		t.Errorf("history has %d turns, want 2", got)
	}
}

func TestVoice_RecognitionFailureContinues(t *testing.T) {
	t.Parallel()

	fake := providertest.NewFake(providertest.Response{Content: "ok"})
	listener := &scriptedListener{results: []listenResult{
		{err: errors.New("mic glitch")},
		{text: "hello"},
	}}
	v := newTestVoice(t, listener, fake)

	if err := v.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = v.Stop() })

	deadline := time.After(2 * time.Second)
	for fake.CallCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("loop did not survive the recognition failure")
		case <-time.After(10 * time.Millisecond):
		}
	}
	if listener.callCount() < 2 {
		t.Errorf("listener called %d times, want at least 2", listener.callCount())
	}
}
