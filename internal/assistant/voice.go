package assistant

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aikodesk/aiko/internal/speech"
	"github.com/aikodesk/aiko/pkg/emotion"
)

// VoiceController runs the background voice-capture loop: listen for one
// utterance, hand it to the orchestrator, repeat. It shares no mutable
// state with Handle except the StateHolder.
type VoiceController struct {
	orch   *Orchestrator
	logger *slog.Logger

	listenTimeout time.Duration
	phraseLimit   time.Duration

	mu       sync.Mutex
	running  atomic.Bool
	cancel   context.CancelFunc
	done     chan struct{}
	listener speech.Listener
}

// NewVoiceController creates a controller. The listener is attached at
// module start via SetListener.
func NewVoiceController(orch *Orchestrator, logger *slog.Logger, listenTimeout, phraseLimit time.Duration) *VoiceController {
	if logger == nil {
		logger = slog.Default()
	}
	return &VoiceController{
		orch:          orch,
		logger:        logger,
		listenTimeout: listenTimeout,
		phraseLimit:   phraseLimit,
	}
}

// SetListener attaches the speech-to-text engine.
func (v *VoiceController) SetListener(l speech.Listener) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.listener = l
}

// Running reports whether the capture loop is active.
func (v *VoiceController) Running() bool {
	return v.running.Load()
}

// Start launches the capture loop. Returns ErrVoiceAlreadyStarted if it is
// already running and ErrNoListener if no speech-to-text engine is
// configured.
func (v *VoiceController) Start() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.listener == nil {
		return ErrNoListener
	}
	if v.running.Load() {
		return ErrVoiceAlreadyStarted
	}

	ctx, cancel := context.WithCancel(context.Background())
	v.cancel = cancel
	v.done = make(chan struct{})
	v.running.Store(true)

	go v.loop(ctx)
	v.logger.Info("voice capture started")
	return nil
}

// Stop halts the capture loop. The liveness flag is checked once per
// iteration, so stop takes effect within one polling cycle; the in-flight
// listen attempt is cancelled immediately.
func (v *VoiceController) Stop() error {
	v.mu.Lock()
	if !v.running.Load() {
		v.mu.Unlock()
		return ErrVoiceNotStarted
	}
	v.running.Store(false)
	v.cancel()
	done := v.done
	v.mu.Unlock()

	<-done
	v.orch.State().Set(emotion.StateIdle)
	v.logger.Info("voice capture stopped")
	return nil
}

func (v *VoiceController) loop(ctx context.Context) {
	defer close(v.done)

	for v.running.Load() {
		v.orch.State().Set(emotion.StateListening)

		text, err := v.listener.Listen(ctx, v.listenTimeout, v.phraseLimit)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			// Recognition failure is not fatal to the loop.
			v.logger.Warn("speech recognition failed", "error", err)
			continue
		}
		if text == "" {
			// Timeout, no speech detected.
			continue
		}

		v.logger.Info("voice utterance captured", "length", len(text))
		if _, _, err := v.orch.Handle(ctx, text); err != nil {
			v.logger.Warn("voice utterance not handled", "error", err)
		}
	}
}
