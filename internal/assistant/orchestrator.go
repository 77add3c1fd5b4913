package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aikodesk/aiko/internal/archive"
	"github.com/aikodesk/aiko/internal/cache"
	"github.com/aikodesk/aiko/internal/conversation"
	"github.com/aikodesk/aiko/internal/provider"
	"github.com/aikodesk/aiko/internal/sentiment"
	"github.com/aikodesk/aiko/internal/speech"
	"github.com/aikodesk/aiko/pkg/emotion"
)

// emptyInputMessage is the fixed reply for blank utterances.
const emptyInputMessage = "Please provide some input."

// MetricsRecorder receives orchestrator events. The gateway's metrics
// endpoint implements it; a nil recorder disables recording.
type MetricsRecorder interface {
	RecordCacheHit()
	RecordCacheMiss()
	RecordCompletion(latency time.Duration)
	RecordError()
}

// Orchestrator is the conversation façade: it answers one utterance at a
// time by consulting the response cache, falling back to the completion
// backend, and updating the transcript, the cache, and the emotional state.
//
// Handle is not reentrant. A second call while one is in flight returns
// ErrBusy instead of racing on the transcript and state field.
type Orchestrator struct {
	handleMu sync.Mutex

	store      *conversation.Store
	cache      *cache.Cache
	classifier *sentiment.Classifier
	state      *StateHolder
	logger     *slog.Logger

	systemPrompt string
	maxExchanges int
	keyExchanges int
	historyPath  string

	// Resolved from the service registry at module start. completer is
	// required; the rest are optional and nil when absent.
	completer provider.Completer
	speaker   speech.Speaker
	archive   archive.Store
	metrics   MetricsRecorder
}

// OrchestratorDeps carries the constructor dependencies.
type OrchestratorDeps struct {
	Store      *conversation.Store
	Cache      *cache.Cache
	Classifier *sentiment.Classifier
	State      *StateHolder
	Logger     *slog.Logger

	SystemPrompt string
	MaxExchanges int
	KeyExchanges int
	HistoryPath  string
}

// NewOrchestrator creates an orchestrator. The completion backend and the
// optional speaker, archive, and metrics collaborators are attached later
// via the setters, once the service registry has been populated.
func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		store:        deps.Store,
		cache:        deps.Cache,
		classifier:   deps.Classifier,
		state:        deps.State,
		logger:       logger,
		systemPrompt: deps.SystemPrompt,
		maxExchanges: deps.MaxExchanges,
		keyExchanges: deps.KeyExchanges,
		historyPath:  deps.HistoryPath,
	}
}

// SetCompleter attaches the completion backend. Must be called before Handle.
func (o *Orchestrator) SetCompleter(c provider.Completer) { o.completer = c }

// SetSpeaker attaches an optional text-to-speech engine.
func (o *Orchestrator) SetSpeaker(s speech.Speaker) { o.speaker = s }

// SetArchive attaches an optional permanent transcript archive.
func (o *Orchestrator) SetArchive(a archive.Store) { o.archive = a }

// SetMetrics attaches an optional metrics recorder.
func (o *Orchestrator) SetMetrics(m MetricsRecorder) { o.metrics = m }

// State returns the shared emotional-state holder.
func (o *Orchestrator) State() *StateHolder { return o.state }

// Handle answers one user utterance and returns the response text plus the
// classified emotional state.
//
// Blank input short-circuits to a fixed prompt with the error state and no
// transcript or cache mutation. A cache hit appends both turns and skips the
// completion call entirely. A miss appends the user turn first so the
// completion window includes it, calls the backend, and on success appends
// the assistant turn, inserts into the cache, and transitions through
// responding to the classified state.
//
// The completion call is detached from the caller's cancellation: once
// issued it runs to completion or failure.
func (o *Orchestrator) Handle(ctx context.Context, utterance string) (string, emotion.State, error) {
	if strings.TrimSpace(utterance) == "" {
		o.state.Set(emotion.StateError)
		return emptyInputMessage, emotion.StateError, nil
	}

	if !o.handleMu.TryLock() {
		return "", emotion.StateError, ErrBusy
	}
	defer o.handleMu.Unlock()

	requestID := uuid.NewString()
	logger := o.logger.With("request_id", requestID)

	o.state.Set(emotion.StateProcessing)

	key := cache.DeriveKey(utterance, o.store.RecentSuffix(2*o.keyExchanges))

	if cached, ok := o.cache.Lookup(key); ok {
		logger.Info("cache hit", "key", key.String())
		o.recordCacheHit()

		userTurn := conversation.NewUserTurn(utterance)
		assistantTurn := conversation.NewAssistantTurn(cached, true)
		o.store.Append(userTurn)
		o.store.Append(assistantTurn)
		o.archiveTurns(ctx, logger, userTurn, assistantTurn)

		state := o.classifier.Classify(cached)
		o.state.Set(state)
		o.speak(logger, cached)
		return cached, state, nil
	}

	logger.Info("cache miss, calling completion backend", "key", key.String())
	o.recordCacheMiss()

	userTurn := conversation.NewUserTurn(utterance)
	o.store.Append(userTurn)

	messages := o.buildMessages()

	// Run the completion to the end even if the caller goes away. There is
	// no mid-flight cancellation of a paid request.
	callCtx := context.WithoutCancel(ctx)

	started := time.Now()
	resp, err := o.completer.Complete(callCtx, provider.CompletionRequest{Messages: messages})
	if err != nil {
		o.state.Set(emotion.StateError)
		o.recordError()
		mapped := mapCompletionError(err)
		logger.Error("completion failed", "error", mapped)
		return "", emotion.StateError, mapped
	}
	o.recordCompletion(time.Since(started))
	logger.Info("completion succeeded",
		"model", o.completer.ModelName(),
		"latency", time.Since(started),
		"tokens", resp.Usage.Total,
	)

	assistantTurn := conversation.NewAssistantTurn(resp.Content, false)
	o.store.Append(assistantTurn)
	o.cache.Insert(key, resp.Content)
	o.archiveTurns(ctx, logger, userTurn, assistantTurn)

	o.state.Set(emotion.StateResponding)
	state := o.classifier.Classify(resp.Content)
	o.state.Set(state)
	o.speak(logger, resp.Content)
	return resp.Content, state, nil
}

// buildMessages assembles the completion window: the fixed system preamble
// followed by the retained transcript.
func (o *Orchestrator) buildMessages() []provider.Message {
	recent := o.store.RecentSuffix(2 * o.maxExchanges)
	messages := make([]provider.Message, 0, len(recent)+1)
	messages = append(messages, provider.Message{
		Role:    provider.MessageRoleSystem,
		Content: o.systemPrompt,
	})
	for _, turn := range recent {
		messages = append(messages, provider.Message{
			Role:    provider.MessageRole(turn.Role),
			Content: turn.Content,
		})
	}
	return messages
}

// mapCompletionError passes provider sentinels through unchanged and wraps
// everything else in ErrProcessing.
func mapCompletionError(err error) error {
	switch {
	case errors.Is(err, provider.ErrAuth),
		errors.Is(err, provider.ErrRateLimit),
		errors.Is(err, provider.ErrEmptyResponse):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrProcessing, err)
	}
}

// speak voices the response when a speaker is configured. Fire-and-forget:
// failures are logged, never surfaced.
func (o *Orchestrator) speak(logger *slog.Logger, text string) {
	if o.speaker == nil {
		return
	}
	go func() {
		if err := o.speaker.Speak(context.Background(), text); err != nil {
			logger.Warn("speech output failed", "error", err)
		}
	}()
}

// archiveTurns appends turns to the permanent transcript. Best-effort: a
// failed archive write never fails the chat.
func (o *Orchestrator) archiveTurns(ctx context.Context, logger *slog.Logger, turns ...conversation.Turn) {
	if o.archive == nil {
		return
	}
	for _, turn := range turns {
		entry := archive.Entry{
			Role:      string(turn.Role),
			Content:   turn.Content,
			FromCache: turn.FromCache,
			CreatedAt: turn.CreatedAt,
		}
		if err := o.archive.Append(ctx, entry); err != nil {
			logger.Warn("transcript archive append failed", "error", err)
		}
	}
}

func (o *Orchestrator) recordCacheHit() {
	if o.metrics != nil {
		o.metrics.RecordCacheHit()
	}
}

func (o *Orchestrator) recordCacheMiss() {
	if o.metrics != nil {
		o.metrics.RecordCacheMiss()
	}
}

func (o *Orchestrator) recordCompletion(latency time.Duration) {
	if o.metrics != nil {
		o.metrics.RecordCompletion(latency)
	}
}

func (o *Orchestrator) recordError() {
	if o.metrics != nil {
		o.metrics.RecordError()
	}
}

// SaveHistory persists the transcript to the configured history file.
// Unlike cache persistence, failures are surfaced.
func (o *Orchestrator) SaveHistory() error {
	if o.historyPath == "" {
		return fmt.Errorf("%w: no history path configured", conversation.ErrPersistence)
	}
	return o.store.SaveTo(o.historyPath)
}

// LoadHistory replaces the transcript with the configured history file's
// contents. Atomic replace-or-fail.
func (o *Orchestrator) LoadHistory() error {
	if o.historyPath == "" {
		return fmt.Errorf("%w: no history path configured", conversation.ErrPersistence)
	}
	return o.store.LoadFrom(o.historyPath)
}

// ClearHistory empties the transcript.
func (o *Orchestrator) ClearHistory() {
	o.store.Clear()
}

// HistoryLen returns the number of retained turns.
func (o *Orchestrator) HistoryLen() int {
	return o.store.Len()
}

// History returns a copy of the retained transcript.
func (o *Orchestrator) History() []conversation.Turn {
	return o.store.Snapshot()
}
