package assistant

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aikodesk/aiko/internal/cache"
	"github.com/aikodesk/aiko/internal/conversation"
	"github.com/aikodesk/aiko/internal/provider"
	"github.com/aikodesk/aiko/internal/provider/providertest"
	"github.com/aikodesk/aiko/internal/sentiment"
	"github.com/aikodesk/aiko/pkg/emotion"
)

func newTestOrchestrator(t *testing.T, fake *providertest.Fake) *Orchestrator {
	t.Helper()

	dir := t.TempDir()
	o := NewOrchestrator(OrchestratorDeps{
		Store:        conversation.NewStore(defaultMaxExchanges),
		Cache:        cache.New(filepath.Join(dir, "cache.bin")),
		Classifier:   sentiment.NewClassifier(),
		State:        NewStateHolder(),
		SystemPrompt: defaultSystemPrompt,
		MaxExchanges: defaultMaxExchanges,
		KeyExchanges: defaultKeyExchanges,
		HistoryPath:  filepath.Join(dir, "history.json"),
	})
	if fake != nil {
		o.SetCompleter(fake)
	}
	return o
}

func TestHandle_CacheHitSkipsBackend(t *testing.T) {
	t.Parallel()

	fake := providertest.NewFake(providertest.Response{Content: "Hi there!"})
	o := newTestOrchestrator(t, fake)

	got, _, err := o.Handle(context.Background(), "hello")
	if err != nil {
		t.Fatalf("first Handle: %v", err)
	}
	if got != "Hi there!" {
		t.Fatalf("first response = %q, want Hi there!", got)
	}
	if fake.CallCount() != 1 {
		t.Fatalf("backend called %d times, want 1", fake.CallCount())
	}

	// Identical utterance with identical (empty) preceding context must be
	// served from the cache.
	o.ClearHistory()
	got, state, err := o.Handle(context.Background(), "hello")
	if err != nil {
		t.Fatalf("second Handle: %v", err)
	}
	if got != "Hi there!" {
		t.Errorf("cached response = %q, want Hi there!", got)
	}
	if fake.CallCount() != 1 {
		t.Errorf("backend called %d times after hit, want still 1", fake.CallCount())
	}
	if want := o.classifier.Classify("Hi there!"); state != want {
		t.Errorf("state = %v, want classify(response) = %v", state, want)
	}

	// The hit still appended both turns, the assistant one cache-marked.
	turns := o.History()
	if len(turns) != 2 {
		t.Fatalf("history has %d turns, want 2", len(turns))
	}
	if !turns[1].FromCache {
		t.Error("cached assistant turn not marked FromCache")
	}
}

func TestHandle_ContextChangesKey(t *testing.T) {
	t.Parallel()

	fake := providertest.NewFake(
		providertest.Response{Content: "first"},
		providertest.Response{Content: "second"},
		providertest.Response{Content: "third"},
	)
	o := newTestOrchestrator(t, fake)

	for _, u := range []string{"hello", "something else", "hello"} {
		if _, _, err := o.Handle(context.Background(), u); err != nil {
			t.Fatalf("Handle(%q): %v", u, err)
		}
	}

	// The third "hello" has different preceding context, so it must miss.
	if fake.CallCount() != 3 {
		t.Errorf("backend called %d times, want 3", fake.CallCount())
	}
}

func TestHandle_EmptyInput(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "   ", "\n\t"} {
		fake := providertest.NewFake(providertest.Response{Content: "unused"})
		o := newTestOrchestrator(t, fake)

		got, state, err := o.Handle(context.Background(), input)
		if err != nil {
			t.Fatalf("Handle(%q): %v", input, err)
		}
		if got != emptyInputMessage {
			t.Errorf("Handle(%q) = %q, want fixed prompt", input, got)
		}
		if state != emotion.StateError {
			t.Errorf("Handle(%q) state = %v, want error", input, state)
		}
		if o.State().Get() != emotion.StateError {
			t.Errorf("holder state = %v, want error", o.State().Get())
		}
		if fake.CallCount() != 0 {
			t.Errorf("backend called for empty input")
		}
		if o.HistoryLen() != 0 {
			t.Errorf("history mutated for empty input: %d turns", o.HistoryLen())
		}
		if o.cache.Len() != 0 {
			t.Errorf("cache mutated for empty input: %d entries", o.cache.Len())
		}
	}
}

func TestHandle_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		backend error
		want    error
	}{
		{"auth passes through", provider.ErrAuth, provider.ErrAuth},
		{"rate limit passes through", provider.ErrRateLimit, provider.ErrRateLimit},
		{"empty response passes through", provider.ErrEmptyResponse, provider.ErrEmptyResponse},
		{"other wrapped in processing", errors.New("connection reset"), ErrProcessing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fake := providertest.NewFake(providertest.Response{Err: tt.backend})
			o := newTestOrchestrator(t, fake)

			_, state, err := o.Handle(context.Background(), "hello")
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			if state != emotion.StateError {
				t.Errorf("state = %v, want error", state)
			}
			if o.State().Get() != emotion.StateError {
				t.Errorf("holder state = %v, want error", o.State().Get())
			}
		})
	}
}

func TestHandle_Busy(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	entered := make(chan struct{})
	blocking := &blockingCompleter{entered: entered, release: release}
	o := newTestOrchestrator(t, nil)
	o.SetCompleter(blocking)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _, _ = o.Handle(context.Background(), "slow one")
	}()

	<-entered
	_, _, err := o.Handle(context.Background(), "impatient")
	if !errors.Is(err, ErrBusy) {
		t.Errorf("concurrent Handle = %v, want ErrBusy", err)
	}

	close(release)
	wg.Wait()
}

type blockingCompleter struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingCompleter) Complete(context.Context, provider.CompletionRequest) (provider.CompletionResponse, error) {
	b.once.Do(func() { close(b.entered) })
	<-b.release
	return provider.CompletionResponse{Content: "done"}, nil
}

func (b *blockingCompleter) ModelName() string { return "blocking" }

func TestHandle_MessageWindow(t *testing.T) {
	t.Parallel()

	fake := providertest.NewFake(providertest.Response{Content: "ok"})
	o := newTestOrchestrator(t, fake)

	if _, _, err := o.Handle(context.Background(), "hello"); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	req, ok := fake.LastRequest()
	if !ok {
		t.Fatal("no request recorded")
	}
	if len(req.Messages) != 2 {
		t.Fatalf("request has %d messages, want system + user", len(req.Messages))
	}
	if req.Messages[0].Role != provider.MessageRoleSystem || req.Messages[0].Content != defaultSystemPrompt {
		t.Errorf("first message = %+v, want system preamble", req.Messages[0])
	}
	// The user turn is appended before the call, so the window includes it.
	if req.Messages[1].Role != provider.MessageRoleUser || req.Messages[1].Content != "hello" {
		t.Errorf("last message = %+v, want the new utterance", req.Messages[1])
	}
}

func TestHandle_StateTransitions(t *testing.T) {
	t.Parallel()

	fake := providertest.NewFake(providertest.Response{Content: "This is wonderful, I love it!"})
	o := newTestOrchestrator(t, fake)

	ch, cancel := o.State().Subscribe()
	defer cancel()

	_, final, err := o.Handle(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if final != emotion.StateHappy {
		t.Errorf("final state = %v, want happy", final)
	}

	var seen []emotion.State
	for len(seen) < 3 {
		select {
		case s := <-ch:
			seen = append(seen, s)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for states, saw %v", seen)
		}
	}
	want := []emotion.State{emotion.StateProcessing, emotion.StateResponding, emotion.StateHappy}
	for i, s := range want {
		if seen[i] != s {
			t.Errorf("state[%d] = %v, want %v", i, seen[i], s)
		}
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	t.Parallel()

	fake := providertest.NewFake(providertest.Response{Content: "Hi there!"})
	o := newTestOrchestrator(t, fake)

	if _, _, err := o.Handle(context.Background(), "hello"); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	before := o.History()

	if err := o.SaveHistory(); err != nil {
		t.Fatalf("SaveHistory: %v", err)
	}
	o.ClearHistory()
	if o.HistoryLen() != 0 {
		t.Fatal("ClearHistory left turns behind")
	}
	if err := o.LoadHistory(); err != nil {
		t.Fatalf("LoadHistory: %v", err)
	}

	after := o.History()
	if len(after) != len(before) {
		t.Fatalf("restored %d turns, want %d", len(after), len(before))
	}
	for i := range before {
		if after[i].Role != before[i].Role || after[i].Content != before[i].Content {
			t.Errorf("turn %d = %+v, want %+v", i, after[i], before[i])
		}
		if !after[i].CreatedAt.Equal(before[i].CreatedAt) {
			t.Errorf("turn %d timestamp = %v, want %v", i, after[i].CreatedAt, before[i].CreatedAt)
		}
		if after[i].FromCache != before[i].FromCache {
			t.Errorf("turn %d cache flag = %v, want %v", i, after[i].FromCache, before[i].FromCache)
		}
	}
}

func TestLoadHistory_MissingFile(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t, providertest.NewFake())
	if err := o.LoadHistory(); !errors.Is(err, conversation.ErrPersistence) {
		t.Errorf("LoadHistory = %v, want ErrPersistence", err)
	}
}

type countingMetrics struct {
	mu                              sync.Mutex
	hits, misses, completions, errs int
}

func (c *countingMetrics) RecordCacheHit() {
	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
}

func (c *countingMetrics) RecordCacheMiss() {
	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
}

func (c *countingMetrics) RecordCompletion(time.Duration) {
	c.mu.Lock()
	c.completions++
	c.mu.Unlock()
}

func (c *countingMetrics) RecordError() {
	c.mu.Lock()
	c.errs++
	c.mu.Unlock()
}

func TestHandle_Metrics(t *testing.T) {
	t.Parallel()

	fake := providertest.NewFake(providertest.Response{Content: "Hi there!"})
	o := newTestOrchestrator(t, fake)
	rec := &countingMetrics{}
	o.SetMetrics(rec)

	_, _, _ = o.Handle(context.Background(), "hello")
	o.ClearHistory()
	_, _, _ = o.Handle(context.Background(), "hello")

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.misses != 1 || rec.hits != 1 || rec.completions != 1 || rec.errs != 0 {
		t.Errorf("metrics = %+v, want 1 miss, 1 hit, 1 completion, 0 errors", rec)
	}
}
