// Package providertest provides a scriptable fake Completer for tests.
package providertest

import (
	"context"
	"sync"

	"github.com/aikodesk/aiko/internal/provider"
)

// Fake is a scriptable in-memory Completer. Responses are consumed in order;
// when the script runs out, the last entry repeats. Safe for concurrent use.
type Fake struct {
	mu        sync.Mutex
	responses []Response
	calls     []provider.CompletionRequest
}

// Response is one scripted reply: either content or an error.
type Response struct {
	Content string
	Err     error
}

// Compile-time interface check.
var _ provider.Completer = (*Fake)(nil)

// NewFake creates a Fake that replies with the given responses in order.
func NewFake(responses ...Response) *Fake {
	return &Fake{responses: responses}
}

// Complete implements provider.Completer.
func (f *Fake) Complete(_ context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, req)

	if len(f.responses) == 0 {
		return provider.CompletionResponse{}, provider.ErrEmptyResponse
	}

	idx := len(f.calls) - 1
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	r := f.responses[idx]
	if r.Err != nil {
		return provider.CompletionResponse{}, r.Err
	}
	return provider.CompletionResponse{Content: r.Content}, nil
}

// ModelName implements provider.Completer.
func (f *Fake) ModelName() string {
	return "fake-model"
}

// CallCount returns the number of Complete calls received.
func (f *Fake) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// LastRequest returns the most recent request, or false if none were made.
func (f *Fake) LastRequest() (provider.CompletionRequest, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return provider.CompletionRequest{}, false
	}
	return f.calls[len(f.calls)-1], true
}
