package ai

import (
	"context"
	"fmt"
	"sync"
)

// UsageRecorder accumulates token usage under a key, typically the engine
// name.
type UsageRecorder interface {
	// Record adds token usage for a key.
	Record(key string, tokens int) error
	// Usage returns total tokens recorded for a key.
	Usage(key string) int64
}

// InMemoryUsage is a simple in-memory usage tracker.
type InMemoryUsage struct {
	mu    sync.RWMutex
	usage map[string]int64
}

// NewInMemoryUsage creates a new in-memory usage tracker.
func NewInMemoryUsage() *InMemoryUsage {
	return &InMemoryUsage{usage: make(map[string]int64)}
}

func (u *InMemoryUsage) Record(key string, tokens int) error {
	if tokens < 0 {
		return fmt.Errorf("tokens must be non-negative, got %d", tokens)
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	u.usage[key] += int64(tokens)
	return nil
}

func (u *InMemoryUsage) Usage(key string) int64 {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.usage[key]
}

// Totals returns a copy of all recorded usage.
func (u *InMemoryUsage) Totals() map[string]int64 {
	u.mu.RLock()
	defer u.mu.RUnlock()

	out := make(map[string]int64, len(u.usage))
	for k, v := range u.usage {
		out[k] = v
	}
	return out
}

// RecordingProvider wraps a Provider and records the tokens of every
// successful completion under a fixed key.
type RecordingProvider struct {
	Provider
	Recorder UsageRecorder
	Key      string
}

func (p *RecordingProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	resp, err := p.Provider.Complete(ctx, req)
	if err != nil {
		return resp, err
	}
	// Recording failures never fail the completion itself.
	_ = p.Recorder.Record(p.Key, resp.TotalTokens())
	return resp, nil
}
