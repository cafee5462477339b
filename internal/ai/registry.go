package ai

import (
	"fmt"
	"sync"
)

// CredentialError reports that the selected engine has no API credential
// configured. Callers are expected to pre-check with Available, but Resolve
// enforces the guard as well.
type CredentialError struct {
	Engine Engine
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("no API credential configured for engine %q", e.Engine)
}

// Registry holds one provider per engine. Unlike a fallback chain, resolution
// is exact: the user picked an engine, so a missing credential is surfaced
// rather than silently routed around.
type Registry struct {
	providers map[Engine]Provider
	mu        sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[Engine]Provider)}
}

// FromCredentials builds a registry with a provider for every engine that has
// a non-empty credential.
func FromCredentials(creds map[Engine]string) *Registry {
	r := NewRegistry()
	for engine, key := range creds {
		if key == "" {
			continue
		}
		switch engine {
		case EngineOpenAI:
			r.Register(engine, NewOpenAIProvider(key))
		case EngineDeepSeek:
			r.Register(engine, NewDeepSeekProvider(key))
		case EngineGrok:
			r.Register(engine, NewGrokProvider(key))
		case EngineGemini:
			r.Register(engine, NewGoogleProvider(key))
		}
	}
	return r
}

// Register adds a provider for an engine, replacing any existing one.
func (r *Registry) Register(engine Engine, provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[engine] = provider
}

// Instrument wraps every registered provider so its token usage accumulates
// in the recorder, keyed by engine name.
func (r *Registry) Instrument(recorder UsageRecorder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for engine, provider := range r.providers {
		r.providers[engine] = &RecordingProvider{
			Provider: provider,
			Recorder: recorder,
			Key:      string(engine),
		}
	}
}

// Resolve returns the provider for the engine, or a CredentialError if none
// is configured.
func (r *Registry) Resolve(engine Engine) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, ok := r.providers[engine]
	if !ok {
		return nil, &CredentialError{Engine: engine}
	}
	return provider, nil
}

// Available returns true if the engine has a configured provider.
func (r *Registry) Available(engine Engine) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.providers[engine]
	return ok
}

// HasProvider returns true if at least one provider is registered.
func (r *Registry) HasProvider() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers) > 0
}
