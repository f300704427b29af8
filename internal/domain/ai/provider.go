package ai

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// ProviderName identifies a backing AI service.
type ProviderName string

const (
	ProviderOpenAI    ProviderName = "openai"
	ProviderAnthropic ProviderName = "anthropic"
)

// IsValid checks if the provider name is a known value.
func (n ProviderName) IsValid() bool {
	switch n {
	case ProviderOpenAI, ProviderAnthropic:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (n ProviderName) String() string {
	return string(n)
}

// Provider is the capability a backing AI service must implement. The router
// dispatches through the registry, so adding a backend means registering a
// new implementation, not editing router control flow.
type Provider interface {
	Name() ProviderName
	Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error)
}

// Registry maps provider names to implementations.
type Registry struct {
	mu        sync.RWMutex
	providers map[ProviderName]Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[ProviderName]Provider)}
}

// Register adds or replaces a provider implementation.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Get returns the provider registered under name.
func (r *Registry) Get(name ProviderName) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return p, nil
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []ProviderName {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]ProviderName, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
