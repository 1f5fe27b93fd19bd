package ai

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ProviderFactory builds a provider for a concrete model name. An empty
// model means the backend's configured default.
type ProviderFactory func(ctx context.Context, model string) (Provider, error)

// Registry maps backend names ("ollama", "openrouter") to factories so the
// generation backend stays a config choice instead of a compile-time one.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]ProviderFactory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]ProviderFactory)}
}

func (r *Registry) Register(name string, f ProviderFactory) {
	key := strings.ToLower(strings.TrimSpace(name))
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[key] = f
}

func (r *Registry) Get(ctx context.Context, name string, model string) (Provider, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	r.mu.RLock()
	f, ok := r.factories[key]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown ai provider %q (registered: %s)", name, strings.Join(r.Names(), ", "))
	}
	return f(ctx, model)
}

// Names lists the registered backends, sorted, for error messages and logs.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
