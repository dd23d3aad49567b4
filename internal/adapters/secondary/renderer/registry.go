// Package renderer implements the layout-dispatch engine: a registry of
// per-layout renderers plus the engine that composes slide chrome around
// their output.
package renderer

import (
	"context"
	"strings"
	"sync"

	"deckview/internal/domain/entities"
)

// DefaultKey is the distinguished registry key for the fallback renderer.
const DefaultKey = "__default__"

// RenderResult is the body markup a layout renderer produces, plus any extra
// classes for the slide container.
type RenderResult struct {
	HTML    string
	Classes []string
}

// LayoutRenderer renders one slide body. Implementations must tolerate
// malformed fields: missing or wrong-typed fields degrade to blank regions,
// never errors or panics.
type LayoutRenderer interface {
	Render(ctx context.Context, slide *entities.Slide, h *Helpers, shared Shared) RenderResult
}

// LayoutRendererFunc adapts a function to the LayoutRenderer interface.
type LayoutRendererFunc func(ctx context.Context, slide *entities.Slide, h *Helpers, shared Shared) RenderResult

// Render implements LayoutRenderer.
func (f LayoutRendererFunc) Render(ctx context.Context, slide *entities.Slide, h *Helpers, shared Shared) RenderResult {
	return f(ctx, slide, h, shared)
}

// Registry maps layout keys to renderers. Registration is last-wins, which
// is the supported way to override a built-in layout. Safe for concurrent
// use.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]LayoutRenderer
}

// NewRegistry creates a registry preloaded with the built-in layouts and the
// fallback renderer.
func NewRegistry() *Registry {
	r := &Registry{renderers: make(map[string]LayoutRenderer)}
	registerBuiltins(r)
	return r
}

// Register binds a renderer to a layout key, replacing any previous binding.
func (r *Registry) Register(key string, lr LayoutRenderer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderers[strings.TrimSpace(key)] = lr
}

// RegisterFunc binds a renderer function to a layout key.
func (r *Registry) RegisterFunc(key string, fn LayoutRendererFunc) {
	r.Register(key, fn)
}

// Lookup resolves a layout key to its renderer. Unknown, empty, and
// untrimmed keys all resolve; an unknown key yields the fallback renderer,
// so Lookup never fails.
func (r *Registry) Lookup(key string) LayoutRenderer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if lr, ok := r.renderers[strings.TrimSpace(key)]; ok {
		return lr
	}
	return r.renderers[DefaultKey]
}

// Keys returns the registered layout keys, excluding the fallback.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.renderers))
	for k := range r.renderers {
		if k != DefaultKey {
			keys = append(keys, k)
		}
	}
	return keys
}
