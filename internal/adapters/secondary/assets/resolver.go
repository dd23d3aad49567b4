// Package assets maps slide asset references to servable URLs.
//
// Uploaded assets register under the lowercased basename of their filename,
// so a slide can reference "Diagram.PNG", "images/diagram.png", or a bare
// "diagram.png" and land on the same upload. A table hit takes precedence
// over every other resolution rule, including absolute URLs.
package assets

import (
	"path"
	"strings"
	"sync"
)

// Resolver resolves slide asset references. Safe for concurrent use.
type Resolver struct {
	mu    sync.RWMutex
	table map[string]string
	base  string
}

// NewResolver creates a resolver with the given base path for relative
// references.
func NewResolver(base string) *Resolver {
	return &Resolver{
		table: make(map[string]string),
		base:  strings.TrimSuffix(base, "/"),
	}
}

// key normalizes a reference to its lookup key: the lowercased basename.
// Query strings and fragments do not participate in matching.
func key(ref string) string {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	return path.Base(strings.ReplaceAll(ref, "\\", "/"))
}

// Register binds a name to an object URL. Re-registering the same basename
// overwrites: last write wins.
func (r *Resolver) Register(name, href string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.table[key(name)] = href
}

// RegisterBatch registers a set of assets under one lock so concurrent
// resolves never observe a half-applied batch.
func (r *Resolver) RegisterBatch(assets map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, href := range assets {
		r.table[key(name)] = href
	}
}

// SetBase changes the base path used for relative references.
func (r *Resolver) SetBase(base string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.base = strings.TrimSuffix(base, "/")
}

// Resolve maps a reference to the URL the shell should load.
//
// Resolution order: registered asset table (by lowercased basename), then
// self-describing references passed through untouched (absolute URLs, data
// and blob URIs, root-relative paths), then base-relative join. Empty input
// resolves to empty.
func (r *Resolver) Resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if href, ok := r.table[key(ref)]; ok {
		return href
	}

	if isSelfDescribing(ref) {
		return ref
	}

	if r.base == "" {
		return ref
	}
	ref = strings.TrimPrefix(ref, "./")
	if strings.HasPrefix(ref, r.base+"/") {
		return ref
	}
	return r.base + "/" + ref
}

func isSelfDescribing(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "file:") ||
		strings.HasPrefix(lower, "data:") ||
		strings.HasPrefix(lower, "blob:") ||
		strings.HasPrefix(ref, "/")
}
