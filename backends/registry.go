package backends

import (
	"fmt"
	"sort"
	"strings"
)

// Registry holds the known backends by name
type Registry struct {
	backends map[string]Backend
}

// NewRegistry creates a registry holding the given backends
func NewRegistry(backends ...Backend) *Registry {
	r := &Registry{backends: make(map[string]Backend, len(backends))}
	for _, b := range backends {
		r.Register(b)
	}
	return r
}

// Register adds a backend to the registry, replacing any with the same name
func (r *Registry) Register(backend Backend) {
	if backend == nil {
		return
	}
	r.backends[strings.ToLower(backend.Name())] = backend
}

// Get returns a backend by name
func (r *Registry) Get(name string) (Backend, bool) {
	b, ok := r.backends[strings.ToLower(strings.TrimSpace(name))]
	return b, ok
}

// Select returns the named backend or an error listing the known names
func (r *Registry) Select(name string) (Backend, error) {
	b, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown backend: %s (available: %s)", name, strings.Join(r.Names(), ", "))
	}
	return b, nil
}

// Names returns the sorted names of all registered backends
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Configured returns the sorted names of backends that have their credentials
func (r *Registry) Configured() []string {
	names := make([]string, 0, len(r.backends))
	for name, b := range r.backends {
		if b.IsAvailable() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
