// Package source defines the contract every lead source adapter honors and
// the registry the orchestrator selects adapters from.
package source

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// Query is one acquisition request against a single source.
type Query struct {
	Term     string // what to search for, e.g. "plumber"
	Location string // optional city hint
	Limit    int    // best-effort cap on returned candidates
}

// Validate rejects queries no adapter could serve.
func (q Query) Validate() error {
	if strings.TrimSpace(q.Term) == "" {
		return eris.New("source: query term is required")
	}
	if q.Limit <= 0 {
		return eris.Errorf("source: limit must be positive, got %d", q.Limit)
	}
	return nil
}

// Adapter is one external origin of business listings. Fetch returns at
// most Limit candidates mapped into the canonical shape; returning fewer is
// normal and never an error. An error means the source itself was
// unreachable or rejected the request outright.
type Adapter interface {
	// Name returns the unique adapter identifier, e.g. "maps".
	Name() string

	// Tag returns the source tag stamped onto every candidate.
	Tag() model.SourceTag

	// Fetch runs one search against the source.
	Fetch(ctx context.Context, q Query) ([]model.Candidate, error)
}

// Registry maps adapter names to implementations, preserving registration
// order for deterministic fan-out.
type Registry struct {
	adapters map[string]Adapter
	order    []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds an adapter.
func (r *Registry) Register(a Adapter) {
	name := a.Name()
	if _, exists := r.adapters[name]; !exists {
		r.order = append(r.order, name)
	}
	r.adapters[name] = a
}

// Get returns an adapter by name.
func (r *Registry) Get(name string) (Adapter, error) {
	a, ok := r.adapters[name]
	if !ok {
		return nil, eris.Errorf("source: unknown adapter %q (registered: %v)", name, r.order)
	}
	return a, nil
}

// Select resolves source tags to adapters, in registration order. With no
// tags it returns every registered adapter.
func (r *Registry) Select(tags []model.SourceTag) ([]Adapter, error) {
	if len(tags) == 0 {
		return r.All(), nil
	}

	want := make(map[model.SourceTag]bool, len(tags))
	for _, t := range tags {
		want[t] = true
	}

	var out []Adapter
	for _, name := range r.order {
		if want[r.adapters[name].Tag()] {
			out = append(out, r.adapters[name])
			delete(want, r.adapters[name].Tag())
		}
	}
	if len(want) > 0 {
		for t := range want {
			return nil, eris.Errorf("source: no adapter registered for source %q", t)
		}
	}
	return out, nil
}

// All returns every adapter in registration order.
func (r *Registry) All() []Adapter {
	out := make([]Adapter, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.adapters[name])
	}
	return out
}

// AllNames returns registered adapter names in registration order.
func (r *Registry) AllNames() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
