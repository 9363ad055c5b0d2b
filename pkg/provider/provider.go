package provider

import (
	"context"
	"fmt"
	"sort"
)

// Result is the uniform outcome of one provider call. The orchestration
// layer only ever branches on Success; vendor-specific failures are
// flattened into Error text.
type Result struct {
	Success bool
	Content string
	Error   string
}

// Failure builds an error Result from a message.
func Failure(format string, args ...interface{}) Result {
	return Result{Success: false, Error: fmt.Sprintf(format, args...)}
}

// Adapter is the single calling convention every AI vendor is wrapped
// behind. Invoke never panics; a missing credential or transport error
// comes back as Success=false.
type Adapter interface {
	ID() string
	Invoke(ctx context.Context, prompt string) Result
}

// Info describes a registered provider for discovery endpoints.
type Info struct {
	ID         string
	Enabled    bool
	Configured bool
}

// Registry maps provider ids to adapters. New providers register here
// without touching orchestration code.
type Registry struct {
	adapters map[string]Adapter
	info     map[string]Info
}

func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[string]Adapter),
		info:     make(map[string]Info),
	}
}

// Register adds an adapter under its own id.
func (r *Registry) Register(a Adapter, configured bool) {
	r.adapters[a.ID()] = a
	r.info[a.ID()] = Info{ID: a.ID(), Enabled: true, Configured: configured}
}

// RegisterDisabled reserves an id whose adapter always fails with a
// deterministic "not available" error.
func (r *Registry) RegisterDisabled(id string) {
	r.adapters[id] = disabledAdapter{id: id}
	r.info[id] = Info{ID: id, Enabled: false, Configured: false}
}

// Lookup returns the adapter for a provider id.
func (r *Registry) Lookup(id string) (Adapter, bool) {
	a, ok := r.adapters[id]
	return a, ok
}

// Known reports whether the id belongs to the enumerated provider set.
func (r *Registry) Known(id string) bool {
	_, ok := r.adapters[id]
	return ok
}

// List returns provider infos sorted by id.
func (r *Registry) List() []Info {
	out := make([]Info, 0, len(r.info))
	for _, info := range r.info {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type disabledAdapter struct {
	id string
}

func (d disabledAdapter) ID() string {
	return d.id
}

func (d disabledAdapter) Invoke(ctx context.Context, prompt string) Result {
	return Failure("provider %s is not yet available", d.id)
}
