// Package registry tracks the engine and output bound to each active
// source, enforcing at most one engine per source and reusing outputs
// across engine restarts.
package registry

import (
	"sync"

	"live-spectrum/internal/engine"
	"live-spectrum/internal/source"
	"live-spectrum/internal/spectrum"
)

// Factory builds an engine for a source/output pair. The registry calls it
// exactly once per bound source.
type Factory func(src *source.Source, out *spectrum.Output) *engine.Engine

// Registry maps each active source to its engine and its reusable output.
// Source identity is reference-based: two sources are the same entry only
// if they are the same pointer.
type Registry struct {
	mu      sync.Mutex
	factory Factory
	engines map[*source.Source]*engine.Engine
	outputs map[*source.Source]*spectrum.Output
}

// New creates an empty registry using the given engine factory.
func New(factory Factory) *Registry {
	return &Registry{
		factory: factory,
		engines: make(map[*source.Source]*engine.Engine),
		outputs: make(map[*source.Source]*spectrum.Output),
	}
}

// AttachOrReset returns the engine bound to src. If src is already bound,
// its display placement is reset and the same engine is returned, never a
// duplicate. Otherwise a retained output is reused (or lazily created) and
// a new engine is built and registered. Stale output mappings are swept on
// every attach.
func (r *Registry) AttachOrReset(src *source.Source) *engine.Engine {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweepLocked()

	if eng, ok := r.engines[src]; ok {
		eng.ResetShown()
		return eng
	}

	out, ok := r.outputs[src]
	if !ok {
		out = spectrum.NewOutput()
		r.outputs[src] = out
	}
	eng := r.factory(src, out)
	r.engines[src] = eng
	return eng
}

// Detach stops and unregisters the engine bound to src. The output mapping
// is retained so a later attach reuses it; the sweep purges it once the
// source is no longer visible.
func (r *Registry) Detach(src *source.Source) {
	r.mu.Lock()
	eng := r.engines[src]
	delete(r.engines, src)
	r.mu.Unlock()

	if eng != nil {
		eng.Stop()
	}
}

// Output returns the retained output for src, if any.
func (r *Registry) Output(src *source.Source) (*spectrum.Output, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out, ok := r.outputs[src]
	return out, ok
}

// EngineCount returns the number of bound engines.
func (r *Registry) EngineCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.engines)
}

// OutputCount returns the number of retained outputs, bound or not.
func (r *Registry) OutputCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.outputs)
}

// sweepLocked purges output mappings whose source is detached and no
// longer visible in the host.
func (r *Registry) sweepLocked() {
	for src := range r.outputs {
		if _, bound := r.engines[src]; bound {
			continue
		}
		if !src.Visible() {
			delete(r.outputs, src)
		}
	}
}
