package registry

import (
	"testing"

	"live-spectrum/internal/engine"
	"live-spectrum/internal/pipeline"
	"live-spectrum/internal/source"
	"live-spectrum/internal/spectrum"
)

type nullTransformer struct{}

func (nullTransformer) Transform(src *spectrum.Buffer) (*spectrum.Buffer, error) {
	return spectrum.NewBuffer(src.Width, src.Height), nil
}

func newTestRegistry() (*Registry, *int) {
	built := 0
	r := New(func(src *source.Source, out *spectrum.Output) *engine.Engine {
		built++
		return engine.New(engine.Config{
			Source:   src,
			Output:   out,
			Pipeline: pipeline.New(nullTransformer{}),
		})
	})
	return r, &built
}

func newSource(name string) *source.Source {
	return source.New(name, spectrum.NewBuffer(32, 32))
}

// TestAttachOnce verifies repeated attaches of the same source return the
// same engine without rebuilding it.
func TestAttachOnce(t *testing.T) {
	r, built := newTestRegistry()
	src := newSource("a")

	first := r.AttachOrReset(src)
	second := r.AttachOrReset(src)

	if first != second {
		t.Error("Second attach returned a different engine")
	}
	if *built != 1 {
		t.Errorf("Factory ran %d times, want 1", *built)
	}
	if r.EngineCount() != 1 {
		t.Errorf("EngineCount = %d, want 1", r.EngineCount())
	}
}

// TestDetachStopsEngine verifies Detach unbinds and stops the engine while
// retaining the output.
func TestDetachStopsEngine(t *testing.T) {
	r, _ := newTestRegistry()
	src := newSource("a")

	eng := r.AttachOrReset(src)
	eng.Start()
	r.Detach(src)

	if eng.State() != engine.Stopped {
		t.Errorf("Engine state after detach = %v, want Stopped", eng.State())
	}
	if r.EngineCount() != 0 {
		t.Errorf("EngineCount = %d, want 0", r.EngineCount())
	}
	if _, ok := r.Output(src); !ok {
		t.Error("Output discarded on detach")
	}
}

// TestOutputReuse verifies a detach/attach cycle reuses the retained output,
// preserving display state such as the range hint.
func TestOutputReuse(t *testing.T) {
	r, built := newTestRegistry()
	src := newSource("a")

	r.AttachOrReset(src)
	out, _ := r.Output(src)
	out.SetRange(3, 77)

	r.Detach(src)
	r.AttachOrReset(src)

	again, _ := r.Output(src)
	if again != out {
		t.Fatal("Re-attach created a fresh output")
	}
	if lo, hi, ok := again.Range(); !ok || lo != 3 || hi != 77 {
		t.Errorf("Range hint lost across re-attach: %v..%v (%v)", lo, hi, ok)
	}
	if *built != 2 {
		t.Errorf("Factory ran %d times, want 2", *built)
	}
}

// TestSweepPurgesInvisible verifies outputs of detached, invisible sources
// are purged on the next attach.
func TestSweepPurgesInvisible(t *testing.T) {
	r, _ := newTestRegistry()
	gone := newSource("gone")
	kept := newSource("kept")

	r.AttachOrReset(gone)
	r.Detach(gone)
	gone.SetVisible(false)

	r.AttachOrReset(kept)

	if _, ok := r.Output(gone); ok {
		t.Error("Invisible detached source's output survived the sweep")
	}
	if _, ok := r.Output(kept); !ok {
		t.Error("Active source's output missing")
	}
	if r.OutputCount() != 1 {
		t.Errorf("OutputCount = %d, want 1", r.OutputCount())
	}
}

// TestSweepKeepsVisible verifies detached but still visible sources keep
// their retained output.
func TestSweepKeepsVisible(t *testing.T) {
	r, _ := newTestRegistry()
	paused := newSource("paused")
	other := newSource("other")

	r.AttachOrReset(paused)
	r.Detach(paused)

	r.AttachOrReset(other)

	if _, ok := r.Output(paused); !ok {
		t.Error("Visible detached source's output was purged")
	}
}
