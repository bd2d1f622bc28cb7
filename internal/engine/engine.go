// Package engine implements the live-recompute loop that keeps a spectrum
// output continuously synchronized with its mutating source.
//
// Exactly one background worker runs per engine. Producers signal changes
// with RequestUpdate, which never blocks; the worker collapses bursts of
// requests into a single recompute using the state current at lock
// acquisition (latest-wins coalescing). Source and output are guarded by
// advisory locks taken with non-blocking try-acquire: on contention the
// worker skips the cycle and retries shortly instead of queueing.
package engine

import (
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"live-spectrum/internal/pipeline"
	"live-spectrum/internal/source"
	"live-spectrum/internal/spectrum"
	"live-spectrum/pkg/geometry"
)

// State describes the engine lifecycle.
type State int32

const (
	// Stopped means no worker is running; update requests are ignored.
	Stopped State = iota
	// Running means the worker loop is live.
	Running
	// ErrorStopped means the worker hit a fatal compute failure and exited.
	// The engine must be explicitly restarted with Start.
	ErrorStopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "Running"
	case ErrorStopped:
		return "ErrorStopped"
	default:
		return "Stopped"
	}
}

// Display shows published outputs to the user. Its methods are only invoked
// through the engine's UI marshaler, never concurrently.
type Display interface {
	Show(out *spectrum.Output)
	IsVisible() bool
	SetWindowPosition(p geometry.PointInt)
}

// ConfigSource supplies the current processing parameters and notifies the
// engine when they change.
type ConfigSource interface {
	Params() pipeline.Params
	OnChange(func())
}

// Config wires an engine to its collaborators.
type Config struct {
	Source   *source.Source
	Output   *spectrum.Output
	Pipeline *pipeline.Pipeline
	Display  Display
	Settings ConfigSource

	// RunOnUI marshals a callback onto the single-threaded UI loop. All
	// publications and error reports go through it sequentially. A nil
	// marshaler runs callbacks inline, which only makes sense in tests.
	RunOnUI func(func())

	// WindowPos is where the output window is placed on first publication,
	// typically next to the source window.
	WindowPos geometry.PointInt

	// OnComputeError receives user-facing diagnostics, marshaled like
	// publications.
	OnComputeError func(msg string)

	// ContentionRetry overrides the delay before retrying after failing to
	// acquire an advisory lock. Zero means the 50ms default.
	ContentionRetry time.Duration
}

const defaultContentionRetry = 50 * time.Millisecond

// resourceExhaustedMsg is the remediation shown when a cycle exceeds the
// transform's pixel budget.
const resourceExhaustedMsg = "insufficient memory; increase allocated heap"

// Engine owns the single background worker for one source.
type Engine struct {
	cfg Config

	state   atomic.Int32
	pending atomic.Int64
	wake    chan struct{}
	shown   atomic.Bool

	mu   sync.Mutex // guards Start/Stop transitions and stop channel swap
	stop chan struct{}
	wg   sync.WaitGroup

	publishMu sync.Mutex
}

// New creates an engine and subscribes it to source and configuration
// change notifications. The engine starts Stopped.
func New(cfg Config) *Engine {
	if cfg.ContentionRetry <= 0 {
		cfg.ContentionRetry = defaultContentionRetry
	}
	e := &Engine{
		cfg:  cfg,
		wake: make(chan struct{}, 1),
	}
	if cfg.Source != nil {
		cfg.Source.On(source.EventMutated, e.RequestUpdate)
		cfg.Source.On(source.EventRegionChanged, e.RequestUpdate)
	}
	if cfg.Settings != nil {
		cfg.Settings.OnChange(e.RequestUpdate)
	}
	return e
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// Start transitions the engine to Running and spawns the worker. It is
// idempotent while Running and also restarts an ErrorStopped engine.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if State(e.state.Load()) == Running {
		return
	}
	e.stop = make(chan struct{})
	e.state.Store(int32(Running))
	e.wg.Add(1)
	go e.run(e.stop)
}

// Stop transitions Running→Stopped and waits for the worker to finish its
// current cycle and exit. Update requests arriving after Stop are ignored
// until Start is called again.
func (e *Engine) Stop() {
	e.mu.Lock()
	if State(e.state.Load()) != Running {
		e.mu.Unlock()
		return
	}
	e.state.Store(int32(Stopped))
	close(e.stop)
	e.mu.Unlock()
	e.wg.Wait()
}

// RequestUpdate signals that the source, region, or parameters changed and
// the output should be recomputed. It never blocks and is safe from any
// goroutine; it is a no-op unless the engine is Running. Multiple requests
// during an in-flight compute collapse into exactly one follow-up cycle.
func (e *Engine) RequestUpdate() {
	if State(e.state.Load()) != Running {
		return
	}
	e.pending.Add(1)
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// ResetShown clears the one-time window placement so the next publication
// repositions the output window. The registry uses this when a source is
// re-attached.
func (e *Engine) ResetShown() {
	e.shown.Store(false)
}

func (e *Engine) run(stop chan struct{}) {
	defer e.wg.Done()

	for {
		if e.pending.Load() == 0 {
			select {
			case <-stop:
				return
			case <-e.wake:
			}
		}
		select {
		case <-stop:
			return
		default:
		}
		if e.pending.Load() == 0 {
			continue // stale wake
		}

		if !e.cfg.Source.TryLock() {
			if !e.waitRetry(stop) {
				return
			}
			continue
		}
		if !e.cfg.Output.TryLock() {
			e.cfg.Source.Unlock()
			if !e.waitRetry(stop) {
				return
			}
			continue
		}

		// Collapse everything that accumulated up to this point; anything
		// arriving from here on buys exactly one more cycle.
		e.pending.Store(1)
		published, err := e.cycleLocked()
		e.pending.Add(-1)

		if err != nil {
			e.fail(err)
			return
		}
		if published {
			e.publish()
		}
	}
}

// waitRetry sleeps out the contention delay. Returns false if the engine
// stopped while waiting.
func (e *Engine) waitRetry(stop chan struct{}) bool {
	timer := time.NewTimer(e.cfg.ContentionRetry)
	defer timer.Stop()
	select {
	case <-stop:
		return false
	case <-timer.C:
		return true
	}
}

// cycleLocked runs one compute cycle with both advisory locks held. The
// locks are released on every exit path, including panics, which are
// converted into errors here so they never escape the worker.
func (e *Engine) cycleLocked() (published bool, err error) {
	defer e.cfg.Source.Unlock()
	defer e.cfg.Output.Unlock()
	defer func() {
		if r := recover(); r != nil {
			published = false
			err = fmt.Errorf("compute panic: %v\n%s", r, debug.Stack())
		}
	}()

	snap := pipeline.Snapshot{
		Pixels: e.cfg.Source.Buffer(),
		Region: e.cfg.Source.Region(),
		Cal:    e.cfg.Source.Calibration(),
	}
	return e.cfg.Pipeline.Compute(snap, e.params(), e.cfg.Output)
}

func (e *Engine) params() pipeline.Params {
	if e.cfg.Settings != nil {
		return e.cfg.Settings.Params()
	}
	return pipeline.Params{BinFactor: 1, WorkerHint: 1}
}

// publish hands the updated output to the display on the UI loop. The
// publish mutex keeps a late callback from a slow cycle from interleaving
// with a newer one.
func (e *Engine) publish() {
	out := e.cfg.Output
	e.runOnUI(func() {
		e.publishMu.Lock()
		defer e.publishMu.Unlock()
		if e.cfg.Display == nil {
			return
		}
		// A window the user closed gets placed again when it reappears.
		if !e.cfg.Display.IsVisible() {
			e.shown.Store(false)
		}
		if e.shown.CompareAndSwap(false, true) {
			e.cfg.Display.SetWindowPosition(e.cfg.WindowPos)
		}
		e.cfg.Display.Show(out)
	})
}

// fail records a fatal cycle error, surfaces a diagnostic, and leaves the
// engine ErrorStopped. The worker exits after calling this.
func (e *Engine) fail(err error) {
	msg := fmt.Sprintf("spectrum update failed: %v", err)
	if errors.Is(err, pipeline.ErrResourceExhausted) {
		msg = resourceExhaustedMsg
	}

	e.state.Store(int32(ErrorStopped))
	log.Printf("engine %q stopped: %s", e.sourceName(), msg)

	e.runOnUI(func() {
		e.publishMu.Lock()
		defer e.publishMu.Unlock()
		if e.cfg.OnComputeError != nil {
			e.cfg.OnComputeError(msg)
		}
	})
}

func (e *Engine) sourceName() string {
	if e.cfg.Source == nil {
		return ""
	}
	return e.cfg.Source.Name()
}

func (e *Engine) runOnUI(f func()) {
	if e.cfg.RunOnUI != nil {
		e.cfg.RunOnUI(f)
		return
	}
	f()
}
