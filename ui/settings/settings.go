// Package settings holds the user-adjustable processing parameters and the
// configuration dialog that edits them. It is the engine's configuration
// source: every change is persisted to preferences and pushed to the
// engines through change listeners.
package settings

import (
	"fmt"
	"runtime"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"live-spectrum/internal/pipeline"
	"live-spectrum/internal/scale"
	"live-spectrum/ui/prefs"
)

const (
	prefKeyMethod    = "scalingMethod"
	prefKeyBinFactor = "binFactor"
	prefKeyWorkers   = "workerHint"
)

// Settings is the live parameter set shared by all engines.
type Settings struct {
	mu        sync.RWMutex
	params    pipeline.Params
	prefs     *prefs.Prefs
	listeners []func()
}

// Load restores settings from preferences, falling back to defaults.
func Load(p *prefs.Prefs) *Settings {
	s := &Settings{prefs: p}
	s.params = pipeline.Params{
		Method:     scale.Autoscale,
		BinFactor:  1,
		WorkerHint: runtime.NumCPU(),
	}
	if p != nil {
		s.params.Method = scale.MethodFromName(p.String(prefKeyMethod, s.params.Method.String()))
		s.params.BinFactor = p.Int(prefKeyBinFactor, s.params.BinFactor)
		s.params.WorkerHint = p.Int(prefKeyWorkers, s.params.WorkerHint)
	}
	return s
}

// Params returns a snapshot of the current parameters.
func (s *Settings) Params() pipeline.Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// OnChange registers a listener invoked after every parameter change.
func (s *Settings) OnChange(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// SetMethod selects the scaling strategy.
func (s *Settings) SetMethod(m scale.Method) {
	s.update(func(p *pipeline.Params) { p.Method = m })
	if s.prefs != nil {
		s.prefs.SetString(prefKeyMethod, m.String())
	}
}

// SetBinFactor sets the output bin factor (1 or 2).
func (s *Settings) SetBinFactor(factor int) {
	if factor < 1 {
		factor = 1
	}
	if factor > 2 {
		factor = 2
	}
	s.update(func(p *pipeline.Params) { p.BinFactor = factor })
	if s.prefs != nil {
		s.prefs.SetInt(prefKeyBinFactor, factor)
	}
}

// SetWorkerHint sets the transform goroutine fan-out hint.
func (s *Settings) SetWorkerHint(workers int) {
	if workers < 1 {
		workers = 1
	}
	s.update(func(p *pipeline.Params) { p.WorkerHint = workers })
	if s.prefs != nil {
		s.prefs.SetInt(prefKeyWorkers, workers)
	}
}

func (s *Settings) update(mutate func(*pipeline.Params)) {
	s.mu.Lock()
	mutate(&s.params)
	listeners := make([]func(), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// ShowDialog opens the configuration dialog on the given window.
func (s *Settings) ShowDialog(win fyne.Window) {
	current := s.Params()

	names := make([]string, 0, len(scale.Methods()))
	for _, m := range scale.Methods() {
		names = append(names, m.String())
	}
	methodGroup := widget.NewRadioGroup(names, func(name string) {
		s.SetMethod(scale.MethodFromName(name))
	})
	methodGroup.SetSelected(current.Method.String())

	binCheck := widget.NewCheck("2×2 binning (smaller, faster output)", func(on bool) {
		if on {
			s.SetBinFactor(2)
		} else {
			s.SetBinFactor(1)
		}
	})
	binCheck.SetChecked(current.BinFactor == 2)

	maxWorkers := runtime.NumCPU()
	workerLabel := widget.NewLabel(fmt.Sprintf("Transform goroutines: %d", current.WorkerHint))
	workerSlider := widget.NewSlider(1, float64(maxWorkers))
	workerSlider.Step = 1
	workerSlider.SetValue(float64(current.WorkerHint))
	workerSlider.OnChanged = func(v float64) {
		workerLabel.SetText(fmt.Sprintf("Transform goroutines: %d", int(v)))
		s.SetWorkerHint(int(v))
	}

	content := container.NewVBox(
		widget.NewLabel("Display scaling"),
		methodGroup,
		widget.NewSeparator(),
		binCheck,
		widget.NewSeparator(),
		workerLabel,
		workerSlider,
	)

	dialog.ShowCustom("Spectrum Settings", "Close", content, win)
}
