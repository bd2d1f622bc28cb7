// Package source models the externally-owned image being watched: its pixel
// buffer, optional region of interest, calibration, and change
// notifications. The engine holds a non-owning reference and reacts to the
// events the host emits here.
package source

import (
	"sync"

	"live-spectrum/internal/spectrum"
	"live-spectrum/pkg/geometry"
)

// EventType identifies source change notifications.
type EventType int

const (
	// EventMutated fires when the pixel data changes.
	EventMutated EventType = iota
	// EventRegionChanged fires when the region of interest changes.
	EventRegionChanged
)

// Listener is called when an event occurs. Listeners run on the caller's
// goroutine and must not block.
type Listener func()

// Source is the live image buffer plus its region of interest.
//
// The advisory lock (TryLock/Unlock) is the cooperative guard shared
// between the host and the recompute worker: whichever side wants a
// consistent multi-field view of the pixels takes it, and the worker skips
// its cycle rather than block when the host holds it.
type Source struct {
	lock sync.Mutex // advisory compute lock

	mu        sync.RWMutex
	name      string
	buf       *spectrum.Buffer
	region    *geometry.RectInt
	cal       spectrum.Calibration
	visible   bool
	listeners map[EventType][]Listener
}

// New creates a source around an existing pixel buffer.
func New(name string, buf *spectrum.Buffer) *Source {
	return &Source{
		name:      name,
		buf:       buf,
		visible:   true,
		listeners: make(map[EventType][]Listener),
	}
}

// Name returns the display name of the source.
func (s *Source) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

// TryLock attempts to take the advisory lock without blocking.
func (s *Source) TryLock() bool {
	return s.lock.TryLock()
}

// Unlock releases the advisory lock.
func (s *Source) Unlock() {
	s.lock.Unlock()
}

// Buffer returns the current pixel buffer.
func (s *Source) Buffer() *spectrum.Buffer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buf
}

// SetBuffer replaces the pixel buffer and notifies listeners.
func (s *Source) SetBuffer(buf *spectrum.Buffer) {
	s.mu.Lock()
	s.buf = buf
	s.mu.Unlock()
	s.emit(EventMutated)
}

// MarkMutated notifies listeners that the pixel data changed in place.
func (s *Source) MarkMutated() {
	s.emit(EventMutated)
}

// Bounds returns the buffer dimensions.
func (s *Source) Bounds() (width, height int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.buf == nil {
		return 0, 0
	}
	return s.buf.Width, s.buf.Height
}

// Region returns a copy of the explicit region of interest, or nil when
// none is set.
func (s *Source) Region() *geometry.RectInt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.region == nil {
		return nil
	}
	r := *s.region
	return &r
}

// SetRegion sets or clears (nil) the region of interest and notifies
// listeners.
func (s *Source) SetRegion(r *geometry.RectInt) {
	s.mu.Lock()
	if r == nil {
		s.region = nil
	} else {
		cp := *r
		s.region = &cp
	}
	s.mu.Unlock()
	s.emit(EventRegionChanged)
}

// Calibration returns the pixel calibration.
func (s *Source) Calibration() spectrum.Calibration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cal
}

// SetCalibration sets the pixel calibration.
func (s *Source) SetCalibration(cal spectrum.Calibration) {
	s.mu.Lock()
	s.cal = cal
	s.mu.Unlock()
}

// Visible reports whether the host still shows this source. The registry
// sweep purges output mappings of invisible, detached sources.
func (s *Source) Visible() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visible
}

// SetVisible updates the host visibility flag.
func (s *Source) SetVisible(visible bool) {
	s.mu.Lock()
	s.visible = visible
	s.mu.Unlock()
}

// On registers an event listener for the specified event type.
func (s *Source) On(event EventType, listener Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// emit triggers all listeners for the event outside the state lock.
func (s *Source) emit(event EventType) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener()
	}
}
