package controller

import (
	"sync"
	"time"
)

// Simulator is a keyboard-driven stand-in for a physical guitar. The
// TUI calls its setters from key handlers; the control loop consumes
// the same snapshot stream a real controller produces.
type Simulator struct {
	mu        sync.Mutex
	state     Snapshot
	snapshots chan Snapshot
}

func NewSimulator() *Simulator {
	return &Simulator{snapshots: make(chan Snapshot, 32)}
}

// Snapshots returns the state stream.
func (s *Simulator) Snapshots() <-chan Snapshot {
	return s.snapshots
}

// SetButton presses or releases a button.
func (s *Simulator) SetButton(b Button, down bool) {
	s.mu.Lock()
	s.state.SetPressed(b, down)
	s.emitLocked()
}

// Strum taps the strum bar: a press immediately followed by a release,
// giving the engine a clean edge.
func (s *Simulator) Strum(up bool) {
	b := BtnStrumDown
	if up {
		b = BtnStrumUp
	}
	s.mu.Lock()
	s.state.SetPressed(b, true)
	s.emitLocked()

	s.mu.Lock()
	s.state.SetPressed(b, false)
	s.emitLocked()
}

// SetWhammy sets the whammy position, clamped to 0..1.
func (s *Simulator) SetWhammy(v float32) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	s.mu.Lock()
	s.state.Whammy = v
	s.emitLocked()
}

// Reset releases everything.
func (s *Simulator) Reset() {
	s.mu.Lock()
	s.state = Snapshot{}
	s.emitLocked()
}

// State returns the current simulated state.
func (s *Simulator) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// emitLocked sends the current state and releases the lock.
func (s *Simulator) emitLocked() {
	snap := s.state
	snap.Time = time.Now()
	s.mu.Unlock()

	select {
	case s.snapshots <- snap:
	default:
	}
}
