package controller

import (
	"fmt"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"mityguitar/debug"
)

// MIDI mapping used by guitar controllers presenting as MIDI devices
// (MIDI Pro adapters and similar). Main frets send fixed note numbers,
// the solo row sends the same notes two octaves up, the strum bar sends
// its own pair of notes, and the whammy bar arrives as CC 1.
const (
	noteFretBase  = 64 // green; red 67, yellow 71, blue 74, orange 77
	noteSoloShift = 24
	noteStrumDown = 48
	noteStrumUp   = 50
	ccWhammy      = 1
	ccTilt        = 2
)

var fretNotes = [5]uint8{64, 67, 71, 74, 77}

// buttonForNote maps an incoming MIDI note to a Button.
func buttonForNote(note uint8) (Button, bool) {
	switch note {
	case noteStrumDown:
		return BtnStrumDown, true
	case noteStrumUp:
		return BtnStrumUp, true
	}
	for i, n := range fretNotes {
		if note == n {
			return BtnFretGreen + Button(i), true
		}
		if note == n+noteSoloShift {
			return BtnSoloGreen + Button(i), true
		}
	}
	return 0, false
}

// snapshotInterval bounds how often a guitar emits snapshots. 8ms keeps
// jitter under a render quantum while staying far below MIDI's own
// bandwidth.
const snapshotInterval = 8 * time.Millisecond

// Guitar adapts one MIDI guitar controller into a snapshot stream.
type Guitar struct {
	id       string
	stopFunc func()

	mu       sync.Mutex
	state    Snapshot
	lastEmit time.Time

	snapshots chan Snapshot
}

// NewGuitar opens the input port and starts translating its messages.
func NewGuitar(id string, inPort drivers.In) (*Guitar, error) {
	g := &Guitar{
		id:        id,
		snapshots: make(chan Snapshot, 32),
	}

	stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
		var channel, note, velocity uint8
		var cc, value uint8

		switch {
		case msg.GetNoteOn(&channel, &note, &velocity) && velocity > 0:
			if b, ok := buttonForNote(note); ok {
				g.update(func(s *Snapshot) { s.SetPressed(b, true) })
			}
		case msg.GetNoteOff(&channel, &note, &velocity),
			msg.GetNoteOn(&channel, &note, &velocity): // NoteOn velocity 0
			if b, ok := buttonForNote(note); ok {
				g.update(func(s *Snapshot) { s.SetPressed(b, false) })
			}
		case msg.GetControlChange(&channel, &cc, &value):
			switch cc {
			case ccWhammy:
				g.update(func(s *Snapshot) { s.Whammy = float32(value) / 127 })
			case ccTilt:
				g.update(func(s *Snapshot) { s.Tilt = float32(value) / 127 })
			}
		}
	})
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	g.stopFunc = stop
	debug.Log(debug.Controller, "guitar connected: %s", id)
	return g, nil
}

// update mutates state and emits a snapshot, rate limited except for
// button changes, which always go out immediately so strum edges are
// never delayed.
func (g *Guitar) update(mutate func(*Snapshot)) {
	g.mu.Lock()
	before := g.state.Buttons
	mutate(&g.state)
	snap := g.state
	snap.Time = time.Now()

	buttonsChanged := snap.Buttons != before
	if !buttonsChanged && snap.Time.Sub(g.lastEmit) < snapshotInterval {
		g.mu.Unlock()
		return
	}
	g.lastEmit = snap.Time
	g.mu.Unlock()

	select {
	case g.snapshots <- snap:
	default:
		// The control loop is behind; it will see the next snapshot.
	}
}

// ID returns the port identifier.
func (g *Guitar) ID() string {
	return g.id
}

// Snapshots returns the state stream.
func (g *Guitar) Snapshots() <-chan Snapshot {
	return g.snapshots
}

// Close stops listening and closes the snapshot stream.
func (g *Guitar) Close() error {
	if g.stopFunc != nil {
		g.stopFunc()
		g.stopFunc = nil
	}
	close(g.snapshots)
	debug.Log(debug.Controller, "guitar closed: %s", g.id)
	return nil
}
