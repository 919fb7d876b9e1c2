package audio

import (
	"mityguitar/music"
)

// SoundSource renders audio for the engine. Implementations run
// entirely on the render goroutine and must not block or allocate in
// Render.
type SoundSource interface {
	NoteOn(note, velocity uint8, tag uint16)
	NoteOff(tag uint16)
	AllNotesOff()
	Panic()
	SetPitchBend(semitones float32)
	Render(buf []float32, channels int)
	ActiveVoices() int
}

// controlTarget is the optional surface for sources that understand
// performance controls beyond notes and bends.
type controlTarget interface {
	SetSustainEnabled(bool)
	SetSustainRelease(seconds float32)
	SetReleaseScale(scale float32)
	SetVibratoDepth(depth float32)
	SetInstrument(Instrument)
}

// maxEventsPerRender bounds how much queue draining a single callback
// does, so a burst of events cannot starve sample generation.
const maxEventsPerRender = 64

// Engine drains the event ring and drives a SoundSource. Everything
// here runs on the render goroutine; the only cross-thread surfaces are
// the ring and the stats counters.
type Engine struct {
	ring   *EventRing
	source SoundSource
	stats  *Stats
}

// NewEngine wires a ring and source together. stats may be nil.
func NewEngine(ring *EventRing, source SoundSource, stats *Stats) *Engine {
	return &Engine{ring: ring, source: source, stats: stats}
}

// Source returns the engine's sound source.
func (e *Engine) Source() SoundSource {
	return e.source
}

func (e *Engine) handleEvent(ev music.Event) {
	switch ev.Kind {
	case music.EventNoteOn:
		e.source.NoteOn(ev.Pitch, ev.Velocity, ev.Tag)
	case music.EventNoteOff:
		e.source.NoteOff(ev.Tag)
	case music.EventPitchBend:
		e.source.SetPitchBend(ev.Bend)
	case music.EventControlChange:
		e.handleControl(ev.Control, ev.Value)
	case music.EventPresetChange:
		if ct, ok := e.source.(controlTarget); ok {
			ct.SetInstrument(Instrument(ev.Preset))
		}
	case music.EventPanic:
		e.source.Panic()
	}
}

func (e *Engine) handleControl(control, value uint8) {
	ct, ok := e.source.(controlTarget)
	if !ok {
		return
	}
	switch control {
	case music.ControlSustainEnable:
		ct.SetSustainEnabled(value >= 64)
	case music.ControlReleaseTime:
		// 0..127 spans 50ms to 2s.
		ms := 50 + float32(value)/127*(2000-50)
		ct.SetSustainRelease(ms / 1000)
	case music.ControlReleaseScale:
		// 0..127 spans 0.1x to 10x.
		ct.SetReleaseScale(0.1 + float32(value)/127*9.9)
	case music.ControlVibratoDepth:
		ct.SetVibratoDepth(float32(value) / 127)
	}
}

// Render is the audio callback body: drain pending events, then fill
// buf with interleaved frames.
func (e *Engine) Render(buf []float32, channels int) {
	for i := 0; i < maxEventsPerRender; i++ {
		ev, ok := e.ring.TryRecv()
		if !ok {
			break
		}
		e.handleEvent(ev)
	}

	e.source.Render(buf, channels)

	if e.stats != nil {
		e.stats.setActiveVoices(e.source.ActiveVoices())
	}
}
