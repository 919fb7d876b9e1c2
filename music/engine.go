package music

import "mityguitar/debug"

// Frame is one controller reading as seen by the performance engine.
// Fret arrays hold current button levels; the engine derives edges by
// comparing against the previous frame.
type Frame struct {
	Frets     [NumFrets]bool
	SoloFrets [NumFrets]bool
	StrumDown bool
	StrumUp   bool
	Whammy    float32 // 0 (rest) .. 1 (full depression)
}

// anyFret reports whether the frame holds at least one fret in either
// row.
func (f *Frame) anyFret() bool {
	for i := 0; i < int(NumFrets); i++ {
		if f.Frets[i] || f.SoloFrets[i] {
			return true
		}
	}
	return false
}

// Settings is the harmonic context a performance runs in.
type Settings struct {
	Genre   Genre
	Key     Note
	Mode    Mode
	Pattern int
}

const maxChordNotes = 4

// whammyEpsilon keeps the engine from flooding the event channel with
// sub-audible bend updates.
const whammyEpsilon = 0.002

// PerformanceEngine translates controller frames into musical events.
// Sound starts only on a strum edge while frets are held; fret changes
// between strums never retrigger. It runs on the control goroutine and
// is not safe for concurrent use.
type PerformanceEngine struct {
	resolver *ChordResolver
	settings Settings
	preset   GenrePreset

	prev       Frame
	active     [maxChordNotes]uint16
	activeN    int
	sounding   bool
	nextTag    uint16
	whammyVal  float32 // filter state
	whammySent float32 // last value a bend was emitted for
	bendActive bool
}

// NewPerformanceEngine creates an engine over a resolver, starting in
// the given settings with that genre's preset applied.
func NewPerformanceEngine(r *ChordResolver, s Settings) *PerformanceEngine {
	e := &PerformanceEngine{resolver: r, nextTag: 1}
	e.applySettings(s)
	return e
}

// Settings returns the current harmonic context.
func (e *PerformanceEngine) Settings() Settings {
	return e.settings
}

// Preset returns the preset in effect for the current genre.
func (e *PerformanceEngine) Preset() GenrePreset {
	return e.preset
}

func (e *PerformanceEngine) applySettings(s Settings) {
	e.settings = s
	if p, ok := e.resolver.Preset(s.Genre); ok {
		e.preset = p
	} else {
		e.preset = DefaultPreset(s.Genre)
	}
}

// SetSettings switches the harmonic context and returns the ambient
// events that push the new preset's sustain and vibrato parameters to
// the synth. Already-sounding notes keep their original pitches.
func (e *PerformanceEngine) SetSettings(s Settings, out []Event) []Event {
	e.applySettings(s)
	debug.Log(debug.Music, "settings: genre=%s key=%s mode=%s pattern=%d",
		s.Genre.Name(), s.Key.Name(), s.Mode.Name(), s.Pattern)
	return e.presetEvents(out)
}

// presetEvents emits the control changes that mirror preset parameters
// into the synth.
func (e *PerformanceEngine) presetEvents(out []Event) []Event {
	sustain := uint8(0)
	if e.preset.Sustain.Enabled {
		sustain = 127
	}
	out = append(out, ControlChange(ControlSustainEnable, sustain))
	out = append(out, ControlChange(ControlReleaseTime, releaseTimeValue(e.preset.Sustain.ReleaseTimeMs)))
	out = append(out, ControlChange(ControlVibratoDepth, vibratoValue(e.preset.Whammy.VibratoDepth)))
	return out
}

// releaseTimeValue maps a release time in milliseconds onto the 0..127
// control range covering 50ms..2000ms.
func releaseTimeValue(ms float32) uint8 {
	if ms < 50 {
		ms = 50
	}
	if ms > 2000 {
		ms = 2000
	}
	return uint8((ms - 50) / (2000 - 50) * 127)
}

// vibratoValue maps a 0..1 vibrato depth onto 0..127.
func vibratoValue(depth float32) uint8 {
	if depth < 0 {
		depth = 0
	}
	if depth > 1 {
		depth = 1
	}
	return uint8(depth * 127)
}

// strummedFret picks the fret that determines the chord when several
// are held at once. Higher frets win.
func strummedFret(f *Frame) (FretButton, FretRow, bool) {
	for i := int(NumFrets) - 1; i >= 0; i-- {
		if f.SoloFrets[i] {
			return FretButton(i), RowSolo, true
		}
	}
	for i := int(NumFrets) - 1; i >= 0; i-- {
		if f.Frets[i] {
			return FretButton(i), RowMain, true
		}
	}
	return 0, RowMain, false
}

// Process advances the state machine by one frame, appending any events
// to out. The same slice append pattern the caller reuses across frames
// keeps the hot path allocation-free once the slice has grown.
func (e *PerformanceEngine) Process(f Frame, out []Event) []Event {
	strumEdge := (f.StrumDown && !e.prev.StrumDown) || (f.StrumUp && !e.prev.StrumUp)
	strumReleased := !f.StrumDown && !f.StrumUp && (e.prev.StrumDown || e.prev.StrumUp)

	switch {
	case strumEdge && f.anyFret():
		out = e.strike(&f, out)
	case e.sounding && !f.anyFret():
		// Lifting every fret silences the instrument even with
		// sustain enabled.
		out = e.releaseAll(out)
	case e.sounding && strumReleased && !e.preset.Sustain.Enabled:
		out = e.releaseAll(out)
	}

	out = e.processWhammy(f.Whammy, out)
	e.prev = f
	return out
}

// strike resolves the held chord and re-attacks its voices. A strike
// while already sounding releases the previous chord first so repeated
// strums re-articulate instead of stacking.
func (e *PerformanceEngine) strike(f *Frame, out []Event) []Event {
	fret, row, ok := strummedFret(f)
	if !ok {
		return out
	}

	chords, err := e.resolver.ResolveMap(e.settings.Genre, e.settings.Key, e.settings.Mode, row, e.settings.Pattern)
	if err != nil {
		debug.Log(debug.Music, "resolve failed: %v", err)
		return out
	}
	spec, found := chords[fret]
	if !found {
		return out
	}

	if e.sounding {
		for i := 0; i < e.activeN; i++ {
			out = append(out, NoteOff(e.active[i]))
		}
		e.activeN = 0
	}

	var pitches [maxChordNotes]uint8
	n := spec.MIDINotes(baseOctave, &pitches)
	for i := 0; i < n; i++ {
		tag := e.allocTag()
		e.active[i] = tag
		out = append(out, NoteOn(pitches[i], strikeVelocity, tag))
	}
	e.activeN = n
	e.sounding = n > 0
	debug.Log(debug.Music, "strike: fret=%d row=%d chord=%s notes=%d", fret, row, spec.DisplayName(), n)
	return out
}

// baseOctave puts the I chord of an E key at E2 (MIDI 40), the open low
// string of a standard-tuned guitar.
const baseOctave = -1

const strikeVelocity = 100

func (e *PerformanceEngine) allocTag() uint16 {
	tag := e.nextTag
	e.nextTag++
	if e.nextTag == 0 {
		e.nextTag = 1
	}
	return tag
}

// releaseAll sends NoteOff for every sounding voice and recenters the
// pitch bend.
func (e *PerformanceEngine) releaseAll(out []Event) []Event {
	for i := 0; i < e.activeN; i++ {
		out = append(out, NoteOff(e.active[i]))
	}
	e.activeN = 0
	e.sounding = false
	if e.bendActive {
		out = append(out, PitchBend(0))
		e.bendActive = false
	}
	e.whammyVal = 0
	e.whammySent = 0
	return out
}

// processWhammy smooths the raw whammy position with a one-pole filter
// and emits a bend only when it moves audibly. The bar pulls pitch
// downward, scaled by the preset's bend range.
func (e *PerformanceEngine) processWhammy(raw float32, out []Event) []Event {
	if !e.preset.Whammy.Enabled {
		return out
	}
	factor := e.preset.Whammy.Smoothing
	smoothed := e.whammyVal*factor + raw*(1-factor)

	// Snap to rest once the bar is released and the filter has nearly
	// settled, so the bend returns exactly to center.
	if raw == 0 && smoothed < whammyEpsilon {
		smoothed = 0
	}

	// Compare against the last transmitted value, not the filter
	// state: the filter advances every tick, so a slow push would
	// otherwise creep to full depression without ever crossing the
	// threshold between consecutive ticks.
	diff := smoothed - e.whammySent
	moved := diff >= whammyEpsilon || diff <= -whammyEpsilon
	settled := smoothed == 0 && e.bendActive
	e.whammyVal = smoothed
	if !moved && !settled {
		return out
	}

	bend := -smoothed * e.preset.Whammy.RangeSemitones
	out = append(out, PitchBend(bend))
	e.whammySent = smoothed
	e.bendActive = smoothed != 0
	return out
}

// PanicEvents returns the events that silence everything immediately,
// clearing local voice tracking to match.
func (e *PerformanceEngine) PanicEvents(out []Event) []Event {
	e.activeN = 0
	e.sounding = false
	e.whammyVal = 0
	e.whammySent = 0
	e.bendActive = false
	return append(out, Panic())
}
