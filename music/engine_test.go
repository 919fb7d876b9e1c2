package music

import "testing"

func newTestEngine() *PerformanceEngine {
	r := NewChordResolver()
	return NewPerformanceEngine(r, Settings{Genre: GenrePunk, Key: E, Mode: ModeMajor})
}

func frame(frets ...FretButton) Frame {
	var f Frame
	for _, fr := range frets {
		f.Frets[fr] = true
	}
	return f
}

func strummed(f Frame) Frame {
	f.StrumDown = true
	return f
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

func countKind(events []Event, k EventKind) int {
	n := 0
	for _, ev := range events {
		if ev.Kind == k {
			n++
		}
	}
	return n
}

func TestFretWithoutStrumIsSilent(t *testing.T) {
	e := newTestEngine()
	out := e.Process(frame(FretGreen), nil)
	if len(out) != 0 {
		t.Errorf("fret press without strum emitted %v", kinds(out))
	}
}

func TestStrumWithFretStartsChord(t *testing.T) {
	e := newTestEngine()
	e.Process(frame(FretGreen), nil)
	out := e.Process(strummed(frame(FretGreen)), nil)
	if n := countKind(out, EventNoteOn); n != 2 {
		t.Fatalf("punk green strum emitted %d NoteOns, want 2 (power chord): %v", n, kinds(out))
	}
	for _, ev := range out {
		if ev.Kind == EventNoteOn && ev.Velocity != strikeVelocity {
			t.Errorf("velocity = %d, want %d", ev.Velocity, strikeVelocity)
		}
	}
}

func TestStrumWithoutFretIsSilent(t *testing.T) {
	e := newTestEngine()
	out := e.Process(strummed(Frame{}), nil)
	if len(out) != 0 {
		t.Errorf("open strum emitted %v", kinds(out))
	}
}

func TestFretChangeWhileSoundingDoesNotRetrigger(t *testing.T) {
	e := newTestEngine()
	e.Process(strummed(frame(FretGreen)), nil)
	// Move to red without a new strum edge while the strum bar is
	// still held down.
	out := e.Process(strummed(frame(FretRed)), nil)
	if countKind(out, EventNoteOn) != 0 {
		t.Errorf("fret change without strum edge retriggered: %v", kinds(out))
	}
}

func TestReStrumReArticulates(t *testing.T) {
	e := newTestEngine()
	first := e.Process(strummed(frame(FretGreen)), nil)
	e.Process(frame(FretGreen), nil) // strum bar back to rest, sustain keeps sounding
	second := e.Process(strummed(frame(FretGreen)), nil)

	offs := countKind(second, EventNoteOff)
	ons := countKind(second, EventNoteOn)
	if offs != 2 || ons != 2 {
		t.Fatalf("re-strum emitted %d offs / %d ons, want 2/2: %v", offs, ons, kinds(second))
	}

	// New tags each strike; the old voices must be the ones released.
	firstTags := map[uint16]bool{}
	for _, ev := range first {
		if ev.Kind == EventNoteOn {
			firstTags[ev.Tag] = true
		}
	}
	for _, ev := range second {
		switch ev.Kind {
		case EventNoteOff:
			if !firstTags[ev.Tag] {
				t.Errorf("released unknown tag %d", ev.Tag)
			}
		case EventNoteOn:
			if firstTags[ev.Tag] {
				t.Errorf("reused tag %d for new voice", ev.Tag)
			}
		}
	}
}

func TestReleaseAllFretsStopsChord(t *testing.T) {
	e := newTestEngine()
	e.Process(strummed(frame(FretGreen)), nil)
	out := e.Process(strummed(Frame{}), nil)
	if countKind(out, EventNoteOff) != 2 {
		t.Errorf("releasing all frets emitted %v, want 2 NoteOffs", kinds(out))
	}

	// Releasing when nothing sounds is a no-op.
	out = e.Process(Frame{}, nil)
	if len(out) != 0 {
		t.Errorf("idle frame emitted %v", kinds(out))
	}
}

func TestStrumReleaseWithSustainDisabled(t *testing.T) {
	r := NewChordResolver()
	p := DefaultPreset(GenrePunk)
	p.Sustain.Enabled = false
	r.LoadPreset(GenrePunk, p)
	e := NewPerformanceEngine(r, Settings{Genre: GenrePunk, Key: E, Mode: ModeMajor})

	e.Process(strummed(frame(FretGreen)), nil)
	out := e.Process(frame(FretGreen), nil)
	if countKind(out, EventNoteOff) != 2 {
		t.Errorf("strum release with sustain off emitted %v, want 2 NoteOffs", kinds(out))
	}
}

func TestHigherFretWins(t *testing.T) {
	e := newTestEngine()
	out := e.Process(strummed(frame(FretGreen, FretOrange)), nil)

	// Orange maps to II; in E major that is F#.
	want := E.MIDI(-1) + 2
	found := false
	for _, ev := range out {
		if ev.Kind == EventNoteOn && ev.Pitch%12 == want%12 {
			found = true
		}
	}
	if !found {
		t.Errorf("green+orange strum did not play the orange chord: %v", out)
	}
}

func TestSoloFretPlaysOctaveUp(t *testing.T) {
	e := newTestEngine()
	var f Frame
	f.SoloFrets[FretGreen] = true
	f.StrumDown = true
	out := e.Process(f, nil)

	main := newTestEngine().Process(strummed(frame(FretGreen)), nil)
	if out[0].Pitch != main[0].Pitch+12 {
		t.Errorf("solo root = %d, want %d", out[0].Pitch, main[0].Pitch+12)
	}
}

func TestWhammyBendsAndRecenters(t *testing.T) {
	e := newTestEngine()
	e.Process(strummed(frame(FretGreen)), nil)

	// Hold the bar; the smoothed value converges and bends emerge.
	var lastBend float32
	sawBend := false
	f := strummed(frame(FretGreen))
	f.Whammy = 1
	for i := 0; i < 50; i++ {
		for _, ev := range e.Process(f, nil) {
			if ev.Kind == EventPitchBend {
				sawBend = true
				lastBend = ev.Bend
			}
		}
	}
	if !sawBend {
		t.Fatal("no pitch bend emitted while whammy held")
	}
	if lastBend >= 0 {
		t.Errorf("whammy bend = %f, want negative", lastBend)
	}
	want := -e.Preset().Whammy.RangeSemitones
	if lastBend < want-0.05 || lastBend > want+0.05 {
		t.Errorf("converged bend = %f, want about %f", lastBend, want)
	}

	// Releasing the bar recenters exactly to zero.
	f.Whammy = 0
	recentered := false
	for i := 0; i < 200 && !recentered; i++ {
		for _, ev := range e.Process(f, nil) {
			if ev.Kind == EventPitchBend && ev.Bend == 0 {
				recentered = true
			}
		}
	}
	if !recentered {
		t.Error("whammy release never recentered the bend")
	}
}

func TestSlowWhammyRampStillBends(t *testing.T) {
	e := newTestEngine()
	e.Process(strummed(frame(FretGreen)), nil)

	// A push slow enough that the filter advances less than the
	// emission threshold per tick must still transmit the bend; the
	// dead-band is measured against the last emitted value, so the
	// untransmitted error can never exceed the threshold.
	f := frame(FretGreen)
	bends := 0
	var lastBend float32
	const ticks = 4000
	for i := 1; i <= ticks; i++ {
		f.Whammy = float32(i) / ticks
		for _, ev := range e.Process(f, nil) {
			if ev.Kind == EventPitchBend {
				bends++
				lastBend = ev.Bend
			}
		}
	}
	// Hold at full depression while the filter settles.
	for i := 0; i < 500; i++ {
		for _, ev := range e.Process(f, nil) {
			if ev.Kind == EventPitchBend {
				bends++
				lastBend = ev.Bend
			}
		}
	}

	if bends == 0 {
		t.Fatal("slow whammy ramp emitted no pitch bends")
	}
	want := -e.Preset().Whammy.RangeSemitones
	if lastBend > want+0.01 {
		t.Errorf("final bend = %f, want about %f", lastBend, want)
	}
}

func TestReleaseAllFretsRecentersBend(t *testing.T) {
	e := newTestEngine()
	f := strummed(frame(FretGreen))
	f.Whammy = 1
	for i := 0; i < 20; i++ {
		e.Process(f, nil)
	}

	out := e.Process(Frame{}, nil)
	recentered := false
	for _, ev := range out {
		if ev.Kind == EventPitchBend && ev.Bend == 0 {
			recentered = true
		}
	}
	if !recentered {
		t.Errorf("fret release did not recenter bend: %v", kinds(out))
	}
}

func TestSetSettingsEmitsPresetControls(t *testing.T) {
	e := newTestEngine()
	out := e.SetSettings(Settings{Genre: GenreEDM, Key: A, Mode: ModeMinor}, nil)
	if countKind(out, EventControlChange) != 3 {
		t.Fatalf("settings change emitted %v, want 3 control changes", kinds(out))
	}

	seen := map[uint8]uint8{}
	for _, ev := range out {
		seen[ev.Control] = ev.Value
	}
	if v, ok := seen[ControlSustainEnable]; !ok || v < 64 {
		t.Errorf("sustain enable value = %d, want >= 64", v)
	}
	if _, ok := seen[ControlReleaseTime]; !ok {
		t.Error("no release time control emitted")
	}
	if _, ok := seen[ControlVibratoDepth]; !ok {
		t.Error("no vibrato depth control emitted")
	}
}

func TestPanicClearsState(t *testing.T) {
	e := newTestEngine()
	e.Process(strummed(frame(FretGreen)), nil)
	out := e.PanicEvents(nil)
	if len(out) != 1 || out[0].Kind != EventPanic {
		t.Fatalf("panic emitted %v, want single panic event", kinds(out))
	}

	// After a panic nothing is sounding, so lifting frets is silent.
	out = e.Process(Frame{}, nil)
	if countKind(out, EventNoteOff) != 0 {
		t.Errorf("post-panic release emitted %v", kinds(out))
	}
}
