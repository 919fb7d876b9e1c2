package audio

import (
	"math"
	"testing"
)

func TestMidiToFrequency(t *testing.T) {
	if f := midiToFrequency(69); math.Abs(float64(f)-440) > 0.1 {
		t.Errorf("A4 = %f, want 440", f)
	}
	if f := midiToFrequency(60); math.Abs(float64(f)-261.63) > 1 {
		t.Errorf("middle C = %f, want ~261.63", f)
	}
	if f := midiToFrequency(40); math.Abs(float64(f)-82.41) > 0.5 {
		t.Errorf("E2 = %f, want ~82.41", f)
	}
}

func TestNoteOnActivatesVoice(t *testing.T) {
	s := NewFallbackSynth(48000)
	if s.ActiveVoices() != 0 {
		t.Fatalf("fresh synth has %d active voices", s.ActiveVoices())
	}
	s.NoteOn(60, 100, 1)
	if s.ActiveVoices() != 1 {
		t.Errorf("after NoteOn: %d active voices, want 1", s.ActiveVoices())
	}
}

func TestRenderProducesSignal(t *testing.T) {
	s := NewFallbackSynth(48000)
	s.NoteOn(60, 100, 1)

	buf := make([]float32, 512)
	s.Render(buf, 2)

	hasSignal := false
	for _, v := range buf {
		if v > 0.001 || v < -0.001 {
			hasSignal = true
		}
		if v > 1 || v < -1 {
			t.Fatalf("sample %f outside limiter range", v)
		}
	}
	if !hasSignal {
		t.Error("active voice rendered silence")
	}

	// Stereo frames carry the same mono mix.
	for i := 0; i < len(buf); i += 2 {
		if buf[i] != buf[i+1] {
			t.Fatalf("frame %d channels differ: %f vs %f", i/2, buf[i], buf[i+1])
		}
	}
}

func TestNoteOffByTag(t *testing.T) {
	s := NewFallbackSynth(48000)
	s.SetSustainEnabled(false)
	s.NoteOn(60, 100, 7)
	s.NoteOn(64, 100, 8)

	s.NoteOff(7)

	// Render past the released voice's tail. Clean guitar release is
	// 1s, so 2s of audio ends it while tag 8 keeps sounding.
	buf := make([]float32, 4800)
	for i := 0; i < 30; i++ {
		s.Render(buf, 2)
	}
	if s.ActiveVoices() != 1 {
		t.Errorf("after release tail: %d active voices, want 1", s.ActiveVoices())
	}

	// Unknown tag is a no-op.
	s.NoteOff(999)
	if s.ActiveVoices() != 1 {
		t.Error("NoteOff with unknown tag changed voice state")
	}
}

func TestRetriggerReusesVoice(t *testing.T) {
	s := NewFallbackSynth(48000)
	s.NoteOn(60, 100, 1)

	buf := make([]float32, 960)
	s.Render(buf, 2)

	// Same pitch again re-attacks the existing voice under the new tag
	// instead of stacking a second one.
	s.NoteOn(60, 100, 2)
	if s.ActiveVoices() != 1 {
		t.Fatalf("after retrigger: %d active voices, want 1", s.ActiveVoices())
	}

	s.NoteOff(1)
	if got := s.voices[0].stage; got != stageAttack {
		t.Error("stale tag released the retriggered voice")
	}
	s.NoteOff(2)
	if got := s.voices[0].stage; got != stageRelease {
		t.Errorf("new tag did not release the voice, stage = %d", got)
	}
}

func TestPanicSilencesImmediately(t *testing.T) {
	s := NewFallbackSynth(48000)
	for i := 0; i < 4; i++ {
		s.NoteOn(uint8(60+i), 100, uint16(i+1))
	}
	s.Panic()
	if s.ActiveVoices() != 0 {
		t.Fatalf("after panic: %d active voices", s.ActiveVoices())
	}

	buf := make([]float32, 256)
	s.Render(buf, 2)
	for _, v := range buf {
		if v != 0 {
			t.Fatal("panic left audible output")
		}
	}
}

func TestVoiceStealingPrefersReleased(t *testing.T) {
	s := NewFallbackSynth(48000)
	for i := 0; i < MaxVoices; i++ {
		s.NoteOn(uint8(40+i), 100, uint16(i+1))
	}
	// Release tag 5; it becomes the only stealing candidate in
	// release stage.
	s.NoteOff(5)

	s.NoteOn(100, 100, 99)
	if s.ActiveVoices() != MaxVoices {
		t.Fatalf("active voices = %d, want %d", s.ActiveVoices(), MaxVoices)
	}

	// Tag 5's voice now carries tag 99, so releasing 5 again is a
	// no-op and releasing 99 works.
	s.NoteOff(5)
	found := false
	for i := range s.voices {
		if s.voices[i].tag == 99 && s.voices[i].stage == stageAttack {
			found = true
		}
	}
	if !found {
		t.Error("new note did not take over the released voice")
	}
}

func TestVoiceStealingOldestSounding(t *testing.T) {
	s := NewFallbackSynth(48000)
	for i := 0; i < MaxVoices; i++ {
		s.NoteOn(uint8(40+i), 100, uint16(i+1))
	}
	// No voice is releasing; the steal must take the oldest (tag 1).
	s.NoteOn(100, 100, 99)

	for i := range s.voices {
		if s.voices[i].tag == 1 && s.voices[i].active() {
			t.Error("oldest voice survived a full-pool steal")
		}
	}
}

func TestSetInstrumentReleasesVoices(t *testing.T) {
	s := NewFallbackSynth(48000)
	s.NoteOn(60, 100, 1)
	s.SetInstrument(Piano)
	for i := range s.voices {
		if s.voices[i].stage == stageSustain || s.voices[i].stage == stageAttack {
			t.Error("instrument switch left a held voice")
		}
	}
	if s.Instrument() != Piano {
		t.Errorf("instrument = %v", s.Instrument())
	}
}

func TestPitchBendRaisesFrequencyPhase(t *testing.T) {
	render := func(bend float32) float32 {
		s := NewFallbackSynth(48000)
		s.NoteOn(69, 100, 1)
		s.SetPitchBend(bend)
		buf := make([]float32, 96)
		s.Render(buf, 2)
		return s.voices[0].phase
	}

	flat := render(0)
	down := render(-1)
	if down >= flat {
		t.Errorf("bend down phase %f not below unbent %f", down, flat)
	}
}

func TestInstrumentNames(t *testing.T) {
	for i := Instrument(0); i < NumInstruments; i++ {
		if i.Name() == "" || i.Name() == "Unknown" {
			t.Errorf("instrument %d has no name", i)
		}
	}
	if Instrument(200).Name() != "Unknown" {
		t.Error("out-of-range instrument not reported unknown")
	}
}
