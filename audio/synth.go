package audio

import "math"

// MaxVoices bounds polyphony. Four-note chords across re-strums never
// need more than a handful; 16 leaves headroom for long release tails.
const MaxVoices = 16

// Instrument selects one of the built-in voice programs.
type Instrument uint8

const (
	CleanElectricGuitar Instrument = iota
	DistortedGuitar
	AcousticGuitar
	ClassicalGuitar
	ElectricBass
	AcousticBass
	Piano
	Organ
	Strings
	SynthLead
	SynthPad
	BrassSection
	NumInstruments
)

var instrumentNames = [NumInstruments]string{
	"Clean Electric Guitar",
	"Distorted Guitar",
	"Acoustic Guitar",
	"Classical Guitar",
	"Electric Bass",
	"Acoustic Bass",
	"Piano",
	"Organ",
	"Strings",
	"Synth Lead",
	"Synth Pad",
	"Brass Section",
}

func (i Instrument) Name() string {
	if i < NumInstruments {
		return instrumentNames[i]
	}
	return "Unknown"
}

type waveType uint8

const (
	waveSine waveType = iota
	waveSaw
	waveSquare
	waveTriangle
	waveNoise
)

type instrumentSettings struct {
	wave         waveType
	attackTime   float32
	releaseTime  float32
	filterCutoff float32
	distortion   float32
	volume       float32
}

var instrumentTable = [NumInstruments]instrumentSettings{
	CleanElectricGuitar: {wave: waveSaw, attackTime: 0.005, releaseTime: 1.0, filterCutoff: 0.8, distortion: 0, volume: 0.4},
	DistortedGuitar:     {wave: waveSaw, attackTime: 0.01, releaseTime: 0.8, filterCutoff: 0.6, distortion: 0.7, volume: 0.35},
	AcousticGuitar:      {wave: waveTriangle, attackTime: 0.02, releaseTime: 2.0, filterCutoff: 0.7, distortion: 0, volume: 0.45},
	ClassicalGuitar:     {wave: waveTriangle, attackTime: 0.03, releaseTime: 2.5, filterCutoff: 0.6, distortion: 0, volume: 0.4},
	ElectricBass:        {wave: waveSine, attackTime: 0.01, releaseTime: 1.2, filterCutoff: 0.4, distortion: 0.1, volume: 0.6},
	AcousticBass:        {wave: waveTriangle, attackTime: 0.02, releaseTime: 1.8, filterCutoff: 0.3, distortion: 0, volume: 0.55},
	Piano:               {wave: waveTriangle, attackTime: 0.001, releaseTime: 3.0, filterCutoff: 0.9, distortion: 0, volume: 0.5},
	Organ:               {wave: waveSine, attackTime: 0.1, releaseTime: 0.1, filterCutoff: 0.8, distortion: 0, volume: 0.4},
	Strings:             {wave: waveSaw, attackTime: 0.2, releaseTime: 1.5, filterCutoff: 0.7, distortion: 0, volume: 0.35},
	SynthLead:           {wave: waveSquare, attackTime: 0.01, releaseTime: 0.5, filterCutoff: 0.9, distortion: 0.2, volume: 0.4},
	SynthPad:            {wave: waveSaw, attackTime: 0.5, releaseTime: 2.0, filterCutoff: 0.5, distortion: 0, volume: 0.3},
	BrassSection:        {wave: waveSaw, attackTime: 0.05, releaseTime: 0.3, filterCutoff: 0.8, distortion: 0.1, volume: 0.45},
}

type envelopeStage uint8

const (
	stageOff envelopeStage = iota
	stageAttack
	stageSustain
	stageRelease
)

type voice struct {
	tag   uint16
	note  uint8
	age   uint64
	freq  float32
	phase float32

	stage envelopeStage
	env   float32
	vel   float32

	settings    instrumentSettings
	filterState float32

	sustainEnabled bool
	sustainRelease float32
}

func (v *voice) active() bool {
	return v.stage != stageOff
}

func (v *voice) trigger(note, velocity uint8, tag uint16, age uint64, settings instrumentSettings, sustainEnabled bool, sustainRelease float32) {
	v.tag = tag
	v.note = note
	v.age = age
	v.vel = float32(velocity) / 127
	v.freq = midiToFrequency(note)
	v.phase = 0
	v.stage = stageAttack
	v.env = 0
	v.settings = settings
	v.filterState = 0
	v.sustainEnabled = sustainEnabled
	v.sustainRelease = sustainRelease
}

func (v *voice) release() {
	if v.stage == stageAttack || v.stage == stageSustain {
		v.stage = stageRelease
	}
}

// renderSample produces one mono sample and advances the envelope.
// bend is the total pitch offset in semitones, whammy plus vibrato.
func (v *voice) renderSample(sampleRate, bend float32, noise *noiseSource) float32 {
	if !v.active() {
		return 0
	}

	dt := 1 / sampleRate
	switch v.stage {
	case stageAttack:
		v.env += dt / v.settings.attackTime
		if v.env >= 1 {
			v.env = 1
			v.stage = stageSustain
		}
	case stageSustain:
		// Hold at full level until released.
	case stageRelease:
		releaseTime := v.settings.releaseTime
		if v.sustainEnabled {
			releaseTime = v.sustainRelease
		}
		v.env -= dt / releaseTime
		if v.env <= 0 {
			v.env = 0
			v.stage = stageOff
			return 0
		}
	}

	bentFreq := v.freq * pow2(bend/12)
	v.phase += bentFreq / sampleRate
	if v.phase >= 1 {
		v.phase -= 1
	}

	var sample float32
	switch v.settings.wave {
	case waveSine:
		sample = float32(math.Sin(float64(v.phase) * 2 * math.Pi))
	case waveSaw:
		sample = v.phase*2 - 1
	case waveSquare:
		if v.phase < 0.5 {
			sample = 1
		} else {
			sample = -1
		}
	case waveTriangle:
		if v.phase < 0.5 {
			sample = v.phase*4 - 1
		} else {
			sample = 3 - v.phase*4
		}
	case waveNoise:
		sample = noise.next()
	}

	// One-pole low pass, then soft clip if the program distorts.
	v.filterState += (sample - v.filterState) * v.settings.filterCutoff
	sample = v.filterState

	if v.settings.distortion > 0 {
		gain := 1 + v.settings.distortion*10
		sample = tanh32(sample*gain) / tanh32(gain)
	}

	return sample * v.env * v.vel * v.settings.volume
}

// noiseSource is a small xorshift generator. The render path cannot
// touch math/rand's locked global state.
type noiseSource struct {
	state uint32
}

func (n *noiseSource) next() float32 {
	x := n.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	n.state = x
	return float32(x)/float32(math.MaxUint32)*2 - 1
}

// vibratoRateHz is fixed; presets control depth only.
const vibratoRateHz = 5.0

// FallbackSynth is a polyphonic subtractive synth that needs nothing
// but a sample rate. It is the SoundSource used when no sample set or
// SoundFont is configured. All methods run on the render goroutine.
type FallbackSynth struct {
	sampleRate float32
	voices     [MaxVoices]voice
	nextAge    uint64

	pitchBend    float32
	vibratoDepth float32
	vibratoPhase float32
	instrument   Instrument

	releaseScale   float32
	sustainEnabled bool
	sustainRelease float32

	noise noiseSource
}

// NewFallbackSynth creates a synth rendering at the given sample rate.
func NewFallbackSynth(sampleRate int) *FallbackSynth {
	return &FallbackSynth{
		sampleRate:     float32(sampleRate),
		releaseScale:   1,
		sustainEnabled: true,
		sustainRelease: 0.5,
		instrument:     CleanElectricGuitar,
		noise:          noiseSource{state: 0x9e3779b9},
	}
}

// SetInstrument switches the voice program and releases everything
// currently sounding so old and new programs never mix.
func (s *FallbackSynth) SetInstrument(i Instrument) {
	if i >= NumInstruments {
		return
	}
	s.instrument = i
	s.AllNotesOff()
}

// Instrument returns the current voice program.
func (s *FallbackSynth) Instrument() Instrument {
	return s.instrument
}

// SetReleaseScale scales instrument release times. Applies while
// sustain mode is off; sustain mode has its own release time.
func (s *FallbackSynth) SetReleaseScale(scale float32) {
	s.releaseScale = clamp(scale, 0.1, 10)
}

// SetSustainEnabled toggles sustain mode for subsequent notes.
func (s *FallbackSynth) SetSustainEnabled(enabled bool) {
	s.sustainEnabled = enabled
}

// SetSustainRelease sets the sustain-mode release time in seconds.
func (s *FallbackSynth) SetSustainRelease(seconds float32) {
	s.sustainRelease = clamp(seconds, 0.05, 10)
}

// NoteOn starts a voice for the note, addressed by tag for its later
// NoteOff. When every voice is busy the synth steals the oldest voice
// already in release, or failing that the oldest sounding voice, so
// fresh attacks are never cut short by newer ones.
func (s *FallbackSynth) NoteOn(note, velocity uint8, tag uint16) {
	settings := instrumentTable[s.instrument]
	if !s.sustainEnabled {
		settings.releaseTime *= s.releaseScale
	}

	// A pitch already sounding re-attacks its own voice rather than
	// stacking a duplicate; phase and envelope carry over so the
	// retrigger doesn't click.
	for i := range s.voices {
		v := &s.voices[i]
		if v.active() && v.note == note {
			phase, env := v.phase, v.env
			s.nextAge++
			v.trigger(note, velocity, tag, s.nextAge, settings, s.sustainEnabled, s.sustainRelease)
			v.phase, v.env = phase, env
			return
		}
	}

	v := s.findFreeVoice()
	if v == nil {
		v = s.stealVoice()
	}
	s.nextAge++
	v.trigger(note, velocity, tag, s.nextAge, settings, s.sustainEnabled, s.sustainRelease)
}

// NoteOff releases the voice carrying the tag. Unknown tags are
// ignored; the voice may already have been stolen.
func (s *FallbackSynth) NoteOff(tag uint16) {
	for i := range s.voices {
		if s.voices[i].tag == tag && s.voices[i].active() {
			s.voices[i].release()
		}
	}
}

// AllNotesOff releases every voice through its envelope.
func (s *FallbackSynth) AllNotesOff() {
	for i := range s.voices {
		s.voices[i].release()
	}
}

// Panic silences every voice immediately, bypassing release tails.
func (s *FallbackSynth) Panic() {
	for i := range s.voices {
		s.voices[i].stage = stageOff
		s.voices[i].env = 0
	}
}

// SetPitchBend sets the whammy bend in semitones.
func (s *FallbackSynth) SetPitchBend(semitones float32) {
	s.pitchBend = semitones
}

// SetVibratoDepth sets the vibrato amplitude in semitones (0 disables).
func (s *FallbackSynth) SetVibratoDepth(depth float32) {
	s.vibratoDepth = clamp(depth, 0, 1)
}

func (s *FallbackSynth) findFreeVoice() *voice {
	for i := range s.voices {
		if !s.voices[i].active() {
			return &s.voices[i]
		}
	}
	return nil
}

// stealVoice prefers the voice that has been fading out the longest;
// voices still under the player's fingers go last.
func (s *FallbackSynth) stealVoice() *voice {
	var releasing, sounding *voice
	for i := range s.voices {
		v := &s.voices[i]
		switch v.stage {
		case stageRelease:
			if releasing == nil || v.age < releasing.age {
				releasing = v
			}
		case stageAttack, stageSustain:
			if sounding == nil || v.age < sounding.age {
				sounding = v
			}
		}
	}
	if releasing != nil {
		return releasing
	}
	if sounding != nil {
		return sounding
	}
	return &s.voices[0]
}

// Render mixes all active voices into buf as interleaved frames,
// duplicating the mono mix across channels, then hard-limits to ±1.
func (s *FallbackSynth) Render(buf []float32, channels int) {
	for i := range buf {
		buf[i] = 0
	}
	if channels < 1 {
		return
	}

	frames := len(buf) / channels
	vibStep := float32(vibratoRateHz) / s.sampleRate

	for f := 0; f < frames; f++ {
		bend := s.pitchBend
		if s.vibratoDepth > 0 {
			bend += float32(math.Sin(float64(s.vibratoPhase)*2*math.Pi)) * s.vibratoDepth
			s.vibratoPhase += vibStep
			if s.vibratoPhase >= 1 {
				s.vibratoPhase -= 1
			}
		}

		var mix float32
		for i := range s.voices {
			if s.voices[i].active() {
				mix += s.voices[i].renderSample(s.sampleRate, bend, &s.noise)
			}
		}

		mix = clamp(mix, -1, 1)
		base := f * channels
		for c := 0; c < channels; c++ {
			buf[base+c] = mix
		}
	}
}

// ActiveVoices counts voices not yet silent.
func (s *FallbackSynth) ActiveVoices() int {
	n := 0
	for i := range s.voices {
		if s.voices[i].active() {
			n++
		}
	}
	return n
}

func midiToFrequency(note uint8) float32 {
	return 440 * pow2((float32(note)-69)/12)
}

func pow2(x float32) float32 {
	return float32(math.Exp2(float64(x)))
}

func tanh32(x float32) float32 {
	return float32(math.Tanh(float64(x)))
}

func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
