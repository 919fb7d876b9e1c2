package audio

// Sample is one mono recording with the pitch it was captured at.
type Sample struct {
	Data     []float32
	Rate     int
	RootNote uint8
	Loop     bool
}

// SampleSet maps the keyboard onto a handful of samples; each note
// plays the sample whose root is nearest, repitched by the semitone
// distance.
type SampleSet struct {
	Name    string
	Samples []Sample
}

// nearest returns the sample closest in pitch to the note.
func (s *SampleSet) nearest(note uint8) *Sample {
	if len(s.Samples) == 0 {
		return nil
	}
	best := &s.Samples[0]
	bestDist := distance(best.RootNote, note)
	for i := 1; i < len(s.Samples); i++ {
		if d := distance(s.Samples[i].RootNote, note); d < bestDist {
			best = &s.Samples[i]
			bestDist = d
		}
	}
	return best
}

func distance(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

type sampleVoice struct {
	sample     *Sample
	tag        uint16
	age        uint64
	position   float64
	pitchRatio float64
	vel        float32

	stage envelopeStage
	env   float32
}

func (v *sampleVoice) active() bool {
	return v.stage != stageOff
}

// SampleSource plays pitch-shifted recorded samples instead of
// synthesized waves. It satisfies the same source contract as
// FallbackSynth and shares its stealing order.
type SampleSource struct {
	sampleRate float32
	set        *SampleSet
	voices     [MaxVoices]sampleVoice
	nextAge    uint64
	pitchBend  float32

	attackTime  float32
	releaseTime float32
}

// NewSampleSource plays a set at the given output rate.
func NewSampleSource(set *SampleSet, sampleRate int) *SampleSource {
	return &SampleSource{
		sampleRate:  float32(sampleRate),
		set:         set,
		attackTime:  0.005,
		releaseTime: 0.3,
	}
}

func (s *SampleSource) NoteOn(note, velocity uint8, tag uint16) {
	sample := s.set.nearest(note)
	if sample == nil {
		return
	}

	v := s.findVoice()
	s.nextAge++
	*v = sampleVoice{
		sample: sample,
		tag:    tag,
		age:    s.nextAge,
		// Repitch by semitone distance, corrected for rate mismatch
		// between the recording and the output device.
		pitchRatio: float64(pow2(float32(int(note)-int(sample.RootNote))/12)) * float64(sample.Rate) / float64(s.sampleRate),
		vel:        float32(velocity) / 127,
		stage:      stageAttack,
	}
}

func (s *SampleSource) findVoice() *sampleVoice {
	for i := range s.voices {
		if !s.voices[i].active() {
			return &s.voices[i]
		}
	}
	var releasing, sounding *sampleVoice
	for i := range s.voices {
		v := &s.voices[i]
		switch v.stage {
		case stageRelease:
			if releasing == nil || v.age < releasing.age {
				releasing = v
			}
		default:
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

func (s *SampleSource) NoteOff(tag uint16) {
	for i := range s.voices {
		if s.voices[i].tag == tag && s.voices[i].active() {
			if s.voices[i].stage != stageRelease {
				s.voices[i].stage = stageRelease
			}
		}
	}
}

func (s *SampleSource) AllNotesOff() {
	for i := range s.voices {
		if s.voices[i].active() {
			s.voices[i].stage = stageRelease
		}
	}
}

func (s *SampleSource) Panic() {
	for i := range s.voices {
		s.voices[i].stage = stageOff
		s.voices[i].env = 0
	}
}

func (s *SampleSource) SetPitchBend(semitones float32) {
	s.pitchBend = semitones
}

func (s *SampleSource) Render(buf []float32, channels int) {
	for i := range buf {
		buf[i] = 0
	}
	if channels < 1 {
		return
	}

	frames := len(buf) / channels
	dt := 1 / s.sampleRate
	bendRatio := float64(pow2(s.pitchBend / 12))

	for f := 0; f < frames; f++ {
		var mix float32
		for i := range s.voices {
			v := &s.voices[i]
			if !v.active() {
				continue
			}

			switch v.stage {
			case stageAttack:
				v.env += dt / s.attackTime
				if v.env >= 1 {
					v.env = 1
					v.stage = stageSustain
				}
			case stageRelease:
				v.env -= dt / s.releaseTime
				if v.env <= 0 {
					v.stage = stageOff
					continue
				}
			}

			mix += v.nextSample(bendRatio) * v.env * v.vel
		}

		mix = clamp(mix, -1, 1)
		base := f * channels
		for c := 0; c < channels; c++ {
			buf[base+c] = mix
		}
	}
}

// nextSample reads the table with linear interpolation and advances the
// play head. Non-looping samples end the voice at the table edge.
func (v *sampleVoice) nextSample(bendRatio float64) float32 {
	data := v.sample.Data
	n := len(data)
	if n == 0 {
		v.stage = stageOff
		return 0
	}

	idx := int(v.position)
	if idx >= n-1 {
		if !v.sample.Loop {
			v.stage = stageOff
			return 0
		}
		v.position -= float64(n - 1)
		idx = int(v.position)
		if idx >= n-1 {
			idx = 0
			v.position = 0
		}
	}

	frac := float32(v.position - float64(idx))
	out := data[idx]*(1-frac) + data[idx+1]*frac
	v.position += v.pitchRatio * bendRatio
	return out
}

func (s *SampleSource) ActiveVoices() int {
	n := 0
	for i := range s.voices {
		if s.voices[i].active() {
			n++
		}
	}
	return n
}
