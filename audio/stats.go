package audio

import "sync/atomic"

// Stats exposes engine health counters to the UI. Writers are the
// render and output goroutines; readers poll from anywhere. All fields
// are atomics so reading never perturbs the render path.
type Stats struct {
	underruns    atomic.Uint64
	activeVoices atomic.Int64
	latencyUs    atomic.Uint64 // microseconds, fixed at configuration time
	sampleRate   atomic.Int64
	bufferFrames atomic.Int64
	ring         *EventRing
}

// NewStats creates stats tied to a ring for its overflow counter.
func NewStats(ring *EventRing) *Stats {
	return &Stats{ring: ring}
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Underruns    uint64
	Overflows    uint64
	ActiveVoices int
	SampleRate   int
	BufferFrames int
	LatencyMs    float64
}

// Read returns the current counter values.
func (s *Stats) Read() Snapshot {
	snap := Snapshot{
		Underruns:    s.underruns.Load(),
		ActiveVoices: int(s.activeVoices.Load()),
		SampleRate:   int(s.sampleRate.Load()),
		BufferFrames: int(s.bufferFrames.Load()),
		LatencyMs:    float64(s.latencyUs.Load()) / 1000,
	}
	if s.ring != nil {
		snap.Overflows = s.ring.Overflows()
	}
	return snap
}

func (s *Stats) addUnderrun() {
	s.underruns.Add(1)
}

func (s *Stats) setActiveVoices(n int) {
	s.activeVoices.Store(int64(n))
}

// setLatency records the output format and its theoretical latency,
// stored in microseconds for the fractional display.
func (s *Stats) setLatency(bufferFrames, sampleRate int) {
	if sampleRate <= 0 {
		return
	}
	s.sampleRate.Store(int64(sampleRate))
	s.bufferFrames.Store(int64(bufferFrames))
	us := uint64(bufferFrames) * 1_000_000 / uint64(sampleRate)
	s.latencyUs.Store(us)
}
