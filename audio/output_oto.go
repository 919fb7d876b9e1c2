//go:build !headless

package audio

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/ebitengine/oto/v3"

	"mityguitar/debug"
)

const outputChannels = 2

// Output owns the oto context and feeds it from an Engine. The engine
// pointer is atomic so Read never takes a lock on the hot path.
type Output struct {
	ctx    *oto.Context
	player *oto.Player
	engine atomic.Pointer[Engine]
	stats  *Stats

	sampleRate   int
	bufferFrames int
	sampleBuf    []float32

	started bool
	mutex   sync.Mutex
}

// NewOutput opens the audio device at the given rate and buffer size in
// frames. The buffer size sets the output latency; smaller is tighter
// but underruns sooner.
func NewOutput(sampleRate, bufferFrames int, stats *Stats) (*Output, error) {
	bufDur := time.Duration(bufferFrames) * time.Second / time.Duration(sampleRate)
	opts := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: outputChannels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   bufDur,
	}

	ctx, ready, err := oto.NewContext(opts)
	if err != nil {
		return nil, fmt.Errorf("opening audio device: %w", err)
	}
	<-ready

	if stats != nil {
		stats.setLatency(bufferFrames, sampleRate)
	}
	debug.Log(debug.Audio, "output open: rate=%d buffer=%d frames (%.1fms)",
		sampleRate, bufferFrames, float64(bufDur.Microseconds())/1000)

	return &Output{
		ctx:          ctx,
		stats:        stats,
		sampleRate:   sampleRate,
		bufferFrames: bufferFrames,
		sampleBuf:    make([]float32, bufferFrames*outputChannels*2),
	}, nil
}

// Attach points the output at an engine and creates the player. Safe to
// call again to swap engines.
func (o *Output) Attach(e *Engine) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.engine.Store(e)
	if o.player == nil {
		o.player = o.ctx.NewPlayer(o)
	}
}

// Read renders the next chunk of interleaved float32 stereo. Called by
// oto's playback goroutine; this is the realtime path.
func (o *Output) Read(p []byte) (int, error) {
	e := o.engine.Load()
	if e == nil {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}

	numSamples := len(p) / 4
	if len(o.sampleBuf) < numSamples {
		o.sampleBuf = make([]float32, numSamples)
	}
	samples := o.sampleBuf[:numSamples]

	start := time.Now()
	e.Render(samples, outputChannels)

	// A render that costs more wall time than the audio it produced
	// means the device ran dry.
	rendered := time.Duration(numSamples/outputChannels) * time.Second / time.Duration(o.sampleRate)
	if took := time.Since(start); took > rendered && o.stats != nil {
		o.stats.addUnderrun()
		debug.LogEvery(10, debug.Audio, "underrun: render took %v for %v of audio", took, rendered)
	}

	copy(p, (*[1 << 30]byte)(unsafe.Pointer(&samples[0]))[:len(p)])
	return len(p), nil
}

// Start begins playback.
func (o *Output) Start() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if !o.started && o.player != nil {
		o.player.Play()
		o.started = true
	}
}

// Close stops playback and releases the player.
func (o *Output) Close() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if o.player != nil {
		o.player.Close()
		o.player = nil
	}
	o.started = false
}

// SampleRate returns the device sample rate.
func (o *Output) SampleRate() int {
	return o.sampleRate
}
