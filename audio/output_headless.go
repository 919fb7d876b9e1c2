//go:build headless

package audio

import (
	"sync"
	"sync/atomic"
)

const outputChannels = 2

// Output is a no-op device for builds without audio hardware. Render
// still runs when Read is called so tests can drive the pipeline.
type Output struct {
	engine  atomic.Pointer[Engine]
	stats   *Stats
	started bool
	mutex   sync.Mutex

	sampleRate   int
	bufferFrames int
	sampleBuf    []float32
}

func NewOutput(sampleRate, bufferFrames int, stats *Stats) (*Output, error) {
	if stats != nil {
		stats.setLatency(bufferFrames, sampleRate)
	}
	return &Output{
		stats:        stats,
		sampleRate:   sampleRate,
		bufferFrames: bufferFrames,
		sampleBuf:    make([]float32, bufferFrames*outputChannels),
	}, nil
}

func (o *Output) Attach(e *Engine) {
	o.engine.Store(e)
}

func (o *Output) Read(p []byte) (int, error) {
	e := o.engine.Load()
	if e != nil {
		numSamples := len(p) / 4
		if len(o.sampleBuf) < numSamples {
			o.sampleBuf = make([]float32, numSamples)
		}
		e.Render(o.sampleBuf[:numSamples], outputChannels)
	}
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func (o *Output) Start() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.started = true
}

func (o *Output) Close() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.started = false
}

func (o *Output) SampleRate() int {
	return o.sampleRate
}
