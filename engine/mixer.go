// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"sync"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/utils"
)

// Mixer converts its input to stereo at the engine rate and applies volume
// and pan. Mono input, input with more than two channels, and any input
// while downmixing are folded to mono first; the result is then panned.
//
// Pan runs from -1 (left) to 1 (right) with a linear law: at 0 both sides
// pass unchanged, at -1 the right side is silent.
type Mixer struct {
	rate int

	mu      sync.Mutex
	volume  float32
	pan     float32
	downmix bool
	dirty   bool

	// Touched only under the engine render lock.
	input     audio.Source
	chain     audio.Source
	resampler *audio.Resampler
	chainMono bool
	tmp       []float32
}

func NewMixer(sampleRate int) *Mixer {
	return &Mixer{
		rate:   sampleRate,
		volume: 1,
	}
}

func (m *Mixer) SampleRate() int { return m.rate }
func (m *Mixer) Channels() int   { return Channels }
func (m *Mixer) BufSize() int    { return 4096 }
func (m *Mixer) Close() error    { return nil }

func (m *Mixer) SetInput(src audio.Source) {
	m.input = src
	m.rebuild(m.Downmix())
}

func (m *Mixer) rebuild(downmix bool) {
	m.chain, m.resampler, m.chainMono = nil, nil, false
	if m.input == nil {
		return
	}

	chain := m.input
	if downmix || chain.Channels() != Channels {
		chain = audio.NewMonoMixer(chain)
		m.chainMono = true
	}
	if chain.SampleRate() != m.rate {
		m.resampler = audio.NewResampler(chain, m.rate)
		chain = m.resampler
	}
	m.chain = chain
}

func (m *Mixer) Reset() {
	if m.resampler != nil {
		m.resampler.Reset()
	}
}

// Pending implements Buffering. Only the resampler holds audio.
func (m *Mixer) Pending(upstream float64) float64 {
	if m.resampler == nil {
		return upstream
	}

	return (upstream + m.resampler.Pending()) / m.resampler.Ratio()
}

func (m *Mixer) SetVolume(v float32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.volume = utils.Clamp(v, 0, 1)
}

func (m *Mixer) Volume() float32 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.volume
}

func (m *Mixer) SetPan(p float32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pan = utils.Clamp(p, -1, 1)
}

func (m *Mixer) Pan() float32 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.pan
}

// SetDownmix folds every input to mono before panning. It takes effect on
// the next render pass.
func (m *Mixer) SetDownmix(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.downmix != on {
		m.downmix = on
		m.dirty = true
	}
}

func (m *Mixer) Downmix() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.downmix
}

// gains returns the left and right gain for the current settings.
func (m *Mixer) gains() (left, right float32, downmix, dirty bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	left = m.volume * min(1, 1-m.pan)
	right = m.volume * min(1, 1+m.pan)
	downmix, dirty = m.downmix, m.dirty
	m.dirty = false

	return left, right, downmix, dirty
}

// ReadSamples always fills dst. Parameters are read once per pass and the
// mixer lock is not held while pulling upstream, because upstream nodes may
// run completion handlers.
func (m *Mixer) ReadSamples(dst []float32) (int, error) {
	left, right, downmix, dirty := m.gains()
	if dirty {
		m.rebuild(downmix)
	}

	frames := len(dst) / Channels
	dst = dst[:frames*Channels]
	if m.chain == nil {
		clear(dst)
		return len(dst), nil
	}

	if m.chainMono {
		if cap(m.tmp) < frames {
			m.tmp = make([]float32, frames)
		}
		mono := m.tmp[:frames]
		fill(m.chain, mono)

		for i, v := range mono {
			dst[2*i] = v * left
			dst[2*i+1] = v * right
		}

		return len(dst), nil
	}

	fill(m.chain, dst)
	for i := 0; i < len(dst); i += 2 {
		dst[i] *= left
		dst[i+1] *= right
	}

	return len(dst), nil
}
