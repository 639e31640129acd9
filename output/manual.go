// SPDX-License-Identifier: EPL-2.0

package output

import (
	"sync"
	"time"

	"github.com/ik5/audplay/engine"
)

// Manual renders only from Advance, on the caller's goroutine. The engine
// still gates the audio, so Advance on a stopped engine yields silence.
type Manual struct {
	mu       sync.Mutex
	r        engine.Renderer
	started  bool
	closed   bool
	capture  bool
	captured []float32
	buf      []float32
}

// NewManual returns a manual sink. With capture set, every rendered sample
// is kept for Captured.
func NewManual(capture bool) *Manual {
	return &Manual{capture: capture}
}

func (m *Manual) Start(r engine.Renderer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.r = r
	m.started = true

	return nil
}

func (m *Manual) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.started = false

	return nil
}

func (m *Manual) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.started = false
	m.closed = true

	return nil
}

// Started reports whether the engine has started the sink and not stopped it.
func (m *Manual) Started() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.started
}

// Advance renders frames frames in quantum-sized passes and returns how many
// the graph produced.
func (m *Manual) Advance(frames int) int {
	m.mu.Lock()
	r := m.r
	m.mu.Unlock()

	if r == nil {
		return 0
	}

	quantum := r.Quantum()
	if cap(m.buf) < quantum*engine.Channels {
		m.buf = make([]float32, quantum*engine.Channels)
	}

	produced := 0
	for frames > 0 {
		n := min(frames, quantum)
		buf := m.buf[:n*engine.Channels]
		produced += r.Render(buf)
		frames -= n

		if m.capture {
			m.mu.Lock()
			m.captured = append(m.captured, buf...)
			m.mu.Unlock()
		}
	}

	return produced
}

// AdvanceDuration renders d worth of audio at the engine rate.
func (m *Manual) AdvanceDuration(d time.Duration) int {
	m.mu.Lock()
	r := m.r
	m.mu.Unlock()

	if r == nil {
		return 0
	}

	return m.Advance(int(d.Seconds() * float64(r.SampleRate())))
}

// Captured returns a copy of the captured stereo samples.
func (m *Manual) Captured() []float32 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]float32(nil), m.captured...)
}
