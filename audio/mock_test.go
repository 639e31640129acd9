// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"math"
)

// wave returns the value of one channel at one frame.
type wave func(frame, channel int) float32

// mockSource renders frames frames of w, then reports io.EOF. It counts and
// seeks like a decoded file.
type mockSource struct {
	rate, channels int
	frames, pos    int
	w              wave
}

func newMockSource(rate, channels, frames int, w func(frame, channel int) float32) *mockSource {
	return &mockSource{rate: rate, channels: channels, frames: frames, w: w}
}

func newSilentSource(rate, channels, frames int) *mockSource {
	return newConstantSource(rate, channels, frames, 0)
}

func newConstantSource(rate, channels, frames int, v float32) *mockSource {
	return newMockSource(rate, channels, frames, func(int, int) float32 { return v })
}

func newSineSource(rate, channels, frames int, hz float64) *mockSource {
	step := 2 * math.Pi * hz / float64(rate)
	return newMockSource(rate, channels, frames, func(frame, _ int) float32 {
		return float32(math.Sin(step * float64(frame)))
	})
}

func (m *mockSource) SampleRate() int { return m.rate }
func (m *mockSource) Channels() int   { return m.channels }
func (m *mockSource) BufSize() int    { return 4096 }
func (m *mockSource) Close() error    { return nil }
func (m *mockSource) Frames() int64   { return int64(m.frames) }

func (m *mockSource) Reset() { m.pos = 0 }

func (m *mockSource) SeekFrame(frame int64) error {
	if frame < 0 {
		return ErrSeekOutOfRange
	}
	m.pos = int(min(frame, int64(m.frames)))

	return nil
}

func (m *mockSource) ReadSamples(dst []float32) (int, error) {
	n := min(len(dst)/m.channels, m.frames-m.pos)
	if n <= 0 {
		return 0, io.EOF
	}

	i := 0
	for f := m.pos; f < m.pos+n; f++ {
		for ch := range m.channels {
			dst[i] = m.w(f, ch)
			i++
		}
	}
	m.pos += n

	if m.pos == m.frames {
		return i, io.EOF
	}

	return i, nil
}
