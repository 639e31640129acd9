// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"errors"
	"io"
	"math"

	"github.com/ik5/audplay/audio"
)

// ErrInjected is returned by sources built with NewFailingSource.
var ErrInjected = errors.New("audiotest: injected read failure")

// MockSource is a test helper that generates audio data for testing.
// It implements audio.Source, audio.FrameCounter and audio.FrameSeeker.
type MockSource struct {
	sampleRate  int
	channels    int
	totalFrames int
	position    int
	waveform    func(frame int, channel int) float32

	failAfter int // frames before ReadSamples fails, -1 never
	closed    bool
}

// NewMockSource creates a new mock audio source of totalFrames frames.
// waveform generates sample values given frame index and channel.
func NewMockSource(sampleRate, channels, totalFrames int, waveform func(frame int, channel int) float32) *MockSource {
	return &MockSource{
		sampleRate:  sampleRate,
		channels:    channels,
		totalFrames: totalFrames,
		waveform:    waveform,
		failAfter:   -1,
	}
}

// NewSilentSource creates a mock source that generates silence (all zeros).
func NewSilentSource(sampleRate, channels, totalFrames int) *MockSource {
	return NewConstantSource(sampleRate, channels, totalFrames, 0)
}

// NewSineSource creates a mock source that generates a sine wave.
func NewSineSource(sampleRate, channels, totalFrames int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(frame int, _ int) float32 {
		t := float64(frame) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

// NewConstantSource creates a mock source with constant value.
func NewConstantSource(sampleRate, channels, totalFrames int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(int, int) float32 {
		return value
	})
}

// NewRampSource yields frame/totalFrames on every channel, which makes the
// frame a sample came from recoverable.
func NewRampSource(sampleRate, channels, totalFrames int) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(frame int, _ int) float32 {
		return float32(frame) / float32(totalFrames)
	})
}

// NewFailingSource returns a source whose reads fail with ErrInjected once
// failAfter frames have been produced.
func NewFailingSource(sampleRate, channels, totalFrames, failAfter int) *MockSource {
	m := NewSilentSource(sampleRate, channels, totalFrames)
	m.failAfter = failAfter
	return m
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return 4096 }

func (m *MockSource) Close() error {
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockSource) Closed() bool { return m.closed }

// Position is the next frame to be read.
func (m *MockSource) Position() int { return m.position }

// Reset resets the read position to allow re-reading.
func (m *MockSource) Reset() {
	m.position = 0
}

func (m *MockSource) Frames() int64 { return int64(m.totalFrames) }

func (m *MockSource) SeekFrame(frame int64) error {
	if frame < 0 {
		return audio.ErrSeekOutOfRange
	}
	m.position = int(min(frame, int64(m.totalFrames)))
	return nil
}

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.failAfter >= 0 && m.position >= m.failAfter {
		return 0, ErrInjected
	}
	if m.position >= m.totalFrames {
		return 0, io.EOF
	}

	frames := min(len(dst)/m.channels, m.totalFrames-m.position)
	if m.failAfter >= 0 {
		frames = min(frames, m.failAfter-m.position)
	}

	for f := range frames {
		for ch := range m.channels {
			dst[f*m.channels+ch] = m.waveform(m.position+f, ch)
		}
	}

	m.position += frames
	if m.position >= m.totalFrames {
		return frames * m.channels, io.EOF
	}

	return frames * m.channels, nil
}
