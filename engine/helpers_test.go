// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"
	"time"
)

// fakeSink records lifecycle calls; tests render by calling Render directly.
type fakeSink struct {
	r        Renderer
	startErr error
	starts   int
	stops    int
	closes   int
}

func (s *fakeSink) Start(r Renderer) error {
	if s.startErr != nil {
		return s.startErr
	}
	s.r = r
	s.starts++
	return nil
}

func (s *fakeSink) Stop() error  { s.stops++; return nil }
func (s *fakeSink) Close() error { s.closes++; return nil }

var errNoDevice = errors.New("no audio device")

// constSource yields value on every sample forever and counts frames read.
type delayedSink struct {
	fakeSink
	latency time.Duration
}

func (s *delayedSink) Latency() time.Duration { return s.latency }

type constSource struct {
	rate     int
	channels int
	value    float32
	frames   int
}

func (c *constSource) SampleRate() int { return c.rate }
func (c *constSource) Channels() int   { return c.channels }
func (c *constSource) BufSize() int    { return 4096 }
func (c *constSource) Close() error    { return nil }

func (c *constSource) ReadSamples(dst []float32) (int, error) {
	n := len(dst) - len(dst)%c.channels
	for i := range n {
		dst[i] = c.value
	}
	c.frames += n / c.channels
	return n, nil
}

// stereoSource carries a constant on each channel.
type stereoSource struct {
	rate        int
	left, right float32
}

func (s *stereoSource) SampleRate() int { return s.rate }
func (s *stereoSource) Channels() int   { return 2 }
func (s *stereoSource) BufSize() int    { return 4096 }
func (s *stereoSource) Close() error    { return nil }

func (s *stereoSource) ReadSamples(dst []float32) (int, error) {
	n := len(dst) - len(dst)%2
	for i := 0; i < n; i += 2 {
		dst[i], dst[i+1] = s.left, s.right
	}
	return n, nil
}

// impulseSource yields a single full-scale stereo frame followed by silence.
type impulseSource struct {
	rate int
	sent bool
}

func (s *impulseSource) SampleRate() int { return s.rate }
func (s *impulseSource) Channels() int   { return 2 }
func (s *impulseSource) BufSize() int    { return 4096 }
func (s *impulseSource) Close() error    { return nil }

func (s *impulseSource) ReadSamples(dst []float32) (int, error) {
	clear(dst)
	if !s.sent && len(dst) >= 2 {
		dst[0], dst[1] = 1, 1
		s.sent = true
	}
	return len(dst), nil
}

func rampBuffer(rate, channels, frames int, start float32) *Buffer {
	b := NewBuffer(rate, channels, frames)
	b.Frames = frames
	for f := range frames {
		for c := range channels {
			b.Data[f*channels+c] = start + float32(f)
		}
	}
	return b
}

// resampleHeld bounds the output frames a mixer upsampling 2x holds between
// passes: one staged source block plus the interpolation window.
const resampleHeld = 2 * (256 + 3)
