// SPDX-License-Identifier: EPL-2.0

//go:build !headless

package output

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/ik5/audplay/engine"
)

// Speaker plays through github.com/gopxl/beep/v2/speaker. The speaker
// goroutine streams from the engine; Stop pauses it with a beep.Ctrl.
type Speaker struct {
	bufferSize time.Duration

	mu   sync.Mutex
	rate beep.SampleRate
	ctrl *beep.Ctrl
}

// NewSpeaker returns a device sink with bufferSize of latency.
func NewSpeaker(bufferSize time.Duration) *Speaker {
	if bufferSize <= 0 {
		bufferSize = 100 * time.Millisecond
	}

	return &Speaker{bufferSize: bufferSize}
}

func (s *Speaker) Start(r engine.Renderer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sr := beep.SampleRate(r.SampleRate())

	if s.ctrl == nil {
		if err := speaker.Init(sr, sr.N(s.bufferSize)); err != nil {
			return fmt.Errorf("failed to initialize speaker: %w", err)
		}
		s.rate = sr
		s.ctrl = &beep.Ctrl{Streamer: &streamer{r: r}}
		speaker.Play(s.ctrl)

		return nil
	}

	if sr != s.rate {
		return fmt.Errorf("%w: %d Hz requested, %d Hz open", ErrRateMismatch, sr, s.rate)
	}

	speaker.Lock()
	s.ctrl.Paused = false
	speaker.Unlock()

	return nil
}

func (s *Speaker) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctrl != nil {
		speaker.Lock()
		s.ctrl.Paused = true
		speaker.Unlock()
	}

	return nil
}

func (s *Speaker) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctrl == nil {
		return nil
	}

	speaker.Clear()
	speaker.Close()
	s.ctrl = nil

	return nil
}

// streamer adapts the engine to beep.Streamer.
type streamer struct {
	r   engine.Renderer
	buf []float32
}

func (s *streamer) Stream(samples [][2]float64) (int, bool) {
	n := len(samples) * engine.Channels
	if cap(s.buf) < n {
		s.buf = make([]float32, n)
	}
	buf := s.buf[:n]

	s.r.Render(buf)
	for i := range samples {
		samples[i][0] = float64(buf[2*i])
		samples[i][1] = float64(buf[2*i+1])
	}

	return len(samples), true
}

func (s *streamer) Err() error { return nil }
