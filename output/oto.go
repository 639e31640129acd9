// SPDX-License-Identifier: EPL-2.0

//go:build !headless

package output

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/ik5/audplay/engine"
)

// oto allows a single context per process.
var (
	otoMu   sync.Mutex
	otoCtx  *oto.Context
	otoRate int
)

func otoContext(sampleRate int, bufferSize time.Duration) (*oto.Context, error) {
	otoMu.Lock()
	defer otoMu.Unlock()

	if otoCtx != nil {
		if otoRate != sampleRate {
			return nil, fmt.Errorf("%w: %d Hz requested, %d Hz open", ErrRateMismatch, sampleRate, otoRate)
		}
		return otoCtx, nil
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: engine.Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   bufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	otoCtx, otoRate = ctx, sampleRate

	return ctx, nil
}

// Oto plays through the sound card with github.com/ebitengine/oto/v3. Oto
// pulls from Read on its own goroutine, which becomes the audio thread.
type Oto struct {
	bufferSize time.Duration

	renderer atomic.Pointer[engine.Renderer]

	mu      sync.Mutex
	player  *oto.Player
	samples []float32
}

// NewOto returns a device sink. bufferSize is the device latency; zero lets
// oto choose.
func NewOto(bufferSize time.Duration) *Oto {
	return &Oto{bufferSize: bufferSize}
}

func (o *Oto) Start(r engine.Renderer) error {
	ctx, err := otoContext(r.SampleRate(), o.bufferSize)
	if err != nil {
		return err
	}

	o.renderer.Store(&r)

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player == nil {
		o.player = ctx.NewPlayer(o)
	}
	o.player.Play()

	return nil
}

// Read implements io.Reader for oto.
func (o *Oto) Read(p []byte) (int, error) {
	n := len(p) / 4
	n -= n % engine.Channels

	if cap(o.samples) < n {
		o.samples = make([]float32, n)
	}
	samples := o.samples[:n]

	if r := o.renderer.Load(); r != nil {
		(*r).Render(samples)
	} else {
		clear(samples)
	}

	for i, v := range samples {
		binary.LittleEndian.PutUint32(p[4*i:], math.Float32bits(v))
	}

	return n * 4, nil
}

// defaultOtoLatency stands in for the device buffer when oto picks its size.
const defaultOtoLatency = 100 * time.Millisecond

// Latency implements engine.Delayed.
func (o *Oto) Latency() time.Duration {
	if o.bufferSize <= 0 {
		return defaultOtoLatency
	}
	return o.bufferSize
}

// Seek implements io.Seeker. The stream has no position; oto seeks only to
// drop what it has buffered.
func (o *Oto) Seek(int64, int) (int64, error) { return 0, nil }

// Stop pauses the device and drops the audio oto buffered ahead, so the next
// Start plays fresh output instead of the tail of the last one.
func (o *Oto) Stop() error {
	o.renderer.Store(nil)

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player == nil {
		return nil
	}

	o.player.Pause()
	if _, err := o.player.Seek(0, io.SeekCurrent); err != nil {
		return fmt.Errorf("flush oto buffer: %w", err)
	}

	return nil
}

func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player == nil {
		return nil
	}

	err := o.player.Close()
	o.player = nil
	if err != nil {
		return fmt.Errorf("close oto player: %w", err)
	}

	return nil
}
