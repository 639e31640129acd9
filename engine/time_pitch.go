// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"math"
	"sync"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/utils"
)

const (
	MinRate = 1.0 / 32
	MaxRate = 32.0

	stretchWindow = 1024
	stretchHop    = stretchWindow / 2
)

// TimePitch changes playback speed with an overlap-add time stretch. Input
// frames are windowed with a periodic Hann window and laid out at a fixed
// synthesis hop while the analysis hop follows the rate. At exactly 1.0 the
// node passes audio through untouched.
type TimePitch struct {
	mu   sync.Mutex
	rate float64

	// Touched only under the engine render lock.
	input    audio.Source
	active   bool
	window   []float32
	in       []float32 // pending input frames, stereo
	inPos    float64   // analysis position within in, frames
	acc      []float32 // overlap-add accumulator, stretchWindow frames
	out      []float32 // finished frames waiting to be read
	outStart int
	scratch  []float32
}

func NewTimePitch() *TimePitch {
	w := make([]float32, stretchWindow)
	for i := range w {
		w[i] = float32(0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/stretchWindow))
	}

	return &TimePitch{
		rate:   1,
		window: w,
		acc:    make([]float32, stretchWindow*Channels),
	}
}

func (tp *TimePitch) SampleRate() int {
	if tp.input == nil {
		return 0
	}
	return tp.input.SampleRate()
}

func (tp *TimePitch) Channels() int { return Channels }
func (tp *TimePitch) BufSize() int  { return stretchWindow * Channels }
func (tp *TimePitch) Close() error  { return nil }

func (tp *TimePitch) SetInput(src audio.Source) {
	tp.input = src
	tp.Reset()
}

func (tp *TimePitch) Reset() {
	tp.in = tp.in[:0]
	tp.inPos = 0
	clear(tp.acc)
	tp.out = tp.out[:0]
	tp.outStart = 0
}

// SetRate clamps rate to [MinRate, MaxRate] and returns the value applied.
func (tp *TimePitch) SetRate(rate float64) float64 {
	rate = utils.Clamp(rate, MinRate, MaxRate)

	tp.mu.Lock()
	defer tp.mu.Unlock()

	tp.rate = rate

	return rate
}

func (tp *TimePitch) Rate() float64 {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	return tp.rate
}

// Pending implements Buffering. Input waiting for analysis, lookahead
// included, plays out at the current rate. Finished output and the
// overlap still in the accumulator play as is.
func (tp *TimePitch) Pending(upstream float64) float64 {
	if !tp.active {
		return upstream
	}

	in := max(0, float64(len(tp.in)/Channels)-tp.inPos)
	out := float64(len(tp.out)-tp.outStart)/Channels + stretchHop

	return (upstream+in)/tp.Rate() + out
}

// Bypassed reports whether audio currently passes through unchanged.
func (tp *TimePitch) Bypassed() bool { return tp.Rate() == 1 }

func (tp *TimePitch) ReadSamples(dst []float32) (int, error) {
	rate := tp.Rate()
	dst = dst[:len(dst)-len(dst)%Channels]

	if rate == 1 {
		if tp.active {
			tp.active = false
			tp.Reset()
		}
		fill(tp.input, dst)
		return len(dst), nil
	}
	tp.active = true

	written := 0
	for written < len(dst) {
		if tp.outStart >= len(tp.out) {
			tp.synthesize(rate)
		}
		n := copy(dst[written:], tp.out[tp.outStart:])
		tp.outStart += n
		written += n
	}

	return len(dst), nil
}

// synthesize produces one hop of output frames.
func (tp *TimePitch) synthesize(rate float64) {
	const ch = Channels

	start := int(tp.inPos)
	tp.ensureInput(start + stretchWindow)

	frame := tp.in[start*ch : (start+stretchWindow)*ch]
	for i, w := range tp.window {
		tp.acc[i*ch] += frame[i*ch] * w
		tp.acc[i*ch+1] += frame[i*ch+1] * w
	}

	// With a periodic Hann window at 50% overlap the first hop is complete.
	tp.out = append(tp.out[:0], tp.acc[:stretchHop*ch]...)
	tp.outStart = 0

	copy(tp.acc, tp.acc[stretchHop*ch:])
	clear(tp.acc[(stretchWindow-stretchHop)*ch:])

	tp.inPos += rate * stretchHop
	if drop := int(tp.inPos); drop > 0 {
		drop = min(drop, len(tp.in)/ch)
		tp.in = append(tp.in[:0], tp.in[drop*ch:]...)
		tp.inPos -= float64(drop)
	}
}

// ensureInput buffers at least frames input frames, padding with silence
// when the input has nothing more.
func (tp *TimePitch) ensureInput(frames int) {
	const ch = Channels

	have := len(tp.in) / ch
	if have >= frames {
		return
	}

	need := (frames - have) * ch
	if cap(tp.scratch) < need {
		tp.scratch = make([]float32, need)
	}
	chunk := tp.scratch[:need]
	fill(tp.input, chunk)

	tp.in = append(tp.in, chunk...)
}
