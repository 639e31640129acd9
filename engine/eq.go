// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"math"
	"sync"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/utils"
)

type FilterType int

const (
	Parametric FilterType = iota
	LowShelf
	HighShelf
	LowPass
	HighPass
	BandPass
)

func (t FilterType) String() string {
	switch t {
	case Parametric:
		return "parametric"
	case LowShelf:
		return "lowshelf"
	case HighShelf:
		return "highshelf"
	case LowPass:
		return "lowpass"
	case HighPass:
		return "highpass"
	case BandPass:
		return "bandpass"
	default:
		return "unknown"
	}
}

// Band describes one filter of an EQ. Gain is ignored by the pass filters.
type Band struct {
	Type      FilterType
	Frequency float64 // Hz
	Gain      float64 // dB
	Bandwidth float64 // octaves
	Bypass    bool
}

type biquad struct {
	b0, b1, b2, a1, a2 float64
}

var identity = biquad{b0: 1}

// design returns RBJ cookbook coefficients normalized by a0. Shelves use a
// slope of 1.
func (b Band) design(sampleRate int) biquad {
	nyquist := float64(sampleRate) / 2
	f := utils.Clamp(b.Frequency, 10, nyquist*0.98)
	bw := b.Bandwidth
	if bw <= 0 {
		bw = 1
	}

	w0 := 2 * math.Pi * f / float64(sampleRate)
	sin, cos := math.Sincos(w0)
	alpha := sin * math.Sinh(math.Ln2/2*bw*w0/sin)
	a := math.Pow(10, b.Gain/40)

	var b0, b1, b2, a0, a1, a2 float64
	switch b.Type {
	case LowShelf:
		sq := 2 * math.Sqrt(a) * sin / math.Sqrt2
		b0 = a * ((a + 1) - (a-1)*cos + sq)
		b1 = 2 * a * ((a - 1) - (a+1)*cos)
		b2 = a * ((a + 1) - (a-1)*cos - sq)
		a0 = (a + 1) + (a-1)*cos + sq
		a1 = -2 * ((a - 1) + (a+1)*cos)
		a2 = (a + 1) + (a-1)*cos - sq
	case HighShelf:
		sq := 2 * math.Sqrt(a) * sin / math.Sqrt2
		b0 = a * ((a + 1) + (a-1)*cos + sq)
		b1 = -2 * a * ((a - 1) + (a+1)*cos)
		b2 = a * ((a + 1) + (a-1)*cos - sq)
		a0 = (a + 1) - (a-1)*cos + sq
		a1 = 2 * ((a - 1) - (a+1)*cos)
		a2 = (a + 1) - (a-1)*cos - sq
	case LowPass:
		b0, b1, b2 = (1-cos)/2, 1-cos, (1-cos)/2
		a0, a1, a2 = 1+alpha, -2*cos, 1-alpha
	case HighPass:
		b0, b1, b2 = (1+cos)/2, -(1 + cos), (1+cos)/2
		a0, a1, a2 = 1+alpha, -2*cos, 1-alpha
	case BandPass:
		b0, b1, b2 = alpha, 0, -alpha
		a0, a1, a2 = 1+alpha, -2*cos, 1-alpha
	default:
		b0, b1, b2 = 1+alpha*a, -2*cos, 1-alpha*a
		a0, a1, a2 = 1+alpha/a, -2*cos, 1-alpha/a
	}

	return biquad{b0 / a0, b1 / a0, b2 / a0, a1 / a0, a2 / a0}
}

// EQ is a chain of independent biquad bands followed by a global gain. It
// processes stereo input.
type EQ struct {
	rate int

	mu         sync.Mutex
	bands      []Band
	globalGain float64
	dirty      bool

	// Touched only under the engine render lock.
	input  audio.Source
	coeffs []biquad
	gain   float32
	state  [][Channels][2]float64 // per band, per channel: z1, z2
}

func NewEQ(sampleRate int, bands []Band) *EQ {
	return &EQ{
		rate:  sampleRate,
		bands: append([]Band(nil), bands...),
		dirty: true,
		state: make([][Channels][2]float64, len(bands)),
	}
}

func (eq *EQ) SampleRate() int { return eq.rate }
func (eq *EQ) Channels() int   { return Channels }
func (eq *EQ) BufSize() int    { return 4096 }
func (eq *EQ) Close() error    { return nil }

func (eq *EQ) SetInput(src audio.Source) {
	eq.input = src
	eq.Reset()
}

func (eq *EQ) Reset() {
	clear(eq.state)
}

func (eq *EQ) NumBands() int {
	eq.mu.Lock()
	defer eq.mu.Unlock()

	return len(eq.bands)
}

// Band returns a copy of band i. It panics when i is out of range.
func (eq *EQ) Band(i int) Band {
	eq.mu.Lock()
	defer eq.mu.Unlock()

	return eq.bands[i]
}

func (eq *EQ) SetBand(i int, b Band) {
	eq.mu.Lock()
	defer eq.mu.Unlock()

	eq.bands[i] = b
	eq.dirty = true
}

// GlobalGain is applied after all bands, in dB.
func (eq *EQ) GlobalGain() float64 {
	eq.mu.Lock()
	defer eq.mu.Unlock()

	return eq.globalGain
}

func (eq *EQ) SetGlobalGain(db float64) {
	eq.mu.Lock()
	defer eq.mu.Unlock()

	eq.globalGain = db
	eq.dirty = true
}

// refresh recomputes coefficients after a parameter change. Bypassed bands
// get the identity filter.
func (eq *EQ) refresh() {
	eq.mu.Lock()
	defer eq.mu.Unlock()

	if !eq.dirty {
		return
	}
	eq.dirty = false

	eq.coeffs = eq.coeffs[:0]
	for _, b := range eq.bands {
		if b.Bypass {
			eq.coeffs = append(eq.coeffs, identity)
			continue
		}
		eq.coeffs = append(eq.coeffs, b.design(eq.rate))
	}
	eq.gain = float32(utils.DBToGain(eq.globalGain))
}

func (eq *EQ) ReadSamples(dst []float32) (int, error) {
	eq.refresh()

	dst = dst[:len(dst)-len(dst)%Channels]
	fill(eq.input, dst)

	for bi, c := range eq.coeffs {
		if c == identity {
			continue
		}

		st := &eq.state[bi]
		for ch := range Channels {
			z1, z2 := st[ch][0], st[ch][1]
			for i := ch; i < len(dst); i += Channels {
				x := float64(dst[i])
				y := c.b0*x + z1
				z1 = c.b1*x - c.a1*y + z2
				z2 = c.b2*x - c.a2*y
				dst[i] = float32(y)
			}
			st[ch][0], st[ch][1] = z1, z2
		}
	}

	if eq.gain != 1 {
		for i := range dst {
			dst[i] *= eq.gain
		}
	}

	return len(dst), nil
}
