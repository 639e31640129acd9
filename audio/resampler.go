// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/audplay/utils"
)

const (
	resampleBlockFrames = 256
	emptyReadRetries    = 3
)

// Resampler streams from src to target sample rate using cubic interpolation.
// Works on interleaved samples; preserves channel count.
// Includes basic anti-aliasing filtering when downsampling.
//
// Source frames are pulled in small blocks so that a live upstream (such as
// a player node) is never read far ahead of what has been produced.
type Resampler struct {
	src      Source
	dstRate  int
	ratio    float64 // source frames per output frame
	channels int

	// window holds four consecutive source frames t-1, t0, t+1, t+2.
	window []float32
	real   [4]bool
	primed bool
	pos    float64

	block    []float32
	blockPos int
	blockLen int
	eof      bool

	lowpass bool
	alpha   float32
	lpState []float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	ratio := float64(src.SampleRate()) / float64(dstRate)

	return &Resampler{
		src:      src,
		dstRate:  dstRate,
		ratio:    ratio,
		channels: channels,
		window:   make([]float32, 4*channels),
		block:    make([]float32, resampleBlockFrames*channels),
		lowpass:  ratio > 1.0,
		alpha:    0.5,
		lpState:  make([]float32, channels),
	}
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

// Ratio returns how many source frames are consumed per output frame.
func (r *Resampler) Ratio() float64 { return r.ratio }

// Pending returns how many source frames have been pulled from src but not
// yet passed by the output position.
func (r *Resampler) Pending() float64 {
	staged := float64(r.blockLen - r.blockPos)
	if !r.primed {
		return staged
	}

	ahead := -r.pos
	for _, ok := range r.real[1:] {
		if ok {
			ahead++
		}
	}

	return staged + max(0, ahead)
}

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// Reset drops interpolation history and staged input so the next read
// starts fresh from whatever src produces next.
func (r *Resampler) Reset() {
	clear(r.window)
	clear(r.lpState)
	r.real = [4]bool{}
	r.primed = false
	r.pos = 0
	r.blockPos, r.blockLen = 0, 0
	r.eof = false
}

// nextFrame copies the next source frame into dst. ok is false once the
// source is exhausted.
func (r *Resampler) nextFrame(dst []float32) (bool, error) {
	empty := 0
	for r.blockPos >= r.blockLen {
		if r.eof || empty >= emptyReadRetries {
			return false, nil
		}

		n, err := r.src.ReadSamples(r.block)
		r.blockPos, r.blockLen = 0, n/r.channels
		if err == io.EOF {
			r.eof = true
		} else if err != nil {
			return false, fmt.Errorf("%w", err)
		}
		if n == 0 {
			empty++
		}
	}

	off := r.blockPos * r.channels
	copy(dst, r.block[off:off+r.channels])
	r.blockPos++

	if r.lowpass {
		// One-pole low-pass: y[n] = alpha * x[n] + (1-alpha) * y[n-1]
		for c := range r.channels {
			dst[c] = r.alpha*dst[c] + (1-r.alpha)*r.lpState[c]
			r.lpState[c] = dst[c]
		}
	}

	return true, nil
}

func (r *Resampler) prime() error {
	ch := r.channels
	first := r.window[ch : 2*ch]

	ok, err := r.nextFrame(first)
	if err != nil || !ok {
		return err
	}
	if r.lowpass {
		// Avoid the warm-up transient of a zeroed filter.
		copy(r.lpState, first)
	}
	copy(r.window[:ch], first)
	r.real[0], r.real[1] = true, true

	for i := 2; i < 4; i++ {
		slot := r.window[i*ch : (i+1)*ch]
		ok, err := r.nextFrame(slot)
		if err != nil {
			return err
		}
		if !ok {
			copy(slot, r.window[(i-1)*ch:i*ch])
		}
		r.real[i] = ok
	}

	r.primed = true
	return nil
}

func (r *Resampler) advance() error {
	ch := r.channels
	copy(r.window, r.window[ch:])
	r.real[0], r.real[1], r.real[2] = r.real[1], r.real[2], r.real[3]

	last := r.window[3*ch:]
	ok, err := r.nextFrame(last)
	if err != nil {
		return err
	}
	if !ok {
		copy(last, r.window[2*ch:3*ch])
	}
	r.real[3] = ok

	return nil
}

// ReadSamples produces dst samples at the destination rate.
// dst length should be a multiple of r.channels.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	ch := r.channels
	if len(dst)%ch != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
		if !r.primed {
			return 0, io.EOF
		}
	}

	written := 0
	framesNeeded := len(dst) / ch

	for written < framesNeeded {
		for r.pos >= 1.0 {
			r.pos -= 1.0
			if err := r.advance(); err != nil {
				return written * ch, err
			}
		}

		if !r.real[1] {
			if written == 0 {
				return 0, io.EOF
			}
			return written * ch, io.EOF
		}

		x := float32(r.pos)
		w := r.window
		out := dst[written*ch : (written+1)*ch]
		for c := range ch {
			out[c] = utils.CubicInterpolate(w[c], w[ch+c], w[2*ch+c], w[3*ch+c], x)
		}

		written++
		r.pos += r.ratio
	}

	return written * ch, nil
}
