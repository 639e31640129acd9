// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/utils"
)

// pcmReader is the part of aiff.Decoder a source reads from.
type pcmReader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// source streams the SSND chunk. Reads stop at the frame count of the COMM
// chunk, so trailing pad bytes never turn into samples.
type source struct {
	dec        pcmReader
	sampleRate int
	channels   int
	frames     int64
	read       int64 // frames handed out so far
	ib         goaudio.IntBuffer
}

func newSource(dec pcmReader, frames int64) *source {
	f := dec.Format()

	return &source{
		dec:        dec,
		sampleRate: f.SampleRate,
		channels:   f.NumChannels,
		frames:     frames,
		ib:         goaudio.IntBuffer{Format: f, SourceBitDepth: 16},
	}
}

// Frames implements audio.FrameCounter.
func (s *source) Frames() int64 { return s.frames }

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }

func (s *source) BufSize() int {
	return max(cap(s.ib.Data), 4096)
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	left := (s.frames - s.read) * int64(s.channels)
	if left <= 0 {
		return 0, io.EOF
	}
	want := int(min(int64(len(dst)), left))

	if cap(s.ib.Data) < want {
		s.ib.Data = make([]int, want)
	}
	s.ib.Data = s.ib.Data[:want]

	n, err := s.dec.PCMBuffer(&s.ib)
	for i, v := range s.ib.Data[:n] {
		dst[i] = utils.Int16ToFloat32(int16(v))
	}
	s.read += int64(n / s.channels)

	switch {
	case err != nil && err != io.EOF:
		return n, fmt.Errorf("read aiff samples: %w", err)
	case n == 0:
		return 0, io.EOF
	case err == io.EOF || n < want || s.read >= s.frames:
		// A short read means the SSND chunk ran out early.
		return n, io.EOF
	}

	return n, nil
}

type Decoder struct{}

// Decode needs to seek between chunks. A reader that cannot seek is read
// into memory first.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading aiff data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}

	dec.ReadInfo()

	if dec.BitDepth != 16 {
		return nil, ErrOnlyPCM16bitSupported
	}

	f := dec.Format()
	if f == nil || f.NumChannels < 1 || f.SampleRate < 1 {
		return nil, ErrUnsupportedAiffLayout
	}

	return newSource(dec, int64(dec.NumSampleFrames)), nil
}
