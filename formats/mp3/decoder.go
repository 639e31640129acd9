// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/utils"
)

// go-mp3 always produces 16-bit little-endian stereo.
const (
	outputChannels = 2
	bytesPerFrame  = 4
)

// mp3Reader is the part of gomp3.Decoder the source relies on.
type mp3Reader interface {
	Read([]byte) (int, error)
	Seek(offset int64, whence int) (int64, error)
	SampleRate() int
	Length() int64
}

type source struct {
	dec        mp3Reader
	sampleRate int
	buf        []byte
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return outputChannels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return cap(s.buf) / 2 }

// Frames implements audio.FrameCounter. It is -1 when the input given to
// Decode was not seekable.
func (s *source) Frames() int64 {
	n := s.dec.Length()
	if n < 0 {
		return -1
	}

	return n / bytesPerFrame
}

// SeekFrame implements audio.FrameSeeker.
func (s *source) SeekFrame(frame int64) error {
	if frame < 0 {
		return audio.ErrSeekOutOfRange
	}

	total := s.Frames()
	if total < 0 {
		return audio.ErrNotSeekable
	}

	if _, err := s.dec.Seek(min(frame, total)*bytesPerFrame, io.SeekStart); err != nil {
		return fmt.Errorf("seek to frame %d: %w", frame, err)
	}

	return nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	need := len(dst) * 2
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	buf := s.buf[:need]

	// ReadFull keeps reads sample aligned; go-mp3 may return odd byte counts.
	n, err := io.ReadFull(s.dec, buf)

	samples := n / 2
	for i := range samples {
		dst[i] = utils.Int16ToFloat32(int16(binary.LittleEndian.Uint16(buf[2*i:])))
	}

	switch err {
	case nil:
		return samples, nil
	case io.EOF, io.ErrUnexpectedEOF:
		return samples, io.EOF
	default:
		return samples, fmt.Errorf("%w", err)
	}
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return newSource(dec), nil
}

func newSource(dec mp3Reader) *source {
	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		buf:        make([]byte, 8192),
	}
}
