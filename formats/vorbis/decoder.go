// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"
	"io"

	"github.com/ik5/audplay/audio"
	"github.com/jfreymuth/oggvorbis"
)

// oggReader is the part of oggvorbis.Reader the source relies on.
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
	Length() int64
	SetPosition(pos int64) error
}

type source struct {
	dec        oggReader
	sampleRate int
	channels   int
	seekable   bool
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return 4096 }

// Frames implements audio.FrameCounter; -1 when the stream length is unknown.
func (s *source) Frames() int64 {
	if !s.seekable {
		return -1
	}

	return s.dec.Length()
}

// SeekFrame implements audio.FrameSeeker.
func (s *source) SeekFrame(frame int64) error {
	if !s.seekable {
		return audio.ErrNotSeekable
	}
	if frame < 0 {
		return audio.ErrSeekOutOfRange
	}

	if err := s.dec.SetPosition(min(frame, s.dec.Length())); err != nil {
		return fmt.Errorf("seek to frame %d: %w", frame, err)
	}

	return nil
}

// ReadSamples decodes straight into dst. oggvorbis counts interleaved values,
// so the request is trimmed to whole frames first.
func (s *source) ReadSamples(dst []float32) (int, error) {
	whole := len(dst) - len(dst)%s.channels
	if whole == 0 {
		return 0, nil
	}

	n, err := s.dec.Read(dst[:whole])
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("%w", err)
	}

	return n, err
}

type Decoder struct{}

// Decode opens an Ogg Vorbis stream. Seeking and the length are available
// only when r is an io.ReadSeeker.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	_, seekable := r.(io.Seeker)

	return newSource(dec, seekable), nil
}

func newSource(dec oggReader, seekable bool) *source {
	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
		seekable:   seekable,
	}
}
