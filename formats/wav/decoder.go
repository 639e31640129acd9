// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/utils"
)

const (
	formatPCM        = 1
	formatExtensible = 0xFFFE
	unknownDataSize  = 0xFFFFFFFF
)

type wavSource struct {
	r          io.Reader
	seeker     io.Seeker
	sampleRate int
	channels   int
	dataStart  int64
	dataSize   int64 // bytes, -1 when the header does not say
	consumed   int64 // bytes of the data chunk already read
	buf        []byte
}

func (s *wavSource) SampleRate() int { return s.sampleRate }
func (s *wavSource) Channels() int   { return s.channels }
func (s *wavSource) BufSize() int    { return cap(s.buf) / 2 }
func (s *wavSource) Close() error    { return nil }

func (s *wavSource) blockAlign() int64 { return int64(s.channels) * 2 }

// Frames implements audio.FrameCounter.
func (s *wavSource) Frames() int64 {
	if s.dataSize < 0 {
		return -1
	}

	return s.dataSize / s.blockAlign()
}

// SeekFrame implements audio.FrameSeeker. It needs the reader handed to
// Decode to be an io.Seeker.
func (s *wavSource) SeekFrame(frame int64) error {
	if s.seeker == nil {
		return audio.ErrNotSeekable
	}
	if frame < 0 {
		return audio.ErrSeekOutOfRange
	}
	if total := s.Frames(); total >= 0 && frame > total {
		frame = total
	}

	off := frame * s.blockAlign()
	if _, err := s.seeker.Seek(s.dataStart+off, io.SeekStart); err != nil {
		return fmt.Errorf("seek to frame %d: %w", frame, err)
	}
	s.consumed = off

	return nil
}

func (s *wavSource) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	want := int64(len(dst)) * 2
	if s.dataSize >= 0 {
		want = min(want, s.dataSize-s.consumed)
	}
	if want <= 0 {
		return 0, io.EOF
	}

	if int64(cap(s.buf)) < want {
		s.buf = make([]byte, want)
	}
	buf := s.buf[:want]

	n, err := io.ReadFull(s.r, buf)
	s.consumed += int64(n)

	samples := n / 2
	for i := range samples {
		dst[i] = utils.Int16ToFloat32(int16(binary.LittleEndian.Uint16(buf[2*i:])))
	}

	switch {
	case err == io.EOF || err == io.ErrUnexpectedEOF:
		if samples == 0 {
			return 0, io.EOF
		}
		return samples, io.EOF
	case err != nil:
		return samples, fmt.Errorf("%w", err)
	case s.dataSize >= 0 && s.consumed >= s.dataSize:
		return samples, io.EOF
	}

	return samples, nil
}

type fmtChunk struct {
	audioFormat   uint16
	channels      uint16
	sampleRate    uint32
	bitsPerSample uint16
}

type Decoder struct{}

// Decode walks the RIFF chunk list up to the data chunk. Chunks other than
// "fmt " (LIST, fact, cue, ...) are skipped.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	if !bytes.Equal(riff[:4], []byte("RIFF")) || !bytes.Equal(riff[8:12], []byte("WAVE")) {
		return nil, ErrNotWavFile
	}

	offset := int64(len(riff))
	var format *fmtChunk

	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, ErrUnsupportedWavChunks
			}
			return nil, fmt.Errorf("%w", err)
		}
		offset += int64(len(hdr))

		id := string(hdr[:4])
		size := int64(binary.LittleEndian.Uint32(hdr[4:]))

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, ErrUnsupportedWavLayout
			}
			body := make([]byte, size+size%2)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, fmt.Errorf("%w", err)
			}
			offset += int64(len(body))
			format = &fmtChunk{
				audioFormat:   binary.LittleEndian.Uint16(body[0:2]),
				channels:      binary.LittleEndian.Uint16(body[2:4]),
				sampleRate:    binary.LittleEndian.Uint32(body[4:8]),
				bitsPerSample: binary.LittleEndian.Uint16(body[14:16]),
			}

		case "data":
			if format == nil {
				return nil, ErrUnsupportedWavLayout
			}
			return newSource(r, format, offset, size)

		default:
			skip := size + size%2
			if _, err := io.CopyN(io.Discard, r, skip); err != nil {
				return nil, ErrUnsupportedWavChunks
			}
			offset += skip
		}
	}
}

func newSource(r io.Reader, f *fmtChunk, offset, size int64) (audio.Source, error) {
	if f.audioFormat != formatPCM && f.audioFormat != formatExtensible {
		return nil, ErrOnlyPCM16bitSupported
	}
	if f.bitsPerSample != 16 {
		return nil, ErrOnlyPCM16bitSupported
	}
	if f.channels == 0 || f.sampleRate == 0 {
		return nil, ErrUnsupportedWavLayout
	}

	if size == unknownDataSize {
		size = -1
	}

	s := &wavSource{
		r:          r,
		sampleRate: int(f.sampleRate),
		channels:   int(f.channels),
		dataStart:  offset,
		dataSize:   size,
		buf:        make([]byte, 8192),
	}

	if sk, ok := r.(io.Seeker); ok {
		// The reader may not have started at offset 0.
		if pos, err := sk.Seek(0, io.SeekCurrent); err == nil {
			s.seeker = sk
			s.dataStart = pos
		}
	}

	return s, nil
}
