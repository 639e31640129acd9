// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/ik5/audplay/audio"
)

// mockOggReader hands out interleaved values from a fixed buffer.
type mockOggReader struct {
	sampleRate int
	channels   int
	data       []float32
	pos        int // in values
	readErr    error
}

func (m *mockOggReader) SampleRate() int { return m.sampleRate }
func (m *mockOggReader) Channels() int   { return m.channels }
func (m *mockOggReader) Length() int64   { return int64(len(m.data) / m.channels) }

func (m *mockOggReader) SetPosition(pos int64) error {
	if pos < 0 || pos > m.Length() {
		return errors.New("position out of range")
	}
	m.pos = int(pos) * m.channels
	return nil
}

func (m *mockOggReader) Read(p []float32) (int, error) {
	if m.readErr != nil {
		return 0, m.readErr
	}
	if m.pos >= len(m.data) {
		return 0, io.EOF
	}
	n := copy(p, m.data[m.pos:])
	m.pos += n
	return n, nil
}

func ramp(n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(i) / float32(n)
	}
	return out
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	if _, err := (Decoder{}).Decode(bytes.NewReader([]byte("OggS but not really"))); err == nil {
		t.Error("Decode() error = nil, want error")
	}
}

func TestSource_Metadata(t *testing.T) {
	t.Parallel()

	src := newSource(&mockOggReader{sampleRate: 48000, channels: 2, data: make([]float32, 96)}, true)

	if src.SampleRate() != 48000 || src.Channels() != 2 {
		t.Errorf("format = %d Hz %d ch, want 48000 Hz 2 ch", src.SampleRate(), src.Channels())
	}
	if src.Frames() != 48 {
		t.Errorf("Frames() = %d, want 48", src.Frames())
	}
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	data := ramp(10)
	src := newSource(&mockOggReader{sampleRate: 44100, channels: 2, data: data}, true)

	// Five slots only fit two stereo frames.
	dst := make([]float32, 5)
	n, err := src.ReadSamples(dst)
	if err != nil {
		t.Fatalf("ReadSamples() error = %v", err)
	}
	if n != 4 {
		t.Fatalf("ReadSamples() = %d, want 4", n)
	}
	for i := range n {
		if dst[i] != data[i] {
			t.Errorf("dst[%d] = %f, want %f", i, dst[i], data[i])
		}
	}

	total := n
	for {
		n, err := src.ReadSamples(dst)
		total += n
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}
	if total != len(data) {
		t.Errorf("read %d values, want %d", total, len(data))
	}
}

func TestSource_ReadSamples_TooSmall(t *testing.T) {
	t.Parallel()

	src := newSource(&mockOggReader{sampleRate: 44100, channels: 2, data: ramp(4)}, true)
	if n, err := src.ReadSamples(make([]float32, 1)); n != 0 || err != nil {
		t.Errorf("ReadSamples(1) = %d, %v; want 0, nil", n, err)
	}
}

func TestSource_ReadSamples_Error(t *testing.T) {
	t.Parallel()

	mock := &mockOggReader{sampleRate: 44100, channels: 1, data: ramp(4), readErr: errors.New("bad packet")}
	if _, err := newSource(mock, true).ReadSamples(make([]float32, 4)); err == nil || err == io.EOF {
		t.Errorf("ReadSamples() error = %v, want decoder error", err)
	}
}

func TestSource_SeekFrame(t *testing.T) {
	t.Parallel()

	data := ramp(20)
	src := newSource(&mockOggReader{sampleRate: 44100, channels: 2, data: data}, true)

	if err := src.SeekFrame(3); err != nil {
		t.Fatalf("SeekFrame(3) error = %v", err)
	}

	dst := make([]float32, 2)
	if _, err := src.ReadSamples(dst); err != nil {
		t.Fatalf("ReadSamples() error = %v", err)
	}
	if dst[0] != data[6] {
		t.Errorf("first value after seek = %f, want %f", dst[0], data[6])
	}

	if err := src.SeekFrame(-1); !errors.Is(err, audio.ErrSeekOutOfRange) {
		t.Errorf("SeekFrame(-1) error = %v, want %v", err, audio.ErrSeekOutOfRange)
	}

	// Past the end clamps to the end.
	if err := src.SeekFrame(99); err != nil {
		t.Errorf("SeekFrame(99) error = %v", err)
	}
}

func TestSource_NotSeekable(t *testing.T) {
	t.Parallel()

	src := newSource(&mockOggReader{sampleRate: 44100, channels: 1, data: ramp(4)}, false)

	if src.Frames() != -1 {
		t.Errorf("Frames() = %d, want -1", src.Frames())
	}
	if err := src.SeekFrame(1); !errors.Is(err, audio.ErrNotSeekable) {
		t.Errorf("SeekFrame() error = %v, want %v", err, audio.ErrNotSeekable)
	}
}
