// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/ik5/audplay/audio"
)

// mockAiffReader stands in for aiff.Decoder.
type mockAiffReader struct {
	sampleRate int
	channels   int
	samples    []int
	offset     int
	readErr    error
}

func (m *mockAiffReader) Format() *goaudio.Format {
	return &goaudio.Format{SampleRate: m.sampleRate, NumChannels: m.channels}
}

func (m *mockAiffReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if m.readErr != nil {
		return 0, m.readErr
	}
	if m.offset >= len(m.samples) {
		return 0, io.EOF
	}

	n := copy(buf.Data, m.samples[m.offset:])
	m.offset += n

	return n, nil
}

func newMockSource(rate, channels int, samples []int) *source {
	dec := &mockAiffReader{sampleRate: rate, channels: channels, samples: samples}
	return newSource(dec, int64(len(samples)/channels))
}

func writeAIFF(t *testing.T, rate, channels, depth int, samples []int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.aiff")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	defer f.Close()

	enc := aiff.NewEncoder(f, rate, depth, channels)
	buf := &goaudio.IntBuffer{
		Data:           samples,
		Format:         &goaudio.Format{SampleRate: rate, NumChannels: channels},
		SourceBitDepth: depth,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}

	return path
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{"text", []byte("This is not AIFF data")},
		{"empty", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := (Decoder{}).Decode(bytes.NewReader(tt.data)); err == nil {
				t.Error("Decode() error = nil, want error")
			}
		})
	}
}

func TestDecoder_EncodedFile(t *testing.T) {
	t.Parallel()

	samples := []int{0, 1000, -1000, 2000, -2000, 3000, -3000, 4000}
	path := writeAIFF(t, 22050, 2, 16, samples)

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	src, err := Decoder{}.Decode(f)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if src.SampleRate() != 22050 || src.Channels() != 2 {
		t.Errorf("format = %d Hz %d ch, want 22050 Hz 2 ch", src.SampleRate(), src.Channels())
	}
	if frames := src.(audio.FrameCounter).Frames(); frames != 4 {
		t.Errorf("Frames() = %d, want 4", frames)
	}
}

func TestDecoder_Rejects8Bit(t *testing.T) {
	t.Parallel()

	path := writeAIFF(t, 8000, 1, 8, []int{1, 2, 3, 4})
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	// A plain reader exercises the in-memory fallback.
	_, err = Decoder{}.Decode(io.MultiReader(bytes.NewReader(data)))
	if !errors.Is(err, ErrOnlyPCM16bitSupported) {
		t.Errorf("Decode() error = %v, want %v", err, ErrOnlyPCM16bitSupported)
	}
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	src := newMockSource(44100, 1, []int{16384, -16384, 32767})

	dst := make([]float32, 8)
	n, err := src.ReadSamples(dst)
	if n != 3 || err != io.EOF {
		t.Fatalf("ReadSamples() = %d, %v; want 3, EOF", n, err)
	}

	want := []float32{0.5, -0.5, 32767.0 / 32768}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %f, want %f", i, dst[i], want[i])
		}
	}

	if n, err := src.ReadSamples(dst); n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() after end = %d, %v; want 0, EOF", n, err)
	}
}

func TestSource_ReadSamples_Error(t *testing.T) {
	t.Parallel()

	src := newMockSource(44100, 1, []int{1})
	src.dec.(*mockAiffReader).readErr = io.ErrUnexpectedEOF

	if _, err := src.ReadSamples(make([]float32, 4)); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadSamples() error = %v, want %v", err, io.ErrUnexpectedEOF)
	}
}

func TestSource_ReadSamples_Empty(t *testing.T) {
	t.Parallel()

	if n, err := newMockSource(44100, 2, nil).ReadSamples(nil); n != 0 || err != nil {
		t.Errorf("ReadSamples(nil) = %d, %v; want 0, nil", n, err)
	}
}

func TestSource_StopsAtFrameCount(t *testing.T) {
	t.Parallel()

	// Two stereo frames declared, three present.
	src := newMockSource(8000, 2, []int{1, 2, 3, 4, 5, 6})
	src.frames = 2

	dst := make([]float32, 16)
	n, err := src.ReadSamples(dst)
	if n != 4 || err != io.EOF {
		t.Errorf("ReadSamples() = %d, %v; want 4, EOF", n, err)
	}
	if n, err := src.ReadSamples(dst); n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() after end = %d, %v; want 0, EOF", n, err)
	}
}
