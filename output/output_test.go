// SPDX-License-Identifier: EPL-2.0

package output

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/wav"
	"github.com/ik5/audplay/engine"
	"github.com/ik5/audplay/internal/audiotest"
)

// toneEngine returns an engine whose main mixer plays a constant 0.25.
func toneEngine(t *testing.T, sink engine.Sink, rate int) *engine.Engine {
	t.Helper()

	eng := engine.New(sink, engine.Config{SampleRate: rate, Quantum: 256})
	src := audiotest.NewConstantSource(rate, 2, 1<<30, 0.25)
	if err := eng.Connect(src, eng.MainMixer()); err != nil {
		t.Fatal(err)
	}

	return eng
}

func TestManual_Advance(t *testing.T) {
	t.Parallel()

	sink := NewManual(true)
	eng := toneEngine(t, sink, 8000)

	if n := sink.Advance(100); n != 0 {
		t.Errorf("Advance() before Start = %d, want 0", n)
	}

	if err := eng.Start(); err != nil {
		t.Fatal(err)
	}
	if !sink.Started() {
		t.Error("Started() = false after engine start")
	}

	if n := sink.Advance(600); n != 600 {
		t.Errorf("Advance(600) = %d, want 600", n)
	}
	if n := sink.AdvanceDuration(50 * time.Millisecond); n != 400 {
		t.Errorf("AdvanceDuration(50ms) = %d, want 400", n)
	}

	captured := sink.Captured()
	if len(captured) != 2000 {
		t.Fatalf("captured %d samples, want 2000", len(captured))
	}
	if captured[1999] != 0.25 {
		t.Errorf("captured sample = %f, want 0.25", captured[1999])
	}

	if err := eng.Stop(); err != nil {
		t.Fatal(err)
	}
	if sink.Started() {
		t.Error("Started() = true after engine stop")
	}
	if n := sink.Advance(100); n != 0 {
		t.Errorf("Advance() after Stop = %d, want 0", n)
	}
}

func TestManual_Closed(t *testing.T) {
	t.Parallel()

	sink := NewManual(false)
	if err := sink.Close(); err != nil {
		t.Fatal(err)
	}

	eng := engine.New(sink, engine.DefaultConfig())
	if err := eng.Start(); !errors.Is(err, ErrClosed) || !errors.Is(err, engine.ErrEngineStart) {
		t.Errorf("Start() error = %v, want %v wrapping %v", err, engine.ErrEngineStart, ErrClosed)
	}
}

func TestClock_RendersInRealTime(t *testing.T) {
	t.Parallel()

	eng := toneEngine(t, NewClock(), 8000)

	if err := eng.Start(); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	if err := eng.Stop(); err != nil {
		t.Fatal(err)
	}

	rendered := eng.RenderedFrames()

	// 200ms at 8kHz is 1600 frames; allow for scheduler jitter.
	if rendered < 256 || rendered > 4000 {
		t.Errorf("rendered %d frames in 200ms, want about 1600", rendered)
	}

	time.Sleep(50 * time.Millisecond)
	if eng.RenderedFrames() != rendered {
		t.Error("clock kept rendering after Stop")
	}
}

func TestFile_Bounce(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bounce.wav")
	sink, err := NewFile(path, false)
	if err != nil {
		t.Fatal(err)
	}
	eng := toneEngine(t, sink, 22050)

	if err := eng.Start(); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for sink.Frames() < 22050 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if err := eng.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	written := sink.Frames()
	if written < 22050 {
		t.Fatalf("wrote %d frames, want at least 22050", written)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("bounce is not a valid WAV file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("FullPCMBuffer() error = %v", err)
	}

	if buf.Format.SampleRate != 22050 || buf.Format.NumChannels != 2 {
		t.Errorf("format = %d Hz %d ch, want 22050 Hz 2 ch", buf.Format.SampleRate, buf.Format.NumChannels)
	}
	if int64(len(buf.Data)) != written*2 {
		t.Errorf("decoded %d samples, want %d", len(buf.Data), written*2)
	}
	if want := 8191; buf.Data[100] != want {
		t.Errorf("sample = %d, want %d", buf.Data[100], want)
	}

	if err := sink.Start(nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Start() after Close error = %v, want %v", err, ErrClosed)
	}
}
