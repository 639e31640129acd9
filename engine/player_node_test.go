// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"
	"slices"
	"testing"
)

func TestPlayerNode_ScheduleErrors(t *testing.T) {
	t.Parallel()

	n := NewPlayerNode()
	if err := n.ScheduleBuffer(NewBuffer(44100, 1, 8), nil); !errors.Is(err, ErrNoFormat) {
		t.Errorf("ScheduleBuffer() before SetFormat error = %v, want %v", err, ErrNoFormat)
	}

	n.SetFormat(44100, 2)

	tests := []struct {
		name string
		buf  *Buffer
		want error
	}{
		{"matching", NewBuffer(44100, 2, 8), nil},
		{"wrong rate", NewBuffer(48000, 2, 8), ErrFormatMismatch},
		{"wrong channels", NewBuffer(44100, 1, 8), ErrFormatMismatch},
	}

	for _, tt := range tests {
		if err := n.ScheduleBuffer(tt.buf, nil); !errors.Is(err, tt.want) {
			t.Errorf("%s: ScheduleBuffer() error = %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestPlayerNode_FIFOAndCompletions(t *testing.T) {
	t.Parallel()

	n := NewPlayerNode()
	n.SetFormat(8000, 1)

	var order []string
	for i, name := range []string{"a", "b", "c"} {
		buf := rampBuffer(8000, 1, 4, float32(i*10))
		if err := n.ScheduleBuffer(buf, func() { order = append(order, name) }); err != nil {
			t.Fatal(err)
		}
	}

	dst := make([]float32, 6)

	// Paused nodes render silence and keep their queue.
	n.ReadSamples(dst)
	if slices.ContainsFunc(dst, func(v float32) bool { return v != 0 }) || len(order) != 0 {
		t.Fatalf("paused render = %v, completions %v; want silence and none", dst, order)
	}

	n.Play()
	n.ReadSamples(dst)
	if want := []float32{0, 1, 2, 3, 10, 11}; !slices.Equal(dst, want) {
		t.Errorf("first render = %v, want %v", dst, want)
	}
	if !slices.Equal(order, []string{"a"}) {
		t.Errorf("completions = %v, want [a]", order)
	}

	n.ReadSamples(dst)
	if want := []float32{12, 13, 20, 21, 22, 23}; !slices.Equal(dst, want) {
		t.Errorf("second render = %v, want %v", dst, want)
	}
	if !slices.Equal(order, []string{"a", "b", "c"}) {
		t.Errorf("completions = %v, want [a b c]", order)
	}
	if n.SampleTime() != 12 {
		t.Errorf("SampleTime() = %d, want 12", n.SampleTime())
	}

	// Starved: silence, clock holds.
	n.ReadSamples(dst)
	if dst[0] != 0 || n.SampleTime() != 12 {
		t.Errorf("starved render = %v, SampleTime %d; want silence, 12", dst, n.SampleTime())
	}
}

func TestPlayerNode_CompletionCanReschedule(t *testing.T) {
	t.Parallel()

	n := NewPlayerNode()
	n.SetFormat(8000, 1)

	buf := rampBuffer(8000, 1, 2, 0)
	refills := 0
	var done func()
	done = func() {
		if refills < 3 {
			refills++
			if err := n.ScheduleBuffer(buf, done); err != nil {
				t.Error(err)
			}
		}
	}
	if err := n.ScheduleBuffer(buf, done); err != nil {
		t.Fatal(err)
	}

	n.Play()
	dst := make([]float32, 2)
	for range 4 {
		n.ReadSamples(dst)
	}

	if refills != 3 || n.SampleTime() != 8 {
		t.Errorf("refills = %d, SampleTime = %d; want 3, 8", refills, n.SampleTime())
	}
}

func TestPlayerNode_StopFiresPending(t *testing.T) {
	t.Parallel()

	n := NewPlayerNode()
	n.SetFormat(8000, 2)

	fired := 0
	for range 3 {
		if err := n.ScheduleBuffer(rampBuffer(8000, 2, 100, 0), func() { fired++ }); err != nil {
			t.Fatal(err)
		}
	}

	n.Play()
	n.ReadSamples(make([]float32, 20))
	n.Stop()

	if fired != 3 {
		t.Errorf("completions after Stop = %d, want 3", fired)
	}
	if n.Queued() != 0 || n.IsPlaying() || n.SampleTime() != 0 {
		t.Errorf("after Stop: queued %d, playing %v, SampleTime %d", n.Queued(), n.IsPlaying(), n.SampleTime())
	}

	n.Stop()
	if fired != 3 {
		t.Errorf("second Stop fired again: %d", fired)
	}
}

func TestPlayerNode_PauseKeepsPosition(t *testing.T) {
	t.Parallel()

	n := NewPlayerNode()
	n.SetFormat(8000, 1)
	if err := n.ScheduleBuffer(rampBuffer(8000, 1, 10, 0), nil); err != nil {
		t.Fatal(err)
	}

	dst := make([]float32, 3)
	n.Play()
	n.ReadSamples(dst)
	n.Pause()
	n.ReadSamples(dst)
	n.Play()
	n.ReadSamples(dst)

	if want := []float32{3, 4, 5}; !slices.Equal(dst, want) {
		t.Errorf("render after resume = %v, want %v", dst, want)
	}
	if n.SampleTime() != 6 {
		t.Errorf("SampleTime() = %d, want 6", n.SampleTime())
	}
}
