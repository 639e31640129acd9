// SPDX-License-Identifier: EPL-2.0

package player

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ik5/audplay/engine"
	"github.com/ik5/audplay/internal/audiotest"
	"github.com/ik5/audplay/output"
)

const testRate = 44100

// quantum is the position tolerance of one render pass.
const quantum = 512 * time.Second / testRate

var errNoDevice = errors.New("no audio device")

type brokenSink struct{}

func (brokenSink) Start(engine.Renderer) error { return errNoDevice }
func (brokenSink) Stop() error                 { return nil }
func (brokenSink) Close() error                { return nil }

// syncBuffer is a log sink safe for the audio thread and the test to share.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

type rig struct {
	sink *output.Manual
	eng  *engine.Engine
	obs  *ChanObserver
}

func newRig(t *testing.T, capture bool) *rig {
	t.Helper()

	sink := output.NewManual(capture)
	eng := engine.New(sink, engine.DefaultConfig())
	t.Cleanup(func() { eng.Close() })

	return &rig{
		sink: sink,
		eng:  eng,
		obs:  NewChanObserver(64),
	}
}

func (r *rig) player(t *testing.T, cfg Config) *Player {
	t.Helper()

	cfg.Observer = r.obs
	p := New(r.eng, cfg)
	t.Cleanup(func() { p.Close() })

	return p
}

// toneFile writes a mono 440 Hz sine of d at testRate.
func toneFile(t *testing.T, d time.Duration) string {
	t.Helper()

	frames := int(d.Seconds() * testRate)
	return audiotest.WriteWAV(t, "tone.wav", audiotest.NewSineSource(testRate, 1, frames, 440))
}

func loaded(t *testing.T, p *Player, path string) {
	t.Helper()

	if err := p.Load(path); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}

func (r *rig) wait(t *testing.T, want EventKind) Event {
	t.Helper()

	select {
	case ev := <-r.obs.C:
		if ev.Kind != want {
			t.Fatalf("event = %v, want %v", ev.Kind, want)
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("no %v event", want)
	}

	return Event{}
}

func (r *rig) waitStopped(t *testing.T, completed bool) {
	t.Helper()

	if ev := r.wait(t, EventStopped); ev.TrackCompleted != completed {
		t.Fatalf("stopped with trackCompleted = %v, want %v", ev.TrackCompleted, completed)
	}
}

// playOut renders in small steps until the player reports it stopped, for
// at most limit frames.
func (r *rig) playOut(t *testing.T, limit int) Event {
	t.Helper()

	for rendered := 0; rendered < limit; rendered += 512 {
		r.sink.Advance(512)

		select {
		case ev := <-r.obs.C:
			if ev.Kind != EventStopped {
				t.Fatalf("event = %v, want %v", ev.Kind, EventStopped)
			}
			return ev
		case <-time.After(time.Millisecond):
		}
	}

	r.waitStopped(t, true)
	return Event{Kind: EventStopped, TrackCompleted: true}
}

func (r *rig) quiet(t *testing.T) {
	t.Helper()

	select {
	case ev := <-r.obs.C:
		t.Fatalf("unexpected %v event (trackCompleted=%v)", ev.Kind, ev.TrackCompleted)
	case <-time.After(50 * time.Millisecond):
	}
}

func near(got, want, tolerance time.Duration) bool {
	d := got - want
	return d >= -tolerance && d <= tolerance
}
