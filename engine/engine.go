// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/ik5/audplay/audio"
)

// Channels is the channel count of everything the engine renders.
const Channels = 2

type Config struct {
	SampleRate int // output rate in Hz
	Quantum    int // frames per render pass requested from sinks
}

func DefaultConfig() Config {
	return Config{
		SampleRate: 44100,
		Quantum:    512,
	}
}

// Renderer is the side of the engine a Sink sees.
type Renderer interface {
	// Render fills dst with interleaved stereo samples and returns the number
	// of frames produced by the graph. A stopped engine writes silence and
	// returns 0.
	Render(dst []float32) int
	SampleRate() int
	Quantum() int
}

// Sink drives rendering: it calls Render from its own goroutine, which is
// the engine's audio thread, and delivers the result somewhere.
type Sink interface {
	Start(r Renderer) error
	Stop() error
	Close() error
}

// Delayed is implemented by sinks that hold rendered audio before the
// listener hears it, such as a device buffer.
type Delayed interface {
	Latency() time.Duration
}

// Engine is a pull-based audio graph. Nodes are attached, connected into a
// chain ending at the main mixer, and rendered whenever the sink asks.
type Engine struct {
	cfg  Config
	sink Sink

	ctl sync.Mutex // serializes Start, Stop and Close

	// render is held for a whole render pass and for every graph edit, so
	// the topology never changes under a running pass.
	render   sync.Mutex
	running  bool
	closed   bool
	nodes    []Node
	inputs   map[Processor]audio.Source
	main     *Mixer
	rendered int64

	marksMu sync.Mutex
	marks   []mark
}

// mark is a Drain waiter. at stays negative until the end of the render
// pass that registered it.
type mark struct {
	at   int64
	done chan struct{}
}

func New(sink Sink, cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = def.SampleRate
	}
	if cfg.Quantum <= 0 {
		cfg.Quantum = def.Quantum
	}

	return &Engine{
		cfg:    cfg,
		sink:   sink,
		inputs: make(map[Processor]audio.Source),
		main:   NewMixer(cfg.SampleRate),
	}
}

func (e *Engine) SampleRate() int { return e.cfg.SampleRate }
func (e *Engine) Quantum() int    { return e.cfg.Quantum }

// MainMixer is the last node before the sink. It is always attached.
func (e *Engine) MainMixer() *Mixer { return e.main }

func (e *Engine) Attach(n Node) {
	e.render.Lock()
	defer e.render.Unlock()

	if !slices.Contains(e.nodes, n) {
		e.nodes = append(e.nodes, n)
	}
}

// Detach removes n from the graph. A detached processor loses its input.
func (e *Engine) Detach(n Node) {
	e.render.Lock()
	defer e.render.Unlock()

	e.nodes = slices.DeleteFunc(e.nodes, func(x Node) bool { return x == n })
	if p, ok := n.(Processor); ok {
		p.SetInput(nil)
		delete(e.inputs, p)
	}
}

func (e *Engine) attached(n Node) bool {
	if n == Node(e.main) {
		return true
	}
	return slices.Contains(e.nodes, n)
}

// Connect feeds src into dst. Both must be attached when they are nodes.
func (e *Engine) Connect(src audio.Source, dst Processor) error {
	e.render.Lock()
	defer e.render.Unlock()

	if !e.attached(dst) {
		return ErrNotAttached
	}
	if n, ok := src.(Node); ok && !e.attached(n) {
		return ErrNotAttached
	}

	dst.SetInput(src)
	e.inputs[dst] = src

	return nil
}

func (e *Engine) Disconnect(dst Processor) {
	e.render.Lock()
	defer e.render.Unlock()

	dst.SetInput(nil)
	delete(e.inputs, dst)
}

// Start begins rendering. Starting a running engine does nothing.
func (e *Engine) Start() error {
	e.ctl.Lock()
	defer e.ctl.Unlock()

	e.render.Lock()
	if e.closed {
		e.render.Unlock()
		return ErrClosed
	}
	if e.running {
		e.render.Unlock()
		return nil
	}
	e.running = true
	e.render.Unlock()

	if err := e.sink.Start(e); err != nil {
		e.render.Lock()
		e.running = false
		e.render.Unlock()

		return fmt.Errorf("%w: %w", ErrEngineStart, err)
	}

	return nil
}

// Stop halts rendering. When it returns no render pass is in progress and
// none will run until the next Start.
func (e *Engine) Stop() error {
	e.ctl.Lock()
	defer e.ctl.Unlock()

	return e.stop()
}

func (e *Engine) stop() error {
	e.render.Lock()
	was := e.running
	e.running = false
	e.render.Unlock()

	if !was {
		return nil
	}
	e.releaseMarks()
	if err := e.sink.Stop(); err != nil {
		return fmt.Errorf("stop sink: %w", err)
	}

	return nil
}

func (e *Engine) IsRunning() bool {
	e.render.Lock()
	defer e.render.Unlock()

	return e.running
}

// Reset clears the internal state of every node in the graph.
func (e *Engine) Reset() {
	e.render.Lock()
	defer e.render.Unlock()

	for _, n := range e.nodes {
		n.Reset()
	}
	e.main.Reset()
	e.releaseMarks()
}

// RenderedFrames counts the frames rendered while running.
func (e *Engine) RenderedFrames() int64 {
	e.render.Lock()
	defer e.render.Unlock()

	return e.rendered
}

func (e *Engine) Render(dst []float32) int {
	e.render.Lock()
	defer e.render.Unlock()

	clear(dst)
	dst = dst[:len(dst)-len(dst)%Channels]
	if !e.running {
		return 0
	}

	fill(e.main, dst)
	frames := len(dst) / Channels
	e.rendered += int64(frames)
	e.settleMarks()

	return frames
}

// Drain returns a channel that is closed once the engine has rendered the
// audio its nodes hold at the end of the current render pass, and a Delayed
// sink has had time to play it. Called outside a pass, the next pass takes
// the measure. Stop and Reset close
// every outstanding channel.
//
// Drain is safe to call from a buffer completion.
func (e *Engine) Drain() <-chan struct{} {
	done := make(chan struct{})

	e.marksMu.Lock()
	e.marks = append(e.marks, mark{at: -1, done: done})
	e.marksMu.Unlock()

	return done
}

// Pending returns how many output frames the graph will still produce from
// audio it has already pulled.
func (e *Engine) Pending() int64 {
	e.render.Lock()
	defer e.render.Unlock()

	return e.pending()
}

// pending walks from the main mixer upstream and folds each node's buffered
// audio into output frames. Called with the render lock held.
func (e *Engine) pending() int64 {
	var chain []audio.Source
	var src audio.Source = e.main
	for src != nil && len(chain) <= len(e.nodes) {
		chain = append(chain, src)
		p, ok := src.(Processor)
		if !ok {
			break
		}
		src = e.inputs[p]
	}

	var frames float64
	for _, n := range slices.Backward(chain) {
		if b, ok := n.(Buffering); ok {
			frames = b.Pending(frames)
		}
	}

	return int64(math.Ceil(frames))
}

// settleMarks runs at the end of every pass with the render lock held.
func (e *Engine) settleMarks() {
	e.marksMu.Lock()
	defer e.marksMu.Unlock()

	if len(e.marks) == 0 {
		return
	}

	pending := int64(-1)
	keep := e.marks[:0]
	for _, m := range e.marks {
		if m.at < 0 {
			if pending < 0 {
				pending = e.pending() + e.sinkLatency()
			}
			m.at = e.rendered + pending
		}
		if m.at <= e.rendered {
			close(m.done)
			continue
		}
		keep = append(keep, m)
	}
	clear(e.marks[len(keep):])
	e.marks = keep
}

func (e *Engine) sinkLatency() int64 {
	d, ok := e.sink.(Delayed)
	if !ok {
		return 0
	}

	return int64(math.Ceil(d.Latency().Seconds() * float64(e.cfg.SampleRate)))
}

func (e *Engine) releaseMarks() {
	e.marksMu.Lock()
	defer e.marksMu.Unlock()

	for _, m := range e.marks {
		close(m.done)
	}
	e.marks = nil
}

// Close stops the engine and closes the sink. A closed engine cannot be
// started again.
func (e *Engine) Close() error {
	e.ctl.Lock()
	defer e.ctl.Unlock()

	e.render.Lock()
	if e.closed {
		e.render.Unlock()
		return nil
	}
	e.render.Unlock()

	stopErr := e.stop()

	e.render.Lock()
	e.closed = true
	e.render.Unlock()

	if err := e.sink.Close(); err != nil {
		return fmt.Errorf("close sink: %w", err)
	}

	return stopErr
}
