// SPDX-License-Identifier: EPL-2.0

package engine

import "sync"

type scheduled struct {
	buf    *Buffer
	offset int // frames already rendered
	done   func()
}

// PlayerNode plays scheduled buffers in FIFO order. It renders silence while
// paused, stopped or starved, and never reports end of stream.
//
// Completion handlers run on the render goroutine once the last frame of
// their buffer has been rendered, or on the caller's goroutine for buffers
// dropped by Stop. They are never called with the node's lock held, so they
// may schedule the next buffer.
type PlayerNode struct {
	mu         sync.Mutex
	sampleRate int
	channels   int
	queue      []scheduled
	playing    bool
	sampleTime int64
}

func NewPlayerNode() *PlayerNode {
	return &PlayerNode{}
}

// SetFormat sets the format buffers must have. Call it while stopped.
func (n *PlayerNode) SetFormat(sampleRate, channels int) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.sampleRate = sampleRate
	n.channels = channels
}

func (n *PlayerNode) SampleRate() int {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.sampleRate
}

func (n *PlayerNode) Channels() int {
	n.mu.Lock()
	defer n.mu.Unlock()

	return max(n.channels, 1)
}

func (n *PlayerNode) BufSize() int { return 4096 }
func (n *PlayerNode) Close() error { return nil }
func (n *PlayerNode) Reset()       {}

// ScheduleBuffer queues buf behind everything already scheduled. done, if
// not nil, runs exactly once: when buf has played out or when Stop drops it.
func (n *PlayerNode) ScheduleBuffer(buf *Buffer, done func()) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.sampleRate == 0 || n.channels == 0 {
		return ErrNoFormat
	}
	if buf.SampleRate != n.sampleRate || buf.Channels != n.channels {
		return ErrFormatMismatch
	}

	n.queue = append(n.queue, scheduled{buf: buf, done: done})

	return nil
}

func (n *PlayerNode) Play() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.playing = true
}

// Pause keeps the queue and the sample clock.
func (n *PlayerNode) Pause() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.playing = false
}

// Stop drops every scheduled buffer, firing their completion handlers before
// it returns, and resets the sample clock.
func (n *PlayerNode) Stop() {
	n.mu.Lock()
	dropped := n.queue
	n.queue = nil
	n.playing = false
	n.sampleTime = 0
	n.mu.Unlock()

	for _, s := range dropped {
		if s.done != nil {
			s.done()
		}
	}
}

func (n *PlayerNode) IsPlaying() bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.playing
}

// SampleTime is the number of scheduled frames rendered since the last
// Stop. Silence rendered while starved is not counted.
func (n *PlayerNode) SampleTime() int64 {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.sampleTime
}

// Queued reports how many buffers are waiting or playing.
func (n *PlayerNode) Queued() int {
	n.mu.Lock()
	defer n.mu.Unlock()

	return len(n.queue)
}

func (n *PlayerNode) ReadSamples(dst []float32) (int, error) {
	n.mu.Lock()

	ch := max(n.channels, 1)
	if !n.playing {
		n.mu.Unlock()
		clear(dst)
		return len(dst), nil
	}

	frames := len(dst) / ch
	written := 0

	var done []func()
	for written < frames && len(n.queue) > 0 {
		head := &n.queue[0]

		k := min(head.buf.Frames-head.offset, frames-written)
		copy(dst[written*ch:(written+k)*ch], head.buf.Data[head.offset*ch:(head.offset+k)*ch])
		head.offset += k
		written += k

		if head.offset >= head.buf.Frames {
			if head.done != nil {
				done = append(done, head.done)
			}
			n.queue[0] = scheduled{}
			n.queue = n.queue[1:]
		}
	}
	clear(dst[written*ch:])
	n.sampleTime += int64(written)

	n.mu.Unlock()

	for _, f := range done {
		f()
	}

	return len(dst), nil
}
