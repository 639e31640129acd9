// SPDX-License-Identifier: EPL-2.0

package player

import "sync"

// Observer is told about transport transitions. Calls for one player arrive
// in order on a goroutine owned by the player.
type Observer interface {
	PlaybackStarted(p *Player)
	PlaybackPaused(p *Player)
	// PlaybackStopped reports trackCompleted when playback ran to the end of
	// the track rather than being stopped.
	PlaybackStopped(p *Player, trackCompleted bool)
	PlaybackRateAdjusted(p *Player, rate float64)
}

// Funcs adapts plain functions to Observer. Nil fields are skipped.
type Funcs struct {
	Started      func(p *Player)
	Paused       func(p *Player)
	Stopped      func(p *Player, trackCompleted bool)
	RateAdjusted func(p *Player, rate float64)
}

func (f Funcs) PlaybackStarted(p *Player) {
	if f.Started != nil {
		f.Started(p)
	}
}

func (f Funcs) PlaybackPaused(p *Player) {
	if f.Paused != nil {
		f.Paused(p)
	}
}

func (f Funcs) PlaybackStopped(p *Player, trackCompleted bool) {
	if f.Stopped != nil {
		f.Stopped(p, trackCompleted)
	}
}

func (f Funcs) PlaybackRateAdjusted(p *Player, rate float64) {
	if f.RateAdjusted != nil {
		f.RateAdjusted(p, rate)
	}
}

type EventKind int

const (
	EventStarted EventKind = iota
	EventPaused
	EventStopped
	EventRateAdjusted
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventPaused:
		return "paused"
	case EventStopped:
		return "stopped"
	case EventRateAdjusted:
		return "rate adjusted"
	default:
		return "unknown"
	}
}

// Event is a notification as delivered by ChanObserver.
type Event struct {
	Kind           EventKind
	Player         *Player
	TrackCompleted bool    // EventStopped only
	Rate           float64 // EventRateAdjusted only
}

// ChanObserver sends every notification on C. The player's dispatcher blocks
// while C is full, so keep it drained.
type ChanObserver struct {
	C chan Event
}

func NewChanObserver(size int) *ChanObserver {
	return &ChanObserver{C: make(chan Event, size)}
}

func (o *ChanObserver) PlaybackStarted(p *Player) {
	o.C <- Event{Kind: EventStarted, Player: p}
}

func (o *ChanObserver) PlaybackPaused(p *Player) {
	o.C <- Event{Kind: EventPaused, Player: p}
}

func (o *ChanObserver) PlaybackStopped(p *Player, trackCompleted bool) {
	o.C <- Event{Kind: EventStopped, Player: p, TrackCompleted: trackCompleted}
}

func (o *ChanObserver) PlaybackRateAdjusted(p *Player, rate float64) {
	o.C <- Event{Kind: EventRateAdjusted, Player: p, Rate: rate}
}

// dispatcher runs posted functions one at a time, in order, on its own
// goroutine. post never blocks, so it is safe to call with locks held.
type dispatcher struct {
	mu     sync.Mutex
	queue  []func()
	closed bool
	wake   chan struct{}
	done   chan struct{}
}

func newDispatcher() *dispatcher {
	d := &dispatcher{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go d.run()

	return d
}

func (d *dispatcher) post(f func()) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.queue = append(d.queue, f)
	d.mu.Unlock()

	d.signal()
}

func (d *dispatcher) signal() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// close lets the goroutine deliver what is queued and exit. It does not
// wait, so it may be called from a posted function.
func (d *dispatcher) close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.signal()
}

func (d *dispatcher) run() {
	defer close(d.done)

	for {
		d.mu.Lock()
		queue := d.queue
		d.queue = nil
		closed := d.closed
		d.mu.Unlock()

		for _, f := range queue {
			f()
		}

		switch {
		case len(queue) > 0:
		case closed:
			return
		default:
			<-d.wake
		}
	}
}
