// SPDX-License-Identifier: EPL-2.0

package player

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ik5/audplay/engine"
	"github.com/ik5/audplay/track"
	"github.com/rs/zerolog"
)

type State int

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// Player streams one track at a time through a PlayerNode.
//
// Control methods are serialized among themselves. The audio thread only
// ever takes mu, from buffer completions, and never calls into the engine,
// so mu must not be held across node Stop or any engine call that waits for
// a render pass.
type Player struct {
	id     uuid.UUID
	cfg    Config
	log    zerolog.Logger
	eng    *engine.Engine
	node   *engine.PlayerNode
	mixer  *engine.Mixer
	nodes  []engine.Node
	events *dispatcher

	ctl sync.Mutex

	mu       sync.Mutex
	track    *track.Track
	buffers  []*engine.Buffer
	state    State
	closed   bool
	stopping bool
	inFlight int

	// reachedEnd is set once the track ran dry with nothing left in flight.
	reachedEnd bool

	// startFrame is the track frame the current session began at; the node's
	// sample time counts from there.
	startFrame int64

	// pausedPosition is authoritative while paused, pendingSeek while
	// stopped.
	pausedPosition int64
	pendingSeek    int64

	// session changes on every start and stop so a finisher spawned by an
	// earlier session can tell it is stale.
	session uint64

	// Interruption bookkeeping.
	rescheduleOnResume bool
	resumeAfter        bool
}

// New attaches a player node and its source mixer to eng and routes them to
// the main mixer. The main mixer has a single input, so one player drives an
// engine at a time.
func New(eng *engine.Engine, cfg Config) *Player {
	p := newPlayer(eng, cfg)
	p.connect(p.mixer, eng.MainMixer())

	return p
}

func newPlayer(eng *engine.Engine, cfg Config) *Player {
	cfg = cfg.withDefaults()
	id := uuid.New()

	p := &Player{
		id:     id,
		cfg:    cfg,
		log:    cfg.Logger.With().Str("player", id.String()).Logger(),
		eng:    eng,
		node:   engine.NewPlayerNode(),
		mixer:  engine.NewMixer(eng.SampleRate()),
		events: newDispatcher(),
	}

	p.attach(p.node)
	p.attach(p.mixer)

	return p
}

func (p *Player) attach(n engine.Node) {
	p.eng.Attach(n)
	p.nodes = append(p.nodes, n)
}

func (p *Player) connect(src engine.Node, dst engine.Processor) {
	if err := p.eng.Connect(src, dst); err != nil {
		p.log.Error().Err(err).Msg("connect nodes")
	}
}

func (p *Player) ID() uuid.UUID { return p.id }

// Mixer is the player's own mixer, right after the player node. Its volume
// and pan apply to this player only.
func (p *Player) Mixer() *engine.Mixer { return p.mixer }

func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.state
}

func (p *Player) Track() *track.Track {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.track
}

// Duration is the length of the current track, or 0 without one.
func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.track == nil {
		return 0
	}

	return p.track.Duration()
}

// Position is the playback position in the track.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.track == nil {
		return 0
	}

	return p.track.DurationOf(p.positionLocked())
}

// PositionFrames is Position in frames of the track.
func (p *Player) PositionFrames() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.positionLocked()
}

func (p *Player) positionLocked() int64 {
	if p.track == nil {
		return 0
	}

	var frame int64
	switch p.state {
	case Playing:
		frame = p.startFrame + p.node.SampleTime()
	case Paused:
		frame = p.pausedPosition
	default:
		frame = p.pendingSeek
	}

	return max(0, min(frame, p.track.Length()))
}

// Load opens path and makes it the current track. A file that cannot be
// opened leaves the player as it was.
func (p *Player) Load(path string) error {
	t, err := track.Open(path, p.cfg.Registry)
	if err != nil {
		p.log.Warn().Err(err).Str("path", path).Msg("open track")
		return fmt.Errorf("load %q: %w", path, err)
	}

	if err := p.SetTrack(t); err != nil {
		t.Close()
		return err
	}

	return nil
}

// SetTrack stops playback and replaces the current track, which is closed.
// The player owns t from here on.
func (p *Player) SetTrack(t *track.Track) error {
	if t == nil {
		return ErrNoTrack
	}

	p.ctl.Lock()
	defer p.ctl.Unlock()

	if p.isClosed() {
		return ErrClosed
	}

	p.stop()

	p.mu.Lock()
	old := p.track
	p.track = t
	p.buffers = nil
	p.pendingSeek = 0
	p.pausedPosition = 0
	p.reachedEnd = false
	p.mu.Unlock()

	if old != nil && old != t {
		old.Close()
	}

	// Reconnecting rebuilds the mixer's conversion chain for the new format.
	p.node.SetFormat(t.SampleRate(), t.Channels())
	if err := p.eng.Connect(p.node, p.mixer); err != nil {
		return fmt.Errorf("connect player node: %w", err)
	}

	p.log.Debug().
		Str("path", t.Path()).
		Int("rate", t.SampleRate()).
		Int("channels", t.Channels()).
		Dur("duration", t.Duration()).
		Msg("track set")

	return nil
}

// Play starts playback from the pending seek position, or resumes a paused
// player. Playing a playing player does nothing.
func (p *Player) Play() error {
	p.ctl.Lock()
	defer p.ctl.Unlock()

	if p.isClosed() {
		return ErrClosed
	}

	return p.play()
}

func (p *Player) play() error {
	p.mu.Lock()
	if p.track == nil {
		p.mu.Unlock()
		return ErrNoTrack
	}

	switch {
	case p.state == Playing:
		p.mu.Unlock()
		return nil

	case p.state == Paused && !p.rescheduleOnResume:
		p.node.Play()
		p.setState(Playing)
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	if err := p.eng.Start(); err != nil {
		p.log.Error().Err(err).Msg("start engine")
		return fmt.Errorf("play: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	from := p.pendingSeek
	if p.state == Paused {
		from = p.pausedPosition
		p.rescheduleOnResume = false
	}
	p.startSession(from)

	return nil
}

// startSession schedules the first buffers from frame and starts the node.
// Called with mu held and the engine running.
func (p *Player) startSession(frame int64) {
	if err := p.track.Seek(frame); err != nil {
		p.log.Error().Err(err).Int64("frame", frame).Msg("seek track")
	}

	p.startFrame = p.track.Position()
	p.pendingSeek = 0
	p.pausedPosition = 0
	p.session++

	p.initBuffers()
	p.node.Play()
	p.setState(Playing)

	if p.inFlight == 0 {
		// Nothing left to play from here.
		p.reachedEnd = true
		go p.finish(p.session, nil)
	}
}

// initBuffers allocates the buffer ring for the track's format and fills
// every slot it can.
func (p *Player) initBuffers() {
	p.reachedEnd = false

	rate, channels := p.track.SampleRate(), p.track.Channels()
	if len(p.buffers) != p.cfg.BufferCount ||
		p.buffers[0].SampleRate != rate || p.buffers[0].Channels != channels {
		p.buffers = make([]*engine.Buffer, p.cfg.BufferCount)
		for i := range p.buffers {
			p.buffers[i] = engine.NewBuffer(rate, channels, p.cfg.BufferFrames)
		}
	}

	for slot := range p.buffers {
		if !p.loadBuffer(slot) {
			break
		}
	}
}

// loadBuffer reads the next stretch of the track into slot and schedules
// it. It reports false when nothing was scheduled. Called with mu held.
func (p *Player) loadBuffer(slot int) bool {
	if p.stopping {
		return false
	}

	buf := p.buffers[slot]
	n, err := p.track.Read(buf.Data)
	if err != nil && !errors.Is(err, io.EOF) {
		p.log.Error().Err(err).
			Int64("position", p.track.Position()).
			Msg("read track, treating as end of stream")
	}
	if n == 0 {
		return false
	}
	buf.Frames = n

	p.inFlight++
	if err := p.node.ScheduleBuffer(buf, func() { p.completed(slot) }); err != nil {
		p.inFlight--
		p.log.Error().Err(err).Msg("schedule buffer")
		return false
	}

	return true
}

// completed runs once per scheduled buffer, on the audio thread when the
// buffer has played out or on the stopping goroutine when it was dropped.
func (p *Player) completed(slot int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.inFlight--
	if p.stopping {
		return
	}

	if p.loadBuffer(slot) || p.inFlight > 0 {
		return
	}

	// The graph after the node still holds the end of the track.
	p.reachedEnd = true
	go p.finish(p.session, p.eng.Drain())
}

// finish stops a session that ran to the end of its track once drained is
// closed. It runs on its own goroutine because stopping waits for the
// render pass that called completed.
func (p *Player) finish(session uint64, drained <-chan struct{}) {
	if drained != nil {
		<-drained
	}

	p.ctl.Lock()
	defer p.ctl.Unlock()

	p.mu.Lock()
	stale := session != p.session || !p.reachedEnd || p.state == Stopped
	p.mu.Unlock()

	if stale {
		return
	}

	p.log.Debug().Msg("end of track")
	p.stop()
}

// Pause holds playback at the current frame. Only a playing player pauses.
func (p *Player) Pause() {
	p.ctl.Lock()
	defer p.ctl.Unlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != Playing {
		return
	}

	p.pausedPosition = p.positionLocked()
	p.node.Pause()
	p.setState(Paused)
}

// Stop halts playback and rewinds to the start of the track. Stopping a
// stopped player does nothing.
func (p *Player) Stop() {
	p.ctl.Lock()
	defer p.ctl.Unlock()

	p.stop()
}

func (p *Player) stop() {
	if !p.teardown() {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.pendingSeek = 0
	p.pausedPosition = 0
	p.rescheduleOnResume = false
	p.setStopped(p.reachedEnd)
}

// teardown flushes the node and stops the engine. When it returns no
// completion is pending and no render pass is running. It reports false if
// the player was already stopped.
func (p *Player) teardown() bool {
	p.mu.Lock()
	if p.state == Stopped {
		p.mu.Unlock()
		return false
	}
	p.stopping = true
	p.mu.Unlock()

	p.node.Stop()
	if err := p.eng.Stop(); err != nil {
		p.log.Warn().Err(err).Msg("stop engine")
	}
	p.eng.Reset()

	p.mu.Lock()
	p.stopping = false
	if p.inFlight != 0 {
		p.log.Warn().Int("in_flight", p.inFlight).Msg("buffers left after stop")
		p.inFlight = 0
	}
	p.session++
	p.mu.Unlock()

	return true
}

// Seek moves playback to d. A playing or paused player is stopped first; a
// playing one then restarts from d. Seeking past the end is allowed and
// completes the track as soon as it plays.
func (p *Player) Seek(d time.Duration) error {
	p.ctl.Lock()
	defer p.ctl.Unlock()

	if p.isClosed() {
		return ErrClosed
	}

	p.mu.Lock()
	if p.track == nil {
		p.mu.Unlock()
		return ErrNoTrack
	}
	frame := max(0, p.track.FrameAt(d))
	state := p.state
	p.mu.Unlock()

	p.stop()

	p.mu.Lock()
	p.pendingSeek = frame
	p.mu.Unlock()

	if state == Playing {
		return p.play()
	}

	return nil
}

// Close stops playback, releases the track and detaches the player's nodes.
// Observers receive everything queued before Close.
func (p *Player) Close() error {
	p.ctl.Lock()
	defer p.ctl.Unlock()

	if p.isClosed() {
		return nil
	}

	p.stop()

	p.mu.Lock()
	p.closed = true
	t := p.track
	p.track = nil
	p.mu.Unlock()

	p.eng.Disconnect(p.eng.MainMixer())
	for _, n := range p.nodes {
		p.eng.Detach(n)
	}
	p.events.close()

	if t != nil {
		if err := t.Close(); err != nil {
			return fmt.Errorf("close track: %w", err)
		}
	}

	return nil
}

func (p *Player) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.closed
}

// setState records s and notifies the observer. Called with mu held, which
// keeps notifications in transition order.
func (p *Player) setState(s State) {
	p.state = s
	p.log.Debug().Stringer("state", s).Msg("transition")

	obs := p.cfg.Observer
	if obs == nil {
		return
	}

	switch s {
	case Playing:
		p.events.post(func() { obs.PlaybackStarted(p) })
	case Paused:
		p.events.post(func() { obs.PlaybackPaused(p) })
	}
}

func (p *Player) setStopped(completed bool) {
	p.state = Stopped
	p.log.Debug().Stringer("state", Stopped).Bool("completed", completed).Msg("transition")

	if obs := p.cfg.Observer; obs != nil {
		p.events.post(func() { obs.PlaybackStopped(p, completed) })
	}
}

func (p *Player) notifyRate(rate float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.log.Debug().Float64("rate", rate).Msg("rate adjusted")

	if obs := p.cfg.Observer; obs != nil {
		p.events.post(func() { obs.PlaybackRateAdjusted(p, rate) })
	}
}
