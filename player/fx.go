// SPDX-License-Identifier: EPL-2.0

package player

import (
	"math"
	"sync"

	"github.com/ik5/audplay/engine"
	"github.com/ik5/audplay/utils"
)

const (
	// MaxGain bounds equalizer gains in dB, both ways.
	MaxGain = 24.0

	// gainDetent snaps gains this close to 0 dB to exactly 0.
	gainDetent = 0.5
)

// Routing selects how the player's stereo output reaches the speakers.
type Routing int

const (
	Stereo     Routing = iota
	MonoCenter         // both channels folded to mono, centered
	MonoLeft           // folded to mono, left speaker only
	MonoRight          // folded to mono, right speaker only
)

func (r Routing) String() string {
	switch r {
	case Stereo:
		return "stereo"
	case MonoCenter:
		return "mono"
	case MonoLeft:
		return "left"
	case MonoRight:
		return "right"
	default:
		return "unknown"
	}
}

// DefaultBands is the equalizer every FXPlayer starts with, all flat.
func DefaultBands() []engine.Band {
	return []engine.Band{
		{Type: engine.LowShelf, Frequency: 100, Bandwidth: 1},
		{Type: engine.Parametric, Frequency: 500, Bandwidth: 1},
		{Type: engine.Parametric, Frequency: 2000, Bandwidth: 1},
		{Type: engine.HighShelf, Frequency: 8000, Bandwidth: 1},
	}
}

// FXPlayer is a Player with a time stretcher, an equalizer and output
// routing between its mixer and the engine's main mixer:
//
//	node -> mixer -> time pitch -> eq -> routing mixer -> main mixer
type FXPlayer struct {
	*Player

	timePitch *engine.TimePitch
	eq        *engine.EQ
	routing   *engine.Mixer

	rateMu sync.Mutex

	routeMu sync.Mutex
	route   Routing
}

func NewFX(eng *engine.Engine, cfg Config) *FXPlayer {
	p := newPlayer(eng, cfg)

	fx := &FXPlayer{
		Player:    p,
		timePitch: engine.NewTimePitch(),
		eq:        engine.NewEQ(eng.SampleRate(), DefaultBands()),
		routing:   engine.NewMixer(eng.SampleRate()),
	}

	p.attach(fx.timePitch)
	p.attach(fx.eq)
	p.attach(fx.routing)

	p.connect(p.mixer, fx.timePitch)
	p.connect(fx.timePitch, fx.eq)
	p.connect(fx.eq, fx.routing)
	p.connect(fx.routing, eng.MainMixer())

	return fx
}

// SetRate changes the playback speed without changing pitch. The rate is
// clamped to [engine.MinRate, engine.MaxRate]; 1 bypasses the stretcher. It
// returns the rate applied. Observers hear about it only when the applied
// rate differs from the previous one.
func (fx *FXPlayer) SetRate(rate float64) float64 {
	if math.IsNaN(rate) {
		rate = 1
	}

	fx.rateMu.Lock()
	defer fx.rateMu.Unlock()

	prev := fx.timePitch.Rate()
	applied := fx.timePitch.SetRate(rate)
	if applied != prev {
		fx.notifyRate(applied)
	}

	return applied
}

func (fx *FXPlayer) Rate() float64 { return fx.timePitch.Rate() }

func (fx *FXPlayer) NumBands() int { return fx.eq.NumBands() }

func (fx *FXPlayer) Band(i int) (engine.Band, error) {
	if i < 0 || i >= fx.eq.NumBands() {
		return engine.Band{}, ErrBandIndex
	}

	return fx.eq.Band(i), nil
}

// SetBand replaces band i. Its gain is snapped and clamped like SetGain.
func (fx *FXPlayer) SetBand(i int, b engine.Band) error {
	if i < 0 || i >= fx.eq.NumBands() {
		return ErrBandIndex
	}

	b.Gain = snapGain(b.Gain)
	fx.eq.SetBand(i, b)

	return nil
}

// SetGain sets the gain of band i in dB and returns the value applied.
func (fx *FXPlayer) SetGain(i int, db float64) (float64, error) {
	b, err := fx.Band(i)
	if err != nil {
		return 0, err
	}

	b.Gain = snapGain(db)
	fx.eq.SetBand(i, b)

	return b.Gain, nil
}

func (fx *FXPlayer) SetBypass(i int, bypass bool) error {
	b, err := fx.Band(i)
	if err != nil {
		return err
	}

	b.Bypass = bypass
	fx.eq.SetBand(i, b)

	return nil
}

// SetGlobalGain sets the gain applied after every band, in dB.
func (fx *FXPlayer) SetGlobalGain(db float64) float64 {
	db = snapGain(db)
	fx.eq.SetGlobalGain(db)

	return db
}

func (fx *FXPlayer) GlobalGain() float64 { return fx.eq.GlobalGain() }

// SetRouting reconnects the routing mixer for r.
func (fx *FXPlayer) SetRouting(r Routing) {
	fx.routeMu.Lock()
	defer fx.routeMu.Unlock()

	var (
		downmix bool
		pan     float32
	)
	switch r {
	case MonoCenter:
		downmix = true
	case MonoLeft:
		downmix, pan = true, -1
	case MonoRight:
		downmix, pan = true, 1
	default:
		r = Stereo
	}

	fx.routing.SetDownmix(downmix)
	fx.routing.SetPan(pan)
	fx.connect(fx.eq, fx.routing)
	fx.route = r

	fx.log.Debug().Stringer("routing", r).Msg("routing changed")
}

func (fx *FXPlayer) Routing() Routing {
	fx.routeMu.Lock()
	defer fx.routeMu.Unlock()

	return fx.route
}

func snapGain(db float64) float64 {
	if math.IsNaN(db) || math.Abs(db) <= gainDetent {
		return 0
	}

	return utils.Clamp(db, -MaxGain, MaxGain)
}
