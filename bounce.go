// SPDX-License-Identifier: EPL-2.0

package audplay

import (
	"context"
	"fmt"

	"github.com/ik5/audplay/engine"
	"github.com/ik5/audplay/output"
	"github.com/ik5/audplay/player"
	"github.com/rs/zerolog"
)

// BounceOptions shape the audio written by Bounce. Zero values leave the
// signal untouched.
type BounceOptions struct {
	SampleRate int     // of the output file; 0 means 44100
	Rate       float64 // playback speed; 0 means 1
	Routing    player.Routing
	Gains      []float64 // per equalizer band, in dB
	GlobalGain float64   // in dB

	Logger zerolog.Logger
}

// Bounce plays the track at src through an effects player into a 16-bit
// stereo WAV file at dst, as fast as the machine allows. It returns when the
// track has played out or ctx is done.
func Bounce(ctx context.Context, src, dst string, opts BounceOptions) error {
	sink, err := output.NewFile(dst, false)
	if err != nil {
		return err
	}

	done := make(chan bool, 1)
	s := NewSession(sink, Config{
		Engine: engine.Config{SampleRate: opts.SampleRate},
		Player: player.Config{
			Logger: opts.Logger,
			Observer: player.Funcs{
				Stopped: func(_ *player.Player, completed bool) {
					select {
					case done <- completed:
					default:
					}
				},
			},
		},
	})
	defer s.Close()

	if err := s.Load(src); err != nil {
		return err
	}

	if opts.Rate != 0 {
		s.SetRate(opts.Rate)
	}
	s.SetRouting(opts.Routing)
	s.SetGlobalGain(opts.GlobalGain)
	for i, db := range opts.Gains {
		if _, err := s.SetGain(i, db); err != nil {
			return fmt.Errorf("band %d: %w", i, err)
		}
	}

	if err := s.Play(); err != nil {
		return err
	}

	select {
	case <-done:
	case <-ctx.Done():
		s.Stop()
		return ctx.Err()
	}

	if err := s.Close(); err != nil {
		return fmt.Errorf("finish %s: %w", dst, err)
	}

	return nil
}
