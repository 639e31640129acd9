// SPDX-License-Identifier: EPL-2.0

package player

import "context"

// Interruption is a signal from whatever owns the output device.
type Interruption int

const (
	InterruptionBegan Interruption = iota
	InterruptionEnded
)

func (i Interruption) String() string {
	if i == InterruptionBegan {
		return "began"
	}

	return "ended"
}

// BeginInterruption tears playback down and leaves a playing player paused
// at the frame it reached, with the engine stopped. Other states are left
// alone.
func (p *Player) BeginInterruption() {
	p.ctl.Lock()
	defer p.ctl.Unlock()

	p.mu.Lock()
	if p.state != Playing {
		p.resumeAfter = false
		p.mu.Unlock()
		return
	}
	position := p.positionLocked()
	p.resumeAfter = true
	p.mu.Unlock()

	p.log.Info().Int64("frame", position).Msg("interruption began")

	p.teardown()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.pausedPosition = position
	p.reachedEnd = false
	p.rescheduleOnResume = true
	p.setState(Paused)
}

// EndInterruption resumes from the captured frame if the player was playing
// when the interruption began and nothing moved it since.
func (p *Player) EndInterruption() {
	p.ctl.Lock()
	defer p.ctl.Unlock()

	p.mu.Lock()
	resume := p.resumeAfter && p.state == Paused && p.rescheduleOnResume
	p.resumeAfter = false
	p.mu.Unlock()

	if !resume {
		return
	}

	p.log.Info().Msg("interruption ended")

	if err := p.play(); err != nil {
		p.log.Error().Err(err).Msg("resume after interruption")
	}
}

// WatchInterruptions applies interruptions from ch until ctx is done or ch
// is closed.
func (p *Player) WatchInterruptions(ctx context.Context, ch <-chan Interruption) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case i, ok := <-ch:
			if !ok {
				return nil
			}
			switch i {
			case InterruptionBegan:
				p.BeginInterruption()
			case InterruptionEnded:
				p.EndInterruption()
			}
		}
	}
}
