// SPDX-License-Identifier: EPL-2.0

package audplay

import (
	"errors"
	"fmt"

	"github.com/ik5/audplay/engine"
	"github.com/ik5/audplay/formats"
	"github.com/ik5/audplay/player"
	"github.com/ik5/audplay/track"
)

// Config groups the engine and player settings of a Session.
type Config struct {
	Engine engine.Config
	Player player.Config
}

// Session is an engine driven by one sink, with an effects player on it.
type Session struct {
	*player.FXPlayer

	Engine *engine.Engine
}

// NewSession builds the engine around sink and attaches an effects player.
func NewSession(sink engine.Sink, cfg Config) *Session {
	eng := engine.New(sink, cfg.Engine)

	return &Session{
		FXPlayer: player.NewFX(eng, cfg.Player),
		Engine:   eng,
	}
}

// Close releases the player and then the engine and its sink.
func (s *Session) Close() error {
	return errors.Join(s.FXPlayer.Close(), s.Engine.Close())
}

// OpenTrack opens path with every built-in decoder available.
func OpenTrack(path string) (*track.Track, error) {
	t, err := track.Open(path, formats.NewRegistry())
	if err != nil {
		return nil, fmt.Errorf("open track: %w", err)
	}

	return t, nil
}
