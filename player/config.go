// SPDX-License-Identifier: EPL-2.0

package player

import (
	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/formats"
	"github.com/rs/zerolog"
)

// Config controls buffering, logging and notification of a player.
// Zero fields fall back to DefaultConfig.
type Config struct {
	// BufferCount is the number of buffers kept in flight.
	BufferCount int
	// BufferFrames is the capacity of each buffer in frames.
	BufferFrames int

	// Registry resolves decoders for Load. Nil means every built-in format.
	Registry *audio.Registry

	Logger   zerolog.Logger
	Observer Observer
}

func DefaultConfig() Config {
	return Config{
		BufferCount:  4,
		BufferFrames: 65536,
		Logger:       zerolog.Nop(),
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.BufferCount <= 0 {
		c.BufferCount = def.BufferCount
	}
	if c.BufferFrames <= 0 {
		c.BufferFrames = def.BufferFrames
	}
	if c.Registry == nil {
		c.Registry = formats.NewRegistry()
	}

	return c
}
