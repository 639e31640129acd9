// SPDX-License-Identifier: EPL-2.0

// Package formats wires every decoder of this module into a registry.
package formats

import (
	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/formats/aiff"
	"github.com/ik5/audplay/formats/mp3"
	"github.com/ik5/audplay/formats/vorbis"
	"github.com/ik5/audplay/formats/wav"
)

// Register adds the built-in decoders to reg under their file extensions.
func Register(reg *audio.Registry) {
	reg.Register("wav", wav.Decoder{})
	reg.Register("wave", wav.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("oga", vorbis.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	reg.Register("aif", aiff.Decoder{})
}

// NewRegistry returns a registry holding the built-in decoders.
func NewRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	Register(reg)

	return reg
}
