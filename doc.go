// SPDX-License-Identifier: EPL-2.0

// Package audplay is a streaming audio player built on a small software
// audio graph.
//
// The pieces live in subpackages:
//   - audio: the Source interface, resampling, channel mixing, the decoder
//     registry
//   - formats/...: WAV, MP3, Ogg Vorbis and AIFF decoders
//   - track: an opened file with its length, tags and a seekable cursor
//   - engine: the render graph (player node, mixers, time stretch, EQ)
//   - output: sinks that drive the graph (sound card, WAV file, manual)
//   - player: the buffer scheduler, the transport state machine and the
//     effects player
//
// This package wires them together for the common cases.
//
// # Quick Start
//
//	s := audplay.NewSession(output.NewOto(100*time.Millisecond), audplay.Config{})
//	defer s.Close()
//
//	if err := s.Load("song.ogg"); err != nil {
//	    return err
//	}
//	s.SetRate(1.25)
//	s.Play()
//
// # Rendering to a File
//
// Bounce plays a track through the effects chain into a WAV file, faster
// than real time:
//
//	err := audplay.Bounce(ctx, "in.mp3", "out.wav", audplay.BounceOptions{
//	    Rate:    0.75,
//	    Routing: player.MonoCenter,
//	})
package audplay
