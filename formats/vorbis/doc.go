// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis audio through
// github.com/jfreymuth/oggvorbis.
//
//	f, _ := os.Open("song.ogg")
//	src, err := vorbis.Decoder{}.Decode(f)
//
// Samples come out interleaved at the stream's own rate and channel count.
// Over an io.ReadSeeker the source implements audio.FrameCounter and
// audio.FrameSeeker with sample accurate positioning.
package vorbis
